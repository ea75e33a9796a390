/*
Package observability turns form session events into logs and Prometheus metrics.

Both are delivered as domain.Hooks, so they can be combined and installed on a
form.Session or a session.Manager without the engine knowing about either.
*/
package observability

/*
Package session manages the lifecycle of form-filling sessions.

A Manager starts, resumes, checkpoints and closes form.Session values on top of a
ports.SnapshotStore. Every access to a session goes through WithSession, which
holds a per-session mutex (and, when configured, a distributed lock) so that a
session tree has a single owner at any time.
*/
package session

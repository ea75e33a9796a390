/*
Package tree holds the session-scoped cache of in-progress form values.

A DataTree maps screen path keys to Nodes. Each Node owns one FieldValue per child
attribute definition of the entity instance it represents. Nodes are created the
first time a screen for their path is visited and live until the session ends, so
returning to a screen restores whatever was last written.

The tree is not safe for concurrent use. Hosts serialize mutation through a single
owner (see package session).
*/
package tree

/*
Package ports defines the driven ports (interfaces) for the fieldform engine.

These interfaces decouple the form engine from the schema provider, the persistent
record model and session storage, allowing the engine to run against in-memory
fixtures, markdown schema folders, Redis or SQLite.

# Key Interfaces

  - Metamodel: Read-only schema provider (definitions by id, form root).
  - Record: Typed Entity/Attribute tree that commits are written through to.
  - SnapshotStore: Responsible for persisting and loading session snapshots.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
*/
package ports

// Package memoryengine provides an in-process implementation of the book
// inventory store for single-node deployments and tests.
//
// It offers the same conditional-update semantics as the PostgreSQL engine:
// every record carries a version counter, Save/Delete only commit when the
// caller supplies the version it observed when reading, and losing writers
// fail with inventory.ErrConcurrencyConflict. Serialization happens on an
// internal mutex instead of database row versioning, which is the
// single-writer-per-key equivalent of the optimistic scheme.
package memoryengine

// Package postgresengine provides the PostgreSQL-backed implementation of the
// book inventory store.
//
// The engine supports multiple PostgreSQL database libraries through an internal
// adapter layer: pgxpool.Pool (recommended), database/sql with lib/pq, and
// jmoiron/sqlx. Construct it with the factory matching your connection type:
//
//	store, err := postgresengine.NewBookStoreFromPGXPool(pool, postgresengine.WithLogger(logger))
//
// Concurrency control is optimistic: every row carries a version counter, and
// Save/Delete statements are conditional on the version the caller observed
// when reading. A conditional write that affects no rows fails with
// inventory.ErrConcurrencyConflict and leaves the record untouched, so a
// caller can safely re-read and retry.
//
// ISBN uniqueness is enforced by a unique constraint on the books table;
// violations surface as inventory.ErrDuplicateISBN.
package postgresengine

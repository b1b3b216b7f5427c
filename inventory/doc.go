// Package inventory provides the core types and abstractions for the durable
// book catalog with optimistic concurrency control.
//
// This package defines the fundamental types used across the different store
// engine implementations, including the Book record, the borrower set, and
// common error definitions.
//
// The central idea is the conditional update: every engine persists a version
// counter per Book record, and a Save (or Delete) only commits if the caller
// supplies the version it observed when reading. Concurrent writers to the
// same book lose with ErrConcurrencyConflict and are expected to re-read and
// re-decide against fresh state.
//
// Key types:
//   - Book: one catalog record with total/available counts and borrower set
//   - BorrowerSet: the user identities currently holding a copy
//   - RecordVersionUint: the version token driving conditional updates
//
// Common usage pattern:
//
//	book, err := store.Get(ctx, bookID)
//	if err != nil {
//		// handle error
//	}
//
//	book.Available-- // business decision against the observed snapshot
//	book.Borrowers = book.Borrowers.With(userID)
//
//	saved, err := store.Save(ctx, book, book.Version)
//	if errors.Is(err, inventory.ErrConcurrencyConflict) {
//		// another writer committed first: retry against fresh state
//	}
package inventory

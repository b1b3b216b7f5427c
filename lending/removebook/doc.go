// Package removebook implements the Remove Book use case.
//
// Removal is rejected with ErrBookHasActiveLoans while any user still holds a
// copy, so loan records are never orphaned. The delete is conditional on the
// version read in the same attempt: a borrow that commits concurrently makes
// the delete lose, and the re-read then sees the new borrower and rejects.
package removebook

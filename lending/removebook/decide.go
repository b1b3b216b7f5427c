package removebook

import (
	"github.com/libtrack/library-lending-go/inventory"
	"github.com/libtrack/library-lending-go/lending/shared/core"
)

// Decide implements the business logic of removing a book from the catalog.
// This is a pure function with no side effects - it checks the current book
// record and reports whether the removal may proceed.
//
// Business Rules:
//
//	GIVEN: A book record
//	WHEN: RemoveBook command is received
//	THEN: the record may be deleted
//	ERROR: "book has active loans" if any user still holds a copy
func Decide(book inventory.Book, _ Command) error {
	if book.Borrowers.Count() > 0 {
		return core.ErrBookHasActiveLoans
	}

	return nil
}

package borrowbook

import (
	"github.com/libtrack/library-lending-go/inventory"
	"github.com/libtrack/library-lending-go/lending/shared/core"
)

// Decide implements the business logic of borrowing a book copy.
// This is a pure function with no side effects - it takes the current book
// record as read from the store and returns the mutated record that should be
// committed, or a typed rejection.
//
// Business Rules:
//
//	GIVEN: A book record and the calling user's UserID
//	WHEN: BorrowBook command is received
//	THEN: available is decremented and the user joins the borrower set
//	ERROR: "book is already borrowed by this user" if the user holds a copy
//	ERROR: "book is not available" if no copies are available
//
// The membership check deliberately precedes the availability check so the
// already-borrowed rejection holds even when available is zero.
func Decide(book inventory.Book, command Command) (inventory.Book, error) {
	if book.Borrowers.Contains(command.UserID) {
		return inventory.Book{}, core.ErrBookAlreadyBorrowed
	}

	if book.Available == 0 {
		return inventory.Book{}, core.ErrBookNotAvailable
	}

	book.Available--
	book.Borrowers = book.Borrowers.With(command.UserID)

	return book, nil
}

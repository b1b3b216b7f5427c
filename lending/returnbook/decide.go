package returnbook

import (
	"github.com/libtrack/library-lending-go/inventory"
	"github.com/libtrack/library-lending-go/lending/shared/core"
)

// Decide implements the business logic of returning a book copy.
// This is a pure function with no side effects - it takes the current book
// record as read from the store and returns the mutated record that should be
// committed, or a typed rejection.
//
// Business Rules:
//
//	GIVEN: A book record and the calling user's UserID
//	WHEN: ReturnBook command is received
//	THEN: the user leaves the borrower set and available is incremented
//	ERROR: "book is not borrowed by this user" if the user holds no copy
//
// The increment is capped at quantity. The cap cannot trigger under correct
// borrow accounting; it keeps the invariant intact even against a corrupted record.
func Decide(book inventory.Book, command Command) (inventory.Book, error) {
	if !book.Borrowers.Contains(command.UserID) {
		return inventory.Book{}, core.ErrBookNotBorrowed
	}

	book.Borrowers = book.Borrowers.Without(command.UserID)

	book.Available++
	if book.Available > book.Quantity {
		book.Available = book.Quantity
	}

	return book, nil
}

package core

import (
	"errors"
)

var (
	// ErrBookNotAvailable is returned when a borrow request hits a book with no available copies.
	ErrBookNotAvailable = errors.New("book is not available")

	// ErrBookAlreadyBorrowed is returned when a user tries to borrow a book they already hold.
	ErrBookAlreadyBorrowed = errors.New("book is already borrowed by this user")

	// ErrBookNotBorrowed is returned when a user tries to return a book they do not hold.
	ErrBookNotBorrowed = errors.New("book is not borrowed by this user")

	// ErrBookHasActiveLoans is returned when removal is requested for a book with a non-empty
	// borrower set. Loans cannot be orphaned by deleting the record underneath them.
	ErrBookHasActiveLoans = errors.New("book has active loans")

	// ErrQuantityBelowBorrowedCount is returned when a quantity update would drop the total
	// below the number of copies currently lent out.
	ErrQuantityBelowBorrowedCount = errors.New("quantity must not be below the borrowed count")

	// ErrNoFieldsToUpdate is returned when an update command carries no fields at all.
	ErrNoFieldsToUpdate = errors.New("no fields to update")

	// ErrTooMuchContention is returned when an operation exhausted its retry budget due to
	// persistent concurrent writers on the same book. It is distinct from every business
	// rejection above: the operation itself was valid but could not be committed in time.
	ErrTooMuchContention = errors.New("too much contention on this book")
)

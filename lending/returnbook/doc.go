// Package returnbook implements the Return Book use case.
//
// A return moves one copy of a book from borrowed back to available for the
// calling user: the user leaves the borrower set and available is incremented,
// inside one conditional-update attempt against the inventory store. A user
// who does not hold a copy is rejected with ErrBookNotBorrowed - never a
// silent no-op.
package returnbook

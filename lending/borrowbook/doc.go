// Package borrowbook implements the Borrow Book use case.
//
// A borrow moves one copy of a book from available to borrowed for the calling
// user: available is decremented and the user joins the borrower set, inside
// one conditional-update attempt against the inventory store. A concurrent
// borrow of the last copy can therefore never double-lend it: one request
// commits, the other re-reads the fresh state and is rejected as unavailable.
//
// The membership check runs before the availability check, so a user who
// already holds a copy is always rejected with ErrBookAlreadyBorrowed, even
// when no copies are left.
package borrowbook

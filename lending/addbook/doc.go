// Package addbook implements the Add Book use case.
//
// Adding a book creates a fresh catalog record: all copies start available and
// the borrower set starts empty. Input validation (non-blank text fields,
// positive quantity) happens in the pure Decide function; ISBN uniqueness is
// enforced by the store and surfaces as inventory.ErrDuplicateISBN.
package addbook

package updatebook

import (
	"strings"

	"github.com/libtrack/library-lending-go/inventory"
	"github.com/libtrack/library-lending-go/lending/shared/core"
)

// Decide implements the business logic of editing a catalog record.
// This is a pure function with no side effects - it takes the current book
// record as read from the store and returns the mutated record that should be
// committed, or a typed rejection.
//
// Business Rules:
//
//	GIVEN: A book record and a set of optional field edits
//	WHEN: UpdateBook command is received
//	THEN: present fields are applied; a quantity change keeps the borrowed
//	      count and recomputes available = newQuantity - borrowed
//	ERROR: "no fields to update" if every field is nil
//	ERROR: blank-field rejections for empty title/author/isbn edits
//	ERROR: "quantity must be a positive number" if the new quantity is negative
//	ERROR: "quantity must not be below the borrowed count" - loans cannot be revoked
func Decide(book inventory.Book, command Command) (inventory.Book, error) {
	if command.Title == nil && command.Author == nil && command.ISBN == nil && command.Quantity == nil {
		return inventory.Book{}, core.ErrNoFieldsToUpdate
	}

	if command.Title != nil {
		title := strings.TrimSpace(*command.Title)
		if title == "" {
			return inventory.Book{}, inventory.ErrEmptyTitle
		}

		book.Title = title
	}

	if command.Author != nil {
		author := strings.TrimSpace(*command.Author)
		if author == "" {
			return inventory.Book{}, inventory.ErrEmptyAuthor
		}

		book.Author = author
	}

	if command.ISBN != nil {
		isbn := strings.TrimSpace(*command.ISBN)
		if isbn == "" {
			return inventory.Book{}, inventory.ErrEmptyISBN
		}

		book.ISBN = isbn
	}

	if command.Quantity != nil {
		newQuantity := *command.Quantity
		if newQuantity < 0 {
			return inventory.Book{}, inventory.ErrInvalidQuantity
		}

		borrowed := book.Quantity - book.Available
		if newQuantity < borrowed {
			return inventory.Book{}, core.ErrQuantityBelowBorrowedCount
		}

		book.Quantity = newQuantity
		book.Available = newQuantity - borrowed
	}

	return book, nil
}

package addbook

import (
	"github.com/google/uuid"

	"github.com/libtrack/library-lending-go/inventory"
)

// Decide implements the business logic of adding a book to the catalog.
// This is a pure function with no side effects - identity generation stays in
// the handler so the same command and ID always produce the same record.
//
// Business Rules:
//
//	GIVEN: Title, author, isbn and a requested quantity
//	WHEN: AddBook command is received
//	THEN: a record is created with available = quantity and no borrowers
//	ERROR: "title must not be empty" / "author must not be empty" / "isbn must not be empty"
//	ERROR: "quantity must be a positive number" if quantity < 1
func Decide(command Command, bookID uuid.UUID) (inventory.Book, error) {
	return inventory.BuildBook(bookID, command.Title, command.Author, command.ISBN, command.Quantity)
}

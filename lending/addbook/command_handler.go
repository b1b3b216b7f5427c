package addbook

import (
	"context"

	"github.com/google/uuid"

	"github.com/libtrack/library-lending-go/inventory"
)

// BookStore defines the interface needed by the CommandHandler for store operations.
type BookStore interface {
	Create(ctx context.Context, book inventory.Book) (inventory.Book, error)
}

// CommandHandler orchestrates the add-book workflow: Decide -> Create.
// Creation needs no retry loop - there is no prior record to conflict with,
// and a duplicate ISBN is a terminal rejection, not a transient conflict.
type CommandHandler struct {
	bookStore BookStore
}

// NewCommandHandler creates a new CommandHandler with the provided BookStore dependency.
func NewCommandHandler(bookStore BookStore) CommandHandler {
	return CommandHandler{
		bookStore: bookStore,
	}
}

// Handle executes the add-book workflow and returns the created record.
func (h CommandHandler) Handle(ctx context.Context, command Command) (inventory.Book, error) {
	book, decideErr := Decide(command, uuid.New())
	if decideErr != nil {
		return inventory.Book{}, decideErr
	}

	created, createErr := h.bookStore.Create(ctx, book)
	if createErr != nil {
		return inventory.Book{}, createErr
	}

	return created, nil
}

package listbooks

import (
	"context"

	"github.com/libtrack/library-lending-go/inventory"
)

// BookStore defines the interface needed by the QueryHandler for store operations.
type BookStore interface {
	List(ctx context.Context) ([]inventory.Book, error)
}

// QueryHandler answers the List Books query from the current store state.
type QueryHandler struct {
	bookStore BookStore
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(bookStore BookStore) QueryHandler {
	return QueryHandler{
		bookStore: bookStore,
	}
}

// Handle executes the query and projects the records into the result shape.
func (h QueryHandler) Handle(ctx context.Context, _ Query) (Catalog, error) {
	books, err := h.bookStore.List(ctx)
	if err != nil {
		return Catalog{}, err
	}

	summaries := make([]BookSummary, 0, len(books))
	for _, book := range books {
		summaries = append(summaries, BookSummary{
			ID:        book.ID,
			Title:     book.Title,
			Author:    book.Author,
			ISBN:      book.ISBN,
			Quantity:  book.Quantity,
			Available: book.Available,
			Borrowers: book.Borrowers.MemberIDs(),
		})
	}

	return Catalog{
		Books: summaries,
		Count: len(summaries),
	}, nil
}

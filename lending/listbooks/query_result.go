package listbooks

import (
	"github.com/google/uuid"
)

// BookSummary represents one catalog entry with its current lending state.
type BookSummary struct {
	ID        uuid.UUID
	Title     string
	Author    string
	ISBN      string
	Quantity  int
	Available int
	Borrowers []string
}

// Catalog represents the query result containing all books in catalog order.
type Catalog struct {
	Books []BookSummary
	Count int
}

package httpapi

import (
	"errors"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/libtrack/library-lending-go/inventory"
	"github.com/libtrack/library-lending-go/lending/listbooks"
	"github.com/libtrack/library-lending-go/lending/shared/core"
)

var json = jsoniter.ConfigFastest

const (
	stateSuccess = "success"
	stateError   = "error"

	contentTypeHeader = "Content-Type"
	contentTypeJSON   = "application/json"
)

// bookDTO is the wire representation of a book record.
type bookDTO struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	ISBN      string    `json:"isbn"`
	Quantity  int       `json:"quantity"`
	Available int       `json:"available"`
	Borrowers []string  `json:"borrowers"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type bookResponse struct {
	State string  `json:"state"`
	Book  bookDTO `json:"book"`
}

type catalogResponse struct {
	State string    `json:"state"`
	Books []bookDTO `json:"books"`
	Count int       `json:"count"`
}

type errorResponse struct {
	State   string `json:"state"`
	Message string `json:"message"`
}

func bookToDTO(book inventory.Book) bookDTO {
	return bookDTO{
		ID:        book.ID.String(),
		Title:     book.Title,
		Author:    book.Author,
		ISBN:      book.ISBN,
		Quantity:  book.Quantity,
		Available: book.Available,
		Borrowers: book.Borrowers.MemberIDs(),
		CreatedAt: book.CreatedAt,
		UpdatedAt: book.UpdatedAt,
	}
}

func summaryToDTO(summary listbooks.BookSummary) bookDTO {
	return bookDTO{
		ID:        summary.ID.String(),
		Title:     summary.Title,
		Author:    summary.Author,
		ISBN:      summary.ISBN,
		Quantity:  summary.Quantity,
		Available: summary.Available,
		Borrowers: summary.Borrowers,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set(contentTypeHeader, contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeBook(w http.ResponseWriter, status int, book inventory.Book) {
	writeJSON(w, status, bookResponse{State: stateSuccess, Book: bookToDTO(book)})
}

func writeCatalog(w http.ResponseWriter, catalog listbooks.Catalog) {
	books := make([]bookDTO, 0, len(catalog.Books))
	for _, summary := range catalog.Books {
		books = append(books, summaryToDTO(summary))
	}

	writeJSON(w, http.StatusOK, catalogResponse{State: stateSuccess, Books: books, Count: catalog.Count})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{State: stateError, Message: message})
}

// writeDomainError maps a use case error to an HTTP status and body.
func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusFromError(err), err.Error())
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, inventory.ErrEmptyTitle),
		errors.Is(err, inventory.ErrEmptyAuthor),
		errors.Is(err, inventory.ErrEmptyISBN),
		errors.Is(err, inventory.ErrInvalidQuantity),
		errors.Is(err, core.ErrNoFieldsToUpdate),
		errors.Is(err, core.ErrQuantityBelowBorrowedCount):
		return http.StatusBadRequest

	case errors.Is(err, ErrInvalidSession):
		return http.StatusUnauthorized

	case errors.Is(err, inventory.ErrBookNotFound):
		return http.StatusNotFound

	case errors.Is(err, inventory.ErrDuplicateISBN),
		errors.Is(err, core.ErrBookNotAvailable),
		errors.Is(err, core.ErrBookAlreadyBorrowed),
		errors.Is(err, core.ErrBookNotBorrowed),
		errors.Is(err, core.ErrBookHasActiveLoans):
		return http.StatusConflict

	case errors.Is(err, core.ErrTooMuchContention):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

package memoryengine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/libtrack/library-lending-go/inventory"
)

const (
	logMsgBookCreated         = "book created"
	logMsgBookSaved           = "book saved"
	logMsgBookDeleted         = "book deleted"
	logMsgConcurrencyConflict = "concurrency conflict detected"
	logMsgDuplicateISBN       = "duplicate isbn rejected"
	logAttrBookID             = "book_id"
	logAttrISBN               = "isbn"
	logAttrExpectedVersion    = "expected_version"
)

// BookStore is the in-process implementation of the book inventory store.
// The zero value is not usable; construct it with NewBookStore.
type BookStore struct {
	mu     sync.Mutex
	books  map[uuid.UUID]inventory.Book
	byISBN map[string]uuid.UUID
	order  []uuid.UUID
	logger Logger
}

// Logger interface for operational logging, shared shape with the PostgreSQL engine.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Option defines a functional option for configuring BookStore.
type Option func(*BookStore) error

// WithLogger sets the logger for the BookStore.
func WithLogger(logger Logger) Option {
	return func(bs *BookStore) error {
		bs.logger = logger
		return nil
	}
}

// NewBookStore creates a new empty in-process BookStore with optional configuration.
func NewBookStore(options ...Option) (*BookStore, error) {
	bs := &BookStore{
		books:  make(map[uuid.UUID]inventory.Book),
		byISBN: make(map[string]uuid.UUID),
	}

	for _, option := range options {
		if err := option(bs); err != nil {
			return nil, err
		}
	}

	return bs, nil
}

// Get retrieves a single book by ID, returning inventory.ErrBookNotFound when no record exists.
func (bs *BookStore) Get(ctx context.Context, bookID uuid.UUID) (inventory.Book, error) {
	if err := ctx.Err(); err != nil {
		return inventory.Book{}, err
	}

	bs.mu.Lock()
	defer bs.mu.Unlock()

	book, exists := bs.books[bookID]
	if !exists {
		return inventory.Book{}, inventory.ErrBookNotFound
	}

	return book, nil
}

// List retrieves all books in insertion order.
func (bs *BookStore) List(ctx context.Context) ([]inventory.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bs.mu.Lock()
	defer bs.mu.Unlock()

	books := make([]inventory.Book, 0, len(bs.order))
	for _, bookID := range bs.order {
		books = append(books, bs.books[bookID])
	}

	return books, nil
}

// Create inserts a new book record with version 1.
// It returns inventory.ErrDuplicateISBN when the ISBN is already taken.
func (bs *BookStore) Create(ctx context.Context, book inventory.Book) (inventory.Book, error) {
	if err := ctx.Err(); err != nil {
		return inventory.Book{}, err
	}

	bs.mu.Lock()
	defer bs.mu.Unlock()

	if _, taken := bs.byISBN[book.ISBN]; taken {
		bs.logInfo(logMsgDuplicateISBN, logAttrISBN, book.ISBN)
		return inventory.Book{}, inventory.ErrDuplicateISBN
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	book.Version = 1
	book.CreatedAt = now
	book.UpdatedAt = now

	bs.books[book.ID] = book
	bs.byISBN[book.ISBN] = book.ID
	bs.order = append(bs.order, book.ID)

	bs.logInfo(logMsgBookCreated, logAttrBookID, book.ID.String())

	return book, nil
}

// Save persists a mutated book record if and only if no other write has occurred
// since the record was read at expectedVersion. On success the returned record
// carries version expectedVersion+1; otherwise Save fails with
// inventory.ErrConcurrencyConflict and leaves the record untouched.
func (bs *BookStore) Save(
	ctx context.Context,
	book inventory.Book,
	expectedVersion inventory.RecordVersionUint,
) (inventory.Book, error) {

	if err := ctx.Err(); err != nil {
		return inventory.Book{}, err
	}

	bs.mu.Lock()
	defer bs.mu.Unlock()

	current, exists := bs.books[book.ID]
	if !exists || current.Version != expectedVersion {
		bs.logInfo(logMsgConcurrencyConflict, logAttrBookID, book.ID.String(), logAttrExpectedVersion, expectedVersion)
		return inventory.Book{}, inventory.ErrConcurrencyConflict
	}

	if takenBy, taken := bs.byISBN[book.ISBN]; taken && takenBy != book.ID {
		bs.logInfo(logMsgDuplicateISBN, logAttrISBN, book.ISBN)
		return inventory.Book{}, inventory.ErrDuplicateISBN
	}

	book.Version = expectedVersion + 1
	book.CreatedAt = current.CreatedAt
	book.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

	if current.ISBN != book.ISBN {
		delete(bs.byISBN, current.ISBN)
		bs.byISBN[book.ISBN] = book.ID
	}

	bs.books[book.ID] = book

	bs.logInfo(logMsgBookSaved, logAttrBookID, book.ID.String())

	return book, nil
}

// Delete removes a book record if and only if no other write has occurred since
// the record was read at expectedVersion; otherwise it fails with
// inventory.ErrConcurrencyConflict.
func (bs *BookStore) Delete(
	ctx context.Context,
	bookID uuid.UUID,
	expectedVersion inventory.RecordVersionUint,
) error {

	if err := ctx.Err(); err != nil {
		return err
	}

	bs.mu.Lock()
	defer bs.mu.Unlock()

	current, exists := bs.books[bookID]
	if !exists || current.Version != expectedVersion {
		bs.logInfo(logMsgConcurrencyConflict, logAttrBookID, bookID.String(), logAttrExpectedVersion, expectedVersion)
		return inventory.ErrConcurrencyConflict
	}

	delete(bs.books, bookID)
	delete(bs.byISBN, current.ISBN)

	for i, orderedID := range bs.order {
		if orderedID == bookID {
			bs.order = append(bs.order[:i], bs.order[i+1:]...)
			break
		}
	}

	bs.logInfo(logMsgBookDeleted, logAttrBookID, bookID.String())

	return nil
}

func (bs *BookStore) logInfo(msg string, args ...any) {
	if bs.logger != nil {
		bs.logger.Info(msg, args...)
	}
}

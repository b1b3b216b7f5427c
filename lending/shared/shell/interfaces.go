package shell

import (
	"context"

	"github.com/google/uuid"

	"github.com/libtrack/library-lending-go/inventory"
)

// BookStore defines the interface the lending command and query handlers need
// from an inventory store engine. Both inventory/postgresengine and
// inventory/memoryengine satisfy it.
//
// Save and Delete are the conditional-update primitive: they only commit when
// the record's stored version still equals expectedVersion, failing with
// inventory.ErrConcurrencyConflict otherwise. Handlers never hold a Book
// across operations; every attempt re-reads through Get.
type BookStore interface {
	Get(ctx context.Context, bookID uuid.UUID) (inventory.Book, error)
	List(ctx context.Context) ([]inventory.Book, error)
	Create(ctx context.Context, book inventory.Book) (inventory.Book, error)
	Save(ctx context.Context, book inventory.Book, expectedVersion inventory.RecordVersionUint) (inventory.Book, error)
	Delete(ctx context.Context, bookID uuid.UUID, expectedVersion inventory.RecordVersionUint) error
}

// Command represents the contract for all command types of the lending features.
// The CommandType method enables polymorphic handling and observability instrumentation.
type Command interface {
	CommandType() string
}

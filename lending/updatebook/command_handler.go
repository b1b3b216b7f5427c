package updatebook

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/libtrack/library-lending-go/inventory"
	"github.com/libtrack/library-lending-go/lending/shared/core"
	"github.com/libtrack/library-lending-go/lending/shared/shell"
)

// BookStore defines the interface needed by the CommandHandler for store operations.
type BookStore interface {
	Get(ctx context.Context, bookID uuid.UUID) (inventory.Book, error)
	Save(ctx context.Context, book inventory.Book, expectedVersion inventory.RecordVersionUint) (inventory.Book, error)
}

// CommandHandler orchestrates the complete command processing workflow:
// Get -> Decide -> Save, wrapped in bounded retry for concurrency conflicts.
// The whole read-compute-write sequence of a quantity change runs inside a
// single conditional-update attempt, which rules out the lost-update race
// with concurrent borrows and returns.
type CommandHandler struct {
	bookStore        BookStore
	retryOptions     []shell.RetryOption
	metricsCollector shell.MetricsCollector
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// WithMetrics sets the metrics collector for retry instrumentation.
// Retry metrics are labeled with the command type.
func WithMetrics(collector shell.MetricsCollector) Option {
	return func(h *CommandHandler) {
		h.metricsCollector = collector
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(bookStore BookStore, opts ...Option) CommandHandler {
	handler := CommandHandler{
		bookStore: bookStore,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the complete command processing workflow with retry logic.
// Exhausting the retry budget surfaces core.ErrTooMuchContention.
func (h CommandHandler) Handle(ctx context.Context, command Command) (inventory.Book, error) {
	var book inventory.Book

	err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		current, getErr := h.bookStore.Get(retryCtx, command.BookID)
		if getErr != nil {
			return getErr
		}

		decided, decideErr := Decide(current, command)
		if decideErr != nil {
			return decideErr
		}

		saved, saveErr := h.bookStore.Save(retryCtx, decided, current.Version)
		if saveErr != nil {
			return saveErr
		}

		book = saved

		return nil
	}, h.retryOptionsFor(command)...)

	if errors.Is(err, inventory.ErrConcurrencyConflict) {
		return inventory.Book{}, errors.Join(core.ErrTooMuchContention, err)
	}

	if err != nil {
		return inventory.Book{}, err
	}

	return book, nil
}

// retryOptionsFor extends the configured retry options with metrics
// instrumentation labeled by the command's type.
func (h CommandHandler) retryOptionsFor(command shell.Command) []shell.RetryOption {
	if h.metricsCollector == nil {
		return h.retryOptions
	}

	options := make([]shell.RetryOption, 0, len(h.retryOptions)+1)
	options = append(options, h.retryOptions...)

	return append(options, shell.WithMetrics(h.metricsCollector, command.CommandType()))
}

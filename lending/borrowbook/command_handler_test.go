package borrowbook_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libtrack/library-lending-go/inventory"
	"github.com/libtrack/library-lending-go/inventory/memoryengine"
	"github.com/libtrack/library-lending-go/lending/borrowbook"
	"github.com/libtrack/library-lending-go/lending/shared/core"
	"github.com/libtrack/library-lending-go/lending/shared/shell"
)

func Test_CommandHandler_Success_WhenCopyAvailable(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := givenStoreWithBook(t, 2)
	handler := borrowbook.NewCommandHandler(store)

	books, err := store.List(ctx)
	require.NoError(t, err)
	bookID := books[0].ID
	userID := uuid.New()

	// act
	borrowed, err := handler.Handle(ctx, borrowbook.BuildCommand(bookID, userID))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, borrowed.Available)
	assert.True(t, borrowed.Borrowers.Contains(userID))
	assert.Equal(t, inventory.RecordVersionUint(2), borrowed.Version)
}

func Test_CommandHandler_Error_WhenBookDoesNotExist(t *testing.T) {
	// arrange
	store := givenStoreWithBook(t, 1)
	handler := borrowbook.NewCommandHandler(store)

	// act
	_, err := handler.Handle(context.Background(), borrowbook.BuildCommand(uuid.New(), uuid.New()))

	// assert
	assert.ErrorIs(t, err, inventory.ErrBookNotFound)
}

func Test_CommandHandler_ConcurrentBorrowsOfLastCopy_ExactlyOneSucceeds(t *testing.T) {
	// arrange - one copy, two users racing for it
	ctx := context.Background()
	store := givenStoreWithBook(t, 1)
	handler := borrowbook.NewCommandHandler(store)

	books, err := store.List(ctx)
	require.NoError(t, err)
	bookID := books[0].ID

	const borrowers = 2

	var wg sync.WaitGroup
	results := make(chan error, borrowers)

	// act
	for i := 0; i < borrowers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, handleErr := handler.Handle(ctx, borrowbook.BuildCommand(bookID, uuid.New()))
			results <- handleErr
		}()
	}

	wg.Wait()
	close(results)

	// assert - one borrow commits, the other is rejected as unavailable
	successes := 0
	unavailable := 0
	for handleErr := range results {
		switch {
		case handleErr == nil:
			successes++
		default:
			require.ErrorIs(t, handleErr, core.ErrBookNotAvailable)
			unavailable++
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, unavailable)

	current, err := store.Get(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, 0, current.Available)
	assert.Equal(t, 1, current.BorrowedCount())
	assert.NoError(t, current.CheckInvariant())
}

func Test_CommandHandler_ManyConcurrentBorrowers_NeverOversellCopies(t *testing.T) {
	// arrange - more borrowers than copies
	ctx := context.Background()
	store := givenStoreWithBook(t, 3)
	handler := borrowbook.NewCommandHandler(store, borrowbook.WithRetryOptions(
		shell.WithMaxAttempts(20),
		shell.WithBaseDelay(time.Millisecond),
	))

	books, err := store.List(ctx)
	require.NoError(t, err)
	bookID := books[0].ID

	const borrowers = 8

	var wg sync.WaitGroup
	results := make(chan error, borrowers)

	// act
	for i := 0; i < borrowers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, handleErr := handler.Handle(ctx, borrowbook.BuildCommand(bookID, uuid.New()))
			results <- handleErr
		}()
	}

	wg.Wait()
	close(results)

	// assert
	successes := 0
	for handleErr := range results {
		if handleErr == nil {
			successes++
		} else {
			require.ErrorIs(t, handleErr, core.ErrBookNotAvailable)
		}
	}

	assert.Equal(t, 3, successes)

	current, err := store.Get(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, 0, current.Available)
	assert.Equal(t, 3, current.BorrowedCount())
	assert.NoError(t, current.CheckInvariant())
}

func Test_CommandHandler_Error_TooMuchContention_WhenRetryBudgetExhausted(t *testing.T) {
	// arrange - a store that reports a conflict on every save
	store := givenStoreWithBook(t, 5)
	conflicting := &alwaysConflictingStore{inner: store}
	handler := borrowbook.NewCommandHandler(conflicting, borrowbook.WithRetryOptions(
		shell.WithMaxAttempts(3),
		shell.WithBaseDelay(time.Millisecond),
		shell.WithJitterFactor(0),
	))

	books, err := store.List(context.Background())
	require.NoError(t, err)
	bookID := books[0].ID

	// act
	_, err = handler.Handle(context.Background(), borrowbook.BuildCommand(bookID, uuid.New()))

	// assert - contention is reported distinctly from business rejections
	assert.ErrorIs(t, err, core.ErrTooMuchContention)
	assert.ErrorIs(t, err, inventory.ErrConcurrencyConflict)
	assert.NotErrorIs(t, err, core.ErrBookNotAvailable)
	assert.Equal(t, 3, conflicting.saveCalls)
}

type alwaysConflictingStore struct {
	inner     *memoryengine.BookStore
	saveCalls int
}

func (s *alwaysConflictingStore) Get(ctx context.Context, bookID uuid.UUID) (inventory.Book, error) {
	return s.inner.Get(ctx, bookID)
}

func (s *alwaysConflictingStore) Save(
	_ context.Context,
	_ inventory.Book,
	_ inventory.RecordVersionUint,
) (inventory.Book, error) {
	s.saveCalls++
	return inventory.Book{}, inventory.ErrConcurrencyConflict
}

func givenStoreWithBook(t *testing.T, quantity int) *memoryengine.BookStore {
	t.Helper()

	store, err := memoryengine.NewBookStore()
	require.NoError(t, err)

	book, err := inventory.BuildBook(uuid.New(), "Contended Title", "Test Author", "isbn-"+uuid.NewString(), quantity)
	require.NoError(t, err)

	_, err = store.Create(context.Background(), book)
	require.NoError(t, err)

	return store
}

func Test_CommandHandler_RetryMetrics_LabeledWithCommandType(t *testing.T) {
	// arrange - a store that reports a conflict on every save
	store := givenStoreWithBook(t, 5)
	conflicting := &alwaysConflictingStore{inner: store}
	collector := &recordingMetricsCollector{}
	handler := borrowbook.NewCommandHandler(conflicting,
		borrowbook.WithRetryOptions(
			shell.WithMaxAttempts(3),
			shell.WithBaseDelay(time.Millisecond),
			shell.WithJitterFactor(0),
		),
		borrowbook.WithMetrics(collector),
	)

	books, err := store.List(context.Background())
	require.NoError(t, err)
	bookID := books[0].ID

	// act
	_, err = handler.Handle(context.Background(), borrowbook.BuildCommand(bookID, uuid.New()))

	// assert - every retry metric carries the command type label
	assert.ErrorIs(t, err, core.ErrTooMuchContention)
	assert.NotZero(t, collector.counters[shell.CommandHandlerRetriesMetric])
	assert.NotZero(t, collector.counters[shell.CommandHandlerMaxRetriesReachedMetric])
	assert.NotZero(t, collector.durations[shell.CommandHandlerRetryDelayMetric])

	require.NotEmpty(t, collector.labels)
	for _, labels := range collector.labels {
		assert.Equal(t, "BorrowBook", labels[shell.LogAttrCommandType])
	}
}

type recordingMetricsCollector struct {
	counters  map[string]int
	durations map[string]int
	labels    []map[string]string
}

func (c *recordingMetricsCollector) RecordDuration(metric string, _ time.Duration, labels map[string]string) {
	if c.durations == nil {
		c.durations = make(map[string]int)
	}
	c.durations[metric]++
	c.labels = append(c.labels, labels)
}

func (c *recordingMetricsCollector) IncrementCounter(metric string, labels map[string]string) {
	if c.counters == nil {
		c.counters = make(map[string]int)
	}
	c.counters[metric]++
	c.labels = append(c.labels, labels)
}

func (c *recordingMetricsCollector) RecordValue(string, float64, map[string]string) {}

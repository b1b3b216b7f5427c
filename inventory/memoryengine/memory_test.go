package memoryengine_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libtrack/library-lending-go/inventory"
	"github.com/libtrack/library-lending-go/inventory/memoryengine"
)

func Test_Create_AssignsVersionOneAndTimestamps(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := givenStore(t)
	book := givenBook(t, "Neuromancer", "isbn-neuromancer", 2)

	// act
	created, err := store.Create(ctx, book)

	// assert
	require.NoError(t, err)
	assert.Equal(t, inventory.RecordVersionUint(1), created.Version)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
}

func Test_Create_Error_WhenISBNAlreadyTaken(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := givenStore(t)

	_, err := store.Create(ctx, givenBook(t, "First Copy", "isbn-dup", 1))
	require.NoError(t, err)

	// act
	_, err = store.Create(ctx, givenBook(t, "Second Copy", "isbn-dup", 1))

	// assert
	assert.ErrorIs(t, err, inventory.ErrDuplicateISBN)
}

func Test_Get_Error_WhenBookDoesNotExist(t *testing.T) {
	// arrange
	store := givenStore(t)

	// act
	_, err := store.Get(context.Background(), uuid.New())

	// assert
	assert.ErrorIs(t, err, inventory.ErrBookNotFound)
}

func Test_List_ReturnsBooksInInsertionOrder(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := givenStore(t)

	first, err := store.Create(ctx, givenBook(t, "First", "isbn-list-1", 1))
	require.NoError(t, err)
	second, err := store.Create(ctx, givenBook(t, "Second", "isbn-list-2", 1))
	require.NoError(t, err)

	// act
	books, err := store.List(ctx)

	// assert
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, first.ID, books[0].ID)
	assert.Equal(t, second.ID, books[1].ID)
}

func Test_Save_IncrementsVersion_WhenExpectedVersionMatches(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := givenStore(t)

	created, err := store.Create(ctx, givenBook(t, "Snow Crash", "isbn-snowcrash", 3))
	require.NoError(t, err)

	created.Available--
	created.Borrowers = created.Borrowers.With(uuid.New())

	// act
	saved, err := store.Save(ctx, created, created.Version)

	// assert
	require.NoError(t, err)
	assert.Equal(t, inventory.RecordVersionUint(2), saved.Version)
	assert.Equal(t, 2, saved.Available)
	assert.Equal(t, 1, saved.BorrowedCount())
	assert.Equal(t, created.CreatedAt, saved.CreatedAt)
}

func Test_Save_Error_WhenExpectedVersionIsStale(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := givenStore(t)

	created, err := store.Create(ctx, givenBook(t, "Stale Read", "isbn-stale", 2))
	require.NoError(t, err)

	// a competing write bumps the stored version
	competing := created
	competing.Available--
	competing.Borrowers = competing.Borrowers.With(uuid.New())
	_, err = store.Save(ctx, competing, created.Version)
	require.NoError(t, err)

	// act - saving with the original version token must fail
	created.Available--
	_, err = store.Save(ctx, created, created.Version)

	// assert
	assert.ErrorIs(t, err, inventory.ErrConcurrencyConflict)
}

func Test_Save_Error_WhenRecordWasDeleted(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := givenStore(t)

	created, err := store.Create(ctx, givenBook(t, "Gone", "isbn-gone", 1))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, created.ID, created.Version))

	// act
	_, err = store.Save(ctx, created, created.Version)

	// assert
	assert.ErrorIs(t, err, inventory.ErrConcurrencyConflict)
}

func Test_Save_Error_WhenNewISBNIsTakenByAnotherRecord(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := givenStore(t)

	_, err := store.Create(ctx, givenBook(t, "Holder", "isbn-taken", 1))
	require.NoError(t, err)

	created, err := store.Create(ctx, givenBook(t, "Claimer", "isbn-free", 1))
	require.NoError(t, err)

	created.ISBN = "isbn-taken"

	// act
	_, err = store.Save(ctx, created, created.Version)

	// assert
	assert.ErrorIs(t, err, inventory.ErrDuplicateISBN)
}

func Test_Save_ReleasesOldISBN_WhenISBNChanges(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := givenStore(t)

	created, err := store.Create(ctx, givenBook(t, "Renamed", "isbn-old", 1))
	require.NoError(t, err)

	created.ISBN = "isbn-new"
	_, err = store.Save(ctx, created, created.Version)
	require.NoError(t, err)

	// act - the old ISBN is free again
	_, err = store.Create(ctx, givenBook(t, "Newcomer", "isbn-old", 1))

	// assert
	assert.NoError(t, err)
}

func Test_Delete_Error_WhenExpectedVersionIsStale(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := givenStore(t)

	created, err := store.Create(ctx, givenBook(t, "Contended Delete", "isbn-contended", 2))
	require.NoError(t, err)

	competing := created
	competing.Available--
	competing.Borrowers = competing.Borrowers.With(uuid.New())
	_, err = store.Save(ctx, competing, created.Version)
	require.NoError(t, err)

	// act
	err = store.Delete(ctx, created.ID, created.Version)

	// assert
	assert.ErrorIs(t, err, inventory.ErrConcurrencyConflict)
}

func Test_Delete_RemovesRecordAndFreesISBN(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := givenStore(t)

	created, err := store.Create(ctx, givenBook(t, "Removed", "isbn-removed", 1))
	require.NoError(t, err)

	// act
	err = store.Delete(ctx, created.ID, created.Version)

	// assert
	require.NoError(t, err)

	_, err = store.Get(ctx, created.ID)
	assert.ErrorIs(t, err, inventory.ErrBookNotFound)

	_, err = store.Create(ctx, givenBook(t, "Reuser", "isbn-removed", 1))
	assert.NoError(t, err)
}

func Test_Save_ConcurrentWritersOnSameVersion_ExactlyOneWins(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := givenStore(t)

	created, err := store.Create(ctx, givenBook(t, "Contended", "isbn-race", 10))
	require.NoError(t, err)

	const writers = 8

	var wg sync.WaitGroup
	results := make(chan error, writers)

	// act - all writers hold the same version token
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			mutated := created
			mutated.Available--
			mutated.Borrowers = mutated.Borrowers.With(uuid.New())

			_, saveErr := store.Save(ctx, mutated, created.Version)
			results <- saveErr
		}()
	}

	wg.Wait()
	close(results)

	// assert - exactly one save commits, the rest report a conflict
	successes := 0
	conflicts := 0
	for saveErr := range results {
		switch {
		case saveErr == nil:
			successes++
		default:
			require.ErrorIs(t, saveErr, inventory.ErrConcurrencyConflict)
			conflicts++
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, writers-1, conflicts)

	current, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, inventory.RecordVersionUint(2), current.Version)
	assert.NoError(t, current.CheckInvariant())
}

func Test_Get_Error_WhenContextCanceled(t *testing.T) {
	// arrange
	store := givenStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// act
	_, err := store.Get(ctx, uuid.New())

	// assert
	assert.ErrorIs(t, err, context.Canceled)
}

func givenStore(t *testing.T) *memoryengine.BookStore {
	t.Helper()

	store, err := memoryengine.NewBookStore()
	require.NoError(t, err)

	return store
}

func givenBook(t *testing.T, title string, isbn string, quantity int) inventory.Book {
	t.Helper()

	book, err := inventory.BuildBook(uuid.New(), title, "Test Author", isbn, quantity)
	require.NoError(t, err)

	return book
}

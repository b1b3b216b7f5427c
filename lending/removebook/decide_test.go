package removebook_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libtrack/library-lending-go/inventory"
	"github.com/libtrack/library-lending-go/lending/removebook"
	"github.com/libtrack/library-lending-go/lending/shared/core"
)

func Test_Decide_Success_WhenNoActiveLoans(t *testing.T) {
	// arrange
	book := givenBook(t, 3)

	// act
	err := removebook.Decide(book, removebook.BuildCommand(book.ID))

	// assert
	assert.NoError(t, err)
}

func Test_Decide_Error_WhenBookHasActiveLoans(t *testing.T) {
	// arrange
	book := givenBook(t, 3)
	book.Available--
	book.Borrowers = book.Borrowers.With(uuid.New())

	// act
	err := removebook.Decide(book, removebook.BuildCommand(book.ID))

	// assert
	assert.ErrorIs(t, err, core.ErrBookHasActiveLoans)
}

func givenBook(t *testing.T, quantity int) inventory.Book {
	t.Helper()

	book, err := inventory.BuildBook(uuid.New(), "Test Title", "Test Author", "isbn-"+uuid.NewString(), quantity)
	require.NoError(t, err)

	return book
}

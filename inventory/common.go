package inventory

import (
	"errors"
)

var (
	// ErrBookNotFound is returned when no record exists for the requested book ID.
	ErrBookNotFound = errors.New("book not found")

	// ErrDuplicateISBN is returned when a create or update would violate ISBN uniqueness.
	ErrDuplicateISBN = errors.New("a book with this isbn already exists")

	// ErrConcurrencyConflict is returned when a conditional update or delete affected no rows
	// because another writer committed to the same record first.
	ErrConcurrencyConflict = errors.New("concurrency conflict, no rows were affected")

	// ErrNilDatabaseConnection is returned when an engine is constructed with a nil connection.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyBooksTableName is returned when an empty table name is supplied to an engine option.
	ErrEmptyBooksTableName = errors.New("empty booksTableName supplied")

	// ErrBuildingQueryFailed is returned when the SQL builder fails to produce a statement.
	ErrBuildingQueryFailed = errors.New("building query failed")

	// ErrQueryingBooksFailed is returned when a read statement fails to execute.
	ErrQueryingBooksFailed = errors.New("querying books failed")

	// ErrScanningDBRowFailed is returned when a database row cannot be scanned into a record.
	ErrScanningDBRowFailed = errors.New("scanning database row failed")

	// ErrSavingBookFailed is returned when a write statement fails to execute.
	ErrSavingBookFailed = errors.New("saving book failed")

	// ErrDeletingBookFailed is returned when a delete statement fails to execute.
	ErrDeletingBookFailed = errors.New("deleting book failed")

	// ErrGettingRowsAffectedFailed is returned when the affected-rows count cannot be read.
	ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")
)

// RecordVersionUint is a type alias for uint, representing the version token of a Book record.
// A conditional write only commits when the stored version still equals the token the caller
// observed when reading; every committed write increments it by one.
type RecordVersionUint = uint

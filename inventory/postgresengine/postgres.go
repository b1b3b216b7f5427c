package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/libtrack/library-lending-go/inventory"
	"github.com/libtrack/library-lending-go/inventory/postgresengine/internal/adapters"
)

const (
	defaultBooksTableName     = "books"
	logMsgBuildQueryFailed    = "failed to build sql query"
	logMsgDBQueryFailed       = "database query execution failed"
	logMsgDBExecFailed        = "database execution failed"
	logMsgCloseRowsFailed     = "failed to close database rows"
	logMsgScanRowFailed       = "failed to scan database row"
	logMsgMarshalRowFailed    = "failed to marshal borrower set"
	logMsgUnmarshalRowFailed  = "failed to unmarshal borrower set"
	logMsgRowsAffectedFailed  = "failed to get rows affected count"
	logMsgBookCreated         = "book created"
	logMsgBookSaved           = "book saved"
	logMsgBookDeleted         = "book deleted"
	logMsgQueryCompleted      = "query completed"
	logMsgConcurrencyConflict = "concurrency conflict detected"
	logMsgDuplicateISBN       = "duplicate isbn rejected"
	logMsgSQLExecuted         = "executed sql for: "
	logMsgOperation           = "bookstore operation: "
	logAttrError              = "error"
	logAttrQuery              = "query"
	logAttrBookID             = "book_id"
	logAttrISBN               = "isbn"
	logAttrBookCount          = "book_count"
	logAttrDurationMS         = "duration_ms"
	logAttrExpectedVersion    = "expected_version"
	logAttrRowsAffected       = "rows_affected"
	logActionGet              = "get"
	logActionList             = "list"
	logActionCreate           = "create"
	logActionSave             = "save"
	logActionDelete           = "delete"
	colID                     = "id"
	colTitle                  = "title"
	colAuthor                 = "author"
	colISBN                   = "isbn"
	colQuantity               = "quantity"
	colAvailable              = "available"
	colBorrowers              = "borrowers"
	colVersion                = "version"
	colCreatedAt              = "created_at"
	colUpdatedAt              = "updated_at"
	castJsonb                 = "?::jsonb"
	castIDText                = "id::text"
	dialectPostgres           = "postgres"
)

type (
	sqlQueryString    = string
	rowsAffectedInt64 = int64
	queryDuration     = time.Duration
)

// BookStore is the PostgreSQL implementation of the book inventory store.
// It leverages a database adapter and supports customizable logging, metrics,
// tracing and table configuration.
type BookStore struct {
	db               adapters.DBAdapter
	booksTableName   string
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
	tracingCollector TracingCollector
}

// queryResultRow carries one scanned books row before conversion to inventory.Book.
type queryResultRow struct {
	id        string
	title     string
	author    string
	isbn      string
	quantity  int
	available int
	borrowers []byte
	version   inventory.RecordVersionUint
	createdAt time.Time
	updatedAt time.Time
}

// NewBookStoreFromPGXPool creates a new BookStore using a pgx Pool with optional configuration.
func NewBookStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (BookStore, error) {
	if db == nil {
		return BookStore{}, inventory.ErrNilDatabaseConnection
	}

	return newBookStore(adapters.NewPGXAdapter(db), options...)
}

// NewBookStoreFromSQLDB creates a new BookStore using a sql.DB with optional configuration.
func NewBookStoreFromSQLDB(db *sql.DB, options ...Option) (BookStore, error) {
	if db == nil {
		return BookStore{}, inventory.ErrNilDatabaseConnection
	}

	return newBookStore(adapters.NewSQLAdapter(db), options...)
}

// NewBookStoreFromSQLX creates a new BookStore using a sqlx.DB with optional configuration.
func NewBookStoreFromSQLX(db *sqlx.DB, options ...Option) (BookStore, error) {
	if db == nil {
		return BookStore{}, inventory.ErrNilDatabaseConnection
	}

	return newBookStore(adapters.NewSQLXAdapter(db), options...)
}

func newBookStore(db adapters.DBAdapter, options ...Option) (BookStore, error) {
	bs := BookStore{
		db:             db,
		booksTableName: defaultBooksTableName,
	}

	for _, option := range options {
		if err := option(&bs); err != nil {
			return BookStore{}, err
		}
	}

	return bs, nil
}

// Get retrieves a single book by ID, returning inventory.ErrBookNotFound when no record exists.
func (bs BookStore) Get(ctx context.Context, bookID uuid.UUID) (inventory.Book, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(bs.booksTableName).
		Select(bs.selectColumns()...).
		Where(goqu.C(colID).Eq(bookID.String()))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		bs.logError(ctx, logMsgBuildQueryFailed, toSQLErr)
		return inventory.Book{}, errors.Join(inventory.ErrBuildingQueryFailed, toSQLErr)
	}

	books, duration, queryErr := bs.executeSelectQuery(ctx, sqlQuery)
	if queryErr != nil {
		return inventory.Book{}, queryErr
	}

	if len(books) == 0 {
		return inventory.Book{}, inventory.ErrBookNotFound
	}

	bs.logOperation(
		ctx,
		logMsgQueryCompleted,
		logAttrBookID, bookID.String(),
		logAttrDurationMS, bs.durationToMilliseconds(duration))

	return books[0], nil
}

// List retrieves all books in insertion order.
func (bs BookStore) List(ctx context.Context) ([]inventory.Book, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(bs.booksTableName).
		Select(bs.selectColumns()...).
		Order(goqu.I(colCreatedAt).Asc())

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		bs.logError(ctx, logMsgBuildQueryFailed, toSQLErr)
		return nil, errors.Join(inventory.ErrBuildingQueryFailed, toSQLErr)
	}

	books, duration, queryErr := bs.executeSelectQuery(ctx, sqlQuery)
	if queryErr != nil {
		return nil, queryErr
	}

	bs.logOperation(
		ctx,
		logMsgQueryCompleted,
		logAttrBookCount, len(books),
		logAttrDurationMS, bs.durationToMilliseconds(duration))

	return books, nil
}

// Create inserts a new book record with version 1.
// It returns inventory.ErrDuplicateISBN when the ISBN is already taken.
func (bs BookStore) Create(ctx context.Context, book inventory.Book) (inventory.Book, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	book.Version = 1
	book.CreatedAt = now
	book.UpdatedAt = now

	borrowersJSON, marshalErr := jsoniter.ConfigFastest.Marshal(book.Borrowers)
	if marshalErr != nil {
		bs.logError(ctx, logMsgMarshalRowFailed, marshalErr, logAttrBookID, book.ID.String())
		return inventory.Book{}, errors.Join(inventory.ErrSavingBookFailed, marshalErr)
	}

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(bs.booksTableName).
		Cols(colID, colTitle, colAuthor, colISBN, colQuantity, colAvailable, colBorrowers, colVersion, colCreatedAt, colUpdatedAt).
		Vals(goqu.Vals{
			book.ID.String(),
			book.Title,
			book.Author,
			book.ISBN,
			book.Quantity,
			book.Available,
			goqu.L(castJsonb, string(borrowersJSON)),
			book.Version,
			book.CreatedAt,
			book.UpdatedAt,
		})

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		bs.logError(ctx, logMsgBuildQueryFailed, toSQLErr)
		return inventory.Book{}, errors.Join(inventory.ErrBuildingQueryFailed, toSQLErr)
	}

	_, duration, execErr := bs.executeExecQuery(ctx, sqlQuery, logActionCreate)
	if execErr != nil {
		if adapters.IsUniqueViolation(execErr) {
			bs.logOperation(ctx, logMsgDuplicateISBN, logAttrISBN, book.ISBN)
			bs.recordConflictMetrics(logActionCreate, conflictTypeDuplicateISBN)

			return inventory.Book{}, inventory.ErrDuplicateISBN
		}

		return inventory.Book{}, errors.Join(inventory.ErrSavingBookFailed, execErr)
	}

	bs.logOperation(
		ctx,
		logMsgBookCreated,
		logAttrBookID, book.ID.String(),
		logAttrDurationMS, bs.durationToMilliseconds(duration))

	return book, nil
}

// Save persists a mutated book record if and only if no other write has occurred
// since the record was read at expectedVersion. On success the returned record
// carries version expectedVersion+1. When the conditional update affects no rows,
// Save fails with inventory.ErrConcurrencyConflict; a record that was deleted
// concurrently surfaces the same way and resolves to not-found on re-read.
func (bs BookStore) Save(
	ctx context.Context,
	book inventory.Book,
	expectedVersion inventory.RecordVersionUint,
) (inventory.Book, error) {

	book.Version = expectedVersion + 1
	book.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

	borrowersJSON, marshalErr := jsoniter.ConfigFastest.Marshal(book.Borrowers)
	if marshalErr != nil {
		bs.logError(ctx, logMsgMarshalRowFailed, marshalErr, logAttrBookID, book.ID.String())
		return inventory.Book{}, errors.Join(inventory.ErrSavingBookFailed, marshalErr)
	}

	updateStmt := goqu.Dialect(dialectPostgres).
		Update(bs.booksTableName).
		Set(goqu.Record{
			colTitle:     book.Title,
			colAuthor:    book.Author,
			colISBN:      book.ISBN,
			colQuantity:  book.Quantity,
			colAvailable: book.Available,
			colBorrowers: goqu.L(castJsonb, string(borrowersJSON)),
			colVersion:   book.Version,
			colUpdatedAt: book.UpdatedAt,
		}).
		Where(goqu.And(
			goqu.C(colID).Eq(book.ID.String()),
			goqu.C(colVersion).Eq(expectedVersion),
		))

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		bs.logError(ctx, logMsgBuildQueryFailed, toSQLErr)
		return inventory.Book{}, errors.Join(inventory.ErrBuildingQueryFailed, toSQLErr)
	}

	rowsAffected, duration, execErr := bs.executeExecQuery(ctx, sqlQuery, logActionSave)
	if execErr != nil {
		if adapters.IsUniqueViolation(execErr) {
			bs.logOperation(ctx, logMsgDuplicateISBN, logAttrISBN, book.ISBN)
			bs.recordConflictMetrics(logActionSave, conflictTypeDuplicateISBN)

			return inventory.Book{}, inventory.ErrDuplicateISBN
		}

		return inventory.Book{}, errors.Join(inventory.ErrSavingBookFailed, execErr)
	}

	if rowsAffected == 0 {
		bs.logOperation(
			ctx,
			logMsgConcurrencyConflict,
			logAttrBookID, book.ID.String(),
			logAttrExpectedVersion, expectedVersion,
			logAttrRowsAffected, rowsAffected)
		bs.recordConflictMetrics(logActionSave, conflictTypeConcurrency)

		return inventory.Book{}, inventory.ErrConcurrencyConflict
	}

	bs.logOperation(
		ctx,
		logMsgBookSaved,
		logAttrBookID, book.ID.String(),
		logAttrDurationMS, bs.durationToMilliseconds(duration))

	return book, nil
}

// Delete removes a book record if and only if no other write has occurred since
// the record was read at expectedVersion. A conditional delete that affects no
// rows fails with inventory.ErrConcurrencyConflict; the caller distinguishes
// "gone" from "changed" by re-reading.
func (bs BookStore) Delete(
	ctx context.Context,
	bookID uuid.UUID,
	expectedVersion inventory.RecordVersionUint,
) error {

	deleteStmt := goqu.Dialect(dialectPostgres).
		Delete(bs.booksTableName).
		Where(goqu.And(
			goqu.C(colID).Eq(bookID.String()),
			goqu.C(colVersion).Eq(expectedVersion),
		))

	sqlQuery, _, toSQLErr := deleteStmt.ToSQL()
	if toSQLErr != nil {
		bs.logError(ctx, logMsgBuildQueryFailed, toSQLErr)
		return errors.Join(inventory.ErrBuildingQueryFailed, toSQLErr)
	}

	rowsAffected, duration, execErr := bs.executeExecQuery(ctx, sqlQuery, logActionDelete)
	if execErr != nil {
		return errors.Join(inventory.ErrDeletingBookFailed, execErr)
	}

	if rowsAffected == 0 {
		bs.logOperation(
			ctx,
			logMsgConcurrencyConflict,
			logAttrBookID, bookID.String(),
			logAttrExpectedVersion, expectedVersion,
			logAttrRowsAffected, rowsAffected)
		bs.recordConflictMetrics(logActionDelete, conflictTypeConcurrency)

		return inventory.ErrConcurrencyConflict
	}

	bs.logOperation(
		ctx,
		logMsgBookDeleted,
		logAttrBookID, bookID.String(),
		logAttrDurationMS, bs.durationToMilliseconds(duration))

	return nil
}

func (bs BookStore) selectColumns() []any {
	return []any{
		goqu.L(castIDText),
		goqu.C(colTitle),
		goqu.C(colAuthor),
		goqu.C(colISBN),
		goqu.C(colQuantity),
		goqu.C(colAvailable),
		goqu.C(colBorrowers),
		goqu.C(colVersion),
		goqu.C(colCreatedAt),
		goqu.C(colUpdatedAt),
	}
}

// executeSelectQuery executes the SQL query and scans all result rows into books.
func (bs BookStore) executeSelectQuery(ctx context.Context, sqlQuery string) (
	[]inventory.Book,
	queryDuration,
	error,
) {

	ctx, span := bs.startTraceSpan(ctx, spanNameQuery, map[string]string{spanAttrQuery: sqlQuery})

	start := time.Now()
	rows, queryErr := bs.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	bs.logQueryWithDuration(ctx, sqlQuery, logActionGet, duration)
	bs.recordDurationMetrics(metricQueryDuration, duration)

	if queryErr != nil {
		bs.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		bs.finishTraceSpan(span, statusError)

		return nil, duration, errors.Join(inventory.ErrQueryingBooksFailed, queryErr)
	}

	defer bs.closeRows(ctx, rows)

	books := make([]inventory.Book, 0)
	result := queryResultRow{}

	for rows.Next() {
		rowScanErr := rows.Scan(
			&result.id,
			&result.title,
			&result.author,
			&result.isbn,
			&result.quantity,
			&result.available,
			&result.borrowers,
			&result.version,
			&result.createdAt,
			&result.updatedAt,
		)
		if rowScanErr != nil {
			bs.logError(ctx, logMsgScanRowFailed, rowScanErr)
			bs.finishTraceSpan(span, statusError)

			return nil, duration, errors.Join(inventory.ErrScanningDBRowFailed, rowScanErr)
		}

		book, buildErr := bs.bookFromRow(ctx, result)
		if buildErr != nil {
			bs.finishTraceSpan(span, statusError)
			return nil, duration, buildErr
		}

		books = append(books, book)
	}

	bs.finishTraceSpan(span, statusOK)

	return books, duration, nil
}

// executeExecQuery executes a write statement and returns rows affected and duration.
func (bs BookStore) executeExecQuery(ctx context.Context, sqlQuery string, action string) (
	rowsAffectedInt64,
	queryDuration,
	error,
) {

	ctx, span := bs.startTraceSpan(ctx, spanNamePrefix+action, map[string]string{spanAttrQuery: sqlQuery})

	start := time.Now()
	tag, execErr := bs.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	bs.logQueryWithDuration(ctx, sqlQuery, action, duration)
	bs.recordDurationMetrics(metricExecDuration, duration)

	if execErr != nil {
		bs.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		bs.finishTraceSpan(span, statusError)

		return 0, duration, execErr
	}

	rowsAffected, rowsAffectedErr := tag.RowsAffected()
	if rowsAffectedErr != nil {
		bs.logError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)
		bs.finishTraceSpan(span, statusError)

		return 0, duration, errors.Join(inventory.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	bs.finishTraceSpan(span, statusOK)

	return rowsAffected, duration, nil
}

// bookFromRow converts a scanned row into an inventory.Book.
func (bs BookStore) bookFromRow(ctx context.Context, row queryResultRow) (inventory.Book, error) {
	bookID, parseErr := uuid.Parse(row.id)
	if parseErr != nil {
		bs.logError(ctx, logMsgScanRowFailed, parseErr)
		return inventory.Book{}, errors.Join(inventory.ErrScanningDBRowFailed, parseErr)
	}

	var borrowers inventory.BorrowerSet
	if unmarshalErr := jsoniter.ConfigFastest.Unmarshal(row.borrowers, &borrowers); unmarshalErr != nil {
		bs.logError(ctx, logMsgUnmarshalRowFailed, unmarshalErr, logAttrBookID, row.id)
		return inventory.Book{}, errors.Join(inventory.ErrScanningDBRowFailed, unmarshalErr)
	}

	return inventory.Book{
		ID:        bookID,
		Title:     row.title,
		Author:    row.author,
		ISBN:      row.isbn,
		Quantity:  row.quantity,
		Available: row.available,
		Borrowers: borrowers,
		Version:   row.version,
		CreatedAt: row.createdAt,
		UpdatedAt: row.updatedAt,
	}, nil
}

// closeRows safely closes database rows and logs any errors.
func (bs BookStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	closeErr := rows.Close()
	if closeErr == nil {
		return
	}

	if bs.contextualLogger != nil {
		bs.contextualLogger.WarnContext(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		return
	}

	if bs.logger != nil {
		bs.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/libtrack/library-lending-go/lending/addbook"
	"github.com/libtrack/library-lending-go/lending/borrowbook"
	"github.com/libtrack/library-lending-go/lending/listbooks"
	"github.com/libtrack/library-lending-go/lending/removebook"
	"github.com/libtrack/library-lending-go/lending/returnbook"
	"github.com/libtrack/library-lending-go/lending/shared/shell"
	"github.com/libtrack/library-lending-go/lending/updatebook"
)

const (
	msgUnauthorized     = "missing or invalid session token"
	msgForbidden        = "librarian role required"
	msgMalformedBody    = "malformed request body"
	msgMalformedBookID  = "malformed book id"
	pathValueBookID     = "id"
	maxRequestBodyBytes = 1 << 20
)

// Handler serves the lending API under /api/library.
type Handler struct {
	mux              *http.ServeMux
	sessions         SessionValidator
	retryOptions     []shell.RetryOption
	metricsCollector shell.MetricsCollector
	addBook          addbook.CommandHandler
	updateBook       updatebook.CommandHandler
	removeBook       removebook.CommandHandler
	borrowBook       borrowbook.CommandHandler
	returnBook       returnbook.CommandHandler
	listBooks        listbooks.QueryHandler
}

// Option configures a Handler.
type Option func(*Handler)

// WithRetryOptions passes a retry configuration down to every command
// handler that retries on concurrency conflicts.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *Handler) {
		h.retryOptions = opts
	}
}

// WithMetrics passes a metrics collector down to every command handler that
// retries on concurrency conflicts, labeling retry metrics per command type.
func WithMetrics(collector shell.MetricsCollector) Option {
	return func(h *Handler) {
		h.metricsCollector = collector
	}
}

// NewHandler wires the lending use cases to HTTP routes.
func NewHandler(bookStore shell.BookStore, sessions SessionValidator, options ...Option) *Handler {
	handler := &Handler{
		sessions: sessions,
	}

	for _, option := range options {
		option(handler)
	}

	// Creation has no prior record to conflict with, so addBook takes no retry options.
	handler.addBook = addbook.NewCommandHandler(bookStore)

	updateOptions := []updatebook.Option{updatebook.WithRetryOptions(handler.retryOptions...)}
	removeOptions := []removebook.Option{removebook.WithRetryOptions(handler.retryOptions...)}
	borrowOptions := []borrowbook.Option{borrowbook.WithRetryOptions(handler.retryOptions...)}
	returnOptions := []returnbook.Option{returnbook.WithRetryOptions(handler.retryOptions...)}

	if handler.metricsCollector != nil {
		updateOptions = append(updateOptions, updatebook.WithMetrics(handler.metricsCollector))
		removeOptions = append(removeOptions, removebook.WithMetrics(handler.metricsCollector))
		borrowOptions = append(borrowOptions, borrowbook.WithMetrics(handler.metricsCollector))
		returnOptions = append(returnOptions, returnbook.WithMetrics(handler.metricsCollector))
	}

	handler.updateBook = updatebook.NewCommandHandler(bookStore, updateOptions...)
	handler.removeBook = removebook.NewCommandHandler(bookStore, removeOptions...)
	handler.borrowBook = borrowbook.NewCommandHandler(bookStore, borrowOptions...)
	handler.returnBook = returnbook.NewCommandHandler(bookStore, returnOptions...)
	handler.listBooks = listbooks.NewQueryHandler(bookStore)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/library", handler.handleListBooks)
	mux.HandleFunc("POST /api/library", handler.handleAddBook)
	mux.HandleFunc("PUT /api/library/{id}", handler.handleUpdateBook)
	mux.HandleFunc("DELETE /api/library/{id}", handler.handleRemoveBook)
	mux.HandleFunc("POST /api/library/{id}/borrow", handler.handleBorrowBook)
	mux.HandleFunc("POST /api/library/{id}/return", handler.handleReturnBook)
	handler.mux = mux

	return handler
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleListBooks(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authenticate(w, r); !ok {
		return
	}

	catalog, err := h.listBooks.Handle(r.Context(), listbooks.BuildQuery())
	if err != nil {
		writeDomainError(w, err)

		return
	}

	writeCatalog(w, catalog)
}

type addBookRequest struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	ISBN     string `json:"isbn"`
	Quantity int    `json:"quantity"`
}

func (h *Handler) handleAddBook(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireLibrarian(w, r); !ok {
		return
	}

	var request addBookRequest
	if !decodeBody(w, r, &request) {
		return
	}

	command := addbook.BuildCommand(request.Title, request.Author, request.ISBN, request.Quantity)

	book, err := h.addBook.Handle(r.Context(), command)
	if err != nil {
		writeDomainError(w, err)

		return
	}

	writeBook(w, http.StatusCreated, book)
}

type updateBookRequest struct {
	Title    *string `json:"title"`
	Author   *string `json:"author"`
	ISBN     *string `json:"isbn"`
	Quantity *int    `json:"quantity"`
}

func (h *Handler) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireLibrarian(w, r); !ok {
		return
	}

	bookID, ok := bookIDFromPath(w, r)
	if !ok {
		return
	}

	var request updateBookRequest
	if !decodeBody(w, r, &request) {
		return
	}

	command := updatebook.BuildCommand(bookID, request.Title, request.Author, request.ISBN, request.Quantity)

	book, err := h.updateBook.Handle(r.Context(), command)
	if err != nil {
		writeDomainError(w, err)

		return
	}

	writeBook(w, http.StatusOK, book)
}

func (h *Handler) handleRemoveBook(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireLibrarian(w, r); !ok {
		return
	}

	bookID, ok := bookIDFromPath(w, r)
	if !ok {
		return
	}

	book, err := h.removeBook.Handle(r.Context(), removebook.BuildCommand(bookID))
	if err != nil {
		writeDomainError(w, err)

		return
	}

	writeBook(w, http.StatusOK, book)
}

func (h *Handler) handleBorrowBook(w http.ResponseWriter, r *http.Request) {
	session, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	bookID, ok := bookIDFromPath(w, r)
	if !ok {
		return
	}

	book, err := h.borrowBook.Handle(r.Context(), borrowbook.BuildCommand(bookID, session.UserID))
	if err != nil {
		writeDomainError(w, err)

		return
	}

	writeBook(w, http.StatusOK, book)
}

func (h *Handler) handleReturnBook(w http.ResponseWriter, r *http.Request) {
	session, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	bookID, ok := bookIDFromPath(w, r)
	if !ok {
		return
	}

	book, err := h.returnBook.Handle(r.Context(), returnbook.BuildCommand(bookID, session.UserID))
	if err != nil {
		writeDomainError(w, err)

		return
	}

	writeBook(w, http.StatusOK, book)
}

// authenticate resolves the caller's session or writes a 401 response.
func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) (Session, bool) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)

		return Session{}, false
	}

	session, err := h.sessions.Validate(r.Context(), token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)

		return Session{}, false
	}

	return session, true
}

// requireLibrarian authenticates the caller and enforces the librarian role.
func (h *Handler) requireLibrarian(w http.ResponseWriter, r *http.Request) (Session, bool) {
	session, ok := h.authenticate(w, r)
	if !ok {
		return Session{}, false
	}

	if session.Role != RoleLibrarian {
		writeError(w, http.StatusUnauthorized, msgForbidden)

		return Session{}, false
	}

	return session, true
}

func bookIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	bookID, err := uuid.Parse(r.PathValue(pathValueBookID))
	if err != nil {
		writeError(w, http.StatusBadRequest, msgMalformedBookID)

		return uuid.Nil, false
	}

	return bookID, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	body := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer func() { _ = body.Close() }()

	if err := json.NewDecoder(body).Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, msgMalformedBody)

		return false
	}

	return true
}

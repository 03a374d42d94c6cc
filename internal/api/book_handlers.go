package api

import (
	"bytes"
	"context"
	"errors"
	"math/rand/v2"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/bookshelf/internal/bookstore"
	"github.com/listenupapp/bookshelf/internal/domain"
	domainerrors "github.com/listenupapp/bookshelf/internal/errors"
	"github.com/listenupapp/bookshelf/internal/export"
	"github.com/listenupapp/bookshelf/internal/seed"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Loads the collection unless it was fetched moments ago and returns it with its load state. q narrows the list; every word must match.",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "exportBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/export.csv",
		Summary:     "Export books",
		Description: "Returns the collection as CSV",
		Tags:        []string{"Books"},
	}, s.handleExportBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns one book from the loaded collection",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/books",
		Summary:       "Create book",
		Description:   "Validates and sends a new book to the books service, then reloads the collection. Missing id and addedDate are filled in.",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}",
		Summary:     "Replace book",
		Description: "Replaces the whole record stored under id, then reloads the collection",
		Tags:        []string{"Books"},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteBook",
		Method:        http.MethodDelete,
		Path:          "/api/v1/books/{id}",
		Summary:       "Delete book",
		Description:   "Deletes the record stored under id, then reloads the collection",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "refreshBooks",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/refresh",
		Summary:     "Refresh books",
		Description: "Fetches the collection unconditionally",
		Tags:        []string{"Books"},
	}, s.handleRefreshBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "seedBooks",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/seed",
		Summary:     "Seed books",
		Description: "Creates placeholder books named Book1..BookN one after another",
		Tags:        []string{"Books"},
	}, s.handleSeedBooks)
}

// === DTOs ===

// BookInput is the request body for create and replace. Every field is
// optional at the schema level; the form rules are applied after defaults.
type BookInput struct {
	ID            *int64   `json:"id,omitempty" doc:"Identifier, defaults to the current time in milliseconds on create"`
	Title         string   `json:"title,omitempty" maxLength:"500" doc:"Title, required"`
	Author        string   `json:"author,omitempty" maxLength:"500"`
	IBAN          string   `json:"iban,omitempty" maxLength:"64"`
	PublishedDate string   `json:"publishedDate,omitempty"`
	AddedDate     string   `json:"addedDate,omitempty" doc:"Defaults to today on create and to the stored date on replace"`
	ReadingStatus string   `json:"readingStatus,omitempty" doc:"None, In Progress or Finished. Defaults to None"`
	Category      []string `json:"category,omitempty"`
	BookSize      string   `json:"bookSize,omitempty" doc:"Magazine, Novel, Textbook or Other. Defaults to Other"`
	Description   string   `json:"description,omitempty" maxLength:"5000"`
	Price         *float64 `json:"price,omitempty"`
	Quantity      *int     `json:"quantity,omitempty" doc:"Defaults to 1"`
	Rating        *float64 `json:"rating,omitempty"`
}

// toBook overlays the provided fields on the defaults of an empty form.
func (in *BookInput) toBook(base domain.Book) domain.Book {
	b := base
	if in.ID != nil {
		b.ID = *in.ID
	}
	b.Title = in.Title
	b.Author = in.Author
	b.IBAN = in.IBAN
	b.PublishedDate = in.PublishedDate
	if in.AddedDate != "" {
		b.AddedDate = in.AddedDate
	}
	if in.ReadingStatus != "" {
		status, err := domain.ParseReadingStatus(in.ReadingStatus)
		if err != nil {
			// Left as given so validation reports it.
			status = domain.ReadingStatus(in.ReadingStatus)
		}
		b.ReadingStatus = status
	}
	if in.Category != nil {
		b.Category = append([]string{}, in.Category...)
	}
	if in.BookSize != "" {
		size, err := domain.ParseBookSize(in.BookSize)
		if err != nil {
			size = domain.BookSize(in.BookSize)
		}
		b.BookSize = size
	}
	b.Description = in.Description
	if in.Price != nil {
		b.Price = *in.Price
	}
	if in.Quantity != nil {
		b.Quantity = *in.Quantity
	}
	if in.Rating != nil {
		b.Rating = *in.Rating
	}
	return b
}

// BookListResponse is the collection as a consumer renders it.
type BookListResponse struct {
	Books     []domain.Book `json:"books" doc:"Books in collection order, stale if the last load failed"`
	IsLoading bool          `json:"isLoading" doc:"No load has finished yet"`
	IsError   bool          `json:"isError" doc:"The most recent load failed"`
	Error     string        `json:"error,omitempty" doc:"Why the most recent load failed"`
	Version   uint64        `json:"version" doc:"Increases with every state change"`
}

func listResponse(snap bookstore.Snapshot, books []domain.Book) BookListResponse {
	if books == nil {
		books = []domain.Book{}
	}
	resp := BookListResponse{
		Books:     books,
		IsLoading: snap.IsLoading,
		IsError:   snap.IsError,
		Version:   snap.Version,
	}
	if snap.Err != nil {
		resp.Error = snap.Err.Error()
	}
	return resp
}

// ListBooksInput contains parameters for listing books.
type ListBooksInput struct {
	Query string `query:"q" maxLength:"200" doc:"Quick filter"`
}

// BookListOutput wraps the collection for Huma.
type BookListOutput struct {
	Body BookListResponse
}

// BookIDInput addresses one book.
type BookIDInput struct {
	ID int64 `path:"id" doc:"Book ID"`
}

// BookOutput wraps a single book.
type BookOutput struct {
	Body domain.Book
}

// CreateBookInput contains the book to create.
type CreateBookInput struct {
	Body BookInput
}

// UpdateBookInput contains the replacement record.
type UpdateBookInput struct {
	ID   int64 `path:"id" doc:"Book ID"`
	Body BookInput
}

// SeedBooksInput contains seeding parameters.
type SeedBooksInput struct {
	Count int `query:"count" default:"10" minimum:"1" maximum:"500" doc:"How many books to create"`
}

// SeedResponse reports a seeding run.
type SeedResponse struct {
	Requested int      `json:"requested"`
	Created   int      `json:"created"`
	Failures  []string `json:"failures,omitempty"`
}

// SeedOutput wraps the seeding report.
type SeedOutput struct {
	Body SeedResponse
}

// ExportOutput is a CSV download.
type ExportOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*BookListOutput, error) {
	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	books := snap.Books
	if input.Query != "" {
		books, err = s.filterBooks(ctx, snap, input.Query)
		if err != nil {
			return nil, err
		}
	}

	return &BookListOutput{Body: listResponse(snap, books)}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if !snap.Loaded && snap.IsError {
		return nil, snap.Err
	}

	book, ok := domain.FindBook(snap.Books, input.ID)
	if !ok {
		return nil, domainerrors.NotFoundf("book %d not found", input.ID)
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	book := input.Body.toBook(domain.NewBook(s.now()))
	if err := s.services.Validator.ValidateBook(book); err != nil {
		return nil, err
	}

	created, err := s.services.Books.Create(ctx, book)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: created}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	book := input.Body.toBook(domain.NewBook(s.now()))
	book.ID = input.ID
	if input.Body.AddedDate == "" {
		book.AddedDate = s.addedDateOf(ctx, input.ID, book.AddedDate)
	}
	if err := s.services.Validator.ValidateBook(book); err != nil {
		return nil, err
	}

	updated, err := s.services.Books.Update(ctx, input.ID, book)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: updated}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*struct{}, error) {
	if err := s.services.Books.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleRefreshBooks(ctx context.Context, _ *struct{}) (*BookListOutput, error) {
	if err := s.services.Books.Revalidate(ctx); err != nil {
		return nil, err
	}
	snap := s.services.Books.Snapshot()
	return &BookListOutput{Body: listResponse(snap, snap.Books)}, nil
}

func (s *Server) handleSeedBooks(ctx context.Context, input *SeedBooksInput) (*SeedOutput, error) {
	count := input.Count
	if count <= 0 {
		count = defaultSeedCount
	}
	if count > maxSeedCount {
		count = maxSeedCount
	}

	now := s.now()
	rng := rand.New(rand.NewPCG(uint64(now.UnixNano()), 0)) //nolint:gosec // placeholder data
	books := seed.Dummy(now, rng, count)

	created, err := seed.Fill(ctx, s.services.Books, books)
	resp := SeedResponse{Requested: count, Created: created}
	if err != nil {
		if created == 0 {
			return nil, err
		}
		resp.Failures = failureMessages(err)
		s.logger.Warn("seeding partially failed", "created", created, "requested", count)
	}
	return &SeedOutput{Body: resp}, nil
}

func (s *Server) handleExportBooks(ctx context.Context, _ *struct{}) (*ExportOutput, error) {
	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if !snap.Loaded && snap.IsError {
		return nil, snap.Err
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, snap.Books); err != nil {
		return nil, domainerrors.Internal("export books").WithCause(err)
	}

	return &ExportOutput{
		ContentType:        "text/csv; charset=utf-8",
		ContentDisposition: `attachment; filename="` + exportFilename + `"`,
		Body:               buf.Bytes(),
	}, nil
}

// === Helpers ===

// loadSnapshot runs an implicit load and returns the state it left behind.
// A failed load is not an error here: the snapshot carries it and any stale
// books. Only the caller going away is.
func (s *Server) loadSnapshot(ctx context.Context) (bookstore.Snapshot, error) {
	if err := s.services.Books.Load(ctx); err != nil && ctx.Err() != nil {
		return bookstore.Snapshot{}, ctx.Err()
	}
	return s.services.Books.Snapshot(), nil
}

// filterBooks runs q against the search index, rebuilding it first when the
// snapshot is newer than what it holds.
func (s *Server) filterBooks(ctx context.Context, snap bookstore.Snapshot, q string) ([]domain.Book, error) {
	s.indexMu.Lock()
	if !s.indexed || s.indexVersion != snap.Version {
		if err := s.services.Search.Rebuild(snap.Books); err != nil {
			s.indexMu.Unlock()
			return nil, domainerrors.Internal("search books").WithCause(err)
		}
		s.indexed = true
		s.indexVersion = snap.Version
	}
	s.indexMu.Unlock()

	books, err := s.services.Search.FilterBooks(ctx, snap.Books, q)
	if err != nil {
		return nil, domainerrors.Internal("search books").WithCause(err)
	}
	return books, nil
}

// addedDateOf returns the date a book was added, as currently loaded, so a
// replace that leaves it out does not re-date the record. fallback is used
// when the book is not in the collection.
func (s *Server) addedDateOf(ctx context.Context, bookID int64, fallback string) string {
	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return fallback
	}
	if existing, ok := domain.FindBook(snap.Books, bookID); ok && existing.AddedDate != "" {
		return existing.AddedDate
	}
	return fallback
}

// failureMessages flattens a joined error into one message per failure.
func failureMessages(err error) []string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		errs := joined.Unwrap()
		out := make([]string, 0, len(errs))
		for _, e := range errs {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}

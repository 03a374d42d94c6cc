package api

import (
	"context"

	"github.com/listenupapp/bookshelf/internal/bookstore"
	"github.com/listenupapp/bookshelf/internal/domain"
	"github.com/listenupapp/bookshelf/internal/search"
	"github.com/listenupapp/bookshelf/internal/sse"
	"github.com/listenupapp/bookshelf/internal/validation"
)

// BookStore is the part of *bookstore.Store the handlers use.
type BookStore interface {
	Load(ctx context.Context) error
	Revalidate(ctx context.Context) error
	Create(ctx context.Context, book domain.Book) (domain.Book, error)
	Update(ctx context.Context, id int64, book domain.Book) (domain.Book, error)
	Delete(ctx context.Context, id int64) error
	Snapshot() bookstore.Snapshot
}

// Services groups the collaborators the API server needs.
type Services struct {
	Books     BookStore
	Search    *search.Index
	Validator *validation.Validator
	Events    *sse.Manager // optional, only used for health reporting
}

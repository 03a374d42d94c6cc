package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/listenupapp/bookshelf/internal/bookapi"
	"github.com/listenupapp/bookshelf/internal/bookstore"
	"github.com/listenupapp/bookshelf/internal/config"
	"github.com/listenupapp/bookshelf/internal/logger"
)

// ProvideBooksClient provides the HTTP client for the books service.
func ProvideBooksClient(i do.Injector) (*bookapi.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	timeout := cfg.BooksAPI.Timeout
	if timeout == 0 {
		// Zero in config means no timeout; the client reads zero as "default".
		timeout = -1
	}

	client := bookapi.New(bookapi.Options{
		BaseURL: cfg.BooksAPI.BaseURL,
		Timeout: timeout,
		RPS:     cfg.BooksAPI.RPS,
		Burst:   cfg.BooksAPI.Burst,
		Logger:  log.WithComponent("bookapi").Logger,
	})

	log.Info("Books service client configured",
		"base_url", client.BaseURL(),
		"timeout", cfg.BooksAPI.Timeout,
	)
	return client, nil
}

// BookStoreHandle wraps the book store with shutdown capability.
type BookStoreHandle struct {
	*bookstore.Store
}

// Shutdown implements do.ShutdownerWithError.
func (h *BookStoreHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideBookStore provides the book store and starts the first load in the
// background. A failed warm-up is not fatal; the next read retries.
func ProvideBookStore(i do.Injector) (*BookStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	client := do.MustInvoke[*bookapi.Client](i)

	store := bookstore.New(client, bookstore.Options{
		DedupeInterval: cfg.Store.DedupeInterval,
		Logger:         log,
	})

	go func() {
		if err := store.Load(context.Background()); err != nil {
			log.Warn("Initial book load failed", "error", err)
			return
		}
		log.Info("Initial book load complete", "books", len(store.Books()))
	}()

	return &BookStoreHandle{Store: store}, nil
}

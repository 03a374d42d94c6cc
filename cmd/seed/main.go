// Package main fills the books service with placeholder books.
//
// Books are named Book1..BookN and created one after another through the
// book store, which resyncs after every create.
//
// Usage:
//
//	BOOKS_API_URL=http://localhost:3001 go run ./cmd/seed -count 25
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/listenupapp/bookshelf/internal/bookapi"
	"github.com/listenupapp/bookshelf/internal/bookstore"
	"github.com/listenupapp/bookshelf/internal/config"
	"github.com/listenupapp/bookshelf/internal/logger"
	"github.com/listenupapp/bookshelf/internal/seed"
)

func main() {
	os.Exit(run())
}

// run does the work and returns the exit code, so deferred cleanup happens
// before the process exits.
func run() int {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	count := fs.Int("count", seed.DefaultCount, fmt.Sprintf("Number of books to create (1-%d)", seed.MaxCount))
	rngSeed := fs.Uint64("seed", 0, "Random seed for statuses and ratings (default: current time)")

	cfg, err := config.Load(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	if *count < 1 || *count > seed.MaxCount {
		log.Error("count out of range", "count", *count, "max", seed.MaxCount)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	timeout := cfg.BooksAPI.Timeout
	if timeout == 0 {
		timeout = -1
	}
	client := bookapi.New(bookapi.Options{
		BaseURL: cfg.BooksAPI.BaseURL,
		Timeout: timeout,
		RPS:     cfg.BooksAPI.RPS,
		Burst:   cfg.BooksAPI.Burst,
		Logger:  log.WithComponent("bookapi").Logger,
	})
	store := bookstore.New(client, bookstore.Options{Logger: log})
	defer store.Close()

	now := time.Now()
	if *rngSeed == 0 {
		*rngSeed = uint64(now.UnixNano())
	}
	rng := rand.New(rand.NewPCG(*rngSeed, 0)) //nolint:gosec // placeholder data

	log.Info("Seeding books", "count", *count, "books_api", client.BaseURL())

	created, err := seed.Fill(ctx, store, seed.Dummy(now, rng, *count))
	if err != nil {
		log.WithError(err).Error("Seeding finished with failures", "created", created, "requested", *count)
		return 1
	}

	log.Info("Seeding complete", "created", created, "collection_size", len(store.Books()))
	return 0
}

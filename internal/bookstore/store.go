// Package bookstore holds the canonical in-memory copy of the books collection.
//
// The store never patches its copy locally. Every successful or failed
// mutation is followed by a full re-fetch, so readers only ever see what the
// books service last returned.
package bookstore

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"

	"github.com/listenupapp/bookshelf/internal/domain"
	domainerrors "github.com/listenupapp/bookshelf/internal/errors"
	"github.com/listenupapp/bookshelf/internal/logger"
)

// DefaultDedupeInterval matches the window in which repeated implicit loads
// reuse the cached collection.
const DefaultDedupeInterval = 2 * time.Second

const (
	freshKey  = "books"
	flightKey = "list"
)

// Backend is the remote books resource.
type Backend interface {
	List(ctx context.Context) ([]domain.Book, error)
	Create(ctx context.Context, book domain.Book) (domain.Book, error)
	Update(ctx context.Context, id int64, book domain.Book) (domain.Book, error)
	Delete(ctx context.Context, id int64) error
}

// Options configures a Store.
type Options struct {
	// DedupeInterval suppresses Load calls that follow a successful fetch
	// within the window. Zero disables deduplication.
	DedupeInterval time.Duration
	Logger         *logger.Logger
	// Now is the clock used for UpdatedAt. Defaults to time.Now.
	Now func() time.Time
}

// Snapshot is a consistent view of the store at one point in time.
type Snapshot struct {
	// Books is nil until the first successful load.
	Books []domain.Book
	// Loaded is true once any load has succeeded.
	Loaded bool
	// IsLoading is true while no load has succeeded and none has failed.
	IsLoading bool
	// IsError is true when the most recent load failed.
	IsError bool
	// Err is the most recent load failure, nil after a successful load.
	Err error
	// UpdatedAt is when Books was last replaced.
	UpdatedAt time.Time
	// Version increases with every state change.
	Version uint64
}

// Store is safe for concurrent use.
type Store struct {
	backend Backend
	logger  *logger.Logger
	now     func() time.Time
	dedupe  time.Duration

	fresh  *ttlcache.Cache[string, time.Time]
	flight singleflight.Group

	// Mutations run one at a time so the resync after each one observes it.
	mutateMu sync.Mutex

	// fetchSeq numbers fetches in start order. A result is applied only if no
	// later-started fetch has been applied already.
	fetchSeq atomic.Uint64

	mu         sync.RWMutex
	state      Snapshot
	appliedSeq uint64
	subs       map[uint64]*subscriber
	nextSub    uint64
	closed     bool
}

// New creates a store over backend. Nothing is fetched until the first Load.
func New(backend Backend, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DedupeInterval < 0 {
		opts.DedupeInterval = 0
	}

	s := &Store{
		backend: backend,
		logger:  opts.Logger.WithComponent("bookstore"),
		now:     opts.Now,
		dedupe:  opts.DedupeInterval,
		state:   Snapshot{IsLoading: true},
		subs:    make(map[uint64]*subscriber),
	}
	if s.dedupe > 0 {
		s.fresh = ttlcache.New(
			ttlcache.WithTTL[string, time.Time](s.dedupe),
			ttlcache.WithDisableTouchOnHit[string, time.Time](),
		)
		go s.fresh.Start()
	}
	return s
}

// Load fetches the collection unless a fetch succeeded within the dedupe
// window. Concurrent callers share one in-flight request. A canceled ctx
// stops the wait but not the shared request.
func (s *Store) Load(ctx context.Context) error {
	if s.isFresh() {
		return nil
	}

	ch := s.flight.DoChan(flightKey, func() (any, error) {
		return nil, s.fetch(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Revalidate fetches the collection unconditionally. On success the local
// copy is replaced and the error cleared. On failure the previous copy stays
// and the returned error matches errors.ErrLoadFailed.
func (s *Store) Revalidate(ctx context.Context) error {
	return s.fetch(ctx)
}

// Create sends book to the service and then resyncs, whatever the outcome.
// The acknowledgement is returned as received.
func (s *Store) Create(ctx context.Context, book domain.Book) (domain.Book, error) {
	s.mutateMu.Lock()
	defer s.mutateMu.Unlock()

	created, err := s.backend.Create(ctx, book)
	s.resync(context.WithoutCancel(ctx), "create")
	if err != nil {
		s.logger.WithBook(book.ID).WithError(err).Warn("create failed")
		return domain.Book{}, domainerrors.MutationFailed("create", err)
	}
	return created, nil
}

// Update replaces the record stored under id and then resyncs. Whether id
// exists is left to the service.
func (s *Store) Update(ctx context.Context, id int64, book domain.Book) (domain.Book, error) {
	s.mutateMu.Lock()
	defer s.mutateMu.Unlock()

	updated, err := s.backend.Update(ctx, id, book)
	s.resync(context.WithoutCancel(ctx), "update")
	if err != nil {
		s.logger.WithBook(id).WithError(err).Warn("update failed")
		return domain.Book{}, domainerrors.MutationFailed("update", err)
	}
	return updated, nil
}

// Delete removes the record stored under id and then resyncs.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mutateMu.Lock()
	defer s.mutateMu.Unlock()

	err := s.backend.Delete(ctx, id)
	s.resync(context.WithoutCancel(ctx), "delete")
	if err != nil {
		s.logger.WithBook(id).WithError(err).Warn("delete failed")
		return domainerrors.MutationFailed("delete", err)
	}
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyStateLocked()
}

// Books returns a copy of the collection, nil if never loaded.
func (s *Store) Books() []domain.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneBooks(s.state.Books)
}

// IsLoading reports whether the store is still waiting for its first result.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsLoading
}

// IsError reports whether the most recent load failed.
func (s *Store) IsError() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsError
}

// Close releases the dedupe cache and closes every subscription.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := s.subs
	s.subs = make(map[uint64]*subscriber)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.close()
	}
	if s.fresh != nil {
		s.fresh.Stop()
	}
}

func (s *Store) isFresh() bool {
	if s.fresh == nil {
		return false
	}
	item := s.fresh.Get(freshKey)
	return item != nil && s.now().Sub(item.Value()) < s.dedupe
}

// resync runs after a mutation with a context detached from the caller's
// cancellation: the write may have landed even if the caller gave up. Its
// failure is recorded in the state, not returned, so the mutation outcome
// stays what the caller sees.
func (s *Store) resync(ctx context.Context, op string) {
	if err := s.fetch(ctx); err != nil {
		s.logger.WithError(err).Warn("resync after "+op+" failed")
	}
}

func (s *Store) fetch(ctx context.Context) error {
	seq := s.fetchSeq.Add(1)
	books, err := s.backend.List(ctx)
	if err != nil {
		loadErr := domainerrors.LoadFailed(err)
		s.applyFailure(seq, loadErr)
		return loadErr
	}
	if books == nil {
		books = []domain.Book{}
	}
	s.applySuccess(seq, books)
	return nil
}

func (s *Store) applySuccess(seq uint64, books []domain.Book) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq < s.appliedSeq {
		return
	}
	s.appliedSeq = seq
	s.state.Books = domain.CloneBooks(books)
	s.state.Loaded = true
	s.state.IsLoading = false
	s.state.IsError = false
	s.state.Err = nil
	s.state.UpdatedAt = now
	s.state.Version++

	if s.fresh != nil {
		s.fresh.Set(freshKey, now, ttlcache.DefaultTTL)
	}

	s.logger.Debug("books loaded", "count", len(books), "version", s.state.Version)
	s.publishLocked()
}

func (s *Store) applyFailure(seq uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq < s.appliedSeq {
		return
	}
	s.appliedSeq = seq
	s.state.IsLoading = false
	s.state.IsError = true
	s.state.Err = err
	s.state.Version++

	// The next Load must reach the service instead of reusing a copy that
	// is now marked as failed.
	if s.fresh != nil {
		s.fresh.Delete(freshKey)
	}

	s.logger.WithError(err).Warn("books load failed", "stale_count", len(s.state.Books))
	s.publishLocked()
}

func (s *Store) copyStateLocked() Snapshot {
	snap := s.state
	snap.Books = domain.CloneBooks(s.state.Books)
	return snap
}

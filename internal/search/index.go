// Package search implements the quick filter over the book table with an
// in-memory bleve index.
package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/listenupapp/bookshelf/internal/domain"
	"github.com/listenupapp/bookshelf/internal/logger"
)

// Terms at least this long also match with one edit of fuzziness.
const minFuzzyLen = 4

// Index answers quick-filter queries against the last indexed collection.
// All methods are safe for concurrent use.
type Index struct {
	mu     sync.RWMutex
	index  bleve.Index
	order  []int64
	logger *logger.Logger
}

// New creates an empty index.
func New(log *logger.Logger) (*Index, error) {
	if log == nil {
		log = logger.Discard()
	}
	idx, err := newMemIndex()
	if err != nil {
		return nil, err
	}
	return &Index{index: idx, logger: log.WithComponent("search")}, nil
}

func newMemIndex() (bleve.Index, error) {
	m, err := buildIndexMapping()
	if err != nil {
		return nil, fmt.Errorf("build mapping: %w", err)
	}
	idx, err := bleve.NewMemOnly(m)
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return idx, nil
}

// Rebuild replaces the indexed collection with books.
func (s *Index) Rebuild(books []domain.Book) error {
	idx, err := newMemIndex()
	if err != nil {
		return err
	}

	batch := idx.NewBatch()
	order := make([]int64, 0, len(books))
	for i := range books {
		b := &books[i]
		docID := strconv.FormatInt(b.ID, 10)
		if err := batch.Index(docID, map[string]any{
			fieldID:   docID,
			fieldText: documentText(b),
		}); err != nil {
			_ = idx.Close()
			return fmt.Errorf("index book %d: %w", b.ID, err)
		}
		order = append(order, b.ID)
	}
	if err := idx.Batch(batch); err != nil {
		_ = idx.Close()
		return fmt.Errorf("apply batch: %w", err)
	}

	s.mu.Lock()
	old := s.index
	s.index = idx
	s.order = order
	s.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			s.logger.WithError(err).Warn("close previous index")
		}
	}
	s.logger.Debug("search index rebuilt", "count", len(order))
	return nil
}

// Filter returns the ids of books matching every term of q, in collection
// order. A term matches a word by prefix or, for longer terms, within one
// edit. A blank query returns every book.
func (s *Index) Filter(ctx context.Context, q string) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	terms := Terms(q)
	if len(terms) == 0 || len(s.order) == 0 {
		out := make([]int64, len(s.order))
		copy(out, s.order)
		if len(terms) > 0 {
			out = out[:0]
		}
		return out, nil
	}

	req := bleve.NewSearchRequestOptions(buildQuery(terms), len(s.order), 0, false)
	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	hits := make(map[string]struct{}, len(res.Hits))
	for _, h := range res.Hits {
		hits[h.ID] = struct{}{}
	}

	out := make([]int64, 0, len(hits))
	for _, bookID := range s.order {
		if _, ok := hits[strconv.FormatInt(bookID, 10)]; ok {
			out = append(out, bookID)
		}
	}
	return out, nil
}

// FilterBooks narrows books to the matches of q, keeping their order.
func (s *Index) FilterBooks(ctx context.Context, books []domain.Book, q string) ([]domain.Book, error) {
	ids, err := s.Filter(ctx, q)
	if err != nil {
		return nil, err
	}
	keep := make(map[int64]struct{}, len(ids))
	for _, bookID := range ids {
		keep[bookID] = struct{}{}
	}
	out := make([]domain.Book, 0, len(ids))
	for _, b := range books {
		if _, ok := keep[b.ID]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

// Close releases the index.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return nil
	}
	err := s.index.Close()
	s.index = nil
	s.order = nil
	return err
}

// Terms splits a query into lowercase words the same way the analyzer does
// for the common cases.
func Terms(q string) []string {
	return strings.FieldsFunc(strings.ToLower(q), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func buildQuery(terms []string) query.Query {
	perTerm := make([]query.Query, 0, len(terms))
	for _, term := range terms {
		prefix := bleve.NewPrefixQuery(term)
		prefix.SetField(fieldText)
		alternatives := []query.Query{prefix}

		if len([]rune(term)) >= minFuzzyLen {
			fuzzy := bleve.NewFuzzyQuery(term)
			fuzzy.SetField(fieldText)
			fuzzy.SetFuzziness(1)
			alternatives = append(alternatives, fuzzy)
		}
		perTerm = append(perTerm, bleve.NewDisjunctionQuery(alternatives...))
	}
	if len(perTerm) == 1 {
		return perTerm[0]
	}
	return bleve.NewConjunctionQuery(perTerm...)
}

func documentText(b *domain.Book) string {
	parts := []string{
		b.Title,
		b.Author,
		b.IBAN,
		b.Description,
		string(b.ReadingStatus),
		string(b.BookSize),
	}
	parts = append(parts, b.Category...)
	return strings.Join(parts, " ")
}

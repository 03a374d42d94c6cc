package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/bookshelf/internal/domain"
)

func testBooks() []domain.Book {
	return []domain.Book{
		{ID: 3, Title: "Dune", Author: "Frank Herbert", ReadingStatus: domain.StatusFinished, BookSize: domain.SizeNovel, Category: []string{"Science Fiction"}},
		{ID: 1, Title: "Emma", Author: "Jane Austen", ReadingStatus: domain.StatusInProgress, BookSize: domain.SizeNovel, Category: []string{"classic", "romance"}},
		{ID: 2, Title: "The Go Programming Language", Author: "Donovan", IBAN: "9780134190440", ReadingStatus: domain.StatusNone, BookSize: domain.SizeTextbook},
		{ID: 4, Title: "Pride and Prejudice", Author: "Jane Austen", ReadingStatus: domain.StatusNone, BookSize: domain.SizeNovel, Category: []string{"classic"}},
	}
}

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	require.NoError(t, idx.Rebuild(testBooks()))
	return idx
}

func TestIndex_Filter(t *testing.T) {
	idx := newTestIndex(t)

	tests := []struct {
		name  string
		query string
		want  []int64
	}{
		{"blank returns all in order", "   ", []int64{3, 1, 2, 4}},
		{"title prefix", "dun", []int64{3}},
		{"author across books keeps order", "austen", []int64{1, 4}},
		{"every term must match", "jane pride", []int64{4}},
		{"case insensitive", "EMMA", []int64{1}},
		{"category", "classic", []int64{1, 4}},
		{"status words", "progress", []int64{1}},
		{"size", "textbook", []int64{2}},
		{"iban prefix", "978013", []int64{2}},
		{"stop word kept", "the", []int64{2}},
		{"typo tolerated", "herbrt", []int64{3}},
		{"no match", "tolkien", []int64{}},
		{"punctuation splits terms", "science-fiction", []int64{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := idx.Filter(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIndex_RebuildReplaces(t *testing.T) {
	idx := newTestIndex(t)

	require.NoError(t, idx.Rebuild([]domain.Book{{ID: 9, Title: "Neuromancer"}}))

	got, err := idx.Filter(context.Background(), "dune")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = idx.Filter(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []int64{9}, got)
}

func TestIndex_EmptyCollection(t *testing.T) {
	idx, err := New(nil)
	require.NoError(t, err)
	defer idx.Close()

	got, err := idx.Filter(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = idx.Filter(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIndex_FilterBooks(t *testing.T) {
	idx := newTestIndex(t)

	got, err := idx.FilterBooks(context.Background(), testBooks(), "austen")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Emma", got[0].Title)
	assert.Equal(t, "Pride and Prejudice", got[1].Title)
}

func TestTerms(t *testing.T) {
	assert.Equal(t, []string{"sci", "fi", "2024"}, Terms("Sci-Fi, 2024!"))
	assert.Empty(t, Terms(" \t "))
}

package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBook_Defaults(t *testing.T) {
	now := time.Date(2024, 3, 9, 22, 15, 0, 0, time.UTC)

	b := NewBook(now)

	assert.Equal(t, now.UnixMilli(), b.ID)
	assert.Equal(t, "2024-03-09", b.AddedDate)
	assert.Equal(t, StatusNone, b.ReadingStatus)
	assert.Equal(t, SizeOther, b.BookSize)
	assert.Equal(t, 1, b.Quantity)
	assert.Zero(t, b.Price)
	assert.Zero(t, b.Rating)
	assert.NotNil(t, b.Category)
	assert.Empty(t, b.Category)
}

func TestNewBook_AddedDateIsUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	now := time.Date(2024, 3, 10, 5, 0, 0, 0, loc) // 2024-03-09 19:00 UTC

	assert.Equal(t, "2024-03-09", NewBook(now).AddedDate)
}

func TestReadingStatus_Progress(t *testing.T) {
	tests := []struct {
		status ReadingStatus
		want   int
	}{
		{StatusNone, 0},
		{StatusInProgress, 50},
		{StatusFinished, 100},
		{ReadingStatus("Abandoned"), 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.Progress())
		})
	}
}

func TestParseReadingStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    ReadingStatus
		wantErr bool
	}{
		{"None", StatusNone, false},
		{"In Progress", StatusInProgress, false},
		{"in progress", StatusInProgress, false},
		{"InProgress", StatusInProgress, false},
		{" finished ", StatusFinished, false},
		{"reading", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseReadingStatus(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBookSize(t *testing.T) {
	got, err := ParseBookSize("textbook")
	require.NoError(t, err)
	assert.Equal(t, SizeTextbook, got)

	_, err = ParseBookSize("Pamphlet")
	assert.Error(t, err)
}

func TestBook_WireFormat(t *testing.T) {
	b := Book{
		ID:            5,
		Title:         "Dune",
		PublishedDate: "1965",
		AddedDate:     "2024-01-01",
		ReadingStatus: StatusInProgress,
		Category:      []string{"sci-fi"},
		BookSize:      SizeNovel,
		Quantity:      1,
		Rating:        4.5,
	}

	data, err := json.Marshal(b)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, "In Progress", raw["readingStatus"])
	assert.Equal(t, "Novel", raw["bookSize"])
	assert.Equal(t, "1965", raw["publishedDate"])
	assert.Equal(t, "2024-01-01", raw["addedDate"])
	assert.NotContains(t, raw, "author")
	assert.Contains(t, raw, "price")
}

func TestBook_CloneDoesNotShareCategory(t *testing.T) {
	original := Book{ID: 1, Category: []string{"a", "b"}}

	clone := original.Clone()
	clone.Category[0] = "changed"

	assert.Equal(t, "a", original.Category[0])
}

func TestBook_CloneKeepsEmptyCategory(t *testing.T) {
	clone := Book{Category: []string{}}.Clone()

	assert.NotNil(t, clone.Category)
	assert.Empty(t, clone.Category)
}

func TestCloneBooks_NilStaysNil(t *testing.T) {
	assert.Nil(t, CloneBooks(nil))
	assert.NotNil(t, CloneBooks([]Book{}))
}

func TestFindBook(t *testing.T) {
	books := []Book{{ID: 1, Title: "One"}, {ID: 2, Title: "Two"}}

	b, ok := FindBook(books, 2)
	assert.True(t, ok)
	assert.Equal(t, "Two", b.Title)

	_, ok = FindBook(books, 3)
	assert.False(t, ok)

	assert.Equal(t, 1, IndexOf(books, 2))
	assert.Equal(t, -1, IndexOf(books, 3))
}

package validation_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/bookshelf/internal/domain"
	domainerrors "github.com/listenupapp/bookshelf/internal/errors"
	"github.com/listenupapp/bookshelf/internal/validation"
)

func validBook() domain.Book {
	b := domain.NewBook(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	b.Title = "Dune"
	return b
}

func TestValidator_ValidBook(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.ValidateBook(validBook()))
}

func TestValidator_EmptyBookSizeAllowed(t *testing.T) {
	v := validation.New()
	b := validBook()
	b.BookSize = ""

	assert.NoError(t, v.ValidateBook(b))
}

func TestValidator_BookErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		mutate    func(b *domain.Book)
		wantField string
		wantMsg   string
	}{
		{
			name:      "missing title",
			mutate:    func(b *domain.Book) { b.Title = "" },
			wantField: "title",
			wantMsg:   "is required",
		},
		{
			name:      "zero quantity",
			mutate:    func(b *domain.Book) { b.Quantity = 0 },
			wantField: "quantity",
			wantMsg:   "must be greater than or equal to 1",
		},
		{
			name:      "negative price",
			mutate:    func(b *domain.Book) { b.Price = -0.5 },
			wantField: "price",
			wantMsg:   "must be greater than or equal to 0",
		},
		{
			name:      "rating above five",
			mutate:    func(b *domain.Book) { b.Rating = 5.5 },
			wantField: "rating",
			wantMsg:   "must be less than or equal to 5",
		},
		{
			name:      "unknown reading status",
			mutate:    func(b *domain.Book) { b.ReadingStatus = "Skimmed" },
			wantField: "readingStatus",
			wantMsg:   "must be one of: None, In Progress, Finished",
		},
		{
			name:      "missing reading status",
			mutate:    func(b *domain.Book) { b.ReadingStatus = "" },
			wantField: "readingStatus",
			wantMsg:   "is required",
		},
		{
			name:      "unknown book size",
			mutate:    func(b *domain.Book) { b.BookSize = "Poster" },
			wantField: "bookSize",
			wantMsg:   "must be one of: Magazine, Novel, Textbook, Other",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBook()
			tt.mutate(&b)

			err := v.ValidateBook(b)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())
			assert.True(t, errors.Is(err, domainerrors.ErrValidation))

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField])
		})
	}
}

func TestValidator_MultipleErrorsListedInMessage(t *testing.T) {
	v := validation.New()
	b := validBook()
	b.Title = ""
	b.Quantity = 0

	err := v.ValidateBook(b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantity, title")
}

// Package seed generates placeholder books for an empty library.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/listenupapp/bookshelf/internal/domain"
)

// DefaultCount is how many books a fill creates when no count is given.
const DefaultCount = 10

// MaxCount bounds a single fill.
const MaxCount = 500

// Creator is the part of the book store a fill needs.
type Creator interface {
	Create(ctx context.Context, book domain.Book) (domain.Book, error)
}

// Dummy builds n placeholder books named Book1..BookN. Ids continue from
// now in milliseconds. Reading status is drawn as None 30%, In Progress 30%
// and Finished 40%; rating is a whole number from 0 to 4.
func Dummy(now time.Time, rng *rand.Rand, n int) []domain.Book {
	base := domain.NewBook(now)
	books := make([]domain.Book, 0, n)
	for i := 1; i <= n; i++ {
		b := base.Clone()
		b.ID = base.ID + int64(i)
		b.Title = fmt.Sprintf("Book%d", i)
		b.ReadingStatus = statusFor(rng.Float64())
		b.Rating = math.Floor(rng.Float64() * 5)
		books = append(books, b)
	}
	return books
}

func statusFor(r float64) domain.ReadingStatus {
	switch {
	case r > 0.7:
		return domain.StatusNone
	case r > 0.4:
		return domain.StatusInProgress
	default:
		return domain.StatusFinished
	}
}

// Fill creates books one after another. A failed create does not stop the
// rest; the failures come back joined. It returns how many creates succeeded.
func Fill(ctx context.Context, c Creator, books []domain.Book) (int, error) {
	var errs []error
	created := 0
	for _, b := range books {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := c.Create(ctx, b); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.Title, err))
			continue
		}
		created++
	}
	return created, errors.Join(errs...)
}

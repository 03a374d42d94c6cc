package dashboard

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/bookshelf/internal/domain"
)

func book(id int64, status domain.ReadingStatus, tags ...string) domain.Book {
	return domain.Book{
		ID:            id,
		Title:         fmt.Sprintf("Book%d", id),
		ReadingStatus: status,
		Category:      tags,
		Quantity:      1,
	}
}

func TestSummarize_Empty(t *testing.T) {
	sum := Summarize(nil)

	assert.Zero(t, sum.TotalBooks)
	assert.NotNil(t, sum.Recent)
	assert.NotNil(t, sum.Reading)
	assert.NotNil(t, sum.Categories)
}

func TestSummarize_Counts(t *testing.T) {
	books := []domain.Book{
		book(1, domain.StatusNone),
		book(2, domain.StatusInProgress),
		book(3, domain.StatusFinished),
		book(4, domain.StatusInProgress),
	}

	sum := Summarize(books)

	assert.Equal(t, 4, sum.TotalBooks)
	assert.Equal(t, 2, sum.ReadingBooks)
	assert.Equal(t, 1, sum.FinishedBooks)
	require.Len(t, sum.Reading, 2)
	assert.Equal(t, int64(2), sum.Reading[0].ID)
	assert.Equal(t, int64(4), sum.Reading[1].ID)
	assert.Equal(t, 50, sum.Reading[0].Progress)
}

func TestSummarize_RecentIsTail(t *testing.T) {
	var books []domain.Book
	for i := int64(1); i <= 10; i++ {
		books = append(books, book(i, domain.StatusFinished))
	}

	sum := Summarize(books)

	require.Len(t, sum.Recent, RecentLimit)
	assert.Equal(t, int64(4), sum.Recent[0].ID)
	assert.Equal(t, int64(10), sum.Recent[6].ID)
	assert.Equal(t, 100, sum.Recent[0].Progress)
}

func TestSummarize_RecentShortCollection(t *testing.T) {
	sum := Summarize([]domain.Book{book(1, domain.StatusNone), book(2, domain.StatusNone)})

	require.Len(t, sum.Recent, 2)
	assert.Equal(t, 0, sum.Recent[0].Progress)
}

func TestSummarize_Categories(t *testing.T) {
	books := []domain.Book{
		book(1, domain.StatusNone, "Science Fiction", "classic"),
		book(2, domain.StatusNone, "science fiction", "Romance"),
		book(3, domain.StatusNone, "Classic", "", "!!"),
		book(4, domain.StatusNone, "Science  Fiction"),
	}

	sum := Summarize(books)

	assert.Equal(t, []CategoryCount{
		{Key: "science-fiction", Label: "Science Fiction", Count: 3},
		{Key: "classic", Label: "classic", Count: 2},
		{Key: "romance", Label: "Romance", Count: 1},
	}, sum.Categories)
}

func TestSummarize_NonLatinCategories(t *testing.T) {
	books := []domain.Book{
		book(1, domain.StatusNone, "Фантастика", "小説", "Fantasy"),
		book(2, domain.StatusNone, "Фантастика", "小説", "Fantasy"),
		book(3, domain.StatusNone, "фантастика"),
	}

	sum := Summarize(books)

	assert.Equal(t, []CategoryCount{
		{Key: "фантастика", Label: "Фантастика", Count: 3},
		{Key: "fantasy", Label: "Fantasy", Count: 2},
		{Key: "小説", Label: "小説", Count: 2},
	}, sum.Categories)
}

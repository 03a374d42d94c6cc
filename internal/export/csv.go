// Package export writes the book collection in spreadsheet friendly form.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/listenupapp/bookshelf/internal/domain"
)

// CategorySeparator joins a book's tags into one cell.
const CategorySeparator = "; "

// Header is the first CSV row.
var Header = []string{
	"id", "title", "author", "iban", "publishedDate", "addedDate",
	"readingStatus", "category", "bookSize", "description",
	"price", "quantity", "rating", "progress",
}

// WriteCSV writes books to w in collection order, one row per book.
func WriteCSV(w io.Writer, books []domain.Book) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range books {
		if err := cw.Write(record(&books[i])); err != nil {
			return fmt.Errorf("write book %d: %w", books[i].ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func record(b *domain.Book) []string {
	return []string{
		strconv.FormatInt(b.ID, 10),
		b.Title,
		b.Author,
		b.IBAN,
		b.PublishedDate,
		b.AddedDate,
		string(b.ReadingStatus),
		strings.Join(b.Category, CategorySeparator),
		string(b.BookSize),
		b.Description,
		strconv.FormatFloat(b.Price, 'f', -1, 64),
		strconv.Itoa(b.Quantity),
		strconv.FormatFloat(b.Rating, 'f', -1, 64),
		strconv.Itoa(b.ReadingStatus.Progress()),
	}
}

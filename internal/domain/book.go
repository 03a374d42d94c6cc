// Package domain contains the book entity and its closed value sets.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// AddedDateLayout is the plain-text layout used for Book.AddedDate.
const AddedDateLayout = "2006-01-02"

// ReadingStatus is the reading progress of a book. The string values are the
// wire representation and must not change.
type ReadingStatus string

// Reading statuses.
const (
	StatusNone       ReadingStatus = "None"
	StatusInProgress ReadingStatus = "In Progress"
	StatusFinished   ReadingStatus = "Finished"
)

// ReadingStatuses lists every reading status in display order.
var ReadingStatuses = []ReadingStatus{StatusNone, StatusInProgress, StatusFinished}

// Valid reports whether s is one of the known statuses.
func (s ReadingStatus) Valid() bool {
	switch s {
	case StatusNone, StatusInProgress, StatusFinished:
		return true
	default:
		return false
	}
}

// Progress returns the progress percentage shown for the status.
// Unknown statuses count as not started.
func (s ReadingStatus) Progress() int {
	switch s {
	case StatusInProgress:
		return 50
	case StatusFinished:
		return 100
	default:
		return 0
	}
}

// ParseReadingStatus parses a wire value. "InProgress" is accepted as an alias
// of "In Progress" so command-line input does not need quoting.
func ParseReadingStatus(s string) (ReadingStatus, error) {
	v := strings.TrimSpace(s)
	if strings.EqualFold(v, "inprogress") {
		return StatusInProgress, nil
	}
	for _, status := range ReadingStatuses {
		if strings.EqualFold(v, string(status)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown reading status %q", s)
}

// BookSize is the physical format of a book.
type BookSize string

// Book sizes.
const (
	SizeMagazine BookSize = "Magazine"
	SizeNovel    BookSize = "Novel"
	SizeTextbook BookSize = "Textbook"
	SizeOther    BookSize = "Other"
)

// BookSizes lists every book size in display order.
var BookSizes = []BookSize{SizeMagazine, SizeNovel, SizeTextbook, SizeOther}

// Valid reports whether s is one of the known sizes.
func (s BookSize) Valid() bool {
	switch s {
	case SizeMagazine, SizeNovel, SizeTextbook, SizeOther:
		return true
	default:
		return false
	}
}

// ParseBookSize parses a wire value, case-insensitively.
func ParseBookSize(s string) (BookSize, error) {
	v := strings.TrimSpace(s)
	for _, size := range BookSizes {
		if strings.EqualFold(v, string(size)) {
			return size, nil
		}
	}
	return "", fmt.Errorf("unknown book size %q", s)
}

// Book is a library record. Field names in the json tags are the wire format
// of the books resource.
type Book struct {
	ID            int64         `json:"id"`
	Title         string        `json:"title" validate:"required"`
	Author        string        `json:"author,omitempty"`
	IBAN          string        `json:"iban,omitempty"`
	PublishedDate string        `json:"publishedDate,omitempty"`
	AddedDate     string        `json:"addedDate"`
	ReadingStatus ReadingStatus `json:"readingStatus" validate:"required,reading_status"`
	Category      []string      `json:"category"`
	BookSize      BookSize      `json:"bookSize,omitempty" validate:"omitempty,book_size"`
	Description   string        `json:"description,omitempty"`
	Price         float64       `json:"price" validate:"gte=0"`
	Quantity      int           `json:"quantity" validate:"gte=1"`
	Rating        float64       `json:"rating" validate:"gte=0,lte=5"`
}

// NewBook returns a book holding the defaults of an empty form. The identifier
// is the creation time in milliseconds and stands in until the server assigns
// a durable one.
func NewBook(now time.Time) Book {
	return Book{
		ID:            now.UnixMilli(),
		AddedDate:     now.UTC().Format(AddedDateLayout),
		ReadingStatus: StatusNone,
		Category:      []string{},
		BookSize:      SizeOther,
		Quantity:      1,
	}
}

// Clone returns a deep copy of b.
func (b Book) Clone() Book {
	if b.Category != nil {
		category := make([]string, len(b.Category))
		copy(category, b.Category)
		b.Category = category
	}
	return b
}

// FindBook returns the book with the given id and whether it was found.
func FindBook(books []Book, id int64) (Book, bool) {
	if i := IndexOf(books, id); i >= 0 {
		return books[i], true
	}
	return Book{}, false
}

// IndexOf returns the position of the book with the given id, or -1.
func IndexOf(books []Book, id int64) int {
	for i := range books {
		if books[i].ID == id {
			return i
		}
	}
	return -1
}

// CloneBooks deep-copies a collection. A nil input stays nil so callers can
// tell "never loaded" from "loaded and empty".
func CloneBooks(books []Book) []Book {
	if books == nil {
		return nil
	}
	out := make([]Book, len(books))
	for i := range books {
		out[i] = books[i].Clone()
	}
	return out
}

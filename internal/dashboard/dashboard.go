// Package dashboard derives the overview figures shown next to the book table.
package dashboard

import (
	"sort"

	"github.com/listenupapp/bookshelf/internal/domain"
	"github.com/listenupapp/bookshelf/internal/normalize"
)

// RecentLimit is how many of the most recently added books the overview shows.
const RecentLimit = 7

// Card is a book as rendered in the overview carousels.
type Card struct {
	ID            int64                `json:"id"`
	Title         string               `json:"title"`
	ReadingStatus domain.ReadingStatus `json:"readingStatus"`
	Progress      int                  `json:"progress"`
	Rating        float64              `json:"rating"`
}

// CategoryCount is how many books carry a tag. Tags are grouped by their
// folded key and shown with the first spelling seen.
type CategoryCount struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Summary is the dashboard view of a collection.
type Summary struct {
	TotalBooks    int             `json:"totalBooks"`
	ReadingBooks  int             `json:"readingBooks"`
	FinishedBooks int             `json:"finishedBooks"`
	Recent        []Card          `json:"recent"`
	Reading       []Card          `json:"reading"`
	Categories    []CategoryCount `json:"categories"`
}

// Summarize builds the summary. Recent is the tail of the collection in its
// stored order; Reading lists every book in progress in the same order.
func Summarize(books []domain.Book) Summary {
	sum := Summary{
		TotalBooks: len(books),
		Recent:     []Card{},
		Reading:    []Card{},
		Categories: []CategoryCount{},
	}

	start := len(books) - RecentLimit
	if start < 0 {
		start = 0
	}
	for _, b := range books[start:] {
		sum.Recent = append(sum.Recent, cardOf(b))
	}

	index := make(map[string]int)
	for _, b := range books {
		switch b.ReadingStatus {
		case domain.StatusInProgress:
			sum.ReadingBooks++
			sum.Reading = append(sum.Reading, cardOf(b))
		case domain.StatusFinished:
			sum.FinishedBooks++
		}

		for _, tag := range b.Category {
			key := normalize.TagKey(tag)
			if key == "" {
				continue
			}
			if i, ok := index[key]; ok {
				sum.Categories[i].Count++
				continue
			}
			index[key] = len(sum.Categories)
			sum.Categories = append(sum.Categories, CategoryCount{
				Key:   key,
				Label: normalize.TagLabel(tag),
				Count: 1,
			})
		}
	}

	sort.SliceStable(sum.Categories, func(i, j int) bool {
		a, b := sum.Categories[i], sum.Categories[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Label < b.Label
	})

	return sum
}

func cardOf(b domain.Book) Card {
	return Card{
		ID:            b.ID,
		Title:         b.Title,
		ReadingStatus: b.ReadingStatus,
		Progress:      b.ReadingStatus.Progress(),
		Rating:        b.Rating,
	}
}

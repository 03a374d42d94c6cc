package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/bookshelf/internal/domain"
)

func TestWriteCSV(t *testing.T) {
	books := []domain.Book{
		{
			ID:            1717236000001,
			Title:         "Dune",
			Author:        "Frank Herbert",
			AddedDate:     "2024-06-01",
			ReadingStatus: domain.StatusInProgress,
			Category:      []string{"Science Fiction", "classic"},
			BookSize:      domain.SizeNovel,
			Description:   "Spice, \"sand\", worms",
			Price:         9.5,
			Quantity:      2,
			Rating:        4,
		},
		{ID: 2, Title: "Empty", ReadingStatus: domain.StatusNone, Category: []string{}, Quantity: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, books))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{
		"1717236000001", "Dune", "Frank Herbert", "", "", "2024-06-01",
		"In Progress", "Science Fiction; classic", "Novel", "Spice, \"sand\", worms",
		"9.5", "2", "4", "50",
	}, rows[1])
	assert.Equal(t, "", rows[2][7])
	assert.Equal(t, "0", rows[2][13])
}

func TestWriteCSV_HeaderOnlyForEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	assert.Equal(t, "id,title,author,iban,publishedDate,addedDate,readingStatus,category,bookSize,description,price,quantity,rating,progress\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteCSV_WriterError(t *testing.T) {
	err := WriteCSV(failingWriter{}, []domain.Book{{ID: 1, Title: "Dune"}})
	assert.Error(t, err)
}

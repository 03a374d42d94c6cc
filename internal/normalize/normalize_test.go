package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Science Fiction", "science-fiction"},
		{"science fiction", "science-fiction"},
		{"  SCIENCE   FICTION ", "science-fiction"},
		{"Sci-Fi/Fantasy", "sci-fi-fantasy"},
		{"Café", "cafe"},
		{"Ｆｕｌｌwidth", "fullwidth"},
		{"Фантастика", "фантастика"},
		{"Научная  Фантастика", "научная-фантастика"},
		{"小説", "小説"},
		{"SF・小説", "sf-小説"},
		{"Ελληνικά", "ελληνικα"},
		{"한국 소설", "한국-소설"},
		{"Book 2", "book-2"},
		{"!!!", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, TagKey(tt.input))
		})
	}
}

func TestTagLabel(t *testing.T) {
	assert.Equal(t, "Science Fiction", TagLabel("  Science \t Fiction "))
	assert.Equal(t, "Café", TagLabel("Café"))
	assert.Empty(t, TagLabel("   "))
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"classic", "Romance", "classic"}, SplitTags("classic, Romance,,classic "))
	assert.Equal(t, []string{}, SplitTags(""))
}

// Package normalize folds free-text category tags so that spelling variants
// group together.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	multipleSpaces  = regexp.MustCompile(`\s+`)
)

// TagKey folds a tag to its grouping key. Letters and digits of any script
// are kept; accents are dropped.
// "Science Fiction" -> "science-fiction".
// "Sci-Fi/Fantasy" -> "sci-fi-fantasy".
// "Café" -> "cafe".
// "Научная фантастика" -> "научная-фантастика".
func TagKey(s string) string {
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) {
			return -1
		}
		return r
	}, s)
	// Recompose what NFKD split without a mark, e.g. Hangul syllables.
	s = norm.NFC.String(s)

	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// TagLabel tidies a tag for display: NFC, trimmed, inner whitespace collapsed.
func TagLabel(s string) string {
	s = norm.NFC.String(s)
	return multipleSpaces.ReplaceAllString(strings.TrimSpace(s), " ")
}

// SplitTags parses a comma separated tag list, as typed into a form.
// Empty entries are dropped; order and duplicates are kept.
func SplitTags(s string) []string {
	tags := []string{}
	for _, part := range strings.Split(s, ",") {
		if label := TagLabel(part); label != "" {
			tags = append(tags, label)
		}
	}
	return tags
}

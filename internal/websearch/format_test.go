package websearch

import (
	"testing"

	"github.com/cloo-solutions/concierge/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestFormatResults_Empty(t *testing.T) {
	assert.Equal(t, "No search results found.", FormatResults(nil))
	assert.Equal(t, NoResults, FormatResults([]domain.SearchResult{}))
}

func TestFormatResults_Numbered(t *testing.T) {
	got := FormatResults([]domain.SearchResult{
		{Title: "Wellness Trends", URL: "https://example.com/a", Snippet: "Breathwork is popular."},
		{Title: "Yoga News", URL: "https://example.com/b", Snippet: "Studios expand."},
	})

	expected := "1. Wellness Trends\n   Breathwork is popular.\n   Source: https://example.com/a" +
		"\n\n" +
		"2. Yoga News\n   Studios expand.\n   Source: https://example.com/b"
	assert.Equal(t, expected, got)
}

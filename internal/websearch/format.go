package websearch

import (
	"fmt"
	"strings"

	"github.com/cloo-solutions/concierge/internal/domain"
)

// NoResults is the placeholder rendered for an empty result list.
const NoResults = "No search results found."

// FormatResults renders results as a numbered list for the system prompt.
func FormatResults(results []domain.SearchResult) string {
	if len(results) == 0 {
		return NoResults
	}

	blocks := make([]string, len(results))
	for i, r := range results {
		blocks[i] = fmt.Sprintf("%d. %s\n   %s\n   Source: %s", i+1, r.Title, r.Snippet, r.URL)
	}
	return strings.Join(blocks, "\n\n")
}

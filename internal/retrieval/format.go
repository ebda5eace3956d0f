package retrieval

import (
	"strings"

	"github.com/cloo-solutions/concierge/internal/domain"
)

const knowledgeSeparator = "\n\n---\n\n"

// FormatKnowledge renders items as prompt context in the order given. It
// returns "" for no items so callers can skip the section entirely.
func FormatKnowledge(items []domain.KnowledgeItem) string {
	if len(items) == 0 {
		return ""
	}

	blocks := make([]string, len(items))
	for i, item := range items {
		blocks[i] = item.Title + ":\n" + item.Content
	}
	return strings.Join(blocks, knowledgeSeparator)
}

package retrieval

import (
	"testing"

	"github.com/cloo-solutions/concierge/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestFormatKnowledge_Empty(t *testing.T) {
	assert.Equal(t, "", FormatKnowledge(nil))
	assert.Equal(t, "", FormatKnowledge([]domain.KnowledgeItem{}))
}

func TestFormatKnowledge_Single(t *testing.T) {
	got := FormatKnowledge([]domain.KnowledgeItem{
		{ID: "6", Title: "Pricing and Packages", Content: "Single Drop-in Class: £18"},
	})

	assert.Equal(t, "Pricing and Packages:\nSingle Drop-in Class: £18", got)
}

func TestFormatKnowledge_JoinsInInputOrder(t *testing.T) {
	got := FormatKnowledge([]domain.KnowledgeItem{
		{ID: "b", Title: "Second", Content: "two"},
		{ID: "a", Title: "First", Content: "one"},
	})

	assert.Equal(t, "Second:\ntwo\n\n---\n\nFirst:\none", got)
}

package domain

import (
	"fmt"
	"maps"
)

// KnowledgeItem is one curated document about the practice (hours, pricing,
// class descriptions and so on).
type KnowledgeItem struct {
	ID       string            `json:"id" yaml:"id"`
	Title    string            `json:"title" yaml:"title"`
	Content  string            `json:"content" yaml:"content"`
	Category string            `json:"category" yaml:"category"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Clone returns a copy that shares no mutable state with k.
func (k KnowledgeItem) Clone() KnowledgeItem {
	if k.Metadata != nil {
		k.Metadata = maps.Clone(k.Metadata)
	}
	return k
}

// ValidateKnowledgeItem validates a KnowledgeItem instance
func ValidateKnowledgeItem(k KnowledgeItem) error {
	if k.ID == "" {
		return fmt.Errorf("knowledge ID is required")
	}

	if k.Title == "" {
		return fmt.Errorf("knowledge %s: Title is required", k.ID)
	}

	if k.Content == "" {
		return fmt.Errorf("knowledge %s: Content is required", k.ID)
	}

	if k.Category == "" {
		return fmt.Errorf("knowledge %s: Category is required", k.ID)
	}

	return nil
}

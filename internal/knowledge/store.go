// Package knowledge holds the curated corpus the chat assistant retrieves from.
// The corpus is decoded once at startup and never mutated afterwards.
package knowledge

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/cloo-solutions/concierge/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed corpus.yaml
var defaultCorpus []byte

type corpusDocument struct {
	Items []domain.KnowledgeItem `yaml:"items"`
}

// Store is a read-only, ordered collection of knowledge items. It is safe for
// concurrent use because nothing writes to it after construction.
type Store struct {
	items []domain.KnowledgeItem
	byID  map[string]int
}

// NewStore validates items and builds a store preserving their order.
func NewStore(items []domain.KnowledgeItem) (*Store, error) {
	s := &Store{
		items: make([]domain.KnowledgeItem, 0, len(items)),
		byID:  make(map[string]int, len(items)),
	}

	for _, item := range items {
		if err := domain.ValidateKnowledgeItem(item); err != nil {
			return nil, err
		}
		if _, dup := s.byID[item.ID]; dup {
			return nil, fmt.Errorf("duplicate knowledge ID: %s", item.ID)
		}
		s.byID[item.ID] = len(s.items)
		s.items = append(s.items, item.Clone())
	}

	return s, nil
}

// Parse decodes a YAML corpus document.
func Parse(data []byte) (*Store, error) {
	var doc corpusDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge corpus: %w", err)
	}
	if len(doc.Items) == 0 {
		return nil, fmt.Errorf("knowledge corpus has no items")
	}
	return NewStore(doc.Items)
}

// LoadDefault returns the corpus compiled into the binary.
func LoadDefault() (*Store, error) {
	return Parse(defaultCorpus)
}

// LoadFile reads a corpus document from disk.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge file: %w", err)
	}
	return Parse(data)
}

// Load uses path when set and the embedded corpus otherwise.
func Load(path string) (*Store, error) {
	if path == "" {
		return LoadDefault()
	}
	return LoadFile(path)
}

// Len returns the number of items in the corpus.
func (s *Store) Len() int {
	return len(s.items)
}

// Items returns every item in corpus order.
func (s *Store) Items() []domain.KnowledgeItem {
	out := make([]domain.KnowledgeItem, len(s.items))
	for i, item := range s.items {
		out[i] = item.Clone()
	}
	return out
}

// Get returns the item with the given ID.
func (s *Store) Get(id string) (domain.KnowledgeItem, error) {
	idx, ok := s.byID[id]
	if !ok {
		return domain.KnowledgeItem{}, domain.ErrKnowledgeNotFound
	}
	return s.items[idx].Clone(), nil
}

// GetByCategory filters the corpus by exact category match. No match yields an
// empty slice, not an error.
func (s *Store) GetByCategory(category string) []domain.KnowledgeItem {
	out := []domain.KnowledgeItem{}
	for _, item := range s.items {
		if item.Category == category {
			out = append(out, item.Clone())
		}
	}
	return out
}

// Categories lists distinct categories in first-seen order.
func (s *Store) Categories() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, item := range s.items {
		if _, ok := seen[item.Category]; ok {
			continue
		}
		seen[item.Category] = struct{}{}
		out = append(out, item.Category)
	}
	return out
}

// Package retrieval ranks knowledge items against a query by shared vocabulary
// and renders them into prompt context.
package retrieval

import (
	"sort"
	"strings"

	"github.com/cloo-solutions/concierge/internal/domain"
)

// DefaultTopK is how many items a chat turn pulls into its prompt.
const DefaultTopK = 3

// ScoredItem pairs an item with its similarity to the query, in [0,1].
type ScoredItem struct {
	Item  domain.KnowledgeItem
	Score float64
}

type indexedItem struct {
	item   domain.KnowledgeItem
	tokens map[string]struct{}
}

// Retriever scores a fixed corpus by token overlap. Document token sets are
// computed once at construction, so Retrieve does no allocation proportional to
// document length.
type Retriever struct {
	docs []indexedItem
}

// NewRetriever indexes items in the given order. Ties in score keep this order.
func NewRetriever(items []domain.KnowledgeItem) *Retriever {
	docs := make([]indexedItem, len(items))
	for i, item := range items {
		docs[i] = indexedItem{
			item:   item.Clone(),
			tokens: tokenSet(item.Title + " " + item.Content),
		}
	}
	return &Retriever{docs: docs}
}

// Retrieve returns the topK most similar items, min(topK, corpus size) long.
func (r *Retriever) Retrieve(query string, topK int) []domain.KnowledgeItem {
	scored := r.Score(query, topK)
	out := make([]domain.KnowledgeItem, len(scored))
	for i, s := range scored {
		out[i] = s.Item
	}
	return out
}

// Score ranks the corpus and returns the topK entries with their scores.
func (r *Retriever) Score(query string, topK int) []ScoredItem {
	if topK < 1 {
		return []ScoredItem{}
	}

	q := tokenSet(query)
	scored := make([]ScoredItem, len(r.docs))
	for i, d := range r.docs {
		scored[i] = ScoredItem{Item: d.item.Clone(), Score: similarity(q, d.tokens)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK < len(scored) {
		scored = scored[:topK]
	}
	return scored
}

// similarity is |q ∩ d| / |q ∪ d| over token sets. An empty query scores 0.
func similarity(q, d map[string]struct{}) float64 {
	if len(q) == 0 {
		return 0
	}

	shared := 0
	for tok := range q {
		if _, ok := d[tok]; ok {
			shared++
		}
	}

	union := len(q) + len(d) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

// Tokenize lower-cases text and splits it on runs of non-word characters.
// Word characters are ASCII letters, digits and underscore.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isWordChar(r)
	})
}

func tokenSet(text string) map[string]struct{} {
	tokens := Tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

func isWordChar(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

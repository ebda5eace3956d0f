package service

import (
	"context"

	"github.com/cloo-solutions/concierge/internal/domain"
	"github.com/cloo-solutions/concierge/internal/retrieval"
	"github.com/cloo-solutions/concierge/internal/telemetry"
)

// KnowledgeStoreInterface is the read-only view of the corpus
type KnowledgeStoreInterface interface {
	Items() []domain.KnowledgeItem
	Get(id string) (domain.KnowledgeItem, error)
	GetByCategory(category string) []domain.KnowledgeItem
	Categories() []string
}

// ScorerInterface exposes retrieval scores for inspection
type ScorerInterface interface {
	Score(query string, topK int) []retrieval.ScoredItem
}

// KnowledgeService handles read access to the knowledge corpus
type KnowledgeService struct {
	store  KnowledgeStoreInterface
	scorer ScorerInterface
}

// NewKnowledgeService creates a new KnowledgeService instance
func NewKnowledgeService(store KnowledgeStoreInterface, scorer ScorerInterface) *KnowledgeService {
	return &KnowledgeService{store: store, scorer: scorer}
}

// List returns every item, or only those in category when it is non-empty
func (s *KnowledgeService) List(ctx context.Context, category string) []domain.KnowledgeItem {
	_, span := telemetry.StartSpan(ctx, "KnowledgeService.List", telemetry.SpanAttributes{Operation: "list"})
	defer span.End()

	if category == "" {
		return s.store.Items()
	}
	return s.store.GetByCategory(category)
}

// Categories returns the distinct categories in corpus order
func (s *KnowledgeService) Categories() []string {
	return s.store.Categories()
}

// Get retrieves a single item by ID
func (s *KnowledgeService) Get(ctx context.Context, id string) (*domain.KnowledgeItem, error) {
	_, span := telemetry.StartSpan(ctx, "KnowledgeService.Get", telemetry.SpanAttributes{Operation: "get"})
	defer span.End()

	item, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Search ranks the corpus against query and returns scores
func (s *KnowledgeService) Search(query string, topK int) []retrieval.ScoredItem {
	return s.scorer.Score(query, topK)
}

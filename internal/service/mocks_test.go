package service

import (
	"context"

	"github.com/cloo-solutions/concierge/internal/domain"
	"github.com/cloo-solutions/concierge/internal/llm"
	"github.com/cloo-solutions/concierge/internal/websearch"
	"github.com/stretchr/testify/mock"
)

type MockRetriever struct {
	mock.Mock
}

func (m *MockRetriever) Retrieve(query string, topK int) []domain.KnowledgeItem {
	args := m.Called(query, topK)
	return args.Get(0).([]domain.KnowledgeItem)
}

type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) NeedsSearch(query string) bool {
	return m.Called(query).Bool(0)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) SearchWithAttempts(ctx context.Context, query string) (*domain.SearchResponse, []websearch.Attempt, error) {
	args := m.Called(ctx, query)
	var attempts []websearch.Attempt
	if args.Get(1) != nil {
		attempts = args.Get(1).([]websearch.Attempt)
	}
	if args.Get(0) == nil {
		return nil, attempts, args.Error(2)
	}
	return args.Get(0).(*domain.SearchResponse), attempts, args.Error(2)
}

type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Completion), args.Error(1)
}

func (m *MockCompleter) Provider() string { return "fake" }
func (m *MockCompleter) Model() string    { return "fake-model" }

package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/cloo-solutions/concierge/internal/domain"
	"github.com/cloo-solutions/concierge/internal/llm"
	"github.com/cloo-solutions/concierge/internal/metrics"
	"github.com/cloo-solutions/concierge/internal/retrieval"
	"github.com/cloo-solutions/concierge/internal/telemetry"
	"github.com/cloo-solutions/concierge/internal/websearch"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultModelTimeout bounds one model call.
const DefaultModelTimeout = 30 * time.Second

// RetrieverInterface ranks knowledge items for a query
type RetrieverInterface interface {
	Retrieve(query string, topK int) []domain.KnowledgeItem
}

// ClassifierInterface decides whether a query needs live web results
type ClassifierInterface interface {
	NeedsSearch(query string) bool
}

// SearchGatewayInterface fetches web results from whichever provider answers,
// reporting every provider it tried
type SearchGatewayInterface interface {
	SearchWithAttempts(ctx context.Context, query string) (*domain.SearchResponse, []websearch.Attempt, error)
}

// ChatConfig tunes the pipeline. Zero values select defaults.
type ChatConfig struct {
	TopK         int
	MaxTokens    int
	ModelTimeout time.Duration
}

// ChatReply is the outcome of one turn. Only Message is shown to end users.
type ChatReply struct {
	Message        string   `json:"message"`
	KnowledgeIDs   []string `json:"knowledge_ids"`
	SearchUsed     bool     `json:"search_used"`
	SearchProvider string   `json:"search_provider,omitempty"`
}

// ChatService runs one retrieval-augmented model call per chat turn
type ChatService struct {
	retriever  RetrieverInterface
	classifier ClassifierInterface
	gateway    SearchGatewayInterface
	completer  llm.Completer
	cfg        ChatConfig
}

// NewChatService creates a new ChatService. gateway may be nil, in which case
// no turn ever searches.
func NewChatService(
	retriever RetrieverInterface,
	classifier ClassifierInterface,
	gateway SearchGatewayInterface,
	completer llm.Completer,
	cfg ChatConfig,
) *ChatService {
	if cfg.TopK <= 0 {
		cfg.TopK = retrieval.DefaultTopK
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = llm.DefaultMaxTokens
	}
	if cfg.ModelTimeout <= 0 {
		cfg.ModelTimeout = DefaultModelTimeout
	}
	return &ChatService{
		retriever:  retriever,
		classifier: classifier,
		gateway:    gateway,
		completer:  completer,
		cfg:        cfg,
	}
}

// Reply answers the latest user turn of messages. The full history is sent to
// the model. Search failures are absorbed; model failures are returned.
func (s *ChatService) Reply(ctx context.Context, messages []domain.ChatMessage) (*ChatReply, error) {
	if err := domain.ValidateMessages(messages); err != nil {
		metrics.RecordChatTurn(metrics.OutcomeInvalid, false)
		return nil, err
	}

	last, ok := domain.LastUserMessage(messages)
	if !ok {
		metrics.RecordChatTurn(metrics.OutcomeInvalid, false)
		return nil, domain.ErrNoUserMessage
	}
	query := last.Content

	reply := &ChatReply{}
	var knowledgeContext, searchContext string

	// Both stages only read query; the model call waits for both.
	var g errgroup.Group
	g.Go(func() (err error) {
		defer recoverStage("retrieval", &err)

		_, span := telemetry.StartSpan(ctx, "chat.retrieve", telemetry.SpanAttributes{Operation: "retrieve"})
		defer span.End()

		items := s.retriever.Retrieve(query, s.cfg.TopK)
		knowledgeContext = retrieval.FormatKnowledge(items)

		reply.KnowledgeIDs = make([]string, len(items))
		for i, item := range items {
			reply.KnowledgeIDs[i] = item.ID
		}
		span.SetData("items", len(items))
		return nil
	})
	g.Go(func() error {
		if s.gateway == nil || !s.classifier.NeedsSearch(query) {
			return nil
		}

		resp, err := s.search(ctx, query)
		if err != nil {
			log.WithError(err).Warn("web search unavailable, answering without it")
			telemetry.AddBreadcrumb(ctx, "search", err.Error())
			return nil
		}

		searchContext = websearch.FormatResults(resp.Results)
		reply.SearchUsed = true
		reply.SearchProvider = resp.Provider
		return nil
	})
	if err := g.Wait(); err != nil {
		metrics.RecordChatTurn(metrics.OutcomeFailure, false)
		return nil, err
	}

	system := BuildSystemPrompt(knowledgeContext, searchContext)

	completion, err := s.complete(ctx, system, messages)
	if err != nil {
		metrics.RecordChatTurn(metrics.OutcomeFailure, reply.SearchUsed)
		return nil, err
	}

	reply.Message = completion.Text
	metrics.RecordChatTurn(metrics.OutcomeSuccess, reply.SearchUsed)

	log.WithFields(log.Fields{
		"knowledge_ids":   reply.KnowledgeIDs,
		"search_used":     reply.SearchUsed,
		"search_provider": reply.SearchProvider,
		"turns":           len(messages),
	}).Info("chat turn answered")

	return reply, nil
}

// search asks the gateway for live results. A panicking provider is reported
// as an error so the turn can still be answered from the knowledge base.
func (s *ChatService) search(ctx context.Context, query string) (resp *domain.SearchResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "chat.search", telemetry.SpanAttributes{Operation: "search"})
	defer span.End()
	defer recoverStage("web search", &err)

	resp, attempts, err := s.gateway.SearchWithAttempts(ctx, query)
	span.SetData("attempts", describeAttempts(attempts))
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if resp == nil {
		return nil, errors.New("web search returned no response")
	}

	span.SetData("results", len(resp.Results))
	return resp, nil
}

// describeAttempts renders attempts as provider:ok / provider:failed in the
// order they were tried.
func describeAttempts(attempts []websearch.Attempt) []string {
	out := make([]string, len(attempts))
	for i, a := range attempts {
		status := "failed"
		if a.Succeeded() {
			status = "ok"
		}
		out[i] = a.Provider + ":" + status
	}
	return out
}

// recoverStage turns a panic in a pipeline stage into an error on errp. It
// must be deferred directly by the stage.
func recoverStage(stage string, errp *error) {
	if rec := recover(); rec != nil {
		log.WithFields(log.Fields{
			"stage": stage,
			"stack": string(debug.Stack()),
		}).Errorf("%s panicked: %v", stage, rec)
		*errp = domain.ErrInternal.Wrap(fmt.Errorf("%s panicked: %v", stage, rec))
	}
}

func (s *ChatService) complete(ctx context.Context, system string, messages []domain.ChatMessage) (*llm.Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ModelTimeout)
	defer cancel()

	provider, model := s.completer.Provider(), s.completer.Model()
	ctx, span := telemetry.StartSpan(ctx, "chat.model", telemetry.SpanAttributes{
		Provider:  provider,
		Model:     model,
		Operation: "complete",
	})
	defer span.End()

	promptTokens := llm.CountTokens(system)
	span.SetData("system_prompt_tokens", promptTokens)
	metrics.ObserveSystemPromptTokens(provider, model, promptTokens)

	start := time.Now()
	completion, err := s.completer.Complete(ctx, llm.CompletionRequest{
		System:    system,
		Messages:  messages,
		MaxTokens: s.cfg.MaxTokens,
	})
	if err == nil && completion == nil {
		err = domain.ErrUnexpectedResponseShape.Wrap(fmt.Errorf("%s returned no completion", provider))
	}
	metrics.RecordModelCall(provider, model, time.Since(start), err)

	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("model completion failed: %w", err)
	}

	metrics.RecordTokenUsage(provider, model, "input", completion.InputTokens)
	metrics.RecordTokenUsage(provider, model, "output", completion.OutputTokens)

	log.WithFields(log.Fields{
		"provider":             provider,
		"model":                model,
		"system_prompt_tokens": promptTokens,
		"input_tokens":         completion.InputTokens,
		"output_tokens":        completion.OutputTokens,
		"latency_ms":           time.Since(start).Milliseconds(),
	}).Debug("model call completed")

	return completion, nil
}

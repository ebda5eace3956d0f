// Package llm wraps the chat model providers behind a single Completer
// interface.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloo-solutions/concierge/internal/domain"
)

// Provider names accepted by New.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// DefaultMaxTokens caps the length of a reply.
const DefaultMaxTokens = 1024

var (
	// ErrNoAPIKey is returned when the selected provider has no key configured
	ErrNoAPIKey = errors.New("model provider API key not set")
	// ErrUnknownProvider is returned for an unsupported provider name
	ErrUnknownProvider = errors.New("unknown model provider")
)

// CompletionRequest is one non-streaming completion.
type CompletionRequest struct {
	System    string
	Messages  []domain.ChatMessage
	MaxTokens int
}

// Completion is the assistant reply plus provider-reported usage.
type Completion struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Completer produces a single assistant reply for a conversation.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
	Provider() string
	Model() string
}

// Options selects and configures a provider.
type Options struct {
	Provider         string
	AnthropicAPIKey  string
	AnthropicBaseURL string
	AnthropicModel   string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIModel      string
	Timeout          time.Duration
}

// New builds the Completer named by opts.Provider. An empty provider selects
// Anthropic.
func New(opts Options) (Completer, error) {
	switch opts.Provider {
	case "", ProviderAnthropic:
		if opts.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("%s: %w", ProviderAnthropic, ErrNoAPIKey)
		}
		return NewAnthropicClient(AnthropicConfig{
			APIKey:  opts.AnthropicAPIKey,
			BaseURL: opts.AnthropicBaseURL,
			Model:   opts.AnthropicModel,
			Timeout: opts.Timeout,
		}), nil
	case ProviderOpenAI:
		if opts.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("%s: %w", ProviderOpenAI, ErrNoAPIKey)
		}
		return NewOpenAIClient(OpenAIConfig{
			APIKey:  opts.OpenAIAPIKey,
			BaseURL: opts.OpenAIBaseURL,
			Model:   opts.OpenAIModel,
			Timeout: opts.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, opts.Provider)
	}
}

func maxTokens(n int) int {
	if n <= 0 {
		return DefaultMaxTokens
	}
	return n
}

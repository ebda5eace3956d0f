package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cloo-solutions/concierge/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is the model used when none is configured
const DefaultOpenAIModel = openai.GPT4oMini

// ChatAPI is the subset of the go-openai client the completer needs
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIConfig configures OpenAIClient. BaseURL may point at any
// OpenAI-compatible gateway.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OpenAIClient completes chats through the OpenAI chat completions API
type OpenAIClient struct {
	api   ChatAPI
	model string
}

// NewOpenAIClient creates a client with defaults applied.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIClient{
		api:   openai.NewClientWithConfig(clientConfig),
		model: model,
	}
}

func (c *OpenAIClient) Provider() string { return ProviderOpenAI }
func (c *OpenAIClient) Model() string    { return c.model }

// Complete prepends the system prompt as a system message.
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == domain.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: maxTokens(req.MaxTokens),
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, domain.ErrProviderCallFailed.Wrap(fmt.Errorf("openai: status %d: %s", apiErr.HTTPStatusCode, apiErr.Message))
		}
		return nil, domain.ErrProviderCallFailed.Wrap(fmt.Errorf("openai: %w", err))
	}

	if len(resp.Choices) == 0 {
		return nil, domain.ErrUnexpectedResponseShape.Wrap(errors.New("openai: no choices returned"))
	}
	choice := resp.Choices[0].Message
	if len(choice.ToolCalls) > 0 || choice.Content == "" {
		return nil, domain.ErrUnexpectedResponseShape.Wrap(errors.New("openai: first choice has no text content"))
	}

	return &Completion{
		Text:         choice.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

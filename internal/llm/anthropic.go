package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloo-solutions/concierge/internal/domain"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	// DefaultAnthropicModel is the model used when none is configured
	DefaultAnthropicModel = "claude-3-5-haiku-20241022"
	// DefaultAnthropicBaseURL is the public Messages API host
	DefaultAnthropicBaseURL = "https://api.anthropic.com"

	anthropicVersion = "2023-06-01"
	maxResponseBytes = 8 << 20
)

// AnthropicConfig configures AnthropicClient.
type AnthropicConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// AnthropicClient calls the Anthropic Messages API.
type AnthropicClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewAnthropicClient applies defaults for an empty model or base URL. The
// timeout is enforced by the caller's context when zero.
func NewAnthropicClient(cfg AnthropicConfig) *AnthropicClient {
	if cfg.Model == "" {
		cfg.Model = DefaultAnthropicModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultAnthropicBaseURL
	}
	return &AnthropicClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *AnthropicClient) Provider() string { return ProviderAnthropic }
func (c *AnthropicClient) Model() string    { return c.model }

// Complete sends the conversation and returns the first text block.
func (c *AnthropicClient) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	payload, err := c.buildBody(req)
	if err != nil {
		return nil, fmt.Errorf("failed to build anthropic request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build anthropic request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, domain.ErrProviderCallFailed.Wrap(fmt.Errorf("anthropic: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, domain.ErrProviderCallFailed.Wrap(fmt.Errorf("anthropic: read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := gjson.GetBytes(data, "error.message").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, domain.ErrProviderCallFailed.Wrap(fmt.Errorf("anthropic: status %d: %s", resp.StatusCode, msg))
	}

	if !gjson.ValidBytes(data) {
		return nil, domain.ErrProviderCallFailed.Wrap(fmt.Errorf("anthropic: response is not valid JSON"))
	}

	first := gjson.GetBytes(data, "content.0")
	if !first.Exists() || first.Get("type").String() != "text" {
		return nil, domain.ErrUnexpectedResponseShape.Wrap(fmt.Errorf("anthropic: first content block is %q", first.Get("type").String()))
	}

	text := first.Get("text").String()
	if text == "" {
		return nil, domain.ErrUnexpectedResponseShape.Wrap(fmt.Errorf("anthropic: first text block is empty"))
	}

	return &Completion{
		Text:         text,
		InputTokens:  int(gjson.GetBytes(data, "usage.input_tokens").Int()),
		OutputTokens: int(gjson.GetBytes(data, "usage.output_tokens").Int()),
	}, nil
}

func (c *AnthropicClient) buildBody(req CompletionRequest) ([]byte, error) {
	body := []byte(`{"messages":[]}`)

	var err error
	if body, err = sjson.SetBytes(body, "model", c.model); err != nil {
		return nil, err
	}
	if body, err = sjson.SetBytes(body, "max_tokens", maxTokens(req.MaxTokens)); err != nil {
		return nil, err
	}
	if req.System != "" {
		if body, err = sjson.SetBytes(body, "system", req.System); err != nil {
			return nil, err
		}
	}
	for i, m := range req.Messages {
		if body, err = sjson.SetBytes(body, fmt.Sprintf("messages.%d.role", i), string(m.Role)); err != nil {
			return nil, err
		}
		if body, err = sjson.SetBytes(body, fmt.Sprintf("messages.%d.content", i), m.Content); err != nil {
			return nil, err
		}
	}
	return body, nil
}

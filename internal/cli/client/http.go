package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cloo-solutions/concierge/internal/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

const (
	envAPIURL = "CONCIERGE_API_URL"

	defaultAPIURL = "http://localhost:8080"

	// A chat turn can wait on web search and then the model.
	defaultTimeout = 60 * time.Second
)

type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClientWithCmd resolves the server URL from the --api-url flag, the
// environment, the global config, then the default.
func NewAPIClientWithCmd(cmd *cobra.Command) (*APIClient, error) {
	_ = godotenv.Load()

	var flagURL string
	if cmd != nil {
		flagURL, _ = cmd.Flags().GetString("api-url")
	}

	baseURL, _, err := ResolveAPIURL(flagURL)
	if err != nil {
		return nil, err
	}
	return NewAPIClientWithConfig(baseURL)
}

// NewAPIClientWithConfig creates an APIClient for an explicit base URL.
func NewAPIClientWithConfig(baseURL string) (*APIClient, error) {
	normalized, err := ValidateAPIURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &APIClient{
		baseURL: normalized,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}, nil
}

// APIError represents an error from the API. UserMessage carries the
// server's end-user text when it sent one, such as the chat apology.
type APIError struct {
	StatusCode  int
	Message     string
	UserMessage string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

type chatRequest struct {
	Messages []domain.ChatMessage `json:"messages"`
}

// Chat posts the full conversation and returns the assistant's reply.
func (c *APIClient) Chat(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/chat", chatRequest{Messages: messages})
	if err != nil {
		return "", err
	}
	return gjson.GetBytes(body, "message").String(), nil
}

// ListKnowledge returns knowledge items, optionally filtered by category.
func (c *APIClient) ListKnowledge(ctx context.Context, category string) ([]domain.KnowledgeItem, error) {
	path := "/api/knowledge"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}

	var resp struct {
		Data struct {
			Items []domain.KnowledgeItem `json:"items"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Data.Items, nil
}

// Categories returns the server's knowledge categories.
func (c *APIClient) Categories(ctx context.Context) ([]string, error) {
	var resp struct {
		Data struct {
			Categories []string `json:"categories"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, "/api/knowledge/categories", &resp); err != nil {
		return nil, err
	}
	return resp.Data.Categories, nil
}

// GetKnowledge fetches one item by ID.
func (c *APIClient) GetKnowledge(ctx context.Context, id string) (*domain.KnowledgeItem, error) {
	var resp struct {
		Data domain.KnowledgeItem `json:"data"`
	}
	if err := c.getJSON(ctx, "/api/knowledge/"+url.PathEscape(id), &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Health reports whether the server answers its health check.
func (c *APIClient) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil)
	return err
}

func (c *APIClient) getJSON(ctx context.Context, path string, out interface{}) error {
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *APIClient) do(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
		if gjson.ValidBytes(respBody) {
			parsed := gjson.ParseBytes(respBody)
			if msg := parsed.Get("error"); msg.Exists() {
				apiErr.Message = msg.String()
			}
			apiErr.UserMessage = parsed.Get("message").String()
		}
		return nil, apiErr
	}

	if !gjson.ValidBytes(respBody) {
		return nil, fmt.Errorf("failed to parse response: invalid JSON")
	}
	return respBody, nil
}

package websearch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cloo-solutions/concierge/internal/domain"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// DefaultTavilyBaseURL is the public Tavily API.
const DefaultTavilyBaseURL = "https://api.tavily.com"

// TavilyProvider queries the Tavily search API.
type TavilyProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewTavilyProvider creates a Tavily provider. An empty baseURL selects the
// public endpoint.
func NewTavilyProvider(apiKey, baseURL string, timeout time.Duration) *TavilyProvider {
	if baseURL == "" {
		baseURL = DefaultTavilyBaseURL
	}
	return &TavilyProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient(timeout),
	}
}

func (p *TavilyProvider) Name() string { return "tavily" }

// Search posts the query with basic search depth.
func (p *TavilyProvider) Search(ctx context.Context, query string) (*domain.SearchResponse, error) {
	payload := []byte(`{}`)
	payload, _ = sjson.SetBytes(payload, "api_key", p.apiKey)
	payload, _ = sjson.SetBytes(payload, "query", query)
	payload, _ = sjson.SetBytes(payload, "search_depth", "basic")
	payload, _ = sjson.SetBytes(payload, "max_results", ResultCount)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, domain.ErrProviderCallFailed.Wrap(fmt.Errorf("tavily: build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	data, err := do(p.client, p.Name(), req)
	if err != nil {
		return nil, err
	}

	results := gjson.GetBytes(data, "results")
	if !results.IsArray() {
		return nil, domain.ErrProviderCallFailed.Wrap(fmt.Errorf("tavily: response has no results array"))
	}

	out := make([]domain.SearchResult, 0, len(results.Array()))
	results.ForEach(func(_, r gjson.Result) bool {
		item := domain.SearchResult{
			Title:   r.Get("title").String(),
			URL:     r.Get("url").String(),
			Snippet: r.Get("content").String(),
		}
		if score := r.Get("score"); score.Exists() && score.Type == gjson.Number {
			v := score.Float()
			item.Score = &v
		}
		out = append(out, item)
		return true
	})

	return &domain.SearchResponse{Query: query, Results: out, Provider: p.Name()}, nil
}

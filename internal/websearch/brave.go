package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cloo-solutions/concierge/internal/domain"
	"github.com/tidwall/gjson"
)

// DefaultBraveBaseURL is the public Brave Search API.
const DefaultBraveBaseURL = "https://api.search.brave.com"

// BraveProvider queries the Brave web search API.
type BraveProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewBraveProvider creates a Brave provider. An empty baseURL selects the
// public endpoint.
func NewBraveProvider(apiKey, baseURL string, timeout time.Duration) *BraveProvider {
	if baseURL == "" {
		baseURL = DefaultBraveBaseURL
	}
	return &BraveProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient(timeout),
	}
}

func (p *BraveProvider) Name() string { return "brave" }

func (p *BraveProvider) Search(ctx context.Context, query string) (*domain.SearchResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(ResultCount))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/res/v1/web/search?"+params.Encode(), nil)
	if err != nil {
		return nil, domain.ErrProviderCallFailed.Wrap(fmt.Errorf("brave: build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("X-Subscription-Token", p.apiKey)

	data, err := do(p.client, p.Name(), req)
	if err != nil {
		return nil, err
	}

	results := gjson.GetBytes(data, "web.results")
	if !results.IsArray() {
		return nil, domain.ErrProviderCallFailed.Wrap(fmt.Errorf("brave: response has no web.results array"))
	}

	out := make([]domain.SearchResult, 0, len(results.Array()))
	results.ForEach(func(_, r gjson.Result) bool {
		out = append(out, domain.SearchResult{
			Title:   r.Get("title").String(),
			URL:     r.Get("url").String(),
			Snippet: r.Get("description").String(),
		})
		return true
	})

	return &domain.SearchResponse{Query: query, Results: out, Provider: p.Name()}, nil
}

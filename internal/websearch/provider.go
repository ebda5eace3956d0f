package websearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloo-solutions/concierge/internal/domain"
	"github.com/klauspost/compress/gzip"
	"github.com/tidwall/gjson"
)

// ResultCount is how many hits every provider is asked for.
const ResultCount = 5

// DefaultTimeout bounds one provider HTTP call.
const DefaultTimeout = 8 * time.Second

const maxResponseBytes = 4 << 20

// Provider is one web search backend. Implementations normalize their native
// response into domain.SearchResponse and report every failure as
// domain.ErrProviderCallFailed.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string) (*domain.SearchResponse, error)
}

// do executes req and returns the decoded body of a 2xx response. Anything
// else is a provider failure.
func do(client *http.Client, provider string, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, domain.ErrProviderCallFailed.Wrap(fmt.Errorf("%s: request failed: %w", provider, err))
	}
	defer resp.Body.Close()

	body, err := decodeResponseBody(resp.Body, resp.Header.Get("Content-Encoding"))
	if err != nil {
		return nil, domain.ErrProviderCallFailed.Wrap(fmt.Errorf("%s: %w", provider, err))
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxResponseBytes))
	if err != nil {
		return nil, domain.ErrProviderCallFailed.Wrap(fmt.Errorf("%s: read body: %w", provider, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.ErrProviderCallFailed.Wrap(fmt.Errorf("%s: status %d: %s", provider, resp.StatusCode, truncate(string(data), 200)))
	}

	if !gjson.ValidBytes(data) {
		return nil, domain.ErrProviderCallFailed.Wrap(fmt.Errorf("%s: response is not valid JSON", provider))
	}
	return data, nil
}

// decodeResponseBody unwraps gzip bodies. Setting Accept-Encoding by hand
// turns off the transport's transparent decompression.
func decodeResponseBody(body io.ReadCloser, contentEncoding string) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("invalid gzip body: %w", err)
		}
		return zr, nil
	default:
		return io.NopCloser(body), nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func httpClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

package websearch

import (
	"context"
	"errors"
	"time"

	"github.com/cloo-solutions/concierge/internal/domain"
	"github.com/cloo-solutions/concierge/internal/metrics"
	log "github.com/sirupsen/logrus"
)

// Attempt records the outcome of asking one provider. Exactly one of Response
// and Err is set.
type Attempt struct {
	Provider string
	Response *domain.SearchResponse
	Err      error
}

// Succeeded reports whether the provider returned results.
func (a Attempt) Succeeded() bool {
	return a.Err == nil
}

// Options selects providers by key presence. Providers without a key are never
// attempted.
type Options struct {
	TavilyAPIKey  string
	TavilyBaseURL string
	BraveAPIKey   string
	BraveBaseURL  string
	Timeout       time.Duration
}

// Gateway tries providers in order and returns the first success.
type Gateway struct {
	providers []Provider
}

// NewGateway keeps the given order. Nil providers are skipped.
func NewGateway(providers ...Provider) *Gateway {
	g := &Gateway{}
	for _, p := range providers {
		if p != nil {
			g.providers = append(g.providers, p)
		}
	}
	return g
}

// NewGatewayFromOptions wires Tavily first and Brave second, each only when its
// key is set.
func NewGatewayFromOptions(opts Options) *Gateway {
	var providers []Provider
	if opts.TavilyAPIKey != "" {
		providers = append(providers, NewTavilyProvider(opts.TavilyAPIKey, opts.TavilyBaseURL, opts.Timeout))
	}
	if opts.BraveAPIKey != "" {
		providers = append(providers, NewBraveProvider(opts.BraveAPIKey, opts.BraveBaseURL, opts.Timeout))
	}
	return NewGateway(providers...)
}

// Configured reports whether at least one provider is available.
func (g *Gateway) Configured() bool {
	return g != nil && len(g.providers) > 0
}

// Providers lists provider names in attempt order.
func (g *Gateway) Providers() []string {
	if g == nil {
		return nil
	}
	names := make([]string, len(g.providers))
	for i, p := range g.providers {
		names[i] = p.Name()
	}
	return names
}

// SearchWithAttempts returns the first provider success together with the
// per-provider outcomes in attempt order. It returns domain.ErrNoProviderConfigured when nothing is wired and
// domain.ErrAllProvidersFailed, wrapping every cause, when each provider failed.
func (g *Gateway) SearchWithAttempts(ctx context.Context, query string) (*domain.SearchResponse, []Attempt, error) {
	if !g.Configured() {
		return nil, nil, domain.ErrNoProviderConfigured
	}

	attempts := make([]Attempt, 0, len(g.providers))
	var errs []error
	for _, p := range g.providers {
		resp, err := p.Search(ctx, query)
		metrics.RecordSearchAttempt(p.Name(), err)

		if err == nil {
			if resp.Provider == "" {
				resp.Provider = p.Name()
			}
			attempts = append(attempts, Attempt{Provider: p.Name(), Response: resp})
			log.WithFields(log.Fields{
				"provider": p.Name(),
				"results":  len(resp.Results),
			}).Debug("web search succeeded")
			return resp, attempts, nil
		}

		attempts = append(attempts, Attempt{Provider: p.Name(), Err: err})
		errs = append(errs, err)
		log.WithFields(log.Fields{
			"provider": p.Name(),
		}).WithError(err).Warn("web search provider failed")
	}

	return nil, attempts, domain.ErrAllProvidersFailed.Wrap(errors.Join(errs...))
}

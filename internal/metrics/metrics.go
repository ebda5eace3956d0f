// Package metrics holds the Prometheus collectors for the HTTP surface and the
// chat pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search attempt and chat turn outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeInvalid = "invalid"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "concierge_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	searchAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_search_attempts_total",
			Help: "Web search provider attempts by outcome",
		},
		[]string{"provider", "outcome"},
	)

	modelCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_model_calls_total",
			Help: "Model completion calls by outcome",
		},
		[]string{"provider", "model", "outcome"},
	)

	modelCallDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "concierge_model_call_duration_seconds",
			Help:    "Duration of model completion calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		},
		[]string{"provider", "model"},
	)

	tokenUsage = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_token_usage_total",
			Help: "Total tokens used in model calls",
		},
		[]string{"provider", "model", "type"}, // type: input or output
	)

	systemPromptTokens = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "concierge_system_prompt_tokens",
			Help:    "Estimated tokens in the assembled system prompt per model call",
			Buckets: prometheus.ExponentialBuckets(250, 2, 8), // 250 .. 32000
		},
		[]string{"provider", "model"},
	)

	chatTurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_chat_turns_total",
			Help: "Chat turns by outcome and whether web search contributed",
		},
		[]string{"outcome", "search_used"},
	)

	metricsRegistered atomic.Bool
	metricsEnabled    atomic.Bool
)

// SetEnabled toggles collection. Recording functions are no-ops while disabled.
func SetEnabled(enabled bool) {
	metricsEnabled.Store(enabled)
}

// IsEnabled reports whether metrics are collected.
func IsEnabled() bool {
	return metricsEnabled.Load()
}

// Register registers all collectors with the default registry. It is safe to
// call more than once.
func Register() {
	if !metricsRegistered.CompareAndSwap(false, true) {
		return
	}

	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDurationSeconds,
		searchAttemptsTotal,
		modelCallsTotal,
		modelCallDurationSeconds,
		tokenUsage,
		systemPromptTokens,
		chatTurnsTotal,
	)
}

// Handler serves the Prometheus exposition format, or 404 when disabled.
func Handler() http.Handler {
	handler := promhttp.Handler()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsEnabled() {
			http.NotFound(w, r)
			return
		}
		Register()
		handler.ServeHTTP(w, r)
	})
}

// ObserveHTTPRequest records one served request. route should be the router
// pattern, not the raw path, to keep cardinality bounded.
func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if !IsEnabled() {
		return
	}
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordSearchAttempt counts one provider attempt.
func RecordSearchAttempt(provider string, err error) {
	if !IsEnabled() {
		return
	}
	searchAttemptsTotal.WithLabelValues(provider, outcome(err)).Inc()
}

// RecordModelCall counts one completion call and its latency.
func RecordModelCall(provider, model string, elapsed time.Duration, err error) {
	if !IsEnabled() {
		return
	}
	modelCallsTotal.WithLabelValues(provider, model, outcome(err)).Inc()
	modelCallDurationSeconds.WithLabelValues(provider, model).Observe(elapsed.Seconds())
}

// RecordTokenUsage adds to the token counter. tokenType is "input" or "output".
func RecordTokenUsage(provider, model, tokenType string, tokens int) {
	if !IsEnabled() || tokens <= 0 {
		return
	}
	tokenUsage.WithLabelValues(provider, model, tokenType).Add(float64(tokens))
}

// ObserveSystemPromptTokens records the size of the prompt built for a model
// call, so growth from retrieved knowledge and search results shows up before
// it hits provider limits.
func ObserveSystemPromptTokens(provider, model string, tokens int) {
	if !IsEnabled() || tokens <= 0 {
		return
	}
	systemPromptTokens.WithLabelValues(provider, model).Observe(float64(tokens))
}

// RecordChatTurn counts a finished chat turn.
func RecordChatTurn(result string, searchUsed bool) {
	if !IsEnabled() {
		return
	}
	chatTurnsTotal.WithLabelValues(result, strconv.FormatBool(searchUsed)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

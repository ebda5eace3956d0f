package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cloo-solutions/concierge/internal/domain"
	"github.com/cloo-solutions/concierge/internal/knowledge"
	"github.com/cloo-solutions/concierge/internal/llm"
	"github.com/cloo-solutions/concierge/internal/service"
	"github.com/cloo-solutions/concierge/internal/websearch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const apology = "I apologize, but I'm having trouble responding right now. Please try again in a moment, or contact us directly at hello@tanyawellness.com or +44 20 1234 5678."

// fakeCompleter records every request and answers with reply, or fails with err.
type fakeCompleter struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []llm.CompletionRequest
}

func (f *fakeCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Completion{Text: f.reply, InputTokens: 10, OutputTokens: 5}, nil
}

func (f *fakeCompleter) Provider() string { return "fake" }
func (f *fakeCompleter) Model() string    { return "fake-1" }

func (f *fakeCompleter) lastSystem(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1].System
}

func newTestApp(t *testing.T, completer llm.Completer, gateway *websearch.Gateway) *App {
	t.Helper()
	store, err := knowledge.LoadDefault()
	require.NoError(t, err)

	return Build(Deps{
		Store:      store,
		Completer:  completer,
		Gateway:    gateway,
		Classifier: websearch.NewClassifier(time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)),
		Contact:    service.DefaultContact(),
	})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestChat_PriceQuestionAnsweredFromKnowledge(t *testing.T) {
	completer := &fakeCompleter{reply: "Drop-in classes are £18, and private sessions start at £80 per hour."}
	app := newTestApp(t, completer, nil)

	w := do(t, app.Handler, http.MethodPost, "/api/chat",
		`{"messages":[{"role":"user","content":"What are your yoga class prices?"}]}`)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.NotEmpty(t, resp["message"])
	assert.NotContains(t, resp["message"], apology)

	system := completer.lastSystem(t)
	assert.True(t, strings.HasPrefix(system, service.SystemPrompt))
	assert.Contains(t, system, "Relevant Information from Knowledge Base:")
	assert.Contains(t, system, "Prices start at £80 per hour")
	assert.NotContains(t, system, "Current Information from Web Search")
}

func TestChat_EmptyConversationHasNoUserMessage(t *testing.T) {
	completer := &fakeCompleter{reply: "unused"}
	app := newTestApp(t, completer, nil)

	w := do(t, app.Handler, http.MethodPost, "/api/chat", `{"messages":[]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"No user message found"}`, w.Body.String())
	assert.Empty(t, completer.requests)
}

func TestChat_MalformedBodies(t *testing.T) {
	completer := &fakeCompleter{reply: "unused"}
	app := newTestApp(t, completer, nil)

	for _, body := range []string{`{}`, `{"messages":{}}`, `not json`} {
		w := do(t, app.Handler, http.MethodPost, "/api/chat", body)

		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.JSONEq(t, `{"error":"Invalid messages format"}`, w.Body.String(), body)
	}

	w := do(t, app.Handler, http.MethodPost, "/api/chat",
		`{"messages":[{"role":"assistant","content":"Hello! How can I help?"}]}`)
	assert.JSONEq(t, `{"error":"No user message found"}`, w.Body.String())
}

func TestChat_SearchNetworkFailureStillAnswers(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	gateway := websearch.NewGatewayFromOptions(websearch.Options{
		TavilyAPIKey:  "tvly-test",
		TavilyBaseURL: deadURL,
		BraveAPIKey:   "brave-test",
		BraveBaseURL:  deadURL,
		Timeout:       time.Second,
	})
	completer := &fakeCompleter{reply: "Mindful movement and breathwork are popular right now, and both feature in our classes."}
	app := newTestApp(t, completer, gateway)

	w := do(t, app.Handler, http.MethodPost, "/api/chat",
		`{"messages":[{"role":"user","content":"What's the latest news on wellness trends?"}]}`)

	require.Equal(t, http.StatusOK, w.Code)
	msg := decode(t, w)["message"]
	assert.Equal(t, completer.reply, msg)
	assert.NotContains(t, strings.ToLower(msg), "search")
	assert.NotContains(t, msg, "connection refused")

	system := completer.lastSystem(t)
	assert.NotContains(t, system, "Current Information from Web Search")
}

func TestChat_SearchResultsReachPrompt(t *testing.T) {
	tavily := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"title":"Breathwork Rising","url":"https://news.example/breath","content":"Breathwork classes doubled.","score":0.8}]}`))
	}))
	defer tavily.Close()

	gateway := websearch.NewGatewayFromOptions(websearch.Options{TavilyAPIKey: "k", TavilyBaseURL: tavily.URL, Timeout: time.Second})
	completer := &fakeCompleter{reply: "Breathwork is having a moment."}
	app := newTestApp(t, completer, gateway)

	w := do(t, app.Handler, http.MethodPost, "/api/chat",
		`{"messages":[{"role":"user","content":"Any wellness news today?"}]}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, completer.lastSystem(t),
		"Current Information from Web Search:\n\n1. Breathwork Rising\n   Breathwork classes doubled.\n   Source: https://news.example/breath")
}

func TestChat_ModelFailureReturnsApology(t *testing.T) {
	completer := &fakeCompleter{err: domain.ErrProviderCallFailed.Wrap(errors.New("status 500: overloaded"))}
	app := newTestApp(t, completer, nil)

	w := do(t, app.Handler, http.MethodPost, "/api/chat",
		`{"messages":[{"role":"user","content":"Do you offer tai chi?"}]}`)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "Failed to process chat message", resp["error"])
	assert.Equal(t, apology, resp["message"])
	assert.Contains(t, resp["message"], "hello@tanyawellness.com")
	assert.Contains(t, resp["message"], "+44 20 1234 5678")
	assert.NotContains(t, w.Body.String(), "overloaded")
}

// brokenCompleter misbehaves instead of returning an error.
type brokenCompleter struct {
	panics bool
}

func (b brokenCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
	if b.panics {
		panic("provider client bug")
	}
	return nil, nil
}

func (b brokenCompleter) Provider() string { return "fake" }
func (b brokenCompleter) Model() string    { return "fake-1" }

func TestChat_MisbehavingModelStillGetsApology(t *testing.T) {
	tests := []struct {
		name      string
		completer brokenCompleter
	}{
		{"nil completion without error", brokenCompleter{}},
		{"panic inside the model call", brokenCompleter{panics: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, tt.completer, nil)
			srv := httptest.NewServer(app.Handler)
			defer srv.Close()

			resp, err := http.Post(srv.URL+"/api/chat", "application/json",
				strings.NewReader(`{"messages":[{"role":"user","content":"Do you offer tai chi?"}]}`))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, "Failed to process chat message", body["error"])
			assert.Equal(t, apology, body["message"])
		})
	}
}

func TestChat_BodyTooLarge(t *testing.T) {
	app := newTestApp(t, &fakeCompleter{reply: "x"}, nil)

	body := `{"messages":[{"role":"user","content":"` + strings.Repeat("a", int(MaxBodyBytes)) + `"}]}`
	w := do(t, app.Handler, http.MethodPost, "/api/chat", body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestKnowledgeRoutes(t *testing.T) {
	app := newTestApp(t, &fakeCompleter{reply: "x"}, nil)

	w := do(t, app.Handler, http.MethodGet, "/api/knowledge?category=classes", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data struct {
			Items []domain.KnowledgeItem `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Data.Items, 3)

	w = do(t, app.Handler, http.MethodGet, "/api/knowledge", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Data.Items, 12)

	w = do(t, app.Handler, http.MethodGet, "/api/knowledge/categories", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pricing"`)

	w = do(t, app.Handler, http.MethodGet, "/api/knowledge/6", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Pricing and Packages")

	w = do(t, app.Handler, http.MethodGet, "/api/knowledge/99", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndRequestID(t *testing.T) {
	app := newTestApp(t, &fakeCompleter{reply: "x"}, nil)

	w := do(t, app.Handler, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"status":"ok"}}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestMetricsRouteOnlyWhenEnabled(t *testing.T) {
	app := newTestApp(t, &fakeCompleter{reply: "x"}, nil)

	w := do(t, app.Handler, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloo-solutions/concierge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	api, err := NewAPIClientWithConfig(srv.URL)
	require.NoError(t, err)
	return api
}

func TestAPIClient_Chat(t *testing.T) {
	api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req chatRequest
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, domain.RoleUser, req.Messages[1].Role)

		_, _ = w.Write([]byte(`{"message":"Classes are £18."}`))
	})

	reply, err := api.Chat(context.Background(), []domain.ChatMessage{
		{Role: domain.RoleAssistant, Content: "Hello!"},
		{Role: domain.RoleUser, Content: "Prices?"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Classes are £18.", reply)
}

func TestAPIClient_ChatFailureCarriesApology(t *testing.T) {
	api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to process chat message","message":"I apologize..."}`))
	})

	_, err := api.Chat(context.Background(), []domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "Failed to process chat message", apiErr.Message)
	assert.Equal(t, "I apologize...", apiErr.UserMessage)
	assert.Equal(t, "API error (500): Failed to process chat message", err.Error())
}

func TestAPIClient_NonJSONError(t *testing.T) {
	api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	err := api.Health(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "bad gateway")
	assert.Empty(t, apiErr.UserMessage)
}

func TestAPIClient_ListKnowledge(t *testing.T) {
	api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/knowledge", r.URL.Path)
		assert.Equal(t, "classes", r.URL.Query().Get("category"))
		_, _ = w.Write([]byte(`{"data":{"items":[{"id":"2","title":"Yoga Classes","content":"Hatha","category":"classes"}]}}`))
	})

	items, err := api.ListKnowledge(context.Background(), "classes")

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Yoga Classes", items[0].Title)
}

func TestAPIClient_GetKnowledgeNotFound(t *testing.T) {
	api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/knowledge/99", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"knowledge item not found"}`))
	})

	_, err := api.GetKnowledge(context.Background(), "99")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestAPIClient_InvalidJSONSuccess(t *testing.T) {
	api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})

	_, err := api.Categories(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse response")
}

func TestNewAPIClientWithConfig_RejectsBadURL(t *testing.T) {
	_, err := NewAPIClientWithConfig("not a url")
	assert.Error(t, err)
}

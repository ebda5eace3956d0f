package server

import (
	"testing"

	"github.com/cloo-solutions/concierge/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp_SearchFollowsProviderKeys(t *testing.T) {
	tests := []struct {
		name      string
		tavily    string
		brave     string
		providers []string
	}{
		{"no keys", "", "", nil},
		{"brave only", "", "b", []string{"brave"}},
		{"both", "t", "b", []string{"tavily", "brave"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, err := NewApp(&config.Config{
				LLMProvider:     config.ProviderAnthropic,
				AnthropicAPIKey: "k",
				TavilyAPIKey:    tt.tavily,
				BraveAPIKey:     tt.brave,
			})
			require.NoError(t, err)

			assert.Equal(t, len(tt.providers) > 0, app.Gateway.Configured())
			if len(tt.providers) == 0 {
				assert.Empty(t, app.Gateway.Providers())
			} else {
				assert.Equal(t, tt.providers, app.Gateway.Providers())
			}
			assert.Equal(t, 12, app.Store.Len())
		})
	}
}

func TestNewApp_MissingModelKey(t *testing.T) {
	_, err := NewApp(&config.Config{LLMProvider: config.ProviderOpenAI})
	assert.ErrorContains(t, err, "failed to create model client")
}

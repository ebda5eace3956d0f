package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/cloo-solutions/concierge/internal/domain"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockChatAPI is a mock for the OpenAI chat API
type MockChatAPI struct {
	mock.Mock
}

func (m *MockChatAPI) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(openai.ChatCompletionResponse), args.Error(1)
}

func textResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
		},
		Usage: openai.Usage{PromptTokens: 120, CompletionTokens: 14},
	}
}

func TestOpenAIClient_Complete_Success(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := &OpenAIClient{api: mockAPI, model: DefaultOpenAIModel}
	ctx := context.Background()

	mockAPI.On("CreateChatCompletion", ctx, mock.MatchedBy(func(req openai.ChatCompletionRequest) bool {
		return req.Model == "gpt-4o-mini" &&
			req.MaxTokens == 1024 &&
			len(req.Messages) == 3 &&
			req.Messages[0].Role == openai.ChatMessageRoleSystem &&
			req.Messages[0].Content == "persona" &&
			req.Messages[1].Role == openai.ChatMessageRoleUser &&
			req.Messages[2].Role == openai.ChatMessageRoleAssistant
	})).Return(textResponse("Welcome!"), nil)

	got, err := client.Complete(ctx, CompletionRequest{
		System: "persona",
		Messages: []domain.ChatMessage{
			{Role: domain.RoleUser, Content: "Hello"},
			{Role: domain.RoleAssistant, Content: "Hi there"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "Welcome!", got.Text)
	assert.Equal(t, 120, got.InputTokens)
	assert.Equal(t, 14, got.OutputTokens)
	mockAPI.AssertExpectations(t)
}

func TestOpenAIClient_Complete_APIError(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := &OpenAIClient{api: mockAPI, model: DefaultOpenAIModel}
	ctx := context.Background()

	mockAPI.On("CreateChatCompletion", ctx, mock.Anything).
		Return(openai.ChatCompletionResponse{}, &openai.APIError{HTTPStatusCode: 401, Message: "Incorrect API key provided"})

	got, err := client.Complete(ctx, CompletionRequest{Messages: []domain.ChatMessage{{Role: domain.RoleUser, Content: "Hi"}}})

	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrProviderCallFailed)
	assert.Contains(t, err.Error(), "status 401")
}

func TestOpenAIClient_Complete_TransportError(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := &OpenAIClient{api: mockAPI, model: DefaultOpenAIModel}
	ctx := context.Background()

	mockAPI.On("CreateChatCompletion", ctx, mock.Anything).
		Return(openai.ChatCompletionResponse{}, errors.New("connection reset"))

	_, err := client.Complete(ctx, CompletionRequest{Messages: []domain.ChatMessage{{Role: domain.RoleUser, Content: "Hi"}}})

	assert.ErrorIs(t, err, domain.ErrProviderCallFailed)
}

func TestOpenAIClient_Complete_UnexpectedShape(t *testing.T) {
	tests := []struct {
		name string
		resp openai.ChatCompletionResponse
	}{
		{"no choices", openai.ChatCompletionResponse{}},
		{"empty content", textResponse("")},
		{"tool call", openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role:      openai.ChatMessageRoleAssistant,
				ToolCalls: []openai.ToolCall{{ID: "call_1", Type: openai.ToolTypeFunction}},
			},
		}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAPI := new(MockChatAPI)
			client := &OpenAIClient{api: mockAPI, model: DefaultOpenAIModel}
			mockAPI.On("CreateChatCompletion", mock.Anything, mock.Anything).Return(tt.resp, nil)

			_, err := client.Complete(context.Background(), CompletionRequest{
				Messages: []domain.ChatMessage{{Role: domain.RoleUser, Content: "Hi"}},
			})

			assert.ErrorIs(t, err, domain.ErrUnexpectedResponseShape)
		})
	}
}

func TestNewOpenAIClient_Defaults(t *testing.T) {
	c := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test"})

	assert.NotNil(t, c.api)
	assert.Equal(t, "gpt-4o-mini", c.Model())
	assert.Equal(t, ProviderOpenAI, c.Provider())
}

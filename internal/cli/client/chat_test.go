package client

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloo-solutions/concierge/internal/domain"
	"github.com/cloo-solutions/concierge/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockChatAPI struct {
	mock.Mock
}

func (m *MockChatAPI) Chat(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

func TestConversation_StartsWithGreeting(t *testing.T) {
	conv := NewConversation(new(MockChatAPI))

	assert.Equal(t, []domain.ChatMessage{{Role: domain.RoleAssistant, Content: service.Greeting}}, conv.Messages())
}

func TestConversation_SendResendsHistory(t *testing.T) {
	api := new(MockChatAPI)
	api.On("Chat", mock.Anything, mock.MatchedBy(func(m []domain.ChatMessage) bool {
		return len(m) == 2 && m[1].Content == "Do you teach tai chi?"
	})).Return("Yes, on Wednesdays.", nil).Once()
	api.On("Chat", mock.Anything, mock.MatchedBy(func(m []domain.ChatMessage) bool {
		return len(m) == 4 && m[2].Content == "Yes, on Wednesdays." && m[3].Content == "What time?"
	})).Return("7pm.", nil).Once()

	conv := NewConversation(api)

	reply, err := conv.Send(context.Background(), "Do you teach tai chi?")
	require.NoError(t, err)
	assert.Equal(t, "Yes, on Wednesdays.", reply)

	reply, err = conv.Send(context.Background(), "What time?")
	require.NoError(t, err)
	assert.Equal(t, "7pm.", reply)

	assert.Len(t, conv.Messages(), 5)
	api.AssertExpectations(t)
}

func TestConversation_FailureRecordsServerApology(t *testing.T) {
	api := new(MockChatAPI)
	api.On("Chat", mock.Anything, mock.Anything).
		Return("", &APIError{StatusCode: 500, Message: "Failed to process chat message", UserMessage: "Sorry, call us."})

	conv := NewConversation(api)
	reply, err := conv.Send(context.Background(), "hi")

	require.Error(t, err)
	assert.Equal(t, "Sorry, call us.", reply)
	msgs := conv.Messages()
	assert.Equal(t, domain.ChatMessage{Role: domain.RoleAssistant, Content: "Sorry, call us."}, msgs[len(msgs)-1])
}

func TestConversation_TransportFailureUsesDefaultApology(t *testing.T) {
	api := new(MockChatAPI)
	api.On("Chat", mock.Anything, mock.Anything).Return("", errors.New("connection refused"))

	reply, err := NewConversation(api).Send(context.Background(), "hi")

	require.Error(t, err)
	assert.Equal(t, service.DefaultContact().Apology(), reply)
}

func TestConversation_Reset(t *testing.T) {
	api := new(MockChatAPI)
	api.On("Chat", mock.Anything, mock.Anything).Return("ok", nil)

	conv := NewConversation(api)
	_, _ = conv.Send(context.Background(), "hi")
	conv.Reset()

	assert.Len(t, conv.Messages(), 1)
}

func TestRunChat(t *testing.T) {
	api := new(MockChatAPI)
	api.On("Chat", mock.Anything, mock.Anything).Return("We are in Camden.", nil)

	in := strings.NewReader("Where are you?\n\n/reset\n/quit\nignored\n")
	var out, errOut bytes.Buffer

	err := runChat(context.Background(), NewConversation(api), in, &out, &errOut)

	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out.String(), "assistant> "+service.Greeting))
	assert.Contains(t, out.String(), "assistant> We are in Camden.")
	assert.Empty(t, errOut.String())
	api.AssertNumberOfCalls(t, "Chat", 1)
}

func TestRunChat_ReportsErrors(t *testing.T) {
	api := new(MockChatAPI)
	api.On("Chat", mock.Anything, mock.Anything).Return("", errors.New("connection refused"))

	var out, errOut bytes.Buffer
	err := runChat(context.Background(), NewConversation(api), strings.NewReader("hi\n"), &out, &errOut)

	require.NoError(t, err)
	assert.Contains(t, errOut.String(), "connection refused")
	assert.Contains(t, out.String(), "hello@tanyawellness.com")
}

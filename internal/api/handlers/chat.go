package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/cloo-solutions/concierge/internal/api"
	"github.com/cloo-solutions/concierge/internal/api/middleware"
	"github.com/cloo-solutions/concierge/internal/domain"
	"github.com/cloo-solutions/concierge/internal/service"
	"github.com/cloo-solutions/concierge/internal/telemetry"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const chatFailure = "Failed to process chat message"

type ChatService interface {
	Reply(ctx context.Context, messages []domain.ChatMessage) (*service.ChatReply, error)
}

type ChatHandler struct {
	svc     ChatService
	apology string
}

// NewChatHandler creates a handler that answers failures with apology.
func NewChatHandler(svc ChatService, apology string) *ChatHandler {
	return &ChatHandler{svc: svc, apology: apology}
}

type ChatResponse struct {
	Message string `json:"message"`
}

// Chat handles POST /api/chat. Every failure past request validation, panics
// included, answers 500 with the apology so the widget always has a reply.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		if rec == http.ErrAbortHandler {
			panic(rec)
		}
		log.WithField("stack", string(debug.Stack())).Error("chat handler panicked")
		h.fail(w, r, fmt.Errorf("chat handler panic: %v", rec))
	}()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		if middleware.IsBodyTooLarge(err) {
			api.Error(w, http.StatusRequestEntityTooLarge, middleware.BodyTooLargeMessage)
			return
		}
		api.Error(w, http.StatusBadRequest, domain.ErrInvalidMessages.Message)
		return
	}

	messages, err := parseMessages(body)
	if err != nil {
		api.Error(w, http.StatusBadRequest, domain.ErrInvalidMessages.Message)
		return
	}

	reply, err := h.svc.Reply(r.Context(), messages)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidMessages) || errors.Is(err, domain.ErrNoUserMessage) {
			api.HandleError(w, err)
			return
		}

		h.fail(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, ChatResponse{Message: reply.Message})
}

func (h *ChatHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	log.WithFields(log.Fields{
		"request_id": middleware.GetRequestID(r.Context()),
	}).WithError(err).Error("chat turn failed")
	telemetry.CaptureError(r.Context(), err)

	api.Failure(w, http.StatusInternalServerError, chatFailure, h.apology)
}

// parseMessages accepts {"messages":[{"role":"user"|"assistant","content":"..."}]}.
// Any other shape is domain.ErrInvalidMessages. An empty array is well-formed.
func parseMessages(body []byte) ([]domain.ChatMessage, error) {
	if !gjson.ValidBytes(body) {
		return nil, domain.ErrInvalidMessages
	}

	raw := gjson.GetBytes(body, "messages")
	if !raw.IsArray() {
		return nil, domain.ErrInvalidMessages
	}

	elems := raw.Array()
	messages := make([]domain.ChatMessage, 0, len(elems))
	for _, el := range elems {
		if !el.IsObject() {
			return nil, domain.ErrInvalidMessages
		}
		role, content := el.Get("role"), el.Get("content")
		if role.Type != gjson.String || content.Type != gjson.String {
			return nil, domain.ErrInvalidMessages
		}
		if strings.TrimSpace(content.String()) == "" {
			return nil, domain.ErrInvalidMessages
		}
		messages = append(messages, domain.ChatMessage{
			Role:    domain.Role(role.String()),
			Content: content.String(),
		})
	}

	if err := domain.ValidateMessages(messages); err != nil {
		return nil, err
	}
	return messages, nil
}

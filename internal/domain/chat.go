package domain

import "strings"

// Role identifies who authored a conversation turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one conversation turn. The caller owns the history and
// resends all of it on every request.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ValidateMessages checks every turn has a known role and non-blank content.
// An empty slice is valid; callers decide what an empty conversation means.
func ValidateMessages(messages []ChatMessage) error {
	for _, m := range messages {
		if !isValidRole(m.Role) {
			return ErrInvalidMessages
		}
		if strings.TrimSpace(m.Content) == "" {
			return ErrInvalidMessages
		}
	}
	return nil
}

// LastUserMessage returns the most recent user turn in the conversation.
func LastUserMessage(messages []ChatMessage) (ChatMessage, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i], true
		}
	}
	return ChatMessage{}, false
}

func isValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleAssistant:
		return true
	}
	return false
}

package validator

import (
	"github.com/futig/rag-gateway/internal/entity"
)

// ValidateMessages checks the chat request preconditions and returns the
// last message content and the preceding history. The list must be
// non-empty and must end with a user message.
func ValidateMessages(messages []entity.ChatMessage) (string, []entity.ChatMessage, error) {
	if len(messages) == 0 {
		return "", nil, entity.ErrNoMessages
	}

	last := messages[len(messages)-1]
	if last.Role != entity.RoleUser {
		return "", nil, entity.ErrLastNotUser
	}

	return last.Content, messages[:len(messages)-1], nil
}

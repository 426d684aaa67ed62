package chat

import (
	"strings"
	"unicode/utf8"

	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Role identifies the author of a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// IsValid reports whether the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message is a single turn in a conversation
type Message struct {
	shared.BaseEntity
	ConversationID uuid.UUID
	OwnerID        uuid.UUID
	Role           Role
	Content        string
	Model          string
	InputTokens    int
	OutputTokens   int
	AttachmentIDs  []uuid.UUID
}

// NewUserMessage validates and creates a message authored by the user
func NewUserMessage(conv *Conversation, content string, attachments []uuid.UUID) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, shared.NewDomainError("INVALID_CONTENT", "Message content cannot be empty")
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return nil, shared.NewDomainError("INVALID_CONTENT", "Message content is too long")
	}
	return &Message{
		BaseEntity:     shared.NewBaseEntity(),
		ConversationID: conv.ID,
		OwnerID:        conv.OwnerID,
		Role:           RoleUser,
		Content:        content,
		AttachmentIDs:  attachments,
	}, nil
}

// NewAssistantMessage records a model reply with its token usage
func NewAssistantMessage(conv *Conversation, content, model string, inputTokens, outputTokens int) *Message {
	return &Message{
		BaseEntity:     shared.NewBaseEntity(),
		ConversationID: conv.ID,
		OwnerID:        conv.OwnerID,
		Role:           RoleAssistant,
		Content:        content,
		Model:          model,
		InputTokens:    inputTokens,
		OutputTokens:   outputTokens,
	}
}

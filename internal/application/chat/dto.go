package chat

import (
	"time"

	"github.com/alfred/backend/internal/domain/artifact"
	"github.com/alfred/backend/internal/domain/chat"
	"github.com/google/uuid"
)

// CreateConversationInput starts a conversation
type CreateConversationInput struct {
	Title     string     `json:"title" binding:"omitempty,max=200"`
	Facet     string     `json:"facet" binding:"omitempty,oneof=builder mentor reviewer"`
	PersonaID *uuid.UUID `json:"persona_id"`
}

// UpdateConversationInput patches a conversation. Nil fields are left alone.
type UpdateConversationInput struct {
	Title        *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Facet        *string    `json:"facet" binding:"omitempty,oneof=builder mentor reviewer"`
	Pinned       *bool      `json:"pinned"`
	PersonaID    *uuid.UUID `json:"persona_id"`
	ClearPersona bool       `json:"clear_persona"`
}

// SendMessageInput is a user turn
type SendMessageInput struct {
	Content       string      `json:"content" binding:"required,max=32768"`
	AttachmentIDs []uuid.UUID `json:"attachment_ids" binding:"omitempty,max=10"`
}

// ConversationDTO is the API view of a conversation
type ConversationDTO struct {
	ID            uuid.UUID    `json:"id"`
	Title         string       `json:"title"`
	Facet         string       `json:"facet"`
	PersonaID     *uuid.UUID   `json:"persona_id,omitempty"`
	Pinned        bool         `json:"pinned"`
	LastMessageAt *time.Time   `json:"last_message_at,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	Messages      []MessageDTO `json:"messages,omitempty"`
}

// MessageDTO is the API view of a message
type MessageDTO struct {
	ID             uuid.UUID   `json:"id"`
	ConversationID uuid.UUID   `json:"conversation_id"`
	Role           string      `json:"role"`
	Content        string      `json:"content"`
	Model          string      `json:"model,omitempty"`
	InputTokens    int         `json:"input_tokens,omitempty"`
	OutputTokens   int         `json:"output_tokens,omitempty"`
	AttachmentIDs  []uuid.UUID `json:"attachment_ids,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// ArtifactRefDTO points at an artifact version stored from a reply
type ArtifactRefDTO struct {
	ID       uuid.UUID `json:"id"`
	Key      string    `json:"key"`
	Version  int       `json:"version"`
	Title    string    `json:"title"`
	Language string    `json:"language"`
}

// ReplyDTO is the payload of the final "done" stream event
type ReplyDTO struct {
	Conversation ConversationDTO  `json:"conversation"`
	UserMessage  MessageDTO       `json:"user_message"`
	Message      MessageDTO       `json:"message"`
	Artifacts    []ArtifactRefDTO `json:"artifacts"`
}

// ToConversationDTO converts a conversation
func ToConversationDTO(c *chat.Conversation) ConversationDTO {
	return ConversationDTO{
		ID:            c.ID,
		Title:         c.Title,
		Facet:         c.Facet,
		PersonaID:     c.PersonaID,
		Pinned:        c.Pinned,
		LastMessageAt: c.LastMessageAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// ToMessageDTO converts a message
func ToMessageDTO(m *chat.Message) MessageDTO {
	return MessageDTO{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Role:           string(m.Role),
		Content:        m.Content,
		Model:          m.Model,
		InputTokens:    m.InputTokens,
		OutputTokens:   m.OutputTokens,
		AttachmentIDs:  m.AttachmentIDs,
		CreatedAt:      m.CreatedAt,
	}
}

// ToMessageDTOs converts a slice of messages
func ToMessageDTOs(msgs []chat.Message) []MessageDTO {
	out := make([]MessageDTO, len(msgs))
	for i := range msgs {
		out[i] = ToMessageDTO(&msgs[i])
	}
	return out
}

func toArtifactRef(a *artifact.Artifact) ArtifactRefDTO {
	return ArtifactRefDTO{
		ID:       a.ID,
		Key:      a.Key,
		Version:  a.Revision,
		Title:    a.Title,
		Language: a.Language,
	}
}

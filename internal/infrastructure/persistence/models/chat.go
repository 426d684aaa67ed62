package models

import (
	"time"

	"github.com/alfred/backend/internal/domain/chat"
	"github.com/google/uuid"
)

// ConversationModel is the persistence model for chat.Conversation
type ConversationModel struct {
	OwnedModel
	Title         string     `gorm:"type:varchar(200);not null;default:''"`
	Facet         string     `gorm:"type:varchar(20);not null"`
	PersonaID     *uuid.UUID `gorm:"type:uuid"`
	Pinned        bool       `gorm:"not null;default:false"`
	LastMessageAt *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (ConversationModel) TableName() string {
	return "conversations"
}

// ToDomain converts the model to a domain Conversation
func (m *ConversationModel) ToDomain() *chat.Conversation {
	return &chat.Conversation{
		OwnedAggregateRoot: m.ToOwned(),
		Title:              m.Title,
		Facet:              m.Facet,
		PersonaID:          m.PersonaID,
		Pinned:             m.Pinned,
		LastMessageAt:      m.LastMessageAt,
	}
}

// ConversationModelFromDomain creates a model from a domain Conversation
func ConversationModelFromDomain(c *chat.Conversation) *ConversationModel {
	m := &ConversationModel{
		Title:         c.Title,
		Facet:         c.Facet,
		PersonaID:     c.PersonaID,
		Pinned:        c.Pinned,
		LastMessageAt: c.LastMessageAt,
	}
	m.FromDomainOwned(c.OwnedAggregateRoot)
	return m
}

// MessageModel is the persistence model for chat.Message
type MessageModel struct {
	BaseModel
	ConversationID uuid.UUID   `gorm:"type:uuid;not null;index:idx_messages_conversation_created,priority:1"`
	UserID         uuid.UUID   `gorm:"type:uuid;not null;index"`
	Role           chat.Role   `gorm:"type:varchar(20);not null"`
	Content        string      `gorm:"type:text;not null"`
	Model          string      `gorm:"type:varchar(100)"`
	InputTokens    int         `gorm:"not null;default:0"`
	OutputTokens   int         `gorm:"not null;default:0"`
	AttachmentIDs  []uuid.UUID `gorm:"type:jsonb;serializer:json"`
}

// TableName returns the table name for GORM
func (MessageModel) TableName() string {
	return "messages"
}

// ToDomain converts the model to a domain Message
func (m *MessageModel) ToDomain() *chat.Message {
	return &chat.Message{
		BaseEntity:     m.BaseModel.ToDomain(),
		ConversationID: m.ConversationID,
		OwnerID:        m.UserID,
		Role:           m.Role,
		Content:        m.Content,
		Model:          m.Model,
		InputTokens:    m.InputTokens,
		OutputTokens:   m.OutputTokens,
		AttachmentIDs:  m.AttachmentIDs,
	}
}

// MessageModelFromDomain creates a model from a domain Message
func MessageModelFromDomain(msg *chat.Message) *MessageModel {
	m := &MessageModel{
		ConversationID: msg.ConversationID,
		UserID:         msg.OwnerID,
		Role:           msg.Role,
		Content:        msg.Content,
		Model:          msg.Model,
		InputTokens:    msg.InputTokens,
		OutputTokens:   msg.OutputTokens,
		AttachmentIDs:  msg.AttachmentIDs,
	}
	m.FromDomainBaseEntity(msg.BaseEntity)
	return m
}

package chat

import (
	"context"
	"time"

	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ConversationRepository persists conversations
type ConversationRepository interface {
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*Conversation, error)
	// FindAllForOwner lists pinned conversations first, then most recently active
	FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]Conversation, int64, error)
	Save(ctx context.Context, conv *Conversation) error
	// Delete soft-deletes the conversation
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// MessageRepository persists messages
type MessageRepository interface {
	Create(ctx context.Context, msg *Message) error
	// ListByConversation returns messages oldest first
	ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]Message, error)
	// Recent returns the last n messages oldest first
	Recent(ctx context.Context, conversationID uuid.UUID, n int) ([]Message, error)
	// CountUserMessagesSince counts messages the owner sent since the given time
	CountUserMessagesSince(ctx context.Context, ownerID uuid.UUID, since time.Time) (int64, error)
}

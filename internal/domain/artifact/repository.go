package artifact

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists artifacts
type Repository interface {
	// CreateVersion assigns the next revision within (conversation, key) and inserts
	CreateVersion(ctx context.Context, a *Artifact) error
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*Artifact, error)
	// LatestByConversation returns the highest revision of each key
	LatestByConversation(ctx context.Context, conversationID uuid.UUID) ([]Artifact, error)
	// Versions returns every revision of a key, newest first
	Versions(ctx context.Context, conversationID uuid.UUID, key string) ([]Artifact, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

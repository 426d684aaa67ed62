// Package file describes user files that can be attached to messages.
package file

import (
	"context"
	"strings"

	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// File is metadata for an object kept in object storage
type File struct {
	shared.OwnedAggregateRoot
	ConversationID *uuid.UUID
	Name           string
	ContentType    string
	Size           int64
	StorageKey     string
}

// NewFile validates file metadata
func NewFile(ownerID uuid.UUID, name, contentType string, size int64, storageKey string) (*File, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if size < 0 {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE", "File size cannot be negative")
	}
	if storageKey == "" {
		return nil, shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key is required")
	}
	return &File{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		Name:               name,
		ContentType:        contentType,
		Size:               size,
		StorageKey:         storageKey,
	}, nil
}

// Repository persists file metadata
type Repository interface {
	Save(ctx context.Context, f *File) error
	// FindByIDsForOwner returns the files among ids that belong to the owner
	FindByIDsForOwner(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]File, error)
	ListByConversation(ctx context.Context, ownerID, conversationID uuid.UUID) ([]File, error)
}

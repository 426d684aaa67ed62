// Package artifact models versioned code artifacts produced in conversations.
package artifact

import (
	"strings"

	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	MaxKeyLength     = 255
	MaxContentLength = 512 * 1024
)

// Artifact is one version of a generated snippet. Versions are scoped by
// conversation and key and start at 1.
type Artifact struct {
	shared.OwnedAggregateRoot
	ConversationID uuid.UUID
	MessageID      *uuid.UUID
	Key            string
	Revision       int
	Title          string
	Language       string
	Content        string
}

// NewArtifact creates an unsaved artifact. The revision is assigned by the repository.
func NewArtifact(ownerID, conversationID uuid.UUID, key, title, language, content string) (*Artifact, error) {
	key = NormalizeKey(key)
	if key == "" {
		return nil, shared.NewDomainError("INVALID_ARTIFACT_KEY", "Artifact key cannot be empty")
	}
	if len(key) > MaxKeyLength {
		return nil, shared.NewDomainError("INVALID_ARTIFACT_KEY", "Artifact key is too long")
	}
	if strings.TrimSpace(content) == "" {
		return nil, shared.NewDomainError("INVALID_ARTIFACT_CONTENT", "Artifact content cannot be empty")
	}
	if len(content) > MaxContentLength {
		return nil, shared.NewDomainError("INVALID_ARTIFACT_CONTENT", "Artifact content exceeds 512 KiB")
	}
	if title == "" {
		title = key
	}
	return &Artifact{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		ConversationID:     conversationID,
		Key:                key,
		Title:              strings.TrimSpace(title),
		Language:           strings.ToLower(strings.TrimSpace(language)),
		Content:            content,
	}, nil
}

// FromCodeBlock builds an artifact from an extracted block
func FromCodeBlock(ownerID, conversationID uuid.UUID, messageID *uuid.UUID, b CodeBlock) (*Artifact, error) {
	a, err := NewArtifact(ownerID, conversationID, b.Key(), b.Title, b.Language, b.Content)
	if err != nil {
		return nil, err
	}
	a.MessageID = messageID
	return a, nil
}

// NextRevision returns the revision that follows the current maximum of a scope
func NextRevision(currentMax int) int {
	if currentMax < 0 {
		currentMax = 0
	}
	return currentMax + 1
}

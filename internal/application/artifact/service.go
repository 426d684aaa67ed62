package artifact

import (
	"context"
	"time"

	"github.com/alfred/backend/internal/domain/artifact"
	"github.com/alfred/backend/internal/domain/chat"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateArtifactInput stores an artifact version explicitly
type CreateArtifactInput struct {
	ConversationID uuid.UUID `json:"conversation_id" binding:"required"`
	Key            string    `json:"key" binding:"required,max=255"`
	Title          string    `json:"title" binding:"omitempty,max=255"`
	Language       string    `json:"language" binding:"omitempty,max=50"`
	Content        string    `json:"content" binding:"required"`
}

// ExtractInput is markdown to split into code blocks
type ExtractInput struct {
	Markdown string `json:"markdown" binding:"required"`
}

// ArtifactDTO is the API view of an artifact version
type ArtifactDTO struct {
	ID             uuid.UUID  `json:"id"`
	ConversationID uuid.UUID  `json:"conversation_id"`
	MessageID      *uuid.UUID `json:"message_id,omitempty"`
	Key            string     `json:"key"`
	Version        int        `json:"version"`
	Title          string     `json:"title"`
	Language       string     `json:"language"`
	Content        string     `json:"content"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ExtractedBlockDTO is a code block with the key it would be stored under
type ExtractedBlockDTO struct {
	artifact.CodeBlock
	Key string `json:"key"`
}

// ToArtifactDTO converts an artifact
func ToArtifactDTO(a *artifact.Artifact) ArtifactDTO {
	return ArtifactDTO{
		ID:             a.ID,
		ConversationID: a.ConversationID,
		MessageID:      a.MessageID,
		Key:            a.Key,
		Version:        a.Revision,
		Title:          a.Title,
		Language:       a.Language,
		Content:        a.Content,
		CreatedAt:      a.CreatedAt,
	}
}

func toDTOs(items []artifact.Artifact) []ArtifactDTO {
	out := make([]ArtifactDTO, len(items))
	for i := range items {
		out[i] = ToArtifactDTO(&items[i])
	}
	return out
}

// Service exposes artifact versions of the caller's conversations
type Service struct {
	repo     artifact.Repository
	convRepo chat.ConversationRepository
	logger   *zap.Logger
}

// NewService creates a new artifact service
func NewService(repo artifact.Repository, convRepo chat.ConversationRepository, logger *zap.Logger) *Service {
	return &Service{repo: repo, convRepo: convRepo, logger: logger}
}

// ListLatest returns the newest version of every key in a conversation
func (s *Service) ListLatest(ctx context.Context, ownerID, conversationID uuid.UUID) ([]ArtifactDTO, error) {
	if _, err := s.convRepo.FindByIDForOwner(ctx, ownerID, conversationID); err != nil {
		return nil, err
	}
	items, err := s.repo.LatestByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return toDTOs(items), nil
}

// Versions returns every version of a key, newest first
func (s *Service) Versions(ctx context.Context, ownerID, conversationID uuid.UUID, key string) ([]ArtifactDTO, error) {
	if _, err := s.convRepo.FindByIDForOwner(ctx, ownerID, conversationID); err != nil {
		return nil, err
	}
	items, err := s.repo.Versions(ctx, conversationID, artifact.NormalizeKey(key))
	if err != nil {
		return nil, err
	}
	return toDTOs(items), nil
}

// Get returns one artifact version
func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*ArtifactDTO, error) {
	a, err := s.repo.FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	dto := ToArtifactDTO(a)
	return &dto, nil
}

// Create stores a new version under the given key
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, input CreateArtifactInput) (*ArtifactDTO, error) {
	if _, err := s.convRepo.FindByIDForOwner(ctx, ownerID, input.ConversationID); err != nil {
		return nil, err
	}
	a, err := artifact.NewArtifact(ownerID, input.ConversationID, input.Key, input.Title, input.Language, input.Content)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateVersion(ctx, a); err != nil {
		return nil, err
	}
	s.logger.Info("Artifact version created",
		zap.String("conversation_id", a.ConversationID.String()),
		zap.String("key", a.Key),
		zap.Int("version", a.Revision))
	dto := ToArtifactDTO(a)
	return &dto, nil
}

// Delete soft-deletes one version
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.repo.Delete(ctx, ownerID, id)
}

// Extract splits markdown into code blocks without storing anything
func (s *Service) Extract(input ExtractInput) []ExtractedBlockDTO {
	blocks := artifact.ExtractCodeBlocks(input.Markdown)
	out := make([]ExtractedBlockDTO, len(blocks))
	for i, b := range blocks {
		out[i] = ExtractedBlockDTO{CodeBlock: b, Key: b.Key()}
	}
	return out
}

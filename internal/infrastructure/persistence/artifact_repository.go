package persistence

import (
	"context"
	"errors"

	"github.com/alfred/backend/internal/domain/artifact"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/alfred/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormArtifactRepository implements artifact.Repository using GORM
type GormArtifactRepository struct {
	db *gorm.DB
}

// NewGormArtifactRepository creates a new GormArtifactRepository
func NewGormArtifactRepository(db *gorm.DB) *GormArtifactRepository {
	return &GormArtifactRepository{db: db}
}

// CreateVersion inserts a as the next revision of its (conversation, key) scope.
// Two writers racing on the same scope collide on the unique index; the loser
// recomputes the revision once.
func (r *GormArtifactRepository) CreateVersion(ctx context.Context, a *artifact.Artifact) error {
	err := r.createVersion(ctx, a)
	if isUniqueViolation(err) {
		err = r.createVersion(ctx, a)
	}
	if isUniqueViolation(err) {
		return shared.ErrConcurrencyConflict
	}
	return err
}

func (r *GormArtifactRepository) createVersion(ctx context.Context, a *artifact.Artifact) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current int
		// Unscoped: soft-deleted revisions still hold their number in the unique index
		if err := tx.Unscoped().Model(&models.ArtifactModel{}).
			Where("conversation_id = ? AND artifact_key = ?", a.ConversationID, a.Key).
			Select("COALESCE(MAX(version), 0)").
			Scan(&current).Error; err != nil {
			return err
		}
		a.Revision = artifact.NextRevision(current)
		return tx.Create(models.ArtifactModelFromDomain(a)).Error
	})
}

// FindByIDForOwner finds an artifact owned by ownerID
func (r *GormArtifactRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*artifact.Artifact, error) {
	var model models.ArtifactModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", ownerID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// LatestByConversation returns the newest live revision of every key, ordered by key
func (r *GormArtifactRepository) LatestByConversation(ctx context.Context, conversationID uuid.UUID) ([]artifact.Artifact, error) {
	var rows []models.ArtifactModel
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Where(`version = (
			SELECT MAX(a2.version) FROM artifacts a2
			WHERE a2.conversation_id = artifacts.conversation_id
			AND a2.artifact_key = artifacts.artifact_key
			AND a2.deleted_at IS NULL)`).
		Order("artifact_key").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return artifactsToDomain(rows), nil
}

// Versions returns every live revision of a key, newest first
func (r *GormArtifactRepository) Versions(ctx context.Context, conversationID uuid.UUID, key string) ([]artifact.Artifact, error) {
	var rows []models.ArtifactModel
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND artifact_key = ?", conversationID, key).
		Order("version DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return artifactsToDomain(rows), nil
}

// Delete soft-deletes one revision
func (r *GormArtifactRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ArtifactModel{}, "user_id = ? AND id = ?", ownerID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func artifactsToDomain(rows []models.ArtifactModel) []artifact.Artifact {
	out := make([]artifact.Artifact, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ artifact.Repository = (*GormArtifactRepository)(nil)

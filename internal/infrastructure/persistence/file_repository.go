package persistence

import (
	"context"

	"github.com/alfred/backend/internal/domain/file"
	"github.com/alfred/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormFileRepository implements file.Repository using GORM
type GormFileRepository struct {
	db *gorm.DB
}

// NewGormFileRepository creates a new GormFileRepository
func NewGormFileRepository(db *gorm.DB) *GormFileRepository {
	return &GormFileRepository{db: db}
}

// Save creates or updates a file record
func (r *GormFileRepository) Save(ctx context.Context, f *file.File) error {
	return r.db.WithContext(ctx).Save(models.FileModelFromDomain(f)).Error
}

// FindByIDsForOwner returns the subset of ids that exist and belong to ownerID
func (r *GormFileRepository) FindByIDsForOwner(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]file.File, error) {
	if len(ids) == 0 {
		return []file.File{}, nil
	}
	var rows []models.FileModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", ownerID, ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return filesToDomain(rows), nil
}

// ListByConversation returns files attached to a conversation
func (r *GormFileRepository) ListByConversation(ctx context.Context, ownerID, conversationID uuid.UUID) ([]file.File, error) {
	var rows []models.FileModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND conversation_id = ?", ownerID, conversationID).
		Order("created_at").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return filesToDomain(rows), nil
}

func filesToDomain(rows []models.FileModel) []file.File {
	out := make([]file.File, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ file.Repository = (*GormFileRepository)(nil)

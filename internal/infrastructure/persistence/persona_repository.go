package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/alfred/backend/internal/domain/persona"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/alfred/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPersonaRepository implements persona.Repository using GORM
type GormPersonaRepository struct {
	db *gorm.DB
}

// NewGormPersonaRepository creates a new GormPersonaRepository
func NewGormPersonaRepository(db *gorm.DB) *GormPersonaRepository {
	return &GormPersonaRepository{db: db}
}

// Save creates or updates a persona
func (r *GormPersonaRepository) Save(ctx context.Context, p *persona.Persona) error {
	err := r.db.WithContext(ctx).Save(models.PersonaModelFromDomain(p)).Error
	if isUniqueViolation(err) {
		return shared.ErrAlreadyExists
	}
	return err
}

// FindByIDForOwner finds a persona owned by ownerID
func (r *GormPersonaRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*persona.Persona, error) {
	var model models.PersonaModel
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

// ListForOwner returns personas ordered by name
func (r *GormPersonaRepository) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]persona.Persona, error) {
	var rows []models.PersonaModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("name").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]persona.Persona, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// ExistsByName checks for a live persona with the same name, ignoring case
func (r *GormPersonaRepository) ExistsByName(ctx context.Context, ownerID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.PersonaModel{}).
		Where("user_id = ? AND LOWER(name) = ?", ownerID, strings.ToLower(strings.TrimSpace(name)))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountForOwner counts live personas
func (r *GormPersonaRepository) CountForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PersonaModel{}).Where("user_id = ?", ownerID).Count(&count).Error
	return count, err
}

// Delete soft-deletes a persona
func (r *GormPersonaRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PersonaModel{}, "user_id = ? AND id = ?", ownerID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormRenderJobRepository implements persona.RenderJobRepository using GORM
type GormRenderJobRepository struct {
	db *gorm.DB
}

// NewGormRenderJobRepository creates a new GormRenderJobRepository
func NewGormRenderJobRepository(db *gorm.DB) *GormRenderJobRepository {
	return &GormRenderJobRepository{db: db}
}

// Save creates or updates a render job
func (r *GormRenderJobRepository) Save(ctx context.Context, j *persona.RenderJob) error {
	return r.db.WithContext(ctx).Save(models.RenderJobModelFromDomain(j)).Error
}

// FindByIDForOwner finds a render job owned by ownerID
func (r *GormRenderJobRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*persona.RenderJob, error) {
	var model models.RenderJobModel
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

// ListByPersona returns a persona's jobs, newest first
func (r *GormRenderJobRepository) ListByPersona(ctx context.Context, ownerID, personaID uuid.UUID) ([]persona.RenderJob, error) {
	var rows []models.RenderJobModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND persona_id = ?", ownerID, personaID).
		Order("created_at DESC").
		Limit(100).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]persona.RenderJob, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

var (
	_ persona.Repository          = (*GormPersonaRepository)(nil)
	_ persona.RenderJobRepository = (*GormRenderJobRepository)(nil)
)

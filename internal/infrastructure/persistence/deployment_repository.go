package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/alfred/backend/internal/domain/deployment"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/alfred/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDeploymentRepository implements deployment.Repository using GORM
type GormDeploymentRepository struct {
	db *gorm.DB
}

// NewGormDeploymentRepository creates a new GormDeploymentRepository
func NewGormDeploymentRepository(db *gorm.DB) *GormDeploymentRepository {
	return &GormDeploymentRepository{db: db}
}

// Save creates or updates a deployment
func (r *GormDeploymentRepository) Save(ctx context.Context, d *deployment.Deployment) error {
	return r.db.WithContext(ctx).Save(models.DeploymentModelFromDomain(d)).Error
}

// FindByIDForOwner finds a deployment owned by ownerID
func (r *GormDeploymentRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*deployment.Deployment, error) {
	var model models.DeploymentModel
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

// ListByProject returns the newest deployments of a project
func (r *GormDeploymentRepository) ListByProject(ctx context.Context, ownerID, projectID uuid.UUID, limit int) ([]deployment.Deployment, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var rows []models.DeploymentModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", ownerID, projectID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]deployment.Deployment, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// CountForOwnerSince counts deployments started since the given time
func (r *GormDeploymentRepository) CountForOwnerSince(ctx context.Context, ownerID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.DeploymentModel{}).
		Where("user_id = ? AND created_at >= ?", ownerID, since).
		Count(&count).Error
	return count, err
}

// ActiveForProject returns the running deployment of a project, if any
func (r *GormDeploymentRepository) ActiveForProject(ctx context.Context, projectID uuid.UUID) (*deployment.Deployment, error) {
	var model models.DeploymentModel
	if err := r.db.WithContext(ctx).
		Where("project_id = ? AND status IN ?", projectID, []deployment.Status{
			deployment.StatusQueued, deployment.StatusBuilding, deployment.StatusFixing,
		}).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListUnfinished returns non-terminal deployments of every owner, oldest first
func (r *GormDeploymentRepository) ListUnfinished(ctx context.Context, limit int) ([]deployment.Deployment, error) {
	var rows []models.DeploymentModel
	if err := r.db.WithContext(ctx).
		Where("status IN ?", []deployment.Status{
			deployment.StatusQueued, deployment.StatusBuilding, deployment.StatusFixing,
		}).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]deployment.Deployment, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

var _ deployment.Repository = (*GormDeploymentRepository)(nil)

package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/alfred/backend/internal/domain/builder"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/alfred/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProjectRepository implements builder.ProjectRepository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// FindByIDForOwner finds a project owned by ownerID
func (r *GormProjectRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*builder.Project, error) {
	var model models.ProjectModel
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

// FindAllForOwner lists projects with search over name and description
func (r *GormProjectRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]builder.Project, int64, error) {
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.ProjectModel{}).Where("user_id = ?", ownerID)
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + strings.ToLower(escapeLike(s)) + "%"
		query = query.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\')", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	field := ValidateSortField(filter.OrderBy, ProjectSortFields, "updated_at")
	var rows []models.ProjectModel
	if err := query.
		Order(field + " " + ValidateSortOrder(filter.OrderDir)).
		Order("id").
		Scopes(paginate(filter)).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]builder.Project, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// ExistsByName checks for a live project with the same name, ignoring case
func (r *GormProjectRepository) ExistsByName(ctx context.Context, ownerID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.ProjectModel{}).
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

// CountForOwner counts live projects
func (r *GormProjectRepository) CountForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProjectModel{}).Where("user_id = ?", ownerID).Count(&count).Error
	return count, err
}

// Save creates or updates a project. A name collision that slipped past
// ExistsByName surfaces as ErrAlreadyExists.
func (r *GormProjectRepository) Save(ctx context.Context, p *builder.Project) error {
	err := r.db.WithContext(ctx).Save(models.ProjectModelFromDomain(p)).Error
	if isUniqueViolation(err) {
		return shared.ErrAlreadyExists
	}
	return err
}

// Delete soft-deletes a project
func (r *GormProjectRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ProjectModel{}, "user_id = ? AND id = ?", ownerID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ builder.ProjectRepository = (*GormProjectRepository)(nil)

package persistence

import (
	"context"
	"errors"

	"github.com/alfred/backend/internal/domain/registrar"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/alfred/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDomainPurchaseRepository implements registrar.PurchaseRepository using GORM
type GormDomainPurchaseRepository struct {
	db *gorm.DB
}

// NewGormDomainPurchaseRepository creates a new GormDomainPurchaseRepository
func NewGormDomainPurchaseRepository(db *gorm.DB) *GormDomainPurchaseRepository {
	return &GormDomainPurchaseRepository{db: db}
}

// Save creates or updates a purchase. A second open purchase of the same
// domain by the same owner violates the partial unique index.
func (r *GormDomainPurchaseRepository) Save(ctx context.Context, p *registrar.Purchase) error {
	err := r.db.WithContext(ctx).Save(models.DomainPurchaseModelFromDomain(p)).Error
	if isUniqueViolation(err) {
		return shared.ErrAlreadyExists
	}
	return err
}

// FindByIDForOwner finds a purchase owned by ownerID
func (r *GormDomainPurchaseRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*registrar.Purchase, error) {
	var model models.DomainPurchaseModel
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

// ListForOwner returns every purchase, newest first
func (r *GormDomainPurchaseRepository) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]registrar.Purchase, error) {
	var rows []models.DomainPurchaseModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]registrar.Purchase, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// FindOpenByDomain finds a pending or completed purchase of domain
func (r *GormDomainPurchaseRepository) FindOpenByDomain(ctx context.Context, ownerID uuid.UUID, domain string) (*registrar.Purchase, error) {
	var model models.DomainPurchaseModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND domain = ? AND status <> ?", ownerID, domain, registrar.PurchaseFailed).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

var _ registrar.PurchaseRepository = (*GormDomainPurchaseRepository)(nil)

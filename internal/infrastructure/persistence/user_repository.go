package persistence

import (
	"context"
	"errors"

	"github.com/alfred/backend/internal/domain/identity"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/alfred/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by id
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByExternalID finds a user by the identity provider subject
func (r *GormUserRepository) FindByExternalID(ctx context.Context, externalID string) (*identity.User, error) {
	return r.findOne(ctx, "external_id = ?", externalID)
}

// FindByStripeCustomerID finds a user by Stripe customer id
func (r *GormUserRepository) FindByStripeCustomerID(ctx context.Context, customerID string) (*identity.User, error) {
	if customerID == "" {
		return nil, shared.ErrNotFound
	}
	return r.findOne(ctx, "stripe_customer_id = ?", customerID)
}

func (r *GormUserRepository) findOne(ctx context.Context, query string, args ...any) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a user
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	err := r.db.WithContext(ctx).Save(models.UserModelFromDomain(user)).Error
	if isUniqueViolation(err) {
		return shared.ErrAlreadyExists
	}
	return err
}

var _ identity.UserRepository = (*GormUserRepository)(nil)

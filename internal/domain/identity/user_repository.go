package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines persistence for users
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	// FindByExternalID looks up the user for an identity provider subject
	FindByExternalID(ctx context.Context, externalID string) (*User, error)
	FindByStripeCustomerID(ctx context.Context, customerID string) (*User, error)
	// Save inserts or updates the user
	Save(ctx context.Context, user *User) error
}

package registrar

import (
	"context"

	"github.com/google/uuid"
)

// PurchaseRepository persists domain purchases
type PurchaseRepository interface {
	Save(ctx context.Context, p *Purchase) error
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*Purchase, error)
	ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]Purchase, error)
	// FindOpenByDomain returns a pending or completed purchase of the domain by the owner
	FindOpenByDomain(ctx context.Context, ownerID uuid.UUID, domain string) (*Purchase, error)
}

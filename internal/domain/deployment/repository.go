package deployment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists deployments
type Repository interface {
	Save(ctx context.Context, d *Deployment) error
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*Deployment, error)
	ListByProject(ctx context.Context, ownerID, projectID uuid.UUID, limit int) ([]Deployment, error)
	CountForOwnerSince(ctx context.Context, ownerID uuid.UUID, since time.Time) (int64, error)
	// ActiveForProject returns a non-terminal deployment of the project, if any
	ActiveForProject(ctx context.Context, projectID uuid.UUID) (*Deployment, error)
	// ListUnfinished returns non-terminal deployments across owners for resumption
	ListUnfinished(ctx context.Context, limit int) ([]Deployment, error)
}

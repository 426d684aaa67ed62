package builder

import (
	"context"

	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProjectRepository persists builder projects
type ProjectRepository interface {
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*Project, error)
	FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]Project, int64, error)
	// ExistsByName checks name uniqueness among the owner's live projects
	ExistsByName(ctx context.Context, ownerID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error)
	CountForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	// Save inserts or updates, failing with ErrConcurrencyConflict on a stale version
	Save(ctx context.Context, p *Project) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

package persona

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists personas
type Repository interface {
	Save(ctx context.Context, p *Persona) error
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*Persona, error)
	ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]Persona, error)
	ExistsByName(ctx context.Context, ownerID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error)
	CountForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// RenderJobRepository persists render jobs
type RenderJobRepository interface {
	Save(ctx context.Context, j *RenderJob) error
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*RenderJob, error)
	ListByPersona(ctx context.Context, ownerID, personaID uuid.UUID) ([]RenderJob, error)
}

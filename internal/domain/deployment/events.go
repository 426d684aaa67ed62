package deployment

import (
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	AggregateType      = "Deployment"
	EventTypeSucceeded = "deployment.succeeded"
	EventTypeFailed    = "deployment.failed"
)

// SucceededEvent is published when a deployment goes live
type SucceededEvent struct {
	shared.BaseDomainEvent
	ProjectID uuid.UUID `json:"project_id"`
	URL       string    `json:"url"`
	Attempts  int       `json:"attempts"`
}

// NewSucceededEvent creates a SucceededEvent
func NewSucceededEvent(d *Deployment) *SucceededEvent {
	return &SucceededEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSucceeded, AggregateType, d.ID, d.OwnerID),
		ProjectID:       d.ProjectID,
		URL:             d.URL,
		Attempts:        d.Attempts,
	}
}

// FailedEvent is published when a deployment gives up
type FailedEvent struct {
	shared.BaseDomainEvent
	ProjectID uuid.UUID `json:"project_id"`
	Attempts  int       `json:"attempts"`
	Error     string    `json:"error"`
}

// NewFailedEvent creates a FailedEvent
func NewFailedEvent(d *Deployment) *FailedEvent {
	return &FailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFailed, AggregateType, d.ID, d.OwnerID),
		ProjectID:       d.ProjectID,
		Attempts:        d.Attempts,
		Error:           d.ErrorLog,
	}
}

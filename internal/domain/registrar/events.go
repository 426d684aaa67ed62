package registrar

import (
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	AggregateType      = "DomainPurchase"
	EventTypePurchased = "domain.purchased"
)

// PurchasedEvent is published once a domain is registered
type PurchasedEvent struct {
	shared.BaseDomainEvent
	Domain    string     `json:"domain"`
	ProjectID *uuid.UUID `json:"project_id,omitempty"`
	Amount    string     `json:"amount"`
	Currency  string     `json:"currency"`
}

// NewPurchasedEvent creates a PurchasedEvent
func NewPurchasedEvent(p *Purchase) *PurchasedEvent {
	return &PurchasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchased, AggregateType, p.ID, p.OwnerID),
		Domain:          p.Domain,
		ProjectID:       p.ProjectID,
		Amount:          p.Price.StringFixed(2),
		Currency:        p.Currency,
	}
}

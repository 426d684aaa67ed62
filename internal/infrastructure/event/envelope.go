package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Envelope is the wire format of an event leaving the process
type Envelope struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	OwnerID       uuid.UUID       `json:"owner_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope wraps a domain event with its full JSON body as payload
func NewEnvelope(e shared.DomainEvent) (*Envelope, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("event: marshal %s: %w", e.EventType(), err)
	}
	return &Envelope{
		ID:            e.EventID(),
		Type:          e.EventType(),
		AggregateType: e.AggregateType(),
		AggregateID:   e.AggregateID(),
		OwnerID:       e.OwnerID(),
		OccurredAt:    e.OccurredAt().UTC(),
		Payload:       payload,
	}, nil
}

// Marshal encodes the envelope
func (e *Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Decode unmarshals the payload into v
func (e *Envelope) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}

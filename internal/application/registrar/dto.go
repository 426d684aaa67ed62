package registrar

import (
	"time"

	"github.com/alfred/backend/internal/domain/registrar"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckoutInput starts a domain purchase
type CheckoutInput struct {
	Domain    string     `json:"domain" binding:"required,max=253"`
	ProjectID *uuid.UUID `json:"projectId"`
}

// QuoteDTO is the availability and retail price of one domain
type QuoteDTO struct {
	Domain    string          `json:"domain"`
	Available bool            `json:"available"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
	Period    int             `json:"period"`
}

// CheckoutDTO points the client at the payment page
type CheckoutDTO struct {
	PurchaseID uuid.UUID       `json:"purchase_id"`
	SessionID  string          `json:"session_id"`
	URL        string          `json:"url"`
	Price      decimal.Decimal `json:"price"`
	Currency   string          `json:"currency"`
}

// PurchaseDTO is the API view of a domain purchase
type PurchaseDTO struct {
	ID               uuid.UUID       `json:"id"`
	Domain           string          `json:"domain"`
	ProjectID        *uuid.UUID      `json:"project_id,omitempty"`
	Price            decimal.Decimal `json:"price"`
	Currency         string          `json:"currency"`
	Status           string          `json:"status"`
	RegistrarOrderID string          `json:"registrar_order_id,omitempty"`
	FailureReason    string          `json:"failure_reason,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
}

// ToPurchaseDTO converts a purchase
func ToPurchaseDTO(p *registrar.Purchase) PurchaseDTO {
	return PurchaseDTO{
		ID:               p.ID,
		Domain:           p.Domain,
		ProjectID:        p.ProjectID,
		Price:            p.Price,
		Currency:         p.Currency,
		Status:           string(p.Status),
		RegistrarOrderID: p.RegistrarOrderID,
		FailureReason:    p.FailureReason,
		CreatedAt:        p.CreatedAt,
		CompletedAt:      p.CompletedAt,
	}
}

package models

import (
	"time"

	"github.com/alfred/backend/internal/domain/registrar"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DomainPurchaseModel is the persistence model for registrar.Purchase
type DomainPurchaseModel struct {
	OwnedModel
	Domain           string                   `gorm:"type:varchar(253);not null;index"`
	ProjectID        *uuid.UUID               `gorm:"type:uuid"`
	RegistrarPrice   decimal.Decimal          `gorm:"type:numeric(12,2);not null"`
	Price            decimal.Decimal          `gorm:"type:numeric(12,2);not null"`
	Currency         string                   `gorm:"type:varchar(3);not null"`
	Status           registrar.PurchaseStatus `gorm:"type:varchar(20);not null;index"`
	StripeSessionID  string                   `gorm:"type:varchar(255);index"`
	RegistrarOrderID string                   `gorm:"type:varchar(255)"`
	FailureReason    string                   `gorm:"type:text"`
	CompletedAt      *time.Time
}

// TableName returns the table name for GORM
func (DomainPurchaseModel) TableName() string {
	return "domain_purchases"
}

// ToDomain converts the model to a domain Purchase
func (m *DomainPurchaseModel) ToDomain() *registrar.Purchase {
	return &registrar.Purchase{
		OwnedAggregateRoot: m.ToOwned(),
		Domain:             m.Domain,
		ProjectID:          m.ProjectID,
		RegistrarPrice:     m.RegistrarPrice,
		Price:              m.Price,
		Currency:           m.Currency,
		Status:             m.Status,
		StripeSessionID:    m.StripeSessionID,
		RegistrarOrderID:   m.RegistrarOrderID,
		FailureReason:      m.FailureReason,
		CompletedAt:        m.CompletedAt,
	}
}

// DomainPurchaseModelFromDomain creates a model from a domain Purchase
func DomainPurchaseModelFromDomain(p *registrar.Purchase) *DomainPurchaseModel {
	m := &DomainPurchaseModel{
		Domain:           p.Domain,
		ProjectID:        p.ProjectID,
		RegistrarPrice:   p.RegistrarPrice,
		Price:            p.Price,
		Currency:         p.Currency,
		Status:           p.Status,
		StripeSessionID:  p.StripeSessionID,
		RegistrarOrderID: p.RegistrarOrderID,
		FailureReason:    p.FailureReason,
		CompletedAt:      p.CompletedAt,
	}
	m.FromDomainOwned(p.OwnedAggregateRoot)
	return m
}

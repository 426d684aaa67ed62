// Package registrar covers domain name search, checkout and purchase.
package registrar

import (
	"regexp"
	"strings"
	"time"

	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseStatus is the lifecycle of a domain purchase
type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "pending"
	PurchaseCompleted PurchaseStatus = "completed"
	PurchaseFailed    PurchaseStatus = "failed"
)

// SuggestionTLDs are tried, in order, when suggesting domains
var SuggestionTLDs = []string{"com", "io", "dev", "app", "ai", "co", "net", "org"}

var (
	labelPattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?$`)
	tldPattern   = regexp.MustCompile(`^[a-z]{2,24}$`)
	nonLabel     = regexp.MustCompile(`[^a-z0-9-]+`)

	ErrInvalidDomain     = shared.NewDomainError("INVALID_DOMAIN", "Domain name is invalid")
	ErrDomainUnavailable = shared.NewDomainError("DOMAIN_UNAVAILABLE", "Domain is not available for purchase")
	ErrPaymentIncomplete = shared.NewDomainError("PAYMENT_INCOMPLETE", "Checkout has not been paid")
)

// NormalizeDomain lowercases and validates a registrable domain name
func NormalizeDomain(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimPrefix(strings.TrimPrefix(name, "https://"), "http://")
	name = strings.TrimSuffix(name, "/")
	name = strings.TrimSuffix(name, ".")
	if len(name) > 253 {
		return "", ErrInvalidDomain
	}
	parts := strings.Split(name, ".")
	if len(parts) < 2 {
		return "", ErrInvalidDomain
	}
	for _, label := range parts[:len(parts)-1] {
		if !labelPattern.MatchString(label) {
			return "", ErrInvalidDomain
		}
	}
	if !tldPattern.MatchString(parts[len(parts)-1]) {
		return "", ErrInvalidDomain
	}
	return name, nil
}

// SanitizeLabel turns free text into a domain label, e.g. "My Cool App!" → "my-cool-app"
func SanitizeLabel(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	if i := strings.IndexByte(q, '.'); i >= 0 {
		q = q[:i]
	}
	q = strings.Join(strings.Fields(q), "-")
	q = nonLabel.ReplaceAllString(q, "")
	for strings.Contains(q, "--") {
		q = strings.ReplaceAll(q, "--", "-")
	}
	q = strings.Trim(q, "-")
	if len(q) > 63 {
		q = strings.Trim(q[:63], "-")
	}
	return q
}

// RetailPrice adds the markup percentage and flat fee to a registrar price,
// rounding up to whole cents.
func RetailPrice(registrarPrice, markupPercent, flatFee decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	markup := registrarPrice.Mul(markupPercent).Div(hundred)
	return registrarPrice.Add(markup).Add(flatFee).RoundCeil(2)
}

// Purchase is a domain bought through checkout
type Purchase struct {
	shared.OwnedAggregateRoot
	Domain           string
	ProjectID        *uuid.UUID
	RegistrarPrice   decimal.Decimal
	Price            decimal.Decimal
	Currency         string
	Status           PurchaseStatus
	StripeSessionID  string
	RegistrarOrderID string
	FailureReason    string
	CompletedAt      *time.Time
}

// NewPurchase creates a pending purchase
func NewPurchase(ownerID uuid.UUID, domain string, projectID *uuid.UUID, registrarPrice, price decimal.Decimal, currency string) (*Purchase, error) {
	domain, err := NormalizeDomain(domain)
	if err != nil {
		return nil, err
	}
	if !price.IsPositive() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price must be positive")
	}
	if currency == "" {
		currency = "usd"
	}
	return &Purchase{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		Domain:             domain,
		ProjectID:          projectID,
		RegistrarPrice:     registrarPrice,
		Price:              price,
		Currency:           strings.ToLower(currency),
		Status:             PurchasePending,
	}, nil
}

// PriceInCents returns the charge amount in the smallest currency unit
func (p *Purchase) PriceInCents() int64 {
	return p.Price.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// AttachCheckout links the payment session
func (p *Purchase) AttachCheckout(sessionID string) {
	p.StripeSessionID = sessionID
	p.IncrementVersion()
}

// Complete marks the domain as registered
func (p *Purchase) Complete(orderID string) error {
	if p.Status == PurchaseCompleted {
		return nil
	}
	if p.Status != PurchasePending {
		return shared.ErrInvalidState
	}
	now := time.Now()
	p.Status = PurchaseCompleted
	p.RegistrarOrderID = orderID
	p.CompletedAt = &now
	p.IncrementVersion()
	p.AddDomainEvent(NewPurchasedEvent(p))
	return nil
}

// Fail marks the purchase as failed
func (p *Purchase) Fail(reason string) error {
	if p.Status != PurchasePending {
		return shared.ErrInvalidState
	}
	p.Status = PurchaseFailed
	p.FailureReason = reason
	p.IncrementVersion()
	return nil
}

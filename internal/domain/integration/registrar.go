package integration

import (
	"context"

	"github.com/shopspring/decimal"
)

// DomainQuote is the registrar's answer for one name
type DomainQuote struct {
	Domain    string          `json:"domain"`
	Available bool            `json:"available"`
	Price     decimal.Decimal `json:"price"`
	Period    int             `json:"period"`
}

// DomainRegistrar checks and buys domain names
type DomainRegistrar interface {
	Check(ctx context.Context, domain string) (*DomainQuote, error)
	// Buy registers the domain, refusing if the price moved above expectedPrice
	Buy(ctx context.Context, domain string, expectedPrice decimal.Decimal) (orderID string, err error)
	// AttachDomain points a bought domain at a hosting project
	AttachDomain(ctx context.Context, projectName, domain string) error
}

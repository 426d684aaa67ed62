package hosting

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/alfred/backend/internal/domain/integration"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Check returns availability and the one-year price for a domain
func (a *VercelAdapter) Check(ctx context.Context, domain string) (*integration.DomainQuote, error) {
	q := url.Values{"name": {domain}}

	var status vercelDomainStatus
	if err := a.doJSON(ctx, http.MethodGet, "/v4/domains/status", q, nil, &status); err != nil {
		return nil, err
	}
	quote := &integration.DomainQuote{Domain: domain, Available: status.Available}
	if !status.Available {
		return quote, nil
	}

	var price vercelDomainPrice
	if err := a.doJSON(ctx, http.MethodGet, "/v4/domains/price", q, nil, &price); err != nil {
		return nil, err
	}
	quote.Price = decimal.NewFromFloat(price.Price)
	quote.Period = price.Period
	return quote, nil
}

// Buy purchases a domain. Vercel rejects the order if the price is not expectedPrice.
func (a *VercelAdapter) Buy(ctx context.Context, domain string, expectedPrice decimal.Decimal) (string, error) {
	price, _ := expectedPrice.Float64()
	body := vercelBuyDomain{Name: domain, ExpectedPrice: price, Renew: true}

	var resp vercelBuyResponse
	if err := a.doJSON(ctx, http.MethodPost, "/v5/domains/buy", nil, body, &resp); err != nil {
		return "", fmt.Errorf("vercel: buy %s: %w", domain, err)
	}
	orderID := resp.Domain.UID
	if orderID == "" {
		orderID = domain
	}
	a.logger.Info("domain purchased", zap.String("domain", domain), zap.String("order_id", orderID))
	return orderID, nil
}

// AttachDomain adds a domain to a Vercel project
func (a *VercelAdapter) AttachDomain(ctx context.Context, projectName, domain string) error {
	path := "/v10/projects/" + url.PathEscape(ProjectName(projectName)) + "/domains"
	return a.doJSON(ctx, http.MethodPost, path, nil, map[string]string{"name": domain}, nil)
}

var _ integration.DomainRegistrar = (*VercelAdapter)(nil)

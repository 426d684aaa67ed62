package hosting

import (
	"context"

	"github.com/alfred/backend/internal/domain/integration"
	"github.com/shopspring/decimal"
)

// Disabled stands in for Vercel when no token is configured. Every call
// fails with ErrProviderNotConfigured.
type Disabled struct{}

var (
	_ integration.HostingProvider = Disabled{}
	_ integration.DomainRegistrar = Disabled{}
)

func (Disabled) CreateDeployment(context.Context, integration.DeployRequest) (*integration.HostingDeployment, error) {
	return nil, integration.ErrProviderNotConfigured
}

func (Disabled) GetDeployment(context.Context, string) (*integration.HostingDeployment, error) {
	return nil, integration.ErrProviderNotConfigured
}

func (Disabled) BuildLog(context.Context, string) (string, error) {
	return "", integration.ErrProviderNotConfigured
}

func (Disabled) Check(context.Context, string) (*integration.DomainQuote, error) {
	return nil, integration.ErrProviderNotConfigured
}

func (Disabled) Buy(context.Context, string, decimal.Decimal) (string, error) {
	return "", integration.ErrProviderNotConfigured
}

func (Disabled) AttachDomain(context.Context, string, string) error {
	return integration.ErrProviderNotConfigured
}

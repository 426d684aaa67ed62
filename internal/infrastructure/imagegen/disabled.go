package imagegen

import (
	"context"

	"github.com/alfred/backend/internal/domain/integration"
)

// Disabled stands in for Replicate when no token is configured
type Disabled struct{}

var _ integration.ImageGenerator = Disabled{}

// Generate always fails
func (Disabled) Generate(context.Context, string) (string, error) {
	return "", integration.ErrProviderNotConfigured
}

package studio

import (
	"context"

	"github.com/alfred/backend/internal/domain/integration"
)

// Disabled stands in for RunPod when no endpoint is configured
type Disabled struct{}

var _ integration.RenderWorker = Disabled{}

func (Disabled) Submit(context.Context, map[string]any) (string, error) {
	return "", integration.ErrProviderNotConfigured
}

func (Disabled) Status(context.Context, string) (*integration.WorkerStatus, error) {
	return nil, integration.ErrProviderNotConfigured
}

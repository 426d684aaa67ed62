package llm

import (
	"context"
	"fmt"

	"github.com/alfred/backend/internal/domain/integration"
	"github.com/alfred/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewProvider builds the configured provider
func NewProvider(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (integration.LLMProvider, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicProvider(AnthropicConfig{
			APIKey:    cfg.AnthropicAPIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			Timeout:   cfg.Timeout,
		}, logger)
	case "gemini":
		return NewGeminiProvider(ctx, GeminiConfig{
			APIKey:    cfg.GeminiAPIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			Timeout:   cfg.Timeout,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// Disabled answers every request with ErrProviderNotConfigured. It lets the
// server start without model credentials.
type Disabled struct{}

// Name returns the provider name
func (Disabled) Name() string { return "disabled" }

// Stream always fails
func (Disabled) Stream(context.Context, integration.CompletionRequest, integration.TokenFunc) (*integration.Completion, error) {
	return nil, integration.ErrProviderNotConfigured
}

var _ integration.LLMProvider = Disabled{}

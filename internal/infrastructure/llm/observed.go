package llm

import (
	"context"
	"time"

	"github.com/alfred/backend/internal/domain/integration"
	"go.uber.org/zap"
)

// Observer receives one record per completed or failed model call
type Observer interface {
	ObserveLLM(provider, purpose string, err error, inputTokens, outputTokens int)
}

// ObservedProvider decorates a provider with usage metrics and call logging
type ObservedProvider struct {
	next     integration.LLMProvider
	observer Observer
	logger   *zap.Logger
}

// NewObservedProvider wraps next. A nil observer only logs.
func NewObservedProvider(next integration.LLMProvider, observer Observer, logger *zap.Logger) *ObservedProvider {
	return &ObservedProvider{next: next, observer: observer, logger: logger}
}

// Name returns the wrapped provider's name
func (p *ObservedProvider) Name() string { return p.next.Name() }

// Stream delegates and records token usage
func (p *ObservedProvider) Stream(ctx context.Context, req integration.CompletionRequest, onToken integration.TokenFunc) (*integration.Completion, error) {
	start := time.Now()
	out, err := p.next.Stream(ctx, req, onToken)

	purpose := req.Purpose
	if purpose == "" {
		purpose = "other"
	}
	var in, outTokens int
	if out != nil {
		in, outTokens = out.InputTokens, out.OutputTokens
	}
	if p.observer != nil {
		p.observer.ObserveLLM(p.next.Name(), purpose, err, in, outTokens)
	}
	if err != nil {
		p.logger.Warn("LLM call failed",
			zap.String("provider", p.next.Name()),
			zap.String("purpose", purpose),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return nil, err
	}
	p.logger.Debug("LLM call completed",
		zap.String("provider", p.next.Name()),
		zap.String("purpose", purpose),
		zap.String("model", out.Model),
		zap.Int("input_tokens", in),
		zap.Int("output_tokens", outTokens),
		zap.Duration("duration", time.Since(start)))
	return out, nil
}

var _ integration.LLMProvider = (*ObservedProvider)(nil)

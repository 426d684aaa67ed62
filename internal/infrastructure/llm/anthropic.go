// Package llm adapts hosted model APIs to integration.LLMProvider.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alfred/backend/internal/domain/integration"
	"github.com/alfred/backend/internal/infrastructure/breaker"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
)

// ErrStreamAborted is returned when the token callback stops the stream
var ErrStreamAborted = errors.New("llm: stream aborted by consumer")

// AnthropicConfig holds Anthropic client settings
type AnthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	BaseURL   string
}

// AnthropicProvider streams Messages API completions
type AnthropicProvider struct {
	client    anthropic.Client
	model     string
	maxTokens int
	timeout   time.Duration
	breaker   *breaker.Breaker
	logger    *zap.Logger
}

// NewAnthropicProvider creates a provider
func NewAnthropicProvider(cfg AnthropicConfig, logger *zap.Logger) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic api key is empty", integration.ErrProviderNotConfigured)
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(2),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &AnthropicProvider{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
		breaker:   breaker.New(breaker.DefaultConfig("anthropic"), logger),
		logger:    logger,
	}, nil
}

// Name returns the provider name
func (p *AnthropicProvider) Name() string { return "anthropic" }

// Stream sends the request and forwards text deltas to onToken
func (p *AnthropicProvider) Stream(ctx context.Context, req integration.CompletionRequest, onToken integration.TokenFunc) (*integration.Completion, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(maxTokens(req.MaxTokens, p.maxTokens)),
		Messages:  toAnthropicMessages(req.Messages),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	var out *integration.Completion
	err := p.breaker.Do(func() error {
		stream := p.client.Messages.NewStreaming(ctx, params)
		defer stream.Close()

		msg := anthropic.Message{}
		var text strings.Builder
		for stream.Next() {
			event := stream.Current()
			if err := msg.Accumulate(event); err != nil {
				return fmt.Errorf("%w: %v", integration.ErrProviderInvalidResponse, err)
			}
			ev, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
			if !ok {
				continue
			}
			delta, ok := ev.Delta.AsAny().(anthropic.TextDelta)
			if !ok || delta.Text == "" {
				continue
			}
			text.WriteString(delta.Text)
			if onToken != nil {
				if err := onToken(delta.Text); err != nil {
					return fmt.Errorf("%w: %w", ErrStreamAborted, err)
				}
			}
		}
		if err := stream.Err(); err != nil {
			return classifyAnthropic(ctx, err)
		}

		model := string(msg.Model)
		if model == "" {
			model = p.model
		}
		out = &integration.Completion{
			Content:      text.String(),
			Model:        model,
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
			StopReason:   string(msg.StopReason),
		}
		return nil
	})
	if err != nil {
		p.logger.Warn("anthropic stream failed", zap.String("model", p.model), zap.Error(err))
		return nil, err
	}
	return out, nil
}

func toAnthropicMessages(in []integration.ChatMessage) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(in))
	for _, m := range in {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == integration.ChatRoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(block))
		} else {
			out = append(out, anthropic.NewUserMessage(block))
		}
	}
	return out
}

func classifyAnthropic(ctx context.Context, err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: anthropic status %d", integration.StatusError(apiErr.StatusCode), apiErr.StatusCode)
	}
	return breaker.Transport(ctx, err)
}

func maxTokens(requested, fallback int) int {
	if requested > 0 {
		return requested
	}
	if fallback > 0 {
		return fallback
	}
	return 4096
}

var _ integration.LLMProvider = (*AnthropicProvider)(nil)

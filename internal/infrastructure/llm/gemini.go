package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alfred/backend/internal/domain/integration"
	"github.com/alfred/backend/internal/infrastructure/breaker"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiConfig holds Gemini client settings
type GeminiConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	BaseURL   string
}

// GeminiProvider streams GenerateContent completions
type GeminiProvider struct {
	client    *genai.Client
	model     string
	maxTokens int
	timeout   time.Duration
	breaker   *breaker.Breaker
	logger    *zap.Logger
}

// NewGeminiProvider creates a provider
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini api key is empty", integration.ErrProviderNotConfigured)
	}
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiProvider{
		client:    client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
		breaker:   breaker.New(breaker.DefaultConfig("gemini"), logger),
		logger:    logger,
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string { return "gemini" }

// Stream sends the request and forwards text deltas to onToken
func (p *GeminiProvider) Stream(ctx context.Context, req integration.CompletionRequest, onToken integration.TokenFunc) (*integration.Completion, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	genCfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens(req.MaxTokens, p.maxTokens)),
	}
	if req.System != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	contents := toGeminiContents(req.Messages)

	var out *integration.Completion
	err := p.breaker.Do(func() error {
		var text strings.Builder
		result := &integration.Completion{Model: p.model}
		for resp, err := range p.client.Models.GenerateContentStream(ctx, p.model, contents, genCfg) {
			if err != nil {
				return classifyGemini(ctx, err)
			}
			if resp.UsageMetadata != nil {
				result.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
				result.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
			}
			if resp.ModelVersion != "" {
				result.Model = resp.ModelVersion
			}
			if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" {
				result.StopReason = string(resp.Candidates[0].FinishReason)
			}
			delta := resp.Text()
			if delta == "" {
				continue
			}
			text.WriteString(delta)
			if onToken != nil {
				if err := onToken(delta); err != nil {
					return fmt.Errorf("%w: %w", ErrStreamAborted, err)
				}
			}
		}
		result.Content = text.String()
		out = result
		return nil
	})
	if err != nil {
		p.logger.Warn("gemini stream failed", zap.String("model", p.model), zap.Error(err))
		return nil, err
	}
	return out, nil
}

func toGeminiContents(in []integration.ChatMessage) []*genai.Content {
	out := make([]*genai.Content, 0, len(in))
	for _, m := range in {
		role := genai.Role(genai.RoleUser)
		if m.Role == integration.ChatRoleAssistant {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(m.Content, role))
	}
	return out
}

func classifyGemini(ctx context.Context, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: gemini status %d", integration.StatusError(apiErr.Code), apiErr.Code)
	}
	return breaker.Transport(ctx, err)
}

var _ integration.LLMProvider = (*GeminiProvider)(nil)

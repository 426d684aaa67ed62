// Package imagegen generates persona portraits with Replicate.
package imagegen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alfred/backend/internal/domain/integration"
	"github.com/alfred/backend/internal/infrastructure/breaker"
	"github.com/replicate/replicate-go"
	"go.uber.org/zap"
)

// ErrReplicateMissingToken is returned when no API token is configured
var ErrReplicateMissingToken = errors.New("replicate: token is required")

// ReplicateConfig selects the model used for portraits
type ReplicateConfig struct {
	Token   string
	Model   string
	BaseURL string
}

// ReplicateGenerator implements integration.ImageGenerator
type ReplicateGenerator struct {
	client  *replicate.Client
	model   string
	breaker *breaker.Breaker
	logger  *zap.Logger
}

var _ integration.ImageGenerator = (*ReplicateGenerator)(nil)

// NewReplicateGenerator creates a generator
func NewReplicateGenerator(cfg ReplicateConfig, logger *zap.Logger) (*ReplicateGenerator, error) {
	if cfg.Token == "" {
		return nil, ErrReplicateMissingToken
	}
	if cfg.Model == "" {
		cfg.Model = "black-forest-labs/flux-schnell"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []replicate.ClientOption{replicate.WithToken(cfg.Token)}
	if cfg.BaseURL != "" {
		opts = append(opts, replicate.WithBaseURL(cfg.BaseURL))
	}
	client, err := replicate.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("replicate: create client: %w", err)
	}
	return &ReplicateGenerator{
		client:  client,
		model:   cfg.Model,
		breaker: breaker.New(breaker.DefaultConfig("replicate"), logger),
		logger:  logger,
	}, nil
}

// Generate runs the model and returns the first image URL
func (g *ReplicateGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("%w: prompt is empty", integration.ErrProviderRequestFailed)
	}
	input := replicate.PredictionInput{
		"prompt":         prompt,
		"aspect_ratio":   "1:1",
		"output_format":  "png",
		"num_outputs":    1,
		"disable_safety": false,
	}

	var imageURL string
	err := g.breaker.Do(func() error {
		out, err := g.client.Run(ctx, g.model, input, nil)
		if err != nil {
			return classifyReplicate(ctx, err)
		}
		u, ok := FirstURL(out)
		if !ok {
			return fmt.Errorf("%w: replicate output has no image url", integration.ErrProviderInvalidResponse)
		}
		imageURL = u
		return nil
	})
	if err != nil {
		return "", err
	}
	g.logger.Info("portrait generated", zap.String("model", g.model))
	return imageURL, nil
}

// FirstURL digs the first http(s) URL out of a prediction output, which is
// either a string, a list of strings or an object with a url field.
func FirstURL(out any) (string, bool) {
	switch v := out.(type) {
	case string:
		if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
			return v, true
		}
	case []any:
		for _, item := range v {
			if u, ok := FirstURL(item); ok {
				return u, true
			}
		}
	case []string:
		for _, item := range v {
			if u, ok := FirstURL(item); ok {
				return u, true
			}
		}
	case map[string]any:
		for _, key := range []string{"url", "image", "output"} {
			if u, ok := FirstURL(v[key]); ok {
				return u, true
			}
		}
	}
	return "", false
}

func classifyReplicate(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var apiErr *replicate.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %s", integration.StatusError(apiErr.Status), apiErr.Detail)
	}
	var modelErr *replicate.ModelError
	if errors.As(err, &modelErr) {
		return fmt.Errorf("%w: %v", integration.ErrProviderRequestFailed, err)
	}
	return fmt.Errorf("%w: %v", integration.ErrProviderUnavailable, err)
}

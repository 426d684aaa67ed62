// Package email sends transactional mail through Resend.
package email

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/alfred/backend/internal/domain/integration"
	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// ErrResendMissingKey is returned without an API key
var ErrResendMissingKey = errors.New("resend: api key is required")

// ResendMailer implements integration.Mailer
type ResendMailer struct {
	client *resend.Client
	from   string
	logger *zap.Logger
}

var _ integration.Mailer = (*ResendMailer)(nil)

// NewResendMailer creates a mailer. baseURL overrides the API endpoint in tests.
func NewResendMailer(apiKey, from, baseURL string, logger *zap.Logger) (*ResendMailer, error) {
	if apiKey == "" {
		return nil, ErrResendMissingKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resend.NewClient(apiKey)
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("resend: invalid base url: %w", err)
		}
		client.BaseURL = u
	}
	return &ResendMailer{client: client, from: from, logger: logger}, nil
}

// Send delivers one message
func (m *ResendMailer) Send(ctx context.Context, msg integration.Email) error {
	if msg.To == "" {
		return fmt.Errorf("%w: recipient is required", integration.ErrProviderRequestFailed)
	}
	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: resend: %v", integration.ErrProviderRequestFailed, err)
	}
	m.logger.Info("email sent", zap.String("email_id", sent.Id), zap.String("subject", msg.Subject))
	return nil
}

// LogMailer writes messages to the log instead of sending them
type LogMailer struct {
	logger *zap.Logger
}

var _ integration.Mailer = (*LogMailer)(nil)

// NewLogMailer creates a mailer for environments without an email provider
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the message
func (m *LogMailer) Send(_ context.Context, msg integration.Email) error {
	m.logger.Info("email (not sent, no provider configured)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}

// NewMailer returns a Resend mailer when a key is configured, else a LogMailer
func NewMailer(apiKey, from string, logger *zap.Logger) integration.Mailer {
	if apiKey == "" {
		return NewLogMailer(logger)
	}
	m, err := NewResendMailer(apiKey, from, "", logger)
	if err != nil {
		logger.Warn("email disabled", zap.Error(err))
		return NewLogMailer(logger)
	}
	return m
}

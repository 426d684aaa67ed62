// Package browser renders live pages with headless Chrome for SEO analysis.
package browser

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/alfred/backend/internal/domain/integration"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	defaultRenderTimeout = 20 * time.Second
	maxRenderedHTML      = 5 << 20
)

var (
	ErrInvalidURL   = errors.New("browser: url must be an absolute http(s) url")
	ErrPrivateHost  = errors.New("browser: url resolves to a private address")
	ErrRenderFailed = errors.New("browser: render failed")
)

// ChromedpConfig contains configuration for the chromedp renderer
type ChromedpConfig struct {
	// ExecPath is the Chrome binary; empty uses chromedp's lookup
	ExecPath string
	// RemoteURL is the websocket URL of a remote Chrome instance (optional)
	RemoteURL string
	// Timeout bounds one render
	Timeout time.Duration
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
	// AllowPrivate permits loopback and private hosts; tests only
	AllowPrivate bool
	Logger       *zap.Logger
}

// ChromedpRenderer implements integration.PageRenderer
type ChromedpRenderer struct {
	config      *ChromedpConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

var _ integration.PageRenderer = (*ChromedpRenderer)(nil)

// NewChromedpRenderer creates a renderer. Chrome starts lazily on the first render.
func NewChromedpRenderer(config *ChromedpConfig) *ChromedpRenderer {
	if config == nil {
		config = &ChromedpConfig{}
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultRenderTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &ChromedpRenderer{config: config, logger: logger}
	if config.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), config.RemoteURL)
		return r
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.UserAgent("AlfredSEOBot/1.0 (+https://alfred.dev/bot)"),
	)
	if config.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(config.ExecPath))
	}
	if config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return r
}

// Render loads the page, waits for the body and returns the serialized DOM
func (r *ChromedpRenderer) Render(ctx context.Context, rawURL string) (string, error) {
	target, err := ValidateTargetURL(ctx, rawURL, r.config.AllowPrivate)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	tabCtx, tabCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer tabCancel()

	// stop the tab when the caller's deadline passes
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	start := time.Now()
	var html string
	err = chromedp.Run(tabCtx,
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%w: timed out after %v", ErrRenderFailed, r.config.Timeout)
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		r.logger.Warn("chromedp render failed", zap.String("url", target), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	if len(html) > maxRenderedHTML {
		html = html[:maxRenderedHTML]
	}

	r.logger.Info("page rendered",
		zap.String("url", target),
		zap.Int("bytes", len(html)),
		zap.Duration("duration", time.Since(start)))
	return html, nil
}

// Close shuts the browser down
func (r *ChromedpRenderer) Close() {
	if r.allocCancel != nil {
		r.allocCancel()
	}
}

// ValidateTargetURL checks the scheme and refuses hosts that resolve to
// loopback, private or link-local addresses unless allowPrivate is set.
func ValidateTargetURL(ctx context.Context, rawURL string, allowPrivate bool) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return "", ErrInvalidURL
	}
	if allowPrivate {
		return u.String(), nil
	}

	host := u.Hostname()
	var ips []net.IP
	if ip := net.ParseIP(host); ip != nil {
		ips = []net.IP{ip}
	} else {
		addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
		}
		for _, a := range addrs {
			ips = append(ips, a.IP)
		}
	}
	for _, ip := range ips {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
			return "", ErrPrivateHost
		}
	}
	return u.String(), nil
}

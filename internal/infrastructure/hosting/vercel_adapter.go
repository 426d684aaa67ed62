package hosting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/alfred/backend/internal/domain/integration"
	"github.com/alfred/backend/internal/infrastructure/breaker"
	"go.uber.org/zap"
)

var nonProjectName = regexp.MustCompile(`[^a-z0-9._-]+`)

// VercelAdapter implements integration.HostingProvider and integration.DomainRegistrar
type VercelAdapter struct {
	config     *VercelConfig
	httpClient *http.Client
	breaker    *breaker.Breaker
	logger     *zap.Logger
}

// NewVercelAdapter creates a new Vercel adapter
func NewVercelAdapter(config *VercelConfig, logger *zap.Logger) (*VercelAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VercelAdapter{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		breaker:    breaker.New(breaker.DefaultConfig("vercel"), logger),
		logger:     logger,
	}, nil
}

// ProjectName turns a display name into a valid Vercel project name
func ProjectName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.Join(strings.Fields(n), "-")
	n = nonProjectName.ReplaceAllString(n, "")
	n = strings.Trim(n, "-.")
	if len(n) > 100 {
		n = n[:100]
	}
	if n == "" {
		n = "alfred-site"
	}
	return n
}

// CreateDeployment uploads files inline and starts a production build
func (a *VercelAdapter) CreateDeployment(ctx context.Context, req integration.DeployRequest) (*integration.HostingDeployment, error) {
	body := vercelCreateDeployment{
		Name:   ProjectName(req.Name),
		Files:  make([]vercelFile, 0, len(req.Files)),
		Target: "production",
	}
	if req.Framework != "" {
		fw := req.Framework
		body.ProjectSettings.Framework = &fw
	}
	for _, f := range req.Files {
		body.Files = append(body.Files, vercelFile{File: f.Path, Data: f.Content, Encoding: "utf-8"})
	}

	var dep vercelDeployment
	if err := a.doJSON(ctx, http.MethodPost, "/v13/deployments", nil, body, &dep); err != nil {
		return nil, err
	}
	a.logger.Info("vercel deployment created",
		zap.String("deployment_id", dep.ID),
		zap.String("project", body.Name),
		zap.Int("files", len(body.Files)),
	)
	return toHostingDeployment(dep), nil
}

// GetDeployment returns the current state of a deployment
func (a *VercelAdapter) GetDeployment(ctx context.Context, id string) (*integration.HostingDeployment, error) {
	var dep vercelDeployment
	if err := a.doJSON(ctx, http.MethodGet, "/v13/deployments/"+url.PathEscape(id), nil, nil, &dep); err != nil {
		return nil, err
	}
	return toHostingDeployment(dep), nil
}

// BuildLog returns the tail of the build output
func (a *VercelAdapter) BuildLog(ctx context.Context, id string) (string, error) {
	q := url.Values{"builds": {"1"}, "limit": {"-1"}}
	var events []vercelEvent
	if err := a.doJSON(ctx, http.MethodGet, "/v3/deployments/"+url.PathEscape(id)+"/events", q, nil, &events); err != nil {
		return "", err
	}

	var b strings.Builder
	for _, ev := range events {
		text := ev.Text
		if text == "" {
			text = ev.Payload.Text
		}
		if text == "" {
			continue
		}
		switch ev.Type {
		case "stdout", "stderr", "command", "fatal":
			b.WriteString(text)
			if !strings.HasSuffix(text, "\n") {
				b.WriteByte('\n')
			}
		}
	}
	log := b.String()
	if len(log) > maxBuildLogBytes {
		log = log[len(log)-maxBuildLogBytes:]
	}
	return log, nil
}

func toHostingDeployment(d vercelDeployment) *integration.HostingDeployment {
	u := d.URL
	if u != "" && !strings.HasPrefix(u, "http") {
		u = "https://" + u
	}
	return &integration.HostingDeployment{
		ID:        d.ID,
		ProjectID: d.ProjectID,
		URL:       u,
		State:     integration.HostingState(strings.ToUpper(d.ReadyState)),
	}
}

// doJSON sends a JSON request through the circuit breaker and decodes the response into out
func (a *VercelAdapter) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	return a.breaker.Do(func() error {
		raw, err := a.doRequest(ctx, method, path, query, in)
		if err != nil {
			return err
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%w: %v", integration.ErrProviderInvalidResponse, err)
		}
		return nil
	})
}

func (a *VercelAdapter) doRequest(ctx context.Context, method, path string, query url.Values, in any) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	if a.config.TeamID != "" {
		query.Set("teamId", a.config.TeamID)
	}
	endpoint := a.config.APIBaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if in != nil {
		bodyBytes, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("vercel: failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("vercel: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.config.Token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, breaker.Transport(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxVercelResponseSize))
	if err != nil {
		return nil, fmt.Errorf("vercel: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr vercelError
		_ = json.Unmarshal(body, &apiErr)
		return nil, fmt.Errorf("%w: HTTP %d %s %s", integration.StatusError(resp.StatusCode),
			resp.StatusCode, apiErr.Error.Code, apiErr.Error.Message)
	}
	return body, nil
}

var _ integration.HostingProvider = (*VercelAdapter)(nil)

package studio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/alfred/backend/internal/domain/integration"
	"github.com/alfred/backend/internal/infrastructure/breaker"
	"go.uber.org/zap"
)

// RunPod job states
const (
	StatusInQueue    = "IN_QUEUE"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
	StatusCancelled  = "CANCELLED"
	StatusTimedOut   = "TIMED_OUT"
)

type runRequest struct {
	Input map[string]any `json:"input"`
}

type jobResponse struct {
	ID            string          `json:"id"`
	Status        string          `json:"status"`
	Output        json.RawMessage `json:"output,omitempty"`
	Error         string          `json:"error,omitempty"`
	ExecutionTime int64           `json:"executionTime,omitempty"`
}

// RunPodClient implements integration.RenderWorker
type RunPodClient struct {
	config     *RunPodConfig
	httpClient *http.Client
	breaker    *breaker.Breaker
	logger     *zap.Logger
}

var _ integration.RenderWorker = (*RunPodClient)(nil)

// NewRunPodClient creates a client for one serverless endpoint
func NewRunPodClient(config *RunPodConfig, logger *zap.Logger) (*RunPodClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunPodClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		breaker:    breaker.New(breaker.DefaultConfig("runpod"), logger),
		logger:     logger,
	}, nil
}

// Submit queues a job asynchronously and returns the RunPod job id
func (c *RunPodClient) Submit(ctx context.Context, input map[string]any) (string, error) {
	var resp jobResponse
	if err := c.do(ctx, http.MethodPost, "/run", runRequest{Input: input}, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("%w: runpod returned no job id", integration.ErrProviderInvalidResponse)
	}
	c.logger.Info("runpod job submitted",
		zap.String("runpod_job_id", resp.ID),
		zap.Any("job_type", input["job_type"]))
	return resp.ID, nil
}

// Status polls a job
func (c *RunPodClient) Status(ctx context.Context, id string) (*integration.WorkerStatus, error) {
	var resp jobResponse
	if err := c.do(ctx, http.MethodGet, "/status/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	st := &integration.WorkerStatus{
		ID:          resp.ID,
		Status:      resp.Status,
		Error:       resp.Error,
		ExecutionMS: resp.ExecutionTime,
	}
	if len(resp.Output) > 0 && string(resp.Output) != "null" {
		var out map[string]any
		if err := json.Unmarshal(resp.Output, &out); err != nil {
			// some handlers return a bare string or list
			out = map[string]any{"result": string(resp.Output)}
		}
		st.Output = out
		if msg, ok := out["error"].(string); ok && st.Error == "" {
			st.Error = msg
		}
	}
	return st, nil
}

func (c *RunPodClient) do(ctx context.Context, method, path string, in, out any) error {
	return c.breaker.Do(func() error {
		endpoint := c.config.BaseURL + "/" + url.PathEscape(c.config.EndpointID) + path

		var reader io.Reader
		if in != nil {
			body, err := json.Marshal(in)
			if err != nil {
				return fmt.Errorf("runpod: failed to marshal request: %w", err)
			}
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return fmt.Errorf("runpod: failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		req.Header.Set("Accept", "application/json")
		if in != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return breaker.Transport(ctx, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxRunPodResponseSize))
		if err != nil {
			return fmt.Errorf("runpod: failed to read response: %w", err)
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("%w: HTTP %d %s", integration.StatusError(resp.StatusCode), resp.StatusCode, truncate(body, 256))
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%w: %v", integration.ErrProviderInvalidResponse, err)
		}
		return nil
	})
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}

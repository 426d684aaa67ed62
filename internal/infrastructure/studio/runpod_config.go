// Package studio submits persona render jobs to the RunPod serverless GPU worker.
package studio

import (
	"errors"
	"strings"
	"time"
)

const (
	// RunPodAPIURL is the serverless API endpoint
	RunPodAPIURL = "https://api.runpod.ai/v2"

	maxRunPodResponseSize = 1 << 20
)

var (
	ErrRunPodConfigMissingEndpoint = errors.New("runpod: endpoint id is required")
	ErrRunPodConfigMissingKey      = errors.New("runpod: api key is required")
)

// RunPodConfig holds configuration for a RunPod serverless endpoint
type RunPodConfig struct {
	EndpointID string
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
}

// Validate validates the configuration and fills defaults
func (c *RunPodConfig) Validate() error {
	if c.EndpointID == "" {
		return ErrRunPodConfigMissingEndpoint
	}
	if c.APIKey == "" {
		return ErrRunPodConfigMissingKey
	}
	if c.BaseURL == "" {
		c.BaseURL = RunPodAPIURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}

package integration

import (
	"context"
	"time"
)

// WorkerStatus is the state of a GPU worker job
type WorkerStatus struct {
	ID          string
	Status      string
	Output      map[string]any
	Error       string
	ExecutionMS int64
}

// RenderWorker runs persona studio jobs
type RenderWorker interface {
	Submit(ctx context.Context, input map[string]any) (string, error)
	Status(ctx context.Context, id string) (*WorkerStatus, error)
}

// ImageGenerator turns a prompt into a hosted image URL
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// PageRenderer loads a URL in a browser and returns the rendered HTML
type PageRenderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// ObjectStorage stores blobs by key
type ObjectStorage interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Email is a transactional message
type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer sends transactional email
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

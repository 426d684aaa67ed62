// Package deployment tracks deploys of builder projects and their auto-fix attempts.
package deployment

import (
	"time"

	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Status of a deployment
type Status string

const (
	StatusQueued   Status = "queued"
	StatusBuilding Status = "building"
	StatusFixing   Status = "fixing"
	StatusReady    Status = "ready"
	StatusFailed   Status = "failed"
)

const (
	DefaultMaxAttempts = 3
	MaxAttemptsCap     = 5
	maxErrorLogBytes   = 16 * 1024
)

var (
	ErrAttemptsExhausted = shared.NewDomainError("ATTEMPTS_EXHAUSTED", "Deployment has used all of its attempts")
	ErrAlreadyFinished   = shared.NewDomainError("DEPLOYMENT_FINISHED", "Deployment has already finished")
)

// Fix records one LLM patch applied between attempts
type Fix struct {
	Attempt int       `json:"attempt"`
	Summary string    `json:"summary"`
	Files   []string  `json:"files"`
	At      time.Time `json:"at"`
}

// Deployment is a bounded sequence of build attempts for one project
type Deployment struct {
	shared.OwnedAggregateRoot
	ProjectID          uuid.UUID
	Status             Status
	Attempts           int
	MaxAttempts        int
	AutoFix            bool
	VercelDeploymentID string
	URL                string
	ErrorLog           string
	Fixes              []Fix
	FinishedAt         *time.Time
}

// NewDeployment queues a deployment. maxAttempts is clamped to [1, MaxAttemptsCap];
// zero means DefaultMaxAttempts. Without auto-fix there is exactly one attempt.
func NewDeployment(ownerID, projectID uuid.UUID, maxAttempts int, autoFix bool) *Deployment {
	switch {
	case maxAttempts <= 0:
		maxAttempts = DefaultMaxAttempts
	case maxAttempts > MaxAttemptsCap:
		maxAttempts = MaxAttemptsCap
	}
	if !autoFix {
		maxAttempts = 1
	}
	return &Deployment{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		ProjectID:          projectID,
		Status:             StatusQueued,
		MaxAttempts:        maxAttempts,
		AutoFix:            autoFix,
		Fixes:              []Fix{},
	}
}

// IsTerminal reports whether the deployment has finished
func (d *Deployment) IsTerminal() bool {
	return d.Status == StatusReady || d.Status == StatusFailed
}

// StartAttempt begins the next build attempt and returns its number
func (d *Deployment) StartAttempt() (int, error) {
	if d.IsTerminal() {
		return 0, ErrAlreadyFinished
	}
	if d.Attempts >= d.MaxAttempts {
		return 0, ErrAttemptsExhausted
	}
	d.Attempts++
	d.Status = StatusBuilding
	d.VercelDeploymentID = ""
	d.IncrementVersion()
	return d.Attempts, nil
}

// RecordProviderID stores the hosting provider's id for the current attempt
func (d *Deployment) RecordProviderID(id string) {
	d.VercelDeploymentID = id
	d.IncrementVersion()
}

// CanRetry reports whether another attempt may follow a failure
func (d *Deployment) CanRetry() bool {
	return d.AutoFix && !d.IsTerminal() && d.Attempts < d.MaxAttempts
}

// BeginFix marks the deployment as waiting for a patch
func (d *Deployment) BeginFix() {
	d.Status = StatusFixing
	d.IncrementVersion()
}

// RecordFix notes a patch applied before the next attempt
func (d *Deployment) RecordFix(summary string, files []string) {
	d.Fixes = append(d.Fixes, Fix{Attempt: d.Attempts, Summary: summary, Files: files, At: time.Now()})
	d.Status = StatusFixing
	d.IncrementVersion()
}

// RecordError keeps the latest build log tail
func (d *Deployment) RecordError(log string) {
	if len(log) > maxErrorLogBytes {
		log = log[len(log)-maxErrorLogBytes:]
	}
	d.ErrorLog = log
	d.IncrementVersion()
}

// MarkReady finishes the deployment successfully
func (d *Deployment) MarkReady(url string) error {
	if d.IsTerminal() {
		return ErrAlreadyFinished
	}
	now := time.Now()
	d.Status = StatusReady
	d.URL = url
	d.ErrorLog = ""
	d.FinishedAt = &now
	d.IncrementVersion()
	d.AddDomainEvent(NewSucceededEvent(d))
	return nil
}

// MarkFailed finishes the deployment with the last error
func (d *Deployment) MarkFailed(log string) error {
	if d.IsTerminal() {
		return ErrAlreadyFinished
	}
	d.RecordError(log)
	now := time.Now()
	d.Status = StatusFailed
	d.FinishedAt = &now
	d.IncrementVersion()
	d.AddDomainEvent(NewFailedEvent(d))
	return nil
}

package persona

import (
	"context"
	"fmt"

	"github.com/alfred/backend/internal/domain/integration"
	"github.com/alfred/backend/internal/domain/persona"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RenderObserver records studio job outcomes
type RenderObserver interface {
	ObserveRenderJob(jobType, status string)
}

// StudioService submits and tracks persona render jobs on the GPU worker
type StudioService struct {
	personas persona.Repository
	jobs     persona.RenderJobRepository
	worker   integration.RenderWorker
	observer RenderObserver
	logger   *zap.Logger
}

// NewStudioService creates a new studio service
func NewStudioService(
	personas persona.Repository,
	jobs persona.RenderJobRepository,
	worker integration.RenderWorker,
	observer RenderObserver,
	logger *zap.Logger,
) *StudioService {
	return &StudioService{personas: personas, jobs: jobs, worker: worker, observer: observer, logger: logger}
}

// Presets lists the quality presets
func (s *StudioService) Presets() []persona.QualityPreset {
	return persona.Presets()
}

// Submit validates the request, hands it to the worker and records a queued job
func (s *StudioService) Submit(ctx context.Context, ownerID, personaID uuid.UUID, input RenderInput) (*RenderJobDTO, error) {
	p, err := s.personas.FindByIDForOwner(ctx, ownerID, personaID)
	if err != nil {
		return nil, err
	}
	job, err := persona.NewRenderJob(p, persona.RenderRequest{
		JobType:     persona.JobType(input.JobType),
		Quality:     input.Quality,
		AudioURL:    input.AudioURL,
		MusicURL:    input.MusicURL,
		AmbienceURL: input.AmbienceURL,
		Captions:    input.Captions,
		Takes:       input.Takes,
	})
	if err != nil {
		return nil, err
	}
	externalID, err := s.worker.Submit(ctx, job.Input)
	if err != nil {
		return nil, fmt.Errorf("submit render job: %w", err)
	}
	job.Submitted(externalID)
	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, err
	}
	s.observe(job)
	s.logger.Info("Render job submitted",
		zap.String("persona_id", p.ID.String()),
		zap.String("job_id", job.ID.String()),
		zap.String("external_id", externalID),
		zap.String("job_type", string(job.JobType)),
		zap.String("quality", job.Quality))
	dto := ToRenderJobDTO(job)
	return &dto, nil
}

// Get returns a job, refreshing it from the worker while it is unfinished
func (s *StudioService) Get(ctx context.Context, ownerID, personaID, jobID uuid.UUID) (*RenderJobDTO, error) {
	job, err := s.jobs.FindByIDForOwner(ctx, ownerID, jobID)
	if err != nil {
		return nil, err
	}
	if job.PersonaID != personaID {
		return nil, shared.ErrNotFound
	}
	if !job.IsTerminal() && job.ExternalJobID != "" {
		if err := s.refresh(ctx, job); err != nil {
			return nil, err
		}
	}
	dto := ToRenderJobDTO(job)
	return &dto, nil
}

// List returns the jobs of a persona
func (s *StudioService) List(ctx context.Context, ownerID, personaID uuid.UUID) ([]RenderJobDTO, error) {
	if _, err := s.personas.FindByIDForOwner(ctx, ownerID, personaID); err != nil {
		return nil, err
	}
	items, err := s.jobs.ListByPersona(ctx, ownerID, personaID)
	if err != nil {
		return nil, err
	}
	out := make([]RenderJobDTO, len(items))
	for i := range items {
		out[i] = ToRenderJobDTO(&items[i])
	}
	return out, nil
}

func (s *StudioService) refresh(ctx context.Context, job *persona.RenderJob) error {
	st, err := s.worker.Status(ctx, job.ExternalJobID)
	if err != nil {
		return fmt.Errorf("poll render job: %w", err)
	}
	before := job.Status
	applyWorkerStatus(job, st)
	if job.Status == before {
		return nil
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		return err
	}
	if job.IsTerminal() {
		s.observe(job)
		s.logger.Info("Render job finished",
			zap.String("job_id", job.ID.String()),
			zap.String("status", string(job.Status)),
			zap.Int64("duration_ms", job.DurationMS))
	}
	return nil
}

// applyWorkerStatus maps a worker state onto the job
func applyWorkerStatus(job *persona.RenderJob, st *integration.WorkerStatus) {
	switch st.Status {
	case "IN_QUEUE", "IN_PROGRESS":
		job.MarkRunning()
	case "COMPLETED":
		if success, ok := st.Output["success"].(bool); ok && !success {
			reason := st.Error
			if reason == "" {
				reason = "render failed"
			}
			job.Fail(reason)
			return
		}
		duration := st.ExecutionMS
		if ms, ok := st.Output["duration_ms"].(float64); ok && ms > 0 {
			duration = int64(ms)
		}
		metadata, _ := st.Output["metadata"].(map[string]any)
		job.Complete(outputURLs(st.Output), metadata, duration)
	case "FAILED", "CANCELLED", "TIMED_OUT":
		reason := st.Error
		if reason == "" {
			reason = "worker reported " + st.Status
		}
		job.Fail(reason)
	}
}

// outputURLs collects the string entries of the worker's output map
func outputURLs(out map[string]any) map[string]string {
	urls := map[string]string{}
	nested, ok := out["output"].(map[string]any)
	if !ok {
		nested = out
	}
	for k, v := range nested {
		if s, ok := v.(string); ok && s != "" {
			urls[k] = s
		}
	}
	return urls
}

func (s *StudioService) observe(job *persona.RenderJob) {
	if s.observer != nil {
		s.observer.ObserveRenderJob(string(job.JobType), string(job.Status))
	}
}

package deployment

import (
	"context"
	"errors"

	"github.com/alfred/backend/internal/domain/builder"
	"github.com/alfred/backend/internal/domain/deployment"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrDeploymentInProgress = shared.NewDomainError("INVALID_STATE", "The project already has a deployment in progress")
	ErrEmptyProject         = shared.NewDomainError("EMPTY_PROJECT", "The project has no files to deploy")
)

// resumeBatch caps how many interrupted deployments are requeued at startup
const resumeBatch = 100

// Quota enforces the monthly deployment count
type Quota interface {
	CheckDeployments(ctx context.Context, userID uuid.UUID) error
}

// Queue hands a deployment to the background runner
type Queue interface {
	Enqueue(deploymentID, ownerID uuid.UUID) error
}

// Service starts deployments and reports their progress
type Service struct {
	repo               deployment.Repository
	projectRepo        builder.ProjectRepository
	quota              Quota
	queue              Queue
	defaultMaxAttempts int
	logger             *zap.Logger
}

// NewService creates a new deployment service. defaultMaxAttempts applies
// when a request does not choose its own bound.
func NewService(
	repo deployment.Repository,
	projectRepo builder.ProjectRepository,
	quota Quota,
	queue Queue,
	defaultMaxAttempts int,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:               repo,
		projectRepo:        projectRepo,
		quota:              quota,
		queue:              queue,
		defaultMaxAttempts: defaultMaxAttempts,
		logger:             logger,
	}
}

// Start queues a deployment of the project and returns it immediately
func (s *Service) Start(ctx context.Context, ownerID, projectID uuid.UUID, input StartInput) (*DeploymentDTO, error) {
	p, err := s.projectRepo.FindByIDForOwner(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	if len(p.Metadata.Files) == 0 {
		return nil, ErrEmptyProject
	}
	active, err := s.repo.ActiveForProject(ctx, p.ID)
	switch {
	case err == nil && active != nil:
		return nil, ErrDeploymentInProgress
	case err != nil && !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}
	if err := s.quota.CheckDeployments(ctx, ownerID); err != nil {
		return nil, err
	}

	maxAttempts := input.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = s.defaultMaxAttempts
	}
	autoFix := true
	if input.AutoFix != nil {
		autoFix = *input.AutoFix
	}
	d := deployment.NewDeployment(ownerID, p.ID, maxAttempts, autoFix)
	if err := s.repo.Save(ctx, d); err != nil {
		return nil, err
	}
	if err := s.queue.Enqueue(d.ID, ownerID); err != nil {
		s.logger.Error("Failed to queue deployment", zap.String("deployment_id", d.ID.String()), zap.Error(err))
		if markErr := d.MarkFailed("deployment queue unavailable: " + err.Error()); markErr == nil {
			d.ClearDomainEvents()
			if saveErr := s.repo.Save(ctx, d); saveErr != nil {
				s.logger.Error("Failed to record unqueued deployment",
					zap.String("deployment_id", d.ID.String()),
					zap.Error(saveErr))
			}
		}
		return nil, shared.NewDomainError(shared.ErrUpstreamFailure.Code, "Deployments are temporarily unavailable")
	}

	s.logger.Info("Deployment queued",
		zap.String("user_id", ownerID.String()),
		zap.String("project_id", p.ID.String()),
		zap.String("deployment_id", d.ID.String()),
		zap.Int("max_attempts", d.MaxAttempts),
		zap.Bool("auto_fix", d.AutoFix))
	dto := ToDeploymentDTO(d)
	return &dto, nil
}

// Get returns one deployment
func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*DeploymentDTO, error) {
	d, err := s.repo.FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	dto := ToDeploymentDTO(d)
	return &dto, nil
}

// ListByProject returns the newest deployments of a project
func (s *Service) ListByProject(ctx context.Context, ownerID, projectID uuid.UUID, limit int) ([]DeploymentDTO, error) {
	if _, err := s.projectRepo.FindByIDForOwner(ctx, ownerID, projectID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByProject(ctx, ownerID, projectID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]DeploymentDTO, len(items))
	for i := range items {
		out[i] = ToDeploymentDTO(&items[i])
	}
	return out, nil
}

// Resume requeues deployments interrupted by a restart
func (s *Service) Resume(ctx context.Context) (int, error) {
	pending, err := s.repo.ListUnfinished(ctx, resumeBatch)
	if err != nil {
		return 0, err
	}
	queued := 0
	for i := range pending {
		if err := s.queue.Enqueue(pending[i].ID, pending[i].OwnerID); err != nil {
			s.logger.Warn("Failed to resume deployment",
				zap.String("deployment_id", pending[i].ID.String()),
				zap.Error(err))
			continue
		}
		queued++
	}
	if queued > 0 {
		s.logger.Info("Resumed interrupted deployments", zap.Int("count", queued))
	}
	return queued, nil
}

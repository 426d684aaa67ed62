package billing

import (
	"context"
	"time"

	"github.com/alfred/backend/internal/domain/billing"
	"github.com/alfred/backend/internal/domain/builder"
	"github.com/alfred/backend/internal/domain/chat"
	"github.com/alfred/backend/internal/domain/deployment"
	"github.com/alfred/backend/internal/domain/identity"
	"github.com/alfred/backend/internal/domain/persona"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Limit names used in quota errors and metrics
const (
	LimitMessages    = "messages per day"
	LimitProjects    = "projects"
	LimitDeployments = "deployments per month"
	LimitPersonas    = "personas"
)

// QuotaObserver is notified when a request is rejected by a plan limit
type QuotaObserver interface {
	ObserveQuotaRejection(limit string)
}

// QuotaService enforces the plan table against current usage
type QuotaService struct {
	userRepo       identity.UserRepository
	plans          *billing.Catalogue
	messageRepo    chat.MessageRepository
	projectRepo    builder.ProjectRepository
	deploymentRepo deployment.Repository
	personaRepo    persona.Repository
	observer       QuotaObserver
	logger         *zap.Logger
	now            func() time.Time
}

// QuotaRepositories groups the usage sources counted against plan limits
type QuotaRepositories struct {
	Users       identity.UserRepository
	Messages    chat.MessageRepository
	Projects    builder.ProjectRepository
	Deployments deployment.Repository
	Personas    persona.Repository
}

// NewQuotaService creates a new quota service. observer may be nil.
func NewQuotaService(repos QuotaRepositories, plans *billing.Catalogue, observer QuotaObserver, logger *zap.Logger) *QuotaService {
	return &QuotaService{
		userRepo:       repos.Users,
		plans:          plans,
		messageRepo:    repos.Messages,
		projectRepo:    repos.Projects,
		deploymentRepo: repos.Deployments,
		personaRepo:    repos.Personas,
		observer:       observer,
		logger:         logger,
		now:            time.Now,
	}
}

// LimitsFor returns the limits of the user's effective plan
func (s *QuotaService) LimitsFor(ctx context.Context, userID uuid.UUID) (string, billing.Limits, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", billing.Limits{}, err
	}
	plan := user.EffectivePlan()
	return plan, s.plans.LimitsFor(plan), nil
}

// CheckMessages enforces the daily message quota. Days start at UTC midnight.
func (s *QuotaService) CheckMessages(ctx context.Context, userID uuid.UUID) error {
	return s.check(ctx, userID, LimitMessages, func(l billing.Limits) int { return l.MessagesPerDay },
		func() (int64, error) {
			return s.messageRepo.CountUserMessagesSince(ctx, userID, startOfDay(s.now()))
		})
}

// CheckProjects enforces the project count
func (s *QuotaService) CheckProjects(ctx context.Context, userID uuid.UUID) error {
	return s.check(ctx, userID, LimitProjects, func(l billing.Limits) int { return l.Projects },
		func() (int64, error) { return s.projectRepo.CountForOwner(ctx, userID) })
}

// CheckDeployments enforces the monthly deployment quota
func (s *QuotaService) CheckDeployments(ctx context.Context, userID uuid.UUID) error {
	return s.check(ctx, userID, LimitDeployments, func(l billing.Limits) int { return l.DeploymentsPerMonth },
		func() (int64, error) {
			return s.deploymentRepo.CountForOwnerSince(ctx, userID, startOfMonth(s.now()))
		})
}

// CheckPersonas enforces the persona count
func (s *QuotaService) CheckPersonas(ctx context.Context, userID uuid.UUID) error {
	return s.check(ctx, userID, LimitPersonas, func(l billing.Limits) int { return l.Personas },
		func() (int64, error) { return s.personaRepo.CountForOwner(ctx, userID) })
}

func (s *QuotaService) check(ctx context.Context, userID uuid.UUID, what string, limitOf func(billing.Limits) int, used func() (int64, error)) error {
	_, limits, err := s.LimitsFor(ctx, userID)
	if err != nil {
		return err
	}
	limit := limitOf(limits)
	if limit == billing.Unlimited {
		return nil
	}
	count, err := used()
	if err != nil {
		return err
	}
	if err := billing.CheckQuota(what, limit, count); err != nil {
		s.logger.Info("Plan limit reached",
			zap.String("user_id", userID.String()),
			zap.String("limit", what),
			zap.Int64("used", count))
		if s.observer != nil {
			s.observer.ObserveQuotaRejection(what)
		}
		return err
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func startOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

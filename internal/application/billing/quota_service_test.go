package billing

import (
	"context"
	"testing"
	"time"

	"github.com/alfred/backend/internal/domain/billing"
	"github.com/alfred/backend/internal/domain/identity"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingObserver struct {
	limits []string
}

func (o *recordingObserver) ObserveQuotaRejection(limit string) {
	o.limits = append(o.limits, limit)
}

type quotaFixture struct {
	users       *mockUserRepository
	messages    *mockMessageRepository
	projects    *mockProjectRepository
	deployments *mockDeploymentRepository
	personas    *mockPersonaRepository
	observer    *recordingObserver
	svc         *QuotaService
}

func newQuotaFixture(t *testing.T, user *identity.User) *quotaFixture {
	t.Helper()
	f := &quotaFixture{
		users:       new(mockUserRepository),
		messages:    new(mockMessageRepository),
		projects:    new(mockProjectRepository),
		deployments: new(mockDeploymentRepository),
		personas:    new(mockPersonaRepository),
		observer:    &recordingObserver{},
	}
	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	f.svc = NewQuotaService(QuotaRepositories{
		Users:       f.users,
		Messages:    f.messages,
		Projects:    f.projects,
		Deployments: f.deployments,
		Personas:    f.personas,
	}, billing.NewCatalogue(nil), f.observer, zap.NewNop())
	f.svc.now = func() time.Time { return time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC) }
	return f
}

func newUser(t *testing.T) *identity.User {
	t.Helper()
	u, err := identity.NewUserFromClaims("sub", "user@example.com", "User")
	require.NoError(t, err)
	return u
}

func TestQuotaService_CheckMessages(t *testing.T) {
	ctx := context.Background()
	dayStart := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	t.Run("allows under the daily limit", func(t *testing.T) {
		user := newUser(t)
		f := newQuotaFixture(t, user)
		f.messages.On("CountUserMessagesSince", ctx, user.ID, dayStart).Return(int64(49), nil)

		require.NoError(t, f.svc.CheckMessages(ctx, user.ID))
		assert.Empty(t, f.observer.limits)
	})

	t.Run("rejects at the daily limit", func(t *testing.T) {
		user := newUser(t)
		f := newQuotaFixture(t, user)
		f.messages.On("CountUserMessagesSince", ctx, user.ID, dayStart).Return(int64(50), nil)

		err := f.svc.CheckMessages(ctx, user.ID)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrQuotaExceeded)
		assert.Equal(t, []string{LimitMessages}, f.observer.limits)
	})

	t.Run("unlimited plans skip counting", func(t *testing.T) {
		user := newUser(t)
		user.ApplySubscription(billing.PlanTeam, "sub_1", identity.SubscriptionActive, nil)
		f := newQuotaFixture(t, user)

		require.NoError(t, f.svc.CheckMessages(ctx, user.ID))
		f.messages.AssertNotCalled(t, "CountUserMessagesSince", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestQuotaService_CheckDeployments_CountsFromMonthStart(t *testing.T) {
	ctx := context.Background()
	user := newUser(t)
	f := newQuotaFixture(t, user)
	monthStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	f.deployments.On("CountForOwnerSince", ctx, user.ID, monthStart).Return(int64(10), nil)

	err := f.svc.CheckDeployments(ctx, user.ID)
	assert.ErrorIs(t, err, shared.ErrQuotaExceeded)
	f.deployments.AssertExpectations(t)
}

func TestQuotaService_LapsedSubscriptionUsesFreeLimits(t *testing.T) {
	ctx := context.Background()
	user := newUser(t)
	user.ApplySubscription(billing.PlanPro, "sub_1", identity.SubscriptionCanceled, nil)
	f := newQuotaFixture(t, user)
	f.projects.On("CountForOwner", ctx, user.ID).Return(int64(3), nil)

	plan, limits, err := f.svc.LimitsFor(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.PlanFree, plan)
	assert.Equal(t, 3, limits.Projects)
	assert.ErrorIs(t, f.svc.CheckProjects(ctx, user.ID), shared.ErrQuotaExceeded)
}

func TestQuotaService_CheckPersonas(t *testing.T) {
	ctx := context.Background()
	user := newUser(t)
	user.ApplySubscription(billing.PlanPro, "sub_1", identity.SubscriptionActive, nil)
	f := newQuotaFixture(t, user)
	f.personas.On("CountForOwner", ctx, user.ID).Return(int64(4), nil)

	assert.NoError(t, f.svc.CheckPersonas(ctx, user.ID))
}

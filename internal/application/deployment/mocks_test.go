package deployment

import (
	"context"
	"sync"
	"time"

	"github.com/alfred/backend/internal/domain/builder"
	"github.com/alfred/backend/internal/domain/deployment"
	"github.com/alfred/backend/internal/domain/integration"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockDeploymentRepository struct {
	mock.Mock
}

func (m *mockDeploymentRepository) Save(ctx context.Context, d *deployment.Deployment) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockDeploymentRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*deployment.Deployment, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deployment.Deployment), args.Error(1)
}

func (m *mockDeploymentRepository) ListByProject(ctx context.Context, ownerID, projectID uuid.UUID, limit int) ([]deployment.Deployment, error) {
	args := m.Called(ctx, ownerID, projectID, limit)
	return args.Get(0).([]deployment.Deployment), args.Error(1)
}

func (m *mockDeploymentRepository) CountForOwnerSince(ctx context.Context, ownerID uuid.UUID, since time.Time) (int64, error) {
	args := m.Called(ctx, ownerID, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockDeploymentRepository) ActiveForProject(ctx context.Context, projectID uuid.UUID) (*deployment.Deployment, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deployment.Deployment), args.Error(1)
}

func (m *mockDeploymentRepository) ListUnfinished(ctx context.Context, limit int) ([]deployment.Deployment, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]deployment.Deployment), args.Error(1)
}

type mockProjectRepository struct {
	mock.Mock
}

func (m *mockProjectRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*builder.Project, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*builder.Project), args.Error(1)
}

func (m *mockProjectRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]builder.Project, int64, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).([]builder.Project), args.Get(1).(int64), args.Error(2)
}

func (m *mockProjectRepository) ExistsByName(ctx context.Context, ownerID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, ownerID, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockProjectRepository) CountForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockProjectRepository) Save(ctx context.Context, p *builder.Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProjectRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

type mockQuota struct {
	mock.Mock
}

func (m *mockQuota) CheckDeployments(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

type mockQueue struct {
	mock.Mock
}

func (m *mockQueue) Enqueue(deploymentID, ownerID uuid.UUID) error {
	return m.Called(deploymentID, ownerID).Error(0)
}

type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) Name() string { return "mock" }

func (m *mockLLM) Stream(ctx context.Context, req integration.CompletionRequest, onToken integration.TokenFunc) (*integration.Completion, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Completion), args.Error(1)
}

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) Put(ctx context.Context, key string, body []byte, contentType string) error {
	return m.Called(ctx, key, body, contentType).Error(0)
}

func (m *mockStorage) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	args := m.Called(ctx, key, expires)
	return args.String(0), args.Error(1)
}

// fakeHosting replays one terminal state per created deployment
type fakeHosting struct {
	mu      sync.Mutex
	results []integration.HostingState
	logs    []string
	created []integration.DeployRequest
	polls   int
}

func (f *fakeHosting) CreateDeployment(ctx context.Context, req integration.DeployRequest) (*integration.HostingDeployment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	return &integration.HostingDeployment{
		ID:    "dpl_" + string(rune('0'+len(f.created))),
		State: integration.HostingBuilding,
	}, nil
}

func (f *fakeHosting) GetDeployment(ctx context.Context, id string) (*integration.HostingDeployment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	n := len(f.created) - 1
	state := integration.HostingBuilding
	if n < len(f.results) {
		state = f.results[n]
	}
	out := &integration.HostingDeployment{ID: id, ProjectID: "prj_1", State: state}
	if state == integration.HostingReady {
		out.URL = "https://demo.vercel.app"
	}
	return out, nil
}

func (f *fakeHosting) BuildLog(ctx context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.created) - 1
	if n < len(f.logs) {
		return f.logs[n], nil
	}
	return "", nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

type recordingObserver struct {
	status   string
	attempts int
}

func (o *recordingObserver) ObserveDeployment(status string, attempts int) {
	o.status = status
	o.attempts = attempts
}

package persona

import (
	"context"

	"github.com/alfred/backend/internal/domain/integration"
	"github.com/alfred/backend/internal/domain/persona"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockPersonaRepository struct {
	mock.Mock
}

func (m *mockPersonaRepository) Save(ctx context.Context, p *persona.Persona) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPersonaRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*persona.Persona, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*persona.Persona), args.Error(1)
}

func (m *mockPersonaRepository) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]persona.Persona, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]persona.Persona), args.Error(1)
}

func (m *mockPersonaRepository) ExistsByName(ctx context.Context, ownerID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, ownerID, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockPersonaRepository) CountForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPersonaRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

type mockRenderJobRepository struct {
	mock.Mock
}

func (m *mockRenderJobRepository) Save(ctx context.Context, j *persona.RenderJob) error {
	return m.Called(ctx, j).Error(0)
}

func (m *mockRenderJobRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*persona.RenderJob, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*persona.RenderJob), args.Error(1)
}

func (m *mockRenderJobRepository) ListByPersona(ctx context.Context, ownerID, personaID uuid.UUID) ([]persona.RenderJob, error) {
	args := m.Called(ctx, ownerID, personaID)
	return args.Get(0).([]persona.RenderJob), args.Error(1)
}

type mockImageGenerator struct {
	mock.Mock
}

func (m *mockImageGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type mockRenderWorker struct {
	mock.Mock
}

func (m *mockRenderWorker) Submit(ctx context.Context, input map[string]any) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *mockRenderWorker) Status(ctx context.Context, id string) (*integration.WorkerStatus, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.WorkerStatus), args.Error(1)
}

type mockQuota struct {
	mock.Mock
}

func (m *mockQuota) CheckPersonas(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

type recordingObserver struct {
	calls []string
}

func (o *recordingObserver) ObserveRenderJob(jobType, status string) {
	o.calls = append(o.calls, jobType+":"+status)
}

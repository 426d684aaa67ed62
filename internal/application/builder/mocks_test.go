package builder

import (
	"context"

	"github.com/alfred/backend/internal/domain/artifact"
	"github.com/alfred/backend/internal/domain/builder"
	"github.com/alfred/backend/internal/domain/chat"
	"github.com/alfred/backend/internal/domain/integration"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

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

type mockConversationRepository struct {
	mock.Mock
}

func (m *mockConversationRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*chat.Conversation, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*chat.Conversation), args.Error(1)
}

func (m *mockConversationRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]chat.Conversation, int64, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).([]chat.Conversation), args.Get(1).(int64), args.Error(2)
}

func (m *mockConversationRepository) Save(ctx context.Context, conv *chat.Conversation) error {
	return m.Called(ctx, conv).Error(0)
}

func (m *mockConversationRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

type mockArtifactRepository struct {
	mock.Mock
}

func (m *mockArtifactRepository) CreateVersion(ctx context.Context, a *artifact.Artifact) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockArtifactRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*artifact.Artifact, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*artifact.Artifact), args.Error(1)
}

func (m *mockArtifactRepository) LatestByConversation(ctx context.Context, conversationID uuid.UUID) ([]artifact.Artifact, error) {
	args := m.Called(ctx, conversationID)
	return args.Get(0).([]artifact.Artifact), args.Error(1)
}

func (m *mockArtifactRepository) Versions(ctx context.Context, conversationID uuid.UUID, key string) ([]artifact.Artifact, error) {
	args := m.Called(ctx, conversationID, key)
	return args.Get(0).([]artifact.Artifact), args.Error(1)
}

func (m *mockArtifactRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.Called(ctx, ownerID, id).Error(0)
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

type mockQuota struct {
	mock.Mock
}

func (m *mockQuota) CheckProjects(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

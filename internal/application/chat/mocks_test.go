package chat

import (
	"context"
	"time"

	"github.com/alfred/backend/internal/domain/artifact"
	"github.com/alfred/backend/internal/domain/chat"
	"github.com/alfred/backend/internal/domain/file"
	"github.com/alfred/backend/internal/domain/integration"
	"github.com/alfred/backend/internal/domain/persona"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

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

type mockMessageRepository struct {
	mock.Mock
}

func (m *mockMessageRepository) Create(ctx context.Context, msg *chat.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockMessageRepository) ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]chat.Message, error) {
	args := m.Called(ctx, conversationID)
	return args.Get(0).([]chat.Message), args.Error(1)
}

func (m *mockMessageRepository) Recent(ctx context.Context, conversationID uuid.UUID, n int) ([]chat.Message, error) {
	args := m.Called(ctx, conversationID, n)
	return args.Get(0).([]chat.Message), args.Error(1)
}

func (m *mockMessageRepository) CountUserMessagesSince(ctx context.Context, ownerID uuid.UUID, since time.Time) (int64, error) {
	args := m.Called(ctx, ownerID, since)
	return args.Get(0).(int64), args.Error(1)
}

type mockFileRepository struct {
	mock.Mock
}

func (m *mockFileRepository) Save(ctx context.Context, f *file.File) error {
	return m.Called(ctx, f).Error(0)
}

func (m *mockFileRepository) FindByIDsForOwner(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]file.File, error) {
	args := m.Called(ctx, ownerID, ids)
	return args.Get(0).([]file.File), args.Error(1)
}

func (m *mockFileRepository) ListByConversation(ctx context.Context, ownerID, conversationID uuid.UUID) ([]file.File, error) {
	args := m.Called(ctx, ownerID, conversationID)
	return args.Get(0).([]file.File), args.Error(1)
}

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
	args := m.Called(ctx, req, onToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	out := args.Get(0).(*integration.Completion)
	if onToken != nil {
		for _, word := range splitWords(out.Content) {
			if err := onToken(word); err != nil {
				return nil, err
			}
		}
	}
	return out, args.Error(1)
}

func splitWords(s string) []string {
	var out []string
	start := 0
	for i := range s {
		if s[i] == ' ' {
			out = append(out, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

type mockQuota struct {
	mock.Mock
}

func (m *mockQuota) CheckMessages(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

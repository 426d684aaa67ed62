package billing

import (
	"context"
	"time"

	"github.com/alfred/backend/internal/domain/builder"
	"github.com/alfred/backend/internal/domain/chat"
	"github.com/alfred/backend/internal/domain/deployment"
	"github.com/alfred/backend/internal/domain/identity"
	"github.com/alfred/backend/internal/domain/integration"
	"github.com/alfred/backend/internal/domain/persona"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *mockUserRepository) FindByExternalID(ctx context.Context, externalID string) (*identity.User, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *mockUserRepository) FindByStripeCustomerID(ctx context.Context, customerID string) (*identity.User, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *mockUserRepository) Save(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
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

type mockPaymentProvider struct {
	mock.Mock
}

func (m *mockPaymentProvider) CreateCustomer(ctx context.Context, email, name, userID string) (string, error) {
	args := m.Called(ctx, email, name, userID)
	return args.String(0), args.Error(1)
}

func (m *mockPaymentProvider) CreateCheckoutSession(ctx context.Context, req integration.CheckoutRequest) (*integration.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.CheckoutSession), args.Error(1)
}

func (m *mockPaymentProvider) GetCheckoutSession(ctx context.Context, id string) (*integration.CheckoutSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.CheckoutSession), args.Error(1)
}

func (m *mockPaymentProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	args := m.Called(ctx, customerID, returnURL)
	return args.String(0), args.Error(1)
}

func (m *mockPaymentProvider) CurrentSubscription(ctx context.Context, customerID string) (*integration.Subscription, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Subscription), args.Error(1)
}

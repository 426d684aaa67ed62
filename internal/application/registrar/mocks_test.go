package registrar

import (
	"context"

	"github.com/alfred/backend/internal/domain/builder"
	"github.com/alfred/backend/internal/domain/integration"
	"github.com/alfred/backend/internal/domain/registrar"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockPurchaseRepository struct {
	mock.Mock
}

func (m *mockPurchaseRepository) Save(ctx context.Context, p *registrar.Purchase) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPurchaseRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*registrar.Purchase, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registrar.Purchase), args.Error(1)
}

func (m *mockPurchaseRepository) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]registrar.Purchase, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]registrar.Purchase), args.Error(1)
}

func (m *mockPurchaseRepository) FindOpenByDomain(ctx context.Context, ownerID uuid.UUID, domain string) (*registrar.Purchase, error) {
	args := m.Called(ctx, ownerID, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registrar.Purchase), args.Error(1)
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

type mockRegistrar struct {
	mock.Mock
}

func (m *mockRegistrar) Check(ctx context.Context, domain string) (*integration.DomainQuote, error) {
	args := m.Called(ctx, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.DomainQuote), args.Error(1)
}

func (m *mockRegistrar) Buy(ctx context.Context, domain string, expectedPrice decimal.Decimal) (string, error) {
	args := m.Called(ctx, domain, expectedPrice)
	return args.String(0), args.Error(1)
}

func (m *mockRegistrar) AttachDomain(ctx context.Context, projectName, domain string) error {
	return m.Called(ctx, projectName, domain).Error(0)
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

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}

type countingObserver struct {
	statuses []string
}

func (o *countingObserver) ObserveDomainPurchase(status string) {
	o.statuses = append(o.statuses, status)
}

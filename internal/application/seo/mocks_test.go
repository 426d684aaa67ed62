package seo

import (
	"context"

	"github.com/alfred/backend/internal/domain/builder"
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

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) Render(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

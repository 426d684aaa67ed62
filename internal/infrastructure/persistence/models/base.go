package models

import (
	"time"

	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel provides the id, timestamps and soft-delete column shared by every table
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel adds the optimistic version column
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// ToAggregateRoot converts AggregateModel to a domain BaseAggregateRoot
func (m *AggregateModel) ToAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: m.BaseModel.ToDomain(),
		Version:    m.Version,
	}
}

// OwnedModel is an aggregate that belongs to one user
type OwnedModel struct {
	AggregateModel
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// FromDomainOwned populates OwnedModel from domain OwnedAggregateRoot
func (m *OwnedModel) FromDomainOwned(o shared.OwnedAggregateRoot) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.UserID = o.OwnerID
}

// ToOwned converts OwnedModel to a domain OwnedAggregateRoot
func (m *OwnedModel) ToOwned() shared.OwnedAggregateRoot {
	return shared.OwnedAggregateRoot{
		BaseAggregateRoot: m.ToAggregateRoot(),
		OwnerID:           m.UserID,
	}
}

// All returns every model in dependency order, for AutoMigrate in tests and dev
func All() []any {
	return []any{
		&UserModel{},
		&ConversationModel{},
		&MessageModel{},
		&ArtifactModel{},
		&FileModel{},
		&ProjectModel{},
		&DeploymentModel{},
		&DomainPurchaseModel{},
		&PersonaModel{},
		&RenderJobModel{},
	}
}

// PartialIndexes are the owner-scoped uniqueness rules GORM tags cannot express.
// The statements are valid on both Postgres and SQLite.
var PartialIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_projects_user_name ON projects (user_id, LOWER(name)) WHERE deleted_at IS NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_personas_user_name ON personas (user_id, LOWER(name)) WHERE deleted_at IS NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_domain_purchases_user_domain ON domain_purchases (user_id, domain) WHERE status <> 'failed' AND deleted_at IS NULL`,
}

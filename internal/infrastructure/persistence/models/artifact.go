package models

import (
	"github.com/alfred/backend/internal/domain/artifact"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ArtifactModel is the persistence model for artifact.Artifact.
// Rows are immutable, so the version column holds the artifact revision
// rather than an optimistic lock counter.
type ArtifactModel struct {
	BaseModel
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	ConversationID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_artifacts_conv_key_version,priority:1"`
	ArtifactKey    string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_artifacts_conv_key_version,priority:2"`
	Revision       int        `gorm:"column:version;not null;uniqueIndex:idx_artifacts_conv_key_version,priority:3"`
	MessageID      *uuid.UUID `gorm:"type:uuid"`
	Title          string     `gorm:"type:varchar(255)"`
	Language       string     `gorm:"type:varchar(50)"`
	Content        string     `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (ArtifactModel) TableName() string {
	return "artifacts"
}

// ToDomain converts the model to a domain Artifact
func (m *ArtifactModel) ToDomain() *artifact.Artifact {
	return &artifact.Artifact{
		OwnedAggregateRoot: shared.OwnedAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: m.BaseModel.ToDomain(), Version: 1},
			OwnerID:           m.UserID,
		},
		ConversationID: m.ConversationID,
		MessageID:      m.MessageID,
		Key:            m.ArtifactKey,
		Revision:       m.Revision,
		Title:          m.Title,
		Language:       m.Language,
		Content:        m.Content,
	}
}

// ArtifactModelFromDomain creates a model from a domain Artifact
func ArtifactModelFromDomain(a *artifact.Artifact) *ArtifactModel {
	m := &ArtifactModel{
		UserID:         a.OwnerID,
		ConversationID: a.ConversationID,
		ArtifactKey:    a.Key,
		Revision:       a.Revision,
		MessageID:      a.MessageID,
		Title:          a.Title,
		Language:       a.Language,
		Content:        a.Content,
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	return m
}

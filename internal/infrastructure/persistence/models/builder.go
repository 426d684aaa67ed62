package models

import (
	"time"

	"github.com/alfred/backend/internal/domain/builder"
)

// ProjectModel is the persistence model for builder.Project.
// Files, the SEO report and the custom domain live in the metadata JSON column.
type ProjectModel struct {
	OwnedModel
	Name            string           `gorm:"type:varchar(100);not null"`
	Description     string           `gorm:"type:text"`
	Framework       string           `gorm:"type:varchar(50);not null"`
	Metadata        builder.Metadata `gorm:"type:jsonb;serializer:json;not null"`
	VercelProjectID string           `gorm:"type:varchar(255)"`
	ProductionURL   string           `gorm:"type:varchar(1000)"`
	LastDeployedAt  *time.Time
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string {
	return "projects"
}

// ToDomain converts the model to a domain Project
func (m *ProjectModel) ToDomain() *builder.Project {
	meta := m.Metadata
	if meta.Files == nil {
		meta.Files = []builder.ProjectFile{}
	}
	return &builder.Project{
		OwnedAggregateRoot: m.ToOwned(),
		Name:               m.Name,
		Description:        m.Description,
		Framework:          m.Framework,
		Metadata:           meta,
		VercelProjectID:    m.VercelProjectID,
		ProductionURL:      m.ProductionURL,
		LastDeployedAt:     m.LastDeployedAt,
	}
}

// ProjectModelFromDomain creates a model from a domain Project
func ProjectModelFromDomain(p *builder.Project) *ProjectModel {
	m := &ProjectModel{
		Name:            p.Name,
		Description:     p.Description,
		Framework:       p.Framework,
		Metadata:        p.Metadata,
		VercelProjectID: p.VercelProjectID,
		ProductionURL:   p.ProductionURL,
		LastDeployedAt:  p.LastDeployedAt,
	}
	m.FromDomainOwned(p.OwnedAggregateRoot)
	return m
}

package models

import (
	"time"

	"github.com/alfred/backend/internal/domain/deployment"
	"github.com/google/uuid"
)

// DeploymentModel is the persistence model for deployment.Deployment
type DeploymentModel struct {
	OwnedModel
	ProjectID          uuid.UUID         `gorm:"type:uuid;not null;index"`
	Status             deployment.Status `gorm:"type:varchar(20);not null;index"`
	Attempts           int               `gorm:"not null;default:0;check:attempts <= max_attempts"`
	MaxAttempts        int               `gorm:"not null"`
	AutoFix            bool              `gorm:"not null;default:true"`
	VercelDeploymentID string            `gorm:"type:varchar(255)"`
	URL                string            `gorm:"type:varchar(1000)"`
	ErrorLog           string            `gorm:"type:text"`
	FixSummaries       []deployment.Fix  `gorm:"type:jsonb;serializer:json"`
	FinishedAt         *time.Time
}

// TableName returns the table name for GORM
func (DeploymentModel) TableName() string {
	return "deployments"
}

// ToDomain converts the model to a domain Deployment
func (m *DeploymentModel) ToDomain() *deployment.Deployment {
	fixes := m.FixSummaries
	if fixes == nil {
		fixes = []deployment.Fix{}
	}
	return &deployment.Deployment{
		OwnedAggregateRoot: m.ToOwned(),
		ProjectID:          m.ProjectID,
		Status:             m.Status,
		Attempts:           m.Attempts,
		MaxAttempts:        m.MaxAttempts,
		AutoFix:            m.AutoFix,
		VercelDeploymentID: m.VercelDeploymentID,
		URL:                m.URL,
		ErrorLog:           m.ErrorLog,
		Fixes:              fixes,
		FinishedAt:         m.FinishedAt,
	}
}

// DeploymentModelFromDomain creates a model from a domain Deployment
func DeploymentModelFromDomain(d *deployment.Deployment) *DeploymentModel {
	m := &DeploymentModel{
		ProjectID:          d.ProjectID,
		Status:             d.Status,
		Attempts:           d.Attempts,
		MaxAttempts:        d.MaxAttempts,
		AutoFix:            d.AutoFix,
		VercelDeploymentID: d.VercelDeploymentID,
		URL:                d.URL,
		ErrorLog:           d.ErrorLog,
		FixSummaries:       d.Fixes,
		FinishedAt:         d.FinishedAt,
	}
	m.FromDomainOwned(d.OwnedAggregateRoot)
	return m
}

package models

import (
	"time"

	"github.com/alfred/backend/internal/domain/persona"
	"github.com/google/uuid"
)

// PersonaModel is the persistence model for persona.Persona
type PersonaModel struct {
	OwnedModel
	Name          string `gorm:"type:varchar(80);not null"`
	Description   string `gorm:"type:text"`
	SystemPrompt  string `gorm:"type:text"`
	AvatarURL     string `gorm:"type:varchar(1000)"`
	VoiceID       string `gorm:"type:varchar(100)"`
	QualityPreset string `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (PersonaModel) TableName() string {
	return "personas"
}

// ToDomain converts the model to a domain Persona
func (m *PersonaModel) ToDomain() *persona.Persona {
	return &persona.Persona{
		OwnedAggregateRoot: m.ToOwned(),
		Name:               m.Name,
		Description:        m.Description,
		SystemPrompt:       m.SystemPrompt,
		AvatarURL:          m.AvatarURL,
		VoiceID:            m.VoiceID,
		QualityPreset:      m.QualityPreset,
	}
}

// PersonaModelFromDomain creates a model from a domain Persona
func PersonaModelFromDomain(p *persona.Persona) *PersonaModel {
	m := &PersonaModel{
		Name:          p.Name,
		Description:   p.Description,
		SystemPrompt:  p.SystemPrompt,
		AvatarURL:     p.AvatarURL,
		VoiceID:       p.VoiceID,
		QualityPreset: p.QualityPreset,
	}
	m.FromDomainOwned(p.OwnedAggregateRoot)
	return m
}

// RenderJobModel is the persistence model for persona.RenderJob
type RenderJobModel struct {
	OwnedModel
	PersonaID     uuid.UUID         `gorm:"type:uuid;not null;index"`
	JobType       persona.JobType   `gorm:"type:varchar(30);not null"`
	Quality       string            `gorm:"type:varchar(20);not null"`
	Status        persona.JobStatus `gorm:"type:varchar(20);not null"`
	ExternalJobID string            `gorm:"type:varchar(255);index"`
	Input         map[string]any    `gorm:"type:jsonb;serializer:json"`
	OutputURLs    map[string]string `gorm:"type:jsonb;serializer:json"`
	Metadata      map[string]any    `gorm:"type:jsonb;serializer:json"`
	Error         string            `gorm:"type:text"`
	DurationMS    int64             `gorm:"not null;default:0"`
	FinishedAt    *time.Time
}

// TableName returns the table name for GORM
func (RenderJobModel) TableName() string {
	return "persona_render_jobs"
}

// ToDomain converts the model to a domain RenderJob
func (m *RenderJobModel) ToDomain() *persona.RenderJob {
	return &persona.RenderJob{
		OwnedAggregateRoot: m.ToOwned(),
		PersonaID:          m.PersonaID,
		JobType:            m.JobType,
		Quality:            m.Quality,
		Status:             m.Status,
		ExternalJobID:      m.ExternalJobID,
		Input:              m.Input,
		OutputURLs:         m.OutputURLs,
		Metadata:           m.Metadata,
		Error:              m.Error,
		DurationMS:         m.DurationMS,
		FinishedAt:         m.FinishedAt,
	}
}

// RenderJobModelFromDomain creates a model from a domain RenderJob
func RenderJobModelFromDomain(j *persona.RenderJob) *RenderJobModel {
	m := &RenderJobModel{
		PersonaID:     j.PersonaID,
		JobType:       j.JobType,
		Quality:       j.Quality,
		Status:        j.Status,
		ExternalJobID: j.ExternalJobID,
		Input:         j.Input,
		OutputURLs:    j.OutputURLs,
		Metadata:      j.Metadata,
		Error:         j.Error,
		DurationMS:    j.DurationMS,
		FinishedAt:    j.FinishedAt,
	}
	m.FromDomainOwned(j.OwnedAggregateRoot)
	return m
}

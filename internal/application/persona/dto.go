package persona

import (
	"time"

	"github.com/alfred/backend/internal/domain/persona"
	"github.com/google/uuid"
)

// CreatePersonaInput creates a persona
type CreatePersonaInput struct {
	Name          string `json:"name" binding:"required,max=80"`
	Description   string `json:"description" binding:"max=4000"`
	SystemPrompt  string `json:"systemPrompt" binding:"max=4000"`
	VoiceID       string `json:"voiceId" binding:"max=100"`
	QualityPreset string `json:"qualityPreset"`
}

// UpdatePersonaInput changes the fields that are set
type UpdatePersonaInput struct {
	Name          *string `json:"name" binding:"omitempty,max=80"`
	Description   *string `json:"description" binding:"omitempty,max=4000"`
	SystemPrompt  *string `json:"systemPrompt" binding:"omitempty,max=4000"`
	VoiceID       *string `json:"voiceId" binding:"omitempty,max=100"`
	QualityPreset *string `json:"qualityPreset"`
}

// AvatarInput describes the portrait to generate
type AvatarInput struct {
	Prompt string `json:"prompt" binding:"required,max=1000"`
}

// RenderInput requests a studio job
type RenderInput struct {
	JobType     string            `json:"jobType" binding:"required"`
	Quality     string            `json:"quality"`
	AudioURL    string            `json:"audioUrl" binding:"omitempty,httpurl"`
	MusicURL    string            `json:"musicUrl" binding:"omitempty,httpurl"`
	AmbienceURL string            `json:"ambienceUrl" binding:"omitempty,httpurl"`
	Captions    []persona.Caption `json:"captions" binding:"max=500"`
	Takes       []persona.Take    `json:"takes" binding:"max=12"`
}

// PersonaDTO is the API view of a persona
type PersonaDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	SystemPrompt  string    `json:"system_prompt"`
	AvatarURL     string    `json:"avatar_url,omitempty"`
	VoiceID       string    `json:"voice_id,omitempty"`
	QualityPreset string    `json:"quality_preset"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RenderJobDTO is the API view of a studio job
type RenderJobDTO struct {
	ID         uuid.UUID         `json:"id"`
	PersonaID  uuid.UUID         `json:"persona_id"`
	JobType    string            `json:"job_type"`
	Quality    string            `json:"quality"`
	Status     string            `json:"status"`
	OutputURLs map[string]string `json:"output_urls"`
	Metadata   map[string]any    `json:"metadata,omitempty"`
	Error      string            `json:"error,omitempty"`
	DurationMS int64             `json:"duration_ms,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
}

// ToPersonaDTO converts a persona
func ToPersonaDTO(p *persona.Persona) PersonaDTO {
	return PersonaDTO{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		SystemPrompt:  p.SystemPrompt,
		AvatarURL:     p.AvatarURL,
		VoiceID:       p.VoiceID,
		QualityPreset: p.QualityPreset,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ToRenderJobDTO converts a render job
func ToRenderJobDTO(j *persona.RenderJob) RenderJobDTO {
	outputs := j.OutputURLs
	if outputs == nil {
		outputs = map[string]string{}
	}
	return RenderJobDTO{
		ID:         j.ID,
		PersonaID:  j.PersonaID,
		JobType:    string(j.JobType),
		Quality:    j.Quality,
		Status:     string(j.Status),
		OutputURLs: outputs,
		Metadata:   j.Metadata,
		Error:      j.Error,
		DurationMS: j.DurationMS,
		CreatedAt:  j.CreatedAt,
		FinishedAt: j.FinishedAt,
	}
}

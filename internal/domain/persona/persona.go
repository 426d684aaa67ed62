// Package persona defines assistant personas and their studio render jobs.
package persona

import (
	"strings"
	"unicode/utf8"

	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	MaxNameLength         = 80
	MaxDescriptionLength  = 2000
	MaxSystemPromptLength = 4000
)

// Persona is a named character that shapes the assistant's voice
type Persona struct {
	shared.OwnedAggregateRoot
	Name          string
	Description   string
	SystemPrompt  string
	AvatarURL     string
	VoiceID       string
	QualityPreset string
}

// Sanitizer strips markup from free text
type Sanitizer func(string) string

// NewPersona validates and creates a persona
func NewPersona(ownerID uuid.UUID, name, description, systemPrompt, voiceID string, clean Sanitizer) (*Persona, error) {
	p := &Persona{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		QualityPreset:      DefaultQuality,
	}
	if err := p.apply(name, description, systemPrompt, voiceID, clean); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces the editable fields
func (p *Persona) Update(name, description, systemPrompt, voiceID string, clean Sanitizer) error {
	if err := p.apply(name, description, systemPrompt, voiceID, clean); err != nil {
		return err
	}
	p.IncrementVersion()
	return nil
}

// SetQualityPreset changes the default render quality
func (p *Persona) SetQualityPreset(quality string) error {
	if _, ok := LookupPreset(quality); !ok {
		return ErrUnknownQuality
	}
	p.QualityPreset = quality
	p.IncrementVersion()
	return nil
}

// SetAvatar stores the generated portrait URL
func (p *Persona) SetAvatar(url string) {
	p.AvatarURL = url
	p.IncrementVersion()
}

func (p *Persona) apply(name, description, systemPrompt, voiceID string, clean Sanitizer) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_PERSONA_NAME", "Persona name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return shared.NewDomainError("INVALID_PERSONA_NAME", "Persona name cannot exceed 80 characters")
	}
	if clean != nil {
		description = clean(description)
	}
	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return shared.NewDomainError("INVALID_PERSONA_DESCRIPTION", "Description cannot exceed 2000 characters")
	}
	systemPrompt = strings.TrimSpace(systemPrompt)
	if utf8.RuneCountInString(systemPrompt) > MaxSystemPromptLength {
		return shared.NewDomainError("INVALID_SYSTEM_PROMPT", "System prompt cannot exceed 4000 characters")
	}
	p.Name = name
	p.Description = description
	p.SystemPrompt = systemPrompt
	p.VoiceID = strings.TrimSpace(voiceID)
	return nil
}

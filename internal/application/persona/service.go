// Package persona manages assistant personas and their studio renders.
package persona

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/alfred/backend/internal/domain/integration"
	"github.com/alfred/backend/internal/domain/persona"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

var ErrDuplicateName = shared.NewDomainError(shared.ErrAlreadyExists.Code, "A persona with this name already exists")

var stripTags = bluemonday.StrictPolicy()

// sanitize removes markup and leaves plain text
func sanitize(s string) string {
	return html.UnescapeString(stripTags.Sanitize(s))
}

// Quota enforces the persona count
type Quota interface {
	CheckPersonas(ctx context.Context, userID uuid.UUID) error
}

// Service handles persona CRUD and avatars
type Service struct {
	repo   persona.Repository
	images integration.ImageGenerator
	quota  Quota
	logger *zap.Logger
}

// NewService creates a new persona service
func NewService(repo persona.Repository, images integration.ImageGenerator, quota Quota, logger *zap.Logger) *Service {
	return &Service{repo: repo, images: images, quota: quota, logger: logger}
}

// List returns the caller's personas
func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]PersonaDTO, error) {
	items, err := s.repo.ListForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]PersonaDTO, len(items))
	for i := range items {
		out[i] = ToPersonaDTO(&items[i])
	}
	return out, nil
}

// Create adds a persona within the plan's persona limit
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, input CreatePersonaInput) (*PersonaDTO, error) {
	if err := s.quota.CheckPersonas(ctx, ownerID); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, ownerID, input.Name, nil); err != nil {
		return nil, err
	}
	p, err := persona.NewPersona(ownerID, input.Name, input.Description, input.SystemPrompt, input.VoiceID, sanitize)
	if err != nil {
		return nil, err
	}
	if input.QualityPreset != "" {
		if err := p.SetQualityPreset(input.QualityPreset); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Persona created", zap.String("user_id", ownerID.String()), zap.String("persona_id", p.ID.String()))
	dto := ToPersonaDTO(p)
	return &dto, nil
}

// Get returns one persona
func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*PersonaDTO, error) {
	p, err := s.repo.FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	dto := ToPersonaDTO(p)
	return &dto, nil
}

// Update changes the fields present in input
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, input UpdatePersonaInput) (*PersonaDTO, error) {
	p, err := s.repo.FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	name, description, prompt, voice := p.Name, p.Description, p.SystemPrompt, p.VoiceID
	if input.Name != nil {
		name = *input.Name
		if !strings.EqualFold(strings.TrimSpace(name), p.Name) {
			if err := s.ensureUnique(ctx, ownerID, name, &p.ID); err != nil {
				return nil, err
			}
		}
	}
	if input.Description != nil {
		description = *input.Description
	}
	if input.SystemPrompt != nil {
		prompt = *input.SystemPrompt
	}
	if input.VoiceID != nil {
		voice = *input.VoiceID
	}
	if err := p.Update(name, description, prompt, voice, sanitize); err != nil {
		return nil, err
	}
	if input.QualityPreset != nil {
		if err := p.SetQualityPreset(*input.QualityPreset); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	dto := ToPersonaDTO(p)
	return &dto, nil
}

// Delete removes a persona
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.logger.Info("Persona deleted", zap.String("user_id", ownerID.String()), zap.String("persona_id", id.String()))
	return nil
}

// GenerateAvatar renders a portrait from the prompt and stores its URL
func (s *Service) GenerateAvatar(ctx context.Context, ownerID, id uuid.UUID, input AvatarInput) (*PersonaDTO, error) {
	p, err := s.repo.FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf("Portrait photo of %s, head and shoulders, facing the camera, soft studio light. %s",
		p.Name, sanitize(strings.TrimSpace(input.Prompt)))
	url, err := s.images.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate avatar: %w", err)
	}
	p.SetAvatar(url)
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Persona avatar generated", zap.String("persona_id", p.ID.String()))
	dto := ToPersonaDTO(p)
	return &dto, nil
}

func (s *Service) ensureUnique(ctx context.Context, ownerID uuid.UUID, name string, exclude *uuid.UUID) error {
	exists, err := s.repo.ExistsByName(ctx, ownerID, strings.TrimSpace(name), exclude)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateName
	}
	return nil
}

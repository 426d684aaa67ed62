package chat

import (
	"context"
	"errors"

	"github.com/alfred/backend/internal/domain/chat"
	"github.com/alfred/backend/internal/domain/facet"
	"github.com/alfred/backend/internal/domain/persona"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrPersonaNotFound is returned when a conversation references another user's persona
var ErrPersonaNotFound = shared.NewDomainError("INVALID_PERSONA", "Persona not found")

// ConversationService manages conversation threads
type ConversationService struct {
	convRepo    chat.ConversationRepository
	messageRepo chat.MessageRepository
	personaRepo persona.Repository
	facets      *facet.Catalogue
	logger      *zap.Logger
}

// NewConversationService creates a new conversation service
func NewConversationService(
	convRepo chat.ConversationRepository,
	messageRepo chat.MessageRepository,
	personaRepo persona.Repository,
	facets *facet.Catalogue,
	logger *zap.Logger,
) *ConversationService {
	return &ConversationService{
		convRepo:    convRepo,
		messageRepo: messageRepo,
		personaRepo: personaRepo,
		facets:      facets,
		logger:      logger,
	}
}

// List returns the caller's conversations, pinned first
func (s *ConversationService) List(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (shared.Paginated[ConversationDTO], error) {
	filter = filter.Normalize()
	convs, total, err := s.convRepo.FindAllForOwner(ctx, ownerID, filter)
	if err != nil {
		return shared.Paginated[ConversationDTO]{}, err
	}
	items := make([]ConversationDTO, len(convs))
	for i := range convs {
		items[i] = ToConversationDTO(&convs[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Create starts a conversation
func (s *ConversationService) Create(ctx context.Context, ownerID uuid.UUID, input CreateConversationInput) (*ConversationDTO, error) {
	facetID, err := s.facets.Resolve(input.Facet)
	if err != nil {
		return nil, err
	}
	if input.PersonaID != nil {
		if err := s.checkPersona(ctx, ownerID, *input.PersonaID); err != nil {
			return nil, err
		}
	}
	conv, err := chat.NewConversation(ownerID, input.Title, facetID, input.PersonaID)
	if err != nil {
		return nil, err
	}
	if err := s.convRepo.Save(ctx, conv); err != nil {
		return nil, err
	}
	s.logger.Info("Conversation created",
		zap.String("user_id", ownerID.String()),
		zap.String("conversation_id", conv.ID.String()),
		zap.String("facet", facetID))
	dto := ToConversationDTO(conv)
	return &dto, nil
}

// Get returns a conversation with its messages
func (s *ConversationService) Get(ctx context.Context, ownerID, id uuid.UUID) (*ConversationDTO, error) {
	conv, err := s.convRepo.FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	msgs, err := s.messageRepo.ListByConversation(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	dto := ToConversationDTO(conv)
	dto.Messages = ToMessageDTOs(msgs)
	return &dto, nil
}

// Update applies a partial change
func (s *ConversationService) Update(ctx context.Context, ownerID, id uuid.UUID, input UpdateConversationInput) (*ConversationDTO, error) {
	conv, err := s.convRepo.FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		if err := conv.Rename(*input.Title); err != nil {
			return nil, err
		}
	}
	if input.Facet != nil {
		facetID, err := s.facets.Resolve(*input.Facet)
		if err != nil {
			return nil, err
		}
		conv.SetFacet(facetID)
	}
	if input.Pinned != nil {
		conv.SetPinned(*input.Pinned)
	}
	switch {
	case input.ClearPersona:
		conv.SetPersona(nil)
	case input.PersonaID != nil:
		if err := s.checkPersona(ctx, ownerID, *input.PersonaID); err != nil {
			return nil, err
		}
		conv.SetPersona(input.PersonaID)
	}
	if err := s.convRepo.Save(ctx, conv); err != nil {
		return nil, err
	}
	dto := ToConversationDTO(conv)
	return &dto, nil
}

// Delete soft-deletes a conversation
func (s *ConversationService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.convRepo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.logger.Info("Conversation deleted",
		zap.String("user_id", ownerID.String()),
		zap.String("conversation_id", id.String()))
	return nil
}

// ListMessages returns the messages of a conversation oldest first
func (s *ConversationService) ListMessages(ctx context.Context, ownerID, id uuid.UUID) ([]MessageDTO, error) {
	conv, err := s.convRepo.FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	msgs, err := s.messageRepo.ListByConversation(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	return ToMessageDTOs(msgs), nil
}

func (s *ConversationService) checkPersona(ctx context.Context, ownerID, personaID uuid.UUID) error {
	_, err := s.personaRepo.FindByIDForOwner(ctx, ownerID, personaID)
	if errors.Is(err, shared.ErrNotFound) {
		return ErrPersonaNotFound
	}
	return err
}

package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alfred/backend/internal/domain/artifact"
	"github.com/alfred/backend/internal/domain/chat"
	"github.com/alfred/backend/internal/domain/facet"
	"github.com/alfred/backend/internal/domain/file"
	"github.com/alfred/backend/internal/domain/integration"
	"github.com/alfred/backend/internal/domain/persona"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrAttachmentNotFound is returned when an attachment id is not one of the caller's files
var ErrAttachmentNotFound = shared.NewDomainError("INVALID_ATTACHMENT", "Attachment not found")

// MessageQuota enforces the daily message limit
type MessageQuota interface {
	CheckMessages(ctx context.Context, userID uuid.UUID) error
}

// MessageService runs a chat turn: validate, persist, stream the reply, store artifacts
type MessageService struct {
	convRepo     chat.ConversationRepository
	messageRepo  chat.MessageRepository
	fileRepo     file.Repository
	personaRepo  persona.Repository
	artifactRepo artifact.Repository
	facets       *facet.Catalogue
	llm          integration.LLMProvider
	quota        MessageQuota
	logger       *zap.Logger
	now          func() time.Time
}

// MessageServiceDeps groups the collaborators of MessageService
type MessageServiceDeps struct {
	Conversations chat.ConversationRepository
	Messages      chat.MessageRepository
	Files         file.Repository
	Personas      persona.Repository
	Artifacts     artifact.Repository
	Facets        *facet.Catalogue
	LLM           integration.LLMProvider
	Quota         MessageQuota
}

// NewMessageService creates a new message service
func NewMessageService(deps MessageServiceDeps, logger *zap.Logger) *MessageService {
	return &MessageService{
		convRepo:     deps.Conversations,
		messageRepo:  deps.Messages,
		fileRepo:     deps.Files,
		personaRepo:  deps.Personas,
		artifactRepo: deps.Artifacts,
		facets:       deps.Facets,
		llm:          deps.LLM,
		quota:        deps.Quota,
		logger:       logger,
		now:          time.Now,
	}
}

// Turn is a validated user message waiting for its reply
type Turn struct {
	conv    *chat.Conversation
	message *chat.Message
	request integration.CompletionRequest
}

// ConversationID returns the conversation the turn belongs to
func (t *Turn) ConversationID() uuid.UUID { return t.conv.ID }

// UserMessage returns the persisted user message
func (t *Turn) UserMessage() MessageDTO { return ToMessageDTO(t.message) }

// Prepare validates and persists the user message and builds the model request.
// Every error it returns happens before any output is streamed.
func (s *MessageService) Prepare(ctx context.Context, ownerID, convID uuid.UUID, input SendMessageInput) (*Turn, error) {
	conv, err := s.convRepo.FindByIDForOwner(ctx, ownerID, convID)
	if err != nil {
		return nil, err
	}
	attachments := dedupe(input.AttachmentIDs)
	msg, err := chat.NewUserMessage(conv, input.Content, attachments)
	if err != nil {
		return nil, err
	}
	if err := s.quota.CheckMessages(ctx, ownerID); err != nil {
		return nil, err
	}
	files, err := s.attachments(ctx, ownerID, attachments)
	if err != nil {
		return nil, err
	}

	history, err := s.messageRepo.Recent(ctx, conv.ID, chat.HistoryWindow)
	if err != nil {
		return nil, err
	}
	system, err := s.systemPrompt(ctx, conv)
	if err != nil {
		return nil, err
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	req := integration.CompletionRequest{
		System:   system,
		Messages: toPromptHistory(history),
		Purpose:  "chat",
	}
	req.Messages = append(req.Messages, integration.ChatMessage{
		Role:    integration.ChatRoleUser,
		Content: withAttachmentNote(msg.Content, files),
	})
	return &Turn{conv: conv, message: msg, request: req}, nil
}

// Reply streams the assistant answer through onToken, then persists it and
// stores every fenced code block as a new artifact version.
func (s *MessageService) Reply(ctx context.Context, turn *Turn, onToken integration.TokenFunc) (*ReplyDTO, error) {
	completion, err := s.llm.Stream(ctx, turn.request, onToken)
	if err != nil {
		return nil, fmt.Errorf("generate reply: %w", err)
	}

	conv := turn.conv
	reply := chat.NewAssistantMessage(conv, completion.Content, completion.Model, completion.InputTokens, completion.OutputTokens)
	if err := s.messageRepo.Create(ctx, reply); err != nil {
		return nil, err
	}
	conv.RecordActivity(s.now().UTC(), turn.message.Content)
	if err := s.convRepo.Save(ctx, conv); err != nil {
		return nil, err
	}

	refs := s.storeArtifacts(ctx, conv, reply)
	s.logger.Info("Chat turn completed",
		zap.String("conversation_id", conv.ID.String()),
		zap.String("model", completion.Model),
		zap.Int("input_tokens", completion.InputTokens),
		zap.Int("output_tokens", completion.OutputTokens),
		zap.Int("artifacts", len(refs)))

	return &ReplyDTO{
		Conversation: ToConversationDTO(conv),
		UserMessage:  ToMessageDTO(turn.message),
		Message:      ToMessageDTO(reply),
		Artifacts:    refs,
	}, nil
}

func (s *MessageService) storeArtifacts(ctx context.Context, conv *chat.Conversation, reply *chat.Message) []ArtifactRefDTO {
	refs := []ArtifactRefDTO{}
	for _, block := range artifact.ExtractCodeBlocks(reply.Content) {
		a, err := artifact.FromCodeBlock(conv.OwnerID, conv.ID, &reply.ID, block)
		if err != nil {
			s.logger.Debug("Skipping code block", zap.String("key", block.Key()), zap.Error(err))
			continue
		}
		if err := s.artifactRepo.CreateVersion(ctx, a); err != nil {
			s.logger.Warn("Failed to store artifact",
				zap.String("conversation_id", conv.ID.String()),
				zap.String("key", a.Key),
				zap.Error(err))
			continue
		}
		refs = append(refs, toArtifactRef(a))
	}
	return refs
}

func (s *MessageService) attachments(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]file.File, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	files, err := s.fileRepo.FindByIDsForOwner(ctx, ownerID, ids)
	if err != nil {
		return nil, err
	}
	if len(files) != len(ids) {
		return nil, ErrAttachmentNotFound
	}
	return files, nil
}

func (s *MessageService) systemPrompt(ctx context.Context, conv *chat.Conversation) (string, error) {
	var p *facet.Persona
	if conv.PersonaID != nil {
		found, err := s.personaRepo.FindByIDForOwner(ctx, conv.OwnerID, *conv.PersonaID)
		switch {
		case errors.Is(err, shared.ErrNotFound):
			s.logger.Debug("Conversation persona no longer exists", zap.String("conversation_id", conv.ID.String()))
		case err != nil:
			return "", err
		default:
			p = &facet.Persona{Name: found.Name, SystemPrompt: found.SystemPrompt}
		}
	}
	facetID := conv.Facet
	if facetID == "" {
		facetID = facet.Default
	}
	return s.facets.Compose(facetID, p)
}

func toPromptHistory(msgs []chat.Message) []integration.ChatMessage {
	out := make([]integration.ChatMessage, 0, len(msgs)+1)
	for _, m := range msgs {
		switch m.Role {
		case chat.RoleUser:
			out = append(out, integration.ChatMessage{Role: integration.ChatRoleUser, Content: m.Content})
		case chat.RoleAssistant:
			if strings.TrimSpace(m.Content) == "" {
				continue
			}
			out = append(out, integration.ChatMessage{Role: integration.ChatRoleAssistant, Content: m.Content})
		}
	}
	return out
}

func withAttachmentNote(content string, files []file.File) string {
	if len(files) == 0 {
		return content
	}
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return content + "\n\n[Attached files: " + strings.Join(names, ", ") + "]"
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/alfred/backend/internal/domain/chat"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/alfred/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormConversationRepository implements chat.ConversationRepository using GORM
type GormConversationRepository struct {
	db *gorm.DB
}

// NewGormConversationRepository creates a new GormConversationRepository
func NewGormConversationRepository(db *gorm.DB) *GormConversationRepository {
	return &GormConversationRepository{db: db}
}

// FindByIDForOwner finds a conversation owned by ownerID
func (r *GormConversationRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*chat.Conversation, error) {
	var model models.ConversationModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", ownerID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForOwner lists conversations, pinned first, then by the requested order
// (last activity by default). Search matches the title.
func (r *GormConversationRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]chat.Conversation, int64, error) {
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.ConversationModel{}).
		Where("user_id = ?", ownerID).
		Scopes(searchScope("title", filter.Search))

	if pinned, ok := filter.Filters["pinned"].(bool); ok {
		query = query.Where("pinned = ?", pinned)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	field := ValidateSortField(filter.OrderBy, ConversationSortFields, "last_message_at")
	if field == "last_message_at" {
		field = "COALESCE(last_message_at, created_at)"
	}

	var rows []models.ConversationModel
	if err := query.
		Order("pinned DESC").
		Order(field + " " + ValidateSortOrder(filter.OrderDir)).
		Order("id").
		Scopes(paginate(filter)).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]chat.Conversation, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Save creates or updates a conversation
func (r *GormConversationRepository) Save(ctx context.Context, conv *chat.Conversation) error {
	return r.db.WithContext(ctx).Save(models.ConversationModelFromDomain(conv)).Error
}

// Delete soft-deletes a conversation and its messages
func (r *GormConversationRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.ConversationModel{}, "user_id = ? AND id = ?", ownerID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return tx.Delete(&models.MessageModel{}, "conversation_id = ?", id).Error
	})
}

// GormMessageRepository implements chat.MessageRepository using GORM
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GormMessageRepository
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Create inserts a message
func (r *GormMessageRepository) Create(ctx context.Context, msg *chat.Message) error {
	return r.db.WithContext(ctx).Create(models.MessageModelFromDomain(msg)).Error
}

// ListByConversation returns every message in chronological order
func (r *GormMessageRepository) ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]chat.Message, error) {
	var rows []models.MessageModel
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").Order("id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return messagesToDomain(rows), nil
}

// Recent returns the last n messages in chronological order
func (r *GormMessageRepository) Recent(ctx context.Context, conversationID uuid.UUID, n int) ([]chat.Message, error) {
	if n <= 0 {
		return []chat.Message{}, nil
	}
	var rows []models.MessageModel
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").Order("id DESC").
		Limit(n).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return messagesToDomain(rows), nil
}

// CountUserMessagesSince counts the messages a user sent since the given time
func (r *GormMessageRepository) CountUserMessagesSince(ctx context.Context, ownerID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.MessageModel{}).
		Where("user_id = ? AND role = ? AND created_at >= ?", ownerID, chat.RoleUser, since).
		Count(&count).Error
	return count, err
}

func messagesToDomain(rows []models.MessageModel) []chat.Message {
	out := make([]chat.Message, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var (
	_ chat.ConversationRepository = (*GormConversationRepository)(nil)
	_ chat.MessageRepository      = (*GormMessageRepository)(nil)
)

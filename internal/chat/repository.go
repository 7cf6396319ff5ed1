package chat

import (
	"context"
	"time"

	"crm-copilot/backend/internal/models"

	"gorm.io/gorm"
)

// ConversationRepository persists conversation metadata
type ConversationRepository interface {
	Create(ctx context.Context, conversation *models.Conversation) error
	// GetOwnedActive returns the conversation only if it exists, belongs
	// to the user and is not archived.
	GetOwnedActive(ctx context.Context, id, userID uint) (*models.Conversation, error)
	Touch(ctx context.Context, id uint, at time.Time) error
	Archive(ctx context.Context, id uint) error
	ListByUser(ctx context.Context, userID uint) ([]models.Conversation, error)
}

// MessageRepository persists chat messages
type MessageRepository interface {
	Create(ctx context.Context, message *models.ChatMessage) error
	// ListPage returns one page of messages for (user, conversation),
	// oldest first.
	ListPage(ctx context.Context, userID, conversationID uint, limit, offset int) ([]models.ChatMessage, error)
	// ListAll returns the full transcript for (user, conversation),
	// oldest first.
	ListAll(ctx context.Context, userID, conversationID uint) ([]models.ChatMessage, error)
	DeleteByConversation(ctx context.Context, userID, conversationID uint) error
}

type GormConversationRepository struct {
	db *gorm.DB
}

func NewGormConversationRepository(db *gorm.DB) *GormConversationRepository {
	return &GormConversationRepository{db: db}
}

func (r *GormConversationRepository) Create(ctx context.Context, conversation *models.Conversation) error {
	return r.db.WithContext(ctx).Create(conversation).Error
}

func (r *GormConversationRepository) GetOwnedActive(ctx context.Context, id, userID uint) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND is_archived = ?", id, userID, false).
		First(&conversation).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *GormConversationRepository) Touch(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("last_updated", at).Error
}

func (r *GormConversationRepository) Archive(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("is_archived", true).Error
}

func (r *GormConversationRepository) ListByUser(ctx context.Context, userID uint) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_archived = ?", userID, false).
		Order("last_updated DESC").
		Find(&conversations).Error
	return conversations, err
}

type GormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Create(ctx context.Context, message *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *GormMessageRepository) ListPage(ctx context.Context, userID, conversationID uint, limit, offset int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND conversation_id = ?", userID, conversationID).
		Order("timestamp ASC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	return messages, err
}

func (r *GormMessageRepository) ListAll(ctx context.Context, userID, conversationID uint) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND conversation_id = ?", userID, conversationID).
		Order("timestamp ASC").
		Find(&messages).Error
	return messages, err
}

func (r *GormMessageRepository) DeleteByConversation(ctx context.Context, userID, conversationID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND conversation_id = ?", userID, conversationID).
		Delete(&models.ChatMessage{}).Error
}

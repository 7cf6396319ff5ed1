package chat

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"crm-copilot/backend/internal/models"
	apperrors "crm-copilot/backend/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sentinel errors surfaced to the channel layer.
var (
	ErrEmptyMessage         = errors.New("empty message")
	ErrConversationNotFound = errors.New("conversation not found or unauthorized")
)

// ServiceConfig bounds history pagination.
type ServiceConfig struct {
	// HistoryPageSize is the default page size for history fetches.
	HistoryPageSize int
	// HistoryPageMax caps a client-supplied page size.
	HistoryPageMax int
}

// DefaultServiceConfig returns the standard pagination bounds
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		HistoryPageSize: 20,
		HistoryPageMax:  50,
	}
}

// Service implements the conversation store operations: message append
// with implicit conversation creation, paginated history, clearing.
// All writes are single-row operations; concurrent senders on the same
// conversation interleave with last-write-wins on LastUpdated.
type Service struct {
	conversations ConversationRepository
	messages      MessageRepository
	config        ServiceConfig
}

// NewService creates a chat service
func NewService(conversations ConversationRepository, messages MessageRepository, config ServiceConfig) *Service {
	if config.HistoryPageSize <= 0 {
		config.HistoryPageSize = 20
	}
	if config.HistoryPageMax <= 0 {
		config.HistoryPageMax = 50
	}
	return &Service{
		conversations: conversations,
		messages:      messages,
		config:        config,
	}
}

// CreateConversation creates a conversation with a timestamped title
func (s *Service) CreateConversation(ctx context.Context, userID uint) (*models.Conversation, error) {
	now := time.Now()
	conversation := &models.Conversation{
		UserID:      userID,
		Title:       fmt.Sprintf("Conversation - %s", now.Format("Jan 2, 2006 3:04 PM")),
		LastUpdated: now,
		IsArchived:  false,
	}
	if err := s.conversations.Create(ctx, conversation); err != nil {
		return nil, apperrors.NewPersistenceError("Failed to create conversation").WithCause(err)
	}
	return conversation, nil
}

// SaveMessage appends one message. conversationID may be the "new"
// sentinel, in which case a conversation is created first; the resolved
// conversation id is returned for use by subsequent pipeline steps.
// Rejects empty or whitespace-only text with ErrEmptyMessage.
func (s *Service) SaveMessage(ctx context.Context, userID uint, text, sender, conversationID string) (*models.ChatMessage, uint, error) {
	if strings.TrimSpace(text) == "" {
		return nil, 0, ErrEmptyMessage
	}

	var conversation *models.Conversation
	if conversationID != "" && conversationID != models.ConversationIDNew {
		id, err := parseID(conversationID)
		if err != nil {
			return nil, 0, ErrConversationNotFound
		}
		conversation, err = s.conversations.GetOwnedActive(ctx, id, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, ErrConversationNotFound
			}
			return nil, 0, apperrors.NewPersistenceError("Failed to load conversation").WithCause(err)
		}
	} else {
		var err error
		conversation, err = s.CreateConversation(ctx, userID)
		if err != nil {
			return nil, 0, err
		}
	}

	now := time.Now()
	if err := s.conversations.Touch(ctx, conversation.ID, now); err != nil {
		return nil, 0, apperrors.NewPersistenceError("Failed to update conversation").WithCause(err)
	}

	message := &models.ChatMessage{
		ExternalID:     uuid.New().String(),
		UserID:         userID,
		ConversationID: conversation.ID,
		Sender:         sender,
		Message:        text,
		Timestamp:      now,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, 0, apperrors.NewPersistenceError("Failed to save message").WithCause(err)
	}

	return message, conversation.ID, nil
}

// GetChatHistory returns one page of messages, oldest first, using a
// 0-based page index. Concatenating pages in order yields the full
// oldest-first transcript.
func (s *Service) GetChatHistory(ctx context.Context, userID uint, conversationID string, page, limit int) ([]models.ChatMessage, error) {
	id, err := parseID(conversationID)
	if err != nil {
		return nil, ErrConversationNotFound
	}

	if limit <= 0 {
		limit = s.config.HistoryPageSize
	}
	if limit > s.config.HistoryPageMax {
		limit = s.config.HistoryPageMax
	}
	if page < 0 {
		page = 0
	}

	messages, err := s.messages.ListPage(ctx, userID, id, limit, page*limit)
	if err != nil {
		return nil, apperrors.NewPersistenceError("Unable to load messages").WithCause(err)
	}
	return messages, nil
}

// GetTranscript returns the full ordered transcript of a conversation
func (s *Service) GetTranscript(ctx context.Context, userID uint, conversationID uint) ([]models.ChatMessage, error) {
	messages, err := s.messages.ListAll(ctx, userID, conversationID)
	if err != nil {
		return nil, apperrors.NewPersistenceError("Unable to load transcript").WithCause(err)
	}
	return messages, nil
}

// ClearConversation hard-deletes all messages for (user, conversation)
// and archives the conversation.
func (s *Service) ClearConversation(ctx context.Context, userID uint, conversationID string) error {
	id, err := parseID(conversationID)
	if err != nil {
		return ErrConversationNotFound
	}

	if err := s.messages.DeleteByConversation(ctx, userID, id); err != nil {
		return apperrors.NewPersistenceError("Failed to clear conversation").WithCause(err)
	}
	if err := s.conversations.Archive(ctx, id); err != nil {
		return apperrors.NewPersistenceError("Failed to archive conversation").WithCause(err)
	}
	return nil
}

// ListConversations returns the user's non-archived conversations,
// most recently updated first
func (s *Service) ListConversations(ctx context.Context, userID uint) ([]models.Conversation, error) {
	conversations, err := s.conversations.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.NewPersistenceError("Unable to load conversations").WithCause(err)
	}
	return conversations, nil
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}

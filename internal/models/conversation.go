package models

import (
	"time"
)

// ConversationIDNew is the reserved conversation identifier a client sends
// to have a conversation created for the current turn.
const ConversationIDNew = "new"

// Conversation is a titled, time-ordered thread of messages between one
// user and the AI assistant. The owning user never changes after creation.
type Conversation struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index:idx_conversations_user_recency,priority:1" json:"user_id"`
	Title       string    `gorm:"default:Untitled Conversation" json:"title"`
	IsArchived  bool      `gorm:"default:false" json:"is_archived"`
	LastUpdated time.Time `gorm:"index:idx_conversations_user_recency,priority:2,sort:desc" json:"last_updated"`
	CreatedAt   time.Time `json:"created_at"`
}

package models

import (
	"time"
)

// Message sender tags. Every message is from exactly one of these.
const (
	SenderUser = "user"
	SenderAI   = "ai"
)

// ChatMessage is one utterance inside a conversation. Its conversation
// must belong to the same user as the message itself.
type ChatMessage struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ExternalID     string    `gorm:"index" json:"external_id"`
	UserID         uint      `gorm:"index:idx_messages_user_conv_ts,priority:1" json:"user_id"`
	ConversationID uint      `gorm:"index:idx_messages_user_conv_ts,priority:2" json:"conversation_id"`
	Sender         string    `json:"sender"` // "user" or "ai"
	Message        string    `json:"message"`
	Timestamp      time.Time `gorm:"index:idx_messages_user_conv_ts,priority:3" json:"timestamp"`
	CreatedAt      time.Time `json:"created_at"`
}

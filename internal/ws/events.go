package ws

import (
	"encoding/json"
)

// Client-to-server events.
const (
	EventJoin              = "join"
	EventGetChatHistory    = "get-chat-history"
	EventSendMessage       = "send-message"
	EventClearConversation = "clear-conversation"
)

// Server-to-client events.
const (
	EventChatHistory            = "chat-history"
	EventChatHistoryError       = "chat-history-error"
	EventAITyping               = "ai-typing"
	EventNewMessage             = "new-message"
	EventErrorMessage           = "error-message"
	EventConversationCleared    = "conversation-cleared"
	EventClearConversationError = "clear-conversation-error"
)

// Envelope is the wire format for both directions: an event name plus an
// event-specific payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// GetChatHistoryPayload requests one page of a conversation's messages.
type GetChatHistoryPayload struct {
	ConversationID string `json:"conversationId"`
	Page           int    `json:"page"`
	Limit          int    `json:"limit"`
}

// SendMessagePayload carries one user utterance. ConversationID may be
// the literal sentinel "new".
type SendMessagePayload struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
}

// ClearConversationPayload identifies the conversation to clear. The
// userId is taken from the payload as supplied by the caller.
type ClearConversationPayload struct {
	UserID         string `json:"userId"`
	ConversationID string `json:"conversationId"`
}

// ConversationClearedPayload acknowledges a successful clear.
type ConversationClearedPayload struct {
	ConversationID string `json:"conversationId"`
}

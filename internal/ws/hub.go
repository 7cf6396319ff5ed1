package ws

import (
	"context"
	"sync"

	"crm-copilot/backend/internal/models"
	"crm-copilot/backend/pkg/logger"
)

// ChatService is the conversation store surface the channel manager uses
type ChatService interface {
	SaveMessage(ctx context.Context, userID uint, text, sender, conversationID string) (*models.ChatMessage, uint, error)
	GetChatHistory(ctx context.Context, userID uint, conversationID string, page, limit int) ([]models.ChatMessage, error)
	ClearConversation(ctx context.Context, userID uint, conversationID string) error
}

// ContextAssembler builds the grounding briefing for one AI turn
type ContextAssembler interface {
	Build(ctx context.Context, userID, conversationID uint, userMessage string) (string, error)
}

// ReplyGenerator produces AI reply text; it degrades to a fallback
// string instead of returning errors
type ReplyGenerator interface {
	Generate(ctx context.Context, systemBriefing, userMessage string) string
}

// Hub is the connection registry for the chat channel. Connections are
// grouped into per-user rooms so server-to-client delivery only ever
// reaches the owning user's sessions; one user may hold several
// connections at once.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	rooms   map[uint]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	chat      ChatService
	assembler ContextAssembler
	generator ReplyGenerator
	logger    *logger.Logger
}

// NewHub creates a hub wired to the chat collaborators
func NewHub(chat ChatService, assembler ContextAssembler, generator ReplyGenerator, log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[uint]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		chat:       chat,
		assembler:  assembler,
		generator:  generator,
		logger:     log,
	}
}

// Run drives the register/unregister lifecycle. Meant to be started once
// as a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
	activeConnections.Inc()
	h.logger.Info("Client registered", "conn_id", client.ID, "user_id", client.identity.UserID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		h.leaveLocked(client)
		client.markClosed()
		activeConnections.Dec()
		h.logger.Info("Client unregistered", "conn_id", client.ID)
	}
	h.mu.Unlock()
}

// Join subscribes the connection to its user's room
func (h *Hub) Join(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userID := client.identity.UserID
	room, ok := h.rooms[userID]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[userID] = room
	}
	room[client] = true
}

// leaveLocked removes the connection from its room. Caller holds h.mu.
func (h *Hub) leaveLocked(client *Client) {
	userID := client.identity.UserID
	if room, ok := h.rooms[userID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, userID)
		}
	}
}

// InRoom reports whether the connection has joined its user's room
func (h *Hub) InRoom(client *Client) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[client.identity.UserID]
	if !ok {
		return false
	}
	return room[client]
}

// Broadcast delivers an event to every connection in the user's room.
// Delivery to a connection that has gone away is silently dropped.
func (h *Hub) Broadcast(userID uint, event string, data any) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[userID]))
	for client := range h.rooms[userID] {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		client.sendEvent(event, data)
	}
}

// ConnectionCount returns the number of live connections, for health
// reporting
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

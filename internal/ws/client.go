package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"crm-copilot/backend/internal/auth"
	"crm-copilot/backend/internal/chat"
	"crm-copilot/backend/internal/models"
	"crm-copilot/backend/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10
)

// genericFailure is the catch-all error event payload for the send
// pipeline.
const genericFailure = "Something went wrong. Please try again."

// Client is one authenticated websocket connection. Its identity is
// fixed at handshake time and never revalidated.
type Client struct {
	ID       string
	conn     *websocket.Conn
	send     chan []byte
	hub      *Hub
	identity auth.Identity
	logger   *logger.Logger

	closeMu sync.Mutex
	closed  bool
}

// NewClient creates a client for an upgraded, authenticated connection
func NewClient(id string, conn *websocket.Conn, hub *Hub, identity auth.Identity, log *logger.Logger, sendBuffer int) *Client {
	if sendBuffer <= 0 {
		sendBuffer = 256
	}
	return &Client{
		ID:       id,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		hub:      hub,
		identity: identity,
		logger:   log.WithConnectionID(id).WithUserID(strconv.FormatUint(uint64(identity.UserID), 10)),
	}
}

// markClosed stops further sends and releases the send channel. Called
// by the hub during unregister.
func (c *Client) markClosed() {
	c.closeMu.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	c.closeMu.Unlock()
}

// sendEvent queues an event for delivery. Events for a closed or
// saturated connection are dropped rather than blocking a pipeline.
func (c *Client) sendEvent(event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		c.logger.LogError(err, "Failed to marshal event payload", "event", event)
		return
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		c.logger.LogError(err, "Failed to marshal event envelope", "event", event)
		return
	}

	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- frame:
	default:
		c.logger.Warn("Dropping event for slow connection", "event", event)
	}
}

// ReadPump reads events off the connection and dispatches them in the
// order received. Runs as one goroutine per connection.
func (c *Client) ReadPump(maxMessageSize int64) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("Unexpected close", "error", err.Error())
			}
			break
		}

		var envelope Envelope
		if err := json.Unmarshal(frame, &envelope); err != nil {
			c.logger.Warn("Discarding malformed frame", "error", err.Error())
			continue
		}

		// Events are dispatched in arrival order; each handler runs as
		// its own task so a suspended AI turn does not block the
		// connection's event loop.
		go c.handleEvent(envelope)
	}
}

// WritePump flushes queued events to the connection and keeps it alive
// with pings. Runs as one goroutine per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleEvent routes one inbound event. A panic in a handler is
// contained here so it can never tear down the connection's event loop.
func (c *Client) handleEvent(envelope Envelope) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Panic in event handler",
				"event", envelope.Event,
				"panic", fmt.Sprintf("%v", r),
			)
		}
	}()

	switch envelope.Event {
	case EventJoin:
		c.handleJoin()
	case EventGetChatHistory:
		c.handleGetChatHistory(envelope.Data)
	case EventSendMessage:
		c.handleSendMessage(envelope.Data)
	case EventClearConversation:
		c.handleClearConversation(envelope.Data)
	default:
		c.logger.Warn("Unknown event", "event", envelope.Event)
	}
}

func (c *Client) handleJoin() {
	c.hub.Join(c)
	c.logger.Info("Joined personal room", "room", c.identity.RoomKey())
}

func (c *Client) handleGetChatHistory(data json.RawMessage) {
	var payload GetChatHistoryPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.ConversationID == "" {
		c.sendEvent(EventChatHistoryError, "Unable to load messages.")
		return
	}

	messages, err := c.hub.chat.GetChatHistory(context.Background(), c.identity.UserID, payload.ConversationID, payload.Page, payload.Limit)
	if err != nil {
		c.logger.LogError(err, "Failed to fetch chat history", "conversation_id", payload.ConversationID)
		c.sendEvent(EventChatHistoryError, "Unable to load messages.")
		return
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	c.sendEvent(EventChatHistory, messages)
}

// handleSendMessage runs the five-step chat turn: persist the user
// message, show the composing indicator, build context and generate a
// reply, persist the reply, deliver it. The indicator is always cleared
// and the worst outcome of any failure is a generic error event.
func (c *Client) handleSendMessage(data json.RawMessage) {
	var payload SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}

	// Disconnects do not cancel an in-flight turn; once the user message
	// is persisted the AI reply is persisted too, and undeliverable
	// results are dropped.
	ctx := context.Background()
	userID := c.identity.UserID

	_, conversationID, err := c.hub.chat.SaveMessage(ctx, userID, payload.Message, models.SenderUser, payload.ConversationID)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			return
		}
		c.logger.LogError(err, "Failed to persist user message")
		c.sendEvent(EventErrorMessage, genericFailure)
		return
	}
	messagesPersisted.WithLabelValues(models.SenderUser).Inc()

	typingCleared := false
	clearTyping := func() {
		if !typingCleared {
			typingCleared = true
			c.sendEvent(EventAITyping, false)
		}
	}
	defer clearTyping()

	c.sendEvent(EventAITyping, true)

	turnStart := time.Now()
	briefing, err := c.hub.assembler.Build(ctx, userID, conversationID, payload.Message)
	if err != nil {
		c.logger.LogError(err, "Failed to assemble context", "conversation_id", conversationID)
		clearTyping()
		c.sendEvent(EventErrorMessage, genericFailure)
		return
	}

	reply := c.hub.generator.Generate(ctx, briefing, payload.Message)
	aiTurnDuration.Observe(time.Since(turnStart).Seconds())

	aiMessage, _, err := c.hub.chat.SaveMessage(ctx, userID, reply, models.SenderAI, strconv.FormatUint(uint64(conversationID), 10))
	if err != nil {
		c.logger.LogError(err, "Failed to persist AI reply", "conversation_id", conversationID)
		clearTyping()
		c.sendEvent(EventErrorMessage, genericFailure)
		return
	}
	messagesPersisted.WithLabelValues(models.SenderAI).Inc()

	clearTyping()
	c.deliverNewMessage(aiMessage)
}

// deliverNewMessage routes the AI reply to all of the user's joined
// sessions, or just this connection if it never joined its room.
func (c *Client) deliverNewMessage(message *models.ChatMessage) {
	if c.hub.InRoom(c) {
		c.hub.Broadcast(c.identity.UserID, EventNewMessage, message)
		return
	}
	c.sendEvent(EventNewMessage, message)
}

func (c *Client) handleClearConversation(data json.RawMessage) {
	var payload ClearConversationPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.UserID == "" || payload.ConversationID == "" {
		c.sendEvent(EventClearConversationError, "Missing userId or conversationId")
		return
	}

	// The target user id is taken from the payload, not from the
	// connection's identity.
	userID, err := strconv.ParseUint(payload.UserID, 10, 64)
	if err != nil {
		c.sendEvent(EventClearConversationError, "Missing userId or conversationId")
		return
	}

	if err := c.hub.chat.ClearConversation(context.Background(), uint(userID), payload.ConversationID); err != nil {
		c.logger.LogError(err, "Failed to clear conversation", "conversation_id", payload.ConversationID)
		c.sendEvent(EventClearConversationError, "Failed to clear conversation")
		return
	}

	c.sendEvent(EventConversationCleared, ConversationClearedPayload{ConversationID: payload.ConversationID})
}

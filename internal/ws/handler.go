package ws

import (
	"context"
	"net/http"
	"strings"
	"time"

	"crm-copilot/backend/internal/auth"
	"crm-copilot/backend/internal/crm"
	"crm-copilot/backend/internal/models"
	apperrors "crm-copilot/backend/pkg/errors"
	"crm-copilot/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	// Origin checks are enforced by the HTTP layer's CORS policy
	CheckOrigin:      func(r *http.Request) bool { return true },
	HandshakeTimeout: 10 * time.Second,
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
}

// HandlerConfig bounds the websocket connection
type HandlerConfig struct {
	MaxMessageSize int64
	SendBuffer     int
}

// Handler authenticates and upgrades chat connections
type Handler struct {
	hub      *Hub
	verifier *auth.Verifier
	recorder *crm.ActivityRecorder
	logger   *logger.Logger
	config   HandlerConfig
}

// NewHandler creates the websocket connection handler
func NewHandler(hub *Hub, verifier *auth.Verifier, recorder *crm.ActivityRecorder, log *logger.Logger, config HandlerConfig) *Handler {
	if config.MaxMessageSize <= 0 {
		config.MaxMessageSize = 64 * 1024
	}
	return &Handler{
		hub:      hub,
		verifier: verifier,
		recorder: recorder,
		logger:   log,
		config:   config,
	}
}

// ServeWS handles one connection request. The bearer credential is
// verified before the upgrade: an absent or invalid token refuses the
// connection with a typed error and no event handler ever runs.
func (h *Handler) ServeWS(c *gin.Context) {
	token := bearerToken(c)

	identity, err := h.verifier.Verify(c.Request.Context(), token)
	if err != nil {
		appErr, ok := err.(*apperrors.AppError)
		if !ok {
			appErr = apperrors.NewUnauthenticatedError("Unauthorized")
		}
		c.JSON(appErr.StatusCode, gin.H{"error": appErr.Message, "code": appErr.Code})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.LogError(err, "WebSocket upgrade failed")
		return
	}

	client := NewClient(uuid.New().String(), conn, h.hub, *identity, h.logger, h.config.SendBuffer)
	h.hub.register <- client

	// Best-effort login audit entry; a failure here never affects the
	// connection.
	go h.recorder.Record(context.Background(), identity.UserID, models.ActionUserLogin, "user", identity.Name, nil)

	go client.WritePump()
	go client.ReadPump(h.config.MaxMessageSize)
}

// bearerToken extracts the handshake credential from the token query
// parameter or the Authorization header.
func bearerToken(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

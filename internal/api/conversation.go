package api

import (
	"net/http"

	"crm-copilot/backend/internal/chat"
	"crm-copilot/backend/pkg/logger"
	"crm-copilot/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// ConversationHandler serves the REST conversation listing
type ConversationHandler struct {
	service *chat.Service
	logger  *logger.Logger
}

func NewConversationHandler(service *chat.Service, log *logger.Logger) *ConversationHandler {
	return &ConversationHandler{service: service, logger: log}
}

// List returns the caller's non-archived conversations, most recently
// updated first
func (h *ConversationHandler) List(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conversations, err := h.service.ListConversations(c.Request.Context(), identity.UserID)
	if err != nil {
		h.logger.LogError(err, "Failed to list conversations", "user_id", identity.UserID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, conversations)
}

package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/astrochat/astrochat-backend/internal/http/middleware"
	"github.com/astrochat/astrochat-backend/internal/service"
)

// ChatHandler serves the chat endpoints. All routes require a valid
// session token.
type ChatHandler struct {
	Chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{Chat: chat}
}

// Send accepts a user message and returns the generated reply.
func (h *ChatHandler) Send(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "error_description": "Authentication required."})
		return
	}

	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Message is required."})
		return
	}

	entry, err := h.Chat.Send(c.Request.Context(), claims.UserID, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response":  entry.Response,
		"timestamp": entry.CreatedAt,
	})
}

// History returns the caller's conversation in chronological order.
func (h *ChatHandler) History(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "error_description": "Authentication required."})
		return
	}

	entries, err := h.Chat.History(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": entries})
}

// Health reports process liveness. It is unauthenticated.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

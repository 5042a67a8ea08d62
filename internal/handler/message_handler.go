package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/roomcast/roomcast/internal/service"
	"github.com/roomcast/roomcast/pkg/logger"
	"go.uber.org/zap"
)

type MessageHandler struct {
	moderation *service.ModerationService
}

func NewMessageHandler(moderation *service.ModerationService) *MessageHandler {
	return &MessageHandler{moderation: moderation}
}

// DeleteMessage handles DELETE /api/messages/delete/:messageId. The
// moderation engine publishes the delete so every partition that ever saw
// the message clears it.
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("messageId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid message id"})
		return
	}

	if err := h.moderation.Delete(messageID); err != nil {
		if errors.Is(err, service.ErrMessageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Message not found"})
			return
		}
		logger.Log.Error("failed to delete message",
			zap.String("message_id", messageID.String()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

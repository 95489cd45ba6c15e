package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mapda-dev/mapda-api/internal/dto"
	"github.com/mapda-dev/mapda-api/internal/repository"
	"github.com/mapda-dev/mapda-api/internal/service"
)

// MessageHandler handles user-to-user notifications
type MessageHandler struct {
	messageService service.MessageService
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messageService service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// Send delivers a message to another user
// @Summary Send a message
// @Description Send one or more warning kinds to another user
// @Tags message
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.SendMessageRequest true "Message request"
// @Success 201 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/message [post]
func (h *MessageHandler) Send(c *gin.Context) {
	userUUID, exists := c.Get("user_uuid")
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "User not found in context",
		})
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	_, err := h.messageService.Send(c.Request.Context(), userUUID.(string), req.RecipientUUID, req.MessageTypes, req.DangerObjID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfMessage), errors.Is(err, service.ErrInvalidMessageType):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Bad request",
				Message: err.Error(),
			})
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "Not found",
				Message: "Sender or recipient not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
				Error:   "Internal server error",
				Message: "Failed to send message",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.SuccessResponse{
		Message: "Message sent",
	})
}

// Check returns the latest unread message for the caller
// @Summary Check for new messages
// @Description Report whether a new message is waiting and return its contents
// @Tags message
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.MessageCheckResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/message_check [get]
func (h *MessageHandler) Check(c *gin.Context) {
	userUUID, exists := c.Get("user_uuid")
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "User not found in context",
		})
		return
	}

	message, err := h.messageService.CheckLatest(c.Request.Context(), userUUID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: "Failed to check messages",
		})
		return
	}

	if message == nil {
		c.JSON(http.StatusOK, dto.MessageCheckResponse{HasNewMessage: false})
		return
	}

	c.JSON(http.StatusOK, dto.MessageCheckResponse{
		HasNewMessage: true,
		Message: &dto.MessageResponse{
			ID:           message.ID,
			SenderUUID:   message.SenderUUID,
			MessageTypes: message.TypeList(),
			DangerObjID:  message.DangerObjID,
			CreatedAt:    message.CreatedAt.Format(time.RFC3339),
		},
	})
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"chat_backend/internal/domain"
	"chat_backend/internal/service"
	"chat_backend/pkg/errors"
	"chat_backend/pkg/logger"
)

// MessageSubmitter сохраняет сообщение и рассылает его подписчикам комнаты
type MessageSubmitter interface {
	Submit(ctx context.Context, conversationID, senderID int64, content string) (*domain.Message, error)
}

type MessageHandler struct {
	conversationService service.ConversationService
	messageService      service.MessageService
	submitter           MessageSubmitter
	log                 logger.Logger
}

func NewMessageHandler(conversationService service.ConversationService, messageService service.MessageService, submitter MessageSubmitter, log logger.Logger) *MessageHandler {
	return &MessageHandler{
		conversationService: conversationService,
		messageService:      messageService,
		submitter:           submitter,
		log:                 log,
	}
}

// participantScope разбирает :id и проверяет, что пользователь - участник диалога
func (h *MessageHandler) participantScope(c *gin.Context) (conversationID, userID int64, err error) {
	userID, err = currentUser(c)
	if err != nil {
		return 0, 0, err
	}
	conversationID, err = paramID(c, "id")
	if err != nil {
		return 0, 0, err
	}
	if _, err = h.conversationService.RequireParticipant(c.Request.Context(), conversationID, userID); err != nil {
		return 0, 0, err
	}
	return conversationID, userID, nil
}

func (h *MessageHandler) List(c *gin.Context) {
	conversationID, _, err := h.participantScope(c)
	if err != nil {
		fail(c, err)
		return
	}

	messages, err := h.messageService.ListByConversation(c.Request.Context(), conversationID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, errors.Success(messages, "Messages fetched"))
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// Send идет через relay, поэтому подписчики комнаты получают сообщение так же, как из websocket
func (h *MessageHandler) Send(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		fail(c, err)
		return
	}

	conversationID, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindError(err))
		return
	}

	message, err := h.submitter.Submit(c.Request.Context(), conversationID, userID, req.Content)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, errors.Success(message, "Message sent"))
}

func (h *MessageHandler) Delete(c *gin.Context) {
	conversationID, userID, err := h.participantScope(c)
	if err != nil {
		fail(c, err)
		return
	}

	messageID, err := paramID(c, "messageId")
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.messageService.SoftDelete(c.Request.Context(), conversationID, messageID, userID); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, errors.Success(nil, "Message deleted"))
}

func (h *MessageHandler) Clear(c *gin.Context) {
	conversationID, userID, err := h.participantScope(c)
	if err != nil {
		fail(c, err)
		return
	}

	deleted, err := h.messageService.SoftDeleteAll(c.Request.Context(), conversationID, userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, errors.Success(gin.H{"deleted": deleted}, "Messages deleted"))
}

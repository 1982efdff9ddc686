package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chat_backend/internal/service"
	"chat_backend/pkg/errors"
	"chat_backend/pkg/logger"
)

type ConversationHandler struct {
	conversationService service.ConversationService
	log                 logger.Logger
}

func NewConversationHandler(conversationService service.ConversationService, log logger.Logger) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
		log:                 log,
	}
}

func (h *ConversationHandler) List(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		fail(c, err)
		return
	}

	conversations, err := h.conversationService.List(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, errors.Success(conversations, "Conversations fetched"))
}

type CreateConversationRequest struct {
	ParticipantID int64 `json:"participantId" binding:"required"`
}

func (h *ConversationHandler) Create(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		fail(c, err)
		return
	}

	var req CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindError(err))
		return
	}

	conv, created, err := h.conversationService.Resolve(c.Request.Context(), userID, req.ParticipantID)
	if err != nil {
		fail(c, err)
		return
	}

	if created {
		c.JSON(http.StatusCreated, errors.Success(conv, "Conversation created"))
		return
	}
	c.JSON(http.StatusOK, errors.Success(conv, "Conversation already exists"))
}

func (h *ConversationHandler) Get(c *gin.Context) {
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

	conv, err := h.conversationService.Get(c.Request.Context(), conversationID, userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, errors.Success(conv, ""))
}

func (h *ConversationHandler) Delete(c *gin.Context) {
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

	if err := h.conversationService.Delete(c.Request.Context(), conversationID, userID); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, errors.Success(nil, "Conversation deleted"))
}

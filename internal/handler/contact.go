package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chat_backend/internal/service"
	"chat_backend/pkg/errors"
	"chat_backend/pkg/logger"
)

type ContactHandler struct {
	contactService service.ContactService
	log            logger.Logger
}

func NewContactHandler(contactService service.ContactService, log logger.Logger) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		log:            log,
	}
}

func (h *ContactHandler) List(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		fail(c, err)
		return
	}

	contacts, err := h.contactService.List(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, errors.Success(contacts, "Contacts fetched"))
}

type AddContactRequest struct {
	ContactID int64 `json:"contactId" binding:"required"`
}

func (h *ContactHandler) Add(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		fail(c, err)
		return
	}

	var req AddContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindError(err))
		return
	}

	contact, err := h.contactService.Add(c.Request.Context(), userID, req.ContactID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, errors.Success(contact, "Contact added"))
}

func (h *ContactHandler) Remove(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		fail(c, err)
		return
	}

	contactID, err := paramID(c, "contactId")
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.contactService.Remove(c.Request.Context(), userID, contactID); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, errors.Success(nil, "Contact deleted"))
}

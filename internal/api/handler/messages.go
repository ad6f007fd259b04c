package handler

import (
	"errors"
	"net/http"

	"chatline/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateMessage persists a message over REST. This is the same persistence
// path the hub's ingestion pipeline uses; messages created here are not
// broadcast to connected clients.
func (h *Handler) CreateMessage(c *gin.Context) {
	var msg models.Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Storage.CreateMessage(&msg); err != nil {
		if errors.Is(err, models.ErrMissingFields) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// GetMessages lists a chat's messages ordered by creation time ascending.
func (h *Handler) GetMessages(c *gin.Context) {
	messages, err := h.Storage.GetMessages(c.Param("chatId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, messages)
}

// GetUnreadMessages lists a chat's unread messages.
func (h *Handler) GetUnreadMessages(c *gin.Context) {
	messages, err := h.Storage.GetUnreadMessages(c.Param("chatId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, messages)
}

// MarkMessageRead flags one message as read by the requesting user.
func (h *Handler) MarkMessageRead(c *gin.Context) {
	readerID := c.Query("userId")
	err := h.Storage.MarkMessageRead(c.Param("chatId"), c.Param("messageId"), readerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message marked as read"})
}

// UpdateMessage edits a message's content.
func (h *Handler) UpdateMessage(c *gin.Context) {
	var body struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.Storage.EditMessage(c.Param("chatId"), c.Param("messageId"), body.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if msg == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}
	c.JSON(http.StatusOK, msg)
}

// RemoveMessage deletes a message by ID.
func (h *Handler) RemoveMessage(c *gin.Context) {
	msg, err := h.Storage.DeleteMessage(c.Param("messageId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if msg == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}
	c.JSON(http.StatusOK, msg)
}

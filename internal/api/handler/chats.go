package handler

import (
	"errors"
	"net/http"

	"chatline/backend/internal/models"
	"chatline/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// CreateChat creates a chat, enforcing the participant invariants: private
// chats have exactly two participants, group chats at least one.
func (h *Handler) CreateChat(c *gin.Context) {
	var chat models.Chat
	if err := c.ShouldBindJSON(&chat); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := chat.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Storage.CreateChat(&chat); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, chat)
}

// GetChat returns one chat with its unread counter.
func (h *Handler) GetChat(c *gin.Context) {
	chat, err := h.Storage.GetChatByID(c.Param("chatId"))
	if err != nil {
		if errors.Is(err, storage.ErrChatNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, chat)
}

// GetChats lists the chats of one user.
func (h *Handler) GetChats(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	chats, err := h.Storage.GetChatsForUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, chats)
}

// DeleteChat removes a chat together with its messages.
func (h *Handler) DeleteChat(c *gin.Context) {
	if err := h.Storage.DeleteChat(c.Param("chatId")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Chat deleted"})
}

// ResetUnread clears a chat's unread counter, typically when the user opens
// the chat.
func (h *Handler) ResetUnread(c *gin.Context) {
	if err := h.Storage.ResetUnread(c.Param("chatId")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unread counter reset"})
}

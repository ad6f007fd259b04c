package storage

import (
	"errors"
	"log"

	"chatline/backend/internal/models"

	"gorm.io/gorm"
)

var ErrChatNotFound = errors.New("chat not found")

// CreateChat persists a new chat after checking the participant invariants.
func (s *Service) CreateChat(chat *models.Chat) error {
	if err := chat.Validate(); err != nil {
		return err
	}
	if err := s.DB.Create(chat).Error; err != nil {
		log.Printf("ERROR: Failed to create chat %q: %v", chat.Name, err)
		return err
	}
	return nil
}

// GetChatByID loads a chat and fills in its unread counter from Redis.
func (s *Service) GetChatByID(chatID string) (*models.Chat, error) {
	var chat models.Chat
	err := s.DB.Where("id = ?", chatID).First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		log.Printf("ERROR: Failed to get chat %s: %v", chatID, err)
		return nil, err
	}

	if unread, err := s.GetUnreadCount(chatID); err == nil {
		chat.Unread = unread
	}
	return &chat, nil
}

// GetChatsForUser returns every chat the user participates in.
func (s *Service) GetChatsForUser(userID string) ([]models.Chat, error) {
	var chats []models.Chat
	err := s.DB.Where("? = ANY(participants)", userID).Find(&chats).Error
	if err != nil {
		log.Printf("ERROR: Failed to list chats for user %s: %v", userID, err)
		return nil, err
	}
	for i := range chats {
		if unread, err := s.GetUnreadCount(chats[i].ID); err == nil {
			chats[i].Unread = unread
		}
	}
	return chats, nil
}

// DeleteChat removes a chat together with its messages and unread counter.
func (s *Service) DeleteChat(chatID string) error {
	if err := s.DB.Delete(&models.Message{}, "chat_id = ?", chatID).Error; err != nil {
		log.Printf("ERROR: Failed to delete messages of chat %s: %v", chatID, err)
		return err
	}
	if err := s.DB.Delete(&models.Chat{}, "id = ?", chatID).Error; err != nil {
		log.Printf("ERROR: Failed to delete chat %s: %v", chatID, err)
		return err
	}
	return s.ResetUnread(chatID)
}

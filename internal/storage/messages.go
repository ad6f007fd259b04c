package storage

import (
	"errors"
	"log"
	"time"

	"chatline/backend/internal/models"

	"gorm.io/gorm"
)

// CreateMessage persists a message and back-fills the server-assigned ID and
// timestamp into msg. The creation timestamp is always assigned here;
// whatever the client sent is overwritten. The owning chat's last-message
// reference and unread counter are updated as part of the same call.
func (s *Service) CreateMessage(msg *models.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if msg.Type == "" {
		msg.Type = models.MessageTypeText
	}
	msg.ID = ""
	msg.CreatedAt = time.Now().UTC()

	if err := s.DB.Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save message for chat %s: %v", msg.ChatID, err)
		return err
	}

	if err := s.DB.Model(&models.Chat{}).
		Where("id = ?", msg.ChatID).
		Update("last_message_id", msg.ID).Error; err != nil {
		log.Printf("WARNING: Failed to update last message for chat %s: %v", msg.ChatID, err)
	}

	if err := s.IncrementUnread(msg.ChatID); err != nil {
		log.Printf("WARNING: Failed to bump unread counter for chat %s: %v", msg.ChatID, err)
	}

	return nil
}

// GetMessages returns the full history of a chat ordered by creation time
// ascending. An unknown chat yields an empty list, not an error.
func (s *Service) GetMessages(chatID string) ([]models.Message, error) {
	var messages []models.Message
	err := s.DB.Where("chat_id = ?", chatID).
		Order("created_at asc").
		Find(&messages).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return messages, nil
		}
		log.Printf("ERROR: Failed to get messages for chat %s: %v", chatID, err)
		return nil, err
	}
	return messages, nil
}

// MarkMessageRead sets the read flag and records the reader.
func (s *Service) MarkMessageRead(chatID, messageID, readerID string) error {
	var msg models.Message
	if err := s.DB.Where("id = ? AND chat_id = ?", messageID, chatID).First(&msg).Error; err != nil {
		return err
	}

	msg.IsRead = true
	for _, r := range msg.ReadBy {
		if r == readerID {
			return s.DB.Save(&msg).Error
		}
	}
	if readerID != "" {
		msg.ReadBy = append(msg.ReadBy, readerID)
	}
	return s.DB.Save(&msg).Error
}

// EditMessage replaces the content of a message and stamps EditedAt.
// Returns nil when the message does not exist.
func (s *Service) EditMessage(chatID, messageID, content string) (*models.Message, error) {
	var msg models.Message
	err := s.DB.Where("id = ? AND chat_id = ?", messageID, chatID).First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("WARNING: Message %s not found in chat %s", messageID, chatID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	msg.Content = content
	msg.EditedAt = &now
	if err := s.DB.Save(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// DeleteMessage removes a message by ID and returns the deleted record, or
// nil when nothing matched.
func (s *Service) DeleteMessage(messageID string) (*models.Message, error) {
	var msg models.Message
	err := s.DB.Where("id = ?", messageID).First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.DB.Delete(&models.Message{}, "id = ?", messageID).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// GetUnreadMessages returns the unread messages of a chat ordered by
// creation time ascending.
func (s *Service) GetUnreadMessages(chatID string) ([]models.Message, error) {
	var messages []models.Message
	err := s.DB.Where("chat_id = ? AND is_read = ?", chatID, false).
		Order("created_at asc").
		Find(&messages).Error
	if err != nil {
		log.Printf("ERROR: Failed to get unread messages for chat %s: %v", chatID, err)
		return nil, err
	}
	return messages, nil
}

package storage

import (
	"context"

	"chatline/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Storage is the persistence gateway: the only durable-storage interface the
// realtime core and the HTTP handlers talk to.
type Storage interface {
	// Messages
	CreateMessage(msg *models.Message) error
	GetMessages(chatID string) ([]models.Message, error)
	MarkMessageRead(chatID, messageID, readerID string) error
	EditMessage(chatID, messageID, content string) (*models.Message, error)
	DeleteMessage(messageID string) (*models.Message, error)
	GetUnreadMessages(chatID string) ([]models.Message, error)

	// Chats
	CreateChat(chat *models.Chat) error
	GetChatByID(chatID string) (*models.Chat, error)
	GetChatsForUser(userID string) ([]models.Chat, error)
	DeleteChat(chatID string) error

	// Unread counters (Redis)
	IncrementUnread(chatID string) error
	GetUnreadCount(chatID string) (int64, error)
	ResetUnread(chatID string) error
}

// Service implements Storage on PostgreSQL (durable records) and Redis
// (per-chat unread counters).
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewService Constructor
func NewService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

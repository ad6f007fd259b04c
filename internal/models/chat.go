package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Chat types.
const (
	ChatTypePrivate = "private"
	ChatTypeGroup   = "group"
)

var (
	ErrChatNameRequired = errors.New("chat name is required")
	ErrInvalidChatType  = errors.New("chat type must be private or group")
	// ErrPrivateParticipants enforces the private-chat invariant of exactly
	// two participants.
	ErrPrivateParticipants = errors.New("private chat requires exactly 2 participants")
	ErrGroupParticipants   = errors.New("group chat requires at least 1 participant")
)

// Chat is a conversation between a fixed set of participants.
type Chat struct {
	ID string `gorm:"primaryKey" json:"id"`
	// Name is the display name of the chat.
	Name string `gorm:"type:text;not null" json:"name"`
	// Type is private (exactly 2 participants) or group (>= 1).
	Type string `gorm:"type:text;not null" json:"type"`
	// Participants are the user IDs that belong to the chat. Order carries
	// no meaning.
	Participants pq.StringArray `gorm:"type:text[];not null" json:"participants"`
	// Admins is an optional subset of Participants with management rights.
	Admins pq.StringArray `gorm:"type:text[]" json:"admins,omitempty"`
	// LastMessageID references the most recent message, if any.
	LastMessageID *string `json:"lastMessageId,omitempty"`
	// Unread is the per-chat unread counter. It lives in Redis, not in this
	// table, and is filled in when the chat is served.
	Unread    int64     `gorm:"-" json:"unread"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Chat) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// Validate checks the participant invariants for the chat type.
func (c *Chat) Validate() error {
	if c.Name == "" {
		return ErrChatNameRequired
	}
	switch c.Type {
	case ChatTypePrivate:
		if len(c.Participants) != 2 {
			return ErrPrivateParticipants
		}
	case ChatTypeGroup:
		if len(c.Participants) < 1 {
			return ErrGroupParticipants
		}
	default:
		return ErrInvalidChatType
	}
	return nil
}

// HasParticipant reports whether the given user belongs to the chat.
func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

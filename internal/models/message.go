package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Message types accepted on the wire. Anything else is rejected at the
// protocol boundary; "text" is the default when the client omits the field.
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeFile  = "file"
	MessageTypeAudio = "audio"
	MessageTypeVideo = "video"
)

// ErrMissingFields is returned when a message is missing one of the fields
// every persisted message must carry. Its text is the wire-level error string.
var ErrMissingFields = errors.New("Missing required fields")

// ErrInvalidType is returned when the type tag is not one of the known
// message types.
var ErrInvalidType = errors.New("Unknown message type")

// Message is a single chat message. The same struct is both the GORM record
// and the wire representation; the json tags are the canonical protocol field
// names and storage column naming never leaks past them.
type Message struct {
	// ID is assigned by the server on persistence (UUID). Clients may use a
	// temporary identifier for optimistic display but it is never stored.
	ID string `gorm:"primaryKey" json:"id"`
	// ChatID is the room that owns the message.
	ChatID string `gorm:"type:text;not null;index:idx_chat_msg" json:"chatId"`
	// SenderID identifies the author.
	SenderID string `gorm:"type:text;not null;index:idx_chat_msg" json:"senderId"`
	// Content is the message body (text, or a reference for media types).
	Content string `gorm:"type:text;not null" json:"content"`
	// Type is one of the MessageType constants.
	Type string `gorm:"type:text;not null" json:"type"`
	// CreatedAt is the server-assigned timestamp. Client-supplied timestamps
	// are never trusted for ordering.
	CreatedAt time.Time `json:"createdAt"`
	// IsRead marks the message as read in the owning chat.
	IsRead bool `json:"isRead"`
	// ReadBy lists the users who have read the message.
	ReadBy pq.StringArray `gorm:"type:text[]" json:"readBy,omitempty"`
	// ReplyTo references the ID of the message being replied to.
	ReplyTo *string `gorm:"index" json:"replyTo,omitempty"`
	// EditedAt is set when the content is edited after persistence.
	EditedAt *time.Time `json:"editedAt,omitempty"`
}

// BeforeCreate assigns a UUID when the record has no ID yet.
func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

// Validate checks the invariants every persisted message must satisfy:
// non-empty chat, sender and content, and a known type tag. An empty type
// is allowed here; callers default it to text.
func (m *Message) Validate() error {
	if m.ChatID == "" || m.SenderID == "" || m.Content == "" {
		return ErrMissingFields
	}
	if m.Type != "" && !ValidType(m.Type) {
		return ErrInvalidType
	}
	return nil
}

// ValidType reports whether the type tag is one of the known message types.
func ValidType(t string) bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeFile, MessageTypeAudio, MessageTypeVideo:
		return true
	}
	return false
}

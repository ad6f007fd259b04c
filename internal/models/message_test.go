package models_test

import (
	"testing"

	"chatline/backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMessageBeforeCreate_GeneratesUUID(t *testing.T) {
	msg := &models.Message{
		ChatID:   "chat_42",
		SenderID: "u1",
		Content:  "hello",
		Type:     models.MessageTypeText,
	}
	assert.Empty(t, msg.ID)

	err := msg.BeforeCreate(nil)

	assert.NoError(t, err)
	parsed, parseErr := uuid.Parse(msg.ID)
	assert.NoError(t, parseErr, "message ID must be a valid UUID string")
	assert.NotEqual(t, uuid.Nil, parsed)
}

func TestMessageBeforeCreate_PreservesExistingID(t *testing.T) {
	existing := uuid.New().String()
	msg := &models.Message{ID: existing}

	err := msg.BeforeCreate(nil)

	assert.NoError(t, err)
	assert.Equal(t, existing, msg.ID)
}

func TestMessageValidate(t *testing.T) {
	tests := []struct {
		name    string
		msg     models.Message
		wantErr error
	}{
		{
			name: "complete message",
			msg:  models.Message{ChatID: "chat_42", SenderID: "u1", Content: "hi"},
		},
		{
			name:    "missing chat",
			msg:     models.Message{SenderID: "u1", Content: "hi"},
			wantErr: models.ErrMissingFields,
		},
		{
			name:    "missing sender",
			msg:     models.Message{ChatID: "chat_42", Content: "hi"},
			wantErr: models.ErrMissingFields,
		},
		{
			name:    "empty content",
			msg:     models.Message{ChatID: "chat_42", SenderID: "u1", Content: ""},
			wantErr: models.ErrMissingFields,
		},
		{
			name:    "unknown type",
			msg:     models.Message{ChatID: "chat_42", SenderID: "u1", Content: "hi", Type: "sticker"},
			wantErr: models.ErrInvalidType,
		},
		{
			name: "empty type deferred to defaulting",
			msg:  models.Message{ChatID: "chat_42", SenderID: "u1", Content: "hi", Type: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidType(t *testing.T) {
	for _, typ := range []string{"text", "image", "file", "audio", "video"} {
		assert.True(t, models.ValidType(typ), typ)
	}
	assert.False(t, models.ValidType("sticker"))
	assert.False(t, models.ValidType(""))
}

// Package chatstate is the client-side half of the realtime protocol: a
// single observable store for chats and messages, and a websocket client
// that feeds it. The store supports optimistic insertion — a submitted
// message appears immediately under a temporary identifier and is
// reconciled against the server's acknowledgment and broadcast echo.
package chatstate

import (
	"strconv"
	"sync"
	"time"

	"chatline/backend/internal/models"
)

// Store holds the messages and chats visible to the UI. It is safe for
// concurrent use; every layer that needs chat state shares one Store and
// observes it through Subscribe.
type Store struct {
	mu       sync.RWMutex
	chats    map[string]models.Chat
	messages []models.Message
	pending  map[string]bool // temp IDs awaiting server confirmation
	subs     []func()
}

func NewStore() *Store {
	return &Store{
		chats:   make(map[string]models.Chat),
		pending: make(map[string]bool),
	}
}

// Subscribe registers a callback invoked after every store change.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.RLock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()
	for _, fn := range subs {
		fn()
	}
}

// SetChats replaces the chat list, e.g. after fetching it over REST.
func (s *Store) SetChats(chats []models.Chat) {
	s.mu.Lock()
	s.chats = make(map[string]models.Chat, len(chats))
	for _, c := range chats {
		s.chats[c.ID] = c
	}
	s.mu.Unlock()
	s.notify()
}

// Chats returns a snapshot of the chat list.
func (s *Store) Chats() []models.Chat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Chat, 0, len(s.chats))
	for _, c := range s.chats {
		out = append(out, c)
	}
	return out
}

// SetMessages replaces the visible message list, e.g. after loading a
// chat's history. Pending optimistic records are discarded with it.
func (s *Store) SetMessages(messages []models.Message) {
	s.mu.Lock()
	s.messages = append([]models.Message(nil), messages...)
	s.pending = make(map[string]bool)
	s.mu.Unlock()
	s.notify()
}

// Messages returns a snapshot of the visible message list.
func (s *Store) Messages() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Message(nil), s.messages...)
}

// HasMessage reports whether a message with the given ID is displayed.
func (s *Store) HasMessage(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.messages {
		if s.messages[i].ID == id {
			return true
		}
	}
	return false
}

// AddPending inserts an optimistic local record and returns its temporary
// identifier. The record is displayed immediately and later superseded by
// Resolve, removed by Fail, or matched by an incoming broadcast.
func (s *Store) AddPending(chatID, senderID, content string) string {
	tempID := "tmp-" + strconv.FormatInt(time.Now().UnixNano(), 10)
	s.mu.Lock()
	s.messages = append(s.messages, models.Message{
		ID:        tempID,
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   content,
		Type:      models.MessageTypeText,
		CreatedAt: time.Now(),
	})
	s.pending[tempID] = true
	s.mu.Unlock()
	s.notify()
	return tempID
}

// Resolve replaces the pending record with the server-confirmed one. When
// the broadcast echo already claimed the pending record (it may arrive
// before the acknowledgment), Resolve degrades to ApplyIncoming and the
// duplicate is dropped by ID.
func (s *Store) Resolve(tempID string, persisted models.Message) {
	s.mu.Lock()
	if s.pending[tempID] {
		delete(s.pending, tempID)
		for i := range s.messages {
			if s.messages[i].ID == tempID {
				s.messages[i] = persisted
				s.mu.Unlock()
				s.notify()
				return
			}
		}
	}
	s.mu.Unlock()
	s.ApplyIncoming(persisted)
}

// Fail removes the pending record by its temporary identifier, rolling back
// the optimistic insertion.
func (s *Store) Fail(tempID string) {
	s.mu.Lock()
	delete(s.pending, tempID)
	for i := range s.messages {
		if s.messages[i].ID == tempID {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

// ApplyIncoming folds a broadcast message into the list. Deduplication is
// keyed on the server-assigned ID. A broadcast that is the echo of one of
// our own pending sends — same chat, sender and content — claims the oldest
// matching pending record instead of appending a duplicate.
func (s *Store) ApplyIncoming(msg models.Message) {
	s.mu.Lock()
	for i := range s.messages {
		if s.messages[i].ID == msg.ID {
			s.mu.Unlock()
			return
		}
	}
	for i := range s.messages {
		if s.pending[s.messages[i].ID] &&
			s.messages[i].ChatID == msg.ChatID &&
			s.messages[i].SenderID == msg.SenderID &&
			s.messages[i].Content == msg.Content {
			delete(s.pending, s.messages[i].ID)
			s.messages[i] = msg
			s.mu.Unlock()
			s.notify()
			return
		}
	}
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
	s.notify()
}

// UpdateLastMessage records the newest message on its chat.
func (s *Store) UpdateLastMessage(chatID string, msg models.Message) {
	s.mu.Lock()
	if chat, ok := s.chats[chatID]; ok {
		id := msg.ID
		chat.LastMessageID = &id
		s.chats[chatID] = chat
	}
	s.mu.Unlock()
	s.notify()
}

// IncreaseUnread bumps the unread counter of a chat.
func (s *Store) IncreaseUnread(chatID string) {
	s.mu.Lock()
	if chat, ok := s.chats[chatID]; ok {
		chat.Unread++
		s.chats[chatID] = chat
	}
	s.mu.Unlock()
	s.notify()
}

// ResetUnread clears the unread counter of a chat.
func (s *Store) ResetUnread(chatID string) {
	s.mu.Lock()
	if chat, ok := s.chats[chatID]; ok {
		chat.Unread = 0
		s.chats[chatID] = chat
	}
	s.mu.Unlock()
	s.notify()
}

package chathub_test

import (
	"chatline/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a mock implementation of the storage.Storage interface,
// built on testify/mock so tests can set expectations per call.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) CreateMessage(msg *models.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) GetMessages(chatID string) ([]models.Message, error) {
	args := m.Called(chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockStorage) MarkMessageRead(chatID, messageID, readerID string) error {
	args := m.Called(chatID, messageID, readerID)
	return args.Error(0)
}

func (m *MockStorage) EditMessage(chatID, messageID, content string) (*models.Message, error) {
	args := m.Called(chatID, messageID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockStorage) DeleteMessage(messageID string) (*models.Message, error) {
	args := m.Called(messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockStorage) GetUnreadMessages(chatID string) ([]models.Message, error) {
	args := m.Called(chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockStorage) CreateChat(chat *models.Chat) error {
	args := m.Called(chat)
	return args.Error(0)
}

func (m *MockStorage) GetChatByID(chatID string) (*models.Chat, error) {
	args := m.Called(chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *MockStorage) GetChatsForUser(userID string) ([]models.Chat, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Chat), args.Error(1)
}

func (m *MockStorage) DeleteChat(chatID string) error {
	args := m.Called(chatID)
	return args.Error(0)
}

func (m *MockStorage) IncrementUnread(chatID string) error {
	args := m.Called(chatID)
	return args.Error(0)
}

func (m *MockStorage) GetUnreadCount(chatID string) (int64, error) {
	args := m.Called(chatID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) ResetUnread(chatID string) error {
	args := m.Called(chatID)
	return args.Error(0)
}

// fakeClient is a test double for the chathub.Client interface backed by a
// buffered channel.
type fakeClient struct {
	handle string
	userID string
	send   chan models.ServerEvent
}

func newFakeClient(handle string) *fakeClient {
	return &fakeClient{
		handle: handle,
		userID: "user-" + handle,
		send:   make(chan models.ServerEvent, 16),
	}
}

// newStalledClient has no send buffer, so any delivery attempt stalls.
func newStalledClient(handle string) *fakeClient {
	return &fakeClient{
		handle: handle,
		userID: "user-" + handle,
		send:   make(chan models.ServerEvent),
	}
}

func (c *fakeClient) GetHandle() string                         { return c.handle }
func (c *fakeClient) GetUserID() string                         { return c.userID }
func (c *fakeClient) GetSendChannel() chan<- models.ServerEvent { return c.send }
func (c *fakeClient) Run()                                      {}
func (c *fakeClient) Close()                                    { close(c.send) }

// drain returns the frames buffered so far without blocking.
func (c *fakeClient) drain() []models.ServerEvent {
	var events []models.ServerEvent
	for {
		select {
		case ev, ok := <-c.send:
			if !ok {
				return events
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}

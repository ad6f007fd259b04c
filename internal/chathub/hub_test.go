package chathub_test

import (
	"errors"
	"testing"
	"time"

	"chatline/backend/internal/chathub"
	"chatline/backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// waitEvent blocks until the client receives its next frame.
func waitEvent(t *testing.T, c *fakeClient) models.ServerEvent {
	t.Helper()
	select {
	case ev := <-c.send:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return models.ServerEvent{}
	}
}

// persistingMock returns a MockStorage whose CreateMessage assigns a server
// ID and timestamp, the way the real gateway does.
func persistingMock() *MockStorage {
	storageMock := new(MockStorage)
	storageMock.On("CreateMessage", mock.AnythingOfType("*models.Message")).
		Run(func(args mock.Arguments) {
			msg := args.Get(0).(*models.Message)
			msg.ID = uuid.New().String()
			msg.CreatedAt = time.Now().UTC()
		}).
		Return(nil)
	storageMock.On("GetMessages", mock.AnythingOfType("string")).
		Return([]models.Message{}, nil)
	return storageMock
}

func startHub(s *MockStorage) *chathub.Hub {
	hub := chathub.NewHub(s)
	go hub.Run()
	return hub
}

func TestHub_JoinRoomAcks(t *testing.T) {
	hub := startHub(persistingMock())
	client := newFakeClient("a")

	hub.RegisterCh <- client
	hub.JoinCh <- chathub.RoomRequest{Client: client, ChatID: "chat_42", AckID: "req-1"}

	ev := waitEvent(t, client)
	assert.Equal(t, models.EventAck, ev.Event)
	assert.Equal(t, "req-1", ev.AckID)
	assert.True(t, ev.Ack.Success)
	assert.Empty(t, ev.Ack.Error)
}

func TestHub_JoinRoomRequiresRoomID(t *testing.T) {
	hub := startHub(persistingMock())
	client := newFakeClient("a")

	hub.RegisterCh <- client
	hub.JoinCh <- chathub.RoomRequest{Client: client, ChatID: "", AckID: "req-1"}

	ev := waitEvent(t, client)
	assert.Equal(t, models.EventAck, ev.Event)
	assert.False(t, ev.Ack.Success)
	assert.Equal(t, "Room ID required", ev.Ack.Error)
}

func TestHub_JoinWithoutAckIDStaysSilent(t *testing.T) {
	hub := startHub(persistingMock())
	clientA := newFakeClient("a")
	clientB := newFakeClient("b")

	hub.RegisterCh <- clientA
	hub.RegisterCh <- clientB
	hub.JoinCh <- chathub.RoomRequest{Client: clientA, ChatID: "chat_42"}
	hub.JoinCh <- chathub.RoomRequest{Client: clientB, ChatID: "chat_42", AckID: "sync"}
	waitEvent(t, clientB)

	// The join took effect even though no ack was requested.
	hub.SendCh <- chathub.SendRequest{
		Client: clientB, ChatID: "chat_42", SenderID: "u2", Content: "hi",
	}
	ev := waitEvent(t, clientA)
	assert.Equal(t, models.EventNewMessage, ev.Event)
	assert.Empty(t, clientA.drain(), "no ack frame should follow for an ack-less join")
}

// Joining twice must leave membership as if joined once: a broadcast
// arrives exactly one time.
func TestHub_JoinTwiceDeliversOnce(t *testing.T) {
	hub := startHub(persistingMock())
	clientA := newFakeClient("a")
	clientB := newFakeClient("b")

	hub.RegisterCh <- clientA
	hub.RegisterCh <- clientB
	hub.JoinCh <- chathub.RoomRequest{Client: clientA, ChatID: "chat_7", AckID: "j1"}
	hub.JoinCh <- chathub.RoomRequest{Client: clientA, ChatID: "chat_7", AckID: "j2"}
	hub.JoinCh <- chathub.RoomRequest{Client: clientB, ChatID: "chat_7", AckID: "j3"}
	waitEvent(t, clientA)
	waitEvent(t, clientA)
	waitEvent(t, clientB)

	hub.SendCh <- chathub.SendRequest{
		Client: clientB, AckID: "s1", ChatID: "chat_7", SenderID: "u2", Content: "hello",
	}
	waitEvent(t, clientB) // broadcast echo
	waitEvent(t, clientB) // ack

	ev := waitEvent(t, clientA)
	assert.Equal(t, models.EventNewMessage, ev.Event)
	assert.Empty(t, clientA.drain(), "duplicate join must not duplicate delivery")
}

func TestHub_SendMessagePersistsBroadcastsAndAcks(t *testing.T) {
	storageMock := persistingMock()
	hub := startHub(storageMock)
	clientA := newFakeClient("a")
	clientB := newFakeClient("b")

	hub.RegisterCh <- clientA
	hub.RegisterCh <- clientB
	hub.JoinCh <- chathub.RoomRequest{Client: clientA, ChatID: "chat_42", AckID: "j1"}
	hub.JoinCh <- chathub.RoomRequest{Client: clientB, ChatID: "chat_42", AckID: "j2"}
	waitEvent(t, clientA)
	waitEvent(t, clientB)

	hub.SendCh <- chathub.SendRequest{
		Client: clientA, AckID: "s1", ChatID: "chat_42", SenderID: "u1", Content: "hi",
	}

	// The sender gets the broadcast echo first, then the ack.
	echo := waitEvent(t, clientA)
	assert.Equal(t, models.EventNewMessage, echo.Event)
	assert.NotEmpty(t, echo.Message.ID, "broadcast must carry the server-assigned ID")
	assert.Equal(t, "hi", echo.Message.Content)
	assert.Equal(t, models.MessageTypeText, echo.Message.Type, "type defaults to text")
	assert.False(t, echo.Message.CreatedAt.IsZero(), "server assigns the timestamp")

	ack := waitEvent(t, clientA)
	assert.Equal(t, models.EventAck, ack.Event)
	assert.Equal(t, "s1", ack.AckID)
	assert.True(t, ack.Ack.Success)
	assert.Equal(t, echo.Message.ID, ack.Ack.Message.ID)

	// The other member gets the same broadcast and nothing else.
	got := waitEvent(t, clientB)
	assert.Equal(t, models.EventNewMessage, got.Event)
	assert.Equal(t, echo.Message.ID, got.Message.ID)
	assert.Empty(t, clientB.drain())

	storageMock.AssertCalled(t, "CreateMessage", mock.AnythingOfType("*models.Message"))
	assert.Empty(t, clientA.drain(), "exactly one ack per request")
}

// A send missing a required field is never persisted and never broadcast;
// the originator alone sees the error event plus the failure ack.
func TestHub_SendMessageValidationGate(t *testing.T) {
	storageMock := persistingMock()
	hub := startHub(storageMock)
	clientA := newFakeClient("a")
	clientB := newFakeClient("b")

	hub.RegisterCh <- clientA
	hub.RegisterCh <- clientB
	hub.JoinCh <- chathub.RoomRequest{Client: clientA, ChatID: "chat_42", AckID: "j1"}
	hub.JoinCh <- chathub.RoomRequest{Client: clientB, ChatID: "chat_42", AckID: "j2"}
	waitEvent(t, clientA)
	waitEvent(t, clientB)

	hub.SendCh <- chathub.SendRequest{
		Client: clientA, AckID: "s1", ChatID: "chat_42", SenderID: "u1", Content: "",
	}

	errEv := waitEvent(t, clientA)
	assert.Equal(t, models.EventError, errEv.Event)
	assert.Equal(t, "Missing required fields", errEv.Error)

	ack := waitEvent(t, clientA)
	assert.Equal(t, models.EventAck, ack.Event)
	assert.False(t, ack.Ack.Success)
	assert.Equal(t, "Missing required fields", ack.Ack.Error)

	storageMock.AssertNotCalled(t, "CreateMessage", mock.Anything)
	assert.Empty(t, clientB.drain(), "a rejected send must not reach the room")
}

func TestHub_SendMessagePersistenceFailure(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("CreateMessage", mock.AnythingOfType("*models.Message")).
		Return(errors.New("store unavailable"))
	storageMock.On("GetMessages", mock.AnythingOfType("string")).
		Return([]models.Message{}, nil)
	hub := startHub(storageMock)
	clientA := newFakeClient("a")
	clientB := newFakeClient("b")

	hub.RegisterCh <- clientA
	hub.RegisterCh <- clientB
	hub.JoinCh <- chathub.RoomRequest{Client: clientA, ChatID: "chat_42", AckID: "j1"}
	hub.JoinCh <- chathub.RoomRequest{Client: clientB, ChatID: "chat_42", AckID: "j2"}
	waitEvent(t, clientA)
	waitEvent(t, clientB)

	hub.SendCh <- chathub.SendRequest{
		Client: clientA, AckID: "s1", ChatID: "chat_42", SenderID: "u1", Content: "hi",
	}

	ack := waitEvent(t, clientA)
	assert.Equal(t, models.EventAck, ack.Event)
	assert.False(t, ack.Ack.Success)
	assert.Equal(t, "store unavailable", ack.Ack.Error)

	assert.Empty(t, clientB.drain(), "a failed persistence must not broadcast")
}

// For one chat, broadcasts leave in the order persistence completed.
func TestHub_BroadcastOrderFollowsPersistenceOrder(t *testing.T) {
	hub := startHub(persistingMock())
	clientA := newFakeClient("a")
	clientB := newFakeClient("b")

	hub.RegisterCh <- clientA
	hub.RegisterCh <- clientB
	hub.JoinCh <- chathub.RoomRequest{Client: clientB, ChatID: "chat_9", AckID: "j1"}
	waitEvent(t, clientB)

	hub.SendCh <- chathub.SendRequest{
		Client: clientA, ChatID: "chat_9", SenderID: "u1", Content: "first",
	}
	hub.SendCh <- chathub.SendRequest{
		Client: clientA, ChatID: "chat_9", SenderID: "u1", Content: "second",
	}

	first := waitEvent(t, clientB)
	second := waitEvent(t, clientB)
	assert.Equal(t, "first", first.Message.Content)
	assert.Equal(t, "second", second.Message.Content)
}

func TestHub_LeaveStopsDelivery(t *testing.T) {
	hub := startHub(persistingMock())
	clientA := newFakeClient("a")
	clientB := newFakeClient("b")

	hub.RegisterCh <- clientA
	hub.RegisterCh <- clientB
	hub.JoinCh <- chathub.RoomRequest{Client: clientA, ChatID: "chat_7", AckID: "j1"}
	hub.JoinCh <- chathub.RoomRequest{Client: clientB, ChatID: "chat_7", AckID: "j2"}
	waitEvent(t, clientA)
	waitEvent(t, clientB)

	hub.LeaveCh <- chathub.RoomRequest{Client: clientB, ChatID: "chat_7", AckID: "l1"}
	leaveAck := waitEvent(t, clientB)
	assert.True(t, leaveAck.Ack.Success)

	hub.SendCh <- chathub.SendRequest{
		Client: clientA, ChatID: "chat_7", SenderID: "u1", Content: "still here?",
	}
	waitEvent(t, clientA)
	assert.Empty(t, clientB.drain(), "a departed member must not receive broadcasts")
}

// Disconnect removes every room membership and the connection record, and
// is safe to repeat.
func TestHub_UnregisterIsIdempotent(t *testing.T) {
	hub := startHub(persistingMock())
	clientA := newFakeClient("a")
	clientB := newFakeClient("b")

	hub.RegisterCh <- clientA
	hub.RegisterCh <- clientB
	hub.JoinCh <- chathub.RoomRequest{Client: clientA, ChatID: "chat_7", AckID: "j1"}
	hub.JoinCh <- chathub.RoomRequest{Client: clientB, ChatID: "chat_7", AckID: "j2"}
	waitEvent(t, clientA)
	waitEvent(t, clientB)

	hub.UnregisterCh <- clientA
	hub.UnregisterCh <- clientA

	hub.SendCh <- chathub.SendRequest{
		Client: clientB, AckID: "s1", ChatID: "chat_7", SenderID: "u2", Content: "bye",
	}
	waitEvent(t, clientB) // broadcast echo
	waitEvent(t, clientB) // ack

	events := clientA.drain()
	assert.Empty(t, events, "a disconnected handle must receive nothing")
}

func TestHub_JoinReplaysHistoryToJoinerOnly(t *testing.T) {
	storageMock := new(MockStorage)
	history := []models.Message{
		{ID: "m1", ChatID: "chat_42", SenderID: "u1", Content: "older", Type: "text"},
		{ID: "m2", ChatID: "chat_42", SenderID: "u2", Content: "newer", Type: "text"},
	}
	storageMock.On("GetMessages", "chat_42").Return(history, nil)
	hub := startHub(storageMock)
	client := newFakeClient("a")

	hub.RegisterCh <- client
	hub.JoinCh <- chathub.RoomRequest{Client: client, ChatID: "chat_42", AckID: "j1"}

	ack := waitEvent(t, client)
	assert.Equal(t, models.EventAck, ack.Event)
	assert.True(t, ack.Ack.Success)

	first := waitEvent(t, client)
	second := waitEvent(t, client)
	assert.Equal(t, "m1", first.Message.ID)
	assert.Equal(t, "m2", second.Message.ID)
}

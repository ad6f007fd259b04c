package chathub

import (
	"log"

	"chatline/backend/internal/models"
	"chatline/backend/internal/storage"
)

// RoomRequest is a join-room or leave-room command from one client.
type RoomRequest struct {
	Client Client
	ChatID string
	// AckID is empty when the client did not ask for a completion signal.
	AckID string
}

// SendRequest is a send-message command from one client. The message fields
// are passed through as received; validation happens in the hub.
type SendRequest struct {
	Client   Client
	AckID    string
	ChatID   string
	SenderID string
	Content  string
	Type     string
}

// Hub is the single dispatcher for all realtime state: the connection
// registry (clients), the room membership map (rooms) and the message
// ingestion pipeline. All of it is owned by the one goroutine running Run(),
// so handlers never race and no locking is needed. Because persistence
// happens inside the loop, broadcasts for a chat leave in the order their
// persistence completed.
//
// Room membership is never written to durable storage: it evaporates on
// restart and clients must rejoin.
type Hub struct {
	clients map[string]Client // handle -> client
	rooms   *RoomRouter

	RegisterCh   chan Client
	UnregisterCh chan Client
	JoinCh       chan RoomRequest
	LeaveCh      chan RoomRequest
	SendCh       chan SendRequest

	Storage storage.Storage
}

func NewHub(s storage.Storage) *Hub {
	return &Hub{
		clients:      make(map[string]Client),
		rooms:        NewRoomRouter(),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		JoinCh:       make(chan RoomRequest),
		LeaveCh:      make(chan RoomRequest),
		SendCh:       make(chan SendRequest),
		Storage:      s,
	}
}

// Run is the hub's main loop. Start it once, as a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.RegisterCh:
			h.handleRegister(client)
		case client := <-h.UnregisterCh:
			h.handleUnregister(client)
		case req := <-h.JoinCh:
			h.handleJoin(req)
		case req := <-h.LeaveCh:
			h.handleLeave(req)
		case req := <-h.SendCh:
			h.handleSend(req)
		}
	}
}

func (h *Hub) handleRegister(client Client) {
	h.clients[client.GetHandle()] = client
	log.Printf("Client %s connected (user %s, %d active)",
		client.GetHandle(), client.GetUserID(), len(h.clients))
}

// handleUnregister drops all room memberships for the handle and removes
// the connection record. Safe to call again for an already-removed handle.
func (h *Hub) handleUnregister(client Client) {
	if _, ok := h.clients[client.GetHandle()]; !ok {
		return
	}
	h.rooms.DropAll(client)
	delete(h.clients, client.GetHandle())
	client.Close()
	log.Printf("Client %s disconnected (%d active)", client.GetHandle(), len(h.clients))
}

func (h *Hub) handleJoin(req RoomRequest) {
	if err := h.rooms.Join(req.Client, req.ChatID); err != nil {
		h.ack(req.Client, req.AckID, models.Ack{Success: false, Error: err.Error()})
		return
	}
	h.ack(req.Client, req.AckID, models.Ack{Success: true})
	h.replayHistory(req.Client, req.ChatID)
}

func (h *Hub) handleLeave(req RoomRequest) {
	if err := h.rooms.Leave(req.Client, req.ChatID); err != nil {
		h.ack(req.Client, req.AckID, models.Ack{Success: false, Error: err.Error()})
		return
	}
	h.ack(req.Client, req.AckID, models.Ack{Success: true})
}

// handleSend runs the ingestion pipeline for one send-message request:
// validate, persist, broadcast to the room, ack the sender. A validation or
// persistence failure is terminal: nothing is broadcast and the failure
// travels back only to the originator.
func (h *Hub) handleSend(req SendRequest) {
	msg := models.Message{
		ChatID:   req.ChatID,
		SenderID: req.SenderID,
		Content:  req.Content,
		Type:     req.Type,
	}
	if msg.Type == "" {
		msg.Type = models.MessageTypeText
	}

	if err := msg.Validate(); err != nil {
		h.deliver(req.Client, models.ServerEvent{Event: models.EventError, Error: err.Error()})
		h.ack(req.Client, req.AckID, models.Ack{Success: false, Error: err.Error()})
		return
	}

	if err := h.Storage.CreateMessage(&msg); err != nil {
		log.Printf("ERROR: Failed to persist message for chat %s: %v", msg.ChatID, err)
		h.ack(req.Client, req.AckID, models.Ack{Success: false, Error: err.Error()})
		return
	}

	h.broadcast(msg.ChatID, models.ServerEvent{Event: models.EventNewMessage, Message: &msg})
	h.ack(req.Client, req.AckID, models.Ack{Success: true, Message: &msg})
}

// replayHistory sends the room's stored messages to the client that just
// joined, and to no one else.
func (h *Hub) replayHistory(client Client, chatID string) {
	history, err := h.Storage.GetMessages(chatID)
	if err != nil {
		log.Printf("WARNING: Failed to load history for chat %s: %v", chatID, err)
		return
	}
	for i := range history {
		if !h.deliver(client, models.ServerEvent{Event: models.EventNewMessage, Message: &history[i]}) {
			return
		}
	}
}

// ack sends the completion signal for one request back to its originator.
// No AckID means the client declined a completion signal. Each terminal
// pipeline state calls ack once, which keeps the at-most-once guarantee.
func (h *Hub) ack(client Client, ackID string, ack models.Ack) {
	if ackID == "" {
		return
	}
	h.deliver(client, models.ServerEvent{Event: models.EventAck, AckID: ackID, Ack: &ack})
}

// deliver writes one frame to one client, dropping the client if its send
// buffer is full. A handle that is no longer registered is skipped; its
// send channel is already closed.
func (h *Hub) deliver(client Client, ev models.ServerEvent) bool {
	if _, ok := h.clients[client.GetHandle()]; !ok {
		return false
	}
	select {
	case client.GetSendChannel() <- ev:
		return true
	default:
		h.handleUnregister(client)
		return false
	}
}

func (h *Hub) broadcast(chatID string, ev models.ServerEvent) {
	for _, stalled := range h.rooms.Broadcast(chatID, ev) {
		h.handleUnregister(stalled)
	}
}

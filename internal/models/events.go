package models

// Wire event names. These are the protocol the client depends on and must
// not drift with storage-layer naming.
const (
	EventJoinRoom    = "join-room"
	EventLeaveRoom   = "leave-room"
	EventSendMessage = "send-message"
	EventNewMessage  = "new-message"
	EventAck         = "ack"
	EventError       = "error"
)

// ClientEvent is a single client-to-server frame. The fields beyond Event
// are a union over the mutating events: join-room and leave-room use ChatID
// only; send-message uses ChatID, SenderID, Content and Type.
type ClientEvent struct {
	Event string `json:"event"`
	// AckID, when non-empty, requests exactly one ack frame for this event.
	AckID    string `json:"ackId,omitempty"`
	ChatID   string `json:"chatId,omitempty"`
	SenderID string `json:"senderId,omitempty"`
	Content  string `json:"content,omitempty"`
	Type     string `json:"type,omitempty"`
}

// Ack is the per-request completion signal delivered only to the requester,
// independent of any broadcast.
type Ack struct {
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
	Message *Message `json:"message,omitempty"`
}

// ServerEvent is a single server-to-client frame: a new-message broadcast,
// an ack addressed to one requester, or an error notice.
type ServerEvent struct {
	Event   string   `json:"event"`
	AckID   string   `json:"ackId,omitempty"`
	Ack     *Ack     `json:"ack,omitempty"`
	Message *Message `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
}

package chatstate

import (
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"chatline/backend/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ErrAckTimeout is returned when the server did not acknowledge a request
// within the client's timeout. The request itself is not retracted: a send
// that already persisted stays persisted.
var ErrAckTimeout = errors.New("request timed out")

const defaultAckTimeout = 5 * time.Second

// Client is a websocket chat client. Every mutating request carries an ack
// identifier; the matching ack frame (or a timeout) completes the call.
// Broadcast frames are folded into the Store as they arrive.
type Client struct {
	UserID  string
	Timeout time.Duration

	conn  *websocket.Conn
	store *Store

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan models.Ack
}

// Dial connects to the chat endpoint with a bearer token and starts the
// read loop feeding the store.
func Dial(wsURL, token, userID string, store *Store) (*Client, error) {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		return nil, err
	}

	c := &Client{
		UserID:  userID,
		Timeout: defaultAckTimeout,
		conn:    conn,
		store:   store,
		pending: make(map[string]chan models.Ack),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	for {
		var ev models.ServerEvent
		if err := c.conn.ReadJSON(&ev); err != nil {
			c.failPending()
			return
		}

		switch ev.Event {
		case models.EventNewMessage:
			if ev.Message != nil {
				c.store.ApplyIncoming(*ev.Message)
				c.store.UpdateLastMessage(ev.Message.ChatID, *ev.Message)
			}
		case models.EventAck:
			c.mu.Lock()
			ch, ok := c.pending[ev.AckID]
			delete(c.pending, ev.AckID)
			c.mu.Unlock()
			if ok && ev.Ack != nil {
				ch <- *ev.Ack
			}
		case models.EventError:
			log.Printf("server error: %s", ev.Error)
		}
	}
}

// failPending unblocks every in-flight request after the connection drops.
func (c *Client) failPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, ch := range c.pending {
		ch <- models.Ack{Success: false, Error: "connection closed"}
		delete(c.pending, id)
	}
}

// request writes one frame and waits for its ack or the timeout.
func (c *Client) request(ev models.ClientEvent) (models.Ack, error) {
	ev.AckID = uuid.New().String()
	ch := make(chan models.Ack, 1)

	c.mu.Lock()
	c.pending[ev.AckID] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	err := c.conn.WriteJSON(ev)
	c.writeMu.Unlock()
	if err != nil {
		c.mu.Lock()
		delete(c.pending, ev.AckID)
		c.mu.Unlock()
		return models.Ack{}, err
	}

	select {
	case ack := <-ch:
		return ack, nil
	case <-time.After(c.Timeout):
		c.mu.Lock()
		delete(c.pending, ev.AckID)
		c.mu.Unlock()
		return models.Ack{}, ErrAckTimeout
	}
}

// JoinRoom subscribes this connection to a chat's broadcasts.
func (c *Client) JoinRoom(chatID string) error {
	ack, err := c.request(models.ClientEvent{Event: models.EventJoinRoom, ChatID: chatID})
	if err != nil {
		return err
	}
	if !ack.Success {
		return errors.New(ack.Error)
	}
	return nil
}

// LeaveRoom unsubscribes this connection from a chat's broadcasts.
func (c *Client) LeaveRoom(chatID string) error {
	ack, err := c.request(models.ClientEvent{Event: models.EventLeaveRoom, ChatID: chatID})
	if err != nil {
		return err
	}
	if !ack.Success {
		return errors.New(ack.Error)
	}
	return nil
}

// SendMessage submits a message with optimistic insertion: the text shows
// up in the store immediately and is reconciled when the ack arrives, or
// rolled back on failure or timeout.
func (c *Client) SendMessage(chatID, content string) (*models.Message, error) {
	tempID := c.store.AddPending(chatID, c.UserID, content)

	ack, err := c.request(models.ClientEvent{
		Event:    models.EventSendMessage,
		ChatID:   chatID,
		SenderID: c.UserID,
		Content:  content,
	})
	if err != nil {
		c.store.Fail(tempID)
		return nil, err
	}
	if !ack.Success {
		c.store.Fail(tempID)
		return nil, errors.New(ack.Error)
	}
	if ack.Message != nil {
		c.store.Resolve(tempID, *ack.Message)
	}
	return ack.Message, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

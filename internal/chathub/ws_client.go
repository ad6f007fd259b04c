package chathub

import (
	"encoding/json"
	"log"
	"time"

	"chatline/backend/internal/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// WebSocketClient implements the Client interface over a gorilla/websocket
// connection.
type WebSocketClient struct {
	Handle string
	UserID string
	Conn   *websocket.Conn
	Hub    *Hub
	Send   chan models.ServerEvent
}

func (c *WebSocketClient) GetHandle() string                         { return c.Handle }
func (c *WebSocketClient) GetUserID() string                         { return c.UserID }
func (c *WebSocketClient) GetSendChannel() chan<- models.ServerEvent { return c.Send }

// Run starts the read and write pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes the Send channel, which stops the write pump.
func (c *WebSocketClient) Close() {
	close(c.Send)
}

// readPump decodes inbound frames and routes them to the hub's channels.
// It owns the read side of the connection; on any read error it asks the
// hub to unregister the client.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.UnregisterCh <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error reading message: %v", err)
			}
			break
		}

		var ev models.ClientEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Printf("Error decoding frame from client %s: %v", c.Handle, err)
			continue
		}

		switch ev.Event {
		case models.EventJoinRoom:
			c.Hub.JoinCh <- RoomRequest{Client: c, ChatID: ev.ChatID, AckID: ev.AckID}
		case models.EventLeaveRoom:
			c.Hub.LeaveCh <- RoomRequest{Client: c, ChatID: ev.ChatID, AckID: ev.AckID}
		case models.EventSendMessage:
			c.Hub.SendCh <- SendRequest{
				Client:   c,
				AckID:    ev.AckID,
				ChatID:   ev.ChatID,
				SenderID: ev.SenderID,
				Content:  ev.Content,
				Type:     ev.Type,
			}
		default:
			log.Printf("Unknown event %q from client %s", ev.Event, c.Handle)
		}
	}
}

// writePump drains the Send channel into the connection and keeps the
// connection alive with pings.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed by the hub, close the WS connection.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(ev)
			if err != nil {
				log.Printf("Error encoding frame for client %s: %v", c.Handle, err)
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

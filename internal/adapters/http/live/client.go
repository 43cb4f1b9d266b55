package live

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/ballbyball/pkg/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings with this period; must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512

	sendBufferSize = 64
)

// Client is one websocket subscriber of a match.
type Client struct {
	ID      string
	MatchID string

	conn *websocket.Conn
	send chan Message
	hub  *Hub
	log  logger.Logger

	sendMu sync.Mutex
	closed bool

	mu               sync.Mutex
	connectedAt      time.Time
	messagesSent     int64
	messagesReceived int64
}

func newClient(id, matchID string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:          id,
		MatchID:     matchID,
		conn:        conn,
		send:        make(chan Message, sendBufferSize),
		hub:         hub,
		log:         hub.log,
		connectedAt: time.Now(),
	}
}

// readPump consumes client messages until the connection drops.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for ctx.Err() == nil {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn(ctx, "live client closed unexpectedly",
					logger.String("client_id", c.ID), logger.Error(err))
			}
			return
		}
		c.countReceived()
		c.handle(msg)
	}
}

// writePump delivers queued messages and keeps the connection alive.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.log.Debug(ctx, "live client write failed",
					logger.String("client_id", c.ID), logger.Error(err))
				return
			}
			c.countSent()

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// trySend queues msg without blocking and reports whether it fit.
func (c *Client) trySend(msg Message) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// closeSend ends the write pump; safe to call more than once.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) handle(msg ClientMessage) {
	switch msg.Type {
	case TypeHeartbeat:
		c.trySend(Message{Type: TypeHeartbeat, MatchID: c.MatchID, Payload: c.Stats(), Timestamp: time.Now()})
	default:
		c.trySend(Message{
			Type:      TypeError,
			MatchID:   c.MatchID,
			Payload:   ErrorPayload{Code: "unknown_message_type", Message: fmt.Sprintf("unknown message type: %q", msg.Type)},
			Timestamp: time.Now(),
		})
	}
}

// ClientStats describes one connection.
type ClientStats struct {
	ClientID         string    `json:"clientId"`
	ConnectedAt      time.Time `json:"connectedAt"`
	MessagesSent     int64     `json:"messagesSent"`
	MessagesReceived int64     `json:"messagesReceived"`
}

// Stats returns connection counters.
func (c *Client) Stats() ClientStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ClientStats{
		ClientID:         c.ID,
		ConnectedAt:      c.connectedAt,
		MessagesSent:     c.messagesSent,
		MessagesReceived: c.messagesReceived,
	}
}

func (c *Client) countSent() {
	c.mu.Lock()
	c.messagesSent++
	c.mu.Unlock()
}

func (c *Client) countReceived() {
	c.mu.Lock()
	c.messagesReceived++
	c.mu.Unlock()
}

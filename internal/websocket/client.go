package websocket

import (
	"context"
	"log"
	"time"

	"github.com/gorilla/websocket"
	"github.com/solace-app/solace/backend/internal/chat"
	"github.com/solace-app/solace/backend/internal/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 16 * 1024
)

// Client represents a single WebSocket connection bound to a resolved
// participant. It implements chat.Session: the coordinator delivers
// outbound events through Send and the read pump feeds inbound events back
// to the coordinator.
type Client struct {
	coordinator *chat.Coordinator

	// WebSocket connection
	conn *websocket.Conn

	// Buffered channel of outbound frames
	send chan []byte

	// Identity resolved at connect time
	participant *models.Participant
}

// NewClient creates a new Client instance.
func NewClient(coordinator *chat.Coordinator, conn *websocket.Conn, participant *models.Participant) *Client {
	return &Client{
		coordinator: coordinator,
		conn:        conn,
		send:        make(chan []byte, 256),
		participant: participant,
	}
}

// Participant returns the identity attached to this connection.
func (c *Client) Participant() *models.Participant {
	return c.participant
}

// Send queues an outbound event for delivery. It never blocks the caller:
// when the buffer is full the event is dropped and logged, the connection
// is on its way out anyway.
func (c *Client) Send(ev models.OutboundEvent) {
	data, err := ev.Encode()
	if err != nil {
		log.Printf("[WebSocket] Failed to encode %s event for %s: %v", ev.Type, c.participant.ID, err)
		return
	}

	select {
	case c.send <- data:
	default:
		log.Printf("[WebSocket] Dropping %s event for slow consumer %s", ev.Type, c.participant.ID)
	}
}

// ReadPump pumps events from the WebSocket connection to the coordinator.
// This runs in its own goroutine per client.
func (c *Client) ReadPump() {
	defer func() {
		c.coordinator.Disconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WebSocket] Read error from %s: %v", c.participant.ID, err)
			}
			break
		}
		c.handleFrame(raw)
	}
}

// handleFrame decodes and dispatches one inbound frame. A failure in any
// handler becomes an error event to this connection only; a panic is
// contained to the frame so the process never goes down with a connection.
func (c *Client) handleFrame(raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[WebSocket] Recovered handling frame from %s: %v", c.participant.ID, r)
			c.sendError("internal error")
		}
	}()

	ev, err := models.DecodeInbound(raw)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	ctx := context.Background()

	switch ev.Type {
	case models.EventJoinRoom:
		err = c.coordinator.JoinRoom(ctx, c, ev.Room)
	case models.EventLeaveRoom:
		err = c.coordinator.LeaveRoom(c, ev.Room)
	case models.EventTyping:
		err = c.coordinator.SetTyping(c, ev.Room, ev.IsTyping)
	case models.EventGroupMessage:
		err = c.coordinator.GroupMessage(ctx, c, ev.Room, ev.Content)
	case models.EventPrivateMessage:
		c.coordinator.PrivateMessage(c, ev.To, ev.Payload)
	}

	if err != nil {
		c.sendError(err.Error())
	}
}

// sendError surfaces a failure to this connection only.
func (c *Client) sendError(message string) {
	c.Send(models.OutboundEvent{
		Type:    models.EventError,
		Payload: models.ErrorPayload{Message: message},
	})
}

// WritePump pumps queued frames to the WebSocket connection.
// This runs in its own goroutine per client.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// Send each event as a separate WebSocket frame so clients can
			// parse them independently
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			// Flush any queued frames
			n := len(c.send)
			for i := 0; i < n; i++ {
				if err := c.conn.WriteMessage(websocket.TextMessage, <-c.send); err != nil {
					return
				}
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/CUknot/messenger_backend/chat"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 10000
)

// Client is a websocket connection between the hub and one browser tab.
// It implements chat.Conn.
type Client struct {
	id      chat.ConnectionID
	hub     *Hub
	conn    *websocket.Conn
	session *chat.Session
	log     *logrus.Entry

	ctx    context.Context
	cancel context.CancelFunc

	// send is closed exactly once, under mu, by Close
	mu     sync.RWMutex
	send   chan []byte
	closed bool
}

func newClient(hub *Hub, conn *websocket.Conn, sendBuffer int, log *logrus.Entry) *Client {
	id := chat.ConnectionID(uuid.NewString())
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		id:     id,
		hub:    hub,
		conn:   conn,
		log:    log.WithField("connection_id", id),
		ctx:    ctx,
		cancel: cancel,
		send:   make(chan []byte, sendBuffer),
	}
}

func (c *Client) ID() chat.ConnectionID {
	return c.id
}

// Send queues env for the write pump without blocking.
func (c *Client) Send(env chat.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return chat.ErrConnClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return chat.ErrSendQueueFull
	}
}

// Close stops the write pump, which sends a close frame and tears the connection down.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.cancel()
	close(c.send)
	return nil
}

// readPump pumps frames from the websocket connection to the session
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Warn("Unexpected close")
			}
			break
		}
		c.session.HandleFrame(c.ctx, frame)
	}
}

// writePump pumps queued envelopes to the websocket connection, one frame each
func (c *Client) writePump() {
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
				// The session closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.log.WithError(err).Debug("Write failed")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

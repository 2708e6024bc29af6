package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBuffer     = 256
)

// Client is one browser connection.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Hub  *Hub
	Send chan *Message

	session   string
	logger    *zap.Logger
	mu        sync.RWMutex
	closeOnce sync.Once
	closed    bool
	joined    chan struct{}
	joinOnce  sync.Once
}

// NewClient wraps conn. The client is watching sessionID once registered.
func NewClient(id string, conn *websocket.Conn, hub *Hub, sessionID string, logger *zap.Logger) *Client {
	return &Client{
		ID:      id,
		Conn:    conn,
		Hub:     hub,
		Send:    make(chan *Message, sendBuffer),
		session: sessionID,
		joined:  make(chan struct{}),
		logger:  logger.With(zap.String("client_id", id), zap.String("session_id", sessionID)),
	}
}

// GetSession returns the session the client watches.
func (c *Client) GetSession() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// Enqueue queues msg without blocking. Messages for a client whose buffer is
// full are dropped.
func (c *Client) Enqueue(msg *Message) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return false
	}
	select {
	case c.Send <- msg:
		return true
	default:
		c.logger.Warn("websocket send buffer full, dropping message", zap.String("type", msg.Type))
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.Send)
		c.mu.Unlock()
	})
}

// ReadPump reads messages from the connection until it fails, then
// unregisters the client unless the hub has already stopped.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.Hub.Unregister <- c:
		case <-c.Hub.Done():
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Debug("invalid websocket message", zap.Error(err))
			continue
		}
		msg.SessionID = c.GetSession()
		c.Hub.HandleMessage(c, &msg)
	}
}

// WritePump is the only writer of the connection. It returns when Send is
// closed or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(msg); err != nil {
				c.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

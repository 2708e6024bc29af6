package websocket

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Message is the envelope exchanged with browsers.
type Message struct {
	Type      string                 `json:"type"`
	SessionID string                 `json:"session_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// HandlerFunc handles an incoming message of one type.
type HandlerFunc func(client *Client, msg *Message)

// Hub tracks connected clients and the widget session each one watches.
type Hub struct {
	clients  map[string]*Client
	sessions map[string]map[string]*Client
	handlers map[string]HandlerFunc

	Register   chan *Client
	Unregister chan *Client

	stopped  chan struct{}
	stopOnce sync.Once

	mu sync.RWMutex
}

// NewHub creates a hub. Call Run to start processing.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		sessions:   make(map[string]map[string]*Client),
		handlers:   make(map[string]HandlerFunc),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		stopped:    make(chan struct{}),
	}
}

// Run processes registrations until stop is closed.
// A nil stop runs forever.
func (h *Hub) Run(stop ...<-chan struct{}) {
	var done <-chan struct{}
	if len(stop) > 0 {
		done = stop[0]
	}
	defer h.stopOnce.Do(func() { close(h.stopped) })

	for {
		select {
		case client := <-h.Register:
			h.register(client)
		case client := <-h.Unregister:
			h.unregister(client)
		case <-done:
			return
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.stopped
}

// Join registers client and waits until it receives session messages.
// It returns false when the hub has stopped.
func (h *Hub) Join(client *Client) bool {
	select {
	case h.Register <- client:
	case <-h.stopped:
		return false
	}
	select {
	case <-client.joined:
		return true
	case <-h.stopped:
		return false
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.clients[client.ID]; ok && existing != client {
		h.detach(existing)
		existing.close()
	}
	h.clients[client.ID] = client
	if s := client.GetSession(); s != "" {
		h.attach(client, s)
	}
	client.joinOnce.Do(func() { close(client.joined) })
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.clients[client.ID]; !ok || current != client {
		return
	}
	h.detach(client)
	delete(h.clients, client.ID)
	client.close()
}

// attach and detach expect h.mu to be held.
func (h *Hub) attach(client *Client, sessionID string) {
	members, ok := h.sessions[sessionID]
	if !ok {
		members = make(map[string]*Client)
		h.sessions[sessionID] = members
	}
	members[client.ID] = client
}

func (h *Hub) detach(client *Client) {
	sessionID := client.GetSession()
	if sessionID == "" {
		return
	}
	if members, ok := h.sessions[sessionID]; ok {
		delete(members, client.ID)
		if len(members) == 0 {
			delete(h.sessions, sessionID)
		}
	}
}

// RemoveSession disconnects every client watching sessionID.
func (h *Hub) RemoveSession(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, client := range h.sessions[sessionID] {
		delete(h.clients, id)
		client.close()
	}
	delete(h.sessions, sessionID)
}

// SendToSession queues msg for every client watching sessionID.
func (h *Hub) SendToSession(sessionID string, msg *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.sessions[sessionID] {
		client.Enqueue(msg)
	}
}

// SendToAll queues msg for every client.
func (h *Hub) SendToAll(msg *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		client.Enqueue(msg)
	}
}

// RegisterHandler sets the handler for incoming messages of msgType.
func (h *Hub) RegisterHandler(msgType string, handler HandlerFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[msgType] = handler
}

// HandleMessage dispatches an incoming message. Unknown types are dropped.
func (h *Hub) HandleMessage(client *Client, msg *Message) {
	h.mu.RLock()
	handler, ok := h.handlers[msg.Type]
	h.mu.RUnlock()

	if !ok {
		client.logger.Debug("unhandled websocket message")
		return
	}
	handler(client, msg)
}

// GetClientsInSession returns the clients watching sessionID.
func (h *Hub) GetClientsInSession(sessionID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*Client, 0, len(h.sessions[sessionID]))
	for _, c := range h.sessions[sessionID] {
		out = append(out, c)
	}
	return out
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetSessionCount returns the number of sessions with at least one client.
func (h *Hub) GetSessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// RegisterMetrics exports the client and session counts on reg.
func (h *Hub) RegisterMetrics(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "wastechat",
			Subsystem: "ws",
			Name:      "clients",
			Help:      "Open websocket connections.",
		}, func() float64 { return float64(h.GetClientCount()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "wastechat",
			Subsystem: "ws",
			Name:      "sessions",
			Help:      "Widget sessions with at least one open websocket.",
		}, func() float64 { return float64(h.GetSessionCount()) }),
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

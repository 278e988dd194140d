package websocket

import (
	"context"
	"sync"

	"flcs-chatbot-be/internal/pkg/logger"
)

// Hub tracks open chat connections by session so a reply reaches every tab
// of the same conversation.
type Hub struct {
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu     sync.RWMutex
	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[string][]*Client),
		logger:     log,
	}
}

// Run serves registrations until ctx is cancelled, then closes every
// connection's send channel.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Debug("HTTP", "Websocket client registered", map[string]interface{}{"session_id": client.SessionID})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.SessionID]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.SessionID]) == 0 {
		delete(h.clients, client.SessionID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, clients := range h.clients {
		for _, c := range clients {
			close(c.Send)
		}
		delete(h.clients, id)
	}
}

// Push delivers data to every connection of sessionID. A connection whose
// buffer is full misses the frame.
func (h *Hub) Push(sessionID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[sessionID] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("HTTP", "Websocket send buffer full, dropping frame", map[string]interface{}{"session_id": sessionID})
		}
	}
}

// deliver sends data to one connection if the hub still owns it. Send is
// only closed under the write lock, so holding the read lock keeps it open.
func (h *Hub) deliver(client *Client, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients[client.SessionID] {
		if c != client {
			continue
		}
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("HTTP", "Websocket send buffer full, dropping frame", map[string]interface{}{"session_id": client.SessionID})
		}
		return
	}
}

// Connections reports how many connections are open for sessionID.
func (h *Hub) Connections(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

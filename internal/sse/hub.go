// Package sse provides Server-Sent Events support for streaming live
// transcript updates to the browser. Clients subscribe per meeting; the
// recording session broadcasts to the "meeting:<id>:*" pattern.
package sse

import (
	"path/filepath"
	"sync"

	"github.com/meetscribe/meetscribe/internal/logger"
)

// Client represents a connected SSE client.
type Client struct {
	id     string
	events chan []byte
}

// NewClient creates a new SSE client.
func NewClient(id string) *Client {
	return &Client{
		id:     id,
		events: make(chan []byte, 256),
	}
}

// ID returns the client's unique identifier.
func (c *Client) ID() string { return c.id }

// Events returns the channel for receiving events.
func (c *Client) Events() <-chan []byte { return c.events }

// Send sends data to the client's event channel. Returns false if the channel
// is full (client is too slow to keep up).
func (c *Client) Send(data []byte) bool {
	select {
	case c.events <- data:
		return true
	default:
		return false
	}
}

// Close closes the client's event channel.
func (c *Client) Close() {
	close(c.events)
}

// Message represents a message to broadcast.
type Message struct {
	Pattern string // Glob pattern for matching client IDs
	Data    []byte
}

// Hub manages SSE client connections and message broadcasting.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	done       chan struct{}
	stopped    bool
	mu         sync.RWMutex
	log        *logger.Logger
}

// NewHub creates a new SSE hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
		done:       make(chan struct{}),
		log:        log.WithComponent("sse"),
	}
}

// Run starts the hub's main event loop. It blocks until Stop is called and
// should be run in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAllClients()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			h.log.Debug("Client registered", map[string]interface{}{
				"client_id": client.id,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				client.Close()
			}
			h.mu.Unlock()
			h.log.Debug("Client unregistered", map[string]interface{}{
				"client_id": client.id,
			})

		case msg := <-h.broadcast:
			h.broadcastWithPattern(msg.Pattern, msg.Data)
		}
	}
}

// Stop signals the hub to shut down. Safe to call multiple times.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.stopped {
		h.stopped = true
		close(h.done)
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.clients {
		client.Close()
		delete(h.clients, id)
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastToPattern sends data to all clients matching the glob pattern
// (e.g. "meeting:abc123:*").
func (h *Hub) BroadcastToPattern(pattern string, data []byte) {
	h.broadcast <- &Message{Pattern: pattern, Data: data}
}

func (h *Hub) broadcastWithPattern(pattern string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for clientID, client := range h.clients {
		matched, err := filepath.Match(pattern, clientID)
		if err != nil {
			h.log.Error("Pattern match error", map[string]interface{}{
				"pattern": pattern,
				"error":   err.Error(),
			})
			continue
		}
		if matched && !client.Send(data) {
			h.log.Warn("Client channel full, dropping message", map[string]interface{}{
				"client_id": clientID,
			})
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

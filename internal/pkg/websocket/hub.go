package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Message types pushed to clients
const (
	MessageTypeInvalidate = "invalidate"
	MessageTypePong       = "pong"
)

// Message tells a client which cached namespaces to drop and re-fetch
type Message struct {
	Type       string    `json:"type"`
	Namespaces []string  `json:"namespaces,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// delivery addresses a message to one connection, to one user, or to everyone
// when neither is set
type delivery struct {
	client  *Client
	userID  string
	message *Message
}

// Hub tracks connected clients per user and pushes invalidation messages to them
type Hub struct {
	// Registered clients organized by user ID
	clients map[string]map[*Client]bool

	deliveries chan delivery
	register   chan *Client
	unregister chan *Client
	// closed when Run returns
	done chan struct{}

	// Guards clients for the read-only accessors
	mu sync.RWMutex

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		deliveries: make(chan delivery, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run handles registrations and deliveries until ctx is cancelled, then closes every client
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case d := <-h.deliveries:
			h.deliver(d)
		}
	}
}

// join and leave are no-ops once the hub has stopped
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

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	h.logger.Info().
		Str("userID", client.userID).
		Str("addr", client.remoteAddr()).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

// removeLocked drops a client; h.mu must be held for writing
func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.userID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}

	h.logger.Info().
		Str("userID", client.userID).
		Str("addr", client.remoteAddr()).
		Msg("Client unregistered")
}

func (h *Hub) deliver(d delivery) {
	data, err := json.Marshal(d.message)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal message for delivery")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var targets []*Client
	if d.client != nil {
		// the connection may have been dropped while the reply was queued
		if h.clients[d.client.userID][d.client] {
			targets = append(targets, d.client)
		}
	} else if d.userID != "" {
		for client := range h.clients[d.userID] {
			targets = append(targets, client)
		}
	} else {
		for _, clients := range h.clients {
			for client := range clients {
				targets = append(targets, client)
			}
		}
	}

	for _, client := range targets {
		select {
		case client.send <- data:
		default:
			// slow or gone; it re-fetches everything when it reconnects
			h.removeLocked(client)
		}
	}

	h.logger.Debug().
		Str("type", d.message.Type).
		Str("userID", d.userID).
		Strs("namespaces", d.message.Namespaces).
		Int("clientCount", len(targets)).
		Msg("Message delivered")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

func (h *Hub) enqueue(d delivery) {
	select {
	case h.deliveries <- d:
	default:
		h.logger.Warn().Str("userID", d.userID).Msg("Delivery queue full, dropping invalidation")
	}
}

// reply queues a pong for one connection. Only the hub writes to client.send.
func (h *Hub) reply(client *Client) {
	h.enqueue(delivery{client: client, message: &Message{Type: MessageTypePong, Timestamp: time.Now().UTC()}})
}

// NotifyUser tells every connection of userID to drop the given namespaces
func (h *Hub) NotifyUser(userID string, namespaces ...string) {
	if userID == "" {
		return
	}
	h.enqueue(delivery{userID: userID, message: newInvalidation(namespaces)})
}

// Broadcast tells every connected client to drop the given namespaces
func (h *Hub) Broadcast(namespaces ...string) {
	h.enqueue(delivery{message: newInvalidation(namespaces)})
}

func newInvalidation(namespaces []string) *Message {
	return &Message{Type: MessageTypeInvalidate, Namespaces: namespaces, Timestamp: time.Now().UTC()}
}

// ClientCount returns the number of open connections of userID
func (h *Hub) ClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// ConnectedUsers returns the number of users with at least one open connection
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

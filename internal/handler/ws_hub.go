package handler

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event types sent over WebSocket.
const (
	EventAnnouncement = "announcement"
	EventNotice       = "notice"
	EventConnected    = "connected"
)

// WSEvent is the envelope for all WebSocket messages.
type WSEvent struct {
	Type    string `json:"type"`
	Channel string `json:"channel,omitempty"`
	Data    any    `json:"data"`
}

// ClientMessage is the envelope for messages sent from the client.
type ClientMessage struct {
	Action  string `json:"action"` // "subscribe" or "unsubscribe"
	Channel string `json:"channel"`
}

// WSConn wraps a WebSocket connection with its player and subscriptions.
type WSConn struct {
	conn     *websocket.Conn
	playerID string
	send     chan []byte
}

// Hub manages WebSocket connections and channel subscriptions.
type Hub struct {
	mu          sync.RWMutex
	connections map[*WSConn]bool
	channels    map[string]map[*WSConn]bool // channel -> set of connections
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[*WSConn]bool),
		channels:    make(map[string]map[*WSConn]bool),
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = true
}

// Unregister removes a connection from the hub and all its subscriptions.
func (h *Hub) Unregister(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.connections, c)
	for channel, conns := range h.channels {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.channels, channel)
		}
	}
	close(c.send)
}

// Subscribe adds a connection to a channel.
func (h *Hub) Subscribe(c *WSConn, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.channels[channel] == nil {
		h.channels[channel] = make(map[*WSConn]bool)
	}
	h.channels[channel][c] = true
}

// Unsubscribe removes a connection from a channel.
func (h *Hub) Unsubscribe(c *WSConn, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.channels[channel]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.channels, channel)
		}
	}
}

// BroadcastToChannel sends an event to all connections subscribed to a
// channel.
func (h *Hub) BroadcastToChannel(channel string, event WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.channels[channel] {
		select {
		case c.send <- data:
		default:
			log.Warn().Str("playerId", c.playerID).Str("channel", channel).Msg("Dropping WebSocket message, buffer full")
		}
	}
}

// BroadcastToPlayer sends an event to a specific player across all their
// connections.
func (h *Hub) BroadcastToPlayer(playerID string, event WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("playerId", playerID).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.connections {
		if c.playerID == playerID {
			select {
			case c.send <- data:
			default:
			}
		}
	}
}

// ConnectionCount returns the total number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// ChannelSubscriberCount returns the number of connections subscribed to
// a channel.
func (h *Hub) ChannelSubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

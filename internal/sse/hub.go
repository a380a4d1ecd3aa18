package sse

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/arkham-companion/internal/metrics"
	"github.com/mcoot/arkham-companion/internal/model"
)

// Hub fans messages out to the SSE clients watching one game session
type Hub struct {
	session   model.GameSessionToken
	clients   map[*Client]bool
	mu        sync.RWMutex
	logger    *slog.Logger
	closeOnce sync.Once

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
}

// NewHub creates a new Hub for a game session
func NewHub(session model.GameSessionToken, logger *slog.Logger) *Hub {
	return &Hub{
		session:    session,
		clients:    make(map[*Client]bool),
		logger:     logger.With(slog.String("game_session", string(session))),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Debug("sse hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("sse client registered",
				slog.String("client", client.label),
				slog.Int("total_clients", clientCount))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				clientCount := len(h.clients)
				h.mu.Unlock()
				h.logger.Info("sse client unregistered",
					slog.String("client", client.label),
					slog.Duration("connection_duration", time.Since(client.connectedAt)),
					slog.Int("total_clients", clientCount))
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			h.deliver(message)

		case <-h.done:
			// flush what was queued before the close so a final event still goes out
			for pending := true; pending; {
				select {
				case message := <-h.broadcast:
					h.deliver(message)
				default:
					pending = false
				}
			}

			h.mu.Lock()
			clientCount := len(h.clients)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("sse hub stopped", slog.Int("disconnected_clients", clientCount))
			return
		}
	}
}

func (h *Hub) deliver(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	dropped := 0
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			dropped++
			h.logger.Warn("sse message dropped - client buffer full",
				slog.String("client", client.label))
		}
	}
	if dropped > 0 {
		metrics.NotificationsDropped.Add(float64(dropped))
	}
}

// Register adds a client to the hub. It reports false if the hub is already closed.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast sends a raw message to all clients
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		metrics.NotificationsDropped.Inc()
		h.logger.Warn("sse broadcast dropped - hub buffer full")
	}
}

// BroadcastEvent sends a named SSE event
func (h *Hub) BroadcastEvent(eventName, data string) {
	h.Broadcast(formatSSEMessage(eventName, data))
}

// Close shuts down the hub; it is safe to call more than once
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// formatSSEMessage prefixes every line of data with "data: "
func formatSSEMessage(eventName, data string) []byte {
	var b strings.Builder
	b.WriteString("event: ")
	b.WriteString(eventName)
	b.WriteByte('\n')
	for _, line := range splitLines(data) {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

// splitLines splits on LF, dropping CR and a trailing empty line
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// HubManager owns the hubs for all game sessions
type HubManager struct {
	hubs   map[model.GameSessionToken]*Hub
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.GameSessionToken]*Hub),
		logger: logger.With(slog.String("component", "sse")),
	}
}

// GetOrCreateHub returns the hub for a session, starting one if needed
func (m *HubManager) GetOrCreateHub(session model.GameSessionToken) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[session]; ok {
		return hub
	}

	hub := NewHub(session, m.logger)
	m.hubs[session] = hub
	go hub.Run()
	return hub
}

// GetHub returns the hub for a session, or nil if nobody is listening
func (m *HubManager) GetHub(session model.GameSessionToken) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[session]
}

// RemoveHub removes and closes a hub
func (m *HubManager) RemoveHub(session model.GameSessionToken) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[session]; ok {
		hub.Close()
		delete(m.hubs, session)
		m.logger.Info("sse hub removed", slog.String("game_session", string(session)))
	}
}

// CleanupEmptyHubs removes hubs with no clients
func (m *HubManager) CleanupEmptyHubs() {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for session, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			hub.Close()
			delete(m.hubs, session)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("sse empty hubs cleaned up", slog.Int("removed", removed))
	}
}

// HubCount returns the number of live hubs
func (m *HubManager) HubCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.hubs)
}

// CloseAll shuts every hub down
func (m *HubManager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for session, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, session)
	}
}

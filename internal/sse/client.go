package sse

import (
	"net/http"
	"time"

	"github.com/mcoot/arkham-companion/internal/model"
)

const (
	// Time between keepalive comments
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 64
)

// Client is one connected event stream
type Client struct {
	label       string
	send        chan []byte
	connectedAt time.Time
}

// NewClient creates a new SSE client; label identifies it in logs
func NewClient(label string) *Client {
	return &Client{
		label:       label,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// ServeSSE streams the session's events to the caller until it disconnects or the hub closes
func ServeSSE(w http.ResponseWriter, r *http.Request, manager *HubManager, session model.GameSessionToken, label string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	client := NewClient(label)
	var hub *Hub
	// a hub closed by the janitor between lookup and register is replaced on the next attempt
	for attempt := 0; attempt < 3 && hub == nil; attempt++ {
		candidate := manager.GetOrCreateHub(session)
		if candidate.Register(client) {
			hub = candidate
		}
	}
	if hub == nil {
		http.Error(w, "Stream unavailable", http.StatusServiceUnavailable)
		return
	}
	defer hub.Unregister(client)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	_, _ = w.Write(formatSSEMessage("connected", `{"data":{"game_session_token":"`+string(session)+`"}}`))
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				return
			}
			if _, err := w.Write(message); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

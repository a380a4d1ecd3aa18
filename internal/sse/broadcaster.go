package sse

import (
	"context"
	"log/slog"

	"github.com/mcoot/arkham-companion/internal/model"
	"github.com/mcoot/arkham-companion/internal/notify"
)

// Broadcaster delivers rendered notifications to local SSE hubs
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// Ensure Broadcaster is a notification sink
var _ notify.Sink = (*Broadcaster)(nil)

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// Deliver writes msg to the session's hub. Sessions nobody is watching are skipped.
// A session-closed event also shuts the hub down once the event is queued.
func (b *Broadcaster) Deliver(_ context.Context, msg notify.Message) {
	hub := b.hubManager.GetHub(msg.Session)
	if hub == nil {
		return
	}

	hub.BroadcastEvent(string(msg.Event), string(msg.Data))
	b.logger.Debug("sse event broadcast",
		slog.String("game_session", string(msg.Session)),
		slog.String("event", string(msg.Event)))

	if msg.Event == model.EventSessionClosed {
		b.hubManager.RemoveHub(msg.Session)
	}
}

package mocks

import (
	"context"
	"sync"

	"github.com/mcoot/arkham-companion/internal/model"
	"github.com/mcoot/arkham-companion/internal/notify"
)

// RecordedEvent is a notification captured by RecordingNotifier
type RecordedEvent struct {
	Type         model.EventType
	SessionToken model.GameSessionToken
	Phase        model.Phase
	Player       *model.Player
}

// RecordingNotifier captures notifications for assertions
type RecordingNotifier struct {
	mu     sync.Mutex
	Events []RecordedEvent
}

// Ensure RecordingNotifier implements Notifier
var _ notify.Notifier = (*RecordingNotifier)(nil)

// NewRecordingNotifier creates an empty RecordingNotifier
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

func (n *RecordingNotifier) PhaseChanged(_ context.Context, session *model.GameSession) {
	n.record(RecordedEvent{Type: model.EventPhaseChanged, SessionToken: session.Token, Phase: session.Phase})
}

func (n *RecordingNotifier) PlayerUpdated(_ context.Context, token model.GameSessionToken, player *model.Player) {
	n.record(RecordedEvent{Type: model.EventPlayerUpdated, SessionToken: token, Player: player})
}

func (n *RecordingNotifier) SessionClosed(_ context.Context, token model.GameSessionToken) {
	n.record(RecordedEvent{Type: model.EventSessionClosed, SessionToken: token})
}

func (n *RecordingNotifier) record(e RecordedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Events = append(n.Events, e)
}

// OfType returns the recorded events with the given type
func (n *RecordingNotifier) OfType(t model.EventType) []RecordedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []RecordedEvent
	for _, e := range n.Events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Reset clears recorded events
func (n *RecordingNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Events = nil
}

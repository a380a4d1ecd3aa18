package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mcoot/arkham-companion/internal/api/response"
	"github.com/mcoot/arkham-companion/internal/model"
)

// Notifier is what services call after a successful commit.
// Delivery is best effort; implementations never return errors.
type Notifier interface {
	PhaseChanged(ctx context.Context, session *model.GameSession)
	PlayerUpdated(ctx context.Context, token model.GameSessionToken, player *model.Player)
	SessionClosed(ctx context.Context, token model.GameSessionToken)
}

// Message is a rendered event addressed to one game session
type Message struct {
	Session model.GameSessionToken `json:"session"`
	Event   model.EventType        `json:"event"`
	Data    json.RawMessage        `json:"data"`
}

// Sink receives rendered messages
type Sink interface {
	Deliver(ctx context.Context, msg Message)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(ctx context.Context, msg Message)

func (f SinkFunc) Deliver(ctx context.Context, msg Message) {
	f(ctx, msg)
}

type phasePayload struct {
	GameSessionToken string `json:"game_session_token"`
	Phase            int    `json:"phase"`
}

type playerPayload struct {
	GameSessionToken string          `json:"game_session_token"`
	Player           response.Player `json:"player"`
}

type closedPayload struct {
	GameSessionToken string `json:"game_session_token"`
}

// PhaseChangedMessage renders a phase-changed event
func PhaseChangedMessage(session *model.GameSession) (Message, error) {
	return render(session.Token, model.EventPhaseChanged, phasePayload{
		GameSessionToken: string(session.Token),
		Phase:            int(session.Phase),
	})
}

// PlayerUpdatedMessage renders a player-updated event; the player's token is never included
func PlayerUpdatedMessage(token model.GameSessionToken, player *model.Player) (Message, error) {
	return render(token, model.EventPlayerUpdated, playerPayload{
		GameSessionToken: string(token),
		Player:           response.PlayerFromModel(player, response.PlayerPublic),
	})
}

// SessionClosedMessage renders a session-closed event
func SessionClosedMessage(token model.GameSessionToken) (Message, error) {
	return render(token, model.EventSessionClosed, closedPayload{GameSessionToken: string(token)})
}

func render(token model.GameSessionToken, event model.EventType, payload any) (Message, error) {
	data, err := json.Marshal(response.Envelope{Data: payload})
	if err != nil {
		return Message{}, err
	}
	return Message{Session: token, Event: event, Data: data}, nil
}

// Dispatcher renders events and fans them out to sinks
type Dispatcher struct {
	sinks  []Sink
	logger *slog.Logger
}

// Ensure Dispatcher implements Notifier
var _ Notifier = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher delivering to the given sinks
func NewDispatcher(logger *slog.Logger, sinks ...Sink) *Dispatcher {
	return &Dispatcher{
		sinks:  sinks,
		logger: logger.With("component", "notify"),
	}
}

func (d *Dispatcher) PhaseChanged(ctx context.Context, session *model.GameSession) {
	msg, err := PhaseChangedMessage(session)
	d.dispatch(ctx, msg, err)
}

func (d *Dispatcher) PlayerUpdated(ctx context.Context, token model.GameSessionToken, player *model.Player) {
	msg, err := PlayerUpdatedMessage(token, player)
	d.dispatch(ctx, msg, err)
}

func (d *Dispatcher) SessionClosed(ctx context.Context, token model.GameSessionToken) {
	msg, err := SessionClosedMessage(token)
	d.dispatch(ctx, msg, err)
}

func (d *Dispatcher) dispatch(ctx context.Context, msg Message, err error) {
	if err != nil {
		d.logger.Warn("failed to render notification", "error", err)
		return
	}
	for _, sink := range d.sinks {
		sink.Deliver(ctx, msg)
	}
}

// Nop discards every notification
type Nop struct{}

var _ Notifier = Nop{}

func (Nop) PhaseChanged(context.Context, *model.GameSession) {}
func (Nop) PlayerUpdated(context.Context, model.GameSessionToken, *model.Player) {}
func (Nop) SessionClosed(context.Context, model.GameSessionToken) {}

package model

// EventType identifies a push notification
type EventType string

const (
	EventPhaseChanged  EventType = "phase-changed"
	EventPlayerUpdated EventType = "player-updated"
	EventSessionClosed EventType = "session-closed"
)

package model

import "time"

// GameSessionID uniquely identifies a game session row
type GameSessionID uint

// GameSessionToken is the short human-entered code for joining a session
type GameSessionToken string

// Phase is the ordinal of a turn phase
type Phase int

const (
	PhaseUpkeep Phase = iota + 1
	PhaseMovement
	PhaseArkhamEncounters
	PhaseOtherWorldEncounters
	PhaseMythos
)

const (
	PhaseFirst   = PhaseUpkeep
	PhaseLast    = PhaseMythos
	PhaseDefault = PhaseArkhamEncounters
)

// Valid reports whether the phase is within range
func (p Phase) Valid() bool {
	return p >= PhaseFirst && p <= PhaseLast
}

// Next returns the following phase, clamped at the last one
func (p Phase) Next() Phase {
	if p >= PhaseLast {
		return PhaseLast
	}
	return p + 1
}

// Previous returns the preceding phase, clamped at the first one
func (p Phase) Previous() Phase {
	if p <= PhaseFirst {
		return PhaseFirst
	}
	return p - 1
}

// String returns the phase name
func (p Phase) String() string {
	switch p {
	case PhaseUpkeep:
		return "upkeep"
	case PhaseMovement:
		return "movement"
	case PhaseArkhamEncounters:
		return "arkham_encounters"
	case PhaseOtherWorldEncounters:
		return "other_world_encounters"
	case PhaseMythos:
		return "mythos"
	default:
		return "unknown"
	}
}

// GameSession is one table playing together
type GameSession struct {
	ID        GameSessionID
	Token     GameSessionToken
	Phase     Phase
	Players   []*Player
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Host returns the current host player, or nil if none
func (s *GameSession) Host() *Player {
	for _, p := range s.Players {
		if p.Role == PlayerRoleHost {
			return p
		}
	}
	return nil
}

// PlayerByUser returns the player owned by the user, or nil if not found
func (s *GameSession) PlayerByUser(userID UserID) *Player {
	for _, p := range s.Players {
		if p.UserID != nil && *p.UserID == userID {
			return p
		}
	}
	return nil
}

// PlayerByID returns the player with the given ID, or nil if not found
func (s *GameSession) PlayerByID(id PlayerID) *Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// CharactersInUse returns the characters held by players other than except
func (s *GameSession) CharactersInUse(except PlayerID) map[CharacterID]bool {
	used := make(map[CharacterID]bool, len(s.Players))
	for _, p := range s.Players {
		if p.ID == except || p.CharacterID == nil {
			continue
		}
		used[*p.CharacterID] = true
	}
	return used
}

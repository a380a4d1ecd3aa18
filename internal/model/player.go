package model

import "time"

// PlayerID uniquely identifies a player row
type PlayerID uint

// PlayerToken is the per-player bearer credential within a session
type PlayerToken string

// PlayerRole distinguishes the host from other players
type PlayerRole string

const (
	PlayerRoleHost   PlayerRole = "HOST"
	PlayerRolePlayer PlayerRole = "PLAYER"
)

// PlayerStatus is the mutable state bounded by the character's maximums
type PlayerStatus struct {
	Sanity    int `json:"sanity"`
	Endurance int `json:"endurance"`
}

// PlayerEquipment is the player's current money and clues
type PlayerEquipment struct {
	Money int `json:"money"`
	Clues int `json:"clues"`
}

// PlayerStatistics are cumulative counters for a single player
type PlayerStatistics struct {
	MoneyAcquired     int `json:"money_acquired"`
	MoneyLost         int `json:"money_lost"`
	CluesAcquired     int `json:"clues_acquired"`
	CluesLost         int `json:"clues_lost"`
	EnduranceAcquired int `json:"endurance_acquired"`
	EnduranceLost     int `json:"endurance_lost"`
	SanityAcquired    int `json:"sanity_acquired"`
	SanityLost        int `json:"sanity_lost"`
	CardsAcquired     int `json:"cards_acquired"`
	CardsLost         int `json:"cards_lost"`
	PhasesPlayed      int `json:"phases_played"`
	CharactersPlayed  int `json:"characters_played"`
}

// Player is a seat in a game session
type Player struct {
	ID               PlayerID
	Token            PlayerToken
	Role             PlayerRole
	Status           PlayerStatus
	Equipment        PlayerEquipment
	Statistics       PlayerStatistics
	UserID           *UserID
	User             *User
	CharacterID      *CharacterID
	Character        *Character
	GameSessionID    GameSessionID
	GameSessionToken GameSessionToken
	Cards            []CardQuantity
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsHost reports whether the player holds the host role
func (p *Player) IsHost() bool {
	return p.Role == PlayerRoleHost
}

// CardCount returns the number of card units held
func (p *Player) CardCount() int {
	total := 0
	for _, c := range p.Cards {
		total += c.Quantity
	}
	return total
}

// StatusUpdate carries optional new status values
type StatusUpdate struct {
	Sanity    *int
	Endurance *int
}

// EquipmentUpdate carries optional new equipment values
type EquipmentUpdate struct {
	Money *int
	Clues *int
}

// StatisticsUpdate carries optional explicit counter overrides
type StatisticsUpdate struct {
	PhasesPlayed     *int
	CharactersPlayed *int
}

// PlayerUpdate is a partial update to a player's mutable state
type PlayerUpdate struct {
	Status     *StatusUpdate
	Equipment  *EquipmentUpdate
	Statistics *StatisticsUpdate
}

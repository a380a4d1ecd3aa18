package request

import "github.com/mcoot/arkham-companion/internal/model"

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyRequest is the request body for verifying an email
type VerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required"`
}

// RemindPasswordRequest is the request body for a password reminder
type RemindPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// CardIDsRequest lists card ids; an id may repeat
type CardIDsRequest struct {
	CardIDs []model.CardID `json:"card_ids" validate:"required,min=1"`
}

// StatusRequest sets the player's status
type StatusRequest struct {
	Sanity    *int `json:"sanity" validate:"omitempty,min=0"`
	Endurance *int `json:"endurance" validate:"omitempty,min=0"`
}

// EquipmentRequest sets the player's equipment
type EquipmentRequest struct {
	Money *int `json:"money" validate:"omitempty,min=0"`
	Clues *int `json:"clues" validate:"omitempty,min=0"`
}

// StatisticsRequest overrides the player's phase and character counters
type StatisticsRequest struct {
	PhasesPlayed     *int `json:"phases_played" validate:"omitempty,min=0"`
	CharactersPlayed *int `json:"characters_played" validate:"omitempty,min=0"`
}

// PlayerUpdateRequest is the request body for updating the caller's player
type PlayerUpdateRequest struct {
	Status     *StatusRequest     `json:"status"`
	Equipment  *EquipmentRequest  `json:"equipment"`
	Statistics *StatisticsRequest `json:"statistics"`
}

// ToModel converts the request to a model.PlayerUpdate
func (r PlayerUpdateRequest) ToModel() model.PlayerUpdate {
	var update model.PlayerUpdate
	if s := r.Status; s != nil {
		update.Status = &model.StatusUpdate{Sanity: s.Sanity, Endurance: s.Endurance}
	}
	if e := r.Equipment; e != nil {
		update.Equipment = &model.EquipmentUpdate{Money: e.Money, Clues: e.Clues}
	}
	if s := r.Statistics; s != nil {
		update.Statistics = &model.StatisticsUpdate{PhasesPlayed: s.PhasesPlayed, CharactersPlayed: s.CharactersPlayed}
	}
	return update
}

package handler

import (
	"context"
	"net/http"

	"github.com/mcoot/arkham-companion/internal/api/middleware"
	"github.com/mcoot/arkham-companion/internal/api/request"
	"github.com/mcoot/arkham-companion/internal/api/response"
	"github.com/mcoot/arkham-companion/internal/model"
	"github.com/mcoot/arkham-companion/internal/services/player"
)

// PlayerHandler handles player endpoints within a game session
type PlayerHandler struct {
	players *player.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(players *player.Service) *PlayerHandler {
	return &PlayerHandler{players: players}
}

// Join handles POST /api/v1/game-sessions/{token}/players
func (h *PlayerHandler) Join(w http.ResponseWriter, r *http.Request) {
	p, err := h.players.Add(r.Context(), sessionToken(r), middleware.UserFrom(r.Context()))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.PlayerFromModel(p, response.PlayerOwn))
}

// GetMe handles GET /api/v1/game-sessions/{token}/players/me
func (h *PlayerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	p, err := h.players.Get(r.Context(), sessionToken(r), ownToken(r), middleware.LocaleFrom(r.Context()))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerFromModel(p, response.PlayerOwn))
}

// UpdateMe handles PATCH /api/v1/game-sessions/{token}/players/me
func (h *PlayerHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req request.PlayerUpdateRequest
	if err := request.Decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	p, err := h.players.Update(r.Context(), sessionToken(r), ownToken(r), middleware.LocaleFrom(r.Context()), req.ToModel())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerFromModel(p, response.PlayerOwn))
}

// Leave handles DELETE /api/v1/game-sessions/{token}/players/me
func (h *PlayerHandler) Leave(w http.ResponseWriter, r *http.Request) {
	p, err := h.players.Remove(r.Context(), ownToken(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerFromModel(p, response.PlayerSummary))
}

// RenewCharacter handles POST /api/v1/game-sessions/{token}/players/me/character
func (h *PlayerHandler) RenewCharacter(w http.ResponseWriter, r *http.Request) {
	p, err := h.players.RenewCharacter(r.Context(), sessionToken(r), ownToken(r), middleware.LocaleFrom(r.Context()))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerFromModel(p, response.PlayerOwn))
}

// AssignCards handles POST /api/v1/game-sessions/{token}/players/me/cards
func (h *PlayerHandler) AssignCards(w http.ResponseWriter, r *http.Request) {
	h.cards(w, r, h.players.AssignCards)
}

// RemoveCards handles POST /api/v1/game-sessions/{token}/players/me/cards/remove
func (h *PlayerHandler) RemoveCards(w http.ResponseWriter, r *http.Request) {
	h.cards(w, r, h.players.RemoveCards)
}

type handOp func(ctx context.Context, sessionToken model.GameSessionToken, playerToken model.PlayerToken, locale model.Locale, cardIDs []model.CardID) ([]model.CardQuantity, error)

func (h *PlayerHandler) cards(w http.ResponseWriter, r *http.Request, op handOp) {
	var req request.CardIDsRequest
	if err := request.Decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	hand, err := op(r.Context(), sessionToken(r), ownToken(r), middleware.LocaleFrom(r.Context()), req.CardIDs)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.HandFromModel(hand))
}

// Kick handles DELETE /api/v1/game-sessions/{token}/players/{id}
func (h *PlayerHandler) Kick(w http.ResponseWriter, r *http.Request) {
	id, err := pathID[model.PlayerID](r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	p, err := h.players.Kick(r.Context(), sessionToken(r), id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerFromModel(p, response.PlayerSummary))
}

// ownToken is the token of the player identified by the request; policies guarantee one
func ownToken(r *http.Request) model.PlayerToken {
	if p := middleware.PlayerFrom(r.Context()); p != nil {
		return p.Token
	}
	return ""
}

package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mcoot/arkham-companion/internal/api/middleware"
	"github.com/mcoot/arkham-companion/internal/api/response"
	"github.com/mcoot/arkham-companion/internal/model"
	"github.com/mcoot/arkham-companion/internal/services/session"
	"github.com/mcoot/arkham-companion/internal/sse"
)

// SessionHandler handles game session endpoints
type SessionHandler struct {
	sessions   *session.Service
	hubManager *sse.HubManager
	logger     *slog.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *session.Service, hubManager *sse.HubManager, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, hubManager: hubManager, logger: logger}
}

// List handles GET /api/v1/game-sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.FindAll(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}

	out := make([]response.GameSession, len(sessions))
	for i, s := range sessions {
		out[i] = response.GameSessionFromModel(s, response.PlayerSummary)
	}
	response.JSON(w, http.StatusOK, out)
}

// Create handles POST /api/v1/game-sessions; the caller becomes the host
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	s, host, err := h.sessions.Create(r.Context(), middleware.UserFrom(r.Context()))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.CreatedGameSession{
		GameSession: response.GameSessionFromModel(s, response.PlayerPublic),
		Player:      response.PlayerFromModel(host, response.PlayerOwn),
	})
}

// Get handles GET /api/v1/game-sessions/{token}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.FindOne(r.Context(), sessionToken(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameSessionFromModel(s, response.PlayerPublic))
}

// Delete handles DELETE /api/v1/game-sessions/{token}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Remove(r.Context(), sessionToken(r)); err != nil {
		WriteError(w, r, err)
		return
	}
	response.NoContent(w)
}

// AdvancePhase handles POST /api/v1/game-sessions/{token}/phase/advance
func (h *SessionHandler) AdvancePhase(w http.ResponseWriter, r *http.Request) {
	h.phase(w, r, h.sessions.AdvancePhase)
}

// RetreatPhase handles POST /api/v1/game-sessions/{token}/phase/retreat
func (h *SessionHandler) RetreatPhase(w http.ResponseWriter, r *http.Request) {
	h.phase(w, r, h.sessions.RetreatPhase)
}

// ResetPhase handles POST /api/v1/game-sessions/{token}/phase/reset
func (h *SessionHandler) ResetPhase(w http.ResponseWriter, r *http.Request) {
	h.phase(w, r, h.sessions.ResetPhase)
}

func (h *SessionHandler) phase(w http.ResponseWriter, r *http.Request, op func(context.Context, model.GameSessionToken) (*model.GameSession, error)) {
	s, err := op(r.Context(), sessionToken(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameSessionFromModel(s, response.PlayerPublic))
}

// Events handles GET /api/v1/game-sessions/{token}/events
func (h *SessionHandler) Events(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if _, err := h.sessions.FindOne(r.Context(), token); err != nil {
		WriteError(w, r, err)
		return
	}

	label := "anonymous"
	if p := middleware.PlayerFrom(r.Context()); p != nil && p.GameSessionToken == token {
		label = fmt.Sprintf("player:%d", p.ID)
	}
	h.logger.Debug("event stream opened", slog.String("game_session", string(token)), slog.String("client", label))
	sse.ServeSSE(w, r, h.hubManager, token, label)
}

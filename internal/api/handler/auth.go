package handler

import (
	"net/http"

	"github.com/mcoot/arkham-companion/internal/api/apierr"
	"github.com/mcoot/arkham-companion/internal/api/middleware"
	"github.com/mcoot/arkham-companion/internal/api/request"
	"github.com/mcoot/arkham-companion/internal/api/response"
	"github.com/mcoot/arkham-companion/internal/services/auth"
)

// AuthHandler handles account and user endpoints
type AuthHandler struct {
	auth *auth.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterInput
	if err := request.Decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	user, err := h.auth.Register(r.Context(), req)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.UserFromModel(user))
}

// Verify handles POST /api/v1/auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyRequest
	if err := request.Decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	user, err := h.auth.Verify(r.Context(), req.Email, req.Token)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.UserFromModel(user))
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := request.Decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	login, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Login{
		Token: login.Token,
		User:  response.UserFromModel(login.User),
	})
}

// RemindPassword handles POST /api/v1/auth/remind-password.
// It always answers 204 so callers cannot probe for accounts.
func (h *AuthHandler) RemindPassword(w http.ResponseWriter, r *http.Request) {
	var req request.RemindPasswordRequest
	if err := request.Decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	h.auth.RemindPassword(r.Context(), req.Email)
	response.NoContent(w)
}

// ResetPassword handles POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req auth.ResetPasswordInput
	if err := request.Decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	if err := h.auth.ResetPassword(r.Context(), req); err != nil {
		WriteError(w, r, err)
		return
	}
	response.NoContent(w)
}

// Me handles GET /api/v1/users/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	current := middleware.UserFrom(r.Context())
	if current == nil {
		WriteError(w, r, apierr.NewUnauthorizedError())
		return
	}

	user, err := h.auth.Me(r.Context(), current.ID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UserFromModel(user))
}

// Statistics handles GET /api/v1/users/me/statistics
func (h *AuthHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	current := middleware.UserFrom(r.Context())
	if current == nil {
		WriteError(w, r, apierr.NewUnauthorizedError())
		return
	}

	stats, err := h.auth.Statistics(r.Context(), current.ID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, stats)
}

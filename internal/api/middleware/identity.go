// Package middleware resolves request identity and locale, and enforces access policies.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/mcoot/arkham-companion/internal/api/apierr"
	"github.com/mcoot/arkham-companion/internal/model"
)

// PlayerTokenHeader carries a player token alongside a user JWT
const PlayerTokenHeader = "X-Player-Token"

// SessionVar is the route variable naming the game session
const SessionVar = "token"

type contextKey string

const (
	userContextKey   contextKey = "user"
	playerContextKey contextKey = "player"
	localeContextKey contextKey = "locale"
)

// UserResolver resolves a signed JWT to its user
type UserResolver interface {
	ParseToken(ctx context.Context, signed string) (*model.User, error)
}

// PlayerResolver resolves a player token to its player
type PlayerResolver interface {
	GetPlayer(ctx context.Context, token model.PlayerToken) (*model.Player, error)
}

// Identify resolves the caller's user and player from the request headers.
// A bearer value shaped like a UUID is a player token, anything else is a JWT.
// An invalid or expired JWT and an unknown player token both leave the request
// anonymous, so public routes still serve and protected ones answer UNAUTHORIZED.
func Identify(users UserResolver, players PlayerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			bearer := bearerToken(r)
			playerToken := strings.TrimSpace(r.Header.Get(PlayerTokenHeader))

			if bearer != "" {
				if isPlayerToken(bearer) {
					if playerToken == "" {
						playerToken = bearer
					}
				} else {
					user, err := users.ParseToken(ctx, bearer)
					switch {
					case err == nil:
						ctx = context.WithValue(ctx, userContextKey, user)
					case !errors.Is(err, model.ErrInvalidToken):
						apierr.WriteError(w, r, err)
						return
					}
				}
			}

			if playerToken != "" {
				player, err := players.GetPlayer(ctx, model.PlayerToken(playerToken))
				switch {
				case err == nil:
					ctx = context.WithValue(ctx, playerContextKey, player)
				case !errors.Is(err, model.ErrPlayerNotFound):
					apierr.WriteError(w, r, err)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	scheme, value, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(value)
}

func isPlayerToken(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}

// UserFrom returns the authenticated user, or nil
func UserFrom(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey).(*model.User)
	return user
}

// PlayerFrom returns the identified player, or nil
func PlayerFrom(ctx context.Context) *model.Player {
	player, _ := ctx.Value(playerContextKey).(*model.Player)
	return player
}

// RequireUser rejects requests without an authenticated user
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFrom(r.Context()) == nil {
			apierr.WriteError(w, r, apierr.NewUnauthorizedError())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests from anyone but an admin user
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFrom(r.Context())
		if user == nil {
			apierr.WriteError(w, r, apierr.NewUnauthorizedError())
			return
		}
		if !user.IsAdmin() {
			apierr.WriteError(w, r, model.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePlayer rejects requests without a player seated in the routed session
func RequirePlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := seated(r); err != nil {
			apierr.WriteError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireHost rejects requests unless the caller hosts the routed session
func RequireHost(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := seated(r); err != nil {
			apierr.WriteError(w, r, err)
			return
		}
		if !PlayerFrom(r.Context()).IsHost() {
			apierr.WriteError(w, r, model.ErrNotHost)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func seated(r *http.Request) error {
	player := PlayerFrom(r.Context())
	if player == nil {
		return apierr.NewUnauthorizedError()
	}
	if string(player.GameSessionToken) != mux.Vars(r)[SessionVar] {
		return model.ErrForbidden
	}
	return nil
}

package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/arkham-companion/internal/api/handler"
	"github.com/mcoot/arkham-companion/internal/api/middleware"
	"github.com/mcoot/arkham-companion/internal/metrics"
	logging "github.com/mcoot/arkham-companion/internal/middleware"
	"github.com/mcoot/arkham-companion/internal/model"
	"github.com/mcoot/arkham-companion/internal/services/auth"
	"github.com/mcoot/arkham-companion/internal/services/catalog"
	"github.com/mcoot/arkham-companion/internal/services/player"
	"github.com/mcoot/arkham-companion/internal/services/session"
	"github.com/mcoot/arkham-companion/internal/sse"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger           *slog.Logger
	Languages        model.Languages
	MaxFileSize      int64
	AuthService      *auth.Service
	CardService      *catalog.CardService
	CharacterService *catalog.CharacterService
	SessionService   *session.Service
	PlayerService    *player.Service
	Players          middleware.PlayerResolver
	HubManager       *sse.HubManager
	// HealthCheck reports storage reachability; optional
	HealthCheck func(ctx context.Context) error
	// Uploads serves locally stored files under UploadsPrefix; optional
	Uploads       http.Handler
	UploadsPrefix string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.Use(metrics.Middleware)
	r.Use(logging.Logging(cfg.Logger))
	r.Use(middleware.Recovery())

	// Create handlers
	healthHandler := handler.NewHealthHandler(cfg.HealthCheck, cfg.Logger)
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	cardHandler := handler.NewCardHandler(cfg.CardService, cfg.MaxFileSize)
	characterHandler := handler.NewCharacterHandler(cfg.CharacterService, cfg.MaxFileSize)
	sessionHandler := handler.NewSessionHandler(cfg.SessionService, cfg.HubManager, cfg.Logger)
	playerHandler := handler.NewPlayerHandler(cfg.PlayerService)

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	if cfg.Uploads != nil {
		r.PathPrefix(cfg.UploadsPrefix + "/").Handler(cfg.Uploads).Methods(http.MethodGet, http.MethodHead)
	}

	// API subrouter with identity and locale resolution
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Identify(cfg.AuthService, cfg.Players))
	api.Use(middleware.Locale(cfg.Languages))

	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)

	// Auth routes (public)
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/verify", authHandler.Verify).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/remind-password", authHandler.RemindPassword).Methods(http.MethodPost)
	api.HandleFunc("/auth/reset-password", authHandler.ResetPassword).Methods(http.MethodPost)

	// User routes
	api.Handle("/users/me", user(authHandler.Me)).Methods(http.MethodGet)
	api.Handle("/users/me/statistics", user(authHandler.Statistics)).Methods(http.MethodGet)

	// Card routes
	api.HandleFunc("/cards", cardHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/cards/{id:[0-9]+}", cardHandler.Get).Methods(http.MethodGet)
	api.Handle("/cards", admin(cardHandler.Create)).Methods(http.MethodPost)
	api.Handle("/cards/{id:[0-9]+}", admin(cardHandler.Update)).Methods(http.MethodPatch)
	api.Handle("/cards/{id:[0-9]+}", admin(cardHandler.Delete)).Methods(http.MethodDelete)
	api.Handle("/cards/{id:[0-9]+}/images/{side}", admin(cardHandler.SetImage)).Methods(http.MethodPut)
	api.Handle("/cards/{id:[0-9]+}/images/{side}", admin(cardHandler.DeleteImage)).Methods(http.MethodDelete)
	api.Handle("/cards/{id:[0-9]+}/translations", admin(cardHandler.AddTranslation)).Methods(http.MethodPost)
	api.Handle("/cards/{id:[0-9]+}/translations/{locale}", admin(cardHandler.EditTranslation)).Methods(http.MethodPatch)
	api.Handle("/cards/{id:[0-9]+}/translations/{locale}", admin(cardHandler.DeleteTranslation)).Methods(http.MethodDelete)

	// Character routes
	api.HandleFunc("/characters", characterHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/characters/{id:[0-9]+}", characterHandler.Get).Methods(http.MethodGet)
	api.Handle("/characters", admin(characterHandler.Create)).Methods(http.MethodPost)
	api.Handle("/characters/{id:[0-9]+}", admin(characterHandler.Update)).Methods(http.MethodPatch)
	api.Handle("/characters/{id:[0-9]+}", admin(characterHandler.Delete)).Methods(http.MethodDelete)
	api.Handle("/characters/{id:[0-9]+}/photo", admin(characterHandler.SetPhoto)).Methods(http.MethodPut)
	api.Handle("/characters/{id:[0-9]+}/photo", admin(characterHandler.DeletePhoto)).Methods(http.MethodDelete)
	api.Handle("/characters/{id:[0-9]+}/translations", admin(characterHandler.AddTranslation)).Methods(http.MethodPost)
	api.Handle("/characters/{id:[0-9]+}/translations/{locale}", admin(characterHandler.EditTranslation)).Methods(http.MethodPatch)
	api.Handle("/characters/{id:[0-9]+}/translations/{locale}", admin(characterHandler.DeleteTranslation)).Methods(http.MethodDelete)

	// Game session routes
	api.Handle("/game-sessions", admin(sessionHandler.List)).Methods(http.MethodGet)
	api.HandleFunc("/game-sessions", sessionHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/game-sessions/{token}", sessionHandler.Get).Methods(http.MethodGet)
	api.Handle("/game-sessions/{token}", host(sessionHandler.Delete)).Methods(http.MethodDelete)
	api.Handle("/game-sessions/{token}/phase/advance", host(sessionHandler.AdvancePhase)).Methods(http.MethodPost)
	api.Handle("/game-sessions/{token}/phase/retreat", host(sessionHandler.RetreatPhase)).Methods(http.MethodPost)
	api.Handle("/game-sessions/{token}/phase/reset", host(sessionHandler.ResetPhase)).Methods(http.MethodPost)
	api.HandleFunc("/game-sessions/{token}/events", sessionHandler.Events).Methods(http.MethodGet)

	// Player routes; /me must be registered before /{id}
	api.HandleFunc("/game-sessions/{token}/players", playerHandler.Join).Methods(http.MethodPost)
	api.Handle("/game-sessions/{token}/players/me", seated(playerHandler.GetMe)).Methods(http.MethodGet)
	api.Handle("/game-sessions/{token}/players/me", seated(playerHandler.UpdateMe)).Methods(http.MethodPatch)
	api.Handle("/game-sessions/{token}/players/me", seated(playerHandler.Leave)).Methods(http.MethodDelete)
	api.Handle("/game-sessions/{token}/players/me/character", seated(playerHandler.RenewCharacter)).Methods(http.MethodPost)
	api.Handle("/game-sessions/{token}/players/me/cards", seated(playerHandler.AssignCards)).Methods(http.MethodPost)
	api.Handle("/game-sessions/{token}/players/me/cards/remove", seated(playerHandler.RemoveCards)).Methods(http.MethodPost)
	api.Handle("/game-sessions/{token}/players/{id:[0-9]+}", host(playerHandler.Kick)).Methods(http.MethodDelete)

	return r
}

func user(h http.HandlerFunc) http.Handler   { return middleware.RequireUser(h) }
func admin(h http.HandlerFunc) http.Handler  { return middleware.RequireAdmin(h) }
func seated(h http.HandlerFunc) http.Handler { return middleware.RequirePlayer(h) }
func host(h http.HandlerFunc) http.Handler   { return middleware.RequireHost(h) }

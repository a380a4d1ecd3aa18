package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/arkham-companion/internal/dependencies/clock"
	"github.com/mcoot/arkham-companion/internal/metrics"
	"github.com/mcoot/arkham-companion/internal/model"
	"github.com/mcoot/arkham-companion/internal/notify"
	"github.com/mcoot/arkham-companion/internal/services/player"
	"github.com/mcoot/arkham-companion/internal/services/token"
	"github.com/mcoot/arkham-companion/internal/storage"
)

// Config holds configuration for the session service
type Config struct {
	TokenLength int
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		TokenLength: 6,
	}
}

// Service manages game sessions and their phase
type Service struct {
	storage  storage.Storage
	players  *player.Service
	tokens   *token.Generator
	clock    clock.Clock
	notifier notify.Notifier
	logger   *slog.Logger

	tokenLength int
}

// New creates a new session Service
func New(
	storage storage.Storage,
	players *player.Service,
	tokens *token.Generator,
	clock clock.Clock,
	notifier notify.Notifier,
	cfg Config,
	logger *slog.Logger,
) *Service {
	if cfg.TokenLength <= 0 {
		cfg.TokenLength = DefaultConfig().TokenLength
	}
	return &Service{
		storage:     storage,
		players:     players,
		tokens:      tokens,
		clock:       clock,
		notifier:    notifier,
		logger:      logger.With("component", "session"),
		tokenLength: cfg.TokenLength,
	}
}

// Create opens a new session with the caller seated as host
func (s *Service) Create(ctx context.Context, user *model.User) (*model.GameSession, *model.Player, error) {
	var (
		session *model.GameSession
		host    *model.Player
	)
	err := s.storage.WithTx(ctx, func(tx storage.Storage) error {
		var err error
		session, err = s.insert(ctx, tx)
		if err != nil {
			return err
		}

		host, err = s.players.Construct(ctx, tx, session, user, true)
		if err != nil {
			return err
		}

		session, err = tx.GetGameSession(ctx, session.Token)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	metrics.GameSessionsCreated.Inc()
	metrics.PlayersJoined.Inc()
	s.logger.Info("game session created",
		slog.String("game_session", string(session.Token)),
		slog.Uint64("host_id", uint64(host.ID)))

	s.notifier.PlayerUpdated(ctx, session.Token, host)
	return session, host, nil
}

// insert creates the session row under a fresh token.
// A duplicate key on insert counts as a collision and is retried.
func (s *Service) insert(ctx context.Context, tx storage.Storage) (*model.GameSession, error) {
	exists := func(ctx context.Context, candidate string) (bool, error) {
		return tx.GameSessionExists(ctx, model.GameSessionToken(candidate))
	}

	for range token.MaxAttempts {
		candidate, err := s.tokens.Unique(ctx, s.tokenLength, exists)
		if err != nil {
			return nil, err
		}

		now := s.clock.Now()
		session := &model.GameSession{
			Token:     model.GameSessionToken(candidate),
			Phase:     model.PhaseDefault,
			CreatedAt: now,
			UpdatedAt: now,
		}
		err = tx.WithTx(ctx, func(sp storage.Storage) error {
			return sp.CreateGameSession(ctx, session)
		})
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, storage.ErrDuplicate) {
			return nil, fmt.Errorf("create game session: %w", err)
		}
		s.logger.Debug("game session token collided on insert", slog.String("token", candidate))
	}
	return nil, token.ErrTokenSpaceExhausted
}

// FindAll returns every session with its players
func (s *Service) FindAll(ctx context.Context) ([]*model.GameSession, error) {
	return s.storage.ListGameSessions(ctx)
}

// FindOne returns the session with its players
func (s *Service) FindOne(ctx context.Context, token model.GameSessionToken) (*model.GameSession, error) {
	return s.storage.GetGameSession(ctx, token)
}

// Remove deletes the session together with its players
func (s *Service) Remove(ctx context.Context, token model.GameSessionToken) error {
	if err := s.storage.WithTx(ctx, func(tx storage.Storage) error {
		return tx.DeleteGameSession(ctx, token)
	}); err != nil {
		return err
	}

	s.logger.Info("game session removed", slog.String("game_session", string(token)))
	s.notifier.SessionClosed(ctx, token)
	return nil
}

// AdvancePhase moves to the next phase and counts a phase played for every player
func (s *Service) AdvancePhase(ctx context.Context, token model.GameSessionToken) (*model.GameSession, error) {
	return s.changePhase(ctx, token, "advance", model.Phase.Next)
}

// RetreatPhase moves back to the previous phase
func (s *Service) RetreatPhase(ctx context.Context, token model.GameSessionToken) (*model.GameSession, error) {
	return s.changePhase(ctx, token, "retreat", model.Phase.Previous)
}

// ResetPhase returns to the default phase
func (s *Service) ResetPhase(ctx context.Context, token model.GameSessionToken) (*model.GameSession, error) {
	return s.changePhase(ctx, token, "reset", func(model.Phase) model.Phase { return model.PhaseDefault })
}

// changePhase applies step to the session phase. A step that lands on the
// current phase changes nothing and emits nothing.
func (s *Service) changePhase(ctx context.Context, token model.GameSessionToken, direction string, step func(model.Phase) model.Phase) (*model.GameSession, error) {
	var (
		session *model.GameSession
		changed bool
	)
	advancing := direction == "advance"

	err := s.storage.WithTx(ctx, func(tx storage.Storage) error {
		var err error
		session, err = tx.LockGameSession(ctx, token)
		if err != nil {
			return err
		}

		next := step(session.Phase)
		if next == session.Phase {
			return nil
		}
		changed = true

		now := s.clock.Now()
		session.Phase = next
		session.UpdatedAt = now
		if err := tx.SaveGameSession(ctx, session); err != nil {
			return fmt.Errorf("save game session: %w", err)
		}

		if advancing {
			for _, p := range session.Players {
				p.Statistics.PhasesPlayed++
				p.UpdatedAt = now
				if err := tx.SavePlayer(ctx, p); err != nil {
					return fmt.Errorf("save player: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return session, nil
	}

	metrics.PhaseChanges.WithLabelValues(direction).Inc()
	s.notifier.PhaseChanged(ctx, session)
	if advancing {
		for _, p := range session.Players {
			s.notifier.PlayerUpdated(ctx, session.Token, p)
		}
	}
	return session, nil
}

package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/arkham-companion/internal/dependencies/clock"
	"github.com/mcoot/arkham-companion/internal/dependencies/random"
	"github.com/mcoot/arkham-companion/internal/metrics"
	"github.com/mcoot/arkham-companion/internal/model"
	"github.com/mcoot/arkham-companion/internal/notify"
	"github.com/mcoot/arkham-companion/internal/services/statistics"
	"github.com/mcoot/arkham-companion/internal/services/token"
	"github.com/mcoot/arkham-companion/internal/services/translation"
	"github.com/mcoot/arkham-companion/internal/storage"
)

// Config holds configuration for the player service
type Config struct {
	MaxPlayers int
}

// DefaultConfig returns default player configuration
func DefaultConfig() Config {
	return Config{
		MaxPlayers: 6,
	}
}

// Service manages players within game sessions
type Service struct {
	storage  storage.Storage
	clock    clock.Clock
	random   random.Random
	notifier notify.Notifier
	logger   *slog.Logger

	maxPlayers int
}

// New creates a new player Service
func New(
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	notifier notify.Notifier,
	cfg Config,
	logger *slog.Logger,
) *Service {
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = DefaultConfig().MaxPlayers
	}
	return &Service{
		storage:    storage,
		clock:      clock,
		random:     random,
		notifier:   notifier,
		logger:     logger.With("component", "player"),
		maxPlayers: cfg.MaxPlayers,
	}
}

// Add seats a new player in the session. The joiner becomes host when nobody holds the role.
func (s *Service) Add(ctx context.Context, sessionToken model.GameSessionToken, user *model.User) (*model.Player, error) {
	var player *model.Player
	err := s.storage.WithTx(ctx, func(tx storage.Storage) error {
		session, err := tx.LockGameSession(ctx, sessionToken)
		if err != nil {
			return err
		}
		if user != nil && session.PlayerByUser(user.ID) != nil {
			return model.ErrPlayerExists
		}
		if len(session.Players) >= s.maxPlayers {
			return model.ErrPlayersLimitReached
		}

		player, err = s.Construct(ctx, tx, session, user, session.Host() == nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.PlayersJoined.Inc()
	s.logger.Info("player joined",
		slog.String("game_session", string(sessionToken)),
		slog.Uint64("player_id", uint64(player.ID)),
		slog.String("role", string(player.Role)))

	s.notifier.PlayerUpdated(ctx, sessionToken, player)
	return player, nil
}

// Get returns the player, which must belong to the session
func (s *Service) Get(ctx context.Context, sessionToken model.GameSessionToken, playerToken model.PlayerToken, locale model.Locale) (*model.Player, error) {
	player, err := loadPlayer(ctx, s.storage, sessionToken, playerToken)
	if err != nil {
		return nil, err
	}
	return translation.ResolvePlayer(player, locale), nil
}

// Remove deletes the player and returns its last known state
func (s *Service) Remove(ctx context.Context, playerToken model.PlayerToken) (*model.Player, error) {
	var player *model.Player
	err := s.storage.WithTx(ctx, func(tx storage.Storage) error {
		var err error
		player, err = tx.GetPlayer(ctx, playerToken)
		if err != nil {
			return err
		}
		return tx.DeletePlayer(ctx, playerToken)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("player left",
		slog.String("game_session", string(player.GameSessionToken)),
		slog.Uint64("player_id", uint64(player.ID)))

	s.notifier.PlayerUpdated(ctx, player.GameSessionToken, player)
	return player, nil
}

// Kick removes another player of the session by ID
func (s *Service) Kick(ctx context.Context, sessionToken model.GameSessionToken, id model.PlayerID) (*model.Player, error) {
	var player *model.Player
	err := s.storage.WithTx(ctx, func(tx storage.Storage) error {
		session, err := tx.LockGameSession(ctx, sessionToken)
		if err != nil {
			return err
		}
		player = session.PlayerByID(id)
		if player == nil {
			return model.ErrPlayerNotFound
		}
		return tx.DeletePlayer(ctx, player.Token)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.PlayerUpdated(ctx, sessionToken, player)
	return player, nil
}

// RenewCharacter swaps the player's character for another one unused in the session.
// The hand is left as it is.
func (s *Service) RenewCharacter(ctx context.Context, sessionToken model.GameSessionToken, playerToken model.PlayerToken, locale model.Locale) (*model.Player, error) {
	var player *model.Player
	err := s.storage.WithTx(ctx, func(tx storage.Storage) error {
		session, err := tx.LockGameSession(ctx, sessionToken)
		if err != nil {
			return err
		}
		current, err := loadPlayer(ctx, tx, sessionToken, playerToken)
		if err != nil {
			return err
		}

		used := session.CharactersInUse(current.ID)
		if current.CharacterID != nil {
			used[*current.CharacterID] = true
		}
		character, err := s.pickCharacter(ctx, tx, used)
		if err != nil {
			return err
		}

		current.CharacterID = &character.ID
		current.Character = character
		current.Statistics.CharactersPlayed++
		current.UpdatedAt = s.clock.Now()
		if err := tx.SavePlayer(ctx, current); err != nil {
			return fmt.Errorf("save player: %w", err)
		}

		player, err = tx.GetPlayer(ctx, playerToken)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.PlayerUpdated(ctx, sessionToken, player)
	return translation.ResolvePlayer(player, locale), nil
}

// AssignCards adds the cards to the player's hand, one unit per occurrence of an ID
func (s *Service) AssignCards(ctx context.Context, sessionToken model.GameSessionToken, playerToken model.PlayerToken, locale model.Locale, cardIDs []model.CardID) ([]model.CardQuantity, error) {
	var player *model.Player
	err := s.storage.WithTx(ctx, func(tx storage.Storage) error {
		current, err := loadPlayer(ctx, tx, sessionToken, playerToken)
		if err != nil {
			return err
		}

		cards, err := tx.GetCards(ctx, cardIDs)
		if err != nil {
			return fmt.Errorf("load cards: %w", err)
		}
		byID := make(map[model.CardID]*model.Card, len(cards))
		for _, c := range cards {
			byID[c.ID] = c
		}

		requested := make([]*model.Card, 0, len(cardIDs))
		for _, id := range cardIDs {
			card, ok := byID[id]
			if !ok {
				return fmt.Errorf("%w: %d", model.ErrCardNotFound, id)
			}
			requested = append(requested, card)
		}

		current.Cards = MergeQuantities(current.Cards, GroupQuantities(requested))
		current.Statistics.CardsAcquired += len(requested)
		current.UpdatedAt = s.clock.Now()
		if err := tx.SavePlayer(ctx, current); err != nil {
			return fmt.Errorf("save player: %w", err)
		}

		player, err = tx.GetPlayer(ctx, playerToken)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.PlayerUpdated(ctx, sessionToken, player)
	return translation.ResolveHand(player.Cards, locale), nil
}

// RemoveCards takes one unit per occurrence of an ID out of the hand.
// IDs that are not held are ignored.
func (s *Service) RemoveCards(ctx context.Context, sessionToken model.GameSessionToken, playerToken model.PlayerToken, locale model.Locale, cardIDs []model.CardID) ([]model.CardQuantity, error) {
	var player *model.Player
	err := s.storage.WithTx(ctx, func(tx storage.Storage) error {
		current, err := loadPlayer(ctx, tx, sessionToken, playerToken)
		if err != nil {
			return err
		}

		hand, removed := RemoveQuantities(current.Cards, cardIDs)
		current.Cards = hand
		current.Statistics.CardsLost += removed
		current.UpdatedAt = s.clock.Now()
		if err := tx.SavePlayer(ctx, current); err != nil {
			return fmt.Errorf("save player: %w", err)
		}

		player, err = tx.GetPlayer(ctx, playerToken)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.PlayerUpdated(ctx, sessionToken, player)
	return translation.ResolveHand(player.Cards, locale), nil
}

// Update applies a partial status/equipment update, moving the acquired and lost counters
func (s *Service) Update(ctx context.Context, sessionToken model.GameSessionToken, playerToken model.PlayerToken, locale model.Locale, update model.PlayerUpdate) (*model.Player, error) {
	var player *model.Player
	err := s.storage.WithTx(ctx, func(tx storage.Storage) error {
		current, err := loadPlayer(ctx, tx, sessionToken, playerToken)
		if err != nil {
			return err
		}

		current.Statistics = statistics.Derive(current, update)
		if u := update.Status; u != nil {
			if u.Sanity != nil {
				current.Status.Sanity = *u.Sanity
			}
			if u.Endurance != nil {
				current.Status.Endurance = *u.Endurance
			}
		}
		if u := update.Equipment; u != nil {
			if u.Money != nil {
				current.Equipment.Money = *u.Money
			}
			if u.Clues != nil {
				current.Equipment.Clues = *u.Clues
			}
		}
		current.UpdatedAt = s.clock.Now()

		if err := tx.SavePlayer(ctx, current); err != nil {
			return fmt.Errorf("save player: %w", err)
		}
		player = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.PlayerUpdated(ctx, sessionToken, player)
	return translation.ResolvePlayer(player, locale), nil
}

// Construct builds and inserts a seeded player inside tx: a fresh token, an unused
// character, starting status and equipment, and a random draft of starting cards.
func (s *Service) Construct(ctx context.Context, tx storage.Storage, session *model.GameSession, user *model.User, host bool) (*model.Player, error) {
	character, err := s.pickCharacter(ctx, tx, session.CharactersInUse(0))
	if err != nil {
		return nil, err
	}

	catalog, err := tx.ListCards(ctx, storage.CardFilter{})
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}

	role := model.PlayerRolePlayer
	if host {
		role = model.PlayerRoleHost
	}

	now := s.clock.Now()
	player := &model.Player{
		Role: role,
		Status: model.PlayerStatus{
			Sanity:    character.Sanity,
			Endurance: character.Endurance,
		},
		Equipment: model.PlayerEquipment{
			Money: character.Equipment.Money,
			Clues: character.Equipment.Clues,
		},
		Statistics:    model.PlayerStatistics{CharactersPlayed: 1},
		CharacterID:   &character.ID,
		GameSessionID: session.ID,
		Cards:         MergeQuantities(nil, GroupQuantities(s.Draft(character, catalog))),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if user != nil {
		player.UserID = &user.ID
	}

	if err := s.insert(ctx, tx, player); err != nil {
		return nil, err
	}

	return tx.GetPlayer(ctx, player.Token)
}

// insert assigns an unused UUID token and creates the player under a savepoint.
// A duplicate key on insert counts as a token collision.
func (s *Service) insert(ctx context.Context, tx storage.Storage, player *model.Player) error {
	for range token.MaxAttempts {
		candidate := model.PlayerToken(s.random.UUID())
		taken, err := tx.PlayerExists(ctx, candidate)
		if err != nil {
			return fmt.Errorf("check player token: %w", err)
		}
		if taken {
			continue
		}

		player.Token = candidate
		err = tx.WithTx(ctx, func(sp storage.Storage) error {
			return sp.CreatePlayer(ctx, player)
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, storage.ErrDuplicate) {
			return fmt.Errorf("create player: %w", err)
		}
		taken, err = tx.PlayerExists(ctx, candidate)
		if err != nil {
			return fmt.Errorf("recheck player token: %w", err)
		}
		if !taken {
			return model.ErrPlayerExists
		}
	}
	return token.ErrTokenSpaceExhausted
}

// pickCharacter chooses uniformly among the characters not in used
func (s *Service) pickCharacter(ctx context.Context, tx storage.Storage, used map[model.CharacterID]bool) (*model.Character, error) {
	characters, err := tx.ListCharacters(ctx)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}

	available := make([]*model.Character, 0, len(characters))
	for _, c := range characters {
		if !used[c.ID] {
			available = append(available, c)
		}
	}
	if len(available) == 0 {
		return nil, model.ErrNoCharacterAvailable
	}
	return available[s.random.Intn(len(available))], nil
}

func loadPlayer(ctx context.Context, st storage.Storage, sessionToken model.GameSessionToken, playerToken model.PlayerToken) (*model.Player, error) {
	player, err := st.GetPlayer(ctx, playerToken)
	if err != nil {
		return nil, err
	}
	if player.GameSessionToken != sessionToken {
		return nil, model.ErrPlayerNotFound
	}
	return player, nil
}

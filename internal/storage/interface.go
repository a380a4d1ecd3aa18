package storage

import (
	"context"
	"errors"

	"github.com/mcoot/arkham-companion/internal/model"
)

// ErrDuplicate is returned when a write violates a unique constraint
var ErrDuplicate = errors.New("duplicate key")

// CardFilter narrows ListCards
type CardFilter struct {
	Type *model.CardType
}

// Storage defines the interface for data persistence.
//
// Reads hydrate relations: cards carry translations, characters carry
// translations and cards, sessions carry players, and players carry user,
// character and hand.
type Storage interface {
	// WithTx runs fn atomically. Any returned error rolls every write back.
	WithTx(ctx context.Context, fn func(tx Storage) error) error

	// User operations
	CreateUser(ctx context.Context, user *model.User) error
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// Card operations
	SaveCard(ctx context.Context, card *model.Card) error
	GetCard(ctx context.Context, id model.CardID) (*model.Card, error)
	GetCards(ctx context.Context, ids []model.CardID) ([]*model.Card, error)
	ListCards(ctx context.Context, filter CardFilter) ([]*model.Card, error)
	FindCardByName(ctx context.Context, name string) (*model.Card, error)
	DeleteCard(ctx context.Context, id model.CardID) error

	// Character operations
	SaveCharacter(ctx context.Context, character *model.Character) error
	GetCharacter(ctx context.Context, id model.CharacterID) (*model.Character, error)
	ListCharacters(ctx context.Context) ([]*model.Character, error)
	FindCharacterByName(ctx context.Context, name string) (*model.Character, error)
	DeleteCharacter(ctx context.Context, id model.CharacterID) error

	// Game session operations
	CreateGameSession(ctx context.Context, session *model.GameSession) error
	SaveGameSession(ctx context.Context, session *model.GameSession) error
	GetGameSession(ctx context.Context, token model.GameSessionToken) (*model.GameSession, error)
	// LockGameSession loads the session and holds a write lock on it until the transaction ends
	LockGameSession(ctx context.Context, token model.GameSessionToken) (*model.GameSession, error)
	ListGameSessions(ctx context.Context) ([]*model.GameSession, error)
	GameSessionExists(ctx context.Context, token model.GameSessionToken) (bool, error)
	DeleteGameSession(ctx context.Context, token model.GameSessionToken) error

	// Player operations
	CreatePlayer(ctx context.Context, player *model.Player) error
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, token model.PlayerToken) (*model.Player, error)
	PlayerExists(ctx context.Context, token model.PlayerToken) (bool, error)
	ListPlayersByUser(ctx context.Context, userID model.UserID) ([]*model.Player, error)
	DeletePlayer(ctx context.Context, token model.PlayerToken) error
}

package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/mcoot/arkham-companion/internal/model"
	"github.com/mcoot/arkham-companion/internal/storage"
	"github.com/stretchr/testify/suite"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) createCard(name string, cardType model.CardType) *model.Card {
	card := &model.Card{Name: name, Type: cardType, Locale: "en"}
	s.Require().NoError(s.storage.SaveCard(s.ctx, card))
	return card
}

func (s *StorageSuite) createSession(token model.GameSessionToken) *model.GameSession {
	session := &model.GameSession{Token: token, Phase: model.PhaseDefault}
	s.Require().NoError(s.storage.CreateGameSession(s.ctx, session))
	return session
}

// User tests

func (s *StorageSuite) TestCreateAndGetUser() {
	user := &model.User{Name: "Alice", Email: "alice@example.com", Role: model.UserRoleUser}
	s.Require().NoError(s.storage.CreateUser(s.ctx, user))
	s.NotZero(user.ID)

	byID, err := s.storage.GetUser(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("Alice", byID.Name)

	byEmail, err := s.storage.GetUserByEmail(s.ctx, "ALICE@example.com")
	s.Require().NoError(err)
	s.Equal(user.ID, byEmail.ID)
}

func (s *StorageSuite) TestCreateUserDuplicateEmail() {
	s.Require().NoError(s.storage.CreateUser(s.ctx, &model.User{Email: "alice@example.com"}))

	err := s.storage.CreateUser(s.ctx, &model.User{Email: "alice@example.com"})
	s.ErrorIs(err, storage.ErrDuplicate)
}

func (s *StorageSuite) TestGetUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, 42)
	s.ErrorIs(err, model.ErrUserNotFound)

	_, err = s.storage.GetUserByEmail(s.ctx, "nobody@example.com")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestReturnedValuesAreCopies() {
	user := &model.User{Name: "Alice", Email: "alice@example.com"}
	s.Require().NoError(s.storage.CreateUser(s.ctx, user))

	user.Name = "Mallory"
	stored, err := s.storage.GetUser(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("Alice", stored.Name)
}

// Card tests

func (s *StorageSuite) TestSaveCardAssignsIDs() {
	card := &model.Card{
		Name:         "Tommy Gun",
		Type:         model.CardTypeCommonItem,
		Locale:       "en",
		Translations: []model.CardTranslation{{Name: "Pistolet Thompson", Locale: "pl"}},
	}
	s.Require().NoError(s.storage.SaveCard(s.ctx, card))
	s.NotZero(card.ID)
	s.NotZero(card.Translations[0].ID)

	stored, err := s.storage.GetCard(s.ctx, card.ID)
	s.Require().NoError(err)
	s.Require().Len(stored.Translations, 1)
	s.Equal("Pistolet Thompson", stored.Translations[0].Name)
}

func (s *StorageSuite) TestSaveCardDuplicateTranslationLocale() {
	card := &model.Card{
		Name: "Tommy Gun",
		Translations: []model.CardTranslation{
			{Name: "a", Locale: "pl"},
			{Name: "b", Locale: "pl"},
		},
	}
	s.ErrorIs(s.storage.SaveCard(s.ctx, card), storage.ErrDuplicate)
}

func (s *StorageSuite) TestSaveCardUnknownID() {
	err := s.storage.SaveCard(s.ctx, &model.Card{ID: 99, Name: "Ghost"})
	s.ErrorIs(err, model.ErrCardNotFound)
}

func (s *StorageSuite) TestListCardsFiltersByType() {
	s.createCard("Tommy Gun", model.CardTypeCommonItem)
	s.createCard("Shrivelling", model.CardTypeSpell)
	s.createCard("Wither", model.CardTypeSpell)

	spell := model.CardTypeSpell
	spells, err := s.storage.ListCards(s.ctx, storage.CardFilter{Type: &spell})
	s.Require().NoError(err)
	s.Require().Len(spells, 2)
	s.Equal("Shrivelling", spells[0].Name)
	s.Equal("Wither", spells[1].Name)

	all, err := s.storage.ListCards(s.ctx, storage.CardFilter{})
	s.Require().NoError(err)
	s.Len(all, 3)
}

func (s *StorageSuite) TestGetCardsDedupesAndSkipsMissing() {
	a := s.createCard("A", model.CardTypeAlly)
	b := s.createCard("B", model.CardTypeAlly)

	cards, err := s.storage.GetCards(s.ctx, []model.CardID{b.ID, a.ID, b.ID, 999})
	s.Require().NoError(err)
	s.Require().Len(cards, 2)
	s.Equal(b.ID, cards[0].ID)
	s.Equal(a.ID, cards[1].ID)
}

func (s *StorageSuite) TestFindCardByName() {
	card := s.createCard("Elder Sign", model.CardTypeUniqueItem)

	found, err := s.storage.FindCardByName(s.ctx, "Elder Sign")
	s.Require().NoError(err)
	s.Equal(card.ID, found.ID)

	_, err = s.storage.FindCardByName(s.ctx, "Necronomicon")
	s.ErrorIs(err, model.ErrCardNotFound)
}

func (s *StorageSuite) TestDeleteCardCascadesToHands() {
	card := s.createCard("Tommy Gun", model.CardTypeCommonItem)
	session := s.createSession("ABCDEF")
	player := &model.Player{
		Token:         "p-1",
		GameSessionID: session.ID,
		Cards:         []model.CardQuantity{{Card: *card, Quantity: 2}},
	}
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, player))

	s.Require().NoError(s.storage.DeleteCard(s.ctx, card.ID))

	stored, err := s.storage.GetPlayer(s.ctx, "p-1")
	s.Require().NoError(err)
	s.Empty(stored.Cards)
}

// Character tests

func (s *StorageSuite) TestSaveCharacterWithCards() {
	card := s.createCard("Derringer", model.CardTypeCommonItem)
	character := &model.Character{
		Name:       "Jenny Barnes",
		Attributes: map[string][]int{"speed": {1, 2, 3}},
		Cards:      []model.CardQuantity{{Card: *card, Quantity: 2}},
	}
	s.Require().NoError(s.storage.SaveCharacter(s.ctx, character))
	s.NotZero(character.ID)
	s.NotZero(character.Cards[0].ID)

	stored, err := s.storage.GetCharacter(s.ctx, character.ID)
	s.Require().NoError(err)
	s.Require().Len(stored.Cards, 1)
	s.Equal("Derringer", stored.Cards[0].Card.Name)
	s.Equal(2, stored.Cards[0].Quantity)
	s.Equal([]int{1, 2, 3}, stored.Attributes["speed"])
}

func (s *StorageSuite) TestSaveCharacterUnknownCard() {
	character := &model.Character{
		Name:  "Jenny Barnes",
		Cards: []model.CardQuantity{{Card: model.Card{ID: 77}, Quantity: 1}},
	}
	s.ErrorIs(s.storage.SaveCharacter(s.ctx, character), model.ErrCardNotFound)
}

func (s *StorageSuite) TestDeleteCharacterClearsPlayerReference() {
	character := &model.Character{Name: "Jenny Barnes"}
	s.Require().NoError(s.storage.SaveCharacter(s.ctx, character))
	session := s.createSession("ABCDEF")
	player := &model.Player{Token: "p-1", GameSessionID: session.ID, CharacterID: &character.ID}
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, player))

	s.Require().NoError(s.storage.DeleteCharacter(s.ctx, character.ID))

	stored, err := s.storage.GetPlayer(s.ctx, "p-1")
	s.Require().NoError(err)
	s.Nil(stored.CharacterID)
	s.Nil(stored.Character)
}

// Game session tests

func (s *StorageSuite) TestCreateGameSessionDuplicateToken() {
	s.createSession("ABCDEF")
	err := s.storage.CreateGameSession(s.ctx, &model.GameSession{Token: "ABCDEF"})
	s.ErrorIs(err, storage.ErrDuplicate)
}

func (s *StorageSuite) TestGameSessionExists() {
	s.createSession("ABCDEF")

	exists, err := s.storage.GameSessionExists(s.ctx, "ABCDEF")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.storage.GameSessionExists(s.ctx, "ZZZZZZ")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *StorageSuite) TestGetGameSessionHydratesPlayersInOrder() {
	session := s.createSession("ABCDEF")
	for _, token := range []model.PlayerToken{"p-1", "p-2", "p-3"} {
		s.Require().NoError(s.storage.CreatePlayer(s.ctx, &model.Player{Token: token, GameSessionID: session.ID}))
	}

	stored, err := s.storage.GetGameSession(s.ctx, "ABCDEF")
	s.Require().NoError(err)
	s.Require().Len(stored.Players, 3)
	s.Equal(model.PlayerToken("p-1"), stored.Players[0].Token)
	s.Equal(model.PlayerToken("p-3"), stored.Players[2].Token)
	s.Equal(model.GameSessionToken("ABCDEF"), stored.Players[0].GameSessionToken)
}

func (s *StorageSuite) TestDeleteGameSessionCascadesToPlayers() {
	session := s.createSession("ABCDEF")
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, &model.Player{Token: "p-1", GameSessionID: session.ID}))

	s.Require().NoError(s.storage.DeleteGameSession(s.ctx, "ABCDEF"))

	_, err := s.storage.GetGameSession(s.ctx, "ABCDEF")
	s.ErrorIs(err, model.ErrGameSessionNotFound)
	_, err = s.storage.GetPlayer(s.ctx, "p-1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Player tests

func (s *StorageSuite) TestCreatePlayerUnknownSession() {
	err := s.storage.CreatePlayer(s.ctx, &model.Player{Token: "p-1", GameSessionID: 99})
	s.ErrorIs(err, model.ErrGameSessionNotFound)
}

func (s *StorageSuite) TestCreatePlayerDuplicateToken() {
	session := s.createSession("ABCDEF")
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, &model.Player{Token: "p-1", GameSessionID: session.ID}))

	err := s.storage.CreatePlayer(s.ctx, &model.Player{Token: "p-1", GameSessionID: session.ID})
	s.ErrorIs(err, storage.ErrDuplicate)
}

func (s *StorageSuite) TestCreatePlayerDuplicateUserInSession() {
	user := &model.User{Email: "alice@example.com"}
	s.Require().NoError(s.storage.CreateUser(s.ctx, user))
	session := s.createSession("ABCDEF")
	other := s.createSession("GHJKLM")

	s.Require().NoError(s.storage.CreatePlayer(s.ctx, &model.Player{Token: "p-1", UserID: &user.ID, GameSessionID: session.ID}))

	err := s.storage.CreatePlayer(s.ctx, &model.Player{Token: "p-2", UserID: &user.ID, GameSessionID: session.ID})
	s.ErrorIs(err, storage.ErrDuplicate)

	s.NoError(s.storage.CreatePlayer(s.ctx, &model.Player{Token: "p-3", UserID: &user.ID, GameSessionID: other.ID}))

	players, err := s.storage.ListPlayersByUser(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Len(players, 2)
	s.Equal("alice@example.com", players[0].User.Email)
}

func (s *StorageSuite) TestSavePlayerDropsEmptyRows() {
	a := s.createCard("A", model.CardTypeAlly)
	b := s.createCard("B", model.CardTypeAlly)
	session := s.createSession("ABCDEF")
	player := &model.Player{
		Token:         "p-1",
		GameSessionID: session.ID,
		Cards:         []model.CardQuantity{{Card: *a, Quantity: 1}, {Card: *b, Quantity: 2}},
	}
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, player))

	player.Cards[0].Quantity = 0
	s.Require().NoError(s.storage.SavePlayer(s.ctx, player))

	stored, err := s.storage.GetPlayer(s.ctx, "p-1")
	s.Require().NoError(err)
	s.Require().Len(stored.Cards, 1)
	s.Equal(b.ID, stored.Cards[0].Card.ID)
	s.Equal(2, stored.CardCount())
}

func (s *StorageSuite) TestDeletePlayer() {
	session := s.createSession("ABCDEF")
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, &model.Player{Token: "p-1", GameSessionID: session.ID}))

	s.Require().NoError(s.storage.DeletePlayer(s.ctx, "p-1"))

	exists, err := s.storage.PlayerExists(s.ctx, "p-1")
	s.Require().NoError(err)
	s.False(exists)
	s.ErrorIs(s.storage.DeletePlayer(s.ctx, "p-1"), model.ErrPlayerNotFound)
}

// Transaction tests

func (s *StorageSuite) TestWithTxCommits() {
	err := s.storage.WithTx(s.ctx, func(tx storage.Storage) error {
		return tx.CreateGameSession(s.ctx, &model.GameSession{Token: "ABCDEF"})
	})
	s.Require().NoError(err)

	exists, _ := s.storage.GameSessionExists(s.ctx, "ABCDEF")
	s.True(exists)
}

func (s *StorageSuite) TestWithTxRollsBackOnError() {
	boom := errors.New("boom")
	err := s.storage.WithTx(s.ctx, func(tx storage.Storage) error {
		s.Require().NoError(tx.CreateGameSession(s.ctx, &model.GameSession{Token: "ABCDEF"}))
		return boom
	})
	s.ErrorIs(err, boom)

	exists, _ := s.storage.GameSessionExists(s.ctx, "ABCDEF")
	s.False(exists)
}

func (s *StorageSuite) TestNestedWithTxJoinsOuter() {
	boom := errors.New("boom")
	err := s.storage.WithTx(s.ctx, func(tx storage.Storage) error {
		inner := tx.WithTx(s.ctx, func(tx storage.Storage) error {
			return tx.CreateGameSession(s.ctx, &model.GameSession{Token: "ABCDEF"})
		})
		s.Require().NoError(inner)
		return boom
	})
	s.ErrorIs(err, boom)

	exists, _ := s.storage.GameSessionExists(s.ctx, "ABCDEF")
	s.False(exists)
}

package factory

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/arkham-companion/internal/model"
	"github.com/mcoot/arkham-companion/internal/services/auth"
	"github.com/mcoot/arkham-companion/internal/services/catalog"
)

const integrationCatalog = `
cards:
  - name: Tommy Gun
    type: common_item
  - name: Derringer
    type: common_item
  - name: Shrivelling
    type: spell
characters:
  - name: Amanda Sharpe
    expansion: base
    sanity: 5
    endurance: 5
    equipment:
      money: 1
      clues: 1
      random:
        common_items: 1
  - name: Joe Diamond
    expansion: base
    sanity: 4
    endurance: 6
    equipment:
      money: 8
      clues: 3
      random:
        spells: 1
`

var tokenParam = regexp.MustCompile(`token=([A-Z]+)`)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp(s.T())
	s.ctx = context.Background()

	doc, err := catalog.ParseDocument(strings.NewReader(integrationCatalog))
	s.Require().NoError(err)
	result, err := s.app.Importer.Import(s.ctx, doc)
	s.Require().NoError(err)
	s.Equal(catalog.ImportResult{CardsCreated: 3, CharactersCreated: 2}, result)
}

// registerVerified registers an account and completes verification from the mailed link
func (s *IntegrationSuite) registerVerified(name, email string) *model.User {
	_, err := s.app.AuthService.Register(s.ctx, auth.RegisterInput{Name: name, Email: email, Password: "necronomicon"})
	s.Require().NoError(err)

	msg, ok := s.app.Outbox.Last(email)
	s.Require().True(ok)
	match := tokenParam.FindStringSubmatch(msg.Body)
	s.Require().Len(match, 2)

	user, err := s.app.AuthService.Verify(s.ctx, email, match[1])
	s.Require().NoError(err)
	return user
}

// Test: a registered user hosts a session, a guest joins, and the phase loop updates statistics
func (s *IntegrationSuite) TestSessionLifecycle() {
	user := s.registerVerified("Amanda", "amanda@example.com")

	login, err := s.app.AuthService.Login(s.ctx, "amanda@example.com", "necronomicon")
	s.Require().NoError(err)
	parsed, err := s.app.AuthService.ParseToken(s.ctx, login.Token)
	s.Require().NoError(err)
	s.Equal(user.ID, parsed.ID)

	session, host, err := s.app.SessionService.Create(s.ctx, parsed)
	s.Require().NoError(err)
	s.True(host.IsHost())
	s.Require().NotNil(host.UserID)
	s.Equal(user.ID, *host.UserID)
	s.Equal(model.PhaseDefault, session.Phase)

	guest, err := s.app.PlayerService.Add(s.ctx, session.Token, nil)
	s.Require().NoError(err)
	s.False(guest.IsHost())
	s.NotEqual(*host.CharacterID, *guest.CharacterID)

	// Every character is seated now
	_, err = s.app.PlayerService.Add(s.ctx, session.Token, nil)
	s.ErrorIs(err, model.ErrNoCharacterAvailable)

	session, err = s.app.SessionService.AdvancePhase(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal(model.PhaseDefault.Next(), session.Phase)

	tommy, err := s.app.Storage.FindCardByName(s.ctx, "Tommy Gun")
	s.Require().NoError(err)
	hand, err := s.app.PlayerService.AssignCards(s.ctx, session.Token, guest.Token, "en", []model.CardID{tommy.ID, tommy.ID})
	s.Require().NoError(err)
	s.NotEmpty(hand)

	stats, err := s.app.AuthService.Statistics(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(1, stats.GameSessionPlayed)
	s.Equal(1, stats.PhasesPlayed)

	s.Require().NoError(s.app.SessionService.Remove(s.ctx, session.Token))
	_, err = s.app.SessionService.FindOne(s.ctx, session.Token)
	s.ErrorIs(err, model.ErrGameSessionNotFound)
	_, err = s.app.Storage.GetPlayer(s.ctx, guest.Token)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Test: the seeded admin can manage the catalog and the import is idempotent
func (s *IntegrationSuite) TestSeedIsIdempotent() {
	admin, created, err := s.app.AuthService.EnsureAdmin(s.ctx, "Keeper", "keeper@example.com", "elder-sign")
	s.Require().NoError(err)
	s.True(created)
	s.True(admin.IsAdmin())

	_, created, err = s.app.AuthService.EnsureAdmin(s.ctx, "Keeper", "keeper@example.com", "elder-sign")
	s.Require().NoError(err)
	s.False(created)

	doc, err := catalog.ParseDocument(strings.NewReader(integrationCatalog))
	s.Require().NoError(err)
	result, err := s.app.Importer.Import(s.ctx, doc)
	s.Require().NoError(err)
	s.Equal(catalog.ImportResult{CardsUpdated: 3, CharactersUpdated: 2}, result)

	characters, err := s.app.CharacterService.FindAll(s.ctx, "en")
	s.Require().NoError(err)
	s.Len(characters, 2)
}

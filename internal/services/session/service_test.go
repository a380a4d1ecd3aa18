package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/arkham-companion/internal/dependencies/mocks"
	"github.com/mcoot/arkham-companion/internal/model"
	"github.com/mcoot/arkham-companion/internal/services/player"
	"github.com/mcoot/arkham-companion/internal/services/token"
	"github.com/mcoot/arkham-companion/internal/storage/memory"
	"github.com/mcoot/arkham-companion/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage  *memory.Storage
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	notifier *mocks.RecordingNotifier
	players  *player.Service
	service  *Service
	ctx      context.Context
	user     *model.User
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.notifier = mocks.NewRecordingNotifier()
	s.ctx = context.Background()

	logger := testutil.NopLogger()
	s.players = player.New(s.storage, s.clock, s.random, s.notifier, player.DefaultConfig(), logger)
	s.service = New(s.storage, s.players, token.NewGenerator(s.random), s.clock, s.notifier, DefaultConfig(), logger)

	for _, name := range []string{"Amanda Sharpe", "Bob Jenkins", "Carolyn Fern"} {
		character := &model.Character{
			Name:      name,
			Sanity:    4,
			Endurance: 4,
			Equipment: model.CharacterEquipment{Random: model.RandomEquipment{CommonItems: 1}},
			Locale:    "en",
		}
		s.Require().NoError(s.storage.SaveCharacter(s.ctx, character))
	}
	s.Require().NoError(s.storage.SaveCard(s.ctx, &model.Card{Name: "Lantern", Type: model.CardTypeCommonItem, Locale: "en"}))

	s.user = &model.User{Name: "Amanda", Email: "amanda@example.com", Role: model.UserRoleUser}
	s.Require().NoError(s.storage.CreateUser(s.ctx, s.user))
}

func (s *ServiceSuite) create(code string) (*model.GameSession, *model.Player) {
	s.random.QueueString(code)
	session, host, err := s.service.Create(s.ctx, s.user)
	s.Require().NoError(err)
	return session, host
}

func (s *ServiceSuite) join(session *model.GameSession) *model.Player {
	p, err := s.players.Add(s.ctx, session.Token, nil)
	s.Require().NoError(err)
	return p
}

// Create tests

func (s *ServiceSuite) TestCreateSeatsHost() {
	session, host := s.create("ABCDEF")

	s.Equal(model.GameSessionToken("ABCDEF"), session.Token)
	s.Equal(model.PhaseDefault, session.Phase)
	s.Require().Len(session.Players, 1)
	s.Equal(host.ID, session.Players[0].ID)
	s.Equal(model.PlayerRoleHost, host.Role)
	s.Equal(s.user.ID, *host.UserID)
	s.NotNil(host.Character)
	s.Equal(1, host.CardCount())
}

func (s *ServiceSuite) TestCreateAnonymous() {
	s.random.QueueString("ANON22")
	session, host, err := s.service.Create(s.ctx, nil)
	s.Require().NoError(err)

	s.Equal(model.GameSessionToken("ANON22"), session.Token)
	s.Nil(host.UserID)
	s.True(host.IsHost())
}

func (s *ServiceSuite) TestCreateRegeneratesTakenToken() {
	s.create("AAAAAA")
	s.random.QueueString("AAAAAA", "BBBBBB")

	session, _, err := s.service.Create(s.ctx, s.user)
	s.Require().NoError(err)
	s.Equal(model.GameSessionToken("BBBBBB"), session.Token)
}

func (s *ServiceSuite) TestCreateFailsWithoutCharacters() {
	for _, c := range mustList(s.storage.ListCharacters(s.ctx)) {
		s.Require().NoError(s.storage.DeleteCharacter(s.ctx, c.ID))
	}
	s.random.QueueString("ABCDEF")

	_, _, err := s.service.Create(s.ctx, s.user)
	s.ErrorIs(err, model.ErrNoCharacterAvailable)

	exists, _ := s.storage.GameSessionExists(s.ctx, "ABCDEF")
	s.False(exists)
	s.Empty(s.notifier.Events)
}

func (s *ServiceSuite) TestCreateEmitsHostUpdate() {
	session, host := s.create("ABCDEF")

	events := s.notifier.OfType(model.EventPlayerUpdated)
	s.Require().Len(events, 1)
	s.Equal(session.Token, events[0].SessionToken)
	s.Equal(host.ID, events[0].Player.ID)
}

// Find tests

func (s *ServiceSuite) TestFindOne() {
	created, _ := s.create("ABCDEF")
	s.join(created)

	found, err := s.service.FindOne(s.ctx, created.Token)
	s.Require().NoError(err)
	s.Len(found.Players, 2)
	s.NotNil(found.Players[0].User)
	s.NotNil(found.Players[1].Character)
}

func (s *ServiceSuite) TestFindOneMissing() {
	_, err := s.service.FindOne(s.ctx, "NOPE00")
	s.ErrorIs(err, model.ErrGameSessionNotFound)
}

func (s *ServiceSuite) TestFindAll() {
	s.create("AAAAAA")
	s.create("BBBBBB")

	sessions, err := s.service.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Len(sessions, 2)
}

// Remove tests

func (s *ServiceSuite) TestRemoveCascadesPlayers() {
	session, host := s.create("ABCDEF")
	guest := s.join(session)

	s.Require().NoError(s.service.Remove(s.ctx, session.Token))

	_, err := s.storage.GetPlayer(s.ctx, host.Token)
	s.ErrorIs(err, model.ErrPlayerNotFound)
	_, err = s.storage.GetPlayer(s.ctx, guest.Token)
	s.ErrorIs(err, model.ErrPlayerNotFound)

	closed := s.notifier.OfType(model.EventSessionClosed)
	s.Require().Len(closed, 1)
	s.Equal(session.Token, closed[0].SessionToken)
}

func (s *ServiceSuite) TestRemoveMissing() {
	s.ErrorIs(s.service.Remove(s.ctx, "NOPE00"), model.ErrGameSessionNotFound)
}

// Phase tests

func (s *ServiceSuite) TestAdvancePhaseCountsPhasesPlayed() {
	session, host := s.create("ABCDEF")
	guest := s.join(session)
	s.notifier.Reset()

	advanced, err := s.service.AdvancePhase(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal(model.PhaseOtherWorldEncounters, advanced.Phase)

	for _, token := range []model.PlayerToken{host.Token, guest.Token} {
		p, err := s.storage.GetPlayer(s.ctx, token)
		s.Require().NoError(err)
		s.Equal(1, p.Statistics.PhasesPlayed)
	}

	phase := s.notifier.OfType(model.EventPhaseChanged)
	s.Require().Len(phase, 1)
	s.Equal(model.PhaseOtherWorldEncounters, phase[0].Phase)
	s.Len(s.notifier.OfType(model.EventPlayerUpdated), 2)
}

func (s *ServiceSuite) TestAdvancePhaseClampsAtLast() {
	session, host := s.create("ABCDEF")
	_, _ = s.service.AdvancePhase(s.ctx, session.Token)
	_, _ = s.service.AdvancePhase(s.ctx, session.Token)
	s.notifier.Reset()

	same, err := s.service.AdvancePhase(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal(model.PhaseMythos, same.Phase)
	s.Empty(s.notifier.Events)

	p, _ := s.storage.GetPlayer(s.ctx, host.Token)
	s.Equal(2, p.Statistics.PhasesPlayed)
}

func (s *ServiceSuite) TestRetreatPhase() {
	session, host := s.create("ABCDEF")
	s.notifier.Reset()

	retreated, err := s.service.RetreatPhase(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal(model.PhaseMovement, retreated.Phase)

	p, _ := s.storage.GetPlayer(s.ctx, host.Token)
	s.Equal(0, p.Statistics.PhasesPlayed)
	s.Len(s.notifier.OfType(model.EventPhaseChanged), 1)
	s.Empty(s.notifier.OfType(model.EventPlayerUpdated))
}

func (s *ServiceSuite) TestRetreatPhaseClampsAtFirst() {
	session, _ := s.create("ABCDEF")
	_, _ = s.service.RetreatPhase(s.ctx, session.Token)
	_, _ = s.service.RetreatPhase(s.ctx, session.Token)
	s.notifier.Reset()

	same, err := s.service.RetreatPhase(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal(model.PhaseUpkeep, same.Phase)
	s.Empty(s.notifier.Events)
}

func (s *ServiceSuite) TestResetPhase() {
	session, _ := s.create("ABCDEF")
	_, _ = s.service.AdvancePhase(s.ctx, session.Token)

	reset, err := s.service.ResetPhase(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal(model.PhaseDefault, reset.Phase)

	stored, _ := s.storage.GetGameSession(s.ctx, session.Token)
	s.Equal(model.PhaseDefault, stored.Phase)
}

func (s *ServiceSuite) TestPhaseOnMissingSession() {
	_, err := s.service.AdvancePhase(s.ctx, "NOPE00")
	s.ErrorIs(err, model.ErrGameSessionNotFound)
}

func mustList[T any](items []T, err error) []T {
	if err != nil {
		panic(err)
	}
	return items
}

package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/mcoot/arkham-companion/internal/model"
	"github.com/mcoot/arkham-companion/internal/storage"
)

// cardRef is a join row pointing at a catalog card
type cardRef struct {
	id       uint
	cardID   model.CardID
	quantity int
}

type characterRow struct {
	character *model.Character
	cards     []cardRef
}

type playerRow struct {
	player *model.Player
	cards  []cardRef
}

type state struct {
	users      map[model.UserID]*model.User
	emailIndex map[string]model.UserID
	cards      map[model.CardID]*model.Card
	characters map[model.CharacterID]*characterRow
	sessions   map[model.GameSessionToken]*model.GameSession
	players    map[model.PlayerToken]*playerRow
	nextID     uint
}

// Storage is an in-memory implementation of the storage interface.
// Transactions are serialized and restore a snapshot when they fail.
type Storage struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	st   *state
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		st: &state{
			users:      make(map[model.UserID]*model.User),
			emailIndex: make(map[string]model.UserID),
			cards:      make(map[model.CardID]*model.Card),
			characters: make(map[model.CharacterID]*characterRow),
			sessions:   make(map[model.GameSessionToken]*model.GameSession),
			players:    make(map[model.PlayerToken]*playerRow),
		},
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// txStorage is the view handed to a transaction callback; nested transactions join the outer one
type txStorage struct {
	*Storage
}

func (t txStorage) WithTx(_ context.Context, fn func(tx storage.Storage) error) error {
	return fn(t)
}

// WithTx runs fn atomically
func (s *Storage) WithTx(_ context.Context, fn func(tx storage.Storage) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.st.clone()
	s.mu.RUnlock()

	if err := fn(txStorage{s}); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (st *state) newID() uint {
	st.nextID++
	return st.nextID
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// User operations

func (s *Storage) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := normalizeEmail(user.Email)
	if _, ok := s.st.emailIndex[email]; ok {
		return storage.ErrDuplicate
	}
	if user.ID == 0 {
		user.ID = model.UserID(s.st.newID())
	}
	s.st.users[user.ID] = cloneUser(user)
	s.st.emailIndex[email] = user.ID
	return nil
}

func (s *Storage) SaveUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.st.users[user.ID]
	if !ok {
		return model.ErrUserNotFound
	}
	email := normalizeEmail(user.Email)
	if owner, ok := s.st.emailIndex[email]; ok && owner != user.ID {
		return storage.ErrDuplicate
	}
	delete(s.st.emailIndex, normalizeEmail(existing.Email))
	s.st.users[user.ID] = cloneUser(user)
	s.st.emailIndex[email] = user.ID
	return nil
}

func (s *Storage) GetUser(_ context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.st.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (s *Storage) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.st.emailIndex[normalizeEmail(email)]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return cloneUser(s.st.users[id]), nil
}

// Card operations

func (s *Storage) SaveCard(_ context.Context, card *model.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if card.ID != 0 {
		if _, ok := s.st.cards[card.ID]; !ok {
			return model.ErrCardNotFound
		}
	} else {
		card.ID = model.CardID(s.st.newID())
	}

	seen := make(map[model.Locale]bool, len(card.Translations))
	for i := range card.Translations {
		t := &card.Translations[i]
		if seen[t.Locale] {
			return storage.ErrDuplicate
		}
		seen[t.Locale] = true
		if t.ID == 0 {
			t.ID = s.st.newID()
		}
	}

	s.st.cards[card.ID] = cloneCard(card)
	return nil
}

func (s *Storage) GetCard(_ context.Context, id model.CardID) (*model.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	card, ok := s.st.cards[id]
	if !ok {
		return nil, model.ErrCardNotFound
	}
	return cloneCard(card), nil
}

func (s *Storage) GetCards(_ context.Context, ids []model.CardID) ([]*model.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[model.CardID]bool, len(ids))
	var out []*model.Card
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if card, ok := s.st.cards[id]; ok {
			out = append(out, cloneCard(card))
		}
	}
	return out, nil
}

func (s *Storage) ListCards(_ context.Context, filter storage.CardFilter) ([]*model.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Card
	for _, card := range s.st.cards {
		if filter.Type != nil && card.Type != *filter.Type {
			continue
		}
		out = append(out, cloneCard(card))
	}
	slices.SortFunc(out, func(a, b *model.Card) int { return int(a.ID) - int(b.ID) })
	return out, nil
}

func (s *Storage) FindCardByName(ctx context.Context, name string) (*model.Card, error) {
	cards, _ := s.ListCards(ctx, storage.CardFilter{})
	for _, card := range cards {
		if card.Name == name {
			return card, nil
		}
	}
	return nil, model.ErrCardNotFound
}

func (s *Storage) DeleteCard(_ context.Context, id model.CardID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.cards[id]; !ok {
		return model.ErrCardNotFound
	}
	delete(s.st.cards, id)

	// cascade join rows
	drop := func(refs []cardRef) []cardRef {
		return slices.DeleteFunc(refs, func(r cardRef) bool { return r.cardID == id })
	}
	for _, row := range s.st.characters {
		row.cards = drop(row.cards)
	}
	for _, row := range s.st.players {
		row.cards = drop(row.cards)
	}
	return nil
}

// Character operations

func (s *Storage) SaveCharacter(_ context.Context, character *model.Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if character.ID != 0 {
		if _, ok := s.st.characters[character.ID]; !ok {
			return model.ErrCharacterNotFound
		}
	} else {
		character.ID = model.CharacterID(s.st.newID())
	}

	seen := make(map[model.Locale]bool, len(character.Translations))
	for i := range character.Translations {
		t := &character.Translations[i]
		if seen[t.Locale] {
			return storage.ErrDuplicate
		}
		seen[t.Locale] = true
		if t.ID == 0 {
			t.ID = s.st.newID()
		}
	}

	refs, err := s.st.refsFor(character.Cards)
	if err != nil {
		return err
	}
	s.st.characters[character.ID] = &characterRow{character: cloneCharacter(character), cards: refs}
	return nil
}

func (s *Storage) GetCharacter(_ context.Context, id model.CharacterID) (*model.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.st.characters[id]
	if !ok {
		return nil, model.ErrCharacterNotFound
	}
	return s.st.hydrateCharacter(row), nil
}

func (s *Storage) ListCharacters(_ context.Context) ([]*model.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Character, 0, len(s.st.characters))
	for _, row := range s.st.characters {
		out = append(out, s.st.hydrateCharacter(row))
	}
	slices.SortFunc(out, func(a, b *model.Character) int { return int(a.ID) - int(b.ID) })
	return out, nil
}

func (s *Storage) FindCharacterByName(ctx context.Context, name string) (*model.Character, error) {
	characters, _ := s.ListCharacters(ctx)
	for _, c := range characters {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, model.ErrCharacterNotFound
}

func (s *Storage) DeleteCharacter(_ context.Context, id model.CharacterID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.characters[id]; !ok {
		return model.ErrCharacterNotFound
	}
	delete(s.st.characters, id)
	for _, row := range s.st.players {
		if row.player.CharacterID != nil && *row.player.CharacterID == id {
			row.player.CharacterID = nil
		}
	}
	return nil
}

// Game session operations

func (s *Storage) CreateGameSession(_ context.Context, session *model.GameSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.sessions[session.Token]; ok {
		return storage.ErrDuplicate
	}
	if session.ID == 0 {
		session.ID = model.GameSessionID(s.st.newID())
	}
	s.st.sessions[session.Token] = cloneSession(session)
	return nil
}

func (s *Storage) SaveGameSession(_ context.Context, session *model.GameSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.sessions[session.Token]; !ok {
		return model.ErrGameSessionNotFound
	}
	s.st.sessions[session.Token] = cloneSession(session)
	return nil
}

func (s *Storage) GetGameSession(_ context.Context, token model.GameSessionToken) (*model.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.st.sessions[token]
	if !ok {
		return nil, model.ErrGameSessionNotFound
	}
	return s.st.hydrateSession(session), nil
}

// LockGameSession is GetGameSession; transactions are already serialized
func (s *Storage) LockGameSession(ctx context.Context, token model.GameSessionToken) (*model.GameSession, error) {
	return s.GetGameSession(ctx, token)
}

func (s *Storage) ListGameSessions(_ context.Context) ([]*model.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.GameSession, 0, len(s.st.sessions))
	for _, session := range s.st.sessions {
		out = append(out, s.st.hydrateSession(session))
	}
	slices.SortFunc(out, func(a, b *model.GameSession) int { return int(a.ID) - int(b.ID) })
	return out, nil
}

func (s *Storage) GameSessionExists(_ context.Context, token model.GameSessionToken) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.st.sessions[token]
	return ok, nil
}

func (s *Storage) DeleteGameSession(_ context.Context, token model.GameSessionToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.st.sessions[token]
	if !ok {
		return model.ErrGameSessionNotFound
	}
	delete(s.st.sessions, token)
	for t, row := range s.st.players {
		if row.player.GameSessionID == session.ID {
			delete(s.st.players, t)
		}
	}
	return nil
}

// Player operations

func (s *Storage) CreatePlayer(_ context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.players[player.Token]; ok {
		return storage.ErrDuplicate
	}
	session := s.st.sessionByID(player.GameSessionID)
	if session == nil {
		return model.ErrGameSessionNotFound
	}
	if player.UserID != nil {
		for _, row := range s.st.players {
			p := row.player
			if p.GameSessionID == player.GameSessionID && p.UserID != nil && *p.UserID == *player.UserID {
				return storage.ErrDuplicate
			}
		}
	}

	refs, err := s.st.refsFor(player.Cards)
	if err != nil {
		return err
	}
	if player.ID == 0 {
		player.ID = model.PlayerID(s.st.newID())
	}
	player.GameSessionToken = session.Token
	s.st.players[player.Token] = &playerRow{player: clonePlayer(player), cards: refs}
	return nil
}

func (s *Storage) SavePlayer(_ context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.players[player.Token]; !ok {
		return model.ErrPlayerNotFound
	}
	refs, err := s.st.refsFor(player.Cards)
	if err != nil {
		return err
	}
	s.st.players[player.Token] = &playerRow{player: clonePlayer(player), cards: refs}
	return nil
}

func (s *Storage) GetPlayer(_ context.Context, token model.PlayerToken) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.st.players[token]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return s.st.hydratePlayer(row), nil
}

func (s *Storage) PlayerExists(_ context.Context, token model.PlayerToken) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.st.players[token]
	return ok, nil
}

func (s *Storage) ListPlayersByUser(_ context.Context, userID model.UserID) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Player
	for _, row := range s.st.players {
		if row.player.UserID != nil && *row.player.UserID == userID {
			out = append(out, s.st.hydratePlayer(row))
		}
	}
	slices.SortFunc(out, func(a, b *model.Player) int { return int(a.ID) - int(b.ID) })
	return out, nil
}

func (s *Storage) DeletePlayer(_ context.Context, token model.PlayerToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.players[token]; !ok {
		return model.ErrPlayerNotFound
	}
	delete(s.st.players, token)
	return nil
}

// Helpers; callers hold the lock

// refsFor converts held quantities to join rows, assigning IDs to new rows in place.
// Rows with a non-positive quantity are dropped.
func (st *state) refsFor(hand []model.CardQuantity) ([]cardRef, error) {
	refs := make([]cardRef, 0, len(hand))
	seen := make(map[model.CardID]bool, len(hand))
	for i := range hand {
		cq := &hand[i]
		if cq.Quantity <= 0 {
			continue
		}
		if _, ok := st.cards[cq.Card.ID]; !ok {
			return nil, model.ErrCardNotFound
		}
		if seen[cq.Card.ID] {
			return nil, storage.ErrDuplicate
		}
		seen[cq.Card.ID] = true
		if cq.ID == 0 {
			cq.ID = st.newID()
		}
		refs = append(refs, cardRef{id: cq.ID, cardID: cq.Card.ID, quantity: cq.Quantity})
	}
	return refs, nil
}

func (st *state) hydrateHand(refs []cardRef) []model.CardQuantity {
	hand := make([]model.CardQuantity, 0, len(refs))
	for _, r := range refs {
		card, ok := st.cards[r.cardID]
		if !ok {
			continue
		}
		hand = append(hand, model.CardQuantity{ID: r.id, Card: *cloneCard(card), Quantity: r.quantity})
	}
	return hand
}

func (st *state) hydrateCharacter(row *characterRow) *model.Character {
	c := cloneCharacter(row.character)
	c.Cards = st.hydrateHand(row.cards)
	return c
}

func (st *state) hydratePlayer(row *playerRow) *model.Player {
	p := clonePlayer(row.player)
	if p.UserID != nil {
		if user, ok := st.users[*p.UserID]; ok {
			p.User = cloneUser(user)
		}
	}
	if p.CharacterID != nil {
		if c, ok := st.characters[*p.CharacterID]; ok {
			p.Character = st.hydrateCharacter(c)
		}
	}
	p.Cards = st.hydrateHand(row.cards)
	return p
}

func (st *state) hydrateSession(session *model.GameSession) *model.GameSession {
	out := cloneSession(session)
	for _, row := range st.players {
		if row.player.GameSessionID == session.ID {
			out.Players = append(out.Players, st.hydratePlayer(row))
		}
	}
	slices.SortFunc(out.Players, func(a, b *model.Player) int { return int(a.ID) - int(b.ID) })
	return out
}

func (st *state) sessionByID(id model.GameSessionID) *model.GameSession {
	for _, session := range st.sessions {
		if session.ID == id {
			return session
		}
	}
	return nil
}

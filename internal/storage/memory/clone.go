package memory

import (
	"maps"
	"slices"

	"github.com/mcoot/arkham-companion/internal/model"
)

// Values are copied on the way in and out so callers never share memory with the store.

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneUser(u *model.User) *model.User {
	out := *u
	out.ResetToken = clonePtr(u.ResetToken)
	out.VerificationToken = clonePtr(u.VerificationToken)
	out.VerifiedAt = clonePtr(u.VerifiedAt)
	return &out
}

func cloneCard(c *model.Card) *model.Card {
	out := *c
	out.Subtype = clonePtr(c.Subtype)
	out.HandUsage = clonePtr(c.HandUsage)
	out.FrontImagePath = clonePtr(c.FrontImagePath)
	out.BackImagePath = clonePtr(c.BackImagePath)
	out.AttributeModifiers = slices.Clone(c.AttributeModifiers)
	out.Translations = slices.Clone(c.Translations)
	return &out
}

func cloneCharacter(c *model.Character) *model.Character {
	out := *c
	out.ImagePath = clonePtr(c.ImagePath)
	out.Skills = slices.Clone(c.Skills)
	if c.Attributes != nil {
		out.Attributes = make(map[string][]int, len(c.Attributes))
		for k, v := range c.Attributes {
			out.Attributes[k] = slices.Clone(v)
		}
	}
	out.Translations = make([]model.CharacterTranslation, len(c.Translations))
	for i, t := range c.Translations {
		t.Skills = slices.Clone(t.Skills)
		out.Translations[i] = t
	}
	out.Cards = nil
	return &out
}

func cloneSession(s *model.GameSession) *model.GameSession {
	out := *s
	out.Players = nil
	return &out
}

func clonePlayer(p *model.Player) *model.Player {
	out := *p
	out.UserID = clonePtr(p.UserID)
	out.CharacterID = clonePtr(p.CharacterID)
	out.User = nil
	out.Character = nil
	out.Cards = nil
	return &out
}

func (st *state) clone() *state {
	out := &state{
		users:      make(map[model.UserID]*model.User, len(st.users)),
		emailIndex: maps.Clone(st.emailIndex),
		cards:      make(map[model.CardID]*model.Card, len(st.cards)),
		characters: make(map[model.CharacterID]*characterRow, len(st.characters)),
		sessions:   make(map[model.GameSessionToken]*model.GameSession, len(st.sessions)),
		players:    make(map[model.PlayerToken]*playerRow, len(st.players)),
		nextID:     st.nextID,
	}
	for k, v := range st.users {
		out.users[k] = cloneUser(v)
	}
	for k, v := range st.cards {
		out.cards[k] = cloneCard(v)
	}
	for k, v := range st.characters {
		out.characters[k] = &characterRow{character: cloneCharacter(v.character), cards: slices.Clone(v.cards)}
	}
	for k, v := range st.sessions {
		out.sessions[k] = cloneSession(v)
	}
	for k, v := range st.players {
		out.players[k] = &playerRow{player: clonePlayer(v.player), cards: slices.Clone(v.cards)}
	}
	return out
}

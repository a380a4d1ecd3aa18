// Package translation substitutes translated text into localizable entities.
//
// Resolution is a silent fallback: when no translation exists for the target
// locale the entity is returned as authored.
package translation

import (
	"slices"

	"github.com/mcoot/arkham-companion/internal/model"
)

// ResolveCard returns the card in the target locale when a translation exists
func ResolveCard(card *model.Card, locale model.Locale) *model.Card {
	if card == nil || locale == "" || card.Locale == locale {
		return card
	}
	t := card.Translation(locale)
	if t == nil {
		return card
	}
	out := *card
	out.Name = t.Name
	out.Description = t.Description
	out.Locale = locale
	return &out
}

// ResolveCharacter returns the character in the target locale when a translation exists
func ResolveCharacter(character *model.Character, locale model.Locale) *model.Character {
	if character == nil || locale == "" || character.Locale == locale {
		return character
	}
	t := character.Translation(locale)
	if t == nil {
		return character
	}
	out := *character
	out.Name = t.Name
	out.Description = t.Description
	out.Profession = t.Profession
	out.StartingLocation = t.StartingLocation
	if t.Skills != nil {
		out.Skills = slices.Clone(t.Skills)
	}
	out.Locale = locale
	return &out
}

// ResolveCards resolves every card in the slice
func ResolveCards(cards []*model.Card, locale model.Locale) []*model.Card {
	out := make([]*model.Card, len(cards))
	for i, c := range cards {
		out[i] = ResolveCard(c, locale)
	}
	return out
}

// ResolveCharacters resolves every character in the slice
func ResolveCharacters(characters []*model.Character, locale model.Locale) []*model.Character {
	out := make([]*model.Character, len(characters))
	for i, c := range characters {
		out[i] = ResolveCharacter(c, locale)
	}
	return out
}

// ResolveHand resolves the card of every held quantity
func ResolveHand(hand []model.CardQuantity, locale model.Locale) []model.CardQuantity {
	out := make([]model.CardQuantity, len(hand))
	for i, cq := range hand {
		out[i] = cq
		out[i].Card = *ResolveCard(&cq.Card, locale)
	}
	return out
}

// ResolvePlayer returns a copy of the player with its character and hand resolved
func ResolvePlayer(player *model.Player, locale model.Locale) *model.Player {
	if player == nil {
		return nil
	}
	out := *player
	out.Character = ResolveCharacter(player.Character, locale)
	out.Cards = ResolveHand(player.Cards, locale)
	return &out
}

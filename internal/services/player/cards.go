package player

import "github.com/mcoot/arkham-companion/internal/model"

// draftCategories maps a character's random equipment counts to card types
var draftCategories = []struct {
	cardType model.CardType
	count    func(model.RandomEquipment) int
}{
	{model.CardTypeCommonItem, func(r model.RandomEquipment) int { return r.CommonItems }},
	{model.CardTypeUniqueItem, func(r model.RandomEquipment) int { return r.UniqueItems }},
	{model.CardTypeSpell, func(r model.RandomEquipment) int { return r.Spells }},
	{model.CardTypeAbility, func(r model.RandomEquipment) int { return r.Abilities }},
	{model.CardTypeAlly, func(r model.RandomEquipment) int { return r.Allies }},
}

// Draft samples the character's random starting cards from the catalog.
// Each category is sampled without replacement; a short category yields everything it has.
func (s *Service) Draft(character *model.Character, catalog []*model.Card) []*model.Card {
	var drawn []*model.Card
	for _, category := range draftCategories {
		want := category.count(character.Equipment.Random)
		if want <= 0 {
			continue
		}

		var pool []*model.Card
		for _, c := range catalog {
			if c.Type == category.cardType {
				pool = append(pool, c)
			}
		}

		n := min(want, len(pool))
		for i := range n {
			j := i + s.random.Intn(len(pool)-i)
			pool[i], pool[j] = pool[j], pool[i]
		}
		drawn = append(drawn, pool[:n]...)
	}
	return drawn
}

// GroupQuantities counts repeated cards, keeping the order of first occurrence
func GroupQuantities(cards []*model.Card) []model.CardQuantity {
	index := make(map[model.CardID]int, len(cards))
	var out []model.CardQuantity
	for _, c := range cards {
		if i, ok := index[c.ID]; ok {
			out[i].Quantity++
			continue
		}
		index[c.ID] = len(out)
		out = append(out, model.CardQuantity{Card: *c, Quantity: 1})
	}
	return out
}

// MergeQuantities adds the requested quantities into a copy of hand.
// Held rows are incremented; unknown cards are appended as new rows.
func MergeQuantities(hand, requests []model.CardQuantity) []model.CardQuantity {
	out := make([]model.CardQuantity, len(hand), len(hand)+len(requests))
	copy(out, hand)

	index := make(map[model.CardID]int, len(out))
	for i, cq := range out {
		index[cq.Card.ID] = i
	}

	for _, req := range requests {
		if i, ok := index[req.Card.ID]; ok {
			out[i].Quantity += req.Quantity
			continue
		}
		index[req.Card.ID] = len(out)
		out = append(out, model.CardQuantity{Card: req.Card, Quantity: req.Quantity})
	}
	return out
}

// RemoveQuantities takes one unit per occurrence of an ID out of a copy of hand,
// dropping rows that reach zero. It returns the remaining hand and the units removed.
func RemoveQuantities(hand []model.CardQuantity, cardIDs []model.CardID) ([]model.CardQuantity, int) {
	counts := make(map[model.CardID]int, len(cardIDs))
	for _, id := range cardIDs {
		counts[id]++
	}

	removed := 0
	out := make([]model.CardQuantity, 0, len(hand))
	for _, cq := range hand {
		take := min(counts[cq.Card.ID], cq.Quantity)
		removed += take
		cq.Quantity -= take
		if cq.Quantity > 0 {
			out = append(out, cq)
		}
	}
	return out, removed
}

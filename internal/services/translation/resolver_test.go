package translation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/arkham-companion/internal/model"
)

func testCard() *model.Card {
	return &model.Card{
		ID:          1,
		Name:        "Tommy Gun",
		Description: "Physical weapon",
		Type:        model.CardTypeCommonItem,
		Locale:      "en",
		Translations: []model.CardTranslation{
			{ID: 10, Name: "Pistolet Thompsona", Description: "Broń fizyczna", Locale: "pl"},
		},
	}
}

func testCharacter() *model.Character {
	return &model.Character{
		ID:               2,
		Name:             "Amanda Sharpe",
		Description:      "The student",
		Profession:       "Student",
		StartingLocation: "Miskatonic U.",
		Skills:           []model.Skill{{Name: "Study Group", Value: 1}},
		Locale:           "en",
		Translations: []model.CharacterTranslation{
			{
				Name:             "Amanda Sharpe",
				Description:      "Studentka",
				Profession:       "Studentka",
				StartingLocation: "Uniwersytet Miskatonic",
				Skills:           []model.Skill{{Name: "Grupa naukowa", Value: 1}},
				Locale:           "pl",
			},
		},
	}
}

func TestResolveCardIdentity(t *testing.T) {
	card := testCard()
	assert.Same(t, card, ResolveCard(card, "en"))
}

func TestResolveCardWithoutTranslationFallsBack(t *testing.T) {
	card := testCard()
	got := ResolveCard(card, "de")
	assert.Same(t, card, got)
	assert.Equal(t, model.Locale("en"), got.Locale)
}

func TestResolveCardTranslates(t *testing.T) {
	card := testCard()
	got := ResolveCard(card, "pl")

	require.NotSame(t, card, got)
	assert.Equal(t, "Pistolet Thompsona", got.Name)
	assert.Equal(t, "Broń fizyczna", got.Description)
	assert.Equal(t, model.Locale("pl"), got.Locale)
	assert.Equal(t, card.Type, got.Type)

	// original untouched
	assert.Equal(t, "Tommy Gun", card.Name)
	assert.Equal(t, model.Locale("en"), card.Locale)
}

func TestResolveCharacterTranslatesLocaleSpecificFields(t *testing.T) {
	ch := testCharacter()
	got := ResolveCharacter(ch, "pl")

	assert.Equal(t, "Studentka", got.Profession)
	assert.Equal(t, "Uniwersytet Miskatonic", got.StartingLocation)
	assert.Equal(t, []model.Skill{{Name: "Grupa naukowa", Value: 1}}, got.Skills)
	assert.Equal(t, model.Locale("pl"), got.Locale)
	assert.Equal(t, "Student", ch.Profession)
}

func TestResolveCharacterIdentityAndFallback(t *testing.T) {
	ch := testCharacter()
	assert.Same(t, ch, ResolveCharacter(ch, "en"))
	assert.Same(t, ch, ResolveCharacter(ch, "fr"))
	assert.Nil(t, ResolveCharacter(nil, "pl"))
}

func TestResolvePlayerResolvesCharacterAndHand(t *testing.T) {
	p := &model.Player{
		Character: testCharacter(),
		Cards:     []model.CardQuantity{{Card: *testCard(), Quantity: 2}},
	}

	got := ResolvePlayer(p, "pl")

	assert.Equal(t, "Studentka", got.Character.Profession)
	require.Len(t, got.Cards, 1)
	assert.Equal(t, "Pistolet Thompsona", got.Cards[0].Card.Name)
	assert.Equal(t, 2, got.Cards[0].Quantity)
	assert.Equal(t, "Tommy Gun", p.Cards[0].Card.Name)
}

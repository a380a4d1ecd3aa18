package model

import "time"

// CharacterID uniquely identifies a character
type CharacterID uint

// Expansion is the box a character ships in
type Expansion string

const (
	ExpansionBase                  Expansion = "base"
	ExpansionDunwichHorror         Expansion = "dunwich_horror"
	ExpansionKingsportHorror       Expansion = "kingsport_horror"
	ExpansionInnsmouthHorror       Expansion = "innsmouth_horror"
	ExpansionBlackGoatOfTheWoods   Expansion = "black_goat_of_the_woods"
	ExpansionKingInYellow          Expansion = "king_in_yellow"
	ExpansionLurkerAtTheThreshold  Expansion = "lurker_at_the_threshold"
	ExpansionCurseOfTheDarkPharaoh Expansion = "curse_of_the_dark_pharaoh"
	ExpansionMiskatonicHorror      Expansion = "miskatonic_horror"
)

// Skill is a named character skill value
type Skill struct {
	Name  string `json:"name" validate:"required,max=64"`
	Value int    `json:"value"`
}

// RandomEquipment is the number of cards drawn per category when a player is seeded
type RandomEquipment struct {
	CommonItems int `json:"common_items" validate:"min=0"`
	UniqueItems int `json:"unique_items" validate:"min=0"`
	Spells      int `json:"spells" validate:"min=0"`
	Abilities   int `json:"abilities" validate:"min=0"`
	Allies      int `json:"allies" validate:"min=0"`
}

// Total returns the number of cards across all categories
func (r RandomEquipment) Total() int {
	return r.CommonItems + r.UniqueItems + r.Spells + r.Abilities + r.Allies
}

// CharacterEquipment is a character's starting money, clues and random draws
type CharacterEquipment struct {
	Money  int             `json:"money" validate:"min=0"`
	Clues  int             `json:"clues" validate:"min=0"`
	Random RandomEquipment `json:"random"`
}

// Character is a playable investigator
type Character struct {
	ID               CharacterID
	Expansion        Expansion
	Name             string
	Description      string
	Profession       string
	StartingLocation string
	ImagePath        *string
	Sanity           int
	Endurance        int
	Concentration    int
	Attributes       map[string][]int
	Skills           []Skill
	Equipment        CharacterEquipment
	Locale           Locale
	Translations     []CharacterTranslation
	Cards            []CardQuantity
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CharacterTranslation is an alternate-locale copy of a character's text
type CharacterTranslation struct {
	ID               uint
	Name             string
	Description      string
	Profession       string
	StartingLocation string
	Skills           []Skill
	Locale           Locale
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Translation returns the translation for the locale, or nil
func (c *Character) Translation(locale Locale) *CharacterTranslation {
	for i := range c.Translations {
		if c.Translations[i].Locale == locale {
			return &c.Translations[i]
		}
	}
	return nil
}

package model

import "time"

// CardID uniquely identifies a card
type CardID uint

// CardType is the deck a card belongs to
type CardType string

const (
	CardTypeLocation   CardType = "location"
	CardTypeMadness    CardType = "madness"
	CardTypeWound      CardType = "wound"
	CardTypeHonorarium CardType = "honorarium"
	CardTypeBlessing   CardType = "blessing"
	CardTypeCurse      CardType = "curse"
	CardTypeAlly       CardType = "ally"
	CardTypeAbility    CardType = "ability"
	CardTypeCommonItem CardType = "common_item"
	CardTypeUniqueItem CardType = "unique_item"
	CardTypeSpell      CardType = "spell"
)

// CardTypes lists every card type
func CardTypes() []CardType {
	return []CardType{
		CardTypeLocation, CardTypeMadness, CardTypeWound, CardTypeHonorarium,
		CardTypeBlessing, CardTypeCurse, CardTypeAlly, CardTypeAbility,
		CardTypeCommonItem, CardTypeUniqueItem, CardTypeSpell,
	}
}

// CardSubtype refines item and task cards
type CardSubtype string

const (
	CardSubtypePhysicalWeapon CardSubtype = "physical_weapon"
	CardSubtypeMagicalWeapon  CardSubtype = "magical_weapon"
	CardSubtypeQuest          CardSubtype = "quest"
	CardSubtypeTask           CardSubtype = "task"
	CardSubtypeBook           CardSubtype = "book"
)

// CardSide selects the front or back image of a card
type CardSide string

const (
	CardSideFront CardSide = "front"
	CardSideBack  CardSide = "back"
)

// AttributeModifier changes a character attribute while the card is held
type AttributeModifier struct {
	Modifier string `json:"modifier" validate:"required,max=64"`
	Value    int    `json:"value"`
}

// Card is a catalog card
type Card struct {
	ID                 CardID
	Name               string
	Description        string
	Type               CardType
	Subtype            *CardSubtype
	AttributeModifiers []AttributeModifier
	HandUsage          *int
	FrontImagePath     *string
	BackImagePath      *string
	Locale             Locale
	Translations       []CardTranslation
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CardTranslation is an alternate-locale copy of a card's text
type CardTranslation struct {
	ID          uint
	Name        string
	Description string
	Locale      Locale
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Translation returns the translation for the locale, or nil
func (c *Card) Translation(locale Locale) *CardTranslation {
	for i := range c.Translations {
		if c.Translations[i].Locale == locale {
			return &c.Translations[i]
		}
	}
	return nil
}

// ImagePath returns the stored image path for a side
func (c *Card) ImagePath(side CardSide) *string {
	if side == CardSideBack {
		return c.BackImagePath
	}
	return c.FrontImagePath
}

// SetImagePath replaces the stored image path for a side
func (c *Card) SetImagePath(side CardSide, path *string) {
	if side == CardSideBack {
		c.BackImagePath = path
		return
	}
	c.FrontImagePath = path
}

// CardQuantity is a card held with a multiplicity.
// It backs both the PlayerCard and CharacterCard join rows.
type CardQuantity struct {
	ID       uint
	Card     Card
	Quantity int
}

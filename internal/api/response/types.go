package response

import (
	"time"

	"github.com/mcoot/arkham-companion/internal/model"
)

// User represents a user in API responses
type User struct {
	ID         uint       `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	VerifiedAt *time.Time `json:"verified_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// UserFromModel converts a model.User, never exposing secrets
func UserFromModel(u *model.User) User {
	return User{
		ID:         uint(u.ID),
		Name:       u.Name,
		Email:      u.Email,
		Role:       string(u.Role),
		VerifiedAt: u.VerifiedAt,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// Login is the response for a successful login
type Login struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Translation represents a card or character translation
type Translation struct {
	ID               uint          `json:"id"`
	Name             string        `json:"name"`
	Description      string        `json:"description"`
	Profession       string        `json:"profession,omitempty"`
	StartingLocation string        `json:"starting_location,omitempty"`
	Skills           []model.Skill `json:"skills,omitempty"`
	Locale           string        `json:"locale"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// CardTranslationFromModel converts a model.CardTranslation
func CardTranslationFromModel(t model.CardTranslation) Translation {
	return Translation{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Locale:      string(t.Locale),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// CharacterTranslationFromModel converts a model.CharacterTranslation
func CharacterTranslationFromModel(t model.CharacterTranslation) Translation {
	return Translation{
		ID:               t.ID,
		Name:             t.Name,
		Description:      t.Description,
		Profession:       t.Profession,
		StartingLocation: t.StartingLocation,
		Skills:           t.Skills,
		Locale:           string(t.Locale),
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

// Card is the summary projection of a card
type Card struct {
	ID                 uint                      `json:"id"`
	Name               string                    `json:"name"`
	Description        string                    `json:"description"`
	Type               string                    `json:"type"`
	Subtype            *string                   `json:"subtype"`
	AttributeModifiers []model.AttributeModifier `json:"attribute_modifiers"`
	HandUsage          *int                      `json:"hand_usage"`
	FrontImagePath     *string                   `json:"front_image_path"`
	BackImagePath      *string                   `json:"back_image_path"`
	Locale             string                    `json:"locale"`
	CreatedAt          time.Time                 `json:"created_at"`
	UpdatedAt          time.Time                 `json:"updated_at"`
}

// CardFromModel converts a model.Card
func CardFromModel(c *model.Card) Card {
	var subtype *string
	if c.Subtype != nil {
		s := string(*c.Subtype)
		subtype = &s
	}
	modifiers := c.AttributeModifiers
	if modifiers == nil {
		modifiers = []model.AttributeModifier{}
	}
	return Card{
		ID:                 uint(c.ID),
		Name:               c.Name,
		Description:        c.Description,
		Type:               string(c.Type),
		Subtype:            subtype,
		AttributeModifiers: modifiers,
		HandUsage:          c.HandUsage,
		FrontImagePath:     c.FrontImagePath,
		BackImagePath:      c.BackImagePath,
		Locale:             string(c.Locale),
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

// CardDetail adds translations to the card summary
type CardDetail struct {
	Card
	Translations []Translation `json:"translations"`
}

// CardDetailFromModel converts a model.Card with its translations
func CardDetailFromModel(c *model.Card) CardDetail {
	translations := make([]Translation, len(c.Translations))
	for i, t := range c.Translations {
		translations[i] = CardTranslationFromModel(t)
	}
	return CardDetail{Card: CardFromModel(c), Translations: translations}
}

// CardsFromModel converts a slice of cards
func CardsFromModel(cards []*model.Card) []Card {
	out := make([]Card, len(cards))
	for i, c := range cards {
		out[i] = CardFromModel(c)
	}
	return out
}

// HeldCard is a card with the quantity held by a player or character
type HeldCard struct {
	ID       uint `json:"id"`
	Quantity int  `json:"quantity"`
	Card     Card `json:"card"`
}

// HandFromModel converts held card quantities
func HandFromModel(hand []model.CardQuantity) []HeldCard {
	out := make([]HeldCard, len(hand))
	for i := range hand {
		out[i] = HeldCard{ID: hand[i].ID, Quantity: hand[i].Quantity, Card: CardFromModel(&hand[i].Card)}
	}
	return out
}

// Character is the summary projection of a character
type Character struct {
	ID               uint                     `json:"id"`
	Expansion        string                   `json:"expansion"`
	Name             string                   `json:"name"`
	Description      string                   `json:"description"`
	Profession       string                   `json:"profession"`
	StartingLocation string                   `json:"starting_location"`
	ImagePath        *string                  `json:"image_path"`
	Sanity           int                      `json:"sanity"`
	Endurance        int                      `json:"endurance"`
	Concentration    int                      `json:"concentration"`
	Attributes       map[string][]int         `json:"attributes"`
	Skills           []model.Skill            `json:"skills"`
	Equipment        model.CharacterEquipment `json:"equipment"`
	Locale           string                   `json:"locale"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
}

// CharacterFromModel converts a model.Character
func CharacterFromModel(c *model.Character) Character {
	return Character{
		ID:               uint(c.ID),
		Expansion:        string(c.Expansion),
		Name:             c.Name,
		Description:      c.Description,
		Profession:       c.Profession,
		StartingLocation: c.StartingLocation,
		ImagePath:        c.ImagePath,
		Sanity:           c.Sanity,
		Endurance:        c.Endurance,
		Concentration:    c.Concentration,
		Attributes:       c.Attributes,
		Skills:           c.Skills,
		Equipment:        c.Equipment,
		Locale:           string(c.Locale),
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

// CharacterDetail adds the starting cards and translations to the character summary
type CharacterDetail struct {
	Character
	Cards        []HeldCard    `json:"cards"`
	Translations []Translation `json:"translations"`
}

// CharacterDetailFromModel converts a model.Character with its relations
func CharacterDetailFromModel(c *model.Character) CharacterDetail {
	translations := make([]Translation, len(c.Translations))
	for i, t := range c.Translations {
		translations[i] = CharacterTranslationFromModel(t)
	}
	return CharacterDetail{
		Character:    CharacterFromModel(c),
		Cards:        HandFromModel(c.Cards),
		Translations: translations,
	}
}

// CharactersFromModel converts a slice of characters
func CharactersFromModel(characters []*model.Character) []Character {
	out := make([]Character, len(characters))
	for i, c := range characters {
		out[i] = CharacterFromModel(c)
	}
	return out
}

// PlayerView selects which relations a player projection carries
type PlayerView struct {
	Token     bool
	User      bool
	Character bool
	Cards     bool
}

var (
	// PlayerSummary is the bare player row
	PlayerSummary = PlayerView{}
	// PlayerPublic is what other players in the session may see
	PlayerPublic = PlayerView{User: true, Character: true, Cards: true}
	// PlayerOwn is what the player sees about themselves
	PlayerOwn = PlayerView{Token: true, User: true, Character: true, Cards: true}
)

// Player represents a player in API responses
type Player struct {
	ID               uint                   `json:"id"`
	Token            string                 `json:"token,omitempty"`
	Role             string                 `json:"role"`
	Status           model.PlayerStatus     `json:"status"`
	Equipment        model.PlayerEquipment  `json:"equipment"`
	Statistics       model.PlayerStatistics `json:"statistics"`
	GameSessionToken string                 `json:"game_session_token"`
	UserID           *uint                  `json:"user_id"`
	CharacterID      *uint                  `json:"character_id"`
	User             *User                  `json:"user,omitempty"`
	Character        *Character             `json:"character,omitempty"`
	Cards            []HeldCard             `json:"cards,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// PlayerFromModel projects a model.Player through the given view
func PlayerFromModel(p *model.Player, view PlayerView) Player {
	out := Player{
		ID:               uint(p.ID),
		Role:             string(p.Role),
		Status:           p.Status,
		Equipment:        p.Equipment,
		Statistics:       p.Statistics,
		GameSessionToken: string(p.GameSessionToken),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.UserID != nil {
		id := uint(*p.UserID)
		out.UserID = &id
	}
	if p.CharacterID != nil {
		id := uint(*p.CharacterID)
		out.CharacterID = &id
	}
	if view.Token {
		out.Token = string(p.Token)
	}
	if view.User && p.User != nil {
		u := UserFromModel(p.User)
		out.User = &u
	}
	if view.Character && p.Character != nil {
		c := CharacterFromModel(p.Character)
		out.Character = &c
	}
	if view.Cards {
		out.Cards = HandFromModel(p.Cards)
	}
	return out
}

// GameSession represents a game session in API responses
type GameSession struct {
	ID        uint      `json:"id"`
	Token     string    `json:"token"`
	Phase     int       `json:"phase"`
	PhaseName string    `json:"phase_name"`
	Players   []Player  `json:"players"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GameSessionFromModel converts a model.GameSession, projecting players through view
func GameSessionFromModel(s *model.GameSession, view PlayerView) GameSession {
	players := make([]Player, len(s.Players))
	for i, p := range s.Players {
		players[i] = PlayerFromModel(p, view)
	}
	return GameSession{
		ID:        uint(s.ID),
		Token:     string(s.Token),
		Phase:     int(s.Phase),
		PhaseName: s.Phase.String(),
		Players:   players,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// CreatedGameSession is the response for creating a session; player is the caller's own seat
type CreatedGameSession struct {
	GameSession GameSession `json:"game_session"`
	Player      Player      `json:"player"`
}

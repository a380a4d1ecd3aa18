package postgres

import (
	"time"

	"github.com/mcoot/arkham-companion/internal/model"
	"gorm.io/datatypes"
)

type userRecord struct {
	ID                uint       `gorm:"primaryKey"`
	Name              string     `gorm:"size:255;not null"`
	Email             string     `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash      string     `gorm:"not null"`
	Role              string     `gorm:"size:16;not null;default:USER"`
	ResetToken        *string    `gorm:"size:64"`
	VerificationToken *string    `gorm:"size:64"`
	VerifiedAt        *time.Time `gorm:"index"`
	CreatedAt         time.Time  `gorm:"not null"`
	UpdatedAt         time.Time  `gorm:"not null"`
}

func (userRecord) TableName() string { return "users" }

type cardRecord struct {
	ID                 uint                                          `gorm:"primaryKey"`
	Name               string                                        `gorm:"size:255;index;not null"`
	Description        string                                        `gorm:"type:text;not null"`
	Type               string                                        `gorm:"size:32;index;not null"`
	Subtype            *string                                       `gorm:"size:32"`
	AttributeModifiers datatypes.JSONType[[]model.AttributeModifier] `gorm:"not null"`
	HandUsage          *int                                          `gorm:"check:hand_usage BETWEEN 0 AND 2"`
	FrontImagePath     *string                                       `gorm:"size:512"`
	BackImagePath      *string                                       `gorm:"size:512"`
	Locale             string                                        `gorm:"size:8;not null"`
	Translations       []cardTranslationRecord                       `gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time                                     `gorm:"not null"`
	UpdatedAt          time.Time                                     `gorm:"not null"`
}

func (cardRecord) TableName() string { return "cards" }

type cardTranslationRecord struct {
	ID          uint      `gorm:"primaryKey"`
	CardID      uint      `gorm:"not null;uniqueIndex:idx_card_translations_card_locale"`
	Name        string    `gorm:"size:255;not null"`
	Description string    `gorm:"type:text;not null"`
	Locale      string    `gorm:"size:8;not null;uniqueIndex:idx_card_translations_card_locale"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (cardTranslationRecord) TableName() string { return "card_translations" }

type characterRecord struct {
	ID               uint                                         `gorm:"primaryKey"`
	Expansion        string                                       `gorm:"size:64;not null"`
	Name             string                                       `gorm:"size:255;index;not null"`
	Description      string                                       `gorm:"type:text;not null"`
	Profession       string                                       `gorm:"size:255;not null"`
	StartingLocation string                                       `gorm:"size:255;not null"`
	ImagePath        *string                                      `gorm:"size:512"`
	Sanity           int                                          `gorm:"not null"`
	Endurance        int                                          `gorm:"not null"`
	Concentration    int                                          `gorm:"not null"`
	Attributes       datatypes.JSONType[map[string][]int]         `gorm:"not null"`
	Skills           datatypes.JSONType[[]model.Skill]            `gorm:"not null"`
	Equipment        datatypes.JSONType[model.CharacterEquipment] `gorm:"not null"`
	Locale           string                                       `gorm:"size:8;not null"`
	Translations     []characterTranslationRecord                 `gorm:"foreignKey:CharacterID;constraint:OnDelete:CASCADE"`
	Cards            []characterCardRecord                        `gorm:"foreignKey:CharacterID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time                                    `gorm:"not null"`
	UpdatedAt        time.Time                                    `gorm:"not null"`
}

func (characterRecord) TableName() string { return "characters" }

type characterTranslationRecord struct {
	ID               uint                              `gorm:"primaryKey"`
	CharacterID      uint                              `gorm:"not null;uniqueIndex:idx_character_translations_character_locale"`
	Name             string                            `gorm:"size:255;not null"`
	Description      string                            `gorm:"type:text;not null"`
	Profession       string                            `gorm:"size:255;not null"`
	StartingLocation string                            `gorm:"size:255;not null"`
	Skills           datatypes.JSONType[[]model.Skill] `gorm:"not null"`
	Locale           string                            `gorm:"size:8;not null;uniqueIndex:idx_character_translations_character_locale"`
	CreatedAt        time.Time                         `gorm:"not null"`
	UpdatedAt        time.Time                         `gorm:"not null"`
}

func (characterTranslationRecord) TableName() string { return "character_translations" }

type characterCardRecord struct {
	ID          uint       `gorm:"primaryKey"`
	CharacterID uint       `gorm:"not null;uniqueIndex:idx_character_cards_character_card"`
	CardID      uint       `gorm:"not null;uniqueIndex:idx_character_cards_character_card"`
	Card        cardRecord `gorm:"constraint:OnDelete:CASCADE"`
	Quantity    int        `gorm:"not null;check:quantity >= 1"`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

func (characterCardRecord) TableName() string { return "character_cards" }

type gameSessionRecord struct {
	ID        uint           `gorm:"primaryKey"`
	Token     string         `gorm:"size:16;uniqueIndex;not null"`
	Phase     int            `gorm:"not null;default:3"`
	Players   []playerRecord `gorm:"foreignKey:GameSessionID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}

func (gameSessionRecord) TableName() string { return "game_sessions" }

type playerRecord struct {
	ID            uint                                       `gorm:"primaryKey"`
	Token         string                                     `gorm:"size:36;uniqueIndex;not null"`
	Role          string                                     `gorm:"size:16;not null"`
	Status        datatypes.JSONType[model.PlayerStatus]     `gorm:"not null"`
	Equipment     datatypes.JSONType[model.PlayerEquipment]  `gorm:"not null"`
	Statistics    datatypes.JSONType[model.PlayerStatistics] `gorm:"not null"`
	UserID        *uint                                      `gorm:"uniqueIndex:idx_players_user_session"`
	User          *userRecord                                `gorm:"constraint:OnDelete:SET NULL"`
	CharacterID   *uint                                      `gorm:"index"`
	Character     *characterRecord                           `gorm:"constraint:OnDelete:SET NULL"`
	GameSessionID uint                                       `gorm:"not null;uniqueIndex:idx_players_user_session"`
	GameSession   *gameSessionRecord                         `gorm:"foreignKey:GameSessionID"`
	Cards         []playerCardRecord                         `gorm:"foreignKey:PlayerID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time                                  `gorm:"not null"`
	UpdatedAt     time.Time                                  `gorm:"not null"`
}

func (playerRecord) TableName() string { return "players" }

type playerCardRecord struct {
	ID        uint       `gorm:"primaryKey"`
	PlayerID  uint       `gorm:"not null;uniqueIndex:idx_player_cards_player_card"`
	CardID    uint       `gorm:"not null;uniqueIndex:idx_player_cards_player_card"`
	Card      cardRecord `gorm:"constraint:OnDelete:CASCADE"`
	Quantity  int        `gorm:"not null;check:quantity >= 1"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
}

func (playerCardRecord) TableName() string { return "player_cards" }

// records lists every table in dependency order for AutoMigrate
func records() []any {
	return []any{
		&userRecord{},
		&cardRecord{},
		&cardTranslationRecord{},
		&characterRecord{},
		&characterTranslationRecord{},
		&characterCardRecord{},
		&gameSessionRecord{},
		&playerRecord{},
		&playerCardRecord{},
	}
}

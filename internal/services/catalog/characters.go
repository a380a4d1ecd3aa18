package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/arkham-companion/internal/dependencies/clock"
	"github.com/mcoot/arkham-companion/internal/dependencies/random"
	"github.com/mcoot/arkham-companion/internal/files"
	"github.com/mcoot/arkham-companion/internal/model"
	"github.com/mcoot/arkham-companion/internal/services/translation"
	"github.com/mcoot/arkham-companion/internal/storage"
	"github.com/mcoot/arkham-companion/internal/validation"
)

// CharacterInput is the full set of authored character fields.
// CardIDs may repeat an ID to hold several copies.
type CharacterInput struct {
	Expansion        model.Expansion          `json:"expansion" validate:"required,oneof=base dunwich_horror kingsport_horror innsmouth_horror black_goat_of_the_woods king_in_yellow lurker_at_the_threshold curse_of_the_dark_pharaoh miskatonic_horror"`
	Name             string                   `json:"name" validate:"required,max=255"`
	Description      string                   `json:"description" validate:"max=4000"`
	Profession       string                   `json:"profession" validate:"max=255"`
	StartingLocation string                   `json:"starting_location" validate:"max=255"`
	Sanity           int                      `json:"sanity" validate:"min=0"`
	Endurance        int                      `json:"endurance" validate:"min=0"`
	Concentration    int                      `json:"concentration" validate:"min=0"`
	Attributes       map[string][]int         `json:"attributes"`
	Skills           []model.Skill            `json:"skills" validate:"omitempty,dive"`
	Equipment        model.CharacterEquipment `json:"equipment"`
	CardIDs          []model.CardID           `json:"card_ids"`
	Locale           model.Locale             `json:"locale" validate:"omitempty,len=2"`
}

// CharacterPatch changes the fields that are set
type CharacterPatch struct {
	Expansion        *model.Expansion          `json:"expansion" validate:"omitempty,oneof=base dunwich_horror kingsport_horror innsmouth_horror black_goat_of_the_woods king_in_yellow lurker_at_the_threshold curse_of_the_dark_pharaoh miskatonic_horror"`
	Name             *string                   `json:"name" validate:"omitempty,min=1,max=255"`
	Description      *string                   `json:"description" validate:"omitempty,max=4000"`
	Profession       *string                   `json:"profession" validate:"omitempty,max=255"`
	StartingLocation *string                   `json:"starting_location" validate:"omitempty,max=255"`
	Sanity           *int                      `json:"sanity" validate:"omitempty,min=0"`
	Endurance        *int                      `json:"endurance" validate:"omitempty,min=0"`
	Concentration    *int                      `json:"concentration" validate:"omitempty,min=0"`
	Attributes       map[string][]int          `json:"attributes"`
	Skills           []model.Skill             `json:"skills" validate:"omitempty,dive"`
	Equipment        *model.CharacterEquipment `json:"equipment"`
	CardIDs          []model.CardID            `json:"card_ids"`
	Locale           *model.Locale             `json:"locale" validate:"omitempty,len=2"`
}

// CharacterTranslationInput is a new character translation
type CharacterTranslationInput struct {
	Locale           model.Locale  `json:"locale" validate:"required,len=2"`
	Name             string        `json:"name" validate:"required,max=255"`
	Description      string        `json:"description" validate:"max=4000"`
	Profession       string        `json:"profession" validate:"max=255"`
	StartingLocation string        `json:"starting_location" validate:"max=255"`
	Skills           []model.Skill `json:"skills" validate:"omitempty,dive"`
}

// CharacterTranslationPatch changes the translated fields that are set
type CharacterTranslationPatch struct {
	Name             *string       `json:"name" validate:"omitempty,min=1,max=255"`
	Description      *string       `json:"description" validate:"omitempty,max=4000"`
	Profession       *string       `json:"profession" validate:"omitempty,max=255"`
	StartingLocation *string       `json:"starting_location" validate:"omitempty,max=255"`
	Skills           []model.Skill `json:"skills" validate:"omitempty,dive"`
}

// CharacterService manages catalog characters
type CharacterService struct {
	base
}

// NewCharacterService creates a new CharacterService
func NewCharacterService(
	storage storage.Storage,
	files files.FileStore,
	random random.Random,
	clock clock.Clock,
	cfg Config,
	logger *slog.Logger,
) *CharacterService {
	return &CharacterService{base: newBase(storage, files, random, clock, cfg, logger.With("component", "characters"))}
}

// FindAll lists characters in the requested locale
func (s *CharacterService) FindAll(ctx context.Context, locale model.Locale) ([]*model.Character, error) {
	characters, err := s.storage.ListCharacters(ctx)
	if err != nil {
		return nil, err
	}
	return translation.ResolveCharacters(characters, locale), nil
}

// FindOne returns a character with its starting cards in the requested locale
func (s *CharacterService) FindOne(ctx context.Context, id model.CharacterID, locale model.Locale) (*model.Character, error) {
	character, err := s.storage.GetCharacter(ctx, id)
	if err != nil {
		return nil, err
	}
	out := *translation.ResolveCharacter(character, locale)
	out.Cards = translation.ResolveHand(character.Cards, locale)
	return &out, nil
}

// Create adds a character to the catalog
func (s *CharacterService) Create(ctx context.Context, input CharacterInput) (*model.Character, error) {
	var character *model.Character
	err := s.storage.WithTx(ctx, func(tx storage.Storage) error {
		var err error
		character, err = s.create(ctx, tx, input)
		return err
	})
	return character, err
}

func (s *CharacterService) create(ctx context.Context, tx storage.Storage, input CharacterInput) (*model.Character, error) {
	if err := validation.Struct(ctx, input); err != nil {
		return nil, err
	}
	locale, err := s.authoredLocale(input.Locale)
	if err != nil {
		return nil, err
	}
	cards, err := cardQuantities(ctx, tx, input.CardIDs)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	character := &model.Character{
		Expansion:        input.Expansion,
		Name:             input.Name,
		Description:      input.Description,
		Profession:       input.Profession,
		StartingLocation: input.StartingLocation,
		Sanity:           input.Sanity,
		Endurance:        input.Endurance,
		Concentration:    input.Concentration,
		Attributes:       input.Attributes,
		Skills:           input.Skills,
		Equipment:        input.Equipment,
		Cards:            cards,
		Locale:           locale,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := tx.SaveCharacter(ctx, character); err != nil {
		return nil, fmt.Errorf("save character: %w", err)
	}
	return character, nil
}

// Update changes the fields set in patch. CardIDs, when set, replaces the starting cards.
func (s *CharacterService) Update(ctx context.Context, id model.CharacterID, patch CharacterPatch) (*model.Character, error) {
	if err := validation.Struct(ctx, patch); err != nil {
		return nil, err
	}

	var character *model.Character
	err := s.storage.WithTx(ctx, func(tx storage.Storage) error {
		var err error
		character, err = tx.GetCharacter(ctx, id)
		if err != nil {
			return err
		}
		if err := s.applyPatch(ctx, tx, character, patch); err != nil {
			return err
		}
		character.UpdatedAt = s.clock.Now()
		if err := tx.SaveCharacter(ctx, character); err != nil {
			return fmt.Errorf("save character: %w", err)
		}
		return nil
	})
	return character, err
}

func (s *CharacterService) applyPatch(ctx context.Context, tx storage.Storage, c *model.Character, patch CharacterPatch) error {
	if patch.Expansion != nil {
		c.Expansion = *patch.Expansion
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	if patch.Profession != nil {
		c.Profession = *patch.Profession
	}
	if patch.StartingLocation != nil {
		c.StartingLocation = *patch.StartingLocation
	}
	if patch.Sanity != nil {
		c.Sanity = *patch.Sanity
	}
	if patch.Endurance != nil {
		c.Endurance = *patch.Endurance
	}
	if patch.Concentration != nil {
		c.Concentration = *patch.Concentration
	}
	if patch.Attributes != nil {
		c.Attributes = patch.Attributes
	}
	if patch.Skills != nil {
		c.Skills = patch.Skills
	}
	if patch.Equipment != nil {
		c.Equipment = *patch.Equipment
	}
	if patch.CardIDs != nil {
		cards, err := cardQuantities(ctx, tx, patch.CardIDs)
		if err != nil {
			return err
		}
		c.Cards = keepRowIDs(c.Cards, cards)
	}
	if patch.Locale != nil {
		locale, err := s.authoredLocale(*patch.Locale)
		if err != nil {
			return err
		}
		if c.Translation(locale) != nil {
			return fmt.Errorf("%w: %s", model.ErrTranslationExists, locale)
		}
		c.Locale = locale
	}
	return nil
}

// keepRowIDs carries join row IDs over to replacement rows for the same card
func keepRowIDs(previous, next []model.CardQuantity) []model.CardQuantity {
	ids := make(map[model.CardID]uint, len(previous))
	for _, cq := range previous {
		ids[cq.Card.ID] = cq.ID
	}
	for i := range next {
		next[i].ID = ids[next[i].Card.ID]
	}
	return next
}

// Delete removes the character, then its stored photo once the row is gone
func (s *CharacterService) Delete(ctx context.Context, id model.CharacterID) error {
	var character *model.Character
	err := s.storage.WithTx(ctx, func(tx storage.Storage) error {
		var err error
		character, err = tx.GetCharacter(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteCharacter(ctx, id); err != nil {
			return fmt.Errorf("delete character: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return s.removeFiles(ctx, character.ImagePath)
}

// SetPhoto stores the character's photo, replacing the previous one
func (s *CharacterService) SetPhoto(ctx context.Context, id model.CharacterID, upload *model.Upload) (*model.Character, error) {
	if err := files.ValidateImage(upload, s.maxFileSize); err != nil {
		return nil, err
	}

	var character *model.Character
	err := s.storage.WithTx(ctx, func(tx storage.Storage) error {
		var err error
		character, err = tx.GetCharacter(ctx, id)
		if err != nil {
			return err
		}

		url, err := s.storeUpload(ctx, fmt.Sprintf("characters/%d", character.ID), upload)
		if err != nil {
			return err
		}

		previous := character.ImagePath
		character.ImagePath = &url
		character.UpdatedAt = s.clock.Now()
		if err := tx.SaveCharacter(ctx, character); err != nil {
			s.discard(ctx, url)
			return fmt.Errorf("save character: %w", err)
		}
		if err := s.removeFile(ctx, previous); err != nil {
			s.discard(ctx, url)
			return err
		}
		return nil
	})
	return character, err
}

// DeletePhoto removes the character's photo
func (s *CharacterService) DeletePhoto(ctx context.Context, id model.CharacterID) (*model.Character, error) {
	var character *model.Character
	err := s.storage.WithTx(ctx, func(tx storage.Storage) error {
		var err error
		character, err = tx.GetCharacter(ctx, id)
		if err != nil {
			return err
		}

		previous := character.ImagePath
		if previous == nil {
			return nil
		}
		character.ImagePath = nil
		character.UpdatedAt = s.clock.Now()
		if err := tx.SaveCharacter(ctx, character); err != nil {
			return fmt.Errorf("save character: %w", err)
		}
		return s.removeFile(ctx, previous)
	})
	return character, err
}

// AddTranslation adds a translation in a new locale
func (s *CharacterService) AddTranslation(ctx context.Context, id model.CharacterID, input CharacterTranslationInput) (*model.Character, error) {
	if err := validation.Struct(ctx, input); err != nil {
		return nil, err
	}

	var character *model.Character
	err := s.storage.WithTx(ctx, func(tx storage.Storage) error {
		var err error
		character, err = tx.GetCharacter(ctx, id)
		if err != nil {
			return err
		}
		if err := s.addTranslation(character, input); err != nil {
			return err
		}
		return s.saveTranslated(ctx, tx, character)
	})
	return character, err
}

func (s *CharacterService) addTranslation(c *model.Character, input CharacterTranslationInput) error {
	if err := s.checkTranslatable(c.Locale, input.Locale); err != nil {
		return err
	}
	if c.Translation(input.Locale) != nil {
		return fmt.Errorf("%w: %s", model.ErrTranslationExists, input.Locale)
	}

	now := s.clock.Now()
	c.Translations = append(c.Translations, model.CharacterTranslation{
		Name:             input.Name,
		Description:      input.Description,
		Profession:       input.Profession,
		StartingLocation: input.StartingLocation,
		Skills:           input.Skills,
		Locale:           input.Locale,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	return nil
}

// EditTranslation changes an existing translation
func (s *CharacterService) EditTranslation(ctx context.Context, id model.CharacterID, locale model.Locale, patch CharacterTranslationPatch) (*model.Character, error) {
	if err := validation.Struct(ctx, patch); err != nil {
		return nil, err
	}

	var character *model.Character
	err := s.storage.WithTx(ctx, func(tx storage.Storage) error {
		var err error
		character, err = tx.GetCharacter(ctx, id)
		if err != nil {
			return err
		}
		t := character.Translation(locale)
		if t == nil {
			return model.ErrTranslationNotFound
		}
		if patch.Name != nil {
			t.Name = *patch.Name
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Profession != nil {
			t.Profession = *patch.Profession
		}
		if patch.StartingLocation != nil {
			t.StartingLocation = *patch.StartingLocation
		}
		if patch.Skills != nil {
			t.Skills = patch.Skills
		}
		t.UpdatedAt = s.clock.Now()
		return s.saveTranslated(ctx, tx, character)
	})
	return character, err
}

// DeleteTranslation removes a translation
func (s *CharacterService) DeleteTranslation(ctx context.Context, id model.CharacterID, locale model.Locale) (*model.Character, error) {
	var character *model.Character
	err := s.storage.WithTx(ctx, func(tx storage.Storage) error {
		var err error
		character, err = tx.GetCharacter(ctx, id)
		if err != nil {
			return err
		}
		if character.Translation(locale) == nil {
			return model.ErrTranslationNotFound
		}
		kept := character.Translations[:0]
		for _, t := range character.Translations {
			if t.Locale != locale {
				kept = append(kept, t)
			}
		}
		character.Translations = kept
		return s.saveTranslated(ctx, tx, character)
	})
	return character, err
}

func (s *CharacterService) saveTranslated(ctx context.Context, tx storage.Storage, c *model.Character) error {
	c.UpdatedAt = s.clock.Now()
	if err := tx.SaveCharacter(ctx, c); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return model.ErrTranslationExists
		}
		return fmt.Errorf("save character: %w", err)
	}
	return nil
}

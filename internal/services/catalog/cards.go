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

// CardInput is the full set of authored card fields
type CardInput struct {
	Name               string                    `json:"name" validate:"required,max=255"`
	Description        string                    `json:"description" validate:"max=4000"`
	Type               model.CardType            `json:"type" validate:"required,oneof=location madness wound honorarium blessing curse ally ability common_item unique_item spell"`
	Subtype            *model.CardSubtype        `json:"subtype" validate:"omitempty,oneof=physical_weapon magical_weapon quest task book"`
	AttributeModifiers []model.AttributeModifier `json:"attribute_modifiers" validate:"omitempty,dive"`
	HandUsage          *int                      `json:"hand_usage" validate:"omitempty,min=0,max=2"`
	Locale             model.Locale              `json:"locale" validate:"omitempty,len=2"`
}

// CardPatch changes the fields that are set
type CardPatch struct {
	Name               *string                   `json:"name" validate:"omitempty,min=1,max=255"`
	Description        *string                   `json:"description" validate:"omitempty,max=4000"`
	Type               *model.CardType           `json:"type" validate:"omitempty,oneof=location madness wound honorarium blessing curse ally ability common_item unique_item spell"`
	Subtype            *model.CardSubtype        `json:"subtype" validate:"omitempty,oneof=physical_weapon magical_weapon quest task book"`
	AttributeModifiers []model.AttributeModifier `json:"attribute_modifiers" validate:"omitempty,dive"`
	HandUsage          *int                      `json:"hand_usage" validate:"omitempty,min=0,max=2"`
	Locale             *model.Locale             `json:"locale" validate:"omitempty,len=2"`
}

// CardTranslationInput is a new card translation
type CardTranslationInput struct {
	Locale      model.Locale `json:"locale" validate:"required,len=2"`
	Name        string       `json:"name" validate:"required,max=255"`
	Description string       `json:"description" validate:"max=4000"`
}

// CardTranslationPatch changes the translated fields that are set
type CardTranslationPatch struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=4000"`
}

// CardService manages catalog cards
type CardService struct {
	base
}

// NewCardService creates a new CardService
func NewCardService(
	storage storage.Storage,
	files files.FileStore,
	random random.Random,
	clock clock.Clock,
	cfg Config,
	logger *slog.Logger,
) *CardService {
	return &CardService{base: newBase(storage, files, random, clock, cfg, logger.With("component", "cards"))}
}

// FindAll lists cards in the requested locale
func (s *CardService) FindAll(ctx context.Context, filter storage.CardFilter, locale model.Locale) ([]*model.Card, error) {
	cards, err := s.storage.ListCards(ctx, filter)
	if err != nil {
		return nil, err
	}
	return translation.ResolveCards(cards, locale), nil
}

// FindOne returns a card in the requested locale
func (s *CardService) FindOne(ctx context.Context, id model.CardID, locale model.Locale) (*model.Card, error) {
	card, err := s.storage.GetCard(ctx, id)
	if err != nil {
		return nil, err
	}
	return translation.ResolveCard(card, locale), nil
}

// Create adds a card to the catalog
func (s *CardService) Create(ctx context.Context, input CardInput) (*model.Card, error) {
	var card *model.Card
	err := s.storage.WithTx(ctx, func(tx storage.Storage) error {
		var err error
		card, err = s.create(ctx, tx, input)
		return err
	})
	return card, err
}

func (s *CardService) create(ctx context.Context, tx storage.Storage, input CardInput) (*model.Card, error) {
	if err := validation.Struct(ctx, input); err != nil {
		return nil, err
	}
	locale, err := s.authoredLocale(input.Locale)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	card := &model.Card{
		Name:               input.Name,
		Description:        input.Description,
		Type:               input.Type,
		Subtype:            input.Subtype,
		AttributeModifiers: input.AttributeModifiers,
		HandUsage:          input.HandUsage,
		Locale:             locale,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := tx.SaveCard(ctx, card); err != nil {
		return nil, fmt.Errorf("save card: %w", err)
	}
	return card, nil
}

// Update changes the fields set in patch
func (s *CardService) Update(ctx context.Context, id model.CardID, patch CardPatch) (*model.Card, error) {
	if err := validation.Struct(ctx, patch); err != nil {
		return nil, err
	}

	var card *model.Card
	err := s.storage.WithTx(ctx, func(tx storage.Storage) error {
		var err error
		card, err = tx.GetCard(ctx, id)
		if err != nil {
			return err
		}

		if patch.Name != nil {
			card.Name = *patch.Name
		}
		if patch.Description != nil {
			card.Description = *patch.Description
		}
		if patch.Type != nil {
			card.Type = *patch.Type
		}
		if patch.Subtype != nil {
			card.Subtype = patch.Subtype
		}
		if patch.AttributeModifiers != nil {
			card.AttributeModifiers = patch.AttributeModifiers
		}
		if patch.HandUsage != nil {
			card.HandUsage = patch.HandUsage
		}
		if patch.Locale != nil {
			locale, err := s.authoredLocale(*patch.Locale)
			if err != nil {
				return err
			}
			if card.Translation(locale) != nil {
				return fmt.Errorf("%w: %s", model.ErrTranslationExists, locale)
			}
			card.Locale = locale
		}
		card.UpdatedAt = s.clock.Now()

		if err := tx.SaveCard(ctx, card); err != nil {
			return fmt.Errorf("save card: %w", err)
		}
		return nil
	})
	return card, err
}

// Delete removes the card, then its stored images once the row is gone.
// Every image removal is attempted; any failure yields ErrFileDeleteFailed.
func (s *CardService) Delete(ctx context.Context, id model.CardID) error {
	var card *model.Card
	err := s.storage.WithTx(ctx, func(tx storage.Storage) error {
		var err error
		card, err = tx.GetCard(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteCard(ctx, id); err != nil {
			return fmt.Errorf("delete card: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return s.removeFiles(ctx, card.FrontImagePath, card.BackImagePath)
}

// SetImage stores an image for one side of the card, replacing the previous one
func (s *CardService) SetImage(ctx context.Context, id model.CardID, side model.CardSide, upload *model.Upload) (*model.Card, error) {
	if err := files.ValidateImage(upload, s.maxFileSize); err != nil {
		return nil, err
	}

	var card *model.Card
	err := s.storage.WithTx(ctx, func(tx storage.Storage) error {
		var err error
		card, err = tx.GetCard(ctx, id)
		if err != nil {
			return err
		}

		url, err := s.storeUpload(ctx, fmt.Sprintf("cards/%d-%s", card.ID, side), upload)
		if err != nil {
			return err
		}

		previous := card.ImagePath(side)
		card.SetImagePath(side, &url)
		card.UpdatedAt = s.clock.Now()
		if err := tx.SaveCard(ctx, card); err != nil {
			s.discard(ctx, url)
			return fmt.Errorf("save card: %w", err)
		}
		if err := s.removeFile(ctx, previous); err != nil {
			s.discard(ctx, url)
			return err
		}
		return nil
	})
	return card, err
}

// DeleteImage removes the image for one side of the card
func (s *CardService) DeleteImage(ctx context.Context, id model.CardID, side model.CardSide) (*model.Card, error) {
	var card *model.Card
	err := s.storage.WithTx(ctx, func(tx storage.Storage) error {
		var err error
		card, err = tx.GetCard(ctx, id)
		if err != nil {
			return err
		}

		previous := card.ImagePath(side)
		if previous == nil {
			return nil
		}
		card.SetImagePath(side, nil)
		card.UpdatedAt = s.clock.Now()
		if err := tx.SaveCard(ctx, card); err != nil {
			return fmt.Errorf("save card: %w", err)
		}
		return s.removeFile(ctx, previous)
	})
	return card, err
}

// AddTranslation adds a translation in a new locale
func (s *CardService) AddTranslation(ctx context.Context, id model.CardID, input CardTranslationInput) (*model.Card, error) {
	if err := validation.Struct(ctx, input); err != nil {
		return nil, err
	}

	var card *model.Card
	err := s.storage.WithTx(ctx, func(tx storage.Storage) error {
		var err error
		card, err = tx.GetCard(ctx, id)
		if err != nil {
			return err
		}
		if err := s.addTranslation(card, input); err != nil {
			return err
		}
		return s.saveTranslated(ctx, tx, card)
	})
	return card, err
}

func (s *CardService) addTranslation(card *model.Card, input CardTranslationInput) error {
	if err := s.checkTranslatable(card.Locale, input.Locale); err != nil {
		return err
	}
	if card.Translation(input.Locale) != nil {
		return fmt.Errorf("%w: %s", model.ErrTranslationExists, input.Locale)
	}

	now := s.clock.Now()
	card.Translations = append(card.Translations, model.CardTranslation{
		Name:        input.Name,
		Description: input.Description,
		Locale:      input.Locale,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return nil
}

// EditTranslation changes an existing translation
func (s *CardService) EditTranslation(ctx context.Context, id model.CardID, locale model.Locale, patch CardTranslationPatch) (*model.Card, error) {
	if err := validation.Struct(ctx, patch); err != nil {
		return nil, err
	}

	var card *model.Card
	err := s.storage.WithTx(ctx, func(tx storage.Storage) error {
		var err error
		card, err = tx.GetCard(ctx, id)
		if err != nil {
			return err
		}
		t := card.Translation(locale)
		if t == nil {
			return model.ErrTranslationNotFound
		}
		if patch.Name != nil {
			t.Name = *patch.Name
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		t.UpdatedAt = s.clock.Now()
		return s.saveTranslated(ctx, tx, card)
	})
	return card, err
}

// DeleteTranslation removes a translation
func (s *CardService) DeleteTranslation(ctx context.Context, id model.CardID, locale model.Locale) (*model.Card, error) {
	var card *model.Card
	err := s.storage.WithTx(ctx, func(tx storage.Storage) error {
		var err error
		card, err = tx.GetCard(ctx, id)
		if err != nil {
			return err
		}
		if card.Translation(locale) == nil {
			return model.ErrTranslationNotFound
		}
		kept := card.Translations[:0]
		for _, t := range card.Translations {
			if t.Locale != locale {
				kept = append(kept, t)
			}
		}
		card.Translations = kept
		return s.saveTranslated(ctx, tx, card)
	})
	return card, err
}

func (s *CardService) saveTranslated(ctx context.Context, tx storage.Storage, card *model.Card) error {
	card.UpdatedAt = s.clock.Now()
	if err := tx.SaveCard(ctx, card); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return model.ErrTranslationExists
		}
		return fmt.Errorf("save card: %w", err)
	}
	return nil
}

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/mcoot/arkham-companion/internal/model"
	"github.com/mcoot/arkham-companion/internal/storage"
	"github.com/mcoot/arkham-companion/internal/validation"
)

// Document is a catalog seed file
type Document struct {
	Cards      []CardEntry      `json:"cards"`
	Characters []CharacterEntry `json:"characters"`
}

// CardEntry is a card and its translations
type CardEntry struct {
	CardInput
	Translations []CardTranslationInput `json:"translations" validate:"omitempty,dive"`
}

// CharacterEntry is a character, its starting cards by name, and its translations
type CharacterEntry struct {
	CharacterInput
	Cards        []string                    `json:"cards"`
	Translations []CharacterTranslationInput `json:"translations" validate:"omitempty,dive"`
}

// ImportResult counts what an import wrote
type ImportResult struct {
	CardsCreated      int `json:"cards_created"`
	CardsUpdated      int `json:"cards_updated"`
	CharactersCreated int `json:"characters_created"`
	CharactersUpdated int `json:"characters_updated"`
}

// ParseDocument reads a YAML (or JSON) catalog document.
// Field names follow the API's JSON names.
func ParseDocument(r io.Reader) (*Document, error) {
	var raw any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return &Document{}, nil
		}
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return &doc, nil
}

// Importer upserts catalog documents by name
type Importer struct {
	cards      *CardService
	characters *CharacterService
	logger     *slog.Logger
}

// NewImporter creates a new Importer
func NewImporter(cards *CardService, characters *CharacterService, logger *slog.Logger) *Importer {
	return &Importer{
		cards:      cards,
		characters: characters,
		logger:     logger.With("component", "import"),
	}
}

// Import writes the whole document in one transaction.
// Existing entries keep their ID and images; translations are replaced per locale.
func (im *Importer) Import(ctx context.Context, doc *Document) (ImportResult, error) {
	var result ImportResult
	err := im.cards.storage.WithTx(ctx, func(tx storage.Storage) error {
		result = ImportResult{}
		for i := range doc.Cards {
			created, err := im.importCard(ctx, tx, &doc.Cards[i])
			if err != nil {
				return fmt.Errorf("card %q: %w", doc.Cards[i].Name, err)
			}
			if created {
				result.CardsCreated++
			} else {
				result.CardsUpdated++
			}
		}
		for i := range doc.Characters {
			created, err := im.importCharacter(ctx, tx, &doc.Characters[i])
			if err != nil {
				return fmt.Errorf("character %q: %w", doc.Characters[i].Name, err)
			}
			if created {
				result.CharactersCreated++
			} else {
				result.CharactersUpdated++
			}
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	im.logger.Info("catalog imported",
		slog.Int("cards_created", result.CardsCreated),
		slog.Int("cards_updated", result.CardsUpdated),
		slog.Int("characters_created", result.CharactersCreated),
		slog.Int("characters_updated", result.CharactersUpdated),
	)
	return result, nil
}

func (im *Importer) importCard(ctx context.Context, tx storage.Storage, entry *CardEntry) (bool, error) {
	if err := validation.Struct(ctx, entry); err != nil {
		return false, err
	}

	card, err := tx.FindCardByName(ctx, entry.Name)
	created := errors.Is(err, model.ErrCardNotFound)
	switch {
	case created:
		card, err = im.cards.create(ctx, tx, entry.CardInput)
		if err != nil {
			return false, err
		}
	case err != nil:
		return false, err
	default:
		locale, err := im.cards.authoredLocale(entry.Locale)
		if err != nil {
			return false, err
		}
		card.Description = entry.Description
		card.Type = entry.Type
		card.Subtype = entry.Subtype
		card.AttributeModifiers = entry.AttributeModifiers
		card.HandUsage = entry.HandUsage
		card.Locale = locale
	}

	for _, t := range entry.Translations {
		if existing := card.Translation(t.Locale); existing != nil {
			existing.Name = t.Name
			existing.Description = t.Description
			existing.UpdatedAt = im.cards.clock.Now()
			continue
		}
		if err := im.cards.addTranslation(card, t); err != nil {
			return false, err
		}
	}
	if created && len(entry.Translations) == 0 {
		return true, nil
	}
	return created, im.cards.saveTranslated(ctx, tx, card)
}

func (im *Importer) importCharacter(ctx context.Context, tx storage.Storage, entry *CharacterEntry) (bool, error) {
	if err := validation.Struct(ctx, entry); err != nil {
		return false, err
	}

	input := entry.CharacterInput
	for _, name := range entry.Cards {
		card, err := tx.FindCardByName(ctx, name)
		if err != nil {
			return false, fmt.Errorf("starting card %q: %w", name, err)
		}
		input.CardIDs = append(input.CardIDs, card.ID)
	}

	character, err := tx.FindCharacterByName(ctx, input.Name)
	created := errors.Is(err, model.ErrCharacterNotFound)
	switch {
	case created:
		character, err = im.characters.create(ctx, tx, input)
		if err != nil {
			return false, err
		}
	case err != nil:
		return false, err
	default:
		locale, err := im.characters.authoredLocale(input.Locale)
		if err != nil {
			return false, err
		}
		cards, err := cardQuantities(ctx, tx, input.CardIDs)
		if err != nil {
			return false, err
		}
		character.Expansion = input.Expansion
		character.Description = input.Description
		character.Profession = input.Profession
		character.StartingLocation = input.StartingLocation
		character.Sanity = input.Sanity
		character.Endurance = input.Endurance
		character.Concentration = input.Concentration
		character.Attributes = input.Attributes
		character.Skills = input.Skills
		character.Equipment = input.Equipment
		character.Cards = keepRowIDs(character.Cards, cards)
		character.Locale = locale
	}

	for _, t := range entry.Translations {
		if existing := character.Translation(t.Locale); existing != nil {
			existing.Name = t.Name
			existing.Description = t.Description
			existing.Profession = t.Profession
			existing.StartingLocation = t.StartingLocation
			existing.Skills = t.Skills
			existing.UpdatedAt = im.characters.clock.Now()
			continue
		}
		if err := im.characters.addTranslation(character, t); err != nil {
			return false, err
		}
	}
	if created && len(entry.Translations) == 0 {
		return true, nil
	}
	return created, im.characters.saveTranslated(ctx, tx, character)
}

// Package catalog manages the card and character catalogs, their images and translations.
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
	"github.com/mcoot/arkham-companion/internal/services/player"
	"github.com/mcoot/arkham-companion/internal/storage"
)

// Config holds configuration shared by the catalog services
type Config struct {
	Languages   model.Languages
	MaxFileSize int64
}

// DefaultConfig returns default catalog configuration
func DefaultConfig() Config {
	return Config{
		Languages: model.Languages{
			App:       "en",
			Available: []model.Locale{"en", "es"},
		},
		MaxFileSize: files.DefaultMaxSize,
	}
}

// base holds what the card and character services share
type base struct {
	storage storage.Storage
	files   files.FileStore
	random  random.Random
	clock   clock.Clock
	logger  *slog.Logger

	languages   model.Languages
	maxFileSize int64
}

func newBase(st storage.Storage, fs files.FileStore, rnd random.Random, clk clock.Clock, cfg Config, logger *slog.Logger) base {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = files.DefaultMaxSize
	}
	return base{
		storage:     st,
		files:       fs,
		random:      rnd,
		clock:       clk,
		logger:      logger,
		languages:   cfg.Languages,
		maxFileSize: cfg.MaxFileSize,
	}
}

// authoredLocale defaults an empty locale to the app language
func (b *base) authoredLocale(locale model.Locale) (model.Locale, error) {
	if locale == "" {
		return b.languages.App, nil
	}
	if !b.languages.Supports(locale) {
		return "", model.ErrLanguageNotSupported
	}
	return locale, nil
}

// checkTranslatable enforces that a translation locale is supported, not the
// app language and not the entity's own locale
func (b *base) checkTranslatable(entityLocale, locale model.Locale) error {
	if !b.languages.Translatable(locale) || locale == entityLocale {
		return fmt.Errorf("%w: %s", model.ErrLanguageNotSupported, locale)
	}
	return nil
}

// storeUpload validates the upload and stores it under prefix
func (b *base) storeUpload(ctx context.Context, prefix string, upload *model.Upload) (string, error) {
	if err := files.ValidateImage(upload, b.maxFileSize); err != nil {
		return "", err
	}
	ext, _ := files.ExtensionFor(upload.ContentType)
	key := fmt.Sprintf("%s-%s%s", prefix, b.random.UUID(), ext)

	url, err := b.files.Put(ctx, key, upload.ContentType, upload.Content)
	if err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return url, nil
}

// removeFile deletes a stored file; failures surface as ErrFileDeleteFailed
func (b *base) removeFile(ctx context.Context, url *string) error {
	if url == nil || *url == "" {
		return nil
	}
	if err := b.files.Remove(ctx, *url); err != nil {
		b.logger.Warn("failed to delete stored file", slog.String("url", *url), slog.Any("error", err))
		return fmt.Errorf("%w: %v", model.ErrFileDeleteFailed, err)
	}
	return nil
}

// removeFiles attempts every removal and joins the failures
func (b *base) removeFiles(ctx context.Context, urls ...*string) error {
	var errs []error
	for _, url := range urls {
		if err := b.removeFile(ctx, url); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// discard removes a freshly stored file after a failed write
func (b *base) discard(ctx context.Context, url string) {
	if err := b.files.Remove(ctx, url); err != nil {
		b.logger.Warn("failed to discard stored file", slog.String("url", url), slog.Any("error", err))
	}
}

// cardQuantities resolves card IDs, with repeats, into grouped quantities
func cardQuantities(ctx context.Context, tx storage.Storage, ids []model.CardID) ([]model.CardQuantity, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cards, err := tx.GetCards(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load cards: %w", err)
	}
	byID := make(map[model.CardID]*model.Card, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}

	list := make([]*model.Card, 0, len(ids))
	for _, id := range ids {
		card, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %d", model.ErrCardNotFound, id)
		}
		list = append(list, card)
	}
	return player.GroupQuantities(list), nil
}


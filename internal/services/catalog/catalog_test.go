package catalog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/mcoot/arkham-companion/internal/dependencies/mocks"
	filesmock "github.com/mcoot/arkham-companion/internal/files/mock"
	"github.com/mcoot/arkham-companion/internal/model"
	"github.com/mcoot/arkham-companion/internal/storage"
	"github.com/mcoot/arkham-companion/internal/storage/memory"
	"github.com/mcoot/arkham-companion/internal/testutil"
)

type CatalogSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	files      *filesmock.MockFileStore
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	cards      *CardService
	characters *CharacterService
	importer   *Importer
	ctx        context.Context
}

func TestCatalogSuite(t *testing.T) {
	suite.Run(t, new(CatalogSuite))
}

func (s *CatalogSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.files = filesmock.NewMockFileStore(s.ctrl)
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.ctx = context.Background()

	cfg := DefaultConfig()
	cfg.MaxFileSize = 1024
	s.cards = NewCardService(s.storage, s.files, s.random, s.clock, cfg, testutil.NopLogger())
	s.characters = NewCharacterService(s.storage, s.files, s.random, s.clock, cfg, testutil.NopLogger())
	s.importer = NewImporter(s.cards, s.characters, testutil.NopLogger())
}

func png() *model.Upload {
	return &model.Upload{
		Filename:    "front.png",
		ContentType: "image/png",
		Size:        4,
		Content:     bytes.NewReader([]byte{0x89, 'P', 'N', 'G'}),
	}
}

func (s *CatalogSuite) createCard(name string, cardType model.CardType) *model.Card {
	card, err := s.cards.Create(s.ctx, CardInput{Name: name, Description: name + " text", Type: cardType})
	s.Require().NoError(err)
	return card
}

func (s *CatalogSuite) createCharacter(name string, cards ...model.CardID) *model.Character {
	character, err := s.characters.Create(s.ctx, CharacterInput{
		Expansion:  model.ExpansionBase,
		Name:       name,
		Profession: "Student",
		Sanity:     5,
		Endurance:  5,
		Equipment:  model.CharacterEquipment{Money: 3, Random: model.RandomEquipment{CommonItems: 1}},
		CardIDs:    cards,
	})
	s.Require().NoError(err)
	return character
}

// Cards

func (s *CatalogSuite) TestCreateCardDefaultsToAppLocale() {
	card := s.createCard("Tommy Gun", model.CardTypeCommonItem)

	s.NotZero(card.ID)
	s.Equal(model.Locale("en"), card.Locale)
	s.Equal(s.clock.Now(), card.CreatedAt)
}

func (s *CatalogSuite) TestCreateCardValidates() {
	_, err := s.cards.Create(s.ctx, CardInput{Type: "weapon"})

	var verr *model.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields, "name")
	s.Contains(verr.Fields, "type")
}

func (s *CatalogSuite) TestCreateCardRejectsUnsupportedLocale() {
	_, err := s.cards.Create(s.ctx, CardInput{Name: "Knife", Type: model.CardTypeCommonItem, Locale: "de"})
	s.ErrorIs(err, model.ErrLanguageNotSupported)
}

func (s *CatalogSuite) TestFindAllFiltersByType() {
	s.createCard("Tommy Gun", model.CardTypeCommonItem)
	s.createCard("Wither", model.CardTypeSpell)

	spell := model.CardTypeSpell
	cards, err := s.cards.FindAll(s.ctx, storage.CardFilter{Type: &spell}, "en")
	s.Require().NoError(err)
	s.Require().Len(cards, 1)
	s.Equal("Wither", cards[0].Name)
}

func (s *CatalogSuite) TestUpdateCardPatchesSetFields() {
	card := s.createCard("Tommy Gun", model.CardTypeCommonItem)
	name := "Tommy Gun (Drum)"
	hands := 2

	updated, err := s.cards.Update(s.ctx, card.ID, CardPatch{Name: &name, HandUsage: &hands})
	s.Require().NoError(err)

	s.Equal(name, updated.Name)
	s.Equal("Tommy Gun text", updated.Description)
	s.Require().NotNil(updated.HandUsage)
	s.Equal(2, *updated.HandUsage)
}

func (s *CatalogSuite) TestUpdateCardLocaleClashesWithTranslation() {
	card := s.createCard("Tommy Gun", model.CardTypeCommonItem)
	_, err := s.cards.AddTranslation(s.ctx, card.ID, CardTranslationInput{Locale: "es", Name: "Metralleta"})
	s.Require().NoError(err)

	es := model.Locale("es")
	_, err = s.cards.Update(s.ctx, card.ID, CardPatch{Locale: &es})
	s.ErrorIs(err, model.ErrTranslationExists)
}

func (s *CatalogSuite) TestCardTranslationLifecycle() {
	card := s.createCard("Tommy Gun", model.CardTypeCommonItem)

	_, err := s.cards.AddTranslation(s.ctx, card.ID, CardTranslationInput{Locale: "es", Name: "Metralleta"})
	s.Require().NoError(err)

	resolved, err := s.cards.FindOne(s.ctx, card.ID, "es")
	s.Require().NoError(err)
	s.Equal("Metralleta", resolved.Name)
	s.Equal(model.Locale("es"), resolved.Locale)

	_, err = s.cards.AddTranslation(s.ctx, card.ID, CardTranslationInput{Locale: "es", Name: "Otra"})
	s.ErrorIs(err, model.ErrTranslationExists)

	name := "Ametralladora"
	edited, err := s.cards.EditTranslation(s.ctx, card.ID, "es", CardTranslationPatch{Name: &name})
	s.Require().NoError(err)
	s.Equal(name, edited.Translation("es").Name)

	deleted, err := s.cards.DeleteTranslation(s.ctx, card.ID, "es")
	s.Require().NoError(err)
	s.Empty(deleted.Translations)

	_, err = s.cards.DeleteTranslation(s.ctx, card.ID, "es")
	s.ErrorIs(err, model.ErrTranslationNotFound)
}

func (s *CatalogSuite) TestAddTranslationRejectsAuthoredLocale() {
	card := s.createCard("Tommy Gun", model.CardTypeCommonItem)

	_, err := s.cards.AddTranslation(s.ctx, card.ID, CardTranslationInput{Locale: "en", Name: "Tommy Gun"})
	s.ErrorIs(err, model.ErrLanguageNotSupported)

	_, err = s.cards.AddTranslation(s.ctx, card.ID, CardTranslationInput{Locale: "fr", Name: "Mitraillette"})
	s.ErrorIs(err, model.ErrLanguageNotSupported)
}

func (s *CatalogSuite) TestFindOneFallsBackWithoutTranslation() {
	card := s.createCard("Tommy Gun", model.CardTypeCommonItem)

	resolved, err := s.cards.FindOne(s.ctx, card.ID, "es")
	s.Require().NoError(err)
	s.Equal("Tommy Gun", resolved.Name)
	s.Equal(model.Locale("en"), resolved.Locale)
}

func (s *CatalogSuite) TestSetImageStoresUnderSideKey() {
	card := s.createCard("Tommy Gun", model.CardTypeCommonItem)
	s.random.QueueUUID("11111111-1111-4111-8111-111111111111")

	s.files.EXPECT().
		Put(gomock.Any(), "cards/"+itoa(card.ID)+"-front-11111111-1111-4111-8111-111111111111.png", "image/png", gomock.Any()).
		Return("/uploads/front.png", nil)

	updated, err := s.cards.SetImage(s.ctx, card.ID, model.CardSideFront, png())
	s.Require().NoError(err)
	s.Require().NotNil(updated.FrontImagePath)
	s.Equal("/uploads/front.png", *updated.FrontImagePath)
	s.Nil(updated.BackImagePath)
}

func (s *CatalogSuite) TestSetImageReplacesPreviousFile() {
	card := s.createCard("Tommy Gun", model.CardTypeCommonItem)

	gomock.InOrder(
		s.files.EXPECT().Put(gomock.Any(), gomock.Any(), "image/png", gomock.Any()).Return("/uploads/one.png", nil),
		s.files.EXPECT().Put(gomock.Any(), gomock.Any(), "image/png", gomock.Any()).Return("/uploads/two.png", nil),
		s.files.EXPECT().Remove(gomock.Any(), "/uploads/one.png").Return(nil),
	)

	_, err := s.cards.SetImage(s.ctx, card.ID, model.CardSideBack, png())
	s.Require().NoError(err)
	updated, err := s.cards.SetImage(s.ctx, card.ID, model.CardSideBack, png())
	s.Require().NoError(err)
	s.Equal("/uploads/two.png", *updated.BackImagePath)
}

func (s *CatalogSuite) TestSetImageDeleteFailureDiscardsNewFile() {
	card := s.createCard("Tommy Gun", model.CardTypeCommonItem)

	gomock.InOrder(
		s.files.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("/uploads/one.png", nil),
		s.files.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("/uploads/two.png", nil),
		s.files.EXPECT().Remove(gomock.Any(), "/uploads/one.png").Return(errors.New("disk gone")),
		s.files.EXPECT().Remove(gomock.Any(), "/uploads/two.png").Return(nil),
	)

	_, err := s.cards.SetImage(s.ctx, card.ID, model.CardSideFront, png())
	s.Require().NoError(err)
	_, err = s.cards.SetImage(s.ctx, card.ID, model.CardSideFront, png())
	s.ErrorIs(err, model.ErrFileDeleteFailed)

	stored, err := s.cards.FindOne(s.ctx, card.ID, "")
	s.Require().NoError(err)
	s.Equal("/uploads/one.png", *stored.FrontImagePath)
}

func (s *CatalogSuite) TestSetImageRejectsBadUploadsBeforeStoring() {
	card := s.createCard("Tommy Gun", model.CardTypeCommonItem)

	_, err := s.cards.SetImage(s.ctx, card.ID, model.CardSideFront, nil)
	s.ErrorIs(err, model.ErrFileMissing)

	gif := png()
	gif.ContentType = "image/gif"
	_, err = s.cards.SetImage(s.ctx, card.ID, model.CardSideFront, gif)
	s.ErrorIs(err, model.ErrFileWrongType)

	big := png()
	big.Size = 2048
	_, err = s.cards.SetImage(s.ctx, card.ID, model.CardSideFront, big)
	s.ErrorIs(err, model.ErrFileSizeExceeded)
}

func (s *CatalogSuite) TestSetImageMissingCard() {
	_, err := s.cards.SetImage(s.ctx, 999, model.CardSideFront, png())
	s.ErrorIs(err, model.ErrCardNotFound)
}

func (s *CatalogSuite) TestDeleteImageWithoutImageIsNoop() {
	card := s.createCard("Tommy Gun", model.CardTypeCommonItem)

	updated, err := s.cards.DeleteImage(s.ctx, card.ID, model.CardSideFront)
	s.Require().NoError(err)
	s.Nil(updated.FrontImagePath)
}

func (s *CatalogSuite) TestDeleteCardRemovesImages() {
	card := s.createCard("Tommy Gun", model.CardTypeCommonItem)
	s.files.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("/uploads/front.png", nil)
	_, err := s.cards.SetImage(s.ctx, card.ID, model.CardSideFront, png())
	s.Require().NoError(err)

	s.files.EXPECT().Remove(gomock.Any(), "/uploads/front.png").Return(nil)
	s.Require().NoError(s.cards.Delete(s.ctx, card.ID))

	_, err = s.cards.FindOne(s.ctx, card.ID, "")
	s.ErrorIs(err, model.ErrCardNotFound)
}

func (s *CatalogSuite) TestDeleteCardAttemptsEveryImageRemoval() {
	card := s.createCard("Tommy Gun", model.CardTypeCommonItem)
	gomock.InOrder(
		s.files.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("/uploads/front.png", nil),
		s.files.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("/uploads/back.png", nil),
	)
	_, err := s.cards.SetImage(s.ctx, card.ID, model.CardSideFront, png())
	s.Require().NoError(err)
	_, err = s.cards.SetImage(s.ctx, card.ID, model.CardSideBack, png())
	s.Require().NoError(err)

	s.files.EXPECT().Remove(gomock.Any(), "/uploads/front.png").Return(nil)
	s.files.EXPECT().Remove(gomock.Any(), "/uploads/back.png").Return(errors.New("disk gone"))
	err = s.cards.Delete(s.ctx, card.ID)
	s.ErrorIs(err, model.ErrFileDeleteFailed)

	_, err = s.cards.FindOne(s.ctx, card.ID, "")
	s.ErrorIs(err, model.ErrCardNotFound)
}

func (s *CatalogSuite) TestDeleteCardFrontFailureStillRemovesBack() {
	card := s.createCard("Tommy Gun", model.CardTypeCommonItem)
	gomock.InOrder(
		s.files.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("/uploads/front.png", nil),
		s.files.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("/uploads/back.png", nil),
	)
	_, err := s.cards.SetImage(s.ctx, card.ID, model.CardSideFront, png())
	s.Require().NoError(err)
	_, err = s.cards.SetImage(s.ctx, card.ID, model.CardSideBack, png())
	s.Require().NoError(err)

	s.files.EXPECT().Remove(gomock.Any(), "/uploads/front.png").Return(errors.New("disk gone"))
	s.files.EXPECT().Remove(gomock.Any(), "/uploads/back.png").Return(nil)
	s.ErrorIs(s.cards.Delete(s.ctx, card.ID), model.ErrFileDeleteFailed)

	_, err = s.cards.FindOne(s.ctx, card.ID, "")
	s.ErrorIs(err, model.ErrCardNotFound)
}

func (s *CatalogSuite) TestDeleteCharacterPhotoFailureStillDeletesRow() {
	character := s.createCharacter("Amanda Sharpe")
	s.files.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("/uploads/amanda.png", nil)
	_, err := s.characters.SetPhoto(s.ctx, character.ID, png())
	s.Require().NoError(err)

	s.files.EXPECT().Remove(gomock.Any(), "/uploads/amanda.png").Return(errors.New("permission denied"))
	s.ErrorIs(s.characters.Delete(s.ctx, character.ID), model.ErrFileDeleteFailed)

	_, err = s.characters.FindOne(s.ctx, character.ID, "")
	s.ErrorIs(err, model.ErrCharacterNotFound)
}

// Characters

func (s *CatalogSuite) TestCreateCharacterGroupsStartingCards() {
	gun := s.createCard("Tommy Gun", model.CardTypeCommonItem)
	sign := s.createCard("Elder Sign", model.CardTypeUniqueItem)

	character := s.createCharacter("Amanda Sharpe", gun.ID, sign.ID, gun.ID)

	found, err := s.characters.FindOne(s.ctx, character.ID, "")
	s.Require().NoError(err)
	s.Require().Len(found.Cards, 2)
	s.Equal(gun.ID, found.Cards[0].Card.ID)
	s.Equal(2, found.Cards[0].Quantity)
	s.Equal(sign.ID, found.Cards[1].Card.ID)
	s.Equal(1, found.Cards[1].Quantity)
}

func (s *CatalogSuite) TestCreateCharacterUnknownCard() {
	_, err := s.characters.Create(s.ctx, CharacterInput{
		Expansion: model.ExpansionBase,
		Name:      "Amanda Sharpe",
		CardIDs:   []model.CardID{404},
	})
	s.ErrorIs(err, model.ErrCardNotFound)
}

func (s *CatalogSuite) TestCreateCharacterValidatesExpansion() {
	_, err := s.characters.Create(s.ctx, CharacterInput{Expansion: "dreamlands", Name: "Amanda Sharpe"})

	var verr *model.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields, "expansion")
}

func (s *CatalogSuite) TestUpdateCharacterReplacesCards() {
	gun := s.createCard("Tommy Gun", model.CardTypeCommonItem)
	sign := s.createCard("Elder Sign", model.CardTypeUniqueItem)
	character := s.createCharacter("Amanda Sharpe", gun.ID)
	sanity := 3

	updated, err := s.characters.Update(s.ctx, character.ID, CharacterPatch{
		Sanity:  &sanity,
		CardIDs: []model.CardID{sign.ID, sign.ID},
	})
	s.Require().NoError(err)

	s.Equal(3, updated.Sanity)
	s.Equal("Student", updated.Profession)
	s.Require().Len(updated.Cards, 1)
	s.Equal(sign.ID, updated.Cards[0].Card.ID)
	s.Equal(2, updated.Cards[0].Quantity)
}

func (s *CatalogSuite) TestCharacterTranslationResolvesCards() {
	gun := s.createCard("Tommy Gun", model.CardTypeCommonItem)
	_, err := s.cards.AddTranslation(s.ctx, gun.ID, CardTranslationInput{Locale: "es", Name: "Metralleta"})
	s.Require().NoError(err)
	character := s.createCharacter("Amanda Sharpe", gun.ID)

	_, err = s.characters.AddTranslation(s.ctx, character.ID, CharacterTranslationInput{
		Locale:     "es",
		Name:       "Amanda Sharpe",
		Profession: "Estudiante",
	})
	s.Require().NoError(err)

	found, err := s.characters.FindOne(s.ctx, character.ID, "es")
	s.Require().NoError(err)
	s.Equal("Estudiante", found.Profession)
	s.Require().Len(found.Cards, 1)
	s.Equal("Metralleta", found.Cards[0].Card.Name)

	all, err := s.characters.FindAll(s.ctx, "es")
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Equal("Estudiante", all[0].Profession)
}

func (s *CatalogSuite) TestCharacterTranslationEditAndDelete() {
	character := s.createCharacter("Amanda Sharpe")
	_, err := s.characters.AddTranslation(s.ctx, character.ID, CharacterTranslationInput{Locale: "es", Name: "Amanda"})
	s.Require().NoError(err)

	location := "Universidad Miskatonic"
	edited, err := s.characters.EditTranslation(s.ctx, character.ID, "es", CharacterTranslationPatch{StartingLocation: &location})
	s.Require().NoError(err)
	s.Equal(location, edited.Translation("es").StartingLocation)
	s.Equal("Amanda", edited.Translation("es").Name)

	_, err = s.characters.EditTranslation(s.ctx, character.ID, "fr", CharacterTranslationPatch{StartingLocation: &location})
	s.ErrorIs(err, model.ErrTranslationNotFound)

	deleted, err := s.characters.DeleteTranslation(s.ctx, character.ID, "es")
	s.Require().NoError(err)
	s.Empty(deleted.Translations)
}

func (s *CatalogSuite) TestSetPhotoAndDeletePhoto() {
	character := s.createCharacter("Amanda Sharpe")

	s.files.EXPECT().Put(gomock.Any(), gomock.Any(), "image/png", gomock.Any()).
		DoAndReturn(func(_ context.Context, key, _ string, _ io.Reader) (string, error) {
			s.True(strings.HasPrefix(key, "characters/"+itoa(character.ID)+"-"))
			s.True(strings.HasSuffix(key, ".png"))
			return "/uploads/amanda.png", nil
		})
	updated, err := s.characters.SetPhoto(s.ctx, character.ID, png())
	s.Require().NoError(err)
	s.Equal("/uploads/amanda.png", *updated.ImagePath)

	s.files.EXPECT().Remove(gomock.Any(), "/uploads/amanda.png").Return(nil)
	cleared, err := s.characters.DeletePhoto(s.ctx, character.ID)
	s.Require().NoError(err)
	s.Nil(cleared.ImagePath)
}

func (s *CatalogSuite) TestDeletePhotoFailureSurfaces() {
	character := s.createCharacter("Amanda Sharpe")
	s.files.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("/uploads/amanda.png", nil)
	_, err := s.characters.SetPhoto(s.ctx, character.ID, png())
	s.Require().NoError(err)

	s.files.EXPECT().Remove(gomock.Any(), "/uploads/amanda.png").Return(errors.New("permission denied"))
	_, err = s.characters.DeletePhoto(s.ctx, character.ID)
	s.ErrorIs(err, model.ErrFileDeleteFailed)
}

func (s *CatalogSuite) TestDeleteCharacter() {
	character := s.createCharacter("Amanda Sharpe")

	s.Require().NoError(s.characters.Delete(s.ctx, character.ID))

	_, err := s.characters.FindOne(s.ctx, character.ID, "")
	s.ErrorIs(err, model.ErrCharacterNotFound)
	s.ErrorIs(s.characters.Delete(s.ctx, character.ID), model.ErrCharacterNotFound)
}

// Import

const seedDocument = `
cards:
  - name: Tommy Gun
    description: Physical weapon
    type: common_item
    subtype: physical_weapon
    hand_usage: 2
    attribute_modifiers:
      - modifier: combat
        value: 6
    translations:
      - locale: es
        name: Metralleta
  - name: Elder Sign
    type: unique_item
characters:
  - name: Amanda Sharpe
    expansion: base
    profession: Student
    sanity: 5
    endurance: 5
    attributes:
      speed: [1, 2, 3, 4]
    skills:
      - name: Study Group
        value: 1
    equipment:
      money: 1
      clues: 1
      random:
        common_items: 1
    cards: [Tommy Gun, Tommy Gun, Elder Sign]
    translations:
      - locale: es
        name: Amanda Sharpe
        profession: Estudiante
`

func (s *CatalogSuite) TestParseDocument() {
	doc, err := ParseDocument(strings.NewReader(seedDocument))
	s.Require().NoError(err)

	s.Require().Len(doc.Cards, 2)
	s.Equal(model.CardTypeCommonItem, doc.Cards[0].Type)
	s.Require().NotNil(doc.Cards[0].HandUsage)
	s.Equal(2, *doc.Cards[0].HandUsage)
	s.Equal([]model.AttributeModifier{{Modifier: "combat", Value: 6}}, doc.Cards[0].AttributeModifiers)

	s.Require().Len(doc.Characters, 1)
	s.Equal([]int{1, 2, 3, 4}, doc.Characters[0].Attributes["speed"])
	s.Equal([]string{"Tommy Gun", "Tommy Gun", "Elder Sign"}, doc.Characters[0].Cards)
	s.Equal(1, doc.Characters[0].Equipment.Random.CommonItems)
}

func (s *CatalogSuite) TestParseEmptyDocument() {
	doc, err := ParseDocument(strings.NewReader(""))
	s.Require().NoError(err)
	s.Empty(doc.Cards)
}

func (s *CatalogSuite) TestParseDocumentRejectsGarbage() {
	_, err := ParseDocument(strings.NewReader("cards: [unclosed"))
	s.Error(err)
}

func (s *CatalogSuite) TestImportCreatesThenUpdates() {
	doc, err := ParseDocument(strings.NewReader(seedDocument))
	s.Require().NoError(err)

	result, err := s.importer.Import(s.ctx, doc)
	s.Require().NoError(err)
	s.Equal(ImportResult{CardsCreated: 2, CharactersCreated: 1}, result)

	character, err := s.storage.FindCharacterByName(s.ctx, "Amanda Sharpe")
	s.Require().NoError(err)
	s.Require().Len(character.Cards, 2)
	s.Equal(2, character.Cards[0].Quantity)
	s.Equal("Estudiante", character.Translation("es").Profession)

	doc.Cards[0].Description = "Heavy weapon"
	doc.Cards[0].Translations[0].Name = "Ametralladora"
	result, err = s.importer.Import(s.ctx, doc)
	s.Require().NoError(err)
	s.Equal(ImportResult{CardsUpdated: 2, CharactersUpdated: 1}, result)

	card, err := s.storage.FindCardByName(s.ctx, "Tommy Gun")
	s.Require().NoError(err)
	s.Equal("Heavy weapon", card.Description)
	s.Len(card.Translations, 1)
	s.Equal("Ametralladora", card.Translation("es").Name)

	cards, err := s.storage.ListCards(s.ctx, storage.CardFilter{})
	s.Require().NoError(err)
	s.Len(cards, 2)
}

func (s *CatalogSuite) TestImportUnknownStartingCard() {
	doc := &Document{Characters: []CharacterEntry{{
		CharacterInput: CharacterInput{Expansion: model.ExpansionBase, Name: "Amanda Sharpe"},
		Cards:          []string{"Missing"},
	}}}

	_, err := s.importer.Import(s.ctx, doc)
	s.ErrorIs(err, model.ErrCardNotFound)
}

func itoa[T ~uint](v T) string {
	return strconv.FormatUint(uint64(v), 10)
}

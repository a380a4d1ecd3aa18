package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mcoot/arkham-companion/internal/model"
	"github.com/mcoot/arkham-companion/internal/storage"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Storage is a PostgreSQL implementation of the storage interface backed by gorm
type Storage struct {
	db *gorm.DB
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Open connects to PostgreSQL using the provided DSN
func Open(dsn string) (*Storage, error) {
	if dsn == "" {
		return nil, errors.New("database DSN is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return NewWithDB(db), nil
}

// NewWithDB wraps an existing gorm handle
func NewWithDB(db *gorm.DB) *Storage {
	return &Storage{db: db}
}

// Migrate creates or updates every table
func (s *Storage) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(records()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Ping checks the database connection
func (s *Storage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTx runs fn inside a database transaction; nested calls use savepoints
func (s *Storage) WithTx(ctx context.Context, fn func(tx storage.Storage) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Storage{db: tx})
	})
}

// translate maps driver errors onto storage and model errors
func translate(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", storage.ErrDuplicate, err)
	default:
		return err
	}
}

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	rec := userFromModel(user)
	rec.Email = strings.ToLower(strings.TrimSpace(rec.Email))
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return translate(err, model.ErrUserNotFound)
	}
	user.ID = model.UserID(rec.ID)
	user.CreatedAt, user.UpdatedAt = rec.CreatedAt, rec.UpdatedAt
	return nil
}

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	rec := userFromModel(user)
	rec.Email = strings.ToLower(strings.TrimSpace(rec.Email))
	result := s.db.WithContext(ctx).Model(&rec).Select("*").Omit("created_at").Updates(&rec)
	if result.Error != nil {
		return translate(result.Error, model.ErrUserNotFound)
	}
	if result.RowsAffected == 0 {
		return model.ErrUserNotFound
	}
	user.UpdatedAt = rec.UpdatedAt
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	var rec userRecord
	if err := s.db.WithContext(ctx).First(&rec, uint(id)).Error; err != nil {
		return nil, translate(err, model.ErrUserNotFound)
	}
	return userToModel(&rec), nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var rec userRecord
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&rec).Error
	if err != nil {
		return nil, translate(err, model.ErrUserNotFound)
	}
	return userToModel(&rec), nil
}

// Card operations

func (s *Storage) cards(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Preload("Translations", orderByID)
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

func (s *Storage) SaveCard(ctx context.Context, card *model.Card) error {
	rec := cardFromModel(card)
	translations := rec.Translations
	rec.Translations = nil

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if rec.ID == 0 {
			if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
				return err
			}
		} else {
			result := tx.Model(&rec).Omit(clause.Associations, "created_at").Select("*").Updates(&rec)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return model.ErrCardNotFound
			}
		}

		keep := make([]uint, 0, len(translations))
		for _, t := range translations {
			if t.ID != 0 {
				keep = append(keep, t.ID)
			}
		}
		del := tx.Where("card_id = ?", rec.ID)
		if len(keep) > 0 {
			del = del.Where("id NOT IN ?", keep)
		}
		if err := del.Delete(&cardTranslationRecord{}).Error; err != nil {
			return err
		}
		for i := range translations {
			translations[i].CardID = rec.ID
			if err := tx.Save(&translations[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return translate(err, model.ErrCardNotFound)
	}

	card.ID = model.CardID(rec.ID)
	card.CreatedAt, card.UpdatedAt = rec.CreatedAt, rec.UpdatedAt
	for i := range translations {
		card.Translations[i].ID = translations[i].ID
	}
	return nil
}

func (s *Storage) GetCard(ctx context.Context, id model.CardID) (*model.Card, error) {
	var rec cardRecord
	if err := s.cards(ctx).First(&rec, uint(id)).Error; err != nil {
		return nil, translate(err, model.ErrCardNotFound)
	}
	return cardToModel(&rec), nil
}

func (s *Storage) GetCards(ctx context.Context, ids []model.CardID) ([]*model.Card, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	raw := make([]uint, len(ids))
	for i, id := range ids {
		raw[i] = uint(id)
	}

	var recs []cardRecord
	if err := s.cards(ctx).Where("id IN ?", raw).Find(&recs).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]*cardRecord, len(recs))
	for i := range recs {
		byID[recs[i].ID] = &recs[i]
	}

	var out []*model.Card
	for _, id := range raw {
		if rec, ok := byID[id]; ok {
			out = append(out, cardToModel(rec))
			delete(byID, id)
		}
	}
	return out, nil
}

func (s *Storage) ListCards(ctx context.Context, filter storage.CardFilter) ([]*model.Card, error) {
	query := s.cards(ctx).Order("id")
	if filter.Type != nil {
		query = query.Where("type = ?", string(*filter.Type))
	}

	var recs []cardRecord
	if err := query.Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*model.Card, len(recs))
	for i := range recs {
		out[i] = cardToModel(&recs[i])
	}
	return out, nil
}

func (s *Storage) FindCardByName(ctx context.Context, name string) (*model.Card, error) {
	var rec cardRecord
	if err := s.cards(ctx).Where("name = ?", name).Order("id").First(&rec).Error; err != nil {
		return nil, translate(err, model.ErrCardNotFound)
	}
	return cardToModel(&rec), nil
}

func (s *Storage) DeleteCard(ctx context.Context, id model.CardID) error {
	result := s.db.WithContext(ctx).Delete(&cardRecord{}, uint(id))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrCardNotFound
	}
	return nil
}

// Character operations

func (s *Storage) characters(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Translations", orderByID).
		Preload("Cards", orderByID).
		Preload("Cards.Card.Translations", orderByID)
}

func (s *Storage) SaveCharacter(ctx context.Context, character *model.Character) error {
	rec := characterFromModel(character)
	translations := rec.Translations
	rec.Translations = nil

	var hand []characterCardRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if rec.ID == 0 {
			if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
				return err
			}
		} else {
			result := tx.Model(&rec).Omit(clause.Associations, "created_at").Select("*").Updates(&rec)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return model.ErrCharacterNotFound
			}
		}

		keep := make([]uint, 0, len(translations))
		for _, t := range translations {
			if t.ID != 0 {
				keep = append(keep, t.ID)
			}
		}
		del := tx.Where("character_id = ?", rec.ID)
		if len(keep) > 0 {
			del = del.Where("id NOT IN ?", keep)
		}
		if err := del.Delete(&characterTranslationRecord{}).Error; err != nil {
			return err
		}
		for i := range translations {
			translations[i].CharacterID = rec.ID
			if err := tx.Save(&translations[i]).Error; err != nil {
				return err
			}
		}

		var err error
		hand, err = syncCharacterCards(tx, rec.ID, character.Cards)
		return err
	})
	if err != nil {
		return translate(err, model.ErrCharacterNotFound)
	}

	character.ID = model.CharacterID(rec.ID)
	character.CreatedAt, character.UpdatedAt = rec.CreatedAt, rec.UpdatedAt
	for i := range translations {
		character.Translations[i].ID = translations[i].ID
	}
	writeBackHand(character.Cards, func(cardID model.CardID) uint {
		for _, h := range hand {
			if h.CardID == uint(cardID) {
				return h.ID
			}
		}
		return 0
	})
	return nil
}

func (s *Storage) GetCharacter(ctx context.Context, id model.CharacterID) (*model.Character, error) {
	var rec characterRecord
	if err := s.characters(ctx).First(&rec, uint(id)).Error; err != nil {
		return nil, translate(err, model.ErrCharacterNotFound)
	}
	return characterToModel(&rec), nil
}

func (s *Storage) ListCharacters(ctx context.Context) ([]*model.Character, error) {
	var recs []characterRecord
	if err := s.characters(ctx).Order("id").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*model.Character, len(recs))
	for i := range recs {
		out[i] = characterToModel(&recs[i])
	}
	return out, nil
}

func (s *Storage) FindCharacterByName(ctx context.Context, name string) (*model.Character, error) {
	var rec characterRecord
	if err := s.characters(ctx).Where("name = ?", name).Order("id").First(&rec).Error; err != nil {
		return nil, translate(err, model.ErrCharacterNotFound)
	}
	return characterToModel(&rec), nil
}

func (s *Storage) DeleteCharacter(ctx context.Context, id model.CharacterID) error {
	result := s.db.WithContext(ctx).Delete(&characterRecord{}, uint(id))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrCharacterNotFound
	}
	return nil
}

// Game session operations

func (s *Storage) sessions(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Players", orderByID).
		Preload("Players.User").
		Preload("Players.Character.Translations", orderByID).
		Preload("Players.Character.Cards", orderByID).
		Preload("Players.Character.Cards.Card.Translations", orderByID).
		Preload("Players.Cards", orderByID).
		Preload("Players.Cards.Card.Translations", orderByID)
}

func (s *Storage) CreateGameSession(ctx context.Context, session *model.GameSession) error {
	rec := sessionFromModel(session)
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&rec).Error; err != nil {
		return translate(err, model.ErrGameSessionNotFound)
	}
	session.ID = model.GameSessionID(rec.ID)
	session.CreatedAt, session.UpdatedAt = rec.CreatedAt, rec.UpdatedAt
	return nil
}

func (s *Storage) SaveGameSession(ctx context.Context, session *model.GameSession) error {
	result := s.db.WithContext(ctx).Model(&gameSessionRecord{}).
		Where("token = ?", string(session.Token)).
		Update("phase", int(session.Phase))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrGameSessionNotFound
	}
	return nil
}

func (s *Storage) GetGameSession(ctx context.Context, token model.GameSessionToken) (*model.GameSession, error) {
	var rec gameSessionRecord
	if err := s.sessions(ctx).Where("token = ?", string(token)).First(&rec).Error; err != nil {
		return nil, translate(err, model.ErrGameSessionNotFound)
	}
	return sessionToModel(&rec), nil
}

// LockGameSession takes a row lock on the session before loading it
func (s *Storage) LockGameSession(ctx context.Context, token model.GameSessionToken) (*model.GameSession, error) {
	var rec gameSessionRecord
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("token = ?", string(token)).
		Take(&rec).Error
	if err != nil {
		return nil, translate(err, model.ErrGameSessionNotFound)
	}
	return s.GetGameSession(ctx, token)
}

func (s *Storage) ListGameSessions(ctx context.Context) ([]*model.GameSession, error) {
	var recs []gameSessionRecord
	if err := s.sessions(ctx).Order("id").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*model.GameSession, len(recs))
	for i := range recs {
		out[i] = sessionToModel(&recs[i])
	}
	return out, nil
}

func (s *Storage) GameSessionExists(ctx context.Context, token model.GameSessionToken) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&gameSessionRecord{}).Where("token = ?", string(token)).Count(&count).Error
	return count > 0, err
}

func (s *Storage) DeleteGameSession(ctx context.Context, token model.GameSessionToken) error {
	result := s.db.WithContext(ctx).Where("token = ?", string(token)).Delete(&gameSessionRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrGameSessionNotFound
	}
	return nil
}

// Player operations

func (s *Storage) players(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("User").
		Preload("GameSession").
		Preload("Character.Translations", orderByID).
		Preload("Character.Cards", orderByID).
		Preload("Character.Cards.Card.Translations", orderByID).
		Preload("Cards", orderByID).
		Preload("Cards.Card.Translations", orderByID)
}

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	rec := playerFromModel(player)

	var (
		session gameSessionRecord
		hand    []playerCardRecord
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id", "token").First(&session, rec.GameSessionID).Error; err != nil {
			return translate(err, model.ErrGameSessionNotFound)
		}
		if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
			return err
		}
		var err error
		hand, err = syncPlayerCards(tx, rec.ID, player.Cards)
		return err
	})
	if err != nil {
		return translate(err, model.ErrPlayerNotFound)
	}

	player.ID = model.PlayerID(rec.ID)
	player.GameSessionToken = model.GameSessionToken(session.Token)
	player.CreatedAt, player.UpdatedAt = rec.CreatedAt, rec.UpdatedAt
	writeBackHand(player.Cards, playerHandIDs(hand))
	return nil
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	rec := playerFromModel(player)

	var hand []playerCardRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&playerRecord{}).
			Where("token = ?", rec.Token).
			Omit(clause.Associations).
			Select("role", "status", "equipment", "statistics", "user_id", "character_id", "updated_at").
			Updates(&rec)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return model.ErrPlayerNotFound
		}
		if rec.ID == 0 {
			if err := tx.Select("id").Where("token = ?", rec.Token).Take(&rec).Error; err != nil {
				return err
			}
		}
		var err error
		hand, err = syncPlayerCards(tx, rec.ID, player.Cards)
		return err
	})
	if err != nil {
		return translate(err, model.ErrPlayerNotFound)
	}

	player.ID = model.PlayerID(rec.ID)
	writeBackHand(player.Cards, playerHandIDs(hand))
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, token model.PlayerToken) (*model.Player, error) {
	var rec playerRecord
	if err := s.players(ctx).Where("token = ?", string(token)).First(&rec).Error; err != nil {
		return nil, translate(err, model.ErrPlayerNotFound)
	}
	return playerToModel(&rec), nil
}

func (s *Storage) PlayerExists(ctx context.Context, token model.PlayerToken) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&playerRecord{}).Where("token = ?", string(token)).Count(&count).Error
	return count > 0, err
}

func (s *Storage) ListPlayersByUser(ctx context.Context, userID model.UserID) ([]*model.Player, error) {
	var recs []playerRecord
	if err := s.players(ctx).Where("user_id = ?", uint(userID)).Order("id").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*model.Player, len(recs))
	for i := range recs {
		out[i] = playerToModel(&recs[i])
	}
	return out, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, token model.PlayerToken) error {
	result := s.db.WithContext(ctx).Where("token = ?", string(token)).Delete(&playerRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrPlayerNotFound
	}
	return nil
}

// Hand synchronization

var quantityUpsert = clause.AssignmentColumns([]string{"quantity", "updated_at"})

// syncPlayerCards makes the player's join rows match hand exactly
func syncPlayerCards(tx *gorm.DB, playerID uint, hand []model.CardQuantity) ([]playerCardRecord, error) {
	rows := make([]playerCardRecord, 0, len(hand))
	for _, cq := range hand {
		if cq.Quantity > 0 {
			rows = append(rows, playerCardRecord{PlayerID: playerID, CardID: uint(cq.Card.ID), Quantity: cq.Quantity})
		}
	}

	del := tx.Where("player_id = ?", playerID)
	if keep := cardIDsOf(rows, func(r playerCardRecord) uint { return r.CardID }); len(keep) > 0 {
		del = del.Where("card_id NOT IN ?", keep)
	}
	if err := del.Delete(&playerCardRecord{}).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return rows, nil
	}

	err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "player_id"}, {Name: "card_id"}},
		DoUpdates: quantityUpsert,
	}).Create(&rows).Error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return nil, model.ErrCardNotFound
	}
	return rows, err
}

// syncCharacterCards makes the character's join rows match hand exactly
func syncCharacterCards(tx *gorm.DB, characterID uint, hand []model.CardQuantity) ([]characterCardRecord, error) {
	rows := make([]characterCardRecord, 0, len(hand))
	for _, cq := range hand {
		if cq.Quantity > 0 {
			rows = append(rows, characterCardRecord{CharacterID: characterID, CardID: uint(cq.Card.ID), Quantity: cq.Quantity})
		}
	}

	del := tx.Where("character_id = ?", characterID)
	if keep := cardIDsOf(rows, func(r characterCardRecord) uint { return r.CardID }); len(keep) > 0 {
		del = del.Where("card_id NOT IN ?", keep)
	}
	if err := del.Delete(&characterCardRecord{}).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return rows, nil
	}

	err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "character_id"}, {Name: "card_id"}},
		DoUpdates: quantityUpsert,
	}).Create(&rows).Error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return nil, model.ErrCardNotFound
	}
	return rows, err
}

func cardIDsOf[T any](rows []T, cardID func(T) uint) []uint {
	ids := make([]uint, len(rows))
	for i, r := range rows {
		ids[i] = cardID(r)
	}
	return ids
}

func playerHandIDs(rows []playerCardRecord) func(model.CardID) uint {
	return func(cardID model.CardID) uint {
		for _, r := range rows {
			if r.CardID == uint(cardID) {
				return r.ID
			}
		}
		return 0
	}
}

// writeBackHand copies generated join row IDs onto the caller's hand
func writeBackHand(hand []model.CardQuantity, idFor func(model.CardID) uint) {
	for i := range hand {
		if hand[i].Quantity > 0 {
			hand[i].ID = idFor(hand[i].Card.ID)
		}
	}
}

package postgres

import (
	"github.com/mcoot/arkham-companion/internal/model"
	"gorm.io/datatypes"
)

func userFromModel(u *model.User) userRecord {
	return userRecord{
		ID:                uint(u.ID),
		Name:              u.Name,
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		Role:              string(u.Role),
		ResetToken:        u.ResetToken,
		VerificationToken: u.VerificationToken,
		VerifiedAt:        u.VerifiedAt,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func userToModel(r *userRecord) *model.User {
	return &model.User{
		ID:                model.UserID(r.ID),
		Name:              r.Name,
		Email:             r.Email,
		PasswordHash:      r.PasswordHash,
		Role:              model.UserRole(r.Role),
		ResetToken:        r.ResetToken,
		VerificationToken: r.VerificationToken,
		VerifiedAt:        r.VerifiedAt,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func cardFromModel(c *model.Card) cardRecord {
	var subtype *string
	if c.Subtype != nil {
		s := string(*c.Subtype)
		subtype = &s
	}
	rec := cardRecord{
		ID:                 uint(c.ID),
		Name:               c.Name,
		Description:        c.Description,
		Type:               string(c.Type),
		Subtype:            subtype,
		AttributeModifiers: datatypes.NewJSONType(c.AttributeModifiers),
		HandUsage:          c.HandUsage,
		FrontImagePath:     c.FrontImagePath,
		BackImagePath:      c.BackImagePath,
		Locale:             string(c.Locale),
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
	for _, t := range c.Translations {
		rec.Translations = append(rec.Translations, cardTranslationRecord{
			ID:          t.ID,
			CardID:      uint(c.ID),
			Name:        t.Name,
			Description: t.Description,
			Locale:      string(t.Locale),
			CreatedAt:   t.CreatedAt,
			UpdatedAt:   t.UpdatedAt,
		})
	}
	return rec
}

func cardToModel(r *cardRecord) *model.Card {
	var subtype *model.CardSubtype
	if r.Subtype != nil {
		s := model.CardSubtype(*r.Subtype)
		subtype = &s
	}
	c := &model.Card{
		ID:                 model.CardID(r.ID),
		Name:               r.Name,
		Description:        r.Description,
		Type:               model.CardType(r.Type),
		Subtype:            subtype,
		AttributeModifiers: r.AttributeModifiers.Data(),
		HandUsage:          r.HandUsage,
		FrontImagePath:     r.FrontImagePath,
		BackImagePath:      r.BackImagePath,
		Locale:             model.Locale(r.Locale),
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
	for _, t := range r.Translations {
		c.Translations = append(c.Translations, model.CardTranslation{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			Locale:      model.Locale(t.Locale),
			CreatedAt:   t.CreatedAt,
			UpdatedAt:   t.UpdatedAt,
		})
	}
	return c
}

func characterFromModel(c *model.Character) characterRecord {
	rec := characterRecord{
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
		Attributes:       datatypes.NewJSONType(c.Attributes),
		Skills:           datatypes.NewJSONType(c.Skills),
		Equipment:        datatypes.NewJSONType(c.Equipment),
		Locale:           string(c.Locale),
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
	for _, t := range c.Translations {
		rec.Translations = append(rec.Translations, characterTranslationRecord{
			ID:               t.ID,
			CharacterID:      uint(c.ID),
			Name:             t.Name,
			Description:      t.Description,
			Profession:       t.Profession,
			StartingLocation: t.StartingLocation,
			Skills:           datatypes.NewJSONType(t.Skills),
			Locale:           string(t.Locale),
			CreatedAt:        t.CreatedAt,
			UpdatedAt:        t.UpdatedAt,
		})
	}
	return rec
}

func characterToModel(r *characterRecord) *model.Character {
	c := &model.Character{
		ID:               model.CharacterID(r.ID),
		Expansion:        model.Expansion(r.Expansion),
		Name:             r.Name,
		Description:      r.Description,
		Profession:       r.Profession,
		StartingLocation: r.StartingLocation,
		ImagePath:        r.ImagePath,
		Sanity:           r.Sanity,
		Endurance:        r.Endurance,
		Concentration:    r.Concentration,
		Attributes:       r.Attributes.Data(),
		Skills:           r.Skills.Data(),
		Equipment:        r.Equipment.Data(),
		Locale:           model.Locale(r.Locale),
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	for _, t := range r.Translations {
		c.Translations = append(c.Translations, model.CharacterTranslation{
			ID:               t.ID,
			Name:             t.Name,
			Description:      t.Description,
			Profession:       t.Profession,
			StartingLocation: t.StartingLocation,
			Skills:           t.Skills.Data(),
			Locale:           model.Locale(t.Locale),
			CreatedAt:        t.CreatedAt,
			UpdatedAt:        t.UpdatedAt,
		})
	}
	for i := range r.Cards {
		cc := &r.Cards[i]
		c.Cards = append(c.Cards, model.CardQuantity{ID: cc.ID, Card: *cardToModel(&cc.Card), Quantity: cc.Quantity})
	}
	return c
}

func sessionFromModel(s *model.GameSession) gameSessionRecord {
	return gameSessionRecord{
		ID:        uint(s.ID),
		Token:     string(s.Token),
		Phase:     int(s.Phase),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func sessionToModel(r *gameSessionRecord) *model.GameSession {
	s := &model.GameSession{
		ID:        model.GameSessionID(r.ID),
		Token:     model.GameSessionToken(r.Token),
		Phase:     model.Phase(r.Phase),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	for i := range r.Players {
		p := playerToModel(&r.Players[i])
		p.GameSessionToken = s.Token
		s.Players = append(s.Players, p)
	}
	return s
}

func playerFromModel(p *model.Player) playerRecord {
	rec := playerRecord{
		ID:            uint(p.ID),
		Token:         string(p.Token),
		Role:          string(p.Role),
		Status:        datatypes.NewJSONType(p.Status),
		Equipment:     datatypes.NewJSONType(p.Equipment),
		Statistics:    datatypes.NewJSONType(p.Statistics),
		GameSessionID: uint(p.GameSessionID),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.UserID != nil {
		id := uint(*p.UserID)
		rec.UserID = &id
	}
	if p.CharacterID != nil {
		id := uint(*p.CharacterID)
		rec.CharacterID = &id
	}
	return rec
}

func playerToModel(r *playerRecord) *model.Player {
	p := &model.Player{
		ID:            model.PlayerID(r.ID),
		Token:         model.PlayerToken(r.Token),
		Role:          model.PlayerRole(r.Role),
		Status:        r.Status.Data(),
		Equipment:     r.Equipment.Data(),
		Statistics:    r.Statistics.Data(),
		GameSessionID: model.GameSessionID(r.GameSessionID),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.UserID != nil {
		id := model.UserID(*r.UserID)
		p.UserID = &id
	}
	if r.User != nil {
		p.User = userToModel(r.User)
	}
	if r.CharacterID != nil {
		id := model.CharacterID(*r.CharacterID)
		p.CharacterID = &id
	}
	if r.Character != nil {
		p.Character = characterToModel(r.Character)
	}
	if r.GameSession != nil {
		p.GameSessionToken = model.GameSessionToken(r.GameSession.Token)
	}
	for i := range r.Cards {
		pc := &r.Cards[i]
		p.Cards = append(p.Cards, model.CardQuantity{ID: pc.ID, Card: *cardToModel(&pc.Card), Quantity: pc.Quantity})
	}
	return p
}

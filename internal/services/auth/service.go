// Package auth handles user accounts: registration, email verification,
// login with JWT issuance and password reset.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/arkham-companion/internal/dependencies/clock"
	"github.com/mcoot/arkham-companion/internal/mail"
	"github.com/mcoot/arkham-companion/internal/model"
	"github.com/mcoot/arkham-companion/internal/services/statistics"
	"github.com/mcoot/arkham-companion/internal/services/token"
	"github.com/mcoot/arkham-companion/internal/storage"
	"github.com/mcoot/arkham-companion/internal/validation"
)

// Config holds configuration for the auth service
type Config struct {
	JWTSecret   string
	JWTExpiry   time.Duration
	TokenLength int
	BcryptCost  int
	// AppURL is the frontend base used to build links in emails
	AppURL string
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		JWTExpiry:   24 * time.Hour,
		TokenLength: 32,
		BcryptCost:  bcrypt.DefaultCost,
		AppURL:      "http://localhost:3000",
	}
}

// RegisterInput is a new account
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// ResetPasswordInput completes a password reset
type ResetPasswordInput struct {
	Email                   string `json:"email" validate:"required,email"`
	Token                   string `json:"token" validate:"required"`
	NewPassword             string `json:"new_password" validate:"required,min=8,max=72"`
	NewPasswordConfirmation string `json:"new_password_confirmation" validate:"required"`
}

// Login is a successful login
type Login struct {
	Token string
	User  *model.User
}

// Service manages users and their credentials
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	tokens  *token.Generator
	mailer  mail.Mailer
	cfg     Config
	logger  *slog.Logger
}

// New creates a new auth Service
func New(
	storage storage.Storage,
	clock clock.Clock,
	tokens *token.Generator,
	mailer mail.Mailer,
	cfg Config,
	logger *slog.Logger,
) *Service {
	defaults := DefaultConfig()
	if cfg.JWTExpiry == 0 {
		cfg.JWTExpiry = defaults.JWTExpiry
	}
	if cfg.TokenLength == 0 {
		cfg.TokenLength = defaults.TokenLength
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = defaults.BcryptCost
	}
	return &Service{
		storage: storage,
		clock:   clock,
		tokens:  tokens,
		mailer:  mailer,
		cfg:     cfg,
		logger:  logger.With("component", "auth"),
	}
}

// Register creates an unverified user and mails the verification token.
// The user is not kept when the mail cannot be sent.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	if err := validation.Struct(ctx, input); err != nil {
		return nil, err
	}

	hash, err := s.hash(input.Password)
	if err != nil {
		return nil, err
	}

	var user *model.User
	err = s.storage.WithTx(ctx, func(tx storage.Storage) error {
		if _, err := tx.GetUserByEmail(ctx, input.Email); err == nil {
			return model.ErrUserExists
		} else if !errors.Is(err, model.ErrUserNotFound) {
			return err
		}

		verification := s.tokens.GenerateLetters(s.cfg.TokenLength)
		now := s.clock.Now()
		user = &model.User{
			Name:              input.Name,
			Email:             strings.TrimSpace(input.Email),
			PasswordHash:      hash,
			Role:              model.UserRoleUser,
			VerificationToken: &verification,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := tx.CreateUser(ctx, user); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				return model.ErrUserExists
			}
			return fmt.Errorf("create user: %w", err)
		}

		return s.send(ctx, mail.VerificationMessage, user, verification, "/verify")
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", slog.Uint64("user_id", uint64(user.ID)))
	return user, nil
}

// Verify marks the user's email as verified
func (s *Service) Verify(ctx context.Context, email, verificationToken string) (*model.User, error) {
	var user *model.User
	err := s.storage.WithTx(ctx, func(tx storage.Storage) error {
		var err error
		user, err = tx.GetUserByEmail(ctx, email)
		if errors.Is(err, model.ErrUserNotFound) {
			return model.ErrUserEmailTokenMismatch
		}
		if err != nil {
			return err
		}
		if user.VerificationToken == nil || *user.VerificationToken != verificationToken {
			return model.ErrUserEmailTokenMismatch
		}

		now := s.clock.Now()
		user.VerificationToken = nil
		user.VerifiedAt = &now
		user.UpdatedAt = now
		return tx.SaveUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and issues a JWT
func (s *Service) Login(ctx context.Context, email, password string) (*Login, error) {
	user, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !user.IsVerified() {
		return nil, model.ErrUserNotVerified
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, model.ErrUserWrongPassword
	}

	signed, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	return &Login{Token: signed, User: user}, nil
}

// RemindPassword issues a reset token and mails it. It never fails, so callers
// cannot tell whether the email is registered.
func (s *Service) RemindPassword(ctx context.Context, email string) {
	err := s.storage.WithTx(ctx, func(tx storage.Storage) error {
		user, err := tx.GetUserByEmail(ctx, email)
		if err != nil {
			return err
		}

		reset := s.tokens.GenerateLetters(s.cfg.TokenLength)
		user.ResetToken = &reset
		user.UpdatedAt = s.clock.Now()
		if err := tx.SaveUser(ctx, user); err != nil {
			return fmt.Errorf("save user: %w", err)
		}
		return s.send(ctx, mail.ResetPasswordMessage, user, reset, "/reset-password")
	})
	switch {
	case err == nil:
	case errors.Is(err, model.ErrUserNotFound):
		s.logger.Debug("password reminder for unknown email")
	default:
		s.logger.Warn("password reminder failed", slog.Any("error", err))
	}
}

// ResetPassword stores a new password for a matching email and reset token.
// The email and token are checked before the confirmation.
func (s *Service) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	if err := validation.Struct(ctx, input); err != nil {
		return err
	}

	return s.storage.WithTx(ctx, func(tx storage.Storage) error {
		user, err := tx.GetUserByEmail(ctx, input.Email)
		if errors.Is(err, model.ErrUserNotFound) {
			return model.ErrUserEmailTokenMismatch
		}
		if err != nil {
			return err
		}
		if user.ResetToken == nil || *user.ResetToken != input.Token {
			return model.ErrUserEmailTokenMismatch
		}
		if input.NewPassword != input.NewPasswordConfirmation {
			return model.ErrUserPasswordMismatch
		}
		hash, err := s.hash(input.NewPassword)
		if err != nil {
			return err
		}

		user.PasswordHash = hash
		user.ResetToken = nil
		user.UpdatedAt = s.clock.Now()
		return tx.SaveUser(ctx, user)
	})
}

// ParseToken validates a JWT and loads its user
func (s *Service) ParseToken(ctx context.Context, signed string) (*model.User, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(signed, claims,
		func(*jwt.Token) (any, error) { return []byte(s.cfg.JWTSecret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, model.ErrInvalidToken
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, model.ErrInvalidToken
	}
	user, err := s.storage.GetUser(ctx, model.UserID(id))
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, model.ErrInvalidToken
	}
	return user, err
}

// Me returns the user
func (s *Service) Me(ctx context.Context, id model.UserID) (*model.User, error) {
	return s.storage.GetUser(ctx, id)
}

// Statistics aggregates over every player the user has owned
func (s *Service) Statistics(ctx context.Context, id model.UserID) (model.UserStatistics, error) {
	if _, err := s.storage.GetUser(ctx, id); err != nil {
		return model.UserStatistics{}, err
	}
	players, err := s.storage.ListPlayersByUser(ctx, id)
	if err != nil {
		return model.UserStatistics{}, err
	}
	return statistics.Aggregate(players), nil
}

// EnsureAdmin creates a verified admin, or promotes and verifies the existing
// user with that email. The password of an existing user is left alone.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) (*model.User, bool, error) {
	var (
		user    *model.User
		created bool
	)
	err := s.storage.WithTx(ctx, func(tx storage.Storage) error {
		now := s.clock.Now()
		var err error
		user, err = tx.GetUserByEmail(ctx, email)
		switch {
		case err == nil:
			if user.IsAdmin() && user.IsVerified() {
				return nil
			}
			user.Role = model.UserRoleAdmin
			if user.VerifiedAt == nil {
				user.VerifiedAt = &now
				user.VerificationToken = nil
			}
			user.UpdatedAt = now
			return tx.SaveUser(ctx, user)
		case !errors.Is(err, model.ErrUserNotFound):
			return err
		}

		hash, err := s.hash(password)
		if err != nil {
			return err
		}
		user = &model.User{
			Name:         name,
			Email:        email,
			PasswordHash: hash,
			Role:         model.UserRoleAdmin,
			VerifiedAt:   &now,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		created = true
		return tx.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, false, err
	}
	return user, created, nil
}

func (s *Service) issue(user *model.User) (string, error) {
	now := s.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *Service) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

type renderFunc func(mail.TokenMail) (mail.Message, error)

func (s *Service) send(ctx context.Context, render renderFunc, user *model.User, tok, path string) error {
	var link string
	if s.cfg.AppURL != "" {
		link = strings.TrimSuffix(s.cfg.AppURL, "/") + path + "?" + url.Values{"email": {user.Email}, "token": {tok}}.Encode()
	}
	msg, err := render(mail.TokenMail{Name: user.Name, Email: user.Email, Token: tok, Link: link})
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrEmailSendFailure, err)
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", model.ErrEmailSendFailure, err)
	}
	return nil
}

package model

import (
	"errors"
	"sort"
	"strings"
)

// Common errors used across the application
var (
	// Generic
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Catalog errors
	ErrCardNotFound         = errors.New("card not found")
	ErrCharacterNotFound    = errors.New("character not found")
	ErrTranslationNotFound  = errors.New("translation not found")
	ErrTranslationExists    = errors.New("translation already exists")
	ErrLanguageNotSupported = errors.New("language not supported")

	// Game session errors
	ErrGameSessionNotFound = errors.New("game session not found")
	ErrNotHost             = errors.New("player is not the host")

	// Player errors
	ErrPlayerNotFound       = errors.New("player not found")
	ErrPlayerExists         = errors.New("player already exists in game session")
	ErrPlayersLimitReached  = errors.New("players limit reached")
	ErrNoCharacterAvailable = errors.New("no unused character available")

	// User errors
	ErrUserNotFound           = errors.New("user not found")
	ErrUserExists             = errors.New("user already exists")
	ErrUserNotVerified        = errors.New("user is not verified")
	ErrUserWrongPassword      = errors.New("wrong password")
	ErrUserPasswordMismatch   = errors.New("passwords do not match")
	ErrUserEmailTokenMismatch = errors.New("email and token do not match")
	ErrInvalidToken           = errors.New("invalid or expired token")

	// File errors
	ErrFileMissing      = errors.New("file is missing")
	ErrFileWrongType    = errors.New("file type not allowed")
	ErrFileSizeExceeded = errors.New("file size exceeded")
	ErrFileDeleteFailed = errors.New("file delete failed")

	// Mail errors
	ErrEmailSendFailure = errors.New("email send failure")
)

// ValidationError aggregates field-level validation messages
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError creates an empty ValidationError
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add records a message for a field
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// HasErrors reports whether any field failed
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// Messages returns "field: message" strings sorted by field
func (e *ValidationError) Messages() []string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var out []string
	for _, f := range fields {
		for _, m := range e.Fields[f] {
			out = append(out, f+": "+m)
		}
	}
	return out
}

// Error implements error
func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages(), "; ")
}

package apierr

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/arkham-companion/internal/middleware"
	"github.com/mcoot/arkham-companion/internal/model"
	"github.com/mcoot/arkham-companion/internal/services/token"
)

// ErrorResponse is the body of every error response.
// Message is a string, or a list of strings for validation failures.
type ErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
	Message    any    `json:"message"`
}

// Error kinds
const (
	CodeInvalidRequest         = "INVALID_REQUEST"
	CodeValidationFailed       = "VALIDATION_FAILED"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeForbidden              = "FORBIDDEN"
	CodeNotHost                = "NOT_HOST"
	CodeNotFound               = "NOT_FOUND"
	CodeCardNotFound           = "CARD_NOT_FOUND"
	CodeCharacterNotFound      = "CHARACTER_NOT_FOUND"
	CodePlayerNotFound         = "PLAYER_NOT_FOUND"
	CodeGameSessionNotFound    = "GAME_SESSION_NOT_FOUND"
	CodeUserNotFound           = "USER_NOT_FOUND"
	CodeTranslationNotFound    = "TRANSLATION_NOT_FOUND"
	CodeTranslationExists      = "TRANSLATION_EXISTS"
	CodeLanguageNotSupported   = "LANGUAGE_NOT_SUPPORTED"
	CodePlayerExists           = "PLAYER_EXISTS"
	CodePlayersLimitReached    = "PLAYERS_LIMIT_REACHED"
	CodeNoCharacterAvailable   = "NO_CHARACTER_AVAILABLE"
	CodeUserExists             = "USER_EXISTS"
	CodeUserNotVerified        = "USER_NOT_VERIFIED"
	CodeUserWrongPassword      = "USER_WRONG_PASSWORD"
	CodeUserPasswordMismatch   = "USER_PASSWORD_MISMATCH"
	CodeUserEmailTokenMismatch = "USER_EMAIL_TOKEN_MISMATCH"
	CodeFileMissing            = "FILE_MISSING"
	CodeFileWrongType          = "FILE_WRONG_TYPE"
	CodeFileSizeExceeded       = "FILE_SIZE_EXCEEDED"
	CodeFileDeleteFailed       = "FILE_DELETE_FAILED"
	CodeEmailSendFailure       = "EMAIL_SEND_FAILURE"
	CodeTokenSpaceExhausted    = "TOKEN_SPACE_EXHAUSTED"
	CodeInternalError          = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an error kind and message
type httpError struct {
	status  int
	code    string
	message string
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.message
}

type mapping struct {
	target  error
	status  int
	code    string
	message string
}

var mappings = []mapping{
	{model.ErrCardNotFound, http.StatusNotFound, CodeCardNotFound, "Card not found"},
	{model.ErrCharacterNotFound, http.StatusNotFound, CodeCharacterNotFound, "Character not found"},
	{model.ErrPlayerNotFound, http.StatusNotFound, CodePlayerNotFound, "Player not found"},
	{model.ErrGameSessionNotFound, http.StatusNotFound, CodeGameSessionNotFound, "Game session not found"},
	{model.ErrUserNotFound, http.StatusNotFound, CodeUserNotFound, "User not found"},
	{model.ErrTranslationNotFound, http.StatusNotFound, CodeTranslationNotFound, "Translation not found"},
	{model.ErrNotFound, http.StatusNotFound, CodeNotFound, "Resource not found"},

	{model.ErrTranslationExists, http.StatusConflict, CodeTranslationExists, "Translation already exists"},
	{model.ErrLanguageNotSupported, http.StatusBadRequest, CodeLanguageNotSupported, "Language not supported"},
	{model.ErrPlayerExists, http.StatusConflict, CodePlayerExists, "Already a player in this game session"},
	{model.ErrPlayersLimitReached, http.StatusConflict, CodePlayersLimitReached, "Game session is full"},
	{model.ErrNoCharacterAvailable, http.StatusConflict, CodeNoCharacterAvailable, "No unused character available"},

	{model.ErrUserExists, http.StatusConflict, CodeUserExists, "User already exists"},
	{model.ErrUserNotVerified, http.StatusForbidden, CodeUserNotVerified, "Email is not verified"},
	{model.ErrUserWrongPassword, http.StatusUnauthorized, CodeUserWrongPassword, "Wrong password"},
	{model.ErrUserPasswordMismatch, http.StatusBadRequest, CodeUserPasswordMismatch, "Passwords do not match"},
	{model.ErrUserEmailTokenMismatch, http.StatusBadRequest, CodeUserEmailTokenMismatch, "Email and token do not match"},
	{model.ErrInvalidToken, http.StatusUnauthorized, CodeUnauthorized, "Invalid or expired token"},

	{model.ErrFileMissing, http.StatusBadRequest, CodeFileMissing, "File is missing"},
	{model.ErrFileWrongType, http.StatusUnsupportedMediaType, CodeFileWrongType, "Only jpeg and png images are allowed"},
	{model.ErrFileSizeExceeded, http.StatusRequestEntityTooLarge, CodeFileSizeExceeded, "File is too large"},
	{model.ErrFileDeleteFailed, http.StatusInternalServerError, CodeFileDeleteFailed, "Stored file could not be deleted"},
	{model.ErrEmailSendFailure, http.StatusBadGateway, CodeEmailSendFailure, "Email could not be sent"},

	{model.ErrNotHost, http.StatusForbidden, CodeNotHost, "Only the host can perform this action"},
	{model.ErrForbidden, http.StatusForbidden, CodeForbidden, "Forbidden"},
	{token.ErrTokenSpaceExhausted, http.StatusServiceUnavailable, CodeTokenSpaceExhausted, "No free game session token, try again"},
}

// WriteError writes the error response for err. 5xx errors are logged with the request logger.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	body := toResponse(err)
	if body.StatusCode >= http.StatusInternalServerError {
		middleware.LoggerFrom(r.Context()).Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(body.StatusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// toResponse converts an error to its response body
func toResponse(err error) ErrorResponse {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return ErrorResponse{
			Error:      CodeValidationFailed,
			StatusCode: http.StatusUnprocessableEntity,
			Message:    verr.Messages(),
		}
	}

	var he *httpError
	if errors.As(err, &he) {
		return ErrorResponse{Error: he.code, StatusCode: he.status, Message: he.message}
	}

	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return ErrorResponse{Error: m.code, StatusCode: m.status, Message: m.message}
		}
	}
	return ErrorResponse{Error: CodeInternalError, StatusCode: http.StatusInternalServerError, Message: "Internal server error"}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, CodeInvalidRequest, message}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, CodeUnauthorized, "Authentication required"}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, CodeInternalError, "Internal server error"}
}

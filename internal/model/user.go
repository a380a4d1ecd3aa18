package model

import "time"

// UserID uniquely identifies a user
type UserID uint

// UserRole grants access to route groups
type UserRole string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleAdmin UserRole = "ADMIN"
)

// User is a registered account
type User struct {
	ID                UserID
	Name              string
	Email             string
	PasswordHash      string
	Role              UserRole
	ResetToken        *string
	VerificationToken *string
	VerifiedAt        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsVerified reports whether the email verification completed
func (u *User) IsVerified() bool {
	return u.VerifiedAt != nil
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// UserStatistics is the lifetime aggregate over all of a user's players
type UserStatistics struct {
	PlayerStatistics
	GameSessionPlayed  int `json:"game_session_played"`
	GameSessionCreated int `json:"game_session_created"`
}

package model

import (
	"fmt"
	"time"
)

// Role is a user's capability level.
type Role string

// Roles. The set is closed; anything else is rejected.
const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole converts a stored or requested role name into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleUser:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// User represents an account that can report items and submit claims.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Reputation   int        `json:"reputation"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// ReputationForResolution is credited to a finder when their item is returned.
const ReputationForResolution = 10

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// ValidatePassword checks password requirements.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// Actor is the authenticated caller of a lifecycle operation.
type Actor struct {
	UserID int64
	Role   Role
}

// IsAdmin reports whether the actor holds the admin capability.
// Unknown roles fail closed.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

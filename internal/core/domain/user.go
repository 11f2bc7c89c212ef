package domain

import (
	"errors"
	"time"
)

// Role classifies what an authenticated user is allowed to do.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleBroker    Role = "broker"
	RoleCaptator  Role = "captator"
	RoleAssistant Role = "assistant"
)

// DefaultPassword is the legacy fallback compared against when a user record
// carries no password of its own. Kept for compatibility with accounts
// migrated from the previous system.
const DefaultPassword = "123456"

var ErrUserNotFound = errors.New("user not found")
var ErrEmailExists = errors.New("a user with this email already exists")
var ErrUserBlocked = errors.New("user is blocked")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrLastAdmin = errors.New("cannot remove the last administrator")
var ErrSelfAction = errors.New("cannot perform this action on your own account")
var ErrForbidden = errors.New("access forbidden")

// IsStaff reports whether the role may approve listings and manage other users' data.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleManager
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleBroker, RoleCaptator, RoleAssistant:
		return true
	}
	return false
}

// User models an account in the brokerage.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Role    Role   `json:"role"`
	Blocked bool   `json:"blocked"`
	// Password is compared in plaintext; empty means DefaultPassword applies.
	// See CredentialVerifier for the seam a hashed scheme plugs into.
	Password  string    `json:"password,omitempty"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// CredentialVerifier abstracts password comparison so a hashing scheme can be
// introduced without touching the store.
type CredentialVerifier interface {
	Verify(stored, given string) bool
}

// PlaintextVerifier preserves the legacy behaviour: direct comparison, with
// DefaultPassword standing in for accounts that never set one.
type PlaintextVerifier struct{}

func (PlaintextVerifier) Verify(stored, given string) bool {
	if stored == "" {
		stored = DefaultPassword
	}
	return stored == given
}

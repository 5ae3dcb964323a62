// Package models holds the records persisted by the credential store.
package models

import (
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
)

// UserRecord is one registered identity. Email is unique, compared
// case-insensitively; PasswordSecret is whatever the active
// cryptox.SecretScheme produced for the password.
type UserRecord struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	PasswordSecret string    `json:"passwordSecret"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Matches reports whether the record belongs to email, ignoring case and
// surrounding whitespace.
func (u UserRecord) Matches(email string) bool {
	return common.NormalizeEmail(u.Email) == common.NormalizeEmail(email)
}

// User is the public projection of a UserRecord shown to screens.
type User struct {
	ID    string
	Email string
	Name  string
}

func (u UserRecord) Public() User {
	return User{ID: u.ID, Email: u.Email, Name: u.Name}
}

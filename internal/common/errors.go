// Package common defines sentinel errors and small helpers shared by the
// storage, session and CLI layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Input errors. Reported to the caller, never retried.
	ErrInvalidInput           = errors.New("invalid input")
	ErrEmailAlreadyRegistered = errors.New("email already registered")

	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Persistence errors.
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrStorageWriteFailed = errors.New("storage write failed")

	// Session token errors (malformed, forged or foreign token).
	ErrInvalidToken = errors.New("invalid token")
)

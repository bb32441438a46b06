package domain

import "errors"

// Sentinel errors shared across services and stores. Handlers translate
// these into HTTP statuses in one place; everything else wraps them
// with context via fmt.Errorf and %w.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("already exists")
	ErrNotFound     = errors.New("not found")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("account not verified")

	ErrCodeNotFound    = errors.New("verification code not found")
	ErrCodeExpired     = errors.New("verification code expired")
	ErrCodeInvalid     = errors.New("invalid verification code")
	ErrTooManyAttempts = errors.New("too many failed attempts")

	ErrTokenMalformed = errors.New("malformed token")
	ErrTokenExpired   = errors.New("token expired")
)

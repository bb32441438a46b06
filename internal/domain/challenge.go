package domain

import "time"

// Challenge is a pending one-time verification code tied to an
// identifier. At most one live challenge exists per identifier;
// issuing a new code replaces the previous one.
type Challenge struct {
	Kind       IdentifierKind `json:"kind"`
	Identifier string         `json:"identifier"`
	Code       string         `json:"code"`
	Attempts   int            `json:"attempts"`
	IssuedAt   time.Time      `json:"issued_at"`
	ExpiresAt  time.Time      `json:"expires_at"`
}

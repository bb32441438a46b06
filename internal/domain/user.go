package domain

import (
	"time"

	"github.com/google/uuid"
)

// IdentifierKind distinguishes how an identity is keyed.
type IdentifierKind string

const (
	IdentifierEmail  IdentifierKind = "email"
	IdentifierPhone  IdentifierKind = "phone"
	IdentifierGoogle IdentifierKind = "google"
)

// User is an identity record. Depending on how the account was created
// only one of Email, Phone, or GoogleSubject may be populated; the
// populated identifier values are unique across users.
type User struct {
	ID            uuid.UUID
	Email         string
	PasswordHash  string
	Phone         string
	GoogleSubject string
	Verified      bool
	Profile       Profile
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Profile holds the birth-chart details collected after sign-up.
type Profile struct {
	Name       string `json:"name"`
	BirthDate  string `json:"birth_date"`
	BirthTime  string `json:"birth_time"`
	BirthPlace string `json:"birth_place"`
}

// Complete reports whether every profile field has been supplied.
func (p Profile) Complete() bool {
	return p.Name != "" && p.BirthDate != "" && p.BirthTime != "" && p.BirthPlace != ""
}

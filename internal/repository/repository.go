package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/astrochat/astrochat-backend/internal/domain"
)

// UserStore persists identity records. Implementations enforce
// uniqueness of each identifier value at the store level, so a racing
// duplicate Create surfaces as domain.ErrConflict rather than a second
// row.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByPhone(ctx context.Context, phone string) (domain.User, error)
	FindByGoogleSubject(ctx context.Context, subject string) (domain.User, error)
	Create(ctx context.Context, user domain.User) (domain.User, error)
	MarkVerified(ctx context.Context, userID uuid.UUID) error
	UpdateProfile(ctx context.Context, userID uuid.UUID, profile domain.Profile) error
}

// ChallengeStore holds pending verification challenges, at most one per
// identifier. Save overwrites any existing challenge for the same
// identifier.
type ChallengeStore interface {
	Save(ctx context.Context, challenge domain.Challenge) error
	Get(ctx context.Context, kind domain.IdentifierKind, identifier string) (domain.Challenge, error)
	Delete(ctx context.Context, kind domain.IdentifierKind, identifier string) error
}

// ChatStore is the append-only chat log.
type ChatStore interface {
	Append(ctx context.Context, entry domain.ChatEntry) (domain.ChatEntry, error)
	ListFor(ctx context.Context, userID uuid.UUID) ([]domain.ChatEntry, error)
}

// Package verification generates and checks the one-time codes used to
// confirm ownership of an email address or phone number.
package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/astrochat/astrochat-backend/internal/domain"
	"github.com/astrochat/astrochat-backend/internal/repository"
)

const (
	// CodeLength is the number of digits in a verification code.
	CodeLength = 6
	// CodeTTL is how long an issued code stays valid.
	CodeTTL = 5 * time.Minute
	// MaxAttempts is the number of failed checks before a challenge is
	// discarded. The remaining count is never exposed to callers.
	MaxAttempts = 3
)

// Issuer creates and validates verification challenges. Issuing a new
// code for an identifier replaces any prior challenge.
type Issuer struct {
	store repository.ChallengeStore
	now   func() time.Time
}

func NewIssuer(store repository.ChallengeStore) *Issuer {
	return &Issuer{store: store, now: time.Now}
}

// Issue generates a fresh 6-digit code for the identifier, resets the
// attempt counter, and stores it with a 5-minute expiry.
func (i *Issuer) Issue(ctx context.Context, kind domain.IdentifierKind, identifier string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	issued := i.now().UTC()
	challenge := domain.Challenge{
		Kind:       kind,
		Identifier: identifier,
		Code:       code,
		Attempts:   0,
		IssuedAt:   issued,
		ExpiresAt:  issued.Add(CodeTTL),
	}
	if err := i.store.Save(ctx, challenge); err != nil {
		return "", err
	}
	return code, nil
}

// Check validates a submitted code against the live challenge for the
// identifier. The challenge is consumed on success, on expiry, and
// after the third failed attempt.
func (i *Issuer) Check(ctx context.Context, kind domain.IdentifierKind, identifier, submitted string) error {
	challenge, err := i.store.Get(ctx, kind, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrCodeNotFound
		}
		return err
	}

	if i.now().After(challenge.ExpiresAt) {
		if err := i.store.Delete(ctx, kind, identifier); err != nil {
			return err
		}
		return domain.ErrCodeExpired
	}

	if challenge.Code != submitted {
		challenge.Attempts++
		if challenge.Attempts >= MaxAttempts {
			if err := i.store.Delete(ctx, kind, identifier); err != nil {
				return err
			}
			return domain.ErrTooManyAttempts
		}
		if err := i.store.Save(ctx, challenge); err != nil {
			return err
		}
		return domain.ErrCodeInvalid
	}

	return i.store.Delete(ctx, kind, identifier)
}

// generateCode draws each digit independently and uniformly, so
// leading zeros are as likely as any other digit.
func generateCode() (string, error) {
	max := big.NewInt(10)
	digits := make([]byte, CodeLength)
	for idx := range digits {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		digits[idx] = byte('0' + n.Int64())
	}
	return string(digits), nil
}

package verification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/astrochat/astrochat-backend/internal/domain"
	"github.com/astrochat/astrochat-backend/internal/repository"
)

func newTestIssuer(t *testing.T) (*Issuer, *time.Time) {
	t.Helper()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewIssuer(repository.NewMemoryChallengeStore())
	issuer.now = func() time.Time { return now }
	return issuer, &now
}

func TestIssueAndCheck(t *testing.T) {
	ctx := context.Background()
	issuer, _ := newTestIssuer(t)

	code, err := issuer.Issue(ctx, domain.IdentifierEmail, "a@x.com")
	require.NoError(t, err)
	require.Len(t, code, CodeLength)
	for _, r := range code {
		require.True(t, r >= '0' && r <= '9')
	}

	require.NoError(t, issuer.Check(ctx, domain.IdentifierEmail, "a@x.com", code))

	// Consumed on success: a second check finds nothing.
	err = issuer.Check(ctx, domain.IdentifierEmail, "a@x.com", code)
	require.ErrorIs(t, err, domain.ErrCodeNotFound)
}

func TestCheckUnknownIdentifier(t *testing.T) {
	issuer, _ := newTestIssuer(t)
	err := issuer.Check(context.Background(), domain.IdentifierPhone, "+15551234567", "123456")
	require.ErrorIs(t, err, domain.ErrCodeNotFound)
}

func TestCheckExpiredCode(t *testing.T) {
	ctx := context.Background()
	issuer, now := newTestIssuer(t)

	code, err := issuer.Issue(ctx, domain.IdentifierEmail, "a@x.com")
	require.NoError(t, err)

	*now = now.Add(CodeTTL + time.Second)

	err = issuer.Check(ctx, domain.IdentifierEmail, "a@x.com", code)
	require.ErrorIs(t, err, domain.ErrCodeExpired)

	// Expiry consumes the challenge; even the right code is gone.
	err = issuer.Check(ctx, domain.IdentifierEmail, "a@x.com", code)
	require.ErrorIs(t, err, domain.ErrCodeNotFound)
}

func TestCheckAttemptBudget(t *testing.T) {
	ctx := context.Background()
	issuer, _ := newTestIssuer(t)

	code, err := issuer.Issue(ctx, domain.IdentifierPhone, "+15551234567")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "111111"
	}

	require.ErrorIs(t, issuer.Check(ctx, domain.IdentifierPhone, "+15551234567", wrong), domain.ErrCodeInvalid)
	require.ErrorIs(t, issuer.Check(ctx, domain.IdentifierPhone, "+15551234567", wrong), domain.ErrCodeInvalid)
	require.ErrorIs(t, issuer.Check(ctx, domain.IdentifierPhone, "+15551234567", wrong), domain.ErrTooManyAttempts)

	// Third failure discards the challenge entirely.
	err = issuer.Check(ctx, domain.IdentifierPhone, "+15551234567", code)
	require.ErrorIs(t, err, domain.ErrCodeNotFound)
}

func TestReissueReplacesChallenge(t *testing.T) {
	ctx := context.Background()
	issuer, _ := newTestIssuer(t)

	first, err := issuer.Issue(ctx, domain.IdentifierEmail, "a@x.com")
	require.NoError(t, err)

	// Burn attempts against the first code, then reissue.
	wrong := "000000"
	if wrong == first {
		wrong = "111111"
	}
	require.ErrorIs(t, issuer.Check(ctx, domain.IdentifierEmail, "a@x.com", wrong), domain.ErrCodeInvalid)
	require.ErrorIs(t, issuer.Check(ctx, domain.IdentifierEmail, "a@x.com", wrong), domain.ErrCodeInvalid)

	second, err := issuer.Issue(ctx, domain.IdentifierEmail, "a@x.com")
	require.NoError(t, err)

	// Reissue resets the attempt counter, so two more misses are
	// tolerated before the budget runs out.
	if wrong == second {
		wrong = "222222"
	}
	require.ErrorIs(t, issuer.Check(ctx, domain.IdentifierEmail, "a@x.com", wrong), domain.ErrCodeInvalid)
	require.ErrorIs(t, issuer.Check(ctx, domain.IdentifierEmail, "a@x.com", wrong), domain.ErrCodeInvalid)
	require.NoError(t, issuer.Check(ctx, domain.IdentifierEmail, "a@x.com", second))
}

func TestIssueSeparateKinds(t *testing.T) {
	ctx := context.Background()
	issuer, _ := newTestIssuer(t)

	emailCode, err := issuer.Issue(ctx, domain.IdentifierEmail, "shared")
	require.NoError(t, err)
	phoneCode, err := issuer.Issue(ctx, domain.IdentifierPhone, "shared")
	require.NoError(t, err)

	// Challenges are keyed by kind and identifier together.
	require.NoError(t, issuer.Check(ctx, domain.IdentifierEmail, "shared", emailCode))
	require.NoError(t, issuer.Check(ctx, domain.IdentifierPhone, "shared", phoneCode))
}

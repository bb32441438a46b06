package token_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/astrochat/astrochat-backend/internal/domain"
	"github.com/astrochat/astrochat-backend/internal/token"
)

func TestIssueAndValidate(t *testing.T) {
	svc := token.NewService("test-secret", 24*time.Hour)
	user := domain.User{
		ID:    uuid.New(),
		Email: "a@x.com",
	}

	raw, err := svc.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := svc.Validate(raw)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, user.Email, claims.Email)
	require.Equal(t, user.ID.String(), claims.Subject)
	require.Empty(t, claims.Provider)
	require.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestFederatedClaims(t *testing.T) {
	svc := token.NewService("test-secret", time.Hour)
	user := domain.User{
		ID:            uuid.New(),
		Email:         "g@x.com",
		GoogleSubject: "google-sub-1",
	}

	raw, err := svc.Issue(user)
	require.NoError(t, err)

	claims, err := svc.Validate(raw)
	require.NoError(t, err)
	require.Equal(t, string(domain.IdentifierGoogle), claims.Provider)
}

func TestValidateExpiredToken(t *testing.T) {
	svc := token.NewService("test-secret", -time.Minute)

	raw, err := svc.Issue(domain.User{ID: uuid.New()})
	require.NoError(t, err)

	_, err = svc.Validate(raw)
	require.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestValidateWrongSecret(t *testing.T) {
	issuer := token.NewService("secret-a", time.Hour)
	verifier := token.NewService("secret-b", time.Hour)

	raw, err := issuer.Issue(domain.User{ID: uuid.New()})
	require.NoError(t, err)

	_, err = verifier.Validate(raw)
	require.ErrorIs(t, err, domain.ErrTokenMalformed)
}

func TestValidateGarbage(t *testing.T) {
	svc := token.NewService("test-secret", time.Hour)

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.Validate(raw)
		require.ErrorIs(t, err, domain.ErrTokenMalformed)
	}
}

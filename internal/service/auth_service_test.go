package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/astrochat/astrochat-backend/internal/domain"
	"github.com/astrochat/astrochat-backend/internal/federated"
	"github.com/astrochat/astrochat-backend/internal/repository"
	"github.com/astrochat/astrochat-backend/internal/service"
	"github.com/astrochat/astrochat-backend/internal/token"
	"github.com/astrochat/astrochat-backend/internal/verification"
)

type fixture struct {
	auth       *service.AuthService
	users      *repository.MemoryUserStore
	dispatcher *captureDispatcher
}

func newFixture(t *testing.T, verifiers map[domain.IdentifierKind]federated.Verifier) *fixture {
	t.Helper()

	users := repository.NewMemoryUserStore()
	issuer := verification.NewIssuer(repository.NewMemoryChallengeStore())
	tokens := token.NewService("test-secret", time.Hour)
	dispatcher := &captureDispatcher{codes: map[string]string{}}

	return &fixture{
		auth:       service.NewAuthService(users, issuer, tokens, dispatcher, verifiers, zap.NewNop()),
		users:      users,
		dispatcher: dispatcher,
	}
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	user, err := f.auth.Register(ctx, "a@x.com", "p1")
	require.NoError(t, err)
	require.NotEqual(t, user.ID.String(), "00000000-0000-0000-0000-000000000000")
	require.False(t, user.Verified)

	// The code reaches the dispatcher, never the caller.
	code := f.dispatcher.lastCode("email", "a@x.com")
	require.Len(t, code, verification.CodeLength)

	// Login before verification re-dispatches a code and refuses.
	_, err = f.auth.Login(ctx, "a@x.com", "p1")
	require.ErrorIs(t, err, domain.ErrNotVerified)
	code = f.dispatcher.lastCode("email", "a@x.com")

	result, err := f.auth.VerifyEmail(ctx, "a@x.com", code)
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.Equal(t, user.ID, result.UserID)

	result, err = f.auth.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)

	_, err = f.auth.Login(ctx, "a@x.com", "wrong")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, "nobody@x.com", "p1")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.auth.Register(ctx, "not-an-email", "p1")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.auth.Register(ctx, "a@x.com", "   ")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.auth.Register(ctx, "a@x.com", "p1")
	require.NoError(t, err)

	_, err = f.auth.Register(ctx, "A@X.COM", "p2")
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestVerifyEmailWrongCode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.auth.Register(ctx, "a@x.com", "p1")
	require.NoError(t, err)

	code := f.dispatcher.lastCode("email", "a@x.com")
	wrong := "000000"
	if wrong == code {
		wrong = "111111"
	}

	_, err = f.auth.VerifyEmail(ctx, "a@x.com", wrong)
	require.ErrorIs(t, err, domain.ErrCodeInvalid)

	// The right code still works while attempts remain.
	result, err := f.auth.VerifyEmail(ctx, "a@x.com", code)
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
}

func TestOTPFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	require.NoError(t, f.auth.RequestOTP(ctx, "9999999999"))
	code := f.dispatcher.lastCode("phone", "9999999999")
	require.Len(t, code, verification.CodeLength)

	result, err := f.auth.VerifyOTP(ctx, "9999999999", code)
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.False(t, result.ProfileComplete)

	tokens := token.NewService("test-secret", time.Hour)
	claims, err := tokens.Validate(result.Token)
	require.NoError(t, err)
	require.Equal(t, "9999999999", claims.Phone)
	require.Empty(t, claims.Email)

	// A second request reuses the existing identity.
	require.NoError(t, f.auth.RequestOTP(ctx, "9999999999"))
	code = f.dispatcher.lastCode("phone", "9999999999")
	again, err := f.auth.VerifyOTP(ctx, "9999999999", code)
	require.NoError(t, err)
	require.Equal(t, result.UserID, again.UserID)
}

func TestRequestOTPRejectsBadPhone(t *testing.T) {
	f := newFixture(t, nil)
	for _, phone := range []string{"", "12345", "not-a-number", "+12 34"} {
		err := f.auth.RequestOTP(context.Background(), phone)
		require.ErrorIs(t, err, domain.ErrInvalidInput, "phone %q", phone)
	}
}

func TestVerifyOTPWithoutRequest(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.auth.VerifyOTP(context.Background(), "9999999999", "123456")
	require.ErrorIs(t, err, domain.ErrCodeNotFound)
}

func TestFederatedLoginCreatesAndReuses(t *testing.T) {
	ctx := context.Background()
	verifier := &fakeVerifier{identity: federated.ExternalIdentity{
		Provider: domain.IdentifierGoogle,
		Subject:  "google-sub-1",
		Email:    "g@x.com",
		Name:     "G User",
	}}
	f := newFixture(t, map[domain.IdentifierKind]federated.Verifier{
		domain.IdentifierGoogle: verifier,
	})

	first, err := f.auth.FederatedLogin(ctx, "google", "raw-id-token", "")
	require.NoError(t, err)
	require.NotEmpty(t, first.Token)

	second, err := f.auth.FederatedLogin(ctx, "google", "raw-id-token", "")
	require.NoError(t, err)
	require.Equal(t, first.UserID, second.UserID)
}

func TestFederatedLoginEmailCollision(t *testing.T) {
	ctx := context.Background()
	verifier := &fakeVerifier{identity: federated.ExternalIdentity{
		Provider: domain.IdentifierGoogle,
		Subject:  "google-sub-2",
		Email:    "a@x.com",
	}}
	f := newFixture(t, map[domain.IdentifierKind]federated.Verifier{
		domain.IdentifierGoogle: verifier,
	})

	registered, err := f.auth.Register(ctx, "a@x.com", "p1")
	require.NoError(t, err)

	// The federated identity lands as a separate account keyed by
	// subject; the password account keeps the email.
	result, err := f.auth.FederatedLogin(ctx, "google", "raw-id-token", "")
	require.NoError(t, err)
	require.NotEqual(t, registered.ID, result.UserID)
}

func TestFederatedLoginUnsupportedProvider(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.auth.FederatedLogin(context.Background(), "github", "raw", "")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSaveProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	require.NoError(t, f.auth.RequestOTP(ctx, "9999999999"))
	code := f.dispatcher.lastCode("phone", "9999999999")
	result, err := f.auth.VerifyOTP(ctx, "9999999999", code)
	require.NoError(t, err)

	err = f.auth.SaveProfile(ctx, result.UserID, domain.Profile{Name: "Aditi"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	profile := domain.Profile{Name: "Aditi", BirthDate: "1995-04-12", BirthTime: "06:45", BirthPlace: "Pune"}
	require.NoError(t, f.auth.SaveProfile(ctx, result.UserID, profile))

	require.NoError(t, f.auth.RequestOTP(ctx, "9999999999"))
	code = f.dispatcher.lastCode("phone", "9999999999")
	again, err := f.auth.VerifyOTP(ctx, "9999999999", code)
	require.NoError(t, err)
	require.True(t, again.ProfileComplete)
}

type captureDispatcher struct {
	codes map[string]string
}

func (d *captureDispatcher) SendCode(_ context.Context, kind domain.IdentifierKind, identifier, code string) error {
	d.codes[string(kind)+":"+identifier] = code
	return nil
}

func (d *captureDispatcher) lastCode(kind, identifier string) string {
	return d.codes[kind+":"+identifier]
}

type fakeVerifier struct {
	identity federated.ExternalIdentity
	err      error
}

func (v *fakeVerifier) VerifyIDToken(context.Context, string) (federated.ExternalIdentity, error) {
	return v.identity, v.err
}

func (v *fakeVerifier) ExchangeCode(context.Context, string) (federated.ExternalIdentity, error) {
	return v.identity, v.err
}

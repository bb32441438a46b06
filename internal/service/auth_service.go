package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/astrochat/astrochat-backend/internal/domain"
	"github.com/astrochat/astrochat-backend/internal/federated"
	"github.com/astrochat/astrochat-backend/internal/notify"
	"github.com/astrochat/astrochat-backend/internal/repository"
	"github.com/astrochat/astrochat-backend/internal/token"
	"github.com/astrochat/astrochat-backend/internal/verification"
)

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
)

// AuthResult is returned by every flow that ends in a session token.
type AuthResult struct {
	Token           string
	UserID          uuid.UUID
	ProfileComplete bool
}

// AuthService implements the registration, verification, login, and
// federated sign-in flows.
type AuthService struct {
	users      repository.UserStore
	issuer     *verification.Issuer
	tokens     *token.Service
	dispatcher notify.Dispatcher
	verifiers  map[domain.IdentifierKind]federated.Verifier
	logger     *zap.Logger
}

func NewAuthService(
	users repository.UserStore,
	issuer *verification.Issuer,
	tokens *token.Service,
	dispatcher notify.Dispatcher,
	verifiers map[domain.IdentifierKind]federated.Verifier,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		issuer:     issuer,
		tokens:     tokens,
		dispatcher: dispatcher,
		verifiers:  verifiers,
		logger:     logger,
	}
}

// Register creates an unverified email identity and dispatches a
// verification code. The code goes to the email collaborator only,
// never into the response.
func (s *AuthService) Register(ctx context.Context, email, password string) (domain.User, error) {
	normalized := normalizeIdentifier(email)
	if !emailPattern.MatchString(normalized) {
		return domain.User{}, fmt.Errorf("%w: valid email is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(password) == "" {
		return domain.User{}, fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.Create(ctx, domain.User{
		Email:        normalized,
		PasswordHash: string(hashed),
	})
	if err != nil {
		return domain.User{}, err
	}

	if err := s.sendCode(ctx, domain.IdentifierEmail, normalized); err != nil {
		return domain.User{}, err
	}

	s.audit("register.success", zap.String("user_id", created.ID.String()))
	return created, nil
}

// VerifyEmail consumes the pending challenge, marks the identity
// verified, and issues a session token.
func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) (AuthResult, error) {
	normalized := normalizeIdentifier(email)
	if normalized == "" || strings.TrimSpace(code) == "" {
		return AuthResult{}, fmt.Errorf("%w: email and code are required", domain.ErrInvalidInput)
	}

	if err := s.issuer.Check(ctx, domain.IdentifierEmail, normalized, strings.TrimSpace(code)); err != nil {
		return AuthResult{}, err
	}

	user, err := s.users.FindByEmail(ctx, normalized)
	if err != nil {
		return AuthResult{}, err
	}
	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return AuthResult{}, err
	}
	user.Verified = true

	s.audit("verify_email.success", zap.String("user_id", user.ID.String()))
	return s.issueToken(user)
}

// Login authenticates an email+password pair. Unverified accounts get
// a fresh verification code dispatched and a not-verified failure so
// clients can route to the verify screen.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	normalized := normalizeIdentifier(email)
	if normalized == "" || password == "" {
		return AuthResult{}, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}

	user, err := s.users.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return AuthResult{}, domain.ErrInvalidCredentials
		}
		return AuthResult{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return AuthResult{}, domain.ErrInvalidCredentials
	}

	if !user.Verified {
		if err := s.sendCode(ctx, domain.IdentifierEmail, normalized); err != nil {
			return AuthResult{}, err
		}
		return AuthResult{}, domain.ErrNotVerified
	}

	s.audit("login.success", zap.String("user_id", user.ID.String()))
	return s.issueToken(user)
}

// RequestOTP creates the phone identity on first contact and
// dispatches a one-time code over SMS.
func (s *AuthService) RequestOTP(ctx context.Context, phone string) error {
	normalized := normalizePhone(phone)
	if !phonePattern.MatchString(normalized) {
		return fmt.Errorf("%w: valid phone number is required", domain.ErrInvalidInput)
	}

	if _, err := s.users.FindByPhone(ctx, normalized); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if _, err := s.users.Create(ctx, domain.User{Phone: normalized}); err != nil && !errors.Is(err, domain.ErrConflict) {
			return err
		}
	}

	if err := s.sendCode(ctx, domain.IdentifierPhone, normalized); err != nil {
		return err
	}

	s.audit("otp_request.accepted", zap.String("phone", normalized))
	return nil
}

// VerifyOTP consumes the pending phone challenge and issues a token
// carrying the phone claim.
func (s *AuthService) VerifyOTP(ctx context.Context, phone, code string) (AuthResult, error) {
	normalized := normalizePhone(phone)
	if normalized == "" || strings.TrimSpace(code) == "" {
		return AuthResult{}, fmt.Errorf("%w: phone and code are required", domain.ErrInvalidInput)
	}

	if err := s.issuer.Check(ctx, domain.IdentifierPhone, normalized, strings.TrimSpace(code)); err != nil {
		return AuthResult{}, err
	}

	user, err := s.users.FindByPhone(ctx, normalized)
	if err != nil {
		return AuthResult{}, err
	}
	if !user.Verified {
		if err := s.users.MarkVerified(ctx, user.ID); err != nil {
			return AuthResult{}, err
		}
		user.Verified = true
	}

	s.audit("otp_verify.success", zap.String("user_id", user.ID.String()))
	return s.issueToken(user)
}

// FederatedLogin validates an external identity token (or exchanges an
// authorization code) and signs the user in, creating the identity on
// first sign-in. Federated identities are trusted as pre-verified.
func (s *AuthService) FederatedLogin(ctx context.Context, provider, rawIDToken, authCode string) (AuthResult, error) {
	verifier, ok := s.verifiers[domain.IdentifierKind(strings.ToLower(strings.TrimSpace(provider)))]
	if !ok {
		return AuthResult{}, fmt.Errorf("%w: unsupported provider %q", domain.ErrInvalidInput, provider)
	}

	var (
		identity federated.ExternalIdentity
		err      error
	)
	switch {
	case strings.TrimSpace(rawIDToken) != "":
		identity, err = verifier.VerifyIDToken(ctx, rawIDToken)
	case strings.TrimSpace(authCode) != "":
		identity, err = verifier.ExchangeCode(ctx, authCode)
	default:
		return AuthResult{}, fmt.Errorf("%w: id_token or code is required", domain.ErrInvalidInput)
	}
	if err != nil {
		return AuthResult{}, err
	}

	user, err := s.users.FindByGoogleSubject(ctx, identity.Subject)
	if errors.Is(err, domain.ErrNotFound) {
		user, err = s.createFederatedUser(ctx, identity)
	}
	if err != nil {
		return AuthResult{}, err
	}

	s.audit("federated_login.success",
		zap.String("provider", string(identity.Provider)),
		zap.String("user_id", user.ID.String()),
	)
	return s.issueToken(user)
}

func (s *AuthService) createFederatedUser(ctx context.Context, identity federated.ExternalIdentity) (domain.User, error) {
	user := domain.User{
		GoogleSubject: identity.Subject,
		Email:         identity.Email,
		Verified:      true,
		Profile:       domain.Profile{Name: identity.Name},
	}
	created, err := s.users.Create(ctx, user)
	if errors.Is(err, domain.ErrConflict) && user.Email != "" {
		// The email already belongs to a password account; keep the
		// federated identity keyed by subject only.
		user.Email = ""
		created, err = s.users.Create(ctx, user)
	}
	if err != nil {
		return domain.User{}, err
	}
	return created, nil
}

// SaveProfile stores the birth-chart details. All four fields are
// required, matching the mobile client's profile screen.
func (s *AuthService) SaveProfile(ctx context.Context, userID uuid.UUID, profile domain.Profile) error {
	if !profile.Complete() {
		return fmt.Errorf("%w: all profile fields are required", domain.ErrInvalidInput)
	}
	if err := s.users.UpdateProfile(ctx, userID, profile); err != nil {
		return err
	}
	s.audit("profile.saved", zap.String("user_id", userID.String()))
	return nil
}

func (s *AuthService) issueToken(user domain.User) (AuthResult, error) {
	signed, err := s.tokens.Issue(user)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthResult{
		Token:           signed,
		UserID:          user.ID,
		ProfileComplete: user.Profile.Complete(),
	}, nil
}

func (s *AuthService) sendCode(ctx context.Context, kind domain.IdentifierKind, identifier string) error {
	code, err := s.issuer.Issue(ctx, kind, identifier)
	if err != nil {
		return err
	}
	if err := s.dispatcher.SendCode(ctx, kind, identifier, code); err != nil {
		return fmt.Errorf("dispatch %s code: %w", kind, err)
	}
	return nil
}

func (s *AuthService) audit(event string, fields ...zap.Field) {
	s.log().Info(event, fields...)
}

func (s *AuthService) log() *zap.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return zap.L()
}

func normalizeIdentifier(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func normalizePhone(value string) string {
	return strings.ReplaceAll(strings.TrimSpace(value), " ", "")
}

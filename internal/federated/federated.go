// Package federated validates third-party identity tokens against a
// known issuer and audience, and exchanges authorization codes when a
// client sends one instead of an ID token.
package federated

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/astrochat/astrochat-backend/internal/domain"
)

// ErrInvalidIDToken is returned when an external token fails issuer,
// audience, signature, or expiry checks.
var ErrInvalidIDToken = errors.New("invalid external identity token")

// ExternalIdentity is the verified subject asserted by a provider.
type ExternalIdentity struct {
	Provider domain.IdentifierKind
	Subject  string
	Email    string
	Name     string
}

// Verifier validates external identity tokens for one provider.
type Verifier interface {
	// VerifyIDToken checks a raw ID token and returns the identity it
	// asserts.
	VerifyIDToken(ctx context.Context, rawIDToken string) (ExternalIdentity, error)
	// ExchangeCode swaps an authorization code for tokens and verifies
	// the resulting ID token.
	ExchangeCode(ctx context.Context, code string) (ExternalIdentity, error)
}

const googleIssuer = "https://accounts.google.com"

// GoogleVerifier validates Google-issued ID tokens via OIDC discovery.
type GoogleVerifier struct {
	verifier *oidc.IDTokenVerifier
	oauth    *oauth2.Config
}

// NewGoogleVerifier discovers Google's OIDC configuration and prepares
// the token verifier and code-exchange config.
func NewGoogleVerifier(ctx context.Context, clientID, clientSecret, redirectURL string) (*GoogleVerifier, error) {
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("google oauth config missing required fields")
	}

	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("init google oidc provider: %w", err)
	}

	return &GoogleVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

func (g *GoogleVerifier) VerifyIDToken(ctx context.Context, rawIDToken string) (ExternalIdentity, error) {
	if strings.TrimSpace(rawIDToken) == "" {
		return ExternalIdentity{}, ErrInvalidIDToken
	}

	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return ExternalIdentity{}, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}

	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return ExternalIdentity{}, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}

	return ExternalIdentity{
		Provider: domain.IdentifierGoogle,
		Subject:  idToken.Subject,
		Email:    strings.ToLower(claims.Email),
		Name:     claims.Name,
	}, nil
}

func (g *GoogleVerifier) ExchangeCode(ctx context.Context, code string) (ExternalIdentity, error) {
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return ExternalIdentity{}, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return ExternalIdentity{}, ErrInvalidIDToken
	}
	return g.VerifyIDToken(ctx, rawIDToken)
}

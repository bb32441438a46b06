// Package token issues and validates the signed bearer credentials
// used on every protected endpoint. Tokens are self-contained; there
// is no server-side session state and no revocation.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/astrochat/astrochat-backend/internal/domain"
)

// Claims carried inside a session token. UserID is the subject; the
// auxiliary fields record which identifier authenticated the session.
type Claims struct {
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email,omitempty"`
	Phone    string    `json:"phone,omitempty"`
	Provider string    `json:"provider,omitempty"`
	jwt.RegisteredClaims
}

// Service signs and verifies session tokens with a process-wide
// HS256 key.
type Service struct {
	secret []byte
	ttl    time.Duration
}

func NewService(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl}
}

// Issue mints a token for the given user. The auxiliary claims are
// populated from whichever identifiers the user record carries.
func (s *Service) Issue(user domain.User) (string, error) {
	now := time.Now()

	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Phone:  user.Phone,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	if user.GoogleSubject != "" {
		claims.Provider = string(domain.IdentifierGoogle)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate parses and verifies a raw token string. It returns
// domain.ErrTokenExpired for tokens past their expiry and
// domain.ErrTokenMalformed for anything else that fails verification.
func (s *Service) Validate(raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrTokenMalformed
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenMalformed
	}
	if !token.Valid {
		return nil, domain.ErrTokenMalformed
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == uuid.Nil {
		return nil, domain.ErrTokenMalformed
	}
	return claims, nil
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/astrochat/astrochat-backend/internal/token"
)

const claimsKey = "sessionClaims"

// Auth validates the Authorization header and attaches session claims.
type Auth struct {
	Tokens *token.Service
}

// RequireToken ensures the request carries a valid bearer token.
func (m *Auth) RequireToken(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "error_description": "Authorization header required."})
		return
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "error_description": "Bearer token required."})
		return
	}

	claims, err := m.Tokens.Validate(strings.TrimSpace(parts[1]))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "error_description": "Invalid or expired token."})
		return
	}

	c.Set(claimsKey, claims)
	c.Next()
}

// GetClaims exposes the validated session claims to handlers.
func GetClaims(c *gin.Context) (*token.Claims, bool) {
	value, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*token.Claims)
	return claims, ok
}

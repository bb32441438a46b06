package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/astrochat/astrochat-backend/internal/domain"
	"github.com/astrochat/astrochat-backend/internal/federated"
)

// respondError is the single place where domain failures become HTTP
// responses. Verification failures keep distinct codes so clients can
// tell "resend" from "retry"; everything unexpected collapses into a
// generic server error.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict", "error_description": "Identifier already registered."})
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, federated.ErrInvalidIDToken),
		errors.Is(err, domain.ErrTokenMalformed),
		errors.Is(err, domain.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "error_description": "Invalid credentials."})
	case errors.Is(err, domain.ErrNotVerified):
		c.JSON(http.StatusForbidden, gin.H{"error": "not_verified", "error_description": "Account not verified. A new verification code has been sent."})
	case errors.Is(err, domain.ErrCodeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "code_not_found", "error_description": "No pending verification code. Request a new one."})
	case errors.Is(err, domain.ErrCodeExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "code_expired", "error_description": "Verification code expired. Request a new one."})
	case errors.Is(err, domain.ErrCodeInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "code_invalid", "error_description": "Invalid verification code."})
	case errors.Is(err, domain.ErrTooManyAttempts):
		c.JSON(http.StatusBadRequest, gin.H{"error": "too_many_attempts", "error_description": "Too many failed attempts. Request a new code."})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "error_description": "Record not found."})
	default:
		zap.L().Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Internal server error."})
	}
}

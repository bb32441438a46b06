package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/astrochat/astrochat-backend/internal/domain"
	"github.com/astrochat/astrochat-backend/internal/http/middleware"
	"github.com/astrochat/astrochat-backend/internal/service"
)

// AuthHandler serves the registration, verification, and login
// endpoints.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// Register creates an email identity and triggers code dispatch.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Email and password are required."})
		return
	}

	user, err := h.Auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user_id": user.ID,
	})
}

// Verify confirms an email verification code and returns a token.
func (h *AuthHandler) Verify(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Email and verification code are required."})
		return
	}

	result, err := h.Auth.VerifyEmail(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Email verified successfully",
		"token":   result.Token,
		"user_id": result.UserID,
	})
}

// Login authenticates email+password.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Email and password are required."})
		return
	}

	result, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   result.Token,
		"user_id": result.UserID,
	})
}

// SendOTP dispatches a one-time code to a phone number.
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req struct {
		Mobile string `json:"mobile" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Mobile number is required."})
		return
	}

	if err := h.Auth.RequestOTP(c.Request.Context(), req.Mobile); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP sent successfully"})
}

// VerifyOTP confirms a phone code and returns a token.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Mobile string `json:"mobile" binding:"required"`
		Code   string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Mobile number and OTP are required."})
		return
	}

	result, err := h.Auth.VerifyOTP(c.Request.Context(), req.Mobile, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "OTP verified successfully",
		"token":            result.Token,
		"user_id":          result.UserID,
		"profile_complete": result.ProfileComplete,
	})
}

// FederatedLogin signs in with an external identity token.
func (h *AuthHandler) FederatedLogin(c *gin.Context) {
	var req struct {
		Provider string `json:"provider" binding:"required"`
		IDToken  string `json:"id_token"`
		Code     string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Provider is required."})
		return
	}

	result, err := h.Auth.FederatedLogin(c.Request.Context(), req.Provider, req.IDToken, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "Login successful",
		"token":            result.Token,
		"user_id":          result.UserID,
		"profile_complete": result.ProfileComplete,
	})
}

// SaveProfile stores the caller's birth-chart details.
func (h *AuthHandler) SaveProfile(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "error_description": "Authentication required."})
		return
	}

	var req struct {
		Name       string `json:"name"`
		BirthDate  string `json:"birthDate"`
		BirthTime  string `json:"birthTime"`
		BirthPlace string `json:"birthPlace"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Invalid request body."})
		return
	}

	profile := domain.Profile{
		Name:       req.Name,
		BirthDate:  req.BirthDate,
		BirthTime:  req.BirthTime,
		BirthPlace: req.BirthPlace,
	}
	if err := h.Auth.SaveProfile(c.Request.Context(), claims.UserID, profile); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile saved successfully"})
}

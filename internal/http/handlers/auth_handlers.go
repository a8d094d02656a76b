package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/authsvc/domain"
	"github.com/you/authsvc/internal/http/middleware"
)

// AuthHandlers handles authentication HTTP requests
type AuthHandlers struct {
	authSvc domain.AuthService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authSvc domain.AuthService) *AuthHandlers {
	return &AuthHandlers{authSvc: authSvc}
}

// RegisterRequest represents registration request
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"required"`
	Password  string `json:"password" binding:"required,min=6"`
	Role      string `json:"role,omitempty" binding:"omitempty,oneof=user admin super_admin"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// LoginRequest represents password login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// OTPLoginRequest represents both phases of OTP login: a request without a
// code asks for a fresh one, a request with a code attempts to consume it.
type OTPLoginRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  int    `json:"code,omitempty"`
}

// GoogleLoginRequest carries the provider's signed identity assertion
type GoogleLoginRequest struct {
	Credential string `json:"credential" binding:"required"`
}

// Register handles user registration
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authSvc.Register(c.Request.Context(), domain.RegisterInput{
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
		Role:      req.Role,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, userJSON(user))
}

// Login handles password login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authSvc.LoginWithPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": result.AccessToken})
}

// LoginOTP handles both OTP phases
func (h *AuthHandlers) LoginOTP(c *gin.Context) {
	var req OTPLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Code == 0 {
		challenge, err := h.authSvc.RequestOTP(c.Request.Context(), req.Phone)
		if err != nil {
			respondError(c, err)
			return
		}
		if challenge.Code != 0 {
			c.JSON(http.StatusOK, gin.H{"code": challenge.Code})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Code sent"})
		return
	}

	result, err := h.authSvc.LoginWithOTP(c.Request.Context(), req.Phone, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": result.AccessToken})
}

// LoginGoogle handles federated login
func (h *AuthHandlers) LoginGoogle(c *gin.Context) {
	var req GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authSvc.LoginWithGoogle(c.Request.Context(), req.Credential)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": result.AccessToken})
}

// Me handles getting the authenticated user's profile
func (h *AuthHandlers) Me(c *gin.Context) {
	userID, exists := c.Get(middleware.CtxUserID)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in context"})
		return
	}

	user, err := h.authSvc.GetProfile(c.Request.Context(), userID.(uint))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, userJSON(user))
}

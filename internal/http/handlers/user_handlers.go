package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/you/authsvc/domain"
)

// UserHandlers handles account management HTTP requests
type UserHandlers struct {
	userSvc domain.UserService
}

// NewUserHandlers creates new user handlers
func NewUserHandlers(userSvc domain.UserService) *UserHandlers {
	return &UserHandlers{userSvc: userSvc}
}

// CreateUserRequest represents admin-driven account creation
type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"required"`
	Password  string `json:"password" binding:"required,min=6"`
	Role      string `json:"role,omitempty" binding:"omitempty,oneof=user admin super_admin"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// UpdateUserRequest represents a partial account update
type UpdateUserRequest struct {
	Email     *string `json:"email,omitempty" binding:"omitempty,email"`
	Phone     *string `json:"phone,omitempty"`
	Password  *string `json:"password,omitempty" binding:"omitempty,min=6"`
	Role      *string `json:"role,omitempty" binding:"omitempty,oneof=user admin super_admin"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

// Create handles account creation by an administrator
func (h *UserHandlers) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userSvc.Create(c.Request.Context(), domain.RegisterInput{
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

// List handles listing all accounts
func (h *UserHandlers) List(c *gin.Context) {
	users, err := h.userSvc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usersJSON(users))
}

// ListAdmins handles listing accounts holding administrative roles
func (h *UserHandlers) ListAdmins(c *gin.Context) {
	users, err := h.userSvc.ListByRoles(c.Request.Context(), domain.AdminRoles)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usersJSON(users))
}

// Get handles fetching a single account
func (h *UserHandlers) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	user, err := h.userSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userJSON(user))
}

// Update handles a partial account update
func (h *UserHandlers) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userSvc.Update(c.Request.Context(), id, domain.UpdateUserInput{
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
	c.JSON(http.StatusOK, userJSON(user))
}

// Delete handles account deletion
func (h *UserHandlers) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.userSvc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User successfully deleted", "id": id})
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return 0, false
	}
	return uint(id), true
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/authsvc/domain"
)

// userJSON shapes an account for responses. The password hash never leaves
// the service.
func userJSON(u *domain.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"email":      u.Email,
		"phone":      u.Phone,
		"role":       u.Role,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
}

func usersJSON(users []domain.User) []gin.H {
	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, userJSON(&users[i]))
	}
	return out
}

// respondError maps domain sentinels onto stable status classes and short
// messages. Store faults fall through to an opaque 500; callers cannot read
// infrastructure detail out of a failed login.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Wrong Password"})
	case errors.Is(err, domain.ErrOTPInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is not valid"})
	case errors.Is(err, domain.ErrEmailExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Email already exists"})
	case errors.Is(err, domain.ErrPhoneExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Phone number already exists"})
	case errors.Is(err, domain.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
	case errors.Is(err, domain.ErrOTPThrottled):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Please wait before requesting a new code"})
	case errors.Is(err, domain.ErrEmailNotProvided):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email not provided by Google"})
	case errors.Is(err, domain.ErrGoogleAuthFailed):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Google authentication failed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

package domain

import "time"

// Roles assignable to a user account.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// AdminRoles lists the roles with administrative privileges.
var AdminRoles = []string{RoleAdmin, RoleSuperAdmin}

// ValidRole reports whether role is one of the known account roles.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// User represents an account in the system
type User struct {
	ID           uint
	Email        string
	Phone        string
	PasswordHash string
	Role         string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OneTimeCode is a numeric login code tied to a phone number. Codes are never
// deleted; the whole table is the collision set for generation.
type OneTimeCode struct {
	ID        uint
	Phone     string
	Code      int
	Used      bool
	CreatedAt time.Time
}

// RegisterInput carries self-asserted registration data.
type RegisterInput struct {
	Email     string
	Phone     string
	Password  string
	Role      string
	FirstName string
	LastName  string
}

// UpdateUserInput carries a partial account update. Nil fields are left untouched.
type UpdateUserInput struct {
	Email     *string
	Phone     *string
	Password  *string
	Role      *string
	FirstName *string
	LastName  *string
}

// ExternalIdentity is a verified claim set extracted from a federated
// provider's signed assertion.
type ExternalIdentity struct {
	Subject    string
	Email      string
	GivenName  string
	FamilyName string
}

// TokenClaims represents decoded session token claims
type TokenClaims struct {
	UserID    uint   `json:"sub"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// AuthResult represents a successful authentication outcome
type AuthResult struct {
	User        *User
	AccessToken string
}

// OTPChallenge is the outcome of the OTP request phase.
type OTPChallenge struct {
	Phone string
	Code  int
	// Delivered reports whether the code was dispatched out of band.
	Delivered bool
}

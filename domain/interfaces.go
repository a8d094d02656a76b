package domain

import (
	"context"
	"time"
)

// UserRepository defines account data access operations. Find methods exclude
// the password hash from their projection; the WithPassword variant fetches it
// explicitly for credential verification.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByEmailWithPassword(ctx context.Context, email string) (*User, error)
	FindByPhone(ctx context.Context, phone string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	FindAll(ctx context.Context) ([]User, error)
	FindByRoles(ctx context.Context, roles []string) ([]User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uint) error
}

// OTPRepository defines one-time-code data access operations.
type OTPRepository interface {
	Create(ctx context.Context, code *OneTimeCode) error
	// ExistsByCode checks the entire code history, used or not.
	ExistsByCode(ctx context.Context, code int) (bool, error)
	// Consume marks the matching unused (phone, code) entry as used.
	// It must be at-most-once under concurrency: of two racing calls with the
	// same pair, exactly one succeeds and the other gets ErrOTPInvalid.
	Consume(ctx context.Context, phone string, code int) error
}

// PasswordService defines password hashing operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService defines session token operations
type TokenService interface {
	Generate(user *User) (string, error)
	Validate(token string) (*TokenClaims, error)
}

// IdentityVerifier validates a third-party signed identity assertion against
// the issuer's published keys and the configured audience.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawToken string) (*ExternalIdentity, error)
}

// NotificationService defines out-of-band message delivery
type NotificationService interface {
	SendSMS(to, message string) error
}

// OTPGenerator produces a login code not present anywhere in the code history.
type OTPGenerator interface {
	Generate(ctx context.Context) (int, error)
}

// OTPThrottle guards the OTP request phase against rapid re-requests.
// Reserve either claims the resend window for phone or reports how long the
// caller must wait, with ErrOTPThrottled.
type OTPThrottle interface {
	Reserve(ctx context.Context, phone string) (time.Duration, error)
}

// AuthService defines the credential validation and session issuance pipeline
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*User, error)
	LoginWithPassword(ctx context.Context, email, password string) (*AuthResult, error)
	RequestOTP(ctx context.Context, phone string) (*OTPChallenge, error)
	LoginWithOTP(ctx context.Context, phone string, code int) (*AuthResult, error)
	LoginWithGoogle(ctx context.Context, assertion string) (*AuthResult, error)
	GetProfile(ctx context.Context, userID uint) (*User, error)
}

// UserService defines account management operations
type UserService interface {
	Create(ctx context.Context, in RegisterInput) (*User, error)
	List(ctx context.Context) ([]User, error)
	ListByRoles(ctx context.Context, roles []string) ([]User, error)
	Get(ctx context.Context, id uint) (*User, error)
	Update(ctx context.Context, id uint, in UpdateUserInput) (*User, error)
	Delete(ctx context.Context, id uint) error
}

package domain

import "errors"

// Authentication errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
	ErrPhoneExists        = errors.New("phone number already exists")
	ErrInvalidRole        = errors.New("invalid role")
)

// OTP errors
var (
	ErrOTPInvalid        = errors.New("code is not valid")
	ErrOTPSpaceExhausted = errors.New("otp code space exhausted")
	ErrOTPThrottled      = errors.New("otp resend window not elapsed")
)

// Token errors
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")
)

// Federated login errors. Provider and infrastructure failures all collapse
// into ErrGoogleAuthFailed so callers never see provider-internal detail.
var (
	ErrGoogleAuthFailed = errors.New("google authentication failed")
	ErrEmailNotProvided = errors.New("email not provided by google")
)

// Authorization errors. ErrNoPrincipal and ErrRoleDenied map to the same
// outward Forbidden signal but stay distinguishable internally.
var (
	ErrNoPrincipal = errors.New("no resolvable principal role")
	ErrRoleDenied  = errors.New("insufficient role permissions")
)

package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/you/authsvc/domain"
)

// AuthServiceImpl implements domain.AuthService. Each login strategy is a
// fixed ordered chain of checks that either short-circuits with a classified
// failure or converges on a verified account handed to the token service.
type AuthServiceImpl struct {
	users       domain.UserRepository
	codes       domain.OTPRepository
	passwordSvc domain.PasswordService
	tokenSvc    domain.TokenService
	verifier    domain.IdentityVerifier
	notifier    domain.NotificationService
	otpGen      domain.OTPGenerator
	throttle    domain.OTPThrottle
	echoCode    bool
	logger      *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	users domain.UserRepository,
	codes domain.OTPRepository,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	verifier domain.IdentityVerifier,
	notifier domain.NotificationService,
	otpGen domain.OTPGenerator,
	throttle domain.OTPThrottle,
	echoCode bool,
	logger *zap.Logger,
) domain.AuthService {
	return &AuthServiceImpl{
		users:       users,
		codes:       codes,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
		verifier:    verifier,
		notifier:    notifier,
		otpGen:      otpGen,
		throttle:    throttle,
		echoCode:    echoCode,
		logger:      logger,
	}
}

// Register implements domain.AuthService. The existence pre-checks give a
// friendly conflict message; the unique indexes behind UserRepository.Create
// remain the authoritative backstop when two registrations race.
func (s *AuthServiceImpl) Register(ctx context.Context, in domain.RegisterInput) (*domain.User, error) {
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrEmailExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("email lookup: %w", err)
	}

	if in.Phone != "" {
		if _, err := s.users.FindByPhone(ctx, in.Phone); err == nil {
			return nil, domain.ErrPhoneExists
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("phone lookup: %w", err)
		}
	}

	hash, err := s.passwordSvc.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
		Role:         role,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// LoginWithPassword implements domain.AuthService
func (s *AuthServiceImpl) LoginWithPassword(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	user, err := s.users.FindByEmailWithPassword(ctx, email)
	if err != nil {
		return nil, err
	}

	if !s.passwordSvc.Verify(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issueSession(user)
}

// RequestOTP implements domain.AuthService. The generated code is always
// persisted and dispatched out of band; when echoCode is enabled the raw code
// is additionally returned to the caller for development use.
func (s *AuthServiceImpl) RequestOTP(ctx context.Context, phone string) (*domain.OTPChallenge, error) {
	if _, err := s.users.FindByPhone(ctx, phone); err != nil {
		return nil, err
	}

	if wait, err := s.throttle.Reserve(ctx, phone); err != nil {
		if errors.Is(err, domain.ErrOTPThrottled) {
			return nil, fmt.Errorf("%w: retry in %ds", domain.ErrOTPThrottled, int(wait.Seconds()))
		}
		return nil, err
	}

	code, err := s.otpGen.Generate(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.codes.Create(ctx, &domain.OneTimeCode{Phone: phone, Code: code}); err != nil {
		return nil, fmt.Errorf("failed to store otp: %w", err)
	}

	delivered := true
	message := fmt.Sprintf("Your login code is: %d", code)
	if err := s.notifier.SendSMS(phone, message); err != nil {
		// With echo enabled the caller still receives the code; without it an
		// undelivered code is unusable, so the request fails.
		if !s.echoCode {
			return nil, fmt.Errorf("failed to deliver otp: %w", err)
		}
		delivered = false
		s.logger.Warn("otp sms delivery failed", zap.String("phone", phone), zap.Error(err))
	}

	challenge := &domain.OTPChallenge{Phone: phone, Delivered: delivered}
	if s.echoCode {
		challenge.Code = code
	}
	return challenge, nil
}

// LoginWithOTP implements domain.AuthService. Consumption is at-most-once:
// the repository flips the used flag conditionally, so a replay or a racing
// duplicate fails with ErrOTPInvalid.
func (s *AuthServiceImpl) LoginWithOTP(ctx context.Context, phone string, code int) (*domain.AuthResult, error) {
	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	if err := s.codes.Consume(ctx, phone, code); err != nil {
		return nil, err
	}

	return s.issueSession(user)
}

// LoginWithGoogle implements domain.AuthService. Every failure except a
// missing email claim collapses into ErrGoogleAuthFailed so provider detail
// never leaks; the underlying cause is only logged.
func (s *AuthServiceImpl) LoginWithGoogle(ctx context.Context, assertion string) (*domain.AuthResult, error) {
	ident, err := s.verifier.Verify(ctx, assertion)
	if err != nil {
		s.logger.Warn("google token verification failed", zap.Error(err))
		return nil, domain.ErrGoogleAuthFailed
	}

	if ident.Email == "" {
		return nil, domain.ErrEmailNotProvided
	}

	user, err := s.users.FindByEmail(ctx, ident.Email)
	if errors.Is(err, domain.ErrUserNotFound) {
		user, err = s.provisionFederated(ctx, ident)
	}
	if err != nil {
		s.logger.Error("google login account resolution failed", zap.Error(err))
		return nil, domain.ErrGoogleAuthFailed
	}

	result, err := s.issueSession(user)
	if err != nil {
		s.logger.Error("google login token issuance failed", zap.Error(err))
		return nil, domain.ErrGoogleAuthFailed
	}
	return result, nil
}

// provisionFederated creates an account for a first federated login. The
// provider's opaque subject id is hashed into the password column only to
// satisfy the non-null invariant; it is not a usable credential.
func (s *AuthServiceImpl) provisionFederated(ctx context.Context, ident *domain.ExternalIdentity) (*domain.User, error) {
	hash, err := s.passwordSvc.Hash(ident.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to hash placeholder password: %w", err)
	}

	user := &domain.User{
		Email:        ident.Email,
		Phone:        "",
		PasswordHash: hash,
		Role:         domain.RoleUser,
		FirstName:    ident.GivenName,
		LastName:     ident.FamilyName,
	}
	err = s.users.Create(ctx, user)
	if errors.Is(err, domain.ErrEmailExists) {
		// Lost a provisioning race; the account now exists.
		return s.users.FindByEmail(ctx, ident.Email)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetProfile implements domain.AuthService
func (s *AuthServiceImpl) GetProfile(ctx context.Context, userID uint) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *AuthServiceImpl) issueSession(user *domain.User) (*domain.AuthResult, error) {
	token, err := s.tokenSvc.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return &domain.AuthResult{User: user, AccessToken: token}, nil
}

package mocks

import (
	"context"

	"github.com/you/authsvc/domain"
)

// MockAuthService implements domain.AuthService interface for testing
type MockAuthService struct {
	RegisterFunc          func(ctx context.Context, in domain.RegisterInput) (*domain.User, error)
	LoginWithPasswordFunc func(ctx context.Context, email, password string) (*domain.AuthResult, error)
	RequestOTPFunc        func(ctx context.Context, phone string) (*domain.OTPChallenge, error)
	LoginWithOTPFunc      func(ctx context.Context, phone string, code int) (*domain.AuthResult, error)
	LoginWithGoogleFunc   func(ctx context.Context, assertion string) (*domain.AuthResult, error)
	GetProfileFunc        func(ctx context.Context, userID uint) (*domain.User, error)
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

func (m *MockAuthService) Register(ctx context.Context, in domain.RegisterInput) (*domain.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, in)
	}
	return &domain.User{ID: 1, Email: in.Email, Role: domain.RoleUser}, nil
}

func (m *MockAuthService) LoginWithPassword(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	if m.LoginWithPasswordFunc != nil {
		return m.LoginWithPasswordFunc(ctx, email, password)
	}
	return nil, domain.ErrInvalidCredentials
}

func (m *MockAuthService) RequestOTP(ctx context.Context, phone string) (*domain.OTPChallenge, error) {
	if m.RequestOTPFunc != nil {
		return m.RequestOTPFunc(ctx, phone)
	}
	return &domain.OTPChallenge{Phone: phone, Code: 1234, Delivered: true}, nil
}

func (m *MockAuthService) LoginWithOTP(ctx context.Context, phone string, code int) (*domain.AuthResult, error) {
	if m.LoginWithOTPFunc != nil {
		return m.LoginWithOTPFunc(ctx, phone, code)
	}
	return nil, domain.ErrOTPInvalid
}

func (m *MockAuthService) LoginWithGoogle(ctx context.Context, assertion string) (*domain.AuthResult, error) {
	if m.LoginWithGoogleFunc != nil {
		return m.LoginWithGoogleFunc(ctx, assertion)
	}
	return nil, domain.ErrGoogleAuthFailed
}

func (m *MockAuthService) GetProfile(ctx context.Context, userID uint) (*domain.User, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, userID)
	}
	return nil, domain.ErrUserNotFound
}

// Compile-time interface compliance verification
var _ domain.AuthService = (*MockAuthService)(nil)

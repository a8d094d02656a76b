package mocks

import "github.com/you/authsvc/domain"

// MockTokenService implements domain.TokenService interface for testing
type MockTokenService struct {
	GenerateFunc func(user *domain.User) (string, error)
	ValidateFunc func(token string) (*domain.TokenClaims, error)
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

func (m *MockTokenService) Generate(user *domain.User) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(user)
	}
	return "access_token_stub", nil
}

func (m *MockTokenService) Validate(token string) (*domain.TokenClaims, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(token)
	}
	return nil, domain.ErrTokenInvalid
}

// Compile-time interface compliance verification
var _ domain.TokenService = (*MockTokenService)(nil)

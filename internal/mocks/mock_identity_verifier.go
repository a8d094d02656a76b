package mocks

import (
	"context"
	"errors"

	"github.com/you/authsvc/domain"
)

// MockIdentityVerifier implements domain.IdentityVerifier interface for testing
type MockIdentityVerifier struct {
	VerifyFunc func(ctx context.Context, rawToken string) (*domain.ExternalIdentity, error)
}

// NewMockIdentityVerifier creates a new MockIdentityVerifier with default behaviors
func NewMockIdentityVerifier() *MockIdentityVerifier {
	return &MockIdentityVerifier{}
}

func (m *MockIdentityVerifier) Verify(ctx context.Context, rawToken string) (*domain.ExternalIdentity, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, rawToken)
	}
	return nil, errors.New("verification not configured")
}

// Compile-time interface compliance verification
var _ domain.IdentityVerifier = (*MockIdentityVerifier)(nil)

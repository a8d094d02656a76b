package mocks

import (
	"context"

	"github.com/you/authsvc/domain"
)

// MockOTPGenerator implements domain.OTPGenerator interface for testing
type MockOTPGenerator struct {
	GenerateFunc func(ctx context.Context) (int, error)
}

// NewMockOTPGenerator creates a new MockOTPGenerator with default behaviors
func NewMockOTPGenerator() *MockOTPGenerator {
	return &MockOTPGenerator{}
}

func (m *MockOTPGenerator) Generate(ctx context.Context) (int, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx)
	}
	return 1234, nil
}

// Compile-time interface compliance verification
var _ domain.OTPGenerator = (*MockOTPGenerator)(nil)

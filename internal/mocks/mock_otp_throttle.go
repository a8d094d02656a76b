package mocks

import (
	"context"
	"time"

	"github.com/you/authsvc/domain"
)

// MockOTPThrottle implements domain.OTPThrottle interface for testing
type MockOTPThrottle struct {
	ReserveFunc func(ctx context.Context, phone string) (time.Duration, error)
}

// NewMockOTPThrottle creates a new MockOTPThrottle with default behaviors
func NewMockOTPThrottle() *MockOTPThrottle {
	return &MockOTPThrottle{}
}

func (m *MockOTPThrottle) Reserve(ctx context.Context, phone string) (time.Duration, error) {
	if m.ReserveFunc != nil {
		return m.ReserveFunc(ctx, phone)
	}
	return 0, nil
}

// Compile-time interface compliance verification
var _ domain.OTPThrottle = (*MockOTPThrottle)(nil)

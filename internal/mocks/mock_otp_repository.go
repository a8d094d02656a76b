package mocks

import (
	"context"

	"github.com/you/authsvc/domain"
)

// MockOTPRepository implements domain.OTPRepository interface for testing
type MockOTPRepository struct {
	CreateFunc       func(ctx context.Context, code *domain.OneTimeCode) error
	ExistsByCodeFunc func(ctx context.Context, code int) (bool, error)
	ConsumeFunc      func(ctx context.Context, phone string, code int) error
}

// NewMockOTPRepository creates a new MockOTPRepository with default behaviors
func NewMockOTPRepository() *MockOTPRepository {
	return &MockOTPRepository{}
}

func (m *MockOTPRepository) Create(ctx context.Context, code *domain.OneTimeCode) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, code)
	}
	return nil
}

func (m *MockOTPRepository) ExistsByCode(ctx context.Context, code int) (bool, error) {
	if m.ExistsByCodeFunc != nil {
		return m.ExistsByCodeFunc(ctx, code)
	}
	return false, nil
}

func (m *MockOTPRepository) Consume(ctx context.Context, phone string, code int) error {
	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(ctx, phone, code)
	}
	return domain.ErrOTPInvalid
}

// Compile-time interface compliance verification
var _ domain.OTPRepository = (*MockOTPRepository)(nil)

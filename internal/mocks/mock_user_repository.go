package mocks

import (
	"context"

	"github.com/you/authsvc/domain"
)

// MockUserRepository implements domain.UserRepository interface for testing
type MockUserRepository struct {
	CreateFunc                  func(ctx context.Context, user *domain.User) error
	FindByEmailFunc             func(ctx context.Context, email string) (*domain.User, error)
	FindByEmailWithPasswordFunc func(ctx context.Context, email string) (*domain.User, error)
	FindByPhoneFunc             func(ctx context.Context, phone string) (*domain.User, error)
	FindByIDFunc                func(ctx context.Context, id uint) (*domain.User, error)
	FindAllFunc                 func(ctx context.Context) ([]domain.User, error)
	FindByRolesFunc             func(ctx context.Context, roles []string) ([]domain.User, error)
	UpdateFunc                  func(ctx context.Context, user *domain.User) error
	DeleteFunc                  func(ctx context.Context, id uint) error
}

// NewMockUserRepository creates a new MockUserRepository with default behaviors
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) FindByEmailWithPassword(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailWithPasswordFunc != nil {
		return m.FindByEmailWithPasswordFunc(ctx, email)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	if m.FindByPhoneFunc != nil {
		return m.FindByPhoneFunc(ctx, phone)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	return nil, nil
}

func (m *MockUserRepository) FindByRoles(ctx context.Context, roles []string) ([]domain.User, error) {
	if m.FindByRolesFunc != nil {
		return m.FindByRolesFunc(ctx, roles)
	}
	return nil, nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.UserRepository = (*MockUserRepository)(nil)

package mocks

import (
	"context"

	"github.com/you/authsvc/domain"
)

// MockUserService implements domain.UserService interface for testing
type MockUserService struct {
	CreateFunc      func(ctx context.Context, in domain.RegisterInput) (*domain.User, error)
	ListFunc        func(ctx context.Context) ([]domain.User, error)
	ListByRolesFunc func(ctx context.Context, roles []string) ([]domain.User, error)
	GetFunc         func(ctx context.Context, id uint) (*domain.User, error)
	UpdateFunc      func(ctx context.Context, id uint, in domain.UpdateUserInput) (*domain.User, error)
	DeleteFunc      func(ctx context.Context, id uint) error
}

// NewMockUserService creates a new MockUserService with default behaviors
func NewMockUserService() *MockUserService {
	return &MockUserService{}
}

func (m *MockUserService) Create(ctx context.Context, in domain.RegisterInput) (*domain.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, in)
	}
	return &domain.User{ID: 1, Email: in.Email, Role: domain.RoleUser}, nil
}

func (m *MockUserService) List(ctx context.Context) ([]domain.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockUserService) ListByRoles(ctx context.Context, roles []string) ([]domain.User, error) {
	if m.ListByRolesFunc != nil {
		return m.ListByRolesFunc(ctx, roles)
	}
	return nil, nil
}

func (m *MockUserService) Get(ctx context.Context, id uint) (*domain.User, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserService) Update(ctx context.Context, id uint, in domain.UpdateUserInput) (*domain.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, in)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserService) Delete(ctx context.Context, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.UserService = (*MockUserService)(nil)

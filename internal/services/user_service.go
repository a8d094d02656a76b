package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/you/authsvc/domain"
)

// UserServiceImpl implements domain.UserService
type UserServiceImpl struct {
	users       domain.UserRepository
	passwordSvc domain.PasswordService
}

// NewUserService creates a new user management service
func NewUserService(users domain.UserRepository, passwordSvc domain.PasswordService) domain.UserService {
	return &UserServiceImpl{users: users, passwordSvc: passwordSvc}
}

// Create implements domain.UserService. Admin-driven account creation walks
// the same uniqueness and hashing path as self registration.
func (s *UserServiceImpl) Create(ctx context.Context, in domain.RegisterInput) (*domain.User, error) {
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
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

// List implements domain.UserService
func (s *UserServiceImpl) List(ctx context.Context) ([]domain.User, error) {
	return s.users.FindAll(ctx)
}

// ListByRoles implements domain.UserService
func (s *UserServiceImpl) ListByRoles(ctx context.Context, roles []string) ([]domain.User, error) {
	return s.users.FindByRoles(ctx, roles)
}

// Get implements domain.UserService
func (s *UserServiceImpl) Get(ctx context.Context, id uint) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

// Update implements domain.UserService. Nil input fields leave the stored
// value untouched; a password change is re-hashed before storage.
func (s *UserServiceImpl) Update(ctx context.Context, id uint, in domain.UpdateUserInput) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// The default projection omits the hash; refetch it up front so the save
	// does not blank the password column.
	if withPassword, err := s.users.FindByEmailWithPassword(ctx, user.Email); err == nil {
		user.PasswordHash = withPassword.PasswordHash
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	if in.Role != nil {
		if !domain.ValidRole(*in.Role) {
			return nil, domain.ErrInvalidRole
		}
		user.Role = *in.Role
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Phone != nil {
		user.Phone = *in.Phone
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Password != nil {
		hash, err := s.passwordSvc.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// Delete implements domain.UserService
func (s *UserServiceImpl) Delete(ctx context.Context, id uint) error {
	return s.users.Delete(ctx, id)
}

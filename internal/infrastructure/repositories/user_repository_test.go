package repositories

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/you/authsvc/domain"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	if err := db.AutoMigrate(&DBUser{}, &DBCode{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

func seedUser(t *testing.T, repo domain.UserRepository, email, phone string) *domain.User {
	t.Helper()
	user := &domain.User{
		Email:        email,
		Phone:        phone,
		PasswordHash: "hashed_password",
		Role:         domain.RoleUser,
		FirstName:    "Test",
		LastName:     "User",
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	created := seedUser(t, repo, "test@example.com", "+1234567890")
	if created.ID == 0 {
		t.Fatal("expected Create to assign an ID")
	}

	byEmail, err := repo.FindByEmail(ctx, "test@example.com")
	if err != nil {
		t.Fatalf("FindByEmail returned error: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Errorf("expected ID %d, got %d", created.ID, byEmail.ID)
	}

	byPhone, err := repo.FindByPhone(ctx, "+1234567890")
	if err != nil {
		t.Fatalf("FindByPhone returned error: %v", err)
	}
	if byPhone.Email != "test@example.com" {
		t.Errorf("expected email test@example.com, got %s", byPhone.Email)
	}

	byID, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if byID.Email != "test@example.com" {
		t.Errorf("expected email test@example.com, got %s", byID.Email)
	}
}

func TestUserRepository_NotFound(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	if _, err := repo.FindByEmail(ctx, "missing@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("FindByEmail: expected ErrUserNotFound, got %v", err)
	}
	if _, err := repo.FindByPhone(ctx, "+0000000000"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("FindByPhone: expected ErrUserNotFound, got %v", err)
	}
	if _, err := repo.FindByID(ctx, 999); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("FindByID: expected ErrUserNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, 999); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("Delete: expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepository_DefaultProjectionHidesPassword(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	seedUser(t, repo, "test@example.com", "+1234567890")

	public, err := repo.FindByEmail(ctx, "test@example.com")
	if err != nil {
		t.Fatalf("FindByEmail returned error: %v", err)
	}
	if public.PasswordHash != "" {
		t.Errorf("default projection leaked the password hash: %q", public.PasswordHash)
	}

	withPassword, err := repo.FindByEmailWithPassword(ctx, "test@example.com")
	if err != nil {
		t.Fatalf("FindByEmailWithPassword returned error: %v", err)
	}
	if withPassword.PasswordHash != "hashed_password" {
		t.Errorf("expected hash to be fetched explicitly, got %q", withPassword.PasswordHash)
	}
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	seedUser(t, repo, "test@example.com", "+1234567890")

	err := repo.Create(ctx, &domain.User{
		Email:        "test@example.com",
		Phone:        "+1999999999",
		PasswordHash: "hash",
		Role:         domain.RoleUser,
	})
	if !errors.Is(err, domain.ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

func TestUserRepository_DuplicatePhone(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	seedUser(t, repo, "first@example.com", "+1234567890")

	err := repo.Create(ctx, &domain.User{
		Email:        "second@example.com",
		Phone:        "+1234567890",
		PasswordHash: "hash",
		Role:         domain.RoleUser,
	})
	if !errors.Is(err, domain.ErrPhoneExists) {
		t.Errorf("expected ErrPhoneExists, got %v", err)
	}
}

func TestUserRepository_UpdateConflicts(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	seedUser(t, repo, "first@example.com", "+1234567890")
	second := seedUser(t, repo, "second@example.com", "+1999999999")

	// A phone change colliding with another account reports the phone, not
	// the email, as the conflicting column.
	second.Phone = "+1234567890"
	if err := repo.Update(ctx, second); !errors.Is(err, domain.ErrPhoneExists) {
		t.Errorf("expected ErrPhoneExists, got %v", err)
	}

	second.Phone = "+1999999999"
	second.Email = "first@example.com"
	if err := repo.Update(ctx, second); !errors.Is(err, domain.ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

func TestUserRepository_EmptyPhonesDoNotCollide(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))

	// Federated accounts carry no phone number; the unique index must not
	// treat two of them as duplicates.
	seedUser(t, repo, "first@example.com", "")
	seedUser(t, repo, "second@example.com", "")

	users, err := repo.FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll returned error: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	for _, u := range users {
		if u.Phone != "" {
			t.Errorf("expected empty phone, got %q", u.Phone)
		}
	}
}

func TestUserRepository_FindByRoles(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	roles := []string{domain.RoleUser, domain.RoleAdmin, domain.RoleSuperAdmin, domain.RoleUser}
	for i, role := range roles {
		user := seedUser(t, repo, string(rune('a'+i))+"@example.com", "")
		user.Role = role
		if err := repo.Update(ctx, user); err != nil {
			t.Fatalf("failed to set role: %v", err)
		}
	}

	admins, err := repo.FindByRoles(ctx, domain.AdminRoles)
	if err != nil {
		t.Fatalf("FindByRoles returned error: %v", err)
	}
	if len(admins) != 2 {
		t.Fatalf("expected 2 administrative accounts, got %d", len(admins))
	}
	for _, u := range admins {
		if u.Role != domain.RoleAdmin && u.Role != domain.RoleSuperAdmin {
			t.Errorf("unexpected role in result: %s", u.Role)
		}
	}
}

func TestUserRepository_UpdateAndDelete(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	user := seedUser(t, repo, "test@example.com", "+1234567890")

	user.FirstName = "Updated"
	user.Role = domain.RoleAdmin
	user.PasswordHash = "hashed_password"
	if err := repo.Update(ctx, user); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	fetched, err := repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if fetched.FirstName != "Updated" {
		t.Errorf("expected first name Updated, got %s", fetched.FirstName)
	}
	if fetched.Role != domain.RoleAdmin {
		t.Errorf("expected role admin, got %s", fetched.Role)
	}

	if err := repo.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := repo.FindByID(ctx, user.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound after delete, got %v", err)
	}
}

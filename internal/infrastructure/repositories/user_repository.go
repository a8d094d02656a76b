package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/you/authsvc/domain"
)

// UserRepositoryImpl implements domain.UserRepository using GORM
type UserRepositoryImpl struct {
	db *gorm.DB
}

// DBUser represents the database model for User (with GORM tags).
// Phone is nullable so federated accounts without a phone number do not
// collide on the unique index; empty string maps to NULL.
type DBUser struct {
	ID           uint      `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;size:255;not null"`
	Phone        *string   `gorm:"uniqueIndex;size:32"`
	PasswordHash string    `gorm:"column:password;not null"`
	Role         string    `gorm:"index;size:64;not null"`
	FirstName    string    `gorm:"size:25"`
	LastName     string    `gorm:"size:25"`
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
}

// TableName returns the table name for GORM
func (DBUser) TableName() string {
	return "users"
}

// userPublicColumns is the default projection. The password hash is fetched
// only by the explicit WithPassword lookup.
var userPublicColumns = []string{
	"id", "email", "phone", "role", "first_name", "last_name", "created_at", "updated_at",
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// Create implements domain.UserRepository. A unique index violation on email
// or phone is translated into the matching conflict error; the store-level
// constraint, not the caller's pre-check, is the authoritative signal.
func (r *UserRepositoryImpl) Create(ctx context.Context, user *domain.User) error {
	dbUser := r.domainToDB(user)
	if err := r.db.WithContext(ctx).Create(dbUser).Error; err != nil {
		return translateConflict(err)
	}
	user.ID = dbUser.ID
	user.CreatedAt = dbUser.CreatedAt
	user.UpdatedAt = dbUser.UpdatedAt
	return nil
}

// FindByEmail implements domain.UserRepository
func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, userPublicColumns, "email = ?", email)
}

// FindByEmailWithPassword implements domain.UserRepository
func (r *UserRepositoryImpl) FindByEmailWithPassword(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, nil, "email = ?", email)
}

// FindByPhone implements domain.UserRepository
func (r *UserRepositoryImpl) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.findOne(ctx, userPublicColumns, "phone = ?", phone)
}

// FindByID implements domain.UserRepository
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return r.findOne(ctx, userPublicColumns, "id = ?", id)
}

// FindAll implements domain.UserRepository
func (r *UserRepositoryImpl) FindAll(ctx context.Context) ([]domain.User, error) {
	var dbUsers []DBUser
	err := r.db.WithContext(ctx).Select(userPublicColumns).Order("id").Find(&dbUsers).Error
	if err != nil {
		return nil, err
	}
	return r.dbToDomainSlice(dbUsers), nil
}

// FindByRoles implements domain.UserRepository
func (r *UserRepositoryImpl) FindByRoles(ctx context.Context, roles []string) ([]domain.User, error) {
	var dbUsers []DBUser
	err := r.db.WithContext(ctx).Select(userPublicColumns).Where("role IN ?", roles).Order("id").Find(&dbUsers).Error
	if err != nil {
		return nil, err
	}
	return r.dbToDomainSlice(dbUsers), nil
}

// Update implements domain.UserRepository
func (r *UserRepositoryImpl) Update(ctx context.Context, user *domain.User) error {
	dbUser := r.domainToDB(user)
	if err := r.db.WithContext(ctx).Save(dbUser).Error; err != nil {
		return translateConflict(err)
	}
	user.UpdatedAt = dbUser.UpdatedAt
	return nil
}

// Delete implements domain.UserRepository
func (r *UserRepositoryImpl) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&DBUser{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) findOne(ctx context.Context, columns []string, query string, arg interface{}) (*domain.User, error) {
	var dbUser DBUser
	tx := r.db.WithContext(ctx)
	if columns != nil {
		tx = tx.Select(columns)
	}
	err := tx.Where(query, arg).First(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbUser), nil
}

// translateConflict maps duplicate-key errors onto the conflict sentinel for
// the violated column. Classification needs the constraint name from the raw
// driver text (Postgres "duplicate key value violates unique constraint
// \"idx_users_phone\"", SQLite "UNIQUE constraint failed: users.phone"), so
// the store must be opened without gorm error translation.
func translateConflict(err error) error {
	if !isDuplicateKey(err) {
		return err
	}
	if strings.Contains(err.Error(), "phone") {
		return domain.ErrPhoneExists
	}
	return domain.ErrEmailExists
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

func (r *UserRepositoryImpl) domainToDB(user *domain.User) *DBUser {
	var phone *string
	if user.Phone != "" {
		p := user.Phone
		phone = &p
	}
	return &DBUser{
		ID:           user.ID,
		Email:        user.Email,
		Phone:        phone,
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		CreatedAt:    user.CreatedAt,
	}
}

func (r *UserRepositoryImpl) dbToDomain(dbUser *DBUser) *domain.User {
	phone := ""
	if dbUser.Phone != nil {
		phone = *dbUser.Phone
	}
	return &domain.User{
		ID:           dbUser.ID,
		Email:        dbUser.Email,
		Phone:        phone,
		PasswordHash: dbUser.PasswordHash,
		Role:         dbUser.Role,
		FirstName:    dbUser.FirstName,
		LastName:     dbUser.LastName,
		CreatedAt:    dbUser.CreatedAt,
		UpdatedAt:    dbUser.UpdatedAt,
	}
}

func (r *UserRepositoryImpl) dbToDomainSlice(dbUsers []DBUser) []domain.User {
	users := make([]domain.User, 0, len(dbUsers))
	for i := range dbUsers {
		users = append(users, *r.dbToDomain(&dbUsers[i]))
	}
	return users
}

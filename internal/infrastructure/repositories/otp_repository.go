package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/you/authsvc/domain"
)

// OTPRepositoryImpl implements domain.OTPRepository using GORM. Codes are an
// append-only audit trail; consumption flips the used flag and nothing is
// ever deleted.
type OTPRepositoryImpl struct {
	db *gorm.DB
}

// DBCode represents the database model for OneTimeCode
type DBCode struct {
	ID        uint      `gorm:"primaryKey"`
	Phone     string    `gorm:"index;size:32;not null"`
	Code      int       `gorm:"index;not null"`
	Used      bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (DBCode) TableName() string {
	return "codes"
}

// NewOTPRepository creates a new one-time-code repository
func NewOTPRepository(db *gorm.DB) domain.OTPRepository {
	return &OTPRepositoryImpl{db: db}
}

// Create implements domain.OTPRepository
func (r *OTPRepositoryImpl) Create(ctx context.Context, code *domain.OneTimeCode) error {
	dbCode := &DBCode{
		Phone: code.Phone,
		Code:  code.Code,
		Used:  code.Used,
	}
	if err := r.db.WithContext(ctx).Create(dbCode).Error; err != nil {
		return err
	}
	code.ID = dbCode.ID
	code.CreatedAt = dbCode.CreatedAt
	return nil
}

// ExistsByCode implements domain.OTPRepository. The check spans the entire
// code history regardless of phone or used state.
func (r *OTPRepositoryImpl) ExistsByCode(ctx context.Context, code int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&DBCode{}).Where("code = ?", code).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Consume implements domain.OTPRepository. The used flag is flipped by a
// single conditional update guarded on used = false; the affected-row count
// decides the outcome, so two racing calls cannot both succeed.
func (r *OTPRepositoryImpl) Consume(ctx context.Context, phone string, code int) error {
	res := r.db.WithContext(ctx).
		Model(&DBCode{}).
		Where("phone = ? AND code = ? AND used = ?", phone, code, false).
		Update("used", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrOTPInvalid
	}
	return nil
}

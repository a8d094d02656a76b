package database

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/you/authsvc/internal/infrastructure/repositories"
)

// Open connects to Postgres. Driver errors are left untranslated: the
// repository classifies unique index violations by the constraint named in
// the raw error text, which gorm's translated sentinel does not carry.
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

// AutoMigrate creates or updates the credential store schema
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&repositories.DBUser{}, &repositories.DBCode{})
}

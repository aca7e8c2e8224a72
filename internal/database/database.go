package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/fotoowl-gallery-api/internal/models"
)

// Connect opens the remote backend database with the named driver.
func Connect(driver, dsn string) (*gorm.DB, error) {
	switch driver {
	case "postgres":
		return ConnectPostgres(dsn)
	case "sqlite":
		return ConnectSQLite(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Migrate creates the interaction tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Reaction{}, &models.Comment{}, &models.Activity{}); err != nil {
		return fmt.Errorf("migrate interaction tables: %w", err)
	}
	return nil
}

package database

import (
	"gorm.io/gorm"

	"github.com/noah-isme/essay-auditor-api/internal/models"
)

// Migrate creates or updates the tables owned by the auditor.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Correction{})
}

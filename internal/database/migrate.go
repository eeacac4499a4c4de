package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/homecuistot/backend/internal/models"
)

// Migrate brings the schema up to date. Partial indexes are created
// with raw SQL because gorm tags cannot express the WHERE clause; the
// statement is valid on both Postgres and the SQLite test databases.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Ingredient{},
		&models.UnrecognizedItem{},
		&models.UserInventoryItem{},
		&models.UsageLogEntry{},
		&models.Recipe{},
	); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	// At most one inventory row per (user, catalog ingredient).
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_inventory_user_ingredient
		ON user_inventory_items (user_id, ingredient_id)
		WHERE ingredient_id IS NOT NULL
	`).Error; err != nil {
		return fmt.Errorf("failed to create partial unique index: %w", err)
	}

	return nil
}

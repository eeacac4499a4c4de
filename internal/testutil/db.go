package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/homecuistot/backend/internal/database"
	"github.com/homecuistot/backend/internal/models"
)

// NewDB opens an in-memory SQLite database with the full schema
// applied. Each call gets a fresh database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")
	require.NoError(t, database.Migrate(db), "failed to migrate test database")
	return db
}

// SeedUser inserts a user row.
func SeedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Name:         "Test User",
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// SeedIngredient inserts a catalog ingredient.
func SeedIngredient(t *testing.T, db *gorm.DB, name string, category models.IngredientCategory) *models.Ingredient {
	t.Helper()
	ingredient := &models.Ingredient{
		ID:       uuid.New(),
		Name:     name,
		Category: category,
	}
	require.NoError(t, db.Create(ingredient).Error)
	return ingredient
}

// SeedInventoryItem inserts an inventory row linked to a catalog
// ingredient.
func SeedInventoryItem(t *testing.T, db *gorm.DB, userID, ingredientID uuid.UUID, quantity int, staple bool) *models.UserInventoryItem {
	t.Helper()
	id := ingredientID
	item := &models.UserInventoryItem{
		ID:             uuid.New(),
		UserID:         userID,
		IngredientID:   &id,
		QuantityLevel:  quantity,
		IsPantryStaple: staple,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

// SeedUnrecognized inserts an unrecognized item row.
func SeedUnrecognized(t *testing.T, db *gorm.DB, rawText string) *models.UnrecognizedItem {
	t.Helper()
	item := &models.UnrecognizedItem{
		ID:      uuid.New(),
		RawText: rawText,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

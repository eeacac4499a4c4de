package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homecuistot/backend/internal/models"
)

// CatalogService owns the ingredient catalog: admin creation, promotion
// of unrecognized items and demo prefill.
type CatalogService struct {
	db *gorm.DB
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// CreateIngredient adds one catalog entry. Names are normalized to
// lowercase; duplicates are rejected.
func (s *CatalogService) CreateIngredient(ctx context.Context, name string, category models.IngredientCategory) (*models.Ingredient, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, fmt.Errorf("%w: ingredient name is required", ErrInvalidInput)
	}
	if !models.ValidCategory(category) {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, category)
	}

	var existing models.Ingredient
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: ingredient %q already exists", ErrInvalidInput, name)
	}

	ingredient := models.Ingredient{
		ID:       uuid.New(),
		Name:     name,
		Category: category,
	}
	if err := s.db.WithContext(ctx).Create(&ingredient).Error; err != nil {
		return nil, fmt.Errorf("%w: ingredient insert failed: %v", ErrStorage, err)
	}
	return &ingredient, nil
}

// PromoteUnrecognized turns one unrecognized item into a full catalog
// entry and rewires inventory rows that pointed at it. If a user
// already holds the new catalog ingredient the duplicate row is merged
// away. One transaction, all-or-nothing.
func (s *CatalogService) PromoteUnrecognized(ctx context.Context, unrecognizedID uuid.UUID, category models.IngredientCategory) (*models.Ingredient, error) {
	if !models.ValidCategory(category) {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, category)
	}

	var promoted *models.Ingredient
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.UnrecognizedItem
		if err := tx.First(&item, "id = ?", unrecognizedID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: unrecognized item %s", ErrNotFound, unrecognizedID)
			}
			return err
		}

		name := strings.ToLower(strings.TrimSpace(item.RawText))
		ingredient := models.Ingredient{ID: uuid.New(), Name: name, Category: category}
		var existing models.Ingredient
		err := tx.Where("name = ?", name).First(&existing).Error
		if err == nil {
			ingredient = existing
		} else if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := tx.Create(&ingredient).Error; err != nil {
				return err
			}
		} else {
			return err
		}

		var linked []models.UserInventoryItem
		if err := tx.Where("unrecognized_item_id = ?", item.ID).Find(&linked).Error; err != nil {
			return err
		}
		for i := range linked {
			row := &linked[i]
			var dup models.UserInventoryItem
			err := tx.Where("user_id = ? AND ingredient_id = ?", row.UserID, ingredient.ID).First(&dup).Error
			switch {
			case err == nil:
				// User already holds the catalog entry; drop the
				// unrecognized row rather than violating uniqueness.
				if err := tx.Delete(row).Error; err != nil {
					return err
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				updates := map[string]any{
					"ingredient_id":        ingredient.ID,
					"unrecognized_item_id": nil,
				}
				if err := tx.Model(row).Updates(updates).Error; err != nil {
					return err
				}
			default:
				return err
			}
		}

		if err := tx.Delete(&item).Error; err != nil {
			return err
		}
		promoted = &ingredient
		return nil
	})
	if err != nil {
		if isClassified(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: promotion failed: %v", ErrStorage, err)
	}
	return promoted, nil
}

// demoCatalog is the prefill data for new or demo accounts.
var demoCatalog = []struct {
	Name     string
	Category models.IngredientCategory
	Staple   bool
}{
	{"salt", models.CategorySpices, true},
	{"black pepper", models.CategorySpices, true},
	{"olive oil", models.CategoryCondiments, true},
	{"flour", models.CategoryBaking, true},
	{"sugar", models.CategoryBaking, true},
	{"milk", models.CategoryDairy, false},
	{"butter", models.CategoryDairy, false},
	{"egg", models.CategoryDairy, false},
	{"onion", models.CategoryProduce, false},
	{"garlic", models.CategoryProduce, false},
	{"tomato", models.CategoryProduce, false},
	{"carrot", models.CategoryProduce, false},
	{"potato", models.CategoryProduce, false},
	{"rice", models.CategoryGrains, false},
	{"pasta", models.CategoryGrains, false},
	{"chicken breast", models.CategoryMeat, false},
}

// SeedCatalog inserts the demo catalog entries that are not already
// present. Used by the standalone seeder.
func (s *CatalogService) SeedCatalog(ctx context.Context) (int, error) {
	created := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range demoCatalog {
			var existing models.Ingredient
			err := tx.Where("name = ?", entry.Name).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			ingredient := models.Ingredient{ID: uuid.New(), Name: entry.Name, Category: entry.Category}
			if err := tx.Create(&ingredient).Error; err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: catalog seed failed: %v", ErrStorage, err)
	}
	return created, nil
}

// Prefill seeds the demo catalog and stocks the user's inventory with
// it, one transaction for the whole multi-row insert.
func (s *CatalogService) Prefill(ctx context.Context, userID uuid.UUID) (int, error) {
	created := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range demoCatalog {
			var ingredient models.Ingredient
			err := tx.Where("name = ?", entry.Name).First(&ingredient).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ingredient = models.Ingredient{ID: uuid.New(), Name: entry.Name, Category: entry.Category}
				if err := tx.Create(&ingredient).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}

			var existing models.UserInventoryItem
			err = tx.Where("user_id = ? AND ingredient_id = ?", userID, ingredient.ID).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			ingredientID := ingredient.ID
			item := models.UserInventoryItem{
				ID:             uuid.New(),
				UserID:         userID,
				IngredientID:   &ingredientID,
				QuantityLevel:  models.QuantityFull,
				IsPantryStaple: entry.Staple,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: prefill failed: %v", ErrStorage, err)
	}
	return created, nil
}

// ListUnrecognized returns all unrecognized items for admin review.
func (s *CatalogService) ListUnrecognized(ctx context.Context) ([]models.UnrecognizedItem, error) {
	var items []models.UnrecognizedItem
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("%w: unrecognized query failed: %v", ErrStorage, err)
	}
	return items, nil
}

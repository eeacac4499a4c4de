package models

import (
	"time"

	"github.com/google/uuid"
)

// IngredientCategory is the fixed category set for catalog entries.
type IngredientCategory string

const (
	CategoryProduce    IngredientCategory = "produce"
	CategoryDairy      IngredientCategory = "dairy"
	CategoryMeat       IngredientCategory = "meat"
	CategorySeafood    IngredientCategory = "seafood"
	CategoryGrains     IngredientCategory = "grains"
	CategorySpices     IngredientCategory = "spices"
	CategoryCondiments IngredientCategory = "condiments"
	CategoryBaking     IngredientCategory = "baking"
	CategoryBeverages  IngredientCategory = "beverages"
	CategoryFrozen     IngredientCategory = "frozen"
	CategoryCanned     IngredientCategory = "canned"
	CategoryOther      IngredientCategory = "other"
)

// ValidCategory reports whether c belongs to the fixed category set.
func ValidCategory(c IngredientCategory) bool {
	switch c {
	case CategoryProduce, CategoryDairy, CategoryMeat, CategorySeafood,
		CategoryGrains, CategorySpices, CategoryCondiments, CategoryBaking,
		CategoryBeverages, CategoryFrozen, CategoryCanned, CategoryOther:
		return true
	}
	return false
}

// Ingredient is a canonical catalog entry. Names are stored lowercase.
// Rows are created by admin action or demo prefill and never deleted
// in the normal flow.
type Ingredient struct {
	ID        uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	Name      string             `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Category  IngredientCategory `gorm:"size:50;not null" json:"category"`
}

// UnrecognizedItem is a raw ingredient name that had no catalog match
// when the user confirmed a proposal. Rows are retained even after the
// user removes the item from inventory so an admin can later promote
// them to full Ingredient entries.
type UnrecognizedItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	RawText   string    `gorm:"size:255;not null" json:"raw_text"`
}

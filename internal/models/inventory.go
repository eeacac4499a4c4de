package models

import (
	"time"

	"github.com/google/uuid"
)

// Quantity levels for inventory items. 0 means the item is out.
const (
	QuantityEmpty = 0
	QuantityFull  = 3
)

// UserInventoryItem links a user to exactly one of an Ingredient or an
// UnrecognizedItem. The matching rule is enforced in the database by a
// CHECK constraint plus a partial unique index on (user_id, ingredient_id)
// where ingredient_id is non-null; upserts target that pair.
type UserInventoryItem struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID             uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	IngredientID       *uuid.UUID `gorm:"type:uuid;check:chk_inventory_link,(ingredient_id IS NULL) <> (unrecognized_item_id IS NULL)" json:"ingredient_id,omitempty"`
	UnrecognizedItemID *uuid.UUID `gorm:"type:uuid" json:"unrecognized_item_id,omitempty"`
	QuantityLevel      int        `gorm:"not null;default:0" json:"quantity_level"`
	IsPantryStaple     bool       `gorm:"not null;default:false" json:"is_pantry_staple"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	Ingredient       *Ingredient       `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
	UnrecognizedItem *UnrecognizedItem `gorm:"foreignKey:UnrecognizedItemID" json:"unrecognized_item,omitempty"`
}

// DisplayName returns the name shown to the user regardless of which
// side of the link is set.
func (i *UserInventoryItem) DisplayName() string {
	if i.Ingredient != nil {
		return i.Ingredient.Name
	}
	if i.UnrecognizedItem != nil {
		return i.UnrecognizedItem.RawText
	}
	return ""
}

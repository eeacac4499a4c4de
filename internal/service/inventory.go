package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homecuistot/backend/internal/models"
	"github.com/homecuistot/backend/internal/types"
)

// InventoryService owns the per-user inventory: proposal application,
// direct CRUD, reset and demo prefill. Every multi-statement operation
// runs inside one transaction; gorm rolls back and returns the
// connection on any failure path.
type InventoryService struct {
	db *gorm.DB
}

// NewInventoryService creates an InventoryService.
func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{db: db}
}

// List returns the user's inventory with catalog data preloaded.
func (s *InventoryService) List(ctx context.Context, userID uuid.UUID) ([]models.UserInventoryItem, error) {
	var items []models.UserInventoryItem
	err := s.db.WithContext(ctx).
		Preload("Ingredient").
		Preload("UnrecognizedItem").
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("%w: inventory query failed: %v", ErrStorage, err)
	}
	return items, nil
}

// ApplyProposal validates and commits an accepted proposal: one upsert
// per recognized change keyed on (user, ingredient), plus inventory
// rows for confirmed unrecognized names. All of it commits as a single
// transaction; either the whole proposal applies or none of it does.
// An empty proposal is a no-op success.
func (s *InventoryService) ApplyProposal(ctx context.Context, userID uuid.UUID, proposal *types.InventoryUpdateProposal) (int, error) {
	if proposal == nil {
		return 0, fmt.Errorf("%w: proposal is required", ErrInvalidInput)
	}
	if err := validateProposal(proposal); err != nil {
		return 0, err
	}

	updated := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, change := range proposal.Recognized {
			if err := s.upsertRecognized(tx, userID, change); err != nil {
				return err
			}
			updated++
		}
		for _, name := range proposal.Unrecognized {
			created, err := s.addUnrecognized(tx, userID, name)
			if err != nil {
				return err
			}
			if created {
				updated++
			}
		}
		return nil
	})
	if err != nil {
		if isClassified(err) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: proposal apply failed: %v", ErrStorage, err)
	}
	return updated, nil
}

func validateProposal(proposal *types.InventoryUpdateProposal) error {
	var reasons []string
	for i, change := range proposal.Recognized {
		if change.IngredientID == uuid.Nil {
			reasons = append(reasons, fmt.Sprintf("recognized[%d]: missing ingredient_id", i))
		}
		if change.ProposedQuantity < models.QuantityEmpty || change.ProposedQuantity > models.QuantityFull {
			reasons = append(reasons, fmt.Sprintf("recognized[%d]: proposed_quantity %d out of range 0-3", i, change.ProposedQuantity))
		}
	}
	for i, name := range proposal.Unrecognized {
		if strings.TrimSpace(name) == "" {
			reasons = append(reasons, fmt.Sprintf("unrecognized[%d]: empty name", i))
		}
	}
	if len(reasons) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(reasons, "; "))
	}
	return nil
}

func (s *InventoryService) upsertRecognized(tx *gorm.DB, userID uuid.UUID, change types.RecognizedChange) error {
	var ingredient models.Ingredient
	if err := tx.First(&ingredient, "id = ?", change.IngredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: unknown ingredient %s", ErrInvalidInput, change.IngredientID)
		}
		return err
	}

	var item models.UserInventoryItem
	err := tx.Where("user_id = ? AND ingredient_id = ?", userID, change.IngredientID).First(&item).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		ingredientID := change.IngredientID
		item = models.UserInventoryItem{
			ID:            uuid.New(),
			UserID:        userID,
			IngredientID:  &ingredientID,
			QuantityLevel: change.ProposedQuantity,
		}
		if change.ProposedPantryStaple != nil {
			item.IsPantryStaple = *change.ProposedPantryStaple
		}
		return tx.Create(&item).Error
	case err != nil:
		return err
	}

	updates := map[string]any{"quantity_level": change.ProposedQuantity}
	// The staple flag only moves when the proposal says so.
	if change.ProposedPantryStaple != nil {
		updates["is_pantry_staple"] = *change.ProposedPantryStaple
	}
	return tx.Model(&item).Updates(updates).Error
}

// addUnrecognized records a confirmed unmatched name: the raw text is
// kept (reusing an existing row with identical text) and an inventory
// row comes in at full quantity. Returns whether a new inventory row
// was created.
func (s *InventoryService) addUnrecognized(tx *gorm.DB, userID uuid.UUID, rawText string) (bool, error) {
	rawText = strings.TrimSpace(rawText)

	var unrecognized models.UnrecognizedItem
	err := tx.Where("raw_text = ?", rawText).First(&unrecognized).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		unrecognized = models.UnrecognizedItem{ID: uuid.New(), RawText: rawText}
		if err := tx.Create(&unrecognized).Error; err != nil {
			return false, err
		}
	} else if err != nil {
		return false, err
	}

	var existing models.UserInventoryItem
	err = tx.Where("user_id = ? AND unrecognized_item_id = ?", userID, unrecognized.ID).First(&existing).Error
	if err == nil {
		return false, tx.Model(&existing).Update("quantity_level", models.QuantityFull).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	unrecognizedID := unrecognized.ID
	item := models.UserInventoryItem{
		ID:                 uuid.New(),
		UserID:             userID,
		UnrecognizedItemID: &unrecognizedID,
		QuantityLevel:      models.QuantityFull,
	}
	return true, tx.Create(&item).Error
}

// SetItem upserts a single catalog item at an explicit quantity level.
func (s *InventoryService) SetItem(ctx context.Context, userID, ingredientID uuid.UUID, quantity int) (*models.UserInventoryItem, error) {
	if quantity < models.QuantityEmpty || quantity > models.QuantityFull {
		return nil, fmt.Errorf("%w: quantity_level %d out of range 0-3", ErrInvalidInput, quantity)
	}

	var result *models.UserInventoryItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ingredient models.Ingredient
		if err := tx.First(&ingredient, "id = ?", ingredientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: unknown ingredient %s", ErrInvalidInput, ingredientID)
			}
			return err
		}

		var item models.UserInventoryItem
		err := tx.Where("user_id = ? AND ingredient_id = ?", userID, ingredientID).First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			id := ingredientID
			item = models.UserInventoryItem{
				ID:            uuid.New(),
				UserID:        userID,
				IngredientID:  &id,
				QuantityLevel: quantity,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		} else if err := tx.Model(&item).Update("quantity_level", quantity).Error; err != nil {
			return err
		}
		item.Ingredient = &ingredient
		result = &item
		return nil
	})
	if err != nil {
		if isClassified(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: inventory upsert failed: %v", ErrStorage, err)
	}
	return result, nil
}

// Delete removes one inventory row on explicit user request.
func (s *InventoryService) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&models.UserInventoryItem{})
	if result.Error != nil {
		return fmt.Errorf("%w: inventory delete failed: %v", ErrStorage, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: inventory item %s", ErrNotFound, itemID)
	}
	return nil
}

// ToggleStaple flips the pantry-staple flag on one inventory row.
func (s *InventoryService) ToggleStaple(ctx context.Context, userID, itemID uuid.UUID) (*models.UserInventoryItem, error) {
	var item models.UserInventoryItem
	err := s.db.WithContext(ctx).
		Preload("Ingredient").
		Preload("UnrecognizedItem").
		Where("id = ? AND user_id = ?", itemID, userID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: inventory item %s", ErrNotFound, itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: inventory query failed: %v", ErrStorage, err)
	}

	item.IsPantryStaple = !item.IsPantryStaple
	if err := s.db.WithContext(ctx).Model(&item).Update("is_pantry_staple", item.IsPantryStaple).Error; err != nil {
		return nil, fmt.Errorf("%w: staple toggle failed: %v", ErrStorage, err)
	}
	return &item, nil
}

// Reset deletes the user's whole inventory in one transaction.
// UnrecognizedItem rows are retained for future catalog promotion.
func (s *InventoryService) Reset(ctx context.Context, userID uuid.UUID) (int, error) {
	deleted := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ?", userID).Delete(&models.UserInventoryItem{})
		if result.Error != nil {
			return result.Error
		}
		deleted = int(result.RowsAffected)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: inventory reset failed: %v", ErrStorage, err)
	}
	return deleted, nil
}

func isClassified(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrQuotaExceeded) ||
		errors.Is(err, ErrStorage)
}

package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/homecuistot/backend/internal/models"
	"github.com/homecuistot/backend/internal/types"
)

// MatcherService maps free-text ingredient names to catalog records.
// It is pure with respect to user state: it never mutates inventory or
// creates unrecognized-item rows; that is deferred to the applier once
// the user confirms.
type MatcherService struct {
	db *gorm.DB
}

// NewMatcherService creates a MatcherService backed by the catalog.
func NewMatcherService(db *gorm.DB) *MatcherService {
	return &MatcherService{db: db}
}

// ValidateIngredientNames resolves each input name against the catalog
// with a case-insensitive containment/equality match. First match wins;
// ties break on catalog insertion order. Unmatched names pass through
// unchanged.
func (s *MatcherService) ValidateIngredientNames(ctx context.Context, names []string) (types.ValidationResult, error) {
	result := types.ValidationResult{
		Recognized:   []types.MatchedIngredient{},
		Unrecognized: []string{},
	}
	if len(names) == 0 {
		return result, nil
	}

	var catalog []models.Ingredient
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&catalog).Error; err != nil {
		return result, fmt.Errorf("%w: catalog query failed: %v", ErrStorage, err)
	}

	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}

		matched := false
		for _, entry := range catalog {
			if nameMatches(name, entry.Name) {
				result.Recognized = append(result.Recognized, types.MatchedIngredient{
					InputName:    raw,
					MatchedName:  entry.Name,
					IngredientID: entry.ID,
				})
				matched = true
				break
			}
		}
		if !matched {
			result.Unrecognized = append(result.Unrecognized, raw)
		}
	}

	return result, nil
}

// nameMatches applies the catalog matching rule: exact equality or
// containment in either direction, on lowercased names. "tomatoes"
// matches the catalog entry "tomato".
func nameMatches(input, catalogName string) bool {
	if input == catalogName {
		return true
	}
	return strings.Contains(input, catalogName) || strings.Contains(catalogName, input)
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/homecuistot/backend/config"
	"github.com/homecuistot/backend/internal/models"
	"github.com/homecuistot/backend/internal/types"
)

const proposalTTL = time.Hour

// ProposalService reconciles a validated extraction against the user's
// current inventory into a typed proposal for client review. The
// reconciliation itself is a pure computation; the service adds catalog
// lookup, inventory loading and a Redis cache so the review UI can
// refetch a pending proposal.
type ProposalService struct {
	db      *gorm.DB
	matcher *MatcherService
	redis   *redis.Client
	logger  *zap.Logger
	policy  config.RemovalPolicy
	step    int
}

// NewProposalService creates a ProposalService. The redis client may be
// nil; caching then becomes a no-op.
func NewProposalService(db *gorm.DB, matcher *MatcherService, redisClient *redis.Client, logger *zap.Logger, cfg *config.Config) *ProposalService {
	return &ProposalService{
		db:      db,
		matcher: matcher,
		redis:   redisClient,
		logger:  logger,
		policy:  cfg.RemovalPolicy,
		step:    cfg.RemovalStep,
	}
}

// BuildProposal turns an extraction into a proposal: add/remove names
// are resolved against the catalog, recognized ones become quantity
// changes relative to the current inventory, the rest pass through as
// unrecognized. No state is mutated.
func (s *ProposalService) BuildProposal(ctx context.Context, userID uuid.UUID, extraction types.ExtractionResult) (*types.InventoryUpdateProposal, error) {
	addMatches, err := s.matcher.ValidateIngredientNames(ctx, extraction.Add)
	if err != nil {
		return nil, err
	}
	rmMatches, err := s.matcher.ValidateIngredientNames(ctx, extraction.Remove)
	if err != nil {
		return nil, err
	}

	var inventory []models.UserInventoryItem
	if err := s.db.WithContext(ctx).
		Preload("Ingredient").
		Where("user_id = ?", userID).
		Find(&inventory).Error; err != nil {
		return nil, fmt.Errorf("%w: inventory query failed: %v", ErrStorage, err)
	}

	proposal := assembleProposal(addMatches, rmMatches, inventory, s.policy, s.step)
	proposal.ID = uuid.New()
	proposal.TranscribedText = extraction.TranscribedText

	s.cacheProposal(ctx, userID, proposal)
	return proposal, nil
}

// cacheProposal stores the proposal for the review UI. Cache failures
// are logged and swallowed; the proposal is already in the response.
func (s *ProposalService) cacheProposal(ctx context.Context, userID uuid.UUID, proposal *types.InventoryUpdateProposal) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(proposal)
	if err != nil {
		s.logger.Warn("failed to marshal proposal for cache", zap.Error(err))
		return
	}
	key := proposalKey(userID, proposal.ID)
	if err := s.redis.Set(ctx, key, data, proposalTTL).Err(); err != nil {
		s.logger.Warn("failed to cache proposal", zap.String("key", key), zap.Error(err))
	}
}

// GetCachedProposal refetches a pending proposal for review.
func (s *ProposalService) GetCachedProposal(ctx context.Context, userID, proposalID uuid.UUID) (*types.InventoryUpdateProposal, error) {
	if s.redis == nil {
		return nil, fmt.Errorf("%w: proposal cache disabled", ErrNotFound)
	}
	data, err := s.redis.Get(ctx, proposalKey(userID, proposalID)).Bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: proposal not found or expired", ErrNotFound)
	}
	var proposal types.InventoryUpdateProposal
	if err := json.Unmarshal(data, &proposal); err != nil {
		return nil, fmt.Errorf("%w: corrupt cached proposal: %v", ErrStorage, err)
	}
	return &proposal, nil
}

func proposalKey(userID, proposalID uuid.UUID) string {
	return fmt.Sprintf("pantry:proposal:%s:%s", userID, proposalID)
}

// assembleProposal is the pure reconciliation step.
//
// Add mentions: an existing item steps toward full, min(3, prev+1) per
// mention; an existing staple stays a staple untouched; a catalog match
// absent from inventory comes in at full (new items are assumed freshly
// stocked). Remove mentions: quantity drops per the removal policy; a
// staple additionally transitions to non-staple, since the user just
// said they ran out of it. Remove mentions for items not in inventory
// produce no change.
func assembleProposal(addMatches, rmMatches types.ValidationResult, inventory []models.UserInventoryItem, policy config.RemovalPolicy, step int) *types.InventoryUpdateProposal {
	byIngredient := make(map[uuid.UUID]*models.UserInventoryItem, len(inventory))
	for i := range inventory {
		item := &inventory[i]
		if item.IngredientID != nil {
			byIngredient[*item.IngredientID] = item
		}
	}

	// Working state so repeated mentions of one ingredient accumulate.
	type pending struct {
		change  types.RecognizedChange
		touched bool
	}
	changes := make(map[uuid.UUID]*pending)
	var order []uuid.UUID

	get := func(m types.MatchedIngredient) *pending {
		if p, ok := changes[m.IngredientID]; ok {
			return p
		}
		prev := 0
		if item, ok := byIngredient[m.IngredientID]; ok {
			prev = item.QuantityLevel
		}
		p := &pending{change: types.RecognizedChange{
			IngredientID:     m.IngredientID,
			IngredientName:   m.MatchedName,
			PreviousQuantity: prev,
			ProposedQuantity: prev,
		}}
		changes[m.IngredientID] = p
		order = append(order, m.IngredientID)
		return p
	}

	for _, m := range addMatches.Recognized {
		item, inInventory := byIngredient[m.IngredientID]
		if inInventory && item.IsPantryStaple {
			// Always available; an add mention changes nothing.
			continue
		}
		p := get(m)
		if !inInventory && !p.touched {
			p.change.ProposedQuantity = models.QuantityFull
		} else if p.change.ProposedQuantity < models.QuantityFull {
			p.change.ProposedQuantity++
		}
		p.touched = true
	}

	for _, m := range rmMatches.Recognized {
		item, inInventory := byIngredient[m.IngredientID]
		if !inInventory {
			continue
		}
		p := get(m)
		switch policy {
		case config.RemovalClear:
			p.change.ProposedQuantity = models.QuantityEmpty
		default:
			p.change.ProposedQuantity -= step
			if p.change.ProposedQuantity < models.QuantityEmpty {
				p.change.ProposedQuantity = models.QuantityEmpty
			}
		}
		if item.IsPantryStaple {
			noLongerStaple := false
			p.change.ProposedPantryStaple = &noLongerStaple
		}
		p.touched = true
	}

	proposal := &types.InventoryUpdateProposal{
		Recognized:   []types.RecognizedChange{},
		Unrecognized: []string{},
	}
	for _, id := range order {
		if changes[id].touched {
			proposal.Recognized = append(proposal.Recognized, changes[id].change)
		}
	}

	seen := make(map[string]struct{})
	for _, name := range append(addMatches.Unrecognized, rmMatches.Unrecognized...) {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		proposal.Unrecognized = append(proposal.Unrecognized, name)
	}

	return proposal
}

package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homecuistot/backend/internal/models"
	"github.com/homecuistot/backend/internal/testutil"
	"github.com/homecuistot/backend/internal/types"
)

func TestApplyProposalUpsert(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.SeedUser(t, db)
	onion := testutil.SeedIngredient(t, db, "onion", models.CategoryProduce)
	milk := testutil.SeedIngredient(t, db, "milk", models.CategoryDairy)
	testutil.SeedInventoryItem(t, db, user.ID, onion.ID, 2, false)

	svc := NewInventoryService(db)
	proposal := &types.InventoryUpdateProposal{
		ID: uuid.New(),
		Recognized: []types.RecognizedChange{
			{IngredientID: onion.ID, IngredientName: "onion", PreviousQuantity: 2, ProposedQuantity: 3},
			{IngredientID: milk.ID, IngredientName: "milk", PreviousQuantity: 0, ProposedQuantity: 3},
		},
		Unrecognized: []string{},
	}

	updated, err := svc.ApplyProposal(context.Background(), user.ID, proposal)
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	items, err := svc.List(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	byName := map[string]models.UserInventoryItem{}
	for _, item := range items {
		byName[item.DisplayName()] = item
	}
	assert.Equal(t, 3, byName["onion"].QuantityLevel)
	assert.Equal(t, 3, byName["milk"].QuantityLevel)
}

func TestApplyProposalIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.SeedUser(t, db)
	onion := testutil.SeedIngredient(t, db, "onion", models.CategoryProduce)

	svc := NewInventoryService(db)
	proposal := &types.InventoryUpdateProposal{
		ID: uuid.New(),
		Recognized: []types.RecognizedChange{
			{IngredientID: onion.ID, IngredientName: "onion", ProposedQuantity: 2},
		},
		Unrecognized: []string{},
	}

	_, err := svc.ApplyProposal(context.Background(), user.ID, proposal)
	require.NoError(t, err)
	_, err = svc.ApplyProposal(context.Background(), user.ID, proposal)
	require.NoError(t, err)

	// Still exactly one row for (user, onion), at the proposed level.
	var count int64
	require.NoError(t, db.Model(&models.UserInventoryItem{}).
		Where("user_id = ? AND ingredient_id = ?", user.ID, onion.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestApplyProposalEmptyIsNoop(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.SeedUser(t, db)
	svc := NewInventoryService(db)

	updated, err := svc.ApplyProposal(context.Background(), user.ID, &types.InventoryUpdateProposal{
		ID:           uuid.New(),
		Recognized:   []types.RecognizedChange{},
		Unrecognized: []string{},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, updated)
}

func TestApplyProposalValidationEnumeratesAllViolations(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.SeedUser(t, db)
	svc := NewInventoryService(db)

	proposal := &types.InventoryUpdateProposal{
		ID: uuid.New(),
		Recognized: []types.RecognizedChange{
			{IngredientID: uuid.Nil, ProposedQuantity: 7},
		},
		Unrecognized: []string{"  "},
	}

	_, err := svc.ApplyProposal(context.Background(), user.ID, proposal)
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "missing ingredient_id")
	assert.Contains(t, err.Error(), "out of range")
	assert.Contains(t, err.Error(), "empty name")
}

func TestApplyProposalUnknownIngredientRollsBack(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.SeedUser(t, db)
	onion := testutil.SeedIngredient(t, db, "onion", models.CategoryProduce)

	svc := NewInventoryService(db)
	proposal := &types.InventoryUpdateProposal{
		ID: uuid.New(),
		Recognized: []types.RecognizedChange{
			{IngredientID: onion.ID, ProposedQuantity: 3},
			{IngredientID: uuid.New(), ProposedQuantity: 3},
		},
		Unrecognized: []string{},
	}

	_, err := svc.ApplyProposal(context.Background(), user.ID, proposal)
	require.ErrorIs(t, err, ErrInvalidInput)

	// The onion upsert did not survive the failed transaction.
	items, err := svc.List(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestApplyProposalCreatesUnrecognized(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.SeedUser(t, db)
	svc := NewInventoryService(db)

	updated, err := svc.ApplyProposal(context.Background(), user.ID, &types.InventoryUpdateProposal{
		ID:           uuid.New(),
		Recognized:   []types.RecognizedChange{},
		Unrecognized: []string{"dragon fruit"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	items, err := svc.List(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "dragon fruit", items[0].DisplayName())
	assert.Equal(t, models.QuantityFull, items[0].QuantityLevel)
	assert.Nil(t, items[0].IngredientID)
	require.NotNil(t, items[0].UnrecognizedItemID)
}

func TestApplyProposalStapleOnlyMovesWhenSpecified(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.SeedUser(t, db)
	salt := testutil.SeedIngredient(t, db, "salt", models.CategorySpices)
	testutil.SeedInventoryItem(t, db, user.ID, salt.ID, 3, true)

	svc := NewInventoryService(db)
	ctx := context.Background()

	// No staple field: the flag stays.
	_, err := svc.ApplyProposal(ctx, user.ID, &types.InventoryUpdateProposal{
		ID: uuid.New(),
		Recognized: []types.RecognizedChange{
			{IngredientID: salt.ID, ProposedQuantity: 2},
		},
		Unrecognized: []string{},
	})
	require.NoError(t, err)
	items, err := svc.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].IsPantryStaple)

	// Explicit false: the flag drops.
	noLongerStaple := false
	_, err = svc.ApplyProposal(ctx, user.ID, &types.InventoryUpdateProposal{
		ID: uuid.New(),
		Recognized: []types.RecognizedChange{
			{IngredientID: salt.ID, ProposedQuantity: 0, ProposedPantryStaple: &noLongerStaple},
		},
		Unrecognized: []string{},
	})
	require.NoError(t, err)
	items, err = svc.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.False(t, items[0].IsPantryStaple)
	assert.Equal(t, 0, items[0].QuantityLevel)
}

func TestSetItem(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.SeedUser(t, db)
	onion := testutil.SeedIngredient(t, db, "onion", models.CategoryProduce)
	svc := NewInventoryService(db)
	ctx := context.Background()

	item, err := svc.SetItem(ctx, user.ID, onion.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, item.QuantityLevel)

	// Second set updates the same row.
	item, err = svc.SetItem(ctx, user.ID, onion.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, item.QuantityLevel)

	var count int64
	require.NoError(t, db.Model(&models.UserInventoryItem{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	_, err = svc.SetItem(ctx, user.ID, onion.ID, 4)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SetItem(ctx, user.ID, uuid.New(), 2)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteInventoryItem(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.SeedUser(t, db)
	onion := testutil.SeedIngredient(t, db, "onion", models.CategoryProduce)
	item := testutil.SeedInventoryItem(t, db, user.ID, onion.ID, 2, false)

	svc := NewInventoryService(db)
	ctx := context.Background()

	// A different user cannot delete it.
	err := svc.Delete(ctx, uuid.New(), item.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Delete(ctx, user.ID, item.ID))
	err = svc.Delete(ctx, user.ID, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleStaple(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.SeedUser(t, db)
	salt := testutil.SeedIngredient(t, db, "salt", models.CategorySpices)
	item := testutil.SeedInventoryItem(t, db, user.ID, salt.ID, 3, false)

	svc := NewInventoryService(db)
	ctx := context.Background()

	toggled, err := svc.ToggleStaple(ctx, user.ID, item.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsPantryStaple)

	toggled, err = svc.ToggleStaple(ctx, user.ID, item.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsPantryStaple)

	_, err = svc.ToggleStaple(ctx, user.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResetRetainsUnrecognizedItems(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.SeedUser(t, db)
	onion := testutil.SeedIngredient(t, db, "onion", models.CategoryProduce)
	testutil.SeedInventoryItem(t, db, user.ID, onion.ID, 2, false)

	svc := NewInventoryService(db)
	ctx := context.Background()

	_, err := svc.ApplyProposal(ctx, user.ID, &types.InventoryUpdateProposal{
		ID:           uuid.New(),
		Recognized:   []types.RecognizedChange{},
		Unrecognized: []string{"dragon fruit"},
	})
	require.NoError(t, err)

	deleted, err := svc.Reset(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	items, err := svc.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	// The raw text stays available for catalog promotion.
	var count int64
	require.NoError(t, db.Model(&models.UnrecognizedItem{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

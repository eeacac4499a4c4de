package integration

import (
	"context"
	"fmt"
	"os/exec"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go.uber.org/zap"

	"github.com/homecuistot/backend/config"
	"github.com/homecuistot/backend/internal/database"
	"github.com/homecuistot/backend/internal/models"
	"github.com/homecuistot/backend/internal/service"
	"github.com/homecuistot/backend/internal/types"
)

func testConfig() *config.Config {
	return &config.Config{RemovalPolicy: config.RemovalDecrement, RemovalStep: 1}
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

// setupPostgres starts a pgvector-enabled Postgres container and runs
// the real migrations against it.
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed, skipping container-based test")
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "homecuistot_test",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections"),
			wait.ForListeningPort("5432/tcp"),
		),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=homecuistot_test sslmode=disable",
		host, port.Port())
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestFullPantryFlowOnPostgres(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()

	auth := service.NewAuthService(db, "integration-secret")
	token, err := auth.Register("Ada", "ada@example.com", "hunter2secret")
	require.NoError(t, err)
	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	userID := claims.UserID

	catalog := service.NewCatalogService(db)
	onion, err := catalog.CreateIngredient(ctx, "onion", models.CategoryProduce)
	require.NoError(t, err)

	inventory := service.NewInventoryService(db)
	_, err = inventory.SetItem(ctx, userID, onion.ID, 2)
	require.NoError(t, err)

	// Build and apply a proposal against real Postgres.
	cfg := testConfig()
	proposals := service.NewProposalService(db, service.NewMatcherService(db), nil, testLogger(), cfg)
	proposal, err := proposals.BuildProposal(ctx, userID, types.ExtractionResult{
		Add: []string{"onions", "dragon fruit"},
	})
	require.NoError(t, err)
	require.Len(t, proposal.Recognized, 1)
	assert.Equal(t, 3, proposal.Recognized[0].ProposedQuantity)

	updated, err := inventory.ApplyProposal(ctx, userID, proposal)
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	// Applying again leaves exactly one row per (user, ingredient); the
	// partial unique index holds on Postgres.
	_, err = inventory.ApplyProposal(ctx, userID, proposal)
	require.NoError(t, err)
	var count int64
	require.NoError(t, db.Model(&models.UserInventoryItem{}).
		Where("user_id = ? AND ingredient_id = ?", userID, onion.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// The database rejects a direct duplicate insert.
	ingredientID := onion.ID
	dup := models.UserInventoryItem{
		ID:            uuid.New(),
		UserID:        userID,
		IngredientID:  &ingredientID,
		QuantityLevel: 1,
	}
	assert.Error(t, db.Create(&dup).Error)

	// The exactly-one-link CHECK constraint holds too.
	unlinked := models.UserInventoryItem{
		ID:            uuid.New(),
		UserID:        userID,
		QuantityLevel: 1,
	}
	assert.Error(t, db.Create(&unlinked).Error)
}

func TestRecipeEmbeddingSearchOnPostgres(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	userID := uuid.New()
	require.NoError(t, db.Create(&models.User{
		ID: userID, Name: "Ada", Email: "ada@example.com", PasswordHash: "x",
	}).Error)

	recipes := service.NewRecipeService(db)
	_, err := recipes.CreateRecipe(ctx, &models.Recipe{
		Name:         "Tomato Soup",
		Description:  "Comforting soup",
		Ingredients:  models.JSONBStringArray{"tomato", "cream"},
		Instructions: models.JSONBStringArray{"simmer"},
		UserID:       userID,
	})
	require.NoError(t, err)
	_, err = recipes.CreateRecipe(ctx, &models.Recipe{
		Name:         "Tomato Salad",
		Description:  "Fresh salad",
		Ingredients:  models.JSONBStringArray{"tomato"},
		Instructions: models.JSONBStringArray{"chop"},
		UserID:       userID,
	})
	require.NoError(t, err)

	// The vector distance ordering executes on real pgvector.
	results, err := recipes.SearchRecipes(ctx, userID, "tomato")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

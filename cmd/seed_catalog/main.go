package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/homecuistot/backend/config"
	"github.com/homecuistot/backend/internal/database"
	"github.com/homecuistot/backend/internal/service"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := database.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	created, err := service.NewCatalogService(db).SeedCatalog(context.Background())
	if err != nil {
		logger.Fatal("catalog seed failed", zap.Error(err))
	}
	logger.Info("catalog seeded", zap.Int("created", created))
}

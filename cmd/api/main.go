package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/homecuistot/backend/config"
	"github.com/homecuistot/backend/internal/api"
	"github.com/homecuistot/backend/internal/database"
	"github.com/homecuistot/backend/internal/server"
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
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg, logger)
	if err != nil {
		// Proposal caching and burst limiting degrade without Redis,
		// the core flows keep working.
		logger.Warn("redis unavailable, continuing without it", zap.Error(err))
		redisClient = nil
	}

	tracer := service.NewTracer(logger)
	llmService, err := service.NewLLMService(cfg, tracer)
	if err != nil {
		logger.Fatal("failed to initialize LLM client", zap.Error(err))
	}

	s3Config, err := config.NewS3Config(context.Background(), cfg)
	if err != nil {
		logger.Warn("S3 unavailable, image uploads disabled", zap.Error(err))
		s3Config = nil
	}

	srv := server.New(api.Dependencies{
		DB:        db,
		Redis:     redisClient,
		Config:    cfg,
		Logger:    logger,
		Extractor: llmService,
		Generator: llmService,
		S3:        s3Config,
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(cfg.ServerHost + ":" + cfg.ServerPort)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		logger.Info("received signal", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		logger.Fatal("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}

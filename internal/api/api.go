package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/homecuistot/backend/config"
	"github.com/homecuistot/backend/internal/middleware"
	"github.com/homecuistot/backend/internal/service"
)

// Dependencies carries everything SetupAPI needs to wire the handlers.
type Dependencies struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Config    *config.Config
	Logger    *zap.Logger
	Extractor Extractor
	Generator RecipeGenerator
	S3        *config.S3Config
}

// SetupAPI wires services and handlers onto the router.
func SetupAPI(router *gin.Engine, deps Dependencies) {
	v1 := router.Group("/api/v1")
	{
		// Initialize services
		authService := service.NewAuthService(deps.DB, deps.Config.JWTSecret)
		usageService := service.NewUsageService(deps.DB, deps.Config.DailyLLMLimit, deps.Config.AdminIDs())
		matcherService := service.NewMatcherService(deps.DB)
		inventoryService := service.NewInventoryService(deps.DB)
		catalogService := service.NewCatalogService(deps.DB)
		proposalService := service.NewProposalService(deps.DB, matcherService, deps.Redis, deps.Logger, deps.Config)
		recipeService := service.NewRecipeService(deps.DB)
		imageService := service.NewImageService(deps.S3)
		tracer := service.NewTracer(deps.Logger)

		var burstLimit gin.HandlerFunc
		if deps.Redis != nil {
			burstLimit = middleware.NewExtractionBurstLimiter(deps.Redis).RateLimitMiddleware()
		}

		// Initialize handlers
		authHandler := NewAuthHandler(authService)
		inventoryHandler := NewInventoryHandler(inventoryService, matcherService, catalogService)
		pantryHandler := NewPantryAgentHandler(deps.Extractor, usageService, proposalService, inventoryService, tracer)
		recipeHandler := NewRecipeHandler(recipeService, inventoryService, usageService, deps.Generator, imageService)
		adminHandler := NewAdminHandler(catalogService, usageService)

		// Register routes
		authHandler.RegisterRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(authService))
		inventoryHandler.RegisterRoutes(protected)
		pantryHandler.RegisterRoutes(protected, burstLimit)
		recipeHandler.RegisterRoutes(protected, burstLimit)
		adminHandler.RegisterRoutes(protected)
	}
}

package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/homecuistot/backend/internal/models"
	"github.com/homecuistot/backend/internal/service"
)

// RecipeGenerator is the LLM-facing dependency of recipe generation.
type RecipeGenerator interface {
	GenerateRecipe(ctx context.Context, pantry []string) (*service.RecipeData, error)
}

// RecipeHandler handles recipe CRUD, search and generation.
type RecipeHandler struct {
	recipeService    *service.RecipeService
	inventoryService *service.InventoryService
	usageService     *service.UsageService
	generator        RecipeGenerator
	imageService     *service.ImageService
}

// NewRecipeHandler creates a new RecipeHandler instance.
func NewRecipeHandler(recipeService *service.RecipeService, inventoryService *service.InventoryService, usageService *service.UsageService, generator RecipeGenerator, imageService *service.ImageService) *RecipeHandler {
	return &RecipeHandler{
		recipeService:    recipeService,
		inventoryService: inventoryService,
		usageService:     usageService,
		generator:        generator,
		imageService:     imageService,
	}
}

// RegisterRoutes registers the recipe routes.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, burstLimit gin.HandlerFunc) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.List)
		recipes.GET("/search", h.Search)
		recipes.GET("/:id", h.Get)
		recipes.POST("", h.Create)
		recipes.PUT("/:id", h.Update)
		recipes.DELETE("/:id", h.Delete)
		recipes.POST("/:id/image", h.UploadImage)
	}
	generate := recipes.Group("")
	if burstLimit != nil {
		generate.Use(burstLimit)
	}
	generate.POST("/generate", h.Generate)
}

// List returns the user's recipes.
func (h *RecipeHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	recipes, err := h.recipeService.ListRecipes(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes, "count": len(recipes)})
}

// Search searches the user's recipes by keyword.
func (h *RecipeHandler) Search(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	recipes, err := h.recipeService.SearchRecipes(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes, "count": len(recipes)})
}

// Get returns one recipe.
func (h *RecipeHandler) Get(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(fmt.Errorf("%w: invalid recipe id", service.ErrInvalidInput))
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

// Create stores a new recipe.
func (h *RecipeHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}

	recipe := &models.Recipe{
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		Ingredients:  models.JSONBStringArray(req.Ingredients),
		Instructions: models.JSONBStringArray(req.Instructions),
		PrepTime:     req.PrepTime,
		CookTime:     req.CookTime,
		Servings:     req.Servings,
		UserID:       userID,
	}
	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), recipe)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recipe": recipe})
}

// Update replaces a recipe's fields.
func (h *RecipeHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(fmt.Errorf("%w: invalid recipe id", service.ErrInvalidInput))
		return
	}

	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}

	recipe := &models.Recipe{
		ID:           id,
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		Ingredients:  models.JSONBStringArray(req.Ingredients),
		Instructions: models.JSONBStringArray(req.Instructions),
		PrepTime:     req.PrepTime,
		CookTime:     req.CookTime,
		Servings:     req.Servings,
	}
	recipe, err = h.recipeService.UpdateRecipe(c.Request.Context(), userID, recipe)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

// Delete removes one recipe.
func (h *RecipeHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(fmt.Errorf("%w: invalid recipe id", service.ErrInvalidInput))
		return
	}

	if err := h.recipeService.DeleteRecipe(c.Request.Context(), userID, id); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Generate asks the LLM for a recipe built from the user's pantry and
// stores it. Quota-gated like the extraction endpoints.
func (h *RecipeHandler) Generate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.usageService.CheckUsageLimit(ctx, userID); err != nil {
		c.Error(err)
		return
	}

	items, err := h.inventoryService.List(ctx, userID)
	if err != nil {
		c.Error(err)
		return
	}

	pantry := make([]string, 0, len(items))
	for i := range items {
		item := &items[i]
		if item.IsPantryStaple || item.QuantityLevel > models.QuantityEmpty {
			if name := item.DisplayName(); name != "" {
				pantry = append(pantry, name)
			}
		}
	}

	data, err := h.generator.GenerateRecipe(ctx, pantry)
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.usageService.LogUsage(ctx, userID, "recipes-generate"); err != nil {
		c.Error(err)
		return
	}

	recipe := &models.Recipe{
		Name:         data.Name,
		Description:  data.Description,
		Category:     data.Category,
		Ingredients:  models.JSONBStringArray(data.Ingredients),
		Instructions: models.JSONBStringArray(data.Instructions),
		PrepTime:     data.PrepTime,
		CookTime:     data.CookTime,
		Servings:     data.Servings,
		UserID:       userID,
	}
	recipe, err = h.recipeService.CreateRecipe(ctx, recipe)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recipe": recipe})
}

// UploadImage stores an image for a recipe in S3.
func (h *RecipeHandler) UploadImage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(fmt.Errorf("%w: invalid recipe id", service.ErrInvalidInput))
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	if recipe.UserID != userID {
		c.Error(fmt.Errorf("%w: recipe %s", service.ErrNotFound, id))
		return
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, 10<<20))
	if err != nil {
		c.Error(fmt.Errorf("%w: failed to read image body", service.ErrInvalidInput))
		return
	}

	url, err := h.imageService.UploadRecipeImage(c.Request.Context(), id, data, c.ContentType())
	if err != nil {
		c.Error(err)
		return
	}

	recipe.ImageURL = url
	if _, err := h.recipeService.UpdateRecipe(c.Request.Context(), userID, recipe); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"image_url": url})
}

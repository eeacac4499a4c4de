package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/homecuistot/backend/internal/service"
)

// InventoryHandler handles the direct inventory surface: listing,
// explicit upserts, removal, staple toggling, name validation, reset
// and demo prefill.
type InventoryHandler struct {
	inventoryService *service.InventoryService
	matcherService   *service.MatcherService
	catalogService   *service.CatalogService
}

// NewInventoryHandler creates a new InventoryHandler instance.
func NewInventoryHandler(inventoryService *service.InventoryService, matcherService *service.MatcherService, catalogService *service.CatalogService) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		matcherService:   matcherService,
		catalogService:   catalogService,
	}
}

// RegisterRoutes registers the inventory routes.
func (h *InventoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	inventory := router.Group("/inventory")
	{
		inventory.GET("", h.List)
		inventory.POST("", h.SetItem)
		inventory.DELETE("/:id", h.Delete)
		inventory.PATCH("/:id/toggle-staple", h.ToggleStaple)
		inventory.POST("/validate", h.Validate)
		inventory.POST("/reset", h.Reset)
		inventory.POST("/prefill", h.Prefill)
	}
}

// List returns the user's inventory.
func (h *InventoryHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	items, err := h.inventoryService.List(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"inventory": items, "count": len(items)})
}

// SetItem upserts one catalog item at an explicit quantity level.
func (h *InventoryHandler) SetItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req setInventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}

	item, err := h.inventoryService.SetItem(c.Request.Context(), userID, req.IngredientID, *req.QuantityLevel)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

// Delete removes one inventory row.
func (h *InventoryHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(fmt.Errorf("%w: invalid inventory item id", service.ErrInvalidInput))
		return
	}

	if err := h.inventoryService.Delete(c.Request.Context(), userID, itemID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ToggleStaple flips the pantry-staple flag on one inventory row.
func (h *InventoryHandler) ToggleStaple(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(fmt.Errorf("%w: invalid inventory item id", service.ErrInvalidInput))
		return
	}

	item, err := h.inventoryService.ToggleStaple(c.Request.Context(), userID, itemID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

// Validate resolves raw ingredient names against the catalog without
// touching any user state.
func (h *InventoryHandler) Validate(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	var req validateNamesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}

	result, err := h.matcherService.ValidateIngredientNames(c.Request.Context(), req.IngredientNames)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Reset deletes the user's whole inventory.
func (h *InventoryHandler) Reset(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	deleted, err := h.inventoryService.Reset(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": deleted})
}

// Prefill stocks the user's inventory with the demo catalog.
func (h *InventoryHandler) Prefill(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	created, err := h.catalogService.Prefill(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "created": created})
}

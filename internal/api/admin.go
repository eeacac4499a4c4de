package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/homecuistot/backend/internal/models"
	"github.com/homecuistot/backend/internal/service"
)

// AdminHandler handles catalog administration: creating ingredients and
// promoting unrecognized items to full catalog entries.
type AdminHandler struct {
	catalogService *service.CatalogService
	usageService   *service.UsageService
}

// NewAdminHandler creates a new AdminHandler instance.
func NewAdminHandler(catalogService *service.CatalogService, usageService *service.UsageService) *AdminHandler {
	return &AdminHandler{
		catalogService: catalogService,
		usageService:   usageService,
	}
}

// RegisterRoutes registers the admin routes behind the admin gate.
func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin")
	admin.Use(h.requireAdmin())
	{
		admin.POST("/ingredients", h.CreateIngredient)
		admin.POST("/ingredients/promote", h.PromoteIngredient)
		admin.GET("/unrecognized", h.ListUnrecognized)
	}
}

// requireAdmin allows only users listed in ADMIN_USER_IDS.
func (h *AdminHandler) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		if !h.usageService.IsAdmin(userID) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// CreateIngredient adds one catalog entry.
func (h *AdminHandler) CreateIngredient(c *gin.Context) {
	var req createIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}

	ingredient, err := h.catalogService.CreateIngredient(c.Request.Context(), req.Name, models.IngredientCategory(req.Category))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ingredient": ingredient})
}

// PromoteIngredient turns an unrecognized item into a catalog entry.
func (h *AdminHandler) PromoteIngredient(c *gin.Context) {
	var req promoteIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}

	ingredient, err := h.catalogService.PromoteUnrecognized(c.Request.Context(), req.UnrecognizedItemID, models.IngredientCategory(req.Category))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ingredient": ingredient})
}

// ListUnrecognized returns all unrecognized items awaiting promotion.
func (h *AdminHandler) ListUnrecognized(c *gin.Context) {
	items, err := h.catalogService.ListUnrecognized(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unrecognized": items, "count": len(items)})
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/homecuistot/backend/internal/types"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type validateNamesRequest struct {
	IngredientNames []string `json:"ingredient_names" binding:"required"`
}

type processTextRequest struct {
	Text string `json:"text" binding:"required"`
}

type processVoiceRequest struct {
	AudioBase64 string `json:"audio_base64" binding:"required"`
	MimeType    string `json:"mime_type"`
}

type agentProposalRequest struct {
	Input       string `json:"input"`
	AudioBase64 string `json:"audio_base64"`
	MimeType    string `json:"mime_type"`
}

type applyProposalRequest struct {
	Proposal *types.InventoryUpdateProposal `json:"proposal" binding:"required"`
}

type setInventoryItemRequest struct {
	IngredientID  uuid.UUID `json:"ingredient_id" binding:"required"`
	QuantityLevel *int      `json:"quantity_level" binding:"required"`
}

type createIngredientRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category" binding:"required"`
}

type promoteIngredientRequest struct {
	UnrecognizedItemID uuid.UUID `json:"unrecognized_item_id" binding:"required"`
	Category           string    `json:"category" binding:"required"`
}

type recipeRequest struct {
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Ingredients  []string `json:"ingredients" binding:"required"`
	Instructions []string `json:"instructions" binding:"required"`
	PrepTime     string   `json:"prep_time"`
	CookTime     string   `json:"cook_time"`
	Servings     string   `json:"servings"`
}

// currentUserID pulls the authenticated user id stored by the auth
// middleware. A missing or mistyped value aborts with 401.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	val, exists := c.Get("user_id")
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, false
	}
	userID, ok := val.(uuid.UUID)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, false
	}
	return userID, true
}

package api

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/homecuistot/backend/internal/models"
	"github.com/homecuistot/backend/internal/service"
	"github.com/homecuistot/backend/internal/types"
)

// Extractor is the LLM-facing dependency of the pantry agent surface.
type Extractor interface {
	Extract(ctx context.Context, input service.ExtractionInput) (types.ExtractionResult, error)
}

// PantryAgentHandler handles the LLM-backed inventory surface: text and
// voice extraction, proposal building and proposal application.
type PantryAgentHandler struct {
	extractor        Extractor
	usageService     *service.UsageService
	proposalService  *service.ProposalService
	inventoryService *service.InventoryService
	tracer           *service.Tracer
}

// NewPantryAgentHandler creates a new PantryAgentHandler instance.
func NewPantryAgentHandler(extractor Extractor, usageService *service.UsageService, proposalService *service.ProposalService, inventoryService *service.InventoryService, tracer *service.Tracer) *PantryAgentHandler {
	return &PantryAgentHandler{
		extractor:        extractor,
		usageService:     usageService,
		proposalService:  proposalService,
		inventoryService: inventoryService,
		tracer:           tracer,
	}
}

// RegisterRoutes registers the agent routes. Quota-bearing routes sit
// behind the burst limiter configured by the caller.
func (h *PantryAgentHandler) RegisterRoutes(router *gin.RouterGroup, burstLimit gin.HandlerFunc) {
	inventory := router.Group("/inventory")
	quotaBearing := inventory.Group("")
	if burstLimit != nil {
		quotaBearing.Use(burstLimit)
	}
	{
		quotaBearing.POST("/process-text", h.ProcessText)
		quotaBearing.POST("/process-voice", h.ProcessVoice)
		quotaBearing.POST("/agent-proposal", h.AgentProposal)
	}
	inventory.POST("/apply-proposal", h.ApplyProposal)
	inventory.GET("/proposal/:id", h.GetProposal)
}

// ProcessText runs structured extraction over free text.
func (h *PantryAgentHandler) ProcessText(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req processTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}

	extraction, err := h.runExtraction(c, userID, service.ExtractionInput{Text: req.Text}, "process-text")
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, extraction)
}

// ProcessVoice transcribes audio and runs structured extraction over
// the transcript.
func (h *PantryAgentHandler) ProcessVoice(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req processVoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}

	audio, err := base64.StdEncoding.DecodeString(req.AudioBase64)
	if err != nil {
		c.Error(fmt.Errorf("%w: audio_base64 is not valid base64", service.ErrInvalidInput))
		return
	}

	extraction, err := h.runExtraction(c, userID, service.ExtractionInput{Audio: audio, AudioMime: req.MimeType}, "process-voice")
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, extraction)
}

// AgentProposal runs the full pipeline: extraction, catalog matching
// and proposal assembly. The proposal goes back to the client for
// review and is applied only on explicit confirmation.
func (h *PantryAgentHandler) AgentProposal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req agentProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}
	if req.Input == "" && req.AudioBase64 == "" {
		c.Error(fmt.Errorf("%w: either input or audio_base64 is required", service.ErrInvalidInput))
		return
	}

	input := service.ExtractionInput{Text: req.Input, AudioMime: req.MimeType}
	if req.AudioBase64 != "" {
		audio, err := base64.StdEncoding.DecodeString(req.AudioBase64)
		if err != nil {
			c.Error(fmt.Errorf("%w: audio_base64 is not valid base64", service.ErrInvalidInput))
			return
		}
		input.Audio = audio
	}

	extraction, err := h.runExtraction(c, userID, input, "agent-proposal")
	if err != nil {
		c.Error(err)
		return
	}

	proposal, err := h.proposalService.BuildProposal(c.Request.Context(), userID, extraction)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"proposal":         proposal,
		"transcribed_text": extraction.TranscribedText,
	})
}

// GetProposal refetches a cached pending proposal for review.
func (h *PantryAgentHandler) GetProposal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	proposalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(fmt.Errorf("%w: invalid proposal id", service.ErrInvalidInput))
		return
	}

	proposal, err := h.proposalService.GetCachedProposal(c.Request.Context(), userID, proposalID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposal": proposal})
}

// ApplyProposal commits an accepted proposal atomically.
func (h *PantryAgentHandler) ApplyProposal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req applyProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}

	updated, err := h.inventoryService.ApplyProposal(c.Request.Context(), userID, req.Proposal)
	if err != nil {
		c.Error(err)
		return
	}

	// Review tagging is non-critical; it never fails the apply.
	h.tracer.MarkReviewed(req.Proposal.ID.String(), true)

	c.JSON(http.StatusOK, gin.H{"success": true, "updated": updated})
}

// runExtraction is the shared quota-gated extraction step: the gate
// runs before any LLM call is dispatched, and usage is logged only
// after the call succeeds so failed calls never consume quota. A call
// the model answers with no detected ingredients is still a successful
// call and is logged before the empty result is turned into an error.
func (h *PantryAgentHandler) runExtraction(c *gin.Context, userID uuid.UUID, input service.ExtractionInput, endpoint string) (types.ExtractionResult, error) {
	ctx := c.Request.Context()

	if err := h.usageService.CheckUsageLimit(ctx, userID); err != nil {
		return types.ExtractionResult{}, err
	}

	items, err := h.inventoryService.List(ctx, userID)
	if err != nil {
		return types.ExtractionResult{}, err
	}
	input.IngredientNames = inventoryContextNames(items)

	extraction, err := h.extractor.Extract(ctx, input)
	if err != nil {
		return types.ExtractionResult{}, err
	}

	if err := h.usageService.LogUsage(ctx, userID, endpoint); err != nil {
		return types.ExtractionResult{}, err
	}
	if extraction.Empty() {
		return types.ExtractionResult{}, fmt.Errorf("%w: model found no inventory changes", service.ErrNoIngredientsDetected)
	}
	return extraction, nil
}

// inventoryContextNames renders the current inventory for the model:
// the name plus a stock annotation so the model can avoid removing
// absent items or re-adding fully stocked ones.
func inventoryContextNames(items []models.UserInventoryItem) []string {
	names := make([]string, 0, len(items))
	for i := range items {
		item := &items[i]
		name := item.DisplayName()
		if name == "" {
			continue
		}
		switch {
		case item.IsPantryStaple:
			names = append(names, name+" (staple, always available)")
		case item.QuantityLevel == models.QuantityEmpty:
			names = append(names, name+" (out of stock)")
		case item.QuantityLevel == models.QuantityFull:
			names = append(names, name+" (fully stocked)")
		default:
			names = append(names, fmt.Sprintf("%s (%d/3)", name, item.QuantityLevel))
		}
	}
	return names
}

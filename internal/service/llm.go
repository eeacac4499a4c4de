package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/homecuistot/backend/config"
	"github.com/homecuistot/backend/internal/types"
	"github.com/homecuistot/backend/internal/validation"
)

// ExtractionInput is one extraction request: free text or raw audio.
type ExtractionInput struct {
	Text      string
	Audio     []byte
	AudioMime string
	// IngredientNames is the user's current inventory, given to the
	// model so it does not remove items that were never present or
	// re-add items already stocked.
	IngredientNames []string
}

const extractionSystemPrompt = `You are a pantry assistant. The user tells you which ingredients they bought, used up or ran out of. Respond ONLY with JSON of this exact shape:
{
    "add": ["ingredient the user now has", ...],
    "rm": ["ingredient the user used or ran out of", ...]
}

Both fields are required and must be arrays of plain ingredient names in lowercase singular form (e.g. "tomato", not "2 ripe tomatoes").
Only put an ingredient in "rm" if it appears in the user's current inventory below.
Do not put an ingredient in "add" if the inventory shows it as already fully stocked.
If the message mentions no ingredients at all, return {"add": [], "rm": []}.`

const recipeSystemPrompt = `You are a professional home chef. Given the ingredients available in the user's pantry, suggest one recipe that uses as many of them as possible. Respond ONLY with JSON of this shape:
{
    "name": "Recipe name",
    "description": "Brief description of the recipe",
    "category": "One of: Main Course, Dessert, Snack, Appetizer, Breakfast, Side Dish, Soup, Salad",
    "ingredients": ["2 cups flour", "1 cup sugar"],
    "instructions": ["Step 1: ...", "Step 2: ..."],
    "prep_time": "Preparation time",
    "cook_time": "Cooking time",
    "servings": "Number of servings"
}`

// RecipeData is the structure of a recipe as returned by the LLM.
type RecipeData struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	PrepTime     string   `json:"prep_time"`
	CookTime     string   `json:"cook_time"`
	Servings     string   `json:"servings"`
}

// LLMClient is the slice of the OpenAI-compatible client the service
// uses; tests substitute a stub.
type LLMClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

// LLMService adapts the LLM provider: structured ingredient extraction,
// voice transcription and recipe generation. Calls are bounded by the
// configured timeout; failures are classified, never propagated raw.
type LLMService struct {
	client          LLMClient
	chatModel       string
	transcribeModel string
	timeout         time.Duration
	tracer          *Tracer
}

// NewLLMService creates an LLMService backed by the configured
// OpenAI-compatible endpoint.
func NewLLMService(cfg *config.Config, tracer *Tracer) (*LLMService, error) {
	if cfg.LLMAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY must be set")
	}

	clientCfg := openai.DefaultConfig(cfg.LLMAPIKey)
	if cfg.LLMAPIBaseURL != "" {
		clientCfg.BaseURL = cfg.LLMAPIBaseURL
	}

	return &LLMService{
		client:          openai.NewClientWithConfig(clientCfg),
		chatModel:       cfg.LLMChatModel,
		transcribeModel: cfg.LLMTranscribeModel,
		timeout:         time.Duration(cfg.LLMTimeoutSeconds) * time.Second,
		tracer:          tracer,
	}, nil
}

// NewLLMServiceWithClient wires an explicit client; used by tests.
func NewLLMServiceWithClient(client LLMClient, tracer *Tracer) *LLMService {
	return &LLMService{
		client:          client,
		chatModel:       "test-chat",
		transcribeModel: "test-transcribe",
		timeout:         20 * time.Second,
		tracer:          tracer,
	}
}

// Transcribe converts audio to text, best effort. On any provider
// failure it returns an empty string rather than an error: a failed
// transcript simply yields an empty extraction downstream.
func (s *LLMService) Transcribe(ctx context.Context, audio []byte, mimeType string) string {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    s.transcribeModel,
		Reader:   bytes.NewReader(audio),
		FilePath: transcriptionFileName(mimeType),
	})
	s.tracer.LLMSpan("transcribe", s.transcribeModel,
		fmt.Sprintf("%d bytes %s", len(audio), mimeType),
		TokenUsage{}, time.Since(started), err)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(resp.Text)
}

// Extract runs one structured extraction over the input. Audio input is
// transcribed first; the transcript is carried back in the result.
func (s *LLMService) Extract(ctx context.Context, input ExtractionInput) (types.ExtractionResult, error) {
	text := input.Text
	transcribed := ""
	if len(input.Audio) > 0 {
		transcribed = s.Transcribe(ctx, input.Audio, input.AudioMime)
		text = transcribed
	}
	if strings.TrimSpace(text) == "" {
		return types.ExtractionResult{}, fmt.Errorf("%w: nothing to extract", ErrNoIngredientsDetected)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	userPrompt := fmt.Sprintf("Current inventory: %s\n\nUser message: %s",
		inventoryContext(input.IngredientNames), text)

	started := time.Now()
	resp, err := s.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: s.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractionSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.1,
	})
	s.tracer.LLMSpan("extract_updates", s.chatModel, text, usageOf(resp), time.Since(started), err)
	if err != nil {
		return types.ExtractionResult{}, classifyProviderError(err)
	}
	if len(resp.Choices) == 0 {
		return types.ExtractionResult{}, fmt.Errorf("%w: no choices in response", ErrSchemaValidation)
	}

	content := resp.Choices[0].Message.Content
	if check := validation.CheckExtractionJSON([]byte(content)); !check.Valid() {
		return types.ExtractionResult{}, fmt.Errorf("%w: %s", ErrSchemaValidation, check.Reason)
	}

	var result types.ExtractionResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return types.ExtractionResult{}, fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	result.TranscribedText = transcribed

	// An empty but schema-valid {"add":[],"rm":[]} is a successful call;
	// callers decide how to present it and still account for the usage.
	return result, nil
}

// GenerateRecipe asks for one recipe built from the pantry contents.
func (s *LLMService) GenerateRecipe(ctx context.Context, pantry []string) (*RecipeData, error) {
	if len(pantry) == 0 {
		return nil, fmt.Errorf("%w: pantry is empty", ErrInvalidInput)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := "Available ingredients:\n" + strings.Join(pantry, "\n")

	started := time.Now()
	resp, err := s.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: s.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: recipeSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.9,
	})
	s.tracer.LLMSpan("generate_recipe", s.chatModel, prompt, usageOf(resp), time.Since(started), err)
	if err != nil {
		return nil, classifyProviderError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", ErrSchemaValidation)
	}

	var recipe RecipeData
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &recipe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	if recipe.Name == "" || len(recipe.Ingredients) == 0 {
		return nil, fmt.Errorf("%w: recipe missing name or ingredients", ErrSchemaValidation)
	}
	return &recipe, nil
}

func inventoryContext(names []string) string {
	if len(names) == 0 {
		return "(empty)"
	}
	return strings.Join(names, ", ")
}

func usageOf(resp openai.ChatCompletionResponse) TokenUsage {
	return TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
}

func transcriptionFileName(mimeType string) string {
	switch mimeType {
	case "audio/mpeg", "audio/mp3":
		return "input.mp3"
	case "audio/wav", "audio/x-wav":
		return "input.wav"
	case "audio/ogg":
		return "input.ogg"
	case "audio/mp4", "audio/m4a":
		return "input.m4a"
	default:
		return "input.webm"
	}
}

func classifyProviderError(err error) error {
	if err == nil {
		return nil
	}
	if isTimeout(err) {
		return fmt.Errorf("%w: %v", ErrProviderTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrProviderNetwork, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

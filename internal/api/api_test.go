package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/homecuistot/backend/config"
	"github.com/homecuistot/backend/internal/middleware"
	"github.com/homecuistot/backend/internal/service"
	"github.com/homecuistot/backend/internal/testutil"
	"github.com/homecuistot/backend/internal/types"
)

// stubExtractor returns a canned extraction and records the last input.
type stubExtractor struct {
	result    types.ExtractionResult
	err       error
	lastInput service.ExtractionInput
	calls     int
}

func (s *stubExtractor) Extract(_ context.Context, input service.ExtractionInput) (types.ExtractionResult, error) {
	s.calls++
	s.lastInput = input
	if s.err != nil {
		return types.ExtractionResult{}, s.err
	}
	return s.result, nil
}

type stubGenerator struct {
	recipe *service.RecipeData
	err    error
}

func (s *stubGenerator) GenerateRecipe(context.Context, []string) (*service.RecipeData, error) {
	return s.recipe, s.err
}

type testEnv struct {
	router    *gin.Engine
	db        *gorm.DB
	cfg       *config.Config
	extractor *stubExtractor
	generator *stubGenerator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		db: testutil.NewDB(t),
		cfg: &config.Config{
			JWTSecret:     "test-secret",
			DailyLLMLimit: 100,
			RemovalPolicy: config.RemovalDecrement,
			RemovalStep:   1,
		},
		extractor: &stubExtractor{},
		generator: &stubGenerator{},
	}

	env.router = gin.New()
	env.router.Use(middleware.RequestID())
	env.router.Use(middleware.ErrorHandler(zap.NewNop()))
	SetupAPI(env.router, Dependencies{
		DB:        env.db,
		Config:    env.cfg,
		Logger:    zap.NewNop(),
		Extractor: env.extractor,
		Generator: env.generator,
	})
	return env
}

// rebuildRouter re-registers routes after a cfg change, keeping the
// same database.
func (e *testEnv) rebuildRouter(t *testing.T) {
	t.Helper()
	e.router = gin.New()
	e.router.Use(middleware.RequestID())
	e.router.Use(middleware.ErrorHandler(zap.NewNop()))
	SetupAPI(e.router, Dependencies{
		DB:        e.db,
		Config:    e.cfg,
		Logger:    zap.NewNop(),
		Extractor: e.extractor,
		Generator: e.generator,
	})
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) registerUser(t *testing.T, email string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name":     "Test User",
		"email":    email,
		"password": "hunter2secret",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (e *testEnv) userID(t *testing.T, token string) string {
	t.Helper()
	claims, err := service.NewAuthService(e.db, e.cfg.JWTSecret).ValidateToken(token)
	require.NoError(t, err)
	return claims.UserID.String()
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	token := env.registerUser(t, "ada@example.com")
	require.NotEmpty(t, token)

	w := env.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "ada@example.com",
		"password": "hunter2secret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "ada@example.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/v1/inventory", "/api/v1/recipes"} {
		w := env.do(t, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := env.do(t, http.MethodPost, "/api/v1/inventory/process-text", "garbage-token", gin.H{"text": "x"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestIDPropagation(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestErrorResponsesCarryStableCodes(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerUser(t, "ada@example.com")

	env.extractor.err = fmt.Errorf("%w: dial tcp refused", service.ErrProviderNetwork)
	w := env.do(t, http.MethodPost, "/api/v1/inventory/process-text", token, gin.H{"text": "bought milk"})
	require.Equal(t, http.StatusBadGateway, w.Code)

	var resp struct {
		Code  string `json:"code"`
		Error string `json:"error"`
	}
	decodeBody(t, w, &resp)
	require.Equal(t, "provider_error", resp.Code)
	// Internal detail never reaches the client.
	require.NotContains(t, resp.Error, "dial tcp")
}

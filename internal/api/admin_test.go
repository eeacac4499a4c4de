package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homecuistot/backend/internal/models"
	"github.com/homecuistot/backend/internal/testutil"
)

func (e *testEnv) registerAdmin(t *testing.T) string {
	t.Helper()
	token := e.registerUser(t, "admin@example.com")
	e.cfg.AdminUserIDs = e.userID(t, token)
	e.rebuildRouter(t)
	return token
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerUser(t, "ada@example.com")

	w := env.do(t, http.MethodPost, "/api/v1/admin/ingredients", token, map[string]string{
		"name":     "yuzu",
		"category": "produce",
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/admin/unrecognized", token, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminCreateIngredient(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAdmin(t)

	w := env.do(t, http.MethodPost, "/api/v1/admin/ingredients", token, map[string]string{
		"name":     "Yuzu",
		"category": "produce",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Ingredient models.Ingredient `json:"ingredient"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, "yuzu", resp.Ingredient.Name)
	assert.Equal(t, models.CategoryProduce, resp.Ingredient.Category)

	w = env.do(t, http.MethodPost, "/api/v1/admin/ingredients", token, map[string]string{
		"name":     "kimchi",
		"category": "fermented",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminPromoteFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAdmin(t)

	unrecognized := testutil.SeedUnrecognized(t, env.db, "Dragon Fruit")

	w := env.do(t, http.MethodGet, "/api/v1/admin/unrecognized", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listResp struct {
		Count int `json:"count"`
	}
	decodeBody(t, w, &listResp)
	assert.Equal(t, 1, listResp.Count)

	w = env.do(t, http.MethodPost, "/api/v1/admin/ingredients/promote", token, map[string]string{
		"unrecognized_item_id": unrecognized.ID.String(),
		"category":             "produce",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Ingredient models.Ingredient `json:"ingredient"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, "dragon fruit", resp.Ingredient.Name)

	w = env.do(t, http.MethodGet, "/api/v1/admin/unrecognized", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &listResp)
	assert.Equal(t, 0, listResp.Count)
}

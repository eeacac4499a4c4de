package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homecuistot/backend/internal/models"
	"github.com/homecuistot/backend/internal/service"
	"github.com/homecuistot/backend/internal/testutil"
)

func sampleRecipeBody() map[string]any {
	return map[string]any{
		"name":         "Tomato Pasta",
		"description":  "Simple weeknight pasta",
		"category":     "Main Course",
		"ingredients":  []string{"pasta", "tomato"},
		"instructions": []string{"boil", "combine"},
		"prep_time":    "10 min",
		"cook_time":    "20 min",
		"servings":     "2",
	}
}

func TestRecipeCRUD(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerUser(t, "ada@example.com")

	w := env.do(t, http.MethodPost, "/api/v1/recipes", token, sampleRecipeBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var createResp struct {
		Recipe models.Recipe `json:"recipe"`
	}
	decodeBody(t, w, &createResp)
	recipeID := createResp.Recipe.ID
	require.NotEqual(t, uuid.Nil, recipeID)

	w = env.do(t, http.MethodGet, "/api/v1/recipes/"+recipeID.String(), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := sampleRecipeBody()
	body["name"] = "Spicy Tomato Pasta"
	w = env.do(t, http.MethodPut, "/api/v1/recipes/"+recipeID.String(), token, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updateResp struct {
		Recipe models.Recipe `json:"recipe"`
	}
	decodeBody(t, w, &updateResp)
	assert.Equal(t, "Spicy Tomato Pasta", updateResp.Recipe.Name)

	var listResp struct {
		Count int `json:"count"`
	}
	w = env.do(t, http.MethodGet, "/api/v1/recipes", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &listResp)
	assert.Equal(t, 1, listResp.Count)

	w = env.do(t, http.MethodDelete, "/api/v1/recipes/"+recipeID.String(), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/recipes", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &listResp)
	assert.Equal(t, 0, listResp.Count)
}

func TestRecipeOwnership(t *testing.T) {
	env := newTestEnv(t)
	ada := env.registerUser(t, "ada@example.com")
	bob := env.registerUser(t, "bob@example.com")

	w := env.do(t, http.MethodPost, "/api/v1/recipes", ada, sampleRecipeBody())
	require.Equal(t, http.StatusCreated, w.Code)
	var createResp struct {
		Recipe models.Recipe `json:"recipe"`
	}
	decodeBody(t, w, &createResp)

	// Bob cannot update or delete Ada's recipe.
	w = env.do(t, http.MethodPut, "/api/v1/recipes/"+createResp.Recipe.ID.String(), bob, sampleRecipeBody())
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, "/api/v1/recipes/"+createResp.Recipe.ID.String(), bob, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecipeSearch(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerUser(t, "ada@example.com")

	w := env.do(t, http.MethodPost, "/api/v1/recipes", token, sampleRecipeBody())
	require.Equal(t, http.StatusCreated, w.Code)

	body := sampleRecipeBody()
	body["name"] = "Chocolate Cake"
	body["description"] = "Rich dessert"
	body["ingredients"] = []string{"flour", "cocoa"}
	w = env.do(t, http.MethodPost, "/api/v1/recipes", token, body)
	require.Equal(t, http.StatusCreated, w.Code)

	var listResp struct {
		Count int `json:"count"`
	}
	w = env.do(t, http.MethodGet, "/api/v1/recipes/search?q=tomato", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeBody(t, w, &listResp)
	assert.Equal(t, 1, listResp.Count)
}

func TestRecipeGenerate(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerUser(t, "ada@example.com")
	userID := uuid.MustParse(env.userID(t, token))

	pasta := testutil.SeedIngredient(t, env.db, "pasta", models.CategoryGrains)
	testutil.SeedInventoryItem(t, env.db, userID, pasta.ID, 3, false)

	env.generator.recipe = &service.RecipeData{
		Name:         "Pantry Pasta",
		Description:  "Uses what you have",
		Category:     "Main Course",
		Ingredients:  []string{"pasta"},
		Instructions: []string{"boil"},
	}

	w := env.do(t, http.MethodPost, "/api/v1/recipes/generate", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Recipe models.Recipe `json:"recipe"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, "Pantry Pasta", resp.Recipe.Name)
	assert.Equal(t, userID, resp.Recipe.UserID)

	// Generation is quota-bearing.
	var count int64
	require.NoError(t, env.db.Model(&models.UsageLogEntry{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

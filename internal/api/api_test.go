package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/souschef-app/backend/internal/cooking"
	"github.com/souschef-app/backend/internal/model"
)

const testJWTSecret = "test-jwt-secret"

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
}

func setupTestAPI(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.SavedRecipe{},
		&model.UserPreferences{},
		&model.MealPlan{},
	))

	router := gin.New()
	sessions := SetupAPI(router, db, nil, nil, testJWTSecret)
	t.Cleanup(sessions.Close)

	return &testEnv{router: router, db: db}
}

func signToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
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

func TestHealthEndpoint(t *testing.T) {
	env := setupTestAPI(t)
	w := env.do(t, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRequired(t *testing.T) {
	env := setupTestAPI(t)

	w := env.do(t, http.MethodGet, "/api/v1/recipes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/recipes", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChatWithoutAPIKeyReturnsMessage(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("LLM_API_KEY_FILE", "")

	env := setupTestAPI(t)
	token := signToken(t, uuid.New())

	w := env.do(t, http.MethodPost, "/api/v1/chat", token, map[string]interface{}{
		"messages": []map[string]string{{"role": "user", "content": "dinner ideas"}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Recipe  *model.Recipe `json:"recipe"`
		Message string        `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp.Recipe)
	assert.NotEmpty(t, resp.Message)
}

func TestChatGeneratesRecipe(t *testing.T) {
	reply := `Here you go! {"name": "Veggie Wrap", "ingredients": [{"name": "tortilla", "amount": "2"}], "instructions": [{"step": "Roll it up"}]}`
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": reply}},
			},
		})
	}))
	defer upstream.Close()

	t.Setenv("LLM_API_KEY", "test-key")
	t.Setenv("LLM_API_URL", upstream.URL)

	env := setupTestAPI(t)
	token := signToken(t, uuid.New())

	w := env.do(t, http.MethodPost, "/api/v1/chat", token, map[string]interface{}{
		"messages": []map[string]string{{"role": "user", "content": "a quick lunch"}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Recipe  *model.Recipe `json:"recipe"`
		Message string        `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Recipe)
	assert.Equal(t, "Veggie Wrap", resp.Recipe.Name)
	assert.NotContains(t, resp.Message, "{")
}

func TestChatHonorsBodyPreferences(t *testing.T) {
	reply := `{"name": "Veggie Wrap", "ingredients": [{"name": "tortilla", "amount": "2"}], "instructions": [{"step": "Roll it up"}]}`

	var systemPrompt string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Messages)
		systemPrompt = req.Messages[0].Content

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": reply}},
			},
		})
	}))
	defer upstream.Close()

	t.Setenv("LLM_API_KEY", "test-key")
	t.Setenv("LLM_API_URL", upstream.URL)

	env := setupTestAPI(t)
	token := signToken(t, uuid.New())

	// Nothing is stored for this user; the preferences ride in the body
	w := env.do(t, http.MethodPost, "/api/v1/chat", token, map[string]interface{}{
		"messages": []map[string]string{{"role": "user", "content": "a quick lunch"}},
		"user_preferences": map[string]interface{}{
			"allergies":            []string{"peanuts"},
			"dietary_restrictions": []string{"vegan"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Contains(t, systemPrompt, "peanuts")
	assert.Contains(t, systemPrompt, "vegan")
}

func TestChatRejectsMissingMessages(t *testing.T) {
	env := setupTestAPI(t)
	token := signToken(t, uuid.New())

	w := env.do(t, http.MethodPost, "/api/v1/chat", token, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSavedRecipesFlow(t *testing.T) {
	env := setupTestAPI(t)
	userID := uuid.New()
	token := signToken(t, userID)

	recipe := model.Recipe{
		Name:         "Pancakes",
		Ingredients:  model.IngredientList{{Name: "flour", Amount: "2 cups"}},
		Instructions: model.InstructionList{{Step: "Mix and fry"}},
	}

	w := env.do(t, http.MethodPost, "/api/v1/recipes/r1/save", token, recipe)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/recipes/r1/saved", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"exists":true`)

	w = env.do(t, http.MethodGet, "/api/v1/recipes", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listResp struct {
		SavedRecipes []model.SavedRecipe `json:"saved_recipes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	require.Len(t, listResp.SavedRecipes, 1)
	assert.Equal(t, "Pancakes", listResp.SavedRecipes[0].Recipe.Name)

	w = env.do(t, http.MethodDelete, "/api/v1/recipes/r1/save", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/recipes/r1/saved", token, nil)
	assert.Contains(t, w.Body.String(), `"exists":false`)
}

func TestSimilarSavedRecipes(t *testing.T) {
	env := setupTestAPI(t)
	token := signToken(t, uuid.New())

	recipe := model.Recipe{
		Name:         "Pancakes",
		Ingredients:  model.IngredientList{{Name: "flour", Amount: "2 cups"}},
		Instructions: model.InstructionList{{Step: "Mix and fry"}},
	}
	for _, id := range []string{"r1", "r2"} {
		w := env.do(t, http.MethodPost, "/api/v1/recipes/"+id+"/save", token, recipe)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := env.do(t, http.MethodGet, "/api/v1/recipes/r1/similar", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Recipes []model.SavedRecipe `json:"recipes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Recipes, 1)

	// Missing anchor is a 404
	w = env.do(t, http.MethodGet, "/api/v1/recipes/missing/similar", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPreferencesFlow(t *testing.T) {
	env := setupTestAPI(t)
	token := signToken(t, uuid.New())

	w := env.do(t, http.MethodGet, "/api/v1/preferences", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPut, "/api/v1/preferences", token, map[string]interface{}{
		"allergies":  []string{"peanuts"},
		"num_people": 2,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/preferences", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "peanuts")
}

func TestMealPlanFlow(t *testing.T) {
	env := setupTestAPI(t)
	token := signToken(t, uuid.New())
	planID := uuid.New()

	plan := map[string]interface{}{
		"name":     "This Week",
		"duration": "week",
		"items": []map[string]interface{}{
			{
				"date":      "2026-08-31",
				"meal_type": "dinner",
				"recipe": model.Recipe{
					Name:         "Pasta",
					Ingredients:  model.IngredientList{{Name: "pasta", Amount: "200g"}},
					Instructions: model.InstructionList{{Step: "Boil"}},
				},
			},
		},
	}

	w := env.do(t, http.MethodPut, "/api/v1/meal-plans/"+planID.String(), token, plan)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/meal-plans", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "This Week")

	w = env.do(t, http.MethodGet, "/api/v1/meal-plans/"+planID.String(), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Swap the dinner for something else
	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/meal-plans/%s/items/0", planID), token, map[string]interface{}{
		"date":      "2026-08-31",
		"meal_type": "dinner",
		"recipe": model.Recipe{
			Name:         "Tacos",
			Ingredients:  model.IngredientList{{Name: "tortilla", Amount: "4"}},
			Instructions: model.InstructionList{{Step: "Assemble"}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Tacos")

	// Out-of-range item index
	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/meal-plans/%s/items/9", planID), token, map[string]interface{}{
		"date": "2026-08-31", "meal_type": "dinner", "recipe": model.Recipe{Name: "X"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodDelete, "/api/v1/meal-plans/"+planID.String(), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/meal-plans/"+planID.String(), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMealPlanGenerateComingSoon(t *testing.T) {
	env := setupTestAPI(t)
	token := signToken(t, uuid.New())

	w := env.do(t, http.MethodPost, "/api/v1/meal-plans/generate", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "coming soon")
}

func TestMealPlanIsolatedBetweenUsers(t *testing.T) {
	env := setupTestAPI(t)
	owner := signToken(t, uuid.New())
	other := signToken(t, uuid.New())
	planID := uuid.New()

	w := env.do(t, http.MethodPut, "/api/v1/meal-plans/"+planID.String(), owner, map[string]interface{}{
		"name": "Private", "duration": "week",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/meal-plans/"+planID.String(), other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCookingSessionFlow(t *testing.T) {
	env := setupTestAPI(t)
	token := signToken(t, uuid.New())

	recipe := model.Recipe{
		Name: "Stir Fry",
		Ingredients: model.IngredientList{
			{Name: "broccoli", Amount: "2 cups"},
			{Name: "soy sauce", Amount: "1/4 cup"},
		},
		Instructions: model.InstructionList{
			{Step: "Chop everything"},
			{Step: "Fry for 5 minutes"},
		},
	}

	w := env.do(t, http.MethodPost, "/api/v1/cooking/sessions", token, map[string]interface{}{"recipe": recipe})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Session cooking.Session `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.Session.ID
	require.NotEmpty(t, id)

	base := "/api/v1/cooking/sessions/" + id

	w = env.do(t, http.MethodPost, base+"/advance", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var state struct {
		Session cooking.Session `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, 1, state.Session.CurrentStep)

	// Scaling doubles the displayed amounts
	w = env.do(t, http.MethodPost, base+"/scale", token, map[string]interface{}{"delta": 1})
	require.Equal(t, http.StatusOK, w.Code)
	var scaled struct {
		ScaledIngredients []model.Ingredient `json:"scaled_ingredients"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &scaled))
	require.Len(t, scaled.ScaledIngredients, 2)
	assert.Equal(t, "4 cups", scaled.ScaledIngredients[0].Amount)

	// Removing an ingredient yields a substitute question
	w = env.do(t, http.MethodPost, base+"/ingredients/remove", token, map[string]interface{}{"index": 1})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "what can I substitute")

	// The current step names a duration, so the timer starts immediately
	w = env.do(t, http.MethodPost, base+"/timer/start", token, map[string]interface{}{})
	require.Equal(t, http.StatusOK, w.Code)
	var timed struct {
		Session cooking.Session `json:"session"`
		Started bool            `json:"started"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &timed))
	assert.True(t, timed.Started)
	require.NotNil(t, timed.Session.Timer)
	assert.Equal(t, 300, timed.Session.Timer.Duration)

	w = env.do(t, http.MethodDelete, base, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, base, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCookingSessionNotFound(t *testing.T) {
	env := setupTestAPI(t)
	token := signToken(t, uuid.New())

	w := env.do(t, http.MethodPost, "/api/v1/cooking/sessions/nope/advance", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

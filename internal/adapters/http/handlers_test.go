package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealcal/core/internal/adapters/cache"
	"github.com/mealcal/core/internal/application/services"
	"github.com/mealcal/core/internal/domain/entities"
	"github.com/mealcal/core/internal/infrastructure/logger"
)

type stubRecipeRepo struct {
	recipes []*entities.Recipe
}

func (r *stubRecipeRepo) ListCategories(context.Context) ([]*entities.Category, error) {
	return []*entities.Category{{ID: 1, Name: "Pasta"}}, nil
}

func (r *stubRecipeRepo) SearchByName(_ context.Context, name string) ([]*entities.Recipe, error) {
	out := []*entities.Recipe{}
	for _, rec := range r.recipes {
		if strings.Contains(strings.ToLower(rec.Name), strings.ToLower(name)) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *stubRecipeRepo) ListByCategory(context.Context, string) ([]*entities.Recipe, error) {
	return []*entities.Recipe{}, nil
}

func (r *stubRecipeRepo) GetByID(_ context.Context, id int64) (*entities.Recipe, error) {
	for _, rec := range r.recipes {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, entities.ErrRecipeNotFound
}

func (r *stubRecipeRepo) UpsertCategory(context.Context, *entities.Category) error { return nil }
func (r *stubRecipeRepo) UpsertRecipe(context.Context, *entities.Recipe) error     { return nil }

func newCatalogHandler() *CatalogHandler {
	repo := &stubRecipeRepo{recipes: []*entities.Recipe{
		{ID: 7, Name: "Carbonara", Ingredients: entities.StringList{"eggs"}},
	}}
	svc := services.NewCatalogService(repo, cache.NewNoopCache(), time.Minute, nil, logger.NewNop())
	return NewCatalogHandler(svc, Responder{Logger: logger.NewNop()})
}

func newContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestResponder_Describe(t *testing.T) {
	r := Responder{Logger: logger.NewNop()}

	verr := &entities.ValidationError{}
	verr.Add("title", "")
	verr.Add("timeFrom", "must be HH:MM")

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", verr, http.StatusBadRequest, verr.Error()},
		{"event", fmt.Errorf("wrapped: %w", entities.ErrEventNotFound), http.StatusNotFound, "Event not found or you do not have permission"},
		{"recipe", entities.ErrRecipeNotFound, http.StatusNotFound, "Recipe not found"},
		{"user", entities.ErrUserNotFound, http.StatusNotFound, "User not found"},
		{"email", entities.ErrEmailTaken, http.StatusBadRequest, "Email is already registered"},
		{"credentials", entities.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{"other", errors.New("connection reset"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := r.describe(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, body.Message)
			assert.False(t, body.Success)
		})
	}

	_, body := r.describe(verr)
	assert.Equal(t, []string{"title", "timeFrom"}, body.Fields)
}

func TestResponder_HidesDetailsUnlessExposed(t *testing.T) {
	hidden := Responder{Logger: logger.NewNop()}
	_, body := hidden.describe(errors.New("pq: relation missing"))
	assert.Nil(t, body.Error)

	exposed := Responder{ExposeDetails: true, Logger: logger.NewNop()}
	_, body = exposed.describe(errors.New("pq: relation missing"))
	assert.Equal(t, "pq: relation missing", body.Error)
}

func TestGetUserIDFromContext(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/")
	_, err := getUserIDFromContext(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)

	c.Set(ContextUserKey, "not-a-uuid")
	_, err = getUserIDFromContext(c)
	assert.Error(t, err)

	id := uuid.New()
	c.Set(ContextUserKey, id.String())
	got, err := getUserIDFromContext(c)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParseID(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-1", "1.5", ""} {
		c, _ := newContext(http.MethodGet, "/")
		c.SetParamNames("eventId")
		c.SetParamValues(raw)
		_, err := parseID(c, "eventId", entities.ErrEventNotFound)
		assert.ErrorIs(t, err, entities.ErrEventNotFound, raw)
	}

	c, _ := newContext(http.MethodGet, "/")
	c.SetParamNames("eventId")
	c.SetParamValues("42")
	id, err := parseID(c, "eventId", entities.ErrEventNotFound)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestCatalogHandler_GetRecipe(t *testing.T) {
	h := newCatalogHandler()

	c, rec := newContext(http.MethodGet, "/api/recipes/7")
	c.SetParamNames("id")
	c.SetParamValues("7")
	require.NoError(t, h.GetRecipe(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "Carbonara", env.Data.(map[string]interface{})["name"])

	c, rec = newContext(http.MethodGet, "/api/recipes/pasta")
	c.SetParamNames("id")
	c.SetParamValues("pasta")
	require.NoError(t, h.GetRecipe(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Recipe not found", decodeEnvelope(t, rec).Message)
}

func TestCatalogHandler_Search(t *testing.T) {
	h := newCatalogHandler()

	c, rec := newContext(http.MethodGet, "/api/recipes/search?name=carb")
	require.NoError(t, h.SearchRecipes(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeEnvelope(t, rec).Data, 1)

	c, rec = newContext(http.MethodGet, "/api/recipes/search?name=%20")
	require.NoError(t, h.SearchRecipes(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogHandler_EmptyCategoryIsArray(t *testing.T) {
	h := newCatalogHandler()

	c, rec := newContext(http.MethodGet, "/api/recipes/category/Desserts")
	c.SetParamNames("category")
	c.SetParamValues("Desserts")
	require.NoError(t, h.RecipesByCategory(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":[]}`, rec.Body.String())
}

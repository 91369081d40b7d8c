package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mealcal/core/internal/application/services"
	"github.com/mealcal/core/internal/domain/entities"
)

// CatalogHandler serves the public recipe catalog
type CatalogHandler struct {
	catalogService *services.CatalogService
	Responder
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *services.CatalogService, responder Responder) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		Responder:      responder,
	}
}

// ListCategories returns every recipe category
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	categories, err := h.catalogService.ListCategories(c.Request().Context())
	if err != nil {
		return h.Fail(c, err)
	}
	return h.OK(c, http.StatusOK, categories, "")
}

// SearchRecipes matches recipes by name
func (h *CatalogHandler) SearchRecipes(c echo.Context) error {
	name := strings.TrimSpace(c.QueryParam("name"))
	if name == "" {
		return h.BadRequest(c, "Query parameter name is required", nil)
	}

	recipes, err := h.catalogService.SearchRecipes(c.Request().Context(), name)
	if err != nil {
		return h.Fail(c, err)
	}
	return h.OK(c, http.StatusOK, recipes, "")
}

// RecipesByCategory lists the recipes of one category
func (h *CatalogHandler) RecipesByCategory(c echo.Context) error {
	recipes, err := h.catalogService.RecipesByCategory(c.Request().Context(), c.Param("category"))
	if err != nil {
		return h.Fail(c, err)
	}
	return h.OK(c, http.StatusOK, recipes, "")
}

// GetRecipe returns a recipe by id
func (h *CatalogHandler) GetRecipe(c echo.Context) error {
	id, err := parseID(c, "id", entities.ErrRecipeNotFound)
	if err != nil {
		return h.Fail(c, err)
	}

	recipe, err := h.catalogService.GetRecipe(c.Request().Context(), id)
	if err != nil {
		return h.Fail(c, err)
	}
	return h.OK(c, http.StatusOK, recipe, "")
}

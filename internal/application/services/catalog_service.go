package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mealcal/core/internal/domain/entities"
	"github.com/mealcal/core/internal/infrastructure/logger"
	"github.com/mealcal/core/internal/infrastructure/metrics"
	"github.com/mealcal/core/internal/ports"
)

const (
	categoriesCacheKey = "catalog:categories"
	recipeCacheKey     = "catalog:recipe:%d"
	categoryCacheKey   = "catalog:category:%s"

	// catalogLoadTimeout bounds a shared repository load, which outlives any single caller
	catalogLoadTimeout = 10 * time.Second
)

// CatalogService serves the read-mostly recipe catalog through a cache.
// Concurrent misses for the same key share one repository call.
type CatalogService struct {
	recipeRepo ports.RecipeRepository
	cache      ports.CacheRepository
	ttl        time.Duration
	group      singleflight.Group
	metrics    *metrics.Metrics
	logger     *logger.Logger
}

// NewCatalogService creates a new recipe catalog service
func NewCatalogService(recipeRepo ports.RecipeRepository, cache ports.CacheRepository, ttl time.Duration, m *metrics.Metrics, logger *logger.Logger) *CatalogService {
	return &CatalogService{
		recipeRepo: recipeRepo,
		cache:      cache,
		ttl:        ttl,
		metrics:    m,
		logger:     logger.WithComponent("catalog"),
	}
}

// ListCategories returns every category, ordered by name
func (s *CatalogService) ListCategories(ctx context.Context) ([]*entities.Category, error) {
	var categories []*entities.Category
	err := s.cached(ctx, "categories", categoriesCacheKey, &categories, func(ctx context.Context) (interface{}, error) {
		return s.recipeRepo.ListCategories(ctx)
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// SearchRecipes matches recipe names containing name. Searches are not cached.
func (s *CatalogService) SearchRecipes(ctx context.Context, name string) ([]*entities.Recipe, error) {
	recipes, err := s.recipeRepo.SearchByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to search recipes: %w", err)
	}
	return recipes, nil
}

// RecipesByCategory returns the recipes of a category; an unknown category yields an empty list
func (s *CatalogService) RecipesByCategory(ctx context.Context, category string) ([]*entities.Recipe, error) {
	key := fmt.Sprintf(categoryCacheKey, strings.ToLower(strings.TrimSpace(category)))

	var recipes []*entities.Recipe
	err := s.cached(ctx, "category", key, &recipes, func(ctx context.Context) (interface{}, error) {
		return s.recipeRepo.ListByCategory(ctx, category)
	})
	if err != nil {
		return nil, err
	}
	if recipes == nil {
		recipes = []*entities.Recipe{}
	}
	return recipes, nil
}

// GetRecipe returns a single recipe
func (s *CatalogService) GetRecipe(ctx context.Context, id int64) (*entities.Recipe, error) {
	var recipe entities.Recipe
	err := s.cached(ctx, "recipe", fmt.Sprintf(recipeCacheKey, id), &recipe, func(ctx context.Context) (interface{}, error) {
		return s.recipeRepo.GetByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Invalidate drops cached catalog entries after the catalog changes
func (s *CatalogService) Invalidate(ctx context.Context, categories []string, recipeIDs []int64) error {
	keys := []string{categoriesCacheKey}
	for _, c := range categories {
		keys = append(keys, fmt.Sprintf(categoryCacheKey, strings.ToLower(strings.TrimSpace(c))))
	}
	for _, id := range recipeIDs {
		keys = append(keys, fmt.Sprintf(recipeCacheKey, id))
	}
	return s.cache.Delete(ctx, keys...)
}

// cached decodes key into dest, or loads it, stores it and decodes the loaded value.
// Cache failures are logged and fall through to the repository. The shared load
// runs detached from ctx, so a cancelled caller only abandons its own wait.
func (s *CatalogService) cached(ctx context.Context, kind, key string, dest interface{}, load func(context.Context) (interface{}, error)) error {
	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Debugw("Cache read failed", "key", key, "error", err)
	} else if ok {
		if err := json.Unmarshal(raw, dest); err == nil {
			s.metrics.ObserveCatalog(kind, true)
			return nil
		}
		s.logger.Debugw("Cache entry undecodable", "key", key)
	}
	s.metrics.ObserveCatalog(kind, false)

	loaded := s.group.DoChan(key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), catalogLoadTimeout)
		defer cancel()

		value, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", kind, err)
		}
		if err := s.cache.Set(loadCtx, key, raw, s.ttl); err != nil {
			s.logger.Debugw("Cache write failed", "key", key, "error", err)
		}
		return raw, nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-loaded:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.([]byte), dest)
	}
}

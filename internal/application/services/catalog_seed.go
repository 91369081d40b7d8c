package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mealcal/core/internal/domain/entities"
)

// CatalogSeed is the YAML document accepted by `catalog seed`
type CatalogSeed struct {
	Categories []CategorySeed `yaml:"categories"`
}

// CategorySeed is one category and its recipes
type CategorySeed struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	ImageURL    string       `yaml:"image_url"`
	Recipes     []RecipeSeed `yaml:"recipes"`
}

// RecipeSeed is one recipe of a category
type RecipeSeed struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Ingredients  []string `yaml:"ingredients"`
	Instructions []string `yaml:"instructions"`
	ImageURL     string   `yaml:"image_url"`
	PrepTime     int      `yaml:"prep_time"`
	Difficulty   string   `yaml:"difficulty"`
}

// SeedResult counts what a seed run wrote
type SeedResult struct {
	Categories int
	Recipes    int
}

// DecodeCatalogSeed parses and checks a seed document
func DecodeCatalogSeed(r io.Reader) (*CatalogSeed, error) {
	var seed CatalogSeed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		return nil, fmt.Errorf("decode catalog seed: %w", err)
	}

	verr := &entities.ValidationError{}
	for i, c := range seed.Categories {
		if strings.TrimSpace(c.Name) == "" {
			verr.Add(fmt.Sprintf("categories[%d].name", i), "")
		}
		for j, rec := range c.Recipes {
			if strings.TrimSpace(rec.Name) == "" {
				verr.Add(fmt.Sprintf("categories[%d].recipes[%d].name", i, j), "")
			}
			if rec.PrepTime < 0 {
				verr.Add(fmt.Sprintf("categories[%d].recipes[%d].prep_time", i, j), "must not be negative")
			}
		}
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	return &seed, nil
}

// Seed upserts every category and recipe of seed, then drops the affected cache entries
func (s *CatalogService) Seed(ctx context.Context, seed *CatalogSeed) (SeedResult, error) {
	var (
		result    SeedResult
		names     []string
		recipeIDs []int64
	)

	for _, c := range seed.Categories {
		category := &entities.Category{
			Name:        strings.TrimSpace(c.Name),
			Description: optionalString(c.Description),
			ImageURL:    optionalString(c.ImageURL),
		}
		if err := s.recipeRepo.UpsertCategory(ctx, category); err != nil {
			return result, err
		}
		result.Categories++
		names = append(names, category.Name)

		for _, rec := range c.Recipes {
			categoryID := category.ID
			recipe := &entities.Recipe{
				CategoryID:   &categoryID,
				Name:         strings.TrimSpace(rec.Name),
				Description:  optionalString(rec.Description),
				Ingredients:  entities.NewStringList(rec.Ingredients),
				Instructions: entities.NewStringList(rec.Instructions),
				ImageURL:     optionalString(rec.ImageURL),
				Difficulty:   optionalString(rec.Difficulty),
			}
			if rec.PrepTime > 0 {
				prep := rec.PrepTime
				recipe.PrepTime = &prep
			}
			if err := s.recipeRepo.UpsertRecipe(ctx, recipe); err != nil {
				return result, err
			}
			result.Recipes++
			recipeIDs = append(recipeIDs, recipe.ID)
		}
	}

	if err := s.Invalidate(ctx, names, recipeIDs); err != nil {
		s.logger.Warnw("Catalog cache invalidation failed", "error", err)
	}
	s.logger.Infow("Catalog seeded", "categories", result.Categories, "recipes", result.Recipes)
	return result, nil
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mealcal/core/internal/domain/entities"
	"github.com/mealcal/core/internal/ports"
)

// RecipeRepositoryImpl implements the RecipeRepository interface
type RecipeRepositoryImpl struct {
	db *sqlx.DB
}

// NewRecipeRepository creates a new recipe catalog repository
func NewRecipeRepository(db *sqlx.DB) ports.RecipeRepository {
	return &RecipeRepositoryImpl{db: db}
}

const recipeColumns = `
	r.id, r.category_id, c.name AS category_name, r.name, r.description,
	r.ingredients, r.instructions, r.image_url, r.prep_time, r.difficulty, r.created_at`

func (r *RecipeRepositoryImpl) ListCategories(ctx context.Context) ([]*entities.Category, error) {
	query := `
		SELECT id, name, description, image_url
		FROM categories
		ORDER BY name`

	categories := []*entities.Category{}
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return categories, nil
}

func (r *RecipeRepositoryImpl) SearchByName(ctx context.Context, name string) ([]*entities.Recipe, error) {
	query := `
		SELECT` + recipeColumns + `
		FROM recipes r
		LEFT JOIN categories c ON c.id = r.category_id
		WHERE r.name ILIKE $1
		ORDER BY r.name`

	recipes := []*entities.Recipe{}
	if err := r.db.SelectContext(ctx, &recipes, query, "%"+escapeLike(strings.TrimSpace(name))+"%"); err != nil {
		return nil, fmt.Errorf("search recipes: %w", err)
	}

	return recipes, nil
}

func (r *RecipeRepositoryImpl) ListByCategory(ctx context.Context, category string) ([]*entities.Recipe, error) {
	query := `
		SELECT` + recipeColumns + `
		FROM recipes r
		JOIN categories c ON c.id = r.category_id
		WHERE LOWER(c.name) = LOWER($1)
		ORDER BY r.name`

	recipes := []*entities.Recipe{}
	if err := r.db.SelectContext(ctx, &recipes, query, strings.TrimSpace(category)); err != nil {
		return nil, fmt.Errorf("list recipes by category: %w", err)
	}

	return recipes, nil
}

func (r *RecipeRepositoryImpl) GetByID(ctx context.Context, id int64) (*entities.Recipe, error) {
	query := `
		SELECT` + recipeColumns + `
		FROM recipes r
		LEFT JOIN categories c ON c.id = r.category_id
		WHERE r.id = $1`

	var recipe entities.Recipe
	if err := r.db.GetContext(ctx, &recipe, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrRecipeNotFound
		}
		return nil, fmt.Errorf("get recipe by id: %w", err)
	}

	return &recipe, nil
}

// UpsertCategory inserts the category or refreshes it by name.
func (r *RecipeRepositoryImpl) UpsertCategory(ctx context.Context, category *entities.Category) error {
	query := `
		INSERT INTO categories (name, description, image_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE
		SET description = EXCLUDED.description, image_url = EXCLUDED.image_url
		RETURNING id`

	if err := r.db.QueryRowContext(ctx, query, category.Name, category.Description, category.ImageURL).Scan(&category.ID); err != nil {
		return fmt.Errorf("upsert category: %w", err)
	}

	return nil
}

// UpsertRecipe inserts the recipe or refreshes the one with the same name and category.
func (r *RecipeRepositoryImpl) UpsertRecipe(ctx context.Context, recipe *entities.Recipe) error {
	query := `
		INSERT INTO recipes (category_id, name, description, ingredients, instructions,
			image_url, prep_time, difficulty)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (category_id, name) DO UPDATE
		SET description = EXCLUDED.description, ingredients = EXCLUDED.ingredients,
			instructions = EXCLUDED.instructions, image_url = EXCLUDED.image_url,
			prep_time = EXCLUDED.prep_time, difficulty = EXCLUDED.difficulty
		RETURNING id, created_at`

	recipe.Ingredients = entities.NewStringList(recipe.Ingredients)
	recipe.Instructions = entities.NewStringList(recipe.Instructions)

	err := r.db.QueryRowContext(ctx, query,
		recipe.CategoryID, recipe.Name, recipe.Description, recipe.Ingredients, recipe.Instructions,
		recipe.ImageURL, recipe.PrepTime, recipe.Difficulty,
	).Scan(&recipe.ID, &recipe.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert recipe: %w", err)
	}

	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mealcal/core/internal/adapters/repository"
	"github.com/mealcal/core/internal/application/services"
	"github.com/mealcal/core/internal/infrastructure/config"
	"github.com/mealcal/core/internal/infrastructure/database"
	"github.com/mealcal/core/internal/infrastructure/logger"
)

// NewCatalogCommand creates the recipe catalog command
func NewCatalogCommand() *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Recipe catalog commands",
	}

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load categories and recipes from a YAML file",
		Long:  "Upsert every category and recipe of the file. Existing entries are matched by name.",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			return seedCatalog(cmd, file)
		},
	}
	seedCmd.Flags().StringP("file", "f", "catalog.yaml", "Catalog YAML file")

	catalogCmd.AddCommand(seedCmd)
	return catalogCmd
}

func seedCatalog(cmd *cobra.Command, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()

	seed, err := services.DecodeCatalogSeed(f)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	db, err := database.New(cmd.Context(), cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	catalogCache, closeCache := openCache(ctx, cfg, appLogger)
	defer closeCache()

	catalog := services.NewCatalogService(repository.NewRecipeRepository(db.DB), catalogCache, cfg.Redis.CacheTTL, nil, appLogger)
	result, err := catalog.Seed(ctx, seed)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d categories and %d recipes\n", result.Categories, result.Recipes)
	return nil
}

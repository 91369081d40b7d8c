package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/mealcal/core/cmd/api/commands"
)

// @title MealCal API
// @version 1.0
// @description Recipe catalog and meal-planning calendar
// @termsOfService https://github.com/mealcal/core/blob/main/LICENSE

// @contact.name MealCal Support
// @contact.url https://github.com/mealcal/core

// @license.name MIT
// @license.url https://github.com/mealcal/core/blob/main/LICENSE

// @host localhost:3000
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	rootCmd := &cobra.Command{
		Use:          "mealcal",
		Short:        "MealCal API Server",
		Long:         `MealCal serves a recipe catalog and a personal meal-planning calendar with cooking checklists.`,
		SilenceUsage: true,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())
	rootCmd.AddCommand(commands.NewCatalogCommand())
	rootCmd.AddCommand(commands.NewCalendarCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}

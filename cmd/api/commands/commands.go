package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mealcal/core/internal/adapters/cache"
	"github.com/mealcal/core/internal/adapters/repository"
	"github.com/mealcal/core/internal/application/services"
	"github.com/mealcal/core/internal/infrastructure/config"
	"github.com/mealcal/core/internal/infrastructure/database"
	"github.com/mealcal/core/internal/infrastructure/logger"
	"github.com/mealcal/core/internal/infrastructure/metrics"
	"github.com/mealcal/core/internal/infrastructure/server"
	"github.com/mealcal/core/internal/ports"
)

// Version is overridden at build time with -ldflags
var Version = "dev"

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MealCal API server",
		Long:  "Start the MealCal API server with all configured routes and middleware",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage database migrations (up, down, version)",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Run up migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			return runMigration(cmd, "up", steps)
		},
	}
	upCmd.Flags().Int("steps", 0, "Number of migrations to apply (0 = all)")

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Run down migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			return runMigration(cmd, "down", steps)
		},
	}
	downCmd.Flags().Int("steps", 0, "Number of migrations to revert (0 = all)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showMigrationVersion(cmd)
		},
	}

	migrateCmd.AddCommand(upCmd, downCmd, versionCmd)
	return migrateCmd
}

// NewUserCommand creates the user management command
func NewUserCommand() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
		Long:  "Create accounts that own calendars",
	}

	createUserCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new user",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ports.RegisterRequest{}
			req.Name, _ = cmd.Flags().GetString("name")
			req.Surname, _ = cmd.Flags().GetString("surname")
			req.Email, _ = cmd.Flags().GetString("email")
			req.Password, _ = cmd.Flags().GetString("password")
			return createUser(cmd, req)
		},
	}

	createUserCmd.Flags().String("email", "", "User email (required)")
	createUserCmd.Flags().String("password", "", "User password (required)")
	createUserCmd.Flags().String("name", "", "User first name (required)")
	createUserCmd.Flags().String("surname", "", "User last name (required)")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("password")

	userCmd.AddCommand(createUserCmd)
	return userCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print MealCal version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "MealCal %s\n", Version)
		},
	}
}

func runServer(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
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

	db, err := database.New(parent, cfg.Database)
	if err != nil {
		appLogger.Errorw("Failed to connect to database", "error", err)
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalogCache, closeCache := openCache(ctx, cfg, appLogger)
	defer closeCache()

	srv, err := server.New(cfg, db, catalogCache, metrics.New(), appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	appLogger.Infow("Starting MealCal API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
		"timezone", cfg.App.Timezone,
		"cache", cfg.Redis.Enabled,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		appLogger.Errorw("Server stopped with error", "error", err)
		return err
	}
	appLogger.Info("Server stopped")
	return nil
}

// openCache connects to Redis when enabled. A failed connection disables caching.
func openCache(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) (ports.CacheRepository, func()) {
	if !cfg.Redis.Enabled {
		return cache.NewNoopCache(), func() {}
	}

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := cache.NewRedisClient(dialCtx, cfg.Redis)
	if err != nil {
		appLogger.Warnw("Redis unavailable, catalog cache disabled", "error", err)
		return cache.NewNoopCache(), func() {}
	}
	return cache.NewRedisCache(client, cfg.Redis.KeyPrefix), func() { client.Close() }
}

func newMigrator(cfg *config.Config, db *database.DB) (*migrate.Migrate, error) {
	driver, err := postgres.WithInstance(db.DB.DB, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(cfg.Database.MigrationsPath, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return m, nil
}

func runMigration(cmd *cobra.Command, direction string, steps int) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.New(cmd.Context(), cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	m, err := newMigrator(cfg, db)
	if err != nil {
		return err
	}

	switch direction {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Fprintln(cmd.OutOrStdout(), "No migrations to run")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Migration %s completed successfully\n", direction)
	return nil
}

func showMigrationVersion(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.New(cmd.Context(), cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	m, err := newMigrator(cfg, db)
	if err != nil {
		return err
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Fprintln(cmd.OutOrStdout(), "No migrations applied")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Current migration version: %d\n", version)
	fmt.Fprintf(cmd.OutOrStdout(), "Dirty: %t\n", dirty)
	return nil
}

func createUser(cmd *cobra.Command, req ports.RegisterRequest) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.New(cmd.Context(), cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	authService := services.NewAuthService(repository.NewUserRepository(db.DB), cfg.JWT, cfg.Security.BcryptCost, logger.NewNop())
	resp, err := authService.Register(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "User created successfully:\n")
	fmt.Fprintf(out, "  ID: %s\n", resp.User.ID)
	fmt.Fprintf(out, "  Email: %s\n", resp.User.Email)
	fmt.Fprintf(out, "  Name: %s %s\n", resp.User.Name, resp.User.Surname)
	fmt.Fprintf(out, "  Token: %s\n", resp.Token)
	return nil
}

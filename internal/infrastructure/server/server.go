package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/mealcal/core/docs"
	cacheAdapter "github.com/mealcal/core/internal/adapters/cache"
	httpHandlers "github.com/mealcal/core/internal/adapters/http"
	"github.com/mealcal/core/internal/adapters/repository"
	"github.com/mealcal/core/internal/application/services"
	"github.com/mealcal/core/internal/infrastructure/config"
	"github.com/mealcal/core/internal/infrastructure/database"
	"github.com/mealcal/core/internal/infrastructure/logger"
	"github.com/mealcal/core/internal/infrastructure/metrics"
	"github.com/mealcal/core/internal/ports"
)

// Server represents the HTTP server
type Server struct {
	echo      *echo.Echo
	config    *config.Config
	logger    *logger.Logger
	db        *database.DB
	cache     ports.CacheRepository
	metrics   *metrics.Metrics
	responder httpHandlers.Responder

	authService    *services.AuthService
	eventService   *services.EventService
	catalogService *services.CatalogService
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs and reports failures as validation errors
func (cv *CustomValidator) Validate(i interface{}) error {
	return services.ValidateStruct(cv.validator, i)
}

// New creates a new server instance
func New(cfg *config.Config, db *database.DB, cache ports.CacheRepository, m *metrics.Metrics, appLogger *logger.Logger) (*Server, error) {
	if db == nil || db.DB == nil {
		return nil, errors.New("database connection is required")
	}
	if cache == nil {
		cache = cacheAdapter.NewNoopCache()
	}

	e := echo.New()

	// Set custom validator
	e.Validator = &CustomValidator{validator: services.NewValidator()}

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true

	responder := httpHandlers.Responder{
		ExposeDetails: !cfg.App.IsProduction(),
		Logger:        appLogger,
	}

	// Custom error handler
	e.HTTPErrorHandler = customErrorHandler(responder, appLogger)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB)
	recipeRepo := repository.NewRecipeRepository(db.DB)
	eventRepo := repository.NewEventRepository(db.DB)

	// Initialize services
	authService := services.NewAuthService(userRepo, cfg.JWT, cfg.Security.BcryptCost, appLogger)
	eventService := services.NewEventService(eventRepo, m, appLogger)
	catalogService := services.NewCatalogService(recipeRepo, cache, cfg.Redis.CacheTTL, m, appLogger)

	server := &Server{
		echo:           e,
		config:         cfg,
		logger:         appLogger,
		db:             db,
		cache:          cache,
		metrics:        m,
		responder:      responder,
		authService:    authService,
		eventService:   eventService,
		catalogService: catalogService,
	}

	// Setup middleware
	server.setupMiddleware()

	// Setup metrics
	if cfg.Metrics.Enabled && m != nil {
		server.setupMetrics()
	}

	// Setup routes
	server.setupRoutes(
		httpHandlers.NewAuthHandler(authService, responder),
		httpHandlers.NewEventHandler(eventService, cfg.App.Location(), responder),
		httpHandlers.NewCatalogHandler(catalogService, responder),
	)

	return server, nil
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Request ID middleware
	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return uuid.New().String()
		},
	}))

	// Logger middleware
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
				"remote_ip", values.RemoteIP,
				"user_agent", values.UserAgent,
				"request_id", values.RequestID,
			}

			if values.Error != nil {
				fields = append(fields, "error", values.Error.Error())
				s.logger.Errorw("HTTP request failed", fields...)
			} else {
				s.logger.Infow("HTTP request", fields...)
			}

			return nil
		},
	}))

	// CORS middleware
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: splitOrigins(s.config.Security.CORSAllowedOrigins),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
	}))

	// Rate limiting middleware
	if s.config.Security.RateLimitRequests > 0 {
		window := s.config.Security.RateLimitWindow
		if window <= 0 {
			window = time.Minute
		}
		s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(
				middleware.RateLimiterMemoryStoreConfig{
					Rate:      rate.Limit(float64(s.config.Security.RateLimitRequests) / window.Seconds()),
					Burst:     s.config.Security.RateLimitRequests,
					ExpiresIn: window,
				},
			),
			IdentifierExtractor: func(ctx echo.Context) (string, error) {
				return ctx.RealIP(), nil
			},
			ErrorHandler: func(c echo.Context, err error) error {
				return c.JSON(http.StatusForbidden, httpHandlers.Envelope{Message: "Rate limit exceeded"})
			},
			DenyHandler: func(c echo.Context, identifier string, err error) error {
				return c.JSON(http.StatusTooManyRequests, httpHandlers.Envelope{Message: "Rate limit exceeded"})
			},
		}))
	}

	// Security headers
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
	}))

	// Compression
	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/metrics")
		},
	}))

	// Timeout middleware
	if s.config.Server.RequestTimeout > 0 {
		s.echo.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
			Timeout: s.config.Server.RequestTimeout,
		}))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(authHandler *httpHandlers.AuthHandler, eventHandler *httpHandlers.EventHandler, catalogHandler *httpHandlers.CatalogHandler) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	// Swagger documentation
	s.echo.GET("/docs/*", echoSwagger.WrapHandler)

	api := s.echo.Group("/api")

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", authHandler.Me, s.authMiddleware())

	// Recipe catalog routes (public)
	recipeGroup := api.Group("/recipes")
	recipeGroup.GET("/categories", catalogHandler.ListCategories)
	recipeGroup.GET("/search", catalogHandler.SearchRecipes)
	recipeGroup.GET("/category/:category", catalogHandler.RecipesByCategory)
	recipeGroup.GET("/:id", catalogHandler.GetRecipe)

	// Calendar routes (authenticated)
	calendarGroup := api.Group("/calendar", s.authMiddleware())
	calendarGroup.GET("/export.ics", eventHandler.ExportICS)
	calendarGroup.GET("/events", eventHandler.ListEvents)
	calendarGroup.POST("/events", eventHandler.CreateEvent)
	calendarGroup.GET("/events/:eventId", eventHandler.GetEvent)
	calendarGroup.PUT("/events/:eventId", eventHandler.UpdateEvent)
	calendarGroup.DELETE("/events/:eventId", eventHandler.DeleteEvent)
	calendarGroup.POST("/events/:eventId/complete", eventHandler.CompleteEvent)
	calendarGroup.PUT("/events/:eventId/complete", eventHandler.CompleteEvent)
	calendarGroup.GET("/events/:eventId/checklist", eventHandler.GetChecklist)
	calendarGroup.POST("/events/:eventId/checklist", eventHandler.UpdateChecklist)
	calendarGroup.PUT("/events/:eventId/checklist", eventHandler.UpdateChecklist)
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	// Custom metrics middleware
	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}

			s.metrics.RequestsTotal.WithLabelValues(
				c.Request().Method,
				path,
				fmt.Sprintf("%d", status),
			).Inc()

			s.metrics.RequestDuration.WithLabelValues(
				c.Request().Method,
				path,
			).Observe(time.Since(start).Seconds())

			return err
		}
	})

	// Metrics endpoint
	s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	ctx := c.Request().Context()
	status := "ok"
	checks := make(map[string]interface{})

	// Database health check
	if err := s.db.Ping(ctx); err != nil {
		status = "error"
		checks["database"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	} else {
		checks["database"] = map[string]interface{}{
			"status": "ok",
			"stats":  s.db.Stats(),
		}
	}

	// Cache health check
	if s.config.Redis.Enabled {
		if err := s.cache.Ping(ctx); err != nil {
			status = "degraded"
			checks["cache"] = map[string]interface{}{
				"status": "error",
				"error":  err.Error(),
			}
		} else {
			checks["cache"] = map[string]interface{}{"status": "ok"}
		}
	}

	response := map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
		"version": map[string]string{
			"app": s.config.App.Version,
			"go":  runtime.Version(),
		},
	}

	if status == "error" {
		return c.JSON(http.StatusServiceUnavailable, response)
	}
	return c.JSON(http.StatusOK, response)
}

func (s *Server) readinessCheck(c echo.Context) error {
	ctx := c.Request().Context()
	if err := s.db.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "database_not_ready",
		})
	}
	if err := s.db.SchemaReady(ctx); err != nil {
		reason := "schema_check_failed"
		if errors.Is(err, database.ErrSchemaMissing) {
			reason = "schema_not_migrated"
		}
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": reason,
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// ServeHTTP lets the server be mounted or exercised without a listener
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// AuthService exposes the token service for tooling
func (s *Server) AuthService() *services.AuthService {
	return s.authService
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Info("Starting server", "address", address)
	s.echo.Server.ReadTimeout = s.config.Server.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.Server.WriteTimeout
	s.echo.Server.IdleTimeout = s.config.Server.IdleTimeout
	if err := s.echo.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler renders every unhandled error as an envelope
func customErrorHandler(responder httpHandlers.Responder, logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if !errors.As(err, &he) {
			if ferr := responder.Fail(c, err); ferr != nil {
				logger.Error("Error sending response", "error", ferr)
			}
			return
		}

		body := httpHandlers.Envelope{Message: fmt.Sprint(he.Message)}
		if he.Code >= http.StatusInternalServerError {
			logger.Error("Internal server error", "error", err, "path", c.Request().URL.Path)
			body.Message = "Internal server error"
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(he.Code)
		} else {
			err = c.JSON(he.Code, body)
		}
		if err != nil {
			logger.Error("Error sending response", "error", err)
		}
	}
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

package app

import (
	"fmt"
	"time"

	"socios/internal/config"
	"socios/internal/handlers"
	"socios/internal/metrics"
	"socios/internal/middleware"
	"socios/internal/models"
	"socios/internal/repositories"
	"socios/internal/services"
	"socios/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenDatabase connects to the configured database.
func OpenDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the schema of every entity.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Member{}, &models.Document{}); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}

// Deps are the external resources the HTTP app is built on.
type Deps struct {
	DB    *gorm.DB
	Blobs storage.BlobStore
	// Events is nil when publishing is disabled.
	Events services.EventPublisher
	// Registry receives the service counters and backs /metrics.
	Registry *prometheus.Registry
	// AccessLog disables the request logger when false.
	AccessLog bool
}

// New assembles the Fiber app with every route.
func New(cfg config.Config, deps Deps) *fiber.App {
	m := metrics.New(deps.Registry)

	userRepo := repositories.NewGORMUserRepository(deps.DB)
	memberRepo := repositories.NewGORMMemberRepository(deps.DB)
	documentRepo := repositories.NewGORMDocumentRepository(deps.DB)

	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	memberService := services.NewMemberService(memberRepo, documentRepo, deps.Blobs, deps.Events, m)
	documentService := services.NewDocumentService(memberRepo, documentRepo, deps.Blobs, deps.Events, m)
	exportService := services.NewExportService(memberRepo, m)

	authHandler := handlers.NewAuthHandler(authService, middleware.RateLimitByIP(cfg.LoginRate))
	memberHandler := handlers.NewMemberHandler(memberService, exportService)
	documentHandler := handlers.NewDocumentHandler(documentService)

	app := fiber.New(fiber.Config{
		BodyLimit: cfg.UploadMaxBytes,
	})

	app.Use(recover.New())
	if deps.AccessLog {
		app.Use(logger.New())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"events": deps.Events != nil,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)

	memberRoutes := apiV1.Group("/members", middleware.AuthRequired(authService))
	memberHandler.RegisterRoutes(memberRoutes)
	documentHandler.RegisterRoutes(memberRoutes)

	return app
}

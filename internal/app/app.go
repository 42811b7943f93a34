package app

import (
	"catalog/internal/config"
	"catalog/internal/handlers"
	"catalog/internal/middleware"
	"catalog/internal/repositories"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

// AppName is reported by Fiber and used in log lines.
const AppName = "catalog"

// NewApp builds the Fiber application serving the product catalog. publisher
// may be nil, in which case no product events are emitted.
func NewApp(cfg *config.Config, repo repositories.ProductRepository, publisher services.EventPublisher, logger zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               AppName,
		ErrorHandler:          handlers.ErrorHandler(logger),
		DisableStartupMessage: true,
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(middleware.RequestLogger(logger))

	// --- Services ---
	productService := services.NewProductService(repo, publisher, logger)

	// --- Routes ---
	handlers.NewHealthHandler().RegisterRoutes(app)

	var writeGuards []fiber.Handler
	if cfg.Auth.Enabled {
		authService := services.NewAuthService(cfg.Auth, logger)
		handlers.NewAuthHandler(authService, logger).RegisterRoutes(app)
		writeGuards = append(writeGuards, middleware.AuthRequired(authService))
	}

	handlers.NewProductHandler(productService, logger).RegisterRoutes(app, writeGuards...)

	return app
}

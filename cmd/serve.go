package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog/internal/app"
	"catalog/internal/config"
	"catalog/internal/database"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/pkg/rabbitmq"

	"github.com/go-extras/cobraflags"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	flags := withConfigFlag(nil)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the product catalog HTTP API",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			return serve(cfg, config.NewLogger(cfg.Logger))
		},
	}

	cobraflags.RegisterMap(serveCmd, flags)
	return serveCmd
}

func serve(cfg *config.Config, logger zerolog.Logger) error {
	// --- Repository ---
	repo, closeRepo, err := openRepository(cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	// --- Events ---
	// publisher stays a nil interface when RabbitMQ is not configured.
	var publisher services.EventPublisher
	if cfg.RabbitMQ.Enabled() {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Exchange: cfg.RabbitMQ.Exchange}, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		defer mqClient.Close()
		publisher = mqClient
	} else {
		logger.Info().Msg("RABBITMQ_URL not set, product events disabled")
	}

	application := app.NewApp(cfg, repo, publisher, logger)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	listenErr := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Server.Port).Bool("auth", cfg.Auth.Enabled).Msg("starting server")
		listenErr <- application.Listen(cfg.Server.Port)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down server")
	}

	if err := application.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error().Err(err).Msg("error during Fiber shutdown")
		return err
	}
	logger.Info().Msg("server gracefully stopped")
	return nil
}

// openRepository returns the product store selected by DB_DRIVER and a
// function releasing it.
func openRepository(cfg *config.Config, logger zerolog.Logger) (repositories.ProductRepository, func(), error) {
	if cfg.Database.Driver == config.DriverMemory {
		logger.Warn().Msg("using in-memory product store, data is lost on exit")
		return repositories.NewMemoryProductRepository(), func() {}, nil
	}

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if err := database.Close(db); err != nil {
			logger.Error().Err(err).Msg("error closing database")
		}
	}

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			closeDB()
			return nil, nil, err
		}
		logger.Info().Msg("database schema migrated")
	}

	return repositories.NewGORMProductRepository(db), closeDB, nil
}

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"catalog/internal/config"
	"catalog/internal/models"
	"catalog/pkg/rabbitmq"

	"github.com/go-extras/cobraflags"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const queueFlag = "queue"

func newEventsCommand() *cobra.Command {
	flags := withConfigFlag(map[string]cobraflags.Flag{
		queueFlag: &cobraflags.StringFlag{
			Name:  queueFlag,
			Value: "",
			Usage: "Durable queue to consume from. If empty, a temporary queue is used",
		},
	})

	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "Log product events published to RabbitMQ",
		Long: `Bind a queue to every product.* routing key on RABBITMQ_EXCHANGE and log
each product.created, product.updated and product.deleted event until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if !cfg.RabbitMQ.Enabled() {
				return fmt.Errorf("RABBITMQ_URL is required to consume product events")
			}

			logger := config.NewLogger(cfg.Logger)
			client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Exchange: cfg.RabbitMQ.Exchange}, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
			}
			defer client.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return client.ConsumeProductEvents(ctx, flags[queueFlag].GetString(), logEvent(logger))
		},
	}

	cobraflags.RegisterMap(eventsCmd, flags)
	return eventsCmd
}

func logEvent(logger zerolog.Logger) func(models.ProductEvent) error {
	return func(event models.ProductEvent) error {
		entry := logger.Info().
			Str("event_id", event.ID).
			Str("type", string(event.Type)).
			Uint("product_id", event.ProductID).
			Time("occurred_at", event.OccurredAt)
		if event.Product != nil {
			entry = entry.Str("name", event.Product.Name).Str("category", event.Product.Category.String())
		}
		entry.Msg("product event received")
		return nil
	}
}

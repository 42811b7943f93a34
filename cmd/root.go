package cmd

import (
	"context"

	"catalog/internal/config"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
)

const configFlag = "config"

// NewRootCommand builds the catalog command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Product catalog administration service",
		Long: `Product catalog administration service.

Configuration is read from environment variables (APP_PORT, DB_DRIVER,
DATABASE_DSN, RABBITMQ_URL, ...) and optionally from the file given by --config.

Available commands:
  serve          - Run the HTTP API
  migrate        - Create or update the database schema
  events         - Log product events published to RabbitMQ
  hash-password  - Print a bcrypt hash for ADMIN_PASSWORD_HASH`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newEventsCommand())
	rootCmd.AddCommand(newHashPasswordCommand())
	return rootCmd
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// withConfigFlag adds the --config flag to flags, which may be nil.
func withConfigFlag(flags map[string]cobraflags.Flag) map[string]cobraflags.Flag {
	if flags == nil {
		flags = map[string]cobraflags.Flag{}
	}
	flags[configFlag] = &cobraflags.StringFlag{
		Name:  configFlag,
		Value: "",
		Usage: "Path to a config file (yaml, json, toml or env)",
	}
	return flags
}

// loadConfig reads the configuration named by the --config flag in flags.
func loadConfig(flags map[string]cobraflags.Flag) (*config.Config, error) {
	v, err := config.New(flags[configFlag].GetString())
	if err != nil {
		return nil, err
	}
	return config.Load(v)
}

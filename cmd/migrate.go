package cmd

import (
	"fmt"

	"catalog/internal/config"
	"catalog/internal/database"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	flags := withConfigFlag(nil)

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the products table",
		Long: `Create or update the products table in the database named by DB_DRIVER
and DATABASE_DSN. The memory driver has no schema and is rejected.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if cfg.Database.Driver == config.DriverMemory {
				return fmt.Errorf("driver %s has no schema to migrate", cfg.Database.Driver)
			}

			logger := config.NewLogger(cfg.Logger)
			db, err := database.Open(cfg.Database, logger)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.Migrate(db); err != nil {
				return err
			}
			logger.Info().Str("driver", cfg.Database.Driver).Msg("database schema migrated")
			return nil
		},
	}

	cobraflags.RegisterMap(migrateCmd, flags)
	return migrateCmd
}

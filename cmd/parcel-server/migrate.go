package main

import (
	"fmt"

	"github.com/parcelhub/parcel-server/internal/config"
	"github.com/parcelhub/parcel-server/internal/database"
	"github.com/parcelhub/parcel-server/internal/logger"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Prepare the parcel store",
		Long: `Prepare the configured parcel store and exit.

For mongo the parcel indexes are created; for postgres the embedded tern
migrations are applied. The memory driver needs nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			log := logger.NewLoggerWithService(cfg.Observability, nil)

			if err := database.Migrate(cmd.Context(), &log, cfg); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}

			log.Info().Str("driver", cfg.Database.Driver).Msg("parcel store ready")
			return nil
		},
	}
}

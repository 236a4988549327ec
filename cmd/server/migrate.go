package main

import (
	"fmt"

	"expense_ledger/internal/config"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back the database schema",
		Long:      `Runs the embedded schema migrations against the configured Postgres database. Defaults to up.`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{config.MigrateUp, config.MigrateDown},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := config.MigrateUp
			if len(args) == 1 {
				direction = args[0]
			}
			if cfg.Storage != config.StoragePostgres {
				return fmt.Errorf("migrations need STORAGE=%s, got %q", config.StoragePostgres, cfg.Storage)
			}

			log.Info("running database migrations", "direction", direction)
			if err := config.RunMigrations(cfg.DatabaseURL, direction); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			return nil
		},
	}
}

package main

import (
	"context"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Bring the SQLite or Postgres schema up to date. The server runs the same
migrations on start; this command lets you apply them ahead of a deploy.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.DataBackend == "memory" {
				logger.Info("Memory backend has no schema, nothing to migrate")
				return nil
			}
			logger.Info("Running database migrations", "backend", cfg.DataBackend)
			// opening the store applies pending migrations
			err := withApp(cmd, func(context.Context, *cli.App) error { return nil })
			if err != nil {
				return err
			}
			logger.Info("Database migrations completed")
			return nil
		},
	}
}

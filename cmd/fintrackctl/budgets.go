package main

import (
	"context"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
)

func budgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "Inspect budgets",
	}

	progress := &cobra.Command{
		Use:   "progress",
		Short: "Show spending against each budget for a month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, month, err := scope(cmd)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				page, err := app.Budgets.Page(ctx, user, month)
				if err != nil {
					return err
				}
				return renderProgress(cmd.OutOrStdout(), page)
			})
		},
	}
	addScopeFlags(progress)
	cmd.AddCommand(progress)
	return cmd
}

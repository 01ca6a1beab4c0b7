package main

import (
	"context"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
)

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Inspect the monthly dashboard",
	}

	summary := &cobra.Command{
		Use:   "summary",
		Short: "Show totals, cash flow and spending by category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, month, err := scope(cmd)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				overview, err := app.Dashboard.Overview(ctx, user, month)
				if err != nil {
					return err
				}
				return renderOverview(cmd.OutOrStdout(), month, overview)
			})
		},
	}
	addScopeFlags(summary)
	cmd.AddCommand(summary)
	return cmd
}

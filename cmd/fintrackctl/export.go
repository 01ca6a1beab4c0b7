package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
	"fintrack/internal/report"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a month report as an XLSX workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, month, err := scope(cmd)
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				out = fmt.Sprintf("fintrack-%s.xlsx", month)
			}
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				r, err := app.Reports.Build(ctx, user, month)
				if err != nil {
					return err
				}
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				if err := report.WriteWorkbook(f, r); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("close %s: %w", out, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Wrote "+out))
				return nil
			})
		},
	}
	addScopeFlags(cmd)
	cmd.Flags().String("out", "", "output path (default: fintrack-YYYY-MM.xlsx)")
	return cmd
}

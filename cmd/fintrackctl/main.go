package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *applog.Logger
	now     = time.Now

	rootCmd = &cobra.Command{
		Use:   "fintrackctl",
		Short: "Operate a fintrack deployment from the command line",
		Long: `fintrackctl reads the same configuration as the fintrack server and works
directly against its store: run migrations, inspect budgets and the
dashboard, export a month workbook or mint API tokens.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML, JSON or TOML); environment variables override it")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(budgetsCmd())
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(tokenCmd())
}

func main() {
	cli.LoadEnvFile()

	ctx, cancel := context.WithCancel(context.Background())
	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFile(cfgFile)
		if err != nil {
			return err
		}
	} else {
		cfg = config.Load()
	}
	if level := viper.GetString("log_level"); level != "" {
		cfg.LogLevel = level
	}

	logger, err = cli.SetupLogger(cfg, applog.ComponentCLI)
	if err != nil {
		return err
	}
	return nil
}

// withApp opens the configured store without the event client and runs fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *cli.App) error) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	local := *cfg
	local.AMQPURL = ""

	ctx, cancel := cli.SignalContext(cmd.Context(), logger)
	defer cancel()

	b, err := cli.OpenBackend(ctx, &local, logger)
	if err != nil {
		return fmt.Errorf("open backend: %w", err)
	}
	defer func() { _ = b.Cleanup() }()

	return fn(ctx, cli.NewApp(b, local.RecentLimit))
}

// addScopeFlags registers --user and --month on cmd.
func addScopeFlags(cmd *cobra.Command) {
	cmd.Flags().String("user", "", "user ID (required)")
	cmd.Flags().String("month", "", "month as YYYY-MM (default: current month)")
	_ = cmd.MarkFlagRequired("user")
}

func scope(cmd *cobra.Command) (core.ID, core.MonthKey, error) {
	user, _ := cmd.Flags().GetString("user")
	user = strings.TrimSpace(user)
	if user == "" {
		return "", core.MonthKey{}, core.Invalid("user", core.ErrInvalidID)
	}
	raw, _ := cmd.Flags().GetString("month")
	if strings.TrimSpace(raw) == "" {
		return core.ID(user), core.CurrentMonth(now()), nil
	}
	month, err := core.ParseMonthKey(strings.TrimSpace(raw))
	if err != nil {
		return "", core.MonthKey{}, err
	}
	return core.ID(user), month, nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"expense_ledger/internal/config"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
	rootCmd = &cobra.Command{
		Use:   "expense-ledger",
		Short: "Personal expense ledger API",
		Long: `expense-ledger serves a per-user expense ledger over HTTP: budgets,
categories, dashboards, CSV export, receipt scanning, spending forecasts
and AI advice.

Run without a subcommand to start the API server.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
		RunE:              runServe,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml); environment variables override it")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := config.NewLogger(os.Stderr, loaded.LogLevel, loaded.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	log.SetDefault(logger)

	cfg = loaded
	return nil
}

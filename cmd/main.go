// Package main is the portfolio server and its operator commands.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/portfolio/internal/config"
	"github.com/okian/portfolio/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "portfolio",
	Short:         "Portfolio site backend",
	Long:          "Serves the portfolio page, accepts portfolio requests and collects theme alerts.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// initLogging applies the configured level and format to the global
// logger. An invalid level falls back to info.
func initLogging(ctx context.Context, cfg *config.Config) error {
	if err := logger.InitWithOptions(logger.Options{Format: cfg.LogFormat}); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
		logger.Get().Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
	}
	return nil
}

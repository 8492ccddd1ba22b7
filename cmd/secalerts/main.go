package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"secalerts/internal/app"
	"secalerts/internal/config"
	"secalerts/internal/logging"
)

var version = "dev"

func main() {
	var (
		configPath string
		once       bool
		dryRun     bool
		mode       string
		verbose    bool
	)

	rootCmd := &cobra.Command{
		Use:   "secalerts",
		Short: "Security feed aggregator with ntfy notifications",
		Long: `secalerts ingests security feeds (RSS, CISA KEV, NVD), suppresses
items already delivered, classifies the rest against a keyword and
severity policy, and notifies via ntfy.`,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config YAML file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run aggregation cycles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(configPath)
			level := cfg.Logging.Level
			if verbose {
				level = "debug"
			}
			logger := logging.New(level)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application := app.New(cfg, logger)
			if err := application.Run(ctx, app.RunOptions{
				Once:         once,
				DryRun:       dryRun,
				ModeOverride: mode,
			}); err != nil {
				logger.Error("run failed", "error", err)
				return err
			}
			return nil
		},
	}
	runCmd.Flags().BoolVar(&once, "once", false, "run one cycle and exit")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be sent without sending or committing")
	runCmd.Flags().StringVar(&mode, "mode", "", "override run mode (instant|digest)")
	rootCmd.AddCommand(runCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Print seen-store statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(configPath)
			application := app.New(cfg, logging.New(cfg.Logging.Level))
			count, err := application.SeenCount(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("seen items: %d\n", count)
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("secalerts %s\n", version)
		},
	})

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

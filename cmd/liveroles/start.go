package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/liveroles/internal/scheduler"
)

var (
	startEvery time.Duration
	startCron  string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the run daemon",
	Long: "Run once at startup and then on a schedule; blocks until SIGINT/SIGTERM. " +
		"Config, profile and overlay are reloaded before every run.",
	RunE: runStart,
}

func init() {
	startCmd.Flags().DurationVar(&startEvery, "every", 6*time.Hour, "interval between runs")
	startCmd.Flags().StringVar(&startCron, "cron", "", "cron expression, overrides --every (e.g. \"0 */4 * * *\")")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	// Fail fast on a broken config instead of on the first tick.
	if _, err := loadSession(logger); err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	spec, err := scheduler.Expression(startEvery, startCron)
	if err != nil {
		logger.Error("invalid schedule", "error", err)
		return err
	}

	sched, err := scheduler.NewScheduler(spec, func(ctx context.Context) error {
		s, err := loadSession(logger)
		if err != nil {
			return err
		}
		st, closeStore := openStore(s.cfg, false, logger)
		defer closeStore()
		_, err = newRunner(s, st, false, logger).Run(ctx)
		return err
	}, logger)
	if err != nil {
		logger.Error("invalid schedule", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		return err
	}

	logger.Info("goodbye")
	return nil
}

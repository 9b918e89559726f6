package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var dryRun bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one ingestion pass",
	Long:  "Fetch every source once, filter and age postings, probe for new sources, write the roles file and the registry.",
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	for _, cmd := range []*cobra.Command{rootCmd, runCmd} {
		cmd.Flags().BoolVar(&dryRun, "dry-run", false, "run the full pass but write nothing")
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	s, err := loadSession(logger)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	st, closeStore := openStore(s.cfg, dryRun, logger)
	defer closeStore()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sum, err := newRunner(s, st, dryRun, logger).Run(ctx)
	if err != nil {
		logger.Error("run failed", "error", err)
		return err
	}

	fmt.Printf("run %s: fetched %d, kept %d (%d stale), archived %d, discovered %d in %s\n",
		sum.RunID, sum.Fetched, sum.Kept, sum.Stale, sum.Archived, sum.Discovered, sum.TotalTime.Round(time.Millisecond))
	if sum.TimedOut {
		fmt.Println("fetch phase hit max_runtime; results are partial")
	}
	if sum.Written {
		fmt.Printf("wrote %s and %s\n", sum.OutputPath, sum.RegistryPath)
	}
	return nil
}

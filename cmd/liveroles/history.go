package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/liveroles/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent runs from the run ledger",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}
	if _, err := os.Stat(cfg.Paths.HistoryDB); errors.Is(err, os.ErrNotExist) {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	sqlStore, err := store.NewSQLiteStore(cfg.Paths.HistoryDB)
	if err != nil {
		logger.Error("failed to open run ledger", "error", err)
		return err
	}
	defer sqlStore.Close()

	runs, err := sqlStore.RecentRuns(historyLimit)
	if err != nil {
		logger.Error("failed to list runs", "error", err)
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Printf("%-20s %-10s %-16s %8s %6s %8s %9s %s\n",
		"Started", "Run", "Profile", "Fetched", "Kept", "Archived", "Duration", "Timed out")
	fmt.Println(strings.Repeat("─", 92))
	for _, r := range runs {
		timedOut := ""
		if r.TimedOut {
			timedOut = "yes"
		}
		fmt.Printf("%-20s %-10s %-16s %8d %6d %8d %9s %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			shortID(r.RunID),
			r.ProfileID,
			r.Fetched, r.Kept, r.Archived,
			(time.Duration(r.TotalMS) * time.Millisecond).Round(time.Second),
			timedOut,
		)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

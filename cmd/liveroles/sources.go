package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/liveroles/internal/pipeline"
	"github.com/amishk599/liveroles/internal/registry"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the sources the next run will crawl",
	Long:  "Resolves config, overlay, environment and registry into the run's source plan and prints a count per source.",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	s, err := loadSession(logger)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}
	reg := registry.Load(s.cfg.Paths.SourceRegistryFile, time.Now(), logger)
	counts := pipeline.Plan(s.cfg, s.profile, reg, s.overlay, s.env).SourceCounts()

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("%-28s %s\n", "Source", "Count")
	fmt.Println(strings.Repeat("─", 36))
	total := 0
	for _, name := range names {
		fmt.Printf("%-28s %d\n", name, counts[name])
		total += counts[name]
	}
	fmt.Printf("\nTotal: %d entries across %d sources (%d discovered companies)\n",
		total, len(names), len(reg.Discovered.CompanyNames))
	return nil
}

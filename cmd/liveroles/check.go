package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/liveroles/internal/registry"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate config, profile and registry, then exit",
	Long:  "Loads the config, profile, provider overlay and source registry and prints what a run would use. Makes no requests.",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	s, err := loadSession(logger)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}
	reg := registry.Load(s.cfg.Paths.SourceRegistryFile, time.Now(), logger)

	var active []string
	for _, b := range s.profile.ActiveBuckets() {
		active = append(active, b.ID)
	}

	fmt.Printf("OK config: %s\n", s.cfg.Path)
	fmt.Printf("OK profile: %s (%s)\n", s.profile.ID, s.profile.DisplayName)
	fmt.Printf("OK registry: %s\n", s.cfg.Paths.SourceRegistryFile)
	fmt.Printf("Active buckets: %s\n", strings.Join(active, ", "))
	fmt.Printf("Discovery enabled: %t\n", s.cfg.DiscoveryEnabled && reg.Meta.DiscoveryEnabled)
	fmt.Printf("API keys: serpapi=%s adzuna=%s jooble=%s\n",
		yesNo(s.env.HasSerpAPI()), yesNo(s.env.HasAdzuna()), yesNo(s.env.HasJooble()))
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

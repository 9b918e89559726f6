package main

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/liveroles/internal/adapter"
	"github.com/amishk599/liveroles/internal/config"
	"github.com/amishk599/liveroles/internal/discovery"
	"github.com/amishk599/liveroles/internal/model"
	"github.com/amishk599/liveroles/internal/pipeline"
	"github.com/amishk599/liveroles/internal/store"
)

const (
	defaultConfigPath       = "roles-kit/roles.config.yml"
	legacyDefaultConfigPath = "roles-kit/roles.config.json"
	defaultProvidersFile    = "providers.runtime.yml"
	defaultProfilesDir      = "profiles"

	historyRetention = 180 * 24 * time.Hour
)

var (
	cfgPath       string
	profilesDir   string
	providersPath string
	debug         bool
)

var rootCmd = &cobra.Command{
	Use:   "liveroles",
	Short: "Live job postings for static sites",
	Long: "liveroles pulls postings from ATS APIs, feeds, aggregators and search, scores them " +
		"against a role profile and keeps a dated roles file fresh across runs.",
	// Default to `run` so that `liveroles` with no args performs one pass.
	RunE:          runRun,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: LIVEROLES_CONFIG env var or ./"+defaultConfigPath+")")
	rootCmd.PersistentFlags().StringVar(&profilesDir, "profiles", "", "profiles directory (default: profiles/ beside the config)")
	rootCmd.PersistentFlags().StringVar(&providersPath, "providers", "", "runtime provider overlay (default: "+defaultProvidersFile+" beside the config)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > LIVEROLES_CONFIG env var > roles-kit/roles.config.yml,
// falling back to the legacy roles-kit/roles.config.json when only that exists.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv("LIVEROLES_CONFIG")
	}
	if path == "" {
		path = defaultConfigPath
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			if _, err := os.Stat(legacyDefaultConfigPath); err == nil {
				path = legacyDefaultConfigPath
			}
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// session is everything a command reads before it does any work.
type session struct {
	cfg     *config.Config
	profile *model.RoleProfile
	overlay config.Overlay
	env     config.Env
}

func loadSession(logger *slog.Logger) (*session, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(cfg.Path)

	profiles := profilesDir
	if profiles == "" {
		profiles = filepath.Join(dir, defaultProfilesDir)
	}
	profile, err := config.LoadProfile(profiles, cfg.ProfileID)
	if err != nil {
		return nil, err
	}

	overlayPath := providersPath
	if overlayPath == "" {
		overlayPath = filepath.Join(dir, defaultProvidersFile)
	}
	overlay, ok := config.LoadOverlay(overlayPath)
	if !ok {
		logger.Debug("no usable provider overlay, using defaults", "path", overlayPath)
	}

	logger.Info("config loaded",
		"config", cfg.Path,
		"profile", profile.ID,
		"buckets", len(profile.ActiveBuckets()),
		"output", cfg.Paths.OutputFile,
	)
	return &session{cfg: cfg, profile: profile, overlay: overlay, env: config.LoadEnv()}, nil
}

// openStore opens the run ledger. Dry runs and an unusable ledger get a
// no-op store; ledger problems never stop a run.
func openStore(cfg *config.Config, dryRun bool, logger *slog.Logger) (model.RunStore, func()) {
	if dryRun {
		logger.Info("dry-run mode enabled, nothing will be written")
		nop := store.NewNopStore()
		return nop, func() { nop.Close() }
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Paths.HistoryDB), 0o755); err != nil {
		logger.Warn("run ledger unavailable", "path", cfg.Paths.HistoryDB, "error", err)
		return store.NewNopStore(), func() {}
	}
	sqlStore, err := store.NewSQLiteStore(cfg.Paths.HistoryDB)
	if err != nil {
		logger.Warn("run ledger unavailable", "path", cfg.Paths.HistoryDB, "error", err)
		return store.NewNopStore(), func() {}
	}
	if err := sqlStore.Cleanup(historyRetention); err != nil {
		logger.Warn("pruning run ledger failed", "error", err)
	}
	return sqlStore, func() { sqlStore.Close() }
}

func newRunner(s *session, st model.RunStore, dryRun bool, logger *slog.Logger) *pipeline.Runner {
	client := pipeline.NewClient(s.cfg, logger)
	return pipeline.NewRunner(pipeline.Deps{
		Config:   s.cfg,
		Profile:  s.profile,
		Overlay:  s.overlay,
		Env:      s.env,
		Adapters: adapter.NewSet(client, pipeline.Credentials(s.env, s.overlay)),
		Prober:   discovery.NewProber(client, pipeline.ProbeConcurrency(s.cfg), logger),
		Store:    st,
		DryRun:   dryRun,
		Logger:   logger,
	})
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/amishk599/liveroles/internal/model"
)

// Schema versions accepted by Load. Legacy documents are migrated at load.
const (
	SchemaVersion       = "roles-kit.v1"
	LegacySchemaVersion = "roles-kit.v0"
	HugoSchemaVersion   = "hugo-live-roles-kit.v0.1"
)

const defaultHistoryDB = "liveroles.db"

// Config is the root configuration for a liveroles run.
type Config struct {
	Path             string // absolute path of the loaded file
	ProfileID        string `validate:"required"`
	Paths            Paths
	Knobs            Knobs
	DiscoveryEnabled bool
	Sources          Sources
}

// Paths are absolute, resolved against the config file's directory.
type Paths struct {
	OutputFile         string `validate:"required"`
	SourceRegistryFile string `validate:"required"`
	HistoryDB          string
}

// Knobs are the numeric run limits.
type Knobs struct {
	StaleAfterDays            int                  `validate:"min=0"`
	InactiveAfterDays         int                  `validate:"min=0"`
	InactiveAction            model.InactiveAction `validate:"oneof=archive hard_delete"`
	MaxRuntime                time.Duration        `validate:"gt=0"`
	RequestTimeout            time.Duration        `validate:"gt=0"`
	RequestDelay              time.Duration        `validate:"min=0"`
	MaxConcurrency            int                  `validate:"min=1"`
	MaxDiscoveryAddsPerSource int                  `validate:"min=0"`
	MaxProbeCandidates        int                  `validate:"min=0"`
	MaxSerpAPIQueriesPerRun   int                  `validate:"min=0"`
}

// Sources are the operator-configured sources and provider switches.
type Sources struct {
	GreenhouseCompanies      []string
	LeverCompanies           []string
	PersonioXMLFeeds         []string
	SmartRecruitersCompanies []string
	TeamtailorCompanies      []string
	RecruiteeCompanies       []string
	AshbyOrganizations       []string
	StepstoneFeeds           []string

	ArbeitnowEnabled         bool
	RemotiveEnabled          bool
	JobicyEnabled            bool
	AdzunaEnabled            bool
	JoobleEnabled            bool
	SerpGoogleJobsEnabled    bool
	SerpJobBoardsEnabled     bool
	SerpOfficialSitesEnabled bool
}

// rawConfig is used for YAML unmarshaling. Pointers distinguish "absent"
// from zero so defaults can be applied.
type rawConfig struct {
	SchemaVersion string `yaml:"schema_version"`
	ProfileID     string `yaml:"profile_id"`
	Paths         struct {
		OutputFile         string `yaml:"output_file"`
		SourceRegistryFile string `yaml:"source_registry_file"`
		HistoryDB          string `yaml:"history_db"`

		// roles-kit.v0 and hugo-live-roles-kit.v0.1 names, cleared by migrate.
		OutputJSON         string `yaml:"output_json"`
		SourceRegistryJSON string `yaml:"source_registry_json"`
	} `yaml:"paths"`
	Knobs struct {
		StaleAfterDays            *int    `yaml:"stale_after_days"`
		InactiveAfterDays         *int    `yaml:"inactive_after_days"`
		InactiveAction            *string `yaml:"inactive_action"`
		MaxRuntimeMS              *int    `yaml:"max_runtime_ms"`
		RequestTimeoutMS          *int    `yaml:"request_timeout_ms"`
		RequestDelayMS            *int    `yaml:"request_delay_ms"`
		MaxConcurrency            *int    `yaml:"max_concurrency"`
		MaxDiscoveryAddsPerSource *int    `yaml:"max_discovery_adds_per_source"`
		MaxProbeCandidates        *int    `yaml:"max_probe_candidates"`
		MaxSerpAPIQueriesPerRun   *int    `yaml:"max_serpapi_queries_per_run"`
	} `yaml:"knobs"`
	Discovery struct {
		Enabled *bool `yaml:"enabled"`
	} `yaml:"discovery"`
	Sources struct {
		GreenhouseCompanies      []string `yaml:"greenhouse_companies"`
		LeverCompanies           []string `yaml:"lever_companies"`
		PersonioXMLFeeds         []string `yaml:"personio_xml_feeds"`
		SmartRecruitersCompanies []string `yaml:"smartrecruiters_companies"`
		TeamtailorCompanies      []string `yaml:"teamtailor_companies"`
		RecruiteeCompanies       []string `yaml:"recruitee_companies"`
		AshbyOrganizations       []string `yaml:"ashby_organizations"`
		StepstoneFeeds           []string `yaml:"stepstone_feeds"`

		ArbeitnowEnabled         *bool `yaml:"arbeitnow_enabled"`
		RemotiveEnabled          *bool `yaml:"remotive_enabled"`
		JobicyEnabled            *bool `yaml:"jobicy_enabled"`
		AdzunaEnabled            *bool `yaml:"adzuna_enabled"`
		JoobleEnabled            *bool `yaml:"jooble_enabled"`
		SerpGoogleJobsEnabled    *bool `yaml:"serpapi_google_jobs_enabled"`
		SerpJobBoardsEnabled     *bool `yaml:"serpapi_job_board_search_enabled"`
		SerpOfficialSitesEnabled *bool `yaml:"serpapi_official_sites_search_enabled"`
	} `yaml:"sources"`
}

// Load reads the YAML or JSON config at path, migrates legacy documents,
// applies defaults and validates the result.
func Load(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := migrate(&raw); err != nil {
		return nil, fmt.Errorf("%s: %w", abs, err)
	}
	if raw.Paths.OutputFile == "" || raw.Paths.SourceRegistryFile == "" {
		return nil, fmt.Errorf("%s: paths.output_file and paths.source_registry_file are required", abs)
	}

	dir := filepath.Dir(abs)
	output := resolve(dir, raw.Paths.OutputFile)
	historyDB := filepath.Join(filepath.Dir(output), defaultHistoryDB)
	if raw.Paths.HistoryDB != "" {
		historyDB = resolve(dir, raw.Paths.HistoryDB)
	}

	k := raw.Knobs
	s := raw.Sources
	cfg := &Config{
		Path:      abs,
		ProfileID: raw.ProfileID,
		Paths: Paths{
			OutputFile:         output,
			SourceRegistryFile: resolve(dir, raw.Paths.SourceRegistryFile),
			HistoryDB:          historyDB,
		},
		Knobs: Knobs{
			StaleAfterDays:            intOr(k.StaleAfterDays, 7),
			InactiveAfterDays:         intOr(k.InactiveAfterDays, 21),
			InactiveAction:            model.InactiveAction(stringOr(k.InactiveAction, string(model.InactiveArchive))),
			MaxRuntime:                millis(intOr(k.MaxRuntimeMS, 240000)),
			RequestTimeout:            millis(intOr(k.RequestTimeoutMS, 12000)),
			RequestDelay:              millis(intOr(k.RequestDelayMS, 150)),
			MaxConcurrency:            intOr(k.MaxConcurrency, 8),
			MaxDiscoveryAddsPerSource: intOr(k.MaxDiscoveryAddsPerSource, 20),
			MaxProbeCandidates:        intOr(k.MaxProbeCandidates, 40),
			MaxSerpAPIQueriesPerRun:   intOr(k.MaxSerpAPIQueriesPerRun, 24),
		},
		DiscoveryEnabled: boolOr(raw.Discovery.Enabled, true),
		Sources: Sources{
			GreenhouseCompanies:      Unique(s.GreenhouseCompanies),
			LeverCompanies:           Unique(s.LeverCompanies),
			PersonioXMLFeeds:         Unique(s.PersonioXMLFeeds),
			SmartRecruitersCompanies: Unique(s.SmartRecruitersCompanies),
			TeamtailorCompanies:      Unique(s.TeamtailorCompanies),
			RecruiteeCompanies:       Unique(s.RecruiteeCompanies),
			AshbyOrganizations:       Unique(s.AshbyOrganizations),
			StepstoneFeeds:           Unique(s.StepstoneFeeds),
			ArbeitnowEnabled:         boolOr(s.ArbeitnowEnabled, false),
			RemotiveEnabled:          boolOr(s.RemotiveEnabled, true),
			JobicyEnabled:            boolOr(s.JobicyEnabled, true),
			AdzunaEnabled:            boolOr(s.AdzunaEnabled, true),
			JoobleEnabled:            boolOr(s.JoobleEnabled, true),
			SerpGoogleJobsEnabled:    boolOr(s.SerpGoogleJobsEnabled, true),
			SerpJobBoardsEnabled:     boolOr(s.SerpJobBoardsEnabled, true),
			SerpOfficialSitesEnabled: boolOr(s.SerpOfficialSitesEnabled, true),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", abs, err)
	}
	return cfg, nil
}

// migrate upgrades a legacy document in place to the current schema.
func migrate(raw *rawConfig) error {
	switch raw.SchemaVersion {
	case SchemaVersion:
		return nil
	case LegacySchemaVersion, HugoSchemaVersion:
		if raw.Paths.OutputFile == "" {
			raw.Paths.OutputFile = raw.Paths.OutputJSON
		}
		if raw.Paths.SourceRegistryFile == "" {
			raw.Paths.SourceRegistryFile = raw.Paths.SourceRegistryJSON
		}
		raw.Paths.OutputJSON, raw.Paths.SourceRegistryJSON = "", ""
		raw.SchemaVersion = SchemaVersion
		return nil
	default:
		return fmt.Errorf("unsupported schema_version %q (want %q)", raw.SchemaVersion, SchemaVersion)
	}
}

func validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Knobs.InactiveAfterDays < cfg.Knobs.StaleAfterDays {
		return fmt.Errorf("knobs.inactive_after_days (%d) must not be below knobs.stale_after_days (%d)",
			cfg.Knobs.InactiveAfterDays, cfg.Knobs.StaleAfterDays)
	}
	return nil
}

func resolve(dir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}

func millis(ms int) time.Duration { return time.Duration(ms) * time.Millisecond }

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func stringOr(v *string, def string) string {
	if v == nil || *v == "" {
		return def
	}
	return *v
}

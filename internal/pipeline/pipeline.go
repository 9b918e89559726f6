// Package pipeline runs one end-to-end ingestion pass:
// fetch → filter → reconcile → discover → accumulate → persist.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/liveroles/internal/adapter"
	"github.com/amishk599/liveroles/internal/config"
	"github.com/amishk599/liveroles/internal/discovery"
	"github.com/amishk599/liveroles/internal/fetch"
	"github.com/amishk599/liveroles/internal/filter"
	"github.com/amishk599/liveroles/internal/lifecycle"
	"github.com/amishk599/liveroles/internal/model"
	"github.com/amishk599/liveroles/internal/output"
	"github.com/amishk599/liveroles/internal/registry"
	"github.com/amishk599/liveroles/internal/retry"
	"github.com/amishk599/liveroles/internal/sources"
	"github.com/amishk599/liveroles/internal/transport"
)

// Deps are the collaborators of a Runner.
type Deps struct {
	Config   *config.Config
	Profile  *model.RoleProfile
	Overlay  config.Overlay
	Env      config.Env
	Adapters adapter.Set
	Prober   *discovery.Prober
	Store    model.RunStore
	DryRun   bool
	Now      func() time.Time
	Logger   *slog.Logger
}

// Summary is what a run reports back to its caller.
type Summary struct {
	RunID        string
	OutputPath   string
	RegistryPath string
	Fetched      int
	Kept         int
	Stale        int
	Archived     int
	Dropped      int
	Discovered   int
	TimedOut     bool
	FetchTime    time.Duration
	TotalTime    time.Duration
	Written      bool
}

// Runner owns the full pipeline for one profile.
type Runner struct {
	cfg      *config.Config
	profile  *model.RoleProfile
	overlay  config.Overlay
	env      config.Env
	adapters adapter.Set
	prober   *discovery.Prober
	store    model.RunStore
	dryRun   bool
	now      func() time.Time
	logger   *slog.Logger
}

// NewRunner creates a runner wired with all its dependencies.
func NewRunner(d Deps) *Runner {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Runner{
		cfg:      d.Config,
		profile:  d.Profile,
		overlay:  d.Overlay,
		env:      d.Env,
		adapters: d.Adapters,
		prober:   d.Prober,
		store:    d.Store,
		dryRun:   d.DryRun,
		now:      now,
		logger:   d.Logger,
	}
}

// NewClient builds the shared transport client from the config knobs.
// Retries back off from the request delay.
func NewClient(cfg *config.Config, logger *slog.Logger) *transport.Client {
	policy := retry.DefaultPolicy()
	if cfg.Knobs.RequestDelay > 0 {
		policy.BaseDelay = cfg.Knobs.RequestDelay
	}
	return transport.New(&http.Client{}, transport.Options{
		Timeout: cfg.Knobs.RequestTimeout,
		Delay:   cfg.Knobs.RequestDelay,
		Retry:   policy,
	}, logger)
}

// Credentials collects the keyed provider settings from env and overlay.
func Credentials(env config.Env, ov config.Overlay) adapter.Credentials {
	return adapter.Credentials{
		AdzunaAppID:  env.AdzunaAppID,
		AdzunaAppKey: env.AdzunaAppKey,
		JoobleAPIKey: env.JoobleAPIKey,
		Serp: adapter.SerpSettings{
			APIKey: env.SerpAPIKey,
			GL:     ov.Providers.SerpGL,
			HL:     ov.Providers.SerpHL,
		},
	}
}

// ProbeConcurrency is the number of discovery candidates probed at once.
func ProbeConcurrency(cfg *config.Config) int {
	return max(1, cfg.Knobs.MaxConcurrency/2)
}

// Plan resolves the sources of a run and adds the search queries and career
// pages generated from the profile.
func Plan(cfg *config.Config, profile *model.RoleProfile, reg model.SourceRegistry, ov config.Overlay, env config.Env) sources.Plan {
	plan := sources.Resolve(cfg, reg, ov, env)
	return plan.WithGenerated(profile, plan.SeedCompanies(reg), cfg.Knobs.MaxSerpAPIQueriesPerRun, cfg.Knobs.MaxProbeCandidates)
}

// Run executes one pass. Provider and ledger failures are logged; only
// unusable profiles and failed writes are returned as errors.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	start := r.now()
	runID := uuid.NewString()
	logger := r.logger.With("run_id", runID, "profile", r.profile.ID)
	knobs := r.cfg.Knobs

	engine, err := filter.NewEngine(r.profile)
	if err != nil {
		return Summary{}, fmt.Errorf("run %s: %w", runID, err)
	}

	reg := registry.Load(r.cfg.Paths.SourceRegistryFile, start, logger)
	plan := Plan(r.cfg, r.profile, reg, r.overlay, r.env)

	logger.Info("resolved sources",
		"greenhouse", len(plan.Greenhouse),
		"lever", len(plan.Lever),
		"personio", len(plan.Personio),
		"smartrecruiters", len(plan.SmartRecruiters),
		"teamtailor", len(plan.Teamtailor),
		"recruitee", len(plan.Recruitee),
		"ashby", len(plan.Ashby),
		"stepstone", len(plan.Stepstone),
		"queries", len(plan.SearchQueries),
		"official_pages", len(plan.OfficialCareerPages),
		"serpapi_key", plan.HasSerpAPI,
	)

	fetched := fetch.New(r.adapters, fetch.Options{
		MaxConcurrency: knobs.MaxConcurrency,
		MaxRuntime:     knobs.MaxRuntime,
		MaxSerpQueries: knobs.MaxSerpAPIQueriesPerRun,
	}, logger).Run(ctx, plan)

	now := r.now()
	prior := output.ReadPrior(r.cfg.Paths.OutputFile, logger)
	policy := lifecycle.Policy{
		StaleAfterDays:    knobs.StaleAfterDays,
		InactiveAfterDays: knobs.InactiveAfterDays,
		Action:            knobs.InactiveAction,
	}

	doc := &model.OutputDocument{
		SchemaVersion: model.OutputSchemaVersion,
		RunID:         runID,
		ProfileID:     r.profile.ID,
		ProfileName:   r.profile.DisplayName,
		GeneratedAt:   model.FormatTimestamp(now),
		Buckets:       make(map[string][]model.DatedPosting),
		Archive:       make(map[string][]model.DatedPosting),
		Meta: model.OutputMeta{
			StaleAfterDays:    knobs.StaleAfterDays,
			InactiveAfterDays: knobs.InactiveAfterDays,
			InactiveAction:    knobs.InactiveAction,
			SourceCounts:      plan.SourceCounts(),
			FetchedCounts:     fetched.Fetched,
			StaleCounts:       make(map[string]int),
			InactiveCounts:    make(map[string]int),
			FetchTimedOut:     fetched.TimedOut,
		},
	}

	sum := Summary{
		RunID:        runID,
		OutputPath:   r.cfg.Paths.OutputFile,
		RegistryPath: r.cfg.Paths.SourceRegistryFile,
		Fetched:      len(fetched.Postings),
		TimedOut:     fetched.TimedOut,
		FetchTime:    fetched.Duration,
	}

	for _, bucket := range r.profile.ActiveBuckets() {
		scored, err := engine.Apply(fetched.Postings, bucket)
		if err != nil {
			return Summary{}, fmt.Errorf("run %s: %w", runID, err)
		}
		part := lifecycle.Reconcile(output.PriorBucket(prior, bucket.ID), scored, now, policy)

		doc.Buckets[bucket.ID] = orEmpty(part.Active)
		doc.Archive[bucket.ID] = orEmpty(part.Archive)
		doc.Meta.StaleCounts[bucket.ID] = part.StaleCount()
		doc.Meta.InactiveCounts[bucket.ID] = len(part.Archive)

		sum.Kept += len(part.Active)
		sum.Stale += part.StaleCount()
		sum.Archived += len(part.Archive)
		sum.Dropped += part.Dropped

		logger.Debug("reconciled bucket",
			"bucket", bucket.ID,
			"matched", len(scored),
			"active", len(part.Active),
			"archived", len(part.Archive),
			"dropped", part.Dropped,
		)
	}

	found := r.discover(ctx, reg, fetched.Postings, plan)
	sum.Discovered = len(found.CompanyNames)
	nextReg := registry.Accumulate(reg, found, registry.Limits{
		MaxAdds:            knobs.MaxDiscoveryAddsPerSource,
		DiscoveryEnabled:   r.cfg.DiscoveryEnabled,
		MaxProbeCandidates: knobs.MaxProbeCandidates,
	}, now)

	sum.TotalTime = r.now().Sub(start)
	doc.Meta.TimingsMS = map[string]int64{
		"fetch": fetched.Duration.Milliseconds(),
		"total": sum.TotalTime.Milliseconds(),
	}

	if r.dryRun {
		if err := output.Validate(doc); err != nil {
			return sum, fmt.Errorf("run %s: %w", runID, err)
		}
		logger.Info("dry run, skipping writes")
	} else {
		if err := output.Write(r.cfg.Paths.OutputFile, doc); err != nil {
			return sum, fmt.Errorf("run %s: writing output: %w", runID, err)
		}
		if err := registry.Save(r.cfg.Paths.SourceRegistryFile, nextReg); err != nil {
			return sum, fmt.Errorf("run %s: writing registry: %w", runID, err)
		}
		sum.Written = true
	}

	r.record(logger, sum, start, plan)

	logger.Info("run complete",
		"fetched", sum.Fetched,
		"kept", sum.Kept,
		"stale", sum.Stale,
		"archived", sum.Archived,
		"discovered", sum.Discovered,
		"timed_out", sum.TimedOut,
		"duration", sum.TotalTime.Round(time.Millisecond),
	)
	return sum, nil
}

// discover probes the companies seen in this run. It returns empty lists
// when discovery is switched off or no prober is wired.
func (r *Runner) discover(ctx context.Context, reg model.SourceRegistry, postings []model.Posting, plan sources.Plan) model.SourceLists {
	if r.prober == nil {
		return model.SourceLists{}
	}
	return r.prober.Discover(ctx, discovery.Input{
		Enabled:       r.cfg.DiscoveryEnabled && reg.Meta.DiscoveryEnabled,
		Registry:      reg,
		Observed:      observedCompanies(postings),
		MaxCandidates: registry.ProbeBudget(reg.Meta.MaxProbeCandidates, r.cfg.Knobs.MaxProbeCandidates),
		SearchQueries: plan.SearchQueries,
		CareerPages:   plan.OfficialCareerPages,
	})
}

func (r *Runner) record(logger *slog.Logger, sum Summary, start time.Time, plan sources.Plan) {
	if r.store == nil {
		return
	}
	err := r.store.RecordRun(model.RunRecord{
		RunID:        sum.RunID,
		ProfileID:    r.profile.ID,
		StartedAt:    start,
		FinishedAt:   start.Add(sum.TotalTime),
		Fetched:      sum.Fetched,
		Kept:         sum.Kept,
		Archived:     sum.Archived,
		FetchMS:      sum.FetchTime.Milliseconds(),
		TotalMS:      sum.TotalTime.Milliseconds(),
		TimedOut:     sum.TimedOut,
		SourceCounts: plan.SourceCounts(),
	})
	if err != nil {
		logger.Warn("recording run failed", "error", err)
	}
}

func observedCompanies(postings []model.Posting) []string {
	names := make([]string, 0, len(postings))
	for _, p := range postings {
		names = append(names, strings.TrimSpace(p.Company))
	}
	return config.Unique(names)
}

func orEmpty(ds []model.DatedPosting) []model.DatedPosting {
	if ds == nil {
		return []model.DatedPosting{}
	}
	return ds
}

// Package fetch runs every provider adapter against the run's source plan
// with bounded concurrency and a phase deadline.
package fetch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/liveroles/internal/adapter"
	"github.com/amishk599/liveroles/internal/model"
	"github.com/amishk599/liveroles/internal/sources"
)

const (
	maxParallelCategories = 4
	queriesPerCountry     = 4

	defaultAggregatorQuery = "software engineer"
	defaultCountryQuery    = "software engineer germany"
)

// Options bounds one fetch phase.
type Options struct {
	MaxConcurrency int
	MaxRuntime     time.Duration
	MaxSerpQueries int
}

// Result is the outcome of one fetch phase.
type Result struct {
	Postings []model.Posting
	Fetched  map[string]int // postings returned per provider, before dedup
	Failures map[string]int // failed tasks per provider
	TimedOut bool
	Duration time.Duration
}

// Orchestrator fans a Plan out over the adapter set.
type Orchestrator struct {
	adapters adapter.Set
	opts     Options
	logger   *slog.Logger
}

// New creates an Orchestrator.
func New(adapters adapter.Set, opts Options, logger *slog.Logger) *Orchestrator {
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = 1
	}
	return &Orchestrator{adapters: adapters, opts: opts, logger: logger}
}

type task struct {
	kind   model.ProviderKind
	target model.Target
}

// category is a group of tasks sharing one concurrency ceiling.
type category struct {
	name  string
	limit int
	tasks []task
}

// taskResult is the slot a single task writes to.
type taskResult struct {
	postings []model.Posting
	err      error
	done     bool
}

// Run fetches every task of the plan. Adapter failures are logged and
// counted, never returned. When MaxRuntime elapses, in-flight requests are
// cancelled and whatever completed is used.
func (o *Orchestrator) Run(ctx context.Context, plan sources.Plan) Result {
	start := time.Now()

	phaseCtx := ctx
	if o.opts.MaxRuntime > 0 {
		var cancel context.CancelFunc
		phaseCtx, cancel = context.WithTimeout(ctx, o.opts.MaxRuntime)
		defer cancel()
	}

	cats := o.categories(plan)
	slots := make([][]taskResult, len(cats))
	for i, c := range cats {
		slots[i] = make([]taskResult, len(c.tasks))
	}

	var outer errgroup.Group
	outer.SetLimit(maxParallelCategories)
	for i, c := range cats {
		outer.Go(func() error {
			o.runCategory(phaseCtx, c, slots[i])
			return nil
		})
	}

	// Every adapter call observes phaseCtx, so Wait returns shortly after
	// the deadline even when requests were in flight.
	_ = outer.Wait()

	res := Result{
		Fetched:  make(map[string]int),
		Failures: make(map[string]int),
		TimedOut: errors.Is(phaseCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil,
	}
	var all []model.Posting
	for i, c := range cats {
		for j, slot := range slots[i] {
			kind := string(c.tasks[j].kind)
			if slot.err != nil {
				res.Failures[kind]++
				continue
			}
			if slot.done {
				res.Fetched[kind] += len(slot.postings)
				all = append(all, slot.postings...)
			}
		}
	}
	res.Postings = Dedupe(all)
	res.Duration = time.Since(start)

	o.logger.Info("fetch complete",
		"tasks", countTasks(cats),
		"fetched", len(all),
		"unique", len(res.Postings),
		"timed_out", res.TimedOut,
		"duration", res.Duration.Round(time.Millisecond),
	)
	return res
}

func (o *Orchestrator) runCategory(ctx context.Context, c category, slots []taskResult) {
	o.logger.Debug("fetching category", "category", c.name, "tasks", len(c.tasks), "limit", c.limit)
	var g errgroup.Group
	g.SetLimit(c.limit)
	for i, t := range c.tasks {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			postings, err := o.adapters[t.kind].Fetch(ctx, t.target)
			if err != nil {
				o.logger.Warn("fetch failed",
					"provider", t.kind,
					"target", t.target.String(),
					"error", err,
				)
				slots[i] = taskResult{err: err}
				return nil
			}
			o.logger.Debug("fetched",
				"provider", t.kind,
				"target", t.target.String(),
				"count", len(postings),
			)
			slots[i] = taskResult{postings: postings, done: true}
			return nil
		})
	}
	_ = g.Wait()
}

// categories turns the plan into task groups. Providers that are disabled,
// unregistered or missing credentials contribute no tasks.
func (o *Orchestrator) categories(plan sources.Plan) []category {
	full := o.opts.MaxConcurrency
	half := max(1, o.opts.MaxConcurrency/2)

	queries := normalizedQueries(plan.SearchQueries)
	serpQueries := queries
	if len(serpQueries) == 0 {
		serpQueries = []string{defaultCountryQuery}
	}
	serpQueries = head(serpQueries, o.opts.MaxSerpQueries)
	organicQueries := head(queries, o.opts.MaxSerpQueries)

	aggQueries := head(queries, queriesPerCountry)
	if len(aggQueries) == 0 {
		aggQueries = []string{defaultAggregatorQuery}
	}

	var cats []category
	add := func(name string, limit int, kind model.ProviderKind, targets []model.Target) {
		if !o.adapters.Available(kind) || len(targets) == 0 {
			return
		}
		c := category{name: name, limit: limit}
		for _, t := range targets {
			c.tasks = append(c.tasks, task{kind: kind, target: t})
		}
		cats = append(cats, c)
	}

	add("greenhouse", full, model.KindGreenhouse, ids(plan.Greenhouse))
	add("lever", full, model.KindLever, ids(plan.Lever))
	add("smartrecruiters", full, model.KindSmartRecruiters, ids(plan.SmartRecruiters))
	add("teamtailor", full, model.KindTeamtailor, ids(plan.Teamtailor))
	add("recruitee", full, model.KindRecruitee, ids(plan.Recruitee))
	add("ashby", full, model.KindAshby, ids(plan.Ashby))
	add("personio", half, model.KindPersonio, ids(plan.Personio))
	add("stepstone", half, model.KindStepstone, ids(plan.Stepstone))

	single := []model.Target{{}}
	if plan.Arbeitnow {
		add("arbeitnow", 1, model.KindArbeitnow, single)
	}
	if plan.Remotive {
		add("remotive", 1, model.KindRemotive, single)
	}
	if plan.Jobicy {
		add("jobicy", 1, model.KindJobicy, single)
	}
	if plan.Adzuna {
		add("adzuna", half, model.KindAdzuna, countryTargets(plan.AdzunaCountries, aggQueries))
	}
	if plan.Jooble {
		add("jooble", half, model.KindJooble, countryTargets(plan.JoobleCountries, aggQueries))
	}
	if plan.SerpGoogleJobs {
		add("serpapi-google-jobs", half, model.KindSerpGoogleJobs, ids(serpQueries))
	}
	if plan.SerpJobBoards {
		add("serpapi-job-boards", half, model.KindSerpJobBoards, ids(organicQueries))
	}
	if plan.SerpOfficialSites {
		add("serpapi-official-sites", half, model.KindSerpOfficialSites, ids(organicQueries))
	}
	if plan.FetchesOfficialPages() {
		add("official-career-pages", half, model.KindOfficialJSONLD, ids(plan.OfficialCareerPages))
	}
	return cats
}

// Dedupe drops invalid postings and keeps the first posting per
// normalized source, company, title, location and url.
func Dedupe(postings []model.Posting) []model.Posting {
	seen := make(map[string]struct{}, len(postings))
	out := make([]model.Posting, 0, len(postings))
	for _, p := range postings {
		if !p.Valid() {
			continue
		}
		key := p.SourceKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

func normalizedQueries(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	var out []string
	for _, q := range raw {
		q = model.Normalize(q)
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
	}
	return out
}

func countryTargets(countries, queries []string) []model.Target {
	var out []model.Target
	for _, c := range countries {
		for _, q := range queries {
			out = append(out, model.Target{ID: q, Country: c})
		}
	}
	return out
}

func ids(list []string) []model.Target {
	out := make([]model.Target, 0, len(list))
	for _, id := range list {
		out = append(out, model.Target{ID: id})
	}
	return out
}

func head(list []string, n int) []string {
	if n < 0 {
		n = 0
	}
	if len(list) > n {
		return list[:n]
	}
	return list
}

func countTasks(cats []category) int {
	n := 0
	for _, c := range cats {
		n += len(c.tasks)
	}
	return n
}

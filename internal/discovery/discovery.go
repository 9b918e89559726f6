// Package discovery probes companies seen during a run to find which
// providers host their job boards.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/liveroles/internal/config"
	"github.com/amishk599/liveroles/internal/model"
	"github.com/amishk599/liveroles/internal/sources"
	"github.com/amishk599/liveroles/internal/transport"
)

const probesPerCandidate = 6

const (
	smartRecruitersProbeURL = "https://api.smartrecruiters.com/v1/companies/%s/postings?limit=1"
	teamtailorProbeURL      = "https://%s.teamtailor.com/jobs.json"
	recruiteeProbeURL       = "https://%s.recruitee.com/api/offers/"
	ashbyProbeURL           = "https://api.ashbyhq.com/posting-api/job-board/%s"
	personioDEFeedURL       = "https://%s.jobs.personio.de/xml"
	personioCOMFeedURL      = "https://%s.jobs.personio.com/xml"
)

var positionTag = regexp.MustCompile(`(?i)<position\b`)

// Input describes one discovery pass.
type Input struct {
	Enabled       bool // config and registry both allow discovery
	Registry      model.SourceRegistry
	Observed      []string // company names seen in this run's postings
	MaxCandidates int
	SearchQueries []string // passed through to the registry
	CareerPages   []string // passed through to the registry
}

// Result records which providers answered for one slug.
type Result struct {
	Slug            string
	SmartRecruiters bool
	Teamtailor      bool
	Recruitee       bool
	Ashby           bool
	PersonioDE      bool
	PersonioCOM     bool
}

// Any reports whether at least one probe succeeded.
func (r Result) Any() bool {
	return r.SmartRecruiters || r.Teamtailor || r.Recruitee || r.Ashby || r.PersonioDE || r.PersonioCOM
}

// Prober runs provider probes over a shared transport client.
type Prober struct {
	client      *transport.Client
	concurrency int
	logger      *slog.Logger
}

// NewProber creates a Prober that checks up to concurrency candidates at once.
func NewProber(client *transport.Client, concurrency int, logger *slog.Logger) *Prober {
	return &Prober{client: client, concurrency: max(1, concurrency), logger: logger}
}

// Discover probes the run's unknown companies. A disabled pass returns empty
// lists without any request.
func (p *Prober) Discover(ctx context.Context, in Input) model.SourceLists {
	if !in.Enabled {
		return model.SourceLists{}
	}
	candidates := Candidates(in.Registry, in.Observed, in.MaxCandidates)
	results := p.ProbeAll(ctx, candidates)

	var found model.SourceLists
	for _, r := range results {
		if r.Any() {
			found.CompanyNames = append(found.CompanyNames, r.Slug)
		}
		if r.SmartRecruiters {
			found.SmartRecruitersCompanies = append(found.SmartRecruitersCompanies, r.Slug)
		}
		if r.Teamtailor {
			found.TeamtailorCompanies = append(found.TeamtailorCompanies, r.Slug)
		}
		if r.Recruitee {
			found.RecruiteeCompanies = append(found.RecruiteeCompanies, r.Slug)
		}
		if r.Ashby {
			found.AshbyOrganizations = append(found.AshbyOrganizations, r.Slug)
		}
		if r.PersonioDE {
			found.PersonioXMLFeeds = append(found.PersonioXMLFeeds, fmt.Sprintf(personioDEFeedURL, r.Slug))
		}
		if r.PersonioCOM {
			found.PersonioXMLFeeds = append(found.PersonioXMLFeeds, fmt.Sprintf(personioCOMFeedURL, r.Slug))
		}
	}
	found.SearchQueries = in.SearchQueries
	found.OfficialCareerPages = in.CareerPages

	p.logger.Info("discovery complete",
		"candidates", len(candidates),
		"companies", len(found.CompanyNames),
		"personio_feeds", len(found.PersonioXMLFeeds),
	)
	return found
}

// Candidates returns the slugs of observed companies the registry does not
// know yet, capped at max(1, limit).
func Candidates(reg model.SourceRegistry, observed []string, limit int) []string {
	known := make(map[string]bool)
	for _, c := range []model.Category{
		model.CategoryCompanyNames,
		model.CategorySmartRecruiters,
		model.CategoryTeamtailor,
		model.CategoryRecruitee,
		model.CategoryAshby,
	} {
		for _, name := range reg.All(c) {
			known[sources.Slugify(name)] = true
		}
	}

	var slugs []string
	for _, name := range observed {
		slug := sources.Slugify(name)
		if slug == "" || known[slug] {
			continue
		}
		slugs = append(slugs, slug)
	}
	slugs = config.Unique(slugs)
	if n := max(1, limit); len(slugs) > n {
		slugs = slugs[:n]
	}
	return slugs
}

// ProbeAll probes every slug, returning results in slug order.
func (p *Prober) ProbeAll(ctx context.Context, slugs []string) []Result {
	results := make([]Result, len(slugs))
	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, slug := range slugs {
		g.Go(func() error {
			results[i] = p.Probe(ctx, slug)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Probe runs all six provider probes for one slug. A failed probe is false.
func (p *Prober) Probe(ctx context.Context, slug string) Result {
	r := Result{Slug: slug}
	var g errgroup.Group
	g.SetLimit(probesPerCandidate)
	g.Go(func() error {
		r.SmartRecruiters = p.probeJSON(ctx, model.KindSmartRecruiters, fmt.Sprintf(smartRecruitersProbeURL, slug), hasContent)
		return nil
	})
	g.Go(func() error {
		r.Teamtailor = p.probeJSON(ctx, model.KindTeamtailor, fmt.Sprintf(teamtailorProbeURL, slug), hasJobs)
		return nil
	})
	g.Go(func() error {
		r.Recruitee = p.probeJSON(ctx, model.KindRecruitee, fmt.Sprintf(recruiteeProbeURL, slug), hasOffers)
		return nil
	})
	g.Go(func() error {
		r.Ashby = p.probeJSON(ctx, model.KindAshby, fmt.Sprintf(ashbyProbeURL, slug), hasJobs)
		return nil
	})
	g.Go(func() error {
		r.PersonioDE = p.probeFeed(ctx, fmt.Sprintf(personioDEFeedURL, slug))
		return nil
	})
	g.Go(func() error {
		r.PersonioCOM = p.probeFeed(ctx, fmt.Sprintf(personioCOMFeedURL, slug))
		return nil
	})
	_ = g.Wait()

	p.logger.Debug("probed", "slug", slug, "found", r.Any())
	return r
}

func (p *Prober) probeJSON(ctx context.Context, kind model.ProviderKind, url string, ok func(json.RawMessage) bool) bool {
	var body json.RawMessage
	if err := p.client.GetJSON(ctx, string(kind), url, &body); err != nil {
		p.logger.Debug("probe failed", "provider", kind, "url", url, "error", err)
		return false
	}
	return ok(body)
}

func (p *Prober) probeFeed(ctx context.Context, url string) bool {
	body, err := p.client.GetText(ctx, string(model.KindPersonio), url, transport.AcceptXML)
	if err != nil {
		p.logger.Debug("probe failed", "provider", model.KindPersonio, "url", url, "error", err)
		return false
	}
	return positionTag.MatchString(body)
}

// hasContent: {"content": [..]} with at least one element.
func hasContent(body json.RawMessage) bool {
	var v struct {
		Content []json.RawMessage `json:"content"`
	}
	return json.Unmarshal(body, &v) == nil && len(v.Content) > 0
}

// hasOffers: {"offers": [..]} with at least one element.
func hasOffers(body json.RawMessage) bool {
	var v struct {
		Offers []json.RawMessage `json:"offers"`
	}
	return json.Unmarshal(body, &v) == nil && len(v.Offers) > 0
}

// hasJobs accepts a non-empty top-level array or {"jobs": [..]}.
func hasJobs(body json.RawMessage) bool {
	var list []json.RawMessage
	if json.Unmarshal(body, &list) == nil {
		return len(list) > 0
	}
	var v struct {
		Jobs []json.RawMessage `json:"jobs"`
	}
	return json.Unmarshal(body, &v) == nil && len(v.Jobs) > 0
}

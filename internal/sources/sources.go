// Package sources resolves what a run crawls: configured sources, runtime
// overlay extras, environment lists and the registry, plus search queries
// and career pages generated from the profile.
package sources

import (
	"regexp"
	"strings"

	"github.com/amishk599/liveroles/internal/config"
	"github.com/amishk599/liveroles/internal/model"
)

// Plan is the fully resolved source list for one run.
type Plan struct {
	Greenhouse      []string
	Lever           []string
	Personio        []string
	SmartRecruiters []string
	Teamtailor      []string
	Recruitee       []string
	Ashby           []string
	Stepstone       []string

	OfficialCareerPages []string
	SearchQueries       []string

	Arbeitnow         bool
	Remotive          bool
	Jobicy            bool
	Adzuna            bool
	Jooble            bool
	SerpGoogleJobs    bool
	SerpJobBoards     bool
	SerpOfficialSites bool

	SerpGL          string
	SerpHL          string
	AdzunaCountries []string
	JoobleCountries []string

	HasSerpAPI bool
}

// Resolve merges every source origin. Lists keep first-seen order: config,
// overlay, environment, explicit registry, discovered registry.
func Resolve(cfg *config.Config, reg model.SourceRegistry, ov config.Overlay, env config.Env) Plan {
	merged := func(fromConfig []string, c model.Category) []string {
		return config.Unique(fromConfig, ov.ExtraSources.Get(c), env.Sources.Get(c), reg.Explicit.Get(c), reg.Discovered.Get(c))
	}
	s := cfg.Sources
	return Plan{
		Greenhouse:          config.Unique(s.GreenhouseCompanies),
		Lever:               config.Unique(s.LeverCompanies),
		Personio:            merged(s.PersonioXMLFeeds, model.CategoryPersonioFeeds),
		SmartRecruiters:     merged(s.SmartRecruitersCompanies, model.CategorySmartRecruiters),
		Teamtailor:          merged(s.TeamtailorCompanies, model.CategoryTeamtailor),
		Recruitee:           merged(s.RecruiteeCompanies, model.CategoryRecruitee),
		Ashby:               merged(s.AshbyOrganizations, model.CategoryAshby),
		Stepstone:           merged(s.StepstoneFeeds, model.CategoryStepstoneFeeds),
		OfficialCareerPages: merged(nil, model.CategoryOfficialCareerPages),
		SearchQueries:       merged(nil, model.CategorySearchQueries),

		Arbeitnow:         s.ArbeitnowEnabled,
		Remotive:          s.RemotiveEnabled,
		Jobicy:            s.JobicyEnabled,
		Adzuna:            s.AdzunaEnabled,
		Jooble:            s.JoobleEnabled,
		SerpGoogleJobs:    s.SerpGoogleJobsEnabled,
		SerpJobBoards:     s.SerpJobBoardsEnabled,
		SerpOfficialSites: s.SerpOfficialSitesEnabled,

		SerpGL:          ov.Providers.SerpGL,
		SerpHL:          ov.Providers.SerpHL,
		AdzunaCountries: ov.Providers.AdzunaCountries,
		JoobleCountries: ov.Providers.JoobleCountries,

		HasSerpAPI: env.HasSerpAPI(),
	}
}

// UsesSerpQueries reports whether any SerpAPI provider will run.
func (p Plan) UsesSerpQueries() bool {
	return p.HasSerpAPI && (p.SerpGoogleJobs || p.SerpJobBoards || p.SerpOfficialSites)
}

// FetchesOfficialPages reports whether career pages will be crawled.
func (p Plan) FetchesOfficialPages() bool {
	return p.HasSerpAPI && p.SerpOfficialSites
}

// SeedCompanies lists the companies known before this run's fetch.
func (p Plan) SeedCompanies(reg model.SourceRegistry) []string {
	return config.Unique(
		reg.All(model.CategoryCompanyNames),
		p.Greenhouse, p.Lever, p.SmartRecruiters, p.Teamtailor, p.Recruitee, p.Ashby,
	)
}

// WithGenerated returns a copy of p whose search queries and career pages
// include ones generated from the profile and seed companies. Queries are
// capped at maxQueries and pages at maxPages.
func (p Plan) WithGenerated(profile *model.RoleProfile, seeds []string, maxQueries, maxPages int) Plan {
	var queries, pages []string
	if p.UsesSerpQueries() {
		queries = BuildSearchQueries(profile, seeds, maxQueries)
	}
	if p.FetchesOfficialPages() {
		pages = BuildCareerPages(seeds, maxPages)
	}
	p.SearchQueries = limit(config.Unique(p.SearchQueries, queries), maxQueries)
	p.OfficialCareerPages = limit(config.Unique(p.OfficialCareerPages, pages), maxPages)
	return p
}

// SourceCounts summarizes the plan for the output metadata: list sizes for
// list-driven providers, 0 or 1 for switch-driven ones.
func (p Plan) SourceCounts() map[string]int {
	return map[string]int{
		"greenhouse":                len(p.Greenhouse),
		"lever":                     len(p.Lever),
		"personio_xml_feeds":        len(p.Personio),
		"smartrecruiters_companies": len(p.SmartRecruiters),
		"teamtailor_companies":      len(p.Teamtailor),
		"recruitee_companies":       len(p.Recruitee),
		"ashby_organizations":       len(p.Ashby),
		"stepstone_feeds":           len(p.Stepstone),
		"arbeitnow":                 flag(p.Arbeitnow),
		"remotive":                  flag(p.Remotive),
		"jobicy":                    flag(p.Jobicy),
		"adzuna":                    flag(p.Adzuna),
		"jooble":                    flag(p.Jooble),
		"serpapi_google_jobs":       flag(p.SerpGoogleJobs && p.HasSerpAPI),
		"serpapi_job_boards":        flag(p.SerpJobBoards && p.HasSerpAPI),
		"serpapi_official_sites":    flag(p.SerpOfficialSites && p.HasSerpAPI),
		"official_career_pages":     len(p.OfficialCareerPages),
		"search_queries":            len(p.SearchQueries),
	}
}

var nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases name, spells out "&", collapses every run of other
// characters to one hyphen and trims hyphens from both ends.
func Slugify(name string) string {
	s := strings.ReplaceAll(strings.ToLower(name), "&", "and")
	s = nonSlugRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func limit(list []string, n int) []string {
	if n < 0 {
		n = 0
	}
	if len(list) > n {
		return list[:n]
	}
	return list
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

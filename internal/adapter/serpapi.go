package adapter

import (
	"context"
	"fmt"
	"net/url"
	"regexp"

	"github.com/amishk599/liveroles/internal/model"
	"github.com/amishk599/liveroles/internal/transport"
)

const serpAPIURL = "https://serpapi.com/search.json"

// Default search locale when the runtime overlay supplies none.
const (
	DefaultSerpGL = "de"
	DefaultSerpHL = "en"
)

// SerpSettings are shared by every SerpAPI-backed adapter.
type SerpSettings struct {
	APIKey string
	GL     string
	HL     string
}

func (s SerpSettings) params(engine, query string) url.Values {
	v := url.Values{}
	v.Set("engine", engine)
	v.Set("api_key", s.APIKey)
	v.Set("q", query)
	v.Set("gl", firstOf(s.GL, DefaultSerpGL))
	v.Set("hl", firstOf(s.HL, DefaultSerpHL))
	return v
}

type serpLink struct {
	Link text `json:"link"`
}

type serpJob struct {
	Title              text       `json:"title"`
	CompanyName        text       `json:"company_name"`
	Location           text       `json:"location"`
	Description        text       `json:"description"`
	ApplyOptions       []serpLink `json:"apply_options"`
	RelatedLinks       []serpLink `json:"related_links"`
	DetectedExtensions struct {
		PostedAt text `json:"posted_at"`
	} `json:"detected_extensions"`
}

func (j serpJob) applyURL() string {
	if len(j.ApplyOptions) > 0 {
		if u := j.ApplyOptions[0].Link.String(); u != "" {
			return u
		}
	}
	if len(j.RelatedLinks) > 0 {
		return j.RelatedLinks[0].Link.String()
	}
	return ""
}

// SerpGoogleJobsAdapter queries the google_jobs engine; the target is the query.
type SerpGoogleJobsAdapter struct {
	client   *transport.Client
	settings SerpSettings
}

func NewSerpGoogleJobsAdapter(client *transport.Client, settings SerpSettings) *SerpGoogleJobsAdapter {
	return &SerpGoogleJobsAdapter{client: client, settings: settings}
}

func (a *SerpGoogleJobsAdapter) Kind() model.ProviderKind { return model.KindSerpGoogleJobs }

func (a *SerpGoogleJobsAdapter) Enabled() bool { return a.settings.APIKey != "" }

func (a *SerpGoogleJobsAdapter) Fetch(ctx context.Context, target model.Target) ([]model.Posting, error) {
	if !a.Enabled() {
		return nil, nil
	}
	endpoint := serpAPIURL + "?" + a.settings.params("google_jobs", target.ID).Encode()

	var resp struct {
		JobsResults []serpJob `json:"jobs_results"`
	}
	if err := a.client.GetJSON(ctx, string(a.Kind()), endpoint, &resp); err != nil {
		return nil, fmt.Errorf("serpapi google_jobs for %q: request failed", target.ID)
	}

	postings := make([]model.Posting, 0, len(resp.JobsResults))
	for _, j := range resp.JobsResults {
		link := j.applyURL()
		postings = append(postings, model.Posting{
			Source:      WithBoard(string(model.KindSerpGoogleJobs), link),
			SourceNote:  "Query: " + target.ID,
			Company:     j.CompanyName.String(),
			Title:       j.Title.String(),
			Location:    j.Location.String(),
			URL:         link,
			UpdatedAt:   model.StringPtr(j.DetectedExtensions.PostedAt.String()),
			Description: StripHTML(string(j.Description)),
		})
	}
	return postings, nil
}

var (
	// JobBoardLinks keeps organic results that point at a job board.
	JobBoardLinks = regexp.MustCompile(`(?i)linkedin\.com|indeed\.|xing\.com|naukri\.com|stepstone\.`)
	// OfficialSiteLinks keeps organic results that look like a careers page or ATS board.
	OfficialSiteLinks = regexp.MustCompile(`(?i)/careers|/jobs|job-?board|workdayjobs|greenhouse|lever|smartrecruiters|teamtailor|recruitee|ashby`)
)

// Query suffixes that steer organic search toward each kind of result.
const (
	JobBoardQuerySuffix     = " site:linkedin.com/jobs OR site:indeed.com OR site:xing.com OR site:naukri.com OR site:stepstone."
	OfficialSiteQuerySuffix = " careers jobs official site"
)

type serpOrganic struct {
	Title   text `json:"title"`
	Link    text `json:"link"`
	Snippet text `json:"snippet"`
}

// SerpOrganicAdapter scrapes organic Google results and keeps the links
// matching its filter. One instance serves job boards, another official sites.
type SerpOrganicAdapter struct {
	client   *transport.Client
	settings SerpSettings
	kind     model.ProviderKind
	suffix   string
	links    *regexp.Regexp
}

// NewSerpJobBoardsAdapter searches for postings hosted on job boards.
func NewSerpJobBoardsAdapter(client *transport.Client, settings SerpSettings) *SerpOrganicAdapter {
	return &SerpOrganicAdapter{
		client:   client,
		settings: settings,
		kind:     model.KindSerpJobBoards,
		suffix:   JobBoardQuerySuffix,
		links:    JobBoardLinks,
	}
}

// NewSerpOfficialSitesAdapter searches for postings on company career sites.
func NewSerpOfficialSitesAdapter(client *transport.Client, settings SerpSettings) *SerpOrganicAdapter {
	return &SerpOrganicAdapter{
		client:   client,
		settings: settings,
		kind:     model.KindSerpOfficialSites,
		suffix:   OfficialSiteQuerySuffix,
		links:    OfficialSiteLinks,
	}
}

func (a *SerpOrganicAdapter) Kind() model.ProviderKind { return a.kind }

func (a *SerpOrganicAdapter) Enabled() bool { return a.settings.APIKey != "" }

func (a *SerpOrganicAdapter) Fetch(ctx context.Context, target model.Target) ([]model.Posting, error) {
	if !a.Enabled() {
		return nil, nil
	}
	params := a.settings.params("google", target.ID+a.suffix)
	params.Set("num", "20")
	endpoint := serpAPIURL + "?" + params.Encode()

	var resp struct {
		OrganicResults []serpOrganic `json:"organic_results"`
	}
	if err := a.client.GetJSON(ctx, string(a.kind), endpoint, &resp); err != nil {
		return nil, fmt.Errorf("serpapi %s for %q: request failed", a.kind, target.ID)
	}

	postings := make([]model.Posting, 0, len(resp.OrganicResults))
	for _, r := range resp.OrganicResults {
		link := r.Link.String()
		if link == "" || !a.links.MatchString(link) {
			continue
		}
		postings = append(postings, model.Posting{
			Source:      WithBoard(string(a.kind), link),
			SourceNote:  "Query: " + target.ID,
			Title:       r.Title.String(),
			URL:         link,
			Description: StripHTML(r.Snippet.String()),
		})
	}
	return postings, nil
}

package model

import (
	"context"
	"strings"
)

// Posting is the unified representation of a job listing from any provider.
type Posting struct {
	Source      string   `json:"source" yaml:"source"`                               // provider tag, optionally refined e.g. "serpapi-job-boards:indeed"
	SourceNote  string   `json:"source_note,omitempty" yaml:"source_note,omitempty"` // free-text provenance
	Company     string   `json:"company" yaml:"company"`
	Title       string   `json:"title" yaml:"title"`
	Location    string   `json:"location" yaml:"location"`
	URL         string   `json:"url" yaml:"url"`
	UpdatedAt   *string  `json:"updated_at" yaml:"updated_at"` // nullable, provider supplied
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	JobTypes    []string `json:"job_types,omitempty" yaml:"job_types,omitempty"`
	Remote      bool     `json:"remote,omitempty" yaml:"remote,omitempty"`
}

// Valid reports whether the posting has both a title and a URL.
func (p Posting) Valid() bool {
	return strings.TrimSpace(p.Title) != "" && strings.TrimSpace(p.URL) != ""
}

// Normalize lowercases s, collapses whitespace runs to one space and trims.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// IdentityKey identifies a posting independently of its provider:
// normalized company, title, location and url.
func (p Posting) IdentityKey() string {
	return Normalize(p.Company + "|" + p.Title + "|" + p.Location + "|" + p.URL)
}

// SourceKey is IdentityKey qualified by the source tag.
func (p Posting) SourceKey() string {
	return Normalize(p.Source + "|" + p.Company + "|" + p.Title + "|" + p.Location + "|" + p.URL)
}

// ScoredPosting is a Posting accepted by a bucket along with its relevance.
type ScoredPosting struct {
	Posting   `yaml:",inline"`
	Score     int    `json:"score" yaml:"score"`
	SkillHits int    `json:"skill_hits" yaml:"skill_hits"`
	BucketID  string `json:"bucket_id" yaml:"bucket_id"`
}

// DatedPosting is the persisted form of a ScoredPosting.
// FetchedAt stays a raw string so unparseable persisted values can be detected.
type DatedPosting struct {
	ScoredPosting `yaml:",inline"`
	FetchedAt     string `json:"fetched_at" yaml:"fetched_at"`
	PulledAt      string `json:"pulled_at" yaml:"pulled_at"`
	StaleDays     int    `json:"stale_days" yaml:"stale_days"`
	IsStale       bool   `json:"is_stale" yaml:"is_stale"`
}

// StringPtr returns a pointer to s, or nil when s is blank.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// ProviderKind names a provider adapter.
type ProviderKind string

const (
	KindGreenhouse        ProviderKind = "greenhouse"
	KindLever             ProviderKind = "lever"
	KindSmartRecruiters   ProviderKind = "smartrecruiters"
	KindTeamtailor        ProviderKind = "teamtailor"
	KindRecruitee         ProviderKind = "recruitee"
	KindAshby             ProviderKind = "ashby"
	KindPersonio          ProviderKind = "personio-xml"
	KindStepstone         ProviderKind = "stepstone-feed"
	KindArbeitnow         ProviderKind = "arbeitnow"
	KindRemotive          ProviderKind = "remotive"
	KindJobicy            ProviderKind = "jobicy"
	KindAdzuna            ProviderKind = "adzuna"
	KindJooble            ProviderKind = "jooble"
	KindSerpGoogleJobs    ProviderKind = "serpapi-google-jobs"
	KindSerpJobBoards     ProviderKind = "serpapi-job-boards"
	KindSerpOfficialSites ProviderKind = "serpapi-official-sites"
	KindOfficialJSONLD    ProviderKind = "official-jsonld"
)

// Target identifies one source of one provider: a company slug, feed URL,
// search query or page URL. Country is set for country-keyed aggregators.
type Target struct {
	ID      string
	Country string
}

func (t Target) String() string {
	if t.Country == "" {
		return t.ID
	}
	return t.Country + ":" + t.ID
}

// Adapter fetches and normalizes postings from one provider for one target.
// Errors are transient by definition; callers degrade them to an empty result.
type Adapter interface {
	Kind() ProviderKind
	Fetch(ctx context.Context, target Target) ([]Posting, error)
}

package model

// RoleProfile describes what a user is looking for and how postings are bucketed.
type RoleProfile struct {
	ID                  string              `json:"id" yaml:"id" validate:"required"`
	DisplayName         string              `json:"display_name" yaml:"display_name"`
	ActiveBucketIDs     []string            `json:"active_bucket_ids,omitempty" yaml:"active_bucket_ids,omitempty"`
	Skills              []string            `json:"skills" yaml:"skills"`
	Locations           LocationPreferences `json:"locations" yaml:"locations"`
	Keywords            KeywordPreferences  `json:"keywords" yaml:"keywords"`
	GeoAllowPatterns    []string            `json:"geo_allow_patterns" yaml:"geo_allow_patterns"`
	GeoPriorityPatterns []string            `json:"geo_priority_patterns,omitempty" yaml:"geo_priority_patterns,omitempty"`
	GeoExcludePatterns  []string            `json:"geo_exclude_patterns,omitempty" yaml:"geo_exclude_patterns,omitempty"`
	EmployerAllowlist   []string            `json:"employer_allowlist,omitempty" yaml:"employer_allowlist,omitempty"`
	Buckets             []BucketRule        `json:"buckets" yaml:"buckets" validate:"required,min=1,dive"`
}

// LocationPreferences holds plain-term location gates.
type LocationPreferences struct {
	Countries         []string `json:"countries,omitempty" yaml:"countries,omitempty"`
	Cities            []string `json:"cities,omitempty" yaml:"cities,omitempty"`
	PriorityCountries []string `json:"priority_countries,omitempty" yaml:"priority_countries,omitempty"`
	PriorityCities    []string `json:"priority_cities,omitempty" yaml:"priority_cities,omitempty"`
	ExcludeCountries  []string `json:"exclude_countries,omitempty" yaml:"exclude_countries,omitempty"`
	ExcludeCities     []string `json:"exclude_cities,omitempty" yaml:"exclude_cities,omitempty"`
}

// KeywordPreferences holds profile-wide keyword gates.
type KeywordPreferences struct {
	MustHave   []string `json:"must_have,omitempty" yaml:"must_have,omitempty"`
	NiceToHave []string `json:"nice_to_have,omitempty" yaml:"nice_to_have,omitempty"`
	Exclude    []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// BucketRule is a named filter and scoring configuration.
// Nil thresholds mean "use the default".
type BucketRule struct {
	ID                       string   `json:"id" yaml:"id" validate:"required"`
	Label                    string   `json:"label" yaml:"label"`
	IncludeTitlePatterns     []string `json:"include_title_patterns,omitempty" yaml:"include_title_patterns,omitempty"`
	IncludeTitleKeywords     []string `json:"include_title_keywords,omitempty" yaml:"include_title_keywords,omitempty"`
	IncludeTextPatterns      []string `json:"include_text_patterns,omitempty" yaml:"include_text_patterns,omitempty"`
	IncludeTextKeywords      []string `json:"include_text_keywords,omitempty" yaml:"include_text_keywords,omitempty"`
	ExcludeTextPatterns      []string `json:"exclude_text_patterns,omitempty" yaml:"exclude_text_patterns,omitempty"`
	ExcludeTextKeywords      []string `json:"exclude_text_keywords,omitempty" yaml:"exclude_text_keywords,omitempty"`
	MinScore                 *int     `json:"min_score,omitempty" yaml:"min_score,omitempty" validate:"omitempty,min=0"`
	MinSkillHits             *int     `json:"min_skill_hits,omitempty" yaml:"min_skill_hits,omitempty" validate:"omitempty,min=0"`
	MaxResults               *int     `json:"max_results,omitempty" yaml:"max_results,omitempty" validate:"omitempty,min=1"`
	RequireEmployerAllowlist bool     `json:"require_employer_allowlist,omitempty" yaml:"require_employer_allowlist,omitempty"`
}

const (
	DefaultMinScore     = 70
	DefaultMinSkillHits = 0
	DefaultMaxResults   = 200
)

func (b BucketRule) MinScoreOrDefault() int {
	if b.MinScore == nil {
		return DefaultMinScore
	}
	return *b.MinScore
}

func (b BucketRule) MinSkillHitsOrDefault() int {
	if b.MinSkillHits == nil {
		return DefaultMinSkillHits
	}
	return *b.MinSkillHits
}

func (b BucketRule) MaxResultsOrDefault() int {
	if b.MaxResults == nil {
		return DefaultMaxResults
	}
	return *b.MaxResults
}

// ActiveBuckets returns the buckets to process: the active allow-list when
// set, otherwise every bucket. Profile order is preserved.
func (p RoleProfile) ActiveBuckets() []BucketRule {
	if len(p.ActiveBucketIDs) == 0 {
		return p.Buckets
	}
	allowed := make(map[string]bool, len(p.ActiveBucketIDs))
	for _, id := range p.ActiveBucketIDs {
		allowed[id] = true
	}
	var out []BucketRule
	for _, b := range p.Buckets {
		if allowed[b.ID] {
			out = append(out, b)
		}
	}
	return out
}

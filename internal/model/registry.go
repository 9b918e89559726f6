package model

// Category is one list in the source registry.
type Category string

const (
	CategoryCompanyNames        Category = "company_names"
	CategoryPersonioFeeds       Category = "personio_xml_feeds"
	CategorySmartRecruiters     Category = "smartrecruiters_companies"
	CategoryTeamtailor          Category = "teamtailor_companies"
	CategoryRecruitee           Category = "recruitee_companies"
	CategoryAshby               Category = "ashby_organizations"
	CategoryStepstoneFeeds      Category = "stepstone_feeds"
	CategoryOfficialCareerPages Category = "official_career_pages"
	CategorySearchQueries       Category = "search_queries"
)

// Categories lists every registry category in persisted order.
var Categories = []Category{
	CategoryCompanyNames,
	CategoryPersonioFeeds,
	CategorySmartRecruiters,
	CategoryTeamtailor,
	CategoryRecruitee,
	CategoryAshby,
	CategoryStepstoneFeeds,
	CategoryOfficialCareerPages,
	CategorySearchQueries,
}

// SourceLists holds one list per registry category.
type SourceLists struct {
	CompanyNames             []string `json:"company_names" yaml:"company_names"`
	PersonioXMLFeeds         []string `json:"personio_xml_feeds" yaml:"personio_xml_feeds"`
	SmartRecruitersCompanies []string `json:"smartrecruiters_companies" yaml:"smartrecruiters_companies"`
	TeamtailorCompanies      []string `json:"teamtailor_companies" yaml:"teamtailor_companies"`
	RecruiteeCompanies       []string `json:"recruitee_companies" yaml:"recruitee_companies"`
	AshbyOrganizations       []string `json:"ashby_organizations" yaml:"ashby_organizations"`
	StepstoneFeeds           []string `json:"stepstone_feeds" yaml:"stepstone_feeds"`
	OfficialCareerPages      []string `json:"official_career_pages" yaml:"official_career_pages"`
	SearchQueries            []string `json:"search_queries" yaml:"search_queries"`
}

// Get returns the list for a category.
func (l SourceLists) Get(c Category) []string {
	switch c {
	case CategoryCompanyNames:
		return l.CompanyNames
	case CategoryPersonioFeeds:
		return l.PersonioXMLFeeds
	case CategorySmartRecruiters:
		return l.SmartRecruitersCompanies
	case CategoryTeamtailor:
		return l.TeamtailorCompanies
	case CategoryRecruitee:
		return l.RecruiteeCompanies
	case CategoryAshby:
		return l.AshbyOrganizations
	case CategoryStepstoneFeeds:
		return l.StepstoneFeeds
	case CategoryOfficialCareerPages:
		return l.OfficialCareerPages
	case CategorySearchQueries:
		return l.SearchQueries
	}
	return nil
}

// With returns a copy of l with the category list replaced.
func (l SourceLists) With(c Category, list []string) SourceLists {
	switch c {
	case CategoryCompanyNames:
		l.CompanyNames = list
	case CategoryPersonioFeeds:
		l.PersonioXMLFeeds = list
	case CategorySmartRecruiters:
		l.SmartRecruitersCompanies = list
	case CategoryTeamtailor:
		l.TeamtailorCompanies = list
	case CategoryRecruitee:
		l.RecruiteeCompanies = list
	case CategoryAshby:
		l.AshbyOrganizations = list
	case CategoryStepstoneFeeds:
		l.StepstoneFeeds = list
	case CategoryOfficialCareerPages:
		l.OfficialCareerPages = list
	case CategorySearchQueries:
		l.SearchQueries = list
	}
	return l
}

// RegistryMeta controls discovery.
type RegistryMeta struct {
	DiscoveryEnabled   bool `json:"discovery_enabled" yaml:"discovery_enabled"`
	MaxProbeCandidates int  `json:"max_probe_candidates" yaml:"max_probe_candidates"`
}

// SourceRegistry is the persisted catalog of crawlable companies and feeds.
// Explicit entries are operator curated; Discovered entries grow over runs.
type SourceRegistry struct {
	GeneratedAt string       `json:"generated_at" yaml:"generated_at"`
	Explicit    SourceLists  `json:"explicit" yaml:"explicit"`
	Discovered  SourceLists  `json:"discovered" yaml:"discovered"`
	Meta        RegistryMeta `json:"meta" yaml:"meta"`
}

// All returns the explicit followed by the discovered entries for a category.
func (r SourceRegistry) All(c Category) []string {
	explicit := r.Explicit.Get(c)
	discovered := r.Discovered.Get(c)
	out := make([]string, 0, len(explicit)+len(discovered))
	out = append(out, explicit...)
	return append(out, discovered...)
}

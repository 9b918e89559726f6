package sources

import (
	"github.com/amishk599/liveroles/internal/config"
	"github.com/amishk599/liveroles/internal/model"
)

const (
	maxRoleTerms        = 18
	maxCompanyTerms     = 24
	maxCompanyRoleTerms = 10
)

// defaultQueryCountries is used when the profile names no countries.
var defaultQueryCountries = []string{"Germany", "India"}

// RoleTerms collects the include keywords of every bucket, in profile order.
func RoleTerms(profile *model.RoleProfile) []string {
	var terms []string
	for _, b := range profile.Buckets {
		terms = append(terms, b.IncludeTitleKeywords...)
		terms = append(terms, b.IncludeTextKeywords...)
	}
	return limit(config.Unique(terms), maxRoleTerms)
}

// BuildSearchQueries produces "{role} {place} jobs" for every role term and
// country or city of the profile, then "{company} {role} jobs" for the seed
// companies. At least one query slot is always allowed.
func BuildSearchQueries(profile *model.RoleProfile, companies []string, maxQueries int) []string {
	countries := config.Unique(profile.Locations.Countries)
	if len(profile.Locations.Countries) == 0 {
		countries = defaultQueryCountries
	}
	cities := profile.Locations.PriorityCities
	if len(cities) == 0 {
		cities = profile.Locations.Cities
	}
	cities = config.Unique(cities)

	roles := RoleTerms(profile)
	var queries []string
	for _, role := range roles {
		for _, country := range countries {
			queries = append(queries, role+" "+country+" jobs")
		}
		for _, city := range cities {
			queries = append(queries, role+" "+city+" jobs")
		}
	}
	companyRoles := limit(roles, maxCompanyRoleTerms)
	for _, company := range limit(config.Unique(companies), maxCompanyTerms) {
		for _, role := range companyRoles {
			queries = append(queries, company+" "+role+" jobs")
		}
	}
	return limit(config.Unique(queries), max(1, maxQueries))
}

// BuildCareerPages guesses the usual career page locations for each company.
func BuildCareerPages(companies []string, maxPages int) []string {
	var pages []string
	for _, company := range companies {
		slug := Slugify(company)
		if slug == "" {
			continue
		}
		pages = append(pages,
			"https://"+slug+".com/careers",
			"https://careers."+slug+".com",
			"https://jobs."+slug+".com",
			"https://"+slug+".io/careers",
			"https://careers."+slug+".io",
		)
	}
	return limit(config.Unique(pages), max(1, maxPages))
}

package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/amishk599/liveroles/internal/model"
)

// Env is everything a run reads from the process environment. It is
// resolved once at startup and passed down; nothing reads os.Getenv later.
type Env struct {
	SerpAPIKey   string
	AdzunaAppID  string
	AdzunaAppKey string
	JoobleAPIKey string
	Sources      model.SourceLists // extra sources from *_FEEDS / *_COMPANIES variables
}

// envSourceVars maps environment variables to the registry category they extend.
var envSourceVars = map[string]model.Category{
	"PERSONIO_XML_FEEDS":        model.CategoryPersonioFeeds,
	"SMARTRECRUITERS_COMPANIES": model.CategorySmartRecruiters,
	"TEAMTAILOR_COMPANIES":      model.CategoryTeamtailor,
	"RECRUITEE_COMPANIES":       model.CategoryRecruitee,
	"ASHBY_ORGANIZATIONS":       model.CategoryAshby,
	"STEPSTONE_FEEDS":           model.CategoryStepstoneFeeds,
	"OFFICIAL_CAREER_PAGES":     model.CategoryOfficialCareerPages,
	"SEARCH_QUERIES":            model.CategorySearchQueries,
}

// LoadEnv loads a .env file from the working directory when present, then
// reads the environment.
func LoadEnv() Env {
	_ = godotenv.Load()
	return EnvFrom(os.Getenv)
}

// EnvFrom reads the environment through getenv.
func EnvFrom(getenv func(string) string) Env {
	env := Env{
		SerpAPIKey:   strings.TrimSpace(getenv("SERPAPI_API_KEY")),
		AdzunaAppID:  strings.TrimSpace(getenv("ADZUNA_APP_ID")),
		AdzunaAppKey: strings.TrimSpace(getenv("ADZUNA_APP_KEY")),
		JoobleAPIKey: strings.TrimSpace(getenv("JOOBLE_API_KEY")),
	}
	for name, category := range envSourceVars {
		env.Sources = env.Sources.With(category, ParseList(getenv(name)))
	}
	return env
}

// HasSerpAPI reports whether the SerpAPI key is set.
func (e Env) HasSerpAPI() bool { return e.SerpAPIKey != "" }

// HasAdzuna reports whether both Adzuna credentials are set.
func (e Env) HasAdzuna() bool { return e.AdzunaAppID != "" && e.AdzunaAppKey != "" }

// HasJooble reports whether the Jooble key is set.
func (e Env) HasJooble() bool { return e.JoobleAPIKey != "" }

// ParseList splits a list given on one line: entries are separated by
// newlines, commas or pipes; blanks are dropped.
func ParseList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == ',' || r == '|'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Unique drops blanks and duplicates, keeping first occurrence order.
func Unique(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, v := range list {
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// Package filter classifies postings into a profile's buckets and scores them.
package filter

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/amishk599/liveroles/internal/model"
)

const (
	geoAllowPoints    = 30
	geoPriorityPoints = 40
	employerPoints    = 20
	skillPoints       = 4
	niceToHavePoints  = 2
)

// Engine applies bucket rules of one profile. It is safe for concurrent use.
type Engine struct {
	profile *model.RoleProfile

	geoAllow    gate
	geoPriority gate
	geoExclude  gate
	employer    []*regexp.Regexp
	skills      []string
	niceToHave  []string

	mu      sync.Mutex
	buckets map[string]*bucketGates
}

type bucketGates struct {
	title       gate
	text        gate
	excludeText gate
}

// NewEngine compiles the profile's patterns. Every bucket's patterns are
// compiled up front so a bad pattern fails here rather than mid-run.
func NewEngine(profile *model.RoleProfile) (*Engine, error) {
	loc := profile.Locations
	e := &Engine{
		profile:    profile,
		skills:     distinctLower(profile.Skills),
		niceToHave: profile.Keywords.NiceToHave,
		buckets:    make(map[string]*bucketGates, len(profile.Buckets)),
	}

	var err error
	compile := func(field string, patterns []string) []*regexp.Regexp {
		if err != nil {
			return nil
		}
		res, cerr := Compile(patterns)
		if cerr != nil {
			err = fmt.Errorf("%s: %w", field, cerr)
		}
		return res
	}
	e.geoAllow = newGate(compile("geo_allow_patterns", profile.GeoAllowPatterns), loc.Countries, loc.Cities)
	e.geoPriority = newGate(compile("geo_priority_patterns", profile.GeoPriorityPatterns), loc.PriorityCountries, loc.PriorityCities)
	e.geoExclude = newGate(compile("geo_exclude_patterns", profile.GeoExcludePatterns), loc.ExcludeCountries, loc.ExcludeCities)
	e.employer = compile("employer_allowlist", profile.EmployerAllowlist)
	if err != nil {
		return nil, err
	}

	for _, b := range profile.Buckets {
		g, err := compileBucket(b)
		if err != nil {
			return nil, err
		}
		e.buckets[b.ID] = g
	}
	return e, nil
}

func compileBucket(b model.BucketRule) (*bucketGates, error) {
	title, err := Compile(b.IncludeTitlePatterns)
	if err != nil {
		return nil, fmt.Errorf("bucket %s: include_title_patterns: %w", b.ID, err)
	}
	text, err := Compile(b.IncludeTextPatterns)
	if err != nil {
		return nil, fmt.Errorf("bucket %s: include_text_patterns: %w", b.ID, err)
	}
	exclude, err := Compile(b.ExcludeTextPatterns)
	if err != nil {
		return nil, fmt.Errorf("bucket %s: exclude_text_patterns: %w", b.ID, err)
	}
	return &bucketGates{
		title:       newGate(title, b.IncludeTitleKeywords),
		text:        newGate(text, b.IncludeTextKeywords),
		excludeText: newGate(exclude, b.ExcludeTextKeywords),
	}, nil
}

func (e *Engine) gatesFor(b model.BucketRule) (*bucketGates, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if g, ok := e.buckets[b.ID]; ok {
		return g, nil
	}
	g, err := compileBucket(b)
	if err != nil {
		return nil, err
	}
	e.buckets[b.ID] = g
	return g, nil
}

// Apply returns the postings accepted by bucket, highest score first,
// without duplicates and truncated to the bucket's max results. Gates with
// nothing configured accept everything.
func (e *Engine) Apply(postings []model.Posting, bucket model.BucketRule) ([]model.ScoredPosting, error) {
	g, err := e.gatesFor(bucket)
	if err != nil {
		return nil, err
	}
	kw := e.profile.Keywords
	minScore := bucket.MinScoreOrDefault()
	minSkills := bucket.MinSkillHitsOrDefault()

	var kept []model.ScoredPosting
	for _, p := range postings {
		if !p.Valid() {
			continue
		}
		geoText := firstNonEmpty(p.Location, p.Description)
		text := p.Title + " " + p.Description
		keywordText := p.Title + " " + p.Company + " " + p.Description

		if g.title.defined() && !g.title.match(p.Title) {
			continue
		}
		if g.text.defined() && !g.text.match(text) {
			continue
		}
		if e.geoAllow.defined() && !e.geoAllow.match(geoText) {
			continue
		}
		if e.geoExclude.defined() && e.geoExclude.match(geoText) {
			continue
		}
		if g.excludeText.match(text) {
			continue
		}
		if !includesAllTerms(keywordText, kw.MustHave) {
			continue
		}
		if includesAnyTerm(keywordText, kw.Exclude) {
			continue
		}

		score, skillHits := e.Score(p)
		if score < minScore || skillHits < minSkills {
			continue
		}
		if bucket.RequireEmployerAllowlist && !matchAny(firstNonEmpty(p.Company, p.Description), e.employer) {
			continue
		}
		kept = append(kept, model.ScoredPosting{
			Posting:   p,
			Score:     score,
			SkillHits: skillHits,
			BucketID:  bucket.ID,
		})
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })

	seen := make(map[string]struct{}, len(kept))
	out := make([]model.ScoredPosting, 0, len(kept))
	for _, sp := range kept {
		key := sp.IdentityKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, sp)
	}
	if n := bucket.MaxResultsOrDefault(); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// Score computes the relevance of p for the profile. skillHits counts the
// distinct profile skills found in the posting.
func (e *Engine) Score(p model.Posting) (score, skillHits int) {
	geoText := firstNonEmpty(p.Location, p.Description)
	text := model.Normalize(p.Title + " " + p.Location + " " + p.Company + " " + p.Description)

	if e.geoAllow.match(geoText) {
		score += geoAllowPoints
	}
	if e.geoPriority.defined() && e.geoPriority.match(geoText) {
		score += geoPriorityPoints
	}
	if len(e.employer) > 0 && matchAny(firstNonEmpty(p.Company, p.Description), e.employer) {
		score += employerPoints
	}
	for _, skill := range e.skills {
		if strings.Contains(text, skill) {
			score += skillPoints
			skillHits++
		}
	}
	for _, kw := range e.niceToHave {
		if strings.Contains(text, strings.ToLower(kw)) {
			score += niceToHavePoints
		}
	}
	return score, skillHits
}

func distinctLower(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	var out []string
	for _, t := range terms {
		t = strings.ToLower(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

package filter

import (
	"fmt"
	"strings"
	"testing"

	"github.com/amishk599/liveroles/internal/model"
)

func intPtr(n int) *int { return &n }

func posting(company, title, location, description string) model.Posting {
	return model.Posting{
		Source:      "test",
		Company:     company,
		Title:       title,
		Location:    location,
		URL:         "https://example.com/" + strings.ReplaceAll(company+"/"+title, " ", "-"),
		Description: description,
	}
}

func mustEngine(t *testing.T, p *model.RoleProfile) *Engine {
	t.Helper()
	e, err := NewEngine(p)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func apply(t *testing.T, p *model.RoleProfile, b model.BucketRule, postings ...model.Posting) []model.ScoredPosting {
	t.Helper()
	got, err := mustEngine(t, p).Apply(postings, b)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	return got
}

func titles(sp []model.ScoredPosting) []string {
	out := make([]string, len(sp))
	for i, p := range sp {
		out[i] = p.Title
	}
	return out
}

func TestApply_Gates(t *testing.T) {
	zero := intPtr(0)
	tests := []struct {
		name    string
		profile model.RoleProfile
		bucket  model.BucketRule
		posting model.Posting
		want    bool
	}{
		{
			name:    "unset gates accept everything",
			bucket:  model.BucketRule{ID: "b", MinScore: zero},
			posting: posting("acme", "Florist", "Mars", ""),
			want:    true,
		},
		{
			name:    "missing url is dropped",
			bucket:  model.BucketRule{ID: "b", MinScore: zero},
			posting: model.Posting{Title: "Engineer"},
			want:    false,
		},
		{
			name:    "title pattern case insensitive",
			bucket:  model.BucketRule{ID: "b", MinScore: zero, IncludeTitlePatterns: []string{"backend|platform"}},
			posting: posting("acme", "Senior BACKEND Engineer", "", ""),
			want:    true,
		},
		{
			name:    "title keyword miss",
			bucket:  model.BucketRule{ID: "b", MinScore: zero, IncludeTitleKeywords: []string{"devops"}},
			posting: posting("acme", "Frontend Engineer", "", ""),
			want:    false,
		},
		{
			name:    "text gate reads description",
			bucket:  model.BucketRule{ID: "b", MinScore: zero, IncludeTextKeywords: []string{"kubernetes"}},
			posting: posting("acme", "Engineer", "", "We run Kubernetes"),
			want:    true,
		},
		{
			name:    "geo allow falls back to description",
			profile: model.RoleProfile{Locations: model.LocationPreferences{Countries: []string{"Germany"}}},
			bucket:  model.BucketRule{ID: "b", MinScore: zero},
			posting: posting("acme", "Engineer", "", "Office in Germany"),
			want:    true,
		},
		{
			name:    "geo allow rejects other locations",
			profile: model.RoleProfile{GeoAllowPatterns: []string{"berlin|munich"}},
			bucket:  model.BucketRule{ID: "b", MinScore: zero},
			posting: posting("acme", "Engineer", "Paris", "Berlin team"),
			want:    false,
		},
		{
			name:    "geo exclude",
			profile: model.RoleProfile{Locations: model.LocationPreferences{ExcludeCities: []string{"paris"}}},
			bucket:  model.BucketRule{ID: "b", MinScore: zero},
			posting: posting("acme", "Engineer", "Paris, FR", ""),
			want:    false,
		},
		{
			name:    "bucket exclude text",
			bucket:  model.BucketRule{ID: "b", MinScore: zero, ExcludeTextPatterns: []string{`\bintern\b`}},
			posting: posting("acme", "Engineering Intern", "", ""),
			want:    false,
		},
		{
			name:    "must have needs every term",
			profile: model.RoleProfile{Keywords: model.KeywordPreferences{MustHave: []string{"go", "acme"}}},
			bucket:  model.BucketRule{ID: "b", MinScore: zero},
			posting: posting("Acme", "Go Engineer", "", ""),
			want:    true,
		},
		{
			name:    "must have miss",
			profile: model.RoleProfile{Keywords: model.KeywordPreferences{MustHave: []string{"go", "rust"}}},
			bucket:  model.BucketRule{ID: "b", MinScore: zero},
			posting: posting("Acme", "Go Engineer", "", ""),
			want:    false,
		},
		{
			name:    "profile exclude keyword on company",
			profile: model.RoleProfile{Keywords: model.KeywordPreferences{Exclude: []string{"staffing"}}},
			bucket:  model.BucketRule{ID: "b", MinScore: zero},
			posting: posting("Best Staffing GmbH", "Engineer", "", ""),
			want:    false,
		},
		{
			name:    "default min score rejects unscored",
			bucket:  model.BucketRule{ID: "b"},
			posting: posting("acme", "Engineer", "Berlin", ""),
			want:    false,
		},
		{
			name:    "employer allowlist required",
			profile: model.RoleProfile{EmployerAllowlist: []string{"^acme$"}},
			bucket:  model.BucketRule{ID: "b", MinScore: zero, RequireEmployerAllowlist: true},
			posting: posting("Other", "Engineer", "", ""),
			want:    false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.profile
			p.Buckets = []model.BucketRule{tt.bucket}
			got := apply(t, &p, tt.bucket, tt.posting)
			if (len(got) == 1) != tt.want {
				t.Errorf("accepted = %v, want %v", len(got) == 1, tt.want)
			}
		})
	}
}

func TestScore(t *testing.T) {
	p := &model.RoleProfile{
		Skills:              []string{"Go", "Kubernetes", "go", "Rust"},
		GeoAllowPatterns:    []string{"germany"},
		GeoPriorityPatterns: []string{"berlin"},
		EmployerAllowlist:   []string{"acme"},
		Keywords:            model.KeywordPreferences{NiceToHave: []string{"remote"}},
		Buckets:             []model.BucketRule{{ID: "b"}},
	}
	e := mustEngine(t, p)

	score, hits := e.Score(posting("Acme", "Go Engineer", "Berlin, Germany", "Kubernetes, remote friendly"))
	// geo 30 + priority 40 + employer 20 + go and kubernetes 8 + remote 2
	if score != 100 || hits != 2 {
		t.Errorf("Score = %d/%d, want 100/2", score, hits)
	}

	score, hits = e.Score(posting("Other", "Designer", "Paris", ""))
	if score != 0 || hits != 0 {
		t.Errorf("Score = %d/%d, want 0/0", score, hits)
	}
}

func TestScore_PriorityNeedsConfiguredGate(t *testing.T) {
	e := mustEngine(t, &model.RoleProfile{
		Locations: model.LocationPreferences{Cities: []string{"berlin"}},
		Buckets:   []model.BucketRule{{ID: "b"}},
	})
	if score, _ := e.Score(posting("a", "Engineer", "Berlin", "")); score != 30 {
		t.Errorf("score = %d, want 30", score)
	}
}

func TestApply_MinSkillHits(t *testing.T) {
	p := &model.RoleProfile{Skills: []string{"go", "sql"}}
	b := model.BucketRule{ID: "b", MinScore: intPtr(0), MinSkillHits: intPtr(2)}
	p.Buckets = []model.BucketRule{b}

	got := apply(t, p, b,
		posting("a", "Go Engineer", "", "SQL daily"),
		posting("b", "Go Engineer", "", ""),
	)
	if len(got) != 1 || got[0].Company != "a" || got[0].SkillHits != 2 || got[0].BucketID != "b" {
		t.Errorf("unexpected result %+v", got)
	}
}

func TestApply_SortDedupeTruncate(t *testing.T) {
	p := &model.RoleProfile{Skills: []string{"go", "sql", "aws"}}
	b := model.BucketRule{ID: "b", MinScore: intPtr(0), MaxResults: intPtr(2)}
	p.Buckets = []model.BucketRule{b}

	low := posting("a", "Engineer", "", "")
	mid := posting("b", "Go Engineer", "", "")
	high := posting("c", "Go Engineer", "", "sql aws")
	dup := high
	dup.Source = "other"
	dup.Company = "C"

	got := apply(t, p, b, low, mid, dup, high)
	want := []string{"Go Engineer", "Go Engineer"}
	if fmt.Sprint(titles(got)) != fmt.Sprint(want) {
		t.Fatalf("titles = %v, want %v", titles(got), want)
	}
	if got[0].Score != 12 || got[0].Source != "other" {
		t.Errorf("first = %+v, want the earliest top scorer", got[0])
	}
	if got[1].Company != "b" {
		t.Errorf("second company = %q, want b", got[1].Company)
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	p := &model.RoleProfile{Buckets: []model.BucketRule{{ID: "b", MinScore: intPtr(0)}}}
	in := []model.Posting{posting("b", "Two", "", ""), posting("a", "One", "", "")}
	before := fmt.Sprint(in)
	apply(t, p, p.Buckets[0], in...)
	if fmt.Sprint(in) != before {
		t.Error("Apply modified its input")
	}
}

func TestNewEngine_InvalidPattern(t *testing.T) {
	tests := []model.RoleProfile{
		{GeoAllowPatterns: []string{"(unclosed"}, Buckets: []model.BucketRule{{ID: "b"}}},
		{Buckets: []model.BucketRule{{ID: "b", IncludeTitlePatterns: []string{"[z-a]"}}}},
	}
	for i, p := range tests {
		if _, err := NewEngine(&p); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

func TestIncludesTerms(t *testing.T) {
	if includesAnyTerm("anything", nil) {
		t.Error("no terms should not match any")
	}
	if !includesAllTerms("anything", nil) {
		t.Error("no terms should match all")
	}
	if includesAllTerms("go engineer", []string{"go", " "}) {
		t.Error("blank term should fail all")
	}
	if !includesAnyTerm("Senior   GO\tEngineer", []string{"go engineer"}) {
		t.Error("whitespace should be normalized")
	}
}

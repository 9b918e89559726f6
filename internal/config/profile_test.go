package config

import (
	"path/filepath"
	"strings"
	"testing"
)

const validProfile = `
id: backend
display_name: Backend roles
skills: [go, kubernetes]
geo_allow_patterns: ["germany|berlin"]
buckets:
  - id: core
    label: Core
    include_title_patterns: ["(backend|platform) engineer"]
    min_score: 30
`

func TestLoadProfile_ExtensionOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "backend.json", `{"id": "from-json", "buckets": [{"id": "b"}]}`)
	writeFile(t, dir, "backend.yaml", strings.Replace(validProfile, "id: backend", "id: from-yaml", 1))

	p, err := LoadProfile(dir, "backend")
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if p.ID != "from-yaml" {
		t.Errorf("expected .yaml to win over .json, got %q", p.ID)
	}

	writeFile(t, dir, "backend.yml", validProfile)
	p, err = LoadProfile(dir, "backend")
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if p.ID != "backend" {
		t.Errorf("expected .yml to win, got %q", p.ID)
	}
	if len(p.Buckets) != 1 || p.Buckets[0].MinScoreOrDefault() != 30 {
		t.Errorf("unexpected buckets %+v", p.Buckets)
	}
}

func TestLoadProfile_JSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "data.json", `{"id": "data", "skills": ["sql"], "buckets": [{"id": "analytics", "max_results": 5}]}`)

	p, err := LoadProfile(dir, "data")
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if p.Buckets[0].MaxResultsOrDefault() != 5 {
		t.Errorf("MaxResults = %d", p.Buckets[0].MaxResultsOrDefault())
	}
	if p.Buckets[0].MinScoreOrDefault() != 70 {
		t.Errorf("MinScore default = %d", p.Buckets[0].MinScoreOrDefault())
	}
}

func TestLoadProfile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"no buckets", "id: x\n", "Buckets"},
		{"missing id", "buckets: [{id: a}]\n", "ID"},
		{"duplicate bucket", "id: x\nbuckets: [{id: a}, {id: a}]\n", "duplicate bucket"},
		{"bad geo regex", "id: x\ngeo_allow_patterns: ['(unclosed']\nbuckets: [{id: a}]\n", "geo_allow_patterns"},
		{"bad bucket regex", "id: x\nbuckets: [{id: a, include_title_patterns: ['[z-a]']}]\n", "include_title_patterns"},
		{"unparseable", "id: [oops", "parse profile"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "x.yml", tt.content)
			_, err := LoadProfile(dir, "x")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadProfile_NotFound(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "missing"), "nobody")
	if err == nil {
		t.Fatal("expected error for missing profile")
	}
}

package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amishk599/liveroles/internal/model"
)

func TestLeverFetch(t *testing.T) {
	payload := `[
		{
			"text": "Platform Engineer",
			"hostedUrl": "https://jobs.lever.co/acme/abc",
			"createdAt": 1770000000000,
			"workplaceType": "remote",
			"description": "<div>Kubernetes</div>",
			"categories": {"location": "Munich", "commitment": "Full-time", "allLocations": ["Munich", "Berlin"]}
		}
	]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v0/postings/acme" || r.URL.Query().Get("mode") != "json" {
			t.Errorf("unexpected request: %s", r.URL)
		}
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	postings, err := NewLeverAdapter(newTestClient(srv)).Fetch(context.Background(), model.Target{ID: "acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
	p := postings[0]
	if p.Location != "Munich, Berlin" {
		t.Errorf("expected all locations, got %q", p.Location)
	}
	if !p.Remote {
		t.Error("expected remote posting")
	}
	if len(p.JobTypes) != 1 || p.JobTypes[0] != "Full-time" {
		t.Errorf("unexpected job types %v", p.JobTypes)
	}
	if p.Description != "Kubernetes" {
		t.Errorf("unexpected description %q", p.Description)
	}
	if p.UpdatedAt == nil {
		t.Error("expected updated_at from createdAt")
	}
}

func TestAshbyFetch_SkipsUnlisted(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"wrapped", `{"jobs": [{"title": "SRE", "jobUrl": "https://jobs.ashbyhq.com/acme/1"}, {"title": "Hidden", "jobUrl": "https://jobs.ashbyhq.com/acme/2", "isListed": false}]}`},
		{"bare array", `[{"title": "SRE", "jobUrl": "https://jobs.ashbyhq.com/acme/1"}, {"title": "Hidden", "jobUrl": "https://jobs.ashbyhq.com/acme/2", "isListed": false}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(tt.payload)
			defer srv.Close()

			postings, err := NewAshbyAdapter(newTestClient(srv)).Fetch(context.Background(), model.Target{ID: "acme"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(postings) != 1 {
				t.Fatalf("expected 1 listed posting, got %d", len(postings))
			}
			if postings[0].Company != "acme" {
				t.Errorf("expected company fallback to slug, got %q", postings[0].Company)
			}
		})
	}
}

func TestSmartRecruitersFetch(t *testing.T) {
	payload := `{"content": [{"id": "744", "name": "Data Engineer", "company": {"name": "Acme"}, "location": {"city": "Hamburg", "country": "de"}}]}`
	srv := serve(payload)
	defer srv.Close()

	postings, err := NewSmartRecruitersAdapter(newTestClient(srv)).Fetch(context.Background(), model.Target{ID: "acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
	if postings[0].URL == "" {
		t.Error("expected a fallback posting url")
	}
	if postings[0].Company != "Acme" {
		t.Errorf("unexpected company %q", postings[0].Company)
	}
}

func TestKeylessBoards_IgnoreTarget(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		remote  bool
	}{
		{"remotive", `{"jobs": [{"title": "Go Developer", "url": "https://remotive.com/1", "company_name": "Acme"}]}`, true},
		{"jobicy", `{"jobs": [{"jobTitle": "Go Developer", "url": "https://jobicy.com/1", "companyName": "Acme"}]}`, true},
		{"arbeitnow", `{"data": [{"title": "Go Developer", "url": "https://arbeitnow.com/1", "company_name": "Acme", "created_at": 1770000000}]}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(tt.payload)
			defer srv.Close()
			client := newTestClient(srv)

			var a model.Adapter
			switch tt.name {
			case "remotive":
				a = NewRemotiveAdapter(client)
			case "jobicy":
				a = NewJobicyAdapter(client)
			case "arbeitnow":
				a = NewArbeitnowAdapter(client)
			}

			postings, err := a.Fetch(context.Background(), model.Target{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(postings) != 1 {
				t.Fatalf("expected 1 posting, got %d", len(postings))
			}
			p := postings[0]
			if p.Title != "Go Developer" || p.Company != "Acme" {
				t.Errorf("unexpected posting %+v", p)
			}
			if p.Remote != tt.remote {
				t.Errorf("expected remote=%v", tt.remote)
			}
		})
	}
}

func TestArbeitnow_UnixCreatedAt(t *testing.T) {
	if got := unixSecondsOrRaw("1770000000"); got != "2026-02-02T02:40:00Z" {
		t.Errorf("unexpected conversion %q", got)
	}
	if got := unixSecondsOrRaw("2026-01-01"); got != "2026-01-01" {
		t.Errorf("expected raw pass-through, got %q", got)
	}
}

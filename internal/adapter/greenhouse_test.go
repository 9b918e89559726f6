package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amishk599/liveroles/internal/model"
)

func TestGreenhouseFetch_Success(t *testing.T) {
	payload := `{
		"jobs": [
			{
				"id": 12345,
				"title": "Software Engineer",
				"location": {"name": "Berlin, Germany"},
				"absolute_url": "https://boards.greenhouse.io/acme/jobs/12345",
				"updated_at": "2026-02-13T10:00:00Z",
				"content": "&lt;p&gt;Build &amp;amp; ship.&lt;/p&gt;&lt;script&gt;track()&lt;/script&gt;"
			},
			{
				"id": 67890,
				"title": "Backend Engineer",
				"location": null,
				"absolute_url": "https://boards.greenhouse.io/acme/jobs/67890"
			}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/boards/acme/jobs" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("content") != "true" {
			t.Errorf("expected content=true, got %q", r.URL.RawQuery)
		}
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	a := NewGreenhouseAdapter(newTestClient(srv))
	postings, err := a.Fetch(context.Background(), model.Target{ID: "acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(postings))
	}

	p := postings[0]
	if p.Source != "greenhouse" {
		t.Errorf("expected source greenhouse, got %s", p.Source)
	}
	if p.Company != "acme" {
		t.Errorf("expected company acme, got %s", p.Company)
	}
	if p.Location != "Berlin, Germany" {
		t.Errorf("unexpected location %q", p.Location)
	}
	if p.UpdatedAt == nil || *p.UpdatedAt != "2026-02-13T10:00:00Z" {
		t.Errorf("unexpected updated_at %v", p.UpdatedAt)
	}
	if p.Description != "Build & ship." {
		t.Errorf("expected decoded plain description, got %q", p.Description)
	}

	if postings[1].Location != "" || postings[1].UpdatedAt != nil {
		t.Errorf("expected missing fields to stay empty, got %+v", postings[1])
	}
}

func TestGreenhouseFetch_EmptyBoard(t *testing.T) {
	srv := serve(`{"jobs": []}`)
	defer srv.Close()

	postings, err := NewGreenhouseAdapter(newTestClient(srv)).Fetch(context.Background(), model.Target{ID: "empty-co"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 0 {
		t.Fatalf("expected 0 postings, got %d", len(postings))
	}
}

func TestGreenhouseFetch_MalformedJSON(t *testing.T) {
	srv := serve(`{not valid json`)
	defer srv.Close()

	_, err := NewGreenhouseAdapter(newTestClient(srv)).Fetch(context.Background(), model.Target{ID: "bad-co"})
	if err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

func TestGreenhouseFetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewGreenhouseAdapter(newTestClient(srv)).Fetch(context.Background(), model.Target{ID: "fail-co"})
	if err == nil {
		t.Fatal("expected error for HTTP 500, got nil")
	}
}

package fetch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/liveroles/internal/adapter"
	"github.com/amishk599/liveroles/internal/model"
	"github.com/amishk599/liveroles/internal/sources"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubAdapter returns canned postings per target ID and records calls.
type stubAdapter struct {
	kind    model.ProviderKind
	results map[string][]model.Posting
	errs    map[string]error
	delay   time.Duration
	enabled *bool

	mu       sync.Mutex
	targets  []model.Target
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (s *stubAdapter) Kind() model.ProviderKind { return s.kind }

func (s *stubAdapter) Fetch(ctx context.Context, target model.Target) ([]model.Posting, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}

	s.mu.Lock()
	s.targets = append(s.targets, target)
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := s.errs[target.ID]; err != nil {
		return nil, err
	}
	return s.results[target.ID], nil
}

func (s *stubAdapter) calls() []model.Target {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Target(nil), s.targets...)
}

// keyedStub is a stubAdapter with credentials.
type keyedStub struct{ *stubAdapter }

func (k keyedStub) Enabled() bool { return k.enabled != nil && *k.enabled }

func posting(source, company, title string) model.Posting {
	return model.Posting{Source: source, Company: company, Title: title, URL: "https://example.com/" + company + "/" + title}
}

func TestRun_CollectsDedupesAndIsolatesFailures(t *testing.T) {
	gh := &stubAdapter{
		kind: model.KindGreenhouse,
		results: map[string][]model.Posting{
			"acme": {
				posting("greenhouse", "acme", "Go Engineer"),
				{Source: "greenhouse", Company: "Acme", Title: "go  engineer", URL: "https://example.com/acme/Go Engineer"},
				{Source: "greenhouse", Company: "acme", Title: "", URL: "https://x"},
			},
		},
		errs: map[string]error{"broken": errors.New("HTTP 500")},
	}
	lever := &stubAdapter{
		kind:    model.KindLever,
		results: map[string][]model.Posting{"beta": {posting("lever", "beta", "SRE")}},
	}
	set := adapter.Set{model.KindGreenhouse: gh, model.KindLever: lever}

	o := New(set, Options{MaxConcurrency: 4, MaxRuntime: time.Second}, discardLogger())
	res := o.Run(context.Background(), sources.Plan{
		Greenhouse: []string{"acme", "broken"},
		Lever:      []string{"beta"},
	})

	require.Len(t, res.Postings, 2)
	assert.Equal(t, "Go Engineer", res.Postings[0].Title)
	assert.Equal(t, "SRE", res.Postings[1].Title)
	assert.Equal(t, 3, res.Fetched["greenhouse"])
	assert.Equal(t, 1, res.Failures["greenhouse"])
	assert.False(t, res.TimedOut)
}

func TestRun_SkipsKeyedProvidersWithoutCredentials(t *testing.T) {
	off := false
	adzuna := keyedStub{&stubAdapter{kind: model.KindAdzuna, enabled: &off}}
	set := adapter.Set{model.KindAdzuna: adzuna}

	o := New(set, Options{MaxConcurrency: 2}, discardLogger())
	res := o.Run(context.Background(), sources.Plan{Adzuna: true, AdzunaCountries: []string{"de"}})

	assert.Empty(t, res.Postings)
	assert.Empty(t, adzuna.calls())
}

func TestRun_CountryFanOut(t *testing.T) {
	on := true
	jooble := keyedStub{&stubAdapter{kind: model.KindJooble, enabled: &on}}
	set := adapter.Set{model.KindJooble: jooble}

	o := New(set, Options{MaxConcurrency: 2}, discardLogger())
	o.Run(context.Background(), sources.Plan{
		Jooble:          true,
		JoobleCountries: []string{"de", "in"},
		SearchQueries:   []string{"  Go   Engineer ", "go engineer", "q2", "q3", "q4", "q5", ""},
	})

	calls := jooble.calls()
	assert.Len(t, calls, 8, "two countries with at most four queries each")
	byCountry := map[string][]string{}
	for _, c := range calls {
		byCountry[c.Country] = append(byCountry[c.Country], c.ID)
	}
	assert.ElementsMatch(t, []string{"go engineer", "q2", "q3", "q4"}, byCountry["de"])
	assert.ElementsMatch(t, []string{"go engineer", "q2", "q3", "q4"}, byCountry["in"])
}

func TestRun_DefaultQueries(t *testing.T) {
	on := true
	adzuna := keyedStub{&stubAdapter{kind: model.KindAdzuna, enabled: &on}}
	serp := keyedStub{&stubAdapter{kind: model.KindSerpGoogleJobs, enabled: &on}}
	boards := keyedStub{&stubAdapter{kind: model.KindSerpJobBoards, enabled: &on}}
	set := adapter.Set{
		model.KindAdzuna:         adzuna,
		model.KindSerpGoogleJobs: serp,
		model.KindSerpJobBoards:  boards,
	}

	o := New(set, Options{MaxConcurrency: 2, MaxSerpQueries: 3}, discardLogger())
	o.Run(context.Background(), sources.Plan{
		Adzuna:          true,
		AdzunaCountries: []string{"fr"},
		SerpGoogleJobs:  true,
		SerpJobBoards:   true,
		HasSerpAPI:      true,
	})

	assert.Equal(t, []model.Target{{ID: "software engineer", Country: "fr"}}, adzuna.calls())
	assert.Equal(t, []model.Target{{ID: "software engineer germany"}}, serp.calls())
	assert.Empty(t, boards.calls(), "organic search has no default query")
}

func TestRun_SerpQueryCap(t *testing.T) {
	on := true
	serp := keyedStub{&stubAdapter{kind: model.KindSerpGoogleJobs, enabled: &on}}
	o := New(adapter.Set{model.KindSerpGoogleJobs: serp}, Options{MaxConcurrency: 4, MaxSerpQueries: 2}, discardLogger())
	o.Run(context.Background(), sources.Plan{
		SerpGoogleJobs: true,
		HasSerpAPI:     true,
		SearchQueries:  []string{"a", "b", "c"},
	})
	assert.Len(t, serp.calls(), 2)
}

func TestRun_OfficialPagesNeedSerpOfficialSites(t *testing.T) {
	pages := &stubAdapter{kind: model.KindOfficialJSONLD}
	o := New(adapter.Set{model.KindOfficialJSONLD: pages}, Options{MaxConcurrency: 2}, discardLogger())

	o.Run(context.Background(), sources.Plan{OfficialCareerPages: []string{"https://acme.com/careers"}})
	assert.Empty(t, pages.calls())

	o.Run(context.Background(), sources.Plan{
		OfficialCareerPages: []string{"https://acme.com/careers"},
		SerpOfficialSites:   true,
		HasSerpAPI:          true,
	})
	assert.Len(t, pages.calls(), 1)
}

func TestRun_RespectsConcurrencyLimit(t *testing.T) {
	gh := &stubAdapter{kind: model.KindGreenhouse, delay: 20 * time.Millisecond}
	personio := &stubAdapter{kind: model.KindPersonio, delay: 20 * time.Millisecond}
	set := adapter.Set{model.KindGreenhouse: gh, model.KindPersonio: personio}

	companies := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	o := New(set, Options{MaxConcurrency: 4}, discardLogger())
	o.Run(context.Background(), sources.Plan{Greenhouse: companies, Personio: companies})

	assert.LessOrEqual(t, gh.peak.Load(), int32(4))
	assert.LessOrEqual(t, personio.peak.Load(), int32(2))
	assert.Len(t, gh.calls(), 8)
}

func TestRun_DeadlineKeepsCompletedResults(t *testing.T) {
	fast := &stubAdapter{
		kind:    model.KindGreenhouse,
		results: map[string][]model.Posting{"acme": {posting("greenhouse", "acme", "Engineer")}},
	}
	slow := &stubAdapter{kind: model.KindLever, delay: 5 * time.Second}
	set := adapter.Set{model.KindGreenhouse: fast, model.KindLever: slow}

	o := New(set, Options{MaxConcurrency: 2, MaxRuntime: 100 * time.Millisecond}, discardLogger())
	start := time.Now()
	res := o.Run(context.Background(), sources.Plan{Greenhouse: []string{"acme"}, Lever: []string{"slowco"}})

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.True(t, res.TimedOut)
	require.Len(t, res.Postings, 1)
	assert.Equal(t, "Engineer", res.Postings[0].Title)
}

func TestDedupe(t *testing.T) {
	in := []model.Posting{
		posting("greenhouse", "acme", "Engineer"),
		posting("lever", "acme", "Engineer"),
		posting("greenhouse", "acme", "Engineer"),
		{Title: "No URL"},
	}
	out := Dedupe(in)
	require.Len(t, out, 2)
	assert.Equal(t, "greenhouse", out[0].Source)
	assert.Equal(t, "lever", out[1].Source)
}

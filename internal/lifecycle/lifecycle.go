// Package lifecycle merges a bucket's fresh postings into its prior state and
// ages every posting from its first observation.
package lifecycle

import (
	"sort"
	"time"

	"github.com/amishk599/liveroles/internal/model"
)

const day = 24 * time.Hour

// Policy holds the aging thresholds.
type Policy struct {
	StaleAfterDays    int
	InactiveAfterDays int
	Action            model.InactiveAction
}

// Partition is the reconciled state of one bucket.
type Partition struct {
	Active  []model.DatedPosting
	Archive []model.DatedPosting // inactive postings, empty for hard_delete
	Dropped int                  // inactive postings discarded by hard_delete
}

// StaleCount returns the number of active postings marked stale.
func (p Partition) StaleCount() int {
	n := 0
	for _, d := range p.Active {
		if d.IsStale {
			n++
		}
	}
	return n
}

// Reconcile merges fresh into prior, recomputes staleness against now and
// splits the result into active and inactive postings. One record survives
// per identity: a re-observed posting takes its content, score and pulled_at
// from the fresh fetch but keeps the fetched_at of the prior record, so
// stale_days counts from the first observation. Inputs are not modified.
func Reconcile(prior []model.DatedPosting, fresh []model.ScoredPosting, now time.Time, policy Policy) Partition {
	stamp := model.FormatTimestamp(now)

	firstSeen := make(map[string]string, len(prior))
	for _, d := range prior {
		key := d.IdentityKey()
		if _, ok := firstSeen[key]; !ok {
			firstSeen[key] = d.FetchedAt
		}
	}

	seen := make(map[string]struct{}, len(prior)+len(fresh))
	merged := make([]model.DatedPosting, 0, len(prior)+len(fresh))
	for _, sp := range fresh {
		key := sp.IdentityKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		d := Dated(sp, stamp)
		if at, ok := firstSeen[key]; ok {
			d.FetchedAt = earliest(at, stamp, now)
		}
		merged = append(merged, d)
	}
	for _, d := range prior {
		key := d.IdentityKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, d)
	}

	sortDated(merged)
	for i := range merged {
		merged[i] = Age(merged[i], now, policy.StaleAfterDays)
	}

	var part Partition
	for _, d := range merged {
		if d.StaleDays < policy.InactiveAfterDays {
			part.Active = append(part.Active, d)
			continue
		}
		if policy.Action == model.InactiveArchive {
			part.Archive = append(part.Archive, d)
		} else {
			part.Dropped++
		}
	}
	return part
}

// Dated stamps a scored posting as observed at stamp.
func Dated(sp model.ScoredPosting, stamp string) model.DatedPosting {
	return model.DatedPosting{
		ScoredPosting: sp,
		FetchedAt:     stamp,
		PulledAt:      stamp,
	}
}

// earliest returns the prior fetched_at unless it cannot be parsed or lies
// after now, in which case the current stamp is used.
func earliest(prior, stamp string, now time.Time) string {
	if ts, ok := ParseTimestamp(prior); ok && !ts.After(now) {
		return prior
	}
	return stamp
}

// Age recomputes StaleDays and IsStale. An unparseable fetched_at counts as
// one day past the stale threshold.
func Age(d model.DatedPosting, now time.Time, staleAfterDays int) model.DatedPosting {
	days := staleAfterDays + 1
	if ts, ok := ParseTimestamp(d.FetchedAt); ok {
		elapsed := now.Sub(ts)
		days = int(elapsed / day)
		if elapsed < 0 && elapsed%day != 0 {
			days--
		}
	}
	d.StaleDays = max(0, days)
	d.IsStale = days >= staleAfterDays
	return d
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp forms found in persisted output.
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// sortDated orders by fetched_at descending when both timestamps parse and
// differ, otherwise by score descending.
func sortDated(ds []model.DatedPosting) {
	sort.SliceStable(ds, func(i, j int) bool {
		ti, okI := ParseTimestamp(ds[i].FetchedAt)
		tj, okJ := ParseTimestamp(ds[j].FetchedAt)
		if okI && okJ && !ti.Equal(tj) {
			return ti.After(tj)
		}
		return ds[i].Score > ds[j].Score
	})
}

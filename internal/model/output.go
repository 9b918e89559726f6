package model

import "time"

// OutputSchemaVersion tags every output document.
const OutputSchemaVersion = "roles.v1"

// InactiveAction says what happens to postings past the inactivity threshold.
type InactiveAction string

const (
	InactiveArchive    InactiveAction = "archive"
	InactiveHardDelete InactiveAction = "hard_delete"
)

// OutputDocument is produced fresh each run and read back as prior state.
type OutputDocument struct {
	SchemaVersion string                    `json:"schema_version" yaml:"schema_version"`
	RunID         string                    `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	ProfileID     string                    `json:"profile_id" yaml:"profile_id"`
	ProfileName   string                    `json:"profile_name" yaml:"profile_name"`
	GeneratedAt   string                    `json:"generated_at" yaml:"generated_at"`
	Buckets       map[string][]DatedPosting `json:"buckets" yaml:"buckets"`
	Archive       map[string][]DatedPosting `json:"archive" yaml:"archive"`
	Meta          OutputMeta                `json:"meta" yaml:"meta"`
}

// OutputMeta carries counts and timings so degraded runs are observable.
type OutputMeta struct {
	StaleAfterDays    int              `json:"stale_after_days" yaml:"stale_after_days"`
	InactiveAfterDays int              `json:"inactive_after_days" yaml:"inactive_after_days"`
	InactiveAction    InactiveAction   `json:"inactive_action" yaml:"inactive_action"`
	SourceCounts      map[string]int   `json:"source_counts" yaml:"source_counts"`
	FetchedCounts     map[string]int   `json:"fetched_counts,omitempty" yaml:"fetched_counts,omitempty"`
	StaleCounts       map[string]int   `json:"stale_counts" yaml:"stale_counts"`
	InactiveCounts    map[string]int   `json:"inactive_counts" yaml:"inactive_counts"`
	TimingsMS         map[string]int64 `json:"timings_ms" yaml:"timings_ms"`
	FetchTimedOut     bool             `json:"fetch_timed_out,omitempty" yaml:"fetch_timed_out,omitempty"`
}

// TimestampLayout is the ISO layout used for fetched_at, pulled_at and generated_at.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// RunRecord is one entry of the run ledger.
type RunRecord struct {
	RunID        string
	ProfileID    string
	StartedAt    time.Time
	FinishedAt   time.Time
	Fetched      int
	Kept         int
	Archived     int
	FetchMS      int64
	TotalMS      int64
	TimedOut     bool
	SourceCounts map[string]int
}

// RunStore records completed runs.
type RunStore interface {
	RecordRun(rec RunRecord) error
	RecentRuns(limit int) ([]RunRecord, error)
}

package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/liveroles/internal/model"
)

// SQLiteStore is the run ledger: one row per completed run plus the
// per-provider counts of that run.
type SQLiteStore struct {
	db *sql.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		run_id      TEXT PRIMARY KEY,
		profile_id  TEXT NOT NULL,
		started_at  TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		fetched     INTEGER NOT NULL,
		kept        INTEGER NOT NULL,
		archived    INTEGER NOT NULL,
		fetch_ms    INTEGER NOT NULL,
		total_ms    INTEGER NOT NULL,
		timed_out   INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS run_source_counts (
		run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
		source TEXT NOT NULL,
		count  INTEGER NOT NULL,
		PRIMARY KEY (run_id, source)
	)`,
	`CREATE INDEX IF NOT EXISTS runs_started_at ON runs(started_at)`,
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the ledger tables exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	// One connection keeps the foreign_keys pragma in effect for every query.
	db.SetMaxOpenConns(1)

	for _, stmt := range append([]string{"PRAGMA foreign_keys = ON"}, schema...) {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating ledger schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// RecordRun stores one run and its per-source counts in a single transaction.
func (s *SQLiteStore) RecordRun(rec model.RunRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("recording run %s: %w", rec.RunID, err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs
		(run_id, profile_id, started_at, finished_at, fetched, kept, archived, fetch_ms, total_ms, timed_out)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.ProfileID,
		formatTime(rec.StartedAt), formatTime(rec.FinishedAt),
		rec.Fetched, rec.Kept, rec.Archived,
		rec.FetchMS, rec.TotalMS, rec.TimedOut,
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", rec.RunID, err)
	}
	for source, count := range rec.SourceCounts {
		if _, err := tx.Exec("INSERT INTO run_source_counts (run_id, source, count) VALUES (?, ?, ?)",
			rec.RunID, source, count); err != nil {
			return fmt.Errorf("recording counts of run %s: %w", rec.RunID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("recording run %s: %w", rec.RunID, err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *SQLiteStore) RecentRuns(limit int) ([]model.RunRecord, error) {
	rows, err := s.db.Query(`SELECT run_id, profile_id, started_at, finished_at,
		fetched, kept, archived, fetch_ms, total_ms, timed_out
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []model.RunRecord
	for rows.Next() {
		var (
			rec               model.RunRecord
			started, finished string
		)
		if err := rows.Scan(&rec.RunID, &rec.ProfileID, &started, &finished,
			&rec.Fetched, &rec.Kept, &rec.Archived, &rec.FetchMS, &rec.TotalMS, &rec.TimedOut); err != nil {
			return nil, fmt.Errorf("reading run: %w", err)
		}
		rec.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	for i := range runs {
		counts, err := s.sourceCounts(runs[i].RunID)
		if err != nil {
			return nil, err
		}
		runs[i].SourceCounts = counts
	}
	return runs, nil
}

func (s *SQLiteStore) sourceCounts(runID string) (map[string]int, error) {
	rows, err := s.db.Query("SELECT source, count FROM run_source_counts WHERE run_id = ?", runID)
	if err != nil {
		return nil, fmt.Errorf("reading counts of run %s: %w", runID, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			source string
			count  int
		)
		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("reading counts of run %s: %w", runID, err)
		}
		counts[source] = count
	}
	return counts, rows.Err()
}

// Cleanup deletes runs that started more than olderThan ago.
func (s *SQLiteStore) Cleanup(olderThan time.Duration) error {
	cutoff := formatTime(time.Now().Add(-olderThan))
	_, err := s.db.Exec("DELETE FROM runs WHERE started_at < ?", cutoff)
	if err != nil {
		return fmt.Errorf("cleaning up runs older than %v: %w", olderThan, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// formatTime renders UTC with fixed-width fractions so text order is time order.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}

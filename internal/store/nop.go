package store

import (
	"time"

	"github.com/amishk599/liveroles/internal/model"
)

// NopStore is a no-op ledger used in dry-run mode. It records nothing and
// lists no runs.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) RecordRun(rec model.RunRecord) error             { return nil }
func (s *NopStore) RecentRuns(limit int) ([]model.RunRecord, error) { return nil, nil }
func (s *NopStore) Cleanup(olderThan time.Duration) error           { return nil }
func (s *NopStore) Close() error                                    { return nil }

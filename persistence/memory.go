package persistence

import (
	"context"
	"sync"

	"github.com/wfunc/nightfall/models"
)

// MemoryStore keeps the most recent game records in process. It is used when
// no database is configured; history is lost on restart.
type MemoryStore struct {
	records []models.GameRecord
	max     int
	mu      sync.RWMutex
}

// NewMemoryStore keeps at most max records. A non-positive max keeps 100.
func NewMemoryStore(max int) *MemoryStore {
	if max <= 0 {
		max = 100
	}
	return &MemoryStore{max: max}
}

func (s *MemoryStore) SaveGameRecord(_ context.Context, record *models.GameRecord) error {
	if err := validate(record); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := *record
	rec.Players = append([]models.PlayerRecord(nil), record.Players...)
	s.records = append(s.records, rec)
	if len(s.records) > s.max {
		s.records = s.records[len(s.records)-s.max:]
	}
	return nil
}

func (s *MemoryStore) RecentGameRecords(_ context.Context, limit int) ([]models.GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit = normalizeLimit(limit)
	out := make([]models.GameRecord, 0, min(limit, len(s.records)))
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

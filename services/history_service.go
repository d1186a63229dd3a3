// services/history_service.go
package services

import (
	"context"
	"time"

	"github.com/wfunc/nightfall/logger"
	"github.com/wfunc/nightfall/models"
	"github.com/wfunc/nightfall/persistence"
)

const saveTimeout = 5 * time.Second

// HistoryService 记录已结束的对局
type HistoryService struct {
	db persistence.Database
}

func NewHistoryService(db persistence.Database) *HistoryService {
	return &HistoryService{db: db}
}

// RecordGame stores a finished game. Failures are logged and returned; the
// game itself is already over and is not affected.
func (s *HistoryService) RecordGame(ctx context.Context, record models.GameRecord) error {
	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()

	if err := s.db.SaveGameRecord(ctx, &record); err != nil {
		logger.Log.Errorw("Failed to save game record",
			"room", record.RoomCode,
			"winner", record.Winner,
			"error", err)
		return err
	}
	logger.Log.Infow("Game recorded",
		"room", record.RoomCode,
		"winner", record.Winner,
		"rounds", record.Rounds)
	return nil
}

// RecentGames 最近结束的对局，最新的在前
func (s *HistoryService) RecentGames(ctx context.Context, limit int) ([]models.GameRecord, error) {
	return s.db.RecentGameRecords(ctx, limit)
}

// WinCounts tallies winners over the most recent games.
func (s *HistoryService) WinCounts(ctx context.Context, limit int) (map[models.Winner]int, error) {
	records, err := s.db.RecentGameRecords(ctx, limit)
	if err != nil {
		return nil, err
	}
	counts := make(map[models.Winner]int, 2)
	for _, r := range records {
		counts[r.Winner]++
	}
	return counts, nil
}

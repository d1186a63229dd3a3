// persistence/interface.go
package persistence

import (
	"context"
	"fmt"

	"github.com/wfunc/nightfall/models"
)

// Database 游戏记录存储接口
type Database interface {
	SaveGameRecord(ctx context.Context, record *models.GameRecord) error
	// RecentGameRecords returns at most limit records, newest first.
	RecentGameRecords(ctx context.Context, limit int) ([]models.GameRecord, error)
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = fmt.Errorf("record not found")
	ErrInvalidRecord  = fmt.Errorf("invalid game record")
)

// DefaultRecentLimit caps history queries that pass a non-positive limit.
const DefaultRecentLimit = 20

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecentLimit
	}
	return limit
}

func validate(record *models.GameRecord) error {
	if record == nil || record.RoomCode == "" || record.Winner == models.WinnerNone {
		return ErrInvalidRecord
	}
	return nil
}

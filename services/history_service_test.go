package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/nightfall/models"
	"github.com/wfunc/nightfall/persistence"
)

type failingDB struct{}

func (failingDB) SaveGameRecord(context.Context, *models.GameRecord) error {
	return errors.New("db down")
}
func (failingDB) RecentGameRecords(context.Context, int) ([]models.GameRecord, error) {
	return nil, errors.New("db down")
}
func (failingDB) Close() error { return nil }

func finished(code string, w models.Winner) models.GameRecord {
	return models.GameRecord{RoomCode: code, Winner: w, Rounds: 1, EndedAt: time.Now()}
}

func TestHistoryService_RecordAndList(t *testing.T) {
	ctx := context.Background()
	svc := NewHistoryService(persistence.NewMemoryStore(10))

	require.NoError(t, svc.RecordGame(ctx, finished("AAAA", models.WinnerCitizens)))
	require.NoError(t, svc.RecordGame(ctx, finished("BBBB", models.WinnerMurderer)))
	require.NoError(t, svc.RecordGame(ctx, finished("CCCC", models.WinnerCitizens)))

	games, err := svc.RecentGames(ctx, 2)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "CCCC", games[0].RoomCode)

	counts, err := svc.WinCounts(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, map[models.Winner]int{models.WinnerCitizens: 2, models.WinnerMurderer: 1}, counts)
}

func TestHistoryService_Errors(t *testing.T) {
	ctx := context.Background()
	svc := NewHistoryService(failingDB{})

	assert.Error(t, svc.RecordGame(ctx, finished("AAAA", models.WinnerCitizens)))
	_, err := svc.WinCounts(ctx, 10)
	assert.Error(t, err)
}

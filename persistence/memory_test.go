package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/nightfall/models"
)

func record(code string, winner models.Winner) *models.GameRecord {
	now := time.Now()
	return &models.GameRecord{
		RoomCode:  code,
		Winner:    winner,
		Rounds:    2,
		StartedAt: now.Add(-time.Minute),
		EndedAt:   now,
		Players: []models.PlayerRecord{
			{ID: "a", Name: "A", Role: models.RoleMurderer, Alive: false},
			{ID: "b", Name: "B", Role: models.RoleCivilian, Alive: true},
		},
	}
}

func TestMemoryStore_NewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10)

	require.NoError(t, store.SaveGameRecord(ctx, record("AAAA", models.WinnerCitizens)))
	require.NoError(t, store.SaveGameRecord(ctx, record("BBBB", models.WinnerMurderer)))

	got, err := store.RecentGameRecords(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "BBBB", got[0].RoomCode)
	assert.Equal(t, models.WinnerMurderer, got[0].Winner)
	assert.Equal(t, "AAAA", got[1].RoomCode)
}

func TestMemoryStore_Capacity(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(3)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.SaveGameRecord(ctx, record(fmt.Sprintf("R%03d", i), models.WinnerCitizens)))
	}

	got, err := store.RecentGameRecords(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "R004", got[0].RoomCode)
	assert.Equal(t, "R002", got[2].RoomCode)

	got, err = store.RecentGameRecords(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestMemoryStore_CopiesRecords(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	rec := record("AAAA", models.WinnerCitizens)
	require.NoError(t, store.SaveGameRecord(ctx, rec))

	rec.Players[0].Name = "changed"
	got, err := store.RecentGameRecords(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "A", got[0].Players[0].Name)
}

func TestMemoryStore_RejectsUnfinishedGames(t *testing.T) {
	store := NewMemoryStore(0)
	assert.ErrorIs(t, store.SaveGameRecord(context.Background(), nil), ErrInvalidRecord)
	assert.ErrorIs(t, store.SaveGameRecord(context.Background(), record("AAAA", models.WinnerNone)), ErrInvalidRecord)
	assert.ErrorIs(t, store.SaveGameRecord(context.Background(), record("", models.WinnerCitizens)), ErrInvalidRecord)
}

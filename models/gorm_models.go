// models/gorm_models.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// GormGameRecord 游戏记录表
type GormGameRecord struct {
	gorm.Model
	RoomCode  string         `gorm:"index;not null"`
	Winner    string         `gorm:"not null"`
	Rounds    int            `gorm:"default:0"`
	Players   []PlayerRecord `gorm:"serializer:json;type:jsonb;not null"`
	StartedAt time.Time
	EndedAt   time.Time `gorm:"index"`
}

func (GormGameRecord) TableName() string {
	return "game_records"
}

// NewGormGameRecord converts a finished game into its table row.
func NewGormGameRecord(r *GameRecord) *GormGameRecord {
	return &GormGameRecord{
		RoomCode:  r.RoomCode,
		Winner:    string(r.Winner),
		Rounds:    r.Rounds,
		Players:   r.Players,
		StartedAt: r.StartedAt,
		EndedAt:   r.EndedAt,
	}
}

func (g *GormGameRecord) ToRecord() GameRecord {
	return GameRecord{
		RoomCode:  g.RoomCode,
		Winner:    Winner(g.Winner),
		Rounds:    g.Rounds,
		Players:   g.Players,
		StartedAt: g.StartedAt,
		EndedAt:   g.EndedAt,
	}
}

// models/models.go
package models

import (
	"time"
)

// Phase 房间生命周期中的阶段
type Phase string

const (
	PhaseLobby   Phase = "LOBBY"
	PhaseNight   Phase = "NIGHT"
	PhaseDay     Phase = "DAY"
	PhaseVote    Phase = "VOTE"
	PhaseResolve Phase = "RESOLVE"
	PhaseEnd     Phase = "END"
)

func (p Phase) String() string {
	return string(p)
}

// Role 玩家的秘密身份
type Role string

const (
	RoleMurderer  Role = "MURDERER"
	RoleDetective Role = "DETECTIVE"
	RoleDoctor    Role = "DOCTOR"
	RoleCivilian  Role = "CIVILIAN"
)

// Winner is the side that ended the game. The zero value means the game goes on.
type Winner string

const (
	WinnerNone     Winner = ""
	WinnerCitizens Winner = "citizens"
	WinnerMurderer Winner = "murderer"
)

// Player 房间中的一个在线玩家
type Player struct {
	ID      string
	Name    string
	Alive   bool
	VoteFor string // empty means no vote
}

// NightActions 每晚的行动暂存，进入新的夜晚时清空
type NightActions struct {
	Kill    string
	Save    string
	Inspect string
}

// RoomView is the public projection of a room sent to every member.
// Roles and night targets never appear here.
type RoomView struct {
	Code        string       `json:"code"`
	Phase       Phase        `json:"phase"`
	Host        string       `json:"host"`
	TimerEndsAt int64        `json:"timerEndsAt"` // unix millis, 0 when no timer
	Players     []PlayerView `json:"players"`
}

type PlayerView struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Alive   bool    `json:"alive"`
	VoteFor *string `json:"voteFor"`
}

// GameRecord 游戏记录模型，游戏结束时生成
type GameRecord struct {
	RoomCode  string         `json:"room_code"`
	Winner    Winner         `json:"winner"`
	Rounds    int            `json:"rounds"`
	Players   []PlayerRecord `json:"players"`
	StartedAt time.Time      `json:"started_at"`
	EndedAt   time.Time      `json:"ended_at"`
}

// PlayerRecord 玩家信息（用于游戏记录）
type PlayerRecord struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
	Alive bool   `json:"alive"`
}

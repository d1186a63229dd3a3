package room

import (
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/wfunc/nightfall/logger"
	"github.com/wfunc/nightfall/models"
)

const (
	// CodeAlphabet leaves out I, O, 0 and 1.
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	CodeLength   = 4
)

// Options are shared by every room a Manager creates.
type Options struct {
	Settings    Settings
	Broadcaster Broadcaster
	Timers      Scheduler
	Clock       clockwork.Clock
	// OnGameEnd receives the record of every finished game on its own goroutine.
	OnGameEnd func(models.GameRecord)
}

// Manager 管理所有房间
type Manager struct {
	rooms   map[string]*Room
	mutex   sync.RWMutex
	opts    Options
	newCode func() string
}

// NewRoomManager 创建一个新的房间管理器
func NewRoomManager(opts Options) *Manager {
	return &Manager{
		rooms:   make(map[string]*Room),
		opts:    opts,
		newCode: randomCode,
	}
}

func randomCode() string {
	code := make([]byte, CodeLength)
	for i := range code {
		code[i] = CodeAlphabet[rand.IntN(len(CodeAlphabet))]
	}
	return string(code)
}

// NormalizeCode makes room codes case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CreateRoom 创建一个新房间，创建者为房主
func (m *Manager) CreateRoom(hostID, hostName string) *Room {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	code := m.newCode()
	for {
		if _, taken := m.rooms[code]; !taken {
			break
		}
		code = m.newCode()
	}

	room := newRoom(code, hostID, hostName, m.opts)
	m.rooms[code] = room
	logger.Log.Infof("Session %s created room %s", hostID, code)
	return room
}

// GetRoom 从管理器中获取一个房间
func (m *Manager) GetRoom(code string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	room, exists := m.rooms[NormalizeCode(code)]
	return room, exists
}

// FindRoom is GetRoom with ErrRoomNotFound for a missing code.
func (m *Manager) FindRoom(code string) (*Room, error) {
	room, ok := m.GetRoom(code)
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// RemoveRoom 从管理器中移除并关闭一个房间
func (m *Manager) RemoveRoom(code string) {
	m.mutex.Lock()
	room, exists := m.rooms[NormalizeCode(code)]
	if exists {
		delete(m.rooms, room.Code)
	}
	m.mutex.Unlock()

	if exists {
		room.Close()
	}
}

// Leave removes a member and drops the room once its last member is gone.
func (m *Manager) Leave(code, sessionID string) {
	room, ok := m.GetRoom(code)
	if !ok {
		return
	}
	if !room.RemoveMember(sessionID) {
		return
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	// the code may already belong to a newer room
	if m.rooms[room.Code] == room {
		delete(m.rooms, room.Code)
	}
}

// Count 当前房间数量
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// Rooms returns a snapshot of every live room.
func (m *Manager) Rooms() []*Room {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	rooms := make([]*Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// Settings are the rules new rooms are created with.
func (m *Manager) Settings() Settings {
	return m.opts.Settings.normalized()
}

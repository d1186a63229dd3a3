// room/room.go
package room

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"

	"github.com/wfunc/nightfall/game"
	"github.com/wfunc/nightfall/logger"
	"github.com/wfunc/nightfall/models"
	"github.com/wfunc/nightfall/network"
	"github.com/wfunc/nightfall/state"
)

// Settings 房间的游戏参数
type Settings struct {
	MinPlayers    int
	ChatMaxLength int
	NameMaxLength int
	DefaultName   string
	// Durations is how long each phase lasts before it auto-advances.
	// A missing or zero entry leaves that phase untimed.
	Durations map[models.Phase]time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		MinPlayers:    game.MinPlayers,
		ChatMaxLength: 300,
		NameMaxLength: 24,
		DefaultName:   "Player",
		Durations: map[models.Phase]time.Duration{
			models.PhaseNight:   35 * time.Second,
			models.PhaseDay:     75 * time.Second,
			models.PhaseVote:    35 * time.Second,
			models.PhaseResolve: 3 * time.Second,
		},
	}
}

func (s Settings) normalized() Settings {
	def := DefaultSettings()
	if s.MinPlayers < game.MinPlayers {
		s.MinPlayers = game.MinPlayers
	}
	if s.ChatMaxLength <= 0 {
		s.ChatMaxLength = def.ChatMaxLength
	}
	if s.NameMaxLength <= 0 {
		s.NameMaxLength = def.NameMaxLength
	}
	if strings.TrimSpace(s.DefaultName) == "" {
		s.DefaultName = def.DefaultName
	}
	if s.Durations == nil {
		s.Durations = def.Durations
	}
	return s
}

// Room 是游戏房间的核心结构。所有状态都由 mu 保护，
// 玩家动作与阶段定时器在这里串行执行。
type Room struct {
	Code string

	hostID      string
	players     map[string]*models.Player
	order       []string // join order, oldest first
	roles       map[string]models.Role
	night       models.NightActions
	machine     *state.BaseStateMachine
	timerID     int64
	timerEndsAt time.Time
	round       int
	startedAt   time.Time
	winner      models.Winner
	closed      bool

	settings    Settings
	broadcaster Broadcaster
	timers      Scheduler
	clock       clockwork.Clock
	onGameEnd   func(models.GameRecord)

	mu sync.Mutex
}

// newRoom 创建一个新房间，host 是唯一的玩家
func newRoom(code, hostID, hostName string, opts Options) *Room {
	r := &Room{
		Code:        code,
		hostID:      hostID,
		players:     make(map[string]*models.Player),
		settings:    opts.Settings.normalized(),
		broadcaster: opts.Broadcaster,
		timers:      opts.Timers,
		clock:       opts.Clock,
		onGameEnd:   opts.OnGameEnd,
	}
	if r.clock == nil {
		r.clock = clockwork.NewRealClock()
	}

	r.machine = state.NewGameMachine(map[models.Phase]*state.PhaseState{
		models.PhaseNight: state.NewPhaseState(models.PhaseNight, r.onNightEnter, nil),
		models.PhaseVote:  state.NewPhaseState(models.PhaseVote, r.clearVotes, nil),
		models.PhaseEnd:   state.NewPhaseState(models.PhaseEnd, r.onEndEnter, nil),
	}, func() bool {
		return len(r.players) >= r.settings.MinPlayers
	})

	r.addPlayerLocked(hostID, hostName)
	return r
}

// --- 成员管理 ---

// Welcome tells a member which room it is in and syncs the room.
func (r *Room) Welcome(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}
	if _, ok := r.players[id]; !ok {
		return ErrNotInRoom
	}
	r.welcomeLocked(id)
	return nil
}

// Join adds a player. Joining a room with no members makes the joiner host.
// A player arriving after the game started is alive but has no role: they
// chat and vote, take no night action, and count on the citizens' side.
func (r *Room) Join(id, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}
	if _, exists := r.players[id]; !exists {
		p := r.addPlayerLocked(id, name)
		logger.Log.Infof("Session %s joined room %s as %q", id, r.Code, p.Name)
	}
	r.welcomeLocked(id)
	return nil
}

// RemoveMember drops a player and reports whether the room is now empty. An
// empty room is closed and its timer cancelled; a departing host is replaced
// by the longest-connected remaining member.
func (r *Room) RemoveMember(id string) (empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.players[id]; !ok {
		return len(r.players) == 0
	}

	delete(r.players, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	for _, p := range r.players {
		if p.VoteFor == id {
			p.VoteFor = ""
		}
	}

	if len(r.players) == 0 {
		r.closeLocked()
		logger.Log.Infof("Room %s is empty and closed", r.Code)
		return true
	}

	if r.hostID == id {
		r.hostID = r.order[0]
		logger.Log.Infof("Room %s host moved from %s to %s", r.Code, id, r.hostID)
	}
	r.broadcastStateLocked()
	return false
}

// Close stops the room. Pending timers become no-ops.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeLocked()
}

func (r *Room) closeLocked() {
	r.closed = true
	r.cancelTimerLocked()
}

func (r *Room) addPlayerLocked(id, name string) *models.Player {
	if len(r.players) == 0 {
		r.hostID = id
	}
	p := &models.Player{ID: id, Name: r.cleanName(name), Alive: true}
	r.players[id] = p
	r.order = append(r.order, id)
	return p
}

func (r *Room) cleanName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return r.settings.DefaultName
	}
	return truncate(name, r.settings.NameMaxLength)
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// --- 只读访问 ---

func (r *Room) Phase() models.Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.machine.Current()
}

func (r *Room) HostID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostID
}

func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

func (r *Room) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// View returns the public projection of the room.
func (r *Room) View() models.RoomView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewLocked()
}

func (r *Room) viewLocked() models.RoomView {
	view := models.RoomView{
		Code:    r.Code,
		Phase:   r.machine.Current(),
		Host:    r.hostID,
		Players: make([]models.PlayerView, 0, len(r.order)),
	}
	if r.timerID != 0 {
		view.TimerEndsAt = r.timerEndsAt.UnixMilli()
	}
	for _, id := range r.order {
		p := r.players[id]
		pv := models.PlayerView{ID: p.ID, Name: p.Name, Alive: p.Alive}
		if p.VoteFor != "" {
			target := p.VoteFor
			pv.VoteFor = &target
		}
		view.Players = append(view.Players, pv)
	}
	return view
}

// --- 消息发送 ---

func (r *Room) welcomeLocked(id string) {
	r.send(id, network.MsgRoomJoined, network.RoomJoined{Code: r.Code, You: id, Host: r.hostID})
	r.broadcastStateLocked()
}

func (r *Room) broadcastStateLocked() {
	r.broadcast(network.MsgRoomState, r.viewLocked())
}

func (r *Room) announce(code string) {
	r.broadcast(network.MsgSystemMessage, code)
}

func (r *Room) broadcast(msgType string, payload interface{}) {
	if r.broadcaster == nil {
		return
	}
	if err := r.broadcaster.BroadcastToRoom(r.Code, msgType, payload); err != nil {
		logger.Log.Debugf("Room %s broadcast %s failed: %v", r.Code, msgType, err)
	}
}

func (r *Room) send(id, msgType string, payload interface{}) {
	if r.broadcaster == nil {
		return
	}
	if err := r.broadcaster.SendToSession(id, msgType, payload); err != nil {
		logger.Log.Debugf("Room %s send %s to %s failed: %v", r.Code, msgType, id, err)
	}
}

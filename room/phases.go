package room

import (
	"fmt"
	"time"

	"github.com/wfunc/nightfall/game"
	"github.com/wfunc/nightfall/logger"
	"github.com/wfunc/nightfall/models"
	"github.com/wfunc/nightfall/network"
)

// Start deals roles and moves the room from LOBBY to NIGHT. Host only.
func (r *Room) Start(by string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}
	if by != r.hostID {
		return ErrNotHost
	}
	if r.machine.Current() != models.PhaseLobby {
		return ErrWrongPhase
	}
	if len(r.players) < r.settings.MinPlayers {
		return ErrNotEnoughPlayers
	}

	roles := game.AssignRoles(r.order, nil)
	if roles == nil {
		return ErrNotEnoughPlayers
	}
	r.roles = roles
	r.startedAt = r.clock.Now()
	for _, id := range r.order {
		r.send(id, network.MsgRoleAssignment, network.RoleAssignment{Role: string(roles[id])})
	}

	logger.Log.Infof("Room %s started with %d players", r.Code, len(r.players))
	return r.enterLocked(models.PhaseNight)
}

// Advance is the host's manual skip to the next phase. When from is set and
// the room already left that phase (a timer got there first), nothing happens.
func (r *Room) Advance(by string, from models.Phase) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}
	if by != r.hostID {
		return ErrNotHost
	}
	if from != "" && from != r.machine.Current() {
		return ErrWrongPhase
	}
	return r.advanceLocked()
}

// onTimer runs when a phase timer fires. generation is the machine generation
// captured when the timer was armed; anything else means the phase moved on.
func (r *Room) onTimer(generation uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || generation != r.machine.Generation() {
		logger.Log.Debugf("Room %s dropped stale timer (generation %d)", r.Code, generation)
		return
	}
	r.timerID = 0
	if err := r.advanceLocked(); err != nil {
		logger.Log.Warnf("Room %s timer advance failed: %v", r.Code, err)
	}
}

func (r *Room) advanceLocked() error {
	switch r.machine.Current() {
	case models.PhaseNight:
		outcome, _ := game.ResolveNight(r.players, r.night)
		if outcome != game.NightQuiet {
			r.announce(outcome.String())
		}
		if r.finishIfDecidedLocked() {
			return nil
		}
		return r.enterLocked(models.PhaseDay)

	case models.PhaseDay:
		return r.enterLocked(models.PhaseVote)

	case models.PhaseVote:
		if id, ok := game.TallyVotes(r.players); ok {
			ejected := r.players[id]
			ejected.Alive = false
			r.announce("eject:" + ejected.Name)
		} else {
			r.announce("no_eject")
		}
		return r.enterLocked(models.PhaseResolve)

	case models.PhaseResolve:
		if r.finishIfDecidedLocked() {
			return nil
		}
		return r.enterLocked(models.PhaseNight)

	default:
		return ErrWrongPhase
	}
}

// finishIfDecidedLocked ends the game when one side has won.
func (r *Room) finishIfDecidedLocked() bool {
	winner := game.EvaluateWin(r.players, r.roles)
	if winner == models.WinnerNone {
		return false
	}
	r.winner = winner
	r.announce(game.Announcement(winner))
	if err := r.enterLocked(models.PhaseEnd); err != nil {
		logger.Log.Errorf("Room %s could not end game: %v", r.Code, err)
	}
	return true
}

// enterLocked changes phase, re-arms the phase timer and syncs every member.
func (r *Room) enterLocked(next models.Phase) error {
	from := r.machine.Current()
	if err := r.machine.ChangeState(next); err != nil {
		return fmt.Errorf("%s -> %s: %w", from, next, err)
	}

	r.cancelTimerLocked()
	if d := r.settings.Durations[next]; d > 0 && next != models.PhaseEnd && r.timers != nil {
		generation := r.machine.Generation()
		r.timerEndsAt = r.clock.Now().Add(d)
		r.timerID = r.timers.AddTimer(d, func() { r.onTimer(generation) })
	}

	logger.Log.Debugf("Room %s %s -> %s", r.Code, from, next)
	r.broadcastStateLocked()
	return nil
}

func (r *Room) cancelTimerLocked() {
	if r.timerID != 0 && r.timers != nil {
		r.timers.RemoveTimer(r.timerID)
	}
	r.timerID = 0
	r.timerEndsAt = time.Time{}
}

// --- 阶段回调 ---

func (r *Room) onNightEnter() {
	r.round++
	r.night = models.NightActions{}
	r.clearVotes()
}

func (r *Room) clearVotes() {
	for _, p := range r.players {
		p.VoteFor = ""
	}
}

func (r *Room) onEndEnter() {
	logger.Log.Infof("Room %s game over: %s win after %d rounds", r.Code, r.winner, r.round)
	if r.onGameEnd == nil {
		return
	}
	record := r.recordLocked()
	go r.onGameEnd(record)
}

func (r *Room) recordLocked() models.GameRecord {
	record := models.GameRecord{
		RoomCode:  r.Code,
		Winner:    r.winner,
		Rounds:    r.round,
		StartedAt: r.startedAt,
		EndedAt:   r.clock.Now(),
		Players:   make([]models.PlayerRecord, 0, len(r.order)),
	}
	for _, id := range r.order {
		p := r.players[id]
		record.Players = append(record.Players, models.PlayerRecord{
			ID:    p.ID,
			Name:  p.Name,
			Role:  r.roles[id],
			Alive: p.Alive,
		})
	}
	return record
}

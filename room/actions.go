package room

import (
	"fmt"
	"strings"

	"github.com/wfunc/nightfall/game"
	"github.com/wfunc/nightfall/logger"
	"github.com/wfunc/nightfall/models"
	"github.com/wfunc/nightfall/network"
)

// SubmitNightAction records the actor's role action for tonight. A second
// submission from the same role overwrites the first. The detective learns
// the verdict right away.
func (r *Room) SubmitNightAction(by, target string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	actor, err := r.actorLocked(by, models.PhaseNight)
	if err != nil {
		return err
	}
	role := r.roles[actor.ID]
	if !game.ActsAtNight(role) {
		return ErrNoNightRole
	}
	victim, err := r.aliveTargetLocked(target)
	if err != nil {
		return err
	}

	switch role {
	case models.RoleMurderer:
		r.night.Kill = victim.ID
	case models.RoleDoctor:
		r.night.Save = victim.ID
	case models.RoleDetective:
		r.night.Inspect = victim.ID
		r.send(actor.ID, network.MsgInspectResult, network.InspectResult{
			Target:    victim.ID,
			Alignment: game.Alignment(r.roles[victim.ID]),
		})
	}
	logger.Log.Debugf("Room %s night action by %s (%s)", r.Code, actor.ID, role)
	return nil
}

// SubmitVote sets or, with an empty target, clears the voter's choice.
// Votes for dead or absent players are refused.
func (r *Room) SubmitVote(by, target string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	voter, err := r.actorLocked(by, models.PhaseVote)
	if err != nil {
		return err
	}
	if target == "" {
		voter.VoteFor = ""
	} else {
		choice, err := r.aliveTargetLocked(target)
		if err != nil {
			return err
		}
		voter.VoteFor = choice.ID
	}
	r.broadcastStateLocked()
	return nil
}

// Chat relays a day message to the room, cut to the configured length.
func (r *Room) Chat(by, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	speaker, err := r.actorLocked(by, models.PhaseDay)
	if err != nil {
		return err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return ErrEmptyMessage
	}
	r.broadcast(network.MsgChatMessage, network.ChatMessage{
		From:    speaker.Name,
		Message: truncate(message, r.settings.ChatMaxLength),
	})
	return nil
}

// Accuse announces that one player points at another during the day.
func (r *Room) Accuse(by, target string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	accuser, err := r.actorLocked(by, models.PhaseDay)
	if err != nil {
		return err
	}
	accused, err := r.aliveTargetLocked(target)
	if err != nil {
		return err
	}
	if accused.ID == accuser.ID {
		return ErrInvalidTarget
	}
	r.announce(fmt.Sprintf("accuse:%s->%s", accuser.Name, accused.Name))
	return nil
}

// actorLocked checks the common preconditions of an in-game action: an open
// room in the given phase and an alive member acting.
func (r *Room) actorLocked(id string, phase models.Phase) (*models.Player, error) {
	if r.closed {
		return nil, ErrRoomNotFound
	}
	if r.machine.Current() != phase {
		return nil, ErrWrongPhase
	}
	p, ok := r.players[id]
	if !ok {
		return nil, ErrNotInRoom
	}
	if !p.Alive {
		return nil, ErrPlayerDead
	}
	return p, nil
}

func (r *Room) aliveTargetLocked(id string) (*models.Player, error) {
	p, ok := r.players[id]
	if !ok || !p.Alive {
		return nil, ErrInvalidTarget
	}
	return p, nil
}

package state

import (
	"github.com/wfunc/nightfall/models"
)

// NewGameMachine builds the room lifecycle:
//
//	LOBBY -> NIGHT -> DAY -> VOTE -> RESOLVE -> NIGHT ...
//	NIGHT -> END, RESOLVE -> END
//
// Phases missing from states get a state with no hooks. canStart guards
// LOBBY -> NIGHT.
func NewGameMachine(states map[models.Phase]*PhaseState, canStart func() bool) *BaseStateMachine {
	get := func(p models.Phase) State {
		if s, ok := states[p]; ok && s != nil {
			return s
		}
		return NewPhaseState(p, nil, nil)
	}

	sm := NewBaseStateMachine(
		get(models.PhaseLobby),
		get(models.PhaseNight),
		get(models.PhaseDay),
		get(models.PhaseVote),
		get(models.PhaseResolve),
		get(models.PhaseEnd),
	)

	// every phase is registered above, so AddTransition cannot fail here
	_ = sm.AddTransition(models.PhaseLobby, models.PhaseNight, canStart)
	_ = sm.AddTransition(models.PhaseNight, models.PhaseDay, nil)
	_ = sm.AddTransition(models.PhaseNight, models.PhaseEnd, nil)
	_ = sm.AddTransition(models.PhaseDay, models.PhaseVote, nil)
	_ = sm.AddTransition(models.PhaseVote, models.PhaseResolve, nil)
	_ = sm.AddTransition(models.PhaseResolve, models.PhaseNight, nil)
	_ = sm.AddTransition(models.PhaseResolve, models.PhaseEnd, nil)

	return sm
}

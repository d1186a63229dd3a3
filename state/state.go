package state

import (
	"errors"
	"fmt"

	"github.com/wfunc/nightfall/models"
)

// 状态机接口
type StateMachine interface {
	ChangeState(next models.Phase) error
	Current() models.Phase
	Generation() uint64
	AddTransition(from, to models.Phase, condition func() bool) error
}

// 状态接口
type State interface {
	OnEnter()
	OnExit()
	GetID() models.Phase
}

// ErrTransitionNotAllowed is returned when a state transition is not allowed.
var ErrTransitionNotAllowed = errors.New("state transition not allowed")

// ErrUnknownState is returned when a phase has no registered state.
var ErrUnknownState = errors.New("unknown state")

// BaseStateMachine drives registered states along declared transitions.
// It is not safe for concurrent use; the owning room serializes access.
type BaseStateMachine struct {
	states       map[models.Phase]State
	currentState State
	transitions  map[models.Phase]map[models.Phase]func() bool // fromState -> toState -> condition
	generation   uint64
}

// NewBaseStateMachine registers states and enters the first one.
func NewBaseStateMachine(initial State, others ...State) *BaseStateMachine {
	machine := &BaseStateMachine{
		states:       make(map[models.Phase]State, len(others)+1),
		currentState: initial,
		transitions:  make(map[models.Phase]map[models.Phase]func() bool),
	}
	machine.states[initial.GetID()] = initial
	for _, s := range others {
		machine.states[s.GetID()] = s
	}
	initial.OnEnter()
	return machine
}

// ChangeState moves to next if a transition from the current phase was declared
// and its condition holds. Each successful change bumps the generation.
func (sm *BaseStateMachine) ChangeState(next models.Phase) error {
	newState, ok := sm.states[next]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownState, next)
	}

	currentID := sm.currentState.GetID()
	conditions, exists := sm.transitions[currentID]
	if !exists {
		return ErrTransitionNotAllowed
	}
	condition, exists := conditions[next]
	if !exists {
		return ErrTransitionNotAllowed
	}
	if condition != nil && !condition() {
		return ErrTransitionNotAllowed
	}

	sm.currentState.OnExit()
	sm.currentState = newState
	sm.generation++
	sm.currentState.OnEnter()

	return nil
}

func (sm *BaseStateMachine) Current() models.Phase {
	return sm.currentState.GetID()
}

// Generation counts completed transitions. Timers capture it to detect staleness.
func (sm *BaseStateMachine) Generation() uint64 {
	return sm.generation
}

func (sm *BaseStateMachine) AddTransition(from, to models.Phase, condition func() bool) error {
	if _, ok := sm.states[from]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownState, from)
	}
	if _, ok := sm.states[to]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownState, to)
	}

	if _, exists := sm.transitions[from]; !exists {
		sm.transitions[from] = make(map[models.Phase]func() bool)
	}

	sm.transitions[from][to] = condition
	return nil
}

// PhaseState 阶段状态基础结构，进入/退出时执行可选回调
type PhaseState struct {
	ID    models.Phase
	Enter func()
	Exit  func()
}

func NewPhaseState(id models.Phase, enter, exit func()) *PhaseState {
	return &PhaseState{ID: id, Enter: enter, Exit: exit}
}

func (s *PhaseState) GetID() models.Phase {
	return s.ID
}

func (s *PhaseState) OnEnter() {
	if s.Enter != nil {
		s.Enter()
	}
}

func (s *PhaseState) OnExit() {
	if s.Exit != nil {
		s.Exit()
	}
}

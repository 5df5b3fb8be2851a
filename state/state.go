package state

import (
	"errors"
	"sync"
)

// Phase is the room lifecycle state.
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

// Stage is the in-turn sub-state while a game is in progress.
type Stage string

const (
	StageIdle            Stage = "idle"
	StageRolled          Stage = "rolled"
	StageCategoryPending Stage = "category-pending"
	StageTaskActive      Stage = "task-active"
)

// ErrTransitionNotAllowed is returned when a state transition is not allowed.
var ErrTransitionNotAllowed = errors.New("state transition not allowed")

// phaseTransitions is the closed set of legal lifecycle moves. playing and
// finished may both return to waiting: that is the reset/play-again path.
var phaseTransitions = map[Phase][]Phase{
	PhaseWaiting:  {PhasePlaying},
	PhasePlaying:  {PhaseFinished, PhaseWaiting},
	PhaseFinished: {PhaseWaiting},
}

// stageTransitions encodes the turn cycle. Every stage may fall back to
// idle because nextTurn and reset funnel through it.
var stageTransitions = map[Stage][]Stage{
	StageIdle:            {StageRolled},
	StageRolled:          {StageCategoryPending, StageIdle},
	StageCategoryPending: {StageTaskActive, StageIdle},
	StageTaskActive:      {StageIdle},
}

// Machine tracks a room's phase and stage and rejects transitions outside
// the tables above. Operations validate their own preconditions before
// touching the machine, so a transition error here indicates a logic bug,
// not a bad client request.
type Machine struct {
	mutex sync.RWMutex
	phase Phase
	stage Stage
}

func NewMachine() *Machine {
	return &Machine{
		phase: PhaseWaiting,
		stage: StageIdle,
	}
}

func (m *Machine) Phase() Phase {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.phase
}

func (m *Machine) Stage() Stage {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.stage
}

// SetPhase moves the lifecycle forward. Setting the current phase again is
// a no-op. Any phase change resets the stage to idle.
func (m *Machine) SetPhase(next Phase) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if next == m.phase {
		return nil
	}
	if !allowed(phaseTransitions[m.phase], next) {
		return ErrTransitionNotAllowed
	}
	m.phase = next
	m.stage = StageIdle
	return nil
}

// SetStage moves the turn sub-state. Setting the current stage again is a
// no-op.
func (m *Machine) SetStage(next Stage) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if next == m.stage {
		return nil
	}
	if !allowed(stageTransitions[m.stage], next) {
		return ErrTransitionNotAllowed
	}
	m.stage = next
	return nil
}

func allowed[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

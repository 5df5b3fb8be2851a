package state

import (
	"errors"
	"testing"
)

func TestMachineInitialState(t *testing.T) {
	m := NewMachine()
	if m.Phase() != PhaseWaiting {
		t.Errorf("expected initial phase %v, got %v", PhaseWaiting, m.Phase())
	}
	if m.Stage() != StageIdle {
		t.Errorf("expected initial stage %v, got %v", StageIdle, m.Stage())
	}
}

func TestPhaseTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    Phase
		to      Phase
		allowed bool
	}{
		{"waiting to playing", PhaseWaiting, PhasePlaying, true},
		{"waiting to finished", PhaseWaiting, PhaseFinished, false},
		{"playing to finished", PhasePlaying, PhaseFinished, true},
		{"playing to waiting", PhasePlaying, PhaseWaiting, true},
		{"finished to waiting", PhaseFinished, PhaseWaiting, true},
		{"finished to playing", PhaseFinished, PhasePlaying, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Machine{phase: tt.from, stage: StageIdle}
			err := m.SetPhase(tt.to)
			if tt.allowed && err != nil {
				t.Errorf("expected transition %v -> %v to be allowed, got %v", tt.from, tt.to, err)
			}
			if !tt.allowed {
				if !errors.Is(err, ErrTransitionNotAllowed) {
					t.Errorf("expected ErrTransitionNotAllowed for %v -> %v, got %v", tt.from, tt.to, err)
				}
				if m.Phase() != tt.from {
					t.Errorf("failed transition must not change phase, got %v", m.Phase())
				}
			}
		})
	}
}

func TestStageTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    Stage
		to      Stage
		allowed bool
	}{
		{"idle to rolled", StageIdle, StageRolled, true},
		{"idle to task-active", StageIdle, StageTaskActive, false},
		{"rolled to category-pending", StageRolled, StageCategoryPending, true},
		{"rolled to idle", StageRolled, StageIdle, true},
		{"rolled to task-active", StageRolled, StageTaskActive, false},
		{"category-pending to task-active", StageCategoryPending, StageTaskActive, true},
		{"category-pending to idle", StageCategoryPending, StageIdle, true},
		{"task-active to idle", StageTaskActive, StageIdle, true},
		{"task-active to rolled", StageTaskActive, StageRolled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Machine{phase: PhasePlaying, stage: tt.from}
			err := m.SetStage(tt.to)
			if tt.allowed && err != nil {
				t.Errorf("expected transition %v -> %v to be allowed, got %v", tt.from, tt.to, err)
			}
			if !tt.allowed && !errors.Is(err, ErrTransitionNotAllowed) {
				t.Errorf("expected ErrTransitionNotAllowed for %v -> %v, got %v", tt.from, tt.to, err)
			}
		})
	}
}

func TestSameStateIsNoOp(t *testing.T) {
	m := NewMachine()
	if err := m.SetPhase(PhaseWaiting); err != nil {
		t.Errorf("setting the current phase should be a no-op, got %v", err)
	}
	if err := m.SetStage(StageIdle); err != nil {
		t.Errorf("setting the current stage should be a no-op, got %v", err)
	}
}

func TestPhaseChangeResetsStage(t *testing.T) {
	m := NewMachine()
	if err := m.SetPhase(PhasePlaying); err != nil {
		t.Fatalf("SetPhase failed: %v", err)
	}
	if err := m.SetStage(StageRolled); err != nil {
		t.Fatalf("SetStage failed: %v", err)
	}
	if err := m.SetPhase(PhaseFinished); err != nil {
		t.Fatalf("SetPhase failed: %v", err)
	}
	if m.Stage() != StageIdle {
		t.Errorf("phase change must reset stage to idle, got %v", m.Stage())
	}
}

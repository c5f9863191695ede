package types

import (
	"errors"
	"testing"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		ok   bool
	}{
		{"created to running", StatusCreated, StatusRunning, true},
		{"running to paused", StatusRunning, StatusPaused, true},
		{"paused to running", StatusPaused, StatusRunning, true},
		{"running to completed", StatusRunning, StatusCompleted, true},
		{"running to aborted", StatusRunning, StatusAborted, true},
		{"running to failed", StatusRunning, StatusFailed, true},
		{"paused to aborted", StatusPaused, StatusAborted, true},
		{"completed is terminal", StatusCompleted, StatusRunning, false},
		{"aborted cannot pause", StatusAborted, StatusPaused, false},
		{"failed cannot resume", StatusFailed, StatusRunning, false},
		{"created cannot pause", StatusCreated, StatusPaused, false},
		{"paused cannot complete", StatusPaused, StatusCompleted, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession("Should we expand to Singapore?", "balanced", "mock", "m", 2)
			s.Status = tt.from
			err := s.Transition(tt.to)
			if tt.ok {
				if err != nil {
					t.Fatalf("Transition(%s -> %s) = %v, want nil", tt.from, tt.to, err)
				}
				if s.Status != tt.to {
					t.Errorf("status = %s, want %s", s.Status, tt.to)
				}
				return
			}
			var ite *InvalidTransitionError
			if !errors.As(err, &ite) {
				t.Fatalf("Transition(%s -> %s) = %v, want *InvalidTransitionError", tt.from, tt.to, err)
			}
			if s.Status != tt.from {
				t.Errorf("illegal transition mutated status to %s", s.Status)
			}
		})
	}
}

func TestPauseArmsCheckpoint(t *testing.T) {
	s := NewSession("Should we expand to Singapore?", "balanced", "mock", "m", 2)
	s.Status = StatusRunning
	phase := PhaseRumble
	s.Checkpoint.Phase = &phase

	if err := s.Transition(StatusPaused); err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	if !s.Checkpoint.Resumable {
		t.Error("pause must set checkpoint.Resumable")
	}

	if err := s.Transition(StatusRunning); err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if s.Checkpoint.Resumable {
		t.Error("resume must clear checkpoint.Resumable")
	}
}

func TestAbortKeepsPartialData(t *testing.T) {
	s := NewSession("Should we expand to Singapore?", "balanced", "mock", "m", 2)
	s.Status = StatusRunning
	s.PhaseRecordFor(PhaseScope).Complete()
	s.PhaseRecordFor(PhaseRumble).Rounds = [][]PersonaResponse{
		{{Persona: "north", Round: 1, Text: "partial", Complete: true}},
	}

	if err := s.Transition(StatusAborted); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if s.PhaseRecordFor(PhaseScope).Status != PhaseCompleted {
		t.Error("abort must not discard completed phases")
	}
	if len(s.PhaseRecordFor(PhaseRumble).Rounds) != 1 {
		t.Error("abort must not discard partial rumble rounds")
	}
}

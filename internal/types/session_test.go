package types

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidateDecision(t *testing.T) {
	tests := []struct {
		name     string
		decision string
		wantErr  bool
	}{
		{"nine chars fails", "123456789", true},
		{"exactly ten chars succeeds", "1234567890", false},
		{"too long fails", strings.Repeat("x", 2001), true},
		{"exactly max succeeds", strings.Repeat("x", 2000), false},
		{"script tag fails", "Should we <script>alert(1)</script>?", true},
		{"script tag with spaces fails", "Should we < script >do it?", true},
		{"event handler fails", "decide onclick=steal() now please", true},
		{"javascript protocol fails", "open javascript:alert(1) maybe?", true},
		{"iframe fails", "embed <iframe src=x> today?", true},
		{"normal question succeeds", "Should we expand to Singapore market analysis?", false},
		{"multibyte text counts runes not bytes", strings.Repeat("拡", 1500), false},
		{"multibyte text over max fails", strings.Repeat("拡", 2001), true},
		{"ten multibyte runes succeed", strings.Repeat("拡", 10), false},
		{"whitespace padding counts trimmed", "   short1   ", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDecision(tt.decision)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDecision(%q) = %v, wantErr=%v", tt.decision, err, tt.wantErr)
			}
			if err != nil {
				if _, ok := err.(*ValidationError); !ok {
					t.Errorf("error type = %T, want *ValidationError", err)
				}
			}
		})
	}
}

func TestValidateID(t *testing.T) {
	if err := ValidateID("not-a-uuid"); err == nil {
		t.Error("malformed UUID must fail validation")
	}
	if err := ValidateID("3e2f1a9c-5f37-4e7b-9a6d-2f8c1b0e4d5a"); err != nil {
		t.Errorf("well-formed UUID rejected: %v", err)
	}
}

func TestNewSessionShape(t *testing.T) {
	s := NewSession("Should we expand to Singapore?", "balanced", "anthropic", "claude", 3)

	if err := ValidateID(s.ID); err != nil {
		t.Errorf("session id is not a UUID: %v", err)
	}
	if s.Status != StatusCreated {
		t.Errorf("status = %s, want created", s.Status)
	}
	if s.Version != SchemaVersion {
		t.Errorf("version = %q, want %q", s.Version, SchemaVersion)
	}
	if s.TotalRounds != 3 {
		t.Errorf("total rounds = %d, want 3", s.TotalRounds)
	}
	if len(s.Phases) != len(PhaseOrder) {
		t.Fatalf("phases = %d, want %d (never partially initialized)", len(s.Phases), len(PhaseOrder))
	}
	for _, p := range PhaseOrder {
		if s.Phases[p].Status != PhasePending {
			t.Errorf("phase %s status = %s, want pending", p, s.Phases[p].Status)
		}
	}
	if s.Checkpoint.Resumable {
		t.Error("fresh session must not be resumable")
	}
	if s.Metrics.LLMCalls != 0 || s.Metrics.TotalTokens != 0 {
		t.Error("fresh session metrics must be zeroed")
	}
}

func TestNextIncompletePhase(t *testing.T) {
	s := NewSession("Should we expand to Singapore?", "balanced", "mock", "m", 2)

	if got := s.NextIncompletePhase(); got == nil || *got != PhaseScope {
		t.Fatalf("fresh session next phase = %v, want scope", got)
	}

	s.PhaseRecordFor(PhaseScope).Complete()
	s.PhaseRecordFor(PhasePopulate).Complete()
	if got := s.NextIncompletePhase(); got == nil || *got != PhaseAnnounce {
		t.Fatalf("next phase = %v, want announce", got)
	}

	// Skipped phases do not block progression.
	s.PhaseRecordFor(PhaseAnnounce).Skip()
	if got := s.NextIncompletePhase(); got == nil || *got != PhaseRumble {
		t.Fatalf("next phase = %v, want rumble", got)
	}

	for _, p := range PhaseOrder {
		s.PhaseRecordFor(p).Complete()
	}
	if got := s.NextIncompletePhase(); got != nil {
		t.Fatalf("completed session next phase = %v, want nil", *got)
	}
}

func TestAdvanceCheckpoint(t *testing.T) {
	s := NewSession("Should we expand to Singapore?", "balanced", "mock", "m", 2)
	s.PhaseRecordFor(PhaseScope).Complete()
	s.PhaseRecordFor(PhasePopulate).Complete()
	s.PhaseRecordFor(PhaseAnnounce).Complete()

	round := 2
	idx := 1
	s.Checkpoint.Round = &round
	s.Checkpoint.PersonaIndex = &idx

	s.AdvanceCheckpoint()
	if s.Checkpoint.Phase == nil || *s.Checkpoint.Phase != PhaseRumble {
		t.Fatalf("checkpoint phase = %v, want rumble", s.Checkpoint.Phase)
	}
	if s.Checkpoint.Round == nil {
		t.Error("round position must survive while rumble is the target")
	}

	for _, p := range PhaseOrder {
		s.PhaseRecordFor(p).Complete()
	}
	s.AdvanceCheckpoint()
	if s.Checkpoint.Phase != nil {
		t.Error("completed session checkpoint phase must be nil")
	}
	if s.Checkpoint.Resumable {
		t.Error("completed session must not be resumable")
	}
	if s.Checkpoint.Round != nil || s.Checkpoint.PersonaIndex != nil {
		t.Error("round position must clear once rumble is no longer the target")
	}
}

func TestDeepCopyIsIndependent(t *testing.T) {
	s := NewSession("Should we expand to Singapore?", "balanced", "mock", "m", 2)
	s.Personas = []string{"north", "east", "south", "west"}
	s.PhaseRecordFor(PhaseRumble).Rounds = [][]PersonaResponse{
		{{Persona: "north", Round: 1, Text: "original", Complete: true}},
	}

	cp := s.DeepCopy()
	if diff := cmp.Diff(s, cp); diff != "" {
		t.Fatalf("copy differs from original (-want +got):\n%s", diff)
	}

	cp.PhaseRecordFor(PhaseRumble).Rounds[0][0].Text = "mutated"
	cp.Personas[0] = "mutated"
	if s.PhaseRecordFor(PhaseRumble).Rounds[0][0].Text != "original" {
		t.Error("mutating the copy reached the original rounds")
	}
	if s.Personas[0] != "north" {
		t.Error("mutating the copy reached the original personas")
	}
}

func TestPhaseOrderInvariantHelper(t *testing.T) {
	// If a later phase is completed, every earlier phase is completed or
	// skipped. NextIncompletePhase is what the engine relies on to hold it.
	s := NewSession("Should we expand to Singapore?", "balanced", "mock", "m", 2)
	s.PhaseRecordFor(PhaseScope).Complete()
	s.PhaseRecordFor(PhasePopulate).Complete()
	s.PhaseRecordFor(PhaseAnnounce).Complete()
	s.PhaseRecordFor(PhaseRumble).Complete()
	s.PhaseRecordFor(PhaseKnit).Complete()

	for i, p := range PhaseOrder {
		if s.PhaseRecordFor(p).Status != PhaseCompleted {
			for j := i; j < len(PhaseOrder); j++ {
				if s.PhaseRecordFor(PhaseOrder[j]).Status == PhaseCompleted {
					t.Errorf("phase %s completed while %s is not done", PhaseOrder[j], p)
				}
			}
			break
		}
	}
}

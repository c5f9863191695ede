package types

import "time"

// Phase identifies one of the seven fixed protocol phases.
type Phase string

const (
	PhaseScope       Phase = "scope"
	PhasePopulate    Phase = "populate"
	PhaseAnnounce    Phase = "announce"
	PhaseRumble      Phase = "rumble"
	PhaseKnit        Phase = "knit"
	PhaseInterrogate Phase = "interrogate"
	PhaseTransmit    Phase = "transmit"
)

// PhaseOrder is the protocol order. Phases must reach completed or skipped
// in this order before a later phase may leave pending.
var PhaseOrder = []Phase{
	PhaseScope,
	PhasePopulate,
	PhaseAnnounce,
	PhaseRumble,
	PhaseKnit,
	PhaseInterrogate,
	PhaseTransmit,
}

// PhaseIndex returns the protocol position of p, or -1 for unknown phases.
func PhaseIndex(p Phase) int {
	for i, q := range PhaseOrder {
		if q == p {
			return i
		}
	}
	return -1
}

// ValidPhase reports whether p is one of the seven protocol phases.
func ValidPhase(p Phase) bool {
	return PhaseIndex(p) >= 0
}

// PhaseStatus is the status of a single phase record.
type PhaseStatus string

const (
	PhasePending   PhaseStatus = "pending"
	PhaseRunning   PhaseStatus = "running"
	PhaseCompleted PhaseStatus = "completed"
	PhaseSkipped   PhaseStatus = "skipped"
	PhaseError     PhaseStatus = "error"
)

// PhaseRecord tracks one protocol phase within a session. Records are mutated
// in place by the engine and only deleted with the whole session.
type PhaseRecord struct {
	Status      PhaseStatus `json:"status"`
	StartedAt   *time.Time  `json:"started_at,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	DurationMs  int64       `json:"duration_ms,omitempty"`
	Error       string      `json:"error,omitempty"`

	// Announce payload: the shared debate brief sent to every persona.
	Brief string `json:"brief,omitempty"`

	// Rumble payload.
	CurrentRound int                 `json:"current_round,omitempty"`
	TotalRounds  int                 `json:"total_rounds,omitempty"`
	Rounds       [][]PersonaResponse `json:"rounds,omitempty"`

	// Knit payload.
	Synthesis string `json:"synthesis,omitempty"`
	Thinking  string `json:"thinking,omitempty"`

	// Interrogate payload.
	Interrogation string `json:"interrogation,omitempty"`

	// Transmit payload.
	Recommendations string `json:"recommendations,omitempty"`
}

// Begin marks the record running and stamps its start time.
func (r *PhaseRecord) Begin() {
	now := time.Now().UTC()
	r.Status = PhaseRunning
	r.StartedAt = &now
}

// Complete marks the record completed and derives its duration.
func (r *PhaseRecord) Complete() {
	now := time.Now().UTC()
	r.Status = PhaseCompleted
	r.CompletedAt = &now
	if r.StartedAt != nil {
		r.DurationMs = now.Sub(*r.StartedAt).Milliseconds()
	}
}

// Fail marks the record errored, recording the failure for inspection.
// The record keeps any partial payload; failure is durable, not destructive.
func (r *PhaseRecord) Fail(msg string) {
	now := time.Now().UTC()
	r.Status = PhaseError
	r.CompletedAt = &now
	r.Error = msg
	if r.StartedAt != nil {
		r.DurationMs = now.Sub(*r.StartedAt).Milliseconds()
	}
}

// Skip marks the record skipped by caller request.
func (r *PhaseRecord) Skip() {
	now := time.Now().UTC()
	r.Status = PhaseSkipped
	r.CompletedAt = &now
}

// Done reports whether the phase no longer blocks later phases.
func (r *PhaseRecord) Done() bool {
	return r.Status == PhaseCompleted || r.Status == PhaseSkipped
}

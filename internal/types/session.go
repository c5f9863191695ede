// Package types provides the shared session model used across windrose packages.
// This package exists to break import cycles between the engine, store, and
// exporters. Types in this package are foundational data structures with no
// dependencies on other windrose packages.
package types

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// SchemaVersion gates backward-compatible deserialization of session files.
const SchemaVersion = "1"

// Decision text bounds.
const (
	MinDecisionLen = 10
	MaxDecisionLen = 2000
)

// PersonaCount is fixed by the protocol: one persona per compass direction.
const PersonaCount = 4

// DefaultTotalRounds is the rumble round count used when the caller does not
// configure one at session creation.
const DefaultTotalRounds = 2

// Session is the central entity: one per debate.
// Mutated only by the engine and the status machine; persisted by the store
// after every mutation.
type Session struct {
	ID       string `json:"id"`
	Version  string `json:"version"`
	Status   Status `json:"status"`
	Decision string `json:"decision"`
	Preset   string `json:"preset"`
	Provider string `json:"provider"`
	Model    string `json:"model"`

	// Personas holds the four compass persona identifiers in protocol order.
	// Empty until populate runs, immutable afterward.
	Personas []string `json:"personas,omitempty"`

	// TotalRounds is the rumble round count, fixed at creation.
	TotalRounds int `json:"total_rounds"`

	// Phases maps each of the seven protocol phases to its record.
	// Fully populated (all pending) at creation, never partially initialized.
	Phases map[Phase]*PhaseRecord `json:"phases"`

	Checkpoint Checkpoint `json:"checkpoint"`
	Metrics    Metrics    `json:"metrics"`
}

// PersonaResponse is one persona's contribution to one rumble round.
type PersonaResponse struct {
	Persona string `json:"persona"`
	Round   int    `json:"round"`
	Text    string `json:"text,omitempty"`
	Error   string `json:"error,omitempty"`

	// Complete is set only once the gateway call has fully returned.
	// On resume, a response with Complete=false is re-issued from scratch:
	// partial LLM output cannot be safely continued.
	Complete   bool  `json:"complete"`
	Tokens     int   `json:"tokens,omitempty"`
	DurationMs int64 `json:"duration_ms,omitempty"`
}

// Checkpoint marks the resumption point of an interrupted session.
// Always embedded in its session; it has no independent lifecycle.
type Checkpoint struct {
	// Phase names the phase to resume from; nil when nothing is resumable
	// (fresh or fully completed sessions).
	Phase *Phase `json:"phase,omitempty"`

	// Round and PersonaIndex locate the position within rumble; nil elsewhere.
	Round        *int `json:"round,omitempty"`
	PersonaIndex *int `json:"persona_index,omitempty"`

	// Resumable is true only while the session is paused.
	Resumable bool `json:"resumable"`

	// LastResponse holds the most recent text received before interruption.
	LastResponse string `json:"last_response,omitempty"`
}

// Metrics holds the aggregate counters for a session. Counters only move
// through the engine's recording step and never decrease except on clone.
type Metrics struct {
	StartedAt   time.Time  `json:"started_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	TotalTokens int        `json:"total_tokens"`
	LLMCalls    int        `json:"llm_calls"`
}

// RecordCall tallies one gateway call.
func (m *Metrics) RecordCall(tokens int) {
	m.LLMCalls++
	if tokens > 0 {
		m.TotalTokens += tokens
	}
	m.UpdatedAt = time.Now().UTC()
}

// DurationMs returns the whole-session duration, or elapsed time so far for
// sessions that have not completed.
func (m *Metrics) DurationMs() int64 {
	if m.CompletedAt != nil {
		return m.CompletedAt.Sub(m.StartedAt).Milliseconds()
	}
	return time.Since(m.StartedAt).Milliseconds()
}

// injectionPatterns rejects script/event-handler/protocol injection in
// decision text. The decision is echoed into prompts and the HTML export, so
// it is validated once at the creation boundary.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<\s*script`),
	regexp.MustCompile(`(?i)<\s*/\s*script`),
	regexp.MustCompile(`(?i)\bjavascript\s*:`),
	regexp.MustCompile(`(?i)\bvbscript\s*:`),
	regexp.MustCompile(`(?i)\bdata\s*:\s*text/html`),
	regexp.MustCompile(`(?i)\bon[a-z]+\s*=`),
	regexp.MustCompile(`(?i)<\s*iframe`),
}

// ValidateDecision checks decision text bounds and content safety.
func ValidateDecision(decision string) error {
	trimmed := strings.TrimSpace(decision)
	// Bounds are characters, not bytes; multibyte text counts by rune.
	length := utf8.RuneCountInString(trimmed)
	if length < MinDecisionLen {
		return &ValidationError{Field: "decision", Reason: fmt.Sprintf("must be at least %d characters", MinDecisionLen)}
	}
	if length > MaxDecisionLen {
		return &ValidationError{Field: "decision", Reason: fmt.Sprintf("must be at most %d characters", MaxDecisionLen)}
	}
	for _, p := range injectionPatterns {
		if p.MatchString(trimmed) {
			return &ValidationError{Field: "decision", Reason: "contains disallowed markup"}
		}
	}
	return nil
}

// ValidateID checks that id is a well-formed UUID.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &ValidationError{Field: "id", Reason: fmt.Sprintf("not a valid UUID: %v", err)}
	}
	return nil
}

// NewSession constructs a session in status created with all phases pending,
// a non-resumable checkpoint, and zeroed metrics.
// The decision must already be validated by the caller.
func NewSession(decision, preset, provider, model string, totalRounds int) *Session {
	if totalRounds <= 0 {
		totalRounds = DefaultTotalRounds
	}
	now := time.Now().UTC()
	s := &Session{
		ID:          uuid.NewString(),
		Version:     SchemaVersion,
		Status:      StatusCreated,
		Decision:    strings.TrimSpace(decision),
		Preset:      preset,
		Provider:    provider,
		Model:       model,
		TotalRounds: totalRounds,
		Phases:      make(map[Phase]*PhaseRecord, len(PhaseOrder)),
		Metrics: Metrics{
			StartedAt: now,
			UpdatedAt: now,
		},
	}
	for _, p := range PhaseOrder {
		s.Phases[p] = &PhaseRecord{Status: PhasePending}
	}
	return s
}

// PhaseRecordFor returns the record for a phase, creating a pending record if
// an older session file predates the phase (schema-version tolerance).
func (s *Session) PhaseRecordFor(p Phase) *PhaseRecord {
	if s.Phases == nil {
		s.Phases = make(map[Phase]*PhaseRecord, len(PhaseOrder))
	}
	rec, ok := s.Phases[p]
	if !ok {
		rec = &PhaseRecord{Status: PhasePending}
		s.Phases[p] = rec
	}
	return rec
}

// NextIncompletePhase returns the first phase in protocol order whose status
// is not completed or skipped, or nil when every phase is done.
func (s *Session) NextIncompletePhase() *Phase {
	for _, p := range PhaseOrder {
		rec := s.PhaseRecordFor(p)
		if rec.Status != PhaseCompleted && rec.Status != PhaseSkipped {
			next := p
			return &next
		}
	}
	return nil
}

// AdvanceCheckpoint repoints the checkpoint at the next incomplete phase.
// Round/persona position is cleared unless the target is rumble.
func (s *Session) AdvanceCheckpoint() {
	next := s.NextIncompletePhase()
	s.Checkpoint.Phase = next
	if next == nil || *next != PhaseRumble {
		s.Checkpoint.Round = nil
		s.Checkpoint.PersonaIndex = nil
	}
	if next == nil {
		s.Checkpoint.Resumable = false
		s.Checkpoint.LastResponse = ""
	}
}

// Terminal reports whether the session can no longer change status.
func (s *Session) Terminal() bool {
	return s.Status.Terminal()
}

// DeepCopy returns an independent copy of the session. Used for snapshots
// handed to exporters and for clone. The session is fully JSON-serializable,
// so a marshal round-trip is the simplest faithful copy.
func (s *Session) DeepCopy() *Session {
	data, err := json.Marshal(s)
	if err != nil {
		// Session contains only marshalable fields; this cannot happen with
		// a well-formed session.
		panic(fmt.Sprintf("session %s not serializable: %v", s.ID, err))
	}
	var out Session
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("session %s round-trip failed: %v", s.ID, err))
	}
	return &out
}

// Snapshot returns the read-only view handed to exporters: a deep copy, so
// the engine can keep mutating the live session safely.
func (s *Session) Snapshot() *Session {
	return s.DeepCopy()
}

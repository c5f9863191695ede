package types

// Status is the session lifecycle state.
type Status string

const (
	StatusCreated   Status = "created"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusAborted   Status = "aborted"
	StatusFailed    Status = "failed"
)

// legalTransitions is the session status machine:
//
//	created → running
//	running → paused | completed | aborted | failed
//	paused  → running | aborted
//
// completed, aborted, and failed are terminal.
var legalTransitions = map[Status][]Status{
	StatusCreated: {StatusRunning},
	StatusRunning: {StatusPaused, StatusCompleted, StatusAborted, StatusFailed},
	StatusPaused:  {StatusRunning, StatusAborted},
}

// Terminal reports whether no further transition is legal from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusAborted || s == StatusFailed
}

// CanTransitionTo reports whether s → next is a legal transition.
func (s Status) CanTransitionTo(next Status) bool {
	for _, t := range legalTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Transition moves the session to next, rejecting illegal transitions with
// *InvalidTransitionError. Illegal transitions never silently no-op: callers
// need a definitive signal that the action had no effect.
func (s *Session) Transition(next Status) error {
	if !s.Status.CanTransitionTo(next) {
		return &InvalidTransitionError{From: s.Status, To: next}
	}
	s.Status = next

	switch next {
	case StatusPaused:
		// Pausing preserves all partial phase data and arms the checkpoint.
		s.Checkpoint.Resumable = true
	case StatusRunning, StatusCompleted:
		s.Checkpoint.Resumable = false
	case StatusAborted:
		// Partial results are kept for post-mortem export; only the
		// resumable flag drops.
		s.Checkpoint.Resumable = false
	}
	return nil
}

package types

import "fmt"

// =============================================================================
// ERROR TAXONOMY
// =============================================================================
//
// Five error classes cross the core's API boundary:
//   ValidationError        malformed input (bad decision, preset, UUID)
//   NotFoundError          well-formed id that does not exist
//   InvalidTransitionError illegal status-machine transition
//   GatewayError           LLM call failure (timeout, HTTP, bad payload)
//   PersistenceError       disk read/write failure in the store
//
// Validation and not-found errors are returned synchronously to the caller,
// never logged-and-swallowed. Gateway errors during rumble are recovered per
// persona; during knit/transmit they fail the session. Persistence errors
// always propagate: a step that cannot persist must not pretend it did.

// ValidationError reports malformed input to a creation/update call.
// Never retried automatically.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an operation against a session id that is well-formed
// but absent.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("session not found: %s", e.ID)
}

// InvalidTransitionError reports an illegal status-machine transition.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("illegal transition: %s -> %s", e.From, e.To)
}

// GatewayError reports a failed LLM gateway call. Recorded into the relevant
// phase record; whether it aborts the session depends on the phase.
type GatewayError struct {
	Provider string
	Phase    Phase
	Persona  string
	Err      error
}

func (e *GatewayError) Error() string {
	if e.Persona != "" {
		return fmt.Sprintf("gateway %s failed (%s/%s): %v", e.Provider, e.Phase, e.Persona, e.Err)
	}
	return fmt.Sprintf("gateway %s failed (%s): %v", e.Provider, e.Phase, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// PersistenceError reports a disk read/write failure in the session store.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed (%s): %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

package engine

import (
	"context"

	"windrose/internal/types"
)

// Resume continues a paused session from its checkpoint. It is Run with a
// stricter precondition: the session must actually be paused and resumable,
// so callers get a clear error instead of silently re-running a session in
// some other state.
func (e *Engine) Resume(ctx context.Context, id string) error {
	s, err := e.load(id)
	if err != nil {
		return err
	}
	if s.Status != types.StatusPaused {
		return &types.InvalidTransitionError{From: s.Status, To: types.StatusRunning}
	}
	if !s.Checkpoint.Resumable {
		return &types.ValidationError{Field: "checkpoint", Reason: "session is paused but carries no resumable checkpoint"}
	}
	return e.Run(ctx, id)
}

// Abort terminates a session that is not currently being driven by a run.
// In-flight runs are stopped with Cancel instead; Abort acts directly on the
// stored record (created or paused sessions).
func (e *Engine) Abort(id string) error {
	if e.Running(id) {
		e.Cancel(id)
		return nil
	}
	s, err := e.load(id)
	if err != nil {
		return err
	}
	// created sessions never entered running, so the status machine needs
	// the running hop before abort is legal.
	if s.Status == types.StatusCreated {
		if err := s.Transition(types.StatusRunning); err != nil {
			return err
		}
	}
	if err := s.Transition(types.StatusAborted); err != nil {
		return err
	}
	return e.persist(s)
}

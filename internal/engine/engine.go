// Package engine drives a session through the seven protocol phases,
// invoking the LLM gateway where required and recording results. One engine
// serves arbitrarily many sessions concurrently, but at most one run may act
// on a given session id at a time (enforced through the store's run lock).
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"windrose/internal/gateway"
	"windrose/internal/logging"
	"windrose/internal/store"
	"windrose/internal/types"
)

// Engine executes the phase protocol.
type Engine struct {
	store  store.Store
	client gateway.Client
	audit  *store.AuditLog

	callTimeout     time.Duration
	maxTokens       int
	skipInterrogate bool

	mu       sync.Mutex
	controls map[string]*runControl
}

// Option configures an Engine.
type Option func(*Engine)

// WithCallTimeout bounds each individual gateway call.
func WithCallTimeout(d time.Duration) Option {
	return func(e *Engine) { e.callTimeout = d }
}

// WithMaxTokens caps each gateway call's completion size.
func WithMaxTokens(n int) Option {
	return func(e *Engine) { e.maxTokens = n }
}

// WithSkipInterrogate marks the interrogate phase skipped instead of running
// the red-team pass, trading one gateway call for a faster session.
func WithSkipInterrogate() Option {
	return func(e *Engine) { e.skipInterrogate = true }
}

// WithAuditLog records every gateway call into the audit database.
func WithAuditLog(a *store.AuditLog) Option {
	return func(e *Engine) { e.audit = a }
}

// New creates an engine over a store and gateway client.
func New(st store.Store, client gateway.Client, opts ...Option) *Engine {
	e := &Engine{
		store:       st,
		client:      client,
		callTimeout: gateway.DefaultTimeout,
		maxTokens:   gateway.DefaultMaxTokens,
		controls:    make(map[string]*runControl),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run advances the session from its current checkpoint to completion, pause,
// cancellation, or failure. Safe to call on a fresh session, a paused one,
// or one reloaded after a crash; terminal sessions are rejected with
// *types.InvalidTransitionError.
func (e *Engine) Run(ctx context.Context, id string) error {
	s, err := e.load(id)
	if err != nil {
		return err
	}

	release, ok := e.store.Acquire(id)
	if !ok {
		return fmt.Errorf("session %s is already being driven by another run", id)
	}
	defer release()

	ctl := e.register(id)
	defer e.unregister(id)

	switch s.Status {
	case types.StatusCreated, types.StatusPaused:
		if err := s.Transition(types.StatusRunning); err != nil {
			return err
		}
	case types.StatusRunning:
		// Crash recovery: the process died mid-run; the checkpoint scan
		// below picks up from the last persisted step.
	default:
		return &types.InvalidTransitionError{From: s.Status, To: types.StatusRunning}
	}
	if err := e.persist(s); err != nil {
		return err
	}

	if next := s.NextIncompletePhase(); next != nil {
		logging.Engine("run session=%s from=%s", s.ID, *next)
	}
	return e.loop(ctx, s, ctl)
}

// loop executes phases strictly in protocol order from the first incomplete
// one, honoring pause/cancel at phase and round boundaries.
func (e *Engine) loop(ctx context.Context, s *types.Session, ctl *runControl) error {
	for {
		if done, err := e.checkInterrupt(s, ctl); done || err != nil {
			return err
		}

		next := s.NextIncompletePhase()
		if next == nil {
			return e.finish(s)
		}

		var err error
		switch *next {
		case types.PhaseScope:
			err = e.runScope(s)
		case types.PhasePopulate:
			err = e.runPopulate(s)
		case types.PhaseAnnounce:
			err = e.runAnnounce(s)
		case types.PhaseRumble:
			var interrupted bool
			interrupted, err = e.runRumble(ctx, s, ctl)
			if interrupted {
				return err
			}
		case types.PhaseKnit:
			err = e.runKnit(ctx, s)
		case types.PhaseInterrogate:
			err = e.runInterrogate(ctx, s)
		case types.PhaseTransmit:
			err = e.runTransmit(ctx, s)
		}
		if err != nil {
			return err
		}
	}
}

// finish stamps completion once every phase is done.
func (e *Engine) finish(s *types.Session) error {
	if s.Status == types.StatusCompleted {
		return nil
	}
	if err := s.Transition(types.StatusCompleted); err != nil {
		return err
	}
	now := time.Now().UTC()
	s.Metrics.CompletedAt = &now
	s.Metrics.UpdatedAt = now
	s.AdvanceCheckpoint()
	if err := e.persist(s); err != nil {
		return err
	}
	logging.Engine("session %s completed: calls=%d tokens=%d duration=%dms",
		s.ID, s.Metrics.LLMCalls, s.Metrics.TotalTokens, s.Metrics.DurationMs())
	return nil
}

// checkInterrupt applies a pending pause/cancel request at a boundary.
// Returns done=true when the run should stop (the session was transitioned
// and persisted).
func (e *Engine) checkInterrupt(s *types.Session, ctl *runControl) (bool, error) {
	switch {
	case ctl.cancelRequested():
		if err := s.Transition(types.StatusAborted); err != nil {
			return true, err
		}
		if err := e.persist(s); err != nil {
			return true, err
		}
		logging.Engine("session %s cancelled at boundary", s.ID)
		return true, nil
	case ctl.pauseRequested():
		// A pause landing after the last phase finished has nothing left to
		// checkpoint; let the loop fall through to completion instead of
		// stranding a finished session in paused.
		if s.NextIncompletePhase() == nil {
			return false, nil
		}
		if err := s.Transition(types.StatusPaused); err != nil {
			return true, err
		}
		s.AdvanceCheckpoint()
		s.Checkpoint.Resumable = true
		if err := e.persist(s); err != nil {
			return true, err
		}
		target := ""
		if s.Checkpoint.Phase != nil {
			target = string(*s.Checkpoint.Phase)
		}
		logging.Engine("session %s paused at boundary (checkpoint=%s)", s.ID, target)
		return true, nil
	}
	return false, nil
}

// failSession marks the session failed after an unrecoverable phase error.
// The session is persisted, never deleted: failure stays inspectable.
func (e *Engine) failSession(s *types.Session, cause error) error {
	if err := s.Transition(types.StatusFailed); err != nil {
		return err
	}
	if err := e.persist(s); err != nil {
		return err
	}
	logging.EngineWarn("session %s failed: %v", s.ID, cause)
	return cause
}

// persist writes the session through the store. A step that cannot persist
// must not proceed as if the state were saved.
func (e *Engine) persist(s *types.Session) error {
	s.Metrics.UpdatedAt = time.Now().UTC()
	if err := e.store.Save(s); err != nil {
		return err
	}
	return nil
}

// load fetches the session or fails with the proper error class.
func (e *Engine) load(id string) (*types.Session, error) {
	s, err := e.store.Get(id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, &types.NotFoundError{ID: id}
	}
	return s, nil
}

// recordCall folds one gateway call outcome into the session metrics and the
// audit log.
func (e *Engine) recordCall(s *types.Session, phase types.Phase, persona string, round int, resp gateway.Response, callErr error, dur time.Duration) {
	if callErr == nil {
		s.Metrics.RecordCall(resp.Tokens)
	}
	if e.audit != nil {
		rec := store.CallRecord{
			SessionID:  s.ID,
			Phase:      phase,
			Persona:    persona,
			Round:      round,
			Tokens:     resp.Tokens,
			DurationMs: dur.Milliseconds(),
		}
		if callErr != nil {
			rec.Error = callErr.Error()
		}
		e.audit.Record(rec)
	}
}

// complete issues one gateway call with the per-call timeout applied.
func (e *Engine) complete(ctx context.Context, req gateway.Request) (gateway.Response, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()
	if req.MaxTokens == 0 {
		req.MaxTokens = e.maxTokens
	}
	return e.client.Complete(callCtx, req)
}

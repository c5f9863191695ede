package engine

import (
	"context"
	"time"

	"windrose/internal/gateway"
	"windrose/internal/logging"
	"windrose/internal/personas"
	"windrose/internal/types"
)

// =============================================================================
// PHASE HANDLERS
// =============================================================================
// scope, populate, and announce are local phases: no gateway traffic. knit,
// interrogate, and transmit each issue exactly one gateway call. rumble lives
// in rumble.go. Every handler persists its result before returning.

// runScope re-validates the decision against current rules. Create already
// validated it, but files can be edited by hand between runs.
func (e *Engine) runScope(s *types.Session) error {
	rec := s.PhaseRecordFor(types.PhaseScope)
	rec.Begin()
	if err := types.ValidateDecision(s.Decision); err != nil {
		rec.Fail(err.Error())
		return e.failSession(s, err)
	}
	rec.Complete()
	s.AdvanceCheckpoint()
	logging.EngineDebug("scope complete session=%s", s.ID)
	return e.persist(s)
}

// runPopulate resolves the preset into the four-persona roster.
func (e *Engine) runPopulate(s *types.Session) error {
	rec := s.PhaseRecordFor(types.PhasePopulate)
	rec.Begin()
	roster, err := personas.Resolve(s.Preset)
	if err != nil {
		rec.Fail(err.Error())
		return e.failSession(s, err)
	}
	ids := make([]string, 0, len(roster))
	for _, p := range roster {
		ids = append(ids, p.ID)
	}
	s.Personas = ids
	rec.Complete()
	s.AdvanceCheckpoint()
	logging.EngineDebug("populate complete session=%s personas=%v", s.ID, ids)
	return e.persist(s)
}

// runAnnounce assembles the shared debate brief every rumble call reuses.
func (e *Engine) runAnnounce(s *types.Session) error {
	rec := s.PhaseRecordFor(types.PhaseAnnounce)
	rec.Begin()
	roster, err := personas.Resolve(s.Preset)
	if err != nil {
		rec.Fail(err.Error())
		return e.failSession(s, err)
	}
	rec.Brief = personas.Announce(s.Decision, roster)
	rec.Complete()
	s.AdvanceCheckpoint()
	logging.EngineDebug("announce complete session=%s brief=%d bytes", s.ID, len(rec.Brief))
	return e.persist(s)
}

// runKnit synthesizes the full rumble transcript into one analysis.
// Failure here is fatal: nothing downstream can work without a synthesis.
func (e *Engine) runKnit(ctx context.Context, s *types.Session) error {
	rec := s.PhaseRecordFor(types.PhaseKnit)
	rec.Begin()
	if err := e.persist(s); err != nil {
		return err
	}

	rumble := s.PhaseRecordFor(types.PhaseRumble)
	req := gateway.Request{
		System:    personas.KnitSystem,
		User:      personas.Knit(s.Decision, rumble.Rounds),
		Reasoning: true,
	}

	start := time.Now()
	resp, err := e.complete(ctx, req)
	e.recordCall(s, types.PhaseKnit, "", 0, resp, err, time.Since(start))
	if err != nil {
		gerr := &types.GatewayError{Provider: e.client.Provider(), Phase: types.PhaseKnit, Err: err}
		rec.Fail(gerr.Error())
		return e.failSession(s, gerr)
	}

	thinking, synthesis := types.ExtractThinking(resp.Text)
	rec.Thinking = thinking
	rec.Synthesis = synthesis
	rec.Complete()
	s.AdvanceCheckpoint()
	logging.Engine("knit complete session=%s tokens=%d", s.ID, resp.Tokens)
	return e.persist(s)
}

// runInterrogate stress-tests the synthesis. Failure is recorded but never
// fatal: a recommendation without red-teaming beats no recommendation.
func (e *Engine) runInterrogate(ctx context.Context, s *types.Session) error {
	rec := s.PhaseRecordFor(types.PhaseInterrogate)
	if e.skipInterrogate {
		rec.Skip()
		s.AdvanceCheckpoint()
		logging.Engine("interrogate skipped session=%s", s.ID)
		return e.persist(s)
	}

	rec.Begin()
	if err := e.persist(s); err != nil {
		return err
	}

	synthesis := s.PhaseRecordFor(types.PhaseKnit).Synthesis
	req := gateway.Request{
		System: personas.InterrogateSystem,
		User:   personas.Interrogate(s.Decision, synthesis),
	}

	start := time.Now()
	resp, err := e.complete(ctx, req)
	e.recordCall(s, types.PhaseInterrogate, "", 0, resp, err, time.Since(start))
	if err != nil {
		gerr := &types.GatewayError{Provider: e.client.Provider(), Phase: types.PhaseInterrogate, Err: err}
		rec.Fail(gerr.Error())
		// Interrogation is an enhancement, not a prerequisite: unblock
		// transmit while keeping the error on record.
		rec.Status = types.PhaseSkipped
		s.AdvanceCheckpoint()
		logging.EngineWarn("interrogate failed session=%s, continuing without it: %v", s.ID, err)
		return e.persist(s)
	}

	rec.Interrogation = resp.Text
	rec.Complete()
	s.AdvanceCheckpoint()
	logging.Engine("interrogate complete session=%s tokens=%d", s.ID, resp.Tokens)
	return e.persist(s)
}

// runTransmit delivers the final recommendation. Failure is fatal.
func (e *Engine) runTransmit(ctx context.Context, s *types.Session) error {
	rec := s.PhaseRecordFor(types.PhaseTransmit)
	rec.Begin()
	if err := e.persist(s); err != nil {
		return err
	}

	synthesis := s.PhaseRecordFor(types.PhaseKnit).Synthesis
	interrogation := s.PhaseRecordFor(types.PhaseInterrogate).Interrogation
	req := gateway.Request{
		System: personas.TransmitSystem,
		User:   personas.Transmit(s.Decision, synthesis, interrogation),
	}

	start := time.Now()
	resp, err := e.complete(ctx, req)
	e.recordCall(s, types.PhaseTransmit, "", 0, resp, err, time.Since(start))
	if err != nil {
		gerr := &types.GatewayError{Provider: e.client.Provider(), Phase: types.PhaseTransmit, Err: err}
		rec.Fail(gerr.Error())
		return e.failSession(s, gerr)
	}

	rec.Recommendations = resp.Text
	rec.Complete()
	s.AdvanceCheckpoint()
	logging.Engine("transmit complete session=%s tokens=%d", s.ID, resp.Tokens)
	return e.persist(s)
}

package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"windrose/internal/gateway"
	"windrose/internal/logging"
	"windrose/internal/personas"
	"windrose/internal/types"
)

// runRumble executes the debate rounds. Within a round the four persona calls
// fan out in parallel and the round joins when all of them settle; a single
// persona failure is tolerated and recorded, but a round where every persona
// fails kills the session. Rounds run sequentially because round N+1 feeds on
// round N's arguments.
//
// interrupted=true means the run stopped on a pause/cancel boundary and the
// session was already transitioned and persisted.
func (e *Engine) runRumble(ctx context.Context, s *types.Session, ctl *runControl) (interrupted bool, err error) {
	rec := s.PhaseRecordFor(types.PhaseRumble)
	if rec.Status == types.PhasePending {
		rec.Begin()
		rec.TotalRounds = s.TotalRounds
	}

	roster, err := personas.Resolve(s.Preset)
	if err != nil {
		rec.Fail(err.Error())
		return false, e.failSession(s, err)
	}
	brief := s.PhaseRecordFor(types.PhaseAnnounce).Brief

	for round := startRound(rec); round <= rec.TotalRounds; round++ {
		rec.CurrentRound = round
		phase := types.PhaseRumble
		s.Checkpoint.Phase = &phase
		r := round
		s.Checkpoint.Round = &r
		s.Checkpoint.PersonaIndex = nil

		if done, err := e.checkInterrupt(s, ctl); done || err != nil {
			return true, err
		}

		slots := ensureRoundSlots(rec, round, roster)
		var prior []types.PersonaResponse
		if round > 1 {
			prior = rec.Rounds[round-2]
		}

		if err := e.persist(s); err != nil {
			return false, err
		}
		if err := e.rumbleRound(ctx, s, rec, roster, brief, round, slots, prior); err != nil {
			return false, err
		}

		if !anyComplete(rec.Rounds[round-1]) {
			gerr := &types.GatewayError{
				Provider: e.client.Provider(),
				Phase:    types.PhaseRumble,
				Err:      fmt.Errorf("all %d personas failed in round %d", len(roster), round),
			}
			rec.Fail(gerr.Error())
			return false, e.failSession(s, gerr)
		}
		logging.Engine("rumble round %d/%d complete session=%s", round, rec.TotalRounds, s.ID)
	}

	rec.Complete()
	s.AdvanceCheckpoint()
	return false, e.persist(s)
}

// rumbleRound fans the unsettled persona calls of one round out in parallel
// and joins when all of them return. Each response is persisted as it lands
// so a crash loses at most the calls still in flight.
func (e *Engine) rumbleRound(ctx context.Context, s *types.Session, rec *types.PhaseRecord, roster []personas.Persona, brief string, round int, slots []int, prior []types.PersonaResponse) error {
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for _, idx := range slots {
		p := roster[idx]
		slot := &rec.Rounds[round-1][idx]
		g.Go(func() error {
			req := gateway.Request{
				System: p.System,
				User:   personas.Rumble(p, brief, round, prior),
			}
			start := time.Now()
			resp, callErr := e.complete(gctx, req)
			dur := time.Since(start)

			mu.Lock()
			defer mu.Unlock()
			slot.DurationMs = dur.Milliseconds()
			if callErr != nil {
				gerr := &types.GatewayError{Provider: e.client.Provider(), Phase: types.PhaseRumble, Persona: p.ID, Err: callErr}
				slot.Error = gerr.Error()
				logging.GatewayError("rumble call failed session=%s round=%d persona=%s: %v", s.ID, round, p.ID, callErr)
			} else {
				slot.Text = resp.Text
				slot.Tokens = resp.Tokens
				slot.Complete = true
				s.Checkpoint.LastResponse = resp.Text
			}
			i := idx
			s.Checkpoint.PersonaIndex = &i
			e.recordCall(s, types.PhaseRumble, p.ID, round, resp, callErr, dur)
			return e.persist(s)
		})
	}
	return g.Wait()
}

// startRound returns the first round with unsettled work, so a resumed
// session re-enters exactly where it stopped.
func startRound(rec *types.PhaseRecord) int {
	for i, round := range rec.Rounds {
		for _, r := range round {
			if !settled(r) {
				return i + 1
			}
		}
	}
	return len(rec.Rounds) + 1
}

// ensureRoundSlots guarantees the round's four response slots exist and
// returns the indexes still needing a gateway call. Settled slots, including
// failed ones, are never re-issued: partial LLM output cannot be continued
// and a recorded failure already had its chance.
func ensureRoundSlots(rec *types.PhaseRecord, round int, roster []personas.Persona) []int {
	for len(rec.Rounds) < round {
		next := make([]types.PersonaResponse, len(roster))
		for i, p := range roster {
			next[i] = types.PersonaResponse{Persona: p.ID, Round: len(rec.Rounds) + 1}
		}
		rec.Rounds = append(rec.Rounds, next)
	}

	var pending []int
	for i, r := range rec.Rounds[round-1] {
		if !settled(r) {
			pending = append(pending, i)
		}
	}
	return pending
}

// settled reports whether a response slot needs no further gateway call.
func settled(r types.PersonaResponse) bool {
	return r.Complete || r.Error != ""
}

func anyComplete(round []types.PersonaResponse) bool {
	for _, r := range round {
		if r.Complete {
			return true
		}
	}
	return false
}

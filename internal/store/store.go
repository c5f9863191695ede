// Package store provides durable CRUD over session records: one JSON
// document per session on disk, addressed by session id. A map-backed
// MemStore implements the same contract for tests, and an fsnotify watcher
// lets the TUI refresh when files change outside the process.
package store

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"windrose/internal/types"
)

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	Status     types.Status
	WithinDays int
	Limit      int
}

// Store is the session persistence contract consumed by the engine and CLI.
type Store interface {
	// Create validates the decision and preset, then constructs and persists
	// a fresh session with all phases pending.
	Create(decision, preset, provider, model string, totalRounds int) (*types.Session, error)

	// Get returns the session for a well-formed id, or nil (not an error)
	// when absent. Malformed ids fail with *types.ValidationError.
	Get(id string) (*types.Session, error)

	// List returns sessions matching the filter, most-recent-first.
	List(f Filter) ([]*types.Session, error)

	// Update applies mutate under the store lock and persists the result.
	// A missing id is a silent no-op; callers needing a definitive answer
	// check existence with Get first.
	Update(id string, mutate func(*types.Session)) error

	// Save persists a session the caller already holds. The engine calls
	// this after every phase step.
	Save(s *types.Session) error

	// Delete removes the session and its backing file. Returns false when
	// the id was well-formed but absent.
	Delete(id string) (bool, error)

	// Clone copies a session into a fresh one: new id, status created,
	// phases pending, metrics zeroed; decision/preset/provider/model and
	// personas carry over. Returns nil when the source is absent.
	Clone(id string) (*types.Session, error)

	// Acquire takes the per-session run lock, enforcing that at most one
	// engine drives a given session at a time. Returns false when the lock
	// is already held.
	Acquire(id string) (release func(), ok bool)
}

// FindByRef resolves a session reference: either a full UUID or an id prefix
// as printed by listings. A prefix must match exactly one stored session.
// Returns nil (not an error) when nothing matches.
func FindByRef(st Store, ref string) (*types.Session, error) {
	if ref == "" {
		return nil, &types.ValidationError{Field: "id", Reason: "session reference required"}
	}
	if types.ValidateID(ref) == nil {
		return st.Get(ref)
	}

	sessions, err := st.List(Filter{})
	if err != nil {
		return nil, err
	}
	var match *types.Session
	for _, s := range sessions {
		if !strings.HasPrefix(s.ID, ref) {
			continue
		}
		if match != nil {
			return nil, &types.ValidationError{
				Field:  "id",
				Reason: fmt.Sprintf("prefix %q matches more than one session, use more characters", ref),
			}
		}
		match = s
	}
	return match, nil
}

// applyFilter is shared by both store implementations.
func applyFilter(sessions []*types.Session, f Filter) []*types.Session {
	out := make([]*types.Session, 0, len(sessions))
	var cutoff time.Time
	if f.WithinDays > 0 {
		cutoff = time.Now().UTC().AddDate(0, 0, -f.WithinDays)
	}
	for _, s := range sessions {
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		if f.WithinDays > 0 && s.Metrics.StartedAt.Before(cutoff) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Metrics.StartedAt.After(out[j].Metrics.StartedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// cloneOf builds the fresh session Clone returns.
func cloneOf(src *types.Session) *types.Session {
	out := types.NewSession(src.Decision, src.Preset, src.Provider, src.Model, src.TotalRounds)
	if len(src.Personas) > 0 {
		out.Personas = append([]string(nil), src.Personas...)
	}
	return out
}

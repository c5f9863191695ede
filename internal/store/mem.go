package store

import (
	"fmt"
	"strings"
	"sync"

	"windrose/internal/personas"
	"windrose/internal/types"
)

// MemStore is the in-memory Store used by engine and CLI tests. Same
// contract as FileStore, no disk.
type MemStore struct {
	mu       sync.RWMutex
	sessions map[string]*types.Session

	lockMu   sync.Mutex
	runLocks map[string]*sync.Mutex

	// FailSaves makes every Save return a *types.PersistenceError, for
	// exercising the engine's persist-or-fail rule.
	FailSaves bool
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		sessions: make(map[string]*types.Session),
		runLocks: make(map[string]*sync.Mutex),
	}
}

// Create validates inputs and records a fresh session.
func (ms *MemStore) Create(decision, preset, provider, model string, totalRounds int) (*types.Session, error) {
	if err := types.ValidateDecision(decision); err != nil {
		return nil, err
	}
	if !personas.ValidPreset(preset) {
		return nil, &types.ValidationError{
			Field:  "preset",
			Reason: fmt.Sprintf("unknown preset %q (valid: %s)", preset, strings.Join(personas.PresetNames(), ", ")),
		}
	}
	s := types.NewSession(decision, preset, provider, model, totalRounds)
	ms.mu.Lock()
	ms.sessions[s.ID] = s
	ms.mu.Unlock()
	return s, nil
}

// Get returns the session for id, or nil when absent.
func (ms *MemStore) Get(id string) (*types.Session, error) {
	if err := types.ValidateID(id); err != nil {
		return nil, err
	}
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.sessions[id], nil
}

// List returns sessions matching the filter, most-recent-first.
func (ms *MemStore) List(f Filter) ([]*types.Session, error) {
	ms.mu.RLock()
	all := make([]*types.Session, 0, len(ms.sessions))
	for _, s := range ms.sessions {
		all = append(all, s)
	}
	ms.mu.RUnlock()
	return applyFilter(all, f), nil
}

// Update mutates in place; silent no-op when the id is absent.
func (ms *MemStore) Update(id string, mutate func(*types.Session)) error {
	if err := types.ValidateID(id); err != nil {
		return err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	s, ok := ms.sessions[id]
	if !ok {
		return nil
	}
	mutate(s)
	return nil
}

// Save records the session.
func (ms *MemStore) Save(s *types.Session) error {
	if ms.FailSaves {
		return &types.PersistenceError{Op: "write", Path: "mem://" + s.ID, Err: fmt.Errorf("scripted failure")}
	}
	ms.mu.Lock()
	ms.sessions[s.ID] = s
	ms.mu.Unlock()
	return nil
}

// Delete removes the session. Returns false when absent.
func (ms *MemStore) Delete(id string) (bool, error) {
	if err := types.ValidateID(id); err != nil {
		return false, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, ok := ms.sessions[id]; !ok {
		return false, nil
	}
	delete(ms.sessions, id)
	return true, nil
}

// Clone copies a session into a fresh one. Returns nil when absent.
func (ms *MemStore) Clone(id string) (*types.Session, error) {
	if err := types.ValidateID(id); err != nil {
		return nil, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	src, ok := ms.sessions[id]
	if !ok {
		return nil, nil
	}
	out := cloneOf(src)
	ms.sessions[out.ID] = out
	return out, nil
}

// Acquire takes the per-session run lock.
func (ms *MemStore) Acquire(id string) (func(), bool) {
	ms.lockMu.Lock()
	l, ok := ms.runLocks[id]
	if !ok {
		l = &sync.Mutex{}
		ms.runLocks[id] = l
	}
	ms.lockMu.Unlock()

	if !l.TryLock() {
		return nil, false
	}
	return l.Unlock, true
}

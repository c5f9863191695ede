package engine

import "sync/atomic"

// runControl carries the pause/cancel flags for one in-flight run. Requests
// are honored at phase and persona-response boundaries, never mid-call; a
// request arriving after the run ends is a no-op.
type runControl struct {
	pause  atomic.Bool
	cancel atomic.Bool
}

func (c *runControl) pauseRequested() bool  { return c.pause.Load() }
func (c *runControl) cancelRequested() bool { return c.cancel.Load() }

func (e *Engine) register(id string) *runControl {
	e.mu.Lock()
	defer e.mu.Unlock()
	ctl := &runControl{}
	e.controls[id] = ctl
	return ctl
}

func (e *Engine) unregister(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.controls, id)
}

// Pause requests a graceful pause of an in-flight run. Returns false when no
// run is active for the session.
func (e *Engine) Pause(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	ctl, ok := e.controls[id]
	if !ok {
		return false
	}
	ctl.pause.Store(true)
	return true
}

// Cancel requests a graceful abort of an in-flight run. Cancel wins over a
// concurrent pause request. Returns false when no run is active.
func (e *Engine) Cancel(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	ctl, ok := e.controls[id]
	if !ok {
		return false
	}
	ctl.cancel.Store(true)
	return true
}

// Running reports whether a run is currently active for the session.
func (e *Engine) Running(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.controls[id]
	return ok
}

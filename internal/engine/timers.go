package engine

import (
	"time"

	"github.com/google/uuid"
)

type TimerID string

type timer struct {
	id   TimerID
	due  time.Time
	seq  int
	fn   func()
	wall *time.Timer
}

// Schedule arms a one-shot timer. The callback runs under dispatch, so it
// may schedule or cancel other timers and listeners without further
// locking. On a virtual engine nothing fires until Advance.
func (e *Engine) Schedule(delay time.Duration, fn func()) TimerID {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := TimerID(uuid.NewString())
	tm := &timer{id: id, due: e.clock.Now().Add(delay), seq: e.seq, fn: fn}
	e.seq++
	e.timers[id] = tm
	if e.virtual == nil {
		tm.wall = time.AfterFunc(delay, func() { e.fire(id) })
	}
	return id
}

// CancelTimer is a no-op for unknown, already-fired, or empty ids.
func (e *Engine) CancelTimer(id TimerID) {
	if id == "" {
		return
	}
	e.mu.Lock()
	tm := e.timers[id]
	delete(e.timers, id)
	e.mu.Unlock()
	if tm != nil && tm.wall != nil {
		tm.wall.Stop()
	}
}

// fire is the wall-clock delivery path. A timer cancelled while this call
// waited on the dispatch lock is gone from the registry and stays silent.
func (e *Engine) fire(id TimerID) {
	e.dispatchMu.Lock()
	defer e.dispatchMu.Unlock()

	e.mu.Lock()
	tm := e.timers[id]
	delete(e.timers, id)
	e.mu.Unlock()
	if tm == nil {
		return
	}
	tm.fn()
}

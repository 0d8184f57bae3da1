// Package engine is the host runtime a trial runs on: a clock, a timer
// service, a keyboard service, and synthetic input injection for
// simulation. All event delivery (timer callbacks, key presses, routed
// clicks) is serialized through one dispatch mutex, so trial code runs
// single threaded and delivery order breaks ties, the same way a browser
// event loop would.
package engine

import (
	"math"
	"sync"
	"time"
)

type Engine struct {
	clock   Clock
	virtual *VirtualClock

	// dispatchMu serializes event delivery; mu guards the registries.
	// Callbacks run under dispatchMu only, never under mu, so they may
	// schedule and cancel freely.
	dispatchMu sync.Mutex
	mu         sync.Mutex
	timers     map[TimerID]*timer
	listeners  []*keyListener
	seq        int
}

// New returns a wall-clock engine for live sessions.
func New() *Engine {
	return &Engine{clock: SystemClock(), timers: make(map[TimerID]*timer)}
}

// NewVirtual returns an engine on a manual clock, driven by Advance.
func NewVirtual(start time.Time) *Engine {
	vc := NewVirtualClock(start)
	return &Engine{clock: vc, virtual: vc, timers: make(map[TimerID]*timer)}
}

func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// Do runs fn under the dispatch lock. Host-originated work that touches
// trial state (e.g. routing a click from a socket) goes through here.
func (e *Engine) Do(fn func()) {
	e.dispatchMu.Lock()
	defer e.dispatchMu.Unlock()
	fn()
}

// Advance moves a virtual engine forward by d, firing due timers in
// (due time, registration order) and stepping the clock to each timer's
// due time before its callback runs. Callbacks may schedule further
// timers; anything falling inside the window fires in the same call.
func (e *Engine) Advance(d time.Duration) {
	if e.virtual == nil {
		panic("engine: Advance requires a virtual clock")
	}
	target := e.virtual.Now().Add(d)
	for {
		e.mu.Lock()
		var next *timer
		for _, tm := range e.timers {
			if tm.due.After(target) {
				continue
			}
			if next == nil || tm.due.Before(next.due) ||
				(tm.due.Equal(next.due) && tm.seq < next.seq) {
				next = tm
			}
		}
		if next == nil {
			e.mu.Unlock()
			break
		}
		delete(e.timers, next.id)
		e.mu.Unlock()

		e.virtual.set(next.due)
		e.Do(next.fn)
	}
	e.virtual.set(target)
}

// CancelAll drops every pending timer and listener. Session teardown.
func (e *Engine) CancelAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, tm := range e.timers {
		if tm.wall != nil {
			tm.wall.Stop()
		}
		delete(e.timers, id)
	}
	e.listeners = nil
}

// RoundMS converts a duration to whole milliseconds, rounding half away
// from zero. Reaction times are reported in this unit.
func RoundMS(d time.Duration) int {
	return int(math.Round(float64(d) / float64(time.Millisecond)))
}

package engine

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Chuan-Peng-Lab/trialkit/internal/display"
)

type ListenerID string

// KeyboardEvent is what a listener callback receives. Key is normalized to
// lower case; RT is whole milliseconds since the listener's reference time.
type KeyboardEvent struct {
	Key string
	RT  int
}

type KeyboardOptions struct {
	// ValidKeys filters delivery; nil or empty accepts any key. Matching
	// is case-insensitive.
	ValidKeys []string
	// Persist keeps the listener registered after a qualifying key. When
	// false the listener is removed before its callback runs, so it can
	// never fire twice.
	Persist bool
	// Reference is the zero point for RT. Zero value means registration
	// time.
	Reference time.Time
}

type keyListener struct {
	id      ListenerID
	valid   map[string]bool
	persist bool
	ref     time.Time
	fn      func(KeyboardEvent)
}

func (e *Engine) ListenKeys(opts KeyboardOptions, fn func(KeyboardEvent)) ListenerID {
	e.mu.Lock()
	defer e.mu.Unlock()

	var valid map[string]bool
	if len(opts.ValidKeys) > 0 {
		valid = make(map[string]bool, len(opts.ValidKeys))
		for _, k := range opts.ValidKeys {
			valid[strings.ToLower(k)] = true
		}
	}
	ref := opts.Reference
	if ref.IsZero() {
		ref = e.clock.Now()
	}
	l := &keyListener{
		id:      ListenerID(uuid.NewString()),
		valid:   valid,
		persist: opts.Persist,
		ref:     ref,
		fn:      fn,
	}
	e.listeners = append(e.listeners, l)
	return l.id
}

// CancelKeyListener is a no-op for unknown or empty ids.
func (e *Engine) CancelKeyListener(id ListenerID) {
	if id == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removeListener(id)
}

// removeListener requires mu held.
func (e *Engine) removeListener(id ListenerID) {
	for i, l := range e.listeners {
		if l.id == id {
			e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
			return
		}
	}
}

// PressKey delivers a key press to every qualifying listener, in
// registration order. External entry point: sockets and tests call this.
func (e *Engine) PressKey(key string) {
	e.Do(func() { e.pressKey(key) })
}

// pressKey requires dispatchMu held (timer callbacks and Do already hold
// it). Non-persistent listeners are deregistered before any callback runs.
func (e *Engine) pressKey(key string) {
	k := strings.ToLower(key)
	now := e.clock.Now()

	e.mu.Lock()
	var hits []*keyListener
	for _, l := range e.listeners {
		if l.valid != nil && !l.valid[k] {
			continue
		}
		hits = append(hits, l)
	}
	for _, l := range hits {
		if !l.persist {
			e.removeListener(l.id)
		}
	}
	e.mu.Unlock()

	for _, l := range hits {
		l.fn(KeyboardEvent{Key: k, RT: RoundMS(now.Sub(l.ref))})
	}
}

// PressKeyAfter schedules a synthetic key press. Simulation uses this to
// replay a planned response through the real delivery path.
func (e *Engine) PressKeyAfter(key string, delay time.Duration) TimerID {
	return e.Schedule(delay, func() { e.pressKey(key) })
}

// ClickAfter schedules a synthetic click on a display node.
func (e *Engine) ClickAfter(n *display.Node, delay time.Duration) TimerID {
	return e.Schedule(delay, func() { n.Click() })
}

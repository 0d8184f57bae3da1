package htmlresponse

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Chuan-Peng-Lab/trialkit/internal/display"
	"github.com/Chuan-Peng-Lab/trialkit/internal/engine"
)

type State int

const (
	StateArmed State = iota
	StateResponded
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateResponded:
		return "Responded"
	case StateFinalized:
		return "Finalized"
	default:
		return "Armed"
	}
}

// Trial runs one stimulus/response cycle. A Trial is single use: construct,
// Run (or Simulate), read the result from the completion callback. All
// callbacks arrive on the engine's dispatch, so no locking happens here.
type Trial struct {
	eng    *engine.Engine
	params Params
	log    zerolog.Logger

	container *display.Node
	stimulus  *display.Node
	buttons   []*display.Node

	state   State
	onset   time.Time
	respKey *string
	respRT  *int
	done    func(Result)

	listener    engine.ListenerID
	hideTimer   engine.TimerID
	endTimer    engine.TimerID
	enableTimer engine.TimerID
}

func New(eng *engine.Engine, params Params) *Trial {
	return &Trial{eng: eng, params: params, log: log.Logger}
}

func (t *Trial) WithLogger(l zerolog.Logger) *Trial {
	t.log = l
	return t
}

func (t *Trial) State() State {
	return t.state
}

// Run renders into container, arms timers and the keyboard listener, and
// returns. The trial then lives in engine callbacks until finalize hands
// the Result to done. A configuration error is returned before anything
// is armed.
func (t *Trial) Run(container *display.Node, done func(Result)) error {
	if err := t.render(container); err != nil {
		return err
	}
	t.done = done
	t.state = StateArmed
	t.onset = t.eng.Now()

	if d := t.params.StimulusDuration; d > 0 {
		t.hideTimer = t.eng.Schedule(ms(d), t.hideStimulus)
	}
	if d := t.params.TrialDuration; d > 0 {
		t.endTimer = t.eng.Schedule(ms(d), t.finalize)
	}
	if t.params.EnableButtonAfter > 0 && len(t.buttons) > 0 {
		t.enableTimer = t.eng.Schedule(ms(t.params.EnableButtonAfter), t.enableButtons)
	}
	if !t.params.Choices.IsNoKeys() {
		t.listener = t.eng.ListenKeys(engine.KeyboardOptions{
			ValidKeys: t.params.Choices.List(),
			Reference: t.onset,
		}, t.afterKey)
	}
	t.log.Debug().Str("choices", t.params.Choices.String()).Msg("trial armed")
	return nil
}

func (t *Trial) afterKey(ev engine.KeyboardEvent) {
	rt := ev.RT
	t.afterResponse(ev.Key, &rt)
}

// afterResponse is the single arbitration point for keys and clicks. Keys
// arrive with an rt measured by the keyboard service; clicks arrive with
// nil and are timed here. Both reference the same onset. First response
// wins; the write-once guard stays even though listeners are torn down on
// acceptance.
func (t *Trial) afterResponse(key string, rt *int) {
	if t.state == StateFinalized {
		return
	}
	t.stimulus.AddClass("responded")
	if t.respKey == nil {
		k := key
		v := 0
		if rt != nil {
			v = *rt
		} else {
			v = engine.RoundMS(t.eng.Now().Sub(t.onset))
		}
		t.respKey = &k
		t.respRT = &v
		t.log.Debug().Str("response", k).Int("rt", v).Msg("response accepted")
	}
	if t.state == StateArmed {
		t.state = StateResponded
	}
	t.eng.CancelKeyListener(t.listener)
	t.listener = ""
	t.disableButtons()
	if t.params.ResponseEndsTrial {
		t.finalize()
	}
}

func (t *Trial) hideStimulus() {
	t.stimulus.SetHidden(true)
}

func (t *Trial) enableButtons() {
	for _, b := range t.buttons {
		b.SetDisabled(false)
	}
}

func (t *Trial) disableButtons() {
	for _, b := range t.buttons {
		b.SetDisabled(true)
	}
}

// finalize is the shared terminal transition; the response path and the
// trial-duration timer both land here and the first caller wins. Teardown
// order: listener, timers, result, display.
func (t *Trial) finalize() {
	if t.state == StateFinalized {
		return
	}
	t.state = StateFinalized

	t.eng.CancelKeyListener(t.listener)
	t.eng.CancelTimer(t.hideTimer)
	t.eng.CancelTimer(t.endTimer)
	t.eng.CancelTimer(t.enableTimer)

	result := Result{Stimulus: t.params.Stimulus, Response: t.respKey, RT: t.respRT}
	t.container.Clear()
	t.log.Debug().Msg("trial finalized")
	if t.done != nil {
		t.done(result)
	}
}

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

package htmlresponse

import (
	"math"
	"math/rand"
	"strings"

	"github.com/Chuan-Peng-Lab/trialkit/internal/display"
	"github.com/Chuan-Peng-Lab/trialkit/internal/randomization"
)

type SimulationMode int

const (
	// SimulateDataOnly synthesizes a Result and hands it straight to the
	// completion callback, no rendering.
	SimulateDataOnly SimulationMode = iota
	// SimulateVisual runs the real render/arbiter pipeline and injects
	// the synthesized response through the engine at the synthesized rt.
	SimulateVisual
)

func (m SimulationMode) String() string {
	if m == SimulateVisual {
		return "visual"
	}
	return "data-only"
}

// SimulationOptions override pieces of the synthesized response. Response
// overrides are expected to name a valid choice. NoResponse forces a
// timeout-shaped result (null response, null rt).
type SimulationOptions struct {
	Response   *string
	RT         *int
	NoResponse bool
	RNG        *rand.Rand
}

// Synthetic rt distribution, ms.
const (
	simRTMean = 500.0
	simRTSD   = 50.0
	simRTRate = 1.0 / 150.0
)

// Simulate drives the trial without a participant. In visual mode a
// configuration error from rendering is returned just as Run would.
func (t *Trial) Simulate(mode SimulationMode, opts SimulationOptions, container *display.Node, onLoad func(), done func(Result)) error {
	key, rt := t.synthesize(opts)

	if mode == SimulateVisual {
		if err := t.Run(container, done); err != nil {
			return err
		}
		if onLoad != nil {
			onLoad()
		}
		t.inject(key, rt)
		return nil
	}

	if onLoad != nil {
		onLoad()
	}
	t.log.Debug().Str("mode", mode.String()).Msg("trial simulated")
	done(Result{Stimulus: t.params.Stimulus, Response: key, RT: rt})
	return nil
}

// synthesize draws a plausible response and reconciles it against the
// trial's parameters. NoKeys means no input source exists, so both fields
// are null. A response that would land while buttons are still disabled is
// pushed past the enable delay; one due at or after trial end cannot beat
// the trial-end timer and collapses to the timeout shape. Response and rt
// are always null together.
func (t *Trial) synthesize(opts SimulationOptions) (*string, *int) {
	if opts.NoResponse || t.params.Choices.IsNoKeys() {
		return nil, nil
	}

	choices := t.params.Choices.List()
	buttons := t.params.ShowButtons && len(choices) > 0

	var key string
	switch {
	case opts.Response != nil:
		key = strings.ToLower(*opts.Response)
	case len(choices) > 0:
		key = randomization.Pick(opts.RNG, choices)
	default:
		key = randomization.Letter(opts.RNG)
	}

	var rt int
	if opts.RT != nil {
		rt = *opts.RT
	} else {
		rt = int(math.Round(randomization.SampleExGaussian(opts.RNG, simRTMean, simRTSD, simRTRate, true)))
	}
	if buttons && t.params.EnableButtonAfter > 0 && rt < t.params.EnableButtonAfter {
		rt += t.params.EnableButtonAfter
	}
	if t.params.TrialDuration > 0 && rt >= t.params.TrialDuration {
		return nil, nil
	}
	return &key, &rt
}

// inject replays the synthesized response through the real input path: a
// click on the matching button when buttons are shown, a key press
// otherwise. A null rt injects nothing; the trial then relies on its
// trial-duration timer or stays open.
func (t *Trial) inject(key *string, rt *int) {
	if key == nil || rt == nil {
		return
	}
	delay := ms(*rt)
	choices := t.params.Choices.List()
	if t.params.ShowButtons && len(choices) > 0 {
		for i, c := range choices {
			if strings.EqualFold(c, *key) {
				t.eng.ClickAfter(t.buttons[i], delay)
				return
			}
		}
	}
	t.eng.PressKeyAfter(*key, delay)
}

// Package timeline loads the demo server's trial sequence from a YAML
// file. The file is a flat list of trial definitions; each maps onto the
// html-response parameter set.
package timeline

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Chuan-Peng-Lab/trialkit/internal/plugins/htmlresponse"
)

type File struct {
	Trials []TrialSpec `yaml:"trials"`
}

type TrialSpec struct {
	Stimulus          string      `yaml:"stimulus"`
	Choices           ChoicesSpec `yaml:"choices"`
	ShowButtons       bool        `yaml:"show_buttons"`
	ButtonLayout      string      `yaml:"button_layout"`
	GridRows          int         `yaml:"grid_rows"`
	GridColumns       int         `yaml:"grid_columns"`
	EnableButtonAfter int         `yaml:"enable_button_after"`
	Prompt            string      `yaml:"prompt"`
	StimulusDuration  int         `yaml:"stimulus_duration"`
	TrialDuration     int         `yaml:"trial_duration"`
	ResponseEndsTrial *bool       `yaml:"response_ends_trial"`
}

// ChoicesSpec accepts "ALL_KEYS", "NO_KEYS", or a key list. Omitted means
// all keys.
type ChoicesSpec struct {
	c htmlresponse.Choices
}

func (cs *ChoicesSpec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		switch s {
		case "ALL_KEYS":
			cs.c = htmlresponse.AllKeys
		case "NO_KEYS":
			cs.c = htmlresponse.NoKeys
		default:
			return fmt.Errorf("unknown choices value %q", s)
		}
	case yaml.SequenceNode:
		var keys []string
		if err := value.Decode(&keys); err != nil {
			return err
		}
		cs.c = htmlresponse.Keys(keys...)
	default:
		return errors.New("choices must be ALL_KEYS, NO_KEYS, or a key list")
	}
	return nil
}

func (ts TrialSpec) params() (htmlresponse.Params, error) {
	p := htmlresponse.NewParams(ts.Stimulus)
	if ts.Stimulus == "" {
		return p, errors.New("stimulus is required")
	}
	p.Choices = ts.Choices.c
	p.ShowButtons = ts.ShowButtons
	switch ts.ButtonLayout {
	case "", "grid":
		p.ButtonLayout = htmlresponse.LayoutGrid
	case "flex":
		p.ButtonLayout = htmlresponse.LayoutFlex
	default:
		return p, fmt.Errorf("unknown button_layout %q", ts.ButtonLayout)
	}
	// an explicit grid shape replaces the one-row default entirely
	if ts.GridRows > 0 || ts.GridColumns > 0 {
		p.GridRows = ts.GridRows
		p.GridColumns = ts.GridColumns
	}
	p.EnableButtonAfter = ts.EnableButtonAfter
	p.Prompt = ts.Prompt
	p.StimulusDuration = ts.StimulusDuration
	p.TrialDuration = ts.TrialDuration
	if ts.ResponseEndsTrial != nil {
		p.ResponseEndsTrial = *ts.ResponseEndsTrial
	}
	return p, nil
}

func Load(path string) ([]htmlresponse.Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read timeline: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) ([]htmlresponse.Params, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse timeline: %w", err)
	}
	if len(f.Trials) == 0 {
		return nil, errors.New("timeline has no trials")
	}
	out := make([]htmlresponse.Params, 0, len(f.Trials))
	for i, ts := range f.Trials {
		p, err := ts.params()
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", i+1, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Default is the built-in timeline used when no file is configured: one
// keyboard trial, one button trial, and one timed trial.
func Default() []htmlresponse.Params {
	kb := htmlresponse.NewParams("<p>Press <b>f</b> or <b>j</b></p>")
	kb.Choices = htmlresponse.Keys("f", "j")

	btn := htmlresponse.NewParams("<p>Pick a side</p>")
	btn.Choices = htmlresponse.Keys("left", "right")
	btn.ShowButtons = true
	btn.Prompt = "<p>Click a button or press the matching key.</p>"

	timed := htmlresponse.NewParams("<p>+</p>")
	timed.Choices = htmlresponse.AllKeys
	timed.StimulusDuration = 500
	timed.TrialDuration = 2000
	timed.ResponseEndsTrial = false

	return []htmlresponse.Params{kb, btn, timed}
}

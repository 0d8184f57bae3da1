// Package htmlresponse implements a stimulus/response trial: it renders
// HTML content with an optional button group, accepts the first qualifying
// key press or button click, times it against stimulus onset, and reports
// a single result to the host. Keyboard and button input share one
// arbitration path.
package htmlresponse

import (
	"errors"
	"strings"
)

var ErrGridShape = errors.New("grid layout requires grid rows or grid columns")

type choiceKind int

const (
	choiceAllKeys choiceKind = iota
	choiceNoKeys
	choiceKeys
)

// Choices selects which keys qualify as a response. In button mode the
// key list also defines button count, labels, and order. The zero value
// accepts every key.
type Choices struct {
	kind choiceKind
	keys []string
}

var (
	AllKeys = Choices{kind: choiceAllKeys}
	NoKeys  = Choices{kind: choiceNoKeys}
)

func Keys(keys ...string) Choices {
	return Choices{kind: choiceKeys, keys: keys}
}

func (c Choices) IsAllKeys() bool { return c.kind == choiceAllKeys }
func (c Choices) IsNoKeys() bool  { return c.kind == choiceNoKeys }

// List returns the explicit key list, nil for AllKeys and NoKeys.
func (c Choices) List() []string {
	if c.kind != choiceKeys {
		return nil
	}
	return c.keys
}

func (c Choices) String() string {
	switch c.kind {
	case choiceNoKeys:
		return "NO_KEYS"
	case choiceKeys:
		return "[" + strings.Join(c.keys, " ") + "]"
	default:
		return "ALL_KEYS"
	}
}

type Layout int

const (
	LayoutGrid Layout = iota
	LayoutFlex
)

func (l Layout) String() string {
	if l == LayoutFlex {
		return "flex"
	}
	return "grid"
}

// DefaultButtonHTML is the button builder used when Params.ButtonHTML is
// nil.
func DefaultButtonHTML(choice string, _ int) string {
	return `<button class="trialkit-btn">` + choice + `</button>`
}

// Params configure one trial and are immutable for its lifetime.
// Durations are milliseconds; 0 means the timer is not armed.
type Params struct {
	// Stimulus is raw HTML markup shown to the participant.
	Stimulus string

	// Choices gates the keyboard listener (NoKeys arms none) and, with
	// ShowButtons, defines the button set.
	Choices Choices

	ShowButtons  bool
	ButtonHTML   func(choice string, index int) string
	ButtonLayout Layout
	// GridRows/GridColumns shape the grid layout; 0 means unset. With
	// both unset rendering fails with ErrGridShape.
	GridRows    int
	GridColumns int
	// EnableButtonAfter keeps buttons disabled for this many ms.
	EnableButtonAfter int

	// Prompt is raw HTML appended after stimulus and buttons, "" for none.
	Prompt string

	StimulusDuration  int
	TrialDuration     int
	ResponseEndsTrial bool
}

// NewParams returns Params with the canonical defaults: all keys qualify,
// grid layout with one row, and the first response ends the trial.
func NewParams(stimulus string) Params {
	return Params{
		Stimulus:          stimulus,
		Choices:           AllKeys,
		ButtonLayout:      LayoutGrid,
		GridRows:          1,
		ResponseEndsTrial: true,
	}
}

// Result is handed to the host exactly once per trial. Response and RT are
// null when the trial ended without a response.
type Result struct {
	Stimulus string  `json:"stimulus"`
	Response *string `json:"response"`
	RT       *int    `json:"rt"`
}

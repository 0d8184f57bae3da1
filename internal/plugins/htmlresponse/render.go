package htmlresponse

import (
	"fmt"
	"strconv"

	"github.com/Chuan-Peng-Lab/trialkit/internal/display"
)

const (
	StimulusID    = "trialkit-html-response-stimulus"
	ButtonGroupID = "trialkit-html-response-btngroup"
)

// ButtonID returns the node id of the button at the given choice index.
func ButtonID(index int) string {
	return "trialkit-html-response-button-" + strconv.Itoa(index)
}

// render builds the trial's nodes into container. Pure construction: no
// timers, no listeners. Everything is assembled detached and appended at
// the end, so a configuration error leaves the container untouched.
func (t *Trial) render(container *display.Node) error {
	stim := display.NewNode("div", StimulusID)
	stim.SetHTML(t.params.Stimulus)

	var group *display.Node
	var buttons []*display.Node
	choices := t.params.Choices.List()
	if t.params.ShowButtons && len(choices) > 0 {
		group = display.NewNode("div", ButtonGroupID)
		switch t.params.ButtonLayout {
		case LayoutFlex:
			group.AddClass("trialkit-btn-group-flex")
		default:
			group.AddClass("trialkit-btn-group-grid")
			rows, cols := t.params.GridRows, t.params.GridColumns
			if rows <= 0 && cols <= 0 {
				return ErrGridShape
			}
			n := len(choices)
			if cols <= 0 {
				cols = (n + rows - 1) / rows
			}
			if rows <= 0 {
				rows = (n + cols - 1) / cols
			}
			group.SetStyle("grid-template-columns", fmt.Sprintf("repeat(%d, 1fr)", cols))
			group.SetStyle("grid-template-rows", fmt.Sprintf("repeat(%d, 1fr)", rows))
		}

		builder := t.params.ButtonHTML
		if builder == nil {
			builder = DefaultButtonHTML
		}
		for i, choice := range choices {
			choice := choice
			btn := display.NewRawNode(builder(choice, i))
			btn.SetID(ButtonID(i))
			btn.SetAttr("data-choice", strconv.Itoa(i))
			if t.params.EnableButtonAfter > 0 {
				btn.SetDisabled(true)
			}
			btn.OnClick(func() { t.afterResponse(choice, nil) })
			group.AppendChild(btn)
			buttons = append(buttons, btn)
		}
	}

	container.AppendChild(stim)
	if group != nil {
		container.AppendChild(group)
	}
	if t.params.Prompt != "" {
		container.AppendChild(display.NewRawNode(t.params.Prompt))
	}

	t.container = container
	t.stimulus = stim
	t.buttons = buttons
	return nil
}

package timeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sample = `
trials:
  - stimulus: "<p>press f or j</p>"
    choices: ["f", "j"]
    trial_duration: 2000
  - stimulus: "<p>buttons</p>"
    choices: ["yes", "no"]
    show_buttons: true
    button_layout: grid
    grid_columns: 2
    enable_button_after: 300
  - stimulus: "<p>watch only</p>"
    choices: NO_KEYS
    trial_duration: 1000
    response_ends_trial: false
`

func TestParse(t *testing.T) {
	trials, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(trials) != 3 {
		t.Fatalf("got %d trials, want 3", len(trials))
	}

	first := trials[0]
	if first.Stimulus != "<p>press f or j</p>" {
		t.Fatalf("stimulus %q", first.Stimulus)
	}
	if l := first.Choices.List(); len(l) != 2 || l[0] != "f" {
		t.Fatalf("choices %v", l)
	}
	if first.TrialDuration != 2000 || !first.ResponseEndsTrial {
		t.Fatalf("first trial misparsed: %+v", first)
	}

	second := trials[1]
	if !second.ShowButtons || second.GridColumns != 2 || second.GridRows != 0 {
		t.Fatalf("explicit grid shape not honored: %+v", second)
	}
	if second.EnableButtonAfter != 300 {
		t.Fatalf("enable_button_after %d", second.EnableButtonAfter)
	}

	third := trials[2]
	if !third.Choices.IsNoKeys() || third.ResponseEndsTrial {
		t.Fatalf("third trial misparsed: %+v", third)
	}
}

func TestParseDefaultsToAllKeysAndOneRowGrid(t *testing.T) {
	trials, err := Parse([]byte("trials:\n  - stimulus: \"<p>x</p>\"\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p := trials[0]
	if !p.Choices.IsAllKeys() {
		t.Fatal("omitted choices not AllKeys")
	}
	if p.GridRows != 1 || p.GridColumns != 0 {
		t.Fatalf("default grid shape %d x %d", p.GridRows, p.GridColumns)
	}
	if !p.ResponseEndsTrial {
		t.Fatal("omitted response_ends_trial not true")
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"no trials", "trials: []", "no trials"},
		{"missing stimulus", "trials:\n  - choices: ALL_KEYS\n", "trial 1"},
		{"bad layout", "trials:\n  - stimulus: x\n    button_layout: circle\n", "button_layout"},
		{"bad choices", "trials:\n  - stimulus: x\n    choices: SOME_KEYS\n", "choices"},
		{"bad choices kind", "trials:\n  - stimulus: x\n    choices: {a: b}\n", "choices"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timeline.yaml")
	if err := os.WriteFile(path, []byte(sample), 0644); err != nil {
		t.Fatal(err)
	}
	trials, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(trials) != 3 {
		t.Fatalf("got %d trials", len(trials))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDefaultTimeline(t *testing.T) {
	trials := Default()
	if len(trials) == 0 {
		t.Fatal("default timeline empty")
	}
	for i, p := range trials {
		if p.Stimulus == "" {
			t.Fatalf("default trial %d has no stimulus", i)
		}
	}
}

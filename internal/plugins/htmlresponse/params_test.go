package htmlresponse

import "testing"

func TestChoicesVariants(t *testing.T) {
	if !AllKeys.IsAllKeys() || AllKeys.IsNoKeys() || AllKeys.List() != nil {
		t.Fatal("AllKeys misbehaves")
	}
	if !NoKeys.IsNoKeys() || NoKeys.List() != nil {
		t.Fatal("NoKeys misbehaves")
	}

	var zero Choices
	if !zero.IsAllKeys() {
		t.Fatal("zero value is not AllKeys")
	}

	ks := Keys("f", "j")
	if ks.IsAllKeys() || ks.IsNoKeys() {
		t.Fatal("key list misclassified")
	}
	if l := ks.List(); len(l) != 2 || l[0] != "f" || l[1] != "j" {
		t.Fatalf("List() = %v", l)
	}

	if AllKeys.String() != "ALL_KEYS" || NoKeys.String() != "NO_KEYS" || ks.String() != "[f j]" {
		t.Fatalf("String() wrong: %q %q %q", AllKeys.String(), NoKeys.String(), ks.String())
	}
}

func TestNewParamsDefaults(t *testing.T) {
	p := NewParams("<p>x</p>")
	if p.Stimulus != "<p>x</p>" {
		t.Fatalf("stimulus %q", p.Stimulus)
	}
	if !p.Choices.IsAllKeys() {
		t.Fatal("default choices not AllKeys")
	}
	if p.ButtonLayout != LayoutGrid || p.GridRows != 1 {
		t.Fatal("default layout not a one-row grid")
	}
	if !p.ResponseEndsTrial {
		t.Fatal("default ResponseEndsTrial not true")
	}
	if p.StimulusDuration != 0 || p.TrialDuration != 0 || p.EnableButtonAfter != 0 {
		t.Fatal("default durations not unset")
	}
}

func TestDefaultButtonHTML(t *testing.T) {
	if got := DefaultButtonHTML("f", 0); got != `<button class="trialkit-btn">f</button>` {
		t.Fatalf("DefaultButtonHTML = %q", got)
	}
}

func TestPluginInfo(t *testing.T) {
	info := Info()
	if info.Name != "html-response" {
		t.Fatalf("plugin name %q", info.Name)
	}
	names := map[string]bool{}
	for _, p := range info.Parameters {
		names[p.Name] = true
	}
	for _, want := range []string{"stimulus", "choices", "trial_duration", "response_ends_trial"} {
		if !names[want] {
			t.Fatalf("parameter %q missing from plugin info", want)
		}
	}
}

package display

import (
	"strings"
	"testing"
)

func TestRenderTree(t *testing.T) {
	surf := New()
	stim := NewNode("div", "stim")
	stim.SetHTML("<p>hello</p>")
	surf.Root().AppendChild(stim)

	group := NewNode("div", "group")
	group.AddClass("btn-group")
	group.SetStyle("display", "grid")
	surf.Root().AppendChild(group)

	got := surf.Root().InnerHTML()
	want := `<div id="stim"><p>hello</p></div><div id="group" class="btn-group" style="display: grid;"></div>`
	if got != want {
		t.Fatalf("rendered %q, want %q", got, want)
	}
}

func TestRawNodeAttrInjection(t *testing.T) {
	surf := New()
	btn := NewRawNode(`<button class="trialkit-btn">f</button>`)
	btn.SetAttr("data-choice", "0")
	surf.Root().AppendChild(btn)

	got := btn.Render()
	want := `<button class="trialkit-btn" data-choice="0">f</button>`
	if got != want {
		t.Fatalf("rendered %q, want %q", got, want)
	}

	btn.SetDisabled(true)
	if !strings.Contains(btn.Render(), `disabled="disabled"`) {
		t.Fatalf("disabled attribute missing: %q", btn.Render())
	}
}

func TestRawNodeWithoutMarkupGetsWrapped(t *testing.T) {
	btn := NewRawNode("press me")
	btn.SetAttr("data-choice", "2")
	got := btn.Render()
	want := `<button data-choice="2">press me</button>`
	if got != want {
		t.Fatalf("rendered %q, want %q", got, want)
	}
}

func TestByID(t *testing.T) {
	surf := New()
	outer := NewNode("div", "outer")
	inner := NewNode("span", "inner")
	outer.AppendChild(inner)
	surf.Root().AppendChild(outer)

	if surf.Root().ByID("inner") != inner {
		t.Fatal("ByID did not find nested node")
	}
	if surf.Root().ByID("nope") != nil {
		t.Fatal("ByID returned a node for an unknown id")
	}
}

func TestAddClassIdempotent(t *testing.T) {
	n := NewNode("div", "d")
	n.AddClass("responded")
	n.AddClass("responded")
	if got := n.Render(); strings.Count(got, "responded") != 1 {
		t.Fatalf("class duplicated: %q", got)
	}
	if !n.HasClass("responded") {
		t.Fatal("HasClass false after AddClass")
	}
}

func TestHiddenRendersVisibility(t *testing.T) {
	n := NewNode("div", "d")
	n.SetHidden(true)
	if !strings.Contains(n.Render(), "visibility: hidden;") {
		t.Fatalf("hidden style missing: %q", n.Render())
	}
	n.SetHidden(false)
	if strings.Contains(n.Render(), "visibility") {
		t.Fatalf("hidden style not removed: %q", n.Render())
	}
}

func TestClickRespectsDisabled(t *testing.T) {
	clicks := 0
	n := NewRawNode("<button>go</button>")
	n.OnClick(func() { clicks++ })

	n.SetDisabled(true)
	n.Click()
	if clicks != 0 {
		t.Fatal("disabled node dispatched a click")
	}

	n.SetDisabled(false)
	n.Click()
	n.Click()
	if clicks != 2 {
		t.Fatalf("expected 2 clicks, got %d", clicks)
	}
}

func TestUpdateHookFiresOnAttachedMutation(t *testing.T) {
	surf := New()
	updates := 0
	surf.OnUpdate(func() { updates++ })

	n := NewNode("div", "d")
	n.SetHTML("detached") // not attached yet, no update
	if updates != 0 {
		t.Fatalf("detached mutation fired hook %d times", updates)
	}

	surf.Root().AppendChild(n)
	if updates != 1 {
		t.Fatalf("append fired hook %d times, want 1", updates)
	}

	n.SetHidden(true)
	if updates != 2 {
		t.Fatalf("mutation fired hook %d times, want 2", updates)
	}
}

func TestClear(t *testing.T) {
	surf := New()
	surf.Root().AppendChild(NewNode("div", "a"))
	surf.Root().SetHTML("x")
	surf.Root().Clear()
	if got := surf.Root().InnerHTML(); got != "" {
		t.Fatalf("container not empty after Clear: %q", got)
	}
}

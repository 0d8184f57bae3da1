// Package display holds the in-memory element tree a trial renders into.
// It is a minimal stand-in for the browser DOM: enough structure to build
// markup, flip visibility and disabled state, and route clicks back to
// whoever bound them. Rendering is deterministic so tests can assert on it.
package display

import (
	"strings"
)

// Surface is the root of one render tree, typically one per participant
// session. The update hook fires after every attached mutation; the socket
// bridge uses it to push fresh HTML to the client.
type Surface struct {
	root     *Node
	onUpdate func()
}

func New() *Surface {
	s := &Surface{}
	s.root = &Node{tag: "div", id: "trialkit-display", surface: s}
	return s
}

func (s *Surface) Root() *Node {
	return s.root
}

func (s *Surface) OnUpdate(fn func()) {
	s.onUpdate = fn
}

func (s *Surface) notify() {
	if s != nil && s.onUpdate != nil {
		s.onUpdate()
	}
}

type attr struct {
	key   string
	value string
}

// Node is one element. Regular nodes render as <tag ...>inner+children</tag>.
// Raw nodes carry caller markup verbatim, with tracking attributes injected
// into the markup's first tag.
type Node struct {
	tag      string
	id       string
	raw      string
	html     string
	classes  []string
	attrs    []attr
	styles   []attr
	children []*Node
	hidden   bool
	disabled bool
	onClick  func()
	surface  *Surface
}

func NewNode(tag, id string) *Node {
	return &Node{tag: tag, id: id}
}

// NewRawNode wraps caller-supplied markup, e.g. a button built by a
// Params.ButtonHTML callback or a prompt fragment.
func NewRawNode(markup string) *Node {
	return &Node{raw: markup}
}

func (n *Node) ID() string {
	return n.id
}

// SetID gives a node an id after construction; raw nodes get theirs this
// way since their markup comes from a caller.
func (n *Node) SetID(id string) {
	n.id = id
	n.surface.notify()
}

func (n *Node) SetHTML(inner string) {
	n.html = inner
	n.surface.notify()
}

func (n *Node) AppendChild(c *Node) {
	c.attach(n.surface)
	n.children = append(n.children, c)
	n.surface.notify()
}

func (n *Node) attach(s *Surface) {
	n.surface = s
	for _, c := range n.children {
		c.attach(s)
	}
}

// Clear drops all children and inner markup.
func (n *Node) Clear() {
	n.children = nil
	n.html = ""
	n.surface.notify()
}

func (n *Node) SetAttr(key, value string) {
	for i := range n.attrs {
		if n.attrs[i].key == key {
			n.attrs[i].value = value
			n.surface.notify()
			return
		}
	}
	n.attrs = append(n.attrs, attr{key, value})
	n.surface.notify()
}

func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.attrs {
		if a.key == key {
			return a.value, true
		}
	}
	return "", false
}

func (n *Node) SetStyle(key, value string) {
	for i := range n.styles {
		if n.styles[i].key == key {
			n.styles[i].value = value
			n.surface.notify()
			return
		}
	}
	n.styles = append(n.styles, attr{key, value})
	n.surface.notify()
}

// AddClass is idempotent.
func (n *Node) AddClass(class string) {
	for _, c := range n.classes {
		if c == class {
			return
		}
	}
	n.classes = append(n.classes, class)
	n.surface.notify()
}

func (n *Node) HasClass(class string) bool {
	for _, c := range n.classes {
		if c == class {
			return true
		}
	}
	return false
}

func (n *Node) SetHidden(hidden bool) {
	n.hidden = hidden
	n.surface.notify()
}

func (n *Node) Hidden() bool {
	return n.hidden
}

func (n *Node) SetDisabled(disabled bool) {
	n.disabled = disabled
	n.surface.notify()
}

func (n *Node) Disabled() bool {
	return n.disabled
}

func (n *Node) OnClick(fn func()) {
	n.onClick = fn
}

// Click invokes the bound handler. Disabled nodes swallow the click, same
// as a native disabled button.
func (n *Node) Click() {
	if n.disabled || n.onClick == nil {
		return
	}
	n.onClick()
}

// ByID searches the subtree rooted at n, depth first.
func (n *Node) ByID(id string) *Node {
	if n.id == id {
		return n
	}
	for _, c := range n.children {
		if m := c.ByID(id); m != nil {
			return m
		}
	}
	return nil
}

// Render returns the node's outer HTML.
func (n *Node) Render() string {
	var b strings.Builder
	n.render(&b)
	return b.String()
}

// InnerHTML returns inner markup plus rendered children, without the
// node's own tag. The socket bridge sends the root's InnerHTML.
func (n *Node) InnerHTML() string {
	var b strings.Builder
	b.WriteString(n.html)
	for _, c := range n.children {
		c.render(&b)
	}
	return b.String()
}

func (n *Node) render(b *strings.Builder) {
	if n.raw != "" {
		b.WriteString(injectAttrs(n.raw, n.renderAttrs()))
		return
	}
	b.WriteString("<")
	b.WriteString(n.tag)
	if a := n.renderAttrs(); a != "" {
		b.WriteString(" ")
		b.WriteString(a)
	}
	b.WriteString(">")
	b.WriteString(n.html)
	for _, c := range n.children {
		c.render(b)
	}
	b.WriteString("</")
	b.WriteString(n.tag)
	b.WriteString(">")
}

func (n *Node) renderAttrs() string {
	parts := []string{}
	if n.id != "" {
		parts = append(parts, `id="`+n.id+`"`)
	}
	if len(n.classes) > 0 {
		parts = append(parts, `class="`+strings.Join(n.classes, " ")+`"`)
	}
	for _, a := range n.attrs {
		parts = append(parts, a.key+`="`+a.value+`"`)
	}
	if n.disabled {
		parts = append(parts, `disabled="disabled"`)
	}
	style := ""
	for _, st := range n.styles {
		style += st.key + ": " + st.value + "; "
	}
	if n.hidden {
		style += "visibility: hidden; "
	}
	if style != "" {
		parts = append(parts, `style="`+strings.TrimRight(style, " ")+`"`)
	}
	return strings.Join(parts, " ")
}

// injectAttrs splices attributes into the first tag of raw markup. Markup
// without any tag gets wrapped in a button so tracking attributes still
// have somewhere to live.
func injectAttrs(markup, attrs string) string {
	if attrs == "" {
		return markup
	}
	i := strings.Index(markup, ">")
	if i < 0 || !strings.HasPrefix(strings.TrimSpace(markup), "<") {
		return "<button " + attrs + ">" + markup + "</button>"
	}
	if i > 0 && markup[i-1] == '/' {
		i--
	}
	return markup[:i] + " " + attrs + markup[i:]
}

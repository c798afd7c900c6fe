// Package headless is an in-memory zoom.Document: elements are placed by
// hand, time advances through a manual clock, and portal contents are kept
// as virtual trees. The terminal preview and the tests run widgets on it.
package headless

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/recera/vango-zoom/pkg/renderer/html"
	"github.com/recera/vango-zoom/pkg/vango/vdom"
	"github.com/recera/vango-zoom/pkg/zoom"
)

// Document implements zoom.Document.
type Document struct {
	mu       sync.Mutex
	clock    *zoom.ManualClock
	viewport zoom.Rect
	window   *Target
	locked   bool
	lockLog  []bool
	elements map[string]*Element
	targets  map[string][]*Portal
	focused  *Element
}

// New creates a document with the given viewport size and a "body" portal
// target.
func New(width, height float64) *Document {
	d := &Document{
		clock:    zoom.NewManualClock(),
		viewport: zoom.Rect{Width: width, Height: height},
		elements: make(map[string]*Element),
		targets:  make(map[string][]*Portal),
	}
	d.window = &Target{name: "window"}
	d.AddPortal(zoom.DefaultPortalEl)
	return d
}

// Clock returns the clock driving animation frames.
func (d *Document) Clock() *zoom.ManualClock { return d.clock }

// Window returns the window target.
func (d *Document) Window() zoom.EventTarget { return d.window }

// WindowTarget returns the window as a *Target for dispatching.
func (d *Document) WindowTarget() *Target { return d.window }

// Viewport returns the viewport rect.
func (d *Document) Viewport() zoom.Rect {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.viewport
}

// Resize changes the viewport and fires a resize event on the window.
func (d *Document) Resize(width, height float64) {
	d.mu.Lock()
	d.viewport.Width, d.viewport.Height = width, height
	d.mu.Unlock()
	d.window.Dispatch(zoom.Event{Type: zoom.EventResize})
}

// SetScrollLocked records the page scroll lock.
func (d *Document) SetScrollLocked(locked bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.locked = locked
	d.lockLog = append(d.lockLog, locked)
}

// ScrollLocked reports whether page scrolling is locked.
func (d *Document) ScrollLocked() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.locked
}

// LockChanges returns every SetScrollLocked call in order.
func (d *Document) LockChanges() []bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]bool(nil), d.lockLog...)
}

// Frames returns the manual clock.
func (d *Document) Frames() zoom.FrameScheduler { return d.clock }

// AddPortal registers a mount target with the given id.
func (d *Document) AddPortal(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.targets[id]; !ok {
		d.targets[id] = nil
	}
}

// Portal opens a new mount slot inside target.
func (d *Document) Portal(target string) (zoom.Portal, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	slots, ok := d.targets[target]
	if !ok {
		return nil, fmt.Errorf("%q: %w", target, zoom.ErrPortalNotFound)
	}
	p := &Portal{doc: d, target: target, parts: make(map[string]*Element)}
	d.targets[target] = append(slots, p)
	return p, nil
}

// Mounted returns the slots of target that currently hold a tree.
func (d *Document) Mounted(target string) []*Portal {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*Portal
	for _, p := range d.targets[target] {
		if p.tree != nil {
			out = append(out, p)
		}
	}
	return out
}

// Slot returns the first mounted slot of target, or nil.
func (d *Document) Slot(target string) *Portal {
	if m := d.Mounted(target); len(m) > 0 {
		return m[0]
	}
	return nil
}

// Layout places a surface's wrapper and trigger button at r.
func (d *Document) Layout(s *zoom.Surface, r zoom.Rect) {
	wrap := d.Place(s.ID(), r)
	d.PlaceChild(wrap, s.TriggerID(), r)
}

// Place registers or moves an element.
func (d *Document) Place(id string, r zoom.Rect) *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	el, ok := d.elements[id]
	if !ok {
		el = &Element{doc: d, id: id}
		d.elements[id] = el
	}
	el.rect = r
	return el
}

// PlaceChild registers an element nested in parent.
func (d *Document) PlaceChild(parent *Element, id string, r zoom.Rect) *Element {
	el := d.Place(id, r)
	d.mu.Lock()
	el.parent = parent
	d.mu.Unlock()
	return el
}

// Element looks up a placed element.
func (d *Document) Element(id string) zoom.Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	if el, ok := d.elements[id]; ok {
		return el
	}
	return nil
}

// Focused returns the id of the focused element, "" if none.
func (d *Document) Focused() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.focused == nil {
		return ""
	}
	return d.focused.id
}

// Press dispatches a keydown on the window and reports whether the default
// action was prevented.
func (d *Document) Press(key string) bool {
	prevented := false
	ev := zoom.NewEvent(zoom.EventKeyDown, nil, func() { prevented = true })
	ev.Key = key
	d.window.Dispatch(ev)
	return prevented
}

// PointerDown dispatches a pointerdown on the window targeting el.
func (d *Document) PointerDown(el zoom.Element) {
	ev := zoom.NewEvent(zoom.EventPointerDown, el, nil)
	if el != nil {
		r := el.BoundingRect()
		ev.X, ev.Y = r.Left+r.Width/2, r.Top+r.Height/2
	}
	d.window.Dispatch(ev)
}

// Click invokes the onclick handler of the first node in root tagged
// data-zoom-part=part. It returns the event, or nil when no handler exists.
func Click(root *vdom.VNode, part string) *vdom.Event {
	node := root.Find(func(n *vdom.VNode) bool {
		return n.Kind == vdom.KindElement && n.Attr("data-zoom-part") == part
	})
	if node == nil {
		return nil
	}
	ev := vdom.NewEvent("click", nil)
	switch h := node.Props["onclick"].(type) {
	case func(*vdom.Event):
		h(ev)
	case func():
		h()
	default:
		return nil
	}
	return ev
}

// Element is a placed box.
type Element struct {
	doc    *Document
	id     string
	rect   zoom.Rect
	parent *Element
}

// ID returns the element id.
func (e *Element) ID() string { return e.id }

// BoundingRect returns the placed rect.
func (e *Element) BoundingRect() zoom.Rect {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.rect
}

// Focus makes e the document's focused element.
func (e *Element) Focus() {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.doc.focused = e
}

// Contains reports whether other is e or nested in e.
func (e *Element) Contains(other zoom.Element) bool {
	o, ok := other.(*Element)
	if !ok || o == nil {
		return false
	}
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for n := o; n != nil; n = n.parent {
		if n == e {
			return true
		}
	}
	return false
}

// Portal is one mount slot. It keeps the last applied tree and exposes
// its parts as elements.
type Portal struct {
	doc     *Document
	target  string
	tree    *vdom.VNode
	parts   map[string]*Element
	applies int
	patches []vdom.Patch
}

// Apply stores next and rebuilds the part elements.
func (p *Portal) Apply(prev, next *vdom.VNode) error {
	patches := vdom.Diff(prev, next)

	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()

	if prev == nil && p.tree != nil {
		return fmt.Errorf("portal slot in %q already mounted", p.target)
	}
	p.applies++
	p.patches = patches
	p.tree = next

	old := p.parts
	p.parts = make(map[string]*Element)
	if next != nil {
		p.collect(next, nil, old)
	}
	if p.doc.focused != nil {
		for _, el := range old {
			if p.doc.focused == el && p.parts[el.id] != el {
				p.doc.focused = nil
			}
		}
	}
	return nil
}

// collect walks the tree registering data-zoom-part nodes. Existing part
// elements are reused so focus and containment survive repaints.
func (p *Portal) collect(node *vdom.VNode, parent *Element, old map[string]*Element) {
	if node.Kind == vdom.KindElement {
		if name := node.Attr("data-zoom-part"); name != "" {
			el, ok := old[name]
			if !ok {
				el = &Element{doc: p.doc, id: name}
			}
			el.parent = parent
			el.rect = p.rectOf(node, parent)
			p.parts[name] = el
			parent = el
		}
	}
	for i := range node.Kids {
		p.collect(&node.Kids[i], parent, old)
	}
}

func (p *Portal) rectOf(node *vdom.VNode, parent *Element) zoom.Rect {
	if r, ok := ParseRectStyle(node.Attr("style")); ok {
		return r
	}
	if parent != nil {
		return parent.rect
	}
	return p.doc.viewport
}

// Part returns the element for a rendered part, or nil.
func (p *Portal) Part(name string) zoom.Element {
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	if el, ok := p.parts[name]; ok {
		return el
	}
	return nil
}

// Tree returns the mounted tree, nil when empty.
func (p *Portal) Tree() *vdom.VNode {
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	return p.tree
}

// Applies returns how many times Apply ran.
func (p *Portal) Applies() int {
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	return p.applies
}

// LastPatches returns the diff of the last Apply.
func (p *Portal) LastPatches() []vdom.Patch {
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	return append([]vdom.Patch(nil), p.patches...)
}

// HTML renders the mounted tree.
func (p *Portal) HTML() (string, error) {
	tree := p.Tree()
	if tree == nil {
		return "", nil
	}
	return html.RenderInline(tree)
}

// ParseRectStyle reads top/left/width/height px declarations from an
// inline style. ok is false unless width and height are both present.
func ParseRectStyle(style string) (r zoom.Rect, ok bool) {
	var haveW, haveH bool
	for _, decl := range strings.Split(style, ";") {
		name, value, found := strings.Cut(decl, ":")
		if !found {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(value), "px"), 64)
		if err != nil {
			continue
		}
		switch strings.TrimSpace(name) {
		case "top":
			r.Top = v
		case "left":
			r.Left = v
		case "width":
			r.Width, haveW = v, true
		case "height":
			r.Height, haveH = v, true
		}
	}
	return r, haveW && haveH
}

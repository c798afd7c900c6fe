//go:build js && wasm
// +build js,wasm

package jsdom

import (
	"fmt"
	"sync"
	"syscall/js"
	"time"

	"github.com/recera/vango-zoom/pkg/renderer/dom"
	"github.com/recera/vango-zoom/pkg/vango/vdom"
	"github.com/recera/vango-zoom/pkg/zoom"
)

// Document implements zoom.Document over the global document.
type Document struct {
	doc    js.Value
	win    js.Value
	window *Target

	mu       sync.Mutex
	targets  map[string]*Target
	overflow string
}

// New wraps the page's document and window.
func New() *Document {
	win := js.Global().Get("window")
	return &Document{
		doc:     js.Global().Get("document"),
		win:     win,
		window:  &Target{v: win, window: true},
		targets: make(map[string]*Target),
	}
}

// Window returns the window target. The same pointer is returned every
// time so listeners are shared per window.
func (d *Document) Window() zoom.EventTarget { return d.window }

// ScrollTarget returns a target for the scrollable element with id, or nil
// if no such element exists.
func (d *Document) ScrollTarget(id string) *Target {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.targets[id]; ok {
		return t
	}
	el := d.doc.Call("getElementById", id)
	if !el.Truthy() {
		return nil
	}
	t := &Target{v: el}
	d.targets[id] = t
	return t
}

// Viewport returns the layout viewport.
func (d *Document) Viewport() zoom.Rect {
	return zoom.Rect{
		Width:  d.win.Get("innerWidth").Float(),
		Height: d.win.Get("innerHeight").Float(),
	}
}

// SetScrollLocked toggles overflow:hidden on the body, restoring the
// previous value on unlock.
func (d *Document) SetScrollLocked(locked bool) {
	style := d.doc.Get("body").Get("style")
	d.mu.Lock()
	defer d.mu.Unlock()
	if locked {
		d.overflow = style.Get("overflow").String()
		style.Set("overflow", "hidden")
		return
	}
	style.Set("overflow", d.overflow)
}

// Frames returns requestAnimationFrame.
func (d *Document) Frames() zoom.FrameScheduler { return rafScheduler{win: d.win} }

// Portal appends a new slot container to the element with id target; the
// id "body" means document.body.
func (d *Document) Portal(target string) (zoom.Portal, error) {
	var host js.Value
	if target == zoom.DefaultPortalEl {
		host = d.doc.Get("body")
	} else {
		host = d.doc.Call("getElementById", target)
	}
	if !host.Truthy() {
		return nil, fmt.Errorf("%q: %w", target, zoom.ErrPortalNotFound)
	}

	slot := d.doc.Call("createElement", "div")
	slot.Call("setAttribute", "data-zoom-slot", "")
	host.Call("appendChild", slot)
	return &Portal{slot: slot, applier: dom.NewDOMApplierIn(slot)}, nil
}

// Element looks up an element by id.
func (d *Document) Element(id string) zoom.Element {
	el := d.doc.Call("getElementById", id)
	if !el.Truthy() {
		return nil
	}
	return &Element{v: el}
}

// Portal is one overlay slot.
type Portal struct {
	slot    js.Value
	applier *dom.DOMApplier
}

// Apply patches the slot from prev to next.
func (p *Portal) Apply(prev, next *vdom.VNode) error {
	if prev == nil && p.slot.Get("firstChild").Truthy() {
		return fmt.Errorf("portal slot already mounted")
	}
	return p.applier.ApplyTree(prev, next)
}

// Part finds a rendered part inside the slot.
func (p *Portal) Part(name string) zoom.Element {
	el := p.slot.Call("querySelector", `[data-zoom-part="`+name+`"]`)
	if !el.Truthy() {
		return nil
	}
	return &Element{v: el}
}

// Element wraps a DOM element.
type Element struct {
	v js.Value
}

// BoundingRect returns getBoundingClientRect.
func (e *Element) BoundingRect() zoom.Rect {
	r := e.v.Call("getBoundingClientRect")
	return zoom.Rect{
		Top:    r.Get("top").Float(),
		Left:   r.Get("left").Float(),
		Width:  r.Get("width").Float(),
		Height: r.Get("height").Float(),
	}
}

// Focus focuses the element without scrolling.
func (e *Element) Focus() {
	opts := js.Global().Get("Object").New()
	opts.Set("preventScroll", true)
	e.v.Call("focus", opts)
}

// Contains uses Node.contains.
func (e *Element) Contains(other zoom.Element) bool {
	o, ok := other.(*Element)
	if !ok || o == nil {
		return false
	}
	return e.v.Call("contains", o.v).Bool()
}

// Target is the window or a scrollable element.
type Target struct {
	v      js.Value
	window bool
}

// Listen adds a DOM listener translating events to zoom.Event.
func (t *Target) Listen(event string, fn func(zoom.Event)) (remove func()) {
	opts := js.Global().Get("Object").New()
	opts.Set("passive", event == zoom.EventScroll)

	cb := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if len(args) == 0 {
			return nil
		}
		raw := args[0]
		ev := zoom.NewEvent(event, nil, func() { raw.Call("preventDefault") })
		if k := raw.Get("key"); k.Type() == js.TypeString {
			ev.Key = k.String()
		}
		if x := raw.Get("clientX"); x.Type() == js.TypeNumber {
			ev.X, ev.Y = x.Float(), raw.Get("clientY").Float()
		}
		if tgt := raw.Get("target"); tgt.Truthy() && tgt.Get("nodeType").Truthy() {
			ev.Target = &Element{v: tgt}
		}
		fn(ev)
		return nil
	})
	t.v.Call("addEventListener", event, cb, opts)

	var once sync.Once
	return func() {
		once.Do(func() {
			t.v.Call("removeEventListener", event, cb, opts)
			cb.Release()
		})
	}
}

// ScrollOffset reads scrollX/scrollY for the window and scrollLeft/scrollTop
// for elements.
func (t *Target) ScrollOffset() (x, y float64) {
	if t.window {
		return t.v.Get("scrollX").Float(), t.v.Get("scrollY").Float()
	}
	return t.v.Get("scrollLeft").Float(), t.v.Get("scrollTop").Float()
}

// rafScheduler is requestAnimationFrame. Timestamps are the DOMHighResTimeStamp
// passed to the callback.
type rafScheduler struct {
	win js.Value
}

func (r rafScheduler) RequestFrame(fn func(now time.Duration)) (cancel func()) {
	var cb js.Func
	var once sync.Once
	release := func() { once.Do(cb.Release) }

	cb = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		var ms float64
		if len(args) > 0 {
			ms = args[0].Float()
		}
		release()
		fn(time.Duration(ms * float64(time.Millisecond)))
		return nil
	})
	id := r.win.Call("requestAnimationFrame", cb)

	return func() {
		r.win.Call("cancelAnimationFrame", id)
		release()
	}
}

//go:build js && wasm
// +build js,wasm

package main

import (
	"strconv"
	"sync"
	"syscall/js"
	"time"

	"github.com/recera/vango-zoom/pkg/debug"
	"github.com/recera/vango-zoom/pkg/renderer/dom"
	"github.com/recera/vango-zoom/pkg/scheduler"
	"github.com/recera/vango-zoom/pkg/styling"
	"github.com/recera/vango-zoom/pkg/vango/vdom"
	"github.com/recera/vango-zoom/pkg/vex/builder"
	"github.com/recera/vango-zoom/pkg/zoom"
	"github.com/recera/vango-zoom/pkg/zoom/jsdom"
)

var (
	document js.Value
	console  js.Value

	mu       sync.Mutex
	appliers = make(map[*scheduler.Fiber]*dom.DOMApplier)
)

func main() {
	document = js.Global().Get("document")
	console = js.Global().Get("console")

	console.Call("log", "🔍 vango-zoom client starting...")

	if document.Get("readyState").String() != "loading" {
		onReady()
	} else {
		document.Call("addEventListener", "DOMContentLoaded", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
			onReady()
			return nil
		}))
	}

	// Keep the WASM runtime alive
	select {}
}

func onReady() {
	if document.Get("body").Call("hasAttribute", "data-zoom-debug").Bool() {
		debug.EnableLogging()
	}
	ensureStyles()

	doc := jsdom.New()
	sched := scheduler.NewScheduler()
	sched.SetPatchApplier(applyFiber)
	sched.Start()

	mounts := document.Call("querySelectorAll", "[data-zoom-mount]")
	for i := 0; i < mounts.Get("length").Int(); i++ {
		if err := mount(doc, sched, mounts.Index(i)); err != nil {
			console.Call("error", "zoom mount failed:", err.Error())
		}
	}

	console.Call("log", "✅ vango-zoom client initialized")
}

// ensureStyles injects the widget CSS unless the server already did.
func ensureStyles() {
	if document.Call("querySelector", "style[data-vango-styles]").Truthy() {
		return
	}
	head := dom.NewDOMApplierIn(document.Get("head"))
	if err := head.ApplyTree(nil, styling.StyleNode()); err != nil {
		console.Call("error", "style injection failed:", err.Error())
	}
}

func applyFiber(f *scheduler.Fiber, patches []vdom.Patch) {
	mu.Lock()
	a := appliers[f]
	mu.Unlock()
	if a == nil {
		return
	}
	if err := a.Apply(patches); err != nil {
		console.Call("error", "patch failed:", err.Error())
	}
}

// mount replaces the server-rendered trigger inside host with a live widget.
func mount(doc *jsdom.Document, sched *scheduler.Scheduler, host js.Value) error {
	attr := func(name string) string {
		v := host.Call("getAttribute", name)
		if v.IsNull() {
			return ""
		}
		return v.String()
	}

	opts := zoom.Options{
		OpenText:            attr("data-zoom-open-text"),
		CloseText:           attr("data-zoom-close-text"),
		OverlayBgColorStart: attr("data-zoom-bg-start"),
		OverlayBgColorEnd:   attr("data-zoom-bg-end"),
		PortalEl:            attr("data-zoom-portal"),
		Easing:              attr("data-zoom-easing"),
		Scheduler:           sched,
	}
	if v, err := strconv.ParseFloat(attr("data-zoom-margin"), 64); err == nil {
		opts.ZoomMargin = v
	}
	if v, err := strconv.Atoi(attr("data-zoom-duration")); err == nil {
		opts.TransitionDuration = time.Duration(v) * time.Millisecond
	}
	if id := attr("data-zoom-scroll"); id != "" {
		if t := doc.ScrollTarget(id); t != nil {
			opts.ScrollableEl = t
		}
	}
	if w, err := strconv.ParseFloat(attr("data-zoom-natural-width"), 64); err == nil {
		opts.NaturalSize.Width = w
		opts.NaturalSize.Height, _ = strconv.ParseFloat(attr("data-zoom-natural-height"), 64)
	}

	content := builder.Img().
		Src(attr("data-zoom-src")).
		Alt(attr("data-zoom-alt")).
		Build()

	var s *zoom.Surface
	var err error
	if attr("data-zoom-controlled") == "true" {
		opts.OnZoomChange = func(z bool) {
			console.Call("log", "[Zoom] owner accepts", z)
			s.SetZoomed(z)
		}
		s, err = zoom.NewControlled(doc, opts, content)
	} else {
		opts.OnZoomChange = func(z bool) {
			console.Call("log", "[Zoom] zoomed:", z)
		}
		s, err = zoom.NewUncontrolled(doc, opts, content)
	}
	if err != nil {
		return err
	}

	host.Set("innerHTML", "")
	mu.Lock()
	fiber := s.Mount(sched)
	appliers[fiber] = dom.NewDOMApplierIn(host)
	mu.Unlock()

	// the trigger must be in the page before a zoomed start can measure it
	js.Global().Call("requestAnimationFrame", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		s.Start()
		return nil
	}))
	return nil
}

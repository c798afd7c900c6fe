package zoom_test

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/recera/vango-zoom/pkg/renderer/html"
	"github.com/recera/vango-zoom/pkg/scheduler"
	"github.com/recera/vango-zoom/pkg/vango/vdom"
	"github.com/recera/vango-zoom/pkg/vex/builder"
	"github.com/recera/vango-zoom/pkg/zoom"
	"github.com/recera/vango-zoom/pkg/zoom/headless"
)

const frame = 16 * time.Millisecond

var triggerRect = zoom.Rect{Top: 100, Left: 50, Width: 200, Height: 150}

func image() *vdom.VNode {
	return builder.Img().Src("/images/harbour.jpg").Alt("Harbour at dusk").Build()
}

// changes records OnZoomChange calls.
type changes struct {
	mu  sync.Mutex
	got []bool
}

func (c *changes) add(z bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, z)
}

func (c *changes) list() []bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]bool(nil), c.got...)
}

func equalBools(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func newUncontrolled(t *testing.T, doc *headless.Document, opts zoom.Options) *zoom.Surface {
	t.Helper()
	if opts.ZoomMargin == 0 {
		opts.ZoomMargin = 20
	}
	s, err := zoom.NewUncontrolled(doc, opts, image())
	if err != nil {
		t.Fatalf("NewUncontrolled: %v", err)
	}
	t.Cleanup(s.Close)
	doc.Layout(s, triggerRect)
	s.Start()
	return s
}

func click(t *testing.T, s *zoom.Surface) {
	t.Helper()
	if headless.Click(s.Render(), zoom.PartTrigger) == nil {
		t.Fatal("trigger has no click handler")
	}
}

func settle(doc *headless.Document) {
	doc.Clock().Run(frame, 200)
}

func TestSurface_UncontrolledRoundTrip(t *testing.T) {
	doc := headless.New(1000, 800)
	rec := &changes{}
	var states []zoom.State
	s := newUncontrolled(t, doc, zoom.Options{
		OnZoomChange:  rec.add,
		OnStateChange: func(st zoom.State) { states = append(states, st) },
	})

	if s.State() != zoom.Idle || doc.Slot("body") != nil {
		t.Fatal("new surface should be idle with nothing mounted")
	}

	click(t, s)
	if s.State() != zoom.Activating {
		t.Fatalf("state after click = %s", s.State())
	}
	if !s.Zoomed() || !doc.ScrollLocked() {
		t.Error("flag and scroll lock should be on")
	}
	if doc.Focused() != zoom.PartClose {
		t.Errorf("focus = %q, want close button", doc.Focused())
	}
	if !s.Loaded() || !strings.Contains(s.Render().Attr("class"), zoom.Class("wrapHidden")) {
		t.Error("trigger wrapper should be hidden while the overlay shows the image")
	}
	if doc.Slot("body") == nil {
		t.Fatal("overlay not mounted in body")
	}

	settle(doc)
	if s.State() != zoom.Active {
		t.Fatalf("state after transition = %s", s.State())
	}
	want := zoom.Rect{Top: 40, Left: 20, Width: 960, Height: 720}
	if got := s.Machine().Frame().Rect; got != want {
		t.Errorf("final rect = %+v, want %+v", got, want)
	}

	if !doc.Press("Escape") {
		t.Error("Escape default should be prevented while zoomed")
	}
	if s.State() != zoom.Deactivating {
		t.Fatalf("state after Escape = %s", s.State())
	}
	settle(doc)

	if s.State() != zoom.Idle {
		t.Fatalf("state after close = %s", s.State())
	}
	if got := rec.list(); !equalBools(got, []bool{true, false}) {
		t.Errorf("OnZoomChange = %v, want [true false]", got)
	}
	if s.Zoomed() || doc.ScrollLocked() {
		t.Error("flag and scroll lock should be off")
	}
	if doc.Slot("body") != nil {
		t.Error("overlay still mounted")
	}
	if doc.Focused() != s.TriggerID() {
		t.Errorf("focus = %q, want trigger", doc.Focused())
	}
	if s.Loaded() {
		t.Error("trigger wrapper should be visible again")
	}
	if n := doc.WindowTarget().TotalListeners(); n != 0 {
		t.Errorf("%d window listeners left", n)
	}

	wantStates := []zoom.State{zoom.Activating, zoom.Active, zoom.Deactivating, zoom.Idle}
	if fmt.Sprint(states) != fmt.Sprint(wantStates) {
		t.Errorf("states = %v, want %v", states, wantStates)
	}
	if doc.Press("Escape") {
		t.Error("Escape should not be intercepted while idle")
	}
}

func TestSurface_ControlledExternal(t *testing.T) {
	doc := headless.New(1000, 800)
	rec := &changes{}
	s, err := zoom.NewControlled(doc, zoom.Options{ZoomMargin: 20, OnZoomChange: rec.add}, image())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	doc.Layout(s, triggerRect)
	s.Start()

	s.SetZoomed(true)
	if s.State() != zoom.Activating {
		t.Fatalf("state = %s", s.State())
	}
	settle(doc)
	s.SetZoomed(false)
	if s.State() != zoom.Deactivating {
		t.Fatalf("state = %s", s.State())
	}
	settle(doc)

	if s.State() != zoom.Idle {
		t.Errorf("state = %s", s.State())
	}
	if got := rec.list(); len(got) != 0 {
		t.Errorf("owner-driven cycle emitted %v", got)
	}
}

func TestSurface_ControlledInternalDismiss(t *testing.T) {
	doc := headless.New(1000, 800)
	rec := &changes{}
	var s *zoom.Surface
	s, err := zoom.NewControlled(doc, zoom.Options{
		ZoomMargin: 20,
		OnZoomChange: func(z bool) {
			rec.add(z)
			s.SetZoomed(z)
		},
	}, image())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	doc.Layout(s, triggerRect)
	s.Start()

	s.SetZoomed(true)
	settle(doc)
	doc.Press("Escape")
	settle(doc)

	if got := rec.list(); !equalBools(got, []bool{false}) {
		t.Errorf("OnZoomChange = %v, want [false]", got)
	}
	if s.Zoomed() || s.State() != zoom.Idle {
		t.Errorf("zoomed=%v state=%s", s.Zoomed(), s.State())
	}

	// a click asks the owner, who echoes the value back
	click(t, s)
	if s.State() != zoom.Activating {
		t.Errorf("state after click = %s", s.State())
	}
	if got := rec.list(); !equalBools(got, []bool{false, true}) {
		t.Errorf("OnZoomChange = %v", got)
	}
}

func TestSurface_ControlledOwnerIgnoresRequest(t *testing.T) {
	doc := headless.New(1000, 800)
	rec := &changes{}
	s, err := zoom.NewControlled(doc, zoom.Options{OnZoomChange: rec.add}, image())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	doc.Layout(s, triggerRect)
	s.Start()

	click(t, s)
	if s.State() != zoom.Idle || doc.Slot("body") != nil {
		t.Error("controlled surface activated without the owner setting the flag")
	}
	if got := rec.list(); !equalBools(got, []bool{true}) {
		t.Errorf("OnZoomChange = %v", got)
	}
}

func TestSurface_ActivateIsIdempotent(t *testing.T) {
	doc := headless.New(1000, 800)
	s := newUncontrolled(t, doc, zoom.Options{})

	click(t, s)
	click(t, s)
	s.Machine().Dispatch(zoom.IntentActivate)
	s.SetZoomed(true)
	settle(doc)
	click(t, s)

	if n := s.Machine().Cycles(); n != 1 {
		t.Errorf("Cycles = %d, want 1", n)
	}
	if n := len(doc.Mounted("body")); n != 1 {
		t.Errorf("%d overlays mounted", n)
	}
	if got := doc.LockChanges(); !equalBools(got, []bool{true}) {
		t.Errorf("lock changes = %v", got)
	}
}

func TestSurface_ScrollThreshold(t *testing.T) {
	var mu sync.Mutex
	dismissals := 0
	zoom.SetDebugLog(func(args ...interface{}) {
		if len(args) > 1 && args[1] == zoom.IntentScrollDismiss.String() {
			mu.Lock()
			dismissals++
			mu.Unlock()
		}
	})
	t.Cleanup(func() { zoom.SetDebugLog(nil) })

	doc := headless.New(1000, 800)
	pane := headless.NewTarget("pane")
	s := newUncontrolled(t, doc, zoom.Options{ScrollableEl: pane})

	click(t, s)
	settle(doc)

	pane.ScrollBy(0, 10)
	pane.ScrollBy(0, 20)
	if s.State() != zoom.Active {
		t.Fatalf("dismissed after 30px: %s", s.State())
	}
	doc.WindowTarget().ScrollBy(0, 500)
	if s.State() != zoom.Active {
		t.Fatal("window scroll dismissed a pane-bound overlay")
	}

	pane.ScrollBy(0, 5)
	if s.State() != zoom.Deactivating {
		t.Fatalf("state after 35px = %s", s.State())
	}
	pane.ScrollBy(0, 100)
	pane.ScrollBy(0, -100)
	settle(doc)

	mu.Lock()
	defer mu.Unlock()
	if dismissals != 1 {
		t.Errorf("scroll dismissals = %d, want 1", dismissals)
	}
	if s.State() != zoom.Idle || s.Zoomed() {
		t.Error("scroll dismissal should end the cycle and clear the flag")
	}
	if pane.TotalListeners() != 0 {
		t.Error("pane listener left attached")
	}
}

func TestSurface_ScrollNetDisplacement(t *testing.T) {
	doc := headless.New(1000, 800)
	pane := headless.NewTarget("pane")
	s := newUncontrolled(t, doc, zoom.Options{ScrollableEl: pane})

	click(t, s)
	settle(doc)

	pane.ScrollBy(0, 20)
	pane.ScrollBy(0, -20)
	pane.ScrollBy(0, 20)
	pane.ScrollBy(0, -20)
	if s.State() != zoom.Active {
		t.Fatalf("scrolling back and forth dismissed the overlay: %s", s.State())
	}

	pane.ScrollBy(0, 33)
	if s.State() != zoom.Deactivating {
		t.Errorf("state after 33px = %s", s.State())
	}
}

func TestSurface_ScrollDismissAfterRedirect(t *testing.T) {
	doc := headless.New(1000, 800)
	pane := headless.NewTarget("pane")
	s := newUncontrolled(t, doc, zoom.Options{ScrollableEl: pane})

	click(t, s)
	settle(doc)

	pane.ScrollBy(0, 40)
	if s.State() != zoom.Deactivating {
		t.Fatalf("state after 40px = %s", s.State())
	}
	doc.Clock().Advance(0)
	doc.Clock().Advance(50 * time.Millisecond)

	click(t, s)
	if s.State() != zoom.Activating {
		t.Fatalf("state after redirect = %s", s.State())
	}
	settle(doc)
	if s.State() != zoom.Active {
		t.Fatalf("state = %s", s.State())
	}

	// measured from the offset at the redirect, not from activation
	pane.ScrollBy(0, 20)
	if s.State() != zoom.Active {
		t.Fatalf("dismissed 20px after the redirect: %s", s.State())
	}
	pane.ScrollBy(0, 20)
	if s.State() != zoom.Deactivating {
		t.Fatalf("scroll no longer dismisses after a redirect: %s", s.State())
	}
	settle(doc)
	if s.State() != zoom.Idle || s.Zoomed() {
		t.Error("second scroll dismissal should end the cycle")
	}
}

func TestSurface_ReverseMidTransition(t *testing.T) {
	doc := headless.New(1000, 800)
	s := newUncontrolled(t, doc, zoom.Options{Easing: "linear"})
	clock := doc.Clock()

	click(t, s)
	clock.Advance(0)
	clock.Advance(150 * time.Millisecond)
	mid := s.Machine().Frame()
	if mid.Position != 0.5 || mid.Rect.Width != 580 {
		t.Fatalf("mid frame = %+v", mid)
	}

	doc.Press("Escape")
	if s.State() != zoom.Deactivating {
		t.Fatalf("state = %s", s.State())
	}
	clock.Advance(0)
	if got := s.Machine().Frame().Rect; got != mid.Rect {
		t.Errorf("reverse jumped from %+v to %+v", mid.Rect, got)
	}

	clock.Advance(75 * time.Millisecond)
	if p := s.Machine().Frame().Position; p != 0.25 {
		t.Errorf("position halfway back = %g", p)
	}
	clock.Advance(75 * time.Millisecond)
	if s.State() != zoom.Idle {
		t.Errorf("reverse leg should take 150ms, state = %s", s.State())
	}
}

func TestSurface_RedirectWhileDeactivating(t *testing.T) {
	doc := headless.New(1000, 800)
	rec := &changes{}
	s := newUncontrolled(t, doc, zoom.Options{Easing: "linear", OnZoomChange: rec.add})
	clock := doc.Clock()

	click(t, s)
	settle(doc)
	doc.Press("Escape")
	clock.Advance(0)
	clock.Advance(100 * time.Millisecond)

	click(t, s)
	if s.State() != zoom.Activating {
		t.Fatalf("state after redirect = %s", s.State())
	}
	settle(doc)
	if s.State() != zoom.Active {
		t.Fatalf("state = %s", s.State())
	}
	if s.Machine().Cycles() != 1 {
		t.Errorf("redirect started a new cycle")
	}
	if got := rec.list(); !equalBools(got, []bool{true}) {
		t.Errorf("OnZoomChange = %v, want [true]", got)
	}
	if n := len(doc.Mounted("body")); n != 1 {
		t.Errorf("%d overlays mounted", n)
	}
}

func TestSurface_CloseMidTransition(t *testing.T) {
	doc := headless.New(1000, 800)
	rec := &changes{}
	calls := 0
	s := newUncontrolled(t, doc, zoom.Options{
		OnZoomChange:  rec.add,
		OnStateChange: func(zoom.State) { calls++ },
	})

	click(t, s)
	doc.Clock().Advance(0)
	doc.Clock().Advance(100 * time.Millisecond)
	before := calls

	s.Close()
	if doc.Clock().Pending() != 0 {
		t.Error("frame still queued after Close")
	}
	settle(doc)

	if calls != before {
		t.Error("state callback after Close")
	}
	if got := rec.list(); !equalBools(got, []bool{true}) {
		t.Errorf("OnZoomChange = %v", got)
	}
	if doc.ScrollLocked() || doc.Slot("body") != nil {
		t.Error("Close left the page locked or the overlay mounted")
	}
	if n := doc.WindowTarget().TotalListeners(); n != 0 {
		t.Errorf("%d window listeners left", n)
	}

	// closed surfaces ignore input
	click(t, s)
	doc.Press("Escape")
	if s.State() != zoom.Idle || doc.Slot("body") != nil {
		t.Error("closed surface reacted")
	}
}

func TestSurface_ResizeSnaps(t *testing.T) {
	doc := headless.New(1000, 800)
	s := newUncontrolled(t, doc, zoom.Options{})

	click(t, s)
	settle(doc)
	doc.Resize(2000, 1600)

	want := zoom.Rect{Top: 65, Left: 20, Width: 1960, Height: 1470}
	if got := s.Machine().Frame().Rect; got != want {
		t.Errorf("rect after resize = %+v, want %+v", got, want)
	}
	content := doc.Slot("body").Part(zoom.PartContent)
	if got := content.BoundingRect(); got != want {
		t.Errorf("painted content = %+v", got)
	}
	if doc.Clock().Pending() != 0 {
		t.Error("resize should snap, not animate")
	}

	doc.Press("Escape")
	if doc.Clock().Pending() == 0 {
		t.Error("deactivation should animate")
	}
	doc.Clock().Advance(0)
	if got := s.Machine().Frame().Rect; got != want {
		t.Errorf("deactivation started from %+v", got)
	}
}

func TestSurface_OutsidePointer(t *testing.T) {
	doc := headless.New(1000, 800)
	s := newUncontrolled(t, doc, zoom.Options{})

	click(t, s)
	slot := doc.Slot("body")
	doc.PointerDown(slot.Part(zoom.PartBackdrop))
	if s.State() != zoom.Activating {
		t.Fatal("pointer during activation should be ignored")
	}

	settle(doc)
	doc.PointerDown(slot.Part(zoom.PartClose))
	if s.State() != zoom.Active {
		t.Fatal("pointer inside the content dismissed the overlay")
	}

	doc.PointerDown(slot.Part(zoom.PartBackdrop))
	if s.State() != zoom.Deactivating {
		t.Errorf("state after backdrop pointer = %s", s.State())
	}
}

func TestSurface_CloseButton(t *testing.T) {
	doc := headless.New(1000, 800)
	s := newUncontrolled(t, doc, zoom.Options{})

	click(t, s)
	settle(doc)
	ev := headless.Click(s.OverlayTree(), zoom.PartClose)
	if ev == nil || !ev.DefaultPrevented() {
		t.Fatal("close button not wired")
	}
	if s.State() != zoom.Deactivating {
		t.Errorf("state = %s", s.State())
	}
}

func TestSurface_SharedScrollLock(t *testing.T) {
	doc := headless.New(1000, 800)
	a := newUncontrolled(t, doc, zoom.Options{})
	b, err := zoom.NewUncontrolled(doc, zoom.Options{}, image())
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	doc.Layout(b, zoom.Rect{Top: 400, Left: 500, Width: 100, Height: 100})
	b.Start()

	click(t, a)
	click(t, b)
	settle(doc)

	if got := doc.LockChanges(); !equalBools(got, []bool{true}) {
		t.Errorf("lock changes = %v, want [true]", got)
	}
	if n := zoom.ScrollLockHolders(doc); n != 2 {
		t.Errorf("holders = %d", n)
	}
	if n := zoom.ListenerCount(doc.Window(), zoom.EventKeyDown); n != 2 {
		t.Errorf("keydown subscriptions = %d, want 2", n)
	}
	if n := doc.WindowTarget().Listeners(zoom.EventKeyDown); n != 1 {
		t.Errorf("host keydown listeners = %d, want 1", n)
	}
	if n := len(doc.Mounted("body")); n != 2 {
		t.Errorf("%d overlays mounted", n)
	}

	a.SetZoomed(false)
	settle(doc)
	if !doc.ScrollLocked() {
		t.Error("lock released while b still zoomed")
	}

	doc.Press("Escape")
	settle(doc)
	if got := doc.LockChanges(); !equalBools(got, []bool{true, false}) {
		t.Errorf("lock changes = %v, want [true false]", got)
	}
	if n := doc.WindowTarget().TotalListeners(); n != 0 {
		t.Errorf("%d window listeners left", n)
	}
}

func TestSurface_PortalNotFound(t *testing.T) {
	doc := headless.New(1000, 800)
	_, err := zoom.NewUncontrolled(doc, zoom.Options{PortalEl: "lightbox-root"}, image())

	var cfgErr *zoom.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "PortalEl" {
		t.Fatalf("err = %v, want PortalEl ConfigError", err)
	}
	if !errors.Is(err, zoom.ErrPortalNotFound) {
		t.Error("error should wrap ErrPortalNotFound")
	}

	doc.AddPortal("lightbox-root")
	if _, err := zoom.NewUncontrolled(doc, zoom.Options{PortalEl: "lightbox-root"}, image()); err != nil {
		t.Errorf("registered portal rejected: %v", err)
	}
}

func TestSurface_NilDocument(t *testing.T) {
	if _, err := zoom.NewControlled(nil, zoom.Options{}, image()); !errors.Is(err, zoom.ErrNoDocument) {
		t.Errorf("err = %v", err)
	}
}

// brokenDoc refuses to mount overlays.
type brokenDoc struct {
	*headless.Document
}

type brokenPortal struct{}

func (brokenDoc) Portal(string) (zoom.Portal, error) { return brokenPortal{}, nil }

func (brokenPortal) Apply(prev, next *vdom.VNode) error {
	return errors.New("detached portal")
}

func (brokenPortal) Part(string) zoom.Element { return nil }

func TestSurface_MountFailureStaysIdle(t *testing.T) {
	doc := headless.New(1000, 800)
	rec := &changes{}
	s, err := zoom.NewUncontrolled(brokenDoc{doc}, zoom.Options{OnZoomChange: rec.add}, image())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	doc.Layout(s, triggerRect)
	s.Start()

	click(t, s)
	if s.State() != zoom.Idle || s.Zoomed() {
		t.Errorf("state=%s zoomed=%v after failed mount", s.State(), s.Zoomed())
	}
	if got := rec.list(); !equalBools(got, []bool{true, false}) {
		t.Errorf("OnZoomChange = %v, want [true false]", got)
	}
	if got := doc.LockChanges(); !equalBools(got, []bool{true, false}) {
		t.Errorf("lock changes = %v", got)
	}
	if doc.WindowTarget().TotalListeners() != 0 {
		t.Error("listeners attached for a failed mount")
	}
}

func TestSurface_UnplacedTrigger(t *testing.T) {
	doc := headless.New(1000, 800)
	s, err := zoom.NewUncontrolled(doc, zoom.Options{}, image())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	s.Start()

	click(t, s)
	settle(doc)
	if s.State() != zoom.Active {
		t.Fatalf("state = %s", s.State())
	}
	if !s.Machine().Rects().Identity() {
		t.Errorf("unmeasurable trigger should zoom in place, got %+v", s.Machine().Rects())
	}
}

func TestSurface_StartZoomed(t *testing.T) {
	doc := headless.New(1000, 800)
	s := newUncontrolled(t, doc, zoom.Options{IsZoomed: true})

	if s.State() != zoom.Activating {
		t.Fatalf("surface created zoomed should activate on Start, state = %s", s.State())
	}
	settle(doc)
	if s.State() != zoom.Active {
		t.Errorf("state = %s", s.State())
	}
}

func TestSurface_RenderMarkup(t *testing.T) {
	doc := headless.New(1000, 800)
	s := newUncontrolled(t, doc, zoom.Options{})

	out, err := html.RenderInline(s.Render())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`id="` + s.ID() + `"`,
		`aria-label="Zoom image"`,
		`type="button"`,
		`data-zoom-part="trigger"`,
		`alt="Harbour at dusk"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("trigger markup missing %s:\n%s", want, out)
		}
	}
	if !strings.HasPrefix(s.ID(), "zoom-") {
		t.Errorf("id = %q", s.ID())
	}

	click(t, s)
	overlay, err := doc.Slot("body").HTML()
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`role="dialog"`,
		`aria-modal="true"`,
		`aria-label="Unzoom image"`,
		`top:100px;left:50px;width:200px;height:150px`,
		`background-color:rgba(255, 255, 255, 0)`,
	} {
		if !strings.Contains(overlay, want) {
			t.Errorf("overlay markup missing %s:\n%s", want, overlay)
		}
	}
}

func TestSurface_PaintPatchesAttributesOnly(t *testing.T) {
	doc := headless.New(1000, 800)
	s := newUncontrolled(t, doc, zoom.Options{})

	click(t, s)
	slot := doc.Slot("body")
	if p := slot.LastPatches(); len(p) != 1 || p[0].Op != vdom.OpInsertNode {
		t.Fatalf("mount patches = %v", p)
	}

	for i := 0; i < 5; i++ {
		doc.Clock().Advance(frame)
		for _, p := range slot.LastPatches() {
			if p.Op != vdom.OpSetAttribute || p.Key != "style" {
				t.Fatalf("frame %d produced %s", i, p)
			}
		}
	}

	settle(doc)
	content, _ := headless.ParseRectStyle(s.OverlayTree().Find(func(n *vdom.VNode) bool {
		return n.Attr("data-zoom-part") == zoom.PartContent
	}).Attr("style"))
	if content != (zoom.Rect{Top: 40, Left: 20, Width: 960, Height: 720}) {
		t.Errorf("final content style = %+v", content)
	}
}

func TestSurface_FiberRerendersOnLoad(t *testing.T) {
	doc := headless.New(1000, 800)
	sched := scheduler.NewScheduler()
	var batches [][]vdom.Patch
	sched.SetPatchApplier(func(_ *scheduler.Fiber, patches []vdom.Patch) {
		batches = append(batches, patches)
	})

	s := newUncontrolled(t, doc, zoom.Options{Scheduler: sched})
	fiber := s.Mount(sched)
	if s.Mount(sched) != fiber {
		t.Error("Mount should be idempotent")
	}
	sched.Flush()
	if len(batches) != 1 || batches[0][0].Op != vdom.OpInsertNode {
		t.Fatalf("first flush = %v", batches)
	}

	click(t, s)
	sched.Flush()
	if len(batches) != 2 {
		t.Fatalf("loaded state change did not re-render, batches = %d", len(batches))
	}
	hidden := false
	for _, p := range batches[1] {
		if p.Op == vdom.OpSetAttribute && p.Key == "class" && p.Value == zoom.Class("wrapHidden") {
			hidden = true
		}
	}
	if !hidden {
		t.Errorf("patches %v do not hide the wrapper", batches[1])
	}

	settle(doc)
	doc.Press("Escape")
	settle(doc)
	sched.Flush()
	if got := fiber.VNode().Attr("class"); got != zoom.Class("wrap") {
		t.Errorf("wrapper class after close = %q", got)
	}
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name  string
		opts  zoom.Options
		field string
	}{
		{"defaults", zoom.Options{}, ""},
		{"bad start color", zoom.Options{OverlayBgColorStart: "mauve"}, "OverlayBgColorStart"},
		{"bad end color", zoom.Options{OverlayBgColorEnd: "rgba(1,2)"}, "OverlayBgColorEnd"},
		{"negative duration", zoom.Options{TransitionDuration: -time.Second}, "TransitionDuration"},
		{"negative margin", zoom.Options{ZoomMargin: -1}, "ZoomMargin"},
		{"unknown easing", zoom.Options{Easing: "bounce"}, "Easing"},
		{"negative threshold", zoom.Options{ScrollThreshold: -5}, "ScrollThreshold"},
		{"negative scale", zoom.Options{MaxScale: -2}, "MaxScale"},
		{"custom", zoom.Options{OverlayBgColorEnd: "#000", Easing: "smoothstep", ZoomMargin: 8}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.field == "" {
				if err != nil {
					t.Errorf("unexpected error %v", err)
				}
				return
			}
			var cfgErr *zoom.ConfigError
			if !errors.As(err, &cfgErr) || cfgErr.Field != tt.field {
				t.Errorf("err = %v, want field %s", err, tt.field)
			}
		})
	}

	def := zoom.DefaultOptions()
	if def.TransitionDuration != 300*time.Millisecond || def.PortalEl != "body" || def.OpenText != "Zoom image" {
		t.Errorf("defaults = %+v", def)
	}
}

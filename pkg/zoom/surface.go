package zoom

import (
	"sync"

	"github.com/google/uuid"

	"github.com/recera/vango-zoom/pkg/reactive"
	"github.com/recera/vango-zoom/pkg/scheduler"
	"github.com/recera/vango-zoom/pkg/vango/vdom"
	"github.com/recera/vango-zoom/pkg/vex/builder"
)

// Surface is one image zoom widget: the always-present trigger (content
// plus an invisible full-area button) and the overlay its Machine mounts
// into the portal.
//
// The surface holds no zoomed boolean of its own. Clicking the trigger asks
// the Flag owner for true through the Machine; the Machine follows the flag.
type Surface struct {
	id      string
	doc     Document
	opts    resolved
	content *vdom.VNode

	flag       Flag
	controlled *ControlledFlag
	local      *LocalFlag

	// childLoaded hides the trigger wrapper while the overlay shows the image
	childLoaded *reactive.State[bool]

	overlay *overlay
	machine *Machine

	mu     sync.Mutex
	fiber  *scheduler.Fiber
	closed bool
}

// NewControlled creates a surface whose flag is owned by the caller through
// opts.OnZoomChange and SetZoomed.
func NewControlled(doc Document, opts Options, content *vdom.VNode) (*Surface, error) {
	flag := NewControlledFlag(opts.IsZoomed, opts.OnZoomChange)
	s, err := newSurface(doc, opts, content, flag)
	if err != nil {
		return nil, err
	}
	s.controlled = flag
	return s, nil
}

// NewUncontrolled creates a surface that owns its flag in a reactive State.
// opts.OnZoomChange is still told about every change.
func NewUncontrolled(doc Document, opts Options, content *vdom.VNode) (*Surface, error) {
	var sched reactive.Scheduler
	if opts.Scheduler != nil {
		sched = opts.Scheduler
	}
	flag := NewLocalFlag(opts.IsZoomed, sched, opts.OnZoomChange)
	s, err := newSurface(doc, opts, content, flag)
	if err != nil {
		return nil, err
	}
	s.local = flag
	return s, nil
}

func newSurface(doc Document, opts Options, content *vdom.VNode, flag Flag) (*Surface, error) {
	if doc == nil {
		return nil, ErrNoDocument
	}
	r, err := opts.resolve()
	if err != nil {
		return nil, err
	}

	portal, err := doc.Portal(r.PortalEl)
	if err != nil {
		return nil, &ConfigError{Field: "PortalEl", Err: err}
	}

	var sched reactive.Scheduler
	if r.Scheduler != nil {
		sched = r.Scheduler
	}

	s := &Surface{
		id:          "zoom-" + uuid.NewString(),
		doc:         doc,
		opts:        r,
		content:     content,
		flag:        flag,
		childLoaded: reactive.NewState(false, sched),
	}
	s.overlay = &overlay{s: s, portal: portal}

	scroll := r.ScrollableEl
	if scroll == nil {
		scroll = doc.Window()
	}
	s.machine = NewMachine(MachineConfig{
		Doc:   doc,
		Flag:  flag,
		Stage: s.overlay,
		Geometry: Geometry{
			Margin:   r.ZoomMargin,
			Natural:  r.NaturalSize,
			MaxScale: r.MaxScale,
		},
		Duration:        r.TransitionDuration,
		Easing:          r.easing,
		BackgroundFrom:  r.bgStart,
		BackgroundTo:    r.bgEnd,
		ScrollTarget:    scroll,
		ScrollThreshold: r.ScrollThreshold,
		OnLoad:          s.handleLoad,
		OnUnload:        s.handleUnload,
		OnStateChange:   r.OnStateChange,
	})
	return s, nil
}

// ID returns the wrapper element id, "zoom-<uuid>".
func (s *Surface) ID() string { return s.id }

// TriggerID returns the trigger button's element id.
func (s *Surface) TriggerID() string { return s.id + "-trigger" }

// Machine returns the surface's state machine.
func (s *Surface) Machine() *Machine { return s.machine }

// State returns the lifecycle state.
func (s *Surface) State() State { return s.machine.State() }

// Zoomed returns the flag value.
func (s *Surface) Zoomed() bool { return s.flag.Zoomed() }

// Controlled reports whether the caller owns the flag.
func (s *Surface) Controlled() bool { return s.controlled != nil }

// OverlayTree returns the mounted overlay tree, or nil.
func (s *Surface) OverlayTree() *vdom.VNode {
	s.machine.mu.Lock()
	defer s.machine.mu.Unlock()
	return s.overlay.Tree()
}

// Start applies the initial flag value; a surface created zoomed activates
// here, after its trigger has been rendered and can be measured.
func (s *Surface) Start() {
	s.machine.Sync()
}

// SetZoomed is how the owner drives the flag. On an uncontrolled surface it
// sets the local state directly, without notifying OnZoomChange.
func (s *Surface) SetZoomed(zoomed bool) {
	if s.controlled != nil {
		s.controlled.SetZoomed(zoomed)
		return
	}
	s.local.State().Set(zoomed)
}

// Render builds the trigger tree. Inside a fiber render it subscribes the
// fiber to the loaded state.
func (s *Surface) Render() *vdom.VNode {
	wrapClass := Class("wrap")
	if s.childLoaded.Get() {
		wrapClass = Class("wrapHidden")
	}

	return builder.Div().
		ID(s.id).
		Key(s.id).
		Class(wrapClass).
		Children(
			s.content,
			builder.Button().
				ID(s.TriggerID()).
				Class(Class("trigger"), Class("btn")).
				Data("zoom-part", PartTrigger).
				Type("button").
				AriaLabel(s.opts.OpenText).
				OnClick(s.handleTriggerClick).
				Build(),
		).
		Build()
}

// Mount runs the surface as a fiber of sched so loaded-state changes
// re-render the trigger through the scheduler's patch applier.
func (s *Surface) Mount(sched *scheduler.Scheduler) *scheduler.Fiber {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fiber != nil {
		return s.fiber
	}

	var fiber *scheduler.Fiber
	fiber = sched.CreateFiber(func() *vdom.VNode {
		reactive.SetCurrentFiber(fiber)
		defer reactive.SetCurrentFiber(nil)
		return s.Render()
	}, nil)
	fiber.SetUserData(s)
	s.fiber = fiber
	sched.MarkDirty(fiber)
	return fiber
}

// Close unmounts the widget. A running transition is cancelled and no
// callback fires afterwards.
func (s *Surface) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	fiber := s.fiber
	s.fiber = nil
	s.mu.Unlock()

	s.machine.Close()
	if fiber != nil {
		s.childLoaded.Unsubscribe(fiber)
		if s.local != nil {
			s.local.State().Unsubscribe(fiber)
		}
	}
}

func (s *Surface) handleTriggerClick(ev *vdom.Event) {
	if s.machine.State().Zoomed() {
		return
	}
	ev.PreventDefault()
	s.machine.Dispatch(IntentActivate)
}

func (s *Surface) handleCloseClick(ev *vdom.Event) {
	ev.PreventDefault()
	s.machine.Dispatch(IntentDeactivate)
}

func (s *Surface) handleLoad() {
	s.childLoaded.Set(true)
}

func (s *Surface) handleUnload() {
	s.childLoaded.Set(false)
	if el := s.doc.Element(s.TriggerID()); el != nil {
		el.Focus()
	}
}

// Loaded reports whether the overlay currently shows the content, i.e. the
// trigger wrapper is hidden.
func (s *Surface) Loaded() bool { return s.childLoaded.Peek() }

package zoom

import "github.com/recera/vango-zoom/pkg/vango/vdom"

// Host event types the bridge listens for.
const (
	EventScroll      = "scroll"
	EventResize      = "resize"
	EventKeyDown     = "keydown"
	EventPointerDown = "pointerdown"
)

// Element is a laid-out node of the host document.
type Element interface {
	BoundingRect() Rect
	Focus()
	// Contains reports whether other is this element or one of its
	// descendants.
	Contains(other Element) bool
}

// Event is a host event as seen by listeners.
type Event struct {
	Type   string
	Key    string
	Target Element
	X, Y   float64

	prevent func()
}

// NewEvent builds an Event whose PreventDefault calls prevent (may be nil).
func NewEvent(typ string, target Element, prevent func()) Event {
	return Event{Type: typ, Target: target, prevent: prevent}
}

// PreventDefault cancels the host's default action.
func (e Event) PreventDefault() {
	if e.prevent != nil {
		e.prevent()
	}
}

// EventTarget is a window or a scrollable element.
type EventTarget interface {
	Listen(event string, fn func(Event)) (remove func())
	ScrollOffset() (x, y float64)
}

// Portal is a mount point outside the surface's own tree. Apply follows
// the vango applier contract: prev nil mounts next, next nil unmounts prev.
type Portal interface {
	Apply(prev, next *vdom.VNode) error
	// Part returns the rendered element tagged data-zoom-part=name, or nil.
	Part(name string) Element
}

// Document is everything the widget needs from its host. Implementations
// must be comparable (pointer types) since shared resources are keyed by
// document.
type Document interface {
	Window() EventTarget
	Viewport() Rect
	// SetScrollLocked toggles the page scroll lock. Callers go through
	// AcquireScrollLock and ReleaseScrollLock.
	SetScrollLocked(locked bool)
	Frames() FrameScheduler
	// Portal opens a new mount slot inside the element with id target.
	// Unknown targets return an error wrapping ErrPortalNotFound.
	Portal(target string) (Portal, error)
	Element(id string) Element
}

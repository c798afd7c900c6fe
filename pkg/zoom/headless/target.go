package headless

import (
	"sync"

	"github.com/recera/vango-zoom/pkg/zoom"
)

// Target is an in-memory event target with a scroll offset.
type Target struct {
	mu        sync.Mutex
	name      string
	seq       uint64
	listeners map[string][]listener
	x, y      float64
}

type listener struct {
	id uint64
	fn func(zoom.Event)
}

// NewTarget creates a scrollable target, e.g. a scrolling container.
func NewTarget(name string) *Target {
	return &Target{name: name}
}

// Listen adds a listener; the returned func removes it.
func (t *Target) Listen(event string, fn func(zoom.Event)) (remove func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.listeners == nil {
		t.listeners = make(map[string][]listener)
	}
	t.seq++
	id := t.seq
	t.listeners[event] = append(t.listeners[event], listener{id: id, fn: fn})

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		ls := t.listeners[event]
		for i, l := range ls {
			if l.id == id {
				t.listeners[event] = append(ls[:i], ls[i+1:]...)
				return
			}
		}
	}
}

// Listeners returns how many host listeners are attached for event.
func (t *Target) Listeners(event string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.listeners[event])
}

// TotalListeners returns the number of attached listeners of any type.
func (t *Target) TotalListeners() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, ls := range t.listeners {
		n += len(ls)
	}
	return n
}

// ScrollOffset returns the current scroll position.
func (t *Target) ScrollOffset() (x, y float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.x, t.y
}

// ScrollTo moves the scroll position and fires a scroll event.
func (t *Target) ScrollTo(x, y float64) {
	t.mu.Lock()
	t.x, t.y = x, y
	t.mu.Unlock()
	t.Dispatch(zoom.Event{Type: zoom.EventScroll})
}

// ScrollBy moves the scroll position by a delta.
func (t *Target) ScrollBy(dx, dy float64) {
	x, y := t.ScrollOffset()
	t.ScrollTo(x+dx, y+dy)
}

// Dispatch delivers ev to the listeners for ev.Type.
func (t *Target) Dispatch(ev zoom.Event) {
	t.mu.Lock()
	ls := append([]listener(nil), t.listeners[ev.Type]...)
	t.mu.Unlock()

	for _, l := range ls {
		l.fn(ev)
	}
}

func (t *Target) String() string { return t.name }

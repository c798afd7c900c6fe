package zoom

import (
	"sync"

	"github.com/recera/vango-zoom/pkg/reactive"
)

// Flag is the zoomed/unzoomed intent the Machine follows. The Machine only
// reads it and asks for changes; the backing store belongs to the owner.
type Flag interface {
	Zoomed() bool
	// Request asks the owner to change the flag.
	Request(zoomed bool)
	// Observe calls fn after every change of the flag.
	Observe(fn func(zoomed bool)) (stop func())
}

// ControlledFlag is owned by the caller: Request only notifies onChange and
// the caller pushes the new value back with SetZoomed.
type ControlledFlag struct {
	mu        sync.Mutex
	zoomed    bool
	onChange  func(bool)
	observers []*func(bool)
}

// NewControlledFlag creates a flag starting at zoomed.
func NewControlledFlag(zoomed bool, onChange func(bool)) *ControlledFlag {
	return &ControlledFlag{zoomed: zoomed, onChange: onChange}
}

// Zoomed returns the owner's current value.
func (f *ControlledFlag) Zoomed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.zoomed
}

// Request notifies the owner. The flag itself is unchanged.
func (f *ControlledFlag) Request(zoomed bool) {
	if f.onChange != nil {
		f.onChange(zoomed)
	}
}

// SetZoomed is how the owner updates the flag.
func (f *ControlledFlag) SetZoomed(zoomed bool) {
	f.mu.Lock()
	if f.zoomed == zoomed {
		f.mu.Unlock()
		return
	}
	f.zoomed = zoomed
	obs := make([]func(bool), 0, len(f.observers))
	for _, o := range f.observers {
		obs = append(obs, *o)
	}
	f.mu.Unlock()

	for _, fn := range obs {
		fn(zoomed)
	}
}

// Observe registers fn for changes made through SetZoomed.
func (f *ControlledFlag) Observe(fn func(bool)) (stop func()) {
	p := &fn
	f.mu.Lock()
	f.observers = append(f.observers, p)
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, o := range f.observers {
			if o == p {
				f.observers = append(f.observers[:i], f.observers[i+1:]...)
				return
			}
		}
	}
}

// LocalFlag is the fallback owner for uncontrolled widgets. The value lives
// in a reactive State, so fibers reading it re-render on change.
type LocalFlag struct {
	state    *reactive.State[bool]
	onChange func(bool)
}

// NewLocalFlag creates a flag backed by a new State. sched may be nil.
func NewLocalFlag(zoomed bool, sched reactive.Scheduler, onChange func(bool)) *LocalFlag {
	return &LocalFlag{state: reactive.NewState(zoomed, sched), onChange: onChange}
}

// State exposes the backing state for rendering.
func (f *LocalFlag) State() *reactive.State[bool] { return f.state }

// Zoomed returns the current value without subscribing the current fiber.
func (f *LocalFlag) Zoomed() bool { return f.state.Peek() }

// Request notifies onChange, then stores the new value. Requests made while
// storing reach onChange after this one.
func (f *LocalFlag) Request(zoomed bool) {
	if f.state.Peek() == zoomed {
		return
	}
	if f.onChange != nil {
		f.onChange(zoomed)
	}
	f.state.Set(zoomed)
}

// Observe watches the backing state.
func (f *LocalFlag) Observe(fn func(bool)) (stop func()) {
	return f.state.Watch(fn)
}

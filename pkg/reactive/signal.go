package reactive

import (
	"sync"
	"sync/atomic"

	"github.com/recera/vango-zoom/pkg/scheduler"
)

// Scheduler interface for reactive system
type Scheduler interface {
	MarkDirty(fiber *scheduler.Fiber)
}

// debugLog is set by platform-specific code
var debugLog func(args ...interface{})

// SetDebugLog sets the debug logging function
func SetDebugLog(fn func(args ...interface{})) {
	debugLog = fn
}

// currentFiber is dynamically scoped to track dependencies
var currentFiber atomic.Pointer[scheduler.Fiber]

// SetCurrentFiber sets the current fiber for dependency tracking.
// The scheduler calls it around each render.
func SetCurrentFiber(fiber *scheduler.Fiber) {
	currentFiber.Store(fiber)
}

// GetCurrentFiber returns the current fiber
func GetCurrentFiber() *scheduler.Fiber {
	return currentFiber.Load()
}

// Signal is the interface for reactive values
type Signal[T any] interface {
	Get() T
	Set(T)
	Subscribe(fiber *scheduler.Fiber)
	Unsubscribe(fiber *scheduler.Fiber)
}

// State represents a reactive state value.
//
// Readers inside a fiber render are subscribed automatically and re-rendered
// on Set. Watchers registered with Watch are called synchronously after the
// value changes, outside any lock, in registration order.
type State[T any] struct {
	value T
	mu    sync.RWMutex

	deps      map[uint32]*scheduler.Fiber
	depsMu    sync.RWMutex
	scheduler Scheduler

	watchers  map[uint64]func(T)
	watchSeq  uint64
	watchMu   sync.Mutex
	watchKeys []uint64
}

// NewState creates a new reactive state
func NewState[T any](initial T, sched Scheduler) *State[T] {
	return &State[T]{
		value:     initial,
		deps:      make(map[uint32]*scheduler.Fiber),
		scheduler: sched,
		watchers:  make(map[uint64]func(T)),
	}
}

// Get returns the current value and tracks dependencies
func (s *State[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if fiber := GetCurrentFiber(); fiber != nil {
		s.Subscribe(fiber)
	}

	return s.value
}

// Peek returns the current value without subscribing the current fiber.
func (s *State[T]) Peek() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set updates the value, marks dependent fibers dirty and runs watchers
func (s *State[T]) Set(value T) {
	if debugLog != nil {
		debugLog("[State] Set called with value:", value)
	}

	s.mu.Lock()
	s.value = value
	s.mu.Unlock()

	s.notify(value)
}

// Update atomically reads, modifies, and writes the value
func (s *State[T]) Update(fn func(T) T) {
	s.mu.Lock()
	s.value = fn(s.value)
	newValue := s.value
	s.mu.Unlock()

	s.notify(newValue)
}

func (s *State[T]) notify(value T) {
	s.depsMu.RLock()
	deps := make([]*scheduler.Fiber, 0, len(s.deps))
	for _, fiber := range s.deps {
		deps = append(deps, fiber)
	}
	s.depsMu.RUnlock()

	// outside the lock to avoid deadlock with the scheduler
	for _, fiber := range deps {
		if debugLog != nil {
			debugLog("[State] Marking fiber", fiber.ID(), "as dirty")
		}
		if s.scheduler != nil {
			s.scheduler.MarkDirty(fiber)
		}
	}

	s.watchMu.Lock()
	fns := make([]func(T), 0, len(s.watchKeys))
	for _, k := range s.watchKeys {
		fns = append(fns, s.watchers[k])
	}
	s.watchMu.Unlock()

	for _, fn := range fns {
		fn(value)
	}
}

// Watch registers fn to run after every change. The returned func removes it.
func (s *State[T]) Watch(fn func(T)) (unwatch func()) {
	s.watchMu.Lock()
	s.watchSeq++
	id := s.watchSeq
	s.watchers[id] = fn
	s.watchKeys = append(s.watchKeys, id)
	s.watchMu.Unlock()

	return func() {
		s.watchMu.Lock()
		defer s.watchMu.Unlock()
		if _, ok := s.watchers[id]; !ok {
			return
		}
		delete(s.watchers, id)
		for i, k := range s.watchKeys {
			if k == id {
				s.watchKeys = append(s.watchKeys[:i], s.watchKeys[i+1:]...)
				break
			}
		}
	}
}

// Subscribe adds a fiber as a dependency
func (s *State[T]) Subscribe(fiber *scheduler.Fiber) {
	if fiber == nil {
		return
	}

	s.depsMu.Lock()
	defer s.depsMu.Unlock()

	s.deps[fiber.ID()] = fiber
}

// Unsubscribe removes a fiber as a dependency
func (s *State[T]) Unsubscribe(fiber *scheduler.Fiber) {
	if fiber == nil {
		return
	}

	s.depsMu.Lock()
	defer s.depsMu.Unlock()

	delete(s.deps, fiber.ID())
}

// Dependents returns the number of fibers currently subscribed
func (s *State[T]) Dependents() int {
	s.depsMu.RLock()
	defer s.depsMu.RUnlock()
	return len(s.deps)
}

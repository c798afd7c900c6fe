package scheduler

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/recera/vango-zoom/pkg/vango/vdom"
)

// RenderFunc is the function type for component render functions
type RenderFunc func() *vdom.VNode

// PatchApplier receives the patches produced for one fiber's render
type PatchApplier func(fiber *Fiber, patches []vdom.Patch)

// ErrorHandler handles panics during rendering
// Returns true to continue scheduling, false to unmount the fiber
type ErrorHandler func(fiber *Fiber, err interface{}) bool

// Fiber represents a lightweight component execution context
type Fiber struct {
	id     uint32
	parent *Fiber
	vnode  *vdom.VNode // last rendered tree

	render RenderFunc

	dirty atomic.Bool

	onError ErrorHandler

	userData interface{}
}

// debugLog is set by platform-specific code
var debugLog func(args ...interface{})

// SetDebugLog sets the debug logging function
func SetDebugLog(fn func(args ...interface{})) {
	debugLog = fn
}

// Scheduler manages fiber execution.
//
// Two driving modes exist: Start runs a background loop fed by MarkDirty,
// and Flush renders all dirty fibers synchronously on the caller's goroutine
// (single-threaded hosts and tests).
type Scheduler struct {
	mu         sync.Mutex
	fibers     map[uint32]*Fiber
	nextID     uint32
	dirtyQueue []*Fiber
	globalWake chan *Fiber
	running    atomic.Bool
	stop       chan struct{}

	applyPatches PatchApplier
	defaultError ErrorHandler
}

// NewScheduler creates a new scheduler instance
func NewScheduler() *Scheduler {
	return &Scheduler{
		fibers:     make(map[uint32]*Fiber),
		nextID:     1,
		dirtyQueue: make([]*Fiber, 0, 64),
		globalWake: make(chan *Fiber, 1024),
	}
}

// SetPatchApplier sets the function that applies patches to the DOM
func (s *Scheduler) SetPatchApplier(applier PatchApplier) {
	s.applyPatches = applier
}

// SetDefaultErrorHandler sets the default error handler for fibers
func (s *Scheduler) SetDefaultErrorHandler(handler ErrorHandler) {
	s.defaultError = handler
}

// CreateFiber creates a new fiber for a component
func (s *Scheduler) CreateFiber(render RenderFunc, parent *Fiber) *Fiber {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	fiber := &Fiber{
		id:      id,
		parent:  parent,
		render:  render,
		onError: s.defaultError,
	}

	s.fibers[id] = fiber
	return fiber
}

// RemoveFiber removes a fiber from the scheduler
func (s *Scheduler) RemoveFiber(fiber *Fiber) {
	if fiber == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.fibers, fiber.id)
}

// MarkDirty marks a fiber as needing re-render
func (s *Scheduler) MarkDirty(fiber *Fiber) {
	if fiber == nil {
		return
	}

	if !fiber.dirty.CompareAndSwap(false, true) {
		if debugLog != nil {
			debugLog("[Scheduler] Fiber", fiber.ID(), "already dirty")
		}
		return
	}

	if s.running.Load() {
		select {
		case s.globalWake <- fiber:
			return
		default:
			// channel full, fall through to the queue
		}
	}

	s.mu.Lock()
	s.dirtyQueue = append(s.dirtyQueue, fiber)
	s.mu.Unlock()
}

// Flush renders every dirty fiber on the calling goroutine and returns how
// many were processed. Fibers dirtied during the flush are processed too.
func (s *Scheduler) Flush() int {
	processed := 0
	for {
		s.mu.Lock()
		batch := s.dirtyQueue
		s.dirtyQueue = make([]*Fiber, 0, 64)
		s.mu.Unlock()

		if len(batch) == 0 {
			return processed
		}
		for _, f := range batch {
			if s.processFiber(f) {
				processed++
			}
		}
	}
}

// Start begins the scheduler loop
func (s *Scheduler) Start() {
	if !s.running.CompareAndSwap(false, true) {
		return
	}
	s.stop = make(chan struct{})

	// anything queued before start is handed to the loop
	s.mu.Lock()
	pending := s.dirtyQueue
	s.dirtyQueue = make([]*Fiber, 0, 64)
	s.mu.Unlock()

	go s.loop(s.stop, pending)
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	if s.running.CompareAndSwap(true, false) {
		close(s.stop)
	}
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

func (s *Scheduler) loop(stop <-chan struct{}, pending []*Fiber) {
	if debugLog != nil {
		debugLog("[Scheduler] Loop started")
	}
	for _, f := range pending {
		s.processFiber(f)
	}

	for {
		var fiber *Fiber
		select {
		case <-stop:
			return
		case fiber = <-s.globalWake:
		}

		batch := []*Fiber{fiber}
	drainLoop:
		for {
			select {
			case f := <-s.globalWake:
				batch = append(batch, f)
			default:
				break drainLoop
			}
		}

		for _, f := range batch {
			s.processFiber(f)
		}
		// overflow from a full wake channel
		s.Flush()
	}
}

// processFiber renders a single fiber and applies patches. It reports whether
// a render happened.
func (s *Scheduler) processFiber(fiber *Fiber) (rendered bool) {
	if !fiber.dirty.CompareAndSwap(true, false) {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			s.handleFiberError(fiber, r)
		}
	}()

	next := fiber.render()
	patches := vdom.Diff(fiber.vnode, next)

	if debugLog != nil {
		debugLog("[Scheduler] Diff produced", len(patches), "patches for fiber", fiber.ID())
	}

	if s.applyPatches != nil && len(patches) > 0 {
		s.applyPatches(fiber, patches)
	}

	fiber.vnode = next
	return true
}

// handleFiberError handles a panic during fiber rendering
func (s *Scheduler) handleFiberError(fiber *Fiber, err interface{}) {
	errorMsg := fmt.Sprintf("Fiber %d panic: %v\n%s", fiber.id, err, debug.Stack())

	shouldContinue := false
	if fiber.onError != nil {
		shouldContinue = fiber.onError(fiber, errorMsg)
	}

	if !shouldContinue {
		s.RemoveFiber(fiber)
	}
}

// GetFiber returns a fiber by ID
func (s *Scheduler) GetFiber(id uint32) *Fiber {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fibers[id]
}

// FiberCount returns the number of active fibers
func (s *Scheduler) FiberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fibers)
}

// SetUserData sets custom data on a fiber
func (f *Fiber) SetUserData(data interface{}) {
	f.userData = data
}

// GetUserData gets custom data from a fiber
func (f *Fiber) GetUserData() interface{} {
	return f.userData
}

// ID returns the fiber's unique ID
func (f *Fiber) ID() uint32 {
	return f.id
}

// Parent returns the fiber's parent
func (f *Fiber) Parent() *Fiber {
	return f.parent
}

// VNode returns the fiber's last rendered VNode
func (f *Fiber) VNode() *vdom.VNode {
	return f.vnode
}

// SetErrorHandler sets a custom error handler for this fiber
func (f *Fiber) SetErrorHandler(handler ErrorHandler) {
	f.onError = handler
}

package zoom

import (
	"sync"
	"time"
)

// debugLog is set by platform-specific code
var debugLog func(args ...interface{})

// SetDebugLog sets the debug logging function
func SetDebugLog(fn func(args ...interface{})) {
	debugLog = fn
}

// State is the widget's lifecycle state.
type State int

const (
	Idle State = iota
	Activating
	Active
	Deactivating
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Activating:
		return "activating"
	case Active:
		return "active"
	case Deactivating:
		return "deactivating"
	}
	return "unknown"
}

// Zoomed reports whether s belongs to the zoomed half of the cycle.
func (s State) Zoomed() bool { return s == Activating || s == Active }

// Intent is a request fed to the Machine.
type Intent int

const (
	// IntentActivate asks for zoom through the flag owner.
	IntentActivate Intent = iota
	// IntentDeactivate is an internal dismissal (close button, key, outside pointer).
	IntentDeactivate
	// IntentScrollDismiss is a dismissal caused by scrolling.
	IntentScrollDismiss
	// IntentExternalDeactivate is the owner turning the flag off.
	IntentExternalDeactivate
)

func (i Intent) String() string {
	switch i {
	case IntentActivate:
		return "activate"
	case IntentDeactivate:
		return "deactivate"
	case IntentScrollDismiss:
		return "scroll-dismiss"
	case IntentExternalDeactivate:
		return "external-deactivate"
	}
	return "unknown"
}

// Stage is the overlay the Machine drives.
type Stage interface {
	// TriggerRect measures the trigger now.
	TriggerRect() Rect
	Mount(f Frame) error
	Paint(f Frame)
	Unmount()
	FocusClose()
	// Contains reports whether target is inside the zoomed content.
	Contains(target Element) bool
}

// MachineConfig wires a Machine to its collaborators.
type MachineConfig struct {
	Doc      Document
	Flag     Flag
	Stage    Stage
	Geometry Geometry

	Duration       time.Duration
	Easing         Easing
	BackgroundFrom Color
	BackgroundTo   Color

	ScrollTarget    EventTarget
	ScrollThreshold float64

	// OnLoad fires once the overlay is mounted, OnUnload once it is gone.
	OnLoad        func()
	OnUnload      func()
	OnStateChange func(State)
}

// Machine sequences one widget's activation cycles. Owner callbacks run
// after the internal lock is released so they may call back in.
type Machine struct {
	mu  sync.Mutex
	cfg MachineConfig
	tr  *Transitioner

	state    State
	lastFlag bool
	external bool
	closed   bool

	rects  Rects
	frame  Frame
	handle *Handle
	cycle  uint64
	bridge bridge

	cycles  int
	pending []func()
	unwatch func()
}

// NewMachine creates an idle machine observing cfg.Flag. The flag's initial
// value is applied by the first Sync.
func NewMachine(cfg MachineConfig) *Machine {
	if cfg.ScrollTarget == nil && cfg.Doc != nil {
		cfg.ScrollTarget = cfg.Doc.Window()
	}
	if cfg.ScrollThreshold <= 0 {
		cfg.ScrollThreshold = DefaultScrollThreshold
	}

	m := &Machine{cfg: cfg, tr: NewTransitioner(cfg.Doc.Frames())}
	m.unwatch = cfg.Flag.Observe(func(bool) { m.Sync() })
	return m
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Rects returns the endpoints of the current or last cycle.
func (m *Machine) Rects() Rects {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rects
}

// Frame returns the last painted frame.
func (m *Machine) Frame() Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frame
}

// Cycles returns how many activations have started.
func (m *Machine) Cycles() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cycles
}

// Sync applies a change of the flag: a rising edge activates, a falling
// edge deactivates as owner-driven.
func (m *Machine) Sync() {
	m.mu.Lock()
	defer m.flush()

	if m.closed {
		return
	}
	zoomed := m.cfg.Flag.Zoomed()
	if zoomed == m.lastFlag {
		return
	}
	m.lastFlag = zoomed
	if zoomed {
		m.activateLocked()
	} else {
		m.deactivateLocked(true)
	}
}

// Dispatch feeds an intent to the machine.
func (m *Machine) Dispatch(intent Intent) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	if debugLog != nil {
		debugLog("[Zoom] intent", intent.String(), "in", m.state.String())
	}

	switch intent {
	case IntentActivate:
		if m.state.Zoomed() {
			break
		}
		if !m.cfg.Flag.Zoomed() {
			m.pending = append(m.pending, func() { m.cfg.Flag.Request(true) })
			break
		}
		// flag already on; the owner will not report an edge
		m.lastFlag = true
		m.activateLocked()
	case IntentDeactivate, IntentScrollDismiss:
		m.deactivateLocked(false)
	case IntentExternalDeactivate:
		m.deactivateLocked(true)
	}
	m.flush()
}

func (m *Machine) activateLocked() {
	switch m.state {
	case Activating, Active:
		return

	case Deactivating:
		m.rects = m.cfg.Geometry.Compute(m.measureLocked(), m.cfg.Doc.Viewport())
		m.handle = m.tr.Reverse(m.handle, m.rects.To)
		m.external = false
		// back to zoomed: scrolling may dismiss again, measured from here
		m.bridge.rearm(m.cfg.ScrollTarget)
		m.setStateLocked(Activating)
		return
	}

	trigger := m.cfg.Stage.TriggerRect()
	m.rects = m.cfg.Geometry.Compute(trigger, m.cfg.Doc.Viewport())
	m.frame = Frame{Rect: m.rects.From, Background: m.cfg.BackgroundFrom}

	AcquireScrollLock(m.cfg.Doc)
	if err := m.cfg.Stage.Mount(m.frame); err != nil {
		ReleaseScrollLock(m.cfg.Doc)
		if debugLog != nil {
			debugLog("[Zoom] overlay mount failed, staying idle:", err.Error())
		}
		// static fallback: hand the flag back so owner and machine agree
		if m.cfg.Flag.Zoomed() {
			m.pending = append(m.pending, func() { m.cfg.Flag.Request(false) })
		}
		return
	}

	m.cycle++
	m.cycles++
	m.external = false
	m.setStateLocked(Activating)

	cycle := m.cycle
	m.handle = m.tr.Start(TransitionSpec{
		From:           m.rects.From,
		To:             m.rects.To,
		BackgroundFrom: m.cfg.BackgroundFrom,
		BackgroundTo:   m.cfg.BackgroundTo,
		Duration:       m.cfg.Duration,
		Easing:         m.cfg.Easing,
	}, func(f Frame) { m.onFrame(cycle, f) }, func() { m.onDone(cycle) })

	m.bridge.attach(m)
	m.cfg.Stage.FocusClose()
	if m.cfg.OnLoad != nil {
		m.pending = append(m.pending, m.cfg.OnLoad)
	}
}

func (m *Machine) deactivateLocked(external bool) {
	switch m.state {
	case Idle:
		return
	case Deactivating:
		if external {
			m.external = true
		}
		return
	}

	// the trigger may have moved since activation
	if r := m.measureLocked(); !r.Empty() {
		m.rects.From = r
	}
	m.external = external
	m.handle = m.tr.Reverse(m.handle, m.rects.From)
	m.setStateLocked(Deactivating)
}

func (m *Machine) measureLocked() Rect {
	r := m.cfg.Stage.TriggerRect()
	if r.Empty() {
		return m.rects.From
	}
	return r
}

func (m *Machine) onFrame(cycle uint64, f Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || cycle != m.cycle || m.state == Idle {
		return
	}
	m.frame = f
	m.cfg.Stage.Paint(f)
}

func (m *Machine) onDone(cycle uint64) {
	m.mu.Lock()
	defer m.flush()
	if m.closed || cycle != m.cycle {
		return
	}

	switch m.state {
	case Activating:
		m.setStateLocked(Active)
	case Deactivating:
		m.finishLocked()
	}
}

// finishLocked ends the cycle: overlay gone, lock released, listeners off.
func (m *Machine) finishLocked() {
	m.cfg.Stage.Unmount()
	ReleaseScrollLock(m.cfg.Doc)
	m.bridge.detach()
	m.handle = nil
	m.setStateLocked(Idle)

	if m.cfg.OnUnload != nil {
		m.pending = append(m.pending, m.cfg.OnUnload)
	}
	if !m.external && m.cfg.Flag.Zoomed() {
		m.pending = append(m.pending, func() { m.cfg.Flag.Request(false) })
	}
}

// resize snaps an active overlay to the recomputed rect.
func (m *Machine) resize() {
	m.mu.Lock()
	defer m.flush()
	if m.closed || m.state != Active {
		return
	}
	m.rects = m.cfg.Geometry.Compute(m.measureLocked(), m.cfg.Doc.Viewport())
	m.tr.Retarget(m.handle, m.rects.To)
	m.frame = Frame{Rect: m.rects.To, Background: m.cfg.BackgroundTo, Position: 1}
	m.cfg.Stage.Paint(m.frame)
}

func (m *Machine) setStateLocked(s State) {
	if m.state == s {
		return
	}
	if debugLog != nil {
		debugLog("[Zoom]", m.state.String(), "->", s.String())
	}
	m.state = s
	if fn := m.cfg.OnStateChange; fn != nil {
		m.pending = append(m.pending, func() { fn(s) })
	}
}

// flush releases the lock and runs queued owner callbacks in order.
func (m *Machine) flush() {
	calls := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, fn := range calls {
		fn()
	}
}

// Close tears the machine down synchronously. An in-flight transition is
// cancelled, listeners are detached and no callback runs afterwards.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	m.cycle++
	m.pending = nil

	m.tr.Cancel(m.handle)
	m.handle = nil
	if m.state != Idle {
		m.bridge.detach()
		m.cfg.Stage.Unmount()
		ReleaseScrollLock(m.cfg.Doc)
		m.state = Idle
	}
	if m.unwatch != nil {
		m.unwatch()
	}
}

package zoom

import (
	"fmt"
	"sync"
	"time"
)

// Easing maps linear progress in [0,1] to eased progress.
type Easing func(t float64) float64

// DefaultEasing is used when Options.Easing is empty.
const DefaultEasing = "ease-out"

// EasingByName resolves one of linear, ease-in, ease-out, ease-in-out or
// smoothstep.
func EasingByName(name string) (Easing, error) {
	switch name {
	case "linear":
		return func(t float64) float64 { return t }, nil
	case "ease-in":
		return func(t float64) float64 { return t * t }, nil
	case "", "ease-out":
		return func(t float64) float64 { return t * (2 - t) }, nil
	case "ease-in-out":
		return func(t float64) float64 {
			if t < 0.5 {
				return 2 * t * t
			}
			return -1 + (4-2*t)*t
		}, nil
	case "smoothstep":
		return func(t float64) float64 { return t * t * (3 - 2*t) }, nil
	}
	return nil, fmt.Errorf("unknown easing %q", name)
}

// TransitionSpec describes one activation cycle: From/BackgroundFrom is
// the idle end and To/BackgroundTo the zoomed end.
type TransitionSpec struct {
	From           Rect
	To             Rect
	BackgroundFrom Color
	BackgroundTo   Color
	Duration       time.Duration
	Easing         Easing
}

// Frame is one interpolated overlay appearance.
type Frame struct {
	Rect       Rect
	Background Color
	// Position is how far along the cycle the frame is, 0 at From and 1 at To.
	Position float64
}

// Handle identifies one leg of interpolation. A reversed leg gets a new
// handle; the old one is dead.
type Handle struct {
	t    *Transitioner
	spec TransitionSpec

	forward  bool
	fromPos  float64
	toPos    float64
	fromRect Rect
	toRect   Rect
	fromBg   Color
	toBg     Color
	duration time.Duration

	started  bool
	startAt  time.Duration
	progress float64
	current  Frame

	onFrame func(Frame)
	onDone  func()

	cancelFrame func()
	finished    bool
	dead        bool
}

// Forward reports whether the leg heads toward To.
func (h *Handle) Forward() bool {
	if h == nil {
		return false
	}
	h.t.mu.Lock()
	defer h.t.mu.Unlock()
	return h.forward
}

// Current returns the last delivered frame, or the leg's start before the
// first frame.
func (h *Handle) Current() Frame {
	if h == nil {
		return Frame{}
	}
	h.t.mu.Lock()
	defer h.t.mu.Unlock()
	return h.current
}

// Duration returns the leg's duration.
func (h *Handle) Duration() time.Duration {
	if h == nil {
		return 0
	}
	return h.duration
}

// Finished reports whether onDone has fired for this leg.
func (h *Handle) Finished() bool {
	if h == nil {
		return false
	}
	h.t.mu.Lock()
	defer h.t.mu.Unlock()
	return h.finished
}

// Transitioner runs at most one leg at a time.
type Transitioner struct {
	mu     sync.Mutex
	frames FrameScheduler
	active *Handle
}

// NewTransitioner creates a transitioner driven by frames.
func NewTransitioner(frames FrameScheduler) *Transitioner {
	return &Transitioner{frames: frames}
}

// Start begins a forward leg From→To, cancelling any live leg. onFrame gets
// every interpolated frame and onDone fires exactly once, from a frame
// callback, when the leg completes.
func (t *Transitioner) Start(spec TransitionSpec, onFrame func(Frame), onDone func()) *Handle {
	if spec.Easing == nil {
		spec.Easing, _ = EasingByName(DefaultEasing)
	}

	h := &Handle{
		t:        t,
		spec:     spec,
		forward:  true,
		fromPos:  0,
		toPos:    1,
		fromRect: spec.From,
		toRect:   spec.To,
		fromBg:   spec.BackgroundFrom,
		toBg:     spec.BackgroundTo,
		duration: spec.Duration,
		onFrame:  onFrame,
		onDone:   onDone,
	}
	h.current = Frame{Rect: spec.From, Background: spec.BackgroundFrom, Position: 0}

	t.mu.Lock()
	t.stopLocked()
	t.active = h
	t.scheduleLocked(h)
	t.mu.Unlock()
	return h
}

// Reverse turns h around from its current interpolated frame. A forward
// leg heads back to toward (the re-measured From); a backward leg heads to
// toward as the new To. Interrupting h mid-leg gives the new leg
// Duration × (1 − h's progress), so a late reversal is quick and an early one
// slow; turning a finished leg around takes the full Duration. The new leg
// reuses h's callbacks.
func (t *Transitioner) Reverse(h *Handle, toward Rect) *Handle {
	if h == nil {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	cur := h.current
	spec := h.spec
	next := &Handle{
		t:        t,
		forward:  !h.forward,
		fromPos:  cur.Position,
		fromRect: cur.Rect,
		fromBg:   cur.Background,
		onFrame:  h.onFrame,
		onDone:   h.onDone,
		current:  cur,
	}
	if next.forward {
		spec.To = toward
		next.toPos, next.toRect, next.toBg = 1, toward, spec.BackgroundTo
	} else {
		spec.From = toward
		next.toPos, next.toRect, next.toBg = 0, toward, spec.BackgroundFrom
	}
	next.spec = spec
	remaining := 1.0
	if !h.finished {
		remaining = 1 - h.progress
	}
	next.duration = time.Duration(float64(spec.Duration) * remaining)

	if t.active != nil && t.active != h {
		t.stopLocked()
	}
	h.dead = true
	if h.cancelFrame != nil {
		h.cancelFrame()
		h.cancelFrame = nil
	}
	t.active = next
	t.scheduleLocked(next)
	return next
}

// Retarget moves the end of h to to. A live leg keeps running toward the
// new end; a finished one snaps its current frame there.
func (t *Transitioner) Retarget(h *Handle, to Rect) {
	if h == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if h.dead {
		return
	}
	h.toRect = to
	if h.forward {
		h.spec.To = to
	} else {
		h.spec.From = to
	}
	if h.finished {
		h.current.Rect = to
	}
}

// Cancel stops h without calling onDone.
func (t *Transitioner) Cancel(h *Handle) {
	if h == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	h.dead = true
	if h.cancelFrame != nil {
		h.cancelFrame()
		h.cancelFrame = nil
	}
	if t.active == h {
		t.active = nil
	}
}

// Active returns the live leg, if any.
func (t *Transitioner) Active() *Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

func (t *Transitioner) stopLocked() {
	if t.active == nil {
		return
	}
	t.active.dead = true
	if t.active.cancelFrame != nil {
		t.active.cancelFrame()
		t.active.cancelFrame = nil
	}
	t.active = nil
}

func (t *Transitioner) scheduleLocked(h *Handle) {
	h.cancelFrame = t.frames.RequestFrame(func(now time.Duration) {
		t.tick(h, now)
	})
}

func (t *Transitioner) tick(h *Handle, now time.Duration) {
	t.mu.Lock()
	if h.dead || h.finished {
		t.mu.Unlock()
		return
	}
	h.cancelFrame = nil
	if !h.started {
		h.started = true
		h.startAt = now
	}

	progress := 1.0
	if h.duration > 0 {
		progress = clamp01(float64(now-h.startAt) / float64(h.duration))
	}
	h.progress = progress
	eased := h.spec.Easing(progress)

	h.current = Frame{
		Rect:       h.fromRect.Lerp(h.toRect, eased),
		Background: h.fromBg.Blend(h.toBg, eased),
		Position:   lerp(h.fromPos, h.toPos, progress),
	}
	frame := h.current
	done := progress >= 1
	if done {
		h.finished = true
		if t.active == h {
			t.active = nil
		}
	} else {
		t.scheduleLocked(h)
	}
	onFrame, onDone := h.onFrame, h.onDone
	t.mu.Unlock()

	if onFrame != nil {
		onFrame(frame)
	}
	if done && onDone != nil {
		onDone()
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

package zoom

import "math"

// DefaultScrollThreshold is how far, in pixels, the scroll target may move
// away from where it was at activation before the overlay dismisses itself.
const DefaultScrollThreshold = 32.0

// bridge holds the listeners of one activation cycle.
type bridge struct {
	attached bool
	baseX    float64
	baseY    float64
	fired    bool
	removes  []func()
}

// attach subscribes m to its host events. Called with m.mu held.
func (b *bridge) attach(m *Machine) {
	if b.attached {
		return
	}
	b.attached = true
	b.rearm(m.cfg.ScrollTarget)

	win := m.cfg.Doc.Window()
	b.removes = append(b.removes,
		listen(m.cfg.ScrollTarget, EventScroll, m.handleScroll),
		listen(win, EventResize, func(Event) { m.resize() }),
		listen(win, EventKeyDown, m.handleKey),
		listen(win, EventPointerDown, m.handlePointerDown),
	)
}

// detach removes every listener of the cycle. Called with m.mu held.
func (b *bridge) detach() {
	if !b.attached {
		return
	}
	b.attached = false
	for _, remove := range b.removes {
		remove()
	}
	b.removes = nil
}

// rearm takes the current offset of target as the scroll baseline and
// allows one more dismissal.
func (b *bridge) rearm(target EventTarget) {
	b.fired = false
	b.baseX, b.baseY = target.ScrollOffset()
}

// scrolled reports whether the offset has moved more than threshold away
// from the baseline, once per arming.
func (b *bridge) scrolled(x, y, threshold float64) bool {
	if b.fired || math.Hypot(x-b.baseX, y-b.baseY) <= threshold {
		return false
	}
	b.fired = true
	return true
}

func (m *Machine) handleScroll(Event) {
	m.mu.Lock()
	if m.closed || !m.bridge.attached || !m.state.Zoomed() {
		m.mu.Unlock()
		return
	}
	x, y := m.cfg.ScrollTarget.ScrollOffset()
	if !m.bridge.scrolled(x, y, m.cfg.ScrollThreshold) {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	m.Dispatch(IntentScrollDismiss)
}

// IsDismissKey reports whether key closes the overlay.
func IsDismissKey(key string) bool {
	return key == "Escape" || key == "Esc"
}

func (m *Machine) handleKey(ev Event) {
	if !IsDismissKey(ev.Key) {
		return
	}
	m.mu.Lock()
	ok := !m.closed && m.bridge.attached && m.state.Zoomed()
	m.mu.Unlock()
	if !ok {
		return
	}

	ev.PreventDefault()
	m.Dispatch(IntentDeactivate)
}

func (m *Machine) handlePointerDown(ev Event) {
	m.mu.Lock()
	ok := !m.closed && m.bridge.attached && m.state == Active && !m.cfg.Stage.Contains(ev.Target)
	m.mu.Unlock()
	if !ok {
		return
	}

	m.Dispatch(IntentDeactivate)
}

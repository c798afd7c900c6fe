package zoom

import "sync"

// Process-wide state shared by every widget on a document: the page scroll
// lock and the host listeners. Both are reference counted.
var shared = struct {
	mu        sync.Mutex
	locks     map[Document]int
	listeners map[listenerKey]*listenerEntry
}{
	locks:     make(map[Document]int),
	listeners: make(map[listenerKey]*listenerEntry),
}

// AcquireScrollLock locks page scrolling on doc for the first holder.
func AcquireScrollLock(doc Document) {
	shared.mu.Lock()
	n := shared.locks[doc]
	shared.locks[doc] = n + 1
	shared.mu.Unlock()

	if n == 0 {
		doc.SetScrollLocked(true)
	}
}

// ReleaseScrollLock unlocks page scrolling once the last holder releases.
// Releasing without a hold is a no-op.
func ReleaseScrollLock(doc Document) {
	shared.mu.Lock()
	n := shared.locks[doc]
	if n == 0 {
		shared.mu.Unlock()
		return
	}
	if n == 1 {
		delete(shared.locks, doc)
	} else {
		shared.locks[doc] = n - 1
	}
	shared.mu.Unlock()

	if n == 1 {
		doc.SetScrollLocked(false)
	}
}

// ScrollLockHolders returns how many widgets hold the lock on doc.
func ScrollLockHolders(doc Document) int {
	shared.mu.Lock()
	defer shared.mu.Unlock()
	return shared.locks[doc]
}

type listenerKey struct {
	target EventTarget
	event  string
}

type listenerEntry struct {
	remove func()
	seq    uint64
	order  []uint64
	subs   map[uint64]func(Event)
}

// listen subscribes fn to event on target. One host listener is attached
// per (target, event) and fans out to subscribers in subscription order.
func listen(target EventTarget, event string, fn func(Event)) (remove func()) {
	key := listenerKey{target: target, event: event}

	shared.mu.Lock()
	entry, ok := shared.listeners[key]
	if !ok {
		entry = &listenerEntry{subs: make(map[uint64]func(Event))}
		shared.listeners[key] = entry
	}
	entry.seq++
	id := entry.seq
	entry.subs[id] = fn
	entry.order = append(entry.order, id)
	shared.mu.Unlock()

	if !ok {
		hostRemove := target.Listen(event, func(ev Event) { dispatch(key, ev) })
		shared.mu.Lock()
		entry.remove = hostRemove
		orphaned := shared.listeners[key] != entry
		shared.mu.Unlock()
		if orphaned {
			hostRemove()
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() { unlisten(key, id) })
	}
}

func unlisten(key listenerKey, id uint64) {
	shared.mu.Lock()
	entry, ok := shared.listeners[key]
	if !ok {
		shared.mu.Unlock()
		return
	}
	delete(entry.subs, id)
	for i, v := range entry.order {
		if v == id {
			entry.order = append(entry.order[:i], entry.order[i+1:]...)
			break
		}
	}
	var hostRemove func()
	if len(entry.subs) == 0 {
		delete(shared.listeners, key)
		hostRemove = entry.remove
	}
	shared.mu.Unlock()

	if hostRemove != nil {
		hostRemove()
	}
}

func dispatch(key listenerKey, ev Event) {
	shared.mu.Lock()
	entry, ok := shared.listeners[key]
	if !ok {
		shared.mu.Unlock()
		return
	}
	fns := make([]func(Event), 0, len(entry.order))
	for _, id := range entry.order {
		fns = append(fns, entry.subs[id])
	}
	shared.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// ListenerCount returns the number of widget subscriptions to event on
// target.
func ListenerCount(target EventTarget, event string) int {
	shared.mu.Lock()
	defer shared.mu.Unlock()
	if entry, ok := shared.listeners[listenerKey{target: target, event: event}]; ok {
		return len(entry.subs)
	}
	return 0
}

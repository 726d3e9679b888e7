package reactivemodel

import "sync"

// ListenerID uniquely identifies a registered listener for removal
// purposes. Go function values are not comparable, so every subscription
// returns an ID rather than requiring the callback itself for removal.
type ListenerID uint64

// EventHandler is a callback invoked when a subscribed event is emitted.
type EventHandler func(data any)

type busEntry struct {
	id   ListenerID
	cb   EventHandler
	once bool
}

// Bus is a synchronous, registration-ordered event dispatcher. Subscribers
// for a given event are invoked in registration order during [Bus.Emit]; a
// panicking subscriber is recovered and logged, and never prevents later
// subscribers for the same emission from running.
type Bus struct {
	mu        sync.Mutex
	listeners map[string][]busEntry
	nextID    ListenerID
	logger    Logger
}

// NewBus constructs an empty [Bus]. A nil logger falls back to the
// process-wide default.
func NewBus(logger Logger) *Bus {
	return &Bus{
		listeners: make(map[string][]busEntry),
		logger:    logger,
	}
}

// On registers cb for event and returns its [ListenerID].
func (b *Bus) On(event string, cb EventHandler) ListenerID {
	return b.add(event, cb, false)
}

// Once registers cb for event; it is removed automatically after its first
// invocation.
func (b *Bus) Once(event string, cb EventHandler) ListenerID {
	return b.add(event, cb, true)
}

func (b *Bus) add(event string, cb EventHandler, once bool) ListenerID {
	if cb == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.listeners[event] = append(b.listeners[event], busEntry{id: id, cb: cb, once: once})
	return id
}

// Off removes specific listeners by ID, or every listener for event if no
// IDs are given.
func (b *Bus) Off(event string, ids ...ListenerID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(ids) == 0 {
		delete(b.listeners, event)
		return
	}
	remove := make(map[ListenerID]bool, len(ids))
	for _, id := range ids {
		remove[id] = true
	}
	kept := b.listeners[event][:0]
	for _, l := range b.listeners[event] {
		if !remove[l.id] {
			kept = append(kept, l)
		}
	}
	b.listeners[event] = kept
}

// Emit invokes every listener registered for event, synchronously, in
// registration order. Once-listeners are removed after this call.
func (b *Bus) Emit(event string, data any) {
	b.mu.Lock()
	entries := append([]busEntry(nil), b.listeners[event]...)
	if len(entries) > 0 {
		kept := b.listeners[event][:0]
		for _, l := range b.listeners[event] {
			if !l.once {
				kept = append(kept, l)
			}
		}
		b.listeners[event] = kept
	}
	b.mu.Unlock()

	for _, l := range entries {
		b.dispatch(event, l, data)
	}
}

func (b *Bus) dispatch(event string, l busEntry, data any) {
	defer func() {
		if r := recover(); r != nil {
			logf(b.logger, LevelError, "bus", "", nil, "listener for %q panicked: %v", event, r)
		}
	}()
	l.cb(data)
}

// Clear removes every listener for every event.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = make(map[string][]busEntry)
}

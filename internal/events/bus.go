package events

import (
	"io"
	"log/slog"
	"slices"
	"sync"
)

type subscriber struct {
	id uint64
	fn func(Event)
}

// Bus keeps one subscriber list per event kind plus a catch-all list.
// Handlers run synchronously on the publishing goroutine, without the bus
// lock held, so a handler may subscribe or unsubscribe.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	byKind map[Kind][]subscriber
	all    []subscriber
	logger *slog.Logger
}

// NewBus creates an empty bus. A nil logger discards output.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Bus{
		byKind: make(map[Kind][]subscriber),
		logger: logger,
	}
}

// Subscribe registers fn for events of type E and returns a func that
// removes the registration
func Subscribe[E Event](b *Bus, fn func(E)) (unsubscribe func()) {
	var zero E
	kind := zero.Kind()

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.byKind[kind] = append(b.byKind[kind], subscriber{id: id, fn: func(e Event) { fn(e.(E)) }})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.byKind[kind] = slices.DeleteFunc(b.byKind[kind], func(s subscriber) bool { return s.id == id })
	}
}

// SubscribeAll registers fn for every event
func (b *Bus) SubscribeAll(fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.all = append(b.all, subscriber{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.all = slices.DeleteFunc(b.all, func(s subscriber) bool { return s.id == id })
	}
}

// Publish delivers e to the handlers of its kind, then to catch-all handlers.
// A panicking handler is logged and does not stop delivery to the others.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	targets := make([]subscriber, 0, len(b.byKind[e.Kind()])+len(b.all))
	targets = append(targets, b.byKind[e.Kind()]...)
	targets = append(targets, b.all...)
	b.mu.RUnlock()

	for _, s := range targets {
		b.deliver(s, e)
	}
}

func (b *Bus) deliver(s subscriber, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked", "kind", e.Kind().String(), "panic", r)
		}
	}()
	s.fn(e)
}

// Subscribers returns the number of handlers registered for kind, including
// catch-all handlers
func (b *Bus) Subscribers(kind Kind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.byKind[kind]) + len(b.all)
}

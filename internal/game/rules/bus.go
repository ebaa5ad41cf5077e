package rules

import (
	"slices"
	"sync"

	"go.uber.org/zap"
)

// Handler reacts to a published event.
type Handler func(GameEvent)

type subscription struct {
	handle  int
	handler Handler
}

// Bus is a synchronous publish/subscribe bus with an explicit dispatch table from event
// category to handlers. Handlers run on the publisher's goroutine, in subscription
// order, and may subscribe or unsubscribe while being called.
type Bus struct {
	mu         sync.RWMutex
	all        []subscription
	byCategory [categoryCount][]subscription
	nextHandle int
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{nextHandle: 1}
}

// SubscribeAll registers a handler for every event and returns its handle.
func (b *Bus) SubscribeAll(h Handler) int {
	if h == nil {
		return -1
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	handle := b.nextHandle
	b.nextHandle++
	b.all = append(b.all, subscription{handle: handle, handler: h})
	return handle
}

// Subscribe registers a handler for the given categories. An event in several of them
// is still delivered once.
func (b *Bus) Subscribe(h Handler, categories ...EventCategory) int {
	if h == nil || len(categories) == 0 {
		return -1
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	handle := b.nextHandle
	b.nextHandle++
	for _, c := range categories {
		if c < 0 || c >= categoryCount {
			continue
		}
		if slices.ContainsFunc(b.byCategory[c], func(s subscription) bool { return s.handle == handle }) {
			continue
		}
		b.byCategory[c] = append(b.byCategory[c], subscription{handle: handle, handler: h})
	}
	return handle
}

// Unsubscribe removes the handler identified by handle.
func (b *Bus) Unsubscribe(handle int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	drop := func(s subscription) bool { return s.handle == handle }
	b.all = slices.DeleteFunc(b.all, drop)
	for c := range b.byCategory {
		b.byCategory[c] = slices.DeleteFunc(b.byCategory[c], drop)
	}
}

// Publish delivers the event to every matching handler.
func (b *Bus) Publish(ev GameEvent) {
	if ev == nil {
		return
	}
	for _, h := range b.handlersFor(ev) {
		h(ev)
	}
}

// PublishAll publishes events in order.
func (b *Bus) PublishAll(events []GameEvent) {
	for _, ev := range events {
		b.Publish(ev)
	}
}

// handlersFor snapshots the handlers for ev so they run without the lock held.
func (b *Bus) handlersFor(ev GameEvent) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	seen := make(map[int]struct{})
	var out []Handler
	add := func(subs []subscription) {
		for _, s := range subs {
			if _, dup := seen[s.handle]; dup {
				continue
			}
			seen[s.handle] = struct{}{}
			out = append(out, s.handler)
		}
	}
	add(b.all)
	for _, c := range ev.Categories() {
		if c >= 0 && c < categoryCount {
			add(b.byCategory[c])
		}
	}
	return out
}

// NewEventLogger returns a handler that logs every event at debug level.
func NewEventLogger(logger *zap.Logger) Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ev GameEvent) {
		cats := ev.Categories()
		names := make([]string, len(cats))
		for i, c := range cats {
			names[i] = c.String()
		}
		logger.Debug("game event",
			zap.String("kind", ev.Kind()),
			zap.Strings("category", names),
			zap.Any("event", ev))
	}
}

// Collector buffers published events until the trigger detector drains them.
type Collector struct {
	mu     sync.Mutex
	events []GameEvent
}

func NewCollector() *Collector {
	return &Collector{}
}

// Handle is a Handler; subscribe it with SubscribeAll.
func (c *Collector) Handle(ev GameEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

// Drain returns the buffered events in publication order and empties the buffer.
func (c *Collector) Drain() []GameEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.events
	c.events = nil
	return out
}

// Len returns the number of buffered events.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

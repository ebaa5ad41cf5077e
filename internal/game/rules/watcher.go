package rules

import (
	"slices"
	"sync"
)

// WatcherScope defines how long a watcher's observations last.
type WatcherScope int

const (
	// WatcherScopeGame watchers are never reset by the turn structure.
	WatcherScopeGame WatcherScope = iota
	// WatcherScopeTurn watchers are reset at the cleanup step.
	WatcherScopeTurn
)

func (ws WatcherScope) String() string {
	switch ws {
	case WatcherScopeGame:
		return "GAME"
	case WatcherScopeTurn:
		return "TURN"
	default:
		return "UNKNOWN"
	}
}

// Watcher observes game events and keeps whatever history an ability's condition
// needs ("if a creature died this turn", "the second spell you cast each turn").
type Watcher interface {
	// Key identifies the watcher; registering another watcher with the same key
	// replaces it.
	Key() string
	Scope() WatcherScope
	Watch(ev GameEvent)
	Reset()
}

// WatcherRegistry fans bus events out to its watchers. Watchers are called in
// registration order.
type WatcherRegistry struct {
	mu       sync.RWMutex
	watchers []Watcher
}

func NewWatcherRegistry() *WatcherRegistry {
	return &WatcherRegistry{}
}

// Add registers w, replacing any watcher with the same key.
func (wr *WatcherRegistry) Add(w Watcher) {
	if w == nil {
		return
	}
	wr.mu.Lock()
	defer wr.mu.Unlock()
	if i := slices.IndexFunc(wr.watchers, func(x Watcher) bool { return x.Key() == w.Key() }); i >= 0 {
		wr.watchers[i] = w
		return
	}
	wr.watchers = append(wr.watchers, w)
}

// Remove unregisters the watcher with key.
func (wr *WatcherRegistry) Remove(key string) {
	wr.mu.Lock()
	defer wr.mu.Unlock()
	wr.watchers = slices.DeleteFunc(wr.watchers, func(w Watcher) bool { return w.Key() == key })
}

// Get returns the watcher registered under key.
func (wr *WatcherRegistry) Get(key string) (Watcher, bool) {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	for _, w := range wr.watchers {
		if w.Key() == key {
			return w, true
		}
	}
	return nil, false
}

// Len returns the number of registered watchers.
func (wr *WatcherRegistry) Len() int {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	return len(wr.watchers)
}

// Handle is a Handler that notifies every watcher.
func (wr *WatcherRegistry) Handle(ev GameEvent) {
	for _, w := range wr.snapshot() {
		w.Watch(ev)
	}
}

// Attach subscribes the registry to every event on bus and returns the handle.
func (wr *WatcherRegistry) Attach(bus *Bus) int {
	return bus.SubscribeAll(wr.Handle)
}

// ResetScope resets every watcher with the given scope.
func (wr *WatcherRegistry) ResetScope(scope WatcherScope) {
	for _, w := range wr.snapshot() {
		if w.Scope() == scope {
			w.Reset()
		}
	}
}

func (wr *WatcherRegistry) snapshot() []Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	return slices.Clone(wr.watchers)
}

package projection

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/magefree/mage-rules-core/internal/game/effects"
	"github.com/magefree/mage-rules-core/internal/game/state"
	"go.uber.org/zap"
)

// DefaultCacheSize bounds the number of views a cache keeps when no size is configured.
const DefaultCacheSize = 1024

// Stats reports cache effectiveness.
type Stats struct {
	Hits     uint64
	Misses   uint64
	Rebuilds uint64
	Size     int
}

// Cache memoizes projected views for one state version at a time. A request bearing a
// different version drops every cached view and starts a new Projector.
//
// The cache is safe for concurrent readers of one state version. It does not make a
// state that is mutated concurrently safe to read; one cache per simulation is the way
// to scale out.
type Cache struct {
	provider effects.ModifierProvider
	logger   *zap.Logger

	mu        sync.Mutex
	version   state.Version
	valid     bool
	projector *Projector
	views     *lru.Cache[string, *GameObjectView]
	stats     Stats
}

// NewCache creates a cache holding at most size views. A non-positive size uses
// DefaultCacheSize.
func NewCache(provider effects.ModifierProvider, size int, logger *zap.Logger) (*Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if size <= 0 {
		size = DefaultCacheSize
	}
	views, err := lru.New[string, *GameObjectView](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create view cache: %w", err)
	}
	return &Cache{
		provider: provider,
		logger:   logger,
		views:    views,
	}, nil
}

// projectorFor returns the projector for src's version, rebuilding when it changed.
// Callers must hold c.mu.
func (c *Cache) projectorFor(src state.Source) *Projector {
	v := src.Version()
	if c.valid && c.version == v && c.projector != nil {
		return c.projector
	}
	c.views.Purge()
	c.projector = NewProjector(src, c.provider, c.logger)
	c.version = v
	c.valid = true
	c.stats.Rebuilds++
	c.logger.Debug("projection cache rebuilt",
		zap.Stringer("version", v),
		zap.Uint64("rebuilds", c.stats.Rebuilds))
	return c.projector
}

// GetView returns the projected view of id in src, or nil when it does not exist.
func (c *Cache) GetView(src state.Source, id string) *GameObjectView {
	c.mu.Lock()
	p := c.projectorFor(src)
	if v, ok := c.views.Get(id); ok {
		c.stats.Hits++
		c.mu.Unlock()
		return v
	}
	c.stats.Misses++
	c.mu.Unlock()

	// Projection runs outside the lock; the projector is safe for concurrent use.
	v := p.computeView(id)
	if v == nil {
		return nil
	}

	c.mu.Lock()
	if c.projector == p {
		c.views.Add(id, v)
	}
	c.mu.Unlock()
	return v
}

// GetViews returns the views of every existing id among ids.
func (c *Cache) GetViews(src state.Source, ids []string) map[string]*GameObjectView {
	out := make(map[string]*GameObjectView, len(ids))
	for _, id := range ids {
		if v := c.GetView(src, id); v != nil {
			out[id] = v
		}
	}
	return out
}

// ProjectBattlefield returns the view of every permanent in battlefield order.
func (c *Cache) ProjectBattlefield(src state.Source) []*GameObjectView {
	ids := src.Battlefield()
	out := make([]*GameObjectView, 0, len(ids))
	for _, id := range ids {
		if v := c.GetView(src, id); v != nil {
			out = append(out, v)
		}
	}
	return out
}

// Projector returns the projector for src's version, for callers that need raw
// attributes or the applied modifier list.
func (c *Cache) Projector(src state.Source) *Projector {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectorFor(src)
}

// Invalidate drops every cached view; the next request rebuilds.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
	c.projector = nil
	c.views.Purge()
}

// InvalidateEntity drops one cached view.
func (c *Cache) InvalidateEntity(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views.Remove(id)
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = c.views.Len()
	return s
}

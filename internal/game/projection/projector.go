package projection

import (
	"slices"
	"sync"

	"github.com/magefree/mage-rules-core/internal/game/effects"
	"github.com/magefree/mage-rules-core/internal/game/state"
	"go.uber.org/zap"
)

// Projector computes projected characteristics for one canonical state snapshot.
//
// Modifier targets are resolved once, lazily, on first use. Resolution walks the layers
// in order and matches each modifier's filter against the characteristics every object
// has at that point, so an anthem for "creatures you control" sees a land animated in
// layer 4 and a creature stolen in layer 2. Within a layer, modifiers resolve in
// dependency order against the running result. This is a deliberate departure from
// matching filters against canonical card data only, which would leave such objects out.
//
// A Projector never mutates the state it reads. It must not outlive the state version it
// was built for.
type Projector struct {
	src      state.Source
	provider effects.ModifierProvider
	logger   *zap.Logger

	once sync.Once
	// ordered holds every collected modifier in application order.
	ordered []effects.Modifier
	// targets maps an object to indices into ordered.
	targets map[string][]int
	// controllers holds each candidate's controller after layer 2.
	controllers map[string]string
	attachments map[string][]string

	mu    sync.Mutex
	attrs map[string]effects.Attributes
	views map[string]*GameObjectView
}

// NewProjector creates a projector over src. provider may be nil.
func NewProjector(src state.Source, provider effects.ModifierProvider, logger *zap.Logger) *Projector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projector{
		src:      src,
		provider: provider,
		logger:   logger,
		attrs:    make(map[string]effects.Attributes),
		views:    make(map[string]*GameObjectView),
	}
}

// Version is the state version this projector reads.
func (p *Projector) Version() state.Version {
	return p.src.Version()
}

// ProjectEntity returns the characteristics of id after every applicable continuous
// effect. The second result is false when the object does not exist.
func (p *Projector) ProjectEntity(id string) (effects.Attributes, bool) {
	p.mu.Lock()
	if a, ok := p.attrs[id]; ok {
		p.mu.Unlock()
		return a.Clone(), true
	}
	p.mu.Unlock()

	a, ok := p.project(id)
	if !ok {
		return effects.Attributes{}, false
	}

	p.mu.Lock()
	p.attrs[id] = a
	p.mu.Unlock()
	return a.Clone(), true
}

// View returns the projected view of id, or nil when it does not exist.
func (p *Projector) View(id string) *GameObjectView {
	p.mu.Lock()
	if v, ok := p.views[id]; ok {
		p.mu.Unlock()
		return v
	}
	p.mu.Unlock()

	attrs, ok := p.ProjectEntity(id)
	if !ok {
		return nil
	}
	v := p.newView(id, attrs)

	p.mu.Lock()
	p.views[id] = v
	p.mu.Unlock()
	return v
}

// computeView builds a view without memoizing it. The cache uses this so that its own
// bound is the only one holding views.
func (p *Projector) computeView(id string) *GameObjectView {
	attrs, ok := p.project(id)
	if !ok {
		return nil
	}
	return p.newView(id, attrs)
}

func (p *Projector) newView(id string, attrs effects.Attributes) *GameObjectView {
	e, ok := p.src.Entity(id)
	if !ok {
		return nil
	}
	p.resolve()
	return newView(e, attrs, p.attachments[id])
}

// Modifiers returns the modifiers that apply to id, in application order.
func (p *Projector) Modifiers(id string) []effects.Modifier {
	p.resolve()
	idx := p.targets[id]
	out := make([]effects.Modifier, 0, len(idx))
	for _, i := range idx {
		out = append(out, p.ordered[i])
	}
	return out
}

func (p *Projector) project(id string) (effects.Attributes, bool) {
	e, ok := p.src.Entity(id)
	if !ok {
		return effects.Attributes{}, false
	}
	p.resolve()

	mods := p.Modifiers(id)
	if ep, ok := p.provider.(effects.EntityModifierProvider); ok && e.Zone != state.ZoneBattlefield {
		if extra := ep.ModifiersFor(p.src, id); len(extra) > 0 {
			mods = effects.OrderModifiers(append(mods, extra...))
		}
	}

	attrs := effects.BaseAttributes(e)
	ctx := effects.NewContext(p.src)
	countersDone := e.Zone != state.ZoneBattlefield
	for _, m := range mods {
		if !countersDone && m.Layer.Order() > effects.LayerPTCounters.Order() {
			attrs = effects.ApplyCounters(attrs, e.Counters)
			countersDone = true
		}
		attrs = effects.Apply(m.Modification, attrs, p.contextFor(ctx, m))
	}
	if !countersDone {
		attrs = effects.ApplyCounters(attrs, e.Counters)
	}
	return attrs, true
}

// contextFor binds ctx to a modifier's source. A modifier with its own controller keeps
// it; otherwise the source's controller after control-changing effects is used when known.
func (p *Projector) contextFor(ctx effects.Context, m effects.Modifier) effects.Context {
	ctx = ctx.ForSource(m.SourceID)
	if m.ControllerID != "" {
		return ctx.WithController(m.ControllerID)
	}
	if c, ok := p.controllers[m.SourceID]; ok && c != "" {
		ctx = ctx.WithController(c)
	}
	return ctx
}

func (p *Projector) resolve() {
	p.once.Do(p.resolveTargets)
}

func (p *Projector) resolveTargets() {
	var collected []effects.Modifier
	if p.provider != nil {
		collected = p.provider.Modifiers(p.src)
	}
	p.ordered = effects.OrderModifiers(collected)
	p.targets = make(map[string][]int)
	p.controllers = make(map[string]string)
	p.attachments = make(map[string][]string)

	// Candidates: the battlefield plus anything a modifier names directly.
	current := make(map[string]effects.Attributes)
	addCandidate := func(id string) {
		if _, ok := current[id]; ok {
			return
		}
		if e, ok := p.src.Entity(id); ok {
			current[id] = effects.BaseAttributes(e)
		}
	}
	for _, id := range p.src.Battlefield() {
		addCandidate(id)
		if e, ok := p.src.Entity(id); ok && e.AttachedTo != "" {
			p.attachments[e.AttachedTo] = append(p.attachments[e.AttachedTo], id)
		}
	}
	for _, m := range p.ordered {
		switch f := m.Filter.(type) {
		case effects.Specific:
			addCandidate(f.ID)
		case effects.Self:
			addCandidate(m.SourceID)
		}
	}

	lookup := func(id string) (effects.Attributes, bool) {
		a, ok := current[id]
		return a, ok
	}
	base := effects.NewContext(p.src)

	recorded := false
	for i, m := range p.ordered {
		if !recorded && m.Layer.Order() > effects.LayerControl.Order() {
			p.recordControllers(current)
			recorded = true
		}

		controller := m.ControllerID
		if controller == "" {
			if a, ok := current[m.SourceID]; ok {
				controller = a.ControllerID
			} else if e, ok := p.src.Entity(m.SourceID); ok {
				controller = e.ControllerID
			}
		}
		fc := effects.FilterContext{
			State:        p.src,
			SourceID:     m.SourceID,
			ControllerID: controller,
			Lookup:       lookup,
		}
		if m.Filter == nil {
			continue
		}
		ctx := base.ForSource(m.SourceID)
		if controller != "" {
			ctx = ctx.WithController(controller)
		}
		for _, target := range m.Filter.Resolve(fc) {
			p.targets[target] = append(p.targets[target], i)
			// Filters never read power or toughness, so the running result only
			// needs to track layers 1 to 6.
			if m.Layer.IsPowerToughness() {
				continue
			}
			if a, ok := current[target]; ok {
				current[target] = effects.Apply(m.Modification, a, ctx)
			}
		}
	}
	if !recorded {
		p.recordControllers(current)
	}

	for id := range p.targets {
		slices.Sort(p.targets[id])
		p.targets[id] = slices.Compact(p.targets[id])
	}

	p.logger.Debug("resolved modifier targets",
		zap.Stringer("version", p.src.Version()),
		zap.Int("modifier_count", len(p.ordered)),
		zap.Int("candidate_count", len(current)),
		zap.Int("target_count", len(p.targets)))
}

func (p *Projector) recordControllers(current map[string]effects.Attributes) {
	for id, a := range current {
		p.controllers[id] = a.ControllerID
	}
}

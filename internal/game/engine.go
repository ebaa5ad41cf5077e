package game

import (
	"fmt"
	"sync"

	"github.com/magefree/mage-rules-core/internal/game/card"
	"github.com/magefree/mage-rules-core/internal/game/effects"
	"github.com/magefree/mage-rules-core/internal/game/projection"
	"github.com/magefree/mage-rules-core/internal/game/rules"
	"github.com/magefree/mage-rules-core/internal/game/state"
	"go.uber.org/zap"
)

// Options configures an Engine.
type Options struct {
	// CacheSize bounds the projection cache; zero uses projection.DefaultCacheSize.
	CacheSize          int
	StaticAbilities    effects.StaticAbilityRegistry
	TriggeredAbilities rules.AbilityRegistry
	// Watchers are attached to the bus; turn-scoped ones reset at EndTurn.
	Watchers []rules.Watcher
	// Extra providers contribute modifiers alongside static abilities and floating effects.
	Extra []effects.ModifierProvider
}

// Engine wires the rules core for one game: canonical state, floating effects, the
// projection cache, the event bus and trigger detection. It owns the timestamp counter
// so objects and effects are stamped from one sequence.
//
// Mutating calls are expected from the game loop's goroutine; View and friends may be
// called concurrently between mutations.
type Engine struct {
	logger *zap.Logger
	mem    *state.Memory

	clock     *effects.TimestampCounter
	effects   *effects.ContinuousEffects
	cache     *projection.Cache
	index     *rules.TriggerIndex
	detector  *rules.Detector
	bus       *rules.Bus
	collector *rules.Collector
	watchers  *rules.WatcherRegistry
	stack     *rules.TriggerStack

	mu sync.Mutex
}

// NewEngine builds an engine over mem. The trigger index is built from mem's current
// battlefield and the clock continues after the highest timestamp already in use.
func NewEngine(mem *state.Memory, opts Options, logger *zap.Logger) (*Engine, error) {
	if mem == nil {
		return nil, fmt.Errorf("state store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		logger:    logger,
		mem:       mem,
		clock:     effects.NewTimestampCounter(maxTimestamp(mem)),
		effects:   effects.NewContinuousEffects(logger.Named("effects")),
		bus:       rules.NewBus(),
		collector: rules.NewCollector(),
		watchers:  rules.NewWatcherRegistry(),
		stack:     rules.NewTriggerStack(),
	}

	provider := effects.CompositeProvider{
		effects.NewStaticAbilityProvider(opts.StaticAbilities),
		e.effects,
	}
	provider = append(provider, opts.Extra...)

	cache, err := projection.NewCache(provider, opts.CacheSize, logger.Named("projection"))
	if err != nil {
		return nil, fmt.Errorf("failed to create projection cache: %w", err)
	}
	e.cache = cache

	registry := opts.TriggeredAbilities
	if registry == nil {
		registry = rules.TriggeredAbilitiesByName{}
	}
	e.index = rules.NewTriggerIndex(registry, logger.Named("triggers"))
	e.index.Rebuild(mem)
	e.detector = rules.NewDetector(e.index, registry, logger.Named("triggers")).
		WithControllers(e.controllerOf)

	e.bus.SubscribeAll(rules.NewEventLogger(logger.Named("events")))
	e.bus.SubscribeAll(e.collector.Handle)
	for _, w := range opts.Watchers {
		e.watchers.Add(w)
	}
	e.watchers.Attach(e.bus)

	logger.Info("rules engine initialized",
		zap.Stringer("version", mem.Version()),
		zap.Int("battlefield_size", len(mem.Battlefield())),
		zap.Int("watcher_count", e.watchers.Len()))
	return e, nil
}

func maxTimestamp(src state.Source) uint64 {
	var highest uint64
	for _, id := range src.Battlefield() {
		if ent, ok := src.Entity(id); ok && ent.Timestamp > highest {
			highest = ent.Timestamp
		}
	}
	return highest
}

// State returns the canonical state.
func (e *Engine) State() state.Source { return e.mem }

// Clock returns the engine's timestamp counter.
func (e *Engine) Clock() effects.Clock { return e.clock }

// Bus returns the event bus, for additional subscribers.
func (e *Engine) Bus() *rules.Bus { return e.bus }

// Stack returns the triggered abilities put on the stack by StackTriggers.
func (e *Engine) Stack() *rules.TriggerStack { return e.stack }

// Watchers returns the watcher registry.
func (e *Engine) Watchers() *rules.WatcherRegistry { return e.watchers }

// ContinuousEffects returns the floating effects store.
func (e *Engine) ContinuousEffects() *effects.ContinuousEffects { return e.effects }

// View returns the projected view of id, or nil when it does not exist.
func (e *Engine) View(id string) *projection.GameObjectView {
	return e.cache.GetView(e.mem, id)
}

// Views returns the projected views of the ids that exist.
func (e *Engine) Views(ids ...string) map[string]*projection.GameObjectView {
	return e.cache.GetViews(e.mem, ids)
}

// Battlefield returns the projected view of every permanent.
func (e *Engine) Battlefield() []*projection.GameObjectView {
	return e.cache.ProjectBattlefield(e.mem)
}

// CacheStats reports projection cache effectiveness.
func (e *Engine) CacheStats() projection.Stats {
	return e.cache.Stats()
}

func (e *Engine) controllerOf(id string) (string, bool) {
	v := e.View(id)
	if v == nil {
		return "", false
	}
	return v.ControllerID, true
}

// NewEffect starts building floating effects stamped by the engine's clock.
func (e *Engine) NewEffect(sourceID, controllerID string) *effects.EffectBuilder {
	return effects.NewEffectBuilder(e.clock, sourceID, controllerID)
}

// AddEffects registers floating effects and returns their ids. Effects without a
// timestamp are stamped now; the clock is advanced past any later one it receives.
func (e *Engine) AddEffects(list ...effects.ActiveContinuousEffect) []string {
	ids := make([]string, 0, len(list))
	for _, eff := range list {
		if eff.Timestamp == 0 {
			eff.Timestamp = e.clock.Next()
		} else if eff.Timestamp > e.clock.Current() {
			e.clock.Reset(eff.Timestamp)
		}
		if id := e.effects.Add(eff); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) > 0 {
		e.cache.Invalidate()
	}
	return ids
}

// RemoveEffect removes one floating effect.
func (e *Engine) RemoveEffect(id string) {
	e.effects.Remove(id)
	e.cache.Invalidate()
}

// EnterBattlefield puts ent onto the battlefield with a fresh timestamp, indexes its
// triggered abilities and publishes the zone change. ent.Zone is the zone it comes from.
func (e *Engine) EnterBattlefield(ent *state.Entity) (*projection.GameObjectView, error) {
	if ent == nil || ent.ID == "" {
		return nil, fmt.Errorf("entity id is required")
	}
	e.mu.Lock()
	from := ent.Zone
	if current, ok := e.mem.Entity(ent.ID); ok {
		if current.Zone == state.ZoneBattlefield {
			e.mu.Unlock()
			return nil, fmt.Errorf("entity %s is already on the battlefield", ent.ID)
		}
		from = current.Zone
	}
	next := ent.Clone()
	next.Zone = state.ZoneBattlefield
	next.Timestamp = e.clock.Next()
	next.SummoningSick = true
	e.mem.Put(next)
	e.index.RegisterEntity(next.ID, next.Definition)
	e.mu.Unlock()

	e.bus.Publish(rules.ZoneChanged{
		EntityID:     next.ID,
		OwnerID:      next.OwnerID,
		ControllerID: next.ControllerID,
		From:         from,
		To:           state.ZoneBattlefield,
		Entity:       next.Clone(),
	})
	e.logger.Debug("permanent entered the battlefield",
		zap.String("entity_id", next.ID),
		zap.Uint64("timestamp", next.Timestamp))
	return e.View(next.ID), nil
}

// LeaveBattlefield moves a permanent to zone and publishes the zone change with its
// last known information: the projected characteristics and controller it had just
// before it left. Effects that depended on it are pruned.
func (e *Engine) LeaveBattlefield(id string, to state.Zone) bool {
	view := e.View(id)
	if view == nil || view.Zone != state.ZoneBattlefield || to == state.ZoneBattlefield {
		return false
	}

	e.mu.Lock()
	before, ok := e.mem.Move(id, to)
	if !ok {
		e.mu.Unlock()
		return false
	}
	e.index.UnregisterEntity(id)
	e.mu.Unlock()

	lki := lastKnown(before, view)
	pruned := append(e.effects.ForgetObject(id), e.effects.Prune(e.mem)...)
	if len(pruned) > 0 {
		e.cache.Invalidate()
	}

	e.bus.Publish(rules.ZoneChanged{
		EntityID:     id,
		OwnerID:      lki.OwnerID,
		ControllerID: lki.ControllerID,
		From:         state.ZoneBattlefield,
		To:           to,
		Entity:       lki,
	})
	e.logger.Debug("permanent left the battlefield",
		zap.String("entity_id", id),
		zap.Stringer("zone", to),
		zap.Int("pruned_effects", len(pruned)))
	return true
}

// lastKnown freezes the projected characteristics of a permanent into an entity
// snapshot.
func lastKnown(before *state.Entity, v *projection.GameObjectView) *state.Entity {
	lki := before.Clone()
	lki.ControllerID = v.ControllerID
	lki.Base = &card.Characteristics{
		Name:      v.Name,
		Types:     card.NewSet(v.Types...),
		Subtypes:  card.NewSet(v.Subtypes...),
		Colors:    card.NewSet(v.Colors...),
		Keywords:  card.NewSet(v.Keywords...),
		Power:     v.Power,
		Toughness: v.Toughness,
		HasPT:     v.HasPT,
	}
	if v.AllCreatureTypes {
		lki.Base.Keywords.Add(card.KeywordChangeling)
	}
	return lki
}

// Publish puts events on the bus. Watchers may change what conditional abilities do,
// so cached views are dropped.
func (e *Engine) Publish(events ...rules.GameEvent) {
	e.bus.PublishAll(events)
	if len(events) > 0 && e.watchers.Len() > 0 {
		e.cache.Invalidate()
	}
}

// PublishAction converts an action-layer event and publishes the result.
func (e *Engine) PublishAction(ev rules.Event) {
	e.Publish(rules.FromActionEvent(ev, e.mem)...)
}

// PublishEffectResult converts what a resolved effect did and publishes the result.
func (e *Engine) PublishEffectResult(r rules.EffectResult) {
	e.Publish(rules.FromEffectResult(r)...)
}

// PendingTriggers drains the events published since the last call and returns the
// triggered abilities they fire, in APNAP order.
func (e *Engine) PendingTriggers() []rules.PendingTrigger {
	events := e.collector.Drain()
	if len(events) == 0 {
		return nil
	}
	return e.detector.DetectTriggers(e.mem, events)
}

// StackTriggers detects pending triggers and puts them on the stack in APNAP order.
// It returns the triggers it pushed.
func (e *Engine) StackTriggers() []rules.PendingTrigger {
	triggers := e.PendingTriggers()
	if len(triggers) > 0 {
		e.stack.PushAll(triggers)
		e.logger.Debug("triggers put on stack", zap.Int("count", len(triggers)), zap.Int("stack_size", e.stack.Len()))
	}
	return triggers
}

// BeginTurn makes playerID active, expires "until your next turn" effects and
// publishes the untap step.
func (e *Engine) BeginTurn(playerID string) {
	e.mem.SetActivePlayer(playerID)
	e.effects.BeginTurn(playerID)
	e.cache.Invalidate()
	e.Publish(rules.StepBegan{Step: rules.StepUntap, ActivePlayerID: playerID})
}

// BeginStep publishes the start of step for the active player.
func (e *Engine) BeginStep(step rules.Step) {
	e.Publish(rules.StepBegan{Step: step, ActivePlayerID: e.mem.ActivePlayer()})
}

// EndCombat expires "until end of combat" effects.
func (e *Engine) EndCombat() []string {
	removed := e.effects.EndCombat()
	if len(removed) > 0 {
		e.cache.Invalidate()
	}
	return removed
}

// EndTurn runs the cleanup step's expiry: "until end of turn" effects end and turn
// watchers reset.
func (e *Engine) EndTurn() []string {
	removed := e.effects.EndTurn()
	e.watchers.ResetScope(rules.WatcherScopeTurn)
	e.cache.Invalidate()
	return removed
}

// RebuildTriggerIndex recomputes the trigger index from the battlefield, for callers
// that mutate the store directly.
func (e *Engine) RebuildTriggerIndex() {
	e.index.Rebuild(e.mem)
}

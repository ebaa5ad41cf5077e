// Package watchers holds the per-turn history trackers used by conditional abilities.
package watchers

import (
	"sync"

	"github.com/magefree/mage-rules-core/internal/game/card"
	"github.com/magefree/mage-rules-core/internal/game/rules"
	"github.com/magefree/mage-rules-core/internal/game/state"
)

// counter is a per-player tally shared by the simple watchers below.
type counter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *counter) add(playerID string, n int) {
	if playerID == "" || n == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	c.counts[playerID] += n
}

func (c *counter) get(playerID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[playerID]
}

func (c *counter) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.counts {
		n += v
	}
	return n
}

func (c *counter) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts = nil
}

// SpellsCastWatcher counts spells cast this turn per player.
type SpellsCastWatcher struct {
	c counter
}

func NewSpellsCastWatcher() *SpellsCastWatcher { return &SpellsCastWatcher{} }

func (*SpellsCastWatcher) Key() string                { return "spells_cast" }
func (*SpellsCastWatcher) Scope() rules.WatcherScope { return rules.WatcherScopeTurn }
func (w *SpellsCastWatcher) Reset()                   { w.c.reset() }

func (w *SpellsCastWatcher) Watch(ev rules.GameEvent) {
	if sc, ok := ev.(rules.SpellCast); ok {
		w.c.add(sc.ControllerID, 1)
	}
}

// Count returns how many spells playerID cast this turn.
func (w *SpellsCastWatcher) Count(playerID string) int { return w.c.get(playerID) }

// CreaturesDiedWatcher counts creatures that died this turn, keyed by the controller
// they had when they died. The creature check uses last known information.
type CreaturesDiedWatcher struct {
	c counter
}

func NewCreaturesDiedWatcher() *CreaturesDiedWatcher { return &CreaturesDiedWatcher{} }

func (*CreaturesDiedWatcher) Key() string                { return "creatures_died" }
func (*CreaturesDiedWatcher) Scope() rules.WatcherScope { return rules.WatcherScopeTurn }
func (w *CreaturesDiedWatcher) Reset()                   { w.c.reset() }

func (w *CreaturesDiedWatcher) Watch(ev rules.GameEvent) {
	zc, ok := ev.(rules.ZoneChanged)
	if !ok || !zc.Dies() || zc.Entity == nil {
		return
	}
	if !zc.Entity.Characteristics().Types.Has(card.TypeCreature) {
		return
	}
	controller := zc.ControllerID
	if controller == "" {
		controller = zc.Entity.ControllerID
	}
	w.c.add(controller, 1)
}

// Count returns how many creatures controlled by playerID died this turn.
func (w *CreaturesDiedWatcher) Count(playerID string) int { return w.c.get(playerID) }

// Total returns how many creatures died this turn.
func (w *CreaturesDiedWatcher) Total() int { return w.c.total() }

// CardsDrawnWatcher counts cards drawn this turn per player.
type CardsDrawnWatcher struct {
	c counter
}

func NewCardsDrawnWatcher() *CardsDrawnWatcher { return &CardsDrawnWatcher{} }

func (*CardsDrawnWatcher) Key() string                { return "cards_drawn" }
func (*CardsDrawnWatcher) Scope() rules.WatcherScope { return rules.WatcherScopeTurn }
func (w *CardsDrawnWatcher) Reset()                   { w.c.reset() }

func (w *CardsDrawnWatcher) Watch(ev rules.GameEvent) {
	if cd, ok := ev.(rules.CardDrawn); ok {
		w.c.add(cd.PlayerID, 1)
	}
}

func (w *CardsDrawnWatcher) Count(playerID string) int { return w.c.get(playerID) }

// LifeGainedWatcher sums life gained this turn per player.
type LifeGainedWatcher struct {
	c counter
}

func NewLifeGainedWatcher() *LifeGainedWatcher { return &LifeGainedWatcher{} }

func (*LifeGainedWatcher) Key() string                { return "life_gained" }
func (*LifeGainedWatcher) Scope() rules.WatcherScope { return rules.WatcherScopeTurn }
func (w *LifeGainedWatcher) Reset()                   { w.c.reset() }

func (w *LifeGainedWatcher) Watch(ev rules.GameEvent) {
	if lg, ok := ev.(rules.LifeGained); ok && lg.Amount > 0 {
		w.c.add(lg.PlayerID, lg.Amount)
	}
}

// Amount returns the life playerID gained this turn.
func (w *LifeGainedWatcher) Amount(playerID string) int { return w.c.get(playerID) }

// PermanentsEnteredWatcher counts permanents that entered this turn per controller.
type PermanentsEnteredWatcher struct {
	c counter
}

func NewPermanentsEnteredWatcher() *PermanentsEnteredWatcher { return &PermanentsEnteredWatcher{} }

func (*PermanentsEnteredWatcher) Key() string                { return "permanents_entered" }
func (*PermanentsEnteredWatcher) Scope() rules.WatcherScope { return rules.WatcherScopeTurn }
func (w *PermanentsEnteredWatcher) Reset()                   { w.c.reset() }

func (w *PermanentsEnteredWatcher) Watch(ev rules.GameEvent) {
	zc, ok := ev.(rules.ZoneChanged)
	if !ok || zc.To != state.ZoneBattlefield || zc.From == state.ZoneBattlefield {
		return
	}
	w.c.add(zc.ControllerID, 1)
}

func (w *PermanentsEnteredWatcher) Count(playerID string) int { return w.c.get(playerID) }

// Condition is the shape of effects.StaticAbility.Condition.
type Condition = func(src state.Source, sourceID string) bool

// YouGainedLife holds while the source's controller has gained at least n life this turn.
func YouGainedLife(w *LifeGainedWatcher, n int) Condition {
	return func(src state.Source, sourceID string) bool {
		return w.Amount(controllerOf(src, sourceID)) >= n
	}
}

// YouCastSpells holds while the source's controller has cast at least n spells this turn.
func YouCastSpells(w *SpellsCastWatcher, n int) Condition {
	return func(src state.Source, sourceID string) bool {
		return w.Count(controllerOf(src, sourceID)) >= n
	}
}

// CreatureDied holds while any creature has died this turn (morbid).
func CreatureDied(w *CreaturesDiedWatcher) Condition {
	return func(state.Source, string) bool {
		return w.Total() > 0
	}
}

func controllerOf(src state.Source, id string) string {
	if e, ok := src.Entity(id); ok {
		return e.ControllerID
	}
	return ""
}

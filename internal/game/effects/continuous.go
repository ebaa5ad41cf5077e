package effects

import (
	"fmt"
	"slices"
	"sync"

	"github.com/magefree/mage-rules-core/internal/game/state"
	"go.uber.org/zap"
)

// DurationKind says how long a floating continuous effect lasts.
type DurationKind int

const (
	DurationIndefinite DurationKind = iota
	DurationUntilEndOfTurn
	DurationUntilEndOfCombat
	DurationUntilNextTurn
	DurationWhileOnBattlefield
	DurationWhileAttached
	DurationForTurns
)

func (k DurationKind) String() string {
	switch k {
	case DurationUntilEndOfTurn:
		return "UntilEndOfTurn"
	case DurationUntilEndOfCombat:
		return "UntilEndOfCombat"
	case DurationUntilNextTurn:
		return "UntilNextTurn"
	case DurationWhileOnBattlefield:
		return "WhileOnBattlefield"
	case DurationWhileAttached:
		return "WhileAttached"
	case DurationForTurns:
		return "ForTurns"
	default:
		return "Indefinite"
	}
}

// EffectDuration is a duration kind plus the argument it needs, if any.
type EffectDuration struct {
	Kind     DurationKind
	PlayerID string // UntilNextTurn
	EntityID string // WhileOnBattlefield, WhileAttached
	Turns    int    // ForTurns
}

func UntilEndOfTurn() EffectDuration   { return EffectDuration{Kind: DurationUntilEndOfTurn} }
func UntilEndOfCombat() EffectDuration { return EffectDuration{Kind: DurationUntilEndOfCombat} }
func Indefinite() EffectDuration       { return EffectDuration{Kind: DurationIndefinite} }

// UntilNextTurn lasts until playerID's next turn begins.
func UntilNextTurn(playerID string) EffectDuration {
	return EffectDuration{Kind: DurationUntilNextTurn, PlayerID: playerID}
}

// WhileOnBattlefield lasts while the permanent remains on the battlefield.
func WhileOnBattlefield(permanentID string) EffectDuration {
	return EffectDuration{Kind: DurationWhileOnBattlefield, EntityID: permanentID}
}

// WhileAttached lasts while the effect's source stays attached to id.
func WhileAttached(id string) EffectDuration {
	return EffectDuration{Kind: DurationWhileAttached, EntityID: id}
}

// ForTurns lasts for n end-of-turn steps.
func ForTurns(n int) EffectDuration {
	return EffectDuration{Kind: DurationForTurns, Turns: n}
}

func (d EffectDuration) String() string {
	switch d.Kind {
	case DurationUntilNextTurn:
		return fmt.Sprintf("%s(%s)", d.Kind, d.PlayerID)
	case DurationWhileOnBattlefield, DurationWhileAttached:
		return fmt.Sprintf("%s(%s)", d.Kind, d.EntityID)
	case DurationForTurns:
		return fmt.Sprintf("%s(%d)", d.Kind, d.Turns)
	default:
		return d.Kind.String()
	}
}

// holds reports whether a state-dependent duration is still satisfied.
func (d EffectDuration) holds(src state.Source, sourceID string) bool {
	switch d.Kind {
	case DurationWhileOnBattlefield:
		e, ok := src.Entity(d.EntityID)
		return ok && e.Zone == state.ZoneBattlefield
	case DurationWhileAttached:
		e, ok := src.Entity(sourceID)
		return ok && e.Zone == state.ZoneBattlefield && e.AttachedTo == d.EntityID
	default:
		return true
	}
}

// ActiveContinuousEffect is a floating effect created by a resolving spell or ability.
type ActiveContinuousEffect struct {
	ID           string
	SourceID     string
	ControllerID string
	Timestamp    uint64
	Modification Modification
	Filter       Filter
	Duration     EffectDuration
	// TurnsLeft counts down for ForTurns durations.
	TurnsLeft int
}

// NewContinuousEffect stamps a new floating effect with the next timestamp from clock.
func NewContinuousEffect(clock Clock, sourceID, controllerID string, filter Filter, m Modification, d EffectDuration) ActiveContinuousEffect {
	ts := clock.Next()
	return ActiveContinuousEffect{
		ID:           effectID(sourceID, ts, m, filter),
		SourceID:     sourceID,
		ControllerID: controllerID,
		Timestamp:    ts,
		Modification: m,
		Filter:       filter,
		Duration:     d,
		TurnsLeft:    d.Turns,
	}
}

// Layer is the layer of the effect's modification.
func (e ActiveContinuousEffect) Layer() Layer {
	if e.Modification == nil {
		return LayerPTModify
	}
	return e.Modification.Layer()
}

// ToModifier converts the effect for projection.
func (e ActiveContinuousEffect) ToModifier() Modifier {
	return Modifier{
		ID:           e.ID,
		Layer:        e.Layer(),
		SourceID:     e.SourceID,
		Timestamp:    e.Timestamp,
		Modification: e.Modification,
		Filter:       e.Filter,
		ControllerID: e.ControllerID,
	}
}

// ContinuousEffects holds the floating effects of one game. It is a ModifierProvider.
type ContinuousEffects struct {
	mu      sync.RWMutex
	effects map[string]ActiveContinuousEffect
	logger  *zap.Logger
}

// NewContinuousEffects creates an empty store.
func NewContinuousEffects(logger *zap.Logger) *ContinuousEffects {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContinuousEffects{
		effects: make(map[string]ActiveContinuousEffect),
		logger:  logger,
	}
}

// Add registers an effect and returns its id.
func (ce *ContinuousEffects) Add(effect ActiveContinuousEffect) string {
	if effect.Modification == nil {
		ce.logger.Warn("attempted to add continuous effect without modification",
			zap.String("source_id", effect.SourceID))
		return ""
	}
	if effect.ID == "" {
		effect.ID = effectID(effect.SourceID, effect.Timestamp, effect.Modification, effect.Filter)
	}

	ce.mu.Lock()
	defer ce.mu.Unlock()
	ce.effects[effect.ID] = effect

	ce.logger.Debug("added continuous effect",
		zap.String("effect_id", effect.ID),
		zap.String("source_id", effect.SourceID),
		zap.Stringer("layer", effect.Layer()),
		zap.Stringer("duration", effect.Duration),
		zap.Uint64("timestamp", effect.Timestamp))
	return effect.ID
}

// Remove deletes an effect by id.
func (ce *ContinuousEffects) Remove(id string) {
	ce.mu.Lock()
	defer ce.mu.Unlock()
	delete(ce.effects, id)
}

// RemoveFromSource deletes every effect created by sourceID and returns their ids.
func (ce *ContinuousEffects) RemoveFromSource(sourceID string) []string {
	return ce.removeWhere(func(e *ActiveContinuousEffect) bool {
		return e.SourceID == sourceID
	})
}

// Get returns an effect by id.
func (ce *ContinuousEffects) Get(id string) (ActiveContinuousEffect, bool) {
	ce.mu.RLock()
	defer ce.mu.RUnlock()
	e, ok := ce.effects[id]
	return e, ok
}

// Effects returns all effects in timestamp order.
func (ce *ContinuousEffects) Effects() []ActiveContinuousEffect {
	ce.mu.RLock()
	defer ce.mu.RUnlock()
	out := make([]ActiveContinuousEffect, 0, len(ce.effects))
	for _, e := range ce.effects {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b ActiveContinuousEffect) int {
		if a.Timestamp != b.Timestamp {
			if a.Timestamp < b.Timestamp {
				return -1
			}
			return 1
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out
}

// Len returns the number of active effects.
func (ce *ContinuousEffects) Len() int {
	ce.mu.RLock()
	defer ce.mu.RUnlock()
	return len(ce.effects)
}

// Modifiers implements ModifierProvider. Effects whose state-dependent duration no
// longer holds are left out even before Prune removes them.
func (ce *ContinuousEffects) Modifiers(src state.Source) []Modifier {
	var out []Modifier
	for _, e := range ce.Effects() {
		if !e.Duration.holds(src, e.SourceID) {
			continue
		}
		out = append(out, e.ToModifier())
	}
	return out
}

func (ce *ContinuousEffects) removeWhere(expired func(*ActiveContinuousEffect) bool) []string {
	ce.mu.Lock()
	defer ce.mu.Unlock()
	var removed []string
	for id, e := range ce.effects {
		if expired(&e) {
			delete(ce.effects, id)
			removed = append(removed, id)
			continue
		}
		ce.effects[id] = e
	}
	slices.Sort(removed)
	return removed
}

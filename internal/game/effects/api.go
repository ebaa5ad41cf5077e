package effects

import "github.com/magefree/mage-rules-core/internal/game/card"

// EffectBuilder provides a fluent API for creating floating continuous effects from a
// resolving spell or ability.
type EffectBuilder struct {
	clock        Clock
	sourceID     string
	controllerID string
	targetIDs    []string
	filter       Filter
	duration     EffectDuration
}

// NewEffectBuilder creates a builder. Effects last until end of turn unless another
// duration is chosen.
func NewEffectBuilder(clock Clock, sourceID, controllerID string) *EffectBuilder {
	return &EffectBuilder{
		clock:        clock,
		sourceID:     sourceID,
		controllerID: controllerID,
		duration:     UntilEndOfTurn(),
	}
}

// Targeting aims the effect at specific objects. Each target gets its own effect.
func (b *EffectBuilder) Targeting(targetIDs ...string) *EffectBuilder {
	b.targetIDs = targetIDs
	b.filter = nil
	return b
}

// Affecting aims the effect at whatever the filter selects.
func (b *EffectBuilder) Affecting(filter Filter) *EffectBuilder {
	b.filter = filter
	b.targetIDs = nil
	return b
}

func (b *EffectBuilder) UntilEndOfTurn() *EffectBuilder {
	b.duration = UntilEndOfTurn()
	return b
}

func (b *EffectBuilder) UntilEndOfCombat() *EffectBuilder {
	b.duration = UntilEndOfCombat()
	return b
}

func (b *EffectBuilder) UntilYourNextTurn() *EffectBuilder {
	b.duration = UntilNextTurn(b.controllerID)
	return b
}

// WhileOnBattlefield lasts while the source remains on the battlefield.
func (b *EffectBuilder) WhileOnBattlefield() *EffectBuilder {
	b.duration = WhileOnBattlefield(b.sourceID)
	return b
}

func (b *EffectBuilder) Permanent() *EffectBuilder {
	b.duration = Indefinite()
	return b
}

func (b *EffectBuilder) For(d EffectDuration) *EffectBuilder {
	b.duration = d
	return b
}

// Pump gives +power/+toughness.
func (b *EffectBuilder) Pump(power, toughness int) []ActiveContinuousEffect {
	return b.Build(ModifyPT{Power: power, Toughness: toughness})
}

// Grant gives keyword abilities.
func (b *EffectBuilder) Grant(keywords ...card.Keyword) []ActiveContinuousEffect {
	mods := make([]Modification, 0, len(keywords))
	for _, k := range keywords {
		mods = append(mods, AddKeyword{Keyword: k})
	}
	return b.Build(mods...)
}

func (b *EffectBuilder) CantAttack() []ActiveContinuousEffect {
	return b.Grant(card.KeywordCantAttack)
}

func (b *EffectBuilder) CantBlock() []ActiveContinuousEffect {
	return b.Grant(card.KeywordCantBlock)
}

// Build creates one effect per modification per target, stamping each with the next
// timestamp.
func (b *EffectBuilder) Build(mods ...Modification) []ActiveContinuousEffect {
	filters := make([]Filter, 0, len(b.targetIDs))
	switch {
	case b.filter != nil:
		filters = append(filters, b.filter)
	case len(b.targetIDs) > 0:
		for _, id := range b.targetIDs {
			filters = append(filters, Specific{ID: id})
		}
	default:
		filters = append(filters, Self{})
	}

	var out []ActiveContinuousEffect
	for _, f := range filters {
		for _, m := range mods {
			if m == nil {
				continue
			}
			out = append(out, NewContinuousEffect(b.clock, b.sourceID, b.controllerID, f, m, b.duration))
		}
	}
	return out
}

// AddTo builds the effects and registers them, returning their ids.
func (b *EffectBuilder) AddTo(store *ContinuousEffects, mods ...Modification) []string {
	var ids []string
	for _, e := range b.Build(mods...) {
		if id := store.Add(e); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

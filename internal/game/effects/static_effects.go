package effects

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/magefree/mage-rules-core/internal/game/card"
	"github.com/magefree/mage-rules-core/internal/game/state"
)

// ModifierProvider contributes the modifiers active in a given state.
type ModifierProvider interface {
	Modifiers(src state.Source) []Modifier
}

// EntityModifierProvider is implemented by providers that can also produce modifiers
// for objects outside the battlefield, such as characteristic-defining abilities of a
// spell on the stack.
type EntityModifierProvider interface {
	ModifiersFor(src state.Source, entityID string) []Modifier
}

// ProviderFunc adapts a function to ModifierProvider.
type ProviderFunc func(src state.Source) []Modifier

func (f ProviderFunc) Modifiers(src state.Source) []Modifier {
	return f(src)
}

// CompositeProvider merges several providers, in order.
type CompositeProvider []ModifierProvider

func (c CompositeProvider) Modifiers(src state.Source) []Modifier {
	var out []Modifier
	for _, p := range c {
		if p == nil {
			continue
		}
		out = append(out, p.Modifiers(src)...)
	}
	return out
}

func (c CompositeProvider) ModifiersFor(src state.Source, entityID string) []Modifier {
	var out []Modifier
	for _, p := range c {
		if ep, ok := p.(EntityModifierProvider); ok {
			out = append(out, ep.ModifiersFor(src, entityID)...)
		}
	}
	return out
}

// StaticAbility is a static ability's continuous effect: which objects it affects and
// what it does to them.
type StaticAbility struct {
	Filter        Filter
	Modifications []Modification
	// CharacteristicDefining abilities function in every zone (rule 604.3).
	CharacteristicDefining bool
	// Condition, when set, must hold for the ability to apply ("as long as ...").
	Condition func(src state.Source, sourceID string) bool
}

func (a StaticAbility) active(src state.Source, sourceID string) bool {
	return a.Condition == nil || a.Condition(src, sourceID)
}

// StaticAbilityRegistry looks up the static abilities of an object.
type StaticAbilityRegistry interface {
	StaticAbilities(entityID string, def *card.Definition) []StaticAbility
}

// StaticAbilitiesByName is a registry keyed by card name.
type StaticAbilitiesByName map[string][]StaticAbility

func (r StaticAbilitiesByName) StaticAbilities(_ string, def *card.Definition) []StaticAbility {
	if def == nil {
		return nil
	}
	return r[def.Name]
}

// StaticAbilityProvider turns the static abilities of battlefield permanents into
// modifiers. Each modifier carries its permanent's timestamp.
type StaticAbilityProvider struct {
	Registry StaticAbilityRegistry
}

// NewStaticAbilityProvider creates a provider over registry.
func NewStaticAbilityProvider(registry StaticAbilityRegistry) *StaticAbilityProvider {
	return &StaticAbilityProvider{Registry: registry}
}

func (p *StaticAbilityProvider) Modifiers(src state.Source) []Modifier {
	if p == nil || p.Registry == nil {
		return nil
	}
	var out []Modifier
	for _, id := range src.Battlefield() {
		e, ok := src.Entity(id)
		if !ok {
			continue
		}
		out = append(out, p.collect(src, e, false)...)
	}
	return out
}

// ModifiersFor returns the characteristic-defining modifiers of an object that is not on
// the battlefield. Battlefield objects are already covered by Modifiers.
func (p *StaticAbilityProvider) ModifiersFor(src state.Source, entityID string) []Modifier {
	if p == nil || p.Registry == nil {
		return nil
	}
	e, ok := src.Entity(entityID)
	if !ok || e.Zone == state.ZoneBattlefield {
		return nil
	}
	return p.collect(src, e, true)
}

func (p *StaticAbilityProvider) collect(src state.Source, e *state.Entity, cdaOnly bool) []Modifier {
	var out []Modifier
	seq := 0
	for _, ability := range p.Registry.StaticAbilities(e.ID, e.Definition) {
		if cdaOnly && !ability.CharacteristicDefining {
			seq += len(ability.Modifications)
			continue
		}
		if !ability.active(src, e.ID) {
			seq += len(ability.Modifications)
			continue
		}
		for _, m := range ability.Modifications {
			out = append(out, newModifier(e.ID, e.Timestamp, seq, ability.Filter, m))
			seq++
		}
	}
	return out
}

// Anthem builds the common "creatures you control get +P/+T" static ability.
// includeSelf controls whether the source itself is affected.
func Anthem(power, toughness int, includeSelf bool) StaticAbility {
	criteria := And{IsType{Type: card.TypeCreature}}
	if !includeSelf {
		criteria = append(criteria, Other{})
	}
	return StaticAbility{
		Filter:        ControlledBy{Criteria: criteria},
		Modifications: []Modification{ModifyPT{Power: power, Toughness: toughness}},
	}
}

// Equipped builds an aura/equipment bonus: the attached permanent gets +P/+T and keywords.
func Equipped(power, toughness int, keywords ...card.Keyword) StaticAbility {
	mods := []Modification{ModifyPT{Power: power, Toughness: toughness}}
	for _, k := range keywords {
		mods = append(mods, AddKeyword{Keyword: k})
	}
	return StaticAbility{Filter: AttachedTo{}, Modifications: mods}
}

// effectID derives a stable id for a floating effect.
func effectID(sourceID string, timestamp uint64, m Modification, f Filter) string {
	seed := fmt.Sprintf("%s|%d|%T%+v|%T%+v", sourceID, timestamp, m, m, f, f)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String()
}

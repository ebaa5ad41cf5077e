package projection

import (
	"slices"

	"github.com/magefree/mage-rules-core/internal/game/card"
	"github.com/magefree/mage-rules-core/internal/game/counters"
	"github.com/magefree/mage-rules-core/internal/game/effects"
	"github.com/magefree/mage-rules-core/internal/game/state"
)

// GameObjectView is the read-only projected state of one object, as consumed by legal
// action checks, combat validation, state-based actions and UI serializers.
// Views are shared; callers must not modify them.
type GameObjectView struct {
	ID           string
	Name         string
	OwnerID      string
	ControllerID string
	Zone         state.Zone

	Types            []card.Type
	Subtypes         []card.Subtype
	AllCreatureTypes bool
	Colors           []card.Color
	Keywords         []card.Keyword
	LostAllAbilities bool

	Power     int
	Toughness int
	HasPT     bool

	Damage        int
	Tapped        bool
	SummoningSick bool
	Token         bool
	Counters      map[counters.Type]int

	AttachedTo  string
	Attachments []string
}

func newView(e *state.Entity, attrs effects.Attributes, attachments []string) *GameObjectView {
	v := &GameObjectView{
		ID:               e.ID,
		Name:             attrs.Name,
		OwnerID:          e.OwnerID,
		ControllerID:     attrs.ControllerID,
		Zone:             e.Zone,
		Types:            attrs.Types.Sorted(),
		Subtypes:         attrs.Subtypes.Sorted(),
		AllCreatureTypes: attrs.AllCreatureTypes,
		Colors:           attrs.Colors.Sorted(),
		Keywords:         attrs.Keywords.Sorted(),
		LostAllAbilities: attrs.LostAllAbilities,
		Power:            attrs.Power,
		Toughness:        attrs.Toughness,
		HasPT:            attrs.HasPT,
		Damage:           e.Damage,
		Tapped:           e.Tapped,
		SummoningSick:    e.SummoningSick,
		Token:            e.Token,
	}
	if e.Zone == state.ZoneBattlefield {
		if len(e.Counters) > 0 {
			v.Counters = make(map[counters.Type]int, len(e.Counters))
			for t, n := range e.Counters {
				v.Counters[t] = n
			}
		}
		v.AttachedTo = e.AttachedTo
		v.Attachments = slices.Clone(attachments)
	}
	return v
}

func (v *GameObjectView) HasType(t card.Type) bool {
	return slices.Contains(v.Types, t)
}

// HasSubtype honours changeling.
func (v *GameObjectView) HasSubtype(s card.Subtype) bool {
	if slices.Contains(v.Subtypes, s) {
		return true
	}
	return v.AllCreatureTypes && s.IsCreatureType()
}

func (v *GameObjectView) HasColor(c card.Color) bool {
	return slices.Contains(v.Colors, c)
}

func (v *GameObjectView) HasKeyword(k card.Keyword) bool {
	return slices.Contains(v.Keywords, k)
}

func (v *GameObjectView) IsCreature() bool {
	return v.HasType(card.TypeCreature)
}

// IsColorless reports whether the object has no color.
func (v *GameObjectView) IsColorless() bool {
	return len(v.Colors) == 0
}

// CounterCount returns the number of counters of type t.
func (v *GameObjectView) CounterCount(t counters.Type) int {
	return v.Counters[t]
}

// CanAttack reports whether the object could be declared as an attacker, ignoring
// costs and requirements imposed from outside.
func (v *GameObjectView) CanAttack() bool {
	if !v.IsCreature() || v.Zone != state.ZoneBattlefield || v.Tapped {
		return false
	}
	if v.HasKeyword(card.KeywordDefender) || v.HasKeyword(card.KeywordCantAttack) {
		return false
	}
	return !v.SummoningSick || v.HasKeyword(card.KeywordHaste)
}

// CanBlock reports whether the object could be declared as a blocker.
func (v *GameObjectView) CanBlock() bool {
	if !v.IsCreature() || v.Zone != state.ZoneBattlefield || v.Tapped {
		return false
	}
	return !v.HasKeyword(card.KeywordCantBlock)
}

// HasLethalDamage reports whether a creature has damage at least equal to its toughness
// (rule 704.5g). Indestructible does not change the answer.
func (v *GameObjectView) HasLethalDamage() bool {
	return v.IsCreature() && v.HasPT && v.Toughness > 0 && v.Damage >= v.Toughness
}

// HasZeroToughness reports whether a creature's toughness is zero or less (rule 704.5f).
func (v *GameObjectView) HasZeroToughness() bool {
	return v.IsCreature() && v.HasPT && v.Toughness <= 0
}

package effects

import (
	"github.com/magefree/mage-rules-core/internal/game/card"
	"github.com/magefree/mage-rules-core/internal/game/state"
)

// Attributes are the characteristics of an object while continuous effects are being
// evaluated. Apply never mutates its input; it works on a Clone.
type Attributes struct {
	ID           string
	Name         string
	OwnerID      string
	ControllerID string

	Types    card.Set[card.Type]
	Subtypes card.Set[card.Subtype]
	// AllCreatureTypes is set by changeling and similar effects.
	AllCreatureTypes bool
	Colors           card.Set[card.Color]

	Keywords         card.Set[card.Keyword]
	LostAllAbilities bool

	Power     int
	Toughness int
	HasPT     bool
}

// BaseAttributes builds the starting attributes of an entity from canonical state.
func BaseAttributes(e *state.Entity) Attributes {
	if e == nil {
		return Attributes{}
	}
	ch := e.Characteristics().Clone()
	return Attributes{
		ID:               e.ID,
		Name:             ch.Name,
		OwnerID:          e.OwnerID,
		ControllerID:     e.ControllerID,
		Types:            ch.Types,
		Subtypes:         ch.Subtypes,
		AllCreatureTypes: ch.Keywords.Has(card.KeywordChangeling),
		Colors:           ch.Colors,
		Keywords:         ch.Keywords,
		Power:            ch.Power,
		Toughness:        ch.Toughness,
		HasPT:            ch.HasPT,
	}
}

// Clone returns a deep copy.
func (a Attributes) Clone() Attributes {
	a.Types = a.Types.Clone()
	a.Subtypes = a.Subtypes.Clone()
	a.Colors = a.Colors.Clone()
	a.Keywords = a.Keywords.Clone()
	return a
}

func (a Attributes) HasType(t card.Type) bool {
	return a.Types.Has(t)
}

// HasSubtype honours changeling: an object with every creature type has any creature subtype.
func (a Attributes) HasSubtype(s card.Subtype) bool {
	if a.Subtypes.Has(s) {
		return true
	}
	return a.AllCreatureTypes && s.IsCreatureType()
}

func (a Attributes) HasColor(c card.Color) bool {
	return a.Colors.Has(c)
}

func (a Attributes) HasKeyword(k card.Keyword) bool {
	return a.Keywords.Has(k)
}

// IsCreature is shorthand for HasType(card.TypeCreature).
func (a Attributes) IsCreature() bool {
	return a.HasType(card.TypeCreature)
}

// changelingImmune reports whether subtype removal or overwrite must leave the
// "every creature type" quality alone.
func (a Attributes) changelingImmune() bool {
	return a.AllCreatureTypes && a.IsCreature()
}

// Equal compares every projected characteristic.
func (a Attributes) Equal(b Attributes) bool {
	return a.ID == b.ID &&
		a.Name == b.Name &&
		a.OwnerID == b.OwnerID &&
		a.ControllerID == b.ControllerID &&
		a.Types.Equal(b.Types) &&
		a.Subtypes.Equal(b.Subtypes) &&
		a.AllCreatureTypes == b.AllCreatureTypes &&
		a.Colors.Equal(b.Colors) &&
		a.Keywords.Equal(b.Keywords) &&
		a.LostAllAbilities == b.LostAllAbilities &&
		a.Power == b.Power &&
		a.Toughness == b.Toughness &&
		a.HasPT == b.HasPT
}

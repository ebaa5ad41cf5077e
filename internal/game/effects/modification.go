package effects

import (
	"github.com/magefree/mage-rules-core/internal/game/card"
)

// Modification is one concrete continuous change to an object's characteristics.
//
// Each variant belongs to one layer by convention and only touches the attribute group
// of that layer. The unexported methods close the set: a new variant that does not
// provide both its apply step and its dependency analysis does not compile.
type Modification interface {
	Layer() Layer
	apply(attrs *Attributes, ctx Context)
	effects() CharacteristicSet
}

// ModificationEffects reports which characteristics a modification can change.
func ModificationEffects(m Modification) CharacteristicSet {
	if m == nil {
		return CharacteristicSet{}
	}
	return m.effects()
}

// CopyOf makes the object a copy of another object's copiable values (layer 1).
type CopyOf struct {
	EntityID string
}

func (CopyOf) Layer() Layer { return LayerCopy }

func (m CopyOf) apply(attrs *Attributes, ctx Context) {
	original, ok := ctx.State.Entity(m.EntityID)
	if !ok {
		return
	}
	copied := BaseAttributes(original)
	attrs.Name = copied.Name
	attrs.Types = copied.Types
	attrs.Subtypes = copied.Subtypes
	attrs.AllCreatureTypes = copied.AllCreatureTypes
	attrs.Colors = copied.Colors
	attrs.Keywords = copied.Keywords
	attrs.Power = copied.Power
	attrs.Toughness = copied.Toughness
	attrs.HasPT = copied.HasPT
}

func (CopyOf) effects() CharacteristicSet {
	return CharacteristicSet{AllTypes: true, AllSubtypes: true, AllColors: true, AllKeywords: true}
}

// ChangeControl gives control to PlayerID, or to the source's controller when empty (layer 2).
type ChangeControl struct {
	PlayerID string
}

func (ChangeControl) Layer() Layer { return LayerControl }

func (m ChangeControl) apply(attrs *Attributes, ctx Context) {
	player := m.PlayerID
	if player == "" {
		player = ctx.ControllerID
	}
	if player != "" {
		attrs.ControllerID = player
	}
}

func (ChangeControl) effects() CharacteristicSet {
	return CharacteristicSet{Control: true}
}

// ReplaceSubtypeText rewrites one subtype word into another (layer 3).
type ReplaceSubtypeText struct {
	From card.Subtype
	To   card.Subtype
}

func (ReplaceSubtypeText) Layer() Layer { return LayerText }

func (m ReplaceSubtypeText) apply(attrs *Attributes, _ Context) {
	if !attrs.Subtypes.Has(m.From) {
		return
	}
	attrs.Subtypes.Remove(m.From)
	attrs.Subtypes.Add(m.To)
}

func (m ReplaceSubtypeText) effects() CharacteristicSet {
	return subtypesOf(m.From, m.To)
}

// AddType adds a card type (layer 4).
type AddType struct {
	Type card.Type
}

func (AddType) Layer() Layer { return LayerType }

func (m AddType) apply(attrs *Attributes, _ Context) {
	attrs.Types.Add(m.Type)
}

func (m AddType) effects() CharacteristicSet { return typesOf(m.Type) }

// RemoveType removes a card type (layer 4).
type RemoveType struct {
	Type card.Type
}

func (RemoveType) Layer() Layer { return LayerType }

func (m RemoveType) apply(attrs *Attributes, _ Context) {
	attrs.Types.Remove(m.Type)
}

func (m RemoveType) effects() CharacteristicSet { return typesOf(m.Type) }

// SetTypes replaces every card type (layer 4).
type SetTypes struct {
	Types []card.Type
}

func (SetTypes) Layer() Layer { return LayerType }

func (m SetTypes) apply(attrs *Attributes, _ Context) {
	attrs.Types = card.NewSet(m.Types...)
}

func (SetTypes) effects() CharacteristicSet { return CharacteristicSet{AllTypes: true} }

// AddSubtype adds a subtype (layer 4).
type AddSubtype struct {
	Subtype card.Subtype
}

func (AddSubtype) Layer() Layer { return LayerType }

func (m AddSubtype) apply(attrs *Attributes, _ Context) {
	attrs.Subtypes.Add(m.Subtype)
}

func (m AddSubtype) effects() CharacteristicSet { return subtypesOf(m.Subtype) }

// RemoveSubtype removes a subtype (layer 4). A changeling creature keeps every creature type.
type RemoveSubtype struct {
	Subtype card.Subtype
}

func (RemoveSubtype) Layer() Layer { return LayerType }

func (m RemoveSubtype) apply(attrs *Attributes, _ Context) {
	if attrs.changelingImmune() && m.Subtype.IsCreatureType() {
		return
	}
	attrs.Subtypes.Remove(m.Subtype)
}

func (m RemoveSubtype) effects() CharacteristicSet { return subtypesOf(m.Subtype) }

// SetSubtypes overwrites the subtypes (layer 4). On a changeling creature the new
// subtypes are added instead and every creature type is kept.
type SetSubtypes struct {
	Subtypes []card.Subtype
}

func (SetSubtypes) Layer() Layer { return LayerType }

func (m SetSubtypes) apply(attrs *Attributes, _ Context) {
	if attrs.changelingImmune() {
		for _, s := range m.Subtypes {
			attrs.Subtypes.Add(s)
		}
		return
	}
	attrs.Subtypes = card.NewSet(m.Subtypes...)
	attrs.AllCreatureTypes = false
}

func (SetSubtypes) effects() CharacteristicSet { return CharacteristicSet{AllSubtypes: true} }

// GainAllCreatureTypes grants every creature type (layer 4).
type GainAllCreatureTypes struct{}

func (GainAllCreatureTypes) Layer() Layer { return LayerType }

func (GainAllCreatureTypes) apply(attrs *Attributes, _ Context) {
	attrs.AllCreatureTypes = true
}

func (GainAllCreatureTypes) effects() CharacteristicSet {
	return CharacteristicSet{AllSubtypes: true}
}

// AddColor adds a color (layer 5).
type AddColor struct {
	Color card.Color
}

func (AddColor) Layer() Layer { return LayerColor }

func (m AddColor) apply(attrs *Attributes, _ Context) {
	attrs.Colors.Add(m.Color)
}

func (m AddColor) effects() CharacteristicSet { return colorsOf(m.Color) }

// SetColors replaces the colors; an empty list makes the object colorless (layer 5).
type SetColors struct {
	Colors []card.Color
}

func (SetColors) Layer() Layer { return LayerColor }

func (m SetColors) apply(attrs *Attributes, _ Context) {
	attrs.Colors = card.NewSet(m.Colors...)
}

func (SetColors) effects() CharacteristicSet { return CharacteristicSet{AllColors: true} }

// AddKeyword grants a keyword ability (layer 6).
type AddKeyword struct {
	Keyword card.Keyword
}

func (AddKeyword) Layer() Layer { return LayerAbility }

func (m AddKeyword) apply(attrs *Attributes, _ Context) {
	attrs.Keywords.Add(m.Keyword)
}

func (m AddKeyword) effects() CharacteristicSet { return keywordsOf(m.Keyword) }

// RemoveKeyword removes a keyword ability (layer 6).
type RemoveKeyword struct {
	Keyword card.Keyword
}

func (RemoveKeyword) Layer() Layer { return LayerAbility }

func (m RemoveKeyword) apply(attrs *Attributes, _ Context) {
	attrs.Keywords.Remove(m.Keyword)
}

func (m RemoveKeyword) effects() CharacteristicSet { return keywordsOf(m.Keyword) }

// RemoveAllAbilities strips every ability (layer 6).
type RemoveAllAbilities struct{}

func (RemoveAllAbilities) Layer() Layer { return LayerAbility }

func (RemoveAllAbilities) apply(attrs *Attributes, _ Context) {
	attrs.Keywords = card.NewSet[card.Keyword]()
	attrs.LostAllAbilities = true
}

func (RemoveAllAbilities) effects() CharacteristicSet {
	return CharacteristicSet{AllKeywords: true}
}

// SetPTFromCDA sets power and toughness from a characteristic-defining ability (layer 7a).
// A nil amount leaves that value alone.
type SetPTFromCDA struct {
	Power     Amount
	Toughness Amount
}

func (SetPTFromCDA) Layer() Layer { return LayerPTCDA }

func (m SetPTFromCDA) apply(attrs *Attributes, ctx Context) {
	if m.Power != nil {
		attrs.Power = m.Power.Evaluate(ctx)
	}
	if m.Toughness != nil {
		attrs.Toughness = m.Toughness.Evaluate(ctx)
	}
	attrs.HasPT = true
}

func (SetPTFromCDA) effects() CharacteristicSet { return CharacteristicSet{} }

// SetPT sets base power and toughness to fixed values (layer 7b).
type SetPT struct {
	Power     int
	Toughness int
}

func (SetPT) Layer() Layer { return LayerPTSet }

func (m SetPT) apply(attrs *Attributes, _ Context) {
	attrs.Power = m.Power
	attrs.Toughness = m.Toughness
	attrs.HasPT = true
}

func (SetPT) effects() CharacteristicSet { return CharacteristicSet{} }

// ModifyPT adds fixed deltas to power and toughness (layer 7c).
type ModifyPT struct {
	Power     int
	Toughness int
}

func (ModifyPT) Layer() Layer { return LayerPTModify }

func (m ModifyPT) apply(attrs *Attributes, _ Context) {
	attrs.Power += m.Power
	attrs.Toughness += m.Toughness
}

func (ModifyPT) effects() CharacteristicSet { return CharacteristicSet{} }

// ModifyPTDynamic adds deltas computed from game state (layer 7c).
type ModifyPTDynamic struct {
	Power     Amount
	Toughness Amount
}

func (ModifyPTDynamic) Layer() Layer { return LayerPTModify }

func (m ModifyPTDynamic) apply(attrs *Attributes, ctx Context) {
	attrs.Power += evaluate(m.Power, ctx)
	attrs.Toughness += evaluate(m.Toughness, ctx)
}

func (ModifyPTDynamic) effects() CharacteristicSet { return CharacteristicSet{} }

// SwitchPT exchanges power and toughness (layer 7e).
type SwitchPT struct{}

func (SwitchPT) Layer() Layer { return LayerPTSwitch }

func (SwitchPT) apply(attrs *Attributes, _ Context) {
	attrs.Power, attrs.Toughness = attrs.Toughness, attrs.Power
}

func (SwitchPT) effects() CharacteristicSet { return CharacteristicSet{} }

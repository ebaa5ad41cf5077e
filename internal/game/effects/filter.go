package effects

import (
	"github.com/magefree/mage-rules-core/internal/game/card"
	"github.com/magefree/mage-rules-core/internal/game/state"
)

// FilterContext carries what filter resolution needs: the canonical state, the modifier
// source, and a lookup for the characteristics to match criteria against.
type FilterContext struct {
	State        state.Source
	SourceID     string
	ControllerID string
	// Lookup returns the characteristics criteria are matched against. When nil, the
	// canonical base characteristics are used.
	Lookup func(id string) (Attributes, bool)
}

func (fc FilterContext) attributes(id string) (Attributes, bool) {
	if fc.Lookup != nil {
		return fc.Lookup(id)
	}
	e, ok := fc.State.Entity(id)
	if !ok {
		return Attributes{}, false
	}
	return BaseAttributes(e), true
}

// Criteria is a boolean expression over an object's characteristics.
//
// The variant set is closed: the unexported dependencies method means every criteria
// kind must state which characteristics it reads.
type Criteria interface {
	Matches(obj Attributes, fc FilterContext) bool
	dependencies() CharacteristicSet
}

// And matches when every member matches. An empty And matches everything.
type And []Criteria

func (c And) Matches(obj Attributes, fc FilterContext) bool {
	for _, member := range c {
		if !member.Matches(obj, fc) {
			return false
		}
	}
	return true
}

func (c And) dependencies() CharacteristicSet {
	var out CharacteristicSet
	for _, member := range c {
		out = out.Union(member.dependencies())
	}
	return out
}

// Or matches when any member matches.
type Or []Criteria

func (c Or) Matches(obj Attributes, fc FilterContext) bool {
	for _, member := range c {
		if member.Matches(obj, fc) {
			return true
		}
	}
	return false
}

func (c Or) dependencies() CharacteristicSet {
	var out CharacteristicSet
	for _, member := range c {
		out = out.Union(member.dependencies())
	}
	return out
}

// Not negates its operand.
type Not struct {
	Criteria Criteria
}

func (c Not) Matches(obj Attributes, fc FilterContext) bool {
	return !c.Criteria.Matches(obj, fc)
}

func (c Not) dependencies() CharacteristicSet {
	return c.Criteria.dependencies()
}

// IsType matches objects with the card type.
type IsType struct {
	Type card.Type
}

func (c IsType) Matches(obj Attributes, _ FilterContext) bool {
	return obj.HasType(c.Type)
}

func (c IsType) dependencies() CharacteristicSet {
	return typesOf(c.Type)
}

// WithSubtype matches objects with the subtype, including changelings for creature types.
type WithSubtype struct {
	Subtype card.Subtype
}

func (c WithSubtype) Matches(obj Attributes, _ FilterContext) bool {
	return obj.HasSubtype(c.Subtype)
}

func (c WithSubtype) dependencies() CharacteristicSet {
	return subtypesOf(c.Subtype)
}

// WithColor matches objects of the color.
type WithColor struct {
	Color card.Color
}

func (c WithColor) Matches(obj Attributes, _ FilterContext) bool {
	return obj.HasColor(c.Color)
}

func (c WithColor) dependencies() CharacteristicSet {
	return colorsOf(c.Color)
}

// WithKeyword matches objects that have the keyword.
type WithKeyword struct {
	Keyword card.Keyword
}

func (c WithKeyword) Matches(obj Attributes, _ FilterContext) bool {
	return obj.HasKeyword(c.Keyword)
}

func (c WithKeyword) dependencies() CharacteristicSet {
	return keywordsOf(c.Keyword)
}

// Other excludes the modifier's own source ("other creatures you control").
type Other struct{}

func (Other) Matches(obj Attributes, fc FilterContext) bool {
	return obj.ID != fc.SourceID
}

func (Other) dependencies() CharacteristicSet {
	return CharacteristicSet{}
}

func matches(c Criteria, obj Attributes, fc FilterContext) bool {
	if c == nil {
		return true
	}
	return c.Matches(obj, fc)
}

func criteriaDependencies(c Criteria) CharacteristicSet {
	if c == nil {
		return CharacteristicSet{}
	}
	return c.dependencies()
}

// Filter selects the objects a modifier applies to.
type Filter interface {
	// Resolve returns the ids of the affected objects in a stable order.
	Resolve(fc FilterContext) []string
	dependencies() CharacteristicSet
}

// Self affects the modifier's source.
type Self struct{}

func (Self) Resolve(fc FilterContext) []string {
	if _, ok := fc.State.Entity(fc.SourceID); !ok {
		return nil
	}
	return []string{fc.SourceID}
}

func (Self) dependencies() CharacteristicSet {
	return CharacteristicSet{}
}

// AttachedTo affects the permanent the source (an aura or equipment) is attached to.
type AttachedTo struct{}

func (AttachedTo) Resolve(fc FilterContext) []string {
	src, ok := fc.State.Entity(fc.SourceID)
	if !ok || src.AttachedTo == "" {
		return nil
	}
	if _, ok := fc.State.Entity(src.AttachedTo); !ok {
		return nil
	}
	return []string{src.AttachedTo}
}

func (AttachedTo) dependencies() CharacteristicSet {
	return CharacteristicSet{}
}

// Specific affects one object chosen when the effect was created.
type Specific struct {
	ID string
}

func (f Specific) Resolve(fc FilterContext) []string {
	if _, ok := fc.State.Entity(f.ID); !ok {
		return nil
	}
	return []string{f.ID}
}

func (Specific) dependencies() CharacteristicSet {
	return CharacteristicSet{}
}

// ControlledBy affects permanents controlled by PlayerID, or by the source's controller
// when PlayerID is empty, that match Criteria.
type ControlledBy struct {
	PlayerID string
	Criteria Criteria
}

func (f ControlledBy) Resolve(fc FilterContext) []string {
	player := f.PlayerID
	if player == "" {
		player = fc.ControllerID
	}
	return scanBattlefield(fc, f.Criteria, func(obj Attributes) bool {
		return obj.ControllerID == player
	})
}

func (f ControlledBy) dependencies() CharacteristicSet {
	return criteriaDependencies(f.Criteria).Union(CharacteristicSet{Control: true})
}

// Opponents affects permanents controlled by an opponent of the source's controller.
type Opponents struct {
	Criteria Criteria
}

func (f Opponents) Resolve(fc FilterContext) []string {
	return scanBattlefield(fc, f.Criteria, func(obj Attributes) bool {
		return obj.ControllerID != "" && obj.ControllerID != fc.ControllerID
	})
}

func (f Opponents) dependencies() CharacteristicSet {
	return criteriaDependencies(f.Criteria).Union(CharacteristicSet{Control: true})
}

// All affects every permanent matching Criteria.
type All struct {
	Criteria Criteria
}

func (f All) Resolve(fc FilterContext) []string {
	return scanBattlefield(fc, f.Criteria, nil)
}

func (f All) dependencies() CharacteristicSet {
	return criteriaDependencies(f.Criteria)
}

// scanBattlefield walks the battlefield once per call; results are never shared
// between modifiers.
func scanBattlefield(fc FilterContext, c Criteria, keep func(Attributes) bool) []string {
	var out []string
	for _, id := range fc.State.Battlefield() {
		obj, ok := fc.attributes(id)
		if !ok {
			continue
		}
		if keep != nil && !keep(obj) {
			continue
		}
		if matches(c, obj, fc) {
			out = append(out, id)
		}
	}
	return out
}

// FilterDependencies reports which characteristics a filter's selection reads.
func FilterDependencies(f Filter) CharacteristicSet {
	if f == nil {
		return CharacteristicSet{}
	}
	return f.dependencies()
}

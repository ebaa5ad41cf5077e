package effects

import "github.com/magefree/mage-rules-core/internal/game/card"

// CharacteristicSet names the characteristics a filter reads or a modification writes.
// The All* flags mean "any value of that category", e.g. a filter on "has flying" is
// affected by a modification that removes all abilities.
type CharacteristicSet struct {
	Types       card.Set[card.Type]
	AllTypes    bool
	Subtypes    card.Set[card.Subtype]
	AllSubtypes bool
	Colors      card.Set[card.Color]
	AllColors   bool
	Keywords    card.Set[card.Keyword]
	AllKeywords bool
	Control     bool
}

// Empty reports whether the set references nothing.
func (c CharacteristicSet) Empty() bool {
	return len(c.Types) == 0 && !c.AllTypes &&
		len(c.Subtypes) == 0 && !c.AllSubtypes &&
		len(c.Colors) == 0 && !c.AllColors &&
		len(c.Keywords) == 0 && !c.AllKeywords &&
		!c.Control
}

// Union merges two sets into a new one.
func (c CharacteristicSet) Union(o CharacteristicSet) CharacteristicSet {
	return CharacteristicSet{
		Types:       mergeSets(c.Types, o.Types),
		AllTypes:    c.AllTypes || o.AllTypes,
		Subtypes:    mergeSets(c.Subtypes, o.Subtypes),
		AllSubtypes: c.AllSubtypes || o.AllSubtypes,
		Colors:      mergeSets(c.Colors, o.Colors),
		AllColors:   c.AllColors || o.AllColors,
		Keywords:    mergeSets(c.Keywords, o.Keywords),
		AllKeywords: c.AllKeywords || o.AllKeywords,
		Control:     c.Control || o.Control,
	}
}

// Intersects reports whether any category overlaps.
func (c CharacteristicSet) Intersects(o CharacteristicSet) bool {
	return overlaps(c.Types, c.AllTypes, o.Types, o.AllTypes) ||
		overlaps(c.Subtypes, c.AllSubtypes, o.Subtypes, o.AllSubtypes) ||
		overlaps(c.Colors, c.AllColors, o.Colors, o.AllColors) ||
		overlaps(c.Keywords, c.AllKeywords, o.Keywords, o.AllKeywords) ||
		(c.Control && o.Control)
}

func overlaps[T ~string](a card.Set[T], aAll bool, b card.Set[T], bAll bool) bool {
	if aAll && (bAll || len(b) > 0) {
		return true
	}
	if bAll && len(a) > 0 {
		return true
	}
	return a.Intersects(b)
}

func mergeSets[T ~string](a, b card.Set[T]) card.Set[T] {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := a.Clone()
	for v := range b {
		out.Add(v)
	}
	return out
}

func typesOf(types ...card.Type) CharacteristicSet {
	return CharacteristicSet{Types: card.NewSet(types...)}
}

func subtypesOf(subtypes ...card.Subtype) CharacteristicSet {
	return CharacteristicSet{Subtypes: card.NewSet(subtypes...)}
}

func colorsOf(colors ...card.Color) CharacteristicSet {
	return CharacteristicSet{Colors: card.NewSet(colors...)}
}

func keywordsOf(keywords ...card.Keyword) CharacteristicSet {
	return CharacteristicSet{Keywords: card.NewSet(keywords...)}
}

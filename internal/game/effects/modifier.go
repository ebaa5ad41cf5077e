package effects

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Modifier is one source's one continuous change: which layer, when it started, what it
// does and which objects it affects. Modifiers are values and are never mutated.
type Modifier struct {
	ID           string
	Layer        Layer
	SourceID     string
	Timestamp    uint64
	// Seq orders modifiers that share a source and timestamp, such as the several
	// effects of one static ability.
	Seq          int
	Modification Modification
	Filter       Filter
	// ControllerID fixes "you" for effects that outlive their source's control, such
	// as a resolved spell's floating effect. Empty means the source's controller.
	ControllerID string
}

// NewModifier builds a modifier whose layer is the modification's conventional layer.
// The id is derived from its content so re-collecting the same modifier is stable.
func NewModifier(sourceID string, timestamp uint64, filter Filter, m Modification) Modifier {
	return newModifier(sourceID, timestamp, 0, filter, m)
}

func newModifier(sourceID string, timestamp uint64, seq int, filter Filter, m Modification) Modifier {
	source := strings.TrimSpace(sourceID)
	layer := LayerPTModify
	if m != nil {
		layer = m.Layer()
	}
	seed := fmt.Sprintf("%s|%d|%d|%d|%T%+v|%T%+v", source, timestamp, seq, layer, m, m, filter, filter)
	return Modifier{
		ID:           uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String(),
		Layer:        layer,
		SourceID:     source,
		Timestamp:    timestamp,
		Seq:          seq,
		Modification: m,
		Filter:       filter,
	}
}

// compareTimestamp orders two modifiers by timestamp, breaking ties by source, sequence
// and id so the order is total and deterministic.
func compareTimestamp(a, b Modifier) int {
	switch {
	case a.Timestamp != b.Timestamp:
		if a.Timestamp < b.Timestamp {
			return -1
		}
		return 1
	case a.SourceID != b.SourceID:
		return strings.Compare(a.SourceID, b.SourceID)
	case a.Seq != b.Seq:
		return a.Seq - b.Seq
	default:
		return strings.Compare(a.ID, b.ID)
	}
}

// SortByTimestamp returns a copy of mods in timestamp order.
func SortByTimestamp(mods []Modifier) []Modifier {
	out := slices.Clone(mods)
	slices.SortFunc(out, compareTimestamp)
	return out
}

// OrderModifiers returns mods in application order: by layer, then by dependency within
// each layer, then by timestamp. Dependency resolution runs per layer group.
func OrderModifiers(mods []Modifier) []Modifier {
	groups := make(map[Layer][]Modifier)
	for _, m := range mods {
		groups[m.Layer] = append(groups[m.Layer], m)
	}
	out := make([]Modifier, 0, len(mods))
	for _, layer := range layerOrder {
		group := groups[layer]
		if len(group) == 0 {
			continue
		}
		out = append(out, SortWithDependencies(group)...)
		delete(groups, layer)
	}
	// Layers outside the defined range apply last, in timestamp order.
	var rest []Modifier
	for _, group := range groups {
		rest = append(rest, group...)
	}
	return append(out, SortByTimestamp(rest)...)
}

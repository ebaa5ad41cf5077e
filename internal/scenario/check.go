package scenario

import (
	"fmt"
	"slices"
	"strings"

	"github.com/magefree/mage-rules-core/internal/game"
	"github.com/magefree/mage-rules-core/internal/game/card"
	"github.com/magefree/mage-rules-core/internal/game/projection"
	"go.uber.org/zap"
)

// NewEngine wires the scenario's state, static abilities and floating effects into an
// engine. Each call builds an independent engine over the same state.
func (s *Scenario) NewEngine(cacheSize int, logger *zap.Logger) (*game.Engine, error) {
	eng, err := game.NewEngine(s.State, game.Options{
		CacheSize:       cacheSize,
		StaticAbilities: s.Statics,
	}, logger)
	if err != nil {
		return nil, err
	}
	eng.AddEffects(s.Effects...)
	return eng, nil
}

// Mismatch is one expected value the projection did not produce.
type Mismatch struct {
	ObjectID string
	Field    string
	Want     string
	Got      string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s.%s: want %s, got %s", m.ObjectID, m.Field, m.Want, m.Got)
}

// Check compares the engine's projected views with the scenario's expectations, in
// object id order.
func (s *Scenario) Check(eng *game.Engine) []Mismatch {
	ids := make([]string, 0, len(s.Expect))
	for id := range s.Expect {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var out []Mismatch
	for _, id := range ids {
		view := eng.View(id)
		if view == nil {
			out = append(out, Mismatch{ObjectID: id, Field: "exists", Want: "true", Got: "false"})
			continue
		}
		out = append(out, s.Expect[id].compare(view)...)
	}
	return out
}

func (x Expectation) compare(v *projection.GameObjectView) []Mismatch {
	var out []Mismatch
	add := func(field, want, got string) {
		if want != got {
			out = append(out, Mismatch{ObjectID: v.ID, Field: field, Want: want, Got: got})
		}
	}
	if x.Controller != "" {
		add("controller", x.Controller, v.ControllerID)
	}
	if x.Power != nil {
		add("power", fmt.Sprint(*x.Power), fmt.Sprint(v.Power))
	}
	if x.Toughness != nil {
		add("toughness", fmt.Sprint(*x.Toughness), fmt.Sprint(v.Toughness))
	}
	if x.Types != nil {
		want := make([]string, 0, len(x.Types))
		for _, t := range x.Types {
			if parsed, ok := card.ParseType(t); ok {
				t = string(parsed)
			}
			want = append(want, t)
		}
		add("types", joinSorted(want), joinSorted(stringsOf(v.Types)))
	}
	if x.Subtypes != nil {
		add("subtypes", joinSorted(x.Subtypes), joinSorted(stringsOf(v.Subtypes)))
	}
	if x.Colors != nil {
		want := make([]string, 0, len(x.Colors))
		for _, c := range x.Colors {
			if parsed, ok := card.ParseColor(c); ok {
				c = string(parsed)
			}
			want = append(want, c)
		}
		add("colors", joinSorted(want), joinSorted(stringsOf(v.Colors)))
	}
	if x.Keywords != nil {
		add("keywords", joinSorted(x.Keywords), joinSorted(stringsOf(v.Keywords)))
	}
	return out
}

func stringsOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func joinSorted(values []string) string {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return "[" + strings.Join(sorted, ",") + "]"
}

package effects

import (
	"testing"

	"github.com/magefree/mage-rules-core/internal/game/card"
	"github.com/magefree/mage-rules-core/internal/game/state"
)

func newTestState(t *testing.T) *state.Memory {
	t.Helper()
	mem := state.NewMemory()
	mem.AddPlayer("Alice", 20)
	mem.AddPlayer("Bob", 20)
	return mem
}

func putPermanent(mem *state.Memory, id, controller string, ts uint64, def *card.Definition) {
	mem.Put(&state.Entity{
		ID:           id,
		OwnerID:      controller,
		ControllerID: controller,
		Zone:         state.ZoneBattlefield,
		Definition:   def,
		Timestamp:    ts,
	})
}

func modifierIDs(mods []Modifier) []string {
	out := make([]string, 0, len(mods))
	for _, m := range mods {
		out = append(out, m.SourceID)
	}
	return out
}

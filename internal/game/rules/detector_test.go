package rules

import (
	"fmt"
	"testing"

	"github.com/magefree/mage-rules-core/internal/game/card"
	"github.com/magefree/mage-rules-core/internal/game/effects"
	"github.com/magefree/mage-rules-core/internal/game/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTriggerState(t *testing.T, players ...string) *state.Memory {
	t.Helper()
	mem := state.NewMemory()
	for _, p := range players {
		mem.AddPlayer(p, 20)
	}
	return mem
}

func putCard(mem *state.Memory, id, name, controller string, ts uint64) {
	mem.Put(&state.Entity{
		ID:           id,
		OwnerID:      controller,
		ControllerID: controller,
		Zone:         state.ZoneBattlefield,
		Definition:   card.NewCreature(name, 1, 1),
		Timestamp:    ts,
	})
}

func newTestDetector(t *testing.T, mem *state.Memory, registry AbilityRegistry) (*Detector, *TriggerIndex) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	index := NewTriggerIndex(registry, logger)
	index.Rebuild(mem)
	return NewDetector(index, registry, logger), index
}

func sources(triggers []PendingTrigger) []string {
	out := make([]string, len(triggers))
	for i, tr := range triggers {
		out[i] = tr.SourceID
	}
	return out
}

func TestDetectTriggersOrdersAPNAP(t *testing.T) {
	mem := newTriggerState(t, "Alice", "Bob", "Carol")
	mem.SetActivePlayer("Bob")
	registry := TriggeredAbilitiesByName{
		"Soul Warden": {{Name: "gain", Trigger: EntersBattlefield{Controller: AnyPlayer}}},
	}
	putCard(mem, "alice-warden", "Soul Warden", "Alice", 1)
	putCard(mem, "carol-warden", "Soul Warden", "Carol", 2)
	putCard(mem, "bob-warden", "Soul Warden", "Bob", 3)
	putCard(mem, "bob-warden-2", "Soul Warden", "Bob", 4)
	detector, _ := newTestDetector(t, mem, registry)

	putCard(mem, "newcomer", "Grizzly Bears", "Alice", 5)
	events := []GameEvent{ZoneChanged{EntityID: "newcomer", ControllerID: "Alice", From: state.ZoneHand, To: state.ZoneBattlefield}}

	got := detector.DetectTriggers(mem, events)
	assert.Equal(t, []string{"bob-warden", "bob-warden-2", "carol-warden", "alice-warden"}, sources(got))
	for _, tr := range got {
		assert.NotEmpty(t, tr.ID)
		assert.Equal(t, 0, tr.EventIndex)
	}
}

func TestDetectTriggersDeathUsesLastKnownInformation(t *testing.T) {
	mem := newTriggerState(t, "Alice", "Bob")
	registry := TriggeredAbilitiesByName{
		"Doomed Traveler":  {{Name: "spirit", Trigger: Dies{Self: true}}},
		"Blood Artist":     {{Name: "drain", Trigger: Dies{Controller: AnyPlayer, Criteria: effects.IsType{Type: card.TypeCreature}}}},
		"Grizzly Bears":    nil,
		"Kokusho Watchers": {{Name: "etb", Trigger: EntersBattlefield{Self: true}}},
	}
	putCard(mem, "traveler", "Doomed Traveler", "Alice", 1)
	putCard(mem, "artist", "Blood Artist", "Bob", 2)
	detector, index := newTestDetector(t, mem, registry)
	require.True(t, index.Contains("traveler"))

	before, ok := mem.Move("traveler", state.ZoneGraveyard)
	require.True(t, ok)
	index.UnregisterEntity("traveler")

	events := []GameEvent{ZoneChanged{
		EntityID:     "traveler",
		ControllerID: "Alice",
		From:         state.ZoneBattlefield,
		To:           state.ZoneGraveyard,
		Entity:       before,
	}}
	got := detector.DetectTriggers(mem, events)
	require.Len(t, got, 2)
	assert.Equal(t, "traveler", got[0].SourceID, "active player's trigger first")
	assert.Equal(t, "Alice", got[0].ControllerID)
	assert.Equal(t, "artist", got[1].SourceID)
}

func TestDetectTriggersScansUncategorizedAbilities(t *testing.T) {
	mem := newTriggerState(t, "Alice", "Bob")
	registry := TriggeredAbilitiesByName{
		"Spiritlink Rider": {{Name: "lifelink-ish", Trigger: DealsDamage{}}},
	}
	putCard(mem, "rider", "Spiritlink Rider", "Alice", 1)
	detector, index := newTestDetector(t, mem, registry)
	assert.Equal(t, []string{"rider"}, index.UncategorizedEntities())

	got := detector.DetectTriggers(mem, []GameEvent{
		DamageDealt{SourceID: "rider", TargetID: "Bob", ToPlayer: true, Amount: 2},
		DamageDealt{SourceID: "rider", TargetID: "bear", Amount: 2},
		DamageDealt{SourceID: "other", TargetID: "Bob", ToPlayer: true, Amount: 2},
	})
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].EventIndex)
	assert.Equal(t, 1, got[1].EventIndex)
}

type countingRegistry struct {
	AbilityRegistry
	lookups int
}

func (r *countingRegistry) TriggeredAbilities(id string, def *card.Definition) []TriggeredAbility {
	r.lookups++
	return r.AbilityRegistry.TriggeredAbilities(id, def)
}

func TestDetectTriggersSkipsPermanentsWithoutTriggers(t *testing.T) {
	mem := newTriggerState(t, "Alice", "Bob")
	for i := range 200 {
		putCard(mem, fmt.Sprintf("bear-%d", i), "Grizzly Bears", "Alice", uint64(i+1))
	}
	registry := &countingRegistry{AbilityRegistry: TriggeredAbilitiesByName{}}
	detector, index := newTestDetector(t, mem, registry)
	require.Empty(t, index.UncategorizedEntities())

	registry.lookups = 0
	got := detector.DetectTriggers(mem, []GameEvent{LifeGained{PlayerID: "Alice", Amount: 1}})
	assert.Empty(t, got)
	assert.Zero(t, registry.lookups)
}

func TestDetectTriggersDamageBeforeDeathInOneBatch(t *testing.T) {
	mem := newTriggerState(t, "Alice", "Bob")
	registry := TriggeredAbilitiesByName{
		"Ninja of the Deep Hours": {{Name: "draw", Trigger: DealsDamageToPlayer{CombatOnly: true}}},
		"Spiritlink Rider":        {{Name: "gain", Trigger: DealsDamage{}}},
		"Soul Warden":             {{Name: "gain", Trigger: EntersBattlefield{Controller: AnyPlayer}}},
	}
	putCard(mem, "ninja", "Ninja of the Deep Hours", "Alice", 1)
	putCard(mem, "rider", "Spiritlink Rider", "Alice", 2)
	putCard(mem, "warden", "Soul Warden", "Bob", 3)
	detector, index := newTestDetector(t, mem, registry)

	events := []GameEvent{
		DamageDealt{SourceID: "ninja", TargetID: "Bob", ToPlayer: true, Amount: 3, Combat: true},
		DamageDealt{SourceID: "rider", TargetID: "blocker", Amount: 2, Combat: true},
	}
	for _, id := range []string{"ninja", "rider", "warden"} {
		before, ok := mem.Move(id, state.ZoneGraveyard)
		require.True(t, ok)
		index.UnregisterEntity(id)
		events = append(events, ZoneChanged{
			EntityID:     id,
			ControllerID: before.ControllerID,
			From:         state.ZoneBattlefield,
			To:           state.ZoneGraveyard,
			Entity:       before,
		})
	}
	// The warden left before this creature arrived.
	putCard(mem, "newcomer", "Grizzly Bears", "Bob", 4)
	events = append(events, ZoneChanged{EntityID: "newcomer", ControllerID: "Bob", From: state.ZoneHand, To: state.ZoneBattlefield})

	got := detector.DetectTriggers(mem, events)
	require.Equal(t, []string{"ninja", "rider"}, sources(got))
	assert.Equal(t, "Alice", got[0].ControllerID)
	assert.Equal(t, 0, got[0].EventIndex)
	assert.Equal(t, 1, got[1].EventIndex)
}

func TestDetectTriggersOncePerAbilityPerEvent(t *testing.T) {
	mem := newTriggerState(t, "Alice", "Bob")
	registry := TriggeredAbilitiesByName{
		"Twin Watcher": {
			{Name: "enter", Trigger: EntersBattlefield{}},
			{Name: "move", Trigger: EntersBattlefield{Controller: You}},
		},
	}
	putCard(mem, "twin", "Twin Watcher", "Alice", 1)
	detector, _ := newTestDetector(t, mem, registry)

	ev := ZoneChanged{EntityID: "x", ControllerID: "Alice", From: state.ZoneHand, To: state.ZoneBattlefield}
	got := detector.DetectTriggers(mem, []GameEvent{ev, ev})
	require.Len(t, got, 4, "two abilities times two events")
	assert.Equal(t, []int{0, 1, 0, 1}, []int{got[0].AbilityIndex, got[1].AbilityIndex, got[2].AbilityIndex, got[3].AbilityIndex})
}

func TestDetectTriggersUsesProjectedController(t *testing.T) {
	mem := newTriggerState(t, "Alice", "Bob")
	registry := TriggeredAbilitiesByName{
		"Ajani's Pridemate": {{Name: "grow", Trigger: GainsLife{Controller: You}}},
	}
	putCard(mem, "pridemate", "Ajani's Pridemate", "Alice", 1)
	detector, _ := newTestDetector(t, mem, registry)

	// Bob has stolen the pridemate.
	detector.WithControllers(func(id string) (string, bool) {
		if id == "pridemate" {
			return "Bob", true
		}
		return "", false
	})

	got := detector.DetectTriggers(mem, []GameEvent{LifeGained{PlayerID: "Alice", Amount: 3}})
	assert.Empty(t, got)

	got = detector.DetectTriggers(mem, []GameEvent{LifeGained{PlayerID: "Bob", Amount: 3}})
	require.Len(t, got, 1)
	assert.Equal(t, "Bob", got[0].ControllerID)
}

func TestDetectTriggersBeginningOfUpkeep(t *testing.T) {
	mem := newTriggerState(t, "Alice", "Bob")
	registry := TriggeredAbilitiesByName{
		"Phyrexian Arena": {{Name: "draw", Trigger: BeginningOfStep{Step: StepUpkeep, Controller: You}}},
		"Sulfuric Vortex": {{Name: "burn", Trigger: BeginningOfStep{Step: StepUpkeep}}},
	}
	putCard(mem, "arena", "Phyrexian Arena", "Alice", 1)
	putCard(mem, "vortex", "Sulfuric Vortex", "Bob", 2)
	detector, _ := newTestDetector(t, mem, registry)

	got := detector.DetectTriggers(mem, []GameEvent{StepBegan{Step: StepUpkeep, ActivePlayerID: "Alice"}})
	assert.Equal(t, []string{"arena", "vortex"}, sources(got))

	mem.SetActivePlayer("Bob")
	got = detector.DetectTriggers(mem, []GameEvent{StepBegan{Step: StepUpkeep, ActivePlayerID: "Bob"}})
	assert.Equal(t, []string{"vortex"}, sources(got))
}

func TestDetectTriggersWithoutEvents(t *testing.T) {
	mem := newTriggerState(t, "Alice")
	detector, _ := newTestDetector(t, mem, TriggeredAbilitiesByName{})
	assert.Empty(t, detector.DetectTriggers(mem, nil))
}

func TestSortAPNAPIsStable(t *testing.T) {
	triggers := []PendingTrigger{
		{SourceID: "a1", ControllerID: "Alice"},
		{SourceID: "x", ControllerID: "Nobody"},
		{SourceID: "c1", ControllerID: "Carol"},
		{SourceID: "a2", ControllerID: "Alice"},
		{SourceID: "b1", ControllerID: "Bob"},
	}
	got := SortAPNAP(triggers, []string{"Alice", "Bob", "Carol"}, "Carol")
	assert.Equal(t, []string{"c1", "a1", "a2", "b1", "x"}, sources(got))
	assert.Equal(t, "a1", triggers[0].SourceID, "input is not reordered")
}

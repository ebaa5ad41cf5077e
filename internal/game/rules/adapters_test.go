package rules

import (
	"testing"

	"github.com/magefree/mage-rules-core/internal/game/counters"
	"github.com/magefree/mage-rules-core/internal/game/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromActionEventLifeDeltaSign(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want []GameEvent
	}{
		{"gain", NewEventWithAmount(EventGainedLife, "Alice", "src", "Alice", 3),
			[]GameEvent{LifeGained{PlayerID: "Alice", Amount: 3}}},
		{"loss", NewEventWithAmount(EventLostLife, "Bob", "src", "Alice", 2),
			[]GameEvent{LifeLost{PlayerID: "Bob", Amount: 2}}},
		{"positive change", NewEventWithAmount(EventLifeChanged, "Alice", "src", "Alice", 4),
			[]GameEvent{LifeGained{PlayerID: "Alice", Amount: 4}}},
		{"negative change", NewEventWithAmount(EventLifeChanged, "Alice", "src", "Alice", -5),
			[]GameEvent{LifeLost{PlayerID: "Alice", Amount: 5}}},
		{"no change", NewEventWithAmount(EventLifeChanged, "Alice", "src", "Alice", 0), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromActionEvent(tt.ev, nil))
		})
	}
}

func TestFromActionEventZoneChangeSnapshotsEntity(t *testing.T) {
	mem := newTriggerState(t, "Alice")
	putCard(mem, "bear", "Grizzly Bears", "Alice", 7)

	got := FromActionEvent(NewZoneChangeEvent("bear", "", state.ZoneBattlefield, state.ZoneGraveyard), mem)
	require.Len(t, got, 1)
	zc, ok := got[0].(ZoneChanged)
	require.True(t, ok)
	assert.True(t, zc.Dies())
	assert.Equal(t, "Alice", zc.ControllerID)
	assert.Equal(t, "Alice", zc.OwnerID)
	require.NotNil(t, zc.Entity)

	stored, _ := mem.Entity("bear")
	assert.NotSame(t, stored, zc.Entity)
	assert.Equal(t, uint64(7), zc.Entity.Timestamp)
}

func TestFromActionEventConversions(t *testing.T) {
	combat := NewEventWithAmount(EventDamagedPlayer, "Bob", "bear", "Alice", 2)
	combat.Flag = true

	counter := NewEventWithAmount(EventCountersRemoved, "bear", "src", "Alice", 1)
	counter.Data = string(counters.TypeP1P1)

	step := NewEvent(EventStepChanged, "", "", "Bob")
	step.Data = "declare attackers"

	badStep := NewEvent(EventStepChanged, "", "", "Bob")
	badStep.Data = "second breakfast"

	etb := NewEvent(EventEntersTheBattlefield, "bear", "bear", "Alice")
	etb.FromZone = state.ZoneStack

	tests := []struct {
		name string
		ev   Event
		want []GameEvent
	}{
		{"combat damage", combat, []GameEvent{DamageDealt{SourceID: "bear", TargetID: "Bob", ToPlayer: true, Amount: 2, Combat: true}}},
		{"zero damage", NewEventWithAmount(EventDamagedPermanent, "bear", "bolt", "Bob", 0), nil},
		{"counter removed", counter, []GameEvent{CountersChanged{EntityID: "bear", Type: counters.TypeP1P1, Delta: -1}}},
		{"step", step, []GameEvent{StepBegan{Step: StepDeclareAttackers, ActivePlayerID: "Bob"}}},
		{"unknown step", badStep, nil},
		{"draw", NewEvent(EventDrewCard, "c1", "", "Alice"), []GameEvent{CardDrawn{PlayerID: "Alice", CardID: "c1"}}},
		{"attacker", NewEvent(EventAttackerDeclared, "Bob", "bear", "Alice"),
			[]GameEvent{AttackerDeclared{AttackerID: "bear", ControllerID: "Alice", DefenderID: "Bob"}}},
		{"tapped", NewEvent(EventTapped, "land", "", "Alice"), []GameEvent{PermanentTapped{PermanentID: "land", ControllerID: "Alice"}}},
		{"enters", etb, []GameEvent{ZoneChanged{EntityID: "bear", ControllerID: "Alice", From: state.ZoneStack, To: state.ZoneBattlefield}}},
		{"ignored", NewEvent(EventEmptyManaPool, "", "", "Alice"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromActionEvent(tt.ev, nil))
		})
	}
}

func TestFromEffectResult(t *testing.T) {
	r := EffectResult{
		SourceID:     "drain",
		ControllerID: "Alice",
		LifeDeltas:   map[string]int{"Bob": -2, "Alice": 2, "Carol": 0},
		Damage:       []DamageRecord{{TargetID: "bear", Amount: 1}, {TargetID: "elf", Amount: 0}},
		CardsDrawn:   map[string][]string{"Alice": {"c1", "c2"}},
		Counters:     []CounterDelta{{EntityID: "bear", Type: counters.TypeP1P1, Delta: 1}},
		Tapped:       []string{"land"},
	}

	got := FromEffectResult(r)
	assert.Equal(t, []GameEvent{
		DamageDealt{SourceID: "drain", TargetID: "bear", Amount: 1},
		LifeGained{PlayerID: "Alice", Amount: 2},
		LifeLost{PlayerID: "Bob", Amount: 2},
		CardDrawn{PlayerID: "Alice", CardID: "c1"},
		CardDrawn{PlayerID: "Alice", CardID: "c2"},
		CountersChanged{EntityID: "bear", Type: counters.TypeP1P1, Delta: 1},
		PermanentTapped{PermanentID: "land"},
	}, got)
}

func TestFromEffectResultMoves(t *testing.T) {
	snap := &state.Entity{ID: "bear", OwnerID: "Bob", ControllerID: "Alice", Zone: state.ZoneBattlefield}
	got := FromEffectResult(EffectResult{Moves: []ZoneMove{{
		EntityID: "bear", From: state.ZoneBattlefield, To: state.ZoneExile, Snapshot: snap,
	}}})
	require.Len(t, got, 1)
	zc := got[0].(ZoneChanged)
	assert.Equal(t, "Bob", zc.OwnerID)
	assert.Equal(t, "Alice", zc.ControllerID)
	assert.Equal(t, []EventCategory{CategoryLeaveBattlefield, CategoryZoneChange}, zc.Categories())
}

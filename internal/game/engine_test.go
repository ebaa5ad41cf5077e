package game

import (
	"testing"

	"github.com/magefree/mage-rules-core/internal/game/card"
	"github.com/magefree/mage-rules-core/internal/game/effects"
	"github.com/magefree/mage-rules-core/internal/game/rules"
	"github.com/magefree/mage-rules-core/internal/game/state"
	"github.com/magefree/mage-rules-core/internal/game/watchers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	testStatics = effects.StaticAbilitiesByName{
		"Glorious Anthem": {effects.Anthem(1, 1, false)},
	}
	testTriggers = rules.TriggeredAbilitiesByName{
		"Soul Warden": {{Name: "gain 1", Trigger: rules.EntersBattlefield{
			Controller: rules.AnyPlayer,
			Criteria:   effects.And{effects.IsType{Type: card.TypeCreature}, effects.Other{}},
		}}},
		"Ajani's Pridemate": {{Name: "grow", Trigger: rules.GainsLife{Controller: rules.You}}},
		"Blood Artist": {{Name: "drain", Trigger: rules.Dies{
			Controller: rules.AnyPlayer,
			Criteria:   effects.IsType{Type: card.TypeCreature},
		}}},
	}
)

func newTestEngine(t *testing.T, opts Options) (*Engine, *state.Memory) {
	t.Helper()
	mem := state.NewMemory()
	mem.AddPlayer("Alice", 20)
	mem.AddPlayer("Bob", 20)
	if opts.StaticAbilities == nil {
		opts.StaticAbilities = testStatics
	}
	if opts.TriggeredAbilities == nil {
		opts.TriggeredAbilities = testTriggers
	}
	eng, err := NewEngine(mem, opts, zaptest.NewLogger(t))
	require.NoError(t, err)
	return eng, mem
}

func enter(t *testing.T, eng *Engine, id, controller string, def *card.Definition) {
	t.Helper()
	_, err := eng.EnterBattlefield(&state.Entity{
		ID:           id,
		OwnerID:      controller,
		ControllerID: controller,
		Zone:         state.ZoneHand,
		Definition:   def,
	})
	require.NoError(t, err)
}

func TestEngineProjectsAndDetectsEnterTriggers(t *testing.T) {
	eng, _ := newTestEngine(t, Options{})

	enter(t, eng, "anthem", "Alice", card.NewPermanent("Glorious Anthem", card.TypeEnchantment))
	enter(t, eng, "warden", "Alice", card.NewCreature("Soul Warden", 1, 1))
	// Neither a noncreature nor the warden itself fires the warden.
	assert.Empty(t, eng.PendingTriggers())

	enter(t, eng, "bear", "Bob", card.NewCreature("Grizzly Bears", 2, 2))

	warden := eng.View("warden")
	require.NotNil(t, warden)
	assert.Equal(t, 2, warden.Power)
	assert.True(t, warden.SummoningSick)

	bear := eng.View("bear")
	require.NotNil(t, bear)
	assert.Equal(t, 2, bear.Power, "anthem only affects its controller's creatures")

	triggers := eng.PendingTriggers()
	require.Len(t, triggers, 1)
	assert.Equal(t, "warden", triggers[0].SourceID)
	assert.Equal(t, "Alice", triggers[0].ControllerID)
	assert.Nil(t, eng.PendingTriggers(), "events are drained")
}

func TestEngineEnterTwiceFails(t *testing.T) {
	eng, _ := newTestEngine(t, Options{})
	enter(t, eng, "bear", "Alice", card.NewCreature("Grizzly Bears", 2, 2))

	_, err := eng.EnterBattlefield(&state.Entity{ID: "bear"})
	assert.Error(t, err)
	_, err = eng.EnterBattlefield(nil)
	assert.Error(t, err)
}

func TestEngineFloatingEffectsExpire(t *testing.T) {
	eng, _ := newTestEngine(t, Options{})
	enter(t, eng, "bear", "Alice", card.NewCreature("Grizzly Bears", 2, 2))
	require.Equal(t, 2, eng.View("bear").Power)

	ids := eng.AddEffects(eng.NewEffect("giant-growth", "Alice").Targeting("bear").Pump(3, 3)...)
	require.Len(t, ids, 1)
	assert.Equal(t, 5, eng.View("bear").Power, "adding an effect invalidates cached views")

	combat := eng.AddEffects(eng.NewEffect("trick", "Alice").Targeting("bear").UntilEndOfCombat().Grant(card.KeywordFirstStrike)...)
	require.Len(t, combat, 1)
	assert.True(t, eng.View("bear").HasKeyword(card.KeywordFirstStrike))

	assert.Equal(t, combat, eng.EndCombat())
	assert.False(t, eng.View("bear").HasKeyword(card.KeywordFirstStrike))

	assert.Equal(t, ids, eng.EndTurn())
	assert.Equal(t, 2, eng.View("bear").Power)
}

func TestEngineStolenCreatureTriggersForNewController(t *testing.T) {
	eng, _ := newTestEngine(t, Options{})
	enter(t, eng, "anthem", "Alice", card.NewPermanent("Glorious Anthem", card.TypeEnchantment))
	enter(t, eng, "pridemate", "Bob", card.NewCreature("Ajani's Pridemate", 2, 2))
	eng.PendingTriggers()

	eng.AddEffects(eng.NewEffect("control-magic", "Alice").Permanent().Targeting("pridemate").
		Build(effects.ChangeControl{PlayerID: "Alice"})...)

	view := eng.View("pridemate")
	require.NotNil(t, view)
	assert.Equal(t, "Alice", view.ControllerID)
	assert.Equal(t, "Bob", view.OwnerID)
	assert.Equal(t, 3, view.Power, "the new controller's anthem applies")

	eng.Publish(rules.LifeGained{PlayerID: "Bob", Amount: 2})
	assert.Empty(t, eng.PendingTriggers())

	eng.PublishAction(rules.NewEventWithAmount(rules.EventGainedLife, "Alice", "warden", "Alice", 1))
	triggers := eng.PendingTriggers()
	require.Len(t, triggers, 1)
	assert.Equal(t, "pridemate", triggers[0].SourceID)
	assert.Equal(t, "Alice", triggers[0].ControllerID)
}

func TestEngineDeathUsesProjectedLastKnownInformation(t *testing.T) {
	eng, mem := newTestEngine(t, Options{})
	enter(t, eng, "forest", "Alice", card.NewPermanent("Forest", card.TypeLand))
	enter(t, eng, "artist", "Bob", card.NewCreature("Blood Artist", 0, 1))
	eng.PendingTriggers()

	eng.AddEffects(eng.NewEffect("animate", "Alice").Permanent().Targeting("forest").
		Build(effects.AddType{Type: card.TypeCreature}, effects.SetPT{Power: 3, Toughness: 3})...)
	require.True(t, eng.View("forest").IsCreature())

	require.True(t, eng.LeaveBattlefield("forest", state.ZoneGraveyard))
	assert.False(t, eng.LeaveBattlefield("forest", state.ZoneExile), "already gone")

	triggers := eng.PendingTriggers()
	require.Len(t, triggers, 1)
	assert.Equal(t, "artist", triggers[0].SourceID)
	assert.Equal(t, "Bob", triggers[0].ControllerID)

	zc, ok := triggers[0].Event.(rules.ZoneChanged)
	require.True(t, ok)
	assert.True(t, zc.Dies())
	assert.Equal(t, 3, zc.Entity.Characteristics().Power)

	// The animation targeted the old object and is gone.
	assert.Zero(t, eng.ContinuousEffects().Len())
	forest := eng.View("forest")
	require.NotNil(t, forest)
	assert.Equal(t, state.ZoneGraveyard, forest.Zone)
	assert.False(t, forest.IsCreature())

	stored, _ := mem.Entity("forest")
	assert.Equal(t, state.ZoneGraveyard, stored.Zone)
}

func TestEngineWatcherDrivenCondition(t *testing.T) {
	life := watchers.NewLifeGainedWatcher()
	statics := effects.StaticAbilitiesByName{
		"Lightning Cleric": {{
			Filter:        effects.Self{},
			Modifications: []effects.Modification{effects.ModifyPT{Power: 2, Toughness: 2}},
			Condition:     watchers.YouGainedLife(life, 1),
		}},
	}
	eng, _ := newTestEngine(t, Options{StaticAbilities: statics, Watchers: []rules.Watcher{life}})
	enter(t, eng, "cleric", "Alice", card.NewCreature("Lightning Cleric", 1, 1))
	assert.Equal(t, 1, eng.View("cleric").Power)

	eng.Publish(rules.LifeGained{PlayerID: "Alice", Amount: 2})
	assert.Equal(t, 3, eng.View("cleric").Power)

	eng.EndTurn()
	assert.Equal(t, 1, eng.View("cleric").Power)
}

func TestEngineBeginTurnAndSteps(t *testing.T) {
	triggers := rules.TriggeredAbilitiesByName{
		"Phyrexian Arena": {{Name: "draw", Trigger: rules.BeginningOfStep{Step: rules.StepUpkeep, Controller: rules.You}}},
	}
	eng, mem := newTestEngine(t, Options{TriggeredAbilities: triggers})
	enter(t, eng, "arena", "Bob", card.NewPermanent("Phyrexian Arena", card.TypeEnchantment))
	enter(t, eng, "bear", "Alice", card.NewCreature("Grizzly Bears", 2, 2))

	eng.AddEffects(eng.NewEffect("fog-bank", "Bob").UntilYourNextTurn().Targeting("bear").CantAttack()...)
	require.True(t, eng.View("bear").HasKeyword(card.KeywordCantAttack))

	eng.BeginTurn("Bob")
	assert.Equal(t, "Bob", mem.ActivePlayer())
	assert.Zero(t, eng.ContinuousEffects().Len())

	eng.BeginStep(rules.StepUpkeep)
	pending := eng.PendingTriggers()
	require.Len(t, pending, 1)
	assert.Equal(t, "arena", pending[0].SourceID)
}

func TestEngineTimestampsContinueFromState(t *testing.T) {
	mem := state.NewMemory()
	mem.AddPlayer("Alice", 20)
	mem.Put(&state.Entity{ID: "old", ControllerID: "Alice", Zone: state.ZoneBattlefield, Timestamp: 41,
		Definition: card.NewCreature("Old Timer", 1, 1)})

	eng, err := NewEngine(mem, Options{}, nil)
	require.NoError(t, err)
	enter(t, eng, "new", "Alice", card.NewCreature("Newcomer", 1, 1))

	stored, _ := mem.Entity("new")
	assert.Equal(t, uint64(42), stored.Timestamp)

	_, err = NewEngine(nil, Options{}, nil)
	assert.Error(t, err)
}

func TestEngineStacksTriggersInAPNAPOrder(t *testing.T) {
	eng, _ := newTestEngine(t, Options{})
	enter(t, eng, "alice-warden", "Alice", card.NewCreature("Soul Warden", 1, 1))
	enter(t, eng, "bob-warden", "Bob", card.NewCreature("Soul Warden", 1, 1))
	eng.PendingTriggers()

	enter(t, eng, "bear", "Bob", card.NewCreature("Grizzly Bears", 2, 2))
	pushed := eng.StackTriggers()
	require.Len(t, pushed, 2)
	assert.Equal(t, 2, eng.Stack().Len())

	// Alice is active, so Bob's trigger goes on last and resolves first.
	top, err := eng.Stack().Pop()
	require.NoError(t, err)
	assert.Equal(t, "bob-warden", top.SourceID)
	bottom, err := eng.Stack().Pop()
	require.NoError(t, err)
	assert.Equal(t, "alice-warden", bottom.SourceID)

	assert.Empty(t, eng.StackTriggers())
}

func TestEngineFloatingEffectOutlivesItsSource(t *testing.T) {
	eng, mem := newTestEngine(t, Options{})
	enter(t, eng, "token", "Alice", card.NewCreature("Soldier", 1, 1))
	enter(t, eng, "bear", "Alice", card.NewCreature("Grizzly Bears", 2, 2))

	eng.AddEffects(eng.NewEffect("token", "Alice").
		Affecting(effects.ControlledBy{Criteria: effects.IsType{Type: card.TypeCreature}}).Pump(1, 1)...)
	require.Equal(t, 3, eng.View("bear").Power)

	require.True(t, eng.LeaveBattlefield("token", state.ZoneGraveyard))
	mem.Remove("token")
	require.Equal(t, 1, eng.ContinuousEffects().Len())

	bear := eng.View("bear")
	require.NotNil(t, bear)
	assert.Equal(t, 3, bear.Power)
	assert.Equal(t, 3, bear.Toughness)
}

func TestEngineFloatingEffectKeepsItsController(t *testing.T) {
	eng, _ := newTestEngine(t, Options{})
	enter(t, eng, "shaman", "Alice", card.NewCreature("Goblin Shaman", 1, 1))
	enter(t, eng, "alice-bear", "Alice", card.NewCreature("Grizzly Bears", 2, 2))
	enter(t, eng, "bob-bear", "Bob", card.NewCreature("Grizzly Bears", 2, 2))

	eng.AddEffects(eng.NewEffect("shaman", "Alice").
		Affecting(effects.ControlledBy{Criteria: effects.IsType{Type: card.TypeCreature}}).Pump(1, 1)...)
	eng.AddEffects(eng.NewEffect("control-magic", "Bob").Permanent().Targeting("shaman").
		Build(effects.ChangeControl{PlayerID: "Bob"})...)

	require.Equal(t, "Bob", eng.View("shaman").ControllerID)
	assert.Equal(t, 3, eng.View("alice-bear").Power, "the effect stays with the player who created it")
	assert.Equal(t, 2, eng.View("bob-bear").Power)
	assert.Equal(t, 1, eng.View("shaman").Power)
}

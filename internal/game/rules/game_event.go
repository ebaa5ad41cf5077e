package rules

import (
	"fmt"

	"github.com/magefree/mage-rules-core/internal/game/counters"
	"github.com/magefree/mage-rules-core/internal/game/state"
)

// EventCategory is the closed set of event categories used for bus dispatch and for
// narrowing trigger candidates.
type EventCategory int

const (
	CategoryEnterBattlefield EventCategory = iota
	CategoryLeaveBattlefield
	CategoryZoneChange
	CategorySpellCast
	CategoryAbilityActivated
	CategoryDamageToPlayer
	CategoryDamageToPermanent
	CategoryLifeGain
	CategoryLifeLoss
	CategoryDraw
	CategoryDiscard
	CategoryAttack
	CategoryBlock
	CategoryStep
	CategoryTap
	CategoryUntap
	CategoryCounters

	categoryCount
)

var categoryNames = [categoryCount]string{
	CategoryEnterBattlefield:  "ENTER_BATTLEFIELD",
	CategoryLeaveBattlefield:  "LEAVE_BATTLEFIELD",
	CategoryZoneChange:        "ZONE_CHANGE",
	CategorySpellCast:         "SPELL_CAST",
	CategoryAbilityActivated:  "ABILITY_ACTIVATED",
	CategoryDamageToPlayer:    "DAMAGE_TO_PLAYER",
	CategoryDamageToPermanent: "DAMAGE_TO_PERMANENT",
	CategoryLifeGain:          "LIFE_GAIN",
	CategoryLifeLoss:          "LIFE_LOSS",
	CategoryDraw:              "DRAW",
	CategoryDiscard:           "DISCARD",
	CategoryAttack:            "ATTACK",
	CategoryBlock:             "BLOCK",
	CategoryStep:              "STEP",
	CategoryTap:               "TAP",
	CategoryUntap:             "UNTAP",
	CategoryCounters:          "COUNTERS",
}

func (c EventCategory) String() string {
	if c >= 0 && c < categoryCount {
		return categoryNames[c]
	}
	return fmt.Sprintf("CATEGORY_%d", int(c))
}

// Categories returns every category.
func Categories() []EventCategory {
	out := make([]EventCategory, 0, categoryCount)
	for c := EventCategory(0); c < categoryCount; c++ {
		out = append(out, c)
	}
	return out
}

// GameEvent is the unified event vocabulary the bus publishes and triggers match
// against. The set of variants is closed.
type GameEvent interface {
	// Categories lists every category the event belongs to; the first is primary.
	Categories() []EventCategory
	// Kind is a short name for logging.
	Kind() string
	gameEvent()
}

// ZoneChanged reports an object moving between zones. Entity is the object as it last
// existed in the zone it left, so leaves-the-battlefield triggers can see it.
type ZoneChanged struct {
	EntityID     string
	OwnerID      string
	ControllerID string
	From         state.Zone
	To           state.Zone
	Entity       *state.Entity
}

func (e ZoneChanged) Categories() []EventCategory {
	switch {
	case e.To == state.ZoneBattlefield && e.From != state.ZoneBattlefield:
		return []EventCategory{CategoryEnterBattlefield, CategoryZoneChange}
	case e.From == state.ZoneBattlefield && e.To != state.ZoneBattlefield:
		return []EventCategory{CategoryLeaveBattlefield, CategoryZoneChange}
	default:
		return []EventCategory{CategoryZoneChange}
	}
}

func (ZoneChanged) Kind() string { return "zone_changed" }
func (ZoneChanged) gameEvent()   {}

// Dies reports whether this is a permanent going to a graveyard from the battlefield.
func (e ZoneChanged) Dies() bool {
	return e.From == state.ZoneBattlefield && e.To == state.ZoneGraveyard
}

// SpellCast reports a spell being cast. Entity is the spell as it was put on the stack.
type SpellCast struct {
	SpellID      string
	ControllerID string
	Entity       *state.Entity
}

func (SpellCast) Categories() []EventCategory { return []EventCategory{CategorySpellCast} }
func (SpellCast) Kind() string                { return "spell_cast" }
func (SpellCast) gameEvent()                  {}

// AbilityActivated reports an activated ability being put on the stack.
type AbilityActivated struct {
	SourceID     string
	ControllerID string
	AbilityID    string
}

func (AbilityActivated) Categories() []EventCategory {
	return []EventCategory{CategoryAbilityActivated}
}
func (AbilityActivated) Kind() string { return "ability_activated" }
func (AbilityActivated) gameEvent()   {}

// DamageDealt reports damage from SourceID to a player or permanent.
type DamageDealt struct {
	SourceID string
	TargetID string
	ToPlayer bool
	Amount   int
	Combat   bool
}

func (e DamageDealt) Categories() []EventCategory {
	if e.ToPlayer {
		return []EventCategory{CategoryDamageToPlayer}
	}
	return []EventCategory{CategoryDamageToPermanent}
}
func (DamageDealt) Kind() string { return "damage_dealt" }
func (DamageDealt) gameEvent()   {}

// LifeGained reports a player gaining life.
type LifeGained struct {
	PlayerID string
	Amount   int
}

func (LifeGained) Categories() []EventCategory { return []EventCategory{CategoryLifeGain} }
func (LifeGained) Kind() string                { return "life_gained" }
func (LifeGained) gameEvent()                  {}

// LifeLost reports a player losing life.
type LifeLost struct {
	PlayerID string
	Amount   int
}

func (LifeLost) Categories() []EventCategory { return []EventCategory{CategoryLifeLoss} }
func (LifeLost) Kind() string                { return "life_lost" }
func (LifeLost) gameEvent()                  {}

// CardDrawn reports a player drawing a card.
type CardDrawn struct {
	PlayerID string
	CardID   string
}

func (CardDrawn) Categories() []EventCategory { return []EventCategory{CategoryDraw} }
func (CardDrawn) Kind() string                { return "card_drawn" }
func (CardDrawn) gameEvent()                  {}

// CardDiscarded reports a player discarding a card.
type CardDiscarded struct {
	PlayerID string
	CardID   string
}

func (CardDiscarded) Categories() []EventCategory { return []EventCategory{CategoryDiscard} }
func (CardDiscarded) Kind() string                { return "card_discarded" }
func (CardDiscarded) gameEvent()                  {}

// AttackerDeclared reports a creature being declared as an attacker.
type AttackerDeclared struct {
	AttackerID   string
	ControllerID string
	DefenderID   string
}

func (AttackerDeclared) Categories() []EventCategory { return []EventCategory{CategoryAttack} }
func (AttackerDeclared) Kind() string                { return "attacker_declared" }
func (AttackerDeclared) gameEvent()                  {}

// BlockerDeclared reports a creature being declared as a blocker.
type BlockerDeclared struct {
	BlockerID    string
	ControllerID string
	AttackerID   string
}

func (BlockerDeclared) Categories() []EventCategory { return []EventCategory{CategoryBlock} }
func (BlockerDeclared) Kind() string                { return "blocker_declared" }
func (BlockerDeclared) gameEvent()                  {}

// StepBegan reports the start of a step.
type StepBegan struct {
	Step           Step
	ActivePlayerID string
}

func (StepBegan) Categories() []EventCategory { return []EventCategory{CategoryStep} }
func (StepBegan) Kind() string                { return "step_began" }
func (StepBegan) gameEvent()                  {}

// PermanentTapped reports a permanent becoming tapped.
type PermanentTapped struct {
	PermanentID  string
	ControllerID string
}

func (PermanentTapped) Categories() []EventCategory { return []EventCategory{CategoryTap} }
func (PermanentTapped) Kind() string                { return "permanent_tapped" }
func (PermanentTapped) gameEvent()                  {}

// PermanentUntapped reports a permanent becoming untapped.
type PermanentUntapped struct {
	PermanentID  string
	ControllerID string
}

func (PermanentUntapped) Categories() []EventCategory { return []EventCategory{CategoryUntap} }
func (PermanentUntapped) Kind() string                { return "permanent_untapped" }
func (PermanentUntapped) gameEvent()                  {}

// CountersChanged reports counters being placed on (Delta > 0) or removed from an object.
type CountersChanged struct {
	EntityID string
	Type     counters.Type
	Delta    int
}

func (CountersChanged) Categories() []EventCategory { return []EventCategory{CategoryCounters} }
func (CountersChanged) Kind() string                { return "counters_changed" }
func (CountersChanged) gameEvent()                  {}

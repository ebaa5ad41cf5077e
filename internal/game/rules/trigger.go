package rules

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/magefree/mage-rules-core/internal/game/card"
	"github.com/magefree/mage-rules-core/internal/game/counters"
	"github.com/magefree/mage-rules-core/internal/game/effects"
	"github.com/magefree/mage-rules-core/internal/game/state"
)

// Subject is the permanent whose triggered ability is being checked.
type Subject struct {
	ID           string
	ControllerID string
	// Entity is the canonical object, or its last known information once it has left
	// the battlefield.
	Entity *state.Entity
}

// Trigger is a trigger condition. Each kind maps to at most one event category; kinds
// without one are checked against every permanent for every event.
type Trigger interface {
	// Category returns the category the trigger listens to, or false when the kind is
	// uncategorized.
	Category() (EventCategory, bool)
	matches(ev GameEvent, self Subject, active string) bool
}

// Controller qualifies whose action a trigger responds to.
type Controller int

const (
	AnyPlayer Controller = iota
	You
	Opponent
)

func (c Controller) allows(self Subject, playerID string) bool {
	switch c {
	case You:
		return playerID == self.ControllerID
	case Opponent:
		return playerID != "" && playerID != self.ControllerID
	default:
		return true
	}
}

func criteriaMatch(c effects.Criteria, self Subject, e *state.Entity) bool {
	if c == nil {
		return true
	}
	if e == nil {
		return false
	}
	fc := effects.FilterContext{SourceID: self.ID, ControllerID: self.ControllerID}
	return c.Matches(effects.BaseAttributes(e), fc)
}

// EntersBattlefield: "When[ever] <self | a <criteria> [you control]> enters".
type EntersBattlefield struct {
	Self       bool
	Controller Controller
	Criteria   effects.Criteria
}

func (EntersBattlefield) Category() (EventCategory, bool) { return CategoryEnterBattlefield, true }

func (t EntersBattlefield) matches(ev GameEvent, self Subject, _ string) bool {
	zc, ok := ev.(ZoneChanged)
	if !ok || zc.To != state.ZoneBattlefield || zc.From == state.ZoneBattlefield {
		return false
	}
	if t.Self {
		return zc.EntityID == self.ID
	}
	return t.Controller.allows(self, zc.ControllerID) && criteriaMatch(t.Criteria, self, zc.Entity)
}

// Dies: "When[ever] <self | a <criteria>> dies". Matches on last known information.
type Dies struct {
	Self       bool
	Controller Controller
	Criteria   effects.Criteria
}

func (Dies) Category() (EventCategory, bool) { return CategoryLeaveBattlefield, true }

func (t Dies) matches(ev GameEvent, self Subject, _ string) bool {
	zc, ok := ev.(ZoneChanged)
	if !ok || !zc.Dies() {
		return false
	}
	if t.Self {
		return zc.EntityID == self.ID
	}
	return t.Controller.allows(self, zc.ControllerID) && criteriaMatch(t.Criteria, self, zc.Entity)
}

// LeavesBattlefield: "When[ever] <self | a permanent> leaves the battlefield".
type LeavesBattlefield struct {
	Self       bool
	Controller Controller
	Criteria   effects.Criteria
}

func (LeavesBattlefield) Category() (EventCategory, bool) { return CategoryLeaveBattlefield, true }

func (t LeavesBattlefield) matches(ev GameEvent, self Subject, _ string) bool {
	zc, ok := ev.(ZoneChanged)
	if !ok || zc.From != state.ZoneBattlefield || zc.To == state.ZoneBattlefield {
		return false
	}
	if t.Self {
		return zc.EntityID == self.ID
	}
	return t.Controller.allows(self, zc.ControllerID) && criteriaMatch(t.Criteria, self, zc.Entity)
}

// SpellCastTrigger: "Whenever <player> casts a <criteria> spell".
type SpellCastTrigger struct {
	Controller Controller
	Criteria   effects.Criteria
}

func (SpellCastTrigger) Category() (EventCategory, bool) { return CategorySpellCast, true }

func (t SpellCastTrigger) matches(ev GameEvent, self Subject, _ string) bool {
	sc, ok := ev.(SpellCast)
	if !ok {
		return false
	}
	return t.Controller.allows(self, sc.ControllerID) && criteriaMatch(t.Criteria, self, sc.Entity)
}

// DealsDamage: "Whenever <self> deals damage". The target may be a player or a
// permanent, so the kind is uncategorized.
type DealsDamage struct {
	CombatOnly bool
}

func (DealsDamage) Category() (EventCategory, bool) { return 0, false }

func (t DealsDamage) matches(ev GameEvent, self Subject, _ string) bool {
	d, ok := ev.(DamageDealt)
	if !ok || d.Amount <= 0 || d.SourceID != self.ID {
		return false
	}
	return !t.CombatOnly || d.Combat
}

// DealsDamageToPlayer: "Whenever <self> deals [combat] damage to a player".
type DealsDamageToPlayer struct {
	CombatOnly bool
	// OpponentOnly limits the trigger to damage dealt to an opponent.
	OpponentOnly bool
}

func (DealsDamageToPlayer) Category() (EventCategory, bool) { return CategoryDamageToPlayer, true }

func (t DealsDamageToPlayer) matches(ev GameEvent, self Subject, _ string) bool {
	d, ok := ev.(DamageDealt)
	if !ok || !d.ToPlayer || d.Amount <= 0 || d.SourceID != self.ID {
		return false
	}
	if t.CombatOnly && !d.Combat {
		return false
	}
	return !t.OpponentOnly || d.TargetID != self.ControllerID
}

// IsDealtDamage: "Whenever <self> is dealt damage".
type IsDealtDamage struct {
	CombatOnly bool
}

func (IsDealtDamage) Category() (EventCategory, bool) { return CategoryDamageToPermanent, true }

func (t IsDealtDamage) matches(ev GameEvent, self Subject, _ string) bool {
	d, ok := ev.(DamageDealt)
	if !ok || d.ToPlayer || d.Amount <= 0 || d.TargetID != self.ID {
		return false
	}
	return !t.CombatOnly || d.Combat
}

// GainsLife: "Whenever <player> gains life".
type GainsLife struct {
	Controller Controller
}

func (GainsLife) Category() (EventCategory, bool) { return CategoryLifeGain, true }

func (t GainsLife) matches(ev GameEvent, self Subject, _ string) bool {
	lg, ok := ev.(LifeGained)
	return ok && lg.Amount > 0 && t.Controller.allows(self, lg.PlayerID)
}

// LosesLife: "Whenever <player> loses life".
type LosesLife struct {
	Controller Controller
}

func (LosesLife) Category() (EventCategory, bool) { return CategoryLifeLoss, true }

func (t LosesLife) matches(ev GameEvent, self Subject, _ string) bool {
	ll, ok := ev.(LifeLost)
	return ok && ll.Amount > 0 && t.Controller.allows(self, ll.PlayerID)
}

// Draws: "Whenever <player> draws a card".
type Draws struct {
	Controller Controller
}

func (Draws) Category() (EventCategory, bool) { return CategoryDraw, true }

func (t Draws) matches(ev GameEvent, self Subject, _ string) bool {
	cd, ok := ev.(CardDrawn)
	return ok && t.Controller.allows(self, cd.PlayerID)
}

// Attacks: "Whenever <self | a creature you control> attacks".
type Attacks struct {
	Self       bool
	Controller Controller
}

func (Attacks) Category() (EventCategory, bool) { return CategoryAttack, true }

func (t Attacks) matches(ev GameEvent, self Subject, _ string) bool {
	a, ok := ev.(AttackerDeclared)
	if !ok {
		return false
	}
	if t.Self {
		return a.AttackerID == self.ID
	}
	return t.Controller.allows(self, a.ControllerID)
}

// Blocks: "Whenever <self> blocks".
type Blocks struct {
	Self       bool
	Controller Controller
}

func (Blocks) Category() (EventCategory, bool) { return CategoryBlock, true }

func (t Blocks) matches(ev GameEvent, self Subject, _ string) bool {
	b, ok := ev.(BlockerDeclared)
	if !ok {
		return false
	}
	if t.Self {
		return b.BlockerID == self.ID
	}
	return t.Controller.allows(self, b.ControllerID)
}

// BeginningOfStep: "At the beginning of [your | each opponent's | each] <step>".
type BeginningOfStep struct {
	Step       Step
	Controller Controller
}

func (BeginningOfStep) Category() (EventCategory, bool) { return CategoryStep, true }

func (t BeginningOfStep) matches(ev GameEvent, self Subject, active string) bool {
	sb, ok := ev.(StepBegan)
	if !ok || sb.Step != t.Step {
		return false
	}
	player := sb.ActivePlayerID
	if player == "" {
		player = active
	}
	return t.Controller.allows(self, player)
}

// BecomesTapped: "Whenever <self> becomes tapped".
type BecomesTapped struct {
	Self bool
}

func (BecomesTapped) Category() (EventCategory, bool) { return CategoryTap, true }

func (t BecomesTapped) matches(ev GameEvent, self Subject, _ string) bool {
	pt, ok := ev.(PermanentTapped)
	if !ok {
		return false
	}
	return !t.Self || pt.PermanentID == self.ID
}

// CounterPlaced: "Whenever one or more <type> counters are put on <self>". An empty
// Type matches any counter.
type CounterPlaced struct {
	Self bool
	Type counters.Type
}

func (CounterPlaced) Category() (EventCategory, bool) { return CategoryCounters, true }

func (t CounterPlaced) matches(ev GameEvent, self Subject, _ string) bool {
	cc, ok := ev.(CountersChanged)
	if !ok || cc.Delta <= 0 {
		return false
	}
	if t.Type != "" && cc.Type != t.Type {
		return false
	}
	return !t.Self || cc.EntityID == self.ID
}

// TriggeredAbility is one triggered ability of an object.
type TriggeredAbility struct {
	Name    string
	Trigger Trigger
	// Optional abilities say "you may"; the choice is made on resolution.
	Optional bool
}

// Category forwards to the trigger.
func (a TriggeredAbility) Category() (EventCategory, bool) {
	if a.Trigger == nil {
		return 0, false
	}
	return a.Trigger.Category()
}

// AbilityRegistry looks up the triggered abilities of an object.
type AbilityRegistry interface {
	TriggeredAbilities(entityID string, def *card.Definition) []TriggeredAbility
}

// TriggeredAbilitiesByName is a registry keyed by card name.
type TriggeredAbilitiesByName map[string][]TriggeredAbility

func (r TriggeredAbilitiesByName) TriggeredAbilities(_ string, def *card.Definition) []TriggeredAbility {
	if def == nil {
		return nil
	}
	return r[def.Name]
}

// PendingTrigger is a triggered ability waiting to be put on the stack.
type PendingTrigger struct {
	ID           string
	SourceID     string
	ControllerID string
	Ability      TriggeredAbility
	AbilityIndex int
	Event        GameEvent
	// EventIndex is the position of Event in the detected batch.
	EventIndex int
}

func pendingTriggerID(version state.Version, sourceID string, ability, event int) string {
	seed := fmt.Sprintf("%s|%s|%d|%d", version, sourceID, ability, event)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String()
}

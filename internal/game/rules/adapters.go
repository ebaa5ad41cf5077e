package rules

import (
	"slices"

	"github.com/magefree/mage-rules-core/internal/game/counters"
	"github.com/magefree/mage-rules-core/internal/game/state"
)

// FromActionEvent converts an action-layer event into zero or more game events.
// src is used to snapshot objects for last known information; pass the state as it was
// before the change when one is available. Unknown event types produce nothing.
func FromActionEvent(ev Event, src state.Source) []GameEvent {
	switch ev.Type {
	case EventZoneChange, EventEntersTheBattlefield:
		from, to := ev.FromZone, ev.Zone
		if ev.Type == EventEntersTheBattlefield {
			to = state.ZoneBattlefield
		}
		zc := ZoneChanged{
			EntityID:     ev.TargetID,
			ControllerID: ev.Controller,
			From:         from,
			To:           to,
		}
		if src != nil {
			if e, ok := src.Entity(ev.TargetID); ok {
				snap := e.Clone()
				zc.Entity = snap
				zc.OwnerID = snap.OwnerID
				if zc.ControllerID == "" {
					zc.ControllerID = snap.ControllerID
				}
			}
		}
		return []GameEvent{zc}

	case EventSpellCast:
		sc := SpellCast{SpellID: ev.TargetID, ControllerID: ev.PlayerID}
		if src != nil {
			if e, ok := src.Entity(ev.TargetID); ok {
				sc.Entity = e.Clone()
			}
		}
		return []GameEvent{sc}

	case EventActivatedAbility:
		return []GameEvent{AbilityActivated{SourceID: ev.SourceID, ControllerID: ev.PlayerID, AbilityID: ev.Data}}

	case EventDamagedPlayer, EventDamagedPermanent:
		if ev.Amount <= 0 {
			return nil
		}
		return []GameEvent{DamageDealt{
			SourceID: ev.SourceID,
			TargetID: ev.TargetID,
			ToPlayer: ev.Type == EventDamagedPlayer,
			Amount:   ev.Amount,
			Combat:   ev.Flag,
		}}

	case EventGainedLife:
		return lifeEvents(ev.TargetID, ev.Amount)
	case EventLostLife:
		return lifeEvents(ev.TargetID, -ev.Amount)
	case EventLifeChanged:
		return lifeEvents(ev.TargetID, ev.Amount)

	case EventDrewCard:
		return []GameEvent{CardDrawn{PlayerID: ev.PlayerID, CardID: ev.TargetID}}
	case EventDiscardedCard:
		return []GameEvent{CardDiscarded{PlayerID: ev.PlayerID, CardID: ev.TargetID}}

	case EventAttackerDeclared:
		return []GameEvent{AttackerDeclared{AttackerID: ev.SourceID, ControllerID: ev.PlayerID, DefenderID: ev.TargetID}}
	case EventBlockerDeclared:
		return []GameEvent{BlockerDeclared{BlockerID: ev.SourceID, ControllerID: ev.PlayerID, AttackerID: ev.TargetID}}

	case EventTapped:
		return []GameEvent{PermanentTapped{PermanentID: ev.TargetID, ControllerID: ev.Controller}}
	case EventUntapped:
		return []GameEvent{PermanentUntapped{PermanentID: ev.TargetID, ControllerID: ev.Controller}}

	case EventCountersAdded, EventCountersRemoved:
		if ev.Amount == 0 {
			return nil
		}
		delta := ev.Amount
		if ev.Type == EventCountersRemoved {
			delta = -delta
		}
		return []GameEvent{CountersChanged{EntityID: ev.TargetID, Type: counters.Type(ev.Data), Delta: delta}}

	case EventStepChanged:
		step, ok := ParseStep(ev.Data)
		if !ok {
			return nil
		}
		return []GameEvent{StepBegan{Step: step, ActivePlayerID: ev.PlayerID}}

	default:
		return nil
	}
}

// lifeEvents turns a signed life delta into a gain, a loss, or nothing.
func lifeEvents(playerID string, delta int) []GameEvent {
	switch {
	case delta > 0:
		return []GameEvent{LifeGained{PlayerID: playerID, Amount: delta}}
	case delta < 0:
		return []GameEvent{LifeLost{PlayerID: playerID, Amount: -delta}}
	default:
		return nil
	}
}

// DamageRecord is one instance of damage in an effect result.
type DamageRecord struct {
	SourceID string
	TargetID string
	ToPlayer bool
	Amount   int
	Combat   bool
}

// ZoneMove is one object moved by an effect. Snapshot is the object before the move.
type ZoneMove struct {
	EntityID string
	From     state.Zone
	To       state.Zone
	Snapshot *state.Entity
}

// CounterDelta is a change in the counters on one object.
type CounterDelta struct {
	EntityID string
	Type     counters.Type
	Delta    int
}

// EffectResult summarizes what one resolved effect did.
type EffectResult struct {
	SourceID     string
	ControllerID string
	// LifeDeltas maps player ids to their net life change.
	LifeDeltas map[string]int
	Damage     []DamageRecord
	// CardsDrawn maps player ids to the cards they drew, in draw order.
	CardsDrawn map[string][]string
	Discarded  map[string][]string
	Moves      []ZoneMove
	Counters   []CounterDelta
	Tapped     []string
	Untapped   []string
}

// FromEffectResult expands an effect result into game events. Map-keyed parts are
// emitted in sorted player order.
func FromEffectResult(r EffectResult) []GameEvent {
	var out []GameEvent
	for _, m := range r.Moves {
		zc := ZoneChanged{EntityID: m.EntityID, From: m.From, To: m.To, Entity: m.Snapshot}
		if m.Snapshot != nil {
			zc.OwnerID = m.Snapshot.OwnerID
			zc.ControllerID = m.Snapshot.ControllerID
		}
		out = append(out, zc)
	}
	for _, d := range r.Damage {
		if d.Amount <= 0 {
			continue
		}
		source := d.SourceID
		if source == "" {
			source = r.SourceID
		}
		out = append(out, DamageDealt{SourceID: source, TargetID: d.TargetID, ToPlayer: d.ToPlayer, Amount: d.Amount, Combat: d.Combat})
	}
	for _, p := range sortedPlayers(r.LifeDeltas) {
		out = append(out, lifeEvents(p, r.LifeDeltas[p])...)
	}
	for _, p := range sortedPlayers(r.CardsDrawn) {
		for _, id := range r.CardsDrawn[p] {
			out = append(out, CardDrawn{PlayerID: p, CardID: id})
		}
	}
	for _, p := range sortedPlayers(r.Discarded) {
		for _, id := range r.Discarded[p] {
			out = append(out, CardDiscarded{PlayerID: p, CardID: id})
		}
	}
	for _, c := range r.Counters {
		if c.Delta != 0 {
			out = append(out, CountersChanged{EntityID: c.EntityID, Type: c.Type, Delta: c.Delta})
		}
	}
	for _, id := range r.Tapped {
		out = append(out, PermanentTapped{PermanentID: id})
	}
	for _, id := range r.Untapped {
		out = append(out, PermanentUntapped{PermanentID: id})
	}
	return out
}

func sortedPlayers[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

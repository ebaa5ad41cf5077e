package rules

import (
	"time"

	"github.com/magefree/mage-rules-core/internal/game/state"
)

// EventType names an action-execution event as emitted by the action layer.
// FromActionEvent converts the types it understands into GameEvents.
type EventType string

const (
	EventZoneChange           EventType = "ZONE_CHANGE"
	EventEntersTheBattlefield EventType = "ENTERS_THE_BATTLEFIELD"
	EventDrewCard             EventType = "DREW_CARD"
	EventDiscardedCard        EventType = "DISCARDED_CARD"
	EventDamagedPlayer        EventType = "DAMAGED_PLAYER"
	EventDamagedPermanent     EventType = "DAMAGED_PERMANENT"
	EventGainedLife           EventType = "GAINED_LIFE"
	EventLostLife             EventType = "LOST_LIFE"
	EventLifeChanged          EventType = "LIFE_CHANGED"
	EventSpellCast            EventType = "SPELL_CAST"
	EventActivatedAbility     EventType = "ACTIVATED_ABILITY"
	EventAttackerDeclared     EventType = "ATTACKER_DECLARED"
	EventBlockerDeclared      EventType = "BLOCKER_DECLARED"
	EventTapped               EventType = "TAPPED"
	EventUntapped             EventType = "UNTAPPED"
	EventCountersAdded        EventType = "COUNTERS_ADDED"
	EventCountersRemoved      EventType = "COUNTERS_REMOVED"
	EventStepChanged          EventType = "STEP_CHANGED"
	EventDeclaredAttackers    EventType = "DECLARED_ATTACKERS"
	EventEmptyManaPool        EventType = "EMPTY_MANA_POOL"
)

// Event is a state change reported by the action layer.
type Event struct {
	Type       EventType
	ID         string // Unique event ID
	TargetID   string // ID of the target (card, player, etc.)
	SourceID   string // ID of the source ability/object
	Controller string // Player ID of the controller
	PlayerID   string // Player ID (often same as Controller, but can differ)
	Amount     int    // Numeric value (damage, life, counters, etc.)
	Flag       bool   // Boolean flag (combat damage, effect vs cost, etc.)
	Data       string // Additional string data (counter type, step name)
	FromZone   state.Zone
	Zone       state.Zone // Destination zone for zone changes
	Timestamp  time.Time
	Metadata   map[string]string
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, targetID, sourceID, controllerID string) Event {
	return Event{
		Type:       eventType,
		TargetID:   targetID,
		SourceID:   sourceID,
		Controller: controllerID,
		PlayerID:   controllerID,
		Timestamp:  time.Now(),
		Metadata:   make(map[string]string),
	}
}

// NewEventWithAmount creates a new event with an amount value.
func NewEventWithAmount(eventType EventType, targetID, sourceID, controllerID string, amount int) Event {
	evt := NewEvent(eventType, targetID, sourceID, controllerID)
	evt.Amount = amount
	return evt
}

// NewEventWithFlag creates a new event with a flag value.
func NewEventWithFlag(eventType EventType, targetID, sourceID, controllerID string, flag bool) Event {
	evt := NewEvent(eventType, targetID, sourceID, controllerID)
	evt.Flag = flag
	return evt
}

// NewZoneChangeEvent creates a zone change event for targetID.
func NewZoneChangeEvent(targetID, controllerID string, from, to state.Zone) Event {
	evt := NewEvent(EventZoneChange, targetID, targetID, controllerID)
	evt.FromZone = from
	evt.Zone = to
	return evt
}

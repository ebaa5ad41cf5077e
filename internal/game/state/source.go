package state

import (
	"fmt"

	"github.com/magefree/mage-rules-core/internal/game/card"
	"github.com/magefree/mage-rules-core/internal/game/counters"
)

// Zone identifies where an object currently is.
type Zone int

const (
	ZoneNone Zone = iota
	ZoneLibrary
	ZoneHand
	ZoneBattlefield
	ZoneGraveyard
	ZoneStack
	ZoneExile
	ZoneCommand
)

// String returns the zone name in upper case, matching the event metadata convention.
func (z Zone) String() string {
	switch z {
	case ZoneLibrary:
		return "LIBRARY"
	case ZoneHand:
		return "HAND"
	case ZoneBattlefield:
		return "BATTLEFIELD"
	case ZoneGraveyard:
		return "GRAVEYARD"
	case ZoneStack:
		return "STACK"
	case ZoneExile:
		return "EXILE"
	case ZoneCommand:
		return "COMMAND"
	default:
		return "NONE"
	}
}

// ParseZone is the inverse of Zone.String.
func ParseZone(s string) Zone {
	for z := ZoneLibrary; z <= ZoneCommand; z++ {
		if z.String() == s {
			return z
		}
	}
	return ZoneNone
}

// Version identifies one canonical-state snapshot. Game distinguishes independent
// stores (for example parallel simulations) and Seq increases on every mutation.
type Version struct {
	Game string
	Seq  uint64
}

// String renders the version for logging.
func (v Version) String() string {
	return fmt.Sprintf("%s@%d", v.Game, v.Seq)
}

// Entity is the canonical, unprojected record of one game object.
type Entity struct {
	ID           string
	OwnerID      string
	ControllerID string
	Zone         Zone
	Definition   *card.Definition
	// Base overrides the definition's characteristics once the object has materialised
	// its own components. Nil means the definition is authoritative.
	Base          *card.Characteristics
	Counters      counters.Set
	AttachedTo    string
	Damage        int
	Tapped        bool
	SummoningSick bool
	Token         bool
	// Timestamp is the object's timestamp for rule 613.7 (usually when it entered its zone).
	Timestamp uint64
}

// Characteristics returns the base characteristics, falling back to the definition.
func (e *Entity) Characteristics() card.Characteristics {
	if e == nil {
		return card.Characteristics{}
	}
	if e.Base != nil {
		return *e.Base
	}
	if e.Definition != nil {
		return e.Definition.Characteristics
	}
	return card.Characteristics{}
}

// Clone returns a deep copy suitable for last-known-information snapshots.
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}
	out := *e
	if e.Base != nil {
		base := e.Base.Clone()
		out.Base = &base
	}
	out.Counters = e.Counters.Clone()
	return &out
}

// Source is the read-only view of canonical game state the rules core consumes.
// Implementations must not be mutated while a caller holds results derived from a
// given Version.
type Source interface {
	// Version identifies this snapshot; it changes on every mutation.
	Version() Version
	// Battlefield returns the ids of every permanent, in a stable order.
	Battlefield() []string
	// Entity looks up an object in any zone. Returned entities must not be modified.
	Entity(id string) (*Entity, bool)
	// Players returns player ids in turn order.
	Players() []string
	// ActivePlayer returns the id of the player whose turn it is.
	ActivePlayer() string
	GraveyardSize(playerID string) int
	HandSize(playerID string) int
	LibrarySize(playerID string) int
	LifeTotal(playerID string) int
}

// Opponents returns every player other than playerID in turn order.
func Opponents(src Source, playerID string) []string {
	var out []string
	for _, p := range src.Players() {
		if p != playerID {
			out = append(out, p)
		}
	}
	return out
}

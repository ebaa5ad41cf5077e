package counters

// Type identifies a kind of counter.
type Type string

const (
	TypeLoyalty Type = "loyalty"
	TypePoison  Type = "poison"
	TypeCharge  Type = "charge"
	TypeShield  Type = "shield"
	TypeStun    Type = "stun"
	TypeLore    Type = "lore"
	TypeDefense Type = "defense"
	TypeTime    Type = "time"

	// Power/toughness boost counters.
	TypeP1P1 Type = "+1/+1"
	TypeM1M1 Type = "-1/-1"
	TypeP2P2 Type = "+2/+2"
	TypeM2M2 Type = "-2/-2"
	TypeP1P0 Type = "+1/+0"
	TypeP0P1 Type = "+0/+1"
	TypeM1M0 Type = "-1/+0"
	TypeM0M1 Type = "+0/-1"
)

// boosts maps every P/T boost counter type to its per-counter delta.
var boosts = map[Type]Boost{
	TypeP1P1: {Power: 1, Toughness: 1},
	TypeM1M1: {Power: -1, Toughness: -1},
	TypeP2P2: {Power: 2, Toughness: 2},
	TypeM2M2: {Power: -2, Toughness: -2},
	TypeP1P0: {Power: 1},
	TypeP0P1: {Toughness: 1},
	TypeM1M0: {Power: -1},
	TypeM0M1: {Toughness: -1},
}

// String returns the printed name of the counter type.
func (t Type) String() string {
	return string(t)
}

// Boost returns the power/toughness delta one counter of this type grants.
func (t Type) Boost() (Boost, bool) {
	b, ok := boosts[t]
	return b, ok
}

// IsBoost reports whether the counter modifies power and toughness.
func (t Type) IsBoost() bool {
	_, ok := boosts[t]
	return ok
}

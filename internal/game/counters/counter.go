package counters

import "fmt"

// Boost is a power/toughness delta.
type Boost struct {
	Power     int
	Toughness int
}

// String renders the boost the way it is printed on cards, e.g. "+1/-1".
func (b Boost) String() string {
	return fmt.Sprintf("%+d/%+d", b.Power, b.Toughness)
}

// Counter is a number of counters of one type on a permanent or player.
type Counter struct {
	Type  Type
	Count int
}

// NewCounter creates a counter, clamping non-positive amounts to one.
func NewCounter(t Type, count int) Counter {
	if count <= 0 {
		count = 1
	}
	return Counter{Type: t, Count: count}
}

// Set is the counters placed on one object, keyed by type.
type Set map[Type]int

// Clone returns an independent copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for t, n := range s {
		if n > 0 {
			out[t] = n
		}
	}
	return out
}

// Add places amount counters of type t.
func (s Set) Add(t Type, amount int) {
	if amount > 0 {
		s[t] += amount
	}
}

// Remove takes up to amount counters of type t off and reports how many were removed.
func (s Set) Remove(t Type, amount int) int {
	if amount <= 0 {
		return 0
	}
	have := s[t]
	if amount > have {
		amount = have
	}
	if have-amount == 0 {
		delete(s, t)
	} else {
		s[t] = have - amount
	}
	return amount
}

// Get returns the number of counters of type t.
func (s Set) Get(t Type) int {
	return s[t]
}

// NetBoost sums the power/toughness delta of every boost counter in the set.
// Non-boost counters are ignored.
func (s Set) NetBoost() Boost {
	var net Boost
	for t, n := range s {
		b, ok := t.Boost()
		if !ok || n <= 0 {
			continue
		}
		net.Power += b.Power * n
		net.Toughness += b.Toughness * n
	}
	return net
}

package counters

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNetBoost(t *testing.T) {
	set := Set{}
	set.Add(TypeP1P1, 3)
	set.Add(TypeM1M1, 1)
	set.Add(TypeP1P0, 2)
	set.Add(TypeCharge, 5)

	assert.Equal(t, Boost{Power: 4, Toughness: 2}, set.NetBoost())
}

func TestSetRemoveClampsAndDeletes(t *testing.T) {
	set := Set{TypeP1P1: 2}

	assert.Equal(t, 2, set.Remove(TypeP1P1, 5))
	assert.Equal(t, 0, set.Get(TypeP1P1))
	_, ok := set[TypeP1P1]
	assert.False(t, ok)
	assert.Equal(t, 0, set.Remove(TypeLoyalty, 1))
}

func TestCloneIsIndependent(t *testing.T) {
	set := Set{TypeP1P1: 1}
	clone := set.Clone()
	clone.Add(TypeP1P1, 1)

	assert.Equal(t, 1, set.Get(TypeP1P1))
	assert.Equal(t, 2, clone.Get(TypeP1P1))
}

func TestBoostString(t *testing.T) {
	b, ok := TypeM1M1.Boost()
	assert.True(t, ok)
	assert.Equal(t, "-1/-1", b.String())
	assert.False(t, TypeLoyalty.IsBoost())
}

package state

import (
	"testing"

	"github.com/magefree/mage-rules-core/internal/game/card"
	"github.com/magefree/mage-rules-core/internal/game/counters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryVersionBumpsOnMutation(t *testing.T) {
	mem := NewMemory()
	v0 := mem.Version()

	mem.AddPlayer("Alice", 20)
	v1 := mem.Version()
	assert.Equal(t, v0.Game, v1.Game)
	assert.Greater(t, v1.Seq, v0.Seq)

	other := NewMemory()
	assert.NotEqual(t, mem.Version().Game, other.Version().Game)
}

func TestMemoryBattlefieldMembership(t *testing.T) {
	mem := NewMemory()
	mem.AddPlayer("Alice", 20)
	mem.Put(&Entity{ID: "bear", OwnerID: "Alice", ControllerID: "Alice", Zone: ZoneBattlefield,
		Definition: card.NewCreature("Grizzly Bears", 2, 2, "Bear")})
	mem.Put(&Entity{ID: "elf", OwnerID: "Alice", ControllerID: "Alice", Zone: ZoneHand,
		Definition: card.NewCreature("Llanowar Elves", 1, 1, "Elf")})

	assert.Equal(t, []string{"bear"}, mem.Battlefield())
	assert.Equal(t, 1, mem.HandSize("Alice"))

	before, ok := mem.Move("bear", ZoneGraveyard)
	require.True(t, ok)
	assert.Equal(t, ZoneBattlefield, before.Zone)
	assert.Empty(t, mem.Battlefield())
	assert.Equal(t, 1, mem.GraveyardSize("Alice"))

	_, ok = mem.Move("elf", ZoneBattlefield)
	require.True(t, ok)
	assert.Equal(t, []string{"elf"}, mem.Battlefield())
}

func TestMemoryPutStoresCopy(t *testing.T) {
	mem := NewMemory()
	e := &Entity{ID: "bear", Zone: ZoneBattlefield, Counters: counters.Set{counters.TypeP1P1: 1}}
	mem.Put(e)
	e.Counters.Add(counters.TypeP1P1, 5)

	stored, ok := mem.Entity("bear")
	require.True(t, ok)
	assert.Equal(t, 1, stored.Counters.Get(counters.TypeP1P1))
}

func TestEntityCharacteristicsFallsBackToDefinition(t *testing.T) {
	def := card.NewCreature("Grizzly Bears", 2, 2)
	e := &Entity{ID: "bear", Definition: def}
	assert.Equal(t, 2, e.Characteristics().Power)

	override := def.Characteristics.Clone()
	override.Power = 5
	e.Base = &override
	assert.Equal(t, 5, e.Characteristics().Power)
}

func TestLibrarySizeCombinesCountAndEntities(t *testing.T) {
	mem := NewMemory()
	mem.AddPlayer("Alice", 20)
	mem.SetLibrarySize("Alice", 40)
	mem.Put(&Entity{ID: "top", OwnerID: "Alice", Zone: ZoneLibrary})

	assert.Equal(t, 41, mem.LibrarySize("Alice"))
	assert.Equal(t, 20, mem.LifeTotal("Alice"))
	assert.Equal(t, 0, mem.LifeTotal("nobody"))
}

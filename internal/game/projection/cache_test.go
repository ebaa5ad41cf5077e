package projection

import (
	"sync"
	"testing"

	"github.com/magefree/mage-rules-core/internal/game/card"
	"github.com/magefree/mage-rules-core/internal/game/effects"
	"github.com/magefree/mage-rules-core/internal/game/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestCacheHitsForSameVersion(t *testing.T) {
	mem := newTestState(t)
	putPermanent(mem, "bear", "Alice", 1, card.NewCreature("Grizzly Bears", 2, 2))

	cache, err := NewCache(nil, 16, zaptest.NewLogger(t))
	require.NoError(t, err)

	first := cache.GetView(mem, "bear")
	second := cache.GetView(mem, "bear")
	require.NotNil(t, first)
	assert.Same(t, first, second)

	stats := cache.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(1), stats.Rebuilds)
	assert.Equal(t, 1, stats.Size)
}

func TestCacheRebuildsOnNewVersion(t *testing.T) {
	mem := newTestState(t)
	putPermanent(mem, "bear", "Alice", 1, card.NewCreature("Grizzly Bears", 2, 2))

	cache, err := NewCache(nil, 16, zaptest.NewLogger(t))
	require.NoError(t, err)

	before := cache.GetView(mem, "bear")
	require.NotNil(t, before)
	assert.False(t, before.Tapped)

	mem.Update("bear", func(e *state.Entity) { e.Tapped = true })
	after := cache.GetView(mem, "bear")
	require.NotNil(t, after)
	assert.True(t, after.Tapped)
	assert.Equal(t, uint64(2), cache.Stats().Rebuilds)

	// A different game with the same sequence number is a different identity.
	other := newTestState(t)
	putPermanent(other, "bear", "Alice", 1, card.NewCreature("Grizzly Bears", 2, 2))
	assert.False(t, cache.GetView(other, "bear").Tapped)
	assert.Equal(t, uint64(3), cache.Stats().Rebuilds)
}

func TestCacheInvalidate(t *testing.T) {
	mem := newTestState(t)
	putPermanent(mem, "bear", "Alice", 1, card.NewCreature("Grizzly Bears", 2, 2))

	cache, err := NewCache(nil, 16, nil)
	require.NoError(t, err)

	cache.GetView(mem, "bear")
	cache.InvalidateEntity("bear")
	assert.Zero(t, cache.Stats().Size)
	cache.GetView(mem, "bear")
	assert.Equal(t, uint64(2), cache.Stats().Misses)
	assert.Equal(t, uint64(1), cache.Stats().Rebuilds)

	cache.Invalidate()
	cache.GetView(mem, "bear")
	assert.Equal(t, uint64(2), cache.Stats().Rebuilds)
}

func TestCacheEvictionKeepsResultsCorrect(t *testing.T) {
	mem := newTestState(t)
	putPermanent(mem, "bear", "Alice", 1, card.NewCreature("Grizzly Bears", 2, 2))
	putPermanent(mem, "elf", "Alice", 2, card.NewCreature("Llanowar Elves", 1, 1))
	provider := fixed(effects.NewModifier("pump", 3, effects.All{}, effects.ModifyPT{Power: 1, Toughness: 1}))

	cache, err := NewCache(provider, 1, zaptest.NewLogger(t))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		assert.Equal(t, 3, cache.GetView(mem, "bear").Power)
		assert.Equal(t, 2, cache.GetView(mem, "elf").Power)
	}
	assert.Equal(t, 1, cache.Stats().Size)
	assert.Equal(t, uint64(6), cache.Stats().Misses)
}

func TestCacheBattlefieldAndViews(t *testing.T) {
	mem := newTestState(t)
	putPermanent(mem, "bear", "Alice", 1, card.NewCreature("Grizzly Bears", 2, 2))
	putPermanent(mem, "elf", "Bob", 2, card.NewCreature("Llanowar Elves", 1, 1))
	mem.Put(&state.Entity{ID: "bolt", OwnerID: "Bob", ControllerID: "Bob", Zone: state.ZoneHand,
		Definition: card.NewPermanent("Lightning Bolt", card.TypeInstant)})

	cache, err := NewCache(nil, 0, nil)
	require.NoError(t, err)

	views := cache.ProjectBattlefield(mem)
	require.Len(t, views, 2)
	assert.Equal(t, "bear", views[0].ID)
	assert.Equal(t, "elf", views[1].ID)

	byID := cache.GetViews(mem, []string{"bear", "bolt", "missing"})
	assert.Len(t, byID, 2)
	assert.Equal(t, state.ZoneHand, byID["bolt"].Zone)
	assert.Nil(t, cache.GetView(mem, "missing"))
}

func TestCacheConcurrentReaders(t *testing.T) {
	mem := newTestState(t)
	ids := []string{"a", "b", "c", "d"}
	for i, id := range ids {
		putPermanent(mem, id, "Alice", uint64(i+1), card.NewCreature(id, 1, 1))
	}
	provider := fixed(effects.NewModifier("anthem", 10, effects.All{Criteria: effects.IsType{Type: card.TypeCreature}},
		effects.ModifyPT{Power: 1, Toughness: 1}))

	cache, err := NewCache(provider, 2, zaptest.NewLogger(t))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				v := cache.GetView(mem, ids[i%len(ids)])
				if assert.NotNil(t, v) {
					assert.Equal(t, 2, v.Power)
				}
			}
		}()
	}
	wg.Wait()

	stats := cache.Stats()
	assert.Equal(t, uint64(400), stats.Hits+stats.Misses)
	assert.Equal(t, uint64(1), stats.Rebuilds)
}

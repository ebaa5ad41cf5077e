package rules

import (
	"slices"
	"sync"

	"github.com/magefree/mage-rules-core/internal/game/card"
	"github.com/magefree/mage-rules-core/internal/game/state"
	"go.uber.org/zap"
)

// TriggerIndex maps event categories to the permanents with a triggered ability
// listening to them. It must be kept in sync with the battlefield by calling
// RegisterEntity and UnregisterEntity on zone changes; Rebuild recomputes it from scratch.
type TriggerIndex struct {
	registry AbilityRegistry
	logger   *zap.Logger

	mu            sync.RWMutex
	byCategory    [categoryCount]map[string]struct{}
	uncategorized map[string]struct{}
	byEntity      map[string][]EventCategory
}

// NewTriggerIndex creates an empty index backed by registry.
func NewTriggerIndex(registry AbilityRegistry, logger *zap.Logger) *TriggerIndex {
	if logger == nil {
		logger = zap.NewNop()
	}
	idx := &TriggerIndex{registry: registry, logger: logger}
	idx.reset()
	return idx
}

func (idx *TriggerIndex) reset() {
	for c := range idx.byCategory {
		idx.byCategory[c] = make(map[string]struct{})
	}
	idx.uncategorized = make(map[string]struct{})
	idx.byEntity = make(map[string][]EventCategory)
}

// RegisterEntity indexes the triggered abilities of id. Registering again replaces the
// previous entry.
func (idx *TriggerIndex) RegisterEntity(id string, def *card.Definition) {
	if idx.registry == nil {
		return
	}
	abilities := idx.registry.TriggeredAbilities(id, def)

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.unregisterLocked(id)
	idx.registerLocked(id, abilities)
}

func (idx *TriggerIndex) registerLocked(id string, abilities []TriggeredAbility) {
	var cats []EventCategory
	for _, a := range abilities {
		c, ok := a.Category()
		if !ok {
			idx.uncategorized[id] = struct{}{}
			continue
		}
		if slices.Contains(cats, c) {
			continue
		}
		cats = append(cats, c)
		idx.byCategory[c][id] = struct{}{}
	}
	if len(cats) > 0 {
		idx.byEntity[id] = cats
	}
}

// UnregisterEntity removes id from every category.
func (idx *TriggerIndex) UnregisterEntity(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.unregisterLocked(id)
}

func (idx *TriggerIndex) unregisterLocked(id string) {
	for _, c := range idx.byEntity[id] {
		delete(idx.byCategory[c], id)
	}
	delete(idx.byEntity, id)
	delete(idx.uncategorized, id)
}

// EntitiesForCategory returns the ids listening to category, sorted.
func (idx *TriggerIndex) EntitiesForCategory(category EventCategory) []string {
	if category < 0 || category >= categoryCount {
		return nil
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return sortedKeys(idx.byCategory[category])
}

// UncategorizedEntities returns the ids with at least one uncategorized trigger, sorted.
func (idx *TriggerIndex) UncategorizedEntities() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return sortedKeys(idx.uncategorized)
}

// Contains reports whether id is indexed under any category.
func (idx *TriggerIndex) Contains(id string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, categorized := idx.byEntity[id]
	_, other := idx.uncategorized[id]
	return categorized || other
}

// Rebuild recomputes the index from the battlefield of src.
func (idx *TriggerIndex) Rebuild(src state.Source) {
	type entry struct {
		id        string
		abilities []TriggeredAbility
	}
	var entries []entry
	if idx.registry != nil {
		for _, id := range src.Battlefield() {
			e, ok := src.Entity(id)
			if !ok {
				continue
			}
			entries = append(entries, entry{id: id, abilities: idx.registry.TriggeredAbilities(id, e.Definition)})
		}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.reset()
	for _, e := range entries {
		idx.registerLocked(e.id, e.abilities)
	}
	idx.logger.Debug("trigger index rebuilt",
		zap.Stringer("version", src.Version()),
		zap.Int("entity_count", len(idx.byEntity)),
		zap.Int("uncategorized_count", len(idx.uncategorized)))
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

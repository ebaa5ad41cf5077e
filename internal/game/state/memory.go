package state

import (
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/magefree/mage-rules-core/internal/game/counters"
)

type playerRecord struct {
	life        int
	librarySize int
}

// Memory is an in-memory Source. Every mutation bumps the version so caches keyed on
// Version notice the change. Writes are expected from a single goroutine; reads may be
// concurrent.
type Memory struct {
	mu          sync.RWMutex
	game        string
	seq         uint64
	players     []string
	records     map[string]*playerRecord
	active      string
	entities    map[string]*Entity
	battlefield []string
}

// NewMemory creates an empty store with a fresh game identity.
func NewMemory() *Memory {
	return &Memory{
		game:     uuid.NewString(),
		records:  make(map[string]*playerRecord),
		entities: make(map[string]*Entity),
	}
}

func (m *Memory) bump() {
	m.seq++
}

// Version implements Source.
func (m *Memory) Version() Version {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Version{Game: m.game, Seq: m.seq}
}

// AddPlayer appends a player to the turn order. The first player added becomes active.
func (m *Memory) AddPlayer(id string, life int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; ok {
		return
	}
	m.players = append(m.players, id)
	m.records[id] = &playerRecord{life: life}
	if m.active == "" {
		m.active = id
	}
	m.bump()
}

// SetActivePlayer changes whose turn it is.
func (m *Memory) SetActivePlayer(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = id
	m.bump()
}

// SetLife sets a player's life total.
func (m *Memory) SetLife(id string, life int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[id]; ok {
		rec.life = life
		m.bump()
	}
}

// SetLibrarySize records how many cards are in a player's library. Library cards are
// rarely materialised as entities, so the count is tracked separately.
func (m *Memory) SetLibrarySize(id string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[id]; ok {
		rec.librarySize = n
		m.bump()
	}
}

// Put inserts or replaces an entity.
func (m *Memory) Put(e *Entity) {
	if e == nil || e.ID == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := e.Clone()
	if stored.Counters == nil {
		stored.Counters = counters.Set{}
	}
	prev, existed := m.entities[e.ID]
	m.entities[e.ID] = stored
	wasOn := existed && prev.Zone == ZoneBattlefield
	switch {
	case stored.Zone == ZoneBattlefield && !wasOn:
		m.battlefield = append(m.battlefield, e.ID)
	case stored.Zone != ZoneBattlefield && wasOn:
		m.dropFromBattlefield(e.ID)
	}
	m.bump()
}

// Update applies fn to a copy of the entity and stores the result.
func (m *Memory) Update(id string, fn func(*Entity)) bool {
	m.mu.RLock()
	current, ok := m.entities[id]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	next := current.Clone()
	fn(next)
	next.ID = id
	m.Put(next)
	return true
}

// Move changes an entity's zone and returns a snapshot of it taken before the move.
func (m *Memory) Move(id string, to Zone) (*Entity, bool) {
	m.mu.RLock()
	current, ok := m.entities[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	before := current.Clone()
	m.Update(id, func(e *Entity) {
		e.Zone = to
		if to != ZoneBattlefield {
			e.AttachedTo = ""
			e.Tapped = false
			e.Damage = 0
			e.Counters = counters.Set{}
		}
	})
	return before, true
}

// Remove deletes an entity entirely (tokens ceasing to exist).
func (m *Memory) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entities[id]; !ok {
		return
	}
	delete(m.entities, id)
	m.dropFromBattlefield(id)
	m.bump()
}

func (m *Memory) dropFromBattlefield(id string) {
	if idx := slices.Index(m.battlefield, id); idx >= 0 {
		m.battlefield = slices.Delete(m.battlefield, idx, idx+1)
	}
}

// Battlefield implements Source.
func (m *Memory) Battlefield() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.battlefield)
}

// Entity implements Source.
func (m *Memory) Entity(id string) (*Entity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entities[id]
	return e, ok
}

// Players implements Source.
func (m *Memory) Players() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.players)
}

// ActivePlayer implements Source.
func (m *Memory) ActivePlayer() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

func (m *Memory) countZone(playerID string, zone Zone) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, e := range m.entities {
		if e.Zone == zone && e.OwnerID == playerID {
			n++
		}
	}
	return n
}

// GraveyardSize implements Source.
func (m *Memory) GraveyardSize(playerID string) int {
	return m.countZone(playerID, ZoneGraveyard)
}

// HandSize implements Source.
func (m *Memory) HandSize(playerID string) int {
	return m.countZone(playerID, ZoneHand)
}

// LibrarySize implements Source.
func (m *Memory) LibrarySize(playerID string) int {
	n := m.countZone(playerID, ZoneLibrary)
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rec, ok := m.records[playerID]; ok {
		n += rec.librarySize
	}
	return n
}

// LifeTotal implements Source.
func (m *Memory) LifeTotal(playerID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rec, ok := m.records[playerID]; ok {
		return rec.life
	}
	return 0
}

package rules

import (
	"cmp"
	"slices"

	"github.com/magefree/mage-rules-core/internal/game/card"
	"github.com/magefree/mage-rules-core/internal/game/state"
	"go.uber.org/zap"
)

// ControllerFunc resolves the current controller of a permanent, e.g. from projected
// views so that a stolen creature's triggers go to the player controlling it.
type ControllerFunc func(id string) (string, bool)

// Detector matches game events against triggered abilities.
type Detector struct {
	index       *TriggerIndex
	registry    AbilityRegistry
	logger      *zap.Logger
	controllers ControllerFunc
}

// NewDetector creates a detector that narrows candidates through index.
func NewDetector(index *TriggerIndex, registry AbilityRegistry, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{index: index, registry: registry, logger: logger}
}

// WithControllers sets the controller resolver used for battlefield permanents.
func (d *Detector) WithControllers(fn ControllerFunc) *Detector {
	d.controllers = fn
	return d
}

type candidate struct {
	subject   Subject
	def       *card.Definition
	timestamp uint64
}

type detectKey struct {
	sourceID string
	ability  int
	event    int
}

// DetectTriggers returns the triggered abilities that fire for events, in APNAP order.
//
// Candidates come from the trigger index: the entities registered for the event's
// categories, plus the entities with uncategorized triggers. Without an index every
// permanent is a candidate. Objects leaving the battlefield in this batch are looked up
// from the event's last known information. They are candidates for every leave event in
// the batch, so simultaneous deaths see each other, and for every other event published
// before they left, so a creature that deals damage and then dies still triggers.
func (d *Detector) DetectTriggers(src state.Source, events []GameEvent) []PendingTrigger {
	if d.registry == nil || len(events) == 0 {
		return nil
	}

	lki := make(map[string]*state.Entity)
	leftAt := make(map[string]int)
	for ei, ev := range events {
		if zc, ok := ev.(ZoneChanged); ok && zc.From == state.ZoneBattlefield && zc.Entity != nil {
			lki[zc.EntityID] = zc.Entity
			leftAt[zc.EntityID] = ei
		}
	}

	var uncategorizedIDs []string
	if d.index != nil {
		uncategorizedIDs = d.index.UncategorizedEntities()
	} else {
		uncategorizedIDs = src.Battlefield()
	}

	active := src.ActivePlayer()
	version := src.Version()
	seen := make(map[detectKey]struct{})
	var out []PendingTrigger

	fire := func(c candidate, abilities []TriggeredAbility, ei int, ev GameEvent, want func(TriggeredAbility) bool) {
		for ai, a := range abilities {
			if a.Trigger == nil || !want(a) {
				continue
			}
			key := detectKey{sourceID: c.subject.ID, ability: ai, event: ei}
			if _, dup := seen[key]; dup {
				continue
			}
			if !a.Trigger.matches(ev, c.subject, active) {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, PendingTrigger{
				ID:           pendingTriggerID(version, c.subject.ID, ai, ei),
				SourceID:     c.subject.ID,
				ControllerID: c.subject.ControllerID,
				Ability:      a,
				AbilityIndex: ai,
				Event:        ev,
				EventIndex:   ei,
			})
		}
	}

	for ei, ev := range events {
		cats := ev.Categories()
		ids := make(map[string]struct{})
		leaving := false
		for _, c := range cats {
			if d.index != nil {
				for _, id := range d.index.EntitiesForCategory(c) {
					ids[id] = struct{}{}
				}
			}
			if c == CategoryLeaveBattlefield {
				leaving = true
			}
		}
		if d.index == nil {
			for _, id := range src.Battlefield() {
				ids[id] = struct{}{}
			}
		}
		others := make(map[string]struct{}, len(uncategorizedIDs))
		for _, id := range uncategorizedIDs {
			others[id] = struct{}{}
		}
		for id, at := range leftAt {
			if leaving || ei < at {
				ids[id] = struct{}{}
				others[id] = struct{}{}
			}
		}

		inCategory := func(a TriggeredAbility) bool {
			c, ok := a.Category()
			return ok && slices.Contains(cats, c)
		}
		for _, c := range d.candidates(src, ids, lki) {
			fire(c, d.registry.TriggeredAbilities(c.subject.ID, c.def), ei, ev, inCategory)
		}

		uncategorized := func(a TriggeredAbility) bool {
			_, ok := a.Category()
			return !ok
		}
		for _, c := range d.candidates(src, others, lki) {
			fire(c, d.registry.TriggeredAbilities(c.subject.ID, c.def), ei, ev, uncategorized)
		}
	}

	out = SortAPNAP(out, src.Players(), active)
	d.logger.Debug("detected triggers",
		zap.Stringer("version", version),
		zap.Int("event_count", len(events)),
		zap.Int("trigger_count", len(out)))
	return out
}

// candidates resolves ids to subjects, preferring the battlefield object and falling back
// to last known information, ordered by timestamp then id.
func (d *Detector) candidates(src state.Source, ids map[string]struct{}, lki map[string]*state.Entity) []candidate {
	out := make([]candidate, 0, len(ids))
	for id := range ids {
		var e *state.Entity
		fromLKI := false
		if cur, ok := src.Entity(id); ok && cur.Zone == state.ZoneBattlefield {
			e = cur
		} else if last, ok := lki[id]; ok {
			e = last
			fromLKI = true
		} else {
			continue
		}
		controller := e.ControllerID
		if !fromLKI && d.controllers != nil {
			if c, ok := d.controllers(id); ok && c != "" {
				controller = c
			}
		}
		out = append(out, candidate{
			subject:   Subject{ID: id, ControllerID: controller, Entity: e},
			def:       e.Definition,
			timestamp: e.Timestamp,
		})
	}
	slices.SortFunc(out, func(a, b candidate) int {
		if c := cmp.Compare(a.timestamp, b.timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.subject.ID, b.subject.ID)
	})
	return out
}

// SortAPNAP orders triggers by controller starting with the active player and following
// turn order. The sort is stable, so each player's triggers keep their detection order.
// Controllers not in players go last.
func SortAPNAP(triggers []PendingTrigger, players []string, active string) []PendingTrigger {
	rank := make(map[string]int, len(players))
	start := slices.Index(players, active)
	if start < 0 {
		start = 0
	}
	for i := range players {
		rank[players[(start+i)%len(players)]] = i
	}
	rankOf := func(player string) int {
		if r, ok := rank[player]; ok {
			return r
		}
		return len(players)
	}

	out := slices.Clone(triggers)
	slices.SortStableFunc(out, func(a, b PendingTrigger) int {
		return cmp.Compare(rankOf(a.ControllerID), rankOf(b.ControllerID))
	})
	return out
}

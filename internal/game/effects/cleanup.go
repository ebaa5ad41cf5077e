package effects

import (
	"github.com/magefree/mage-rules-core/internal/game/state"
	"go.uber.org/zap"
)

// EndCombat removes effects that last until end of combat.
func (ce *ContinuousEffects) EndCombat() []string {
	removed := ce.removeWhere(func(e *ActiveContinuousEffect) bool {
		return e.Duration.Kind == DurationUntilEndOfCombat
	})
	ce.logRemoved("end of combat", removed)
	return removed
}

// EndTurn removes "until end of turn" effects and counts down ForTurns effects, removing
// those that reach zero. Effects ending at end of combat are removed too, in case combat
// cleanup was skipped.
func (ce *ContinuousEffects) EndTurn() []string {
	removed := ce.removeWhere(func(e *ActiveContinuousEffect) bool {
		switch e.Duration.Kind {
		case DurationUntilEndOfTurn, DurationUntilEndOfCombat:
			return true
		case DurationForTurns:
			e.TurnsLeft--
			return e.TurnsLeft <= 0
		default:
			return false
		}
	})
	ce.logRemoved("end of turn", removed)
	return removed
}

// BeginTurn removes "until your next turn" effects belonging to playerID.
func (ce *ContinuousEffects) BeginTurn(playerID string) []string {
	removed := ce.removeWhere(func(e *ActiveContinuousEffect) bool {
		return e.Duration.Kind == DurationUntilNextTurn && e.Duration.PlayerID == playerID
	})
	ce.logRemoved("begin turn", removed)
	return removed
}

// Prune removes effects whose state-dependent duration no longer holds in src.
func (ce *ContinuousEffects) Prune(src state.Source) []string {
	removed := ce.removeWhere(func(e *ActiveContinuousEffect) bool {
		return !e.Duration.holds(src, e.SourceID)
	})
	ce.logRemoved("prune", removed)
	return removed
}

// ForgetObject removes effects that targeted id directly. An object that changes zones
// is a new object (rule 400.7), so those effects no longer apply to it.
func (ce *ContinuousEffects) ForgetObject(id string) []string {
	removed := ce.removeWhere(func(e *ActiveContinuousEffect) bool {
		f, ok := e.Filter.(Specific)
		return ok && f.ID == id
	})
	ce.logRemoved("zone change", removed)
	return removed
}

func (ce *ContinuousEffects) logRemoved(reason string, ids []string) {
	if len(ids) == 0 {
		return
	}
	ce.logger.Debug("removed continuous effects",
		zap.String("reason", reason),
		zap.Strings("effect_ids", ids))
}

package effects

import (
	"fmt"

	"github.com/magefree/mage-rules-core/internal/game/counters"
	"github.com/magefree/mage-rules-core/internal/game/state"
)

// Scope selects players relative to the modifier source's controller.
type Scope int

const (
	ScopeYou Scope = iota
	ScopeOpponents
	ScopeAll
)

func (s Scope) String() string {
	switch s {
	case ScopeYou:
		return "you"
	case ScopeOpponents:
		return "opponents"
	default:
		return "all"
	}
}

func (s Scope) players(ctx Context) []string {
	switch s {
	case ScopeYou:
		if ctx.ControllerID == "" {
			return nil
		}
		return []string{ctx.ControllerID}
	case ScopeOpponents:
		return state.Opponents(ctx.State, ctx.ControllerID)
	default:
		return ctx.State.Players()
	}
}

func (s Scope) includes(ctx Context, playerID string) bool {
	switch s {
	case ScopeYou:
		return playerID == ctx.ControllerID
	case ScopeOpponents:
		return playerID != "" && playerID != ctx.ControllerID
	default:
		return true
	}
}

// Amount is a number computed from game state when a modification applies,
// e.g. "the number of creatures you control".
type Amount interface {
	Evaluate(ctx Context) int
	fmt.Stringer
}

// Fixed is a constant amount.
type Fixed int

func (a Fixed) Evaluate(Context) int { return int(a) }
func (a Fixed) String() string      { return fmt.Sprintf("%d", int(a)) }

// PermanentCount counts battlefield permanents controlled by Scope matching Criteria.
// Matching uses canonical characteristics.
type PermanentCount struct {
	Scope    Scope
	Criteria Criteria
}

func (a PermanentCount) Evaluate(ctx Context) int {
	fc := ctx.filterContext()
	n := 0
	for _, id := range ctx.State.Battlefield() {
		obj, ok := fc.attributes(id)
		if !ok || !a.Scope.includes(ctx, obj.ControllerID) {
			continue
		}
		if matches(a.Criteria, obj, fc) {
			n++
		}
	}
	return n
}

func (a PermanentCount) String() string {
	return fmt.Sprintf("permanents(%s)", a.Scope)
}

// GraveyardCount is the number of cards in the graveyards of Scope.
type GraveyardCount struct {
	Scope Scope
}

func (a GraveyardCount) Evaluate(ctx Context) int {
	n := 0
	for _, p := range a.Scope.players(ctx) {
		n += ctx.State.GraveyardSize(p)
	}
	return n
}

func (a GraveyardCount) String() string { return fmt.Sprintf("graveyard(%s)", a.Scope) }

// HandCount is the number of cards in the hands of Scope.
type HandCount struct {
	Scope Scope
}

func (a HandCount) Evaluate(ctx Context) int {
	n := 0
	for _, p := range a.Scope.players(ctx) {
		n += ctx.State.HandSize(p)
	}
	return n
}

func (a HandCount) String() string { return fmt.Sprintf("hand(%s)", a.Scope) }

// LibraryCount is the number of cards in the libraries of Scope.
type LibraryCount struct {
	Scope Scope
}

func (a LibraryCount) Evaluate(ctx Context) int {
	n := 0
	for _, p := range a.Scope.players(ctx) {
		n += ctx.State.LibrarySize(p)
	}
	return n
}

func (a LibraryCount) String() string { return fmt.Sprintf("library(%s)", a.Scope) }

// LifeTotal sums the life totals of Scope.
type LifeTotal struct {
	Scope Scope
}

func (a LifeTotal) Evaluate(ctx Context) int {
	n := 0
	for _, p := range a.Scope.players(ctx) {
		n += ctx.State.LifeTotal(p)
	}
	return n
}

func (a LifeTotal) String() string { return fmt.Sprintf("life(%s)", a.Scope) }

// CountersOnSource is the number of counters of Type on the modifier source.
type CountersOnSource struct {
	Type counters.Type
}

func (a CountersOnSource) Evaluate(ctx Context) int {
	e, ok := ctx.State.Entity(ctx.SourceID)
	if !ok {
		return 0
	}
	return e.Counters.Get(a.Type)
}

func (a CountersOnSource) String() string { return fmt.Sprintf("counters(%s)", a.Type) }

// Negated flips the sign of another amount ("-X/-X where X is ...").
type Negated struct {
	Amount Amount
}

func (a Negated) Evaluate(ctx Context) int {
	if a.Amount == nil {
		return 0
	}
	return -a.Amount.Evaluate(ctx)
}

func (a Negated) String() string { return fmt.Sprintf("-%s", a.Amount) }

func evaluate(a Amount, ctx Context) int {
	if a == nil {
		return 0
	}
	return a.Evaluate(ctx)
}

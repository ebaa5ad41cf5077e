package effects

import (
	"github.com/magefree/mage-rules-core/internal/game/counters"
	"github.com/magefree/mage-rules-core/internal/game/state"
)

// Context exposes read-only canonical state to modifications and dynamic amounts.
// SourceID and ControllerID identify the modifier currently being applied.
type Context struct {
	State        state.Source
	SourceID     string
	ControllerID string
}

// NewContext creates a context with no source bound.
func NewContext(src state.Source) Context {
	return Context{State: src}
}

// ForSource rebinds the context to a modifier source, taking the controller from
// canonical state.
func (c Context) ForSource(sourceID string) Context {
	c.SourceID = sourceID
	c.ControllerID = ""
	if e, ok := c.State.Entity(sourceID); ok {
		c.ControllerID = e.ControllerID
	}
	return c
}

// WithController overrides the controller used for "you" and "opponents".
func (c Context) WithController(playerID string) Context {
	c.ControllerID = playerID
	return c
}

func (c Context) filterContext() FilterContext {
	return FilterContext{State: c.State, SourceID: c.SourceID, ControllerID: c.ControllerID}
}

// Apply returns attrs with one modification applied. It is pure: attrs is cloned and the
// canonical state is only read.
func Apply(m Modification, attrs Attributes, ctx Context) Attributes {
	next := attrs.Clone()
	if m == nil {
		return next
	}
	m.apply(&next, ctx)
	return next
}

// ApplyCounters folds the net +1/+1 and -1/-1 style counters on an object into its
// power and toughness (layer 7d).
func ApplyCounters(attrs Attributes, set counters.Set) Attributes {
	net := set.NetBoost()
	if net.Power == 0 && net.Toughness == 0 {
		return attrs
	}
	next := attrs.Clone()
	next.Power += net.Power
	next.Toughness += net.Toughness
	return next
}

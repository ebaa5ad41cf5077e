package effects

import (
	"sync/atomic"
)

// Layer corresponds to the comprehensive rules layers for continuous effects (rule 613.1),
// with layer 7 split into its sublayers.
type Layer int

const (
	LayerCopy Layer = 1 + iota
	LayerControl
	LayerText
	LayerType
	LayerColor
	LayerAbility
	LayerPTCDA
	LayerPTSet
	LayerPTModify
	LayerPTCounters
	LayerPTSwitch
)

var layerOrder = []Layer{
	LayerCopy,
	LayerControl,
	LayerText,
	LayerType,
	LayerColor,
	LayerAbility,
	LayerPTCDA,
	LayerPTSet,
	LayerPTModify,
	LayerPTCounters,
	LayerPTSwitch,
}

var layerNames = map[Layer]string{
	LayerCopy:       "1 copy",
	LayerControl:    "2 control",
	LayerText:       "3 text",
	LayerType:       "4 type",
	LayerColor:      "5 color",
	LayerAbility:    "6 ability",
	LayerPTCDA:      "7a characteristic-defining",
	LayerPTSet:      "7b set p/t",
	LayerPTModify:   "7c modify p/t",
	LayerPTCounters: "7d counters",
	LayerPTSwitch:   "7e switch p/t",
}

// Layers returns every layer in application order.
func Layers() []Layer {
	return append([]Layer(nil), layerOrder...)
}

// Order is the primary sort key for modifier application.
func (l Layer) Order() int {
	return int(l)
}

// Valid reports whether l is one of the defined layers.
func (l Layer) Valid() bool {
	return l >= LayerCopy && l <= LayerPTSwitch
}

// IsPowerToughness reports whether l is one of the layer 7 sublayers.
func (l Layer) IsPowerToughness() bool {
	return l >= LayerPTCDA && l <= LayerPTSwitch
}

func (l Layer) String() string {
	if name, ok := layerNames[l]; ok {
		return name
	}
	return "unknown"
}

// Clock hands out timestamps for rule 613.7. Each game session owns one.
type Clock interface {
	Next() uint64
}

// TimestampCounter is a Clock backed by an atomic counter. The first timestamp is 1,
// so zero can mean "not timestamped".
type TimestampCounter struct {
	n atomic.Uint64
}

// NewTimestampCounter creates a counter starting after start.
func NewTimestampCounter(start uint64) *TimestampCounter {
	c := &TimestampCounter{}
	c.n.Store(start)
	return c
}

// Next returns a new, strictly increasing timestamp.
func (c *TimestampCounter) Next() uint64 {
	return c.n.Add(1)
}

// Current returns the last timestamp handed out.
func (c *TimestampCounter) Current() uint64 {
	return c.n.Load()
}

// Reset rewinds the counter, e.g. when a simulation restarts from a saved state.
func (c *TimestampCounter) Reset(to uint64) {
	c.n.Store(to)
}

// Package scenario loads board states described in YAML so projections and triggers can
// be evaluated outside a running game.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/magefree/mage-rules-core/internal/game/effects"
	"github.com/magefree/mage-rules-core/internal/game/state"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownKind     = errors.New("unknown kind")
	ErrUnknownCard     = errors.New("unknown card")
	ErrUnknownPlayer   = errors.New("unknown player")
	ErrDuplicateEntity = errors.New("duplicate entity")
	ErrInvalidValue    = errors.New("invalid value")
)

// File is the YAML document.
type File struct {
	Name    string                 `yaml:"name"`
	Active  string                 `yaml:"active"`
	Players []Player               `yaml:"players"`
	Cards   []Card                 `yaml:"cards"`
	Objects []Object               `yaml:"objects"`
	Statics map[string][]Ability   `yaml:"statics"`
	Effects []Effect               `yaml:"effects"`
	Expect  map[string]Expectation `yaml:"expect"`
}

type Player struct {
	ID      string `yaml:"id"`
	Life    *int   `yaml:"life"`
	Library int    `yaml:"library"`
}

// Card is a printed card definition. Power and toughness are omitted for cards
// without them.
type Card struct {
	Name      string   `yaml:"name"`
	Types     []string `yaml:"types"`
	Subtypes  []string `yaml:"subtypes"`
	Colors    []string `yaml:"colors"`
	Keywords  []string `yaml:"keywords"`
	Power     *int     `yaml:"power"`
	Toughness *int     `yaml:"toughness"`
}

// Object is one game object. Zone defaults to the battlefield; owner and controller
// default to each other.
type Object struct {
	ID            string         `yaml:"id"`
	Card          string         `yaml:"card"`
	Owner         string         `yaml:"owner"`
	Controller    string         `yaml:"controller"`
	Zone          string         `yaml:"zone"`
	Timestamp     uint64         `yaml:"timestamp"`
	Counters      map[string]int `yaml:"counters"`
	AttachedTo    string         `yaml:"attached_to"`
	Damage        int            `yaml:"damage"`
	Tapped        bool           `yaml:"tapped"`
	SummoningSick bool           `yaml:"summoning_sick"`
	Token         bool           `yaml:"token"`
}

// Ability is a static ability of every object with the card name it is listed under.
type Ability struct {
	Filter                 FilterSpec `yaml:"filter"`
	Modifications          []ModSpec  `yaml:"modifications"`
	CharacteristicDefining bool       `yaml:"characteristic_defining"`
}

// Effect is a floating effect created by a resolved spell or ability.
type Effect struct {
	Source        string     `yaml:"source"`
	Controller    string     `yaml:"controller"`
	Timestamp     uint64     `yaml:"timestamp"`
	Filter        FilterSpec `yaml:"filter"`
	Modifications []ModSpec  `yaml:"modifications"`
	Duration      string     `yaml:"duration"`
	Turns         int        `yaml:"turns"`
}

// FilterSpec selects affected objects. Kind is one of self, attached_to, specific,
// controlled_by, opponents or all.
type FilterSpec struct {
	Kind     string        `yaml:"kind"`
	ID       string        `yaml:"id"`
	Player   string        `yaml:"player"`
	Criteria *CriteriaSpec `yaml:"criteria"`
}

// CriteriaSpec matches objects. Every field that is set must hold.
type CriteriaSpec struct {
	Type    string         `yaml:"type"`
	Subtype string         `yaml:"subtype"`
	Color   string         `yaml:"color"`
	Keyword string         `yaml:"keyword"`
	Other   bool           `yaml:"other"`
	And     []CriteriaSpec `yaml:"and"`
	Or      []CriteriaSpec `yaml:"or"`
	Not     *CriteriaSpec  `yaml:"not"`
}

// ModSpec is one modification. Which fields are read depends on Kind.
type ModSpec struct {
	Kind      string      `yaml:"kind"`
	Value     string      `yaml:"value"`
	Values    []string    `yaml:"values"`
	From      string      `yaml:"from"`
	To        string      `yaml:"to"`
	Player    string      `yaml:"player"`
	Object    string      `yaml:"object"`
	Power     int         `yaml:"power"`
	Toughness int         `yaml:"toughness"`
	PowerOf   *AmountSpec `yaml:"power_of"`
	ToughOf   *AmountSpec `yaml:"toughness_of"`
}

// AmountSpec is a number computed from the board. Kind is one of fixed, permanents,
// graveyard, hand, library, life or counters.
type AmountSpec struct {
	Kind     string        `yaml:"kind"`
	Scope    string        `yaml:"scope"`
	Value    int           `yaml:"value"`
	Counter  string        `yaml:"counter"`
	Criteria *CriteriaSpec `yaml:"criteria"`
	Negate   bool          `yaml:"negate"`
}

// Expectation lists projected values to verify. Unset fields are not checked.
type Expectation struct {
	Controller string   `yaml:"controller"`
	Power      *int     `yaml:"power"`
	Toughness  *int     `yaml:"toughness"`
	Types      []string `yaml:"types"`
	Subtypes   []string `yaml:"subtypes"`
	Colors     []string `yaml:"colors"`
	Keywords   []string `yaml:"keywords"`
}

// Scenario is a decoded board ready to be projected.
type Scenario struct {
	Name    string
	State   *state.Memory
	Statics effects.StaticAbilitiesByName
	Effects []effects.ActiveContinuousEffect
	Expect  map[string]Expectation
}

// Load reads and builds the scenario at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	return s, nil
}

// Parse decodes a YAML document. Unknown fields are rejected.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode scenario: %w", err)
	}
	return f.Build()
}

package scenario

import (
	"fmt"
	"strings"

	"github.com/magefree/mage-rules-core/internal/game/card"
	"github.com/magefree/mage-rules-core/internal/game/counters"
	"github.com/magefree/mage-rules-core/internal/game/effects"
	"github.com/magefree/mage-rules-core/internal/game/state"
)

const defaultLife = 20

// Build turns the document into canonical state, static abilities and floating effects.
// Objects and effects without a timestamp are stamped in file order after the highest
// explicit timestamp seen so far.
func (f *File) Build() (*Scenario, error) {
	mem := state.NewMemory()
	players := make(map[string]bool, len(f.Players))
	for _, p := range f.Players {
		if p.ID == "" || players[p.ID] {
			return nil, fmt.Errorf("player %q: %w", p.ID, ErrDuplicateEntity)
		}
		players[p.ID] = true
		life := defaultLife
		if p.Life != nil {
			life = *p.Life
		}
		mem.AddPlayer(p.ID, life)
		mem.SetLibrarySize(p.ID, p.Library)
	}
	if f.Active != "" {
		if !players[f.Active] {
			return nil, fmt.Errorf("active player %q: %w", f.Active, ErrUnknownPlayer)
		}
		mem.SetActivePlayer(f.Active)
	}

	defs := make(map[string]*card.Definition, len(f.Cards))
	for _, c := range f.Cards {
		if _, ok := defs[c.Name]; ok {
			return nil, fmt.Errorf("card %q: %w", c.Name, ErrDuplicateEntity)
		}
		def, err := c.definition()
		if err != nil {
			return nil, fmt.Errorf("card %q: %w", c.Name, err)
		}
		defs[c.Name] = def
	}

	var clock uint64
	stamp := func(ts uint64) uint64 {
		if ts == 0 {
			ts = clock + 1
		}
		clock = max(clock, ts)
		return ts
	}

	seen := make(map[string]bool, len(f.Objects))
	for _, o := range f.Objects {
		if o.ID == "" || seen[o.ID] {
			return nil, fmt.Errorf("object %q: %w", o.ID, ErrDuplicateEntity)
		}
		seen[o.ID] = true
		ent, err := o.entity(defs, players)
		if err != nil {
			return nil, fmt.Errorf("object %q: %w", o.ID, err)
		}
		ent.Timestamp = stamp(o.Timestamp)
		mem.Put(ent)
	}

	statics := make(effects.StaticAbilitiesByName, len(f.Statics))
	for name, abilities := range f.Statics {
		if _, ok := defs[name]; !ok {
			return nil, fmt.Errorf("statics for %q: %w", name, ErrUnknownCard)
		}
		for i, a := range abilities {
			ability, err := a.build(players)
			if err != nil {
				return nil, fmt.Errorf("static ability %d of %q: %w", i, name, err)
			}
			statics[name] = append(statics[name], ability)
		}
	}

	var floating []effects.ActiveContinuousEffect
	for i, e := range f.Effects {
		list, err := e.build(players, stamp)
		if err != nil {
			return nil, fmt.Errorf("effect %d: %w", i, err)
		}
		floating = append(floating, list...)
	}

	return &Scenario{
		Name:    f.Name,
		State:   mem,
		Statics: statics,
		Effects: floating,
		Expect:  f.Expect,
	}, nil
}

func (c Card) definition() (*card.Definition, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("name: %w", ErrInvalidValue)
	}
	types, err := parseTypes(c.Types)
	if err != nil {
		return nil, err
	}
	colors, err := parseColors(c.Colors)
	if err != nil {
		return nil, err
	}
	def := &card.Definition{Characteristics: card.Characteristics{
		Name:     c.Name,
		Types:    card.NewSet(types...),
		Subtypes: card.NewSet(subtypes(c.Subtypes)...),
		Colors:   card.NewSet(colors...),
		Keywords: card.NewSet(keywords(c.Keywords)...),
	}}
	if c.Power != nil || c.Toughness != nil {
		def.HasPT = true
		if c.Power != nil {
			def.Power = *c.Power
		}
		if c.Toughness != nil {
			def.Toughness = *c.Toughness
		}
	}
	return def, nil
}

func (o Object) entity(defs map[string]*card.Definition, players map[string]bool) (*state.Entity, error) {
	def, ok := defs[o.Card]
	if !ok {
		return nil, fmt.Errorf("card %q: %w", o.Card, ErrUnknownCard)
	}
	owner, controller := o.Owner, o.Controller
	if owner == "" {
		owner = controller
	}
	if controller == "" {
		controller = owner
	}
	for _, p := range []string{owner, controller} {
		if !players[p] {
			return nil, fmt.Errorf("player %q: %w", p, ErrUnknownPlayer)
		}
	}
	zone := state.ZoneBattlefield
	if o.Zone != "" {
		zone = state.ParseZone(strings.ToUpper(o.Zone))
		if zone == state.ZoneNone {
			return nil, fmt.Errorf("zone %q: %w", o.Zone, ErrInvalidValue)
		}
	}
	ent := &state.Entity{
		ID:            o.ID,
		OwnerID:       owner,
		ControllerID:  controller,
		Zone:          zone,
		Definition:    def,
		Counters:      counters.Set{},
		AttachedTo:    o.AttachedTo,
		Damage:        o.Damage,
		Tapped:        o.Tapped,
		SummoningSick: o.SummoningSick,
		Token:         o.Token,
	}
	for t, n := range o.Counters {
		if n < 0 {
			return nil, fmt.Errorf("counter %q: %w", t, ErrInvalidValue)
		}
		ent.Counters.Add(counters.Type(t), n)
	}
	return ent, nil
}

func (a Ability) build(players map[string]bool) (effects.StaticAbility, error) {
	filter, err := a.Filter.build(players)
	if err != nil {
		return effects.StaticAbility{}, err
	}
	mods, err := buildModifications(a.Modifications, players)
	if err != nil {
		return effects.StaticAbility{}, err
	}
	return effects.StaticAbility{
		Filter:                 filter,
		Modifications:          mods,
		CharacteristicDefining: a.CharacteristicDefining,
	}, nil
}

func (e Effect) build(players map[string]bool, stamp func(uint64) uint64) ([]effects.ActiveContinuousEffect, error) {
	if e.Source == "" {
		return nil, fmt.Errorf("source: %w", ErrInvalidValue)
	}
	if !players[e.Controller] {
		return nil, fmt.Errorf("controller %q: %w", e.Controller, ErrUnknownPlayer)
	}
	filter, err := e.Filter.build(players)
	if err != nil {
		return nil, err
	}
	mods, err := buildModifications(e.Modifications, players)
	if err != nil {
		return nil, err
	}
	duration, err := e.duration()
	if err != nil {
		return nil, err
	}
	// Every modification of one effect shares its timestamp.
	ts := stamp(e.Timestamp)
	out := make([]effects.ActiveContinuousEffect, 0, len(mods))
	for _, m := range mods {
		out = append(out, effects.ActiveContinuousEffect{
			SourceID:     e.Source,
			ControllerID: e.Controller,
			Timestamp:    ts,
			Modification: m,
			Filter:       filter,
			Duration:     duration,
			TurnsLeft:    duration.Turns,
		})
	}
	return out, nil
}

func (e Effect) duration() (effects.EffectDuration, error) {
	switch e.Duration {
	case "", "until_end_of_turn":
		return effects.UntilEndOfTurn(), nil
	case "until_end_of_combat":
		return effects.UntilEndOfCombat(), nil
	case "until_your_next_turn":
		return effects.UntilNextTurn(e.Controller), nil
	case "while_on_battlefield":
		return effects.WhileOnBattlefield(e.Source), nil
	case "indefinite":
		return effects.Indefinite(), nil
	case "for_turns":
		if e.Turns <= 0 {
			return effects.EffectDuration{}, fmt.Errorf("turns %d: %w", e.Turns, ErrInvalidValue)
		}
		return effects.ForTurns(e.Turns), nil
	default:
		return effects.EffectDuration{}, fmt.Errorf("duration %q: %w", e.Duration, ErrUnknownKind)
	}
}

func (f FilterSpec) build(players map[string]bool) (effects.Filter, error) {
	criteria, err := f.Criteria.build()
	if err != nil {
		return nil, err
	}
	switch f.Kind {
	case "self":
		return effects.Self{}, nil
	case "attached_to":
		return effects.AttachedTo{}, nil
	case "specific":
		if f.ID == "" {
			return nil, fmt.Errorf("specific filter needs an id: %w", ErrInvalidValue)
		}
		return effects.Specific{ID: f.ID}, nil
	case "controlled_by":
		if f.Player != "" && !players[f.Player] {
			return nil, fmt.Errorf("player %q: %w", f.Player, ErrUnknownPlayer)
		}
		return effects.ControlledBy{PlayerID: f.Player, Criteria: criteria}, nil
	case "opponents":
		return effects.Opponents{Criteria: criteria}, nil
	case "all":
		return effects.All{Criteria: criteria}, nil
	default:
		return nil, fmt.Errorf("filter %q: %w", f.Kind, ErrUnknownKind)
	}
}

func (c *CriteriaSpec) build() (effects.Criteria, error) {
	if c == nil {
		return nil, nil
	}
	var all effects.And
	if c.Type != "" {
		t, ok := card.ParseType(c.Type)
		if !ok {
			return nil, fmt.Errorf("type %q: %w", c.Type, ErrInvalidValue)
		}
		all = append(all, effects.IsType{Type: t})
	}
	if c.Subtype != "" {
		all = append(all, effects.WithSubtype{Subtype: card.Subtype(c.Subtype)})
	}
	if c.Color != "" {
		col, ok := card.ParseColor(c.Color)
		if !ok {
			return nil, fmt.Errorf("color %q: %w", c.Color, ErrInvalidValue)
		}
		all = append(all, effects.WithColor{Color: col})
	}
	if c.Keyword != "" {
		all = append(all, effects.WithKeyword{Keyword: card.Keyword(c.Keyword)})
	}
	if c.Other {
		all = append(all, effects.Other{})
	}
	for _, sub := range c.And {
		built, err := sub.build()
		if err != nil {
			return nil, err
		}
		all = append(all, built)
	}
	if len(c.Or) > 0 {
		var either effects.Or
		for _, sub := range c.Or {
			built, err := sub.build()
			if err != nil {
				return nil, err
			}
			either = append(either, built)
		}
		all = append(all, either)
	}
	if c.Not != nil {
		built, err := c.Not.build()
		if err != nil {
			return nil, err
		}
		all = append(all, effects.Not{Criteria: built})
	}
	switch len(all) {
	case 0:
		return nil, nil
	case 1:
		return all[0], nil
	default:
		return all, nil
	}
}

func buildModifications(specs []ModSpec, players map[string]bool) ([]effects.Modification, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("no modifications: %w", ErrInvalidValue)
	}
	out := make([]effects.Modification, 0, len(specs))
	for _, s := range specs {
		m, err := s.build(players)
		if err != nil {
			return nil, fmt.Errorf("modification %q: %w", s.Kind, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func (s ModSpec) build(players map[string]bool) (effects.Modification, error) {
	switch s.Kind {
	case "copy_of":
		if s.Object == "" {
			return nil, ErrInvalidValue
		}
		return effects.CopyOf{EntityID: s.Object}, nil
	case "change_control":
		if s.Player != "" && !players[s.Player] {
			return nil, fmt.Errorf("player %q: %w", s.Player, ErrUnknownPlayer)
		}
		return effects.ChangeControl{PlayerID: s.Player}, nil
	case "replace_subtype_text":
		if s.From == "" || s.To == "" {
			return nil, ErrInvalidValue
		}
		return effects.ReplaceSubtypeText{From: card.Subtype(s.From), To: card.Subtype(s.To)}, nil
	case "add_type", "remove_type":
		t, ok := card.ParseType(s.Value)
		if !ok {
			return nil, fmt.Errorf("type %q: %w", s.Value, ErrInvalidValue)
		}
		if s.Kind == "add_type" {
			return effects.AddType{Type: t}, nil
		}
		return effects.RemoveType{Type: t}, nil
	case "set_types":
		types, err := parseTypes(s.Values)
		if err != nil {
			return nil, err
		}
		return effects.SetTypes{Types: types}, nil
	case "add_subtype":
		return effects.AddSubtype{Subtype: card.Subtype(s.Value)}, nil
	case "remove_subtype":
		return effects.RemoveSubtype{Subtype: card.Subtype(s.Value)}, nil
	case "set_subtypes":
		return effects.SetSubtypes{Subtypes: subtypes(s.Values)}, nil
	case "all_creature_types":
		return effects.GainAllCreatureTypes{}, nil
	case "add_color":
		c, ok := card.ParseColor(s.Value)
		if !ok {
			return nil, fmt.Errorf("color %q: %w", s.Value, ErrInvalidValue)
		}
		return effects.AddColor{Color: c}, nil
	case "set_colors":
		colors, err := parseColors(s.Values)
		if err != nil {
			return nil, err
		}
		return effects.SetColors{Colors: colors}, nil
	case "add_keyword":
		return effects.AddKeyword{Keyword: card.Keyword(s.Value)}, nil
	case "remove_keyword":
		return effects.RemoveKeyword{Keyword: card.Keyword(s.Value)}, nil
	case "remove_all_abilities":
		return effects.RemoveAllAbilities{}, nil
	case "set_pt_cda":
		power, err := s.PowerOf.build()
		if err != nil {
			return nil, err
		}
		toughness, err := s.ToughOf.build()
		if err != nil {
			return nil, err
		}
		return effects.SetPTFromCDA{Power: power, Toughness: toughness}, nil
	case "set_pt":
		return effects.SetPT{Power: s.Power, Toughness: s.Toughness}, nil
	case "modify_pt":
		if s.PowerOf == nil && s.ToughOf == nil {
			return effects.ModifyPT{Power: s.Power, Toughness: s.Toughness}, nil
		}
		power, err := s.PowerOf.build()
		if err != nil {
			return nil, err
		}
		toughness, err := s.ToughOf.build()
		if err != nil {
			return nil, err
		}
		return effects.ModifyPTDynamic{Power: power, Toughness: toughness}, nil
	case "switch_pt":
		return effects.SwitchPT{}, nil
	default:
		return nil, ErrUnknownKind
	}
}

func (a *AmountSpec) build() (effects.Amount, error) {
	if a == nil {
		return nil, nil
	}
	scope, err := parseScope(a.Scope)
	if err != nil {
		return nil, err
	}
	var amount effects.Amount
	switch a.Kind {
	case "fixed":
		amount = effects.Fixed(a.Value)
	case "permanents":
		criteria, err := a.Criteria.build()
		if err != nil {
			return nil, err
		}
		amount = effects.PermanentCount{Scope: scope, Criteria: criteria}
	case "graveyard":
		amount = effects.GraveyardCount{Scope: scope}
	case "hand":
		amount = effects.HandCount{Scope: scope}
	case "library":
		amount = effects.LibraryCount{Scope: scope}
	case "life":
		amount = effects.LifeTotal{Scope: scope}
	case "counters":
		if a.Counter == "" {
			return nil, fmt.Errorf("counters amount needs a counter type: %w", ErrInvalidValue)
		}
		amount = effects.CountersOnSource{Type: counters.Type(a.Counter)}
	default:
		return nil, fmt.Errorf("amount %q: %w", a.Kind, ErrUnknownKind)
	}
	if a.Negate {
		amount = effects.Negated{Amount: amount}
	}
	return amount, nil
}

func parseScope(s string) (effects.Scope, error) {
	switch s {
	case "", "you":
		return effects.ScopeYou, nil
	case "opponents":
		return effects.ScopeOpponents, nil
	case "all":
		return effects.ScopeAll, nil
	default:
		return 0, fmt.Errorf("scope %q: %w", s, ErrUnknownKind)
	}
}

func parseTypes(values []string) ([]card.Type, error) {
	out := make([]card.Type, 0, len(values))
	for _, v := range values {
		t, ok := card.ParseType(v)
		if !ok {
			return nil, fmt.Errorf("type %q: %w", v, ErrInvalidValue)
		}
		out = append(out, t)
	}
	return out, nil
}

func parseColors(values []string) ([]card.Color, error) {
	out := make([]card.Color, 0, len(values))
	for _, v := range values {
		c, ok := card.ParseColor(v)
		if !ok {
			return nil, fmt.Errorf("color %q: %w", v, ErrInvalidValue)
		}
		out = append(out, c)
	}
	return out, nil
}

func subtypes(values []string) []card.Subtype {
	out := make([]card.Subtype, 0, len(values))
	for _, v := range values {
		out = append(out, card.Subtype(v))
	}
	return out
}

func keywords(values []string) []card.Keyword {
	out := make([]card.Keyword, 0, len(values))
	for _, v := range values {
		out = append(out, card.Keyword(v))
	}
	return out
}

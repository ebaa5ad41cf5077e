package card

// Characteristics are the printed (or base-overridden) characteristics of an object,
// before any continuous effect applies.
type Characteristics struct {
	Name      string
	Types     Set[Type]
	Subtypes  Set[Subtype]
	Colors    Set[Color]
	Keywords  Set[Keyword]
	Power     int
	Toughness int
	HasPT     bool
}

// Clone returns a deep copy.
func (c Characteristics) Clone() Characteristics {
	c.Types = c.Types.Clone()
	c.Subtypes = c.Subtypes.Clone()
	c.Colors = c.Colors.Clone()
	c.Keywords = c.Keywords.Clone()
	return c
}

// Definition is the card template an object was created from. Abilities are looked up
// by registries keyed on the definition, so the template itself only carries
// characteristics.
type Definition struct {
	Characteristics
}

// NewCreature is a convenience constructor for a vanilla creature definition.
func NewCreature(name string, power, toughness int, subtypes ...Subtype) *Definition {
	return &Definition{
		Characteristics: Characteristics{
			Name:      name,
			Types:     NewSet(TypeCreature),
			Subtypes:  NewSet(subtypes...),
			Colors:    NewSet[Color](),
			Keywords:  NewSet[Keyword](),
			Power:     power,
			Toughness: toughness,
			HasPT:     true,
		},
	}
}

// NewPermanent builds a definition without power and toughness.
func NewPermanent(name string, types ...Type) *Definition {
	return &Definition{
		Characteristics: Characteristics{
			Name:     name,
			Types:    NewSet(types...),
			Subtypes: NewSet[Subtype](),
			Colors:   NewSet[Color](),
			Keywords: NewSet[Keyword](),
		},
	}
}

// WithKeywords adds keywords to the definition and returns it for chaining.
func (d *Definition) WithKeywords(keywords ...Keyword) *Definition {
	if d.Keywords == nil {
		d.Keywords = NewSet[Keyword]()
	}
	for _, k := range keywords {
		d.Keywords.Add(k)
	}
	return d
}

// WithColors adds colors to the definition and returns it for chaining.
func (d *Definition) WithColors(colors ...Color) *Definition {
	if d.Colors == nil {
		d.Colors = NewSet[Color]()
	}
	for _, c := range colors {
		d.Colors.Add(c)
	}
	return d
}

// WithSubtypes adds subtypes to the definition and returns it for chaining.
func (d *Definition) WithSubtypes(subtypes ...Subtype) *Definition {
	if d.Subtypes == nil {
		d.Subtypes = NewSet[Subtype]()
	}
	for _, s := range subtypes {
		d.Subtypes.Add(s)
	}
	return d
}

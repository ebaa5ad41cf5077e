package effects

import (
	"testing"

	"github.com/magefree/mage-rules-core/internal/game/card"
	"github.com/stretchr/testify/assert"
)

func TestIndependentModifiersKeepTimestampOrder(t *testing.T) {
	mods := []Modifier{
		NewModifier("c", 3, Self{}, AddKeyword{Keyword: card.KeywordFlying}),
		NewModifier("a", 1, Self{}, AddKeyword{Keyword: card.KeywordTrample}),
		NewModifier("b", 2, Self{}, RemoveKeyword{Keyword: card.KeywordFlying}),
	}
	assert.Equal(t, []string{"a", "b", "c"}, modifierIDs(SortWithDependencies(mods)))
}

func TestDependentModifierWaitsForItsDependency(t *testing.T) {
	// "Artifacts are Golems" reads the artifact type that "creatures are artifacts"
	// writes, so it applies afterwards despite the earlier timestamp.
	golems := NewModifier("golems", 1, All{Criteria: IsType{Type: card.TypeArtifact}}, AddSubtype{Subtype: "Golem"})
	artifacts := NewModifier("artifacts", 2, All{Criteria: IsType{Type: card.TypeCreature}}, AddType{Type: card.TypeArtifact})

	ordered := SortWithDependencies([]Modifier{golems, artifacts})
	assert.Equal(t, []string{"artifacts", "golems"}, modifierIDs(ordered))
}

func TestDependentAppliesJustAfterDependency(t *testing.T) {
	dependent := NewModifier("a", 1, All{Criteria: IsType{Type: card.TypeArtifact}}, AddSubtype{Subtype: "Golem"})
	unrelated := NewModifier("b", 2, Self{}, AddSubtype{Subtype: "Elf"})
	dependency := NewModifier("c", 3, Self{}, AddType{Type: card.TypeArtifact})
	late := NewModifier("d", 4, Self{}, AddSubtype{Subtype: "Wizard"})

	ordered := SortWithDependencies([]Modifier{late, dependency, unrelated, dependent})
	assert.Equal(t, []string{"b", "c", "a", "d"}, modifierIDs(ordered))
}

func TestDependencyLoopFallsBackToTimestamps(t *testing.T) {
	// Each reads the type the other writes.
	first := NewModifier("first", 1, All{Criteria: IsType{Type: card.TypeArtifact}}, AddType{Type: card.TypeCreature})
	second := NewModifier("second", 2, All{Criteria: IsType{Type: card.TypeCreature}}, AddType{Type: card.TypeArtifact})
	outsider := NewModifier("outsider", 3, All{Criteria: IsType{Type: card.TypeLand}}, AddSubtype{Subtype: "Forest"})

	for _, input := range [][]Modifier{
		{first, second, outsider},
		{outsider, second, first},
	} {
		ordered := SortWithDependencies(input)
		assert.Equal(t, []string{"first", "second", "outsider"}, modifierIDs(ordered))
	}
}

func TestSelfDependencyIsIgnored(t *testing.T) {
	m := NewModifier("self", 1, All{Criteria: IsType{Type: card.TypeCreature}}, RemoveType{Type: card.TypeCreature})
	other := NewModifier("other", 2, Self{}, AddColor{Color: card.ColorGreen})
	assert.Equal(t, []string{"self", "other"}, modifierIDs(SortWithDependencies([]Modifier{other, m})))
}

func TestRemoveAllAbilitiesAffectsKeywordFilters(t *testing.T) {
	flyers := NewModifier("flyers", 1, All{Criteria: WithKeyword{Keyword: card.KeywordFlying}}, AddKeyword{Keyword: card.KeywordVigilance})
	humility := NewModifier("humility", 2, All{Criteria: IsType{Type: card.TypeCreature}}, RemoveAllAbilities{})

	ordered := SortWithDependencies([]Modifier{flyers, humility})
	assert.Equal(t, []string{"humility", "flyers"}, modifierIDs(ordered))
}

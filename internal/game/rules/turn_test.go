package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepPhases(t *testing.T) {
	expected := []struct {
		phase Phase
		step  Step
	}{
		{PhaseBeginning, StepUntap},
		{PhaseBeginning, StepUpkeep},
		{PhaseBeginning, StepDraw},
		{PhasePrecombatMain, StepMain1},
		{PhaseCombat, StepBeginCombat},
		{PhaseCombat, StepDeclareAttackers},
		{PhaseCombat, StepDeclareBlockers},
		{PhaseCombat, StepFirstStrikeDamage},
		{PhaseCombat, StepCombatDamage},
		{PhaseCombat, StepEndCombat},
		{PhasePostcombatMain, StepMain2},
		{PhaseEnding, StepEnd},
		{PhaseEnding, StepCleanup},
	}

	for _, exp := range expected {
		assert.Equal(t, exp.phase, exp.step.Phase(), exp.step.String())
		assert.Equal(t, exp.phase == PhaseCombat, exp.step.IsCombat())
	}
}

func TestParseStep(t *testing.T) {
	step, ok := ParseStep("upkeep")
	assert.True(t, ok)
	assert.Equal(t, StepUpkeep, step)

	step, ok = ParseStep("begin combat")
	assert.True(t, ok)
	assert.Equal(t, StepBeginCombat, step)

	_, ok = ParseStep("second breakfast")
	assert.False(t, ok)
	assert.Equal(t, "STEP_99", Step(99).String())
}

package rules

import (
	"fmt"
	"strings"
)

// Phase represents the broad phases of a turn.
type Phase int

const (
	PhaseBeginning Phase = iota
	PhasePrecombatMain
	PhaseCombat
	PhasePostcombatMain
	PhaseEnding
)

var phaseNames = map[Phase]string{
	PhaseBeginning:      "BEGINNING",
	PhasePrecombatMain:  "PRECOMBAT_MAIN",
	PhaseCombat:         "COMBAT",
	PhasePostcombatMain: "POSTCOMBAT_MAIN",
	PhaseEnding:         "ENDING",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// Step represents the individual steps that comprise a turn. "At the beginning of"
// triggers name one of these.
type Step int

const (
	StepUntap Step = iota
	StepUpkeep
	StepDraw
	StepMain1
	StepBeginCombat
	StepDeclareAttackers
	StepDeclareBlockers
	StepFirstStrikeDamage
	StepCombatDamage
	StepEndCombat
	StepMain2
	StepEnd
	StepCleanup
)

var stepNames = map[Step]string{
	StepUntap:             "UNTAP",
	StepUpkeep:            "UPKEEP",
	StepDraw:              "DRAW",
	StepMain1:             "MAIN1",
	StepBeginCombat:       "BEGIN_COMBAT",
	StepDeclareAttackers:  "DECLARE_ATTACKERS",
	StepDeclareBlockers:   "DECLARE_BLOCKERS",
	StepFirstStrikeDamage: "FIRST_STRIKE_DAMAGE",
	StepCombatDamage:      "COMBAT_DAMAGE",
	StepEndCombat:         "END_COMBAT",
	StepMain2:             "MAIN2",
	StepEnd:               "END",
	StepCleanup:           "CLEANUP",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STEP_%d", int(s))
}

// Phase returns the phase the step belongs to.
func (s Step) Phase() Phase {
	switch {
	case s <= StepDraw:
		return PhaseBeginning
	case s == StepMain1:
		return PhasePrecombatMain
	case s <= StepEndCombat:
		return PhaseCombat
	case s == StepMain2:
		return PhasePostcombatMain
	default:
		return PhaseEnding
	}
}

// IsCombat reports whether the step is part of the combat phase.
func (s Step) IsCombat() bool {
	return s.Phase() == PhaseCombat
}

// ParseStep accepts the names produced by String, case-insensitively, with
// either underscores or spaces.
func ParseStep(name string) (Step, bool) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
	for step, n := range stepNames {
		if n == normalized {
			return step, true
		}
	}
	return 0, false
}

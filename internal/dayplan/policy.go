package dayplan

import (
	"context"

	"reup-dayplan-backend/internal/planner"
)

// Policy answers every decision the same way. It is the provider for
// batch runs where nobody can be asked.
type Policy struct {
	Fixed  FixedDecision
	Choice AlgorithmChoice
}

func (p Policy) ConvertFixed(context.Context, []planner.Task) (FixedDecision, error) {
	return p.Fixed, nil
}

func (p Policy) ChooseAlgorithm(context.Context, int) (AlgorithmChoice, error) {
	return p.Choice, nil
}

// ParseChoice maps "sequential", "weighted" or "abort" to a choice.
// Anything else is undecided.
func ParseChoice(s string) AlgorithmChoice {
	switch AlgorithmChoice(s) {
	case ChoiceFast, ChoiceSmart, ChoiceAbort:
		return AlgorithmChoice(s)
	}
	return ChoiceUndecided
}

// ParseFixedDecision maps "convert" or "abort"; anything else is undecided.
func ParseFixedDecision(s string) FixedDecision {
	switch FixedDecision(s) {
	case FixedConvert, FixedAbort:
		return FixedDecision(s)
	}
	return FixedUndecided
}

package dayplan

import (
	"fmt"

	"reup-dayplan-backend/internal/planner"
)

// RunPlanning computes one planning step for today's tasks. It is pure:
// nothing is written, and every state other than ready (or
// nothing_to_plan after a conversion) carries zero updates.
func RunPlanning(tasks []planner.Task, s planner.Settings, now int, d Decisions) (Outcome, error) {
	return compute(tasks, s, now, d, planner.DefaultWeighted)
}

func compute(tasks []planner.Task, s planner.Settings, now int, d Decisions, wp planner.Weighted) (Outcome, error) {
	var fixed, ambiguous []planner.Task
	for _, t := range tasks {
		if t.Completed || t.Kind != planner.KindFixed {
			continue
		}
		if t.HasStart() {
			fixed = append(fixed, t)
		} else {
			ambiguous = append(ambiguous, t)
		}
	}

	converted := map[string]bool{}
	if len(ambiguous) > 0 {
		switch d.ConvertFixed {
		case FixedConvert:
			for _, t := range ambiguous {
				converted[t.ID] = true
			}
		case FixedAbort:
			return Outcome{State: StateCancelled, Ambiguous: ambiguous, Updates: []Update{}}, nil
		default:
			return Outcome{State: StateAwaitingFixedConversion, Ambiguous: ambiguous, Updates: []Update{}}, nil
		}
	}

	// candidates keep list order; converted tasks sit where they were
	var flexible []planner.Task
	for _, t := range tasks {
		if !t.Plannable() {
			continue
		}
		if t.Kind == planner.KindFlexible || converted[t.ID] {
			flexible = append(flexible, t)
		}
	}

	out := Outcome{Candidates: len(flexible), Updates: []Update{}}
	if len(flexible) == 0 {
		out.State = StateNothingToPlan
		out.Updates = conversions(tasks, converted)
		return out, nil
	}

	algo, state := resolveAlgorithm(s.Algorithm, d.Algorithm)
	if state != "" {
		out.State = state
		return out, nil
	}
	out.Algorithm = algo

	var (
		plan planner.Plan
		err  error
	)
	if algo == planner.AlgorithmWeighted {
		plan, err = wp.Place(flexible, fixed, s, now)
	} else {
		plan, err = planner.PlaceSequential(flexible, fixed, s, now)
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("place %s: %w", algo, err)
	}

	out.State = StateReady
	out.Plan = plan
	if plan.FellBackToSequential {
		out.FellBack = true
		out.Notice = fmt.Sprintf("%d tasks to plan, smart mode handles up to %d: planned in list order instead", len(flexible), wp.Limit())
	}
	out.Updates = buildUpdates(tasks, flexible, plan, converted)
	return out, nil
}

// resolveAlgorithm picks the placer. A runtime choice only counts when the
// settings ask for one; otherwise the configured algorithm wins.
func resolveAlgorithm(configured planner.Algorithm, choice AlgorithmChoice) (planner.Algorithm, State) {
	switch configured {
	case planner.AlgorithmWeighted:
		return planner.AlgorithmWeighted, ""
	case planner.AlgorithmAsk:
		switch choice {
		case ChoiceFast:
			return planner.AlgorithmSequential, ""
		case ChoiceSmart:
			return planner.AlgorithmWeighted, ""
		case ChoiceAbort:
			return "", StateCancelled
		default:
			return "", StateAwaitingAlgorithmChoice
		}
	default:
		return planner.AlgorithmSequential, ""
	}
}

// buildUpdates emits one update per candidate, in list order: a start time
// for placed tasks and an explicit clear for the rest. Converted fixed
// tasks also get their kind flipped, even when they were not candidates.
func buildUpdates(tasks, candidates []planner.Task, plan planner.Plan, converted map[string]bool) []Update {
	starts := make(map[string]string, len(plan.Placements))
	for _, p := range plan.Placements {
		starts[p.TaskID] = p.StartTime
	}
	isCandidate := make(map[string]bool, len(candidates))
	for _, t := range candidates {
		isCandidate[t.ID] = true
	}

	updates := make([]Update, 0, len(candidates)+len(converted))
	for _, t := range tasks {
		if !isCandidate[t.ID] && !converted[t.ID] {
			continue
		}
		var p Patch
		if converted[t.ID] {
			p.Kind = planner.KindFlexible
		}
		if isCandidate[t.ID] {
			if start, ok := starts[t.ID]; ok {
				p.StartTime = start
			} else {
				p.ClearStart = true
			}
		}
		updates = append(updates, Update{TaskID: t.ID, Patch: p})
	}
	return updates
}

func conversions(tasks []planner.Task, converted map[string]bool) []Update {
	updates := []Update{}
	for _, t := range tasks {
		if converted[t.ID] {
			updates = append(updates, Update{TaskID: t.ID, Patch: Patch{Kind: planner.KindFlexible}})
		}
	}
	return updates
}

package planner

// PlaceSequential places flexible tasks first-fit in the order given.
//
// The cursor starts at now rounded up to the next quarter hour and never
// earlier than work start. Each task takes the earliest slot at or after
// the cursor that clears every obstacle; the cursor then moves past the
// task plus the gap. A task that drifts past work end + 4h is left
// unplaced and the cursor stays where it was.
func PlaceSequential(flexible, fixed []Task, s Settings, now int) (Plan, error) {
	w, err := resolve(s)
	if err != nil {
		return Plan{}, err
	}
	base, err := obstacles(fixed, w)
	if err != nil {
		return Plan{}, err
	}
	plan := placeInOrder(flexible, base, w, now)
	plan.Orderings = 1
	return plan, nil
}

func placeInOrder(order []Task, base []Interval, w window, now int) Plan {
	plan := Plan{
		Placements: make([]Placement, 0, len(order)),
		Unplaced:   []string{},
	}
	busy := base
	cursor := w.cursor(now)

	for _, t := range order {
		start, ok := firstFit(busy, cursor, t.DurationMinutes, w.limit())
		if !ok {
			plan.Unplaced = append(plan.Unplaced, t.ID)
			continue
		}
		end := start + t.DurationMinutes
		plan.Placements = append(plan.Placements, Placement{
			TaskID:    t.ID,
			StartTime: FormatTime(start),
			Start:     start,
			End:       end,
		})
		busy = insert(busy, Interval{Start: start, End: end + w.gap})
		cursor = end + w.gap
	}
	return plan
}

// firstFit scans the merged busy set once; since it is sorted and
// disjoint, a candidate pushed past one range can only collide with later
// ones.
func firstFit(busy []Interval, cursor, d, limit int) (int, bool) {
	if d <= 0 {
		return 0, false
	}
	candidate := cursor
	for _, slot := range busy {
		if candidate > limit {
			return 0, false
		}
		if candidate < slot.End && candidate+d > slot.Start {
			candidate = slot.End
		}
	}
	if candidate > limit || candidate+d > MinutesPerDay {
		return 0, false
	}
	return candidate, true
}

package planner

// BuildBusySet returns the merged occupied ranges of the day: lunch and
// dinner always, plus every fixed task that has both a start time and a
// duration. Overlaps between them are merged silently.
func BuildBusySet(fixed []Task, s Settings) ([]Interval, error) {
	w, err := resolve(s)
	if err != nil {
		return nil, err
	}
	return buildBusy(fixed, w, false)
}

// obstacles is the busy set the placers work against. Fixed tasks are
// widened by the task gap on both sides; meals are breaks on their own
// and are not widened.
func obstacles(fixed []Task, w window) ([]Interval, error) {
	return buildBusy(fixed, w, true)
}

func buildBusy(fixed []Task, w window, pad bool) ([]Interval, error) {
	busy := make([]Interval, 0, len(fixed)+len(w.meals))
	busy = append(busy, w.meals...)
	for _, t := range fixed {
		if t.Kind != KindFixed || !t.HasStart() || t.DurationMinutes <= 0 {
			continue
		}
		iv, err := ToInterval(t)
		if err != nil {
			return nil, err
		}
		if pad {
			iv.Start -= w.gap
			iv.End += w.gap
		}
		busy = append(busy, iv)
	}
	return MergeSorted(busy), nil
}

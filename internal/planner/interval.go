package planner

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrNoStartTime = errors.New("task has no start time")
	ErrNoDuration  = errors.New("task has no duration")
)

// Interval is a half-open range [Start, End) in minutes since midnight.
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Overlaps reports whether the two ranges share at least one minute.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && i.End > o.Start
}

func (i Interval) String() string {
	return FormatTime(i.Start) + "-" + FormatTime(i.End)
}

// ToInterval returns the range occupied by an anchored task.
func ToInterval(t Task) (Interval, error) {
	if !t.HasStart() {
		return Interval{}, fmt.Errorf("task %s: %w", t.ID, ErrNoStartTime)
	}
	if t.DurationMinutes <= 0 {
		return Interval{}, fmt.Errorf("task %s: %w", t.ID, ErrNoDuration)
	}
	start, err := ParseTime(t.StartTime)
	if err != nil {
		return Interval{}, fmt.Errorf("task %s: %w", t.ID, err)
	}
	return Interval{Start: start, End: start + t.DurationMinutes}, nil
}

// MergeSorted sorts a copy of in by start and folds overlapping ranges
// into a minimal disjoint cover. Touching ranges are kept apart.
func MergeSorted(in []Interval) []Interval {
	if len(in) == 0 {
		return nil
	}
	sorted := append([]Interval(nil), in...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	out := sorted[:1]
	for _, next := range sorted[1:] {
		cur := &out[len(out)-1]
		if next.Start < cur.End {
			if next.End > cur.End {
				cur.End = next.End
			}
			continue
		}
		out = append(out, next)
	}
	return out
}

// insert adds iv to a merged set and returns the re-merged set.
// busy itself is never modified.
func insert(busy []Interval, iv Interval) []Interval {
	next := make([]Interval, 0, len(busy)+1)
	next = append(next, busy...)
	return MergeSorted(append(next, iv))
}

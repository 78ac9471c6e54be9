package planner

import (
	"fmt"
	"math/rand"
	"reflect"
	"sort"
	"testing"
)

func scenarioSettings() Settings {
	s := DefaultSettings()
	s.WorkStart, s.WorkEnd = "09:00", "17:00"
	s.LunchStart, s.LunchEnd = "12:00", "13:00"
	s.TaskGap = 15
	return s
}

func flex(id string, d int) Task {
	return Task{ID: id, Title: id, Kind: KindFlexible, DurationMinutes: d}
}

func fixedAt(id, start string, d int) Task {
	return Task{ID: id, Title: id, Kind: KindFixed, StartTime: start, DurationMinutes: d}
}

func mustTime(t *testing.T, s string) int {
	t.Helper()
	m, err := ParseTime(s)
	if err != nil {
		t.Fatalf("ParseTime(%q): %v", s, err)
	}
	return m
}

func startsOf(p Plan) map[string]string {
	out := make(map[string]string, len(p.Placements))
	for _, pl := range p.Placements {
		out[pl.TaskID] = pl.StartTime
	}
	return out
}

func TestPlaceSequentialBackToBack(t *testing.T) {
	t.Parallel()
	plan, err := PlaceSequential([]Task{flex("A", 30), flex("B", 45)}, nil, scenarioSettings(), mustTime(t, "09:00"))
	if err != nil {
		t.Fatalf("PlaceSequential: %v", err)
	}
	want := []Placement{
		{TaskID: "A", StartTime: "09:00", Start: 540, End: 570},
		{TaskID: "B", StartTime: "09:45", Start: 585, End: 630},
	}
	if !reflect.DeepEqual(plan.Placements, want) {
		t.Fatalf("placements = %+v, want %+v", plan.Placements, want)
	}
	if len(plan.Unplaced) != 0 {
		t.Fatalf("unplaced = %v", plan.Unplaced)
	}
}

func TestPlaceSequentialSkipsLunch(t *testing.T) {
	t.Parallel()
	plan, err := PlaceSequential([]Task{flex("A", 30)}, nil, scenarioSettings(), mustTime(t, "11:50"))
	if err != nil {
		t.Fatalf("PlaceSequential: %v", err)
	}
	if got := startsOf(plan)["A"]; got != "13:00" {
		t.Fatalf("A start = %q, want 13:00", got)
	}
}

func TestPlaceSequentialCursorClampedToWorkStart(t *testing.T) {
	t.Parallel()
	plan, err := PlaceSequential([]Task{flex("A", 30)}, nil, scenarioSettings(), mustTime(t, "06:10"))
	if err != nil {
		t.Fatalf("PlaceSequential: %v", err)
	}
	if got := startsOf(plan)["A"]; got != "09:00" {
		t.Fatalf("A start = %q, want 09:00", got)
	}
}

func TestPlaceSequentialCursorRoundsUp(t *testing.T) {
	t.Parallel()
	plan, err := PlaceSequential([]Task{flex("A", 30)}, nil, scenarioSettings(), mustTime(t, "09:01"))
	if err != nil {
		t.Fatalf("PlaceSequential: %v", err)
	}
	if got := startsOf(plan)["A"]; got != "09:15" {
		t.Fatalf("A start = %q, want 09:15", got)
	}
}

func TestPlaceSequentialKeepsGapAroundFixed(t *testing.T) {
	t.Parallel()
	fixed := []Task{fixedAt("meeting", "10:00", 60)}
	flexible := []Task{flex("A", 45), flex("B", 30)}
	plan, err := PlaceSequential(flexible, fixed, scenarioSettings(), mustTime(t, "09:00"))
	if err != nil {
		t.Fatalf("PlaceSequential: %v", err)
	}
	// A 09:00-09:45 leaves exactly the gap before the meeting; B must wait
	// until the meeting ends plus the gap.
	got := startsOf(plan)
	if got["A"] != "09:00" || got["B"] != "11:15" {
		t.Fatalf("starts = %v, want A 09:00, B 11:15", got)
	}
}

func TestPlaceSequentialTaskTooLongForHole(t *testing.T) {
	t.Parallel()
	fixed := []Task{fixedAt("meeting", "09:30", 30)}
	plan, err := PlaceSequential([]Task{flex("A", 30)}, fixed, scenarioSettings(), mustTime(t, "09:00"))
	if err != nil {
		t.Fatalf("PlaceSequential: %v", err)
	}
	// 09:00-09:30 would end inside the meeting's leading gap.
	if got := startsOf(plan)["A"]; got != "10:15" {
		t.Fatalf("A start = %q, want 10:15", got)
	}
}

func TestPlaceSequentialSafetyBound(t *testing.T) {
	t.Parallel()
	s := scenarioSettings() // limit is 17:00 + 4h = 21:00

	plan, err := PlaceSequential([]Task{flex("A", 30)}, nil, s, mustTime(t, "20:50"))
	if err != nil {
		t.Fatalf("PlaceSequential: %v", err)
	}
	if got := startsOf(plan)["A"]; got != "21:00" {
		t.Fatalf("A start = %q, want 21:00 (at the bound)", got)
	}

	plan, err = PlaceSequential([]Task{flex("A", 30), flex("B", 30)}, nil, s, mustTime(t, "21:10"))
	if err != nil {
		t.Fatalf("PlaceSequential: %v", err)
	}
	if len(plan.Placements) != 0 {
		t.Fatalf("placements = %+v, want none past the bound", plan.Placements)
	}
	if !reflect.DeepEqual(plan.Unplaced, []string{"A", "B"}) {
		t.Fatalf("unplaced = %v", plan.Unplaced)
	}
}

func TestPlaceSequentialNeverCrossesMidnight(t *testing.T) {
	t.Parallel()
	s := scenarioSettings()
	s.WorkStart, s.WorkEnd = "20:00", "23:00"
	s.DinnerStart, s.DinnerEnd = "19:00", "19:30"
	plan, err := PlaceSequential([]Task{flex("late", 60)}, nil, s, mustTime(t, "23:30"))
	if err != nil {
		t.Fatalf("PlaceSequential: %v", err)
	}
	if !reflect.DeepEqual(plan.Unplaced, []string{"late"}) {
		t.Fatalf("unplaced = %v, want [late]", plan.Unplaced)
	}
}

func TestPlaceSequentialUnplacedKeepsCursor(t *testing.T) {
	t.Parallel()
	s := scenarioSettings()
	// a 10h task is pushed past lunch and dinner to 18:00 and then runs
	// past midnight; the short task after it still gets the early slot.
	flexible := []Task{flex("huge", 600), flex("small", 30)}
	plan, err := PlaceSequential(flexible, nil, s, mustTime(t, "09:00"))
	if err != nil {
		t.Fatalf("PlaceSequential: %v", err)
	}
	if !reflect.DeepEqual(plan.Unplaced, []string{"huge"}) {
		t.Fatalf("unplaced = %v, want [huge]", plan.Unplaced)
	}
	if got := startsOf(plan)["small"]; got != "09:00" {
		t.Fatalf("small start = %q, want 09:00", got)
	}
}

func TestPlaceSequentialShrunkWindowLeavesStaleTaskUnplaced(t *testing.T) {
	t.Parallel()
	s := scenarioSettings()
	s.WorkStart, s.WorkEnd = "09:00", "10:00" // bound is 14:00
	stale := flex("stale", 60)
	stale.StartTime = "16:00"
	plan, err := PlaceSequential([]Task{stale}, nil, s, mustTime(t, "14:30"))
	if err != nil {
		t.Fatalf("PlaceSequential: %v", err)
	}
	if !reflect.DeepEqual(plan.Unplaced, []string{"stale"}) {
		t.Fatalf("unplaced = %v, want [stale]", plan.Unplaced)
	}
}

func TestPlaceSequentialDeterministic(t *testing.T) {
	t.Parallel()
	fixed := []Task{fixedAt("f1", "10:00", 30), fixedAt("f2", "14:00", 90)}
	flexible := []Task{flex("a", 50), flex("b", 20), flex("c", 75), flex("d", 10)}
	first, err := PlaceSequential(flexible, fixed, scenarioSettings(), 540)
	if err != nil {
		t.Fatalf("PlaceSequential: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := PlaceSequential(flexible, fixed, scenarioSettings(), 540)
		if err != nil {
			t.Fatalf("PlaceSequential: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\n%+v\n%+v", i, first, again)
		}
	}
}

func TestPlaceSequentialTaskSplittingIsNoop(t *testing.T) {
	t.Parallel()
	s := scenarioSettings()
	flexible := []Task{flex("long", 180), flex("short", 20)}
	fixed := []Task{fixedAt("f", "10:30", 30)}

	off, err := PlaceSequential(flexible, fixed, s, 540)
	if err != nil {
		t.Fatalf("PlaceSequential: %v", err)
	}
	s.AllowTaskSplitting = true
	on, err := PlaceSequential(flexible, fixed, s, 540)
	if err != nil {
		t.Fatalf("PlaceSequential: %v", err)
	}
	if !reflect.DeepEqual(off, on) {
		t.Fatalf("allow_task_splitting changed the plan:\n%+v\n%+v", off, on)
	}
}

func TestPlaceSequentialInvalidSettings(t *testing.T) {
	t.Parallel()
	s := scenarioSettings()
	s.WorkEnd = "08:00"
	if _, err := PlaceSequential([]Task{flex("A", 30)}, nil, s, 540); err == nil {
		t.Fatal("expected error for inverted work window")
	}
}

// TestPlaceSequentialProperties checks, over generated days, that
// placements clear obstacles by the gap, never overlap meals, and that
// successive placements move forward by at least duration plus gap.
func TestPlaceSequentialProperties(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(42))
	s := scenarioSettings()

	for round := 0; round < 200; round++ {
		s.TaskGap = rng.Intn(31)

		var fixed []Task
		for i := 0; i < rng.Intn(4); i++ {
			start := 9*60 + rng.Intn(8*60)
			fixed = append(fixed, fixedAt(fmt.Sprintf("f%d", i), FormatTime(start), 15+rng.Intn(90)))
		}
		var flexible []Task
		for i := 0; i < 1+rng.Intn(6); i++ {
			flexible = append(flexible, flex(fmt.Sprintf("x%d", i), 10+rng.Intn(120)))
		}
		now := 7*60 + rng.Intn(8*60)

		plan, err := PlaceSequential(flexible, fixed, s, now)
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		if len(plan.Placements)+len(plan.Unplaced) != len(flexible) {
			t.Fatalf("round %d: %d placed + %d unplaced != %d", round, len(plan.Placements), len(plan.Unplaced), len(flexible))
		}

		w, _ := resolve(s)
		cursor := w.cursor(now)
		prev := -1
		for _, p := range plan.Placements {
			if p.Start < cursor {
				t.Fatalf("round %d: %s starts %d before cursor %d", round, p.TaskID, p.Start, cursor)
			}
			if prev >= 0 && p.Start < prev+s.TaskGap {
				t.Fatalf("round %d: %s starts %d, previous ended %d, gap %d", round, p.TaskID, p.Start, prev, s.TaskGap)
			}
			prev = p.End
			iv := Interval{Start: p.Start, End: p.End}
			for _, m := range w.meals {
				if iv.Overlaps(m) {
					t.Fatalf("round %d: %s %v overlaps meal %v", round, p.TaskID, iv, m)
				}
			}
			for _, f := range fixed {
				fi, _ := ToInterval(f)
				if !(iv.End+s.TaskGap <= fi.Start || fi.End+s.TaskGap <= iv.Start) {
					t.Fatalf("round %d: %s %v too close to %s %v (gap %d)", round, p.TaskID, iv, f.ID, fi, s.TaskGap)
				}
			}
		}

		starts := make([]int, 0, len(plan.Placements))
		for _, p := range plan.Placements {
			starts = append(starts, p.Start)
		}
		if !sort.IntsAreSorted(starts) {
			t.Fatalf("round %d: cursor moved backwards: %v", round, starts)
		}
	}
}

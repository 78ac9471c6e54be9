package planner

import (
	"errors"
	"reflect"
	"testing"
)

func TestMergeSorted(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   []Interval
		want []Interval
	}{
		{name: "empty", in: nil, want: nil},
		{name: "single", in: []Interval{{10, 20}}, want: []Interval{{10, 20}}},
		{name: "unsorted disjoint", in: []Interval{{30, 40}, {10, 20}}, want: []Interval{{10, 20}, {30, 40}}},
		{name: "overlap", in: []Interval{{10, 25}, {20, 30}}, want: []Interval{{10, 30}}},
		{name: "contained", in: []Interval{{10, 50}, {20, 30}}, want: []Interval{{10, 50}}},
		{name: "touching stay apart", in: []Interval{{10, 20}, {20, 30}}, want: []Interval{{10, 20}, {20, 30}}},
		{name: "chain", in: []Interval{{40, 60}, {10, 25}, {20, 45}}, want: []Interval{{10, 60}}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := MergeSorted(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("MergeSorted(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMergeSortedDoesNotMutateInput(t *testing.T) {
	t.Parallel()
	in := []Interval{{30, 40}, {10, 35}}
	_ = MergeSorted(in)
	if in[0] != (Interval{30, 40}) || in[1] != (Interval{10, 35}) {
		t.Fatalf("input mutated: %v", in)
	}
}

func TestOverlaps(t *testing.T) {
	t.Parallel()
	a := Interval{Start: 60, End: 120}
	if !a.Overlaps(Interval{Start: 90, End: 150}) {
		t.Fatal("expected overlap")
	}
	if a.Overlaps(Interval{Start: 120, End: 150}) {
		t.Fatal("touching ranges must not overlap")
	}
	if a.Overlaps(Interval{Start: 0, End: 60}) {
		t.Fatal("touching ranges must not overlap")
	}
}

func TestToInterval(t *testing.T) {
	t.Parallel()
	iv, err := ToInterval(Task{ID: "1", StartTime: "10:15", DurationMinutes: 45})
	if err != nil {
		t.Fatalf("ToInterval: %v", err)
	}
	if iv != (Interval{Start: 615, End: 660}) {
		t.Fatalf("interval = %v", iv)
	}

	if _, err := ToInterval(Task{ID: "2", DurationMinutes: 30}); !errors.Is(err, ErrNoStartTime) {
		t.Fatalf("err = %v, want ErrNoStartTime", err)
	}
	if _, err := ToInterval(Task{ID: "3", StartTime: "10:00"}); !errors.Is(err, ErrNoDuration) {
		t.Fatalf("err = %v, want ErrNoDuration", err)
	}
	if _, err := ToInterval(Task{ID: "4", StartTime: "25:00", DurationMinutes: 10}); !errors.Is(err, ErrInvalidTime) {
		t.Fatalf("err = %v, want ErrInvalidTime", err)
	}
}

func TestBuildBusySetMealsOnly(t *testing.T) {
	t.Parallel()
	busy, err := BuildBusySet(nil, DefaultSettings())
	if err != nil {
		t.Fatalf("BuildBusySet: %v", err)
	}
	want := []Interval{{Start: 690, End: 780}, {Start: 1050, End: 1080}}
	if !reflect.DeepEqual(busy, want) {
		t.Fatalf("busy = %v, want %v", busy, want)
	}
}

func TestBuildBusySetMergesFixedAndMeals(t *testing.T) {
	t.Parallel()
	fixed := []Task{
		{ID: "standup", Kind: KindFixed, StartTime: "12:30", DurationMinutes: 60}, // overlaps lunch
		{ID: "review", Kind: KindFixed, StartTime: "09:00", DurationMinutes: 30},
		{ID: "floating", Kind: KindFixed, DurationMinutes: 30},                   // no anchor
		{ID: "flex", Kind: KindFlexible, StartTime: "15:00", DurationMinutes: 30}, // not an obstacle
	}
	busy, err := BuildBusySet(fixed, DefaultSettings())
	if err != nil {
		t.Fatalf("BuildBusySet: %v", err)
	}
	want := []Interval{{Start: 540, End: 570}, {Start: 690, End: 810}, {Start: 1050, End: 1080}}
	if !reflect.DeepEqual(busy, want) {
		t.Fatalf("busy = %v, want %v", busy, want)
	}
	assertSortedDisjoint(t, busy)
}

func TestObstaclesPadFixedTasksOnly(t *testing.T) {
	t.Parallel()
	s := DefaultSettings()
	s.TaskGap = 10
	w, err := resolve(s)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	got, err := obstacles([]Task{{ID: "a", Kind: KindFixed, StartTime: "09:00", DurationMinutes: 30}}, w)
	if err != nil {
		t.Fatalf("obstacles: %v", err)
	}
	want := []Interval{{Start: 530, End: 580}, {Start: 690, End: 780}, {Start: 1050, End: 1080}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("obstacles = %v, want %v", got, want)
	}
}

func assertSortedDisjoint(t *testing.T, busy []Interval) {
	t.Helper()
	for i := 1; i < len(busy); i++ {
		if busy[i].Start < busy[i-1].End {
			t.Fatalf("busy set not disjoint at %d: %v", i, busy)
		}
	}
}

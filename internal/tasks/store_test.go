package tasks

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"reup-dayplan-backend/internal/dayplan"
	"reup-dayplan-backend/internal/db"
	"reup-dayplan-backend/internal/planner"
)

var today = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dbx, err := db.Open(db.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = dbx.Close() })
	if err := db.Migrate(context.Background(), dbx, db.DriverSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return dbx
}

func mustCreate(t *testing.T, s *Store, task Task) Task {
	t.Helper()
	if task.Text == "" {
		task.Text = task.Title
	}
	out, err := s.Create(context.Background(), task)
	if err != nil {
		t.Fatalf("Create %q: %v", task.Title, err)
	}
	return out
}

func TestStoreListsTodayInOrder(t *testing.T) {
	dbx := testDB(t)
	ctx := context.Background()
	s := NewStore(dbx, 1, today)

	a := mustCreate(t, s, Task{Title: "a", DurationMinutes: 30})
	b := mustCreate(t, s, Task{Title: "b", DurationMinutes: 45, Kind: planner.KindFixed, StartTime: "10:00", Important: true})
	mustCreate(t, NewStore(dbx, 1, today.AddDate(0, 0, 1)), Task{Title: "tomorrow", DurationMinutes: 30})
	mustCreate(t, NewStore(dbx, 2, today), Task{Title: "someone else", DurationMinutes: 30})
	mustCreate(t, s, Task{Title: "done", DurationMinutes: 30, Status: StatusDone})

	got, err := s.GetTodayTasks(ctx)
	if err != nil {
		t.Fatalf("GetTodayTasks: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d tasks, want 2: %+v", len(got), got)
	}
	if got[0].ID != itoa(a.ID) || got[1].ID != itoa(b.ID) {
		t.Fatalf("order = [%s %s], want [%d %d]", got[0].ID, got[1].ID, a.ID, b.ID)
	}
	if got[0].Kind != planner.KindFlexible || got[0].HasStart() {
		t.Fatalf("a = %+v", got[0])
	}
	if got[1].Kind != planner.KindFixed || got[1].StartTime != "10:00" || !got[1].Important {
		t.Fatalf("b = %+v", got[1])
	}
}

func TestStoreUpdateTask(t *testing.T) {
	dbx := testDB(t)
	ctx := context.Background()
	s := NewStore(dbx, 1, today)
	task := mustCreate(t, s, Task{Title: "a", DurationMinutes: 30, Kind: planner.KindFixed})
	id := itoa(task.ID)

	startOf := func() (string, planner.Kind) {
		t.Helper()
		list, err := s.List(ctx)
		if err != nil || len(list) != 1 {
			t.Fatalf("List = %v, %v", list, err)
		}
		return list[0].StartTime, list[0].Kind
	}

	if err := s.UpdateTask(ctx, id, dayplan.Patch{StartTime: "09:45", Kind: planner.KindFlexible}); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if start, kind := startOf(); start != "09:45" || kind != planner.KindFlexible {
		t.Fatalf("after set: start = %q kind = %q", start, kind)
	}

	if err := s.UpdateTask(ctx, id, dayplan.Patch{ClearStart: true}); err != nil {
		t.Fatalf("UpdateTask clear: %v", err)
	}
	if start, _ := startOf(); start != "" {
		t.Fatalf("after clear: start = %q", start)
	}

	if err := s.UpdateTask(ctx, id, dayplan.Patch{}); err != nil {
		t.Fatalf("empty patch: %v", err)
	}
}

func TestStoreUpdateTaskNotFound(t *testing.T) {
	dbx := testDB(t)
	ctx := context.Background()
	task := mustCreate(t, NewStore(dbx, 1, today), Task{Title: "a", DurationMinutes: 30})

	tests := map[string]struct {
		store *Store
		id    string
	}{
		"missing":   {NewStore(dbx, 1, today), "999"},
		"not an id": {NewStore(dbx, 1, today), "abc"},
		"not owner": {NewStore(dbx, 2, today), itoa(task.ID)},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.store.UpdateTask(ctx, tt.id, dayplan.Patch{StartTime: "10:00"})
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestOrchestratorOverSQLStore(t *testing.T) {
	dbx := testDB(t)
	ctx := context.Background()
	s := NewStore(dbx, 1, today)

	stale := mustCreate(t, s, Task{Title: "stale", DurationMinutes: 30, StartTime: "16:00"})
	big := mustCreate(t, s, Task{Title: "big", DurationMinutes: 900, StartTime: "08:00"})

	settings := planner.DefaultSettings()
	settings.WorkStart, settings.WorkEnd = "09:00", "10:00"
	settings.TaskGap = 0
	o := &dayplan.Orchestrator{
		Tasks:    s,
		Settings: staticSettings(settings),
		Now:      func() time.Time { return today },
	}

	rep, err := o.Run(ctx, nil, dayplan.Decisions{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Placed != 1 || rep.Unplaced != 1 || rep.Failed != 0 {
		t.Fatalf("report = %+v", rep)
	}

	list, _ := s.List(ctx)
	starts := map[int]string{}
	for _, task := range list {
		starts[task.ID] = task.StartTime
	}
	if starts[stale.ID] != "09:00" {
		t.Fatalf("stale start = %q, want 09:00", starts[stale.ID])
	}
	if starts[big.ID] != "" {
		t.Fatalf("big start = %q, want cleared", starts[big.ID])
	}
}

type staticSettings planner.Settings

func (s staticSettings) GetPlanningSettings(context.Context) (planner.Settings, error) {
	return planner.Settings(s), nil
}

package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"reup-dayplan-backend/internal/dayplan"
	"reup-dayplan-backend/internal/planner"
)

var ErrNotFound = errors.New("task not found")

// Store is the SQL task store of one user for one day.
type Store struct {
	db     *sql.DB
	userID int
	day    string
}

func NewStore(dbx *sql.DB, userID int, day time.Time) *Store {
	return &Store{db: dbx, userID: userID, day: day.Format(DayLayout)}
}

func itoa(id int) string { return strconv.Itoa(id) }

// List returns the day's active tasks in list order.
func (s *Store) List(ctx context.Context) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			id,
			text,
			COALESCE(title,''),
			COALESCE(description,''),
			COALESCE(category,''),
			status,
			important,
			kind,
			COALESCE(duration_minutes, 0),
			COALESCE(start_time,''),
			COALESCE(plan_date,''),
			position,
			created_at
		FROM tasks
		WHERE user_id = $1 AND plan_date = $2 AND status = $3
		ORDER BY position, id
	`, s.userID, s.day, StatusActive)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		var (
			t    Task
			kind string
		)
		if err := rows.Scan(
			&t.ID,
			&t.Text,
			&t.Title,
			&t.Description,
			&t.Category,
			&t.Status,
			&t.Important,
			&kind,
			&t.DurationMinutes,
			&t.StartTime,
			&t.PlanDate,
			&t.Position,
			&t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Kind = planner.Kind(kind)
		if t.Title == "" {
			t.Title = t.Text
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetTodayTasks returns the day's non-completed tasks for planning.
func (s *Store) GetTodayTasks(ctx context.Context) ([]planner.Task, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]planner.Task, 0, len(list))
	for _, t := range list {
		out = append(out, t.PlannerTask())
	}
	return out, nil
}

// UpdateTask applies a planning patch to one of the user's tasks.
func (s *Store) UpdateTask(ctx context.Context, id string, p dayplan.Patch) error {
	taskID, err := strconv.Atoi(id)
	if err != nil {
		return fmt.Errorf("%w: id %q", ErrNotFound, id)
	}

	var (
		sets []string
		args []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	switch {
	case p.ClearStart:
		sets = append(sets, "start_time = NULL")
	case p.StartTime != "":
		sets = append(sets, "start_time = "+arg(p.StartTime))
	}
	if p.Kind != "" {
		sets = append(sets, "kind = "+arg(string(p.Kind)))
	}
	if len(sets) == 0 {
		return nil
	}

	q := `UPDATE tasks SET ` + strings.Join(sets, ", ") +
		` WHERE id = ` + arg(taskID) + ` AND user_id = ` + arg(s.userID)
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update task %d: %w", taskID, err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, taskID)
	}
	return nil
}

// Create inserts a task on the store's day at the end of the list.
func (s *Store) Create(ctx context.Context, t Task) (Task, error) {
	t.PlanDate = s.day
	if t.Kind == "" {
		t.Kind = planner.KindFlexible
	}
	if t.Status == "" {
		t.Status = StatusActive
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tasks (
			user_id, text, title, description, category, status,
			important, kind, duration_minutes, start_time, plan_date, position
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM tasks WHERE user_id = $1 AND plan_date = $11))
		RETURNING id, position
	`, s.userID, t.Text, t.Title, nullIfEmpty(t.Description), nullIfEmpty(t.Category), t.Status,
		t.Important, string(t.Kind), nullIfZero(t.DurationMinutes), nullIfEmpty(t.StartTime), t.PlanDate,
	).Scan(&t.ID, &t.Position)
	if err != nil {
		return Task{}, fmt.Errorf("create task: %w", err)
	}
	t.CreatedAt = time.Now().UTC()
	return t, nil
}

func nullIfEmpty(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullIfZero(n int) sql.NullInt64 {
	if n <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}

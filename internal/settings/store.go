package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reup-dayplan-backend/internal/planner"
)

// Store is the SQL settings store of one user.
type Store struct {
	db     *sql.DB
	userID int
}

func NewStore(dbx *sql.DB, userID int) *Store {
	return &Store{db: dbx, userID: userID}
}

// GetPlanningSettings returns the saved settings, or the defaults when the
// user never saved any.
func (s *Store) GetPlanningSettings(ctx context.Context) (planner.Settings, error) {
	var (
		ps   planner.Settings
		algo string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT work_start, work_end, lunch_start, lunch_end, dinner_start, dinner_end,
		       task_gap, allow_task_splitting, algorithm
		FROM planning_settings
		WHERE user_id = $1
	`, s.userID).Scan(
		&ps.WorkStart, &ps.WorkEnd,
		&ps.LunchStart, &ps.LunchEnd,
		&ps.DinnerStart, &ps.DinnerEnd,
		&ps.TaskGap, &ps.AllowTaskSplitting, &algo,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return planner.DefaultSettings(), nil
	}
	if err != nil {
		return planner.Settings{}, fmt.Errorf("get planning settings: %w", err)
	}
	ps.Algorithm = planner.Algorithm(algo)
	return ps, nil
}

// SavePlanningSettings validates ps and upserts it. The auto_plan flag is
// left as it was.
func (s *Store) SavePlanningSettings(ctx context.Context, ps planner.Settings) error {
	if err := Validate(ps); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO planning_settings (
			user_id, work_start, work_end, lunch_start, lunch_end, dinner_start, dinner_end,
			task_gap, allow_task_splitting, algorithm, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id) DO UPDATE SET
			work_start = excluded.work_start,
			work_end = excluded.work_end,
			lunch_start = excluded.lunch_start,
			lunch_end = excluded.lunch_end,
			dinner_start = excluded.dinner_start,
			dinner_end = excluded.dinner_end,
			task_gap = excluded.task_gap,
			allow_task_splitting = excluded.allow_task_splitting,
			algorithm = excluded.algorithm,
			updated_at = excluded.updated_at
	`, s.userID, ps.WorkStart, ps.WorkEnd, ps.LunchStart, ps.LunchEnd, ps.DinnerStart, ps.DinnerEnd,
		ps.TaskGap, ps.AllowTaskSplitting, string(ps.Algorithm), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save planning settings: %w", err)
	}
	return nil
}

// AutoPlan reports whether scheduled planning is on for the user.
func (s *Store) AutoPlan(ctx context.Context) (bool, error) {
	var on bool
	err := s.db.QueryRowContext(ctx, `SELECT auto_plan FROM planning_settings WHERE user_id = $1`, s.userID).Scan(&on)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get auto_plan: %w", err)
	}
	return on, nil
}

// SetAutoPlan switches scheduled planning. Users without a row get the
// default settings saved alongside.
func (s *Store) SetAutoPlan(ctx context.Context, on bool) error {
	d := planner.DefaultSettings()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO planning_settings (
			user_id, work_start, work_end, lunch_start, lunch_end, dinner_start, dinner_end,
			task_gap, allow_task_splitting, algorithm, auto_plan, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id) DO UPDATE SET
			auto_plan = excluded.auto_plan,
			updated_at = excluded.updated_at
	`, s.userID, d.WorkStart, d.WorkEnd, d.LunchStart, d.LunchEnd, d.DinnerStart, d.DinnerEnd,
		d.TaskGap, d.AllowTaskSplitting, string(d.Algorithm), on, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set auto_plan: %w", err)
	}
	return nil
}

// AutoPlanUsers lists users with scheduled planning on, by id.
func AutoPlanUsers(ctx context.Context, dbx *sql.DB) ([]int, error) {
	rows, err := dbx.QueryContext(ctx, `
		SELECT user_id FROM planning_settings
		WHERE auto_plan = $1
		ORDER BY user_id
	`, true)
	if err != nil {
		return nil, fmt.Errorf("list autoplan users: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

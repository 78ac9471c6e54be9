package tasks

import (
	"time"

	"reup-dayplan-backend/internal/planner"
)

// DayLayout is the plan_date format.
const DayLayout = "2006-01-02"

type Task struct {
	ID              int          `json:"id"`
	Text            string       `json:"text"`
	Title           string       `json:"title"`
	Description     string       `json:"description,omitempty"`
	Category        string       `json:"category,omitempty"`
	Status          string       `json:"status"`
	Important       bool         `json:"important"`
	Kind            planner.Kind `json:"kind"`
	DurationMinutes int          `json:"duration_minutes"`
	StartTime       string       `json:"start_time,omitempty"`
	PlanDate        string       `json:"plan_date"`
	Position        int          `json:"position"`
	CreatedAt       time.Time    `json:"created_at"`
}

// PlannerTask is the view of t the planner works on.
func (t Task) PlannerTask() planner.Task {
	return planner.Task{
		ID:              itoa(t.ID),
		Title:           t.Title,
		Category:        t.Category,
		Important:       t.Important,
		Kind:            t.Kind,
		DurationMinutes: t.DurationMinutes,
		StartTime:       t.StartTime,
		Completed:       t.Status == StatusDone,
	}
}

const (
	StatusActive   = "active"
	StatusDone     = "done"
	StatusCanceled = "canceled"
)

// planRequest is the body of POST /plan.
type planRequest struct {
	ConvertFixed string `json:"convert_fixed"` // convert|abort|""
	Algorithm    string `json:"algorithm"`     // sequential|weighted|abort|""
	DryRun       bool   `json:"dry_run"`
	Now          string `json:"now,omitempty"` // HH:MM
}

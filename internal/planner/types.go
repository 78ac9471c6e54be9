// Package planner places flexible tasks of a single day around fixed
// commitments. Everything here is pure: inputs are a snapshot of today's
// tasks plus settings, outputs are placements. No I/O, no shared state.
package planner

// Kind tells whether a task is an obstacle or something to be placed.
type Kind string

const (
	KindFixed    Kind = "fixed"
	KindFlexible Kind = "flexible"
)

// Algorithm selects the placer used by the orchestrator.
type Algorithm string

const (
	AlgorithmSequential Algorithm = "sequential"
	AlgorithmWeighted   Algorithm = "weighted"
	// AlgorithmAsk defers the choice to a human at planning time.
	AlgorithmAsk Algorithm = "ask"
)

// Task is the subset of a to-do item the planner cares about.
type Task struct {
	ID              string `json:"id" yaml:"id"`
	Title           string `json:"title" yaml:"title"`
	Category        string `json:"category,omitempty" yaml:"category,omitempty"`
	Important       bool   `json:"important" yaml:"important"`
	Kind            Kind   `json:"kind" yaml:"kind"`
	DurationMinutes int    `json:"duration_minutes" yaml:"duration_minutes"`
	StartTime       string `json:"start_time,omitempty" yaml:"start_time,omitempty"` // "HH:MM"
	Completed       bool   `json:"completed" yaml:"completed"`
}

// HasStart reports whether the task is anchored to a wall-clock time.
func (t Task) HasStart() bool { return t.StartTime != "" }

// Plannable reports whether the task can take part in planning at all.
func (t Task) Plannable() bool { return !t.Completed && t.DurationMinutes > 0 }

// Settings is the planning configuration of one user.
//
// AllowTaskSplitting is carried through storage and the API but no placer
// reads it; tasks are always placed as one contiguous block.
type Settings struct {
	WorkStart          string    `json:"work_start" yaml:"work_start" validate:"required,hhmm"`
	WorkEnd            string    `json:"work_end" yaml:"work_end" validate:"required,hhmm"`
	LunchStart         string    `json:"lunch_start" yaml:"lunch_start" validate:"required,hhmm"`
	LunchEnd           string    `json:"lunch_end" yaml:"lunch_end" validate:"required,hhmm"`
	DinnerStart        string    `json:"dinner_start" yaml:"dinner_start" validate:"required,hhmm"`
	DinnerEnd          string    `json:"dinner_end" yaml:"dinner_end" validate:"required,hhmm"`
	TaskGap            int       `json:"task_gap" yaml:"task_gap" validate:"gte=0,lte=1440"`
	AllowTaskSplitting bool      `json:"allow_task_splitting" yaml:"allow_task_splitting"`
	Algorithm          Algorithm `json:"algorithm" yaml:"algorithm" validate:"required,oneof=sequential weighted ask"`
}

// DefaultSettings returns the settings used when a user never saved any.
func DefaultSettings() Settings {
	return Settings{
		WorkStart:   "08:30",
		WorkEnd:     "17:30",
		LunchStart:  "11:30",
		LunchEnd:    "13:00",
		DinnerStart: "17:30",
		DinnerEnd:   "18:00",
		TaskGap:     15,
		Algorithm:   AlgorithmSequential,
	}
}

// Placement assigns a start time to one flexible task.
type Placement struct {
	TaskID    string `json:"task_id"`
	StartTime string `json:"start_time"`

	Start int `json:"-"`
	End   int `json:"-"`
}

// Plan is the output of a placer.
type Plan struct {
	Placements []Placement `json:"placements"`
	// Unplaced lists candidates that got no slot, in input order.
	Unplaced []string `json:"unplaced"`

	FellBackToSequential bool `json:"fell_back_to_sequential"`
	// Orderings is how many task orderings were tried (1 for sequential).
	Orderings int     `json:"orderings"`
	Cost      float64 `json:"-"`
}

// Placed reports whether id received a start time.
func (p Plan) Placed(id string) bool {
	for _, pl := range p.Placements {
		if pl.TaskID == id {
			return true
		}
	}
	return false
}

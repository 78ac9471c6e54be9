// Package dayplan drives one "plan my day" run: it gates on the human
// decisions the planner cannot make on its own, runs a placer and turns
// the result into task updates.
package dayplan

import (
	"context"
	"errors"

	"reup-dayplan-backend/internal/planner"
)

var ErrNoStore = errors.New("dayplan: task store is required")

// State is where a planning run stopped.
type State string

const (
	// StateAwaitingFixedConversion: fixed tasks without a start time must
	// be converted to flexible, or planning aborted.
	StateAwaitingFixedConversion State = "awaiting_fixed_conversion"
	// StateAwaitingAlgorithmChoice: settings say "ask".
	StateAwaitingAlgorithmChoice State = "awaiting_algorithm_choice"
	StateCancelled               State = "cancelled"
	StateNothingToPlan           State = "nothing_to_plan"
	// StateReady: a plan and its updates are computed but not applied.
	StateReady State = "ready"
	StateDone  State = "done"
)

// Awaiting reports whether the run needs a decision to continue.
func (s State) Awaiting() bool {
	return s == StateAwaitingFixedConversion || s == StateAwaitingAlgorithmChoice
}

// FixedDecision answers what to do with unanchored fixed tasks.
type FixedDecision string

const (
	FixedUndecided FixedDecision = ""
	FixedConvert   FixedDecision = "convert"
	FixedAbort     FixedDecision = "abort"
)

// AlgorithmChoice is the three-way answer to "ask" mode.
type AlgorithmChoice string

const (
	ChoiceUndecided AlgorithmChoice = ""
	ChoiceFast      AlgorithmChoice = "sequential"
	ChoiceSmart     AlgorithmChoice = "weighted"
	ChoiceAbort     AlgorithmChoice = "abort"
)

// Decisions carries answers supplied up front.
type Decisions struct {
	ConvertFixed FixedDecision   `json:"convert_fixed"`
	Algorithm    AlgorithmChoice `json:"algorithm"`
}

// Patch is a partial task update. A zero Patch changes nothing.
type Patch struct {
	StartTime  string       `json:"start_time,omitempty"`
	ClearStart bool         `json:"clear_start,omitempty"`
	Kind       planner.Kind `json:"kind,omitempty"`
}

type Update struct {
	TaskID string `json:"task_id"`
	Patch  Patch  `json:"patch"`
}

// UpdateResult is the outcome of applying one Update.
type UpdateResult struct {
	TaskID string `json:"task_id"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`

	Err error `json:"-"`
}

// Outcome is the pure result of RunPlanning.
type Outcome struct {
	State     State             `json:"state"`
	Algorithm planner.Algorithm `json:"algorithm,omitempty"`
	FellBack  bool              `json:"fell_back"`
	Notice    string            `json:"notice,omitempty"`

	// Ambiguous holds fixed tasks lacking a start time.
	Ambiguous []planner.Task `json:"ambiguous,omitempty"`
	// Candidates is the number of flexible tasks up for placement.
	Candidates int `json:"candidates"`

	Plan    planner.Plan `json:"plan"`
	Updates []Update     `json:"updates"`
}

// Report summarizes a run for the caller.
type Report struct {
	RunID     string            `json:"run_id"`
	State     State             `json:"state"`
	Algorithm planner.Algorithm `json:"algorithm,omitempty"`
	FellBack  bool              `json:"fell_back"`
	Notice    string            `json:"notice,omitempty"`

	Placed   int `json:"placed"`
	Unplaced int `json:"unplaced"`
	Failed   int `json:"failed"`

	AmbiguousTaskIDs []string       `json:"ambiguous_task_ids,omitempty"`
	Updates          []Update       `json:"updates"`
	Results          []UpdateResult `json:"results,omitempty"`
}

// TaskStore reads and updates today's tasks.
type TaskStore interface {
	GetTodayTasks(ctx context.Context) ([]planner.Task, error)
	UpdateTask(ctx context.Context, id string, p Patch) error
}

// SettingsStore reads the planning settings in effect.
type SettingsStore interface {
	GetPlanningSettings(ctx context.Context) (planner.Settings, error)
}

// DecisionProvider answers the blocking questions of a run. In the app
// it is a modal; in batch contexts a fixed Policy.
type DecisionProvider interface {
	ConvertFixed(ctx context.Context, tasks []planner.Task) (FixedDecision, error)
	ChooseAlgorithm(ctx context.Context, candidates int) (AlgorithmChoice, error)
}

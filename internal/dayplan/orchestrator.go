package dayplan

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"reup-dayplan-backend/internal/logx"
	"reup-dayplan-backend/internal/planner"
)

const defaultConcurrency = 8

// Orchestrator runs planning against live stores.
type Orchestrator struct {
	Tasks    TaskStore
	Settings SettingsStore // nil means planner.DefaultSettings
	Log      logx.Logger
	Weighted planner.Weighted

	// Concurrency bounds parallel task updates. Zero means 8.
	Concurrency int
	// Now overrides the wall clock, mostly for tests.
	Now func() time.Time
}

// Plan computes an outcome without writing anything. When the run blocks
// on a decision and provider is non-nil, provider is asked and the run
// continues; a nil provider leaves the awaiting state to the caller.
func (o *Orchestrator) Plan(ctx context.Context, provider DecisionProvider, d Decisions) (Outcome, error) {
	if o.Tasks == nil {
		return Outcome{}, ErrNoStore
	}
	tasks, err := o.Tasks.GetTodayTasks(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("load tasks: %w", err)
	}
	s := planner.DefaultSettings()
	if o.Settings != nil {
		if s, err = o.Settings.GetPlanningSettings(ctx); err != nil {
			return Outcome{}, fmt.Errorf("load settings: %w", err)
		}
	}
	now := planner.Clock(o.now())

	for {
		out, err := compute(tasks, s, now, d, o.Weighted)
		if err != nil {
			return Outcome{}, err
		}
		if !out.State.Awaiting() || provider == nil {
			return out, nil
		}

		switch out.State {
		case StateAwaitingFixedConversion:
			dec, err := provider.ConvertFixed(ctx, out.Ambiguous)
			if err != nil {
				return Outcome{}, fmt.Errorf("convert fixed decision: %w", err)
			}
			if dec == FixedUndecided {
				return out, nil
			}
			d.ConvertFixed = dec
		case StateAwaitingAlgorithmChoice:
			choice, err := provider.ChooseAlgorithm(ctx, out.Candidates)
			if err != nil {
				return Outcome{}, fmt.Errorf("algorithm decision: %w", err)
			}
			if choice == ChoiceUndecided {
				return out, nil
			}
			d.Algorithm = choice
		}
	}
}

// Run plans and applies the resulting updates.
func (o *Orchestrator) Run(ctx context.Context, provider DecisionProvider, d Decisions) (Report, error) {
	out, err := o.Plan(ctx, provider, d)
	if err != nil {
		return Report{}, err
	}
	return o.Commit(ctx, out), nil
}

// Commit applies the updates of a computed outcome. Outcomes without
// updates are reported as they are.
func (o *Orchestrator) Commit(ctx context.Context, out Outcome) Report {
	rep := NewReport(out)
	log := o.Log.With(logx.String("run_id", rep.RunID))
	if len(out.Updates) == 0 {
		log.Info("planning stopped", logx.String("state", string(out.State)))
		return rep
	}

	rep.Results = o.Apply(ctx, out.Updates)
	for _, r := range rep.Results {
		if !r.OK {
			rep.Failed++
		}
	}
	if out.State == StateReady {
		rep.State = StateDone
	}

	fields := []logx.Field{
		logx.String("algorithm", string(out.Algorithm)),
		logx.Int("placed", rep.Placed),
		logx.Int("unplaced", rep.Unplaced),
		logx.Int("failed", rep.Failed),
	}
	if out.FellBack {
		fields = append(fields, logx.Bool("fell_back", true))
	}
	if rep.Failed > 0 {
		log.Warn("day planned with failed updates", fields...)
	} else {
		log.Info("day planned", fields...)
	}
	return rep
}

// Apply writes updates concurrently and returns one result per update,
// in the same order. A failed update never stops the others.
func (o *Orchestrator) Apply(ctx context.Context, updates []Update) []UpdateResult {
	results := make([]UpdateResult, len(updates))

	limit := o.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}
	var g errgroup.Group
	g.SetLimit(limit)

	for i, u := range updates {
		i, u := i, u
		g.Go(func() error {
			res := UpdateResult{TaskID: u.TaskID, OK: true}
			if err := o.Tasks.UpdateTask(ctx, u.TaskID, u.Patch); err != nil {
				res = UpdateResult{TaskID: u.TaskID, Error: err.Error(), Err: err}
				o.Log.Warn("task update failed", logx.String("task_id", u.TaskID), logx.Err(err))
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// NewReport summarizes an outcome before any update is applied.
func NewReport(out Outcome) Report {
	rep := Report{
		RunID:     uuid.NewString(),
		State:     out.State,
		Algorithm: out.Algorithm,
		FellBack:  out.FellBack,
		Notice:    out.Notice,
		Placed:    len(out.Plan.Placements),
		Unplaced:  len(out.Plan.Unplaced),
		Updates:   out.Updates,
	}
	for _, t := range out.Ambiguous {
		rep.AmbiguousTaskIDs = append(rep.AmbiguousTaskIDs, t.ID)
	}
	return rep
}

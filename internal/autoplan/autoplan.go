// Package autoplan plans today for every user who turned scheduled
// planning on. Nobody is around to answer questions, so a fixed policy
// answers them: fixed tasks are never converted and "ask" resolves to
// the configured algorithm.
package autoplan

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"reup-dayplan-backend/internal/analytics"
	"reup-dayplan-backend/internal/dayplan"
	"reup-dayplan-backend/internal/logx"
	"reup-dayplan-backend/internal/planner"
	"reup-dayplan-backend/internal/settings"
	"reup-dayplan-backend/internal/tasks"
)

type Config struct {
	// Spec is a standard five-field cron spec or a descriptor like @daily.
	Spec        string
	Algorithm   planner.Algorithm
	Weighted    planner.Weighted
	Concurrency int
	Location    *time.Location
}

// Summary counts what one pass did.
type Summary struct {
	Users   int
	Planned int
	Skipped int
	Failed  int
}

type Runner struct {
	db  *sql.DB
	log logx.Logger
	cfg Config

	parser cron.Parser
	sched  cron.Schedule
	now    func() time.Time

	mu sync.Mutex
	c  *cron.Cron
}

func New(dbx *sql.DB, cfg Config, log logx.Logger) (*Runner, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	sched, err := parser.Parse(strings.TrimSpace(cfg.Spec))
	if err != nil {
		return nil, fmt.Errorf("autoplan cron %q: %w", cfg.Spec, err)
	}
	switch cfg.Algorithm {
	case planner.AlgorithmSequential, planner.AlgorithmWeighted:
	case "":
		cfg.Algorithm = planner.AlgorithmSequential
	default:
		return nil, fmt.Errorf("autoplan algorithm %q: want sequential or weighted", cfg.Algorithm)
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Runner{
		db:     dbx,
		log:    log.With(logx.String("component", "autoplan")),
		cfg:    cfg,
		parser: parser,
		sched:  sched,
		now:    time.Now,
	}, nil
}

// Next is the first run after t.
func (r *Runner) Next(t time.Time) time.Time { return r.sched.Next(t) }

func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.c != nil {
		return
	}
	r.c = cron.New(cron.WithParser(r.parser), cron.WithLocation(r.cfg.Location))
	r.c.Schedule(r.sched, cron.FuncJob(func() {
		if _, err := r.RunOnce(ctx); err != nil {
			r.log.Error("autoplan pass failed", logx.Err(err))
		}
	}))
	r.c.Start()
	r.log.Info("autoplan started", logx.String("spec", r.cfg.Spec), logx.String("tz", r.cfg.Location.String()))
}

// Stop waits for a running pass to finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.c == nil {
		return
	}
	<-r.c.Stop().Done()
	r.c = nil
}

func (r *Runner) policy() dayplan.Policy {
	return dayplan.Policy{
		Fixed:  dayplan.FixedAbort,
		Choice: dayplan.AlgorithmChoice(r.cfg.Algorithm),
	}
}

// RunOnce plans today for every opted-in user, one after another.
func (r *Runner) RunOnce(ctx context.Context) (Summary, error) {
	users, err := settings.AutoPlanUsers(ctx, r.db)
	if err != nil {
		return Summary{}, err
	}
	now := r.now().In(r.cfg.Location)
	day := now.Format(tasks.DayLayout)

	sum := Summary{Users: len(users)}
	for _, uid := range users {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		log := r.log.With(logx.Int("user_id", uid))
		o := &dayplan.Orchestrator{
			Tasks:       tasks.NewStore(r.db, uid, now),
			Settings:    settings.NewStore(r.db, uid),
			Log:         log,
			Weighted:    r.cfg.Weighted,
			Concurrency: r.cfg.Concurrency,
			Now:         func() time.Time { return now },
		}

		rep, err := o.Run(ctx, r.policy(), dayplan.Decisions{})
		switch {
		case err != nil:
			sum.Failed++
			log.Warn("autoplan failed", logx.Err(err))
			_ = analytics.Log(ctx, r.db, analytics.System(uid), analytics.EventAutoPlanFailed,
				map[string]any{"error": err.Error()}, "")
		case rep.State == dayplan.StateCancelled:
			sum.Skipped++
			log.Info("autoplan skipped: fixed tasks without start time", logx.Strings("task_ids", rep.AmbiguousTaskIDs))
		case rep.State == dayplan.StateDone:
			sum.Planned++
			if rep.Failed > 0 {
				sum.Failed++
			}
			_ = analytics.Log(ctx, r.db, analytics.System(uid), analytics.EventDayPlanned, map[string]any{
				"run_id":    rep.RunID,
				"algorithm": rep.Algorithm,
				"placed":    rep.Placed,
				"unplaced":  rep.Unplaced,
				"failed":    rep.Failed,
				"source":    "autoplan",
			}, "autoplan:"+strconv.Itoa(uid)+":"+day)
		default:
			sum.Skipped++
		}
	}

	r.log.Info("autoplan pass done",
		logx.Int("users", sum.Users),
		logx.Int("planned", sum.Planned),
		logx.Int("skipped", sum.Skipped),
		logx.Int("failed", sum.Failed),
	)
	return sum, nil
}

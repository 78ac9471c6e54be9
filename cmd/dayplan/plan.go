package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"reup-dayplan-backend/internal/dayfile"
	"reup-dayplan-backend/internal/dayplan"
	"reup-dayplan-backend/internal/logx"
	"reup-dayplan-backend/internal/planner"
)

type planOptions struct {
	now           string
	algorithm     string
	convertFixed  bool
	keepFixed     bool
	write         bool
	dryRun        bool
	maxCandidates int
	interactive   bool
}

func newPlanCmd() *cobra.Command {
	var opts planOptions
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan the day in the file",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.interactive = isTerminal(os.Stdin)
			return runPlan(cmd.Context(), cmd.OutOrStdout(), dayFile, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.now, "now", "", "plan as if it were HH:MM (default: file value, then wall clock)")
	f.StringVar(&opts.algorithm, "algorithm", "", "sequential or weighted; answers an \"ask\" setting")
	f.BoolVar(&opts.convertFixed, "convert-fixed", false, "turn fixed tasks without a start time into flexible ones")
	f.BoolVar(&opts.keepFixed, "no-convert-fixed", false, "abort when fixed tasks have no start time")
	f.BoolVarP(&opts.write, "write", "w", false, "write start times back to the file")
	f.BoolVar(&opts.dryRun, "dry-run", false, "print the updates without applying them")
	f.IntVar(&opts.maxCandidates, "max-candidates", planner.DefaultMaxCandidates, "largest task count the weighted planner searches")
	cmd.MarkFlagsMutuallyExclusive("convert-fixed", "no-convert-fixed")
	cmd.MarkFlagsMutuallyExclusive("write", "dry-run")
	return cmd
}

func runPlan(ctx context.Context, out io.Writer, path string, opts planOptions) error {
	f, err := dayfile.Load(path)
	if err != nil {
		return err
	}

	clock := opts.now
	if clock == "" {
		clock = f.Now
	}
	now := time.Now()
	if clock != "" {
		m, err := planner.ParseTime(clock)
		if err != nil {
			return fmt.Errorf("--now: %w", err)
		}
		now = time.Date(now.Year(), now.Month(), now.Day(), m/60, m%60, 0, 0, now.Location())
	}

	d := dayplan.Decisions{Algorithm: dayplan.ParseChoice(opts.algorithm)}
	if opts.algorithm != "" && d.Algorithm == dayplan.ChoiceUndecided {
		return fmt.Errorf("--algorithm %q: want sequential or weighted", opts.algorithm)
	}
	switch {
	case opts.convertFixed:
		d.ConvertFixed = dayplan.FixedConvert
	case opts.keepFixed:
		d.ConvertFixed = dayplan.FixedAbort
	}

	var provider dayplan.DecisionProvider
	if opts.interactive {
		provider = prompter{}
	}

	store := dayfile.NewStore(f)
	o := &dayplan.Orchestrator{
		Tasks:    store,
		Settings: store,
		Log:      logx.New(logx.Config{Level: logLevel, Out: os.Stderr}),
		Weighted: planner.Weighted{MaxCandidates: opts.maxCandidates},
		Now:      func() time.Time { return now },
	}

	plan, err := o.Plan(ctx, provider, d)
	if err != nil {
		return err
	}
	if plan.State.Awaiting() {
		printAwaiting(out, plan)
		return fmt.Errorf("planning needs a decision: %s", plan.State)
	}

	var rep dayplan.Report
	if opts.dryRun {
		rep = dayplan.NewReport(plan)
	} else {
		rep = o.Commit(ctx, plan)
	}
	printReport(out, f.Tasks, rep)

	if rep.Failed > 0 {
		return fmt.Errorf("%d updates failed", rep.Failed)
	}
	if opts.write && rep.State == dayplan.StateDone {
		if err := store.File().Save(path); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintf(out, "✅ wrote %s\n", path)
	}
	return nil
}

func printAwaiting(out io.Writer, o dayplan.Outcome) {
	switch o.State {
	case dayplan.StateAwaitingFixedConversion:
		fmt.Fprintln(out, "Fixed tasks without a start time:")
		for _, t := range o.Ambiguous {
			fmt.Fprintf(out, "  - %s %s\n", t.ID, t.Title)
		}
		fmt.Fprintln(out, "Rerun with --convert-fixed or --no-convert-fixed.")
	case dayplan.StateAwaitingAlgorithmChoice:
		fmt.Fprintf(out, "%d tasks to plan and settings say \"ask\".\n", o.Candidates)
		fmt.Fprintln(out, "Rerun with --algorithm sequential or --algorithm weighted.")
	}
}

func printReport(out io.Writer, tasks []planner.Task, rep dayplan.Report) {
	switch rep.State {
	case dayplan.StateCancelled:
		fmt.Fprintln(out, "Planning cancelled.")
		return
	case dayplan.StateNothingToPlan:
		fmt.Fprintln(out, "Nothing to plan.")
		return
	}

	titles := make(map[string]string, len(tasks))
	for _, t := range tasks {
		titles[t.ID] = t.Title
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK\tTITLE\tSTART")
	for _, u := range rep.Updates {
		start := u.Patch.StartTime
		switch {
		case u.Patch.ClearStart:
			start = "unplaced"
		case start == "":
			start = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", u.TaskID, titles[u.TaskID], start)
	}
	_ = tw.Flush()

	fmt.Fprintf(out, "\n%s: %d placed, %d unplaced", rep.Algorithm, rep.Placed, rep.Unplaced)
	if rep.Failed > 0 {
		fmt.Fprintf(out, ", %d failed", rep.Failed)
	}
	fmt.Fprintln(out)
	if rep.Notice != "" {
		fmt.Fprintf(out, "⚠️  %s\n", rep.Notice)
	}
}

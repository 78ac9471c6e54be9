package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reup-dayplan-backend/internal/dayfile"
	"reup-dayplan-backend/internal/planner"
	"reup-dayplan-backend/internal/settings"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the settings and tasks of a day file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := dayfile.Load(dayFile)
			if err != nil {
				return err
			}
			if err := validateFile(f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ %s: %d tasks, settings ok\n", dayFile, len(f.Tasks))
			return nil
		},
	}
}

func validateFile(f *dayfile.File) error {
	if err := settings.Validate(f.PlanningSettings()); err != nil {
		return err
	}
	for _, t := range f.Tasks {
		switch t.Kind {
		case planner.KindFixed, planner.KindFlexible:
		default:
			return fmt.Errorf("task %s: unknown kind %q", t.ID, t.Kind)
		}
		if t.DurationMinutes < 0 {
			return fmt.Errorf("task %s: negative duration", t.ID)
		}
		if t.HasStart() {
			if _, err := planner.ParseTime(t.StartTime); err != nil {
				return fmt.Errorf("task %s: %w", t.ID, err)
			}
		}
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"

	"reup-dayplan-backend/internal/dayplan"
	"reup-dayplan-backend/internal/planner"
)

// prompter asks the decisions on the terminal.
type prompter struct{}

func (prompter) ConvertFixed(_ context.Context, tasks []planner.Task) (dayplan.FixedDecision, error) {
	names := make([]string, 0, len(tasks))
	for _, t := range tasks {
		names = append(names, t.Title)
	}
	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("%d fixed tasks have no start time (%s). Plan them as flexible", len(tasks), strings.Join(names, ", ")),
		IsConfirm: true,
	}
	_, err := prompt.Run()
	switch err {
	case nil:
		return dayplan.FixedConvert, nil
	case promptui.ErrAbort, promptui.ErrInterrupt:
		return dayplan.FixedAbort, nil
	}
	return dayplan.FixedUndecided, err
}

func (prompter) ChooseAlgorithm(_ context.Context, candidates int) (dayplan.AlgorithmChoice, error) {
	prompt := promptui.Select{
		Label: fmt.Sprintf("Plan %d tasks", candidates),
		Items: []string{
			"⚡ Fast: in list order",
			"🧠 Smart: try every order, keep the best",
			"✖ Cancel",
		},
	}
	idx, _, err := prompt.Run()
	if err == promptui.ErrInterrupt {
		return dayplan.ChoiceAbort, nil
	}
	if err != nil {
		return dayplan.ChoiceUndecided, err
	}
	switch idx {
	case 0:
		return dayplan.ChoiceFast, nil
	case 1:
		return dayplan.ChoiceSmart, nil
	}
	return dayplan.ChoiceAbort, nil
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

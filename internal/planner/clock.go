package planner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// MinutesPerDay bounds every valid placement.
	MinutesPerDay = 1440

	// CursorStep is the granularity the starting cursor is rounded up to.
	CursorStep = 15

	// SafetyOverflow is how far past work end a candidate may drift
	// before the task is given up on.
	SafetyOverflow = 240
)

var (
	ErrInvalidTime   = errors.New("invalid time")
	ErrInvalidWindow = errors.New("invalid planning window")
)

// ParseTime converts "HH:MM" into minutes since midnight.
func ParseTime(s string) (int, error) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return h*60 + m, nil
}

// FormatTime renders minutes since midnight as zero-padded "HH:MM".
func FormatTime(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// Clock returns the naive wall-clock minute of t.
func Clock(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// RoundUp rounds min up to the next multiple of step.
func RoundUp(min, step int) int {
	if step <= 0 {
		return min
	}
	if r := min % step; r != 0 {
		return min + step - r
	}
	return min
}

// window is Settings with every time parsed.
type window struct {
	workStart int
	workEnd   int
	gap       int
	meals     []Interval
}

func resolve(s Settings) (window, error) {
	var w window
	var err error
	if w.workStart, err = ParseTime(s.WorkStart); err != nil {
		return w, fmt.Errorf("work start: %w", err)
	}
	if w.workEnd, err = ParseTime(s.WorkEnd); err != nil {
		return w, fmt.Errorf("work end: %w", err)
	}
	if w.workEnd <= w.workStart {
		return w, fmt.Errorf("%w: work end %s is not after work start %s", ErrInvalidWindow, s.WorkEnd, s.WorkStart)
	}
	if s.TaskGap < 0 {
		return w, fmt.Errorf("%w: negative task gap %d", ErrInvalidWindow, s.TaskGap)
	}
	w.gap = s.TaskGap

	meals := [][2]string{{s.LunchStart, s.LunchEnd}, {s.DinnerStart, s.DinnerEnd}}
	for _, m := range meals {
		start, err := ParseTime(m[0])
		if err != nil {
			return w, fmt.Errorf("meal start: %w", err)
		}
		end, err := ParseTime(m[1])
		if err != nil {
			return w, fmt.Errorf("meal end: %w", err)
		}
		// equal bounds switch the meal off
		if end > start {
			w.meals = append(w.meals, Interval{Start: start, End: end})
		}
	}
	return w, nil
}

// cursor is the earliest start any task may get.
func (w window) cursor(now int) int {
	c := RoundUp(now, CursorStep)
	if c < w.workStart {
		c = w.workStart
	}
	return c
}

func (w window) limit() int { return w.workEnd + SafetyOverflow }

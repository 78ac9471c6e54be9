// Package settings stores and validates per-user planning settings.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"reup-dayplan-backend/internal/planner"
)

var ErrInvalidSettings = errors.New("invalid planning settings")

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := planner.ParseTime(fl.Field().String())
		return err == nil
	})
	validate.RegisterStructValidation(windowOrder, planner.Settings{})
}

// windowOrder rejects an empty work day and meals that end before they
// start. A meal with equal bounds is allowed and switches the meal off.
func windowOrder(sl validator.StructLevel) {
	s := sl.Current().Interface().(planner.Settings)

	before := func(a, b string) bool {
		x, errA := planner.ParseTime(a)
		y, errB := planner.ParseTime(b)
		// unparsable times are reported by the hhmm tag
		return errA != nil || errB != nil || x < y
	}
	notAfter := func(a, b string) bool {
		return a == b || before(a, b)
	}

	if !before(s.WorkStart, s.WorkEnd) {
		sl.ReportError(s.WorkEnd, "WorkEnd", "work_end", "after_work_start", "")
	}
	if !notAfter(s.LunchStart, s.LunchEnd) {
		sl.ReportError(s.LunchEnd, "LunchEnd", "lunch_end", "after_lunch_start", "")
	}
	if !notAfter(s.DinnerStart, s.DinnerEnd) {
		sl.ReportError(s.DinnerEnd, "DinnerEnd", "dinner_end", "after_dinner_start", "")
	}
}

// Validate checks s the way the store does before saving.
func Validate(s planner.Settings) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", e.Field(), e.Tag(), e.Value()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidSettings, strings.Join(msgs, "; "))
}

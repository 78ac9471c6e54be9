package planner

import "math"

const (
	// DefaultMaxCandidates caps the exhaustive search: 8! = 40320 orderings.
	DefaultMaxCandidates = 8

	// DefaultMaxOrderings bounds the number of orderings scored per call.
	DefaultMaxOrderings = 40320
)

// DefaultWeighted is the weighted planner with the stock limits.
var DefaultWeighted = Weighted{}

// Weighted searches task orderings for the cheapest sequential placement.
//
// The search is factorial in the number of candidates, which is why it is
// capped. Raising MaxCandidates much past 8 needs a smarter search
// (branch and bound, or interval scheduling DP) rather than a bigger cap.
type Weighted struct {
	// MaxCandidates is the largest flexible set searched exhaustively.
	// Zero means DefaultMaxCandidates.
	MaxCandidates int
	// MaxOrderings stops the search early once this many orderings were
	// scored. Zero means DefaultMaxOrderings.
	MaxOrderings int
}

func (wp Weighted) maxCandidates() int {
	if wp.MaxCandidates <= 0 {
		return DefaultMaxCandidates
	}
	return wp.MaxCandidates
}

func (wp Weighted) maxOrderings() int {
	if wp.MaxOrderings <= 0 {
		return DefaultMaxOrderings
	}
	return wp.MaxOrderings
}

// Exceeds reports whether n candidates are too many for the search.
func (wp Weighted) Exceeds(n int) bool { return n > wp.maxCandidates() }

// Limit is the largest candidate count searched exhaustively.
func (wp Weighted) Limit() int { return wp.maxCandidates() }

// PlaceWeighted runs DefaultWeighted.
func PlaceWeighted(flexible, fixed []Task, s Settings, now int) (Plan, error) {
	return DefaultWeighted.Place(flexible, fixed, s, now)
}

// Place tries every ordering of flexible (Heap's algorithm), places each
// with the sequential placer and keeps the cheapest plan. The identity
// ordering is scored first, so ties keep it and the result is never
// worse than plain sequential placement. Too many candidates fall back to
// sequential placement in the given order with FellBackToSequential set.
func (wp Weighted) Place(flexible, fixed []Task, s Settings, now int) (Plan, error) {
	w, err := resolve(s)
	if err != nil {
		return Plan{}, err
	}
	base, err := obstacles(fixed, w)
	if err != nil {
		return Plan{}, err
	}

	if wp.Exceeds(len(flexible)) {
		plan := placeInOrder(flexible, base, w, now)
		plan.Orderings = 1
		plan.FellBackToSequential = true
		plan.Cost = cost(flexible, plan, base, w.workEnd)
		return plan, nil
	}

	var (
		best    Plan
		found   bool
		tried   int
		maxTry  = wp.maxOrderings()
		natural = unplacedOrder(flexible)
	)
	permute(flexible, func(order []Task) bool {
		tried++
		plan := placeInOrder(order, base, w, now)
		plan.Cost = cost(order, plan, base, w.workEnd)
		if !found || plan.Cost < best.Cost {
			best, found = plan, true
		}
		return tried < maxTry
	})
	best.Orderings = tried
	best.Unplaced = natural(best)
	return best, nil
}

// Score returns the cost of plan for tasks placed in order, against the
// given fixed tasks and settings. Lower is better.
func Score(order []Task, plan Plan, fixed []Task, s Settings) (float64, error) {
	w, err := resolve(s)
	if err != nil {
		return 0, err
	}
	base, err := obstacles(fixed, w)
	if err != nil {
		return 0, err
	}
	return cost(order, plan, base, w.workEnd), nil
}

// cost penalizes, in order: incomplete plans (infinitely), important
// tasks late in the ordering, starts snapped right behind an obstacle,
// and overtime past work end in hours.
func cost(order []Task, plan Plan, base []Interval, workEnd int) float64 {
	if len(plan.Placements) < len(order) {
		return math.Inf(1)
	}

	var c float64
	for i, t := range order {
		if t.Important {
			c += float64(i * 2)
		}
	}

	lastEnd := 0
	for _, p := range plan.Placements {
		for _, slot := range base {
			if p.Start == slot.End {
				c++
				break
			}
		}
		if p.End > lastEnd {
			lastEnd = p.End
		}
	}

	if lastEnd > workEnd {
		c += float64(lastEnd-workEnd) / 60 * 2
	}
	return c
}

// unplacedOrder reports unplaced ids in the caller's original order, not
// the order of the winning permutation.
func unplacedOrder(tasks []Task) func(Plan) []string {
	return func(p Plan) []string {
		out := []string{}
		for _, t := range tasks {
			if !p.Placed(t.ID) {
				out = append(out, t.ID)
			}
		}
		return out
	}
}

// permute calls visit with every ordering of tasks, starting with the
// identity. visit must not retain the slice; returning false stops.
func permute(tasks []Task, visit func([]Task) bool) {
	a := append([]Task(nil), tasks...)
	if !visit(a) {
		return
	}
	n := len(a)
	c := make([]int, n)
	for i := 1; i < n; {
		if c[i] < i {
			if i%2 == 0 {
				a[0], a[i] = a[i], a[0]
			} else {
				a[c[i]], a[i] = a[i], a[c[i]]
			}
			if !visit(a) {
				return
			}
			c[i]++
			i = 1
			continue
		}
		c[i] = 0
		i++
	}
}

package engine

import (
	"sort"

	"github.com/steveyegge/pathway/internal/types"
)

// GetStepsByBundle returns the plan's steps owned by a bundle, in plan order.
func GetStepsByBundle(plan *types.Plan, bundleID string) []types.Step {
	if plan == nil {
		return nil
	}
	var out []types.Step
	for _, s := range plan.Steps {
		if s.BundleID == bundleID {
			out = append(out, s)
		}
	}
	return out
}

// GetOverdueSteps returns unresolved steps whose due date is before today.
// The comparison is made fresh, so a plan saved yesterday still reports
// steps that became overdue overnight.
func GetOverdueSteps(plan *types.Plan, today types.Date) []types.Step {
	if plan == nil {
		return nil
	}
	var out []types.Step
	for _, s := range plan.Steps {
		if statusFor(&s, today) == types.StepOverdue {
			s.Status = types.StepOverdue
			out = append(out, s)
		}
	}
	return out
}

// GetUpcomingSteps returns unresolved steps due between today and
// today+withinDays inclusive, soonest first.
func GetUpcomingSteps(plan *types.Plan, today types.Date, withinDays int) []types.Step {
	if plan == nil || withinDays < 0 {
		return nil
	}
	until := today.AddDays(withinDays)
	var out []types.Step
	for _, s := range plan.Steps {
		if s.Completed() || s.DueDate.IsZero() {
			continue
		}
		if s.DueDate.Before(today) || s.DueDate.After(until) {
			continue
		}
		s.Status = types.StepPending
		out = append(out, s)
	}
	sortByDueDate(out)
	return out
}

// Refresh re-runs the status update and alert compiler against today without
// regenerating steps. Use it when redisplaying a stored plan.
func (e *Engine) Refresh(plan *types.Plan, today types.Date) *types.Plan {
	if plan == nil {
		return nil
	}
	out := plan.Clone()
	UpdateStatuses(out.Steps, today)
	SortSteps(out.Steps)
	out.Alerts = e.GetAlerts(out, out.CaseFacts, today)
	return out
}

func sortByDueDate(steps []types.Step) {
	sort.SliceStable(steps, func(i, j int) bool {
		return dueLess(&steps[i], &steps[j])
	})
}

func dueLess(a, b *types.Step) bool {
	if !a.DueDate.Equal(b.DueDate) {
		return a.DueDate.Before(b.DueDate)
	}
	return stepLess(a, b)
}

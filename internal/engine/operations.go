package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/steveyegge/pathway/internal/alerts"
	"github.com/steveyegge/pathway/internal/types"
)

// Edit requests that cannot be applied return one of these (wrapped with the
// step id) together with the unchanged input plan.
var (
	ErrStepNotFound    = errors.New("step not found")
	ErrDateNotEditable = errors.New("step due date is not editable")
	ErrInvalidDate     = errors.New("invalid due date")
)

// MarkStepComplete marks one step completed as of now and re-derives the
// plan, so steps gated on it appear. Marking an already completed step is a
// no-op that returns the input plan itself, so callers can tell nothing
// changed by comparing pointers.
func (e *Engine) MarkStepComplete(plan *types.Plan, stepID string, today types.Date) (*types.Plan, error) {
	step, err := findStep(plan, stepID)
	if err != nil {
		return plan, err
	}
	if step.Completed() {
		return plan, nil
	}

	prev := plan.Clone()
	s := prev.Step(stepID)
	s.Status = types.StepCompleted
	s.CompletedDate = e.now().UTC()

	return e.DerivePlan(plan.CaseFacts, prev, today), nil
}

// ReopenStep un-marks a completed step. Its status goes back to whatever the
// date comparison says, and steps gated on it are hidden again (they keep
// their own completion in HiddenSteps). Reopening a step that is not
// completed is a no-op that returns the input plan itself.
func (e *Engine) ReopenStep(plan *types.Plan, stepID string, today types.Date) (*types.Plan, error) {
	step, err := findStep(plan, stepID)
	if err != nil {
		return plan, err
	}
	if !step.Completed() {
		return plan, nil
	}

	prev := plan.Clone()
	s := prev.Step(stepID)
	s.Status = types.StepPending
	s.CompletedDate = time.Time{}

	return e.DerivePlan(plan.CaseFacts, prev, today), nil
}

// ToggleStep completes a pending or overdue step, or reopens a completed one.
func (e *Engine) ToggleStep(plan *types.Plan, stepID string, today types.Date) (*types.Plan, error) {
	step, err := findStep(plan, stepID)
	if err != nil {
		return plan, err
	}
	if step.Completed() {
		return e.ReopenStep(plan, stepID, today)
	}
	return e.MarkStepComplete(plan, stepID, today)
}

// UpdateStepDueDate sets a new due date on a step whose date is editable and
// recomputes its status against today. The edited date survives later
// derivations while the step stays editable and its generated date does not
// change. Setting the date an edited step already has returns the input
// plan itself.
func (e *Engine) UpdateStepDueDate(plan *types.Plan, stepID string, newDate, today types.Date) (*types.Plan, error) {
	step, err := findStep(plan, stepID)
	if err != nil {
		return plan, err
	}
	if !step.IsEditableDate {
		return plan, fmt.Errorf("%w: %s", ErrDateNotEditable, stepID)
	}
	if newDate.IsZero() {
		return plan, fmt.Errorf("%w: date is required", ErrInvalidDate)
	}
	if step.DateOverridden && step.DueDate.Equal(newDate) {
		return plan, nil
	}

	out := plan.Clone()
	s := out.Step(stepID)
	s.DueDate = newDate
	s.DateOverridden = true
	s.Status = statusFor(s, today)

	SortSteps(out.Steps)
	out.Alerts = alerts.Compile(&out.CaseFacts, out, today, e.alerts)
	out.LastUpdated = e.now().UTC()
	return out, nil
}

func findStep(plan *types.Plan, stepID string) (*types.Step, error) {
	if plan == nil {
		return nil, fmt.Errorf("%w: %s (no plan)", ErrStepNotFound, stepID)
	}
	s := plan.Step(stepID)
	if s == nil {
		return nil, fmt.Errorf("%w: %s", ErrStepNotFound, stepID)
	}
	return s, nil
}

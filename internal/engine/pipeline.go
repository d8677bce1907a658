package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/steveyegge/pathway/internal/rules"
	"github.com/steveyegge/pathway/internal/types"
)

// Select returns the bundles whose trigger holds, in table order. A trigger
// that panics is logged and counts as not triggered; the rest still run.
func (e *Engine) Select(in rules.Input) []rules.Bundle {
	var active []rules.Bundle
	for _, b := range e.table.Bundles() {
		ok, err := evalTrigger(b, in)
		if err != nil {
			e.logger.Warn("rule evaluation failed", "bundle", b.ID, "phase", "trigger", "error", err)
			continue
		}
		if ok {
			active = append(active, b)
		}
	}
	return active
}

// Generate runs each active bundle's generator and tags the steps with the
// owning bundle. A generator that panics drops its bundle from the active
// set. Generated steps always start pending: completion only ever comes from
// the previous plan. Duplicate step ids after the first are dropped.
func (e *Engine) Generate(active []rules.Bundle, in rules.Input) ([]types.Step, []string) {
	var steps []types.Step
	ids := make([]string, 0, len(active))
	seen := make(map[string]string)

	for _, b := range active {
		generated, err := evalGenerate(b, in)
		if err != nil {
			e.logger.Warn("rule evaluation failed", "bundle", b.ID, "phase", "generate", "error", err)
			continue
		}
		ids = append(ids, b.ID)

		for _, s := range generated {
			s.BundleID = b.ID
			s.BundleName = b.Name
			s.Status = types.StepPending
			s.CompletedDate = time.Time{}
			s.DateOverridden = false
			s.GeneratedDueDate = s.DueDate
			if s.Priority == "" {
				s.Priority = types.PriorityMedium
			}
			if err := s.Validate(); err != nil {
				e.logger.Warn("dropping invalid step", "bundle", b.ID, "error", err)
				continue
			}
			if owner, dup := seen[s.ID]; dup {
				e.logger.Warn("dropping duplicate step id", "step", s.ID, "bundle", b.ID, "first_bundle", owner)
				continue
			}
			seen[s.ID] = b.ID
			steps = append(steps, s)
		}
	}
	return steps, ids
}

func evalTrigger(b rules.Bundle, in rules.Input) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("trigger panicked: %v", r)
		}
	}()
	return b.Trigger(in), nil
}

func evalGenerate(b rules.Bundle, in rules.Input) (steps []types.Step, err error) {
	defer func() {
		if r := recover(); r != nil {
			steps = nil
			err = fmt.Errorf("generator panicked: %v", r)
		}
	}()
	return b.Generate(in), nil
}

// FilterVisible keeps a step gated on another step only when that step is
// completed in previous.
func FilterVisible(candidates, previous []types.Step) []types.Step {
	completed := completedIndex(previous)
	out := make([]types.Step, 0, len(candidates))
	for _, s := range candidates {
		if s.ShowAfterStep != "" && completed[s.ShowAfterStep] == nil {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Merge copies user progress from previous onto freshly generated steps:
// completion status and date, and a user-edited due date while the step is
// still editable and the rules still produce the same date it replaced.
// When the facts behind a date change (a rescheduled hearing), the new date
// wins and the edit is dropped. It never marks anything completed that was
// not already.
func Merge(steps, previous []types.Step) []types.Step {
	prev := make(map[string]*types.Step, len(previous))
	for i := range previous {
		prev[previous[i].ID] = &previous[i]
	}

	out := make([]types.Step, len(steps))
	for i, s := range steps {
		if p, ok := prev[s.ID]; ok {
			if p.Completed() {
				s.Status = types.StepCompleted
				s.CompletedDate = p.CompletedDate
			}
			if p.DateOverridden && s.IsEditableDate && s.GeneratedDueDate.Equal(p.GeneratedDueDate) {
				s.DueDate = p.DueDate
				s.DateOverridden = true
			}
		}
		out[i] = s
	}
	return out
}

// Retained returns the completed steps of previous that the current
// generation no longer produces, unchanged. Incomplete steps of retired
// bundles are not retained.
func Retained(generated, previous []types.Step) []types.Step {
	ids := make(map[string]bool, len(generated))
	for _, s := range generated {
		ids[s.ID] = true
	}
	var out []types.Step
	for _, p := range previous {
		if p.Completed() && !ids[p.ID] {
			p.Links = append([]types.Link(nil), p.Links...)
			out = append(out, p)
		}
	}
	return out
}

// Hidden returns the completed steps of history that are not in visible, in
// history order. These are kept on the plan so a step hidden by a reopened
// gate gets its completion back when the gate is completed again.
func Hidden(history, visible []types.Step) []types.Step {
	shown := make(map[string]bool, len(visible))
	for _, s := range visible {
		shown[s.ID] = true
	}
	var out []types.Step
	for _, h := range history {
		if h.Completed() && !shown[h.ID] {
			h.Links = append([]types.Link(nil), h.Links...)
			out = append(out, h)
		}
	}
	return out
}

// completionHistory returns the visible steps of prev followed by its hidden
// completed steps. Visible steps win on a shared id.
func completionHistory(prev *types.Plan) []types.Step {
	if prev == nil {
		return nil
	}
	if len(prev.HiddenSteps) == 0 {
		return prev.Steps
	}
	out := make([]types.Step, 0, len(prev.Steps)+len(prev.HiddenSteps))
	seen := make(map[string]bool, len(prev.Steps))
	for _, s := range prev.Steps {
		seen[s.ID] = true
		out = append(out, s)
	}
	for _, h := range prev.HiddenSteps {
		if !seen[h.ID] {
			seen[h.ID] = true
			out = append(out, h)
		}
	}
	return out
}

// UpdateStatuses sets every non-completed step to overdue when today is after
// its due date and to pending otherwise. Safe to run any number of times.
func UpdateStatuses(steps []types.Step, today types.Date) {
	for i := range steps {
		steps[i].Status = statusFor(&steps[i], today)
	}
}

func statusFor(s *types.Step, today types.Date) types.StepStatus {
	if s.Completed() {
		return types.StepCompleted
	}
	if !s.DueDate.IsZero() && today.After(s.DueDate) {
		return types.StepOverdue
	}
	return types.StepPending
}

// SortSteps ranks steps by status, priority, due date (dated first), title,
// and finally id, so the order does not depend on generation order.
func SortSteps(steps []types.Step) {
	sort.SliceStable(steps, func(i, j int) bool {
		return stepLess(&steps[i], &steps[j])
	})
}

func stepLess(a, b *types.Step) bool {
	if ra, rb := a.Status.Rank(), b.Status.Rank(); ra != rb {
		return ra < rb
	}
	if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
		return ra < rb
	}
	switch aDated, bDated := !a.DueDate.IsZero(), !b.DueDate.IsZero(); {
	case aDated && !bDated:
		return true
	case !aDated && bDated:
		return false
	case aDated && bDated && !a.DueDate.Equal(b.DueDate):
		return a.DueDate.Before(b.DueDate)
	}
	if a.Title != b.Title {
		return a.Title < b.Title
	}
	return a.ID < b.ID
}

func completedIndex(steps []types.Step) map[string]*types.Step {
	idx := make(map[string]*types.Step)
	for i := range steps {
		if steps[i].Completed() {
			idx[steps[i].ID] = &steps[i]
		}
	}
	return idx
}

package types

import (
	"fmt"
	"time"
)

// Step is one actionable, optionally dated task surfaced to the user.
type Step struct {
	ID               string       `json:"id"`
	BundleID         string       `json:"bundleId"`
	BundleName       string       `json:"bundleName"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	Kind             StepKind     `json:"kind,omitempty"`
	DueDate          Date         `json:"dueDate,omitzero"`
	Status           StepStatus   `json:"status"`
	Priority         StepPriority `json:"priority"`
	Links            []Link       `json:"links,omitempty"`
	IsEditableDate   bool         `json:"isEditableDate,omitempty"`
	DateOverridden   bool         `json:"dateOverridden,omitempty"`
	// GeneratedDueDate is the date the rules produced, before any user edit.
	GeneratedDueDate Date         `json:"generatedDueDate,omitzero"`
	CompletedDate    time.Time    `json:"completedDate,omitzero"`
	ShowAfterStep    string       `json:"showAfterStep,omitempty"`
}

// Validate checks if the step has valid field values
func (s *Step) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("step id is required")
	}
	if s.Title == "" {
		return fmt.Errorf("step %s: title is required", s.ID)
	}
	if !s.Status.IsValid() {
		return fmt.Errorf("step %s: invalid status: %s", s.ID, s.Status)
	}
	if !s.Priority.IsValid() {
		return fmt.Errorf("step %s: invalid priority: %s", s.ID, s.Priority)
	}
	if s.Status == StepCompleted && s.CompletedDate.IsZero() {
		return fmt.Errorf("step %s: completed without a completion date", s.ID)
	}
	if s.ShowAfterStep == s.ID {
		return fmt.Errorf("step %s: cannot be gated on itself", s.ID)
	}
	return nil
}

// Completed reports whether the user has marked the step done.
func (s *Step) Completed() bool {
	return s.Status == StepCompleted
}

// Link points at an official form, resource, or legal aid directory.
type Link struct {
	Title string   `json:"title"`
	URL   string   `json:"url"`
	Kind  LinkKind `json:"kind"`
}

// LinkKind categorizes a link for display
type LinkKind string

const (
	LinkForm     LinkKind = "form"
	LinkOfficial LinkKind = "official"
	LinkLegalAid LinkKind = "legal_aid"
	LinkInfo     LinkKind = "info"
)

// StepStatus represents the current state of a step.
//
// pending <-> overdue is driven only by comparing the due date with today.
// completed is reached only by an explicit user action.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepOverdue   StepStatus = "overdue"
	StepCompleted StepStatus = "completed"
)

// IsValid checks if the status value is valid
func (s StepStatus) IsValid() bool {
	switch s {
	case StepPending, StepOverdue, StepCompleted:
		return true
	}
	return false
}

// Rank orders statuses for display: overdue, pending, completed.
func (s StepStatus) Rank() int {
	switch s {
	case StepOverdue:
		return 0
	case StepPending:
		return 1
	case StepCompleted:
		return 2
	}
	return 3
}

// StepPriority is the urgency of a step
type StepPriority string

const (
	PriorityCritical StepPriority = "critical"
	PriorityHigh     StepPriority = "high"
	PriorityMedium   StepPriority = "medium"
	PriorityLow      StepPriority = "low"
)

// IsValid checks if the priority value is valid
func (p StepPriority) IsValid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank orders priorities: critical first.
func (p StepPriority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

// StepKind is the semantic role of a step. The alert compiler keys on it.
type StepKind string

const (
	KindGeneral         StepKind = ""
	KindFilingDeadline  StepKind = "filing_deadline"
	KindInterview       StepKind = "interview"
	KindHearing         StepKind = "hearing"
	KindWorkPermit      StepKind = "work_permit"
	KindProtectedStatus StepKind = "protected_status"
)

// Plan is the persisted aggregate of active bundles, visible steps, and
// alerts for one case.
type Plan struct {
	ID              string    `json:"id,omitempty"`
	CaseFacts       CaseFacts `json:"caseFacts"`
	ActiveBundleIDs []string  `json:"activeBundleIds"`
	Steps           []Step    `json:"steps"`
	Alerts          []Alert   `json:"alerts"`
	// HiddenSteps holds completed steps that are not visible right now
	// because their gate was reopened. They keep their completion so it
	// comes back when the gate is completed again.
	HiddenSteps     []Step    `json:"hiddenSteps,omitempty"`
	CreatedAt       time.Time `json:"createdAt,omitzero"`
	LastUpdated     time.Time `json:"lastUpdated"`
}

// Step returns the step with the given id, or nil.
func (p *Plan) Step(id string) *Step {
	for i := range p.Steps {
		if p.Steps[i].ID == id {
			return &p.Steps[i]
		}
	}
	return nil
}

// HasBundle reports whether the bundle was active in the last derivation.
func (p *Plan) HasBundle(id string) bool {
	for _, b := range p.ActiveBundleIDs {
		if b == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so engine operations never mutate their input.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	out := *p
	out.ActiveBundleIDs = append([]string(nil), p.ActiveBundleIDs...)
	out.Steps = cloneSteps(p.Steps)
	if p.HiddenSteps != nil {
		out.HiddenSteps = cloneSteps(p.HiddenSteps)
	}
	out.Alerts = append([]Alert(nil), p.Alerts...)
	for i := range out.Alerts {
		if d := out.Alerts[i].DaysLeft; d != nil {
			v := *d
			out.Alerts[i].DaysLeft = &v
		}
	}
	return &out
}

func cloneSteps(steps []Step) []Step {
	out := make([]Step, len(steps))
	for i, s := range steps {
		s.Links = append([]Link(nil), s.Links...)
		out[i] = s
	}
	return out
}

// Summary holds counts for status displays.
type Summary struct {
	Total     int `json:"total"`
	Overdue   int `json:"overdue"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	// NextDue is the earliest unresolved dated step, if any.
	NextDue *Step `json:"nextDue,omitempty"`
}

// Summarize counts steps by status.
func (p *Plan) Summarize() Summary {
	var s Summary
	for i := range p.Steps {
		step := &p.Steps[i]
		s.Total++
		switch step.Status {
		case StepOverdue:
			s.Overdue++
		case StepCompleted:
			s.Completed++
			continue
		default:
			s.Pending++
		}
		if step.DueDate.IsZero() {
			continue
		}
		if s.NextDue == nil || step.DueDate.Before(s.NextDue.DueDate) {
			s.NextDue = step
		}
	}
	return s
}

// Alert is a derived warning or informational message. Alerts are rebuilt
// in full on every plan derivation and have no identity of their own.
type Alert struct {
	Type             AlertType `json:"type"`
	Title            string    `json:"title"`
	Message          string    `json:"message"`
	Deadline         Date      `json:"deadline,omitzero"`
	DaysLeft         *int      `json:"daysLeft,omitempty"`
	ActionRequired   bool      `json:"actionRequired"`
	IsCourtRelated   bool      `json:"isCourtRelated,omitempty"`
	RequiresAttorney bool      `json:"requiresAttorney,omitempty"`
	StepID           string    `json:"stepId,omitempty"`
}

// AlertType is the severity of an alert
type AlertType string

const (
	AlertCritical     AlertType = "critical"
	AlertLegalWarning AlertType = "legal_warning"
	AlertWarning      AlertType = "warning"
	AlertInfo         AlertType = "info"
)

// IsValid checks if the alert type value is valid
func (t AlertType) IsValid() bool {
	switch t {
	case AlertCritical, AlertLegalWarning, AlertWarning, AlertInfo:
		return true
	}
	return false
}

// PlanEvent records a change to a plan for the activity log.
type PlanEvent struct {
	ID        string                 `json:"id"`
	PlanID    string                 `json:"planId"`
	Type      PlanEventType          `json:"type"`
	StepID    string                 `json:"stepId,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// PlanEventType names what happened to a plan
type PlanEventType string

const (
	EventPlanDerived    PlanEventType = "plan_derived"
	EventStepCompleted  PlanEventType = "step_completed"
	EventStepReopened   PlanEventType = "step_reopened"
	EventDueDateChanged PlanEventType = "due_date_changed"
)

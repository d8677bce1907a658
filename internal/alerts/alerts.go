// Package alerts derives the ranked, human-facing alerts for a plan.
//
// Alerts are recomputed in full every time; nothing here is stored.
package alerts

import (
	"fmt"
	"sort"

	"github.com/steveyegge/pathway/internal/deadlines"
	"github.com/steveyegge/pathway/internal/types"
)

// Config holds the day thresholds used to pick alert severity.
type Config struct {
	// WindowDays is how far ahead one-year and protected-status expirations
	// start producing alerts.
	// Default: 180
	WindowDays int

	// CriticalDays: a dated step with fewer days left (or already past) is critical.
	// Default: 7
	CriticalDays int

	// WarningDays: a dated step with fewer days left is a warning.
	// Default: 30
	WarningDays int
}

// DefaultConfig returns the default thresholds
func DefaultConfig() Config {
	return Config{
		WindowDays:   180,
		CriticalDays: 7,
		WarningDays:  30,
	}
}

// Validate checks the thresholds are ordered sensibly
func (c Config) Validate() error {
	if c.CriticalDays < 0 {
		return fmt.Errorf("critical_days cannot be negative (got %d)", c.CriticalDays)
	}
	if c.WarningDays < c.CriticalDays {
		return fmt.Errorf("warning_days (%d) must be >= critical_days (%d)", c.WarningDays, c.CriticalDays)
	}
	if c.WindowDays < c.WarningDays {
		return fmt.Errorf("window_days (%d) must be >= warning_days (%d)", c.WindowDays, c.WarningDays)
	}
	return nil
}

// Compile builds the alert list for the facts and plan as of today.
// The plan's own Alerts field is ignored.
func Compile(facts *types.CaseFacts, plan *types.Plan, today types.Date, cfg Config) []types.Alert {
	c := &compiler{
		facts:   facts,
		today:   today,
		cfg:     cfg,
		emitted: make(map[string]bool),
	}

	c.add(disclaimer())
	c.noAttorney()
	c.oneYearDeadline()
	c.protectedStatus("TPS", facts.HasTPS, facts.TPSExpirationDate)
	c.protectedStatus("Parole", facts.HasParole, facts.ParoleExpirationDate)
	if plan != nil {
		for i := range plan.Steps {
			c.step(&plan.Steps[i])
		}
	}

	Sort(c.alerts)
	return c.alerts
}

type compiler struct {
	facts   *types.CaseFacts
	today   types.Date
	cfg     Config
	alerts  []types.Alert
	emitted map[string]bool // kind|date already covered by a facts-level alert
}

func (c *compiler) add(a types.Alert) {
	c.alerts = append(c.alerts, a)
}

func disclaimer() types.Alert {
	return types.Alert{
		Type:    types.AlertInfo,
		Title:   "This is not legal advice",
		Message: "This plan is general information based on your answers. Immigration law is complex and changes often. Talk to a qualified immigration attorney or accredited representative about your case.",
	}
}

func (c *compiler) noAttorney() {
	if c.facts.HasAttorney {
		return
	}
	a := types.Alert{
		Type:             types.AlertLegalWarning,
		Title:            "You do not have a lawyer",
		Message:          "People with lawyers are far more likely to win asylum. Free and low-cost legal help may be available.",
		ActionRequired:   true,
		RequiresAttorney: true,
	}
	if c.facts.InCourt() {
		a.Type = types.AlertCritical
		a.Title = "You are in court without a lawyer"
		a.Message = "Your case is in immigration court. The government has a lawyer; you should too. Contact legal aid right away."
		a.IsCourtRelated = true
	}
	c.add(a)
}

func (c *compiler) oneYearDeadline() {
	f := c.facts
	if f.Filed() || !f.Pending() || f.EntryDate.IsZero() {
		return
	}
	deadline := deadlines.OneYearDeadline(f)
	days := deadlines.DaysUntil(deadline, c.today)
	if days > c.cfg.WindowDays {
		return
	}

	a := types.Alert{
		Type:           types.AlertWarning,
		Title:          "One-year filing deadline approaching",
		Message:        fmt.Sprintf("You must file for asylum by %s (%s).", deadline, describeDays(days)),
		Deadline:       deadline,
		DaysLeft:       intPtr(days),
		ActionRequired: true,
		IsCourtRelated: f.InCourt(),
	}
	switch {
	case days < 0:
		a.Type = types.AlertCritical
		a.Title = "One-year filing deadline has passed"
		a.Message = fmt.Sprintf("The deadline was %s. You may still qualify for an exception, but you need legal help now.", deadline)
		a.RequiresAttorney = true
	case days < c.cfg.WarningDays:
		a.Type = types.AlertCritical
	}
	c.add(a)
	c.emitted[emitKey(types.KindFilingDeadline, deadline)] = true
}

func (c *compiler) protectedStatus(label string, has bool, expires types.Date) {
	if !has || expires.IsZero() {
		return
	}
	days := deadlines.DaysUntil(expires, c.today)
	if days > c.cfg.WindowDays {
		return
	}
	a := types.Alert{
		Type:           types.AlertWarning,
		Title:          fmt.Sprintf("%s expires soon", label),
		Message:        fmt.Sprintf("Your %s expires on %s (%s). Renew it or make sure you have another status.", label, expires, describeDays(days)),
		Deadline:       expires,
		DaysLeft:       intPtr(days),
		ActionRequired: true,
	}
	if days < 0 {
		a.Title = fmt.Sprintf("%s has expired", label)
		a.Message = fmt.Sprintf("Your %s expired on %s. Talk to a lawyer about your options.", label, expires)
		a.RequiresAttorney = true
	}
	if days < c.cfg.CriticalDays {
		a.Type = types.AlertCritical
	}
	c.add(a)
}

func (c *compiler) step(s *types.Step) {
	if s.Completed() || s.DueDate.IsZero() {
		return
	}
	switch s.Kind {
	case types.KindFilingDeadline, types.KindInterview, types.KindHearing, types.KindWorkPermit:
	default:
		return
	}
	if c.emitted[emitKey(s.Kind, s.DueDate)] {
		return
	}

	days := deadlines.DaysUntil(s.DueDate, c.today)
	a := types.Alert{
		Type:           c.severity(days),
		Deadline:       s.DueDate,
		DaysLeft:       intPtr(days),
		ActionRequired: true,
		StepID:         s.ID,
	}
	when := describeDays(days)

	switch s.Kind {
	case types.KindFilingDeadline:
		a.Title = "Filing deadline: " + s.Title
		a.Message = fmt.Sprintf("Due %s (%s).", s.DueDate, when)
		a.RequiresAttorney = !c.facts.HasAttorney
		a.IsCourtRelated = c.facts.InCourt()
	case types.KindInterview:
		a.Title = "Asylum interview"
		a.Message = fmt.Sprintf("Your interview is on %s (%s). Bring an interpreter and your original documents.", s.DueDate, when)
	case types.KindHearing:
		a.Title = "Court hearing"
		a.Message = fmt.Sprintf("Your hearing is on %s (%s). Missing it can result in a removal order.", s.DueDate, when)
		a.IsCourtRelated = true
		a.RequiresAttorney = !c.facts.HasAttorney
	case types.KindWorkPermit:
		// Eligibility is an opportunity, not a threat: info until the date arrives.
		a.Type = types.AlertInfo
		a.Title = "Work permit eligibility"
		a.Message = fmt.Sprintf("You can apply for a work permit starting %s (%s).", s.DueDate, when)
		a.ActionRequired = days <= 0
		if days <= 0 {
			a.Type = types.AlertWarning
			a.Message = fmt.Sprintf("You have been eligible to apply for a work permit since %s.", s.DueDate)
		}
	}
	c.add(a)
}

func (c *compiler) severity(days int) types.AlertType {
	switch {
	case days < c.cfg.CriticalDays:
		return types.AlertCritical
	case days < c.cfg.WarningDays:
		return types.AlertWarning
	default:
		return types.AlertInfo
	}
}

// Sort orders alerts: critical, then legal warnings, then everything else;
// within each group by days left ascending with undated alerts last.
func Sort(alerts []types.Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		a, b := &alerts[i], &alerts[j]
		if ra, rb := typeRank(a.Type), typeRank(b.Type); ra != rb {
			return ra < rb
		}
		switch {
		case a.DaysLeft != nil && b.DaysLeft != nil:
			if *a.DaysLeft != *b.DaysLeft {
				return *a.DaysLeft < *b.DaysLeft
			}
		case a.DaysLeft != nil:
			return true
		case b.DaysLeft != nil:
			return false
		}
		return a.Title < b.Title
	})
}

func typeRank(t types.AlertType) int {
	switch t {
	case types.AlertCritical:
		return 0
	case types.AlertLegalWarning:
		return 1
	}
	return 2
}

func describeDays(days int) string {
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days > 1:
		return fmt.Sprintf("in %d days", days)
	case days == -1:
		return "1 day ago"
	default:
		return fmt.Sprintf("%d days ago", -days)
	}
}

func emitKey(kind types.StepKind, d types.Date) string {
	return string(kind) + "|" + d.String()
}

func intPtr(v int) *int {
	return &v
}

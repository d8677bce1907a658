// Package deadlines computes statutory dates from case facts.
//
// Everything here is a pure function of its arguments. Exceptions only ever
// extend a deadline: the result is the maximum of every applicable candidate.
package deadlines

import (
	"github.com/steveyegge/pathway/internal/types"
)

const (
	// WorkPermitWaitDays is how long after filing an applicant must wait before
	// the work authorization clock allows an application.
	WorkPermitWaitDays = 150

	// TPSGraceMonths extends the one-year deadline past the end of TPS.
	TPSGraceMonths = 6

	// ParoleGraceMonths extends the one-year deadline past the end of parole.
	ParoleGraceMonths = 3
)

// BaseOneYearDeadline is entry date + 1 year, with no exceptions applied.
func BaseOneYearDeadline(entry types.Date) types.Date {
	if entry.IsZero() {
		return types.Date{}
	}
	return entry.AddDate(1, 0, 0)
}

// OneYearDeadline returns the filing deadline for the principal application,
// extended by any protected-status exception that pushes it later.
// Returns the zero Date when the entry date is unknown.
func OneYearDeadline(f *types.CaseFacts) types.Date {
	deadline := BaseOneYearDeadline(f.EntryDate)
	if deadline.IsZero() {
		return deadline
	}
	for _, candidate := range exceptionDeadlines(f) {
		deadline = types.Later(deadline, candidate)
	}
	return deadline
}

// Exception names a deadline extension that applies to the facts.
type Exception struct {
	Name     string
	Deadline types.Date
}

// Exceptions lists the extensions that apply, whether or not they end up
// beating the base deadline.
func Exceptions(f *types.CaseFacts) []Exception {
	var out []Exception
	if f.HasTPS && !f.TPSExpirationDate.IsZero() {
		out = append(out, Exception{Name: "tps", Deadline: f.TPSExpirationDate.AddDate(0, TPSGraceMonths, 0)})
	}
	if f.HasParole && !f.ParoleExpirationDate.IsZero() {
		out = append(out, Exception{Name: "parole", Deadline: f.ParoleExpirationDate.AddDate(0, ParoleGraceMonths, 0)})
	}
	return out
}

// IsExtended reports whether an exception moved the deadline past the base.
func IsExtended(f *types.CaseFacts) bool {
	base := BaseOneYearDeadline(f.EntryDate)
	return !base.IsZero() && OneYearDeadline(f).After(base)
}

func exceptionDeadlines(f *types.CaseFacts) []types.Date {
	exceptions := Exceptions(f)
	dates := make([]types.Date, 0, len(exceptions))
	for _, e := range exceptions {
		dates = append(dates, e.Deadline)
	}
	return dates
}

// WorkPermitEligible returns the first date a work authorization application
// may be filed: filing date + 150 days, or entry date + 150 days when nothing
// has been filed yet. The second return value is true for the entry-date
// fallback, which is only an estimate and moves once a filing date exists.
func WorkPermitEligible(f *types.CaseFacts) (types.Date, bool) {
	if f.Filed() && !f.FilingDate.IsZero() {
		return f.FilingDate.AddDays(WorkPermitWaitDays), false
	}
	if f.EntryDate.IsZero() {
		return types.Date{}, true
	}
	return f.EntryDate.AddDays(WorkPermitWaitDays), true
}

// DaysUntil is the number of days from today to date. Negative values mean
// the date is in the past. Both are calendar dates, so the ceiling of the
// difference is the whole-day difference.
func DaysUntil(date, today types.Date) int {
	return date.DaysSince(today)
}

// PastDue reports whether today is strictly after date.
func PastDue(date, today types.Date) bool {
	return !date.IsZero() && today.After(date)
}

package types

import (
	"fmt"
)

// CaseFacts is the validated snapshot of what is known about a case.
// It is produced by intake and treated as immutable for one derivation cycle.
type CaseFacts struct {
	EntryDate Date `json:"entryDate,omitzero" yaml:"entry_date,omitempty"`

	// Principal asylum application (I-589)
	FilingStatus FilingStatus `json:"filingStatus" yaml:"filing_status"`
	FilingDate   Date         `json:"filingDate,omitzero" yaml:"filing_date,omitempty"`

	// Where the case is heard
	Forum           Forum  `json:"forum" yaml:"forum"`
	CourtID         string `json:"courtId,omitempty" yaml:"court_id,omitempty"`
	NextHearingDate Date   `json:"nextHearingDate,omitzero" yaml:"next_hearing_date,omitempty"`
	InterviewDate   Date   `json:"interviewDate,omitzero" yaml:"interview_date,omitempty"`

	// Protected status
	HasTPS               bool   `json:"hasTps" yaml:"has_tps"`
	TPSCountry           string `json:"tpsCountry,omitempty" yaml:"tps_country,omitempty"`
	TPSExpirationDate    Date   `json:"tpsExpirationDate,omitzero" yaml:"tps_expiration_date,omitempty"`
	HasParole            bool   `json:"hasParole" yaml:"has_parole"`
	ParoleType           string `json:"paroleType,omitempty" yaml:"parole_type,omitempty"`
	ParoleExpirationDate Date   `json:"paroleExpirationDate,omitzero" yaml:"parole_expiration_date,omitempty"`

	HasAttorney   bool `json:"hasAttorney" yaml:"has_attorney"`
	HasWorkPermit bool `json:"hasWorkPermit" yaml:"has_work_permit"`

	Outcome       Outcome `json:"outcome" yaml:"outcome"`
	DecisionDate  Date    `json:"decisionDate,omitzero" yaml:"decision_date,omitempty"`
	MissedHearing bool    `json:"missedHearing" yaml:"missed_hearing"`
	AppealNeeded  bool    `json:"appealNeeded" yaml:"appeal_needed"`
}

// FilingStatus tracks whether the principal application has been submitted.
type FilingStatus string

const (
	FilingNotFiled FilingStatus = "not_filed"
	FilingFiled    FilingStatus = "filed"
)

// IsValid checks if the filing status value is valid. Empty means not filed.
func (s FilingStatus) IsValid() bool {
	switch s {
	case FilingNotFiled, FilingFiled, "":
		return true
	}
	return false
}

// Forum is where the case is being decided.
type Forum string

const (
	ForumNone   Forum = ""
	ForumAgency Forum = "agency" // affirmative, before USCIS
	ForumCourt  Forum = "court"  // defensive, before immigration court
)

// IsValid checks if the forum value is valid
func (f Forum) IsValid() bool {
	switch f {
	case ForumNone, ForumAgency, ForumCourt:
		return true
	}
	return false
}

// Outcome is the decision state of the case.
type Outcome string

const (
	OutcomePending Outcome = "pending"
	OutcomeDenied  Outcome = "denied"
	OutcomeGranted Outcome = "asylum_granted"
)

// IsValid checks if the outcome value is valid. Empty means pending.
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomePending, OutcomeDenied, OutcomeGranted, "":
		return true
	}
	return false
}

// Filed reports whether the principal application has been submitted.
func (f *CaseFacts) Filed() bool {
	return f.FilingStatus == FilingFiled
}

// InCourt reports whether the case is on the defensive (court) track.
func (f *CaseFacts) InCourt() bool {
	return f.Forum == ForumCourt
}

// Pending reports whether no decision has been made yet.
func (f *CaseFacts) Pending() bool {
	return f.Outcome == OutcomePending || f.Outcome == ""
}

// Validate checks structural well-formedness only. Whether the facts are
// plausible is not checked.
func (f *CaseFacts) Validate() error {
	if !f.FilingStatus.IsValid() {
		return fmt.Errorf("invalid filing status: %s", f.FilingStatus)
	}
	if !f.Forum.IsValid() {
		return fmt.Errorf("invalid forum: %s", f.Forum)
	}
	if !f.Outcome.IsValid() {
		return fmt.Errorf("invalid outcome: %s", f.Outcome)
	}
	if f.Filed() && f.FilingDate.IsZero() {
		return fmt.Errorf("filing_date is required when the application has been filed")
	}
	if !f.Filed() && !f.FilingDate.IsZero() {
		return fmt.Errorf("filing_date set but filing_status is %q", f.FilingStatus)
	}
	if f.HasTPS && f.TPSExpirationDate.IsZero() {
		return fmt.Errorf("tps_expiration_date is required when has_tps is set")
	}
	if f.HasParole && f.ParoleExpirationDate.IsZero() {
		return fmt.Errorf("parole_expiration_date is required when has_parole is set")
	}
	return nil
}

package rules

import (
	"testing"

	"github.com/steveyegge/pathway/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var d = types.MustParseDate

func activeIDs(facts types.CaseFacts, today types.Date) []string {
	in := Input{Facts: &facts, Today: today}
	var ids []string
	for _, b := range Default().Bundles() {
		if b.Trigger(in) {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

func generate(t *testing.T, id string, facts types.CaseFacts, today types.Date) []types.Step {
	t.Helper()
	b, ok := Default().Get(id)
	require.True(t, ok, "bundle %s", id)
	return b.Generate(Input{Facts: &facts, Today: today})
}

func findStep(steps []types.Step, id string) *types.Step {
	for i := range steps {
		if steps[i].ID == id {
			return &steps[i]
		}
	}
	return nil
}

func TestBuiltinTableIsValid(t *testing.T) {
	table, err := NewTable(Builtin()...)
	require.NoError(t, err)
	assert.Equal(t, 12, table.Len())
}

func TestBundleTriggers(t *testing.T) {
	today := d("2024-10-01")
	tests := []struct {
		name     string
		facts    types.CaseFacts
		today    types.Date
		active   []string
		inactive []string
	}{
		{
			name:     "recent arrival, nothing filed",
			facts:    types.CaseFacts{EntryDate: d("2024-01-01")},
			active:   []string{BundleAffirmativeFiling, BundleWorkAuthorization, BundleFindAttorney},
			inactive: []string{BundleLateFiling, BundleAffirmativePending, BundleImmigrationCourt},
		},
		{
			name:   "past the one-year deadline",
			facts:  types.CaseFacts{EntryDate: d("2022-01-01")},
			active: []string{BundleAffirmativeFiling, BundleLateFiling},
		},
		{
			name:     "late filing clears once filed",
			facts:    types.CaseFacts{EntryDate: d("2022-01-01"), FilingStatus: types.FilingFiled, FilingDate: d("2024-02-01"), HasAttorney: true},
			active:   []string{BundleAffirmativePending, BundleWorkAuthorization},
			inactive: []string{BundleAffirmativeFiling, BundleLateFiling, BundleFindAttorney},
		},
		{
			name:     "court case",
			facts:    types.CaseFacts{EntryDate: d("2024-01-01"), Forum: types.ForumCourt},
			active:   []string{BundleImmigrationCourt, BundleFindAttorney},
			inactive: []string{BundleAffirmativeFiling, BundleAffirmativePending},
		},
		{
			name:     "work permit already held",
			facts:    types.CaseFacts{EntryDate: d("2024-01-01"), HasWorkPermit: true},
			inactive: []string{BundleWorkAuthorization},
		},
		{
			name:   "missed hearing",
			facts:  types.CaseFacts{Forum: types.ForumCourt, MissedHearing: true},
			active: []string{BundleMissedHearing, BundleImmigrationCourt},
		},
		{
			name:     "court denial",
			facts:    types.CaseFacts{Forum: types.ForumCourt, Outcome: types.OutcomeDenied, DecisionDate: d("2024-09-20")},
			active:   []string{BundleAppeal},
			inactive: []string{BundleAffirmativeDenial, BundleImmigrationCourt, BundleWorkAuthorization},
		},
		{
			name:     "agency denial",
			facts:    types.CaseFacts{Forum: types.ForumAgency, Outcome: types.OutcomeDenied},
			active:   []string{BundleAffirmativeDenial},
			inactive: []string{BundleAppeal},
		},
		{
			name:     "agency denial flagged for appeal",
			facts:    types.CaseFacts{Forum: types.ForumAgency, Outcome: types.OutcomeDenied, AppealNeeded: true},
			active:   []string{BundleAppeal},
			inactive: []string{BundleAffirmativeDenial},
		},
		{
			name:   "tps and parole",
			facts:  types.CaseFacts{HasTPS: true, TPSExpirationDate: d("2025-06-01"), HasParole: true, ParoleExpirationDate: d("2025-01-01")},
			active: []string{BundleTPS, BundleParole},
		},
		{
			name:     "granted",
			facts:    types.CaseFacts{Outcome: types.OutcomeGranted, HasAttorney: true, DecisionDate: d("2024-08-01")},
			active:   []string{BundleAsylumGranted},
			inactive: []string{BundleFindAttorney, BundleWorkAuthorization, BundleAffirmativeFiling},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := today
			if !tt.today.IsZero() {
				now = tt.today
			}
			ids := activeIDs(tt.facts, now)
			for _, id := range tt.active {
				assert.Contains(t, ids, id)
			}
			for _, id := range tt.inactive {
				assert.NotContains(t, ids, id)
			}
		})
	}
}

func TestAffirmativeFilingSteps(t *testing.T) {
	steps := generate(t, BundleAffirmativeFiling, types.CaseFacts{EntryDate: d("2024-01-01")}, d("2024-10-01"))

	file := findStep(steps, "affirmative-filing:file-application")
	require.NotNil(t, file)
	assert.Equal(t, d("2025-01-01"), file.DueDate)
	assert.Equal(t, types.KindFilingDeadline, file.Kind)
	assert.Equal(t, types.PriorityCritical, file.Priority)
	assert.False(t, file.IsEditableDate, "statutory deadlines are not editable")

	evidence := findStep(steps, "affirmative-filing:gather-evidence")
	require.NotNil(t, evidence)
	assert.Equal(t, d("2025-01-01").AddDays(-EvidenceLeadDays), evidence.DueDate)

	receipt := findStep(steps, "affirmative-filing:save-receipt")
	require.NotNil(t, receipt)
	assert.Equal(t, file.ID, receipt.ShowAfterStep)
}

func TestAffirmativeFilingUsesExtendedDeadline(t *testing.T) {
	facts := types.CaseFacts{EntryDate: d("2023-01-01"), HasTPS: true, TPSExpirationDate: d("2025-06-01")}
	steps := generate(t, BundleAffirmativeFiling, facts, d("2025-01-01"))

	file := findStep(steps, "affirmative-filing:file-application")
	require.NotNil(t, file)
	assert.Equal(t, d("2025-12-01"), file.DueDate)
	assert.Contains(t, file.Description, "extends")
}

func TestAffirmativePendingInterview(t *testing.T) {
	base := types.CaseFacts{FilingStatus: types.FilingFiled, FilingDate: d("2024-02-01")}

	steps := generate(t, BundleAffirmativePending, base, d("2024-10-01"))
	assert.NotNil(t, findStep(steps, "affirmative-pending:watch-interview-notice"))
	assert.Nil(t, findStep(steps, "affirmative-pending:attend-interview"))

	withInterview := base
	withInterview.InterviewDate = d("2024-12-10")
	steps = generate(t, BundleAffirmativePending, withInterview, d("2024-10-01"))
	assert.Nil(t, findStep(steps, "affirmative-pending:watch-interview-notice"))

	attend := findStep(steps, "affirmative-pending:attend-interview")
	require.NotNil(t, attend)
	assert.Equal(t, d("2024-12-10"), attend.DueDate)
	assert.Equal(t, types.KindInterview, attend.Kind)
	assert.True(t, attend.IsEditableDate)

	prep := findStep(steps, "affirmative-pending:prepare-interview")
	require.NotNil(t, prep)
	assert.Equal(t, d("2024-11-26"), prep.DueDate)
}

func TestWorkAuthorizationProvisional(t *testing.T) {
	steps := generate(t, BundleWorkAuthorization, types.CaseFacts{EntryDate: d("2024-01-01")}, d("2024-03-01"))
	require.Len(t, steps, 1)
	assert.Equal(t, d("2024-05-30"), steps[0].DueDate)
	assert.Contains(t, steps[0].Description, "Estimated")

	filed := types.CaseFacts{EntryDate: d("2024-01-01"), FilingStatus: types.FilingFiled, FilingDate: d("2024-03-01")}
	steps = generate(t, BundleWorkAuthorization, filed, d("2024-03-01"))
	require.Len(t, steps, 1)
	assert.Equal(t, d("2024-07-29"), steps[0].DueDate)
	assert.Equal(t, types.KindWorkPermit, steps[0].Kind)
}

func TestImmigrationCourtSteps(t *testing.T) {
	facts := types.CaseFacts{
		EntryDate:       d("2024-01-01"),
		Forum:           types.ForumCourt,
		CourtID:         "New York Broadway",
		NextHearingDate: d("2024-11-15"),
	}
	steps := generate(t, BundleImmigrationCourt, facts, d("2024-10-01"))

	hearing := findStep(steps, "immigration-court:attend-hearing")
	require.NotNil(t, hearing)
	assert.Equal(t, types.KindHearing, hearing.Kind)
	assert.True(t, hearing.IsEditableDate)
	assert.Contains(t, hearing.Description, "New York Broadway")
	assert.NotNil(t, findStep(steps, "immigration-court:file-application"))
	assert.Nil(t, findStep(steps, "immigration-court:find-hearing-date"))

	facts.NextHearingDate = types.Date{}
	facts.FilingStatus = types.FilingFiled
	facts.FilingDate = d("2024-05-01")
	steps = generate(t, BundleImmigrationCourt, facts, d("2024-10-01"))
	assert.NotNil(t, findStep(steps, "immigration-court:find-hearing-date"))
	assert.Nil(t, findStep(steps, "immigration-court:file-application"))
}

func TestFindAttorneyPriority(t *testing.T) {
	steps := generate(t, BundleFindAttorney, types.CaseFacts{}, d("2024-10-01"))
	assert.Equal(t, types.PriorityHigh, findStep(steps, "find-attorney:contact-legal-aid").Priority)

	steps = generate(t, BundleFindAttorney, types.CaseFacts{Forum: types.ForumCourt}, d("2024-10-01"))
	assert.Equal(t, types.PriorityCritical, findStep(steps, "find-attorney:contact-legal-aid").Priority)
}

func TestAppealSteps(t *testing.T) {
	facts := types.CaseFacts{Forum: types.ForumCourt, Outcome: types.OutcomeDenied, DecisionDate: d("2024-09-20")}
	steps := generate(t, BundleAppeal, facts, d("2024-10-01"))

	file := findStep(steps, "appeal:file-appeal")
	require.NotNil(t, file)
	assert.Equal(t, d("2024-10-20"), file.DueDate)

	for _, id := range []string{"appeal:briefing-schedule", "appeal:file-brief"} {
		s := findStep(steps, id)
		require.NotNil(t, s, id)
		assert.Equal(t, file.ID, s.ShowAfterStep)
	}
}

func TestMissedHearingMotionDeadline(t *testing.T) {
	steps := generate(t, BundleMissedHearing, types.CaseFacts{MissedHearing: true, DecisionDate: d("2024-06-01")}, d("2024-10-01"))
	motion := findStep(steps, "missed-hearing:motion-to-reopen")
	require.NotNil(t, motion)
	assert.Equal(t, d("2024-11-28"), motion.DueDate)

	steps = generate(t, BundleMissedHearing, types.CaseFacts{MissedHearing: true}, d("2024-10-01"))
	assert.True(t, findStep(steps, "missed-hearing:motion-to-reopen").DueDate.IsZero())
}

func TestProtectedStatusSteps(t *testing.T) {
	steps := generate(t, BundleTPS, types.CaseFacts{HasTPS: true, TPSExpirationDate: d("2025-06-01"), TPSCountry: "Haiti"}, d("2024-10-01"))
	require.Len(t, steps, 1)
	assert.Equal(t, d("2025-04-02"), steps[0].DueDate)
	assert.Contains(t, steps[0].Description, "Haiti")

	steps = generate(t, BundleParole, types.CaseFacts{HasParole: true, ParoleExpirationDate: d("2025-01-01"), ParoleType: "CHNV"}, d("2024-10-01"))
	exp := findStep(steps, "parole:expiration")
	require.NotNil(t, exp)
	assert.Equal(t, d("2025-01-01"), exp.DueDate)
	assert.Contains(t, exp.Description, "CHNV parole")
}

func TestAsylumGrantedDeadlines(t *testing.T) {
	steps := generate(t, BundleAsylumGranted, types.CaseFacts{Outcome: types.OutcomeGranted, DecisionDate: d("2024-08-01")}, d("2024-10-01"))
	assert.Equal(t, d("2026-08-01"), findStep(steps, "asylum-granted:petition-family").DueDate)
	assert.Equal(t, d("2025-08-01"), findStep(steps, "asylum-granted:apply-green-card").DueDate)
}

// Every generator, run against facts that touch every field, must yield
// well-formed steps with globally unique ids.
func TestBuiltinStepIDsAreUnique(t *testing.T) {
	facts := types.CaseFacts{
		EntryDate:            d("2023-01-01"),
		FilingStatus:         types.FilingFiled,
		FilingDate:           d("2023-06-01"),
		Forum:                types.ForumCourt,
		NextHearingDate:      d("2024-12-01"),
		InterviewDate:        d("2024-11-01"),
		HasTPS:               true,
		TPSExpirationDate:    d("2025-06-01"),
		HasParole:            true,
		ParoleExpirationDate: d("2025-01-01"),
		Outcome:              types.OutcomeDenied,
		DecisionDate:         d("2024-09-01"),
		MissedHearing:        true,
		AppealNeeded:         true,
	}
	in := Input{Facts: &facts, Today: d("2024-10-01")}

	seen := make(map[string]string)
	for _, b := range Default().Bundles() {
		for _, s := range b.Generate(in) {
			assert.NotEmpty(t, s.Title, s.ID)
			if owner, dup := seen[s.ID]; dup {
				t.Errorf("step id %s generated by both %s and %s", s.ID, owner, b.ID)
			}
			seen[s.ID] = b.ID
			assert.Regexp(t, "^"+b.ID+":", s.ID)
		}
	}
	assert.NotEmpty(t, seen)
}

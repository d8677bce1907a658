package alerts

import (
	"testing"

	"github.com/steveyegge/pathway/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var d = types.MustParseDate

func find(alerts []types.Alert, title string) *types.Alert {
	for i := range alerts {
		if alerts[i].Title == title {
			return &alerts[i]
		}
	}
	return nil
}

func TestDisclaimerAlwaysPresent(t *testing.T) {
	facts := &types.CaseFacts{HasAttorney: true}
	got := Compile(facts, nil, d("2024-10-01"), DefaultConfig())

	require.Len(t, got, 1)
	assert.Equal(t, types.AlertInfo, got[0].Type)
	assert.Equal(t, "This is not legal advice", got[0].Title)
}

func TestCourtWithoutAttorneyOutranksWarnings(t *testing.T) {
	today := d("2024-10-01")
	facts := &types.CaseFacts{
		EntryDate: d("2023-12-01"), // deadline 2024-12-01, 61 days out
		Forum:     types.ForumCourt,
	}
	got := Compile(facts, nil, today, DefaultConfig())

	require.GreaterOrEqual(t, len(got), 3)
	assert.Equal(t, types.AlertCritical, got[0].Type)
	assert.Equal(t, "You are in court without a lawyer", got[0].Title)
	assert.True(t, got[0].IsCourtRelated)
	assert.True(t, got[0].RequiresAttorney)

	deadline := find(got, "One-year filing deadline approaching")
	require.NotNil(t, deadline)
	assert.Equal(t, types.AlertWarning, deadline.Type)
	require.NotNil(t, deadline.DaysLeft)
	assert.Equal(t, 61, *deadline.DaysLeft)

	assert.Equal(t, types.AlertInfo, got[len(got)-1].Type)
}

func TestNoAttorneyOutsideCourtIsLegalWarning(t *testing.T) {
	got := Compile(&types.CaseFacts{}, nil, d("2024-10-01"), DefaultConfig())
	a := find(got, "You do not have a lawyer")
	require.NotNil(t, a)
	assert.Equal(t, types.AlertLegalWarning, a.Type)
	assert.False(t, a.IsCourtRelated)
}

func TestOneYearDeadlineBands(t *testing.T) {
	entry := d("2024-01-01") // deadline 2025-01-01
	tests := []struct {
		name     string
		today    string
		wantType types.AlertType
		wantNone bool
	}{
		{name: "outside window", today: "2024-03-01", wantNone: true},
		{name: "inside window", today: "2024-10-01", wantType: types.AlertWarning},
		{name: "under thirty days", today: "2024-12-10", wantType: types.AlertCritical},
		{name: "past", today: "2025-01-05", wantType: types.AlertCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := &types.CaseFacts{EntryDate: entry, HasAttorney: true}
			got := Compile(facts, nil, d(tt.today), DefaultConfig())

			var deadline *types.Alert
			for i := range got {
				if !got[i].Deadline.IsZero() {
					deadline = &got[i]
				}
			}
			if tt.wantNone {
				assert.Nil(t, deadline)
				return
			}
			require.NotNil(t, deadline)
			assert.Equal(t, tt.wantType, deadline.Type)
			assert.Equal(t, d("2025-01-01"), deadline.Deadline)
		})
	}
}

func TestNoOneYearAlertOnceFiled(t *testing.T) {
	facts := &types.CaseFacts{
		EntryDate:    d("2024-01-01"),
		FilingStatus: types.FilingFiled,
		FilingDate:   d("2024-06-01"),
		HasAttorney:  true,
	}
	got := Compile(facts, nil, d("2024-12-10"), DefaultConfig())
	assert.Len(t, got, 1)
}

func TestProtectedStatusAlerts(t *testing.T) {
	facts := &types.CaseFacts{
		HasAttorney:          true,
		HasTPS:               true,
		TPSExpirationDate:    d("2024-10-05"),
		HasParole:            true,
		ParoleExpirationDate: d("2025-01-30"),
	}
	got := Compile(facts, nil, d("2024-10-01"), DefaultConfig())

	tps := find(got, "TPS expires soon")
	require.NotNil(t, tps)
	assert.Equal(t, types.AlertCritical, tps.Type)

	parole := find(got, "Parole expires soon")
	require.NotNil(t, parole)
	assert.Equal(t, types.AlertWarning, parole.Type)

	got = Compile(facts, nil, d("2024-10-10"), DefaultConfig())
	assert.NotNil(t, find(got, "TPS has expired"))
}

func TestStepAlerts(t *testing.T) {
	today := d("2024-10-01")
	plan := &types.Plan{Steps: []types.Step{
		{ID: "h", Title: "Attend hearing", Kind: types.KindHearing, DueDate: d("2024-10-04"), Status: types.StepPending},
		{ID: "i", Title: "Attend interview", Kind: types.KindInterview, DueDate: d("2024-10-20"), Status: types.StepPending},
		{ID: "f", Title: "File brief", Kind: types.KindFilingDeadline, DueDate: d("2024-12-20"), Status: types.StepPending},
		{ID: "w", Title: "Apply for work permit", Kind: types.KindWorkPermit, DueDate: d("2024-11-01"), Status: types.StepPending},
		{ID: "done", Title: "Done", Kind: types.KindHearing, DueDate: d("2024-10-02"), Status: types.StepCompleted},
		{ID: "plain", Title: "Gather evidence", DueDate: d("2024-10-02"), Status: types.StepPending},
		{ID: "undated", Title: "Hearing TBD", Kind: types.KindHearing, Status: types.StepPending},
	}}
	facts := &types.CaseFacts{HasAttorney: true}

	got := Compile(facts, plan, today, DefaultConfig())

	byStep := make(map[string]types.Alert)
	for _, a := range got {
		if a.StepID != "" {
			byStep[a.StepID] = a
		}
	}
	require.Len(t, byStep, 4)
	assert.Equal(t, types.AlertCritical, byStep["h"].Type)
	assert.True(t, byStep["h"].IsCourtRelated)
	assert.Equal(t, types.AlertWarning, byStep["i"].Type)
	assert.Equal(t, types.AlertInfo, byStep["f"].Type)
	assert.Equal(t, types.AlertInfo, byStep["w"].Type)
	assert.False(t, byStep["w"].ActionRequired)

	assert.Equal(t, "h", got[0].StepID, "most urgent first")
}

func TestWorkPermitAlertOnceEligible(t *testing.T) {
	plan := &types.Plan{Steps: []types.Step{
		{ID: "w", Title: "Apply", Kind: types.KindWorkPermit, DueDate: d("2024-09-01"), Status: types.StepOverdue},
	}}
	got := Compile(&types.CaseFacts{HasAttorney: true}, plan, d("2024-10-01"), DefaultConfig())

	require.Len(t, got, 2)
	assert.Equal(t, "w", got[0].StepID)
	assert.Equal(t, types.AlertWarning, got[0].Type)
	assert.True(t, got[0].ActionRequired)
}

func TestStepAlertDedupedAgainstOneYearDeadline(t *testing.T) {
	facts := &types.CaseFacts{EntryDate: d("2024-01-01"), HasAttorney: true}
	plan := &types.Plan{Steps: []types.Step{
		{ID: "affirmative-filing:file-application", Title: "File", Kind: types.KindFilingDeadline, DueDate: d("2025-01-01"), Status: types.StepPending},
	}}
	got := Compile(facts, plan, d("2024-10-01"), DefaultConfig())

	count := 0
	for _, a := range got {
		if a.Deadline.Equal(d("2025-01-01")) {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestSortOrder(t *testing.T) {
	three, ten, forty := 3, 10, 40
	alerts := []types.Alert{
		{Type: types.AlertInfo, Title: "info"},
		{Type: types.AlertWarning, Title: "warning-40", DaysLeft: &forty},
		{Type: types.AlertLegalWarning, Title: "legal"},
		{Type: types.AlertCritical, Title: "critical-undated"},
		{Type: types.AlertWarning, Title: "warning-10", DaysLeft: &ten},
		{Type: types.AlertCritical, Title: "critical-3", DaysLeft: &three},
	}
	Sort(alerts)

	var titles []string
	for _, a := range alerts {
		titles = append(titles, a.Title)
	}
	assert.Equal(t, []string{"critical-3", "critical-undated", "legal", "warning-10", "warning-40", "info"}, titles)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.WarningDays = 3
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.CriticalDays = -1
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.WindowDays = 10
	assert.Error(t, cfg.Validate())
}

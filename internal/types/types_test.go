package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePlan() *Plan {
	done := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)
	days := 12
	return &Plan{
		ID:              "plan-1",
		CaseFacts:       CaseFacts{EntryDate: MustParseDate("2024-01-01")},
		ActiveBundleIDs: []string{"affirmative-filing"},
		Steps: []Step{
			{
				ID:       "affirmative-filing:file-application",
				BundleID: "affirmative-filing",
				Title:    "File your asylum application",
				Kind:     KindFilingDeadline,
				DueDate:  MustParseDate("2025-01-01"),
				Status:   StepPending,
				Priority: PriorityCritical,
				Links:    []Link{{Title: "Form I-589", URL: "https://www.uscis.gov/i-589", Kind: LinkForm}},
			},
			{
				ID:            "affirmative-filing:gather-evidence",
				BundleID:      "affirmative-filing",
				Title:         "Gather evidence",
				DueDate:       MustParseDate("2024-11-02"),
				Status:        StepCompleted,
				Priority:      PriorityHigh,
				CompletedDate: done,
			},
			{
				ID:       "find-attorney:contact-legal-aid",
				BundleID: "find-attorney",
				Title:    "Contact legal aid",
				Status:   StepOverdue,
				DueDate:  MustParseDate("2024-08-01"),
				Priority: PriorityHigh,
			},
		},
		Alerts: []Alert{
			{Type: AlertWarning, Title: "Deadline", DaysLeft: &days},
		},
		LastUpdated: done,
	}
}

func TestStepValidate(t *testing.T) {
	valid := Step{ID: "a:b", Title: "Do it", Status: StepPending, Priority: PriorityMedium}
	assert.NoError(t, valid.Validate())

	s := valid
	s.ID = ""
	assert.Error(t, s.Validate())

	s = valid
	s.Priority = "urgent"
	assert.Error(t, s.Validate())

	s = valid
	s.Status = StepCompleted
	assert.Error(t, s.Validate(), "completed steps need a completion date")

	s = valid
	s.ShowAfterStep = s.ID
	assert.Error(t, s.Validate())
}

func TestPlanJSONRoundTrip(t *testing.T) {
	plan := samplePlan()

	data, err := json.Marshal(plan)
	require.NoError(t, err)

	var got Plan
	require.NoError(t, json.Unmarshal(data, &got))

	require.Len(t, got.Steps, 3)
	done := got.Step("affirmative-filing:gather-evidence")
	require.NotNil(t, done)
	assert.Equal(t, StepCompleted, done.Status)
	assert.True(t, done.CompletedDate.Equal(plan.Steps[1].CompletedDate))
	assert.Equal(t, "2025-01-01", got.Steps[0].DueDate.String())
	assert.Equal(t, plan.Steps[0].Links, got.Steps[0].Links)
	assert.Equal(t, "2024-01-01", got.CaseFacts.EntryDate.String())
	require.NotNil(t, got.Alerts[0].DaysLeft)
	assert.Equal(t, 12, *got.Alerts[0].DaysLeft)
}

func TestPlanJSONFieldNames(t *testing.T) {
	data, err := json.Marshal(samplePlan())
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"caseFacts", "activeBundleIds", "steps", "alerts", "lastUpdated"} {
		assert.Contains(t, raw, key)
	}
	step := raw["steps"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "2025-01-01", step["dueDate"])
	assert.Equal(t, "pending", step["status"])
}

func TestPlanClone(t *testing.T) {
	plan := samplePlan()
	clone := plan.Clone()

	clone.Steps[0].Title = "changed"
	clone.Steps[0].Links[0].URL = "changed"
	clone.ActiveBundleIDs[0] = "changed"
	*clone.Alerts[0].DaysLeft = 99

	assert.Equal(t, "File your asylum application", plan.Steps[0].Title)
	assert.Equal(t, "https://www.uscis.gov/i-589", plan.Steps[0].Links[0].URL)
	assert.Equal(t, "affirmative-filing", plan.ActiveBundleIDs[0])
	assert.Equal(t, 12, *plan.Alerts[0].DaysLeft)

	var nilPlan *Plan
	assert.Nil(t, nilPlan.Clone())
}

func TestPlanCloneHiddenSteps(t *testing.T) {
	plan := samplePlan()
	assert.Nil(t, plan.Clone().HiddenSteps)

	plan.HiddenSteps = []Step{{ID: "appeal:briefing-schedule", Links: []Link{{Title: "BIA"}}}}
	clone := plan.Clone()
	clone.HiddenSteps[0].ID = "changed"
	clone.HiddenSteps[0].Links[0].Title = "changed"

	assert.Equal(t, "appeal:briefing-schedule", plan.HiddenSteps[0].ID)
	assert.Equal(t, "BIA", plan.HiddenSteps[0].Links[0].Title)
}

func TestPlanSummarize(t *testing.T) {
	sum := samplePlan().Summarize()

	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 1, sum.Overdue)
	assert.Equal(t, 1, sum.Pending)
	assert.Equal(t, 1, sum.Completed)
	require.NotNil(t, sum.NextDue)
	assert.Equal(t, "find-attorney:contact-legal-aid", sum.NextDue.ID, "completed steps never count as next due")
}

func TestPlanLookups(t *testing.T) {
	plan := samplePlan()
	assert.NotNil(t, plan.Step("affirmative-filing:file-application"))
	assert.Nil(t, plan.Step("missing"))
	assert.True(t, plan.HasBundle("affirmative-filing"))
	assert.False(t, plan.HasBundle("tps"))
}

func TestRanks(t *testing.T) {
	assert.Less(t, StepOverdue.Rank(), StepPending.Rank())
	assert.Less(t, StepPending.Rank(), StepCompleted.Rank())
	assert.Less(t, PriorityCritical.Rank(), PriorityHigh.Rank())
	assert.Less(t, PriorityMedium.Rank(), PriorityLow.Rank())
}

package matching

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careops/referralos/pkg/models"
)

func newTestMatcher(opts ...Option) *Matcher {
	return NewMatcher(slog.New(slog.NewTextHandler(os.Stdout, nil)), opts...)
}

func fresnoECMCase() models.Case {
	return models.Case{
		ID:       "REF-3001",
		Patient:  models.Patient{City: "Fresno"},
		Referral: models.Referral{RequestedService: "ECM"},
	}
}

func TestMatcher_Match_ScoresCityAndSkillAndAvailability(t *testing.T) {
	matcher := newTestMatcher()

	caregivers := []models.Caregiver{
		{
			ID:           "CG-1",
			City:         "Fresno",
			Skills:       []string{"ECM"},
			Availability: "Flexible",
			Active:       true,
		},
	}

	matches := matcher.Match(fresnoECMCase(), caregivers)
	require.Len(t, matches, 1)

	assert.Equal(t, "CG-1", matches[0].CaregiverID)
	assert.Equal(t, 100, matches[0].Score)
	assert.Equal(t, []string{
		"Same city: Fresno",
		"Has skill: ECM",
		"Good availability: Flexible",
	}, matches[0].Reasons)
}

func TestMatcher_Match_GeneralSkillsScoreLower(t *testing.T) {
	matcher := newTestMatcher()

	c := fresnoECMCase()
	c.Referral.RequestedService = "Respite"

	caregivers := []models.Caregiver{
		{ID: "CG-1", City: "Fresno", Skills: []string{"Home Care"}, Active: true},
	}

	matches := matcher.Match(c, caregivers)
	require.Len(t, matches, 1)

	assert.Equal(t, 60, matches[0].Score)
	assert.Contains(t, matches[0].Reasons, "Has general home care skills")
}

func TestMatcher_Match_SkillTagSubstring(t *testing.T) {
	matcher := newTestMatcher()

	// A caregiver tagged "ECM Care Management" covers the ECM service.
	caregivers := []models.Caregiver{
		{ID: "CG-1", City: "Fresno", Skills: []string{"ECM Care Management"}, Active: true},
	}

	matches := matcher.Match(fresnoECMCase(), caregivers)
	require.Len(t, matches, 1)
	assert.Contains(t, matches[0].Reasons, "Has skill: ECM")
}

func TestMatcher_Match_BelowThresholdExcluded(t *testing.T) {
	matcher := newTestMatcher()

	// Partial availability alone scores 10, below the default minimum of 30.
	caregivers := []models.Caregiver{
		{ID: "CG-1", City: "Sacramento", Availability: "Weekends", Active: true},
	}

	matches := matcher.Match(fresnoECMCase(), caregivers)
	assert.Empty(t, matches)
}

func TestMatcher_Match_InactiveCaregiversSkipped(t *testing.T) {
	matcher := newTestMatcher()

	caregivers := []models.Caregiver{
		{ID: "CG-1", City: "Fresno", Skills: []string{"ECM"}, Active: false},
	}

	matches := matcher.Match(fresnoECMCase(), caregivers)
	assert.Empty(t, matches)
}

func TestMatcher_Match_SortedHighestFirstStableTies(t *testing.T) {
	matcher := newTestMatcher()

	caregivers := []models.Caregiver{
		{ID: "CG-low", City: "Fresno", Active: true, Availability: "Weekdays"},
		{ID: "CG-tie-a", City: "Fresno", Skills: []string{"ECM"}, Active: true},
		{ID: "CG-tie-b", City: "Fresno", Skills: []string{"ECM"}, Active: true},
		{ID: "CG-high", City: "Fresno", Skills: []string{"ECM"}, Availability: "Flexible", Active: true},
	}

	matches := matcher.Match(fresnoECMCase(), caregivers)
	require.Len(t, matches, 4)

	assert.Equal(t, "CG-high", matches[0].CaregiverID)
	// Equal scores keep the input order.
	assert.Equal(t, "CG-tie-a", matches[1].CaregiverID)
	assert.Equal(t, "CG-tie-b", matches[2].CaregiverID)
	assert.Equal(t, "CG-low", matches[3].CaregiverID)
}

func TestMatcher_Match_CapsAtMaxMatches(t *testing.T) {
	matcher := newTestMatcher(WithMaxMatches(2))

	caregivers := make([]models.Caregiver, 0, 6)
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		caregivers = append(caregivers, models.Caregiver{
			ID: "CG-" + id, City: "Fresno", Skills: []string{"ECM"}, Active: true,
		})
	}

	matches := matcher.Match(fresnoECMCase(), caregivers)
	assert.Len(t, matches, 2)
}

func TestMatcher_Match_Deterministic(t *testing.T) {
	matcher := newTestMatcher()

	caregivers := []models.Caregiver{
		{ID: "CG-1", City: "Fresno", Skills: []string{"ECM"}, Active: true},
		{ID: "CG-2", City: "Fresno", Skills: []string{"Home Care"}, Active: true},
		{ID: "CG-3", Skills: []string{"ECM"}, Availability: "Flexible", Active: true},
	}

	first := matcher.Match(fresnoECMCase(), caregivers)
	second := matcher.Match(fresnoECMCase(), caregivers)

	assert.Equal(t, first, second)
}

func TestMatcher_Recommend(t *testing.T) {
	matcher := newTestMatcher()

	t.Run("no matches", func(t *testing.T) {
		got := matcher.Recommend("REF-1", nil)
		assert.Equal(t, "NO MATCHES: No caregivers found in the area for REF-1", got)
	})

	t.Run("three or more is excellent", func(t *testing.T) {
		matches := []Match{
			{CaregiverID: "CG-1", Score: 100},
			{CaregiverID: "CG-2", Score: 80},
			{CaregiverID: "CG-3", Score: 60},
		}

		got := matcher.Recommend("REF-1", matches)
		assert.Equal(t, "EXCELLENT: Found 3 matching caregivers. Top match: CG-1 (100%)", got)
	})

	t.Run("one or two is good", func(t *testing.T) {
		matches := []Match{{CaregiverID: "CG-1", Score: 70}}

		got := matcher.Recommend("REF-1", matches)
		assert.Equal(t, "GOOD: Found 1 caregiver(s). Assign CG-1 (score: 70%)", got)
	})
}

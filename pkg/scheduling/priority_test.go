package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careops/referralos/pkg/models"
)

var now = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

func daysAgo(days int) *time.Time {
	t := now.AddDate(0, 0, -days)

	return &t
}

func daysAhead(days int) *time.Time {
	t := now.AddDate(0, 0, days)

	return &t
}

func TestPriority_Components(t *testing.T) {
	tests := []struct {
		name string
		c    models.Case
		want int
	}{
		{
			name: "empty case scores zero",
			c:    models.Case{ID: "P0"},
			want: 0,
		},
		{
			name: "urgent referral",
			c:    models.Case{ID: "P1", Referral: models.Referral{Urgency: models.UrgencyUrgent}},
			want: 100,
		},
		{
			name: "red segment",
			c:    models.Case{ID: "P2", RiskSegment: models.SegmentRed},
			want: 50,
		},
		{
			name: "orange segment",
			c:    models.Case{ID: "P3", RiskSegment: models.SegmentOrange},
			want: 25,
		},
		{
			name: "waiting days accumulate",
			c:    models.Case{ID: "P4", Referral: models.Referral{ReceivedAt: daysAgo(12)}},
			want: 12,
		},
		{
			name: "waiting days cap at thirty",
			c:    models.Case{ID: "P5", Referral: models.Referral{ReceivedAt: daysAgo(90)}},
			want: 30,
		},
		{
			name: "auth expiring within three days",
			c: models.Case{ID: "P6", Auth: models.Authorization{
				Required: true, EndDate: daysAhead(2),
			}},
			want: 40,
		},
		{
			name: "auth expiring within a week",
			c: models.Case{ID: "P7", Auth: models.Authorization{
				Required: true, EndDate: daysAhead(6),
			}},
			want: 20,
		},
		{
			name: "auth already expired still counts as expiring soon",
			c: models.Case{ID: "P8", Auth: models.Authorization{
				Required: true, EndDate: daysAgo(1),
			}},
			want: 40,
		},
		{
			name: "expiry ignored when auth not required",
			c: models.Case{ID: "P9", Auth: models.Authorization{
				Required: false, EndDate: daysAhead(2),
			}},
			want: 0,
		},
		{
			name: "high contact attempts",
			c:    models.Case{ID: "P10", ContactAttempts: 5},
			want: 10,
		},
		{
			name: "low remaining units",
			c:    models.Case{ID: "P11", Auth: models.Authorization{UnitsRemaining: 2}},
			want: 10,
		},
		{
			name: "zero remaining units earn nothing",
			c:    models.Case{ID: "P12", Auth: models.Authorization{UnitsRemaining: 0}},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Priority(tt.c, now))
		})
	}
}

func TestPriority_WorstCaseScenario(t *testing.T) {
	// Urgent, red segment, ten days waiting, auth expiring in two days.
	c := models.Case{
		ID:          "P100",
		Referral:    models.Referral{Urgency: models.UrgencyUrgent, ReceivedAt: daysAgo(10)},
		RiskSegment: models.SegmentRed,
		Auth:        models.Authorization{Required: true, EndDate: daysAhead(2)},
	}

	assert.Equal(t, 200, Priority(c, now))
}

func TestBuildQueue_FiltersAndRanks(t *testing.T) {
	cases := []models.Case{
		{
			ID:       "Q-routine",
			Payer:    models.Payer{InsuranceActive: true},
			Referral: models.Referral{ReceivedAt: daysAgo(3)},
		},
		{
			ID:          "Q-urgent",
			Payer:       models.Payer{InsuranceActive: true},
			Referral:    models.Referral{Urgency: models.UrgencyUrgent, ReceivedAt: daysAgo(3)},
			RiskSegment: models.SegmentRed,
		},
		{
			ID:         "Q-scheduled",
			Payer:      models.Payer{InsuranceActive: true},
			Scheduling: models.Scheduling{Status: models.ScheduleScheduled},
		},
		{
			ID:    "Q-inactive-insurance",
			Payer: models.Payer{InsuranceActive: false},
		},
		{
			ID:    "Q-auth-blocked",
			Payer: models.Payer{InsuranceActive: true},
			Auth:  models.Authorization{Required: true, Status: models.AuthStatusPending},
		},
	}

	queue := BuildQueue(cases, now)
	require.Len(t, queue, 2)

	assert.Equal(t, "Q-urgent", queue[0].Case.ID)
	assert.Equal(t, "Q-routine", queue[1].Case.ID)
	assert.Greater(t, queue[0].Score, queue[1].Score)
}

func TestBuildQueue_TieGoesToEarliestReceived(t *testing.T) {
	cases := []models.Case{
		{
			ID:       "Q-late",
			Payer:    models.Payer{InsuranceActive: true},
			Referral: models.Referral{ReceivedAt: daysAgo(5)},
		},
		{
			ID:       "Q-early",
			Payer:    models.Payer{InsuranceActive: true},
			Referral: models.Referral{ReceivedAt: daysAgo(5)},
		},
	}

	earlier := cases[1].Referral.ReceivedAt.Add(-time.Hour)
	cases[1].Referral.ReceivedAt = &earlier

	queue := BuildQueue(cases, now)
	require.Len(t, queue, 2)

	assert.Equal(t, queue[0].Score, queue[1].Score)
	assert.Equal(t, "Q-early", queue[0].Case.ID)
}

func TestBuildQueue_MissingReceivedDateLosesTies(t *testing.T) {
	cases := []models.Case{
		{ID: "Q-undated", Payer: models.Payer{InsuranceActive: true}, ContactAttempts: 5},
		{
			ID:              "Q-dated",
			Payer:           models.Payer{InsuranceActive: true},
			Referral:        models.Referral{ReceivedAt: daysAgo(0)},
			ContactAttempts: 5,
		},
	}

	hourAgo := now.Add(-time.Hour)
	cases[1].Referral.ReceivedAt = &hourAgo

	queue := BuildQueue(cases, now)
	require.Len(t, queue, 2)

	assert.Equal(t, "Q-dated", queue[0].Case.ID)
}

// Package scheduling ranks the unscheduled backlog and tracks caregiver
// capacity for assignment decisions.
package scheduling

import (
	"sort"
	"time"

	"github.com/careops/referralos/pkg/models"
)

// Priority score components.
const (
	urgentPoints        = 100
	segmentRedPoints    = 50
	segmentOrangePoints = 25
	authExpiringSoon    = 40
	authExpiringWeek    = 20
	highContactPoints   = 10
	lowUnitsPoints      = 10

	maxWaitingDays   = 30
	highContactFloor = 5
	lowUnitsCeiling  = 2
	expiringSoonDays = 3
	expiringWeekDays = 7
)

// RankedCase is one backlog entry with its computed priority.
type RankedCase struct {
	Case  models.Case `json:"case"`
	Score int         `json:"score"`
}

// Priority computes the backlog ranking score for a case at the given
// moment. Components are additive; a higher score means schedule sooner.
func Priority(c models.Case, now time.Time) int {
	score := 0

	if c.Referral.Urgency == models.UrgencyUrgent {
		score += urgentPoints
	}

	switch c.RiskSegment {
	case models.SegmentRed:
		score += segmentRedPoints
	case models.SegmentOrange:
		score += segmentOrangePoints
	}

	if c.Referral.ReceivedAt != nil {
		days := int(now.Sub(*c.Referral.ReceivedAt).Hours() / 24)
		if days > maxWaitingDays {
			days = maxWaitingDays
		}

		if days > 0 {
			score += days
		}
	}

	if c.Auth.Required && c.Auth.EndDate != nil {
		days := int(c.Auth.EndDate.Sub(now).Hours() / 24)

		switch {
		case days <= expiringSoonDays:
			score += authExpiringSoon
		case days <= expiringWeekDays:
			score += authExpiringWeek
		}
	}

	if c.ContactAttempts >= highContactFloor {
		score += highContactPoints
	}

	if c.Auth.UnitsRemaining > 0 && c.Auth.UnitsRemaining <= lowUnitsCeiling {
		score += lowUnitsPoints
	}

	return score
}

// BuildQueue filters the cases to the schedulable backlog and ranks it by
// priority, highest first. Ties go to the case received earliest. Cases
// already scheduled, with inactive insurance, or blocked on authorization
// are excluded.
func BuildQueue(cases []models.Case, now time.Time) []RankedCase {
	queue := make([]RankedCase, 0, len(cases))

	for _, c := range cases {
		if !c.Unscheduled() || !c.Payer.InsuranceActive || c.AuthBlocked() {
			continue
		}

		queue = append(queue, RankedCase{Case: c, Score: Priority(c, now)})
	}

	sort.SliceStable(queue, func(i, j int) bool {
		if queue[i].Score != queue[j].Score {
			return queue[i].Score > queue[j].Score
		}

		return receivedOr(queue[i].Case, now).Before(receivedOr(queue[j].Case, now))
	})

	return queue
}

// receivedOr treats a case with no received date as having just arrived, so
// it earns no waiting credit and loses ties.
func receivedOr(c models.Case, now time.Time) time.Time {
	if c.Referral.ReceivedAt != nil {
		return *c.Referral.ReceivedAt
	}

	return now
}

// Package intelligence decides the next best action for a case and assigns
// its operational risk segment.
package intelligence

import (
	"time"

	"github.com/careops/referralos/pkg/models"
)

// NextAction names the recommended next operational step for a case.
type NextAction string

const (
	ActionNone         NextAction = "NO_ACTION"
	ActionHold         NextAction = "HOLD"
	ActionFollowUpAuth NextAction = "FOLLOW_UP_AUTH"
	ActionEscalate     NextAction = "ESCALATE"
	ActionScheduleNow  NextAction = "SCHEDULE_NOW"
	ActionSubmitClaim  NextAction = "SUBMIT_CLAIM"
)

// Evaluation is the segment decision for one case.
type Evaluation struct {
	Segment    models.RiskSegment `json:"segment"`
	NextAction NextAction         `json:"next_action"`
	Rationale  string             `json:"rationale"`
}

// escalationWindowDays is how close to authorization expiry an unscheduled
// case becomes an escalation.
const escalationWindowDays = 3

// Evaluate assigns the case its risk segment and next action. Rules are
// checked hardest-stop first; the first hit wins.
func Evaluate(c models.Case, now time.Time) Evaluation {
	if !c.Payer.InsuranceActive {
		return Evaluation{
			Segment:    models.SegmentRed,
			NextAction: ActionHold,
			Rationale:  "Insurance inactive; block referral until eligibility resolved.",
		}
	}

	if c.Auth.Required {
		switch c.Auth.Status {
		case models.AuthStatusDenied:
			return Evaluation{
				Segment:    models.SegmentRed,
				NextAction: ActionHold,
				Rationale:  "Authorization denied; route to appeal or alternate plan.",
			}
		case models.AuthStatusPending:
			return Evaluation{
				Segment:    models.SegmentYellow,
				NextAction: ActionFollowUpAuth,
				Rationale:  "Authorization pending; follow up with payer.",
			}
		}
	}

	if c.Auth.EndDate != nil {
		daysLeft := int(c.Auth.EndDate.Sub(now).Hours() / 24)
		if daysLeft <= escalationWindowDays && c.Scheduling.Status != models.ScheduleScheduled {
			return Evaluation{
				Segment:    models.SegmentOrange,
				NextAction: ActionEscalate,
				Rationale:  "Authorization expiring soon and not scheduled; escalate immediately.",
			}
		}
	}

	authCleared := c.Auth.Status == models.AuthStatusApproved ||
		c.Auth.Status == models.AuthStatusNotRequired || !c.Auth.Required

	if authCleared && c.DocsComplete && c.Scheduling.Status == models.ScheduleNotScheduled {
		return Evaluation{
			Segment:    models.SegmentGreen,
			NextAction: ActionScheduleNow,
			Rationale:  "All checks passed; schedule service.",
		}
	}

	if c.Scheduling.Status == models.ScheduleCompleted && c.Billing.ReadyToBill {
		return Evaluation{
			Segment:    models.SegmentGreen,
			NextAction: ActionSubmitClaim,
			Rationale:  "Service completed and billing ready; submit claim.",
		}
	}

	return Evaluation{
		Segment:    models.SegmentGreen,
		NextAction: ActionNone,
		Rationale:  "Referral is progressing normally.",
	}
}

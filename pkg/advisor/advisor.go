// Package advisor layers human-readable reasoning on top of deterministic
// segment decisions. External annotators are optional and bounded; the
// rule-based advisor is always available as a fallback.
package advisor

import (
	"context"
	"fmt"

	"github.com/careops/referralos/pkg/intelligence"
	"github.com/careops/referralos/pkg/models"
)

// Explanation is the advisory text bundle attached to a segment decision.
// It is informational only and never influences pipeline state.
type Explanation struct {
	Explanation       string `json:"explanation"`
	RiskSummary       string `json:"risk_summary"`
	OpsRecommendation string `json:"ops_recommendation"`
}

// Annotator produces an explanation for a case and its segment decision.
// Implementations may call external services; callers bound them with a
// context deadline and fall back on error.
type Annotator interface {
	Explain(ctx context.Context, c models.Case, eval intelligence.Evaluation) (Explanation, error)
}

// RuleBased is the deterministic annotator. It never fails.
type RuleBased struct{}

func NewRuleBased() *RuleBased {
	return &RuleBased{}
}

func (r *RuleBased) Explain(_ context.Context, _ models.Case, eval intelligence.Evaluation) (Explanation, error) {
	explanation := fmt.Sprintf(
		"This referral is currently classified as %s. The recommended action is %s. Reason: %s",
		eval.Segment, eval.NextAction, eval.Rationale)

	return Explanation{
		Explanation:       explanation,
		RiskSummary:       summarizeRisk(eval.Segment),
		OpsRecommendation: recommendOps(eval.NextAction),
	}, nil
}

func summarizeRisk(segment models.RiskSegment) string {
	switch segment {
	case models.SegmentRed:
		return "High risk of revenue loss or compliance failure."
	case models.SegmentOrange:
		return "Time-sensitive risk; immediate action required."
	case models.SegmentYellow:
		return "Moderate risk; requires follow-up."
	default:
		return "Low operational risk."
	}
}

func recommendOps(action intelligence.NextAction) string {
	switch action {
	case intelligence.ActionEscalate:
		return "Escalate to supervisor and prioritize scheduling within 24 hours."
	case intelligence.ActionFollowUpAuth:
		return "Contact payer and prepare contingency schedule."
	case intelligence.ActionHold:
		return "Pause workflow until blocking issue resolved."
	case intelligence.ActionScheduleNow:
		return "Proceed with caregiver pairing and scheduling."
	default:
		return "Monitor referral."
	}
}

package advisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careops/referralos/pkg/intelligence"
	"github.com/careops/referralos/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestRuleBased_Explain(t *testing.T) {
	eval := intelligence.Evaluation{
		Segment:    models.SegmentOrange,
		NextAction: intelligence.ActionEscalate,
		Rationale:  "Authorization expiring soon and not scheduled; escalate immediately.",
	}

	got, err := NewRuleBased().Explain(context.Background(), models.Case{ID: "REF-1"}, eval)
	require.NoError(t, err)

	assert.Equal(t,
		"This referral is currently classified as ORANGE. The recommended action is ESCALATE. "+
			"Reason: Authorization expiring soon and not scheduled; escalate immediately.",
		got.Explanation)
	assert.Equal(t, "Time-sensitive risk; immediate action required.", got.RiskSummary)
	assert.Equal(t, "Escalate to supervisor and prioritize scheduling within 24 hours.", got.OpsRecommendation)
}

func TestRuleBased_RiskSummaries(t *testing.T) {
	tests := []struct {
		segment models.RiskSegment
		want    string
	}{
		{models.SegmentRed, "High risk of revenue loss or compliance failure."},
		{models.SegmentOrange, "Time-sensitive risk; immediate action required."},
		{models.SegmentYellow, "Moderate risk; requires follow-up."},
		{models.SegmentGreen, "Low operational risk."},
	}

	for _, tt := range tests {
		t.Run(string(tt.segment), func(t *testing.T) {
			got, err := NewRuleBased().Explain(context.Background(), models.Case{ID: "REF-1"},
				intelligence.Evaluation{Segment: tt.segment})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.RiskSummary)
		})
	}
}

func TestRuleBased_OpsRecommendations(t *testing.T) {
	tests := []struct {
		action intelligence.NextAction
		want   string
	}{
		{intelligence.ActionEscalate, "Escalate to supervisor and prioritize scheduling within 24 hours."},
		{intelligence.ActionFollowUpAuth, "Contact payer and prepare contingency schedule."},
		{intelligence.ActionHold, "Pause workflow until blocking issue resolved."},
		{intelligence.ActionScheduleNow, "Proceed with caregiver pairing and scheduling."},
		{intelligence.ActionNone, "Monitor referral."},
		{intelligence.ActionSubmitClaim, "Monitor referral."},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			got, err := NewRuleBased().Explain(context.Background(), models.Case{ID: "REF-1"},
				intelligence.Evaluation{NextAction: tt.action})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.OpsRecommendation)
		})
	}
}

type stubAnnotator struct {
	explanation Explanation
	err         error
	delay       time.Duration
}

func (s *stubAnnotator) Explain(ctx context.Context, _ models.Case, _ intelligence.Evaluation) (Explanation, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
		}
	}

	return s.explanation, s.err
}

func TestBounded_UsesPrimary(t *testing.T) {
	primary := &stubAnnotator{explanation: Explanation{Explanation: "from primary"}}
	bounded := NewBounded(testLogger(), primary, time.Second)

	got, err := bounded.Explain(context.Background(), models.Case{ID: "REF-1"}, intelligence.Evaluation{})
	require.NoError(t, err)
	assert.Equal(t, "from primary", got.Explanation)
}

func TestBounded_FallsBackOnError(t *testing.T) {
	primary := &stubAnnotator{err: errors.New("upstream unavailable")}
	bounded := NewBounded(testLogger(), primary, time.Second)

	eval := intelligence.Evaluation{Segment: models.SegmentGreen, NextAction: intelligence.ActionNone}

	got, err := bounded.Explain(context.Background(), models.Case{ID: "REF-1"}, eval)
	require.NoError(t, err)
	assert.Equal(t, "Low operational risk.", got.RiskSummary)
	assert.Equal(t, "Monitor referral.", got.OpsRecommendation)
}

func TestBounded_FallsBackOnTimeout(t *testing.T) {
	primary := &stubAnnotator{
		delay:       time.Second,
		explanation: Explanation{Explanation: "too late"},
	}
	bounded := NewBounded(testLogger(), primary, 20*time.Millisecond)

	eval := intelligence.Evaluation{Segment: models.SegmentYellow, NextAction: intelligence.ActionFollowUpAuth}

	got, err := bounded.Explain(context.Background(), models.Case{ID: "REF-1"}, eval)
	require.NoError(t, err)
	assert.NotEqual(t, "too late", got.Explanation)
	assert.Equal(t, "Moderate risk; requires follow-up.", got.RiskSummary)
}

func TestBounded_NilPrimaryUsesRuleBased(t *testing.T) {
	bounded := NewBounded(testLogger(), nil, time.Second)

	eval := intelligence.Evaluation{Segment: models.SegmentRed, NextAction: intelligence.ActionHold}

	got, err := bounded.Explain(context.Background(), models.Case{ID: "REF-1"}, eval)
	require.NoError(t, err)
	assert.Equal(t, "High risk of revenue loss or compliance failure.", got.RiskSummary)
}

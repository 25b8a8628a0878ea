package agents

import "github.com/careops/referralos/pkg/models"

// AssessmentCompleteAgent confirms the clinical assessment happened, either
// through an explicit complete status or a recorded assessment date.
type AssessmentCompleteAgent struct{}

func NewAssessmentCompleteAgent() *AssessmentCompleteAgent {
	return &AssessmentCompleteAgent{}
}

func (a *AssessmentCompleteAgent) ID() string {
	return "assessment_complete"
}

func (a *AssessmentCompleteAgent) Stage() models.PipelineState {
	return models.StateAssessmentComplete
}

func (a *AssessmentCompleteAgent) Run(ectx *models.Context) models.AgentResult {
	assessment := ectx.Case.Assessment

	done := assessment.Status == models.AssessmentComplete || assessment.Date != nil
	if !done {
		return blocked(a.ID(), models.StateAssessmentComplete,
			map[string]bool{"assessment_complete": false},
			[]string{"Assessment not confirmed (need assessment.date or assessment.status=complete)"},
		)
	}

	return models.AgentResult{
		Name:      a.ID(),
		Success:   true,
		State:     models.StateEligibilityVerified,
		Decisions: map[string]bool{"assessment_complete": true},
	}
}

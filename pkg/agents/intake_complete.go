package agents

import "github.com/careops/referralos/pkg/models"

// IntakeCompleteAgent confirms that intake captured enough to process the
// referral: patient core identity (or a member id), the payer, and the
// requested service.
type IntakeCompleteAgent struct{}

func NewIntakeCompleteAgent() *IntakeCompleteAgent {
	return &IntakeCompleteAgent{}
}

func (a *IntakeCompleteAgent) ID() string {
	return "intake_complete"
}

func (a *IntakeCompleteAgent) Stage() models.PipelineState {
	return models.StateIntakeComplete
}

func (a *IntakeCompleteAgent) Run(ectx *models.Context) models.AgentResult {
	c := ectx.Case

	var missing []string

	hasPatientCore := c.Patient.Name != "" && c.Patient.DOB != nil
	hasMember := c.Payer.MemberID != ""

	if !hasPatientCore && !hasMember {
		missing = append(missing, "patient.name", "patient.dob", "payer.member_id")
	}

	if c.Payer.Name == "" {
		missing = append(missing, "payer.name")
	}

	if c.Referral.RequestedService == "" {
		missing = append(missing, "referral.requested_service")
	}

	if len(missing) > 0 {
		return blocked(a.ID(), models.StateIntakeComplete,
			map[string]bool{"intake_complete": false},
			missing,
			models.Action{Type: models.ActionMissingInfo, Owner: "Intake", Missing: missing},
		)
	}

	return models.AgentResult{
		Name:      a.ID(),
		Success:   true,
		State:     models.StateAssessmentComplete,
		Decisions: map[string]bool{"intake_complete": true},
	}
}

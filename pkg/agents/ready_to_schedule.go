package agents

import "github.com/careops/referralos/pkg/models"

// ReadyToScheduleAgent is the terminal gate of the pipeline: the patient must
// be reachable, eligibility verified, and any required authorization
// approved before the case enters the scheduling backlog.
type ReadyToScheduleAgent struct{}

func NewReadyToScheduleAgent() *ReadyToScheduleAgent {
	return &ReadyToScheduleAgent{}
}

func (a *ReadyToScheduleAgent) ID() string {
	return "ready_to_schedule"
}

func (a *ReadyToScheduleAgent) Stage() models.PipelineState {
	return models.StateReadyToSchedule
}

func (a *ReadyToScheduleAgent) Run(ectx *models.Context) models.AgentResult {
	c := ectx.Case

	var issues []string
	if c.Patient.Phone == "" && c.Patient.Address == "" {
		issues = append(issues, "Need patient phone or address")
	}

	if c.Eligibility.Status != models.EligibilityVerified {
		issues = append(issues, "Eligibility not verified")
	}

	if c.Auth.Required && c.Auth.Status != models.AuthStatusApproved {
		issues = append(issues, "Auth required but not approved")
	}

	if len(issues) > 0 {
		return blocked(a.ID(), models.StateReadyToSchedule,
			map[string]bool{"ready_to_schedule": false},
			issues,
			models.Action{Type: models.ActionSchedulingBlocker, Owner: "Scheduler", Missing: issues},
		)
	}

	return models.AgentResult{
		Name:      a.ID(),
		Success:   true,
		State:     models.StateReadyToSchedule,
		Decisions: map[string]bool{"ready_to_schedule": true},
	}
}

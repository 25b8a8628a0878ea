package agents

import "github.com/careops/referralos/pkg/models"

// AuthApprovedAgent confirms authorization. Cases that need no authorization
// pass straight through; otherwise the payer must have issued an approval
// (explicit approved status) or the auth number plus start and end dates must
// be on file.
type AuthApprovedAgent struct{}

func NewAuthApprovedAgent() *AuthApprovedAgent {
	return &AuthApprovedAgent{}
}

func (a *AuthApprovedAgent) ID() string {
	return "auth_approved"
}

func (a *AuthApprovedAgent) Stage() models.PipelineState {
	return models.StateAuthApproved
}

func (a *AuthApprovedAgent) Run(ectx *models.Context) models.AgentResult {
	auth := ectx.Case.Auth

	if !auth.Required {
		return models.AgentResult{
			Name:      a.ID(),
			Success:   true,
			State:     models.StateReadyToSchedule,
			Decisions: map[string]bool{"auth_approved": true},
		}
	}

	var issues []string
	if auth.Number == "" {
		issues = append(issues, "auth_number missing")
	}

	if auth.StartDate == nil {
		issues = append(issues, "auth_start_date missing")
	}

	if auth.EndDate == nil {
		issues = append(issues, "auth_end_date missing")
	}

	// An approval already recorded by the payer is honored even when the
	// paperwork fields are incomplete.
	if auth.Status == models.AuthStatusApproved {
		issues = nil
	}

	if len(issues) > 0 {
		return blocked(a.ID(), models.StateAuthApproved,
			map[string]bool{"auth_approved": false},
			issues,
		)
	}

	patch := &models.CasePatch{Auth: &models.AuthPatch{Status: models.Ptr(models.AuthStatusApproved)}}
	if auth.Number != "" {
		patch.Auth.Number = models.Ptr(auth.Number)
	}

	if auth.StartDate != nil {
		patch.Auth.StartDate = models.Ptr(*auth.StartDate)
	}

	if auth.EndDate != nil {
		patch.Auth.EndDate = models.Ptr(*auth.EndDate)
	}

	return models.AgentResult{
		Name:      a.ID(),
		Success:   true,
		State:     models.StateReadyToSchedule,
		Decisions: map[string]bool{"auth_approved": true},
		Patch:     patch,
	}
}

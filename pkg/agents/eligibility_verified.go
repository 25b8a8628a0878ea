package agents

import "github.com/careops/referralos/pkg/models"

// EligibilityVerifiedAgent verifies payer eligibility. Both the payer name
// and the member id must be on file before coverage can be confirmed.
type EligibilityVerifiedAgent struct{}

func NewEligibilityVerifiedAgent() *EligibilityVerifiedAgent {
	return &EligibilityVerifiedAgent{}
}

func (a *EligibilityVerifiedAgent) ID() string {
	return "eligibility_verified"
}

func (a *EligibilityVerifiedAgent) Stage() models.PipelineState {
	return models.StateEligibilityVerified
}

func (a *EligibilityVerifiedAgent) Run(ectx *models.Context) models.AgentResult {
	payer := ectx.Case.Payer

	var issues []string
	if payer.Name == "" {
		issues = append(issues, "payer.name missing")
	}

	if payer.MemberID == "" {
		issues = append(issues, "payer.member_id missing")
	}

	if len(issues) > 0 {
		return blocked(a.ID(), models.StateEligibilityVerified,
			map[string]bool{"eligibility_verified": false},
			issues,
			models.Action{Type: models.ActionEligibilityVerify, Owner: "Ops", Missing: issues},
		)
	}

	return models.AgentResult{
		Name:      a.ID(),
		Success:   true,
		State:     models.StateAuthPending,
		Decisions: map[string]bool{"eligibility_verified": true},
		Patch: &models.CasePatch{
			Eligibility: &models.EligibilityPatch{Status: models.Ptr(models.EligibilityVerified)},
		},
	}
}

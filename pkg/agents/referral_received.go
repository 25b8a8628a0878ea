package agents

import "github.com/careops/referralos/pkg/models"

// ReferralReceivedAgent opens a case. A referral can be worked as soon as it
// identifies the patient (name and date of birth) or carries a payer member
// id to resolve identity against.
type ReferralReceivedAgent struct{}

func NewReferralReceivedAgent() *ReferralReceivedAgent {
	return &ReferralReceivedAgent{}
}

func (a *ReferralReceivedAgent) ID() string {
	return "referral_received"
}

func (a *ReferralReceivedAgent) Stage() models.PipelineState {
	return models.StateReferralReceived
}

func (a *ReferralReceivedAgent) Run(ectx *models.Context) models.AgentResult {
	patient := ectx.Case.Patient
	memberID := ectx.Case.Payer.MemberID

	hasIdentity := patient.Name != "" && patient.DOB != nil
	if !hasIdentity && memberID == "" {
		return blocked(a.ID(), models.StateReferralReceived,
			map[string]bool{"referral_received": false},
			[]string{"Need patient_name+dob OR member_id to open case"},
		)
	}

	patch := &models.CasePatch{Patient: &models.PatientPatch{}, Payer: &models.PayerPatch{}}
	if patient.Name != "" {
		patch.Patient.Name = models.Ptr(patient.Name)
	}

	if patient.DOB != nil {
		patch.Patient.DOB = models.Ptr(*patient.DOB)
	}

	if memberID != "" {
		patch.Payer.MemberID = models.Ptr(memberID)
	}

	return models.AgentResult{
		Name:      a.ID(),
		Success:   true,
		State:     models.StateIntakeComplete,
		Decisions: map[string]bool{"referral_received": true},
		Patch:     patch,
	}
}

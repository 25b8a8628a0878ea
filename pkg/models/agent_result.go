package models

import "time"

// AgentResult is the complete output of one stage agent evaluation. Agents
// never mutate the context directly; everything they produce flows through
// this structure into the merge engine.
type AgentResult struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`

	// State is the pipeline state the case should hold after this result is
	// applied. Empty means "leave unchanged".
	State PipelineState `json:"state,omitempty"`

	// Decisions are merged into the context, later keys overwriting earlier
	// ones.
	Decisions map[string]bool `json:"decisions,omitempty"`

	// Patch carries field-level updates to the working case copy.
	Patch *CasePatch `json:"patch,omitempty"`

	// Actions are appended, order-preserving, to the context's action list.
	Actions []Action `json:"actions,omitempty"`

	// Issues lists human-readable blocking reasons. Empty implies Success.
	Issues []string `json:"issues,omitempty"`
}

// CasePatch is a typed, per-domain-area patch applied to the working case
// copy. Nil sub-patches and nil fields leave the existing value untouched;
// set fields always win over existing values.
type CasePatch struct {
	Patient     *PatientPatch     `json:"patient,omitempty"`
	Payer       *PayerPatch       `json:"payer,omitempty"`
	Referral    *ReferralPatch    `json:"referral,omitempty"`
	Auth        *AuthPatch        `json:"auth,omitempty"`
	Assessment  *AssessmentPatch  `json:"assessment,omitempty"`
	Eligibility *EligibilityPatch `json:"eligibility,omitempty"`
	Scheduling  *SchedulingPatch  `json:"scheduling,omitempty"`
}

type PatientPatch struct {
	Name    *string    `json:"name,omitempty"`
	DOB     *time.Time `json:"dob,omitempty"`
	Address *string    `json:"address,omitempty"`
	City    *string    `json:"city,omitempty"`
	Zip     *string    `json:"zip,omitempty"`
	Phone   *string    `json:"phone,omitempty"`
}

type PayerPatch struct {
	Name            *string `json:"name,omitempty"`
	PlanType        *string `json:"plan_type,omitempty"`
	MemberID        *string `json:"member_id,omitempty"`
	InsuranceActive *bool   `json:"insurance_active,omitempty"`
}

type ReferralPatch struct {
	RequestedService *string  `json:"requested_service,omitempty"`
	Source           *string  `json:"source,omitempty"`
	Urgency          *Urgency `json:"urgency,omitempty"`
}

type AuthPatch struct {
	Required       *bool       `json:"required,omitempty"`
	Status         *AuthStatus `json:"status,omitempty"`
	Number         *string     `json:"number,omitempty"`
	StartDate      *time.Time  `json:"start_date,omitempty"`
	EndDate        *time.Time  `json:"end_date,omitempty"`
	UnitsRemaining *int        `json:"units_remaining,omitempty"`
}

type AssessmentPatch struct {
	Status *AssessmentStatus `json:"status,omitempty"`
	Date   *time.Time        `json:"date,omitempty"`
}

type EligibilityPatch struct {
	Status *EligibilityStatus `json:"status,omitempty"`
}

type SchedulingPatch struct {
	Status        *ScheduleStatus `json:"status,omitempty"`
	ScheduledDate *time.Time      `json:"scheduled_date,omitempty"`
	CaregiverID   *string         `json:"caregiver_id,omitempty"`
}

// Ptr returns a pointer to v, for building patches inline.
func Ptr[T any](v T) *T {
	return &v
}

package models

import "time"

// Urgency classifies how quickly a referral must be worked.
type Urgency string

const (
	UrgencyUrgent  Urgency = "Urgent"
	UrgencyRoutine Urgency = "Routine"
)

// AuthStatus is the authorization lifecycle status for a case.
type AuthStatus string

const (
	AuthStatusUnknown     AuthStatus = ""
	AuthStatusPending     AuthStatus = "pending"
	AuthStatusApproved    AuthStatus = "approved"
	AuthStatusDenied      AuthStatus = "denied"
	AuthStatusNotRequired AuthStatus = "not_required"
)

// EligibilityStatus is the payer eligibility check status.
type EligibilityStatus string

const (
	EligibilityUnknown  EligibilityStatus = ""
	EligibilityVerified EligibilityStatus = "verified"
)

// AssessmentStatus is the clinical assessment status.
type AssessmentStatus string

const (
	AssessmentUnknown  AssessmentStatus = ""
	AssessmentPending  AssessmentStatus = "pending"
	AssessmentComplete AssessmentStatus = "complete"
)

// ScheduleStatus is the scheduling lifecycle status for a case or assignment.
type ScheduleStatus string

const (
	ScheduleNotScheduled ScheduleStatus = "NOT_SCHEDULED"
	SchedulePending      ScheduleStatus = "PENDING"
	ScheduleScheduled    ScheduleStatus = "SCHEDULED"
	ScheduleCompleted    ScheduleStatus = "COMPLETED"
	ScheduleCancelled    ScheduleStatus = "CANCELLED"
	ScheduleOnHold       ScheduleStatus = "ON_HOLD"
)

// RiskSegment is the operational risk band assigned by the intelligence
// evaluator, from lowest to highest risk.
type RiskSegment string

const (
	SegmentGreen  RiskSegment = "GREEN"
	SegmentYellow RiskSegment = "YELLOW"
	SegmentOrange RiskSegment = "ORANGE"
	SegmentRed    RiskSegment = "RED"
)

// Patient holds the patient identity and contact fields of a case.
type Patient struct {
	Name    string     `json:"name,omitempty"`
	DOB     *time.Time `json:"dob,omitempty"`
	Address string     `json:"address,omitempty"`
	City    string     `json:"city,omitempty"`
	Zip     string     `json:"zip,omitempty"`
	Phone   string     `json:"phone,omitempty"`
}

// Payer holds the insurance payer fields of a case.
type Payer struct {
	Name            string `json:"name,omitempty"`
	PlanType        string `json:"plan_type,omitempty"`
	MemberID        string `json:"member_id,omitempty"`
	InsuranceActive bool   `json:"insurance_active"`
}

// Referral holds the referral request fields of a case.
type Referral struct {
	RequestedService string     `json:"requested_service,omitempty"`
	Source           string     `json:"source,omitempty"`
	Urgency          Urgency    `json:"urgency,omitempty"`
	ReceivedAt       *time.Time `json:"received_at,omitempty"`
}

// Authorization holds payer authorization state for a case.
type Authorization struct {
	Required       bool       `json:"required"`
	Status         AuthStatus `json:"status,omitempty"`
	Number         string     `json:"number,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	UnitsTotal     int        `json:"units_total,omitempty"`
	UnitsRemaining int        `json:"units_remaining,omitempty"`
}

// Assessment holds the clinical assessment state for a case.
type Assessment struct {
	Status AssessmentStatus `json:"status,omitempty"`
	Date   *time.Time       `json:"date,omitempty"`
}

// Eligibility holds the payer eligibility verification state.
type Eligibility struct {
	Status EligibilityStatus `json:"status,omitempty"`
}

// Scheduling holds the scheduling state for a case.
type Scheduling struct {
	Status               ScheduleStatus `json:"status,omitempty"`
	ScheduledDate        *time.Time     `json:"scheduled_date,omitempty"`
	CaregiverID          string         `json:"caregiver_id,omitempty"`
	UnitsScheduledNext7d int            `json:"units_scheduled_next_7d,omitempty"`
}

// Billing holds the downstream billing flags for a case.
type Billing struct {
	ServiceComplete bool   `json:"service_complete"`
	ReadyToBill     bool   `json:"ready_to_bill"`
	ClaimStatus     string `json:"claim_status,omitempty"`
}

// Case is a single normalized referral undergoing processing. It is created
// at intake, mutated only through agent patches and journey events, and never
// deleted, only marked complete.
type Case struct {
	ID string `json:"id" validate:"required"`

	Patient     Patient       `json:"patient"`
	Payer       Payer         `json:"payer"`
	Referral    Referral      `json:"referral"`
	Auth        Authorization `json:"auth"`
	Assessment  Assessment    `json:"assessment"`
	Eligibility Eligibility   `json:"eligibility"`
	Scheduling  Scheduling    `json:"scheduling"`
	Billing     Billing       `json:"billing"`

	State           PipelineState `json:"state,omitempty"`
	Journey         JourneyMeta   `json:"journey"`
	RiskSegment     RiskSegment   `json:"risk_segment,omitempty"`
	ContactAttempts int           `json:"contact_attempts,omitempty"`

	// DocsComplete and HomeAssessmentDone track real-world progress fed back
	// from the journey log.
	DocsComplete       bool `json:"docs_complete"`
	HomeAssessmentDone bool `json:"home_assessment_done"`

	// Autopilot marks cases whose intake source opted into autonomous
	// journey progression.
	Autopilot bool `json:"autopilot"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Unscheduled reports whether the case still needs a service appointment.
func (c *Case) Unscheduled() bool {
	switch c.Scheduling.Status {
	case ScheduleScheduled, ScheduleCompleted:
		return false
	default:
		return true
	}
}

// AuthBlocked reports whether an outstanding authorization blocks scheduling.
func (c *Case) AuthBlocked() bool {
	if !c.Auth.Required {
		return false
	}

	return c.Auth.Status != AuthStatusApproved
}

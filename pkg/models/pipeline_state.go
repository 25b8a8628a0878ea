// Package models defines the core domain models for referral pipeline processing.
package models

// PipelineState represents one of the ordered stages a case passes through
// during synchronous pipeline evaluation.
type PipelineState string

const (
	StateReferralReceived    PipelineState = "REFERRAL_RECEIVED"
	StateIntakeComplete      PipelineState = "INTAKE_COMPLETE"
	StateAssessmentComplete  PipelineState = "ASSESSMENT_COMPLETE"
	StateEligibilityVerified PipelineState = "ELIGIBILITY_VERIFIED"
	StateAuthPending         PipelineState = "AUTH_PENDING"
	StateAuthApproved        PipelineState = "AUTH_APPROVED"
	StateReadyToSchedule     PipelineState = "READY_TO_SCHEDULE"
)

// pipelineOrder fixes the forward-only ordering of pipeline states.
var pipelineOrder = []PipelineState{
	StateReferralReceived,
	StateIntakeComplete,
	StateAssessmentComplete,
	StateEligibilityVerified,
	StateAuthPending,
	StateAuthApproved,
	StateReadyToSchedule,
}

// PipelineStates returns the full state ordering, first to terminal.
func PipelineStates() []PipelineState {
	states := make([]PipelineState, len(pipelineOrder))
	copy(states, pipelineOrder)

	return states
}

// Index returns the position of the state in the pipeline ordering, or -1 for
// an unknown state.
func (s PipelineState) Index() int {
	for i, state := range pipelineOrder {
		if state == s {
			return i
		}
	}

	return -1
}

// Valid reports whether the state is part of the defined ordering.
func (s PipelineState) Valid() bool {
	return s.Index() >= 0
}

// Terminal reports whether the state is the last one this subsystem owns.
func (s PipelineState) Terminal() bool {
	return s == StateReadyToSchedule
}

// Before reports whether s precedes other in the pipeline ordering.
func (s PipelineState) Before(other PipelineState) bool {
	return s.Index() < other.Index()
}

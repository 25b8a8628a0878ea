package models

import "time"

// JourneyStage is the coarser, time-driven real-world progression stage
// tracked by the autopilot, distinct from PipelineState.
type JourneyStage string

const (
	JourneyIntakeReceived          JourneyStage = "INTAKE_RECEIVED"
	JourneyDocsCompleted           JourneyStage = "DOCS_COMPLETED"
	JourneyAuthPending             JourneyStage = "AUTH_PENDING"
	JourneyHomeAssessmentScheduled JourneyStage = "HOME_ASSESSMENT_SCHEDULED"
	JourneyHomeAssessmentCompleted JourneyStage = "HOME_ASSESSMENT_COMPLETED"
	JourneyScheduled               JourneyStage = "SCHEDULED"
	JourneyReadyToBill             JourneyStage = "READY_TO_BILL"
	JourneyServiceCompleted        JourneyStage = "SERVICE_COMPLETED"
)

// JourneyEvent is one append-only entry in a case's journey log.
type JourneyEvent struct {
	CaseID string       `json:"case_id" validate:"required"`
	Stage  JourneyStage `json:"stage"   validate:"required"`
	At     time.Time    `json:"at"`
	Source string       `json:"source"`
	Note   string       `json:"note,omitempty"`
}

// JourneyLog is a case's ordered journey event list. Each stage appears at
// most once; re-recording an existing stage only moves the current-stage
// pointer on the case, never duplicates the event.
type JourneyLog []JourneyEvent

// Has reports whether the stage has already been recorded.
func (l JourneyLog) Has(stage JourneyStage) bool {
	_, ok := l.Find(stage)

	return ok
}

// Find returns the event recorded for the stage, if any.
func (l JourneyLog) Find(stage JourneyStage) (JourneyEvent, bool) {
	for _, event := range l {
		if event.Stage == stage {
			return event, true
		}
	}

	return JourneyEvent{}, false
}

// JourneyMeta is the journey metadata carried on the case record.
type JourneyMeta struct {
	Stage     JourneyStage `json:"stage,omitempty"`
	UpdatedAt time.Time    `json:"updated_at,omitempty"`
}

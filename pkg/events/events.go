// Package events defines event types and structures for case lifecycle
// notifications.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/careops/referralos/pkg/models"
)

type EventType string

// Kafka topics.
const Topic = "referralos.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Case lifecycle events.
	CaseReceivedEvent EventType = "case.received"

	// Pipeline run outcomes.
	PipelineCompletedEvent EventType = "pipeline.completed"
	PipelineBlockedEvent   EventType = "pipeline.blocked"

	// Autopilot outcomes.
	JourneyAdvancedEvent EventType = "journey.advanced"
	CaseScheduledEvent   EventType = "case.scheduled"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	CaseID    string         `json:"case_id"`
	WorkerID  string         `json:"worker_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// CaseReceived is published when intake accepts a new referral payload.
type CaseReceived struct {
	BaseEvent

	Source   string `json:"source,omitempty"`
	Urgency  string `json:"urgency,omitempty"`
	Received bool   `json:"received"`
}

func (c CaseReceived) GetType() EventType {
	return CaseReceivedEvent
}

// PipelineCompleted is published when a run reaches the terminal pipeline
// state.
type PipelineCompleted struct {
	BaseEvent

	RunID      string               `json:"run_id"`
	FinalState models.PipelineState `json:"final_state"`
	Decisions  map[string]bool      `json:"decisions,omitempty"`
	Duration   time.Duration        `json:"duration"`
}

func (p PipelineCompleted) GetType() EventType {
	return PipelineCompletedEvent
}

// PipelineBlocked is published when a run stops on a failed stage
// precondition.
type PipelineBlocked struct {
	BaseEvent

	RunID   string               `json:"run_id"`
	Stage   models.PipelineState `json:"stage"`
	Issues  []string             `json:"issues,omitempty"`
	Actions []models.Action      `json:"actions,omitempty"`
}

func (p PipelineBlocked) GetType() EventType {
	return PipelineBlockedEvent
}

// JourneyAdvanced is published for every journey event the autopilot
// actually records.
type JourneyAdvanced struct {
	BaseEvent

	Stage  models.JourneyStage `json:"stage"`
	Source string              `json:"source,omitempty"`
}

func (j JourneyAdvanced) GetType() EventType {
	return JourneyAdvancedEvent
}

// CaseScheduled is published when auto-scheduling assigns a caregiver.
type CaseScheduled struct {
	BaseEvent

	CaregiverID    string     `json:"caregiver_id"`
	AssignmentID   string     `json:"assignment_id"`
	ScheduledDate  *time.Time `json:"scheduled_date,omitempty"`
	SuggestedUnits int        `json:"suggested_units,omitempty"`
}

func (c CaseScheduled) GetType() EventType {
	return CaseScheduledEvent
}

func NewBaseEvent(eventType EventType, caseID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		CaseID:    caseID,
		Metadata:  make(map[string]any),
	}
}

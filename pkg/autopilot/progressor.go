// Package autopilot advances a case's real-world journey over time using
// guarded, idempotent journey events.
package autopilot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/careops/referralos/pkg/eventbus"
	"github.com/careops/referralos/pkg/events"
	"github.com/careops/referralos/pkg/models"
	"github.com/careops/referralos/pkg/persistence"
	"github.com/careops/referralos/pkg/scheduling"
)

// eventSource marks journey events recorded by the progressor.
const eventSource = "autopilot"

// Default delay thresholds between time-gated journey stages.
const (
	DefaultAssessmentDelay = 24 * time.Hour
	DefaultBillingDelay    = 72 * time.Hour
	DefaultCompletionDelay = 24 * time.Hour
)

// TickResult reports what one tick actually changed.
type TickResult struct {
	CaseID    string                `json:"case_id"`
	Recorded  []models.JourneyStage `json:"recorded,omitempty"`
	Scheduled bool                  `json:"scheduled"`
	Halted    bool                  `json:"halted"`
}

// Progressor drives the journey state machine. Every step is a guarded,
// idempotent append: ticking the same case any number of times converges on
// the same event log.
type Progressor struct {
	logger    *slog.Logger
	store     persistence.Persistence
	publisher eventbus.EventPublisher

	now             func() time.Time
	assessmentDelay time.Duration
	billingDelay    time.Duration
	completionDelay time.Duration
}

type Option func(*Progressor)

// WithClock injects the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(p *Progressor) { p.now = now }
}

func WithDelays(assessment, billing, completion time.Duration) Option {
	return func(p *Progressor) {
		p.assessmentDelay = assessment
		p.billingDelay = billing
		p.completionDelay = completion
	}
}

func NewProgressor(logger *slog.Logger, store persistence.Persistence, publisher eventbus.EventPublisher, opts ...Option) *Progressor {
	p := &Progressor{
		logger:          logger.With("module", "autopilot"),
		store:           store,
		publisher:       publisher,
		now:             time.Now,
		assessmentDelay: DefaultAssessmentDelay,
		billingDelay:    DefaultBillingDelay,
		completionDelay: DefaultCompletionDelay,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Tick advances the case's journey one bounded step. Cases not flagged for
// autonomous progression are left untouched.
func (p *Progressor) Tick(ctx context.Context, caseID string) (*TickResult, error) {
	result := &TickResult{CaseID: caseID}

	c, err := p.store.CaseRepository().GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	if !c.Autopilot {
		return result, nil
	}

	log, err := p.store.JourneyRepository().Log(ctx, caseID)
	if err != nil {
		return nil, err
	}

	_, err = p.record(ctx, c, &log, result, models.JourneyIntakeReceived, "")
	if err != nil {
		return nil, err
	}

	_, err = p.record(ctx, c, &log, result, models.JourneyDocsCompleted, "")
	if err != nil {
		return nil, err
	}

	c.DocsComplete = true

	if c.AuthBlocked() {
		_, err = p.record(ctx, c, &log, result, models.JourneyAuthPending, "awaiting authorization approval")
		if err != nil {
			return nil, err
		}

		result.Halted = true

		return result, p.save(ctx, c)
	}

	if !log.Has(models.JourneyHomeAssessmentScheduled) {
		_, err = p.record(ctx, c, &log, result, models.JourneyHomeAssessmentScheduled, "")
		if err != nil {
			return nil, err
		}

		// Stop here so scheduling and completion stay observably apart.
		return result, p.save(ctx, c)
	}

	scheduled, _ := log.Find(models.JourneyHomeAssessmentScheduled)
	if !log.Has(models.JourneyHomeAssessmentCompleted) {
		if p.now().Sub(scheduled.At) < p.assessmentDelay {
			return result, p.save(ctx, c)
		}

		_, err = p.record(ctx, c, &log, result, models.JourneyHomeAssessmentCompleted, "")
		if err != nil {
			return nil, err
		}

		c.HomeAssessmentDone = true
		if c.Assessment.Status == models.AssessmentUnknown {
			c.Assessment.Status = models.AssessmentComplete
		}
	}

	if c.Unscheduled() && c.Payer.InsuranceActive {
		err = p.autoSchedule(ctx, c, &log, result)
		if err != nil {
			return nil, err
		}
	}

	if !c.Unscheduled() {
		err = p.advanceBilling(ctx, c, &log, result)
		if err != nil {
			return nil, err
		}
	}

	return result, p.save(ctx, c)
}

// TickAll ticks every autopilot-flagged case. Individual failures are logged
// and skipped so one broken case cannot stall the batch.
func (p *Progressor) TickAll(ctx context.Context) ([]*TickResult, error) {
	cases, err := p.store.CaseRepository().GetAll(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*TickResult, 0, len(cases))

	for _, c := range cases {
		if !c.Autopilot {
			continue
		}

		result, err := p.Tick(ctx, c.ID)
		if err != nil {
			p.logger.Error("Failed to tick case", "case_id", c.ID, "error", err)

			continue
		}

		results = append(results, result)
	}

	return results, nil
}

func (p *Progressor) autoSchedule(ctx context.Context, c *models.Case, log *models.JourneyLog, result *TickResult) error {
	caregivers, err := p.store.CaregiverRepository().GetAll(ctx)
	if err != nil {
		return err
	}

	assignments, err := p.store.AssignmentRepository().Active(ctx)
	if err != nil {
		return err
	}

	roster := make([]models.Caregiver, 0, len(caregivers))
	for _, g := range caregivers {
		roster = append(roster, *g)
	}

	active := make([]models.Assignment, 0, len(assignments))
	for _, a := range assignments {
		active = append(active, *a)
	}

	caregiver, found := scheduling.SelectCaregiver(*c, roster, active)
	if !found {
		p.logger.Info("No available caregiver for case", "case_id", c.ID)

		return nil
	}

	// The deduplicated SCHEDULED append is the commit point: only the tick
	// that writes it may create the assignment, so a racing tick cannot
	// double-book the case.
	wrote, err := p.record(ctx, c, log, result, models.JourneyScheduled, "assigned "+caregiver.ID)
	if err != nil {
		return err
	}

	if !wrote {
		return p.adoptAssignment(ctx, c)
	}

	scheduledDate := p.now().UTC()
	assignment := &models.Assignment{
		ID:            fmt.Sprintf("asg-%s", uuid.New().String()[:8]),
		CaseID:        c.ID,
		CaregiverID:   caregiver.ID,
		Status:        models.ScheduleScheduled,
		ScheduledDate: &scheduledDate,
	}

	err = p.store.AssignmentRepository().Save(ctx, assignment)
	if err != nil {
		return err
	}

	c.Scheduling.Status = models.ScheduleScheduled
	c.Scheduling.CaregiverID = caregiver.ID
	c.Scheduling.ScheduledDate = &scheduledDate

	result.Scheduled = true

	p.publish(ctx, c.ID, events.CaseScheduled{
		BaseEvent:      events.NewBaseEvent(events.CaseScheduledEvent, c.ID),
		CaregiverID:    caregiver.ID,
		AssignmentID:   assignment.ID,
		ScheduledDate:  &scheduledDate,
		SuggestedUnits: scheduling.SuggestedUnits(*c),
	})

	return nil
}

// adoptAssignment syncs the case's scheduling fields from the assignment a
// concurrent tick already persisted.
func (p *Progressor) adoptAssignment(ctx context.Context, c *models.Case) error {
	existing, err := p.store.AssignmentRepository().GetByCase(ctx, c.ID)
	if err != nil {
		return err
	}

	for _, a := range existing {
		if a.ActiveAssignment() {
			c.Scheduling.Status = models.ScheduleScheduled
			c.Scheduling.CaregiverID = a.CaregiverID
			c.Scheduling.ScheduledDate = a.ScheduledDate

			return nil
		}
	}

	return nil
}

func (p *Progressor) advanceBilling(ctx context.Context, c *models.Case, log *models.JourneyLog, result *TickResult) error {
	scheduled, ok := log.Find(models.JourneyScheduled)
	if !ok {
		return nil
	}

	if !log.Has(models.JourneyReadyToBill) {
		if p.now().Sub(scheduled.At) < p.billingDelay {
			return nil
		}

		_, err := p.record(ctx, c, log, result, models.JourneyReadyToBill, "")
		if err != nil {
			return err
		}

		c.Billing.ReadyToBill = true
	}

	readyToBill, ok := log.Find(models.JourneyReadyToBill)
	if !ok || log.Has(models.JourneyServiceCompleted) {
		return nil
	}

	if p.now().Sub(readyToBill.At) < p.completionDelay {
		return nil
	}

	_, err := p.record(ctx, c, log, result, models.JourneyServiceCompleted, "")
	if err != nil {
		return err
	}

	c.Billing.ServiceComplete = true
	c.Scheduling.Status = models.ScheduleCompleted

	return nil
}

// record appends the stage event if absent and reports whether it wrote.
// The case's journey pointer only moves on an actual write, so replay
// ticks over earlier stages cannot rewind it.
func (p *Progressor) record(ctx context.Context, c *models.Case, log *models.JourneyLog, result *TickResult, stage models.JourneyStage, note string) (bool, error) {
	event := models.JourneyEvent{
		CaseID: c.ID,
		Stage:  stage,
		At:     p.now().UTC(),
		Source: eventSource,
		Note:   note,
	}

	wrote, err := p.store.JourneyRepository().Append(ctx, event)
	if err != nil {
		return false, err
	}

	if !wrote {
		return false, nil
	}

	c.Journey = models.JourneyMeta{Stage: stage, UpdatedAt: event.At}
	*log = append(*log, event)
	result.Recorded = append(result.Recorded, stage)

	p.logger.Info("Recorded journey event", "case_id", c.ID, "stage", stage)
	p.publish(ctx, c.ID, events.JourneyAdvanced{
		BaseEvent: events.NewBaseEvent(events.JourneyAdvancedEvent, c.ID),
		Stage:     stage,
		Source:    eventSource,
	})

	return true, nil
}

func (p *Progressor) publish(ctx context.Context, key string, event eventbus.Event) {
	if p.publisher == nil {
		return
	}

	err := p.publisher.Publish(ctx, key, event)
	if err != nil {
		p.logger.Error("Failed to publish event", "case_id", key, "event_type", event.GetType(), "error", err)
	}
}

func (p *Progressor) save(ctx context.Context, c *models.Case) error {
	return p.store.CaseRepository().Save(ctx, c)
}

// Package web provides the HTTP handlers and REST endpoints for referral
// case management.
package web

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/careops/referralos/pkg/advisor"
	"github.com/careops/referralos/pkg/autopilot"
	"github.com/careops/referralos/pkg/eventbus"
	"github.com/careops/referralos/pkg/events"
	"github.com/careops/referralos/pkg/ingestion"
	"github.com/careops/referralos/pkg/intelligence"
	"github.com/careops/referralos/pkg/matching"
	"github.com/careops/referralos/pkg/models"
	"github.com/careops/referralos/pkg/persistence"
	"github.com/careops/referralos/pkg/pipeline"
	"github.com/careops/referralos/pkg/scheduling"
)

type APIHandlers struct {
	store      persistence.Persistence
	normalizer *ingestion.Normalizer
	executor   *pipeline.Executor
	matcher    *matching.Matcher
	progressor *autopilot.Progressor
	annotator  advisor.Annotator
	eventBus   eventbus.EventPublisher
	validator  *validator.Validate
}

func NewAPIHandlers(
	store persistence.Persistence,
	normalizer *ingestion.Normalizer,
	executor *pipeline.Executor,
	matcher *matching.Matcher,
	progressor *autopilot.Progressor,
	annotator advisor.Annotator,
	eventBus eventbus.EventPublisher,
	validate *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		store:      store,
		normalizer: normalizer,
		executor:   executor,
		matcher:    matcher,
		progressor: progressor,
		annotator:  annotator,
		eventBus:   eventBus,
		validator:  validate,
	}
}

// CreateCase ingests a raw referral payload and stores the normalized case.
func (h *APIHandlers) CreateCase(c fiber.Ctx) error {
	normalized, err := h.normalizer.Normalize(c.Body())
	if err != nil {
		return handleStoreError(c, err)
	}

	existing, err := h.store.CaseRepository().GetByID(c.Context(), normalized.ID)
	if err != nil && !persistence.IsCaseNotFound(err) {
		return handleStoreError(c, err)
	}

	if existing != nil {
		return handleStoreError(c, persistence.NewCaseError("Create", normalized.ID, persistence.ErrCaseAlreadyExists))
	}

	err = h.store.CaseRepository().Save(c.Context(), normalized)
	if err != nil {
		return handleStoreError(c, err)
	}

	if h.eventBus != nil {
		_ = h.eventBus.Publish(c.Context(), normalized.ID, events.CaseReceived{
			BaseEvent: events.NewBaseEvent(events.CaseReceivedEvent, normalized.ID),
			Source:    normalized.Referral.Source,
			Urgency:   string(normalized.Referral.Urgency),
			Received:  true,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(normalized)
}

// GetCases lists every stored case.
func (h *APIHandlers) GetCases(c fiber.Ctx) error {
	cases, err := h.store.CaseRepository().GetAll(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"cases":       cases,
		"total_count": len(cases),
	})
}

// GetCase returns one case by id.
func (h *APIHandlers) GetCase(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "case id is required")
	}

	stored, err := h.store.CaseRepository().GetByID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(stored)
}

// RunPipeline evaluates the case through the stage agent chain and persists
// the outcome.
func (h *APIHandlers) RunPipeline(c fiber.Ctx) error {
	id := c.Params("id")

	stored, err := h.store.CaseRepository().GetByID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	started := time.Now()

	result, err := h.executor.Run(c.Context(), *stored)
	if err != nil {
		return internalError(c, err)
	}

	err = h.store.CaseRepository().Save(c.Context(), &result.Case)
	if err != nil {
		return handleStoreError(c, err)
	}

	h.publishRunOutcome(c, result, time.Since(started))

	return c.JSON(result)
}

func (h *APIHandlers) publishRunOutcome(c fiber.Ctx, result *pipeline.RunResult, duration time.Duration) {
	if h.eventBus == nil {
		return
	}

	if result.Blocked {
		_ = h.eventBus.Publish(c.Context(), result.CaseID, events.PipelineBlocked{
			BaseEvent: events.NewBaseEvent(events.PipelineBlockedEvent, result.CaseID),
			RunID:     result.RunID,
			Stage:     result.FinalState,
			Issues:    result.Issues,
			Actions:   result.Actions,
		})

		return
	}

	_ = h.eventBus.Publish(c.Context(), result.CaseID, events.PipelineCompleted{
		BaseEvent:  events.NewBaseEvent(events.PipelineCompletedEvent, result.CaseID),
		RunID:      result.RunID,
		FinalState: result.FinalState,
		Decisions:  result.Decisions,
		Duration:   duration,
	})
}

// GetMatches scores the caregiver roster against the case.
func (h *APIHandlers) GetMatches(c fiber.Ctx) error {
	id := c.Params("id")

	stored, err := h.store.CaseRepository().GetByID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	caregivers, err := h.store.CaregiverRepository().GetAll(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	roster := make([]models.Caregiver, 0, len(caregivers))
	for _, g := range caregivers {
		roster = append(roster, *g)
	}

	matches := h.matcher.Match(*stored, roster)

	return c.JSON(fiber.Map{
		"case_id":        id,
		"matches":        matches,
		"recommendation": h.matcher.Recommend(id, matches),
	})
}

// GetExplanation evaluates the case segment and returns the advisory
// explanation for it.
func (h *APIHandlers) GetExplanation(c fiber.Ctx) error {
	id := c.Params("id")

	stored, err := h.store.CaseRepository().GetByID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	evaluation := intelligence.Evaluate(*stored, time.Now().UTC())

	explanation, err := h.annotator.Explain(c.Context(), *stored, evaluation)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"case_id":     id,
		"evaluation":  evaluation,
		"explanation": explanation,
	})
}

// TickCase advances the case's journey one autopilot step.
func (h *APIHandlers) TickCase(c fiber.Ctx) error {
	id := c.Params("id")

	result, err := h.progressor.Tick(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(result)
}

// GetJourney returns the case's journey event log.
func (h *APIHandlers) GetJourney(c fiber.Ctx) error {
	id := c.Params("id")

	if _, err := h.store.CaseRepository().GetByID(c.Context(), id); err != nil {
		return handleStoreError(c, err)
	}

	log, err := h.store.JourneyRepository().Log(c.Context(), id)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"case_id": id,
		"events":  log,
	})
}

// GetQueue ranks the schedulable backlog by priority.
func (h *APIHandlers) GetQueue(c fiber.Ctx) error {
	cases, err := h.store.CaseRepository().GetAll(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	backlog := make([]models.Case, 0, len(cases))
	for _, stored := range cases {
		backlog = append(backlog, *stored)
	}

	queue := scheduling.BuildQueue(backlog, time.Now().UTC())

	return c.JSON(fiber.Map{
		"queue":       queue,
		"total_count": len(queue),
	})
}

// GetAvailability splits the caregiver roster by remaining capacity.
func (h *APIHandlers) GetAvailability(c fiber.Ctx) error {
	caregivers, err := h.store.CaregiverRepository().GetAll(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	assignments, err := h.store.AssignmentRepository().Active(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	roster := make([]models.Caregiver, 0, len(caregivers))
	for _, g := range caregivers {
		roster = append(roster, *g)
	}

	active := make([]models.Assignment, 0, len(assignments))
	for _, a := range assignments {
		active = append(active, *a)
	}

	return c.JSON(scheduling.CaregiverAvailability(roster, active))
}

// CreateCaregiver adds or updates a caregiver roster entry.
func (h *APIHandlers) CreateCaregiver(c fiber.Ctx) error {
	var caregiver models.Caregiver

	err := c.Bind().Body(&caregiver)
	if err != nil {
		return badRequest(c, "invalid caregiver payload: "+err.Error())
	}

	err = h.validator.Struct(&caregiver)
	if err != nil {
		return badRequest(c, err.Error())
	}

	err = h.store.CaregiverRepository().Save(c.Context(), &caregiver)
	if err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(caregiver)
}

// HealthCheck reports persistence health.
func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	err := h.store.HealthCheck(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"status": "ok"})
}

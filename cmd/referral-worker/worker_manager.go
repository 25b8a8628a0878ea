package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/careops/referralos/pkg/eventbus"
	"github.com/careops/referralos/pkg/events"
	"github.com/careops/referralos/pkg/ingestion"
	"github.com/careops/referralos/pkg/intake/queue"
	"github.com/careops/referralos/pkg/persistence"
	"github.com/careops/referralos/pkg/pipeline"
	"github.com/careops/referralos/pkg/registry"
)

// WorkerManager consumes inbound referral payloads from the intake queue and
// runs the stage pipeline for every received case.
type WorkerManager struct {
	id          string
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	normalizer  *ingestion.Normalizer
	tracer      trace.Tracer

	intakeQueue      string
	intakeConnection map[string]string
}

func NewWorkerManager(
	id string,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
) *WorkerManager {
	return &WorkerManager{
		id:          id,
		logger:      logger.With("module", "referral-worker", "worker_id", id),
		persistence: persistence,
		eventBus:    eventBus,
		normalizer:  ingestion.NewNormalizer(logger),
	}
}

func (w *WorkerManager) Start(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Starting worker manager", "worker_id", w.id)

	err := w.eventBus.Handle(events.CaseReceivedEvent, w.handleCaseReceived)
	if err != nil {
		return err
	}

	err = w.eventBus.Subscribe(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to subscribe to event bus", "error", err)

		return err
	}

	receiver, err := queue.NewReceiver(w.intakeQueue, w.intakeConnection, w.logger)
	if err != nil {
		return err
	}

	err = receiver.Start(ctx, w.handleIntakePayload)
	if err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "Worker started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	w.logger.InfoContext(ctx, "Shutting down worker...")

	return receiver.Stop(ctx)
}

// handleIntakePayload normalizes one raw referral payload, stores the case,
// and announces it on the bus.
func (w *WorkerManager) handleIntakePayload(ctx context.Context, payload []byte) error {
	c, err := w.normalizer.Normalize(payload)
	if err != nil {
		w.logger.ErrorContext(ctx, "Rejected referral payload", "error", err)

		return err
	}

	err = w.persistence.CaseRepository().Save(ctx, c)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to save case", "case_id", c.ID, "error", err)

		return err
	}

	event := events.CaseReceived{
		BaseEvent: events.NewBaseEvent(events.CaseReceivedEvent, c.ID),
		Source:    c.Referral.Source,
		Urgency:   string(c.Referral.Urgency),
		Received:  true,
	}
	event.WorkerID = w.id

	return w.eventBus.Publish(ctx, c.ID, event)
}

// handleCaseReceived runs the stage pipeline for a newly received case and
// publishes the run outcome.
func (w *WorkerManager) handleCaseReceived(ctx context.Context, event any) error {
	receivedEvent, ok := event.(*events.CaseReceived)
	if !ok {
		w.logger.ErrorContext(ctx, "Invalid event type for CaseReceived")

		return nil
	}

	logger := w.logger.With("case_id", receivedEvent.CaseID, "event_id", receivedEvent.ID)
	logger.InfoContext(ctx, "Processing received case")

	c, err := w.persistence.CaseRepository().GetByID(ctx, receivedEvent.CaseID)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load case", "error", err)

		return err
	}

	executor := pipeline.NewExecutor(logger, registry.NewDefaultRegistry(logger), w.tracer)

	started := time.Now()

	result, err := executor.Run(ctx, *c)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to run pipeline", "error", err)

		return err
	}

	err = w.persistence.CaseRepository().Save(ctx, &result.Case)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to persist pipeline outcome", "error", err)

		return err
	}

	if result.Blocked {
		blockedEvent := events.PipelineBlocked{
			BaseEvent: events.NewBaseEvent(events.PipelineBlockedEvent, result.CaseID),
			RunID:     result.RunID,
			Stage:     result.FinalState,
			Issues:    result.Issues,
			Actions:   result.Actions,
		}
		blockedEvent.WorkerID = w.id

		return w.eventBus.Publish(ctx, result.CaseID, blockedEvent)
	}

	completedEvent := events.PipelineCompleted{
		BaseEvent:  events.NewBaseEvent(events.PipelineCompletedEvent, result.CaseID),
		RunID:      result.RunID,
		FinalState: result.FinalState,
		Decisions:  result.Decisions,
		Duration:   time.Since(started),
	}
	completedEvent.WorkerID = w.id

	return w.eventBus.Publish(ctx, result.CaseID, completedEvent)
}

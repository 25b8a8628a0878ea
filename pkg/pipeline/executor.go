package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/careops/referralos/pkg/agents"
	"github.com/careops/referralos/pkg/models"
	"github.com/careops/referralos/pkg/otelhelper"
	"github.com/careops/referralos/pkg/registry"
)

// StageResult records one agent evaluation within a run, in order.
type StageResult struct {
	AgentID string               `json:"agent_id"`
	Stage   models.PipelineState `json:"stage"`
	Success bool                 `json:"success"`
	Issues  []string             `json:"issues,omitempty"`
}

// RunResult is the outcome of one orchestration run over a case.
type RunResult struct {
	RunID      string               `json:"run_id"`
	CaseID     string               `json:"case_id"`
	FinalState models.PipelineState `json:"final_state"`

	// Blocked is set when the run stopped on a failed stage precondition
	// rather than reaching the terminal state.
	Blocked bool `json:"blocked"`

	Decisions map[string]bool `json:"decisions"`
	Actions   []models.Action `json:"actions"`
	Issues    []string        `json:"issues,omitempty"`
	Case      models.Case     `json:"case"`
	Trail     []StageResult   `json:"trail"`
}

// Executor advances a case through the stage agent chain. Each run starts
// from the case's recorded state, evaluates one agent per state in pipeline
// order, merges every result, and stops at the first blocked stage or at the
// terminal state. State only ever moves forward within a run.
type Executor struct {
	logger   *slog.Logger
	registry *registry.Registry
	tracer   trace.Tracer
}

func NewExecutor(logger *slog.Logger, reg *registry.Registry, tracer trace.Tracer) *Executor {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("pipeline")
	}

	return &Executor{
		logger:   logger.With("module", "pipeline_executor"),
		registry: reg,
		tracer:   tracer,
	}
}

// Run evaluates the case from its current state until it blocks or reaches
// READY_TO_SCHEDULE. The input case is never mutated; the updated working
// copy is returned inside the result.
func (e *Executor) Run(ctx context.Context, c models.Case) (*RunResult, error) {
	runID := generateRunID()

	logger := e.logger.With("run_id", runID, "case_id", c.ID)
	logger.Info("Starting pipeline run", "state", c.State)

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "pipeline.run",
		attribute.String(otelhelper.RunIDKey, runID),
		attribute.String(otelhelper.CaseIDKey, c.ID),
	)
	defer span.End()

	ectx := models.NewContext(c)

	result := &RunResult{
		RunID:  runID,
		CaseID: c.ID,
		Trail:  make([]StageResult, 0, len(models.PipelineStates())),
	}

	for range models.PipelineStates() {
		agent, ok := e.registry.AgentFor(ectx.State)
		if !ok {
			err := fmt.Errorf("no agent registered for state %s", ectx.State)
			otelhelper.SetError(span, err)

			return nil, err
		}

		stage := ectx.State
		agentResult := e.evaluate(ctx, agent, ectx)

		Apply(ectx, agentResult)

		result.Trail = append(result.Trail, StageResult{
			AgentID: agent.ID(),
			Stage:   stage,
			Success: agentResult.Success,
			Issues:  agentResult.Issues,
		})

		if !agentResult.Success {
			result.Blocked = true
			result.Issues = append(result.Issues, agentResult.Issues...)

			logger.Warn("Pipeline run blocked",
				"stage", stage, "agent_id", agent.ID(), "issues", agentResult.Issues)

			break
		}

		if ectx.State == stage {
			break
		}
	}

	result.FinalState = ectx.State
	result.Decisions = ectx.Decisions
	result.Actions = ectx.Actions
	result.Case = ectx.Case

	span.SetAttributes(attribute.String(otelhelper.CaseStateKey, string(result.FinalState)))
	logger.Info("Completed pipeline run", "final_state", result.FinalState, "blocked", result.Blocked)

	return result, nil
}

func (e *Executor) evaluate(ctx context.Context, agent agents.Agent, ectx *models.Context) models.AgentResult {
	_, span := otelhelper.StartSpan(ctx, e.tracer, "pipeline.agent",
		attribute.String(otelhelper.AgentIDKey, agent.ID()),
		attribute.String(otelhelper.StageKey, string(agent.Stage())),
	)
	defer span.End()

	result := agent.Run(ectx)
	span.SetAttributes(attribute.Bool("referralos.agent.success", result.Success))

	return result
}

// generateRunID generates a unique run ID.
func generateRunID() string {
	return fmt.Sprintf("run-%s", uuid.New().String()[:8])
}

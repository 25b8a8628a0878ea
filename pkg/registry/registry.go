// Package registry maps pipeline states to the agents that evaluate them.
package registry

import (
	"fmt"
	"log/slog"

	"github.com/careops/referralos/pkg/agents"
	"github.com/careops/referralos/pkg/models"
)

// Registry holds the agent responsible for each pipeline state. It is
// populated at startup and read-only afterwards.
type Registry struct {
	logger  *slog.Logger
	byStage map[models.PipelineState]agents.Agent
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:  logger.With("module", "registry"),
		byStage: make(map[models.PipelineState]agents.Agent),
	}
}

// Register binds an agent to its stage. Each stage accepts exactly one agent.
func (r *Registry) Register(agent agents.Agent) error {
	stage := agent.Stage()
	if !stage.Valid() {
		return fmt.Errorf("agent %s declares unknown stage %q", agent.ID(), stage)
	}

	if existing, ok := r.byStage[stage]; ok {
		return fmt.Errorf("stage %s already handled by agent %s", stage, existing.ID())
	}

	r.byStage[stage] = agent
	r.logger.Debug("Registered agent", "agent_id", agent.ID(), "stage", stage)

	return nil
}

// AgentFor returns the agent registered for the stage.
func (r *Registry) AgentFor(stage models.PipelineState) (agents.Agent, bool) {
	agent, ok := r.byStage[stage]

	return agent, ok
}

// Complete verifies that every pipeline state has a registered agent.
func (r *Registry) Complete() error {
	for _, stage := range models.PipelineStates() {
		if _, ok := r.byStage[stage]; !ok {
			return fmt.Errorf("no agent registered for stage %s", stage)
		}
	}

	return nil
}

// NewDefaultRegistry builds a registry with the full stage agent set wired
// in. It panics on wiring errors since those are programming mistakes, not
// runtime conditions.
func NewDefaultRegistry(logger *slog.Logger) *Registry {
	r := NewRegistry(logger)

	all := []agents.Agent{
		agents.NewReferralReceivedAgent(),
		agents.NewIntakeCompleteAgent(),
		agents.NewAssessmentCompleteAgent(),
		agents.NewEligibilityVerifiedAgent(),
		agents.NewAuthPendingAgent(),
		agents.NewAuthApprovedAgent(),
		agents.NewReadyToScheduleAgent(),
	}

	for _, agent := range all {
		if err := r.Register(agent); err != nil {
			panic(err)
		}
	}

	if err := r.Complete(); err != nil {
		panic(err)
	}

	return r
}

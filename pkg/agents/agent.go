// Package agents implements the stage evaluators of the referral pipeline.
// Each agent encodes the business precondition of exactly one pipeline state.
package agents

import "github.com/careops/referralos/pkg/models"

// Agent is a pure evaluator for one pipeline stage. Run must not mutate the
// context; every output flows through the returned AgentResult, which the
// merge engine applies. Purity makes agents safe to re-evaluate and to test
// in isolation.
type Agent interface {
	// ID returns the unique identifier for this agent.
	ID() string

	// Stage returns the pipeline state this agent is responsible for.
	Stage() models.PipelineState

	// Run evaluates the stage precondition against the shared context.
	Run(ectx *models.Context) models.AgentResult
}

// authRequiredServices lists requested services that always need payer
// authorization when no explicit flag was supplied at intake.
var authRequiredServices = map[string]struct{}{
	"ECM":               {},
	"Community Support": {},
	"CS":                {},
}

func blocked(name string, stay models.PipelineState, decisions map[string]bool, issues []string, actions ...models.Action) models.AgentResult {
	return models.AgentResult{
		Name:      name,
		Success:   false,
		State:     stay,
		Decisions: decisions,
		Actions:   actions,
		Issues:    issues,
	}
}

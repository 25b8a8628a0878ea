package registry

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careops/referralos/pkg/agents"
	"github.com/careops/referralos/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

type fakeAgent struct {
	id    string
	stage models.PipelineState
}

func (f *fakeAgent) ID() string                  { return f.id }
func (f *fakeAgent) Stage() models.PipelineState { return f.stage }
func (f *fakeAgent) Run(_ *models.Context) models.AgentResult {
	return models.AgentResult{Name: f.id, Success: true}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry(testLogger())

	err := r.Register(&fakeAgent{id: "a", stage: models.StateIntakeComplete})
	require.NoError(t, err)

	agent, ok := r.AgentFor(models.StateIntakeComplete)
	require.True(t, ok)
	assert.Equal(t, "a", agent.ID())
}

func TestRegistry_RegisterRejectsUnknownStage(t *testing.T) {
	r := NewRegistry(testLogger())

	err := r.Register(&fakeAgent{id: "a", stage: "NOT_A_STAGE"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown stage")
}

func TestRegistry_RegisterRejectsDuplicateStage(t *testing.T) {
	r := NewRegistry(testLogger())

	require.NoError(t, r.Register(&fakeAgent{id: "a", stage: models.StateAuthPending}))

	err := r.Register(&fakeAgent{id: "b", stage: models.StateAuthPending})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already handled")
}

func TestRegistry_CompleteReportsMissingStages(t *testing.T) {
	r := NewRegistry(testLogger())

	require.NoError(t, r.Register(agents.NewReferralReceivedAgent()))

	err := r.Complete()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no agent registered")
}

func TestNewDefaultRegistry_CoversEveryStage(t *testing.T) {
	r := NewDefaultRegistry(testLogger())

	require.NoError(t, r.Complete())

	for _, stage := range models.PipelineStates() {
		agent, ok := r.AgentFor(stage)
		require.True(t, ok, "stage %s has no agent", stage)
		assert.Equal(t, stage, agent.Stage())
	}
}

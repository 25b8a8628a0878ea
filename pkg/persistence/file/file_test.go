package file

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careops/referralos/pkg/models"
	"github.com/careops/referralos/pkg/persistence"
)

func TestCaseRepository_SaveAndGet(t *testing.T) {
	store := NewPersistence(t.TempDir())
	ctx := context.Background()

	c := &models.Case{
		ID:      "REF-1",
		Patient: models.Patient{Name: "Ana Reyes", City: "Fresno"},
		Payer:   models.Payer{Name: "HealthNet", InsuranceActive: true},
		State:   models.StateIntakeComplete,
	}

	require.NoError(t, store.CaseRepository().Save(ctx, c))

	got, err := store.CaseRepository().GetByID(ctx, "REF-1")
	require.NoError(t, err)

	assert.Equal(t, "Ana Reyes", got.Patient.Name)
	assert.Equal(t, models.StateIntakeComplete, got.State)
	assert.False(t, got.CreatedAt.IsZero())
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestCaseRepository_GetByIDNotFound(t *testing.T) {
	store := NewPersistence(t.TempDir())

	_, err := store.CaseRepository().GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, persistence.IsCaseNotFound(err))
}

func TestCaseRepository_GetAll(t *testing.T) {
	store := NewPersistence(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.CaseRepository().Save(ctx, &models.Case{ID: "REF-1"}))
	require.NoError(t, store.CaseRepository().Save(ctx, &models.Case{ID: "REF-2"}))

	cases, err := store.CaseRepository().GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, cases, 2)
}

func TestCaseRepository_GetAllEmptyRoot(t *testing.T) {
	store := NewPersistence(t.TempDir())

	cases, err := store.CaseRepository().GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cases)
}

func TestCaseRepository_Update(t *testing.T) {
	store := NewPersistence(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.CaseRepository().Save(ctx, &models.Case{ID: "REF-1"}))

	err := store.CaseRepository().Update(ctx, "REF-1", func(c *models.Case) error {
		c.State = models.StateReadyToSchedule

		return nil
	})
	require.NoError(t, err)

	got, err := store.CaseRepository().GetByID(ctx, "REF-1")
	require.NoError(t, err)
	assert.Equal(t, models.StateReadyToSchedule, got.State)
}

func TestCaseRepository_ConcurrentUpdatesSerialize(t *testing.T) {
	store := NewPersistence(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.CaseRepository().Save(ctx, &models.Case{ID: "REF-1"}))

	const workers = 10

	var wg sync.WaitGroup

	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()

			err := store.CaseRepository().Update(ctx, "REF-1", func(c *models.Case) error {
				c.ContactAttempts++

				return nil
			})
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	got, err := store.CaseRepository().GetByID(ctx, "REF-1")
	require.NoError(t, err)
	assert.Equal(t, workers, got.ContactAttempts)
}

func TestCaregiverRepository_SaveAndGet(t *testing.T) {
	store := NewPersistence(t.TempDir())
	ctx := context.Background()

	g := &models.Caregiver{ID: "CG-1", City: "Fresno", Skills: []string{"ECM"}, Active: true}
	require.NoError(t, store.CaregiverRepository().Save(ctx, g))

	got, err := store.CaregiverRepository().GetByID(ctx, "CG-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"ECM"}, got.Skills)

	all, err := store.CaregiverRepository().GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAssignmentRepository_ActiveAndByCase(t *testing.T) {
	store := NewPersistence(t.TempDir())
	ctx := context.Background()

	scheduled := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)

	assignments := []*models.Assignment{
		{ID: "A1", CaseID: "REF-1", CaregiverID: "CG-1", Status: models.ScheduleScheduled, ScheduledDate: &scheduled},
		{ID: "A2", CaseID: "REF-1", CaregiverID: "CG-2", Status: models.ScheduleCancelled},
		{ID: "A3", CaseID: "REF-2", CaregiverID: "CG-1", Status: models.ScheduleCompleted},
	}

	for _, a := range assignments {
		require.NoError(t, store.AssignmentRepository().Save(ctx, a))
	}

	byCase, err := store.AssignmentRepository().GetByCase(ctx, "REF-1")
	require.NoError(t, err)
	assert.Len(t, byCase, 2)

	active, err := store.AssignmentRepository().Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "A1", active[0].ID)
}

func TestJourneyRepository_AppendOncePerStage(t *testing.T) {
	store := NewPersistence(t.TempDir())
	ctx := context.Background()

	event := models.JourneyEvent{
		CaseID: "REF-1",
		Stage:  models.JourneyIntakeReceived,
		At:     time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC),
		Source: "test",
	}

	wrote, err := store.JourneyRepository().Append(ctx, event)
	require.NoError(t, err)
	assert.True(t, wrote)

	// The same stage is never recorded twice.
	wrote, err = store.JourneyRepository().Append(ctx, event)
	require.NoError(t, err)
	assert.False(t, wrote)

	log, err := store.JourneyRepository().Log(ctx, "REF-1")
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, models.JourneyIntakeReceived, log[0].Stage)
}

func TestJourneyRepository_LogMissingCaseIsEmpty(t *testing.T) {
	store := NewPersistence(t.TempDir())

	log, err := store.JourneyRepository().Log(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, log)
}

func TestJourneyRepository_AppendRequiresCaseID(t *testing.T) {
	store := NewPersistence(t.TempDir())

	_, err := store.JourneyRepository().Append(context.Background(), models.JourneyEvent{
		Stage: models.JourneyIntakeReceived,
	})
	assert.Error(t, err)
}

func TestPersistence_HealthCheck(t *testing.T) {
	root := t.TempDir()

	store := NewPersistence(root)
	assert.NoError(t, store.HealthCheck(context.Background()))

	missing := NewPersistence(root + "/does-not-exist")
	assert.Error(t, missing.HealthCheck(context.Background()))
}

package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careops/referralos/pkg/models"
)

func TestCapacity(t *testing.T) {
	tests := []struct {
		name string
		g    models.Caregiver
		want int
	}{
		{"full time", models.Caregiver{EmploymentType: models.EmploymentFullTime}, 3},
		{"unknown employment defaults to three", models.Caregiver{}, 3},
		{"contract", models.Caregiver{EmploymentType: models.EmploymentContract}, 2},
		{"part time", models.Caregiver{EmploymentType: models.EmploymentPartTime}, 1},
		{
			"limited availability costs a slot",
			models.Caregiver{EmploymentType: models.EmploymentFullTime, Availability: "Limited"},
			2,
		},
		{
			"limited part time keeps the floor of one",
			models.Caregiver{EmploymentType: models.EmploymentPartTime, Availability: "Limited"},
			1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Capacity(tt.g))
		})
	}
}

func TestLoad_CountsOnlyActiveAssignments(t *testing.T) {
	assignments := []models.Assignment{
		{ID: "A1", CaseID: "C1", CaregiverID: "CG-1", Status: models.ScheduleScheduled},
		{ID: "A2", CaseID: "C2", CaregiverID: "CG-1", Status: models.ScheduleCompleted},
		{ID: "A3", CaseID: "C3", CaregiverID: "CG-1", Status: models.ScheduleCancelled},
		{ID: "A4", CaseID: "C4", CaregiverID: "CG-2", Status: models.ScheduleScheduled},
	}

	assert.Equal(t, 1, Load("CG-1", assignments))
	assert.Equal(t, 1, Load("CG-2", assignments))
	assert.Equal(t, 0, Load("CG-3", assignments))
}

func TestCaregiverAvailability(t *testing.T) {
	caregivers := []models.Caregiver{
		{ID: "CG-free", EmploymentType: models.EmploymentFullTime, Active: true},
		{ID: "CG-full", EmploymentType: models.EmploymentPartTime, Active: true},
		{ID: "CG-inactive", EmploymentType: models.EmploymentFullTime, Active: false},
	}

	assignments := []models.Assignment{
		{ID: "A1", CaseID: "C1", CaregiverID: "CG-full", Status: models.ScheduleScheduled},
	}

	availability := CaregiverAvailability(caregivers, assignments)

	require.Len(t, availability.Available, 1)
	assert.Equal(t, "CG-free", availability.Available[0].ID)

	require.Len(t, availability.Busy, 2)
	assert.Equal(t, "CG-full", availability.Busy[0].ID)
	assert.Equal(t, "CG-inactive", availability.Busy[1].ID)
}

func TestSelectCaregiver_PrefersSameCity(t *testing.T) {
	c := models.Case{ID: "C1", Patient: models.Patient{City: "Fresno"}}

	caregivers := []models.Caregiver{
		{ID: "CG-other", City: "Sacramento", Active: true},
		{ID: "CG-local", City: "Fresno", Active: true},
	}

	selected, ok := SelectCaregiver(c, caregivers, nil)
	require.True(t, ok)
	assert.Equal(t, "CG-local", selected.ID)
}

func TestSelectCaregiver_FallsBackToFirstAvailable(t *testing.T) {
	c := models.Case{ID: "C1", Patient: models.Patient{City: "Fresno"}}

	caregivers := []models.Caregiver{
		{ID: "CG-other", City: "Sacramento", Active: true},
	}

	selected, ok := SelectCaregiver(c, caregivers, nil)
	require.True(t, ok)
	assert.Equal(t, "CG-other", selected.ID)
}

func TestSelectCaregiver_NoneAvailable(t *testing.T) {
	c := models.Case{ID: "C1"}

	caregivers := []models.Caregiver{
		{ID: "CG-busy", EmploymentType: models.EmploymentPartTime, Active: true},
	}

	assignments := []models.Assignment{
		{ID: "A1", CaseID: "C2", CaregiverID: "CG-busy", Status: models.ScheduleScheduled},
	}

	_, ok := SelectCaregiver(c, caregivers, assignments)
	assert.False(t, ok)
}

func TestSuggestedUnits(t *testing.T) {
	tests := []struct {
		name      string
		remaining int
		next7d    int
		want      int
	}{
		{"remaining minus already scheduled", 12, 4, 8},
		{"never negative", 2, 6, 0},
		{"capped at twenty", 60, 10, 20},
		{"nothing authorized", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := models.Case{
				Auth:       models.Authorization{UnitsRemaining: tt.remaining},
				Scheduling: models.Scheduling{UnitsScheduledNext7d: tt.next7d},
			}

			assert.Equal(t, tt.want, SuggestedUnits(c))
		})
	}
}

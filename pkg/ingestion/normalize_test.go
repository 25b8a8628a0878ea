package ingestion

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careops/referralos/pkg/models"
)

func newTestNormalizer() *Normalizer {
	return NewNormalizer(slog.New(slog.NewTextHandler(os.Stdout, nil)))
}

func TestNormalize_FullPayload(t *testing.T) {
	payload := []byte(`{
		"referral_id": "REF-1001",
		"patient_name": "Maria Lopez",
		"patient_dob": "1952-03-14",
		"patient_city": "Fresno",
		"patient_phone": "555-0100",
		"payer": "HealthNet",
		"plan_type": "Medi-Cal",
		"member_id": "HN-889001",
		"insurance_active": "Y",
		"use_case": "ECM",
		"service_type": "Care Coordination",
		"referral_source": "Hospital",
		"urgency": "Urgent",
		"referral_received_date": "2026-08-10",
		"auth_required": "Y",
		"auth_status": "pending",
		"auth_units_total": 40,
		"auth_units_remaining": 28,
		"assessment_status": "completed",
		"assessment_date": "2026-08-12",
		"docs_complete": "Y",
		"contact_attempts": 3,
		"schedule_status": "NOT_SCHEDULED",
		"autopilot": true
	}`)

	c, err := newTestNormalizer().Normalize(payload)
	require.NoError(t, err)

	assert.Equal(t, "REF-1001", c.ID)
	assert.Equal(t, "Maria Lopez", c.Patient.Name)
	require.NotNil(t, c.Patient.DOB)
	assert.Equal(t, time.Date(1952, 3, 14, 0, 0, 0, 0, time.UTC), *c.Patient.DOB)
	assert.Equal(t, "HealthNet", c.Payer.Name)
	assert.True(t, c.Payer.InsuranceActive)
	assert.Equal(t, "ECM - Care Coordination", c.Referral.RequestedService)
	assert.Equal(t, models.UrgencyUrgent, c.Referral.Urgency)
	assert.True(t, c.Auth.Required)
	assert.Equal(t, models.AuthStatusPending, c.Auth.Status)
	assert.Equal(t, 40, c.Auth.UnitsTotal)
	assert.Equal(t, 28, c.Auth.UnitsRemaining)
	assert.Equal(t, models.AssessmentComplete, c.Assessment.Status)
	assert.True(t, c.DocsComplete)
	assert.Equal(t, 3, c.ContactAttempts)
	assert.Equal(t, models.ScheduleNotScheduled, c.Scheduling.Status)
	assert.True(t, c.Autopilot)
	assert.Equal(t, models.StateReferralReceived, c.State)
}

func TestNormalize_MinimalPayload(t *testing.T) {
	c, err := newTestNormalizer().Normalize([]byte(`{"referral_id": "REF-1002"}`))
	require.NoError(t, err)

	assert.Equal(t, "REF-1002", c.ID)
	assert.False(t, c.Payer.InsuranceActive)
	assert.Equal(t, models.StateReferralReceived, c.State)
}

func TestNormalize_RejectsMissingReferralID(t *testing.T) {
	_, err := newTestNormalizer().Normalize([]byte(`{"patient_name": "Maria Lopez"}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestNormalize_RejectsMalformedJSON(t *testing.T) {
	_, err := newTestNormalizer().Normalize([]byte(`{"referral_id": `))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestNormalize_RequestedServiceDerivation(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{
			name:    "explicit service wins",
			payload: `{"referral_id": "R", "requested_service": "Respite", "use_case": "ECM", "service_type": "X"}`,
			want:    "Respite",
		},
		{
			name:    "category and procedure combine",
			payload: `{"referral_id": "R", "use_case": "ECM", "service_type": "Care Coordination"}`,
			want:    "ECM - Care Coordination",
		},
		{
			name:    "procedure alone",
			payload: `{"referral_id": "R", "service_type": "Care Coordination"}`,
			want:    "Care Coordination",
		},
		{
			name:    "category alone",
			payload: `{"referral_id": "R", "use_case": "ECM"}`,
			want:    "ECM",
		},
		{
			name:    "nothing provided",
			payload: `{"referral_id": "R"}`,
			want:    "",
		},
	}

	normalizer := newTestNormalizer()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := normalizer.Normalize([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Referral.RequestedService)
		})
	}
}

func TestNormalize_FlagParsing(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"Y", true},
		{"y", true},
		{"Yes", true},
		{"true", true},
		{"1", true},
		{"N", false},
		{"no", false},
		{"", false},
		{"maybe", false},
	}

	normalizer := newTestNormalizer()

	for _, tt := range tests {
		t.Run("value "+tt.value, func(t *testing.T) {
			c, err := normalizer.Normalize([]byte(
				`{"referral_id": "R", "insurance_active": "` + tt.value + `"}`))
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Payer.InsuranceActive)
		})
	}
}

func TestNormalize_AutopilotAcceptsBoolAndFlag(t *testing.T) {
	normalizer := newTestNormalizer()

	c, err := normalizer.Normalize([]byte(`{"referral_id": "R", "autopilot": true}`))
	require.NoError(t, err)
	assert.True(t, c.Autopilot)

	c, err = normalizer.Normalize([]byte(`{"referral_id": "R", "autopilot": "Y"}`))
	require.NoError(t, err)
	assert.True(t, c.Autopilot)

	c, err = normalizer.Normalize([]byte(`{"referral_id": "R"}`))
	require.NoError(t, err)
	assert.False(t, c.Autopilot)
}

func TestNormalize_DateLayouts(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  *time.Time
	}{
		{"iso date", "2026-08-10", models.Ptr(time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC))},
		{"us date", "08/10/2026", models.Ptr(time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC))},
		{"unparseable date dropped", "August 10", nil},
		{"empty", "", nil},
	}

	normalizer := newTestNormalizer()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := normalizer.Normalize([]byte(
				`{"referral_id": "R", "referral_received_date": "` + tt.value + `"}`))
			require.NoError(t, err)

			if tt.want == nil {
				assert.Nil(t, c.Referral.ReceivedAt)
			} else {
				require.NotNil(t, c.Referral.ReceivedAt)
				assert.Equal(t, *tt.want, *c.Referral.ReceivedAt)
			}
		})
	}
}

func TestNormalize_UnitsAcceptIntegerAndString(t *testing.T) {
	normalizer := newTestNormalizer()

	c, err := normalizer.Normalize([]byte(`{"referral_id": "R", "auth_units_remaining": 12}`))
	require.NoError(t, err)
	assert.Equal(t, 12, c.Auth.UnitsRemaining)

	c, err = normalizer.Normalize([]byte(`{"referral_id": "R", "auth_units_remaining": "12"}`))
	require.NoError(t, err)
	assert.Equal(t, 12, c.Auth.UnitsRemaining)
}

func TestNormalize_UrgencyParsing(t *testing.T) {
	tests := []struct {
		value string
		want  models.Urgency
	}{
		{"Urgent", models.UrgencyUrgent},
		{"urgent", models.UrgencyUrgent},
		{"Routine", models.UrgencyRoutine},
		{"anything else", models.UrgencyRoutine},
		{"", models.Urgency("")},
	}

	normalizer := newTestNormalizer()

	for _, tt := range tests {
		t.Run("value "+tt.value, func(t *testing.T) {
			c, err := normalizer.Normalize([]byte(
				`{"referral_id": "R", "urgency": "` + tt.value + `"}`))
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Referral.Urgency)
		})
	}
}

func TestValidatePayload(t *testing.T) {
	assert.NoError(t, ValidatePayload([]byte(`{"referral_id": "REF-1"}`)))
	assert.ErrorIs(t, ValidatePayload([]byte(`{}`)), ErrInvalidPayload)
	assert.ErrorIs(t, ValidatePayload([]byte(`{"referral_id": ""}`)), ErrInvalidPayload)
	assert.ErrorIs(t, ValidatePayload([]byte(`{"referral_id": 7}`)), ErrInvalidPayload)
}

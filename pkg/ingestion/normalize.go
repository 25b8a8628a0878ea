// Package ingestion validates inbound referral payloads and normalizes them
// into case records. All raw-shape heuristics live here, at the boundary;
// everything past this package works with typed cases only.
package ingestion

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/careops/referralos/pkg/models"
)

// dateLayouts are the accepted referral date formats, tried in order.
var dateLayouts = []string{"2006-01-02", time.RFC3339, "01/02/2006"}

// Normalizer turns validated raw payloads into case records.
type Normalizer struct {
	logger   *slog.Logger
	validate *validator.Validate
}

func NewNormalizer(logger *slog.Logger) *Normalizer {
	return &Normalizer{
		logger:   logger.With("module", "ingestion"),
		validate: validator.New(),
	}
}

// Normalize validates the payload and maps it into a case. The pipeline
// state starts at the beginning; agents decide everything else.
func (n *Normalizer) Normalize(payload []byte) (*models.Case, error) {
	err := ValidatePayload(payload)
	if err != nil {
		return nil, err
	}

	var raw map[string]any

	err = json.Unmarshal(payload, &raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	c := &models.Case{
		ID: str(raw, "referral_id"),
		Patient: models.Patient{
			Name:    str(raw, "patient_name"),
			DOB:     date(raw, "patient_dob"),
			Address: str(raw, "patient_address"),
			City:    str(raw, "patient_city"),
			Zip:     str(raw, "patient_zip"),
			Phone:   str(raw, "patient_phone"),
		},
		Payer: models.Payer{
			Name:            str(raw, "payer"),
			PlanType:        str(raw, "plan_type"),
			MemberID:        str(raw, "member_id"),
			InsuranceActive: yn(raw, "insurance_active"),
		},
		Referral: models.Referral{
			RequestedService: requestedService(raw),
			Source:           str(raw, "referral_source"),
			Urgency:          parseUrgency(str(raw, "urgency")),
			ReceivedAt:       date(raw, "referral_received_date"),
		},
		Auth: models.Authorization{
			Required:       yn(raw, "auth_required"),
			Status:         parseAuthStatus(str(raw, "auth_status")),
			Number:         str(raw, "auth_number"),
			StartDate:      date(raw, "auth_start_date"),
			EndDate:        date(raw, "auth_end_date"),
			UnitsTotal:     integer(raw, "auth_units_total"),
			UnitsRemaining: integer(raw, "auth_units_remaining"),
		},
		Assessment: models.Assessment{
			Status: parseAssessmentStatus(str(raw, "assessment_status")),
			Date:   date(raw, "assessment_date"),
		},
		Scheduling: models.Scheduling{
			Status:               parseScheduleStatus(str(raw, "schedule_status")),
			ScheduledDate:        date(raw, "scheduled_date"),
			UnitsScheduledNext7d: integer(raw, "units_scheduled_next_7d"),
		},
		Billing: models.Billing{
			ServiceComplete: yn(raw, "service_complete"),
			ReadyToBill:     yn(raw, "ready_to_bill"),
			ClaimStatus:     str(raw, "claim_status"),
		},
		State:           models.StateReferralReceived,
		ContactAttempts: integer(raw, "contact_attempts"),
		DocsComplete:    yn(raw, "docs_complete"),
		Autopilot:       autopilot(raw),
	}

	c.HomeAssessmentDone = yn(raw, "home_assessment_done")

	err = n.validate.Struct(c)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	n.logger.Debug("Normalized referral payload", "case_id", c.ID, "source", c.Referral.Source)

	return c, nil
}

// requestedService prefers an explicit service, then derives one from the
// service category and procedure pair.
func requestedService(raw map[string]any) string {
	if service := str(raw, "requested_service"); service != "" {
		return service
	}

	category := str(raw, "use_case")
	procedure := str(raw, "service_type")

	switch {
	case category != "" && procedure != "":
		return category + " - " + procedure
	case procedure != "":
		return procedure
	default:
		return category
	}
}

func parseUrgency(value string) models.Urgency {
	if strings.EqualFold(value, string(models.UrgencyUrgent)) {
		return models.UrgencyUrgent
	}

	if value == "" {
		return ""
	}

	return models.UrgencyRoutine
}

func parseAuthStatus(value string) models.AuthStatus {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "pending":
		return models.AuthStatusPending
	case "approved":
		return models.AuthStatusApproved
	case "denied":
		return models.AuthStatusDenied
	case "not_required", "not required":
		return models.AuthStatusNotRequired
	default:
		return models.AuthStatusUnknown
	}
}

func parseAssessmentStatus(value string) models.AssessmentStatus {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "complete", "completed", "done":
		return models.AssessmentComplete
	case "pending":
		return models.AssessmentPending
	default:
		return models.AssessmentUnknown
	}
}

func parseScheduleStatus(value string) models.ScheduleStatus {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "SCHEDULED":
		return models.ScheduleScheduled
	case "COMPLETED":
		return models.ScheduleCompleted
	case "CANCELLED":
		return models.ScheduleCancelled
	case "PENDING":
		return models.SchedulePending
	case "ON_HOLD":
		return models.ScheduleOnHold
	default:
		return models.ScheduleNotScheduled
	}
}

func autopilot(raw map[string]any) bool {
	if flag, ok := raw["autopilot"].(bool); ok {
		return flag
	}

	return yn(raw, "autopilot")
}

func str(raw map[string]any, key string) string {
	value, _ := raw[key].(string)

	return strings.TrimSpace(value)
}

// yn parses the dataset's Y/N flag convention, accepting a few common
// affirmative spellings.
func yn(raw map[string]any, key string) bool {
	switch strings.ToLower(str(raw, key)) {
	case "y", "yes", "true", "1":
		return true
	default:
		return false
	}
}

func date(raw map[string]any, key string) *time.Time {
	value := str(raw, key)
	if value == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return &parsed
		}
	}

	return nil
}

func integer(raw map[string]any, key string) int {
	switch value := raw[key].(type) {
	case float64:
		return int(value)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0
		}

		return parsed
	default:
		return 0
	}
}

package ingestion

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// rawReferralSchema validates the shape of an inbound referral payload
// before normalization. Only the referral id is mandatory; everything else
// arrives incomplete all the time and is handled by the stage agents.
const rawReferralSchema = `{
	"type": "object",
	"required": ["referral_id"],
	"properties": {
		"referral_id": {"type": "string", "minLength": 1},
		"patient_name": {"type": "string"},
		"patient_dob": {"type": "string"},
		"patient_address": {"type": "string"},
		"patient_city": {"type": "string"},
		"patient_zip": {"type": "string"},
		"patient_phone": {"type": "string"},
		"payer": {"type": "string"},
		"plan_type": {"type": "string"},
		"member_id": {"type": "string"},
		"insurance_active": {"type": "string"},
		"use_case": {"type": "string"},
		"service_type": {"type": "string"},
		"requested_service": {"type": "string"},
		"referral_source": {"type": "string"},
		"urgency": {"type": "string"},
		"referral_received_date": {"type": "string"},
		"auth_required": {"type": "string"},
		"auth_status": {"type": "string"},
		"auth_number": {"type": "string"},
		"auth_start_date": {"type": "string"},
		"auth_end_date": {"type": "string"},
		"auth_units_total": {"type": ["integer", "string"]},
		"auth_units_remaining": {"type": ["integer", "string"]},
		"assessment_status": {"type": "string"},
		"assessment_date": {"type": "string"},
		"docs_complete": {"type": "string"},
		"home_assessment_done": {"type": "string"},
		"contact_attempts": {"type": ["integer", "string"]},
		"schedule_status": {"type": "string"},
		"scheduled_date": {"type": "string"},
		"units_scheduled_next_7d": {"type": ["integer", "string"]},
		"service_complete": {"type": "string"},
		"ready_to_bill": {"type": "string"},
		"claim_status": {"type": "string"},
		"autopilot": {"type": ["string", "boolean"]}
	}
}`

// ErrInvalidPayload indicates the inbound payload failed schema validation.
var ErrInvalidPayload = errors.New("invalid referral payload")

// ValidatePayload checks the raw JSON payload against the referral schema.
func ValidatePayload(payload []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(rawReferralSchema),
		gojsonschema.NewBytesLoader(payload),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, resultError := range result.Errors() {
		details = append(details, resultError.String())
	}

	return fmt.Errorf("%w: %s", ErrInvalidPayload, strings.Join(details, "; "))
}

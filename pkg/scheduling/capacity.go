package scheduling

import "github.com/careops/referralos/pkg/models"

// maxSuggestedUnits caps a single scheduling suggestion.
const maxSuggestedUnits = 20

// Capacity derives the number of concurrent case slots a caregiver can
// carry from employment type, reduced by one (floor one) for limited
// availability.
func Capacity(g models.Caregiver) int {
	slots := 3

	switch g.EmploymentType {
	case models.EmploymentPartTime:
		slots = 1
	case models.EmploymentContract:
		slots = 2
	}

	if g.LimitedAvailability() && slots > 1 {
		slots--
	}

	return slots
}

// Load counts the caregiver's active assignments. Completed and cancelled
// assignments free their slot.
func Load(caregiverID string, assignments []models.Assignment) int {
	load := 0

	for i := range assignments {
		if assignments[i].CaregiverID == caregiverID && assignments[i].ActiveAssignment() {
			load++
		}
	}

	return load
}

// Availability is a point-in-time split of caregivers into those with a free
// slot and those at capacity. It must be computed from one consistent read
// of all active assignments; a stale snapshot risks double-booking.
type Availability struct {
	Available []models.Caregiver `json:"available"`
	Busy      []models.Caregiver `json:"busy"`
}

// CaregiverAvailability splits the caregivers by comparing load against
// capacity. Inactive caregivers are never available.
func CaregiverAvailability(caregivers []models.Caregiver, assignments []models.Assignment) Availability {
	availability := Availability{
		Available: make([]models.Caregiver, 0, len(caregivers)),
		Busy:      make([]models.Caregiver, 0),
	}

	for _, g := range caregivers {
		if g.Active && Load(g.ID, assignments) < Capacity(g) {
			availability.Available = append(availability.Available, g)
		} else {
			availability.Busy = append(availability.Busy, g)
		}
	}

	return availability
}

// SelectCaregiver picks the caregiver for auto-scheduling: the first
// available caregiver in the patient's city, else the first available
// anywhere, else none.
func SelectCaregiver(c models.Case, caregivers []models.Caregiver, assignments []models.Assignment) (models.Caregiver, bool) {
	availability := CaregiverAvailability(caregivers, assignments)
	if len(availability.Available) == 0 {
		return models.Caregiver{}, false
	}

	for _, g := range availability.Available {
		if c.Patient.City != "" && g.City == c.Patient.City {
			return g, true
		}
	}

	return availability.Available[0], true
}

// SuggestedUnits proposes how many service units to schedule next: the
// remaining authorized units minus what is already on the calendar for the
// coming week, capped.
func SuggestedUnits(c models.Case) int {
	units := c.Auth.UnitsRemaining - c.Scheduling.UnitsScheduledNext7d
	if units < 0 {
		units = 0
	}

	if units > maxSuggestedUnits {
		units = maxSuggestedUnits
	}

	return units
}

package models

import (
	"strings"
	"time"
)

// EmploymentType classifies a caregiver's engagement model.
type EmploymentType string

const (
	EmploymentFullTime EmploymentType = "Full-Time"
	EmploymentPartTime EmploymentType = "Part-Time"
	EmploymentContract EmploymentType = "Contract"
)

// Caregiver is a service provider eligible for assignment to a case.
type Caregiver struct {
	ID             string         `json:"id" validate:"required"`
	City           string         `json:"city,omitempty"`
	Skills         []string       `json:"skills,omitempty"`
	EmploymentType EmploymentType `json:"employment_type,omitempty"`
	Availability   string         `json:"availability,omitempty"`
	Language       string         `json:"language,omitempty"`
	Active         bool           `json:"active"`
}

// HasSkill reports whether the caregiver's skill tags contain the service,
// case-insensitively.
func (g *Caregiver) HasSkill(service string) bool {
	service = strings.TrimSpace(service)
	if service == "" {
		return false
	}

	for _, skill := range g.Skills {
		if strings.EqualFold(strings.TrimSpace(skill), service) {
			return true
		}
	}

	return false
}

// FlexibleAvailability reports whether the caregiver has flexible or
// full-time availability.
func (g *Caregiver) FlexibleAvailability() bool {
	availability := strings.ToLower(g.Availability)

	return strings.Contains(availability, "flexible") || strings.Contains(availability, "full-time")
}

// LimitedAvailability reports whether the caregiver declared limited
// availability, which reduces schedulable capacity.
func (g *Caregiver) LimitedAvailability() bool {
	return strings.Contains(strings.ToLower(g.Availability), "limited")
}

// Assignment binds a caregiver to a case with a schedule status. At most one
// active assignment exists per case.
type Assignment struct {
	ID            string         `json:"id"`
	CaseID        string         `json:"case_id"      validate:"required"`
	CaregiverID   string         `json:"caregiver_id" validate:"required"`
	Status        ScheduleStatus `json:"status"`
	ScheduledDate *time.Time     `json:"scheduled_date,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// ActiveAssignment reports whether the assignment still occupies a caregiver
// slot.
func (a *Assignment) ActiveAssignment() bool {
	return a.Status != ScheduleCompleted && a.Status != ScheduleCancelled
}

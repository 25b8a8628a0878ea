// Package persistence provides the data storage abstraction layer for cases,
// caregivers, assignments, and journey logs.
package persistence

import (
	"context"

	"github.com/careops/referralos/pkg/models"
)

type Persistence interface {
	CaseRepository() CaseRepository
	CaregiverRepository() CaregiverRepository
	AssignmentRepository() AssignmentRepository
	JourneyRepository() JourneyRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// CaseRepository stores normalized referral cases.
type CaseRepository interface {
	GetAll(ctx context.Context) ([]*models.Case, error)
	GetByID(ctx context.Context, id string) (*models.Case, error)
	Save(ctx context.Context, c *models.Case) error

	// Update applies fn to the stored case under a per-case write lock, so
	// concurrent read-modify-write cycles on the same case cannot lose
	// updates. fn returning an error aborts without writing.
	Update(ctx context.Context, id string, fn func(*models.Case) error) error
}

// CaregiverRepository stores the caregiver roster.
type CaregiverRepository interface {
	GetAll(ctx context.Context) ([]*models.Caregiver, error)
	GetByID(ctx context.Context, id string) (*models.Caregiver, error)
	Save(ctx context.Context, g *models.Caregiver) error
}

// AssignmentRepository stores caregiver-to-case assignments.
type AssignmentRepository interface {
	GetAll(ctx context.Context) ([]*models.Assignment, error)
	GetByCase(ctx context.Context, caseID string) ([]*models.Assignment, error)
	Save(ctx context.Context, a *models.Assignment) error

	// Active returns every assignment still occupying a caregiver slot, read
	// in one consistent snapshot for capacity decisions.
	Active(ctx context.Context) ([]*models.Assignment, error)
}

// JourneyRepository stores the append-only journey event log per case.
type JourneyRepository interface {
	Log(ctx context.Context, caseID string) (models.JourneyLog, error)

	// Append records the event unless its stage is already present in the
	// case's log. It reports whether the event was actually written.
	Append(ctx context.Context, event models.JourneyEvent) (bool, error)
}

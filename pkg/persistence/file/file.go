// Package file provides file-based persistence for cases, caregivers,
// assignments, and journey logs. Each entity is one JSON document.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/careops/referralos/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the
// file system.
type Persistence struct {
	root           string
	caseRepo       *CaseRepository
	caregiverRepo  *CaregiverRepository
	assignmentRepo *AssignmentRepository
	journeyRepo    *JourneyRepository
}

// NewPersistence creates a new instance of Persistence rooted at the given
// directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)
	locks := newKeyedMutex()

	return &Persistence{
		root:           cleanRoot,
		caseRepo:       NewCaseRepository(cleanRoot, locks),
		caregiverRepo:  NewCaregiverRepository(cleanRoot),
		assignmentRepo: NewAssignmentRepository(cleanRoot),
		journeyRepo:    NewJourneyRepository(cleanRoot, locks),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is
// nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) CaseRepository() persistence.CaseRepository {
	return fp.caseRepo
}

func (fp *Persistence) CaregiverRepository() persistence.CaregiverRepository {
	return fp.caregiverRepo
}

func (fp *Persistence) AssignmentRepository() persistence.AssignmentRepository {
	return fp.assignmentRepo
}

func (fp *Persistence) JourneyRepository() persistence.JourneyRepository {
	return fp.journeyRepo
}

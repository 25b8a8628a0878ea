package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/careops/referralos/pkg/models"
	"github.com/careops/referralos/pkg/persistence"
)

// JourneyRepository stores one journey log document per case under
// <root>/journeys/<case id>.json. Appends share the case's write lock so the
// stage-once invariant holds under concurrent ticks.
type JourneyRepository struct {
	root  string
	locks *keyedMutex
}

// NewJourneyRepository creates a new journey repository.
func NewJourneyRepository(root string, locks *keyedMutex) *JourneyRepository {
	return &JourneyRepository{root: root, locks: locks}
}

func (jr *JourneyRepository) dir() string {
	return filepath.Join(jr.root, "journeys")
}

func (jr *JourneyRepository) path(caseID string) string {
	return filepath.Join(jr.dir(), caseID+".json")
}

// Log returns the case's journey log. A case with no recorded events has an
// empty log, not an error.
func (jr *JourneyRepository) Log(_ context.Context, caseID string) (models.JourneyLog, error) {
	data, err := os.ReadFile(jr.path(caseID))
	if err != nil {
		if os.IsNotExist(err) {
			return models.JourneyLog{}, nil
		}

		return nil, &persistence.JourneyError{Op: "Log", CaseID: caseID, Err: err}
	}

	var log models.JourneyLog

	err = json.Unmarshal(data, &log)
	if err != nil {
		return nil, &persistence.JourneyError{Op: "Log", CaseID: caseID, Err: err}
	}

	return log, nil
}

// Append records the event unless its stage is already present.
func (jr *JourneyRepository) Append(ctx context.Context, event models.JourneyEvent) (bool, error) {
	if event.CaseID == "" {
		return false, &persistence.JourneyError{
			Op: "Append", Stage: string(event.Stage),
			Err: fmt.Errorf("event has no case id"),
		}
	}

	unlock := jr.locks.lock(event.CaseID)
	defer unlock()

	log, err := jr.Log(ctx, event.CaseID)
	if err != nil {
		return false, err
	}

	if log.Has(event.Stage) {
		return false, nil
	}

	log = append(log, event)

	err = os.MkdirAll(jr.dir(), 0o755)
	if err != nil {
		return false, &persistence.JourneyError{Op: "Append", CaseID: event.CaseID, Stage: string(event.Stage), Err: err}
	}

	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return false, &persistence.JourneyError{Op: "Append", CaseID: event.CaseID, Stage: string(event.Stage), Err: err}
	}

	err = os.WriteFile(jr.path(event.CaseID), data, 0o600)
	if err != nil {
		return false, &persistence.JourneyError{Op: "Append", CaseID: event.CaseID, Stage: string(event.Stage), Err: err}
	}

	return true, nil
}

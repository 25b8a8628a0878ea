package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/careops/referralos/pkg/models"
	"github.com/careops/referralos/pkg/persistence"
)

// JourneyRepository stores journey events in PostgreSQL. The (case_id, stage)
// primary key makes appends naturally idempotent.
type JourneyRepository struct {
	db *sql.DB
}

// NewJourneyRepository creates a new journey repository.
func NewJourneyRepository(db *sql.DB) *JourneyRepository {
	return &JourneyRepository{db: db}
}

// Log returns the case's journey log in recording order.
func (jr *JourneyRepository) Log(ctx context.Context, caseID string) (models.JourneyLog, error) {
	rows, err := jr.db.QueryContext(ctx,
		"SELECT case_id, stage, at, source, note FROM journey_events WHERE case_id = $1 ORDER BY at", caseID)
	if err != nil {
		return nil, &persistence.JourneyError{Op: "Log", CaseID: caseID, Err: err}
	}
	defer func() { _ = rows.Close() }()

	log := models.JourneyLog{}

	for rows.Next() {
		var (
			event        models.JourneyEvent
			stage        string
			source, note sql.NullString
		)

		err = rows.Scan(&event.CaseID, &stage, &event.At, &source, &note)
		if err != nil {
			return nil, &persistence.JourneyError{Op: "Log", CaseID: caseID, Err: err}
		}

		event.Stage = models.JourneyStage(stage)
		event.Source = source.String
		event.Note = note.String

		log = append(log, event)
	}

	if err = rows.Err(); err != nil {
		return nil, &persistence.JourneyError{Op: "Log", CaseID: caseID, Err: err}
	}

	return log, nil
}

// Append records the event unless its stage is already present. The insert
// relies on the primary key; a conflicting append is a silent no-op.
func (jr *JourneyRepository) Append(ctx context.Context, event models.JourneyEvent) (bool, error) {
	if event.CaseID == "" {
		return false, &persistence.JourneyError{
			Op: "Append", Stage: string(event.Stage),
			Err: fmt.Errorf("event has no case id"),
		}
	}

	result, err := jr.db.ExecContext(ctx, `
		INSERT INTO journey_events (case_id, stage, at, source, note)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (case_id, stage) DO NOTHING
	`, event.CaseID, string(event.Stage), event.At, event.Source, event.Note)
	if err != nil {
		return false, &persistence.JourneyError{Op: "Append", CaseID: event.CaseID, Stage: string(event.Stage), Err: err}
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, &persistence.JourneyError{Op: "Append", CaseID: event.CaseID, Stage: string(event.Stage), Err: err}
	}

	return inserted > 0, nil
}

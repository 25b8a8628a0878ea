package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/careops/referralos/pkg/models"
)

// AssignmentRepository handles assignment storage in PostgreSQL.
type AssignmentRepository struct {
	db *sql.DB
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(db *sql.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

const assignmentColumns = "id, case_id, caregiver_id, status, scheduled_date, created_at, updated_at"

// GetAll returns every stored assignment.
func (ar *AssignmentRepository) GetAll(ctx context.Context) ([]*models.Assignment, error) {
	return ar.query(ctx, "SELECT "+assignmentColumns+" FROM assignments ORDER BY created_at")
}

// GetByCase returns the assignments recorded for one case.
func (ar *AssignmentRepository) GetByCase(ctx context.Context, caseID string) ([]*models.Assignment, error) {
	return ar.query(ctx,
		"SELECT "+assignmentColumns+" FROM assignments WHERE case_id = $1 ORDER BY created_at", caseID)
}

// Active returns every assignment still occupying a caregiver slot.
func (ar *AssignmentRepository) Active(ctx context.Context) ([]*models.Assignment, error) {
	return ar.query(ctx,
		"SELECT "+assignmentColumns+" FROM assignments WHERE status NOT IN ($1, $2) ORDER BY created_at",
		string(models.ScheduleCompleted), string(models.ScheduleCancelled))
}

func (ar *AssignmentRepository) query(ctx context.Context, query string, args ...any) ([]*models.Assignment, error) {
	rows, err := ar.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	assignments := make([]*models.Assignment, 0)

	for rows.Next() {
		var (
			a             models.Assignment
			status        string
			scheduledDate sql.NullTime
		)

		err = rows.Scan(&a.ID, &a.CaseID, &a.CaregiverID, &status, &scheduledDate, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment row: %w", err)
		}

		a.Status = models.ScheduleStatus(status)
		if scheduledDate.Valid {
			a.ScheduledDate = &scheduledDate.Time
		}

		assignments = append(assignments, &a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignment rows: %w", err)
	}

	return assignments, nil
}

// Save upserts the assignment.
func (ar *AssignmentRepository) Save(ctx context.Context, a *models.Assignment) error {
	if a.ID == "" {
		return fmt.Errorf("assignment id is empty")
	}

	a.UpdatedAt = time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = a.UpdatedAt
	}

	var scheduledDate sql.NullTime
	if a.ScheduledDate != nil {
		scheduledDate = sql.NullTime{Time: *a.ScheduledDate, Valid: true}
	}

	_, err := ar.db.ExecContext(ctx, `
		INSERT INTO assignments (id, case_id, caregiver_id, status, scheduled_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			scheduled_date = EXCLUDED.scheduled_date,
			updated_at = EXCLUDED.updated_at
	`, a.ID, a.CaseID, a.CaregiverID, string(a.Status), scheduledDate, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save assignment %s: %w", a.ID, err)
	}

	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/careops/referralos/pkg/models"
	"github.com/careops/referralos/pkg/persistence"
)

// CaseRepository handles case storage in PostgreSQL. The full case document
// lives in a JSONB column; state and journey stage are mirrored into indexed
// columns for querying.
type CaseRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewCaseRepository creates a new case repository.
func NewCaseRepository(db *sql.DB, logger *slog.Logger) *CaseRepository {
	return &CaseRepository{db: db, logger: logger}
}

// GetAll returns every stored case.
func (cr *CaseRepository) GetAll(ctx context.Context) ([]*models.Case, error) {
	rows, err := cr.db.QueryContext(ctx, "SELECT data FROM cases ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to query cases: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cases := make([]*models.Case, 0)

	for rows.Next() {
		var data []byte

		err = rows.Scan(&data)
		if err != nil {
			return nil, fmt.Errorf("failed to scan case row: %w", err)
		}

		var c models.Case

		err = json.Unmarshal(data, &c)
		if err != nil {
			return nil, fmt.Errorf("failed to decode case document: %w", err)
		}

		cases = append(cases, &c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate case rows: %w", err)
	}

	return cases, nil
}

// GetByID returns the case stored under the given id.
func (cr *CaseRepository) GetByID(ctx context.Context, id string) (*models.Case, error) {
	return cr.getByID(ctx, cr.db, id, "")
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (cr *CaseRepository) getByID(ctx context.Context, q querier, id, suffix string) (*models.Case, error) {
	var data []byte

	err := q.QueryRowContext(ctx, "SELECT data FROM cases WHERE id = $1"+suffix, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewCaseError("GetByID", id, persistence.ErrCaseNotFound)
		}

		return nil, persistence.NewCaseError("GetByID", id, err)
	}

	var c models.Case

	err = json.Unmarshal(data, &c)
	if err != nil {
		return nil, persistence.NewCaseError("GetByID", id, err)
	}

	return &c, nil
}

// Save upserts the case document.
func (cr *CaseRepository) Save(ctx context.Context, c *models.Case) error {
	if c.ID == "" {
		return persistence.NewCaseError("Save", c.ID, fmt.Errorf("case id is empty"))
	}

	return cr.upsert(ctx, cr.db, c)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (cr *CaseRepository) upsert(ctx context.Context, e execer, c *models.Case) error {
	c.UpdatedAt = time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = c.UpdatedAt
	}

	data, err := json.Marshal(c)
	if err != nil {
		return persistence.NewCaseError("Save", c.ID, err)
	}

	_, err = e.ExecContext(ctx, `
		INSERT INTO cases (id, state, journey_stage, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			state = EXCLUDED.state,
			journey_stage = EXCLUDED.journey_stage,
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
	`, c.ID, string(c.State), string(c.Journey.Stage), data, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return persistence.NewCaseError("Save", c.ID, err)
	}

	return nil
}

// Update applies fn to the stored case inside a transaction holding a row
// lock, so concurrent updates to the same case serialize instead of losing
// writes.
func (cr *CaseRepository) Update(ctx context.Context, id string, fn func(*models.Case) error) error {
	transaction, err := cr.db.BeginTx(ctx, nil)
	if err != nil {
		return persistence.NewCaseError("Update", id, err)
	}

	c, err := cr.getByID(ctx, transaction, id, " FOR UPDATE")
	if err != nil {
		_ = transaction.Rollback()

		return err
	}

	err = fn(c)
	if err != nil {
		_ = transaction.Rollback()

		return persistence.NewCaseError("Update", id, err)
	}

	err = cr.upsert(ctx, transaction, c)
	if err != nil {
		_ = transaction.Rollback()

		return err
	}

	err = transaction.Commit()
	if err != nil {
		return persistence.NewCaseError("Update", id, err)
	}

	return nil
}

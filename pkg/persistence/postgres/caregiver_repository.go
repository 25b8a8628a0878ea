package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/careops/referralos/pkg/models"
	"github.com/careops/referralos/pkg/persistence"
)

// CaregiverRepository handles caregiver roster storage in PostgreSQL.
type CaregiverRepository struct {
	db *sql.DB
}

// NewCaregiverRepository creates a new caregiver repository.
func NewCaregiverRepository(db *sql.DB) *CaregiverRepository {
	return &CaregiverRepository{db: db}
}

// GetAll returns every stored caregiver.
func (gr *CaregiverRepository) GetAll(ctx context.Context) ([]*models.Caregiver, error) {
	rows, err := gr.db.QueryContext(ctx, "SELECT data FROM caregivers ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query caregivers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	caregivers := make([]*models.Caregiver, 0)

	for rows.Next() {
		var data []byte

		err = rows.Scan(&data)
		if err != nil {
			return nil, fmt.Errorf("failed to scan caregiver row: %w", err)
		}

		var g models.Caregiver

		err = json.Unmarshal(data, &g)
		if err != nil {
			return nil, fmt.Errorf("failed to decode caregiver document: %w", err)
		}

		caregivers = append(caregivers, &g)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate caregiver rows: %w", err)
	}

	return caregivers, nil
}

// GetByID returns the caregiver stored under the given id.
func (gr *CaregiverRepository) GetByID(ctx context.Context, id string) (*models.Caregiver, error) {
	var data []byte

	err := gr.db.QueryRowContext(ctx, "SELECT data FROM caregivers WHERE id = $1", id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("caregiver %s: %w", id, persistence.ErrCaregiverNotFound)
		}

		return nil, fmt.Errorf("failed to query caregiver %s: %w", id, err)
	}

	var g models.Caregiver

	err = json.Unmarshal(data, &g)
	if err != nil {
		return nil, fmt.Errorf("failed to decode caregiver %s: %w", id, err)
	}

	return &g, nil
}

// Save upserts the caregiver document.
func (gr *CaregiverRepository) Save(ctx context.Context, g *models.Caregiver) error {
	if g.ID == "" {
		return fmt.Errorf("caregiver id is empty")
	}

	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to encode caregiver %s: %w", g.ID, err)
	}

	_, err = gr.db.ExecContext(ctx, `
		INSERT INTO caregivers (id, city, active, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			city = EXCLUDED.city,
			active = EXCLUDED.active,
			data = EXCLUDED.data
	`, g.ID, g.City, g.Active, data)
	if err != nil {
		return fmt.Errorf("failed to save caregiver %s: %w", g.ID, err)
	}

	return nil
}

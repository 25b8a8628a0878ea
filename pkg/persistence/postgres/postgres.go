// Package postgres provides PostgreSQL persistence for cases, caregivers,
// assignments, and journey logs.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	// Registers the postgres driver.
	_ "github.com/lib/pq"

	"github.com/careops/referralos/pkg/persistence"
	"github.com/careops/referralos/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db             *sql.DB
	logger         *slog.Logger
	caseRepo       *CaseRepository
	caregiverRepo  *CaregiverRepository
	assignmentRepo *AssignmentRepository
	journeyRepo    *JourneyRepository
}

// NewPersistence creates a new PostgreSQL persistence layer and runs pending
// migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:             database,
		logger:         logger,
		caseRepo:       NewCaseRepository(database, logger),
		caregiverRepo:  NewCaregiverRepository(database),
		assignmentRepo: NewAssignmentRepository(database),
		journeyRepo:    NewJourneyRepository(database),
	}, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) CaseRepository() persistence.CaseRepository {
	return p.caseRepo
}

func (p *Persistence) CaregiverRepository() persistence.CaregiverRepository {
	return p.caregiverRepo
}

func (p *Persistence) AssignmentRepository() persistence.AssignmentRepository {
	return p.assignmentRepo
}

func (p *Persistence) JourneyRepository() persistence.JourneyRepository {
	return p.journeyRepo
}

package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/careops/referralos/pkg/models"
)

// AssignmentRepository handles assignment file operations. One JSON document
// per assignment under <root>/assignments/<id>.json.
type AssignmentRepository struct {
	root string
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(root string) *AssignmentRepository {
	return &AssignmentRepository{root: root}
}

func (ar *AssignmentRepository) dir() string {
	return filepath.Join(ar.root, "assignments")
}

func (ar *AssignmentRepository) path(id string) string {
	return filepath.Join(ar.dir(), id+".json")
}

// GetAll returns every stored assignment.
func (ar *AssignmentRepository) GetAll(_ context.Context) ([]*models.Assignment, error) {
	if _, err := os.Stat(ar.dir()); os.IsNotExist(err) {
		return make([]*models.Assignment, 0), nil
	}

	jsonFiles, err := fs.Glob(os.DirFS(ar.dir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list assignment files: %w", err)
	}

	assignments := make([]*models.Assignment, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		data, err := os.ReadFile(filepath.Join(ar.dir(), file))
		if err != nil {
			return nil, fmt.Errorf("failed to read assignment file %s: %w", file, err)
		}

		var a models.Assignment

		err = json.Unmarshal(data, &a)
		if err != nil {
			return nil, fmt.Errorf("failed to decode assignment file %s: %w", file, err)
		}

		assignments = append(assignments, &a)
	}

	return assignments, nil
}

// GetByCase returns the assignments recorded for one case.
func (ar *AssignmentRepository) GetByCase(ctx context.Context, caseID string) ([]*models.Assignment, error) {
	all, err := ar.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	assignments := make([]*models.Assignment, 0)

	for _, a := range all {
		if a.CaseID == caseID {
			assignments = append(assignments, a)
		}
	}

	return assignments, nil
}

// Active returns every assignment still occupying a caregiver slot.
func (ar *AssignmentRepository) Active(ctx context.Context) ([]*models.Assignment, error) {
	all, err := ar.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]*models.Assignment, 0, len(all))

	for _, a := range all {
		if a.ActiveAssignment() {
			active = append(active, a)
		}
	}

	return active, nil
}

// Save writes the assignment document.
func (ar *AssignmentRepository) Save(_ context.Context, a *models.Assignment) error {
	if a.ID == "" {
		return fmt.Errorf("assignment id is empty")
	}

	err := os.MkdirAll(ar.dir(), 0o755)
	if err != nil {
		return fmt.Errorf("failed to create assignment directory: %w", err)
	}

	a.UpdatedAt = time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = a.UpdatedAt
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode assignment %s: %w", a.ID, err)
	}

	err = os.WriteFile(ar.path(a.ID), data, 0o600)
	if err != nil {
		return fmt.Errorf("failed to write assignment %s: %w", a.ID, err)
	}

	return nil
}

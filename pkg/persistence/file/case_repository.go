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
	"github.com/careops/referralos/pkg/persistence"
)

// CaseRepository handles case-related file operations. One JSON document per
// case under <root>/cases/<id>.json.
type CaseRepository struct {
	root  string
	locks *keyedMutex
}

// NewCaseRepository creates a new case repository.
func NewCaseRepository(root string, locks *keyedMutex) *CaseRepository {
	return &CaseRepository{root: root, locks: locks}
}

func (cr *CaseRepository) dir() string {
	return filepath.Join(cr.root, "cases")
}

func (cr *CaseRepository) path(id string) string {
	return filepath.Join(cr.dir(), id+".json")
}

// GetAll returns every stored case.
func (cr *CaseRepository) GetAll(ctx context.Context) ([]*models.Case, error) {
	if _, err := os.Stat(cr.dir()); os.IsNotExist(err) {
		return make([]*models.Case, 0), nil
	}

	jsonFiles, err := fs.Glob(os.DirFS(cr.dir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list case files: %w", err)
	}

	cases := make([]*models.Case, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id := file[:len(file)-len(".json")]

		c, err := cr.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load case %s: %w", id, err)
		}

		cases = append(cases, c)
	}

	return cases, nil
}

// GetByID returns the case stored under the given id.
func (cr *CaseRepository) GetByID(_ context.Context, id string) (*models.Case, error) {
	data, err := os.ReadFile(cr.path(id))
	if err != nil {
		if os.IsNotExist(err) {
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

// Save writes the case document, creating the directory on first use.
func (cr *CaseRepository) Save(_ context.Context, c *models.Case) error {
	if c.ID == "" {
		return persistence.NewCaseError("Save", c.ID, fmt.Errorf("case id is empty"))
	}

	unlock := cr.locks.lock(c.ID)
	defer unlock()

	return cr.write(c)
}

// Update applies fn to the stored case under the per-case lock.
func (cr *CaseRepository) Update(ctx context.Context, id string, fn func(*models.Case) error) error {
	unlock := cr.locks.lock(id)
	defer unlock()

	c, err := cr.GetByID(ctx, id)
	if err != nil {
		return err
	}

	err = fn(c)
	if err != nil {
		return persistence.NewCaseError("Update", id, err)
	}

	return cr.write(c)
}

func (cr *CaseRepository) write(c *models.Case) error {
	err := os.MkdirAll(cr.dir(), 0o755)
	if err != nil {
		return persistence.NewCaseError("Save", c.ID, err)
	}

	c.UpdatedAt = time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = c.UpdatedAt
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return persistence.NewCaseError("Save", c.ID, err)
	}

	err = os.WriteFile(cr.path(c.ID), data, 0o600)
	if err != nil {
		return persistence.NewCaseError("Save", c.ID, err)
	}

	return nil
}

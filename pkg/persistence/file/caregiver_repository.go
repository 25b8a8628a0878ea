package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/careops/referralos/pkg/models"
	"github.com/careops/referralos/pkg/persistence"
)

// CaregiverRepository handles caregiver roster file operations. One JSON
// document per caregiver under <root>/caregivers/<id>.json.
type CaregiverRepository struct {
	root string
}

// NewCaregiverRepository creates a new caregiver repository.
func NewCaregiverRepository(root string) *CaregiverRepository {
	return &CaregiverRepository{root: root}
}

func (gr *CaregiverRepository) dir() string {
	return filepath.Join(gr.root, "caregivers")
}

func (gr *CaregiverRepository) path(id string) string {
	return filepath.Join(gr.dir(), id+".json")
}

// GetAll returns every stored caregiver.
func (gr *CaregiverRepository) GetAll(ctx context.Context) ([]*models.Caregiver, error) {
	if _, err := os.Stat(gr.dir()); os.IsNotExist(err) {
		return make([]*models.Caregiver, 0), nil
	}

	jsonFiles, err := fs.Glob(os.DirFS(gr.dir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list caregiver files: %w", err)
	}

	caregivers := make([]*models.Caregiver, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id := file[:len(file)-len(".json")]

		g, err := gr.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load caregiver %s: %w", id, err)
		}

		caregivers = append(caregivers, g)
	}

	return caregivers, nil
}

// GetByID returns the caregiver stored under the given id.
func (gr *CaregiverRepository) GetByID(_ context.Context, id string) (*models.Caregiver, error) {
	data, err := os.ReadFile(gr.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("caregiver %s: %w", id, persistence.ErrCaregiverNotFound)
		}

		return nil, fmt.Errorf("failed to read caregiver %s: %w", id, err)
	}

	var g models.Caregiver

	err = json.Unmarshal(data, &g)
	if err != nil {
		return nil, fmt.Errorf("failed to decode caregiver %s: %w", id, err)
	}

	return &g, nil
}

// Save writes the caregiver document.
func (gr *CaregiverRepository) Save(_ context.Context, g *models.Caregiver) error {
	if g.ID == "" {
		return fmt.Errorf("caregiver id is empty")
	}

	err := os.MkdirAll(gr.dir(), 0o755)
	if err != nil {
		return fmt.Errorf("failed to create caregiver directory: %w", err)
	}

	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode caregiver %s: %w", g.ID, err)
	}

	err = os.WriteFile(gr.path(g.ID), data, 0o600)
	if err != nil {
		return fmt.Errorf("failed to write caregiver %s: %w", g.ID, err)
	}

	return nil
}

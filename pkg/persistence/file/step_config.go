package file

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dukex/sdsprotocol/pkg/config"
	"github.com/dukex/sdsprotocol/pkg/models"
	"github.com/dukex/sdsprotocol/pkg/persistence"
)

const stepsDir = "steps"

// StepConfigRepository stores one serialized configuration per step under <root>/steps.
type StepConfigRepository struct {
	root string
}

// NewStepConfigRepository creates a new step configuration repository.
func NewStepConfigRepository(root string) *StepConfigRepository {
	return &StepConfigRepository{root: root}
}

func (sr *StepConfigRepository) dir() string {
	return filepath.Join(sr.root, stepsDir)
}

func (sr *StepConfigRepository) path(identifier string) (string, error) {
	if identifier == "" || identifier == "." || identifier == ".." || strings.ContainsAny(identifier, `/\`) {
		return "", persistence.ErrInvalidIdentifier
	}

	return filepath.Join(sr.dir(), identifier+".json"), nil
}

// Get retrieves the configuration stored under identifier.
func (sr *StepConfigRepository) Get(_ context.Context, identifier string) (*models.StepConfig, error) {
	filePath, err := sr.path(identifier)
	if err != nil {
		return nil, persistence.NewStepError("Get", identifier, err)
	}

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewStepError("Get", identifier, persistence.ErrStepNotFound)
		}

		return nil, fmt.Errorf("failed to fetch step %s: %w", identifier, err)
	}

	cfg, err := config.Deserialize(string(body))
	if err != nil {
		return nil, fmt.Errorf("failed to load step %s: %w", identifier, err)
	}

	// Files copied by hand may carry a stale identifier; the file name wins.
	cfg.Identifier = identifier

	return &cfg, nil
}

// List returns every stored configuration ordered by identifier.
func (sr *StepConfigRepository) List(ctx context.Context) ([]*models.StepConfig, error) {
	root := os.DirFS(sr.dir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list step files: %w", err)
	}

	sort.Strings(jsonFiles)

	configs := make([]*models.StepConfig, 0, len(jsonFiles))
	for _, file := range jsonFiles {
		cfg, err := sr.Get(ctx, strings.TrimSuffix(file, ".json"))
		if err != nil {
			return nil, err
		}

		configs = append(configs, cfg)
	}

	return configs, nil
}

// Save writes cfg, replacing any configuration stored under the same identifier.
func (sr *StepConfigRepository) Save(_ context.Context, cfg *models.StepConfig) error {
	filePath, err := sr.path(cfg.Identifier)
	if err != nil {
		return persistence.NewStepError("Save", cfg.Identifier, err)
	}

	if err := os.MkdirAll(sr.dir(), 0o750); err != nil {
		return fmt.Errorf("failed to create steps directory: %w", err)
	}

	data, err := config.Serialize(*cfg)
	if err != nil {
		return persistence.NewStepError("Save", cfg.Identifier, err)
	}

	return os.WriteFile(filePath, []byte(data), 0o600)
}

// Delete removes the configuration stored under identifier. Missing steps are not an error.
func (sr *StepConfigRepository) Delete(_ context.Context, identifier string) error {
	filePath, err := sr.path(identifier)
	if err != nil {
		return persistence.NewStepError("Delete", identifier, err)
	}

	err = os.Remove(filePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete step %s: %w", identifier, err)
	}

	return nil
}

// IdentifierOccurs counts the stored steps named identifier. Records are keyed by file
// name, so the count comes from the directory listing and never decodes a record.
// An identifier that cannot name a record occurs zero times.
func (sr *StepConfigRepository) IdentifierOccurs(_ context.Context, identifier string) (int, error) {
	if _, err := sr.path(identifier); err != nil {
		return 0, nil
	}

	jsonFiles, err := fs.Glob(os.DirFS(sr.dir()), "*.json")
	if err != nil {
		return 0, fmt.Errorf("failed to list step files: %w", err)
	}

	count := 0

	for _, file := range jsonFiles {
		if strings.TrimSuffix(file, ".json") == identifier {
			count++
		}
	}

	return count, nil
}

package results

import (
	"errors"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/samcharles93/kerntune/internal/tunable"
)

const schemaVersion = 1

var ErrSchemaVersion = errors.New("results: unsupported schema version")

// File is the on-disk shape of a results store.
type File struct {
	SchemaVersion int                                       `json:"schema_version"`
	SessionID     string                                    `json:"session_id"`
	Validator     map[string]string                         `json:"validator"`
	Results       map[string]map[string]tunable.ResultEntry `json:"results"`
}

// Save writes the manager's results to path along with the validator's
// environment keys and a fresh session ID.
func Save(path string, m *Manager, v *Validator) error {
	f := File{
		SchemaVersion: schemaVersion,
		SessionID:     uuid.NewString(),
		Validator:     v.Keys(),
		Results:       m.Snapshot(),
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("results: encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("results: write %s: %w", path, err)
	}
	return nil
}

// Read parses a results file without validating it against the current
// environment. Used for offline inspection.
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("results: read %s: %w", path, err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("results: decode %s: %w", path, err)
	}
	if f.SchemaVersion != schemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrSchemaVersion, f.SchemaVersion)
	}
	return &f, nil
}

// Load reads a results file, checks it against the validator, and replaces
// the manager's contents with it. A file tuned under a different environment
// is rejected.
func Load(path string, m *Manager, v *Validator) error {
	f, err := Read(path)
	if err != nil {
		return err
	}
	if err := v.Validate(f.Validator); err != nil {
		return err
	}
	m.replace(f.Results)
	return nil
}

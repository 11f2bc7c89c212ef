// Package snapshot persists the reduced local projection (session identity +
// settings) across process restarts as a versioned JSON file.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/imoview/realty-crm/internal/core/ports"
)

// FileStore reads and writes the projection at a fixed path. Writes go
// through a temp file + rename so a crash mid-write never corrupts the
// previous snapshot.
type FileStore struct {
	path string
	log  zerolog.Logger
}

func NewFileStore(path string, log zerolog.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

// Save serializes the projection. The schema version tag travels with the
// blob so a future layout change can be detected on load.
func (f *FileStore) Save(p ports.Projection) error {
	p.SchemaVersion = ports.SnapshotSchemaVersion
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("snapshot marshal: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("snapshot dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("snapshot write: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("snapshot rename: %w", err)
	}
	return nil
}

// Load returns the persisted projection, or nil when none exists or the blob
// carries an unknown schema version (in which case it is discarded).
func (f *FileStore) Load() (*ports.Projection, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot read: %w", err)
	}

	var p ports.Projection
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("snapshot parse: %w", err)
	}
	if p.SchemaVersion != ports.SnapshotSchemaVersion {
		f.log.Warn().Int("found", p.SchemaVersion).Int("want", ports.SnapshotSchemaVersion).
			Msg("snapshot schema mismatch, discarding")
		return nil, nil
	}
	return &p, nil
}

package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imoview/realty-crm/internal/core/domain"
	"github.com/imoview/realty-crm/internal/core/ports"
)

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "snapshot.json")
	fs := NewFileStore(path, zerolog.Nop())

	user := domain.User{ID: "u1", Name: "Ana", Email: "ana@example.com", Role: domain.RoleAdmin, Version: 3}
	cfg := domain.DefaultSettings()
	cfg.WebhookURL = "https://hooks.example.com"

	require.NoError(t, fs.Save(ports.Projection{CurrentUser: &user, Settings: &cfg}))

	loaded, err := fs.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, ports.SnapshotSchemaVersion, loaded.SchemaVersion)
	require.NotNil(t, loaded.CurrentUser)
	assert.Equal(t, "Ana", loaded.CurrentUser.Name)
	require.NotNil(t, loaded.Settings)
	assert.Equal(t, "https://hooks.example.com", loaded.Settings.WebhookURL)
}

func TestFileStore_LoadMissingFile(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "nope.json"), zerolog.Nop())

	loaded, err := fs.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFileStore_SchemaMismatchDiscarded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	blob, err := json.Marshal(map[string]any{"schema_version": 99})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, blob, 0o600))

	fs := NewFileStore(path, zerolog.Nop())
	loaded, err := fs.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded, "unknown schema must be discarded, not returned")
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	fs := NewFileStore(path, zerolog.Nop())
	_, err := fs.Load()
	assert.Error(t, err)
}

func TestFileStore_SaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")
	fs := NewFileStore(path, zerolog.Nop())

	require.NoError(t, fs.Save(ports.Projection{}))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must be renamed away")
}

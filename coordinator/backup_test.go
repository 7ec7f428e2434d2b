package coordinator

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupRestore_Fidelity(t *testing.T) {
	fs := afero.NewMemMapFs()
	c := newTestCoordinator(t, fs)

	require.NoError(t, c.Store("session", "s1", sessionContext{Msg: "one"}))
	require.NoError(t, c.Store("patterns", "p1", map[string]int{"hits": 7}))

	require.NoError(t, c.Backup("/backups/snapshot.json"))

	original, err := c.ExportAll()
	require.NoError(t, err)

	// Restore into an empty coordinator with the same namespace set but a
	// separate base path.
	cfg := testConfig(fs)
	cfg.BasePath = "/data2"
	fresh, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fresh.Close() })

	restored, err := fresh.Restore("/backups/snapshot.json")
	require.NoError(t, err)
	assert.Equal(t, 2, restored)

	roundTripped, err := fresh.ExportAll()
	require.NoError(t, err)
	require.Len(t, roundTripped, len(original))
	for key, value := range original {
		assert.JSONEq(t, string(value), string(roundTripped[key]))
	}
}

func TestBackup_DocumentShape(t *testing.T) {
	fs := afero.NewMemMapFs()
	c := newTestCoordinator(t, fs)

	require.NoError(t, c.Store("session", "s1", "v"))
	require.NoError(t, c.Backup("/backups/out.json"))

	raw, err := afero.ReadFile(fs, "/backups/out.json")
	require.NoError(t, err)

	var doc BackupDocument
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.NotEmpty(t, doc.ID)
	assert.False(t, doc.Timestamp.IsZero())
	assert.Equal(t, 1, doc.Stats.TotalEntries)
	assert.Contains(t, doc.Data, "session:s1")
}

func TestRestore_SkipsForeignNamespaces(t *testing.T) {
	fs := afero.NewMemMapFs()
	c := newTestCoordinator(t, fs)

	require.NoError(t, c.Store("session", "s1", "kept"))
	require.NoError(t, c.Backup("/backups/foreign.json"))

	// A coordinator with a disjoint namespace set replays the backup
	// without error and imports nothing.
	other, err := New(Config{
		BasePath:   "/other",
		Namespaces: []Namespace{{Name: "metrics", TTL: time.Hour}},
		FS:         fs,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = other.Close() })

	restored, err := other.Restore("/backups/foreign.json")
	require.NoError(t, err)
	assert.Equal(t, 0, restored)
	assert.Equal(t, 0, other.Stats().TotalEntries)
}

func TestRestore_MissingFile(t *testing.T) {
	c := newTestCoordinator(t, afero.NewMemMapFs())

	_, err := c.Restore("/backups/nope.json")
	assert.Error(t, err)
}

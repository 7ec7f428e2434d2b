package coordinator

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// BackupDocument is the single-file backup format: a manifest wrapping the
// full ExportAll payload.
type BackupDocument struct {
	ID        string                     `json:"id"`
	Timestamp time.Time                  `json:"timestamp"`
	Stats     Stats                      `json:"stats"`
	Data      map[string]json.RawMessage `json:"data"`
}

// Backup writes the coordinator's full exported state to path, creating
// parent directories as needed.
func (c *Coordinator) Backup(path string) error {
	data, err := c.ExportAll()
	if err != nil {
		return fmt.Errorf("failed to export cache state: %w", err)
	}

	doc := BackupDocument{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Stats:     c.Stats(),
		Data:      data,
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode backup document: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := c.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create backup directory %s: %w", dir, err)
		}
	}
	if err := afero.WriteFile(c.fs, path, payload, 0o644); err != nil {
		return fmt.Errorf("failed to write backup file %s: %w", path, err)
	}

	c.logger.Info("Backup written", "path", path, "backup_id", doc.ID, "entries", len(data))
	return nil
}

// Restore replays a backup file through ImportAll and returns the count of
// entries restored. Entries for namespaces this coordinator does not serve
// are skipped.
func (c *Coordinator) Restore(path string) (int, error) {
	raw, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return 0, fmt.Errorf("failed to read backup file %s: %w", path, err)
	}

	var doc BackupDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return 0, fmt.Errorf("failed to parse backup file %s: %w", path, err)
	}

	restored, err := c.ImportAll(doc.Data)
	if err != nil {
		return restored, err
	}

	c.logger.Info("Backup restored", "path", path, "backup_id", doc.ID, "entries", restored)
	return restored, nil
}

// Package history keeps a JSON log of the entries that were put on screen.
package history

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// Record is one displayed entry.
type Record struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Format  string    `json:"format"`
	URL     string    `json:"url"`
	Size    int       `json:"size"`
	ShownAt time.Time `json:"shownAt"`
}

// Append adds records to the log at path, creating the file if necessary.
func Append(path string, records ...Record) error {
	if path == "" || len(records) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create history dir for %s", path)
	}
	existing, err := Load(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	existing = append(existing, records...)

	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal history")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "failed to write history to %s", path)
}

// Load returns every record stored at path.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read history from %s", path)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal history %s", path)
	}
	return records, nil
}
